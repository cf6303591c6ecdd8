// Package emu provides functional ARM2 emulation.
package emu

import (
	"fmt"
	"io"
)

// Mode is the processor mode held in bits [1:0] of R15.
type Mode uint8

// Processor modes.
const (
	ModeUser Mode = 0
	ModeFIRQ Mode = 1
	ModeIRQ  Mode = 2
	ModeSVC  Mode = 3
)

var modeNames = [4]string{"USR", "FIQ", "IRQ", "SVC"}

// String returns the conventional short name of the mode.
func (m Mode) String() string {
	return modeNames[m&0x3]
}

// Condition flag bits of R15.
const (
	FlagN uint32 = 0x80000000
	FlagZ uint32 = 0x40000000
	FlagC uint32 = 0x20000000
	FlagV uint32 = 0x10000000
)

// PCMask selects the program counter bits [25:2] of R15.
const PCMask uint32 = 0x03FFFFFC

// NumSlots is the number of physical registers behind the 16 logical ones.
const NumSlots = 27

// RegFile represents the ARM2 register file.
//
// Physical layout:
//
//	0-15   R0-R15
//	16-22  R8_fiq-R14_fiq
//	23-24  R13_irq-R14_irq
//	25-26  R13_svc-R14_svc
//
// R15 combines the flags (bits [31:28]), the program counter (bits [25:2])
// and the mode (bits [1:0]).
type RegFile struct {
	slots [NumSlots]uint32
}

// slot maps a logical register to its physical slot in the current mode.
func (r *RegFile) slot(reg uint8) int {
	if reg > 15 {
		panic(fmt.Sprintf("emu: register index %d out of range", reg))
	}
	if reg < 8 || reg == 15 {
		return int(reg)
	}

	switch r.Mode() {
	case ModeFIRQ:
		return int(reg) + 8
	case ModeIRQ:
		if reg >= 13 {
			return int(reg) + 10
		}
	case ModeSVC:
		if reg >= 13 {
			return int(reg) + 12
		}
	}
	return int(reg)
}

// ReadReg reads the full 32 bits of a register. For R15 this includes the
// flags and the mode.
func (r *RegFile) ReadReg(reg uint8) uint32 {
	return r.slots[r.slot(reg)]
}

// WriteReg writes the full 32 bits of a register. Writing R15 replaces the
// flags and the mode as well as the program counter.
func (r *RegFile) WriteReg(reg uint8, value uint32) {
	r.slots[r.slot(reg)] = value
}

// ReadRegMasked reads a register with R15 restricted to its program counter
// bits. Other registers read as with ReadReg.
func (r *RegFile) ReadRegMasked(reg uint8) uint32 {
	if reg == 15 {
		return r.slots[15] & PCMask
	}
	return r.ReadReg(reg)
}

// WriteRegMasked writes a register with R15 restricted to its program
// counter bits, leaving the flags and mode untouched. Other registers are
// written as with WriteReg.
func (r *RegFile) WriteRegMasked(reg uint8, value uint32) {
	if reg == 15 {
		r.slots[15] = (r.slots[15] &^ PCMask) | (value & PCMask)
		return
	}
	r.WriteReg(reg, value)
}

// Mode returns the current processor mode.
func (r *RegFile) Mode() Mode {
	return Mode(r.slots[15] & 0x3)
}

// SetMode switches the processor mode, leaving the rest of R15 untouched.
func (r *RegFile) SetMode(m Mode) {
	r.slots[15] = (r.slots[15] &^ 0x3) | uint32(m&0x3)
}

// PC returns the program counter bits of R15.
func (r *RegFile) PC() uint32 {
	return r.ReadRegMasked(15)
}

// PSR returns the raw R15 word, the source of the condition flags.
func (r *RegFile) PSR() uint32 {
	return r.slots[15]
}

// Dump writes the registers visible in the current mode.
func (r *RegFile) Dump(w io.Writer) {
	for i := uint8(0); i < 16; i++ {
		sep := "  "
		if i%4 == 3 {
			sep = "\n"
		}
		_, _ = fmt.Fprintf(w, "R%-2d=%08X%s", i, r.ReadReg(i), sep)
	}

	psr := r.PSR()
	flags := []byte("nzcv")
	for i, bit := range []uint32{FlagN, FlagZ, FlagC, FlagV} {
		if psr&bit != 0 {
			flags[i] -= 'a' - 'A'
		}
	}
	_, _ = fmt.Fprintf(w, "PC=%08X  %s  %s\n", r.PC(), flags, r.Mode())
}
