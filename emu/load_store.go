// Package emu provides functional ARM2 emulation.
package emu

import "github.com/sarchlab/arcsim/insts"

// LoadStoreUnit implements ARM2 single data transfer instructions.
type LoadStoreUnit struct {
	regFile *RegFile
	memory  *Memory
}

// NewLoadStoreUnit creates a new LoadStoreUnit connected to the given
// register file and memory.
func NewLoadStoreUnit(regFile *RegFile, memory *Memory) *LoadStoreUnit {
	return &LoadStoreUnit{
		regFile: regFile,
		memory:  memory,
	}
}

// Offset computes the signed transfer offset, as a two's complement value.
func (lsu *LoadStoreUnit) Offset(inst *insts.Instruction) uint32 {
	return signed(lsu.magnitude(inst), inst.Up)
}

func signed(magnitude uint32, up bool) uint32 {
	if !up {
		return -magnitude
	}
	return magnitude
}

// magnitude is the unsigned offset. A register offset goes through the
// barrel shifter with an immediate amount, reading Rm with its flag and
// mode bits.
func (lsu *LoadStoreUnit) magnitude(inst *insts.Instruction) uint32 {
	if inst.RegOffset {
		return BarrelShift(lsu.regFile.ReadReg(inst.Rm), inst.ShiftType, uint32(inst.ShiftAmount))
	}
	return inst.Imm
}

// Execute runs an LDR, STR, LDRB or STRB instruction.
//
// Pre-indexed transfers use base plus the signed offset and write that
// address back when W is set. Post-indexed ones use the base and always
// write back base plus the unsigned offset, ignoring U. A failed transfer
// leaves the base register unchanged.
func (lsu *LoadStoreUnit) Execute(inst *insts.Instruction) (Effect, error) {
	base := lsu.regFile.ReadRegMasked(inst.Rn)
	magnitude := lsu.magnitude(inst)

	addr := base
	if inst.PreIndex {
		addr += signed(magnitude, inst.Up)
	}

	if err := lsu.transfer(inst, addr); err != nil {
		return Continue, err
	}

	switch {
	case !inst.PreIndex:
		lsu.regFile.WriteReg(inst.Rn, base+magnitude)
	case inst.WriteBack:
		lsu.regFile.WriteReg(inst.Rn, addr)
	}

	if inst.Load && inst.Rd == 15 {
		return Flush, nil
	}
	return Continue, nil
}

// transfer moves one word or byte between Rd and memory. Loads write Rd
// with the masked variant so that loading R15 keeps the flags and mode.
func (lsu *LoadStoreUnit) transfer(inst *insts.Instruction, addr uint32) error {
	switch {
	case inst.Load && inst.Byte:
		value, err := lsu.memory.LoadByte(addr)
		if err != nil {
			return err
		}
		lsu.regFile.WriteRegMasked(inst.Rd, uint32(value))
	case inst.Load:
		value, err := lsu.memory.Load(addr)
		if err != nil {
			return err
		}
		lsu.regFile.WriteRegMasked(inst.Rd, value)
	case inst.Byte:
		return lsu.memory.StoreByte(addr, uint8(lsu.regFile.ReadReg(inst.Rd)))
	default:
		return lsu.memory.Store(addr, lsu.regFile.ReadReg(inst.Rd))
	}
	return nil
}
