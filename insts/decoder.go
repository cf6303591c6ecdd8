// Package insts provides ARM2 instruction definitions and decoding.
package insts

import "math/bits"

// Op represents a data processing opcode, bits [24:21].
type Op uint8

// Data processing opcodes.
const (
	OpAND Op = iota
	OpEOR
	OpSUB
	OpRSB
	OpADD
	OpADC
	OpSBC
	OpRSC
	OpTST
	OpTEQ
	OpCMP
	OpCMN
	OpORR
	OpMOV
	OpBIC
	OpMVN
)

var opMnemonics = [16]string{
	"AND", "EOR", "SUB", "RSB", "ADD", "ADC", "SBC", "RSC",
	"TST", "TEQ", "CMP", "CMN", "ORR", "MOV", "BIC", "MVN",
}

// String returns the assembler mnemonic of the opcode.
func (o Op) String() string {
	return opMnemonics[o&0xF]
}

// IsTest reports whether the opcode only sets flags and has no destination.
func (o Op) IsTest() bool {
	return o >= OpTST && o <= OpCMN
}

// IsMove reports whether the opcode ignores its first operand.
func (o Op) IsMove() bool {
	return o == OpMOV || o == OpMVN
}

// Format represents an instruction class.
type Format uint8

// Instruction classes.
const (
	FormatUnknown        Format = iota
	FormatDataProc              // Data processing, classes 0x0-0x3
	FormatSingleTransfer        // Single data transfer, classes 0x4-0x7
	FormatBranch                // Branch and branch with link, classes 0xA-0xB
)

// formats maps bits [27:24] to an instruction class.
var formats = [16]Format{
	FormatDataProc,
	FormatDataProc,
	FormatDataProc,
	FormatDataProc,
	FormatSingleTransfer,
	FormatSingleTransfer,
	FormatSingleTransfer,
	FormatSingleTransfer,
	FormatUnknown,
	FormatUnknown,
	FormatBranch,
	FormatBranch,
	FormatUnknown,
	FormatUnknown,
	FormatUnknown,
	FormatUnknown,
}

// Cond represents an ARM2 condition code, bits [31:28].
type Cond uint8

// ARM2 condition codes.
const (
	CondEQ Cond = 0b0000 // Equal
	CondNE Cond = 0b0001 // Not equal
	CondCS Cond = 0b0010 // Carry set
	CondCC Cond = 0b0011 // Carry clear
	CondMI Cond = 0b0100 // Minus
	CondPL Cond = 0b0101 // Plus
	CondVS Cond = 0b0110 // Overflow set
	CondVC Cond = 0b0111 // Overflow clear
	CondHI Cond = 0b1000 // Unsigned higher
	CondLS Cond = 0b1001 // Unsigned lower or same
	CondGE Cond = 0b1010 // Signed greater than or equal
	CondLT Cond = 0b1011 // Signed less than
	CondGT Cond = 0b1100 // Signed greater than
	CondLE Cond = 0b1101 // Signed less than or equal
	CondAL Cond = 0b1110 // Always
	CondNV Cond = 0b1111 // Never
)

var condMnemonics = [16]string{
	"EQ", "NE", "CS", "CC", "MI", "PL", "VS", "VC",
	"HI", "LS", "GE", "LT", "GT", "LE", "", "NV",
}

// String returns the condition suffix. AL is the empty string.
func (c Cond) String() string {
	return condMnemonics[c&0xF]
}

// ShiftType represents a barrel shifter operation, bits [6:5].
//
// The encoding order is the one this core executes: 01 is the arithmetic
// shift and 10 the logical one.
type ShiftType uint8

// Shift types.
const (
	ShiftLSL ShiftType = 0b00 // Logical shift left
	ShiftASR ShiftType = 0b01 // Arithmetic shift right
	ShiftLSR ShiftType = 0b10 // Logical shift right
	ShiftROR ShiftType = 0b11 // Rotate right
)

var shiftMnemonics = [4]string{"LSL", "ASR", "LSR", "ROR"}

// String returns the assembler mnemonic of the shift.
func (s ShiftType) String() string {
	return shiftMnemonics[s&0x3]
}

// Instruction represents a decoded ARM2 instruction. Only the fields of the
// instruction's Format are populated.
type Instruction struct {
	Word   uint32 // Raw instruction word
	Cond   Cond   // Condition field
	Class  uint8  // Bits [27:24], the dispatch index
	Format Format // Instruction class

	// Register fields
	Rd uint8 // Destination (data processing) or transfer register
	Rn uint8 // First operand (data processing) or base register
	Rm uint8 // Operand register of the shifter
	Rs uint8 // Shift amount register

	// Data processing
	Op        Op    // Opcode
	SetFlags  bool  // Bit 20, parsed but not acted upon yet
	Immediate bool  // Bit 25, second operand is a rotated immediate
	Imm8      uint8 // Unrotated 8-bit immediate
	Rotate    uint8 // Rotation applied to Imm8, in bits

	// Shifted register operand
	ShiftByReg  bool      // Bit 4, amount comes from Rs
	ShiftType   ShiftType // Bits [6:5]
	ShiftAmount uint8     // Bits [11:7] when ShiftByReg is false

	// Single data transfer
	RegOffset bool // Bit 25, offset is a shifted register
	PreIndex  bool // Bit 24
	Up        bool // Bit 23, add the offset
	Byte      bool // Bit 22
	WriteBack bool // Bit 21
	Load      bool // Bit 20

	// Imm is the rotated data processing immediate or the 12-bit transfer
	// offset.
	Imm uint32

	// Branch
	Link         bool   // Bit 24
	BranchOffset uint32 // Bits [23:0] shifted left by two, not sign-extended
}

// Decoder decodes ARM2 machine code into instructions.
type Decoder struct{}

// NewDecoder creates a new ARM2 instruction decoder.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Decode decodes a 32-bit ARM2 instruction word.
func (d *Decoder) Decode(word uint32) *Instruction {
	class := uint8((word >> 24) & 0xF)
	inst := &Instruction{
		Word:   word,
		Cond:   Cond(word >> 28),
		Class:  class,
		Format: formats[class],
	}

	switch inst.Format {
	case FormatDataProc:
		d.decodeDataProc(word, inst)
	case FormatSingleTransfer:
		d.decodeSingleTransfer(word, inst)
	case FormatBranch:
		d.decodeBranch(word, inst)
	}

	return inst
}

// decodeDataProc decodes data processing instructions.
// Format: cond | 00 | I | opcode | S | Rn | Rd | operand2
func (d *Decoder) decodeDataProc(word uint32, inst *Instruction) {
	inst.Op = Op((word >> 21) & 0xF)
	inst.SetFlags = word&(1<<20) != 0
	inst.Rn = uint8((word >> 16) & 0xF)
	inst.Rd = uint8((word >> 12) & 0xF)
	inst.Immediate = word&(1<<25) != 0

	if inst.Immediate {
		inst.Imm8 = uint8(word & 0xFF)
		inst.Rotate = uint8((word>>8)&0xF) * 2
		inst.Imm = bits.RotateLeft32(uint32(inst.Imm8), -int(inst.Rotate))
		return
	}

	d.decodeShiftedReg(word, inst)
	if word&(1<<4) != 0 {
		inst.ShiftByReg = true
		inst.Rs = uint8((word >> 8) & 0xF)
		inst.ShiftAmount = 0
	}
}

// decodeSingleTransfer decodes LDR/STR instructions.
// Format: cond | 01 | I | P | U | B | W | L | Rn | Rd | offset
func (d *Decoder) decodeSingleTransfer(word uint32, inst *Instruction) {
	inst.RegOffset = word&(1<<25) != 0
	inst.PreIndex = word&(1<<24) != 0
	inst.Up = word&(1<<23) != 0
	inst.Byte = word&(1<<22) != 0
	inst.WriteBack = word&(1<<21) != 0
	inst.Load = word&(1<<20) != 0
	inst.Rn = uint8((word >> 16) & 0xF)
	inst.Rd = uint8((word >> 12) & 0xF)

	if inst.RegOffset {
		d.decodeShiftedReg(word, inst)
		return
	}
	inst.Imm = word & 0xFFF
}

// decodeShiftedReg decodes a register operand shifted by an immediate amount.
func (d *Decoder) decodeShiftedReg(word uint32, inst *Instruction) {
	inst.Rm = uint8(word & 0xF)
	inst.ShiftType = ShiftType((word >> 5) & 0x3)
	inst.ShiftAmount = uint8((word >> 7) & 0x1F)
}

// decodeBranch decodes B and BL.
// Format: cond | 101 | L | offset24
func (d *Decoder) decodeBranch(word uint32, inst *Instruction) {
	inst.Link = word&(1<<24) != 0
	inst.BranchOffset = (word & 0x00FFFFFF) << 2
}
