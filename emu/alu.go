// Package emu provides functional ARM2 emulation.
package emu

import (
	"fmt"

	"github.com/sarchlab/arcsim/insts"
)

// aluOp executes one data processing opcode on computed operands.
type aluOp func(a *ALU, inst *insts.Instruction, op1, op2 uint32) (Effect, error)

// ALU implements ARM2 data processing instructions.
type ALU struct {
	regFile *RegFile
	ops     [16]aluOp
}

// NewALU creates a new ALU connected to the given register file.
func NewALU(regFile *RegFile) *ALU {
	return &ALU{
		regFile: regFile,
		ops: [16]aluOp{
			insts.OpAND: aluUnimplemented,
			insts.OpEOR: aluUnimplemented,
			insts.OpSUB: aluUnimplemented,
			insts.OpRSB: aluUnimplemented,
			insts.OpADD: aluADD,
			insts.OpADC: aluUnimplemented,
			insts.OpSBC: aluUnimplemented,
			insts.OpRSC: aluUnimplemented,
			insts.OpTST: aluUnimplemented,
			insts.OpTEQ: aluUnimplemented,
			insts.OpCMP: aluUnimplemented,
			insts.OpCMN: aluUnimplemented,
			insts.OpORR: aluUnimplemented,
			insts.OpMOV: aluUnimplemented,
			insts.OpBIC: aluUnimplemented,
			insts.OpMVN: aluUnimplemented,
		},
	}
}

// Execute runs a data processing instruction.
func (a *ALU) Execute(inst *insts.Instruction) (Effect, error) {
	op1, op2 := a.Operands(inst)
	return a.ops[inst.Op&0xF](a, inst, op1, op2)
}

// Operands computes the first operand and the shifted second operand.
//
// With a register-specified shift R15 reads 4 further ahead, as an operand
// of either Rn or Rm. With an immediate shift Rm is read with its flag and
// mode bits, so R15 as Rm carries them into the result.
func (a *ALU) Operands(inst *insts.Instruction) (op1, op2 uint32) {
	if inst.Immediate {
		return a.regFile.ReadReg(inst.Rn), inst.Imm
	}

	var amount, unshifted uint32
	if inst.ShiftByReg {
		amount = a.regFile.ReadReg(inst.Rs) & 0xFF
		op1 = a.regFile.ReadRegMasked(inst.Rn) + pipelineAdjust(inst.Rn)
		unshifted = a.regFile.ReadReg(inst.Rm) + pipelineAdjust(inst.Rm)
	} else {
		amount = uint32(inst.ShiftAmount)
		op1 = a.regFile.ReadRegMasked(inst.Rn)
		unshifted = a.regFile.ReadReg(inst.Rm)
	}

	return op1, BarrelShift(unshifted, inst.ShiftType, amount)
}

// aluADD performs Rd = op1 + op2. Flags are not updated.
func aluADD(a *ALU, inst *insts.Instruction, op1, op2 uint32) (Effect, error) {
	a.regFile.WriteReg(inst.Rd, op1+op2)
	return effectOf(inst.Rd), nil
}

func aluUnimplemented(_ *ALU, inst *insts.Instruction, _, _ uint32) (Effect, error) {
	return Continue, fmt.Errorf("%w: ALU opcode %d (%s)", ErrUnimplementedOperation, inst.Op, inst.Op)
}

// effectOf returns Flush when the destination is the program counter.
func effectOf(rd uint8) Effect {
	if rd == 15 {
		return Flush
	}
	return Continue
}
