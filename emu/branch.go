// Package emu provides functional ARM2 emulation.
package emu

import "github.com/sarchlab/arcsim/insts"

// BranchUnit implements ARM2 branch operations.
type BranchUnit struct {
	regFile *RegFile
}

// NewBranchUnit creates a new BranchUnit connected to the given register file.
func NewBranchUnit(regFile *RegFile) *BranchUnit {
	return &BranchUnit{regFile: regFile}
}

// Execute performs B or BL. BL saves the current program counter to R14
// before branching.
//
// The word offset is added without sign extension and the sum wraps into
// the 26-bit address space.
func (b *BranchUnit) Execute(inst *insts.Instruction) (Effect, error) {
	pc := b.regFile.ReadRegMasked(15)

	if inst.Link {
		b.regFile.WriteReg(14, pc)
	}

	b.regFile.WriteRegMasked(15, (pc+inst.BranchOffset)&0x03FFFFFF)
	return Flush, nil
}

// ConditionPassed evaluates a condition code against the flags in psr.
//
// VS and VC test Z rather than V.
func ConditionPassed(cond insts.Cond, psr uint32) bool {
	n := psr&FlagN != 0
	z := psr&FlagZ != 0
	c := psr&FlagC != 0
	v := psr&FlagV != 0

	switch cond {
	case insts.CondEQ:
		return z
	case insts.CondNE:
		return !z
	case insts.CondCS:
		return c
	case insts.CondCC:
		return !c
	case insts.CondMI:
		return n
	case insts.CondPL:
		return !n
	case insts.CondVS:
		return z
	case insts.CondVC:
		return !z
	case insts.CondHI:
		return c && !z
	case insts.CondLS:
		return !(c && !z)
	case insts.CondGE:
		return n == v
	case insts.CondLT:
		return n != v
	case insts.CondGT:
		return !z && n == v
	case insts.CondLE:
		return z || n != v
	case insts.CondAL:
		return true
	default:
		// NV
		return false
	}
}
