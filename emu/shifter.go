package emu

import (
	"math/bits"

	"github.com/sarchlab/arcsim/insts"
)

// BarrelShift applies a shifter operation to value. Amounts of 32 or more
// follow Go shift semantics: logical shifts produce zero, the arithmetic
// shift fills with the sign bit and rotation wraps modulo 32.
func BarrelShift(value uint32, shiftType insts.ShiftType, amount uint32) uint32 {
	switch shiftType {
	case insts.ShiftLSL:
		return value << amount
	case insts.ShiftASR:
		return uint32(int32(value) >> amount)
	case insts.ShiftLSR:
		return value >> amount
	case insts.ShiftROR:
		return bits.RotateLeft32(value, -int(amount&31))
	default:
		return value
	}
}

// pipelineAdjust is the extra offset seen when R15 is read as an operand of
// a register-specified shift, which takes one more cycle.
func pipelineAdjust(reg uint8) uint32 {
	if reg == 15 {
		return 4
	}
	return 0
}
