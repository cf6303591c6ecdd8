package emu

import (
	"errors"
	"fmt"
)

// Errors that halt execution. None of them is recoverable: skipping an
// unimplemented operation would leave the architectural state wrong.
var (
	// ErrUnimplementedInstructionClass is returned for instruction classes
	// (bits [27:24]) that have no executor.
	ErrUnimplementedInstructionClass = errors.New("unimplemented instruction class")

	// ErrUnimplementedOperation is returned for opcodes of a known class
	// that have no implementation.
	ErrUnimplementedOperation = errors.New("unimplemented operation")

	// ErrUnimplementedMemoryRegion is returned for accesses to regions that
	// are not backed by real behaviour.
	ErrUnimplementedMemoryRegion = errors.New("unimplemented memory region")

	// ErrMaxInstructions is returned once the instruction limit is reached.
	ErrMaxInstructions = errors.New("max instructions reached")
)

// HaltError reports the instruction that stopped execution.
type HaltError struct {
	// Address is the fetch address of the instruction.
	Address uint32
	// Word is the raw instruction word, zero if the fetch itself failed.
	Word uint32
	// Err is the underlying cause.
	Err error
}

func (e *HaltError) Error() string {
	return fmt.Sprintf("halted at 0x%08X (0x%08X): %v", e.Address, e.Word, e.Err)
}

func (e *HaltError) Unwrap() error {
	return e.Err
}

func unimplementedRegion(access, region string, addr uint32) error {
	return fmt.Errorf("%w: %s %s at 0x%08X", ErrUnimplementedMemoryRegion, access, region, addr)
}
