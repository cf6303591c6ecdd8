// Package emu provides functional ARM2 emulation.
package emu

import (
	"fmt"
	"io"

	"github.com/sarchlab/arcsim/insts"
)

// Effect tells the fetch loop how far to advance the program counter after
// an instruction.
type Effect uint8

const (
	// Continue advances to the next instruction.
	Continue Effect = iota
	// Flush marks a program counter write. The loop then advances by 8 so
	// that R15 again reads as the instruction address plus 8.
	Flush
)

// Advance returns the program counter increment for the effect.
func (f Effect) Advance() uint32 {
	if f == Flush {
		return 8
	}
	return 4
}

func (f Effect) String() string {
	if f == Flush {
		return "Flush"
	}
	return "Continue"
}

// StepResult represents the result of executing a single instruction.
type StepResult struct {
	// Address is the fetch address of the instruction.
	Address uint32

	// Word is the fetched instruction word.
	Word uint32

	// Executed is false when the condition failed or the step errored.
	Executed bool

	// Effect is the pipeline effect reported by the execution unit.
	Effect Effect

	// Err is set if the step halted execution.
	Err error
}

// executor runs one instruction class.
type executor func(inst *insts.Instruction) (Effect, error)

// Emulator executes ARM2 instructions functionally.
type Emulator struct {
	regFile *RegFile
	memory  *Memory
	decoder *insts.Decoder

	// Execution units
	alu        *ALU
	lsu        *LoadStoreUnit
	branchUnit *BranchUnit

	// dispatch is indexed by bits [27:24] of the instruction word.
	dispatch [16]executor

	// trace receives one line per fetched instruction when set.
	trace io.Writer

	// Execution state
	instructionCount uint64
	maxInstructions  uint64 // 0 means no limit
}

// EmulatorOption is a functional option for configuring the Emulator.
type EmulatorOption func(*Emulator)

// WithTrace sets a writer for the per-instruction trace.
func WithTrace(w io.Writer) EmulatorOption {
	return func(e *Emulator) {
		e.trace = w
	}
}

// WithMaxInstructions sets the maximum number of instructions to execute.
// A value of 0 means no limit.
func WithMaxInstructions(max uint64) EmulatorOption {
	return func(e *Emulator) {
		e.maxInstructions = max
	}
}

// WithAccessObserver installs an observer on the emulator's memory.
func WithAccessObserver(o AccessObserver) EmulatorOption {
	return func(e *Emulator) {
		e.memory.SetObserver(o)
	}
}

// NewEmulator creates an ARM2 emulator booting from the given ROM image.
// R15 starts at the reset vector plus the prefetch offset, in user mode
// with all flags clear.
func NewEmulator(rom []uint32, opts ...EmulatorOption) *Emulator {
	e := &Emulator{
		decoder: insts.NewDecoder(),
	}
	e.boot(NewMemory(rom))

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// boot wires fresh execution units around memory and resets the registers.
func (e *Emulator) boot(memory *Memory) {
	e.regFile = &RegFile{}
	e.memory = memory
	e.instructionCount = 0

	e.alu = NewALU(e.regFile)
	e.lsu = NewLoadStoreUnit(e.regFile, e.memory)
	e.branchUnit = NewBranchUnit(e.regFile)

	e.dispatch = [16]executor{
		e.alu.Execute,
		e.alu.Execute,
		e.alu.Execute,
		e.alu.Execute,
		e.lsu.Execute,
		e.lsu.Execute,
		e.lsu.Execute,
		e.lsu.Execute,
		unimplementedClass,
		unimplementedClass,
		e.branchUnit.Execute,
		e.branchUnit.Execute,
		unimplementedClass,
		unimplementedClass,
		unimplementedClass,
		unimplementedClass,
	}

	e.regFile.WriteReg(15, ResetVector+8)
}

// RegFile returns the emulator's register file.
func (e *Emulator) RegFile() *RegFile {
	return e.regFile
}

// Memory returns the emulator's memory.
func (e *Emulator) Memory() *Memory {
	return e.memory
}

// InstructionCount returns the number of instructions fetched, including
// those whose condition failed.
func (e *Emulator) InstructionCount() uint64 {
	return e.instructionCount
}

// Reset restores the power-on state: registers, RAM and the ROM overlay.
// The ROM contents and the access observer are kept.
func (e *Emulator) Reset() {
	memory := NewMemory(e.memory.rom)
	memory.SetObserver(e.memory.observer)
	e.boot(memory)
}

// Step fetches, traces and, if its condition passes, executes a single
// instruction, then advances the program counter by the reported effect.
// A failing step leaves the program counter at the failing instruction.
func (e *Emulator) Step() StepResult {
	if e.maxInstructions > 0 && e.instructionCount >= e.maxInstructions {
		return StepResult{Err: ErrMaxInstructions}
	}

	// R15 reads as the instruction address plus 8.
	fetchAddr := (e.regFile.ReadRegMasked(15) - 8) & AddressMask
	result := StepResult{Address: fetchAddr}

	word, err := e.memory.Load(fetchAddr)
	if err != nil {
		result.Err = &HaltError{Address: fetchAddr, Err: err}
		return result
	}
	result.Word = word

	inst := e.decoder.Decode(word)
	e.traceInstruction(fetchAddr, inst)
	e.instructionCount++

	if ConditionPassed(inst.Cond, e.regFile.PSR()) {
		effect, err := e.dispatch[inst.Class&0xF](inst)
		if err != nil {
			result.Err = &HaltError{Address: fetchAddr, Word: word, Err: err}
			return result
		}
		result.Executed = true
		result.Effect = effect
	}

	e.regFile.WriteRegMasked(15, e.regFile.ReadRegMasked(15)+result.Effect.Advance())

	return result
}

// Run executes instructions until a step fails and returns that error.
// There is no other way out of the loop.
func (e *Emulator) Run() error {
	for {
		if result := e.Step(); result.Err != nil {
			return result.Err
		}
	}
}

func (e *Emulator) traceInstruction(addr uint32, inst *insts.Instruction) {
	if e.trace == nil {
		return
	}
	_, _ = fmt.Fprintf(e.trace, "%08X  %08X  %s\n", addr, inst.Word, insts.Disassemble(addr, inst))
}

func unimplementedClass(inst *insts.Instruction) (Effect, error) {
	return Continue, fmt.Errorf("%w: class 0x%X", ErrUnimplementedInstructionClass, inst.Class)
}
