// Package insts provides ARM2 instruction definitions and decoding.
//
// This package turns 32-bit ARM2 instruction words into structured
// instruction representations and renders them as disassembly text. The
// instruction class is selected by bits [27:24]:
//   - 0x0-0x3: Data processing (AND ... MVN, immediate or shifted register)
//   - 0x4-0x7: Single data transfer (LDR, STR, LDRB, STRB)
//   - 0xA-0xB: Branch (B, BL)
//
// Every other class decodes as FormatUnknown.
//
// Usage:
//
//	decoder := insts.NewDecoder()
//	inst := decoder.Decode(0xE2800004) // ADD R0, R0, #4
//	fmt.Println(insts.Disassemble(0, inst))
package insts
