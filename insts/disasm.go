package insts

import "fmt"

// formatter renders a decoded instruction fetched from address. cond is the
// condition suffix.
type formatter func(address uint32, cond string, inst *Instruction) string

// formatters is indexed by bits [27:24], mirroring the executor table.
var formatters = [16]formatter{
	formatDataProc,
	formatDataProc,
	formatDataProc,
	formatDataProc,
	formatSingleTransfer,
	formatSingleTransfer,
	formatSingleTransfer,
	formatSingleTransfer,
	formatUnknown,
	formatUnknown,
	formatBranch,
	formatBranch,
	formatUnknown,
	formatUnknown,
	formatUnknown,
	formatUnknown,
}

// Disassemble returns the assembler text of inst, which was fetched from
// address. Classes without a formatter render as "..." plus the condition.
func Disassemble(address uint32, inst *Instruction) string {
	return formatters[inst.Class&0xF](address, inst.Cond.String(), inst)
}

func formatDataProc(_ uint32, cond string, inst *Instruction) string {
	op2 := formatOperand2(inst)

	switch {
	case inst.Op.IsTest():
		return fmt.Sprintf("%s%s R%d, %s", inst.Op, cond, inst.Rn, op2)
	case inst.Op.IsMove():
		return fmt.Sprintf("%s%s%s R%d, %s", inst.Op, cond, sFlag(inst), inst.Rd, op2)
	default:
		return fmt.Sprintf("%s%s%s R%d, R%d, %s",
			inst.Op, cond, sFlag(inst), inst.Rd, inst.Rn, op2)
	}
}

func sFlag(inst *Instruction) string {
	if inst.SetFlags {
		return "S"
	}
	return ""
}

func formatOperand2(inst *Instruction) string {
	if inst.Immediate {
		return formatImmediate(inst.Imm, "")
	}
	return fmt.Sprintf("R%d%s", inst.Rm, formatShift(inst))
}

// formatShift renders the shifter suffix of a register operand. A zero
// immediate amount leaves the register unshifted and prints nothing.
func formatShift(inst *Instruction) string {
	if inst.ShiftByReg {
		return fmt.Sprintf(", %s R%d", inst.ShiftType, inst.Rs)
	}
	if inst.ShiftAmount == 0 {
		return ""
	}
	return fmt.Sprintf(", %s #%d", inst.ShiftType, inst.ShiftAmount)
}

func formatImmediate(value uint32, sign string) string {
	if value < 256 {
		return fmt.Sprintf("#%s%d", sign, value)
	}
	return fmt.Sprintf("#%s&%X", sign, value)
}

func formatSingleTransfer(_ uint32, cond string, inst *Instruction) string {
	mnemonic := "STR"
	if inst.Load {
		mnemonic = "LDR"
	}
	b := ""
	if inst.Byte {
		b = "B"
	}
	sign := "-"
	if inst.Up {
		sign = ""
	}

	var offset string
	switch {
	case inst.RegOffset:
		offset = fmt.Sprintf("%sR%d%s", sign, inst.Rm, formatShift(inst))
	case inst.Imm != 0:
		offset = formatImmediate(inst.Imm, sign)
	}

	var address string
	switch {
	case !inst.PreIndex && offset == "":
		address = fmt.Sprintf("[R%d]", inst.Rn)
	case !inst.PreIndex:
		address = fmt.Sprintf("[R%d], %s", inst.Rn, offset)
	case offset == "":
		address = fmt.Sprintf("[R%d]", inst.Rn)
	default:
		address = fmt.Sprintf("[R%d, %s]", inst.Rn, offset)
	}
	if inst.PreIndex && inst.WriteBack {
		address += "!"
	}

	return fmt.Sprintf("%s%s%s R%d, %s", mnemonic, cond, b, inst.Rd, address)
}

// formatBranch renders the branch target the executor computes: the fetch
// address plus the prefetch offset plus the unsigned word offset, wrapped
// into the 26-bit address space.
func formatBranch(address uint32, cond string, inst *Instruction) string {
	dest := (address + 8 + inst.BranchOffset) & 0x03FFFFFF

	if inst.Link {
		return fmt.Sprintf("BL%s &%X", cond, dest)
	}
	return fmt.Sprintf("B%s &%X", cond, dest)
}

func formatUnknown(_ uint32, cond string, _ *Instruction) string {
	return "..." + cond
}
