package vm

import "fmt"

// abiNames are the ABI register mnemonics for x0-x31, used by Disassemble
// for readability the way a debugger's disassembly panel would render them.
var abiNames = [NumGPR]string{
	"zero", "ra", "sp", "gp", "tp", "t0", "t1", "t2",
	"s0", "s1", "a0", "a1", "a2", "a3", "a4", "a5",
	"a6", "a7", "s2", "s3", "s4", "s5", "s6", "s7",
	"s8", "s9", "s10", "s11", "t3", "t4", "t5", "t6",
}

func regName(i int) string {
	if i < 0 || i >= NumGPR {
		return fmt.Sprintf("x%d", i)
	}
	return abiNames[i]
}

// Disassemble renders a decoded Instruction as RISC-V assembly mnemonic
// text, e.g. "addi a0, a0, 8". It is used by the debugger's disassembly
// panel and has no effect on architectural state.
func Disassemble(inst *Instruction) string {
	rd, rs1, rs2 := regName(inst.Rd), regName(inst.Rs1), regName(inst.Rs2)

	switch inst.Kind {
	case KindLUI, KindAUIPC:
		return fmt.Sprintf("%s %s, 0x%x", inst.Kind, rd, uint32(inst.Imm)>>12)
	case KindJAL:
		return fmt.Sprintf("jal %s, %d", rd, inst.Imm)
	case KindJALR:
		return fmt.Sprintf("jalr %s, %d(%s)", rd, inst.Imm, rs1)
	case KindBEQ, KindBNE, KindBLT, KindBGE, KindBLTU, KindBGEU:
		return fmt.Sprintf("%s %s, %s, %d", inst.Kind, rs1, rs2, inst.Imm)
	case KindLB, KindLH, KindLW, KindLBU, KindLHU:
		return fmt.Sprintf("%s %s, %d(%s)", inst.Kind, rd, inst.Imm, rs1)
	case KindSB, KindSH, KindSW:
		return fmt.Sprintf("%s %s, %d(%s)", inst.Kind, rs2, inst.Imm, rs1)
	case KindSLLI, KindSRLI, KindSRAI:
		return fmt.Sprintf("%s %s, %s, %d", inst.Kind, rd, rs1, inst.Shamt)
	case KindADDI, KindSLTI, KindSLTIU, KindXORI, KindORI, KindANDI:
		return fmt.Sprintf("%s %s, %s, %d", inst.Kind, rd, rs1, inst.Imm)
	case KindADD, KindSUB, KindSLL, KindSLT, KindSLTU, KindXOR, KindSRL, KindSRA, KindOR, KindAND:
		return fmt.Sprintf("%s %s, %s, %s", inst.Kind, rd, rs1, rs2)
	case KindECALL, KindEBREAK, KindFENCE:
		return inst.Kind.String()
	case KindCSRRW, KindCSRRS, KindCSRRC:
		return fmt.Sprintf("%s %s, 0x%03x, %s", inst.Kind, rd, inst.Csr, rs1)
	case KindCSRRWI, KindCSRRSI, KindCSRRCI:
		return fmt.Sprintf("%s %s, 0x%03x, %d", inst.Kind, rd, inst.Csr, inst.Zimm)
	default:
		return fmt.Sprintf("unknown 0x%08X", inst.Word)
	}
}
