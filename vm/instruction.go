package vm

// Kind tags the one supported RV32I/Zicsr operation an Instruction decodes
// to. Rather than a polymorphic per-opcode type hierarchy, decoding produces
// a single tagged variant and execution is a match over Kind — the approach
// spec.md §9 prescribes in place of the source's per-opcode dispatch.
type Kind int

const (
	KindLUI Kind = iota
	KindAUIPC
	KindJAL
	KindJALR
	KindBEQ
	KindBNE
	KindBLT
	KindBGE
	KindBLTU
	KindBGEU
	KindLB
	KindLH
	KindLW
	KindLBU
	KindLHU
	KindSB
	KindSH
	KindSW
	KindADDI
	KindSLTI
	KindSLTIU
	KindXORI
	KindORI
	KindANDI
	KindSLLI
	KindSRLI
	KindSRAI
	KindADD
	KindSUB
	KindSLL
	KindSLT
	KindSLTU
	KindXOR
	KindSRL
	KindSRA
	KindOR
	KindAND
	KindECALL
	KindEBREAK
	KindFENCE
	KindCSRRW
	KindCSRRS
	KindCSRRC
	KindCSRRWI
	KindCSRRSI
	KindCSRRCI
)

var kindNames = map[Kind]string{
	KindLUI: "lui", KindAUIPC: "auipc", KindJAL: "jal", KindJALR: "jalr",
	KindBEQ: "beq", KindBNE: "bne", KindBLT: "blt", KindBGE: "bge",
	KindBLTU: "bltu", KindBGEU: "bgeu",
	KindLB: "lb", KindLH: "lh", KindLW: "lw", KindLBU: "lbu", KindLHU: "lhu",
	KindSB: "sb", KindSH: "sh", KindSW: "sw",
	KindADDI: "addi", KindSLTI: "slti", KindSLTIU: "sltiu", KindXORI: "xori",
	KindORI: "ori", KindANDI: "andi", KindSLLI: "slli", KindSRLI: "srli", KindSRAI: "srai",
	KindADD: "add", KindSUB: "sub", KindSLL: "sll", KindSLT: "slt", KindSLTU: "sltu",
	KindXOR: "xor", KindSRL: "srl", KindSRA: "sra", KindOR: "or", KindAND: "and",
	KindECALL: "ecall", KindEBREAK: "ebreak", KindFENCE: "fence",
	KindCSRRW: "csrrw", KindCSRRS: "csrrs", KindCSRRC: "csrrc",
	KindCSRRWI: "csrrwi", KindCSRRSI: "csrrsi", KindCSRRCI: "csrrci",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown"
}

// Instruction is an immutable, pre-decoded operation: a Kind tag plus the
// pre-extracted operands (register indices and sign-extended immediates).
// It has no identity or lifecycle beyond the step that decoded it.
type Instruction struct {
	Kind Kind

	// Address is the PC the word was fetched from (for fault reporting and
	// PC-relative operations such as AUIPC/JAL/branches).
	Address uint32
	Word    uint32

	Rd  int
	Rs1 int
	Rs2 int

	// Imm holds the sign-extended immediate for I/S/B/U/J-shaped
	// instructions. For U-type it already has its low 12 bits zeroed and is
	// placed in bits [31:12]. For shift-immediates it additionally carries
	// Shamt separately since the low 5 bits double as the shift amount.
	Imm int32

	// Shamt is the 5-bit shift amount for SLLI/SRLI/SRAI.
	Shamt uint32

	// Csr is the 12-bit CSR address for Zicsr instructions.
	Csr int

	// Zimm is the 5-bit zero-extended immediate used by CSRRWI/CSRRSI/CSRRCI
	// in place of a register operand.
	Zimm uint32
}
