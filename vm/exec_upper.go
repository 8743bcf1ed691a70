package vm

// execLUI implements LUI rd, imm: rd <- sign_extend_32(imm << 12). The
// decoder has already placed imm in bits [31:12] with the low 12 bits zero,
// so no further shift is needed here.
func execLUI(c *CPU, inst *Instruction) error {
	return c.Regs.SetGPR(inst.Rd, uint32(inst.Imm))
}

// execAUIPC implements AUIPC rd, imm: rd <- PC + (imm << 12).
func execAUIPC(c *CPU, inst *Instruction) error {
	return c.Regs.SetGPR(inst.Rd, inst.Address+uint32(inst.Imm))
}
