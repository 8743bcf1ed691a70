package vm

// execBranch implements BEQ/BNE/BLT/BGE/BLTU/BGEU, spec.md §4.4.6. These are
// control-transfer instructions: they always set PC themselves (to
// PC_before+offset when taken, PC_before+4 when not), so the CPU driver
// must not add 4 again afterward (spec.md §9 item 2).
func execBranch(c *CPU, inst *Instruction) error {
	rs1, err := c.Regs.GetGPR(inst.Rs1)
	if err != nil {
		return err
	}
	rs2, err := c.Regs.GetGPR(inst.Rs2)
	if err != nil {
		return err
	}

	var taken bool
	switch inst.Kind {
	case KindBEQ:
		taken = rs1 == rs2
	case KindBNE:
		taken = rs1 != rs2
	case KindBLT:
		taken = int32(rs1) < int32(rs2)
	case KindBGE:
		taken = int32(rs1) >= int32(rs2)
	case KindBLTU:
		taken = rs1 < rs2
	case KindBGEU:
		taken = rs1 >= rs2
	default:
		return unreachableKind(inst.Kind)
	}

	if taken {
		c.Regs.SetPC(inst.Address + uint32(inst.Imm))
	} else {
		c.Regs.SetPC(inst.Address + 4)
	}
	return nil
}

// execJAL implements JAL rd, off: rd <- PC+4; PC <- PC+off.
func execJAL(c *CPU, inst *Instruction) error {
	if err := c.Regs.SetGPR(inst.Rd, inst.Address+4); err != nil {
		return err
	}
	c.Regs.SetPC(inst.Address + uint32(inst.Imm))
	return nil
}

// execJALR implements JALR rd, rs1, imm: target <- (rs1+imm) & ~1;
// rd <- PC+4; PC <- target. The link-register write happens after reading
// rs1, so "jalr rd, rd, imm" (rd aliasing rs1) is well defined.
func execJALR(c *CPU, inst *Instruction) error {
	rs1, err := c.Regs.GetGPR(inst.Rs1)
	if err != nil {
		return err
	}
	target := (rs1 + uint32(inst.Imm)) &^ 1
	if err := c.Regs.SetGPR(inst.Rd, inst.Address+4); err != nil {
		return err
	}
	c.Regs.SetPC(target)
	return nil
}
