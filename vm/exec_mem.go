package vm

// execLoad implements LB/LH/LW/LBU/LHU, spec.md §4.4.4. The effective
// address is rs1 + imm (signed); the result is written to rd sign- or
// zero-extended according to the variant.
func execLoad(c *CPU, inst *Instruction) error {
	rs1, err := c.Regs.GetGPR(inst.Rs1)
	if err != nil {
		return err
	}
	ea := rs1 + uint32(inst.Imm)

	var result uint32
	switch inst.Kind {
	case KindLB:
		v, err := c.Mem.LoadByte(ea)
		if err != nil {
			return err
		}
		result = uint32(v)
	case KindLBU:
		v, err := c.Mem.LoadByteU(ea)
		if err != nil {
			return err
		}
		result = v
	case KindLH:
		v, err := c.Mem.LoadHalf(ea)
		if err != nil {
			return err
		}
		result = uint32(v)
	case KindLHU:
		v, err := c.Mem.LoadHalfU(ea)
		if err != nil {
			return err
		}
		result = v
	case KindLW:
		v, err := c.Mem.ReadWord(ea)
		if err != nil {
			return err
		}
		result = v
	default:
		return unreachableKind(inst.Kind)
	}
	return c.Regs.SetGPR(inst.Rd, result)
}

// execStore implements SB/SH/SW, spec.md §4.4.5. The effective address is
// rs1 + imm; the low 8/16/32 bits of rs2 are stored there. Storage happens
// at rs1+offset, not at rs1 alone (spec.md §9 item 4 rejects the source's
// inconsistent baseAddr-only behavior).
func execStore(c *CPU, inst *Instruction) error {
	rs1, err := c.Regs.GetGPR(inst.Rs1)
	if err != nil {
		return err
	}
	rs2, err := c.Regs.GetGPR(inst.Rs2)
	if err != nil {
		return err
	}
	ea := rs1 + uint32(inst.Imm)

	switch inst.Kind {
	case KindSB:
		return c.Mem.StoreByte(ea, int32(int8(rs2)))
	case KindSH:
		return c.Mem.StoreHalf(ea, int32(int16(rs2)))
	case KindSW:
		return c.Mem.StoreWord(ea, rs2)
	default:
		return unreachableKind(inst.Kind)
	}
}
