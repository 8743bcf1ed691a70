package vm

// execECALL and execEBREAK implement the two architectural halt signals
// (spec.md §4.4.7). They return a *HaltSignal rather than mutating state
// further; the CPU driver recognizes it and transitions to Halted instead
// of Faulted.
func execECALL(c *CPU, inst *Instruction) error {
	return &HaltSignal{Kind: HaltEcall, PC: inst.Address}
}

func execEBREAK(c *CPU, inst *Instruction) error {
	return &HaltSignal{Kind: HaltEbreak, PC: inst.Address}
}

// execFENCE is a no-op: this is a single-hart, in-order interpreter with no
// observable memory-ordering effects to enforce (spec.md §4.4.7).
func execFENCE(c *CPU, inst *Instruction) error {
	return nil
}

// execCSR implements the Zicsr read-modify-write instructions, spec.md
// §4.4.8. The CSR is always read into t before any write, so aliasing
// between rd, rs1, and the csr address is safe (spec.md §8, CSR alias
// safety invariant).
func execCSR(c *CPU, inst *Instruction) error {
	t, err := c.Regs.GetCSR(inst.Csr)
	if err != nil {
		return err
	}

	switch inst.Kind {
	case KindCSRRW:
		rs1, err := c.Regs.GetGPR(inst.Rs1)
		if err != nil {
			return err
		}
		if err := c.Regs.SetCSR(inst.Csr, rs1); err != nil {
			return err
		}
	case KindCSRRS:
		rs1, err := c.Regs.GetGPR(inst.Rs1)
		if err != nil {
			return err
		}
		if inst.Rs1 != 0 {
			if err := c.Regs.SetCSR(inst.Csr, t|rs1); err != nil {
				return err
			}
		}
	case KindCSRRC:
		rs1, err := c.Regs.GetGPR(inst.Rs1)
		if err != nil {
			return err
		}
		if inst.Rs1 != 0 {
			if err := c.Regs.SetCSR(inst.Csr, t&^rs1); err != nil {
				return err
			}
		}
	case KindCSRRWI:
		if err := c.Regs.SetCSR(inst.Csr, inst.Zimm); err != nil {
			return err
		}
	case KindCSRRSI:
		if inst.Zimm != 0 {
			if err := c.Regs.SetCSR(inst.Csr, t|inst.Zimm); err != nil {
				return err
			}
		}
	case KindCSRRCI:
		if inst.Zimm != 0 {
			if err := c.Regs.SetCSR(inst.Csr, t&^inst.Zimm); err != nil {
				return err
			}
		}
	default:
		return unreachableKind(inst.Kind)
	}

	return c.Regs.SetGPR(inst.Rd, t)
}
