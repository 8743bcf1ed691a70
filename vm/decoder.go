package vm

// Decoder is a pure function from a 32-bit instruction word to a typed
// Instruction. It never touches Registers or Memory, so it may be called
// concurrently (spec.md §5), though the CPU driver never does.
type Decoder struct{}

// NewDecoder returns a Decoder. It carries no state.
func NewDecoder() *Decoder {
	return &Decoder{}
}

func signExtend(value uint32, bits uint) int32 {
	shift := 32 - bits
	return int32(value<<shift) >> shift
}

func iImmediate(word uint32) int32 {
	return signExtend(word>>20, 12)
}

func sImmediate(word uint32) int32 {
	imm := ((word >> 25) << 5) | ((word >> 7) & 0x1F)
	return signExtend(imm, 12)
}

func bImmediate(word uint32) int32 {
	imm := (((word >> 31) & 0x1) << 12) |
		(((word >> 7) & 0x1) << 11) |
		(((word >> 25) & 0x3F) << 5) |
		(((word >> 8) & 0xF) << 1)
	return signExtend(imm, 13)
}

func uImmediate(word uint32) int32 {
	return int32(word & 0xFFFFF000)
}

func jImmediate(word uint32) int32 {
	imm := (((word >> 31) & 0x1) << 20) |
		(((word >> 12) & 0xFF) << 12) |
		(((word >> 20) & 0x1) << 11) |
		(((word >> 21) & 0x3FF) << 1)
	return signExtend(imm, 21)
}

// Decode decodes a 32-bit instruction word into an Instruction. It returns
// (nil, nil) for "undecoded" — any opcode/funct combination not named by
// spec.md §4.3 — rather than an error, so that the CPU driver is the single
// place that turns "undecoded" into an illegal-instruction fault.
func (d *Decoder) Decode(word uint32) (*Instruction, error) {
	opcode := word & 0x7F
	rd := int((word >> 7) & 0x1F)
	funct3 := (word >> 12) & 0x7
	rs1 := int((word >> 15) & 0x1F)
	rs2 := int((word >> 20) & 0x1F)
	funct7 := (word >> 25) & 0x7F

	inst := &Instruction{Word: word, Rd: rd, Rs1: rs1, Rs2: rs2}

	switch opcode {
	case opLUI:
		inst.Kind = KindLUI
		inst.Imm = uImmediate(word)
		return inst, nil

	case opAUIPC:
		inst.Kind = KindAUIPC
		inst.Imm = uImmediate(word)
		return inst, nil

	case opJAL:
		inst.Kind = KindJAL
		inst.Imm = jImmediate(word)
		return inst, nil

	case opJALR:
		if funct3 != 0 {
			return nil, nil
		}
		inst.Kind = KindJALR
		inst.Imm = iImmediate(word)
		return inst, nil

	case opBranch:
		switch funct3 {
		case f3BEQ:
			inst.Kind = KindBEQ
		case f3BNE:
			inst.Kind = KindBNE
		case f3BLT:
			inst.Kind = KindBLT
		case f3BGE:
			inst.Kind = KindBGE
		case f3BLTU:
			inst.Kind = KindBLTU
		case f3BGEU:
			inst.Kind = KindBGEU
		default:
			return nil, nil
		}
		inst.Imm = bImmediate(word)
		return inst, nil

	case opLoad:
		switch funct3 {
		case f3LB:
			inst.Kind = KindLB
		case f3LH:
			inst.Kind = KindLH
		case f3LW:
			inst.Kind = KindLW
		case f3LBU:
			inst.Kind = KindLBU
		case f3LHU:
			inst.Kind = KindLHU
		default:
			return nil, nil
		}
		inst.Imm = iImmediate(word)
		return inst, nil

	case opStore:
		switch funct3 {
		case f3SB:
			inst.Kind = KindSB
		case f3SH:
			inst.Kind = KindSH
		case f3SW:
			inst.Kind = KindSW
		default:
			return nil, nil
		}
		inst.Imm = sImmediate(word)
		return inst, nil

	case opImm:
		inst.Imm = iImmediate(word)
		switch funct3 {
		case f3ADD_SUB:
			inst.Kind = KindADDI
		case f3SLT:
			inst.Kind = KindSLTI
		case f3SLTU:
			inst.Kind = KindSLTIU
		case f3XOR:
			inst.Kind = KindXORI
		case f3OR:
			inst.Kind = KindORI
		case f3AND:
			inst.Kind = KindANDI
		case f3SLL:
			if funct7 != funct7Default {
				return nil, nil
			}
			inst.Kind = KindSLLI
			inst.Shamt = uint32(word>>20) & 0x1F
		case f3SRL_SRA:
			inst.Shamt = uint32(word>>20) & 0x1F
			switch funct7 {
			case funct7Default:
				inst.Kind = KindSRLI
			case funct7Alt:
				inst.Kind = KindSRAI
			default:
				return nil, nil
			}
		default:
			return nil, nil
		}
		return inst, nil

	case opReg:
		switch funct3 {
		case f3ADD_SUB:
			switch funct7 {
			case funct7Default:
				inst.Kind = KindADD
			case funct7Alt:
				inst.Kind = KindSUB
			default:
				return nil, nil
			}
		case f3SLL:
			if funct7 != funct7Default {
				return nil, nil
			}
			inst.Kind = KindSLL
		case f3SLT:
			if funct7 != funct7Default {
				return nil, nil
			}
			inst.Kind = KindSLT
		case f3SLTU:
			if funct7 != funct7Default {
				return nil, nil
			}
			inst.Kind = KindSLTU
		case f3XOR:
			if funct7 != funct7Default {
				return nil, nil
			}
			inst.Kind = KindXOR
		case f3SRL_SRA:
			switch funct7 {
			case funct7Default:
				inst.Kind = KindSRL
			case funct7Alt:
				inst.Kind = KindSRA
			default:
				return nil, nil
			}
		case f3OR:
			if funct7 != funct7Default {
				return nil, nil
			}
			inst.Kind = KindOR
		case f3AND:
			if funct7 != funct7Default {
				return nil, nil
			}
			inst.Kind = KindAND
		default:
			return nil, nil
		}
		return inst, nil

	case opSystem:
		switch funct3 {
		case f3PRIV:
			imm := word >> 20
			switch imm {
			case immECALL:
				inst.Kind = KindECALL
			case immEBREAK:
				inst.Kind = KindEBREAK
			default:
				return nil, nil
			}
			return inst, nil
		case f3CSRRW:
			inst.Kind = KindCSRRW
		case f3CSRRS:
			inst.Kind = KindCSRRS
		case f3CSRRC:
			inst.Kind = KindCSRRC
		case f3CSRRWI:
			inst.Kind = KindCSRRWI
			inst.Zimm = uint32(rs1)
		case f3CSRRSI:
			inst.Kind = KindCSRRSI
			inst.Zimm = uint32(rs1)
		case f3CSRRCI:
			inst.Kind = KindCSRRCI
			inst.Zimm = uint32(rs1)
		default:
			return nil, nil
		}
		inst.Csr = int(word >> 20)
		return inst, nil

	case opFence:
		inst.Kind = KindFENCE
		return inst, nil

	default:
		return nil, nil
	}
}
