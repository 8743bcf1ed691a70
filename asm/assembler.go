package asm

import (
	"fmt"
	"strings"
)

// instrSize returns the byte size a Line contributes to the image, without
// resolving any labels — needed in pass one to assign addresses.
func instrSize(line Line) (uint32, error) {
	if line.Directive != "" {
		switch line.Directive {
		case ".word":
			return uint32(len(line.DirArgs)) * 4, nil
		case ".byte":
			return uint32(len(line.DirArgs)), nil
		case ".ascii", ".asciz", ".string":
			if len(line.DirArgs) != 1 {
				return 0, fmt.Errorf("line %d: %s takes exactly one string argument", line.LineNo, line.Directive)
			}
			n := uint32(len(unquote(line.DirArgs[0])))
			if line.Directive != ".ascii" {
				n++ // trailing NUL
			}
			return n, nil
		case ".align":
			return 0, nil // handled specially during address assignment
		default:
			return 0, fmt.Errorf("line %d: unknown directive %s", line.LineNo, line.Directive)
		}
	}
	if line.Mnemonic == "" {
		return 0, nil
	}
	return 4, nil
}

func unquote(s string) string {
	s = strings.TrimPrefix(s, `"`)
	s = strings.TrimSuffix(s, `"`)
	return s
}

func alignUp(addr uint32, align uint32) uint32 {
	if align == 0 {
		return addr
	}
	rem := addr % align
	if rem == 0 {
		return addr
	}
	return addr + (align - rem)
}

// Result is the output of Assemble: the byte image plus the label table the
// debugger can load via Debugger.LoadSymbols.
type Result struct {
	Image   []byte
	Symbols map[string]uint32
}

// Assemble performs two-pass assembly of source starting at origin: pass one
// assigns addresses to every label, pass two encodes each line now that all
// labels are known (so backward AND forward branches/jumps resolve).
func Assemble(source string, origin uint32) (*Result, error) {
	tokens := NewLexer(source).Tokenize()
	lines, err := NewParser(tokens).ParseLines()
	if err != nil {
		return nil, err
	}

	symbols := NewSymbolTable()
	addr := origin
	lineAddrs := make([]uint32, len(lines))

	for i, line := range lines {
		if line.Directive == ".align" {
			if len(line.DirArgs) != 1 {
				return nil, fmt.Errorf("line %d: .align takes one argument", line.LineNo)
			}
			n, err := parseImmediate(line.DirArgs[0])
			if err != nil {
				return nil, err
			}
			addr = alignUp(addr, uint32(n))
		}

		if line.Label != "" {
			if err := symbols.Define(line.Label, addr); err != nil {
				return nil, fmt.Errorf("line %d: %w", line.LineNo, err)
			}
		}

		lineAddrs[i] = addr

		size, err := instrSize(line)
		if err != nil {
			return nil, err
		}
		addr += size
	}

	totalSize := addr - origin
	image := make([]byte, totalSize)

	for i, line := range lines {
		lineAddr := lineAddrs[i]
		offset := lineAddr - origin

		if line.Directive != "" {
			if err := encodeDirective(line, image, offset); err != nil {
				return nil, err
			}
			continue
		}
		if line.Mnemonic == "" {
			continue
		}

		word, err := encodeInstruction(line, lineAddr, symbols)
		if err != nil {
			return nil, err
		}
		putWordLE(image, offset, word)
	}

	return &Result{Image: image, Symbols: symbols.All()}, nil
}

func encodeDirective(line Line, image []byte, offset uint32) error {
	switch line.Directive {
	case ".word":
		for i, arg := range line.DirArgs {
			v, err := parseImmediate(arg)
			if err != nil {
				return fmt.Errorf("line %d: %w", line.LineNo, err)
			}
			putWordLE(image, offset+uint32(i*4), uint32(v))
		}
	case ".byte":
		for i, arg := range line.DirArgs {
			v, err := parseImmediate(arg)
			if err != nil {
				return fmt.Errorf("line %d: %w", line.LineNo, err)
			}
			image[offset+uint32(i)] = byte(v)
		}
	case ".ascii", ".asciz", ".string":
		s := unquote(line.DirArgs[0])
		copy(image[offset:], s)
	case ".align":
		// no bytes emitted; padding is implicit zero-fill from make([]byte, ...)
	default:
		return fmt.Errorf("line %d: unknown directive %s", line.LineNo, line.Directive)
	}
	return nil
}

func putWordLE(image []byte, offset uint32, word uint32) {
	if int(offset)+4 > len(image) {
		return
	}
	image[offset] = byte(word)
	image[offset+1] = byte(word >> 8)
	image[offset+2] = byte(word >> 16)
	image[offset+3] = byte(word >> 24)
}

// resolveOperandAddress resolves an operand that is either a label or a
// numeric literal to an absolute address.
func resolveOperandAddress(operand string, symbols *SymbolTable) (uint32, error) {
	if addr, ok := symbols.Resolve(operand); ok {
		return addr, nil
	}
	imm, err := parseImmediate(operand)
	if err != nil {
		return 0, fmt.Errorf("undefined symbol or invalid address: %s", operand)
	}
	return uint32(imm), nil
}

func encodeInstruction(line Line, addr uint32, symbols *SymbolTable) (uint32, error) {
	mnemonic := line.Mnemonic
	ops := line.Operands

	requireOps := func(n int) error {
		if len(ops) != n {
			return fmt.Errorf("line %d: %s expects %d operands, got %d", line.LineNo, mnemonic, n, len(ops))
		}
		return nil
	}

	switch mnemonic {
	case "add", "sub", "sll", "slt", "sltu", "xor", "srl", "sra", "or", "and":
		if err := requireOps(3); err != nil {
			return 0, err
		}
		rd, err := resolveRegister(ops[0])
		if err != nil {
			return 0, err
		}
		rs1, err := resolveRegister(ops[1])
		if err != nil {
			return 0, err
		}
		rs2, err := resolveRegister(ops[2])
		if err != nil {
			return 0, err
		}
		return encodeRType(mnemonic, rd, rs1, rs2), nil

	case "addi", "slti", "sltiu", "xori", "ori", "andi":
		if err := requireOps(3); err != nil {
			return 0, err
		}
		rd, err := resolveRegister(ops[0])
		if err != nil {
			return 0, err
		}
		rs1, err := resolveRegister(ops[1])
		if err != nil {
			return 0, err
		}
		imm, err := parseImmediate(ops[2])
		if err != nil {
			return 0, err
		}
		return encodeIType(mnemonic, rd, rs1, imm), nil

	case "slli", "srli", "srai":
		if err := requireOps(3); err != nil {
			return 0, err
		}
		rd, err := resolveRegister(ops[0])
		if err != nil {
			return 0, err
		}
		rs1, err := resolveRegister(ops[1])
		if err != nil {
			return 0, err
		}
		shamt, err := parseImmediate(ops[2])
		if err != nil {
			return 0, err
		}
		return encodeShiftImm(mnemonic, rd, rs1, uint32(shamt)), nil

	case "lb", "lh", "lw", "lbu", "lhu":
		if err := requireOps(2); err != nil {
			return 0, err
		}
		rd, err := resolveRegister(ops[0])
		if err != nil {
			return 0, err
		}
		imm, rs1, err := splitMemOperand(ops[1])
		if err != nil {
			return 0, err
		}
		return encodeLoad(mnemonic, rd, rs1, imm), nil

	case "sb", "sh", "sw":
		if err := requireOps(2); err != nil {
			return 0, err
		}
		rs2, err := resolveRegister(ops[0])
		if err != nil {
			return 0, err
		}
		imm, rs1, err := splitMemOperand(ops[1])
		if err != nil {
			return 0, err
		}
		return encodeStore(mnemonic, rs1, rs2, imm), nil

	case "beq", "bne", "blt", "bge", "bltu", "bgeu":
		if err := requireOps(3); err != nil {
			return 0, err
		}
		rs1, err := resolveRegister(ops[0])
		if err != nil {
			return 0, err
		}
		rs2, err := resolveRegister(ops[1])
		if err != nil {
			return 0, err
		}
		target, err := resolveOperandAddress(ops[2], symbols)
		if err != nil {
			return 0, err
		}
		return encodeBranch(mnemonic, rs1, rs2, int32(target-addr)), nil

	case "lui", "auipc":
		if err := requireOps(2); err != nil {
			return 0, err
		}
		rd, err := resolveRegister(ops[0])
		if err != nil {
			return 0, err
		}
		imm, err := parseImmediate(ops[1])
		if err != nil {
			return 0, err
		}
		opcode := uint32(opLUI)
		if mnemonic == "auipc" {
			opcode = opAUIPC
		}
		return encodeU(opcode, rd, imm<<12), nil

	case "jal":
		if err := requireOps(2); err != nil {
			return 0, err
		}
		rd, err := resolveRegister(ops[0])
		if err != nil {
			return 0, err
		}
		target, err := resolveOperandAddress(ops[1], symbols)
		if err != nil {
			return 0, err
		}
		return encodeJ(opJAL, rd, int32(target-addr)), nil

	case "jalr":
		if err := requireOps(2); err != nil {
			return 0, err
		}
		rd, err := resolveRegister(ops[0])
		if err != nil {
			return 0, err
		}
		imm, rs1, err := splitMemOperand(ops[1])
		if err != nil {
			return 0, err
		}
		return encodeI(opJALR, 0, rd, rs1, imm), nil

	case "ecall":
		return encodeSystem(opSystem, f3PRIV, 0, 0, immECALL), nil
	case "ebreak":
		return encodeSystem(opSystem, f3PRIV, 0, 0, immEBREAK), nil
	case "fence":
		return uint32(opFence), nil

	case "csrrw", "csrrs", "csrrc":
		if err := requireOps(3); err != nil {
			return 0, err
		}
		rd, err := resolveRegister(ops[0])
		if err != nil {
			return 0, err
		}
		csr, err := parseImmediate(ops[1])
		if err != nil {
			return 0, err
		}
		rs1, err := resolveRegister(ops[2])
		if err != nil {
			return 0, err
		}
		return encodeSystem(opSystem, csrFunct3(mnemonic), rd, rs1, uint32(csr)), nil

	case "csrrwi", "csrrsi", "csrrci":
		if err := requireOps(3); err != nil {
			return 0, err
		}
		rd, err := resolveRegister(ops[0])
		if err != nil {
			return 0, err
		}
		csr, err := parseImmediate(ops[1])
		if err != nil {
			return 0, err
		}
		zimm, err := parseImmediate(ops[2])
		if err != nil {
			return 0, err
		}
		return encodeSystem(opSystem, csrFunct3(mnemonic), rd, int(zimm), uint32(csr)), nil

	case "nop":
		return encodeIType("addi", 0, 0, 0), nil

	default:
		return 0, fmt.Errorf("line %d: unknown mnemonic %s", line.LineNo, mnemonic)
	}
}

func csrFunct3(mnemonic string) uint32 {
	switch mnemonic {
	case "csrrw":
		return f3CSRRW
	case "csrrs":
		return f3CSRRS
	case "csrrc":
		return f3CSRRC
	case "csrrwi":
		return f3CSRRWI
	case "csrrsi":
		return f3CSRRSI
	case "csrrci":
		return f3CSRRCI
	default:
		return 0
	}
}

func encodeRType(mnemonic string, rd, rs1, rs2 int) uint32 {
	switch mnemonic {
	case "add":
		return encodeR(opReg, f3ADD_SUB, funct7Default, rd, rs1, rs2)
	case "sub":
		return encodeR(opReg, f3ADD_SUB, funct7Alt, rd, rs1, rs2)
	case "sll":
		return encodeR(opReg, f3SLL, funct7Default, rd, rs1, rs2)
	case "slt":
		return encodeR(opReg, f3SLT, funct7Default, rd, rs1, rs2)
	case "sltu":
		return encodeR(opReg, f3SLTU, funct7Default, rd, rs1, rs2)
	case "xor":
		return encodeR(opReg, f3XOR, funct7Default, rd, rs1, rs2)
	case "srl":
		return encodeR(opReg, f3SRL_SRA, funct7Default, rd, rs1, rs2)
	case "sra":
		return encodeR(opReg, f3SRL_SRA, funct7Alt, rd, rs1, rs2)
	case "or":
		return encodeR(opReg, f3OR, funct7Default, rd, rs1, rs2)
	case "and":
		return encodeR(opReg, f3AND, funct7Default, rd, rs1, rs2)
	}
	return 0
}

func encodeIType(mnemonic string, rd, rs1 int, imm int32) uint32 {
	switch mnemonic {
	case "addi":
		return encodeI(opImm, f3ADD_SUB, rd, rs1, imm)
	case "slti":
		return encodeI(opImm, f3SLT, rd, rs1, imm)
	case "sltiu":
		return encodeI(opImm, f3SLTU, rd, rs1, imm)
	case "xori":
		return encodeI(opImm, f3XOR, rd, rs1, imm)
	case "ori":
		return encodeI(opImm, f3OR, rd, rs1, imm)
	case "andi":
		return encodeI(opImm, f3AND, rd, rs1, imm)
	}
	return 0
}

func encodeShiftImm(mnemonic string, rd, rs1 int, shamt uint32) uint32 {
	switch mnemonic {
	case "slli":
		return encodeIShift(opImm, f3SLL, funct7Default, rd, rs1, shamt)
	case "srli":
		return encodeIShift(opImm, f3SRL_SRA, funct7Default, rd, rs1, shamt)
	case "srai":
		return encodeIShift(opImm, f3SRL_SRA, funct7Alt, rd, rs1, shamt)
	}
	return 0
}

func encodeLoad(mnemonic string, rd, rs1 int, imm int32) uint32 {
	switch mnemonic {
	case "lb":
		return encodeI(opLoad, f3LB, rd, rs1, imm)
	case "lh":
		return encodeI(opLoad, f3LH, rd, rs1, imm)
	case "lw":
		return encodeI(opLoad, f3LW, rd, rs1, imm)
	case "lbu":
		return encodeI(opLoad, f3LBU, rd, rs1, imm)
	case "lhu":
		return encodeI(opLoad, f3LHU, rd, rs1, imm)
	}
	return 0
}

func encodeStore(mnemonic string, rs1, rs2 int, imm int32) uint32 {
	switch mnemonic {
	case "sb":
		return encodeS(opStore, f3SB, rs1, rs2, imm)
	case "sh":
		return encodeS(opStore, f3SH, rs1, rs2, imm)
	case "sw":
		return encodeS(opStore, f3SW, rs1, rs2, imm)
	}
	return 0
}

func encodeBranch(mnemonic string, rs1, rs2 int, imm int32) uint32 {
	switch mnemonic {
	case "beq":
		return encodeB(opBranch, f3BEQ, rs1, rs2, imm)
	case "bne":
		return encodeB(opBranch, f3BNE, rs1, rs2, imm)
	case "blt":
		return encodeB(opBranch, f3BLT, rs1, rs2, imm)
	case "bge":
		return encodeB(opBranch, f3BGE, rs1, rs2, imm)
	case "bltu":
		return encodeB(opBranch, f3BLTU, rs1, rs2, imm)
	case "bgeu":
		return encodeB(opBranch, f3BGEU, rs1, rs2, imm)
	}
	return 0
}
