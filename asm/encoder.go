package asm

import (
	"fmt"
	"strconv"
	"strings"
)

// Base opcode values, mirroring vm/opcodes.go's field layout so this
// encoder and vm/decoder.go's Decode are exact round-trip inverses of each
// other. Kept as a separate table rather than importing vm's unexported
// constants: the encoder and decoder are independent checks on each other.
const (
	opLUI    = 0x37
	opAUIPC  = 0x17
	opJAL    = 0x6F
	opJALR   = 0x67
	opBranch = 0x63
	opLoad   = 0x03
	opStore  = 0x23
	opImm    = 0x13
	opReg    = 0x33
	opSystem = 0x73
	opFence  = 0x0F
)

const (
	f3BEQ  = 0x0
	f3BNE  = 0x1
	f3BLT  = 0x4
	f3BGE  = 0x5
	f3BLTU = 0x6
	f3BGEU = 0x7
)

const (
	f3LB  = 0x0
	f3LH  = 0x1
	f3LW  = 0x2
	f3LBU = 0x4
	f3LHU = 0x5
)

const (
	f3SB = 0x0
	f3SH = 0x1
	f3SW = 0x2
)

const (
	f3ADD_SUB = 0x0
	f3SLL     = 0x1
	f3SLT     = 0x2
	f3SLTU    = 0x3
	f3XOR     = 0x4
	f3SRL_SRA = 0x5
	f3OR      = 0x6
	f3AND     = 0x7
)

const (
	funct7Default = 0x00
	funct7Alt     = 0x20
)

const (
	f3PRIV   = 0x0
	f3CSRRW  = 0x1
	f3CSRRS  = 0x2
	f3CSRRC  = 0x3
	f3CSRRWI = 0x5
	f3CSRRSI = 0x6
	f3CSRRCI = 0x7
)

const (
	immECALL  = 0x000
	immEBREAK = 0x001
)

var abiRegisterNames = map[string]int{
	"zero": 0, "ra": 1, "sp": 2, "gp": 3, "tp": 4,
	"t0": 5, "t1": 6, "t2": 7,
	"s0": 8, "fp": 8, "s1": 9,
	"a0": 10, "a1": 11, "a2": 12, "a3": 13, "a4": 14, "a5": 15, "a6": 16, "a7": 17,
	"s2": 18, "s3": 19, "s4": 20, "s5": 21, "s6": 22, "s7": 23, "s8": 24, "s9": 25, "s10": 26, "s11": 27,
	"t3": 28, "t4": 29, "t5": 30, "t6": 31,
}

// resolveRegister resolves x0-x31 or an ABI name to a register number.
func resolveRegister(s string) (int, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if num, ok := abiRegisterNames[s]; ok {
		return num, nil
	}
	if strings.HasPrefix(s, "x") {
		if n, err := strconv.Atoi(s[1:]); err == nil && n >= 0 && n <= 31 {
			return n, nil
		}
	}
	return 0, fmt.Errorf("invalid register: %s", s)
}

// parseImmediate parses a decimal/hex/binary integer literal.
func parseImmediate(s string) (int32, error) {
	s = strings.TrimSpace(s)
	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}

	var val uint64
	var err error
	lower := strings.ToLower(s)
	switch {
	case strings.HasPrefix(lower, "0x"):
		val, err = strconv.ParseUint(s[2:], 16, 32)
	case strings.HasPrefix(lower, "0b"):
		val, err = strconv.ParseUint(s[2:], 2, 32)
	default:
		val, err = strconv.ParseUint(s, 10, 32)
	}
	if err != nil {
		return 0, fmt.Errorf("invalid immediate: %s", s)
	}

	result := int32(val)
	if neg {
		result = -result
	}
	return result, nil
}

// splitMemOperand splits an "imm(reg)" operand into its immediate and
// register parts.
func splitMemOperand(s string) (imm int32, reg int, err error) {
	open := strings.Index(s, "(")
	closeIdx := strings.Index(s, ")")
	if open < 0 || closeIdx < 0 || closeIdx < open {
		return 0, 0, fmt.Errorf("expected imm(reg) operand, got %q", s)
	}

	immStr := strings.TrimSpace(s[:open])
	if immStr == "" {
		imm = 0
	} else {
		imm, err = parseImmediate(immStr)
		if err != nil {
			return 0, 0, err
		}
	}

	reg, err = resolveRegister(s[open+1 : closeIdx])
	if err != nil {
		return 0, 0, err
	}
	return imm, reg, nil
}

func encodeR(opcode, funct3, funct7 uint32, rd, rs1, rs2 int) uint32 {
	return funct7<<25 | uint32(rs2)<<20 | uint32(rs1)<<15 | funct3<<12 | uint32(rd)<<7 | opcode
}

func encodeI(opcode, funct3 uint32, rd, rs1 int, imm int32) uint32 {
	return (uint32(imm)&0xFFF)<<20 | uint32(rs1)<<15 | funct3<<12 | uint32(rd)<<7 | opcode
}

func encodeIShift(opcode, funct3, funct7 uint32, rd, rs1 int, shamt uint32) uint32 {
	return funct7<<25 | (shamt&0x1F)<<20 | uint32(rs1)<<15 | funct3<<12 | uint32(rd)<<7 | opcode
}

func encodeS(opcode, funct3 uint32, rs1, rs2 int, imm int32) uint32 {
	u := uint32(imm)
	imm11_5 := (u >> 5) & 0x7F
	imm4_0 := u & 0x1F
	return imm11_5<<25 | uint32(rs2)<<20 | uint32(rs1)<<15 | funct3<<12 | imm4_0<<7 | opcode
}

func encodeB(opcode, funct3 uint32, rs1, rs2 int, imm int32) uint32 {
	u := uint32(imm)
	bit12 := (u >> 12) & 0x1
	bit11 := (u >> 11) & 0x1
	bits10_5 := (u >> 5) & 0x3F
	bits4_1 := (u >> 1) & 0xF
	return bit12<<31 | bits10_5<<25 | uint32(rs2)<<20 | uint32(rs1)<<15 | funct3<<12 | bits4_1<<8 | bit11<<7 | opcode
}

func encodeU(opcode uint32, rd int, imm int32) uint32 {
	return (uint32(imm) & 0xFFFFF000) | uint32(rd)<<7 | opcode
}

func encodeJ(opcode uint32, rd int, imm int32) uint32 {
	u := uint32(imm)
	bit20 := (u >> 20) & 0x1
	bits10_1 := (u >> 1) & 0x3FF
	bit11 := (u >> 11) & 0x1
	bits19_12 := (u >> 12) & 0xFF
	return bit20<<31 | bits10_1<<21 | bit11<<20 | bits19_12<<12 | uint32(rd)<<7 | opcode
}

func encodeSystem(opcode, funct3 uint32, rd, rs1 int, csr uint32) uint32 {
	return csr<<20 | uint32(rs1)<<15 | funct3<<12 | uint32(rd)<<7 | opcode
}
