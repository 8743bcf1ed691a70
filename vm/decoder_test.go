package vm_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rv32iemu/vm"
)

func TestDecoder_LUI(t *testing.T) {
	d := vm.NewDecoder()
	// lui x1, 0x12345
	word := uint32(0x12345037) | uint32(1)<<7
	inst, err := d.Decode(word)
	require.NoError(t, err)
	require.NotNil(t, inst)
	assert.Equal(t, vm.KindLUI, inst.Kind)
	assert.Equal(t, 1, inst.Rd)
	assert.Equal(t, int32(0x12345000), inst.Imm)
}

func TestDecoder_ADDI(t *testing.T) {
	d := vm.NewDecoder()
	// addi x1, x1, 0x678
	word := encodeI(0x678, 1, 0x0, 1, 0x13)
	inst, err := d.Decode(word)
	require.NoError(t, err)
	require.NotNil(t, inst)
	assert.Equal(t, vm.KindADDI, inst.Kind)
	assert.Equal(t, 1, inst.Rd)
	assert.Equal(t, 1, inst.Rs1)
	assert.Equal(t, int32(0x678), inst.Imm)
}

func TestDecoder_ADDINegativeImmediate(t *testing.T) {
	d := vm.NewDecoder()
	word := encodeI(-4, 1, 0x0, 2, 0x13)
	inst, err := d.Decode(word)
	require.NoError(t, err)
	assert.Equal(t, int32(-4), inst.Imm)
}

func TestDecoder_SRLIvsSRAI(t *testing.T) {
	d := vm.NewDecoder()

	srli := encodeRType(0x00, 0, 1, 0x5, 1, 0x13) | (5 << 20)
	inst, err := d.Decode(srli)
	require.NoError(t, err)
	assert.Equal(t, vm.KindSRLI, inst.Kind)
	assert.Equal(t, uint32(5), inst.Shamt)

	srai := encodeRType(0x20, 0, 1, 0x5, 1, 0x13) | (5 << 20)
	inst, err = d.Decode(srai)
	require.NoError(t, err)
	assert.Equal(t, vm.KindSRAI, inst.Kind)
	assert.Equal(t, uint32(5), inst.Shamt)
}

func TestDecoder_RType(t *testing.T) {
	d := vm.NewDecoder()

	cases := []struct {
		name    string
		funct7  uint32
		funct3  uint32
		want    vm.Kind
	}{
		{"add", 0x00, 0x0, vm.KindADD},
		{"sub", 0x20, 0x0, vm.KindSUB},
		{"sll", 0x00, 0x1, vm.KindSLL},
		{"slt", 0x00, 0x2, vm.KindSLT},
		{"sltu", 0x00, 0x3, vm.KindSLTU},
		{"xor", 0x00, 0x4, vm.KindXOR},
		{"srl", 0x00, 0x5, vm.KindSRL},
		{"sra", 0x20, 0x5, vm.KindSRA},
		{"or", 0x00, 0x6, vm.KindOR},
		{"and", 0x00, 0x7, vm.KindAND},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			word := encodeRType(c.funct7, 3, 1, c.funct3, 2, 0x33)
			inst, err := d.Decode(word)
			require.NoError(t, err)
			require.NotNil(t, inst)
			assert.Equal(t, c.want, inst.Kind)
			assert.Equal(t, 1, inst.Rs1)
			assert.Equal(t, 3, inst.Rs2)
			assert.Equal(t, 2, inst.Rd)
		})
	}
}

func TestDecoder_Branches(t *testing.T) {
	d := vm.NewDecoder()

	cases := []struct {
		name   string
		funct3 uint32
		want   vm.Kind
	}{
		{"beq", 0x0, vm.KindBEQ},
		{"bne", 0x1, vm.KindBNE},
		{"blt", 0x4, vm.KindBLT},
		{"bge", 0x5, vm.KindBGE},
		{"bltu", 0x6, vm.KindBLTU},
		{"bgeu", 0x7, vm.KindBGEU},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			word := encodeB(-4, 2, 1, c.funct3)
			inst, err := d.Decode(word)
			require.NoError(t, err)
			require.NotNil(t, inst)
			assert.Equal(t, c.want, inst.Kind)
			assert.Equal(t, int32(-4), inst.Imm)
		})
	}
}

func TestDecoder_JAL(t *testing.T) {
	d := vm.NewDecoder()
	word := encodeJ(8, 1)
	inst, err := d.Decode(word)
	require.NoError(t, err)
	assert.Equal(t, vm.KindJAL, inst.Kind)
	assert.Equal(t, int32(8), inst.Imm)
	assert.Equal(t, 1, inst.Rd)
}

func TestDecoder_UndecodedReturnsNil(t *testing.T) {
	d := vm.NewDecoder()
	// opcode 0x7F is not in the dispatch table.
	inst, err := d.Decode(0x7F)
	require.NoError(t, err)
	assert.Nil(t, inst)
}

func TestDecoder_CSR(t *testing.T) {
	d := vm.NewDecoder()
	// csrrs x2, 0x305, x1
	word := encodeI(0x305, 1, 0x2, 2, 0x73)
	inst, err := d.Decode(word)
	require.NoError(t, err)
	assert.Equal(t, vm.KindCSRRS, inst.Kind)
	assert.Equal(t, 0x305, inst.Csr)
	assert.Equal(t, 1, inst.Rs1)
	assert.Equal(t, 2, inst.Rd)
}

func TestDecoder_ECALLvsEBREAK(t *testing.T) {
	d := vm.NewDecoder()

	ecall, err := d.Decode(encodeI(0x000, 0, 0x0, 0, 0x73))
	require.NoError(t, err)
	assert.Equal(t, vm.KindECALL, ecall.Kind)

	ebreak, err := d.Decode(encodeI(0x001, 0, 0x0, 0, 0x73))
	require.NoError(t, err)
	assert.Equal(t, vm.KindEBREAK, ebreak.Kind)
}

// --- small test-local encoders, mirroring vm/decoder.go's field layout ---

func encodeI(imm int32, rs1 int, funct3 uint32, rd int, opcode uint32) uint32 {
	return (uint32(imm)<<20)&0xFFF00000 | uint32(rs1)<<15 | funct3<<12 | uint32(rd)<<7 | opcode
}

func encodeRType(funct7 uint32, rs2, rs1 int, funct3 uint32, rd int, opcode uint32) uint32 {
	return funct7<<25 | uint32(rs2)<<20 | uint32(rs1)<<15 | funct3<<12 | uint32(rd)<<7 | opcode
}

func encodeB(imm int32, rs2, rs1 int, funct3 uint32) uint32 {
	u := uint32(imm)
	bit12 := (u >> 12) & 1
	bit11 := (u >> 11) & 1
	bits10_5 := (u >> 5) & 0x3F
	bits4_1 := (u >> 1) & 0xF
	return bit12<<31 | bits10_5<<25 | uint32(rs2)<<20 | uint32(rs1)<<15 |
		funct3<<12 | bits4_1<<8 | bit11<<7 | 0x63
}

func encodeJ(imm int32, rd int) uint32 {
	u := uint32(imm)
	bit20 := (u >> 20) & 1
	bits10_1 := (u >> 1) & 0x3FF
	bit11 := (u >> 11) & 1
	bits19_12 := (u >> 12) & 0xFF
	return bit20<<31 | bits10_1<<21 | bit11<<20 | bits19_12<<12 | uint32(rd)<<7 | 0x6F
}
