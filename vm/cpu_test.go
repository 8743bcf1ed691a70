package vm_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rv32iemu/vm"
)

func newTestCPU(t *testing.T) *vm.CPU {
	t.Helper()
	return vm.NewCPU(vm.NewMemory(0x1000), vm.NewRegisters(), vm.NewDecoder())
}

func mustGPR(t *testing.T, c *vm.CPU, i int) uint32 {
	t.Helper()
	v, err := c.Regs.GetGPR(i)
	require.NoError(t, err)
	return v
}

// scenario 1: LUI + ADDI builds a 32-bit constant.
func TestScenario_LUI_ADDI_BuildsConstant(t *testing.T) {
	c := newTestCPU(t)

	require.NoError(t, c.Mem.StoreWord(0, encodeI(0, 0, 0, 1, 0x37)|uint32(0x12345)<<12)) // lui x1, 0x12345
	require.NoError(t, c.Mem.StoreWord(4, encodeI(0x678, 1, 0x0, 1, 0x13)))                // addi x1, x1, 0x678

	require.NoError(t, c.Step())
	require.NoError(t, c.Step())

	assert.Equal(t, uint32(0x12345678), mustGPR(t, c, 1))
	assert.Equal(t, uint32(8), c.Regs.GetPC())
}

// scenario 2: AUIPC at PC=0x100.
func TestScenario_AUIPC(t *testing.T) {
	c := newTestCPU(t)
	c.Regs.SetPC(0x100)

	require.NoError(t, c.Mem.StoreWord(0x100, uint32(0x12345)<<12|1<<7|0x17)) // auipc x1, 0x12345
	require.NoError(t, c.Step())

	assert.Equal(t, uint32(0x12345100), mustGPR(t, c, 1))
	assert.Equal(t, uint32(0x104), c.Regs.GetPC())
}

// scenario 3: signed vs unsigned compare.
func TestScenario_SignedVsUnsignedCompare(t *testing.T) {
	c := newTestCPU(t)
	require.NoError(t, c.Regs.SetGPR(1, uint32(int32(-1))))
	require.NoError(t, c.Regs.SetGPR(2, 5))

	require.NoError(t, c.Mem.StoreWord(0, encodeRType(0x00, 2, 1, 0x2, 3, 0x33))) // slt x3, x1, x2
	require.NoError(t, c.Mem.StoreWord(4, encodeRType(0x00, 2, 1, 0x3, 4, 0x33))) // sltu x4, x1, x2

	require.NoError(t, c.Step())
	require.NoError(t, c.Step())

	assert.Equal(t, uint32(1), mustGPR(t, c, 3))
	assert.Equal(t, uint32(0), mustGPR(t, c, 4))
}

// scenario 4: branch taken with negative offset.
func TestScenario_BranchTakenNegativeOffset(t *testing.T) {
	c := newTestCPU(t)
	c.Regs.SetPC(10)
	require.NoError(t, c.Regs.SetGPR(1, 1))
	require.NoError(t, c.Regs.SetGPR(2, 2))

	require.NoError(t, c.Mem.StoreWord(10, encodeB(-4, 2, 1, 0x4))) // blt x1, x2, -4

	require.NoError(t, c.Step())
	assert.Equal(t, uint32(6), c.Regs.GetPC())
}

// scenario 5: JAL then RET via JALR.
func TestScenario_JAL_JALR(t *testing.T) {
	c := newTestCPU(t)
	c.Regs.SetPC(0x80)

	require.NoError(t, c.Mem.StoreWord(0x80, encodeJ(8, 1))) // jal x1, 8
	require.NoError(t, c.Step())
	assert.Equal(t, uint32(0x84), mustGPR(t, c, 1))
	assert.Equal(t, uint32(0x88), c.Regs.GetPC())

	c.Regs.SetPC(0x100)
	require.NoError(t, c.Regs.SetGPR(1, 0x84))
	require.NoError(t, c.Mem.StoreWord(0x100, encodeI(0, 1, 0x0, 0, 0x67))) // jalr x0, x1, 0
	require.NoError(t, c.Step())
	assert.Equal(t, uint32(0x84), c.Regs.GetPC())
}

// scenario 6: CSRRS read-and-set.
func TestScenario_CSRRS(t *testing.T) {
	c := newTestCPU(t)
	require.NoError(t, c.Regs.SetCSR(0x305, 0x55))
	require.NoError(t, c.Regs.SetGPR(1, 0xAA))

	require.NoError(t, c.Mem.StoreWord(0, encodeI(0x305, 1, 0x2, 2, 0x73))) // csrrs x2, 0x305, x1
	require.NoError(t, c.Step())

	assert.Equal(t, uint32(0x55), mustGPR(t, c, 2))
	csr, err := c.Regs.GetCSR(0x305)
	require.NoError(t, err)
	assert.Equal(t, uint32(0xFF), csr)
}

func TestScenario_CSRRS_X0SourceLeavesCSRUnchanged(t *testing.T) {
	c := newTestCPU(t)
	require.NoError(t, c.Regs.SetCSR(0x305, 0x55))

	require.NoError(t, c.Mem.StoreWord(0, encodeI(0x305, 0, 0x2, 2, 0x73))) // csrrs x2, 0x305, x0
	require.NoError(t, c.Step())

	assert.Equal(t, uint32(0x55), mustGPR(t, c, 2))
	csr, err := c.Regs.GetCSR(0x305)
	require.NoError(t, err)
	assert.Equal(t, uint32(0x55), csr)
}

// CSR alias safety (spec.md §8): CSRRW rd,csr,rs1 reads the CSR into rd
// before writing rs1 into it, so rd==rs1 aliasing is well defined.
func TestCPU_CSRRW_AliasSafety(t *testing.T) {
	c := newTestCPU(t)
	require.NoError(t, c.Regs.SetCSR(0x305, 0x55))
	require.NoError(t, c.Regs.SetGPR(1, 0xAA))

	require.NoError(t, c.Mem.StoreWord(0, encodeI(0x305, 1, 0x1, 1, 0x73))) // csrrw x1, 0x305, x1
	require.NoError(t, c.Step())

	assert.Equal(t, uint32(0x55), mustGPR(t, c, 1))
	csr, err := c.Regs.GetCSR(0x305)
	require.NoError(t, err)
	assert.Equal(t, uint32(0xAA), csr)
}

// scenario 7: memory sign extension via LB/LBU.
func TestScenario_MemorySignExtension(t *testing.T) {
	c := newTestCPU(t)
	require.NoError(t, c.Mem.StoreByte(0x100, -128))
	require.NoError(t, c.Regs.SetGPR(1, 0x100))

	require.NoError(t, c.Mem.StoreWord(0, encodeI(0, 1, 0x0, 2, 0x03))) // lb x2, 0(x1)
	require.NoError(t, c.Step())
	assert.Equal(t, uint32(0xFFFFFF80), mustGPR(t, c, 2))

	c.Regs.SetPC(0)
	require.NoError(t, c.Mem.StoreWord(0, encodeI(0, 1, 0x4, 2, 0x03))) // lbu x2, 0(x1)
	require.NoError(t, c.Step())
	assert.Equal(t, uint32(128), mustGPR(t, c, 2))
}

func TestCPU_GPRZeroInvariantAfterEveryStep(t *testing.T) {
	c := newTestCPU(t)
	require.NoError(t, c.Mem.StoreWord(0, encodeI(5, 0, 0x0, 0, 0x13))) // addi x0, x0, 5

	require.NoError(t, c.Step())
	assert.Equal(t, uint32(0), mustGPR(t, c, 0))
}

func TestCPU_NonControlTransferAdvancesPCBy4(t *testing.T) {
	c := newTestCPU(t)
	require.NoError(t, c.Mem.StoreWord(0, encodeI(1, 0, 0x0, 1, 0x13))) // addi x1, x0, 1
	require.NoError(t, c.Step())
	assert.Equal(t, uint32(4), c.Regs.GetPC())
}

func TestCPU_IllegalInstructionFaults(t *testing.T) {
	c := newTestCPU(t)
	require.NoError(t, c.Mem.StoreWord(0, 0x7F)) // opcode 0x7F is not in the dispatch table

	err := c.Step()
	require.Error(t, err)

	var fault *vm.Fault
	require.ErrorAs(t, err, &fault)
	assert.Equal(t, vm.FaultIllegalInstruction, fault.Kind)
	assert.Equal(t, vm.StateFaulted, c.State)
}

func TestCPU_ECALLHalts(t *testing.T) {
	c := newTestCPU(t)
	require.NoError(t, c.Mem.StoreWord(0, encodeI(0, 0, 0x0, 0, 0x73))) // ecall

	err := c.Step()
	require.Error(t, err)

	var halt *vm.HaltSignal
	require.ErrorAs(t, err, &halt)
	assert.Equal(t, vm.HaltEcall, halt.Kind)
	assert.Equal(t, vm.StateHalted, c.State)
}

func TestCPU_EBREAKHalts(t *testing.T) {
	c := newTestCPU(t)
	require.NoError(t, c.Mem.StoreWord(0, encodeI(1, 0, 0x0, 0, 0x73))) // ebreak

	err := c.Step()

	var halt *vm.HaltSignal
	require.ErrorAs(t, err, &halt)
	assert.Equal(t, vm.HaltEbreak, halt.Kind)
}

func TestCPU_MemoryRangeFault(t *testing.T) {
	c := vm.NewCPU(vm.NewMemory(4), vm.NewRegisters(), vm.NewDecoder())
	c.Regs.SetPC(0) // exactly one word fits; fetch at 0 is fine, but stepping
	// past it should fault on the next fetch.
	require.NoError(t, c.Mem.StoreWord(0, encodeI(1, 0, 0x0, 1, 0x13))) // addi x1, x0, 1

	require.NoError(t, c.Step()) // executes fine, PC becomes 4

	err := c.Step() // fetch at PC=4 is out of range
	require.Error(t, err)
	var fault *vm.Fault
	require.ErrorAs(t, err, &fault)
	assert.Equal(t, vm.FaultMemoryRange, fault.Kind)
}

func TestCPU_ResetZerosRegistersButNotMemory(t *testing.T) {
	c := newTestCPU(t)
	require.NoError(t, c.Regs.SetGPR(1, 42))
	require.NoError(t, c.Mem.StoreWord(0, 0xAABBCCDD))

	c.Reset()

	assert.Equal(t, uint32(0), mustGPR(t, c, 1))
	assert.Equal(t, vm.StateRunning, c.State)

	v, err := c.Mem.ReadWord(0)
	require.NoError(t, err)
	assert.Equal(t, uint32(0xAABBCCDD), v, "Reset does not touch Memory; that is a separate host decision")
}

func TestCPU_SW_StoresAtRs1PlusOffset(t *testing.T) {
	c := newTestCPU(t)
	require.NoError(t, c.Regs.SetGPR(1, 0x100))
	require.NoError(t, c.Regs.SetGPR(2, 0xCAFEBABE))

	require.NoError(t, c.Mem.StoreWord(0, encodeS(8, 2, 1, 0x2))) // sw x2, 8(x1)
	require.NoError(t, c.Step())

	v, err := c.Mem.ReadWord(0x108)
	require.NoError(t, err)
	assert.Equal(t, uint32(0xCAFEBABE), v)
}

func encodeS(imm int32, rs2, rs1 int, funct3 uint32) uint32 {
	u := uint32(imm)
	return (u>>5)<<25 | uint32(rs2)<<20 | uint32(rs1)<<15 | funct3<<12 | (u&0x1F)<<7 | 0x23
}
