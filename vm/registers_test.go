package vm_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rv32iemu/vm"
)

func TestRegisters_X0HardwiredToZero(t *testing.T) {
	r := vm.NewRegisters()

	err := r.SetGPR(0, 0xDEADBEEF)
	require.NoError(t, err)

	v, err := r.GetGPR(0)
	require.NoError(t, err)
	assert.Equal(t, uint32(0), v, "x0 must read as zero regardless of writes")
}

func TestRegisters_GPRRoundTrip(t *testing.T) {
	r := vm.NewRegisters()

	for i := 1; i < vm.NumGPR; i++ {
		require.NoError(t, r.SetGPR(i, uint32(i)*0x1000))
	}
	for i := 1; i < vm.NumGPR; i++ {
		v, err := r.GetGPR(i)
		require.NoError(t, err)
		assert.Equal(t, uint32(i)*0x1000, v)
	}
}

func TestRegisters_GPROutOfRange(t *testing.T) {
	r := vm.NewRegisters()

	_, err := r.GetGPR(32)
	assert.ErrorIs(t, err, vm.ErrRegisterIndex)

	err = r.SetGPR(-1, 1)
	assert.ErrorIs(t, err, vm.ErrRegisterIndex)
}

func TestRegisters_PC(t *testing.T) {
	r := vm.NewRegisters()
	assert.Equal(t, uint32(0), r.GetPC(), "PC initializes to zero")

	r.SetPC(0x100)
	assert.Equal(t, uint32(0x100), r.GetPC())

	r.IncrementPC()
	assert.Equal(t, uint32(0x104), r.GetPC())
}

func TestRegisters_CSRRoundTrip(t *testing.T) {
	r := vm.NewRegisters()

	require.NoError(t, r.SetCSR(0x305, 0x55))
	v, err := r.GetCSR(0x305)
	require.NoError(t, err)
	assert.Equal(t, uint32(0x55), v)
}

func TestRegisters_CSROutOfRange(t *testing.T) {
	r := vm.NewRegisters()

	_, err := r.GetCSR(vm.NumCSR)
	assert.ErrorIs(t, err, vm.ErrRegisterIndex)
}

func TestRegisters_ResetIdempotent(t *testing.T) {
	r := vm.NewRegisters()
	require.NoError(t, r.SetGPR(5, 123))
	r.SetPC(0x200)
	require.NoError(t, r.SetCSR(1, 99))

	r.Reset()
	first := snapshotRegisters(t, r)

	r.Reset()
	second := snapshotRegisters(t, r)

	assert.Equal(t, first, second, "reset twice must equal reset once")
	assert.Equal(t, uint32(0), r.GetPC())
}

func snapshotRegisters(t *testing.T, r *vm.Registers) []uint32 {
	t.Helper()
	out := make([]uint32, vm.NumGPR)
	for i := range out {
		v, err := r.GetGPR(i)
		require.NoError(t, err)
		out[i] = v
	}
	return out
}
