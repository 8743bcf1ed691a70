package vm

import "fmt"

// NumGPR is the number of general-purpose registers (x0-x31).
const NumGPR = 32

// NumCSR is the number of addressable control-and-status registers.
const NumCSR = 4096

// Registers holds the RV32I architectural register state: the 32 general
// purpose registers, the program counter, and the CSR file. x0 is hardwired
// to zero: writes to it are silently discarded and reads always return 0.
type Registers struct {
	gpr [NumGPR]uint32
	pc  uint32
	csr [NumCSR]uint32
}

// NewRegisters returns a zeroed register file, matching the state after reset.
func NewRegisters() *Registers {
	return &Registers{}
}

// GetGPR returns the value of general-purpose register i (0-31).
func (r *Registers) GetGPR(i int) (uint32, error) {
	if i < 0 || i >= NumGPR {
		return 0, fmt.Errorf("%w: GPR index %d out of range [0,%d)", ErrRegisterIndex, i, NumGPR)
	}
	if i == 0 {
		return 0, nil
	}
	return r.gpr[i], nil
}

// SetGPR writes v to general-purpose register i. Writes to x0 are no-ops.
func (r *Registers) SetGPR(i int, v uint32) error {
	if i < 0 || i >= NumGPR {
		return fmt.Errorf("%w: GPR index %d out of range [0,%d)", ErrRegisterIndex, i, NumGPR)
	}
	if i == 0 {
		return nil
	}
	r.gpr[i] = v
	return nil
}

// GetPC returns the program counter.
func (r *Registers) GetPC() uint32 {
	return r.pc
}

// SetPC sets the program counter.
func (r *Registers) SetPC(v uint32) {
	r.pc = v
}

// IncrementPC advances the program counter by one instruction word (4 bytes).
func (r *Registers) IncrementPC() {
	r.pc += 4
}

// GetCSR returns the value of control-and-status register i (0-4095). There
// is no access-permission gating: any 12-bit address is readable.
func (r *Registers) GetCSR(i int) (uint32, error) {
	if i < 0 || i >= NumCSR {
		return 0, fmt.Errorf("%w: CSR index %d out of range [0,%d)", ErrRegisterIndex, i, NumCSR)
	}
	return r.csr[i], nil
}

// SetCSR writes v to control-and-status register i (0-4095).
func (r *Registers) SetCSR(i int, v uint32) error {
	if i < 0 || i >= NumCSR {
		return fmt.Errorf("%w: CSR index %d out of range [0,%d)", ErrRegisterIndex, i, NumCSR)
	}
	r.csr[i] = v
	return nil
}

// Reset zeros every GPR, the program counter, and every CSR.
func (r *Registers) Reset() {
	for i := range r.gpr {
		r.gpr[i] = 0
	}
	r.pc = 0
	for i := range r.csr {
		r.csr[i] = 0
	}
}
