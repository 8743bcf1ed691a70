package api

import "rv32iemu/vm"

// SessionCreateRequest is the POST /sessions body: a raw little-endian
// program image plus the address it should be loaded at and execution
// should start from.
type SessionCreateRequest struct {
	Program    []byte `json:"program"`
	LoadAddr   uint32 `json:"load_addr"`
	EntryPoint uint32 `json:"entry_point"`
	MemorySize uint32 `json:"memory_size"`
}

type SessionCreateResponse struct {
	SessionID string `json:"session_id"`
}

// StateSnapshot mirrors the teacher's RegistersResponse shape, but over
// RV32I's register file: 32 GPRs, the PC, the session's WatchedCSRs (no
// request sets them, so CSR is normally omitted), plus whatever fault or
// halt ended the last step. Cycles stays 0 when the CPU has no Stats.
type StateSnapshot struct {
	GPR       [32]uint32        `json:"gpr"`
	PC        uint32            `json:"pc"`
	CSR       map[string]uint32 `json:"csr,omitempty"`
	State     string            `json:"state"`
	Cycles    uint64            `json:"cycles"`
	LastFault string            `json:"last_fault,omitempty"`
	LastHalt  string            `json:"last_halt,omitempty"`
}

func snapshotOf(c *vm.CPU, watchedCSRs []int) StateSnapshot {
	s := StateSnapshot{
		PC:    c.Regs.GetPC(),
		State: c.State.String(),
	}
	if c.Stats != nil {
		s.Cycles = c.Stats.Cycles
	}
	for i := 0; i < 32; i++ {
		v, _ := c.Regs.GetGPR(i)
		s.GPR[i] = v
	}
	if len(watchedCSRs) > 0 {
		s.CSR = make(map[string]uint32, len(watchedCSRs))
		for _, idx := range watchedCSRs {
			v, err := c.Regs.GetCSR(idx)
			if err == nil {
				s.CSR[csrKey(idx)] = v
			}
		}
	}
	if c.LastFault != nil {
		s.LastFault = c.LastFault.Error()
	}
	if c.LastHalt != nil {
		s.LastHalt = c.LastHalt.Error()
	}
	return s
}

func csrKey(idx int) string {
	const hexDigits = "0123456789abcdef"
	return "0x" + string([]byte{
		hexDigits[(idx>>8)&0xF],
		hexDigits[(idx>>4)&0xF],
		hexDigits[idx&0xF],
	})
}

type StepRequest struct {
	Count int `json:"count,omitempty"` // number of steps, default 1
}

type ErrorResponse struct {
	Error string `json:"error"`
}
