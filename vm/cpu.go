package vm

import "fmt"

// State is the CPU's single-hart execution state machine (spec.md §4.5).
type State int

const (
	StateRunning State = iota
	StateHalted
	StateFaulted
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateHalted:
		return "halted"
	case StateFaulted:
		return "faulted"
	default:
		return "unknown"
	}
}

// controlTransferKinds names the instruction kinds that own PC themselves;
// every other kind falls through to the driver's unconditional PC+4 after
// a successful execute (spec.md §9 item 1: the driver advances PC for all
// non-control-transfer instructions, and semantics never touch PC otherwise).
var controlTransferKinds = map[Kind]bool{
	KindJAL: true, KindJALR: true,
	KindBEQ: true, KindBNE: true, KindBLT: true, KindBGE: true,
	KindBLTU: true, KindBGEU: true,
}

// CPU drives the fetch-decode-execute loop over a Memory and a Registers
// file, exclusively owned for its lifetime (spec.md §3, §5).
type CPU struct {
	Regs    *Registers
	Mem     *Memory
	Decoder *Decoder
	State   State

	// LastFault and LastHalt record the most recent terminal condition for
	// host inspection; exactly one is non-nil after a non-nil Step error.
	LastFault *Fault
	LastHalt  *HaltSignal

	// Stats and Trace are optional diagnostics (spec.md SPEC_FULL supplement);
	// both are nil unless the host opts in, and neither affects semantics.
	Stats *Statistics
	Trace *ExecutionTrace
}

// NewCPU wires a CPU to the given Memory, Registers, and Decoder. The host
// constructs these three once and owns the CPU for its lifetime (spec.md §6).
func NewCPU(mem *Memory, regs *Registers, dec *Decoder) *CPU {
	return &CPU{
		Regs:    regs,
		Mem:     mem,
		Decoder: dec,
		State:   StateRunning,
	}
}

// Reset zeros the register file. Memory reset is a host policy decision
// (spec.md §4.5): call CPU.Mem.Reset() separately if the host wants it.
func (c *CPU) Reset() {
	c.Regs.Reset()
	c.State = StateRunning
	c.LastFault = nil
	c.LastHalt = nil
}

// Step fetches, decodes, and executes exactly one instruction. It returns a
// *HaltSignal on ECALL/EBREAK, a *Fault on illegal instruction or a memory
// or register-index violation, or nil on ordinary completion.
func (c *CPU) Step() error {
	if c.State != StateRunning {
		return fmt.Errorf("cannot step: CPU is %s", c.State)
	}

	pc := c.Regs.GetPC()

	word, err := c.Mem.FetchWord(pc)
	if err != nil {
		return c.fault(FaultMemoryRange, pc, 0, err)
	}

	inst, err := c.Decoder.Decode(word)
	if err != nil {
		return c.fault(classifyErr(err), pc, word, err)
	}
	if inst == nil {
		return c.fault(FaultIllegalInstruction, pc, word, fmt.Errorf("%w: no opcode/funct match for word 0x%08X", ErrDecode, word))
	}
	inst.Address = pc

	if err := c.execute(inst); err != nil {
		var halt *HaltSignal
		if asHalt(err, &halt) {
			c.State = StateHalted
			c.LastHalt = halt
			if c.Stats != nil {
				c.Stats.RecordHalt()
			}
			return halt
		}
		if c.Stats != nil {
			c.Stats.RecordFault()
		}
		return c.fault(classifyErr(err), pc, word, err)
	}

	if !controlTransferKinds[inst.Kind] {
		c.Regs.IncrementPC()
	}

	if c.Stats != nil {
		c.Stats.RecordStep(inst.Kind)
	}
	if c.Trace != nil {
		c.Trace.Record(inst)
	}

	return nil
}

// Run steps the CPU until Step returns an error (a halt, a fault, or a CPU
// that is not running) and returns it. It has no step limit: a program that
// never halts or faults keeps Run looping (spec.md §4.5, §5).
func (c *CPU) Run() error {
	for {
		if err := c.Step(); err != nil {
			return err
		}
	}
}

func (c *CPU) fault(kind FaultKind, pc, word uint32, err error) *Fault {
	f := &Fault{Kind: kind, PC: pc, Word: word, Err: err}
	c.State = StateFaulted
	c.LastFault = f
	return f
}

// asHalt is a small type-assertion helper to keep Step readable; a wrapped
// *HaltSignal is not recognised.
func asHalt(err error, target **HaltSignal) bool {
	h, ok := err.(*HaltSignal)
	if !ok {
		return false
	}
	*target = h
	return true
}

func unreachableKind(k Kind) error {
	return fmt.Errorf("%w: unreachable instruction kind %s in execute dispatch", ErrDecode, k)
}

// execute dispatches a decoded Instruction to its semantic implementation.
func (c *CPU) execute(inst *Instruction) error {
	switch inst.Kind {
	case KindLUI:
		return execLUI(c, inst)
	case KindAUIPC:
		return execAUIPC(c, inst)
	case KindJAL:
		return execJAL(c, inst)
	case KindJALR:
		return execJALR(c, inst)
	case KindBEQ, KindBNE, KindBLT, KindBGE, KindBLTU, KindBGEU:
		return execBranch(c, inst)
	case KindLB, KindLH, KindLW, KindLBU, KindLHU:
		return execLoad(c, inst)
	case KindSB, KindSH, KindSW:
		return execStore(c, inst)
	case KindADDI, KindSLTI, KindSLTIU, KindXORI, KindORI, KindANDI, KindSLLI, KindSRLI, KindSRAI:
		return execOpImm(c, inst)
	case KindADD, KindSUB, KindSLL, KindSLT, KindSLTU, KindXOR, KindSRL, KindSRA, KindOR, KindAND:
		return execOpReg(c, inst)
	case KindECALL:
		return execECALL(c, inst)
	case KindEBREAK:
		return execEBREAK(c, inst)
	case KindFENCE:
		return execFENCE(c, inst)
	case KindCSRRW, KindCSRRS, KindCSRRC, KindCSRRWI, KindCSRRSI, KindCSRRCI:
		return execCSR(c, inst)
	default:
		return unreachableKind(inst.Kind)
	}
}
