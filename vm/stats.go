package vm

// Statistics accumulates simple per-opcode execution counts and a total
// cycle count. It has no notion of cache hits or branch prediction since
// this emulator models neither (spec.md Non-goals: cycle accuracy, pipeline
// modeling), trimmed down from the teacher's PerformanceStatistics.
type Statistics struct {
	Cycles     uint64
	ByKind     map[Kind]uint64
	Halts      uint64
	Faults     uint64
}

// NewStatistics returns an empty Statistics accumulator.
func NewStatistics() *Statistics {
	return &Statistics{ByKind: make(map[Kind]uint64)}
}

// RecordStep records one successfully decoded and executed instruction.
func (s *Statistics) RecordStep(k Kind) {
	s.Cycles++
	s.ByKind[k]++
}

// RecordHalt records an ECALL/EBREAK termination.
func (s *Statistics) RecordHalt() {
	s.Halts++
}

// RecordFault records a fault termination.
func (s *Statistics) RecordFault() {
	s.Faults++
}

// Reset clears all counters.
func (s *Statistics) Reset() {
	s.Cycles = 0
	s.Halts = 0
	s.Faults = 0
	s.ByKind = make(map[Kind]uint64)
}
