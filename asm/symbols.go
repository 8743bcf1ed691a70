package asm

import "fmt"

// SymbolTable maps label names to the addresses assigned to them in pass one
// of assembly.
type SymbolTable struct {
	symbols map[string]uint32
}

// NewSymbolTable returns an empty SymbolTable.
func NewSymbolTable() *SymbolTable {
	return &SymbolTable{symbols: make(map[string]uint32)}
}

// Define records label at address. Redefining an existing label is an error:
// assembly source should not declare the same label twice.
func (st *SymbolTable) Define(label string, address uint32) error {
	if _, exists := st.symbols[label]; exists {
		return fmt.Errorf("label %q already defined", label)
	}
	st.symbols[label] = address
	return nil
}

// Resolve looks up label's address.
func (st *SymbolTable) Resolve(label string) (uint32, bool) {
	addr, ok := st.symbols[label]
	return addr, ok
}

// All returns a copy of the full label->address map, for handing to the
// debugger's symbol-aware expression evaluator.
func (st *SymbolTable) All() map[string]uint32 {
	out := make(map[string]uint32, len(st.symbols))
	for k, v := range st.symbols {
		out[k] = v
	}
	return out
}
