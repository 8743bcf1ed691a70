// Package loader supplies the one piece of glue spec.md §6 assumes but
// leaves undefined: getting a raw byte image from the filesystem into a
// vm.Memory. There is no file format here — no ELF, no Intel HEX, nothing
// parsed — matching the spec's "the host hands in a byte buffer" contract.
package loader

import (
	"fmt"
	"os"

	"rv32iemu/vm"
)

// LoadFile reads the raw bytes at path and loads them into mem starting at
// addr, the way the teacher's loader.LoadProgramIntoVM places an assembled
// program into memory — except there is nothing to assemble here, since an
// RV32I image is already a flat sequence of little-endian instruction words.
func LoadFile(mem *vm.Memory, path string, addr uint32) error {
	data, err := os.ReadFile(path) // #nosec G304 -- caller-specified program path
	if err != nil {
		return fmt.Errorf("failed to read program file %q: %w", path, err)
	}
	return LoadBytes(mem, data, addr)
}

// LoadBytes loads a raw byte image into mem starting at addr.
func LoadBytes(mem *vm.Memory, data []byte, addr uint32) error {
	if err := mem.LoadBytes(addr, data); err != nil {
		return fmt.Errorf("failed to load program image: %w", err)
	}
	return nil
}
