package vm

import (
	"fmt"
	"math"
)

// Memory is a flat, byte-addressable, little-endian memory of a fixed size,
// as described in spec.md §3: no segmentation, no permission bits — the
// emulator has no privilege model and no I/O peripherals, so every byte in
// [0, size) is readable, writable, and fetchable.
type Memory struct {
	data        []byte
	AccessCount uint64
	ReadCount   uint64
	WriteCount  uint64
}

// NewMemory returns a zeroed Memory of the given size in bytes.
func NewMemory(size uint32) *Memory {
	return &Memory{data: make([]byte, size)}
}

// Size returns the number of addressable bytes.
func (m *Memory) Size() uint32 {
	return uint32(len(m.data))
}

func (m *Memory) checkRange(addr uint32, width uint32) error {
	size := uint32(len(m.data))
	if width == 0 {
		if addr > size {
			return fmt.Errorf("%w: address 0x%08X exceeds memory of size 0x%08X", ErrMemoryRange, addr, size)
		}
		return nil
	}
	if addr+width < addr || addr > size-width {
		return fmt.Errorf("%w: access of width %d at 0x%08X exceeds memory of size 0x%08X", ErrMemoryRange, width, addr, size)
	}
	return nil
}

// FetchWord reads the 32-bit instruction word at addr.
func (m *Memory) FetchWord(addr uint32) (uint32, error) {
	return m.ReadWord(addr)
}

// ReadWord reads a little-endian 32-bit word and returns its bit pattern as a uint32.
func (m *Memory) ReadWord(addr uint32) (uint32, error) {
	if err := m.checkRange(addr, 4); err != nil {
		return 0, err
	}
	m.AccessCount++
	m.ReadCount++
	v := uint32(m.data[addr]) |
		uint32(m.data[addr+1])<<8 |
		uint32(m.data[addr+2])<<16 |
		uint32(m.data[addr+3])<<24
	return v, nil
}

// StoreWord writes the low 32 bits of v at addr, little-endian.
func (m *Memory) StoreWord(addr uint32, v uint32) error {
	if err := m.checkRange(addr, 4); err != nil {
		return err
	}
	m.AccessCount++
	m.WriteCount++
	m.data[addr] = byte(v)
	m.data[addr+1] = byte(v >> 8)
	m.data[addr+2] = byte(v >> 16)
	m.data[addr+3] = byte(v >> 24)
	return nil
}

// LoadHalf reads a sign-extended 16-bit halfword at addr.
func (m *Memory) LoadHalf(addr uint32) (int32, error) {
	u, err := m.loadHalfRaw(addr)
	if err != nil {
		return 0, err
	}
	return int32(int16(u)), nil
}

// LoadHalfU reads a zero-extended 16-bit halfword at addr.
func (m *Memory) LoadHalfU(addr uint32) (uint32, error) {
	u, err := m.loadHalfRaw(addr)
	if err != nil {
		return 0, err
	}
	return uint32(u), nil
}

func (m *Memory) loadHalfRaw(addr uint32) (uint16, error) {
	if err := m.checkRange(addr, 2); err != nil {
		return 0, err
	}
	m.AccessCount++
	m.ReadCount++
	return uint16(m.data[addr]) | uint16(m.data[addr+1])<<8, nil
}

// StoreHalf writes the signed 16-bit value v at addr. v must fit int16.
func (m *Memory) StoreHalf(addr uint32, v int32) error {
	if v < math.MinInt16 || v > math.MaxInt16 {
		return fmt.Errorf("%w: halfword store value %d does not fit int16", ErrValueRange, v)
	}
	if err := m.checkRange(addr, 2); err != nil {
		return err
	}
	m.AccessCount++
	m.WriteCount++
	u := uint16(v)
	m.data[addr] = byte(u)
	m.data[addr+1] = byte(u >> 8)
	return nil
}

// LoadByte reads a sign-extended 8-bit byte at addr.
func (m *Memory) LoadByte(addr uint32) (int32, error) {
	if err := m.checkRange(addr, 1); err != nil {
		return 0, err
	}
	m.AccessCount++
	m.ReadCount++
	return int32(int8(m.data[addr])), nil
}

// LoadByteU reads a zero-extended 8-bit byte at addr.
func (m *Memory) LoadByteU(addr uint32) (uint32, error) {
	if err := m.checkRange(addr, 1); err != nil {
		return 0, err
	}
	m.AccessCount++
	m.ReadCount++
	return uint32(m.data[addr]), nil
}

// StoreByte writes the signed 8-bit value v at addr. v must fit int8.
func (m *Memory) StoreByte(addr uint32, v int32) error {
	if v < math.MinInt8 || v > math.MaxInt8 {
		return fmt.Errorf("%w: byte store value %d does not fit int8", ErrValueRange, v)
	}
	if err := m.checkRange(addr, 1); err != nil {
		return err
	}
	m.AccessCount++
	m.WriteCount++
	m.data[addr] = byte(v)
	return nil
}

// LoadBytes loads a raw byte image into memory starting at addr. This is the
// only way the host places a program: there is no file-format parsing here,
// per spec.md §6.
func (m *Memory) LoadBytes(addr uint32, data []byte) error {
	if err := m.checkRange(addr, uint32(len(data))); err != nil {
		return fmt.Errorf("failed to load program: %w", err)
	}
	copy(m.data[addr:], data)
	return nil
}

// GetBytes returns a copy of length bytes starting at addr, for inspection by
// a debugger or memory-hexdump view.
func (m *Memory) GetBytes(addr, length uint32) ([]byte, error) {
	if err := m.checkRange(addr, length); err != nil {
		return nil, err
	}
	out := make([]byte, length)
	copy(out, m.data[addr:addr+length])
	return out, nil
}

// Reset zeroes the entire buffer and the access counters.
func (m *Memory) Reset() {
	for i := range m.data {
		m.data[i] = 0
	}
	m.AccessCount = 0
	m.ReadCount = 0
	m.WriteCount = 0
}
