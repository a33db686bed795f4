package wasmlib

import (
	"fmt"

	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/cairobind"
)

var _ cairobind.Memory = (*memory)(nil)

// memory adapts guest linear memory to cairobind.Memory.
type memory struct {
	mem api.Memory
}

func newMemory(mem api.Memory) *memory {
	return &memory{mem: mem}
}

func outOfRange(offset, length uint32, size uint32) error {
	return fmt.Errorf("memory access [%#x, +%d) out of range (size %d)", offset, length, size)
}

// Read returns a view of guest memory. The view is invalidated when the
// guest grows its memory.
func (m *memory) Read(offset, length uint32) ([]byte, error) {
	b, ok := m.mem.Read(offset, length)
	if !ok {
		return nil, outOfRange(offset, length, m.mem.Size())
	}
	return b, nil
}

func (m *memory) Write(offset uint32, data []byte) error {
	if !m.mem.Write(offset, data) {
		return outOfRange(offset, uint32(len(data)), m.mem.Size())
	}
	return nil
}

func (m *memory) ReadU32(offset uint32) (uint32, error) {
	v, ok := m.mem.ReadUint32Le(offset)
	if !ok {
		return 0, outOfRange(offset, 4, m.mem.Size())
	}
	return v, nil
}

func (m *memory) ReadU64(offset uint32) (uint64, error) {
	v, ok := m.mem.ReadUint64Le(offset)
	if !ok {
		return 0, outOfRange(offset, 8, m.mem.Size())
	}
	return v, nil
}

func (m *memory) WriteU32(offset, value uint32) error {
	if !m.mem.WriteUint32Le(offset, value) {
		return outOfRange(offset, 4, m.mem.Size())
	}
	return nil
}

func (m *memory) WriteU64(offset uint32, value uint64) error {
	if !m.mem.WriteUint64Le(offset, value) {
		return outOfRange(offset, 8, m.mem.Size())
	}
	return nil
}

// cstring reads a NUL-terminated string at ptr.
func (m *memory) cstring(ptr uint32) string {
	if ptr == 0 {
		return ""
	}
	size := m.mem.Size()
	end := ptr
	for end < size {
		b, ok := m.mem.ReadByte(end)
		if !ok || b == 0 {
			break
		}
		end++
	}
	b, _ := m.mem.Read(ptr, end-ptr)
	return string(b)
}

func (m *memory) f64(ptr uint32) float64 {
	v, _ := m.mem.ReadFloat64Le(ptr)
	return v
}

func (m *memory) i32(ptr uint32) int32 {
	v, _ := m.mem.ReadUint32Le(ptr)
	return int32(v)
}
