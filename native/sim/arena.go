package sim

import (
	"encoding/binary"
	"fmt"
	"sync"
)

const arenaBase = 0x10

// Arena is a growable little-endian address space with a bump allocator.
// Freed blocks are not reused, so stale pointers keep reading old bytes
// instead of someone else's data.
type Arena struct {
	allocs map[uint32]uint32
	buf    []byte
	top    uint32
	mu     sync.RWMutex
}

// NewArena creates an empty arena. Address 0 is never handed out.
func NewArena() *Arena {
	return &Arena{
		allocs: make(map[uint32]uint32),
		buf:    make([]byte, arenaBase, 4096),
		top:    arenaBase,
	}
}

// Alloc reserves size bytes aligned to align.
func (a *Arena) Alloc(size, align uint32) (uint32, error) {
	if align == 0 || align&(align-1) != 0 {
		return 0, fmt.Errorf("invalid alignment %d", align)
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	ptr := (a.top + align - 1) &^ (align - 1)
	n := size
	if n == 0 {
		n = 1
	}
	end := uint64(ptr) + uint64(n)
	if end > 1<<31 {
		return 0, fmt.Errorf("arena exhausted: size=%d", size)
	}
	if int(end) > len(a.buf) {
		grown := make([]byte, end, max(2*cap(a.buf), int(end)))
		copy(grown, a.buf)
		a.buf = grown
	}
	a.top = uint32(end)
	a.allocs[ptr] = size
	return ptr, nil
}

// Free releases a block. Unknown pointers are ignored.
func (a *Arena) Free(ptr, _, _ uint32) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.allocs, ptr)
}

// Allocated returns the number of live blocks.
func (a *Arena) Allocated() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.allocs)
}

func (a *Arena) check(offset, length uint32) error {
	if uint64(offset)+uint64(length) > uint64(len(a.buf)) {
		return fmt.Errorf("memory read out of bounds: offset=%d, length=%d", offset, length)
	}
	return nil
}

// Read returns a view of length bytes at offset.
func (a *Arena) Read(offset, length uint32) ([]byte, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if err := a.check(offset, length); err != nil {
		return nil, err
	}
	return a.buf[offset : offset+length : offset+length], nil
}

// Write copies data to offset.
func (a *Arena) Write(offset uint32, data []byte) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.check(offset, uint32(len(data))); err != nil {
		return fmt.Errorf("memory write out of bounds: offset=%d, length=%d", offset, len(data))
	}
	copy(a.buf[offset:], data)
	return nil
}

// ReadU32 reads a little-endian uint32.
func (a *Arena) ReadU32(offset uint32) (uint32, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if err := a.check(offset, 4); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(a.buf[offset:]), nil
}

// ReadU64 reads a little-endian uint64.
func (a *Arena) ReadU64(offset uint32) (uint64, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if err := a.check(offset, 8); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(a.buf[offset:]), nil
}

// WriteU32 writes a little-endian uint32.
func (a *Arena) WriteU32(offset, value uint32) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.check(offset, 4); err != nil {
		return fmt.Errorf("memory write out of bounds: offset=%d", offset)
	}
	binary.LittleEndian.PutUint32(a.buf[offset:], value)
	return nil
}

// WriteU64 writes a little-endian uint64.
func (a *Arena) WriteU64(offset uint32, value uint64) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.check(offset, 8); err != nil {
		return fmt.Errorf("memory write out of bounds: offset=%d", offset)
	}
	binary.LittleEndian.PutUint64(a.buf[offset:], value)
	return nil
}
