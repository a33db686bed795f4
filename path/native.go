package path

import (
	"encoding/binary"

	"github.com/wippyai/cairobind"
	"github.com/wippyai/cairobind/errors"
	"github.com/wippyai/cairobind/native"
	"github.com/wippyai/cairobind/status"
)

// cairo_path_t on a 32-bit engine.
const (
	structSize  = 12
	structAlign = 4
	dataAlign   = 8
)

// Store writes ops into engine memory as a cairo_path_t with SUCCESS status.
// The returned free func releases both allocations and must be called once
// the engine no longer reads the path.
func Store(mem cairobind.Memory, alloc cairobind.Allocator, ops []Operation) (native.Handle, func(), error) {
	buf, n, err := Encode(ops)
	if err != nil {
		return 0, nil, err
	}

	var data uint32
	if n > 0 {
		data, err = alloc.Alloc(uint32(len(buf)), dataAlign)
		if err != nil {
			return 0, nil, errors.Wrap(errors.PhasePath, errors.KindNoMemory, err, "allocate path data")
		}
		if err := mem.Write(data, buf); err != nil {
			alloc.Free(data, uint32(len(buf)), dataAlign)
			return 0, nil, errors.Wrap(errors.PhasePath, errors.KindNoMemory, err, "write path data")
		}
	}

	p, err := alloc.Alloc(structSize, structAlign)
	if err != nil {
		if data != 0 {
			alloc.Free(data, uint32(len(buf)), dataAlign)
		}
		return 0, nil, errors.Wrap(errors.PhasePath, errors.KindNoMemory, err, "allocate path")
	}
	var hdr [structSize]byte
	binary.LittleEndian.PutUint32(hdr[0:], uint32(status.Success))
	binary.LittleEndian.PutUint32(hdr[4:], data)
	binary.LittleEndian.PutUint32(hdr[8:], uint32(int32(n)))
	if err := mem.Write(p, hdr[:]); err != nil {
		alloc.Free(p, structSize, structAlign)
		if data != 0 {
			alloc.Free(data, uint32(len(buf)), dataAlign)
		}
		return 0, nil, errors.Wrap(errors.PhasePath, errors.KindNoMemory, err, "write path")
	}

	size := uint32(len(buf))
	free := func() {
		alloc.Free(p, structSize, structAlign)
		if data != 0 {
			alloc.Free(data, size, dataAlign)
		}
	}
	return native.Handle(p), free, nil
}

// Load reads the cairo_path_t at p. The path's own status is checked before
// any record is read.
func Load(mem cairobind.Memory, p native.Handle) ([]Operation, error) {
	if p == 0 {
		return nil, errors.InvalidHandle(errors.PhasePath, native.KindPath.String())
	}
	hdr, err := mem.Read(uint32(p), structSize)
	if err != nil {
		return nil, errors.Wrap(errors.PhasePath, errors.KindInvalidHandle, err, "read cairo_path_t")
	}
	st := status.Status(int32(binary.LittleEndian.Uint32(hdr[0:])))
	data := binary.LittleEndian.Uint32(hdr[4:])
	n := int(int32(binary.LittleEndian.Uint32(hdr[8:])))

	if err := status.Check(st); err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}
	if n < 0 {
		return nil, errors.InvalidPathRecord(errors.PhasePath, 0, "negative slot count")
	}
	if data == 0 {
		return nil, errors.InvalidHandle(errors.PhasePath, "path data")
	}
	buf, err := mem.Read(data, uint32(n)*SlotSize)
	if err != nil {
		return nil, errors.Wrap(errors.PhasePath, errors.KindInvalidPathRecord, err, "read path data")
	}
	return Decode(buf, n)
}
