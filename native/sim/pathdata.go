package sim

import (
	"encoding/binary"
	"math"

	"github.com/wippyai/cairobind/native"
	"github.com/wippyai/cairobind/status"
)

// cairo_path_t on a 32-bit engine: {int32 status; uint32 data; int32 num_data}.
const (
	pathStructSize  = 12
	pathStructAlign = 4
	slotSize        = 16
	slotAlign       = 8
)

type point [2]float64

type segment struct {
	pts []point
	typ native.PathDataType
}

// encodeSegments lays segments out as cairo_path_data_t records.
func encodeSegments(segs []segment) ([]byte, int) {
	n := 0
	for _, s := range segs {
		n += 1 + len(s.pts)
	}
	buf := make([]byte, n*slotSize)
	off := 0
	for _, s := range segs {
		binary.LittleEndian.PutUint32(buf[off:], uint32(s.typ))
		binary.LittleEndian.PutUint32(buf[off+4:], uint32(1+len(s.pts)))
		off += slotSize
		for _, p := range s.pts {
			binary.LittleEndian.PutUint64(buf[off:], math.Float64bits(p[0]))
			binary.LittleEndian.PutUint64(buf[off+8:], math.Float64bits(p[1]))
			off += slotSize
		}
	}
	return buf, n
}

// decodeSegments parses records the way cairo_append_path does: the header
// length advances the cursor and must cover the points of the record type.
func decodeSegments(buf []byte, n int) ([]segment, native.Status) {
	var segs []segment
	for i := 0; i < n; {
		off := i * slotSize
		typ := native.PathDataType(int32(binary.LittleEndian.Uint32(buf[off:])))
		length := int(int32(binary.LittleEndian.Uint32(buf[off+4:])))
		want := typ.Points()
		if want < 0 || length < 1+want || i+length > n {
			return nil, status.InvalidPathData
		}
		s := segment{typ: typ}
		for j := 1; j <= want; j++ {
			po := off + j*slotSize
			s.pts = append(s.pts, point{
				math.Float64frombits(binary.LittleEndian.Uint64(buf[po:])),
				math.Float64frombits(binary.LittleEndian.Uint64(buf[po+8:])),
			})
		}
		segs = append(segs, s)
		i += length
	}
	return segs, status.Success
}

// writePath allocates a cairo_path_t in the arena. Caller holds the lock.
func (e *Engine) writePath(st native.Status, segs []segment) native.Handle {
	p, err := e.mem.Alloc(pathStructSize, pathStructAlign)
	if err != nil {
		return 0
	}
	var data uint32
	n := 0
	if st == status.Success && len(segs) > 0 {
		var buf []byte
		buf, n = encodeSegments(segs)
		data, err = e.mem.Alloc(uint32(len(buf)), slotAlign)
		if err != nil {
			st, n = status.NoMemory, 0
		} else {
			_ = e.mem.Write(data, buf)
		}
	}
	_ = e.mem.WriteU32(uint32(p), uint32(st))
	_ = e.mem.WriteU32(uint32(p)+4, data)
	_ = e.mem.WriteU32(uint32(p)+8, uint32(int32(n)))
	e.paths[native.Handle(p)] = true
	return native.Handle(p)
}

// readPath loads segments from a cairo_path_t. Caller holds the lock.
func (e *Engine) readPath(p native.Handle) ([]segment, native.Status) {
	hdr, err := e.mem.Read(uint32(p), pathStructSize)
	if err != nil {
		return nil, status.NullPointer
	}
	st := native.Status(int32(binary.LittleEndian.Uint32(hdr)))
	data := binary.LittleEndian.Uint32(hdr[4:])
	n := int(int32(binary.LittleEndian.Uint32(hdr[8:])))
	if st != status.Success {
		return nil, st
	}
	if n < 0 {
		return nil, status.InvalidPathData
	}
	if n == 0 {
		return nil, status.Success
	}
	if data == 0 {
		return nil, status.NullPointer
	}
	buf, err := e.mem.Read(data, uint32(n)*slotSize)
	if err != nil {
		return nil, status.InvalidPathData
	}
	return decodeSegments(buf, n)
}

func (e *Engine) pathStatus(p native.Handle) native.Status {
	v, err := e.mem.ReadU32(uint32(p))
	if p == 0 || err != nil {
		return status.NullPointer
	}
	return native.Status(int32(v))
}

func (e *Engine) destroyPath(p native.Handle) {
	if !e.paths[p] {
		e.violate("path_destroy on foreign or freed path %#x", uint32(p))
		return
	}
	delete(e.paths, p)
	if data, err := e.mem.ReadU32(uint32(p) + 4); err == nil && data != 0 {
		e.mem.Free(data, 0, slotAlign)
	}
	e.mem.Free(uint32(p), pathStructSize, pathStructAlign)
}
