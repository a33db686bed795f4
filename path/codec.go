package path

import (
	"encoding/binary"
	"fmt"
	"iter"
	"math"

	"github.com/wippyai/cairobind/errors"
	"github.com/wippyai/cairobind/native"
)

// SlotSize is the size of one cairo_path_data_t union member.
const SlotSize = 16

// Encode lays ops out as records and returns the buffer and its slot count.
// Every operation must carry the point count of its type; on mismatch no
// buffer is returned.
func Encode(ops []Operation) ([]byte, int, error) {
	for i, op := range ops {
		want := op.Type.Points()
		if want < 0 {
			return nil, 0, errors.New(errors.PhasePath, errors.KindInvalidInput).
				Detail("operation %d: unknown type %d", i, int32(op.Type)).
				Value(op.Type).
				Build()
		}
		if len(op.Points) != want {
			return nil, 0, errors.InvalidCoordinateCount(errors.PhasePath, i, op.Type.String(), 2*want, 2*len(op.Points))
		}
	}

	n := Size(ops)
	buf := make([]byte, n*SlotSize)
	off := 0
	for _, op := range ops {
		binary.LittleEndian.PutUint32(buf[off:], uint32(op.Type))
		binary.LittleEndian.PutUint32(buf[off+4:], uint32(1+len(op.Points)))
		off += SlotSize
		for _, p := range op.Points {
			binary.LittleEndian.PutUint64(buf[off:], math.Float64bits(p.X))
			binary.LittleEndian.PutUint64(buf[off+8:], math.Float64bits(p.Y))
			off += SlotSize
		}
	}
	return buf, n, nil
}

// Records walks numData slots of data, yielding one operation per record.
// A malformed record yields a zero Operation with the error and ends the
// sequence. The sequence can be ranged over any number of times.
func Records(data []byte, numData int) iter.Seq2[Operation, error] {
	return func(yield func(Operation, error) bool) {
		if numData < 0 {
			yield(Operation{}, errors.InvalidPathRecord(errors.PhasePath, 0,
				fmt.Sprintf("negative slot count %d", numData)))
			return
		}
		if len(data) < numData*SlotSize {
			yield(Operation{}, errors.InvalidPathRecord(errors.PhasePath, 0,
				fmt.Sprintf("%d slots declared, buffer holds %d", numData, len(data)/SlotSize)))
			return
		}

		for i := 0; i < numData; {
			op, length, err := record(data, i, numData)
			if err != nil {
				yield(Operation{}, err)
				return
			}
			if !yield(op, nil) {
				return
			}
			i += length
		}
	}
}

func record(data []byte, i, numData int) (Operation, int, error) {
	off := i * SlotSize
	typ := native.PathDataType(int32(binary.LittleEndian.Uint32(data[off:])))
	length := int(int32(binary.LittleEndian.Uint32(data[off+4:])))

	want := typ.Points()
	switch {
	case want < 0:
		return Operation{}, 0, errors.InvalidPathRecord(errors.PhasePath, i,
			fmt.Sprintf("unknown type %d", int32(typ)))
	case length < 1+want:
		return Operation{}, 0, errors.InvalidPathRecord(errors.PhasePath, i,
			fmt.Sprintf("%s length %d, need at least %d", typ, length, 1+want))
	case i+length > numData:
		return Operation{}, 0, errors.InvalidPathRecord(errors.PhasePath, i,
			fmt.Sprintf("length %d overruns %d slots", length, numData))
	}

	op := Operation{Type: typ}
	if want > 0 {
		op.Points = make([]Point, want)
		for j := range op.Points {
			po := off + (j+1)*SlotSize
			op.Points[j] = Point{
				X: math.Float64frombits(binary.LittleEndian.Uint64(data[po:])),
				Y: math.Float64frombits(binary.LittleEndian.Uint64(data[po+8:])),
			}
		}
	}
	return op, length, nil
}

// Decode collects Records into a slice.
func Decode(data []byte, numData int) ([]Operation, error) {
	var ops []Operation
	for op, err := range Records(data, numData) {
		if err != nil {
			return nil, err
		}
		ops = append(ops, op)
	}
	return ops, nil
}
