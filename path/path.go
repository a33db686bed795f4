// Package path encodes drawing paths in cairo's cairo_path_data_t layout.
//
// A path is a sequence of records. Each record starts with a 16-byte header
// slot {int32 type, int32 length} followed by length-1 point slots
// {float64 x, float64 y}, all little-endian:
//
//	MOVE_TO    header + 1 point
//	LINE_TO    header + 1 point
//	CURVE_TO   header + 3 points
//	CLOSE_PATH header
//
// Decoding trusts the header length to advance, so records written by a
// newer engine with trailing slots are skipped correctly.
package path

import (
	"fmt"

	"github.com/wippyai/cairobind/errors"
	"github.com/wippyai/cairobind/native"
)

// Record types.
const (
	MoveTo    = native.PathMoveTo
	LineTo    = native.PathLineTo
	CurveTo   = native.PathCurveTo
	ClosePath = native.PathClosePath
)

// Point is a coordinate pair.
type Point struct {
	X, Y float64
}

// Operation is one path record.
type Operation struct {
	Points []Point
	Type   native.PathDataType
}

func (op Operation) String() string {
	s := op.Type.String()
	for _, p := range op.Points {
		s += fmt.Sprintf(" (%g, %g)", p.X, p.Y)
	}
	return s
}

// NewOperation builds an operation from flat x, y coordinates. The number of
// coordinates must be exactly twice the point count of typ.
func NewOperation(typ native.PathDataType, coords ...float64) (Operation, error) {
	want := typ.Points()
	if want < 0 {
		return Operation{}, errors.New(errors.PhasePath, errors.KindInvalidInput).
			Detail("unknown operation type %d", int32(typ)).
			Value(typ).
			Build()
	}
	if len(coords) != 2*want {
		return Operation{}, errors.InvalidCoordinateCount(errors.PhasePath, 0, typ.String(), 2*want, len(coords))
	}
	op := Operation{Type: typ}
	for i := 0; i < len(coords); i += 2 {
		op.Points = append(op.Points, Point{coords[i], coords[i+1]})
	}
	return op, nil
}

// Move returns a MOVE_TO operation.
func Move(x, y float64) Operation {
	return Operation{Type: MoveTo, Points: []Point{{x, y}}}
}

// Line returns a LINE_TO operation.
func Line(x, y float64) Operation {
	return Operation{Type: LineTo, Points: []Point{{x, y}}}
}

// Curve returns a CURVE_TO operation.
func Curve(x1, y1, x2, y2, x3, y3 float64) Operation {
	return Operation{Type: CurveTo, Points: []Point{{x1, y1}, {x2, y2}, {x3, y3}}}
}

// Close returns a CLOSE_PATH operation.
func Close() Operation {
	return Operation{Type: ClosePath}
}

// Size returns the number of slots ops occupy once encoded.
func Size(ops []Operation) int {
	n := 0
	for _, op := range ops {
		n += 1 + len(op.Points)
	}
	return n
}
