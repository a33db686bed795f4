package path

import (
	"strconv"
	"strings"

	"github.com/wippyai/cairobind/errors"
	"github.com/wippyai/cairobind/native"
)

var verbs = map[string]native.PathDataType{
	"M": MoveTo,
	"L": LineTo,
	"C": CurveTo,
	"Z": ClosePath,
}

// Parse reads the SVG-like syntax produced by Format:
//
//	M 10 20 L 30 40 C 1 2 3 4 5 6 Z
func Parse(s string) ([]Operation, error) {
	fields := strings.Fields(s)
	var ops []Operation
	for i := 0; i < len(fields); {
		typ, ok := verbs[fields[i]]
		if !ok {
			return nil, errors.New(errors.PhasePath, errors.KindInvalidInput).
				Detail("token %d: expected M, L, C or Z, got %q", i, fields[i]).
				Build()
		}
		i++

		var coords []float64
		for i < len(fields) {
			if _, verb := verbs[fields[i]]; verb {
				break
			}
			v, err := strconv.ParseFloat(fields[i], 64)
			if err != nil {
				return nil, errors.Wrap(errors.PhasePath, errors.KindInvalidInput, err, "token "+strconv.Itoa(i))
			}
			coords = append(coords, v)
			i++
		}

		op, err := NewOperation(typ, coords...)
		if err != nil {
			if e, ok := err.(*errors.Error); ok && e.Kind == errors.KindInvalidCoordinateCount {
				return nil, errors.InvalidCoordinateCount(errors.PhasePath, len(ops), typ.String(), 2*typ.Points(), len(coords))
			}
			return nil, err
		}
		ops = append(ops, op)
	}
	return ops, nil
}

// Format renders ops in the syntax accepted by Parse.
func Format(ops []Operation) string {
	var b strings.Builder
	for i, op := range ops {
		if i > 0 {
			b.WriteByte(' ')
		}
		switch op.Type {
		case MoveTo:
			b.WriteByte('M')
		case LineTo:
			b.WriteByte('L')
		case CurveTo:
			b.WriteByte('C')
		case ClosePath:
			b.WriteByte('Z')
		default:
			b.WriteString("?" + strconv.Itoa(int(op.Type)))
		}
		for _, p := range op.Points {
			b.WriteByte(' ')
			b.WriteString(strconv.FormatFloat(p.X, 'g', -1, 64))
			b.WriteByte(' ')
			b.WriteString(strconv.FormatFloat(p.Y, 'g', -1, 64))
		}
	}
	return b.String()
}
