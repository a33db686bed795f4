package path

import (
	"encoding/binary"
	stderrors "errors"
	"math"
	"reflect"
	"testing"

	"github.com/wippyai/cairobind/errors"
	"github.com/wippyai/cairobind/native"
	"github.com/wippyai/cairobind/native/sim"
	"github.com/wippyai/cairobind/status"
)

func isKind(err error, kind errors.Kind) bool {
	return stderrors.Is(err, &errors.Error{Kind: kind})
}

func TestMoveLineCloseScenario(t *testing.T) {
	ops := []Operation{Move(10, 20), Line(30, 40), Close()}

	buf, n, err := Encode(ops)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if n != 5 || len(buf) != 5*SlotSize {
		t.Fatalf("encoded %d slots (%d bytes), want 5", n, len(buf))
	}

	got, err := Decode(buf, n)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("decoded %d operations, want 3", len(got))
	}
	if got[0].Type != MoveTo || got[0].Points[0] != (Point{10, 20}) {
		t.Errorf("op 0 = %v", got[0])
	}
	if got[1].Type != LineTo || got[1].Points[0] != (Point{30, 40}) {
		t.Errorf("op 1 = %v", got[1])
	}
	if got[2].Type != ClosePath || len(got[2].Points) != 0 {
		t.Errorf("op 2 = %v", got[2])
	}
}

func TestRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		ops  []Operation
	}{
		{"empty", nil},
		{"single move", []Operation{Move(0, 0)}},
		{"curve", []Operation{Move(1, 2), Curve(3, 4, 5, 6, 7, 8), Close(), Move(1, 2)}},
		{"extreme values", []Operation{Move(math.MaxFloat64, -math.SmallestNonzeroFloat64), Line(math.Inf(1), math.Inf(-1))}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf, n, err := Encode(tt.ops)
			if err != nil {
				t.Fatalf("Encode: %v", err)
			}
			got, err := Decode(buf, n)
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if !reflect.DeepEqual(got, tt.ops) {
				t.Errorf("round trip = %v, want %v", got, tt.ops)
			}
		})
	}
}

func TestLayout(t *testing.T) {
	buf, _, err := Encode([]Operation{Line(1.5, -2)})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if typ := binary.LittleEndian.Uint32(buf[0:]); typ != uint32(LineTo) {
		t.Errorf("type = %d", typ)
	}
	if length := binary.LittleEndian.Uint32(buf[4:]); length != 2 {
		t.Errorf("length = %d, want 2", length)
	}
	if x := math.Float64frombits(binary.LittleEndian.Uint64(buf[16:])); x != 1.5 {
		t.Errorf("x = %g", x)
	}
	if y := math.Float64frombits(binary.LittleEndian.Uint64(buf[24:])); y != -2 {
		t.Errorf("y = %g", y)
	}
}

func TestCoordinateCountMismatch(t *testing.T) {
	tests := []struct {
		name   string
		typ    native.PathDataType
		coords []float64
	}{
		{"move with one", MoveTo, []float64{1}},
		{"line with four", LineTo, []float64{1, 2, 3, 4}},
		{"curve with two", CurveTo, []float64{1, 2}},
		{"close with two", ClosePath, []float64{1, 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewOperation(tt.typ, tt.coords...); !isKind(err, errors.KindInvalidCoordinateCount) {
				t.Errorf("NewOperation error = %v", err)
			}
		})
	}

	bad := []Operation{Move(0, 0), {Type: CurveTo, Points: []Point{{1, 1}}}}
	buf, n, err := Encode(bad)
	if !isKind(err, errors.KindInvalidCoordinateCount) {
		t.Fatalf("Encode error = %v", err)
	}
	if buf != nil || n != 0 {
		t.Errorf("partial buffer returned: %d bytes, %d slots", len(buf), n)
	}
	var e *errors.Error
	if stderrors.As(err, &e) && e.Detail != "operation 1 (CURVE_TO)" {
		t.Errorf("detail = %q", e.Detail)
	}
}

func slots(records ...[2]int32) []byte {
	buf := make([]byte, len(records)*SlotSize)
	for i, r := range records {
		binary.LittleEndian.PutUint32(buf[i*SlotSize:], uint32(r[0]))
		binary.LittleEndian.PutUint32(buf[i*SlotSize+4:], uint32(r[1]))
	}
	return buf
}

func TestDecodeRejects(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		n    int
	}{
		{"unknown type", slots([2]int32{9, 1}), 1},
		{"length too short", slots([2]int32{int32(MoveTo), 1}, [2]int32{0, 0}), 2},
		{"zero length", slots([2]int32{int32(ClosePath), 0}), 1},
		{"overrun", slots([2]int32{int32(LineTo), 3}, [2]int32{0, 0}), 2},
		{"buffer smaller than count", slots([2]int32{int32(ClosePath), 1}), 2},
		{"negative count", nil, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Decode(tt.data, tt.n); !isKind(err, errors.KindInvalidPathRecord) {
				t.Errorf("error = %v, want invalid_path_record", err)
			}
		})
	}
}

func TestDecodeTrustsHeaderLength(t *testing.T) {
	buf := slots(
		[2]int32{int32(ClosePath), 3}, [2]int32{0, 0}, [2]int32{0, 0},
		[2]int32{int32(ClosePath), 1},
	)
	ops, err := Decode(buf, 4)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(ops) != 2 {
		t.Errorf("decoded %d operations, want 2", len(ops))
	}
}

func TestRecordsRestartable(t *testing.T) {
	buf, n, _ := Encode([]Operation{Move(1, 1), Line(2, 2), Line(3, 3)})
	seq := Records(buf, n)

	for pass := 0; pass < 2; pass++ {
		count := 0
		for _, err := range seq {
			if err != nil {
				t.Fatalf("pass %d: %v", pass, err)
			}
			count++
		}
		if count != 3 {
			t.Errorf("pass %d yielded %d records", pass, count)
		}
	}

	for op := range seq {
		if op.Type != MoveTo {
			t.Errorf("first record = %v", op)
		}
		break
	}
}

func TestStoreLoad(t *testing.T) {
	e := sim.New()
	ops := []Operation{Move(10, 20), Curve(1, 2, 3, 4, 5, 6), Close(), Move(10, 20)}

	p, free, err := Store(e.Memory(), e, ops)
	if err != nil {
		t.Fatalf("Store: %v", err)
	}
	defer free()

	got, err := Load(e.Memory(), p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !reflect.DeepEqual(got, ops) {
		t.Errorf("Load = %v, want %v", got, ops)
	}
}

func TestLoadChecksStatusFirst(t *testing.T) {
	e := sim.New()
	p, free, err := Store(e.Memory(), e, []Operation{Move(1, 1)})
	if err != nil {
		t.Fatalf("Store: %v", err)
	}
	defer free()

	e.Memory().WriteU32(uint32(p), uint32(status.NoMemory))
	if _, err := Load(e.Memory(), p); !status.Is(err, status.NoMemory) {
		t.Errorf("Load error = %v, want NO_MEMORY", err)
	}
	if _, err := Load(e.Memory(), 0); !isKind(err, errors.KindInvalidHandle) {
		t.Errorf("Load(0) error = %v", err)
	}
}

func TestNativeRoundTrip(t *testing.T) {
	e := sim.New()
	s := e.ImageSurfaceCreate(native.FormatARGB32, 10, 10)
	cr := e.Create(s)
	defer e.Destroy(native.KindSurface, s)
	defer e.Destroy(native.KindContext, cr)

	ops := []Operation{Move(10, 20), Line(30, 40), Close()}
	p, free, err := Store(e.Memory(), e, ops)
	if err != nil {
		t.Fatalf("Store: %v", err)
	}
	e.AppendPath(cr, p)
	free()

	copied := e.CopyPath(cr)
	defer e.Destroy(native.KindPath, copied)
	got, err := Load(e.Memory(), copied)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	want := append(ops, Move(10, 20))
	if !reflect.DeepEqual(got, want) {
		t.Errorf("copied path = %v, want %v", got, want)
	}
	if v := e.Violations(); len(v) != 0 {
		t.Errorf("violations: %v", v)
	}
}

func TestParseFormat(t *testing.T) {
	src := "M 10 20 L 30.5 -40 C 1 2 3 4 5 6 Z"
	ops, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(ops) != 4 || ops[3].Type != ClosePath {
		t.Fatalf("ops = %v", ops)
	}
	if got := Format(ops); got != src {
		t.Errorf("Format = %q, want %q", got, src)
	}

	bad := []struct {
		src  string
		kind errors.Kind
	}{
		{"M 1", errors.KindInvalidCoordinateCount},
		{"X 1 2", errors.KindInvalidInput},
		{"M 1 y", errors.KindInvalidInput},
		{"Z 1 2", errors.KindInvalidCoordinateCount},
	}
	for _, tt := range bad {
		if _, err := Parse(tt.src); !isKind(err, tt.kind) {
			t.Errorf("Parse(%q) = %v, want %s", tt.src, err, tt.kind)
		}
	}
}
