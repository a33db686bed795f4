package sim

import (
	"bytes"
	"slices"
	"strings"
	"testing"

	"github.com/wippyai/cairobind/native"
	"github.com/wippyai/cairobind/status"
)

func noViolations(t *testing.T, e *Engine) {
	t.Helper()
	if v := e.Violations(); len(v) != 0 {
		t.Errorf("unexpected violations: %v", v)
	}
}

func TestReferenceCounting(t *testing.T) {
	e := New()
	s := e.ImageSurfaceCreate(native.FormatARGB32, 4, 4)

	if got := e.ReferenceCount(native.KindSurface, s); got != 1 {
		t.Fatalf("initial refcount = %d, want 1", got)
	}
	e.Reference(native.KindSurface, s)
	if got := e.ReferenceCount(native.KindSurface, s); got != 2 {
		t.Errorf("after reference = %d, want 2", got)
	}
	e.Destroy(native.KindSurface, s)
	e.Destroy(native.KindSurface, s)
	if got := e.Live(native.KindSurface); got != 0 {
		t.Errorf("live surfaces = %d, want 0", got)
	}
	noViolations(t, e)

	e.Destroy(native.KindSurface, s)
	if len(e.Violations()) != 1 {
		t.Errorf("double destroy not recorded: %v", e.Violations())
	}
}

func TestStaticErrorObjects(t *testing.T) {
	e := New()

	tests := []struct {
		name string
		h    native.Handle
		kind native.Kind
		want native.Status
	}{
		{"invalid format", e.ImageSurfaceCreate(native.Format(42), 1, 1), native.KindSurface, status.InvalidFormat},
		{"negative size", e.ImageSurfaceCreate(native.FormatARGB32, -1, 1), native.KindSurface, status.InvalidSize},
		{"bad stride", e.ImageSurfaceCreateForData(make([]byte, 64), native.FormatARGB32, 4, 4, 3), native.KindSurface, status.InvalidStride},
		{"bad slant", e.ToyFontFaceCreate([]byte("serif"), native.FontSlant(9), native.WeightNormal), native.KindFontFace, status.InvalidSlant},
		{"bad utf8", e.ToyFontFaceCreate([]byte{0xff, 0xfe}, native.SlantNormal, native.WeightNormal), native.KindFontFace, status.InvalidString},
		{"missing png", e.ImageSurfaceCreateFromPNG([]byte(t.TempDir() + "/missing.png")), native.KindSurface, status.FileNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := e.Status(tt.kind, tt.h); got != tt.want {
				t.Errorf("status = %v, want %v", got, tt.want)
			}
			if got := e.ReferenceCount(tt.kind, tt.h); got != 0 {
				t.Errorf("static refcount = %d, want 0", got)
			}
			e.Reference(tt.kind, tt.h)
			e.Destroy(tt.kind, tt.h)
			if got := e.Status(tt.kind, tt.h); got != tt.want {
				t.Errorf("status after destroy = %v, want %v", got, tt.want)
			}
		})
	}
	noViolations(t, e)
}

func TestUserDataDestroyOnLastRelease(t *testing.T) {
	e := New()
	p := e.PatternCreateRGBA(1, 0, 0, 1)

	var fired []native.Closure
	destroy := func(c native.Closure) { fired = append(fired, c) }

	if st := e.SetUserData(native.KindPattern, p, 1, 11, destroy); st != status.Success {
		t.Fatalf("set user data: %v", st)
	}
	if st := e.SetUserData(native.KindPattern, p, 2, 22, destroy); st != status.Success {
		t.Fatalf("set user data: %v", st)
	}
	if st := e.SetUserData(native.KindPattern, p, 1, 33, destroy); st != status.Success {
		t.Fatalf("replace user data: %v", st)
	}
	if len(fired) != 1 || fired[0] != 11 {
		t.Fatalf("replacement fired %v, want [11]", fired)
	}

	e.Reference(native.KindPattern, p)
	e.Destroy(native.KindPattern, p)
	if len(fired) != 1 {
		t.Fatalf("destroy fired before last reference: %v", fired)
	}
	e.Destroy(native.KindPattern, p)
	// A replaced key keeps its slot, so entries fire in slot order.
	if !slices.Equal(fired, []native.Closure{11, 33, 22}) {
		t.Errorf("fired = %v, want [11 33 22]", fired)
	}
	noViolations(t, e)
}

func TestFailNextUserData(t *testing.T) {
	e := New()
	p := e.PatternCreateRGBA(0, 0, 0, 1)
	e.FailNextUserData(status.NoMemory)

	if st := e.SetUserData(native.KindPattern, p, 1, 1, nil); st != status.NoMemory {
		t.Errorf("status = %v, want NO_MEMORY", st)
	}
	if n := e.UserDataCount(native.KindPattern, p); n != 0 {
		t.Errorf("user data stored after failure: %d", n)
	}
	if st := e.SetUserData(native.KindPattern, p, 1, 1, nil); st != status.Success {
		t.Errorf("second attach = %v, want SUCCESS", st)
	}
}

func TestMimeReplaceFiresOldDestroy(t *testing.T) {
	e := New()
	s := e.ImageSurfaceCreate(native.FormatARGB32, 2, 2)

	var fired []native.Closure
	destroy := func(c native.Closure) { fired = append(fired, c) }

	e.SurfaceSetMimeData(s, "image/png", []byte("a"), destroy, 1)
	e.SurfaceSetMimeData(s, "image/png", nil, nil, 0)
	if len(fired) != 1 || fired[0] != 1 {
		t.Fatalf("detach fired %v, want [1]", fired)
	}
	if got := e.SurfaceGetMimeData(s, "image/png"); got != nil {
		t.Errorf("mime data after detach = %q", got)
	}

	e.SurfaceSetMimeData(s, "image/png", []byte("b"), destroy, 2)
	e.SurfaceSetMimeData(s, "image/jpeg", []byte("c"), destroy, 3)
	e.Destroy(native.KindSurface, s)
	if len(fired) != 3 || fired[1] != 3 || fired[2] != 2 {
		t.Errorf("fired = %v, want [1 3 2] (mime types in order)", fired)
	}
}

func TestMisuseIsRecorded(t *testing.T) {
	e := New()
	p := e.PatternCreateRGBA(0, 0, 0, 1)

	e.Status(native.KindSurface, p)
	e.Destroy(native.KindPattern, p)
	e.Status(native.KindPattern, p)

	v := e.Violations()
	if len(v) != 2 {
		t.Fatalf("violations = %v, want 2", v)
	}
	if !strings.Contains(v[0], "not a surface") {
		t.Errorf("first violation = %q", v[0])
	}
	if !strings.Contains(v[1], "destroyed") {
		t.Errorf("second violation = %q", v[1])
	}
}

func TestInjectObject(t *testing.T) {
	e := New()
	h := e.InjectObject(native.KindSurface, 255)

	if got := e.Type(native.KindSurface, h); got != 255 {
		t.Errorf("type = %d, want 255", got)
	}
	if got := e.ImageSurfaceGetWidth(h); got != 0 {
		t.Errorf("width of non-image = %d", got)
	}
	if got := e.Status(native.KindSurface, h); got != status.SurfaceTypeMismatch {
		t.Errorf("status after image accessor = %v, want SURFACE_TYPE_MISMATCH", got)
	}

	objs := e.Objects()
	if len(objs) != 1 || objs[0].Handle != h || objs[0].Tag != 255 {
		t.Errorf("objects = %+v", objs)
	}
}

func TestPatternStops(t *testing.T) {
	e := New()
	lin := e.PatternCreateLinear(0, 0, 10, 0)
	e.PatternAddColorStopRGBA(lin, 1, 0, 0, 1, 1)
	e.PatternAddColorStopRGBA(lin, 0, 1, 0, 0, 1)

	n, st := e.PatternGetColorStopCount(lin)
	if st != status.Success || n != 2 {
		t.Errorf("stop count = %d, %v", n, st)
	}

	solid := e.PatternCreateRGBA(1, 1, 1, 1)
	e.PatternAddColorStopRGBA(solid, 0, 0, 0, 0, 1)
	if got := e.Status(native.KindPattern, solid); got != status.PatternTypeMismatch {
		t.Errorf("solid status = %v, want PATTERN_TYPE_MISMATCH", got)
	}
}

func TestSurfacePatternHoldsSurface(t *testing.T) {
	e := New()
	s := e.ImageSurfaceCreate(native.FormatRGB24, 1, 1)
	p := e.PatternCreateForSurface(s)

	if got := e.ReferenceCount(native.KindSurface, s); got != 2 {
		t.Fatalf("surface refcount = %d, want 2", got)
	}
	got, st := e.PatternGetSurface(p)
	if st != status.Success || got != s {
		t.Errorf("get surface = %#x, %v", got, st)
	}
	e.Destroy(native.KindSurface, s)
	e.Destroy(native.KindPattern, p)
	if e.Live(native.KindSurface) != 0 || e.Live(native.KindPattern) != 0 {
		t.Errorf("leaked objects: %+v", e.Objects())
	}
	noViolations(t, e)
}

func TestContextClosePath(t *testing.T) {
	e := New()
	s := e.ImageSurfaceCreate(native.FormatARGB32, 10, 10)
	cr := e.Create(s)
	defer e.Destroy(native.KindSurface, s)
	defer e.Destroy(native.KindContext, cr)

	e.MoveTo(cr, 1, 1)
	e.MoveTo(cr, 10, 20)
	e.LineTo(cr, 30, 40)
	e.ClosePath(cr)

	p := e.CopyPath(cr)
	defer e.Destroy(native.KindPath, p)

	segs, st := e.readPath(p)
	if st != status.Success {
		t.Fatalf("read path: %v", st)
	}
	want := []native.PathDataType{native.PathMoveTo, native.PathLineTo, native.PathClosePath, native.PathMoveTo}
	if len(segs) != len(want) {
		t.Fatalf("got %d segments, want %d", len(segs), len(want))
	}
	for i, s := range segs {
		if s.typ != want[i] {
			t.Errorf("segment %d = %v, want %v", i, s.typ, want[i])
		}
	}
	if segs[3].pts[0] != (point{10, 20}) {
		t.Errorf("trailing move_to = %v, want subpath start", segs[3].pts[0])
	}
}

func TestAppendInvalidPath(t *testing.T) {
	e := New()
	s := e.ImageSurfaceCreate(native.FormatARGB32, 1, 1)
	cr := e.Create(s)

	p, _ := e.Alloc(pathStructSize, pathStructAlign)
	data, _ := e.Alloc(slotSize, slotAlign)
	e.mem.WriteU32(data, 99)
	e.mem.WriteU32(data+4, 1)
	e.mem.WriteU32(p+4, data)
	e.mem.WriteU32(p+8, 1)

	e.AppendPath(cr, native.Handle(p))
	if got := e.Status(native.KindContext, cr); got != status.InvalidPathData {
		t.Errorf("status = %v, want INVALID_PATH_DATA", got)
	}
}

func TestPaintSolid(t *testing.T) {
	e := New()
	s := e.ImageSurfaceCreate(native.FormatARGB32, 2, 1)
	cr := e.Create(s)
	e.SetSourceRGBA(cr, 1, 0, 0, 1)
	e.Paint(cr)

	data := e.ImageSurfaceGetData(s)
	want := []byte{0, 0, 0xff, 0xff, 0, 0, 0xff, 0xff}
	if !bytes.Equal(data, want) {
		t.Errorf("pixels = % x, want % x", data, want)
	}

	e.Destroy(native.KindContext, cr)
	if got := e.ReferenceCount(native.KindSurface, s); got != 1 {
		t.Errorf("surface refcount after context destroy = %d, want 1", got)
	}
	e.Destroy(native.KindSurface, s)
	if e.Live(native.KindPattern) != 0 {
		t.Errorf("source pattern leaked")
	}
	noViolations(t, e)
}

func TestPNGStreamRoundTrip(t *testing.T) {
	e := New()
	s := e.ImageSurfaceCreate(native.FormatARGB32, 3, 2)
	cr := e.Create(s)
	e.SetSourceRGBA(cr, 0, 0, 1, 1)
	e.Paint(cr)

	var buf bytes.Buffer
	write := func(_ native.Closure, p []byte) native.Status {
		buf.Write(p)
		return status.Success
	}
	if st := e.SurfaceWriteToPNGStream(s, write, 1); st != status.Success {
		t.Fatalf("write png: %v", st)
	}

	r := bytes.NewReader(buf.Bytes())
	read := func(_ native.Closure, p []byte) native.Status {
		if n, _ := r.Read(p); n != len(p) {
			return status.ReadError
		}
		return status.Success
	}
	img := e.ImageSurfaceCreateFromPNGStream(read, 1)
	if st := e.Status(native.KindSurface, img); st != status.Success {
		t.Fatalf("read png: %v", st)
	}
	if w, h := e.ImageSurfaceGetWidth(img), e.ImageSurfaceGetHeight(img); w != 3 || h != 2 {
		t.Errorf("size = %dx%d, want 3x2", w, h)
	}
	if f := e.ImageSurfaceGetFormat(img); f != native.FormatRGB24 {
		t.Errorf("format = %v, want RGB24 for an opaque image", f)
	}
	if !bytes.Equal(e.ImageSurfaceGetData(img), e.ImageSurfaceGetData(s)) {
		t.Errorf("pixels differ after round trip")
	}
}

func TestPNGStreamWriteError(t *testing.T) {
	e := New()
	s := e.ImageSurfaceCreate(native.FormatA8, 1, 1)
	write := func(native.Closure, []byte) native.Status { return status.WriteError }
	if st := e.SurfaceWriteToPNGStream(s, write, 1); st != status.WriteError {
		t.Errorf("status = %v, want WRITE_ERROR", st)
	}
}

func TestVectorStreamEmitsOnFinish(t *testing.T) {
	e := New()
	var out bytes.Buffer
	write := func(_ native.Closure, p []byte) native.Status {
		out.Write(p)
		return status.Success
	}
	s := e.VectorSurfaceCreateForStream(native.SurfaceTypeSVG, write, 7, 100, 50)
	cr := e.Create(s)
	e.Rectangle(cr, 0, 0, 10, 10)
	e.Fill(cr)
	e.Destroy(native.KindContext, cr)

	if out.Len() != 0 {
		t.Fatalf("document written before finish")
	}
	e.Destroy(native.KindSurface, s)

	doc := out.String()
	if !strings.Contains(doc, "<svg") || !strings.Contains(doc, `d="M 0 0 L 10 0 L 10 10 L 0 10 Z M 0 0"`) {
		t.Errorf("document = %s", doc)
	}
}

func TestRecordingInkExtents(t *testing.T) {
	e := New()
	s := e.RecordingSurfaceCreate(native.ContentColorAlpha, nil)
	cr := e.Create(s)
	e.MoveTo(cr, 2, 3)
	e.LineTo(cr, 12, 8)
	e.Fill(cr)

	got := e.RecordingSurfaceInkExtents(s)
	want := native.Rectangle{X: 2, Y: 3, Width: 10, Height: 5}
	if got != want {
		t.Errorf("ink extents = %+v, want %+v", got, want)
	}
}

func TestFontOptions(t *testing.T) {
	e := New()
	a := e.FontOptionsCreate()
	b := e.FontOptionsCreate()

	if !e.FontOptionsEqual(a, b) {
		t.Errorf("fresh options not equal")
	}
	e.FontOptionsSetAntialias(a, native.AntialiasGray)
	e.FontOptionsSetHintMetrics(b, native.HintMetricsOn)
	e.FontOptionsMerge(a, b)

	if got := e.FontOptionsGetAntialias(a); got != native.AntialiasGray {
		t.Errorf("antialias = %v after merge", got)
	}
	if got := e.FontOptionsGetHintMetrics(a); got != native.HintMetricsOn {
		t.Errorf("hint metrics = %v after merge", got)
	}
	want := uint64(native.AntialiasGray) | uint64(native.HintMetricsOn)<<16
	if got := e.FontOptionsHash(a); got != want {
		t.Errorf("hash = %#x, want %#x", got, want)
	}

	c := e.FontOptionsCopy(a)
	if !e.FontOptionsEqual(a, c) {
		t.Errorf("copy not equal")
	}
	for _, h := range []native.Handle{a, b, c} {
		e.Destroy(native.KindFontOptions, h)
	}
	if e.Live(native.KindFontOptions) != 0 {
		t.Errorf("font options leaked")
	}
}

func TestScaledFontHoldsFace(t *testing.T) {
	e := New()
	face := e.ToyFontFaceCreate([]byte("sans"), native.SlantItalic, native.WeightBold)
	opts := e.FontOptionsCreate()
	defer e.Destroy(native.KindFontOptions, opts)

	bad := e.ScaledFontCreate(face, native.Matrix{}, native.Identity(), opts)
	if got := e.Status(native.KindScaledFont, bad); got != status.InvalidMatrix {
		t.Errorf("singular matrix status = %v", got)
	}

	sf := e.ScaledFontCreate(face, native.Scale(12, 12), native.Identity(), opts)
	if got := e.ScaledFontGetFontFace(sf); got != face {
		t.Errorf("font face = %#x, want %#x", got, face)
	}
	if got := e.Type(native.KindScaledFont, sf); got != int32(native.FontTypeToy) {
		t.Errorf("scaled font type = %d", got)
	}
	e.Destroy(native.KindFontFace, face)
	if got := e.ToyFontFaceGetFamily(face); got != "sans" {
		t.Errorf("family = %q", got)
	}
	e.Destroy(native.KindScaledFont, sf)
	if e.Live(native.KindFontFace) != 0 {
		t.Errorf("face leaked")
	}
	noViolations(t, e)
}
