package handle

import (
	stderrors "errors"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/wippyai/cairobind/errors"
	"github.com/wippyai/cairobind/native"
	"github.com/wippyai/cairobind/native/sim"
	"github.com/wippyai/cairobind/status"
)

func TestWrapNull(t *testing.T) {
	e := sim.New()
	_, err := Wrap(e, native.KindSurface, 0, true)
	if err == nil {
		t.Fatal("expected error for NULL handle")
	}
	if !stderrors.Is(err, &errors.Error{Phase: errors.PhaseWrap, Kind: errors.KindInvalidHandle}) {
		t.Errorf("error = %v, want invalid_handle", err)
	}
	if v := e.Violations(); len(v) != 0 {
		t.Errorf("NULL wrap touched the engine: %v", v)
	}
}

func TestWrapBorrowedIncrements(t *testing.T) {
	e := sim.New()
	h := e.ImageSurfaceCreate(native.FormatARGB32, 1, 1)
	before := e.ReferenceCount(native.KindSurface, h)

	o, err := Wrap(e, native.KindSurface, h, false)
	if err != nil {
		t.Fatalf("Wrap: %v", err)
	}
	if got := o.ReferenceCount(); got != before+1 {
		t.Errorf("refcount = %d, want %d", got, before+1)
	}

	if err := o.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if got := e.ReferenceCount(native.KindSurface, h); got != before {
		t.Errorf("refcount after close = %d, want %d", got, before)
	}
	e.Destroy(native.KindSurface, h)
	if v := e.Violations(); len(v) != 0 {
		t.Errorf("violations: %v", v)
	}
}

func TestWrapBorrowUncounted(t *testing.T) {
	e := sim.New()
	h := e.FontOptionsCreate()
	defer e.Destroy(native.KindFontOptions, h)

	_, err := Wrap(e, native.KindFontOptions, h, false)
	if !stderrors.Is(err, &errors.Error{Kind: errors.KindUnsupported}) {
		t.Errorf("error = %v, want unsupported", err)
	}
}

func TestWrapFailedStatus(t *testing.T) {
	tests := []struct {
		name  string
		owned bool
	}{
		{"owned", true},
		{"borrowed", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := sim.New()
			h := e.InjectObject(native.KindPattern, int32(native.PatternTypeSolid))
			e.SetStatus(native.KindPattern, h, status.NoMemory)
			if !tt.owned {
				e.Reference(native.KindPattern, h)
			}

			o, err := Wrap(e, native.KindPattern, h, tt.owned)
			if o != nil {
				t.Fatal("wrapper returned for object in error")
			}
			if st, ok := status.Of(err); !ok || st != status.NoMemory {
				t.Errorf("status = %v, %v, want NO_MEMORY", st, ok)
			}
			if !stderrors.Is(err, &errors.Error{Kind: errors.KindNoMemory}) {
				t.Errorf("error kind = %v, want no_memory", err)
			}

			want := 0
			if !tt.owned {
				want = 1
			}
			if got := e.Live(native.KindPattern); got != want {
				t.Errorf("live patterns = %d, want %d", got, want)
			}
		})
	}
}

func TestCloseIdempotent(t *testing.T) {
	e := sim.New()
	o, err := Wrap(e, native.KindPattern, e.PatternCreateRGBA(0, 0, 0, 1), true)
	if err != nil {
		t.Fatalf("Wrap: %v", err)
	}
	for i := 0; i < 3; i++ {
		if err := o.Close(); err != nil {
			t.Fatalf("Close #%d: %v", i, err)
		}
	}
	if !o.Released() {
		t.Error("Released() = false after Close")
	}
	if got := o.ReferenceCount(); got != 0 {
		t.Errorf("refcount after close = %d", got)
	}
	if _, err := o.Pin(); !stderrors.Is(err, &errors.Error{Kind: errors.KindReleased}) {
		t.Errorf("Pin after close = %v, want released", err)
	}
	if got := e.Live(native.KindPattern); got != 0 {
		t.Errorf("live patterns = %d", got)
	}
	if v := e.Violations(); len(v) != 0 {
		t.Errorf("violations: %v", v)
	}
}

func TestCloseWhilePinned(t *testing.T) {
	e := sim.New()
	o, err := Wrap(e, native.KindPattern, e.PatternCreateRGBA(0, 0, 0, 1), true)
	if err != nil {
		t.Fatalf("Wrap: %v", err)
	}

	h, err := o.Pin()
	if err != nil {
		t.Fatalf("Pin: %v", err)
	}
	o.Close()
	if e.Live(native.KindPattern) != 1 {
		t.Fatal("destroyed while pinned")
	}
	if st := e.Status(native.KindPattern, h); st != status.Success {
		t.Errorf("pinned handle status = %v", st)
	}
	o.Unpin()
	if e.Live(native.KindPattern) != 0 {
		t.Error("not destroyed after last unpin")
	}
}

func TestDoChecksStatus(t *testing.T) {
	e := sim.New()
	o, err := Wrap(e, native.KindPattern, e.PatternCreateRGBA(0, 0, 0, 1), true)
	if err != nil {
		t.Fatalf("Wrap: %v", err)
	}
	defer o.Close()

	err = o.Do(func(lib native.Library, h native.Handle) {
		lib.PatternAddColorStopRGBA(h, 0, 1, 1, 1, 1)
	})
	if st, _ := status.Of(err); st != status.PatternTypeMismatch {
		t.Errorf("Do error = %v, want PATTERN_TYPE_MISMATCH", err)
	}
	if o.Status() == nil {
		t.Error("sticky status not reported")
	}
}

func TestCleanupReleases(t *testing.T) {
	e := sim.New()
	func() {
		_, err := Wrap(e, native.KindPattern, e.PatternCreateRGBA(0, 0, 0, 1), true)
		if err != nil {
			t.Fatalf("Wrap: %v", err)
		}
	}()

	deadline := time.Now().Add(2 * time.Second)
	for e.Live(native.KindPattern) != 0 {
		if time.Now().After(deadline) {
			t.Fatal("cleanup did not release the pattern")
		}
		runtime.GC()
		time.Sleep(10 * time.Millisecond)
	}
	if v := e.Violations(); len(v) != 0 {
		t.Errorf("violations: %v", v)
	}
}

// queueingEngine defers destroys the way engines that cannot be entered from
// the cleanup goroutine do.
type queueingEngine struct {
	*sim.Engine
	mu     sync.Mutex
	queued []native.Handle
}

func (q *queueingEngine) DestroyLater(_ native.Kind, h native.Handle) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.queued = append(q.queued, h)
}

func (q *queueingEngine) take() []native.Handle {
	q.mu.Lock()
	defer q.mu.Unlock()
	h := q.queued
	q.queued = nil
	return h
}

func TestCleanupDefersToEngine(t *testing.T) {
	q := &queueingEngine{Engine: sim.New()}
	h := q.PatternCreateRGBA(0, 0, 0, 1)
	func() {
		if _, err := Wrap(q, native.KindPattern, h, true); err != nil {
			t.Fatalf("Wrap: %v", err)
		}
	}()

	var got []native.Handle
	deadline := time.Now().Add(2 * time.Second)
	for len(got) == 0 {
		if time.Now().After(deadline) {
			t.Fatal("cleanup did not queue the destroy")
		}
		runtime.GC()
		time.Sleep(10 * time.Millisecond)
		got = q.take()
	}
	if len(got) != 1 || got[0] != h {
		t.Fatalf("queued = %v, want [%d]", got, h)
	}
	if n := q.Live(native.KindPattern); n != 1 {
		t.Fatalf("cleanup entered the engine: live = %d", n)
	}

	q.Destroy(native.KindPattern, got[0])
	if n := q.Live(native.KindPattern); n != 0 {
		t.Errorf("live = %d after draining the queue", n)
	}
}

func TestCloseDoesNotDefer(t *testing.T) {
	q := &queueingEngine{Engine: sim.New()}
	o, err := Wrap(q, native.KindPattern, q.PatternCreateRGBA(0, 0, 0, 1), true)
	if err != nil {
		t.Fatalf("Wrap: %v", err)
	}
	o.Close()
	if n := q.Live(native.KindPattern); n != 0 {
		t.Errorf("live = %d after Close", n)
	}
	if got := q.take(); len(got) != 0 {
		t.Errorf("Close queued %v", got)
	}
}
