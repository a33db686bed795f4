package wasmlib

import (
	"context"
	stderrors "errors"
	"runtime"
	"slices"
	"testing"
	"time"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/cairobind/errors"
	"github.com/wippyai/cairobind/handle"
	"github.com/wippyai/cairobind/keepalive"
	"github.com/wippyai/cairobind/native"
	"github.com/wippyai/cairobind/status"
)

// emptyModule is a valid module with no imports or exports.
var emptyModule = []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}

// memoryModule exports a single one-page memory as "memory".
var memoryModule = append(slices.Clone(emptyModule),
	0x05, 0x03, 0x01, 0x00, 0x01, // memory section: min 1 page
	0x07, 0x0a, 0x01, 0x06, 'm', 'e', 'm', 'o', 'r', 'y', 0x02, 0x00, // export memory 0
)

func TestLoadRejectsInvalidWasm(t *testing.T) {
	_, err := LoadWithDefaults(context.Background(), []byte("not wasm"))
	if !stderrors.Is(err, &errors.Error{Phase: errors.PhaseLoad, Kind: errors.KindInvalidInput}) {
		t.Fatalf("Load = %v, want load error", err)
	}
}

func TestLoadReportsMissingExports(t *testing.T) {
	tests := []struct {
		name       string
		wasm       []byte
		wantMemory bool
	}{
		{"empty", emptyModule, true},
		{"memory only", memoryModule, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.ModuleName = "libcairo"
			_, err := Load(context.Background(), tt.wasm, cfg)

			var missing *errors.MissingExportsError
			if !stderrors.As(err, &missing) {
				t.Fatalf("Load = %v, want MissingExportsError", err)
			}
			if missing.Module != "libcairo" {
				t.Errorf("Module = %q", missing.Module)
			}
			if got := slices.Contains(missing.Exports, "memory"); got != tt.wantMemory {
				t.Errorf("memory reported missing = %v, want %v", got, tt.wantMemory)
			}
			for _, name := range []string{"malloc", "cairo_create", "cairo_surface_destroy", "bind_write_func"} {
				if !slices.Contains(missing.Exports, name) {
					t.Errorf("%s not reported", name)
				}
			}
			if !stderrors.Is(err, &errors.Error{Kind: errors.KindMissingExport}) {
				t.Error("MissingExportsError does not match missing_export kind")
			}
		})
	}
}

func TestRequiredExports(t *testing.T) {
	names := requiredExports()
	if !slices.IsSorted(names) {
		t.Error("not sorted")
	}
	if len(slices.Compact(slices.Clone(names))) != len(names) {
		t.Error("duplicates")
	}
	for _, name := range []string{"cairo_reference", "cairo_font_options_status", "cairo_path_destroy", "cairo_svg_surface_create_for_stream"} {
		if !slices.Contains(names, name) {
			t.Errorf("%s missing", name)
		}
	}
	for k, lt := range lifetimes {
		if lt.destroy == "" {
			t.Errorf("%s has no destroy entry point", k)
		}
		if k.Counted() != (lt.reference != "") {
			t.Errorf("%s: reference entry point does not match Counted", k)
		}
	}
}

func TestMemoryAdapter(t *testing.T) {
	ctx := context.Background()
	r := wazero.NewRuntime(ctx)
	defer r.Close(ctx)
	mod, err := r.Instantiate(ctx, memoryModule)
	if err != nil {
		t.Fatalf("Instantiate: %v", err)
	}
	m := newMemory(mod.Memory())

	if err := m.Write(16, []byte("cairo\x00tail")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if s := m.cstring(16); s != "cairo" {
		t.Errorf("cstring = %q", s)
	}
	if s := m.cstring(0); s != "" {
		t.Errorf("cstring(NULL) = %q", s)
	}

	if err := m.WriteU32(64, 0xdeadbeef); err != nil {
		t.Fatalf("WriteU32: %v", err)
	}
	if v, _ := m.ReadU32(64); v != 0xdeadbeef {
		t.Errorf("ReadU32 = %#x", v)
	}
	if v := m.i32(64); v != int32(-559038737) {
		t.Errorf("i32 = %d", v)
	}
	if err := m.WriteU64(72, 1<<40); err != nil {
		t.Fatalf("WriteU64: %v", err)
	}
	if v, _ := m.ReadU64(72); v != 1<<40 {
		t.Errorf("ReadU64 = %d", v)
	}

	const pageSize = 65536
	if _, err := m.Read(pageSize-2, 4); err == nil {
		t.Error("read past end succeeded")
	}
	if err := m.WriteU64(pageSize-4, 0); err == nil {
		t.Error("write past end succeeded")
	}
}

func TestCallbacksRouting(t *testing.T) {
	cbs := newCallbacks()

	var destroyed []native.Closure
	cbs.add(7, &callback{
		destroy: func(c native.Closure) { destroyed = append(destroyed, c) },
		owned:   []block{{ptr: 100, size: 4}},
	})
	cbs.add(8, &callback{
		write: func(_ native.Closure, data []byte) native.Status {
			if string(data) != "abc" {
				return status.WriteError
			}
			return status.Success
		},
	})
	cbs.add(9, &callback{
		read: func(_ native.Closure, buf []byte) native.Status {
			copy(buf, "xy")
			return status.Success
		},
	})

	if st := cbs.onWrite(8, []byte("abc")); st != status.Success {
		t.Errorf("write = %s", st)
	}
	buf := make([]byte, 2)
	if st := cbs.onRead(9, buf); st != status.Success || string(buf) != "xy" {
		t.Errorf("read = %s, %q", st, buf)
	}
	if st := cbs.onRead(8, buf); st != status.ReadError {
		t.Errorf("read on write-only closure = %s", st)
	}
	if st := cbs.onWrite(42, nil); st != status.WriteError {
		t.Errorf("write on unknown closure = %s", st)
	}

	cbs.onDestroy(7)
	cbs.onDestroy(7)
	if !slices.Equal(destroyed, []native.Closure{7}) {
		t.Errorf("destroyed = %v, want [7]", destroyed)
	}
	if p := cbs.takePending(); len(p) != 1 || p[0].ptr != 100 {
		t.Errorf("pending = %v", p)
	}
	if p := cbs.takePending(); len(p) != 0 {
		t.Errorf("pending not cleared: %v", p)
	}
	if n := cbs.len(); n != 2 {
		t.Errorf("len = %d, want 2", n)
	}
}

func TestInternalClosures(t *testing.T) {
	cbs := newCallbacks()
	a := cbs.internal(&callback{})
	b := cbs.internal(&callback{})
	if a < internalBase || b < internalBase || a == b {
		t.Errorf("internal ids %d, %d", a, b)
	}
	cbs.onDestroy(a)
	if cbs.lookup(a) != nil || cbs.lookup(b) == nil {
		t.Error("destroy removed the wrong entry")
	}
}

func TestHostTrampolines(t *testing.T) {
	l := loadStub(t)
	ctx := context.Background()
	call := func(t *testing.T, name string, args ...uint64) int32 {
		t.Helper()
		res, err := l.mod.ExportedFunction(name).Call(ctx, args...)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if len(res) == 0 {
			return 0
		}
		return api.DecodeI32(res[0])
	}

	var wrote string
	l.cbs.add(5, &callback{write: func(_ native.Closure, data []byte) native.Status {
		wrote = string(data)
		return status.Success
	}})
	l.cbs.add(6, &callback{read: func(_ native.Closure, buf []byte) native.Status {
		copy(buf, "xy")
		return status.Success
	}})
	var destroyed native.Closure
	l.cbs.add(3, &callback{destroy: func(c native.Closure) { destroyed = c }})

	if err := l.mem.Write(2048, []byte("abc")); err != nil {
		t.Fatal(err)
	}
	if st := call(t, "call_write", 5, 2048, 3); st != int32(status.Success) || wrote != "abc" {
		t.Errorf("write = %d, %q", st, wrote)
	}
	if st := call(t, "call_read", 6, 3000, 2); st != int32(status.Success) {
		t.Errorf("read = %d", st)
	}
	if got, _ := l.mem.Read(3000, 2); string(got) != "xy" {
		t.Errorf("read filled %q, want xy", got)
	}

	tests := []struct {
		name string
		fn   string
		args []uint64
		want status.Status
	}{
		{"read unknown closure", "call_read", []uint64{42, 3000, 2}, status.ReadError},
		{"write unknown closure", "call_write", []uint64{42, 2048, 3}, status.WriteError},
		{"read out of range", "call_read", []uint64{6, 1 << 20, 2}, status.ReadError},
		{"write out of range", "call_write", []uint64{5, 1 << 20, 3}, status.WriteError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if st := call(t, tt.fn, tt.args...); st != int32(tt.want) {
				t.Errorf("status = %d, want %d", st, tt.want)
			}
		})
	}

	call(t, "call_destroy", 3)
	if destroyed != 3 {
		t.Errorf("destroy routed to %d", destroyed)
	}
	if l.cbs.lookup(3) != nil {
		t.Error("destroy left the entry registered")
	}
}

func TestStubGuestLoads(t *testing.T) {
	l := loadStub(t)
	if v := l.Version(); v != stubVersion {
		t.Errorf("Version = %q", v)
	}
	if l.destroy != 1 {
		t.Errorf("destroy trampoline = %d, want table index 1", l.destroy)
	}
}

func TestWrapBorrowedThroughGuest(t *testing.T) {
	l := loadStub(t)
	setCell(t, l, cellRefs, 1)

	o, err := handle.Wrap(l, native.KindSurface, stubSurface, false)
	if err != nil {
		t.Fatalf("Wrap: %v", err)
	}
	if got := o.ReferenceCount(); got != 2 {
		t.Errorf("refcount after borrowed wrap = %d, want 2", got)
	}
	o.Close()
	o.Close()
	if got := l.ReferenceCount(native.KindSurface, stubSurface); got != 1 {
		t.Errorf("refcount after Close = %d, want 1", got)
	}
}

func TestLiveSetThroughGuest(t *testing.T) {
	l := loadStub(t)
	setCell(t, l, cellRefs, 1)
	live := keepalive.New(nil)

	c, err := live.Attach(l, native.KindSurface, stubSurface, "kept")
	if err != nil {
		t.Fatalf("Attach: %v", err)
	}
	if got := cell(t, l, cellUserData); got != int32(c) {
		t.Errorf("guest holds closure %d, want %d", got, c)
	}
	if live.Len() != 1 || l.Callbacks() != 1 {
		t.Fatalf("live = %d, callbacks = %d", live.Len(), l.Callbacks())
	}

	l.Destroy(native.KindSurface, stubSurface)
	if live.Len() != 0 {
		t.Error("destroy trampoline did not reach the live set")
	}
	if n := l.Callbacks(); n != 0 {
		t.Errorf("callbacks = %d after destroy", n)
	}
}

func TestMimeCopyFreedAfterDestroy(t *testing.T) {
	l := loadStub(t)
	setCell(t, l, cellRefs, 1)
	live := keepalive.New(nil)

	c, err := live.AttachMime(l, stubSurface, "image/png", []byte("png"))
	if err != nil {
		t.Fatalf("AttachMime: %v", err)
	}
	if got := cell(t, l, cellMimeData); got != int32(c) {
		t.Errorf("guest holds mime closure %d, want %d", got, c)
	}
	frees := cell(t, l, cellFrees)

	l.Destroy(native.KindSurface, stubSurface)
	if live.Len() != 0 || l.Callbacks() != 0 {
		t.Errorf("live = %d, callbacks = %d after destroy", live.Len(), l.Callbacks())
	}
	if got := cell(t, l, cellFrees); got != frees+1 {
		t.Errorf("frees = %d, want %d: mime copy not released", got, frees+1)
	}
}

func TestForDataCopyOwnedBySurface(t *testing.T) {
	l := loadStub(t)
	data := []byte{1, 2, 3, 4}

	s := l.ImageSurfaceCreateForData(data, native.FormatARGB32, 1, 1, 4)
	if s != stubSurface {
		t.Fatalf("surface = %d", s)
	}
	if got, _ := l.mem.Read(heapBase, 4); !slices.Equal(got, data) {
		t.Errorf("guest copy = %v, want %v", got, data)
	}
	if internal := cell(t, l, cellUserData); native.Closure(uint32(internal)) < internalBase {
		t.Errorf("copy keyed by %d, want an internal id", uint32(internal))
	}
	frees := cell(t, l, cellFrees)

	l.Destroy(native.KindSurface, s)
	if got := cell(t, l, cellFrees); got != frees+1 {
		t.Errorf("frees = %d, want %d", got, frees+1)
	}
	if n := l.Callbacks(); n != 0 {
		t.Errorf("callbacks = %d after destroy", n)
	}
}

func TestStreamSurfaceTiedToUserData(t *testing.T) {
	l := loadStub(t)
	const c native.Closure = 1 << 30
	write := func(native.Closure, []byte) native.Status { return status.Success }

	s := l.VectorSurfaceCreateForStream(native.SurfaceTypeSVG, write, c, 10, 10)
	if s != stubSurface {
		t.Fatalf("surface = %d", s)
	}
	if got := cell(t, l, cellUserData); got != int32(c) {
		t.Errorf("user data = %d, want %d", got, c)
	}
	if l.cbs.lookup(c) == nil {
		t.Fatal("write closure not registered")
	}

	l.Destroy(native.KindSurface, s)
	if l.cbs.lookup(c) != nil {
		t.Error("write closure outlived the surface")
	}
}

func TestCleanupRunsOnCallerGoroutine(t *testing.T) {
	l := loadStub(t)
	setCell(t, l, cellRefs, 1)
	func() {
		if _, err := handle.Wrap(l, native.KindSurface, stubSurface, true); err != nil {
			t.Fatalf("Wrap: %v", err)
		}
	}()

	deadline := time.Now().Add(2 * time.Second)
	for l.queued() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("cleanup did not queue the destroy")
		}
		runtime.GC()
		time.Sleep(10 * time.Millisecond)
	}
	if got := cell(t, l, cellRefs); got != 1 {
		t.Fatalf("cleanup entered the guest: refcount = %d", got)
	}

	if got := l.ReferenceCount(native.KindSurface, stubSurface); got != 0 {
		t.Errorf("refcount = %d, want the queued destroy to run first", got)
	}
	if n := l.queued(); n != 0 {
		t.Errorf("queue holds %d after a call", n)
	}
}

func TestDestroyLaterAfterClose(t *testing.T) {
	l, err := LoadWithDefaults(context.Background(), stubGuest())
	if err != nil {
		t.Fatal(err)
	}
	if err := l.Close(); err != nil {
		t.Fatal(err)
	}
	l.DestroyLater(native.KindSurface, stubSurface)
	if n := l.queued(); n != 0 {
		t.Errorf("queued %d on a closed library", n)
	}
	l.Collect()
}
