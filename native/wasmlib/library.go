package wasmlib

import (
	"context"
	"os"
	"sync"
	"sync/atomic"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/wippyai/cairobind"
	"github.com/wippyai/cairobind/errors"
	"github.com/wippyai/cairobind/native"
	"github.com/wippyai/cairobind/status"
)

var (
	_ native.Library           = (*Library)(nil)
	_ native.DeferredDestroyer = (*Library)(nil)
)

// malloc guarantees this alignment on wasm32.
const maxAlign = 8

// Library is a cairo engine running inside a wazero runtime. Like the
// engine it wraps, it is not safe for concurrent use: the guest is only
// entered from the goroutine driving the Library. Releases requested by GC
// cleanups are queued with DestroyLater and run at the next outermost call.
type Library struct {
	ctx      context.Context
	runtime  wazero.Runtime
	mod      api.Module
	mem      *memory
	fns      map[string]api.Function
	cbs      *callbacks
	trapErr  error
	version  string
	deferred []released
	destroy  uint64
	read     uint64
	write    uint64
	depth    int
	trapMu   sync.Mutex
	deferMu  sync.Mutex
	closed   atomic.Bool
}

// released is a destroy queued by DestroyLater.
type released struct {
	kind native.Kind
	h    native.Handle
}

// LoadWithDefaults loads wasm with DefaultConfig.
func LoadWithDefaults(ctx context.Context, wasm []byte) (*Library, error) {
	return Load(ctx, wasm, DefaultConfig())
}

// LoadFile reads and loads the guest module at path.
func LoadFile(ctx context.Context, path string, cfg Config) (*Library, error) {
	wasm, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Load("read "+path, err)
	}
	return Load(ctx, wasm, cfg)
}

// Load compiles and instantiates a guest cairo build. ctx is kept for every
// later guest call.
func Load(ctx context.Context, wasm []byte, cfg Config) (*Library, error) {
	name := cfg.ModuleName
	if name == "" {
		name = DefaultConfig().ModuleName
	}

	rcfg := wazero.NewRuntimeConfig()
	if cfg.MemoryLimitPages > 0 {
		rcfg = rcfg.WithMemoryLimitPages(cfg.MemoryLimitPages)
	}
	r := wazero.NewRuntimeWithConfig(ctx, rcfg)

	l := &Library{
		ctx:     ctx,
		runtime: r,
		cbs:     newCallbacks(),
		fns:     make(map[string]api.Function),
	}
	fail := func(err error) (*Library, error) {
		return nil, multierr.Append(err, r.Close(ctx))
	}

	compiled, err := r.CompileModule(ctx, wasm)
	if err != nil {
		return fail(errors.Load("compile "+name, err))
	}
	if err := checkExports(name, compiled); err != nil {
		return fail(err)
	}

	if _, err := wasi_snapshot_preview1.Instantiate(ctx, r); err != nil {
		return fail(errors.Load("instantiate WASI", err))
	}
	if _, err := instantiateHost(ctx, r, l.cbs); err != nil {
		return fail(errors.Load("instantiate host module", err))
	}

	mcfg := wazero.NewModuleConfig().WithName(name).WithStartFunctions()
	if cfg.Stdout != nil {
		mcfg = mcfg.WithStdout(cfg.Stdout)
	}
	if cfg.Stderr != nil {
		mcfg = mcfg.WithStderr(cfg.Stderr)
	}
	mod, err := r.InstantiateModule(ctx, compiled, mcfg)
	if err != nil {
		return fail(errors.Load("instantiate "+name, err))
	}
	l.mod = mod
	l.mem = newMemory(mod.Memory())

	if start := mod.ExportedFunction("_initialize"); start != nil {
		if _, err := start.Call(ctx); err != nil {
			return fail(errors.Load("initialize "+name, err))
		}
	}
	for _, n := range requiredExports() {
		l.fns[n] = mod.ExportedFunction(n)
	}

	l.destroy = l.call("bind_destroy_func")
	l.read = l.call("bind_read_func")
	l.write = l.call("bind_write_func")
	l.version = l.mem.cstring(l.u32("cairo_version_string"))
	if err := l.trapped(); err != nil {
		return fail(errors.Load("bind trampolines", err))
	}

	Logger().Debug("engine loaded",
		zap.String("module", name),
		zap.String("version", l.version),
		zap.Uint32("memory_bytes", l.mod.Memory().Size()))
	return l, nil
}

// call invokes a guest export and returns its first result. A trap is
// recorded, logged and reported by Close; the call then yields zero.
func (l *Library) call(name string, args ...uint64) uint64 {
	if l.closed.Load() {
		return 0
	}
	if l.depth == 0 {
		l.Collect()
	}
	fn := l.fns[name]
	if fn == nil {
		l.trap(name, errors.Unsupported(errors.PhaseNative, name))
		return 0
	}

	l.depth++
	res, err := fn.Call(l.ctx, args...)
	l.depth--
	if l.depth == 0 {
		l.flush()
	}
	if err != nil {
		l.trap(name, err)
		return 0
	}
	if len(res) == 0 {
		return 0
	}
	return res[0]
}

func (l *Library) i32(name string, args ...uint64) int32 {
	return api.DecodeI32(l.call(name, args...))
}

func (l *Library) u32(name string, args ...uint64) uint32 {
	return api.DecodeU32(l.call(name, args...))
}

func (l *Library) handle(name string, args ...uint64) native.Handle {
	return native.Handle(l.u32(name, args...))
}

func (l *Library) status(name string, args ...uint64) native.Status {
	return native.Status(l.i32(name, args...))
}

// flush frees guest blocks released by destroy callbacks.
func (l *Library) flush() {
	for _, b := range l.cbs.takePending() {
		l.Free(b.ptr, b.size, maxAlign)
	}
}

func (l *Library) trap(name string, err error) {
	Logger().Error("guest call failed", zap.String("export", name), zap.Error(err))
	l.trapMu.Lock()
	defer l.trapMu.Unlock()
	l.trapErr = multierr.Append(l.trapErr, errors.Wrap(errors.PhaseNative, errors.KindNativeError, err, name))
}

func (l *Library) trapped() error {
	l.trapMu.Lock()
	defer l.trapMu.Unlock()
	return l.trapErr
}

// DestroyLater queues a destroy for the goroutine driving the Library. It
// never enters the guest and is safe to call from any goroutine.
func (l *Library) DestroyLater(k native.Kind, hd native.Handle) {
	if hd == 0 || l.closed.Load() {
		return
	}
	l.deferMu.Lock()
	defer l.deferMu.Unlock()
	l.deferred = append(l.deferred, released{kind: k, h: hd})
}

// Collect runs the destroys queued by DestroyLater. Every outermost guest
// call collects first; Collect is for callers that go idle.
func (l *Library) Collect() {
	for {
		l.deferMu.Lock()
		queue := l.deferred
		l.deferred = nil
		l.deferMu.Unlock()
		if len(queue) == 0 {
			return
		}
		for _, r := range queue {
			l.Destroy(r.kind, r.h)
		}
	}
}

func (l *Library) queued() int {
	l.deferMu.Lock()
	defer l.deferMu.Unlock()
	return len(l.deferred)
}

func argH(v native.Handle) uint64  { return api.EncodeU32(uint32(v)) }
func argP(v uint32) uint64         { return api.EncodeU32(v) }
func argC(v native.Closure) uint64 { return api.EncodeU32(uint32(v)) }
func argI(v int32) uint64          { return api.EncodeI32(v) }
func argN(v int) uint64            { return api.EncodeI32(int32(v)) }
func argF(v float64) uint64        { return api.EncodeF64(v) }

// Memory returns the guest's linear memory.
func (l *Library) Memory() cairobind.Memory { return l.mem }

// Alloc allocates size bytes of guest memory.
func (l *Library) Alloc(size, align uint32) (uint32, error) {
	if align > maxAlign {
		return 0, errors.Unsupported(errors.PhaseNative, "alignment above 8")
	}
	if size == 0 {
		size = 1
	}
	ptr := l.u32("malloc", argP(size))
	if ptr == 0 {
		return 0, errors.New(errors.PhaseNative, errors.KindNoMemory).
			Detail("malloc(%d) failed", size).
			Code(int(status.NoMemory)).
			Build()
	}
	return ptr, nil
}

// Free releases memory returned by Alloc.
func (l *Library) Free(ptr, _, _ uint32) {
	if ptr != 0 {
		l.call("free", argP(ptr))
	}
}

// bytes copies data into a fresh guest block. A nil slice yields 0.
func (l *Library) bytes(data []byte) (block, error) {
	if data == nil {
		return block{}, nil
	}
	ptr, err := l.Alloc(uint32(len(data)), 1)
	if err != nil {
		return block{}, err
	}
	if err := l.mem.Write(ptr, data); err != nil {
		l.Free(ptr, 0, 0)
		return block{}, err
	}
	return block{ptr: ptr, size: uint32(len(data))}, nil
}

// cstr copies s plus a NUL terminator into guest memory and returns the
// pointer with a func releasing it.
func (l *Library) cstr(s []byte) (uint32, func(), error) {
	buf := make([]byte, len(s)+1)
	copy(buf, s)
	blk, err := l.bytes(buf)
	if err != nil {
		return 0, func() {}, err
	}
	return blk.ptr, func() { l.Free(blk.ptr, blk.size, 1) }, nil
}

// out allocates a zeroed scratch block for out-parameters.
func (l *Library) out(size uint32) (uint32, func()) {
	ptr, err := l.Alloc(size, maxAlign)
	if err != nil {
		return 0, func() {}
	}
	_ = l.mem.Write(ptr, make([]byte, size))
	return ptr, func() { l.Free(ptr, size, maxAlign) }
}

// Version returns the guest's cairo version string.
func (l *Library) Version() string { return l.version }

// Callbacks returns the number of closures registered with the host module.
func (l *Library) Callbacks() int { return l.cbs.len() }

// Close tears down the runtime. Traps recorded since Load are reported.
func (l *Library) Close() error {
	if !l.closed.CompareAndSwap(false, true) {
		return nil
	}
	if n := l.cbs.len(); n > 0 {
		Logger().Warn("closing engine with registered callbacks", zap.Int("count", n))
	}
	if n := l.queued(); n > 0 {
		Logger().Debug("dropping queued destroys", zap.Int("count", n))
	}
	return multierr.Append(l.trapped(), l.runtime.Close(l.ctx))
}

// Reference takes a new reference on h.
func (l *Library) Reference(k native.Kind, hd native.Handle) native.Handle {
	name := lifetimes[k].reference
	if name == "" || hd == 0 {
		return hd
	}
	return l.handle(name, argH(hd))
}

// Destroy drops a reference on h.
func (l *Library) Destroy(k native.Kind, hd native.Handle) {
	if name := lifetimes[k].destroy; name != "" && hd != 0 {
		l.call(name, argH(hd))
	}
}

// ReferenceCount returns the native reference count.
func (l *Library) ReferenceCount(k native.Kind, hd native.Handle) uint32 {
	name := lifetimes[k].refcount
	if name == "" || hd == 0 {
		return 0
	}
	return l.u32(name, argH(hd))
}

// Status returns the object's status. Paths carry it in their first field.
func (l *Library) Status(k native.Kind, hd native.Handle) native.Status {
	if hd == 0 {
		return status.NullPointer
	}
	if k == native.KindPath {
		return native.Status(l.mem.i32(uint32(hd)))
	}
	name := lifetimes[k].status
	if name == "" {
		return status.Success
	}
	return l.status(name, argH(hd))
}

// Type returns the *_get_type tag.
func (l *Library) Type(k native.Kind, hd native.Handle) int32 {
	name := lifetimes[k].typ
	if name == "" || hd == 0 {
		return -1
	}
	return l.i32(name, argH(hd))
}

// SetUserData attaches key and data. destroy runs through the destroy
// trampoline when cairo releases data.
func (l *Library) SetUserData(k native.Kind, hd native.Handle, key, data native.Closure, destroy native.DestroyFunc) native.Status {
	name := lifetimes[k].setUserData
	if name == "" {
		return status.NullPointer
	}
	var tramp uint64
	if destroy != nil {
		l.cbs.add(data, &callback{destroy: destroy})
		tramp = l.destroy
	}
	st := l.status(name, argH(hd), argC(key), argC(data), tramp)
	if st != status.Success && destroy != nil {
		l.cbs.remove(data)
	}
	return st
}
