package wasmlib

import (
	"context"
	"sync"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	"github.com/wippyai/cairobind/native"
	"github.com/wippyai/cairobind/status"
)

// HostModule is the import namespace of the guest trampolines.
const HostModule = "cairobind"

// internalBase starts the closure ids this package allocates itself.
const internalBase native.Closure = 1 << 31

// block is a guest allocation owned by a callback entry.
type block struct {
	ptr, size uint32
}

type callback struct {
	destroy native.DestroyFunc
	read    native.ReadFunc
	write   native.WriteFunc
	owned   []block
}

// callbacks routes trampoline calls to the Go functions registered under
// each closure id. Guest blocks owned by a destroyed entry are queued and
// freed once the outermost guest call returns.
type callbacks struct {
	entries map[native.Closure]*callback
	pending []block
	next    native.Closure
	mu      sync.Mutex
}

func newCallbacks() *callbacks {
	return &callbacks{
		entries: make(map[native.Closure]*callback),
		next:    internalBase,
	}
}

// add registers cb under c, replacing any previous entry.
func (t *callbacks) add(c native.Closure, cb *callback) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries[c] = cb
}

// internal registers cb under a fresh id from the internal range.
func (t *callbacks) internal(cb *callback) native.Closure {
	t.mu.Lock()
	defer t.mu.Unlock()
	for {
		id := t.next
		t.next++
		if t.next == 0 {
			t.next = internalBase
		}
		if _, used := t.entries[id]; !used {
			t.entries[id] = cb
			return id
		}
	}
}

// remove drops the entry for c and returns it.
func (t *callbacks) remove(c native.Closure) *callback {
	t.mu.Lock()
	defer t.mu.Unlock()
	cb := t.entries[c]
	delete(t.entries, c)
	return cb
}

func (t *callbacks) lookup(c native.Closure) *callback {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.entries[c]
}

// takePending returns the queued guest blocks and clears the queue.
func (t *callbacks) takePending() []block {
	t.mu.Lock()
	defer t.mu.Unlock()
	p := t.pending
	t.pending = nil
	return p
}

func (t *callbacks) len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}

// onDestroy handles the destroy trampoline. The entry is dropped before the
// Go function runs.
func (t *callbacks) onDestroy(c native.Closure) {
	cb := t.remove(c)
	if cb == nil {
		Logger().Warn("destroy for unknown closure", zap.Uint32("closure", uint32(c)))
		return
	}
	if len(cb.owned) > 0 {
		t.mu.Lock()
		t.pending = append(t.pending, cb.owned...)
		t.mu.Unlock()
	}
	if cb.destroy != nil {
		cb.destroy(c)
	}
}

func (t *callbacks) onRead(c native.Closure, buf []byte) native.Status {
	cb := t.lookup(c)
	if cb == nil || cb.read == nil {
		Logger().Warn("read for unknown closure", zap.Uint32("closure", uint32(c)))
		return status.ReadError
	}
	return cb.read(c, buf)
}

func (t *callbacks) onWrite(c native.Closure, data []byte) native.Status {
	cb := t.lookup(c)
	if cb == nil || cb.write == nil {
		Logger().Warn("write for unknown closure", zap.Uint32("closure", uint32(c)))
		return status.WriteError
	}
	return cb.write(c, data)
}

// instantiateHost registers the trampoline imports in r.
func instantiateHost(ctx context.Context, r wazero.Runtime, t *callbacks) (api.Module, error) {
	i32 := api.ValueTypeI32
	return r.NewHostModuleBuilder(HostModule).
		NewFunctionBuilder().
		WithGoModuleFunction(api.GoModuleFunc(func(_ context.Context, _ api.Module, stack []uint64) {
			t.onDestroy(native.Closure(api.DecodeU32(stack[0])))
		}), []api.ValueType{i32}, nil).
		Export("destroy").
		NewFunctionBuilder().
		WithGoModuleFunction(api.GoModuleFunc(func(_ context.Context, mod api.Module, stack []uint64) {
			c := native.Closure(api.DecodeU32(stack[0]))
			buf, ok := mod.Memory().Read(api.DecodeU32(stack[1]), api.DecodeU32(stack[2]))
			st := status.ReadError
			if ok {
				st = t.onRead(c, buf)
			}
			stack[0] = api.EncodeI32(int32(st))
		}), []api.ValueType{i32, i32, i32}, []api.ValueType{i32}).
		Export("read").
		NewFunctionBuilder().
		WithGoModuleFunction(api.GoModuleFunc(func(_ context.Context, mod api.Module, stack []uint64) {
			c := native.Closure(api.DecodeU32(stack[0]))
			data, ok := mod.Memory().Read(api.DecodeU32(stack[1]), api.DecodeU32(stack[2]))
			st := status.WriteError
			if ok {
				st = t.onWrite(c, data)
			}
			stack[0] = api.EncodeI32(int32(st))
		}), []api.ValueType{i32, i32, i32}, []api.ValueType{i32}).
		Export("write").
		Instantiate(ctx)
}
