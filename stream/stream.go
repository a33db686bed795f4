// Package stream bridges the engine's read and write callbacks to io.Reader
// and io.Writer.
//
// The engine calls a fixed trampoline with a closure id and a buffer; the
// Bridge maps the id to an Adapter wrapping the host stream. Per-call adapters
// registered by Read and Write live exactly as long as one native call.
// Adapters opened with Open back stream surfaces and live until dropped.
//
// Host failures are reported to the engine as READ_ERROR or WRITE_ERROR and
// the original Go error is kept on the adapter so that it can be attached as
// the cause of the error returned to the caller.
package stream

import (
	"fmt"
	"io"
	"sync"

	"go.uber.org/zap"

	"github.com/wippyai/cairobind/errors"
	"github.com/wippyai/cairobind/internal/closure"
	"github.com/wippyai/cairobind/native"
	"github.com/wippyai/cairobind/status"
)

// closureBase keeps stream ids apart from keep-alive ids in logs.
const closureBase = native.Closure(1 << 30)

// Adapter pairs a host stream with a closure id.
type Adapter struct {
	r      io.Reader
	w      io.Writer
	bridge *Bridge
	err    error
	mu     sync.Mutex
	id     native.Closure
	n      int64
}

// Closure returns the id the engine passes back to the trampoline.
func (a *Adapter) Closure() native.Closure { return a.id }

// Err returns the first host error seen by the adapter.
func (a *Adapter) Err() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.err
}

// Bytes returns the number of bytes moved through the adapter.
func (a *Adapter) Bytes() int64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.n
}

// Drop unregisters the adapter. Later callbacks for its id fail.
func (a *Adapter) Drop() {
	if _, ok := a.bridge.adapters.Unregister(a.id); ok {
		Logger().Debug("adapter dropped",
			zap.Uint32("closure", uint32(a.id)),
			zap.Int64("bytes", a.Bytes()))
	}
}

func (a *Adapter) fail(err error) {
	a.mu.Lock()
	if a.err == nil {
		a.err = err
	}
	a.mu.Unlock()
}

func (a *Adapter) read(buf []byte) (st native.Status) {
	defer func() {
		if p := recover(); p != nil {
			a.fail(errors.New(errors.PhaseStream, errors.KindReadError).
				Detail("host reader panicked: %v", p).Build())
			Logger().Warn("recovered panic in reader", zap.Any("panic", p))
			st = status.ReadError
		}
	}()

	// Read into a scratch buffer so a short read leaves the native buffer untouched.
	tmp := make([]byte, len(buf))
	n, err := io.ReadFull(a.r, tmp)
	a.mu.Lock()
	a.n += int64(n)
	a.mu.Unlock()
	if err != nil {
		a.fail(errors.New(errors.PhaseStream, errors.KindReadError).
			Want(fmt.Sprintf("%d bytes", len(buf))).
			Got(fmt.Sprintf("%d bytes", n)).
			Cause(err).
			Build())
		return status.ReadError
	}
	copy(buf, tmp)
	return status.Success
}

func (a *Adapter) write(data []byte) (st native.Status) {
	defer func() {
		if p := recover(); p != nil {
			a.fail(errors.New(errors.PhaseStream, errors.KindWriteError).
				Detail("host writer panicked: %v", p).Build())
			Logger().Warn("recovered panic in writer", zap.Any("panic", p))
			st = status.WriteError
		}
	}()

	n, err := a.w.Write(data)
	a.mu.Lock()
	a.n += int64(n)
	a.mu.Unlock()
	if err == nil && n < len(data) {
		err = io.ErrShortWrite
	}
	if err != nil {
		a.fail(errors.New(errors.PhaseStream, errors.KindWriteError).
			Want(fmt.Sprintf("%d bytes", len(data))).
			Got(fmt.Sprintf("%d bytes", n)).
			Cause(err).
			Build())
		return status.WriteError
	}
	return status.Success
}

// Bridge owns the adapter table and the trampolines.
// Bridge is thread-safe.
type Bridge struct {
	adapters *closure.Table[*Adapter]
}

// NewBridge creates a bridge with no adapters.
func NewBridge() *Bridge {
	return &Bridge{adapters: closure.NewTable[*Adapter](closureBase)}
}

// ReadTrampoline is the native.ReadFunc for every read adapter.
func (b *Bridge) ReadTrampoline(c native.Closure, buf []byte) native.Status {
	a, ok := b.adapters.Lookup(c)
	if !ok || a.r == nil {
		Logger().Warn("read callback for unknown closure", zap.Uint32("closure", uint32(c)))
		return status.ReadError
	}
	st := a.read(buf)
	if st != status.Success {
		Logger().Debug("read callback failed", zap.Uint32("closure", uint32(c)), zap.Error(a.Err()))
	}
	return st
}

// WriteTrampoline is the native.WriteFunc for every write adapter.
func (b *Bridge) WriteTrampoline(c native.Closure, data []byte) native.Status {
	a, ok := b.adapters.Lookup(c)
	if !ok || a.w == nil {
		Logger().Warn("write callback for unknown closure", zap.Uint32("closure", uint32(c)))
		return status.WriteError
	}
	st := a.write(data)
	if st != status.Success {
		Logger().Debug("write callback failed", zap.Uint32("closure", uint32(c)), zap.Error(a.Err()))
	}
	return st
}

func (b *Bridge) register(a *Adapter) *Adapter {
	a.bridge = b
	a.id = b.adapters.Register(a)
	return a
}

// Read runs one native call reading from r. fn receives the trampoline and
// closure to pass to the engine and returns the status of the call. The
// adapter is unregistered when fn returns.
func (b *Bridge) Read(r io.Reader, fn func(read native.ReadFunc, c native.Closure) native.Status) error {
	if r == nil {
		return errors.InvalidInput(errors.PhaseStream, "nil reader")
	}
	a := b.register(&Adapter{r: r})
	defer a.Drop()
	return status.CheckWith(fn(b.ReadTrampoline, a.id), a.Err())
}

// Write runs one native call writing to w, like Read.
func (b *Bridge) Write(w io.Writer, fn func(write native.WriteFunc, c native.Closure) native.Status) error {
	if w == nil {
		return errors.InvalidInput(errors.PhaseStream, "nil writer")
	}
	a := b.register(&Adapter{w: w})
	defer a.Drop()
	return status.CheckWith(fn(b.WriteTrampoline, a.id), a.Err())
}

// Open registers a write adapter that outlives a single call. The caller
// must Drop it once the engine no longer writes to it.
func (b *Bridge) Open(w io.Writer) (*Adapter, error) {
	if w == nil {
		return nil, errors.InvalidInput(errors.PhaseStream, "nil writer")
	}
	a := b.register(&Adapter{w: w})
	Logger().Debug("adapter opened", zap.Uint32("closure", uint32(a.id)))
	return a, nil
}

// Len returns the number of registered adapters.
func (b *Bridge) Len() int {
	return b.adapters.Len()
}
