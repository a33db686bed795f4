// Package handle ties a Go value's lifetime to one native reference.
//
// An Object is created by Wrap and owns exactly one reference to its native
// handle. The reference is dropped by Close, or by a GC cleanup if Close is
// never called; whichever comes first wins and the other is a no-op.
//
// In-flight native calls pin the object. Closing a pinned object defers the
// native destroy until the last pin is returned.
package handle

import (
	"runtime"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/wippyai/cairobind/errors"
	"github.com/wippyai/cairobind/native"
	"github.com/wippyai/cairobind/status"
)

// Object owns one native reference.
type Object struct {
	lib     native.Library
	rel     *releaser
	cleanup runtime.Cleanup
	kind    native.Kind
	h       native.Handle
}

// releaser holds everything needed to drop the reference.
// It must never point back at its Object, or the cleanup would never run.
type releaser struct {
	lib      native.Library
	calls    atomic.Int64
	closed   atomic.Bool
	released atomic.Bool
	kind     native.Kind
	h        native.Handle
}

// Wrap takes a native handle under Go ownership.
//
// With takeOwnership false the handle is borrowed from another owner and a
// new native reference is taken before anything else touches it. The object's
// status is validated next; on failure the reference Wrap holds is dropped and
// no cleanup is registered.
func Wrap(lib native.Library, kind native.Kind, h native.Handle, takeOwnership bool) (*Object, error) {
	if h == 0 {
		return nil, errors.InvalidHandle(errors.PhaseWrap, kind.String())
	}

	if !takeOwnership {
		if !kind.Counted() {
			return nil, errors.Unsupported(errors.PhaseWrap, "borrowing "+kind.String()+" handles requires a copy")
		}
		lib.Reference(kind, h)
	}

	if err := status.Check(lib.Status(kind, h)); err != nil {
		lib.Destroy(kind, h)
		Logger().Debug("wrap rejected",
			zap.Stringer("kind", kind),
			zap.Uint32("handle", uint32(h)),
			zap.Error(err))
		return nil, err
	}

	rel := &releaser{lib: lib, kind: kind, h: h}
	o := &Object{lib: lib, rel: rel, kind: kind, h: h}
	o.cleanup = runtime.AddCleanup(o, (*releaser).collect, rel)

	Logger().Debug("wrapped",
		zap.Stringer("kind", kind),
		zap.Uint32("handle", uint32(h)),
		zap.Bool("owned", takeOwnership))

	return o, nil
}

// Kind returns the resource family of the wrapped handle.
func (o *Object) Kind() native.Kind { return o.kind }

// Handle returns the raw native handle without pinning it.
// Intended for building external export tables.
func (o *Object) Handle() native.Handle { return o.h }

// Library returns the engine the handle belongs to.
func (o *Object) Library() native.Library { return o.lib }

// Released reports whether Close has been called or the cleanup has run.
func (o *Object) Released() bool { return o.rel.closed.Load() }

// Pin marks a native call in flight and returns the handle.
// Every successful Pin must be paired with Unpin.
func (o *Object) Pin() (native.Handle, error) {
	r := o.rel
	if r.closed.Load() {
		return 0, errors.Released(errors.PhaseWrap, o.kind.String())
	}
	r.calls.Add(1)
	if r.closed.Load() {
		r.unpin()
		return 0, errors.Released(errors.PhaseWrap, o.kind.String())
	}
	return o.h, nil
}

// Unpin ends a native call started with Pin.
func (o *Object) Unpin() {
	o.rel.unpin()
	runtime.KeepAlive(o)
}

// Do pins the handle, runs fn and then checks the object's status, which
// the engine updates when an operation on it fails.
func (o *Object) Do(fn func(lib native.Library, h native.Handle)) error {
	h, err := o.Pin()
	if err != nil {
		return err
	}
	defer o.Unpin()

	fn(o.lib, h)
	return status.Check(o.lib.Status(o.kind, h))
}

// Status returns the object's native status as an error.
func (o *Object) Status() error {
	h, err := o.Pin()
	if err != nil {
		return err
	}
	defer o.Unpin()
	return status.Check(o.lib.Status(o.kind, h))
}

// ReferenceCount returns the native reference count, or 0 once released.
func (o *Object) ReferenceCount() uint32 {
	h, err := o.Pin()
	if err != nil {
		return 0
	}
	defer o.Unpin()
	return o.lib.ReferenceCount(o.kind, h)
}

// Close drops the native reference. It is safe to call more than once.
func (o *Object) Close() error {
	r := o.rel
	if !r.closed.CompareAndSwap(false, true) {
		return nil
	}
	o.cleanup.Stop()
	if r.calls.Load() == 0 {
		r.release("close")
	} else {
		Logger().Debug("release deferred",
			zap.Stringer("kind", r.kind),
			zap.Uint32("handle", uint32(r.h)),
			zap.Int64("pins", r.calls.Load()))
	}
	return nil
}

func (r *releaser) unpin() {
	if r.calls.Add(-1) == 0 && r.closed.Load() {
		r.release("unpin")
	}
}

// collect runs as the GC cleanup once the Object is unreachable.
func (r *releaser) collect() {
	if r.closed.CompareAndSwap(false, true) {
		r.release("gc")
	}
}

func (r *releaser) release(by string) {
	if !r.released.CompareAndSwap(false, true) {
		return
	}
	if d, ok := r.lib.(native.DeferredDestroyer); ok && by == "gc" {
		d.DestroyLater(r.kind, r.h)
	} else {
		r.lib.Destroy(r.kind, r.h)
	}
	Logger().Debug("released",
		zap.Stringer("kind", r.kind),
		zap.Uint32("handle", uint32(r.h)),
		zap.String("by", by))
}
