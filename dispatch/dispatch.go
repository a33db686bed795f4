// Package dispatch recovers the concrete wrapper type of a native handle.
//
// Each resource family with a *_get_type entry point owns a Table mapping
// type tags to constructors. Resolution reads the tag from the engine on
// every call, so edits to a table take effect on the next rehydration.
// Tags missing from the table resolve to the family's fallback constructor,
// which keeps unknown backends usable through the generic wrapper.
package dispatch

import (
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/wippyai/cairobind/handle"
	"github.com/wippyai/cairobind/native"
)

// Constructor builds a typed wrapper around a validated object.
type Constructor[T any] func(obj *handle.Object) T

// Resolver maps a type tag to a constructor.
type Resolver[T any] interface {
	Lookup(tag int32) (Constructor[T], bool)
}

// ResolverFunc adapts a function to Resolver.
type ResolverFunc[T any] func(tag int32) (Constructor[T], bool)

// Lookup calls f.
func (f ResolverFunc[T]) Lookup(tag int32) (Constructor[T], bool) { return f(tag) }

// Table is a mutable Resolver with a fallback constructor.
// Table is thread-safe.
type Table[T any] struct {
	ctors    map[int32]Constructor[T]
	fallback Constructor[T]
	mu       sync.RWMutex
}

// NewTable creates an empty table resolving every tag to fallback.
func NewTable[T any](fallback Constructor[T]) *Table[T] {
	return &Table[T]{
		ctors:    make(map[int32]Constructor[T]),
		fallback: fallback,
	}
}

// Register maps tag to ctor, replacing any previous entry.
func (t *Table[T]) Register(tag int32, ctor Constructor[T]) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.ctors[tag] = ctor
}

// Unregister removes tag so that it resolves to the fallback.
func (t *Table[T]) Unregister(tag int32) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.ctors, tag)
}

// Lookup returns the constructor registered for tag.
func (t *Table[T]) Lookup(tag int32) (Constructor[T], bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	c, ok := t.ctors[tag]
	return c, ok
}

// Fallback returns the constructor used for unregistered tags.
func (t *Table[T]) Fallback() Constructor[T] {
	return t.fallback
}

// Tags returns the registered tags in ascending order.
func (t *Table[T]) Tags() []int32 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	tags := make([]int32, 0, len(t.ctors))
	for tag := range t.ctors {
		tags = append(tags, tag)
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i] < tags[j] })
	return tags
}

// Clone returns an independent copy of the table.
func (t *Table[T]) Clone() *Table[T] {
	t.mu.RLock()
	defer t.mu.RUnlock()
	c := NewTable(t.fallback)
	for tag, ctor := range t.ctors {
		c.ctors[tag] = ctor
	}
	return c
}

// Resolve reads the type tag of h and returns the matching constructor from
// r, or fallback when r has no entry. A nil r always yields fallback.
func Resolve[T any](lib native.Library, kind native.Kind, h native.Handle, r Resolver[T], fallback Constructor[T]) (Constructor[T], int32) {
	tag := lib.Type(kind, h)
	if r != nil {
		if ctor, ok := r.Lookup(tag); ok && ctor != nil {
			return ctor, tag
		}
	}
	Logger().Debug("fallback constructor",
		zap.Stringer("kind", kind),
		zap.Uint32("handle", uint32(h)),
		zap.Int32("tag", tag))
	return fallback, tag
}

// Wrap takes h under Go ownership like handle.Wrap and builds the wrapper
// selected by its type tag in t.
func Wrap[T any](lib native.Library, kind native.Kind, h native.Handle, takeOwnership bool, t *Table[T]) (T, error) {
	return WrapWith[T](lib, kind, h, takeOwnership, t, t.Fallback())
}

// WrapWith is Wrap with an arbitrary resolver. The reference is acquired and
// the status checked before the tag is read.
func WrapWith[T any](lib native.Library, kind native.Kind, h native.Handle, takeOwnership bool, r Resolver[T], fallback Constructor[T]) (T, error) {
	var zero T
	obj, err := handle.Wrap(lib, kind, h, takeOwnership)
	if err != nil {
		return zero, err
	}
	ctor, _ := Resolve[T](lib, kind, h, r, fallback)
	return ctor(obj), nil
}
