// Package closure maps the opaque context pointers handed to native callbacks
// back to Go values.
//
// Native code cannot hold Go pointers, so each callback registration gets a
// non-zero integer id instead. The value stays reachable from the table until
// the id is unregistered.
package closure

import (
	"sync"

	"github.com/wippyai/cairobind/native"
)

// Table is a registry of Go values keyed by closure id.
type Table[T any] struct {
	values   map[native.Closure]T
	reserved map[native.Closure]struct{}
	next     native.Closure
	mu       sync.RWMutex
}

// NewTable creates an empty table whose first id is start.
// Distinct tables sharing one engine should use disjoint start values.
func NewTable[T any](start native.Closure) *Table[T] {
	if start == 0 {
		start = 1
	}
	return &Table[T]{
		values:   make(map[native.Closure]T),
		reserved: make(map[native.Closure]struct{}),
		next:     start,
	}
}

// Register stores v and returns its id. Ids are never 0 and never reused
// while registered or reserved.
func (t *Table[T]) Register(v T) native.Closure {
	t.mu.Lock()
	defer t.mu.Unlock()
	id := t.alloc()
	t.values[id] = v
	return id
}

// Reserve returns an id without storing a value under it. The id is not
// visible to Lookup until Commit; Cancel gives it back.
func (t *Table[T]) Reserve() native.Closure {
	t.mu.Lock()
	defer t.mu.Unlock()
	id := t.alloc()
	t.reserved[id] = struct{}{}
	return id
}

// Commit stores v under a reserved id. It reports false if id was not reserved.
func (t *Table[T]) Commit(id native.Closure, v T) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.reserved[id]; !ok {
		return false
	}
	delete(t.reserved, id)
	t.values[id] = v
	return true
}

// Cancel releases a reserved id.
func (t *Table[T]) Cancel(id native.Closure) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.reserved, id)
}

func (t *Table[T]) alloc() native.Closure {
	for {
		id := t.next
		t.next++
		if id == 0 {
			continue
		}
		if _, used := t.values[id]; used {
			continue
		}
		if _, used := t.reserved[id]; used {
			continue
		}
		return id
	}
}

// Lookup returns the value registered under id.
func (t *Table[T]) Lookup(id native.Closure) (T, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	v, ok := t.values[id]
	return v, ok
}

// Unregister removes id and returns the value it held.
func (t *Table[T]) Unregister(id native.Closure) (T, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	v, ok := t.values[id]
	if ok {
		delete(t.values, id)
	}
	return v, ok
}

// Len returns the number of registered ids.
func (t *Table[T]) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.values)
}

// Each calls fn for every registered value until fn returns false.
// fn runs without the table lock held.
func (t *Table[T]) Each(fn func(native.Closure, T) bool) {
	t.mu.RLock()
	ids := make([]native.Closure, 0, len(t.values))
	vals := make([]T, 0, len(t.values))
	for id, v := range t.values {
		ids = append(ids, id)
		vals = append(vals, v)
	}
	t.mu.RUnlock()

	for i := range ids {
		if !fn(ids[i], vals[i]) {
			return
		}
	}
}
