// Package keepalive keeps Go values reachable while a native object uses them.
//
// Attaching stores the values in a LiveSet under a fresh closure id and hands
// the engine that id together with the set's destroy trampoline. The entry
// leaves the set only when the engine calls the trampoline, which happens
// after the owner's last native reference is dropped or when the attached
// data is replaced. A failed attach never creates an entry.
package keepalive

import (
	"sort"

	"go.uber.org/zap"

	"github.com/wippyai/cairobind/errors"
	"github.com/wippyai/cairobind/internal/closure"
	"github.com/wippyai/cairobind/native"
	"github.com/wippyai/cairobind/status"
)

// Dropper is optionally implemented by kept values that need cleanup once
// the native side releases them.
type Dropper interface {
	Drop()
}

// Entry is one attach: the values kept alive for a native owner.
type Entry struct {
	Objects []any
	Mime    string
	Closure native.Closure
	Owner   native.Handle
	Kind    native.Kind
}

// EventType identifies a live-set change.
type EventType uint8

const (
	EventAttached EventType = iota
	EventReleased
)

func (t EventType) String() string {
	if t == EventAttached {
		return "attached"
	}
	return "released"
}

// Event describes a live-set change.
type Event struct {
	Entry Entry
	Type  EventType
}

// Observer receives live-set changes. It is called without locks held.
type Observer interface {
	OnKeepAliveEvent(Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Event)

// OnKeepAliveEvent calls f.
func (f ObserverFunc) OnKeepAliveEvent(e Event) { f(e) }

// LiveSet holds every entry whose destroy callback has not fired yet.
// LiveSet is thread-safe.
type LiveSet struct {
	entries  *closure.Table[*Entry]
	observer Observer
}

// New creates an empty live set. observer may be nil.
func New(observer Observer) *LiveSet {
	return &LiveSet{
		entries:  closure.NewTable[*Entry](1),
		observer: observer,
	}
}

// Attach keeps objects alive until owner is destroyed. The values are
// registered as user data on owner under a key unique to this attach.
func (s *LiveSet) Attach(lib native.Library, kind native.Kind, owner native.Handle, objects ...any) (native.Closure, error) {
	if owner == 0 {
		return 0, errors.InvalidHandle(errors.PhaseKeepAlive, kind.String())
	}
	if !kind.Counted() {
		return 0, errors.Unsupported(errors.PhaseKeepAlive, "user data on "+kind.String())
	}

	id := s.entries.Reserve()
	if err := status.Check(lib.SetUserData(kind, owner, id, id, s.Destroy)); err != nil {
		s.entries.Cancel(id)
		Logger().Debug("attach failed",
			zap.Stringer("kind", kind),
			zap.Uint32("owner", uint32(owner)),
			zap.Error(err))
		return 0, err
	}
	s.commit(&Entry{Closure: id, Kind: kind, Owner: owner, Objects: objects})
	return id, nil
}

// Detach removes user data set by Attach. The entry itself is dropped by the
// destroy callback the engine runs for the removed data.
func (s *LiveSet) Detach(lib native.Library, kind native.Kind, owner native.Handle, c native.Closure) error {
	return status.Check(lib.SetUserData(kind, owner, c, 0, nil))
}

// AttachMime sets mime data on a surface and keeps data and objects alive
// until the engine releases it. Existing data for mimeType is detached first;
// its entry leaves the set through its own destroy callback.
func (s *LiveSet) AttachMime(lib native.Library, surface native.Handle, mimeType string, data []byte, objects ...any) (native.Closure, error) {
	if surface == 0 {
		return 0, errors.InvalidHandle(errors.PhaseKeepAlive, native.KindSurface.String())
	}
	if err := s.DetachMime(lib, surface, mimeType); err != nil {
		return 0, err
	}
	if data == nil {
		return 0, nil
	}

	id := s.entries.Reserve()
	if err := status.Check(lib.SurfaceSetMimeData(surface, mimeType, data, s.Destroy, id)); err != nil {
		s.entries.Cancel(id)
		Logger().Debug("mime attach failed",
			zap.Uint32("surface", uint32(surface)),
			zap.String("mime", mimeType),
			zap.Error(err))
		return 0, err
	}
	kept := append([]any{data}, objects...)
	s.commit(&Entry{Closure: id, Kind: native.KindSurface, Owner: surface, Mime: mimeType, Objects: kept})
	return id, nil
}

// DetachMime removes mime data for mimeType from surface.
func (s *LiveSet) DetachMime(lib native.Library, surface native.Handle, mimeType string) error {
	return status.Check(lib.SurfaceSetMimeData(surface, mimeType, nil, nil, 0))
}

func (s *LiveSet) commit(e *Entry) {
	s.entries.Commit(e.Closure, e)
	Logger().Debug("attached",
		zap.Stringer("kind", e.Kind),
		zap.Uint32("owner", uint32(e.Owner)),
		zap.Uint32("closure", uint32(e.Closure)),
		zap.Int("objects", len(e.Objects)))
	s.notify(Event{Type: EventAttached, Entry: *e})
}

// Destroy is the native.DestroyFunc handed to the engine for every attach.
// It removes the entry and drops values implementing Dropper.
func (s *LiveSet) Destroy(c native.Closure) {
	e, ok := s.entries.Unregister(c)
	if !ok {
		Logger().Warn("destroy callback for unknown closure", zap.Uint32("closure", uint32(c)))
		return
	}
	for _, obj := range e.Objects {
		if d, ok := obj.(Dropper); ok {
			d.Drop()
		}
	}
	Logger().Debug("released",
		zap.Stringer("kind", e.Kind),
		zap.Uint32("owner", uint32(e.Owner)),
		zap.Uint32("closure", uint32(c)))
	s.notify(Event{Type: EventReleased, Entry: *e})
}

func (s *LiveSet) notify(e Event) {
	if s.observer != nil {
		s.observer.OnKeepAliveEvent(e)
	}
}

// Len returns the number of live entries.
func (s *LiveSet) Len() int {
	return s.entries.Len()
}

// LenFor returns the number of live entries attached to owner.
func (s *LiveSet) LenFor(owner native.Handle) int {
	n := 0
	s.entries.Each(func(_ native.Closure, e *Entry) bool {
		if e.Owner == owner {
			n++
		}
		return true
	})
	return n
}

// Lookup returns the entry registered under c.
func (s *LiveSet) Lookup(c native.Closure) (Entry, bool) {
	e, ok := s.entries.Lookup(c)
	if !ok {
		return Entry{}, false
	}
	return *e, true
}

// Entries returns a snapshot of the live entries ordered by closure id.
func (s *LiveSet) Entries() []Entry {
	var out []Entry
	s.entries.Each(func(_ native.Closure, e *Entry) bool {
		out = append(out, *e)
		return true
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Closure < out[j].Closure })
	return out
}
