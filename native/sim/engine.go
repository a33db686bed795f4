// Package sim is a pure-Go engine implementing native.Library.
//
// It keeps cairo's object model: reference-counted objects with sticky error
// statuses, static error objects, user data and mime data with destroy
// callbacks, and cairo_path_t structures laid out in its own address space.
// Drawing is limited to solid paints on image surfaces; vector surfaces record
// their paths and emit a minimal document when finished.
//
// Tests use the engine's hooks to inject objects with arbitrary type tags,
// force failures and observe live objects and handle misuse.
package sim

import (
	"fmt"
	"sort"
	"sync"

	"github.com/wippyai/cairobind"
	"github.com/wippyai/cairobind/native"
	"github.com/wippyai/cairobind/status"
)

const (
	firstHandle = native.Handle(0x1000)
	handleStep  = 0x10
	version     = "1.18.0-sim"
)

// Engine is an in-process graphics engine.
type Engine struct {
	objects    map[native.Handle]*object
	dead       map[native.Handle]native.Kind
	statics    map[staticKey]native.Handle
	paths      map[native.Handle]bool
	mem        *Arena
	black      native.Handle
	violations []string
	failNext   native.Status
	next       native.Handle
	mu         sync.Mutex
}

type staticKey struct {
	kind native.Kind
	st   native.Status
}

type userData struct {
	destroy native.DestroyFunc
	key     native.Closure
	data    native.Closure
}

type object struct {
	surface  *surface
	pattern  *pattern
	context  *context
	face     *fontFace
	scaled   *scaledFont
	options  *fontOptions
	userData []userData
	refs     uint32
	tag      int32
	status   native.Status
	kind     native.Kind
	static   bool
}

// New creates an engine with an empty address space.
func New() *Engine {
	e := &Engine{
		objects: make(map[native.Handle]*object),
		dead:    make(map[native.Handle]native.Kind),
		statics: make(map[staticKey]native.Handle),
		paths:   make(map[native.Handle]bool),
		mem:     NewArena(),
		next:    firstHandle,
	}
	e.black = e.insert(&object{
		kind:    native.KindPattern,
		tag:     int32(native.PatternTypeSolid),
		static:  true,
		pattern: newSolid(0, 0, 0, 1),
	})
	return e
}

var _ native.Library = (*Engine)(nil)

// action is work that must run after the engine lock is released, such as
// destroy callbacks and stream writes.
type action func()

func run(actions []action) {
	for _, a := range actions {
		a()
	}
}

func (e *Engine) insert(o *object) native.Handle {
	h := e.next
	e.next += handleStep
	e.objects[h] = o
	return h
}

func (e *Engine) create(o *object) native.Handle {
	o.refs = 1
	return e.insert(o)
}

// errorObject returns the static error object of kind for st.
func (e *Engine) errorObject(kind native.Kind, st native.Status) native.Handle {
	key := staticKey{kind, st}
	if h, ok := e.statics[key]; ok {
		return h
	}
	o := &object{kind: kind, status: st, static: true}
	switch kind {
	case native.KindSurface:
		o.surface = &surface{content: native.ContentColorAlpha, format: native.FormatInvalid}
		o.tag = int32(native.SurfaceTypeImage)
	case native.KindPattern:
		o.pattern = newSolid(0, 0, 0, 1)
	case native.KindContext:
		o.context = &context{}
	case native.KindFontFace:
		o.face = &fontFace{}
	case native.KindScaledFont:
		o.scaled = &scaledFont{}
	case native.KindFontOptions:
		o.options = &fontOptions{}
	}
	h := e.insert(o)
	e.statics[key] = h
	return h
}

// lookup returns the object behind h, recording a violation when h was
// already destroyed or belongs to another kind.
func (e *Engine) lookup(kind native.Kind, h native.Handle, op string) *object {
	o, ok := e.objects[h]
	if !ok {
		if k, wasDead := e.dead[h]; wasDead {
			e.violate("%s on destroyed %s %#x", op, k, uint32(h))
		} else if h != 0 {
			e.violate("%s on unknown %s %#x", op, kind, uint32(h))
		}
		return nil
	}
	if o.kind != kind {
		e.violate("%s: handle %#x is a %s, not a %s", op, uint32(h), o.kind, kind)
		return nil
	}
	return o
}

func (e *Engine) violate(format string, args ...any) {
	e.violations = append(e.violations, fmt.Sprintf(format, args...))
}

// setError makes st the sticky status of o unless it already has one.
func setError(o *object, st native.Status) {
	if o.static || o.status != status.Success {
		return
	}
	o.status = st
}

// Reference takes a new reference.
func (e *Engine) Reference(k native.Kind, h native.Handle) native.Handle {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !k.Counted() {
		e.violate("reference on uncounted %s %#x", k, uint32(h))
		return h
	}
	o := e.lookup(k, h, "reference")
	if o == nil || o.static {
		return h
	}
	o.refs++
	return h
}

// Destroy drops a reference, finalizing the object at zero.
func (e *Engine) Destroy(k native.Kind, h native.Handle) {
	e.mu.Lock()
	var actions []action
	switch k {
	case native.KindPath:
		e.destroyPath(h)
	case native.KindFontOptions:
		o := e.lookup(k, h, "destroy")
		if o != nil && !o.static {
			e.kill(h, o)
		}
	default:
		actions = e.release(k, h)
	}
	e.mu.Unlock()
	run(actions)
}

// release drops one reference with the lock held and returns the callbacks
// to run once it is released.
func (e *Engine) release(k native.Kind, h native.Handle) []action {
	o := e.lookup(k, h, "destroy")
	if o == nil || o.static {
		return nil
	}
	if o.refs == 0 {
		e.violate("destroy on %s %#x with zero references", k, uint32(h))
		return nil
	}
	o.refs--
	if o.refs > 0 {
		return nil
	}
	return e.finalize(h, o)
}

func (e *Engine) finalize(h native.Handle, o *object) []action {
	var actions []action
	switch o.kind {
	case native.KindSurface:
		actions = append(actions, e.finishSurface(o)...)
	case native.KindContext:
		c := o.context
		actions = append(actions, e.release(native.KindSurface, c.target)...)
		if c.source != 0 {
			actions = append(actions, e.release(native.KindPattern, c.source)...)
		}
		if c.face != 0 {
			actions = append(actions, e.release(native.KindFontFace, c.face)...)
		}
	case native.KindPattern:
		if o.pattern.surface != 0 {
			actions = append(actions, e.release(native.KindSurface, o.pattern.surface)...)
		}
	case native.KindScaledFont:
		actions = append(actions, e.release(native.KindFontFace, o.scaled.face)...)
	}

	for _, ud := range o.userData {
		if ud.destroy != nil {
			fn, data := ud.destroy, ud.data
			actions = append(actions, func() { fn(data) })
		}
	}
	o.userData = nil

	if o.kind == native.KindSurface {
		for _, mt := range sortedMime(o.surface.mime) {
			m := o.surface.mime[mt]
			if m.destroy != nil {
				fn, c := m.destroy, m.closure
				actions = append(actions, func() { fn(c) })
			}
		}
		o.surface.mime = nil
	}

	e.kill(h, o)
	return actions
}

func (e *Engine) kill(h native.Handle, o *object) {
	delete(e.objects, h)
	e.dead[h] = o.kind
}

// ReferenceCount returns the native reference count, 0 for static objects.
func (e *Engine) ReferenceCount(k native.Kind, h native.Handle) uint32 {
	e.mu.Lock()
	defer e.mu.Unlock()

	o := e.lookup(k, h, "get_reference_count")
	if o == nil || o.static || !k.Counted() {
		return 0
	}
	return o.refs
}

// Status returns the sticky status of an object.
func (e *Engine) Status(k native.Kind, h native.Handle) native.Status {
	e.mu.Lock()
	defer e.mu.Unlock()

	if k == native.KindPath {
		return e.pathStatus(h)
	}
	o := e.lookup(k, h, "status")
	if o == nil {
		if k == native.KindFontOptions {
			return status.NoMemory
		}
		return status.NullPointer
	}
	return o.status
}

// Type returns the object's type tag.
func (e *Engine) Type(k native.Kind, h native.Handle) int32 {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !k.Typed() {
		e.violate("get_type on untyped %s", k)
		return 0
	}
	o := e.lookup(k, h, "get_type")
	if o == nil {
		return 0
	}
	return o.tag
}

// SetUserData attaches, replaces or, with data 0, removes user data.
func (e *Engine) SetUserData(k native.Kind, h native.Handle, key, data native.Closure, destroy native.DestroyFunc) native.Status {
	e.mu.Lock()
	st, actions := e.setUserData(k, h, key, data, destroy)
	e.mu.Unlock()
	run(actions)
	return st
}

func (e *Engine) setUserData(k native.Kind, h native.Handle, key, data native.Closure, destroy native.DestroyFunc) (native.Status, []action) {
	if !k.Counted() {
		return status.NullPointer, nil
	}
	o := e.lookup(k, h, "set_user_data")
	if o == nil {
		return status.NullPointer, nil
	}
	if o.static {
		return o.status, nil
	}
	if st := e.takeFailure(); st != status.Success {
		return st, nil
	}

	var actions []action
	for i, ud := range o.userData {
		if ud.key != key {
			continue
		}
		if ud.destroy != nil {
			fn, old := ud.destroy, ud.data
			actions = append(actions, func() { fn(old) })
		}
		if data == 0 {
			o.userData = append(o.userData[:i], o.userData[i+1:]...)
		} else {
			o.userData[i] = userData{key: key, data: data, destroy: destroy}
		}
		return status.Success, actions
	}
	if data != 0 {
		o.userData = append(o.userData, userData{key: key, data: data, destroy: destroy})
	}
	return status.Success, nil
}

func (e *Engine) takeFailure() native.Status {
	st := e.failNext
	e.failNext = status.Success
	return st
}

// Memory returns the engine's address space.
func (e *Engine) Memory() cairobind.Memory { return e.mem }

// Alloc allocates engine memory.
func (e *Engine) Alloc(size, align uint32) (uint32, error) {
	return e.mem.Alloc(size, align)
}

// Free releases engine memory.
func (e *Engine) Free(ptr, size, align uint32) {
	e.mem.Free(ptr, size, align)
}

// Version returns the engine version string.
func (e *Engine) Version() string { return version }

// Close is a no-op; objects are released by their owners.
func (e *Engine) Close() error { return nil }

// Test hooks

// InjectObject creates a live object of kind with an arbitrary type tag and
// one reference owned by the caller.
func (e *Engine) InjectObject(kind native.Kind, tag int32) native.Handle {
	e.mu.Lock()
	defer e.mu.Unlock()

	o := &object{kind: kind, tag: tag}
	switch kind {
	case native.KindSurface:
		o.surface = &surface{content: native.ContentColorAlpha, format: native.FormatInvalid}
	case native.KindPattern:
		o.pattern = newSolid(0, 0, 0, 1)
	case native.KindContext:
		o.context = &context{}
	case native.KindFontFace:
		o.face = &fontFace{}
	case native.KindScaledFont:
		o.scaled = &scaledFont{}
	case native.KindFontOptions:
		o.options = &fontOptions{}
	}
	return e.create(o)
}

// SetStatus forces the sticky status of a live object.
func (e *Engine) SetStatus(kind native.Kind, h native.Handle, st native.Status) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if o := e.lookup(kind, h, "set_status"); o != nil {
		o.status = st
	}
}

// FailNextUserData makes the next user-data or mime-data attach return st.
func (e *Engine) FailNextUserData(st native.Status) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.failNext = st
}

// Live returns the number of live, non-static objects of kind.
func (e *Engine) Live(kind native.Kind) int {
	e.mu.Lock()
	defer e.mu.Unlock()

	n := 0
	for _, o := range e.objects {
		if o.kind == kind && !o.static {
			n++
		}
	}
	return n
}

// UserDataCount returns the number of user-data slots on an object.
func (e *Engine) UserDataCount(kind native.Kind, h native.Handle) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	if o := e.lookup(kind, h, "user_data_count"); o != nil {
		return len(o.userData)
	}
	return 0
}

// ObjectInfo describes a live object.
type ObjectInfo struct {
	Handle native.Handle
	Kind   native.Kind
	Tag    int32
	Refs   uint32
	Status native.Status
}

// Objects returns every live, non-static object ordered by handle.
func (e *Engine) Objects() []ObjectInfo {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]ObjectInfo, 0, len(e.objects))
	for h, o := range e.objects {
		if o.static {
			continue
		}
		out = append(out, ObjectInfo{Handle: h, Kind: o.kind, Tag: o.tag, Refs: o.refs, Status: o.status})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Handle < out[j].Handle })
	return out
}

// Violations returns every misuse recorded so far: calls on destroyed or
// mistyped handles and unbalanced destroys.
func (e *Engine) Violations() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.violations...)
}

// Arena returns the engine's address space.
func (e *Engine) Arena() *Arena { return e.mem }
