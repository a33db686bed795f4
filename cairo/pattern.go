package cairo

import (
	"github.com/wippyai/cairobind/errors"
	"github.com/wippyai/cairobind/handle"
	"github.com/wippyai/cairobind/native"
	"github.com/wippyai/cairobind/status"
)

// Pattern is any cairo_pattern_t wrapper. Every implementation embeds
// *BasePattern.
type Pattern interface {
	Object() *handle.Object
	Type() native.PatternType
	Status() error
	Close() error
	pattern() *BasePattern
}

// BasePattern implements the operations shared by every pattern type.
type BasePattern struct {
	b   *Binding
	obj *handle.Object
}

func (b *Binding) basePattern(obj *handle.Object) Pattern {
	return b.PatternBase(obj)
}

// PatternBase builds the base wrapper for obj.
func (b *Binding) PatternBase(obj *handle.Object) *BasePattern {
	return &BasePattern{b: b, obj: obj}
}

func (p *BasePattern) pattern() *BasePattern { return p }

// Object returns the underlying handle object.
func (p *BasePattern) Object() *handle.Object { return p.obj }

// Handle returns the raw native handle.
func (p *BasePattern) Handle() native.Handle { return p.obj.Handle() }

// Type returns the native pattern type.
func (p *BasePattern) Type() native.PatternType {
	h, err := p.obj.Pin()
	if err != nil {
		return -1
	}
	defer p.obj.Unpin()
	return native.PatternType(p.obj.Library().Type(native.KindPattern, h))
}

// Status returns the pattern's native status.
func (p *BasePattern) Status() error { return p.obj.Status() }

// ReferenceCount returns the native reference count.
func (p *BasePattern) ReferenceCount() uint32 { return p.obj.ReferenceCount() }

// Close drops the wrapper's reference.
func (p *BasePattern) Close() error { return p.obj.Close() }

// SetExtend sets how the pattern behaves outside its natural area.
func (p *BasePattern) SetExtend(e native.Extend) error {
	return p.obj.Do(func(lib native.Library, h native.Handle) { lib.PatternSetExtend(h, e) })
}

// Extend returns the extend mode.
func (p *BasePattern) Extend() (native.Extend, error) {
	return get(p.obj, func(lib native.Library, h native.Handle) native.Extend {
		return lib.PatternGetExtend(h)
	})
}

// SetFilter sets the resampling filter.
func (p *BasePattern) SetFilter(f native.Filter) error {
	return p.obj.Do(func(lib native.Library, h native.Handle) { lib.PatternSetFilter(h, f) })
}

// Filter returns the resampling filter.
func (p *BasePattern) Filter() (native.Filter, error) {
	return get(p.obj, func(lib native.Library, h native.Handle) native.Filter {
		return lib.PatternGetFilter(h)
	})
}

// SolidPattern is a single color.
type SolidPattern struct {
	*BasePattern
}

func (b *Binding) solidPattern(obj *handle.Object) Pattern {
	return &SolidPattern{b.PatternBase(obj)}
}

// NewSolidPattern creates a translucent color pattern.
func (b *Binding) NewSolidPattern(r, g, bl, a float64) (*SolidPattern, error) {
	if err := b.usable(); err != nil {
		return nil, err
	}
	obj, err := b.own(native.KindPattern, b.lib.PatternCreateRGBA(r, g, bl, a))
	if err != nil {
		return nil, err
	}
	return &SolidPattern{b.PatternBase(obj)}, nil
}

// RGBA returns the pattern color.
func (p *SolidPattern) RGBA() (r, g, b, a float64, err error) {
	err = pinned(p.obj, func(lib native.Library, h native.Handle) error {
		var st native.Status
		r, g, b, a, st = lib.PatternGetRGBA(h)
		return status.Check(st)
	})
	return r, g, b, a, err
}

// SurfacePattern paints from a surface.
type SurfacePattern struct {
	*BasePattern
}

func (b *Binding) surfacePattern(obj *handle.Object) Pattern {
	return &SurfacePattern{b.PatternBase(obj)}
}

// NewSurfacePattern creates a pattern reading from s. The pattern holds its
// own reference to the surface.
func (b *Binding) NewSurfacePattern(s Surface) (*SurfacePattern, error) {
	if err := b.usable(); err != nil {
		return nil, err
	}
	if s == nil {
		return nil, errors.InvalidHandle(errors.PhaseWrap, native.KindSurface.String())
	}
	var obj *handle.Object
	err := pinned(s.Object(), func(lib native.Library, sh native.Handle) error {
		var err error
		obj, err = b.own(native.KindPattern, lib.PatternCreateForSurface(sh))
		return err
	})
	if err != nil {
		return nil, err
	}
	return &SurfacePattern{b.PatternBase(obj)}, nil
}

// Surface returns a new wrapper for the pattern's surface, rehydrated to
// its concrete type.
func (p *SurfacePattern) Surface() (Surface, error) {
	var s Surface
	err := pinned(p.obj, func(lib native.Library, h native.Handle) error {
		sh, st := lib.PatternGetSurface(h)
		if err := status.Check(st); err != nil {
			return err
		}
		var err error
		s, err = p.b.WrapSurface(sh, false)
		return err
	})
	return s, err
}

// Gradient holds the color stops shared by linear and radial gradients.
type Gradient struct {
	*BasePattern
}

// AddColorStopRGBA adds a translucent color stop at offset in [0, 1].
func (g *Gradient) AddColorStopRGBA(offset, r, gr, b, a float64) error {
	return g.obj.Do(func(lib native.Library, h native.Handle) {
		lib.PatternAddColorStopRGBA(h, offset, r, gr, b, a)
	})
}

// AddColorStopRGB adds an opaque color stop.
func (g *Gradient) AddColorStopRGB(offset, r, gr, b float64) error {
	return g.AddColorStopRGBA(offset, r, gr, b, 1)
}

// ColorStopCount returns the number of color stops.
func (g *Gradient) ColorStopCount() (int, error) {
	var n int
	err := pinned(g.obj, func(lib native.Library, h native.Handle) error {
		var st native.Status
		n, st = lib.PatternGetColorStopCount(h)
		return status.Check(st)
	})
	return n, err
}

// LinearGradient blends colors along a line.
type LinearGradient struct {
	*Gradient
}

func (b *Binding) linearGradient(obj *handle.Object) Pattern {
	return &LinearGradient{&Gradient{b.PatternBase(obj)}}
}

// NewLinearGradient creates a gradient from (x0, y0) to (x1, y1).
func (b *Binding) NewLinearGradient(x0, y0, x1, y1 float64) (*LinearGradient, error) {
	if err := b.usable(); err != nil {
		return nil, err
	}
	obj, err := b.own(native.KindPattern, b.lib.PatternCreateLinear(x0, y0, x1, y1))
	if err != nil {
		return nil, err
	}
	return &LinearGradient{&Gradient{b.PatternBase(obj)}}, nil
}

// LinearPoints returns the gradient's end points.
func (g *LinearGradient) LinearPoints() (x0, y0, x1, y1 float64, err error) {
	err = pinned(g.obj, func(lib native.Library, h native.Handle) error {
		var st native.Status
		x0, y0, x1, y1, st = lib.PatternGetLinearPoints(h)
		return status.Check(st)
	})
	return x0, y0, x1, y1, err
}

// RadialGradient blends colors between two circles.
type RadialGradient struct {
	*Gradient
}

func (b *Binding) radialGradient(obj *handle.Object) Pattern {
	return &RadialGradient{&Gradient{b.PatternBase(obj)}}
}

// NewRadialGradient creates a gradient between circle (cx0, cy0, r0) and
// circle (cx1, cy1, r1).
func (b *Binding) NewRadialGradient(cx0, cy0, r0, cx1, cy1, r1 float64) (*RadialGradient, error) {
	if err := b.usable(); err != nil {
		return nil, err
	}
	obj, err := b.own(native.KindPattern, b.lib.PatternCreateRadial(cx0, cy0, r0, cx1, cy1, r1))
	if err != nil {
		return nil, err
	}
	return &RadialGradient{&Gradient{b.PatternBase(obj)}}, nil
}

// RadialCircles returns the gradient's circles.
func (g *RadialGradient) RadialCircles() (cx0, cy0, r0, cx1, cy1, r1 float64, err error) {
	err = pinned(g.obj, func(lib native.Library, h native.Handle) error {
		var st native.Status
		cx0, cy0, r0, cx1, cy1, r1, st = lib.PatternGetRadialCircles(h)
		return status.Check(st)
	})
	return cx0, cy0, r0, cx1, cy1, r1, err
}
