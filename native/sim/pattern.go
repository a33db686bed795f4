package sim

import (
	"math"
	"sort"

	"github.com/wippyai/cairobind/native"
	"github.com/wippyai/cairobind/status"
)

type colorStop struct {
	offset     float64
	r, g, b, a float64
}

type pattern struct {
	stops   []colorStop
	coords  [6]float64
	rgba    [4]float64
	surface native.Handle
	extend  native.Extend
	filter  native.Filter
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

func newSolid(r, g, b, a float64) *pattern {
	return &pattern{
		rgba:   [4]float64{clamp01(r), clamp01(g), clamp01(b), clamp01(a)},
		extend: native.ExtendPad,
		filter: native.FilterGood,
	}
}

// PatternCreateRGBA creates a solid pattern.
func (e *Engine) PatternCreateRGBA(r, g, b, a float64) native.Handle {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.create(&object{
		kind:    native.KindPattern,
		tag:     int32(native.PatternTypeSolid),
		pattern: newSolid(r, g, b, a),
	})
}

// PatternCreateForSurface creates a surface pattern holding a reference to s.
func (e *Engine) PatternCreateForSurface(s native.Handle) native.Handle {
	e.mu.Lock()
	defer e.mu.Unlock()

	o := e.lookup(native.KindSurface, s, "pattern_create_for_surface")
	if o == nil {
		return e.errorObject(native.KindPattern, status.NullPointer)
	}
	if o.status != status.Success {
		return e.errorObject(native.KindPattern, o.status)
	}
	if !o.static {
		o.refs++
	}
	return e.create(&object{
		kind: native.KindPattern,
		tag:  int32(native.PatternTypeSurface),
		pattern: &pattern{
			surface: s,
			extend:  native.ExtendNone,
			filter:  native.FilterGood,
		},
	})
}

func (e *Engine) gradient(tag native.PatternType, coords [6]float64) native.Handle {
	return e.create(&object{
		kind: native.KindPattern,
		tag:  int32(tag),
		pattern: &pattern{
			coords: coords,
			extend: native.ExtendPad,
			filter: native.FilterGood,
		},
	})
}

// PatternCreateLinear creates a linear gradient.
func (e *Engine) PatternCreateLinear(x0, y0, x1, y1 float64) native.Handle {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.gradient(native.PatternTypeLinear, [6]float64{x0, y0, x1, y1})
}

// PatternCreateRadial creates a radial gradient.
func (e *Engine) PatternCreateRadial(cx0, cy0, r0, cx1, cy1, r1 float64) native.Handle {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.gradient(native.PatternTypeRadial, [6]float64{cx0, cy0, r0, cx1, cy1, r1})
}

func (e *Engine) typedPattern(p native.Handle, op string, tags ...native.PatternType) (*object, native.Status) {
	o := e.lookup(native.KindPattern, p, op)
	if o == nil {
		return nil, status.NullPointer
	}
	for _, t := range tags {
		if o.tag == int32(t) {
			return o, status.Success
		}
	}
	return o, status.PatternTypeMismatch
}

// PatternGetRGBA returns the color of a solid pattern.
func (e *Engine) PatternGetRGBA(p native.Handle) (r, g, b, a float64, st native.Status) {
	e.mu.Lock()
	defer e.mu.Unlock()
	o, st := e.typedPattern(p, "get_rgba", native.PatternTypeSolid)
	if st != status.Success {
		return 0, 0, 0, 0, st
	}
	c := o.pattern.rgba
	return c[0], c[1], c[2], c[3], status.Success
}

// PatternGetSurface returns the pattern's surface without a new reference.
func (e *Engine) PatternGetSurface(p native.Handle) (native.Handle, native.Status) {
	e.mu.Lock()
	defer e.mu.Unlock()
	o, st := e.typedPattern(p, "get_surface", native.PatternTypeSurface)
	if st != status.Success {
		return 0, st
	}
	return o.pattern.surface, status.Success
}

// PatternAddColorStopRGBA adds a stop; non-gradients are put in error.
func (e *Engine) PatternAddColorStopRGBA(p native.Handle, offset, r, g, b, a float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	o, st := e.typedPattern(p, "add_color_stop_rgba", native.PatternTypeLinear, native.PatternTypeRadial)
	if o == nil || o.status != status.Success {
		return
	}
	if st != status.Success {
		setError(o, st)
		return
	}
	pat := o.pattern
	pat.stops = append(pat.stops, colorStop{
		offset: clamp01(offset),
		r:      clamp01(r), g: clamp01(g), b: clamp01(b), a: clamp01(a),
	})
	sort.SliceStable(pat.stops, func(i, j int) bool { return pat.stops[i].offset < pat.stops[j].offset })
}

// PatternGetColorStopCount returns the number of gradient stops.
func (e *Engine) PatternGetColorStopCount(p native.Handle) (int, native.Status) {
	e.mu.Lock()
	defer e.mu.Unlock()
	o, st := e.typedPattern(p, "get_color_stop_count", native.PatternTypeLinear, native.PatternTypeRadial)
	if st != status.Success {
		return 0, st
	}
	return len(o.pattern.stops), status.Success
}

// PatternGetLinearPoints returns the gradient line.
func (e *Engine) PatternGetLinearPoints(p native.Handle) (x0, y0, x1, y1 float64, st native.Status) {
	e.mu.Lock()
	defer e.mu.Unlock()
	o, st := e.typedPattern(p, "get_linear_points", native.PatternTypeLinear)
	if st != status.Success {
		return 0, 0, 0, 0, st
	}
	c := o.pattern.coords
	return c[0], c[1], c[2], c[3], status.Success
}

// PatternGetRadialCircles returns the gradient circles.
func (e *Engine) PatternGetRadialCircles(p native.Handle) (cx0, cy0, r0, cx1, cy1, r1 float64, st native.Status) {
	e.mu.Lock()
	defer e.mu.Unlock()
	o, st := e.typedPattern(p, "get_radial_circles", native.PatternTypeRadial)
	if st != status.Success {
		return 0, 0, 0, 0, 0, 0, st
	}
	c := o.pattern.coords
	return c[0], c[1], c[2], c[3], c[4], c[5], status.Success
}

// PatternSetExtend sets the extend mode.
func (e *Engine) PatternSetExtend(p native.Handle, ext native.Extend) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if o := e.lookup(native.KindPattern, p, "set_extend"); o != nil && !o.static && o.status == status.Success {
		o.pattern.extend = ext
	}
}

// PatternGetExtend returns the extend mode.
func (e *Engine) PatternGetExtend(p native.Handle) native.Extend {
	e.mu.Lock()
	defer e.mu.Unlock()
	if o := e.lookup(native.KindPattern, p, "get_extend"); o != nil {
		return o.pattern.extend
	}
	return native.ExtendNone
}

// PatternSetFilter sets the filter.
func (e *Engine) PatternSetFilter(p native.Handle, f native.Filter) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if o := e.lookup(native.KindPattern, p, "set_filter"); o != nil && !o.static && o.status == status.Success {
		o.pattern.filter = f
	}
}

// PatternGetFilter returns the filter.
func (e *Engine) PatternGetFilter(p native.Handle) native.Filter {
	e.mu.Lock()
	defer e.mu.Unlock()
	if o := e.lookup(native.KindPattern, p, "get_filter"); o != nil {
		return o.pattern.filter
	}
	return native.FilterGood
}
