package wasmlib

import (
	"github.com/wippyai/cairobind/native"
	"github.com/wippyai/cairobind/status"
)

func (l *Library) PatternCreateRGBA(r, g, b, a float64) native.Handle {
	return l.handle("cairo_pattern_create_rgba", argF(r), argF(g), argF(b), argF(a))
}

func (l *Library) PatternCreateForSurface(s native.Handle) native.Handle {
	return l.handle("cairo_pattern_create_for_surface", argH(s))
}

func (l *Library) PatternCreateLinear(x0, y0, x1, y1 float64) native.Handle {
	return l.handle("cairo_pattern_create_linear", argF(x0), argF(y0), argF(x1), argF(y1))
}

func (l *Library) PatternCreateRadial(cx0, cy0, r0, cx1, cy1, r1 float64) native.Handle {
	return l.handle("cairo_pattern_create_radial", argF(cx0), argF(cy0), argF(r0), argF(cx1), argF(cy1), argF(r1))
}

// floats calls an accessor filling n double out-parameters and returns
// them with its status.
func (l *Library) floats(name string, p native.Handle, n int) ([]float64, native.Status) {
	out, release := l.out(uint32(8 * n))
	defer release()
	if out == 0 {
		return make([]float64, n), status.NoMemory
	}
	args := []uint64{argH(p)}
	for i := range n {
		args = append(args, argP(out+uint32(8*i)))
	}
	st := l.status(name, args...)
	vs := make([]float64, n)
	for i := range vs {
		vs[i] = l.mem.f64(out + uint32(8*i))
	}
	return vs, st
}

func (l *Library) PatternGetRGBA(p native.Handle) (r, g, b, a float64, st native.Status) {
	v, st := l.floats("cairo_pattern_get_rgba", p, 4)
	return v[0], v[1], v[2], v[3], st
}

func (l *Library) PatternGetSurface(p native.Handle) (native.Handle, native.Status) {
	out, release := l.out(4)
	defer release()
	if out == 0 {
		return 0, status.NoMemory
	}
	st := l.status("cairo_pattern_get_surface", argH(p), argP(out))
	return native.Handle(l.mem.i32(out)), st
}

func (l *Library) PatternAddColorStopRGBA(p native.Handle, offset, r, g, b, a float64) {
	l.call("cairo_pattern_add_color_stop_rgba", argH(p), argF(offset), argF(r), argF(g), argF(b), argF(a))
}

func (l *Library) PatternGetColorStopCount(p native.Handle) (int, native.Status) {
	out, release := l.out(4)
	defer release()
	if out == 0 {
		return 0, status.NoMemory
	}
	st := l.status("cairo_pattern_get_color_stop_count", argH(p), argP(out))
	return int(l.mem.i32(out)), st
}

func (l *Library) PatternGetLinearPoints(p native.Handle) (x0, y0, x1, y1 float64, st native.Status) {
	v, st := l.floats("cairo_pattern_get_linear_points", p, 4)
	return v[0], v[1], v[2], v[3], st
}

func (l *Library) PatternGetRadialCircles(p native.Handle) (cx0, cy0, r0, cx1, cy1, r1 float64, st native.Status) {
	v, st := l.floats("cairo_pattern_get_radial_circles", p, 6)
	return v[0], v[1], v[2], v[3], v[4], v[5], st
}

func (l *Library) PatternSetExtend(p native.Handle, e native.Extend) {
	l.call("cairo_pattern_set_extend", argH(p), argI(int32(e)))
}

func (l *Library) PatternGetExtend(p native.Handle) native.Extend {
	return native.Extend(l.i32("cairo_pattern_get_extend", argH(p)))
}

func (l *Library) PatternSetFilter(p native.Handle, f native.Filter) {
	l.call("cairo_pattern_set_filter", argH(p), argI(int32(f)))
}

func (l *Library) PatternGetFilter(p native.Handle) native.Filter {
	return native.Filter(l.i32("cairo_pattern_get_filter", argH(p)))
}
