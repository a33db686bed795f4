package wasmlib

import "github.com/wippyai/cairobind/native"

func (l *Library) Create(target native.Handle) native.Handle {
	return l.handle("cairo_create", argH(target))
}

func (l *Library) GetTarget(cr native.Handle) native.Handle {
	return l.handle("cairo_get_target", argH(cr))
}

func (l *Library) GetSource(cr native.Handle) native.Handle {
	return l.handle("cairo_get_source", argH(cr))
}

func (l *Library) SetSource(cr, pattern native.Handle) {
	l.call("cairo_set_source", argH(cr), argH(pattern))
}

func (l *Library) SetSourceRGBA(cr native.Handle, r, g, b, a float64) {
	l.call("cairo_set_source_rgba", argH(cr), argF(r), argF(g), argF(b), argF(a))
}

func (l *Library) SetSourceSurface(cr, surface native.Handle, x, y float64) {
	l.call("cairo_set_source_surface", argH(cr), argH(surface), argF(x), argF(y))
}

func (l *Library) NewPath(cr native.Handle) { l.call("cairo_new_path", argH(cr)) }

func (l *Library) MoveTo(cr native.Handle, x, y float64) {
	l.call("cairo_move_to", argH(cr), argF(x), argF(y))
}

func (l *Library) LineTo(cr native.Handle, x, y float64) {
	l.call("cairo_line_to", argH(cr), argF(x), argF(y))
}

func (l *Library) CurveTo(cr native.Handle, x1, y1, x2, y2, x3, y3 float64) {
	l.call("cairo_curve_to", argH(cr), argF(x1), argF(y1), argF(x2), argF(y2), argF(x3), argF(y3))
}

func (l *Library) ClosePath(cr native.Handle) { l.call("cairo_close_path", argH(cr)) }

func (l *Library) Rectangle(cr native.Handle, x, y, width, height float64) {
	l.call("cairo_rectangle", argH(cr), argF(x), argF(y), argF(width), argF(height))
}

// CopyPath returns the guest's cairo_path_t. It lives in guest memory and is
// released with Destroy(native.KindPath, p).
func (l *Library) CopyPath(cr native.Handle) native.Handle {
	return l.handle("cairo_copy_path", argH(cr))
}

func (l *Library) AppendPath(cr, p native.Handle) {
	l.call("cairo_append_path", argH(cr), argH(p))
}

func (l *Library) Paint(cr native.Handle) { l.call("cairo_paint", argH(cr)) }

func (l *Library) Fill(cr native.Handle) { l.call("cairo_fill", argH(cr)) }

func (l *Library) Stroke(cr native.Handle) { l.call("cairo_stroke", argH(cr)) }

func (l *Library) ShowPage(cr native.Handle) { l.call("cairo_show_page", argH(cr)) }

func (l *Library) SetFontFace(cr, face native.Handle) {
	l.call("cairo_set_font_face", argH(cr), argH(face))
}

func (l *Library) GetFontFace(cr native.Handle) native.Handle {
	return l.handle("cairo_get_font_face", argH(cr))
}
