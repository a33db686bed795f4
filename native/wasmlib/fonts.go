package wasmlib

import "github.com/wippyai/cairobind/native"

func (l *Library) ToyFontFaceCreate(family []byte, slant native.FontSlant, weight native.FontWeight) native.Handle {
	name, free, err := l.cstr(family)
	if err != nil {
		return 0
	}
	defer free()
	return l.handle("cairo_toy_font_face_create", argP(name), argI(int32(slant)), argI(int32(weight)))
}

func (l *Library) ToyFontFaceGetFamily(f native.Handle) string {
	return l.mem.cstring(l.u32("cairo_toy_font_face_get_family", argH(f)))
}

func (l *Library) ToyFontFaceGetSlant(f native.Handle) native.FontSlant {
	return native.FontSlant(l.i32("cairo_toy_font_face_get_slant", argH(f)))
}

func (l *Library) ToyFontFaceGetWeight(f native.Handle) native.FontWeight {
	return native.FontWeight(l.i32("cairo_toy_font_face_get_weight", argH(f)))
}

// ScaledFontCreate passes both matrices as cairo_matrix_t in a scratch block.
func (l *Library) ScaledFontCreate(face native.Handle, fontMatrix, ctm native.Matrix, options native.Handle) native.Handle {
	mats, release := l.out(96)
	defer release()
	if mats == 0 {
		return 0
	}
	l.putF64(mats, fontMatrix.XX, fontMatrix.YX, fontMatrix.XY, fontMatrix.YY, fontMatrix.X0, fontMatrix.Y0)
	l.putF64(mats+48, ctm.XX, ctm.YX, ctm.XY, ctm.YY, ctm.X0, ctm.Y0)
	return l.handle("cairo_scaled_font_create", argH(face), argP(mats), argP(mats+48), argH(options))
}

func (l *Library) ScaledFontGetFontFace(sf native.Handle) native.Handle {
	return l.handle("cairo_scaled_font_get_font_face", argH(sf))
}

func (l *Library) FontOptionsCreate() native.Handle {
	return l.handle("cairo_font_options_create")
}

func (l *Library) FontOptionsCopy(o native.Handle) native.Handle {
	return l.handle("cairo_font_options_copy", argH(o))
}

func (l *Library) FontOptionsMerge(o, other native.Handle) {
	l.call("cairo_font_options_merge", argH(o), argH(other))
}

// FontOptionsHash widens the guest's 32-bit unsigned long.
func (l *Library) FontOptionsHash(o native.Handle) uint64 {
	return uint64(l.u32("cairo_font_options_hash", argH(o)))
}

func (l *Library) FontOptionsEqual(o, other native.Handle) bool {
	return l.i32("cairo_font_options_equal", argH(o), argH(other)) != 0
}

func (l *Library) FontOptionsSetAntialias(o native.Handle, v native.Antialias) {
	l.call("cairo_font_options_set_antialias", argH(o), argI(int32(v)))
}

func (l *Library) FontOptionsGetAntialias(o native.Handle) native.Antialias {
	return native.Antialias(l.i32("cairo_font_options_get_antialias", argH(o)))
}

func (l *Library) FontOptionsSetSubpixelOrder(o native.Handle, v native.SubpixelOrder) {
	l.call("cairo_font_options_set_subpixel_order", argH(o), argI(int32(v)))
}

func (l *Library) FontOptionsGetSubpixelOrder(o native.Handle) native.SubpixelOrder {
	return native.SubpixelOrder(l.i32("cairo_font_options_get_subpixel_order", argH(o)))
}

func (l *Library) FontOptionsSetHintStyle(o native.Handle, v native.HintStyle) {
	l.call("cairo_font_options_set_hint_style", argH(o), argI(int32(v)))
}

func (l *Library) FontOptionsGetHintStyle(o native.Handle) native.HintStyle {
	return native.HintStyle(l.i32("cairo_font_options_get_hint_style", argH(o)))
}

func (l *Library) FontOptionsSetHintMetrics(o native.Handle, v native.HintMetrics) {
	l.call("cairo_font_options_set_hint_metrics", argH(o), argI(int32(v)))
}

func (l *Library) FontOptionsGetHintMetrics(o native.Handle) native.HintMetrics {
	return native.HintMetrics(l.i32("cairo_font_options_get_hint_metrics", argH(o)))
}
