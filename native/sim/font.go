package sim

import (
	"math"
	"unicode/utf8"

	"github.com/wippyai/cairobind/native"
	"github.com/wippyai/cairobind/status"
)

type fontFace struct {
	family string
	slant  native.FontSlant
	weight native.FontWeight
}

type scaledFont struct {
	fontMatrix native.Matrix
	ctm        native.Matrix
	options    fontOptions
	face       native.Handle
}

type fontOptions struct {
	antialias   native.Antialias
	subpixel    native.SubpixelOrder
	hintStyle   native.HintStyle
	hintMetrics native.HintMetrics
}

func (o fontOptions) hash() uint64 {
	return uint64(o.antialias) | uint64(o.subpixel)<<4 | uint64(o.hintStyle)<<12 | uint64(o.hintMetrics)<<16
}

// merge copies the fields of other that are not set to their default.
func (o *fontOptions) merge(other fontOptions) {
	if other.antialias != native.AntialiasDefault {
		o.antialias = other.antialias
	}
	if other.subpixel != native.SubpixelOrderDefault {
		o.subpixel = other.subpixel
	}
	if other.hintStyle != native.HintStyleDefault {
		o.hintStyle = other.hintStyle
	}
	if other.hintMetrics != native.HintMetricsDefault {
		o.hintMetrics = other.hintMetrics
	}
}

func (e *Engine) newToyFace(family string, slant native.FontSlant, weight native.FontWeight) native.Handle {
	return e.create(&object{
		kind: native.KindFontFace,
		tag:  int32(native.FontTypeToy),
		face: &fontFace{family: family, slant: slant, weight: weight},
	})
}

// ToyFontFaceCreate creates a toy font face. family must be valid UTF-8.
func (e *Engine) ToyFontFaceCreate(family []byte, slant native.FontSlant, weight native.FontWeight) native.Handle {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch {
	case family == nil:
		return e.errorObject(native.KindFontFace, status.NullPointer)
	case !utf8.Valid(family):
		return e.errorObject(native.KindFontFace, status.InvalidString)
	case slant < native.SlantNormal || slant > native.SlantOblique:
		return e.errorObject(native.KindFontFace, status.InvalidSlant)
	case weight != native.WeightNormal && weight != native.WeightBold:
		return e.errorObject(native.KindFontFace, status.InvalidWeight)
	}
	return e.newToyFace(string(family), slant, weight)
}

func (e *Engine) toy(f native.Handle, op string) *fontFace {
	o := e.lookup(native.KindFontFace, f, op)
	if o == nil || o.tag != int32(native.FontTypeToy) {
		if o != nil {
			setError(o, status.FontTypeMismatch)
		}
		return nil
	}
	return o.face
}

// ToyFontFaceGetFamily returns the family name.
func (e *Engine) ToyFontFaceGetFamily(f native.Handle) string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if ff := e.toy(f, "toy_font_face_get_family"); ff != nil {
		return ff.family
	}
	return ""
}

// ToyFontFaceGetSlant returns the slant.
func (e *Engine) ToyFontFaceGetSlant(f native.Handle) native.FontSlant {
	e.mu.Lock()
	defer e.mu.Unlock()
	if ff := e.toy(f, "toy_font_face_get_slant"); ff != nil {
		return ff.slant
	}
	return native.SlantNormal
}

// ToyFontFaceGetWeight returns the weight.
func (e *Engine) ToyFontFaceGetWeight(f native.Handle) native.FontWeight {
	e.mu.Lock()
	defer e.mu.Unlock()
	if ff := e.toy(f, "toy_font_face_get_weight"); ff != nil {
		return ff.weight
	}
	return native.WeightNormal
}

func invertible(m native.Matrix) bool {
	det := m.XX*m.YY - m.YX*m.XY
	return det != 0 && !math.IsNaN(det) && !math.IsInf(det, 0)
}

// ScaledFontCreate creates a scaled font holding a reference to face.
func (e *Engine) ScaledFontCreate(face native.Handle, fontMatrix, ctm native.Matrix, options native.Handle) native.Handle {
	e.mu.Lock()
	defer e.mu.Unlock()

	fo := e.lookup(native.KindFontFace, face, "scaled_font_create")
	if fo == nil {
		return e.errorObject(native.KindScaledFont, status.NullPointer)
	}
	if fo.status != status.Success {
		return e.errorObject(native.KindScaledFont, fo.status)
	}
	oo := e.lookup(native.KindFontOptions, options, "scaled_font_create")
	if oo == nil {
		return e.errorObject(native.KindScaledFont, status.NullPointer)
	}
	if oo.status != status.Success {
		return e.errorObject(native.KindScaledFont, oo.status)
	}
	if !invertible(fontMatrix) || !invertible(ctm) {
		return e.errorObject(native.KindScaledFont, status.InvalidMatrix)
	}
	if !fo.static {
		fo.refs++
	}
	return e.create(&object{
		kind: native.KindScaledFont,
		tag:  fo.tag,
		scaled: &scaledFont{
			face:       face,
			fontMatrix: fontMatrix,
			ctm:        ctm,
			options:    *oo.options,
		},
	})
}

// ScaledFontGetFontFace returns the face without a new reference.
func (e *Engine) ScaledFontGetFontFace(sf native.Handle) native.Handle {
	e.mu.Lock()
	defer e.mu.Unlock()
	o := e.lookup(native.KindScaledFont, sf, "scaled_font_get_font_face")
	if o == nil {
		return e.errorObject(native.KindFontFace, status.NullPointer)
	}
	if o.status != status.Success || o.scaled.face == 0 {
		return e.errorObject(native.KindFontFace, o.status)
	}
	return o.scaled.face
}

// FontOptionsCreate creates font options with every field at its default.
func (e *Engine) FontOptionsCreate() native.Handle {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.create(&object{kind: native.KindFontOptions, options: &fontOptions{}})
}

// FontOptionsCopy copies o into a new object.
func (e *Engine) FontOptionsCopy(o native.Handle) native.Handle {
	e.mu.Lock()
	defer e.mu.Unlock()
	src := e.lookup(native.KindFontOptions, o, "font_options_copy")
	if src == nil || src.status != status.Success {
		return e.errorObject(native.KindFontOptions, status.NoMemory)
	}
	cp := *src.options
	return e.create(&object{kind: native.KindFontOptions, options: &cp})
}

func (e *Engine) options(o native.Handle, op string, write bool) *fontOptions {
	obj := e.lookup(native.KindFontOptions, o, op)
	if obj == nil || (write && (obj.static || obj.status != status.Success)) {
		return nil
	}
	return obj.options
}

// FontOptionsMerge merges the non-default fields of other into o.
func (e *Engine) FontOptionsMerge(o, other native.Handle) {
	e.mu.Lock()
	defer e.mu.Unlock()
	dst := e.options(o, "font_options_merge", true)
	src := e.options(other, "font_options_merge", false)
	if dst != nil && src != nil {
		dst.merge(*src)
	}
}

// FontOptionsHash returns a hash of the options.
func (e *Engine) FontOptionsHash(o native.Handle) uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	if opts := e.options(o, "font_options_hash", false); opts != nil {
		return opts.hash()
	}
	return 0
}

// FontOptionsEqual reports whether o and other have the same values.
func (e *Engine) FontOptionsEqual(o, other native.Handle) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if o == other {
		return true
	}
	a := e.options(o, "font_options_equal", false)
	b := e.options(other, "font_options_equal", false)
	return a != nil && b != nil && *a == *b
}

// FontOptionsSetAntialias sets the antialiasing mode.
func (e *Engine) FontOptionsSetAntialias(o native.Handle, v native.Antialias) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if opts := e.options(o, "font_options_set_antialias", true); opts != nil {
		opts.antialias = v
	}
}

// FontOptionsGetAntialias returns the antialiasing mode.
func (e *Engine) FontOptionsGetAntialias(o native.Handle) native.Antialias {
	e.mu.Lock()
	defer e.mu.Unlock()
	if opts := e.options(o, "font_options_get_antialias", false); opts != nil {
		return opts.antialias
	}
	return native.AntialiasDefault
}

// FontOptionsSetSubpixelOrder sets the subpixel order.
func (e *Engine) FontOptionsSetSubpixelOrder(o native.Handle, v native.SubpixelOrder) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if opts := e.options(o, "font_options_set_subpixel_order", true); opts != nil {
		opts.subpixel = v
	}
}

// FontOptionsGetSubpixelOrder returns the subpixel order.
func (e *Engine) FontOptionsGetSubpixelOrder(o native.Handle) native.SubpixelOrder {
	e.mu.Lock()
	defer e.mu.Unlock()
	if opts := e.options(o, "font_options_get_subpixel_order", false); opts != nil {
		return opts.subpixel
	}
	return native.SubpixelOrderDefault
}

// FontOptionsSetHintStyle sets the hint style.
func (e *Engine) FontOptionsSetHintStyle(o native.Handle, v native.HintStyle) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if opts := e.options(o, "font_options_set_hint_style", true); opts != nil {
		opts.hintStyle = v
	}
}

// FontOptionsGetHintStyle returns the hint style.
func (e *Engine) FontOptionsGetHintStyle(o native.Handle) native.HintStyle {
	e.mu.Lock()
	defer e.mu.Unlock()
	if opts := e.options(o, "font_options_get_hint_style", false); opts != nil {
		return opts.hintStyle
	}
	return native.HintStyleDefault
}

// FontOptionsSetHintMetrics sets the hint metrics.
func (e *Engine) FontOptionsSetHintMetrics(o native.Handle, v native.HintMetrics) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if opts := e.options(o, "font_options_set_hint_metrics", true); opts != nil {
		opts.hintMetrics = v
	}
}

// FontOptionsGetHintMetrics returns the hint metrics.
func (e *Engine) FontOptionsGetHintMetrics(o native.Handle) native.HintMetrics {
	e.mu.Lock()
	defer e.mu.Unlock()
	if opts := e.options(o, "font_options_get_hint_metrics", false); opts != nil {
		return opts.hintMetrics
	}
	return native.HintMetricsDefault
}
