package cairo

import (
	"go.uber.org/multierr"

	"github.com/wippyai/cairobind/errors"
	"github.com/wippyai/cairobind/handle"
	"github.com/wippyai/cairobind/native"
)

// FontFace is any cairo_font_face_t wrapper. Every implementation embeds
// *BaseFontFace.
type FontFace interface {
	Object() *handle.Object
	Type() native.FontType
	Status() error
	Close() error
	fontFace() *BaseFontFace
}

// BaseFontFace implements the operations shared by every font face type.
type BaseFontFace struct {
	b   *Binding
	obj *handle.Object
}

func (b *Binding) baseFontFace(obj *handle.Object) FontFace {
	return b.FontFaceBase(obj)
}

// FontFaceBase builds the base wrapper for obj.
func (b *Binding) FontFaceBase(obj *handle.Object) *BaseFontFace {
	return &BaseFontFace{b: b, obj: obj}
}

func (f *BaseFontFace) fontFace() *BaseFontFace { return f }

// Object returns the underlying handle object.
func (f *BaseFontFace) Object() *handle.Object { return f.obj }

// Handle returns the raw native handle.
func (f *BaseFontFace) Handle() native.Handle { return f.obj.Handle() }

// Type returns the native font type.
func (f *BaseFontFace) Type() native.FontType {
	h, err := f.obj.Pin()
	if err != nil {
		return -1
	}
	defer f.obj.Unpin()
	return native.FontType(f.obj.Library().Type(native.KindFontFace, h))
}

// Status returns the face's native status.
func (f *BaseFontFace) Status() error { return f.obj.Status() }

// ReferenceCount returns the native reference count.
func (f *BaseFontFace) ReferenceCount() uint32 { return f.obj.ReferenceCount() }

// Close drops the wrapper's reference.
func (f *BaseFontFace) Close() error { return f.obj.Close() }

// ToyFontFace selects a font by family, slant and weight.
type ToyFontFace struct {
	*BaseFontFace
}

func (b *Binding) toyFontFace(obj *handle.Object) FontFace {
	return &ToyFontFace{b.FontFaceBase(obj)}
}

// NewToyFontFace creates a toy font face. family is passed as UTF-8.
func (b *Binding) NewToyFontFace(family string, slant native.FontSlant, weight native.FontWeight) (*ToyFontFace, error) {
	if err := b.usable(); err != nil {
		return nil, err
	}
	obj, err := b.own(native.KindFontFace, b.lib.ToyFontFaceCreate([]byte(family), slant, weight))
	if err != nil {
		return nil, err
	}
	return &ToyFontFace{b.FontFaceBase(obj)}, nil
}

// Family returns the requested family name.
func (f *ToyFontFace) Family() (string, error) {
	return get(f.obj, func(lib native.Library, h native.Handle) string {
		return lib.ToyFontFaceGetFamily(h)
	})
}

// Slant returns the requested slant.
func (f *ToyFontFace) Slant() (native.FontSlant, error) {
	return get(f.obj, func(lib native.Library, h native.Handle) native.FontSlant {
		return lib.ToyFontFaceGetSlant(h)
	})
}

// Weight returns the requested weight.
func (f *ToyFontFace) Weight() (native.FontWeight, error) {
	return get(f.obj, func(lib native.Library, h native.Handle) native.FontWeight {
		return lib.ToyFontFaceGetWeight(h)
	})
}

// ScaledFont is a font face at a particular size and transform.
type ScaledFont struct {
	b   *Binding
	obj *handle.Object
}

// NewScaledFont creates a scaled font. Nil options use the defaults.
func (b *Binding) NewScaledFont(face FontFace, fontMatrix, ctm native.Matrix, options *FontOptions) (sf *ScaledFont, err error) {
	if err := b.usable(); err != nil {
		return nil, err
	}
	if face == nil {
		return nil, errors.InvalidHandle(errors.PhaseWrap, native.KindFontFace.String())
	}
	if options == nil {
		if options, err = b.NewFontOptions(); err != nil {
			return nil, err
		}
		defer func() { err = multierr.Append(err, options.Close()) }()
	}

	err = pinned(face.Object(), func(lib native.Library, fh native.Handle) error {
		return pinned(options.obj, func(lib native.Library, oh native.Handle) error {
			obj, err := b.own(native.KindScaledFont, lib.ScaledFontCreate(fh, fontMatrix, ctm, oh))
			if err != nil {
				return err
			}
			sf = &ScaledFont{b: b, obj: obj}
			return nil
		})
	})
	return sf, err
}

// Object returns the underlying handle object.
func (sf *ScaledFont) Object() *handle.Object { return sf.obj }

// Handle returns the raw native handle.
func (sf *ScaledFont) Handle() native.Handle { return sf.obj.Handle() }

// Type returns the font type of the scaled font.
func (sf *ScaledFont) Type() native.FontType {
	h, err := sf.obj.Pin()
	if err != nil {
		return -1
	}
	defer sf.obj.Unpin()
	return native.FontType(sf.obj.Library().Type(native.KindScaledFont, h))
}

// Status returns the scaled font's native status.
func (sf *ScaledFont) Status() error { return sf.obj.Status() }

// ReferenceCount returns the native reference count.
func (sf *ScaledFont) ReferenceCount() uint32 { return sf.obj.ReferenceCount() }

// Close drops the wrapper's reference.
func (sf *ScaledFont) Close() error { return sf.obj.Close() }

// FontFace returns a new wrapper for the face the font was created from.
func (sf *ScaledFont) FontFace() (FontFace, error) {
	var f FontFace
	err := pinned(sf.obj, func(lib native.Library, h native.Handle) error {
		var err error
		f, err = sf.b.WrapFontFace(lib.ScaledFontGetFontFace(h), false)
		return err
	})
	return f, err
}

// FontOptions holds rendering hints for fonts. It is uniquely owned;
// wrapping a borrowed handle copies it.
type FontOptions struct {
	b   *Binding
	obj *handle.Object
}

// NewFontOptions creates font options with every field at its default.
func (b *Binding) NewFontOptions() (*FontOptions, error) {
	if err := b.usable(); err != nil {
		return nil, err
	}
	obj, err := b.own(native.KindFontOptions, b.lib.FontOptionsCreate())
	if err != nil {
		return nil, err
	}
	return &FontOptions{b: b, obj: obj}, nil
}

// Object returns the underlying handle object.
func (o *FontOptions) Object() *handle.Object { return o.obj }

// Status returns the options' native status.
func (o *FontOptions) Status() error { return o.obj.Status() }

// Close frees the options.
func (o *FontOptions) Close() error { return o.obj.Close() }

// Copy returns an independent copy.
func (o *FontOptions) Copy() (*FontOptions, error) {
	var c *FontOptions
	err := pinned(o.obj, func(lib native.Library, h native.Handle) error {
		obj, err := o.b.own(native.KindFontOptions, lib.FontOptionsCopy(h))
		if err != nil {
			return err
		}
		c = &FontOptions{b: o.b, obj: obj}
		return nil
	})
	return c, err
}

// Merge overrides o with every non-default field of other.
func (o *FontOptions) Merge(other *FontOptions) error {
	return pinned(other.obj, func(_ native.Library, oh native.Handle) error {
		return o.obj.Do(func(lib native.Library, h native.Handle) { lib.FontOptionsMerge(h, oh) })
	})
}

// Hash returns a hash of the options.
func (o *FontOptions) Hash() (uint64, error) {
	return get(o.obj, func(lib native.Library, h native.Handle) uint64 {
		return lib.FontOptionsHash(h)
	})
}

// Equal reports whether both options hold the same values.
func (o *FontOptions) Equal(other *FontOptions) bool {
	var eq bool
	err := pinned(other.obj, func(_ native.Library, oh native.Handle) error {
		return pinned(o.obj, func(lib native.Library, h native.Handle) error {
			eq = lib.FontOptionsEqual(h, oh)
			return nil
		})
	})
	return eq && err == nil
}

// SetAntialias sets the antialiasing mode.
func (o *FontOptions) SetAntialias(v native.Antialias) error {
	return o.obj.Do(func(lib native.Library, h native.Handle) { lib.FontOptionsSetAntialias(h, v) })
}

// Antialias returns the antialiasing mode.
func (o *FontOptions) Antialias() (native.Antialias, error) {
	return get(o.obj, func(lib native.Library, h native.Handle) native.Antialias {
		return lib.FontOptionsGetAntialias(h)
	})
}

// SetSubpixelOrder sets the subpixel order.
func (o *FontOptions) SetSubpixelOrder(v native.SubpixelOrder) error {
	return o.obj.Do(func(lib native.Library, h native.Handle) { lib.FontOptionsSetSubpixelOrder(h, v) })
}

// SubpixelOrder returns the subpixel order.
func (o *FontOptions) SubpixelOrder() (native.SubpixelOrder, error) {
	return get(o.obj, func(lib native.Library, h native.Handle) native.SubpixelOrder {
		return lib.FontOptionsGetSubpixelOrder(h)
	})
}

// SetHintStyle sets the outline hinting style.
func (o *FontOptions) SetHintStyle(v native.HintStyle) error {
	return o.obj.Do(func(lib native.Library, h native.Handle) { lib.FontOptionsSetHintStyle(h, v) })
}

// HintStyle returns the outline hinting style.
func (o *FontOptions) HintStyle() (native.HintStyle, error) {
	return get(o.obj, func(lib native.Library, h native.Handle) native.HintStyle {
		return lib.FontOptionsGetHintStyle(h)
	})
}

// SetHintMetrics sets metrics hinting.
func (o *FontOptions) SetHintMetrics(v native.HintMetrics) error {
	return o.obj.Do(func(lib native.Library, h native.Handle) { lib.FontOptionsSetHintMetrics(h, v) })
}

// HintMetrics returns metrics hinting.
func (o *FontOptions) HintMetrics() (native.HintMetrics, error) {
	return get(o.obj, func(lib native.Library, h native.Handle) native.HintMetrics {
		return lib.FontOptionsGetHintMetrics(h)
	})
}
