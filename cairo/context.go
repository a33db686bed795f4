package cairo

import (
	"github.com/wippyai/cairobind/errors"
	"github.com/wippyai/cairobind/handle"
	"github.com/wippyai/cairobind/native"
	"github.com/wippyai/cairobind/path"
)

// Context draws onto a target surface.
type Context struct {
	b   *Binding
	obj *handle.Object
}

// NewContext creates a context drawing to target. The context holds its own
// reference to the target.
func (b *Binding) NewContext(target Surface) (*Context, error) {
	if err := b.usable(); err != nil {
		return nil, err
	}
	if target == nil {
		return nil, errors.InvalidHandle(errors.PhaseWrap, native.KindSurface.String())
	}
	var c *Context
	err := pinned(target.Object(), func(lib native.Library, sh native.Handle) error {
		obj, err := b.own(native.KindContext, lib.Create(sh))
		if err != nil {
			return err
		}
		c = &Context{b: b, obj: obj}
		return nil
	})
	return c, err
}

// Object returns the underlying handle object.
func (c *Context) Object() *handle.Object { return c.obj }

// Handle returns the raw native handle.
func (c *Context) Handle() native.Handle { return c.obj.Handle() }

// Status returns the context's native status.
func (c *Context) Status() error { return c.obj.Status() }

// ReferenceCount returns the native reference count.
func (c *Context) ReferenceCount() uint32 { return c.obj.ReferenceCount() }

// Close drops the wrapper's reference.
func (c *Context) Close() error { return c.obj.Close() }

func (c *Context) do(fn func(lib native.Library, h native.Handle)) error {
	return c.obj.Do(fn)
}

// Target returns a new wrapper for the target surface, rehydrated to its
// concrete type on every call.
func (c *Context) Target() (Surface, error) {
	var s Surface
	err := pinned(c.obj, func(lib native.Library, h native.Handle) error {
		var err error
		s, err = c.b.WrapSurface(lib.GetTarget(h), false)
		return err
	})
	return s, err
}

// Source returns a new wrapper for the current source pattern.
func (c *Context) Source() (Pattern, error) {
	var p Pattern
	err := pinned(c.obj, func(lib native.Library, h native.Handle) error {
		var err error
		p, err = c.b.WrapPattern(lib.GetSource(h), false)
		return err
	})
	return p, err
}

// SetSource makes p the source. The context keeps its own reference.
func (c *Context) SetSource(p Pattern) error {
	if p == nil {
		return errors.InvalidHandle(errors.PhaseWrap, native.KindPattern.String())
	}
	return pinned(p.Object(), func(_ native.Library, ph native.Handle) error {
		return c.do(func(lib native.Library, h native.Handle) { lib.SetSource(h, ph) })
	})
}

// SetSourceRGBA sets a translucent color source.
func (c *Context) SetSourceRGBA(r, g, b, a float64) error {
	return c.do(func(lib native.Library, h native.Handle) { lib.SetSourceRGBA(h, r, g, b, a) })
}

// SetSourceRGB sets an opaque color source.
func (c *Context) SetSourceRGB(r, g, b float64) error {
	return c.SetSourceRGBA(r, g, b, 1)
}

// SetSourceSurface paints from s with its origin at (x, y).
func (c *Context) SetSourceSurface(s Surface, x, y float64) error {
	if s == nil {
		return errors.InvalidHandle(errors.PhaseWrap, native.KindSurface.String())
	}
	return pinned(s.Object(), func(_ native.Library, sh native.Handle) error {
		return c.do(func(lib native.Library, h native.Handle) { lib.SetSourceSurface(h, sh, x, y) })
	})
}

// NewPath clears the current path.
func (c *Context) NewPath() error {
	return c.do(func(lib native.Library, h native.Handle) { lib.NewPath(h) })
}

// MoveTo begins a new sub-path at (x, y).
func (c *Context) MoveTo(x, y float64) error {
	return c.do(func(lib native.Library, h native.Handle) { lib.MoveTo(h, x, y) })
}

// LineTo adds a line to (x, y).
func (c *Context) LineTo(x, y float64) error {
	return c.do(func(lib native.Library, h native.Handle) { lib.LineTo(h, x, y) })
}

// CurveTo adds a cubic Bézier spline.
func (c *Context) CurveTo(x1, y1, x2, y2, x3, y3 float64) error {
	return c.do(func(lib native.Library, h native.Handle) { lib.CurveTo(h, x1, y1, x2, y2, x3, y3) })
}

// ClosePath closes the current sub-path.
func (c *Context) ClosePath() error {
	return c.do(func(lib native.Library, h native.Handle) { lib.ClosePath(h) })
}

// Rectangle adds a closed rectangle sub-path.
func (c *Context) Rectangle(x, y, width, height float64) error {
	return c.do(func(lib native.Library, h native.Handle) { lib.Rectangle(h, x, y, width, height) })
}

// CopyPath returns the current path.
func (c *Context) CopyPath() ([]path.Operation, error) {
	var ops []path.Operation
	err := pinned(c.obj, func(lib native.Library, h native.Handle) error {
		var err error
		ops, err = c.b.WrapPath(lib.CopyPath(h), true)
		return err
	})
	return ops, err
}

// AppendPath appends ops to the current path.
func (c *Context) AppendPath(ops []path.Operation) error {
	lib := c.obj.Library()
	p, free, err := path.Store(lib.Memory(), lib, ops)
	if err != nil {
		return err
	}
	defer free()
	return c.do(func(lib native.Library, h native.Handle) { lib.AppendPath(h, p) })
}

// Paint paints the source everywhere within the clip.
func (c *Context) Paint() error {
	return c.do(func(lib native.Library, h native.Handle) { lib.Paint(h) })
}

// Fill fills the current path and clears it.
func (c *Context) Fill() error {
	return c.do(func(lib native.Library, h native.Handle) { lib.Fill(h) })
}

// Stroke strokes the current path and clears it.
func (c *Context) Stroke() error {
	return c.do(func(lib native.Library, h native.Handle) { lib.Stroke(h) })
}

// ShowPage emits the current page of the target.
func (c *Context) ShowPage() error {
	return c.do(func(lib native.Library, h native.Handle) { lib.ShowPage(h) })
}

// SetFontFace selects f, or the default face when f is nil.
func (c *Context) SetFontFace(f FontFace) error {
	if f == nil {
		return c.do(func(lib native.Library, h native.Handle) { lib.SetFontFace(h, 0) })
	}
	return pinned(f.Object(), func(_ native.Library, fh native.Handle) error {
		return c.do(func(lib native.Library, h native.Handle) { lib.SetFontFace(h, fh) })
	})
}

// FontFace returns a new wrapper for the current font face.
func (c *Context) FontFace() (FontFace, error) {
	var f FontFace
	err := pinned(c.obj, func(lib native.Library, h native.Handle) error {
		var err error
		f, err = c.b.WrapFontFace(lib.GetFontFace(h), false)
		return err
	})
	return f, err
}
