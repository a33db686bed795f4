package sim

import (
	"encoding/binary"
	"strings"

	"github.com/wippyai/cairobind/native"
	"github.com/wippyai/cairobind/status"
)

// strokeHalfWidth is half of cairo's default line width.
const strokeHalfWidth = 1.0

type context struct {
	path   []segment
	target native.Handle
	source native.Handle
	face   native.Handle
	start  point
	cur    point
	hasCur bool
}

// Create creates a context drawing to target, holding a reference to it.
func (e *Engine) Create(target native.Handle) native.Handle {
	e.mu.Lock()
	defer e.mu.Unlock()

	o, st := e.liveSurface(target, "create")
	if st != status.Success {
		return e.errorObject(native.KindContext, st)
	}
	if !o.static {
		o.refs++
	}
	return e.create(&object{
		kind:    native.KindContext,
		context: &context{target: target},
	})
}

// ctx returns a usable context or nil when cr is invalid or in error.
func (e *Engine) ctx(cr native.Handle, op string) (*object, *context) {
	o := e.lookup(native.KindContext, cr, op)
	if o == nil || o.status != status.Success || o.static {
		return o, nil
	}
	return o, o.context
}

// GetTarget returns the target surface without a new reference.
func (e *Engine) GetTarget(cr native.Handle) native.Handle {
	e.mu.Lock()
	defer e.mu.Unlock()
	o := e.lookup(native.KindContext, cr, "get_target")
	if o == nil {
		return e.errorObject(native.KindSurface, status.NullPointer)
	}
	if o.status != status.Success || o.context.target == 0 {
		return e.errorObject(native.KindSurface, o.status)
	}
	return o.context.target
}

// GetSource returns the current source pattern without a new reference.
func (e *Engine) GetSource(cr native.Handle) native.Handle {
	e.mu.Lock()
	defer e.mu.Unlock()
	o := e.lookup(native.KindContext, cr, "get_source")
	if o == nil {
		return e.errorObject(native.KindPattern, status.NullPointer)
	}
	if o.status != status.Success {
		return e.errorObject(native.KindPattern, o.status)
	}
	if o.context.source == 0 {
		return e.black
	}
	return o.context.source
}

// replaceSource installs p, which already carries the reference the context
// will own. Caller holds the lock.
func (e *Engine) replaceSource(c *context, p native.Handle) []action {
	old := c.source
	c.source = p
	if old != 0 {
		return e.release(native.KindPattern, old)
	}
	return nil
}

// SetSource makes pattern the source, taking a reference to it.
func (e *Engine) SetSource(cr, p native.Handle) {
	e.mu.Lock()
	var actions []action
	o, c := e.ctx(cr, "set_source")
	if c != nil {
		po := e.lookup(native.KindPattern, p, "set_source")
		switch {
		case po == nil:
			setError(o, status.NullPointer)
		case po.status != status.Success:
			setError(o, po.status)
		default:
			if !po.static {
				po.refs++
			}
			if p == e.black {
				p = 0
			}
			actions = e.replaceSource(c, p)
		}
	}
	e.mu.Unlock()
	run(actions)
}

// SetSourceRGBA sets a solid source.
func (e *Engine) SetSourceRGBA(cr native.Handle, r, g, b, a float64) {
	e.mu.Lock()
	var actions []action
	if _, c := e.ctx(cr, "set_source_rgba"); c != nil {
		p := e.create(&object{
			kind:    native.KindPattern,
			tag:     int32(native.PatternTypeSolid),
			pattern: newSolid(r, g, b, a),
		})
		actions = e.replaceSource(c, p)
	}
	e.mu.Unlock()
	run(actions)
}

// SetSourceSurface sets a surface pattern source offset by x, y.
func (e *Engine) SetSourceSurface(cr, s native.Handle, x, y float64) {
	e.mu.Lock()
	var actions []action
	if o, c := e.ctx(cr, "set_source_surface"); c != nil {
		so, st := e.liveSurface(s, "set_source_surface")
		if st != status.Success && st != status.SurfaceFinished {
			setError(o, st)
		} else {
			if !so.static {
				so.refs++
			}
			p := e.create(&object{
				kind: native.KindPattern,
				tag:  int32(native.PatternTypeSurface),
				pattern: &pattern{
					surface: s,
					coords:  [6]float64{x, y},
					extend:  native.ExtendNone,
					filter:  native.FilterGood,
				},
			})
			actions = e.replaceSource(c, p)
		}
	}
	e.mu.Unlock()
	run(actions)
}

func (c *context) moveTo(x, y float64) {
	p := point{x, y}
	if n := len(c.path); n > 0 && c.path[n-1].typ == native.PathMoveTo {
		c.path[n-1].pts[0] = p
	} else {
		c.path = append(c.path, segment{typ: native.PathMoveTo, pts: []point{p}})
	}
	c.start, c.cur, c.hasCur = p, p, true
}

func (c *context) lineTo(x, y float64) {
	if !c.hasCur {
		c.moveTo(x, y)
		return
	}
	p := point{x, y}
	c.path = append(c.path, segment{typ: native.PathLineTo, pts: []point{p}})
	c.cur = p
}

func (c *context) curveTo(x1, y1, x2, y2, x3, y3 float64) {
	if !c.hasCur {
		c.moveTo(x1, y1)
	}
	c.path = append(c.path, segment{
		typ: native.PathCurveTo,
		pts: []point{{x1, y1}, {x2, y2}, {x3, y3}},
	})
	c.cur = point{x3, y3}
}

// closePath closes the subpath and, as cairo does, starts a new one at the
// subpath's first point.
func (c *context) closePath() {
	if !c.hasCur {
		return
	}
	c.path = append(c.path, segment{typ: native.PathClosePath})
	start := c.start
	c.moveTo(start[0], start[1])
}

func (c *context) newPath() {
	c.path = nil
	c.hasCur = false
}

func (c *context) bounds() bounds {
	var b bounds
	for _, s := range c.path {
		for _, p := range s.pts {
			b.add(p[0], p[1])
		}
	}
	return b
}

// svgPath renders the current path in SVG path syntax.
func (c *context) svgPath() string {
	var b strings.Builder
	for i, s := range c.path {
		if i > 0 {
			b.WriteByte(' ')
		}
		switch s.typ {
		case native.PathMoveTo:
			b.WriteString("M")
		case native.PathLineTo:
			b.WriteString("L")
		case native.PathCurveTo:
			b.WriteString("C")
		case native.PathClosePath:
			b.WriteString("Z")
		}
		for _, p := range s.pts {
			b.WriteByte(' ')
			b.WriteString(num(p[0]))
			b.WriteByte(' ')
			b.WriteString(num(p[1]))
		}
	}
	return b.String()
}

// NewPath clears the current path.
func (e *Engine) NewPath(cr native.Handle) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, c := e.ctx(cr, "new_path"); c != nil {
		c.newPath()
	}
}

// MoveTo starts a new subpath.
func (e *Engine) MoveTo(cr native.Handle, x, y float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, c := e.ctx(cr, "move_to"); c != nil {
		c.moveTo(x, y)
	}
}

// LineTo adds a line, or moves when there is no current point.
func (e *Engine) LineTo(cr native.Handle, x, y float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, c := e.ctx(cr, "line_to"); c != nil {
		c.lineTo(x, y)
	}
}

// CurveTo adds a cubic Bézier spline.
func (e *Engine) CurveTo(cr native.Handle, x1, y1, x2, y2, x3, y3 float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, c := e.ctx(cr, "curve_to"); c != nil {
		c.curveTo(x1, y1, x2, y2, x3, y3)
	}
}

// ClosePath closes the current subpath.
func (e *Engine) ClosePath(cr native.Handle) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, c := e.ctx(cr, "close_path"); c != nil {
		c.closePath()
	}
}

// Rectangle adds a closed rectangular subpath.
func (e *Engine) Rectangle(cr native.Handle, x, y, width, height float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, c := e.ctx(cr, "rectangle"); c != nil {
		c.moveTo(x, y)
		c.lineTo(x+width, y)
		c.lineTo(x+width, y+height)
		c.lineTo(x, y+height)
		c.closePath()
	}
}

// CopyPath returns an owned copy of the current path. A context in error
// yields a path carrying that status and no data.
func (e *Engine) CopyPath(cr native.Handle) native.Handle {
	e.mu.Lock()
	defer e.mu.Unlock()
	o, c := e.ctx(cr, "copy_path")
	if c == nil {
		st := status.NullPointer
		if o != nil {
			st = o.status
		}
		return e.writePath(st, nil)
	}
	return e.writePath(status.Success, c.path)
}

// AppendPath replays the records of the cairo_path_t at p.
func (e *Engine) AppendPath(cr, p native.Handle) {
	e.mu.Lock()
	defer e.mu.Unlock()
	o, c := e.ctx(cr, "append_path")
	if c == nil {
		return
	}
	segs, st := e.readPath(p)
	if st != status.Success {
		setError(o, st)
		return
	}
	for _, s := range segs {
		switch s.typ {
		case native.PathMoveTo:
			c.moveTo(s.pts[0][0], s.pts[0][1])
		case native.PathLineTo:
			c.lineTo(s.pts[0][0], s.pts[0][1])
		case native.PathCurveTo:
			c.curveTo(s.pts[0][0], s.pts[0][1], s.pts[1][0], s.pts[1][1], s.pts[2][0], s.pts[2][1])
		case native.PathClosePath:
			c.closePath()
		}
	}
}

// drawTarget returns the target surface of a usable context.
func (e *Engine) drawTarget(cr native.Handle, op string) (*object, *context, *surface) {
	o, c := e.ctx(cr, op)
	if c == nil {
		return o, nil, nil
	}
	t, st := e.liveSurface(c.target, op)
	if st != status.Success {
		setError(o, st)
		return o, nil, nil
	}
	return o, c, t.surface
}

// Paint fills the whole target with the source. Image targets are only
// painted for solid sources.
func (e *Engine) Paint(cr native.Handle) {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, c, sf := e.drawTarget(cr, "paint")
	if sf == nil {
		return
	}
	switch {
	case sf.doc != nil:
		sf.doc.draw("paint", "")
	case sf.data != nil:
		src := e.objects[c.source]
		if c.source == 0 {
			src = e.objects[e.black]
		}
		if src != nil && src.tag == int32(native.PatternTypeSolid) {
			fillSolid(sf, src.pattern.rgba)
		}
	case sf.extents != nil:
		sf.ink.union(bounds{
			x0: sf.extents.X, y0: sf.extents.Y,
			x1: sf.extents.X + sf.extents.Width, y1: sf.extents.Y + sf.extents.Height,
			set: true,
		})
	}
}

func fillSolid(sf *surface, rgba [4]float64) {
	a := rgba[3]
	scale := func(v float64) uint32 { return uint32(v*a*255 + 0.5) }
	px := uint32(a*255+0.5)<<24 | scale(rgba[0])<<16 | scale(rgba[1])<<8 | scale(rgba[2])

	for y := 0; y < sf.height; y++ {
		row := sf.data[y*sf.stride:]
		switch sf.format {
		case native.FormatARGB32, native.FormatRGB24:
			for x := 0; x < sf.width; x++ {
				binary.LittleEndian.PutUint32(row[4*x:], px)
			}
		case native.FormatA8:
			for x := 0; x < sf.width; x++ {
				row[x] = uint8(px >> 24)
			}
		}
	}
}

func (e *Engine) drawPath(cr native.Handle, verb string, grow float64) {
	_, c, sf := e.drawTarget(cr, verb)
	if sf == nil {
		return
	}
	if sf.doc != nil && len(c.path) > 0 {
		sf.doc.draw(verb, c.svgPath())
	}
	if b := c.bounds(); b.set && sf.doc == nil && sf.data == nil {
		b.x0 -= grow
		b.y0 -= grow
		b.x1 += grow
		b.y1 += grow
		sf.ink.union(b)
	}
	c.newPath()
}

// Fill fills and clears the current path.
func (e *Engine) Fill(cr native.Handle) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.drawPath(cr, "fill", 0)
}

// Stroke strokes and clears the current path.
func (e *Engine) Stroke(cr native.Handle) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.drawPath(cr, "stroke", strokeHalfWidth)
}

// ShowPage emits the current page of the target.
func (e *Engine) ShowPage(cr native.Handle) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, _, sf := e.drawTarget(cr, "show_page"); sf != nil && sf.doc != nil {
		sf.doc.showPage()
	}
}

// SetFontFace sets the font face, or restores the default when face is 0.
func (e *Engine) SetFontFace(cr, face native.Handle) {
	e.mu.Lock()
	var actions []action
	if o, c := e.ctx(cr, "set_font_face"); c != nil {
		if face != 0 {
			fo := e.lookup(native.KindFontFace, face, "set_font_face")
			if fo == nil {
				setError(o, status.NullPointer)
				e.mu.Unlock()
				return
			}
			if fo.status != status.Success {
				setError(o, fo.status)
				e.mu.Unlock()
				return
			}
			if !fo.static {
				fo.refs++
			}
		}
		old := c.face
		c.face = face
		if old != 0 {
			actions = e.release(native.KindFontFace, old)
		}
	}
	e.mu.Unlock()
	run(actions)
}

// GetFontFace returns the current font face without a new reference,
// creating the default toy face on first use.
func (e *Engine) GetFontFace(cr native.Handle) native.Handle {
	e.mu.Lock()
	defer e.mu.Unlock()
	o := e.lookup(native.KindContext, cr, "get_font_face")
	if o == nil {
		return e.errorObject(native.KindFontFace, status.NullPointer)
	}
	if o.status != status.Success {
		return e.errorObject(native.KindFontFace, o.status)
	}
	c := o.context
	if c.face == 0 {
		c.face = e.newToyFace("", native.SlantNormal, native.WeightNormal)
	}
	return c.face
}
