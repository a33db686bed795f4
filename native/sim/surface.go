package sim

import (
	"math"
	"os"
	"sort"

	"github.com/wippyai/cairobind/native"
	"github.com/wippyai/cairobind/status"
)

const (
	maxImageSize = 32767

	// defaultFallback is the fallback resolution, in pixels per inch, of a
	// surface that never had one set.
	defaultFallback = 300
)

type mimeEntry struct {
	destroy native.DestroyFunc
	data    []byte
	closure native.Closure
}

type surface struct {
	mime    map[string]*mimeEntry
	extents *native.Rectangle
	doc     *document
	data    []byte
	ink     bounds
	devX    float64
	devY    float64
	fbX     float64
	fbY     float64
	width   int
	height  int
	stride  int
	format  native.Format
	content native.Content
	done    bool
}

// bounds is a running bounding box.
type bounds struct {
	x0, y0, x1, y1 float64
	set            bool
}

func (b *bounds) add(x, y float64) {
	if !b.set {
		b.x0, b.y0, b.x1, b.y1, b.set = x, y, x, y, true
		return
	}
	b.x0 = math.Min(b.x0, x)
	b.y0 = math.Min(b.y0, y)
	b.x1 = math.Max(b.x1, x)
	b.y1 = math.Max(b.y1, y)
}

func (b *bounds) union(o bounds) {
	if !o.set {
		return
	}
	b.add(o.x0, o.y0)
	b.add(o.x1, o.y1)
}

func (b bounds) rect() native.Rectangle {
	if !b.set {
		return native.Rectangle{}
	}
	return native.Rectangle{X: b.x0, Y: b.y0, Width: b.x1 - b.x0, Height: b.y1 - b.y0}
}

func validFormat(f native.Format) bool {
	return f >= native.FormatARGB32 && f <= native.FormatRGBA128F
}

func contentForFormat(f native.Format) native.Content {
	switch f {
	case native.FormatA8, native.FormatA1:
		return native.ContentAlpha
	case native.FormatRGB24, native.FormatRGB16565, native.FormatRGB30, native.FormatRGB96F:
		return native.ContentColor
	}
	return native.ContentColorAlpha
}

func formatForContent(c native.Content) native.Format {
	switch c {
	case native.ContentColor:
		return native.FormatRGB24
	case native.ContentAlpha:
		return native.FormatA8
	}
	return native.FormatARGB32
}

func strideForWidth(f native.Format, width int) int {
	bpp := f.BitsPerPixel()
	if !validFormat(f) || bpp == 0 || width < 0 || width >= (math.MaxInt32-7)/bpp {
		return -1
	}
	return ((bpp*width+7)/8 + 3) &^ 3
}

// FormatStrideForWidth returns the stride cairo uses for width pixels, or -1.
func (e *Engine) FormatStrideForWidth(format native.Format, width int) int {
	return strideForWidth(format, width)
}

func (e *Engine) newImage(format native.Format, width, height int, data []byte, stride int) native.Handle {
	if !validFormat(format) {
		return e.errorObject(native.KindSurface, status.InvalidFormat)
	}
	if width < 0 || height < 0 || width > maxImageSize || height > maxImageSize {
		return e.errorObject(native.KindSurface, status.InvalidSize)
	}
	if data == nil {
		stride = strideForWidth(format, width)
		data = make([]byte, stride*height)
	}
	return e.create(&object{
		kind: native.KindSurface,
		tag:  int32(native.SurfaceTypeImage),
		surface: &surface{
			content: contentForFormat(format),
			format:  format,
			width:   width,
			height:  height,
			stride:  stride,
			data:    data,
		},
	})
}

// ImageSurfaceCreate creates an image surface with engine-owned pixels.
func (e *Engine) ImageSurfaceCreate(format native.Format, width, height int) native.Handle {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.newImage(format, width, height, nil, 0)
}

// ImageSurfaceCreateForData creates an image surface over caller pixels.
// The engine keeps using data until the surface is destroyed.
func (e *Engine) ImageSurfaceCreateForData(data []byte, format native.Format, width, height, stride int) native.Handle {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !validFormat(format) {
		return e.errorObject(native.KindSurface, status.InvalidFormat)
	}
	if stride < 0 || stride%4 != 0 || stride < strideForWidth(format, width) {
		return e.errorObject(native.KindSurface, status.InvalidStride)
	}
	if data == nil {
		return e.errorObject(native.KindSurface, status.NullPointer)
	}
	if len(data) < stride*height {
		return e.errorObject(native.KindSurface, status.InvalidSize)
	}
	return e.newImage(format, width, height, data, stride)
}

func (e *Engine) image(s native.Handle, op string) *surface {
	o := e.lookup(native.KindSurface, s, op)
	if o == nil || o.tag != int32(native.SurfaceTypeImage) || o.surface.data == nil {
		if o != nil {
			setError(o, status.SurfaceTypeMismatch)
		}
		return nil
	}
	return o.surface
}

// ImageSurfaceGetData returns the pixel buffer, nil for non-image surfaces.
func (e *Engine) ImageSurfaceGetData(s native.Handle) []byte {
	e.mu.Lock()
	defer e.mu.Unlock()
	if img := e.image(s, "image_surface_get_data"); img != nil && !img.done {
		return img.data
	}
	return nil
}

// ImageSurfaceGetFormat returns the pixel format.
func (e *Engine) ImageSurfaceGetFormat(s native.Handle) native.Format {
	e.mu.Lock()
	defer e.mu.Unlock()
	if img := e.image(s, "image_surface_get_format"); img != nil {
		return img.format
	}
	return native.FormatInvalid
}

// ImageSurfaceGetWidth returns the width in pixels.
func (e *Engine) ImageSurfaceGetWidth(s native.Handle) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	if img := e.image(s, "image_surface_get_width"); img != nil {
		return img.width
	}
	return 0
}

// ImageSurfaceGetHeight returns the height in pixels.
func (e *Engine) ImageSurfaceGetHeight(s native.Handle) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	if img := e.image(s, "image_surface_get_height"); img != nil {
		return img.height
	}
	return 0
}

// ImageSurfaceGetStride returns the row stride in bytes.
func (e *Engine) ImageSurfaceGetStride(s native.Handle) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	if img := e.image(s, "image_surface_get_stride"); img != nil {
		return img.stride
	}
	return 0
}

func (e *Engine) liveSurface(s native.Handle, op string) (*object, native.Status) {
	o := e.lookup(native.KindSurface, s, op)
	if o == nil {
		return nil, status.NullPointer
	}
	if o.status != status.Success {
		return o, o.status
	}
	if o.surface.done {
		return o, status.SurfaceFinished
	}
	return o, status.Success
}

// SurfaceSetMimeData attaches, replaces or, with nil data, removes mime data.
// A replaced or removed entry's destroy callback runs before this returns.
func (e *Engine) SurfaceSetMimeData(s native.Handle, mimeType string, data []byte, destroy native.DestroyFunc, c native.Closure) native.Status {
	e.mu.Lock()
	st, actions := e.setMimeData(s, mimeType, data, destroy, c)
	e.mu.Unlock()
	run(actions)
	return st
}

func (e *Engine) setMimeData(s native.Handle, mimeType string, data []byte, destroy native.DestroyFunc, c native.Closure) (native.Status, []action) {
	o, st := e.liveSurface(s, "set_mime_data")
	if st != status.Success {
		return st, nil
	}
	if o.static {
		return o.status, nil
	}
	if st := e.takeFailure(); st != status.Success {
		return st, nil
	}

	sf := o.surface
	var actions []action
	if old, ok := sf.mime[mimeType]; ok {
		if old.destroy != nil {
			fn, oc := old.destroy, old.closure
			actions = append(actions, func() { fn(oc) })
		}
		delete(sf.mime, mimeType)
	}
	if data == nil {
		return status.Success, actions
	}
	if sf.mime == nil {
		sf.mime = make(map[string]*mimeEntry)
	}
	sf.mime[mimeType] = &mimeEntry{data: data, destroy: destroy, closure: c}
	return status.Success, actions
}

// SurfaceGetMimeData returns the attached data, nil when absent.
func (e *Engine) SurfaceGetMimeData(s native.Handle, mimeType string) []byte {
	e.mu.Lock()
	defer e.mu.Unlock()
	o := e.lookup(native.KindSurface, s, "get_mime_data")
	if o == nil {
		return nil
	}
	if m, ok := o.surface.mime[mimeType]; ok {
		return m.data
	}
	return nil
}

var supportedMime = map[native.SurfaceType][]string{
	native.SurfaceTypePDF: {
		"image/jpeg", "image/jp2", "application/x-cairo.uuid", "application/x-cairo.jbig2",
		"application/x-cairo.jbig2-global", "application/x-cairo.jbig2-global-id",
		"image/g3fax", "application/x-cairo.ccitt.params",
	},
	native.SurfaceTypeSVG: {"image/jpeg", "image/png", "application/x-cairo.uuid", "text/x-uri"},
	native.SurfaceTypePS: {
		"image/jpeg", "application/x-cairo.uuid", "image/g3fax", "application/x-cairo.ccitt.params",
		"application/postscript", "application/x-cairo.eps.params",
	},
}

// SurfaceSupportsMimeType reports whether the backend uses mimeType data.
func (e *Engine) SurfaceSupportsMimeType(s native.Handle, mimeType string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	o := e.lookup(native.KindSurface, s, "supports_mime_type")
	if o == nil {
		return false
	}
	for _, mt := range supportedMime[native.SurfaceType(o.tag)] {
		if mt == mimeType {
			return true
		}
	}
	return false
}

func sortedMime(m map[string]*mimeEntry) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// SurfaceGetContent returns the surface content.
func (e *Engine) SurfaceGetContent(s native.Handle) native.Content {
	e.mu.Lock()
	defer e.mu.Unlock()
	if o := e.lookup(native.KindSurface, s, "get_content"); o != nil {
		return o.surface.content
	}
	return native.ContentColorAlpha
}

// SurfaceFlush completes pending drawing. The engine draws eagerly.
func (e *Engine) SurfaceFlush(s native.Handle) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.lookup(native.KindSurface, s, "flush")
}

// SurfaceMarkDirty records that the caller changed the pixels directly.
func (e *Engine) SurfaceMarkDirty(s native.Handle) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if o, st := e.liveSurface(s, "mark_dirty"); st == status.SurfaceFinished {
		setError(o, st)
	}
}

// SurfaceFinish writes out vector documents and drops external resources.
func (e *Engine) SurfaceFinish(s native.Handle) {
	e.mu.Lock()
	o := e.lookup(native.KindSurface, s, "finish")
	var actions []action
	if o != nil && !o.static {
		actions = e.finishSurface(o)
	}
	e.mu.Unlock()
	run(actions)
}

// finishSurface marks o finished and returns the document output to perform.
func (e *Engine) finishSurface(o *object) []action {
	sf := o.surface
	if sf.done {
		return nil
	}
	sf.done = true
	if sf.doc == nil {
		return nil
	}
	doc := sf.doc
	body := doc.render()
	return []action{func() {
		st := doc.emit(body)
		if st != status.Success {
			e.mu.Lock()
			setError(o, st)
			e.mu.Unlock()
		}
	}}
}

// SurfaceShowPage emits the current page of a vector surface.
func (e *Engine) SurfaceShowPage(s native.Handle) {
	e.mu.Lock()
	defer e.mu.Unlock()
	o, st := e.liveSurface(s, "show_page")
	if st != status.Success {
		if o != nil && st == status.SurfaceFinished {
			setError(o, st)
		}
		return
	}
	if o.surface.doc != nil {
		o.surface.doc.showPage()
	}
}

// SurfaceCopyPage emits the current page of a vector surface and keeps its
// contents for the next one.
func (e *Engine) SurfaceCopyPage(s native.Handle) {
	e.mu.Lock()
	defer e.mu.Unlock()
	o, st := e.liveSurface(s, "copy_page")
	if st != status.Success {
		if o != nil && st == status.SurfaceFinished {
			setError(o, st)
		}
		return
	}
	if o.surface.doc != nil {
		o.surface.doc.copyPage()
	}
}

// SurfaceMarkDirtyRectangle records that the caller changed pixels inside
// the given device rectangle.
func (e *Engine) SurfaceMarkDirtyRectangle(s native.Handle, x, y, width, height int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if o, st := e.liveSurface(s, "mark_dirty_rectangle"); st == status.SurfaceFinished {
		setError(o, st)
	}
}

// SurfaceSetFallbackResolution sets the resolution used for rasterized
// fallbacks. Both values must be positive.
func (e *Engine) SurfaceSetFallbackResolution(s native.Handle, x, y float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	o, st := e.liveSurface(s, "set_fallback_resolution")
	if st != status.Success {
		if o != nil && st == status.SurfaceFinished {
			setError(o, st)
		}
		return
	}
	if x <= 0 || y <= 0 {
		setError(o, status.InvalidMatrix)
		return
	}
	if !o.static {
		o.surface.fbX, o.surface.fbY = x, y
	}
}

// SurfaceGetFallbackResolution returns the fallback resolution.
func (e *Engine) SurfaceGetFallbackResolution(s native.Handle) (float64, float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	o := e.lookup(native.KindSurface, s, "get_fallback_resolution")
	if o == nil || o.surface.fbX == 0 {
		return defaultFallback, defaultFallback
	}
	return o.surface.fbX, o.surface.fbY
}

// SurfaceGetFontOptions fills options with the surface's default font
// options. Vector backends render outlines unhinted.
func (e *Engine) SurfaceGetFontOptions(s, options native.Handle) {
	e.mu.Lock()
	defer e.mu.Unlock()
	dst := e.options(options, "surface_get_font_options", true)
	if dst == nil {
		return
	}
	*dst = fontOptions{}
	o := e.lookup(native.KindSurface, s, "get_font_options")
	if o == nil || o.status != status.Success {
		return
	}
	if o.surface.doc != nil {
		dst.antialias = native.AntialiasGray
		dst.hintStyle = native.HintStyleNone
		dst.hintMetrics = native.HintMetricsOff
	}
}

// SurfaceSetDeviceOffset sets the device offset.
func (e *Engine) SurfaceSetDeviceOffset(s native.Handle, x, y float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	o, st := e.liveSurface(s, "set_device_offset")
	if st == status.Success && !o.static {
		o.surface.devX, o.surface.devY = x, y
	}
}

// SurfaceGetDeviceOffset returns the device offset.
func (e *Engine) SurfaceGetDeviceOffset(s native.Handle) (float64, float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if o := e.lookup(native.KindSurface, s, "get_device_offset"); o != nil {
		return o.surface.devX, o.surface.devY
	}
	return 0, 0
}

// SurfaceCreateSimilar creates an image surface for image targets and a
// bounded recording surface for everything else.
func (e *Engine) SurfaceCreateSimilar(s native.Handle, content native.Content, width, height int) native.Handle {
	e.mu.Lock()
	defer e.mu.Unlock()

	o, st := e.liveSurface(s, "create_similar")
	if st != status.Success {
		return e.errorObject(native.KindSurface, st)
	}
	if width < 0 || height < 0 {
		return e.errorObject(native.KindSurface, status.InvalidSize)
	}
	if o.tag == int32(native.SurfaceTypeImage) {
		return e.newImage(formatForContent(content), width, height, nil, 0)
	}
	return e.newRecording(content, &native.Rectangle{Width: float64(width), Height: float64(height)})
}

func (e *Engine) newRecording(content native.Content, extents *native.Rectangle) native.Handle {
	switch content {
	case native.ContentColor, native.ContentAlpha, native.ContentColorAlpha:
	default:
		return e.errorObject(native.KindSurface, status.InvalidContent)
	}
	var ext *native.Rectangle
	if extents != nil {
		r := *extents
		ext = &r
	}
	return e.create(&object{
		kind:    native.KindSurface,
		tag:     int32(native.SurfaceTypeRecording),
		surface: &surface{content: content, extents: ext, format: native.FormatInvalid},
	})
}

// RecordingSurfaceCreate creates a recording surface, unbounded when extents is nil.
func (e *Engine) RecordingSurfaceCreate(content native.Content, extents *native.Rectangle) native.Handle {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.newRecording(content, extents)
}

// RecordingSurfaceInkExtents returns the bounds of everything drawn so far.
func (e *Engine) RecordingSurfaceInkExtents(s native.Handle) native.Rectangle {
	e.mu.Lock()
	defer e.mu.Unlock()
	o := e.lookup(native.KindSurface, s, "ink_extents")
	if o == nil {
		return native.Rectangle{}
	}
	if o.tag != int32(native.SurfaceTypeRecording) {
		setError(o, status.SurfaceTypeMismatch)
		return native.Rectangle{}
	}
	return o.surface.ink.rect()
}

func isVector(t native.SurfaceType) bool {
	return t == native.SurfaceTypePDF || t == native.SurfaceTypeSVG || t == native.SurfaceTypePS
}

// VectorSurfaceCreate creates a PDF, SVG or PS surface writing to a file.
func (e *Engine) VectorSurfaceCreate(t native.SurfaceType, filename []byte, width, height float64) native.Handle {
	if !isVector(t) {
		e.mu.Lock()
		defer e.mu.Unlock()
		return e.errorObject(native.KindSurface, status.SurfaceTypeMismatch)
	}
	f, err := os.Create(string(filename))

	e.mu.Lock()
	defer e.mu.Unlock()
	if err != nil {
		return e.errorObject(native.KindSurface, status.WriteError)
	}
	return e.newVector(t, &document{file: f}, width, height)
}

// VectorSurfaceCreateForStream creates a PDF, SVG or PS surface writing through write.
func (e *Engine) VectorSurfaceCreateForStream(t native.SurfaceType, write native.WriteFunc, c native.Closure, width, height float64) native.Handle {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !isVector(t) {
		return e.errorObject(native.KindSurface, status.SurfaceTypeMismatch)
	}
	if write == nil {
		return e.errorObject(native.KindSurface, status.NullPointer)
	}
	return e.newVector(t, &document{write: write, closure: c}, width, height)
}

func (e *Engine) newVector(t native.SurfaceType, doc *document, width, height float64) native.Handle {
	if width < 0 || height < 0 || math.IsNaN(width) || math.IsNaN(height) {
		if doc.file != nil {
			doc.file.Close()
		}
		return e.errorObject(native.KindSurface, status.InvalidSize)
	}
	doc.kind = t
	doc.width = width
	doc.height = height
	return e.create(&object{
		kind: native.KindSurface,
		tag:  int32(t),
		surface: &surface{
			content: native.ContentColorAlpha,
			format:  native.FormatInvalid,
			doc:     doc,
		},
	})
}
