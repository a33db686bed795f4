package native

import "github.com/wippyai/cairobind"

// Core is the lifetime surface shared by every counted resource family.
// Entry points that do not exist for a kind return zero values: font options
// and paths have no reference, type or user-data functions.
type Core interface {
	// Reference takes a new native reference and returns h.
	Reference(k Kind, h Handle) Handle

	// Destroy drops one native reference. The object is freed, and its
	// user-data destroy callbacks run, when the count reaches zero.
	Destroy(k Kind, h Handle)

	// ReferenceCount returns the current native count, 0 for error objects.
	ReferenceCount(k Kind, h Handle) uint32

	// Status returns the object's sticky error status.
	Status(k Kind, h Handle) Status

	// Type returns the *_get_type tag. Only meaningful when k.Typed().
	Type(k Kind, h Handle) int32

	// SetUserData attaches data under key; destroy runs with data when the
	// object dies or the key is overwritten.
	SetUserData(k Kind, h Handle, key, data Closure, destroy DestroyFunc) Status
}

// DeferredDestroyer is implemented by engines that must only be entered from
// the goroutine driving them. GC cleanups run on a runtime goroutine, so
// they hand their release to DestroyLater, which queues it for the engine's
// next call instead of entering the engine.
type DeferredDestroyer interface {
	DestroyLater(k Kind, h Handle)
}

// Surfaces covers the cairo_surface_t family.
type Surfaces interface {
	ImageSurfaceCreate(format Format, width, height int) Handle
	ImageSurfaceCreateForData(data []byte, format Format, width, height, stride int) Handle
	FormatStrideForWidth(format Format, width int) int
	ImageSurfaceGetData(s Handle) []byte
	ImageSurfaceGetFormat(s Handle) Format
	ImageSurfaceGetWidth(s Handle) int
	ImageSurfaceGetHeight(s Handle) int
	ImageSurfaceGetStride(s Handle) int
	ImageSurfaceCreateFromPNG(filename []byte) Handle
	ImageSurfaceCreateFromPNGStream(read ReadFunc, c Closure) Handle

	SurfaceWriteToPNG(s Handle, filename []byte) Status
	SurfaceWriteToPNGStream(s Handle, write WriteFunc, c Closure) Status
	SurfaceSetMimeData(s Handle, mimeType string, data []byte, destroy DestroyFunc, c Closure) Status
	SurfaceGetMimeData(s Handle, mimeType string) []byte
	SurfaceSupportsMimeType(s Handle, mimeType string) bool
	SurfaceGetContent(s Handle) Content
	SurfaceFlush(s Handle)
	SurfaceFinish(s Handle)
	SurfaceMarkDirty(s Handle)
	SurfaceShowPage(s Handle)
	SurfaceCopyPage(s Handle)
	SurfaceMarkDirtyRectangle(s Handle, x, y, width, height int)
	SurfaceSetFallbackResolution(s Handle, x, y float64)
	SurfaceGetFallbackResolution(s Handle) (x, y float64)

	// SurfaceGetFontOptions overwrites options with the surface's defaults.
	SurfaceGetFontOptions(s, options Handle)

	SurfaceSetDeviceOffset(s Handle, x, y float64)
	SurfaceGetDeviceOffset(s Handle) (x, y float64)
	SurfaceCreateSimilar(s Handle, content Content, width, height int) Handle

	RecordingSurfaceCreate(content Content, extents *Rectangle) Handle
	RecordingSurfaceInkExtents(s Handle) Rectangle

	// VectorSurfaceCreate creates a PDF, SVG or PS surface writing to filename.
	VectorSurfaceCreate(t SurfaceType, filename []byte, width, height float64) Handle

	// VectorSurfaceCreateForStream creates a PDF, SVG or PS surface writing
	// through write. The callback stays registered until the surface dies.
	VectorSurfaceCreateForStream(t SurfaceType, write WriteFunc, c Closure, width, height float64) Handle
}

// Contexts covers cairo_t.
type Contexts interface {
	Create(target Handle) Handle
	GetTarget(cr Handle) Handle
	GetSource(cr Handle) Handle
	SetSource(cr, pattern Handle)
	SetSourceRGBA(cr Handle, r, g, b, a float64)
	SetSourceSurface(cr, surface Handle, x, y float64)
	NewPath(cr Handle)
	MoveTo(cr Handle, x, y float64)
	LineTo(cr Handle, x, y float64)
	CurveTo(cr Handle, x1, y1, x2, y2, x3, y3 float64)
	ClosePath(cr Handle)
	Rectangle(cr Handle, x, y, width, height float64)

	// CopyPath returns an owned cairo_path_t, released with Destroy(KindPath, p).
	CopyPath(cr Handle) Handle

	// AppendPath reads the cairo_path_t at p without taking ownership.
	AppendPath(cr, p Handle)

	Paint(cr Handle)
	Fill(cr Handle)
	Stroke(cr Handle)
	ShowPage(cr Handle)
	SetFontFace(cr, face Handle)
	GetFontFace(cr Handle) Handle
}

// Patterns covers cairo_pattern_t.
type Patterns interface {
	PatternCreateRGBA(r, g, b, a float64) Handle
	PatternCreateForSurface(s Handle) Handle
	PatternCreateLinear(x0, y0, x1, y1 float64) Handle
	PatternCreateRadial(cx0, cy0, r0, cx1, cy1, r1 float64) Handle
	PatternGetRGBA(p Handle) (r, g, b, a float64, st Status)

	// PatternGetSurface returns a borrowed surface handle.
	PatternGetSurface(p Handle) (Handle, Status)

	PatternAddColorStopRGBA(p Handle, offset, r, g, b, a float64)
	PatternGetColorStopCount(p Handle) (int, Status)
	PatternGetLinearPoints(p Handle) (x0, y0, x1, y1 float64, st Status)
	PatternGetRadialCircles(p Handle) (cx0, cy0, r0, cx1, cy1, r1 float64, st Status)
	PatternSetExtend(p Handle, e Extend)
	PatternGetExtend(p Handle) Extend
	PatternSetFilter(p Handle, f Filter)
	PatternGetFilter(p Handle) Filter
}

// Fonts covers font faces, scaled fonts and font options.
type Fonts interface {
	ToyFontFaceCreate(family []byte, slant FontSlant, weight FontWeight) Handle
	ToyFontFaceGetFamily(f Handle) string
	ToyFontFaceGetSlant(f Handle) FontSlant
	ToyFontFaceGetWeight(f Handle) FontWeight

	ScaledFontCreate(face Handle, fontMatrix, ctm Matrix, options Handle) Handle

	// ScaledFontGetFontFace returns a borrowed font face handle.
	ScaledFontGetFontFace(sf Handle) Handle

	FontOptionsCreate() Handle
	FontOptionsCopy(o Handle) Handle
	FontOptionsMerge(o, other Handle)
	FontOptionsHash(o Handle) uint64
	FontOptionsEqual(o, other Handle) bool
	FontOptionsSetAntialias(o Handle, v Antialias)
	FontOptionsGetAntialias(o Handle) Antialias
	FontOptionsSetSubpixelOrder(o Handle, v SubpixelOrder)
	FontOptionsGetSubpixelOrder(o Handle) SubpixelOrder
	FontOptionsSetHintStyle(o Handle, v HintStyle)
	FontOptionsGetHintStyle(o Handle) HintStyle
	FontOptionsSetHintMetrics(o Handle, v HintMetrics)
	FontOptionsGetHintMetrics(o Handle) HintMetrics
}

// Library is a loaded graphics engine.
type Library interface {
	Core
	Surfaces
	Contexts
	Patterns
	Fonts
	cairobind.Allocator

	// Memory returns the engine's address space. Slices obtained from it are
	// valid until the next call that may grow the space.
	Memory() cairobind.Memory

	// Version returns the engine's version string.
	Version() string

	// Close unloads the engine.
	Close() error
}
