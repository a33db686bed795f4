package native

import (
	"fmt"

	"github.com/wippyai/cairobind/status"
)

// Status is a native cairo_status_t.
type Status = status.Status

// Handle is an address in the engine's address space.
// Handle 0 is NULL and always invalid.
type Handle uint32

// Closure is the opaque context pointer passed back to host callbacks.
// Closure 0 is reserved: the engine requires a non-NULL closure.
type Closure uint32

// Kind identifies the resource family a handle belongs to.
type Kind uint8

const (
	KindSurface Kind = iota + 1
	KindPattern
	KindContext
	KindFontFace
	KindScaledFont
	KindFontOptions
	KindPath
)

var kindNames = map[Kind]string{
	KindSurface:     "surface",
	KindPattern:     "pattern",
	KindContext:     "context",
	KindFontFace:    "font face",
	KindScaledFont:  "scaled font",
	KindFontOptions: "font options",
	KindPath:        "path",
}

func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Counted reports whether the kind has native reference/type/user-data entry points.
func (k Kind) Counted() bool {
	switch k {
	case KindSurface, KindPattern, KindContext, KindFontFace, KindScaledFont:
		return true
	}
	return false
}

// Typed reports whether the kind exposes a *_get_type tag.
func (k Kind) Typed() bool {
	switch k {
	case KindSurface, KindPattern, KindFontFace, KindScaledFont:
		return true
	}
	return false
}

// Callback signatures shared by every engine.
type (
	// DestroyFunc is cairo_destroy_func_t.
	DestroyFunc func(c Closure)

	// ReadFunc is cairo_read_func_t: fill buf completely or fail.
	ReadFunc func(c Closure, buf []byte) Status

	// WriteFunc is cairo_write_func_t: consume data completely or fail.
	WriteFunc func(c Closure, data []byte) Status
)

// Matrix is cairo_matrix_t.
type Matrix struct {
	XX, YX float64
	XY, YY float64
	X0, Y0 float64
}

// Identity returns the identity matrix.
func Identity() Matrix {
	return Matrix{XX: 1, YY: 1}
}

// Scale returns a scaling matrix.
func Scale(sx, sy float64) Matrix {
	return Matrix{XX: sx, YY: sy}
}

// Rectangle is cairo_rectangle_t.
type Rectangle struct {
	X, Y, Width, Height float64
}

// Format is cairo_format_t.
type Format int32

const (
	FormatInvalid  Format = -1
	FormatARGB32   Format = 0
	FormatRGB24    Format = 1
	FormatA8       Format = 2
	FormatA1       Format = 3
	FormatRGB16565 Format = 4
	FormatRGB30    Format = 5
	FormatRGB96F   Format = 6
	FormatRGBA128F Format = 7
)

var formatNames = map[Format]string{
	FormatInvalid:  "INVALID",
	FormatARGB32:   "ARGB32",
	FormatRGB24:    "RGB24",
	FormatA8:       "A8",
	FormatA1:       "A1",
	FormatRGB16565: "RGB16_565",
	FormatRGB30:    "RGB30",
	FormatRGB96F:   "RGB96F",
	FormatRGBA128F: "RGBA128F",
}

func (f Format) String() string {
	if n, ok := formatNames[f]; ok {
		return n
	}
	return fmt.Sprintf("FORMAT(%d)", int32(f))
}

// BitsPerPixel returns the pixel size of f, or 0 for unknown formats.
func (f Format) BitsPerPixel() int {
	switch f {
	case FormatARGB32, FormatRGB24, FormatRGB30:
		return 32
	case FormatRGB16565:
		return 16
	case FormatA8:
		return 8
	case FormatA1:
		return 1
	case FormatRGB96F:
		return 96
	case FormatRGBA128F:
		return 128
	}
	return 0
}

// Content is cairo_content_t.
type Content int32

const (
	ContentColor      Content = 0x1000
	ContentAlpha      Content = 0x2000
	ContentColorAlpha Content = 0x3000
)

func (c Content) String() string {
	switch c {
	case ContentColor:
		return "COLOR"
	case ContentAlpha:
		return "ALPHA"
	case ContentColorAlpha:
		return "COLOR_ALPHA"
	}
	return fmt.Sprintf("CONTENT(%#x)", int32(c))
}

// SurfaceType is cairo_surface_type_t.
type SurfaceType int32

const (
	SurfaceTypeImage SurfaceType = iota
	SurfaceTypePDF
	SurfaceTypePS
	SurfaceTypeXlib
	SurfaceTypeXCB
	SurfaceTypeGlitz
	SurfaceTypeQuartz
	SurfaceTypeWin32
	SurfaceTypeBeOS
	SurfaceTypeDirectFB
	SurfaceTypeSVG
	SurfaceTypeOS2
	SurfaceTypeWin32Printing
	SurfaceTypeQuartzImage
	SurfaceTypeScript
	SurfaceTypeQt
	SurfaceTypeRecording
	SurfaceTypeVG
	SurfaceTypeGL
	SurfaceTypeDRM
	SurfaceTypeTee
	SurfaceTypeXML
	SurfaceTypeSkia
	SurfaceTypeSubsurface
	SurfaceTypeCogl
)

var surfaceTypeNames = [...]string{
	"IMAGE", "PDF", "PS", "XLIB", "XCB", "GLITZ", "QUARTZ", "WIN32", "BEOS",
	"DIRECTFB", "SVG", "OS2", "WIN32_PRINTING", "QUARTZ_IMAGE", "SCRIPT", "QT",
	"RECORDING", "VG", "GL", "DRM", "TEE", "XML", "SKIA", "SUBSURFACE", "COGL",
}

func (t SurfaceType) String() string {
	if t >= 0 && int(t) < len(surfaceTypeNames) {
		return surfaceTypeNames[t]
	}
	return fmt.Sprintf("SURFACE_TYPE(%d)", int32(t))
}

// PatternType is cairo_pattern_type_t.
type PatternType int32

const (
	PatternTypeSolid PatternType = iota
	PatternTypeSurface
	PatternTypeLinear
	PatternTypeRadial
	PatternTypeMesh
	PatternTypeRasterSource
)

var patternTypeNames = [...]string{"SOLID", "SURFACE", "LINEAR", "RADIAL", "MESH", "RASTER_SOURCE"}

func (t PatternType) String() string {
	if t >= 0 && int(t) < len(patternTypeNames) {
		return patternTypeNames[t]
	}
	return fmt.Sprintf("PATTERN_TYPE(%d)", int32(t))
}

// FontType is cairo_font_type_t.
type FontType int32

const (
	FontTypeToy FontType = iota
	FontTypeFT
	FontTypeWin32
	FontTypeQuartz
	FontTypeUser
	FontTypeDWrite
)

var fontTypeNames = [...]string{"TOY", "FT", "WIN32", "QUARTZ", "USER", "DWRITE"}

func (t FontType) String() string {
	if t >= 0 && int(t) < len(fontTypeNames) {
		return fontTypeNames[t]
	}
	return fmt.Sprintf("FONT_TYPE(%d)", int32(t))
}

// PathDataType is cairo_path_data_type_t.
type PathDataType int32

const (
	PathMoveTo PathDataType = iota
	PathLineTo
	PathCurveTo
	PathClosePath
)

// Points returns the number of points carried by a record of type t,
// or -1 if t is not a known record type.
func (t PathDataType) Points() int {
	switch t {
	case PathMoveTo, PathLineTo:
		return 1
	case PathCurveTo:
		return 3
	case PathClosePath:
		return 0
	}
	return -1
}

func (t PathDataType) String() string {
	switch t {
	case PathMoveTo:
		return "MOVE_TO"
	case PathLineTo:
		return "LINE_TO"
	case PathCurveTo:
		return "CURVE_TO"
	case PathClosePath:
		return "CLOSE_PATH"
	}
	return fmt.Sprintf("PATH_DATA_TYPE(%d)", int32(t))
}

// Extend is cairo_extend_t.
type Extend int32

const (
	ExtendNone Extend = iota
	ExtendRepeat
	ExtendReflect
	ExtendPad
)

// Filter is cairo_filter_t.
type Filter int32

const (
	FilterFast Filter = iota
	FilterGood
	FilterBest
	FilterNearest
	FilterBilinear
	FilterGaussian
)

// FontSlant is cairo_font_slant_t.
type FontSlant int32

const (
	SlantNormal FontSlant = iota
	SlantItalic
	SlantOblique
)

// FontWeight is cairo_font_weight_t.
type FontWeight int32

const (
	WeightNormal FontWeight = iota
	WeightBold
)

// Antialias is cairo_antialias_t.
type Antialias int32

const (
	AntialiasDefault Antialias = iota
	AntialiasNone
	AntialiasGray
	AntialiasSubpixel
	AntialiasFast
	AntialiasGood
	AntialiasBest
)

// SubpixelOrder is cairo_subpixel_order_t.
type SubpixelOrder int32

const (
	SubpixelOrderDefault SubpixelOrder = iota
	SubpixelOrderRGB
	SubpixelOrderBGR
	SubpixelOrderVRGB
	SubpixelOrderVBGR
)

// HintStyle is cairo_hint_style_t.
type HintStyle int32

const (
	HintStyleDefault HintStyle = iota
	HintStyleNone
	HintStyleSlight
	HintStyleMedium
	HintStyleFull
)

// HintMetrics is cairo_hint_metrics_t.
type HintMetrics int32

const (
	HintMetricsDefault HintMetrics = iota
	HintMetricsOff
	HintMetricsOn
)
