// Package status maps native cairo status codes to structured errors.
//
// Every native call that can fail is followed by Check, which returns nil on
// SUCCESS and an *errors.Error otherwise. The error carries the raw code and the
// native message; callers decide on retries.
package status

import (
	stderrors "errors"
	"fmt"

	"github.com/wippyai/cairobind/errors"
)

// Status is a cairo_status_t value
type Status int32

const (
	Success                 Status = 0
	NoMemory                Status = 1
	InvalidRestore          Status = 2
	InvalidPopGroup         Status = 3
	NoCurrentPoint          Status = 4
	InvalidMatrix           Status = 5
	InvalidStatus           Status = 6
	NullPointer             Status = 7
	InvalidString           Status = 8
	InvalidPathData         Status = 9
	ReadError               Status = 10
	WriteError              Status = 11
	SurfaceFinished         Status = 12
	SurfaceTypeMismatch     Status = 13
	PatternTypeMismatch     Status = 14
	InvalidContent          Status = 15
	InvalidFormat           Status = 16
	InvalidVisual           Status = 17
	FileNotFound            Status = 18
	InvalidDash             Status = 19
	InvalidDSCComment       Status = 20
	InvalidIndex            Status = 21
	ClipNotRepresentable    Status = 22
	TempFileError           Status = 23
	InvalidStride           Status = 24
	FontTypeMismatch        Status = 25
	UserFontImmutable       Status = 26
	UserFontError           Status = 27
	NegativeCount           Status = 28
	InvalidClusters         Status = 29
	InvalidSlant            Status = 30
	InvalidWeight           Status = 31
	InvalidSize             Status = 32
	UserFontNotImplemented  Status = 33
	DeviceTypeMismatch      Status = 34
	DeviceError             Status = 35
	InvalidMeshConstruction Status = 36
	DeviceFinished          Status = 37
	JBIG2GlobalMissing      Status = 38
	PNGError                Status = 39
	FreetypeError           Status = 40
	Win32GDIError           Status = 41
	TagError                Status = 42
	DWriteError             Status = 43
	SVGFontError            Status = 44
)

type info struct {
	name    string
	message string
}

var table = [...]info{
	Success:                 {"SUCCESS", "no error has occurred"},
	NoMemory:                {"NO_MEMORY", "out of memory"},
	InvalidRestore:          {"INVALID_RESTORE", "cairo_restore() without matching cairo_save()"},
	InvalidPopGroup:         {"INVALID_POP_GROUP", "no saved group to pop, i.e. cairo_pop_group() without matching cairo_push_group()"},
	NoCurrentPoint:          {"NO_CURRENT_POINT", "no current point"},
	InvalidMatrix:           {"INVALID_MATRIX", "invalid matrix (not invertible)"},
	InvalidStatus:           {"INVALID_STATUS", "invalid value for an input cairo_status_t"},
	NullPointer:             {"NULL_POINTER", "NULL pointer"},
	InvalidString:           {"INVALID_STRING", "input string not valid UTF-8"},
	InvalidPathData:         {"INVALID_PATH_DATA", "input path data not valid"},
	ReadError:               {"READ_ERROR", "error while reading from input stream"},
	WriteError:              {"WRITE_ERROR", "error while writing to output stream"},
	SurfaceFinished:         {"SURFACE_FINISHED", "the target surface has been finished"},
	SurfaceTypeMismatch:     {"SURFACE_TYPE_MISMATCH", "the surface type is not appropriate for the operation"},
	PatternTypeMismatch:     {"PATTERN_TYPE_MISMATCH", "the pattern type is not appropriate for the operation"},
	InvalidContent:          {"INVALID_CONTENT", "invalid value for an input cairo_content_t"},
	InvalidFormat:           {"INVALID_FORMAT", "invalid value for an input cairo_format_t"},
	InvalidVisual:           {"INVALID_VISUAL", "invalid value for an input Visual*"},
	FileNotFound:            {"FILE_NOT_FOUND", "file not found"},
	InvalidDash:             {"INVALID_DASH", "invalid value for a dash setting"},
	InvalidDSCComment:       {"INVALID_DSC_COMMENT", "invalid value for a DSC comment"},
	InvalidIndex:            {"INVALID_INDEX", "invalid index passed to getter"},
	ClipNotRepresentable:    {"CLIP_NOT_REPRESENTABLE", "clip region not representable in desired format"},
	TempFileError:           {"TEMP_FILE_ERROR", "error creating or writing to a temporary file"},
	InvalidStride:           {"INVALID_STRIDE", "invalid value for stride"},
	FontTypeMismatch:        {"FONT_TYPE_MISMATCH", "the font type is not appropriate for the operation"},
	UserFontImmutable:       {"USER_FONT_IMMUTABLE", "the user-font is immutable"},
	UserFontError:           {"USER_FONT_ERROR", "error occurred in a user-font callback function"},
	NegativeCount:           {"NEGATIVE_COUNT", "negative number used where it is not allowed"},
	InvalidClusters:         {"INVALID_CLUSTERS", "input clusters do not represent the accompanying text and glyph arrays"},
	InvalidSlant:            {"INVALID_SLANT", "invalid value for an input cairo_font_slant_t"},
	InvalidWeight:           {"INVALID_WEIGHT", "invalid value for an input cairo_font_weight_t"},
	InvalidSize:             {"INVALID_SIZE", "invalid value (typically too big) for the size of the input (surface, pattern, etc.)"},
	UserFontNotImplemented:  {"USER_FONT_NOT_IMPLEMENTED", "user-font method not implemented"},
	DeviceTypeMismatch:      {"DEVICE_TYPE_MISMATCH", "the device type is not appropriate for the operation"},
	DeviceError:             {"DEVICE_ERROR", "an operation to the device caused an unspecified error"},
	InvalidMeshConstruction: {"INVALID_MESH_CONSTRUCTION", "invalid operation during mesh pattern construction"},
	DeviceFinished:          {"DEVICE_FINISHED", "the target device has been finished"},
	JBIG2GlobalMissing:      {"JBIG2_GLOBAL_MISSING", "CAIRO_MIME_TYPE_JBIG2_GLOBAL_ID used but no CAIRO_MIME_TYPE_JBIG2_GLOBAL data provided"},
	PNGError:                {"PNG_ERROR", "error occurred in libpng while reading from or writing to a PNG file"},
	FreetypeError:           {"FREETYPE_ERROR", "error occurred in libfreetype"},
	Win32GDIError:           {"WIN32_GDI_ERROR", "error occurred in the Windows Graphics Device Interface"},
	TagError:                {"TAG_ERROR", "invalid tag name, attributes, or nesting"},
	DWriteError:             {"DWRITE_ERROR", "Window Direct Write error"},
	SVGFontError:            {"SVG_FONT_ERROR", "error occurred while rendering an OpenType-SVG font"},
}

func (s Status) known() bool {
	return s >= 0 && int(s) < len(table)
}

// String returns the C enumerator name without the CAIRO_STATUS_ prefix.
func (s Status) String() string {
	if s.known() {
		return table[s].name
	}
	return fmt.Sprintf("STATUS(%d)", int32(s))
}

// Message returns the human-readable native description.
func (s Status) Message() string {
	if s.known() {
		return table[s].message
	}
	return "<unknown error status>"
}

// Kind returns the error category for s.
func (s Status) Kind() errors.Kind {
	switch s {
	case NoMemory:
		return errors.KindNoMemory
	case ReadError:
		return errors.KindReadError
	case WriteError:
		return errors.KindWriteError
	case TempFileError:
		return errors.KindTempFileError
	case FileNotFound:
		return errors.KindFileNotFound
	default:
		return errors.KindNativeError
	}
}

// Check returns nil for Success and a structured native error otherwise.
func Check(s Status) error {
	if s == Success {
		return nil
	}
	return errors.Native(s.Kind(), int(s), s.Message())
}

// CheckWith is Check with a host-side cause attached to the error.
// The cause is ignored on Success.
func CheckWith(s Status, cause error) error {
	if s == Success {
		return nil
	}
	err := errors.Native(s.Kind(), int(s), s.Message())
	err.Cause = cause
	return err
}

// Of recovers the native status code from an error chain.
func Of(err error) (Status, bool) {
	var e *errors.Error
	if !stderrors.As(err, &e) || e.Code == 0 {
		return Success, false
	}
	return Status(e.Code), true
}

// Is reports whether err carries the native status s.
func Is(err error, s Status) bool {
	got, ok := Of(err)
	return ok && got == s
}
