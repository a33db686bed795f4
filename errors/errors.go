package errors

import (
	"fmt"
	"strings"
)

// Phase indicates which layer of the binding produced the error
type Phase string

const (
	PhaseWrap      Phase = "wrap"      // handle acquisition and release
	PhaseDispatch  Phase = "dispatch"  // type tag resolution
	PhaseKeepAlive Phase = "keepalive" // destructor-callback bookkeeping
	PhaseStream    Phase = "stream"    // read/write callback bridging
	PhasePath      Phase = "path"      // path record encoding/decoding
	PhaseNative    Phase = "native"    // status reported by the engine
	PhaseLoad      Phase = "load"      // engine loading
)

// Kind categorizes the error
type Kind string

const (
	KindInvalidHandle          Kind = "invalid_handle"
	KindNoMemory               Kind = "no_memory"
	KindReadError              Kind = "read_error"
	KindWriteError             Kind = "write_error"
	KindTempFileError          Kind = "temp_file_error"
	KindFileNotFound           Kind = "file_not_found"
	KindInvalidCoordinateCount Kind = "invalid_coordinate_count"
	KindInvalidPathRecord      Kind = "invalid_path_record"
	KindNativeError            Kind = "native_error"
	KindTypeMismatch           Kind = "type_mismatch"
	KindReleased               Kind = "released"
	KindUnsupported            Kind = "unsupported"
	KindInvalidInput           Kind = "invalid_input"
	KindMissingExport          Kind = "missing_export"
)

// Error is the structured error type used throughout the binding
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	Want   string
	Got    string
	Detail string
	Code   int
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Code != 0 {
		fmt.Fprintf(&b, " (code %d)", e.Code)
	}

	if e.Want != "" || e.Got != "" {
		b.WriteString(": ")
		if e.Want != "" && e.Got != "" {
			b.WriteString("want ")
			b.WriteString(e.Want)
			b.WriteString(", got ")
			b.WriteString(e.Got)
		} else if e.Want != "" {
			b.WriteString("want ")
			b.WriteString(e.Want)
		} else {
			b.WriteString("got ")
			b.WriteString(e.Got)
		}
	}

	if e.Detail != "" {
		if e.Want != "" || e.Got != "" {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error.
// A target with an empty Phase matches on Kind alone, and a target with a
// non-zero Code additionally requires the same native code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Phase != "" && e.Phase != t.Phase {
		return false
	}
	if t.Code != 0 && e.Code != t.Code {
		return false
	}
	return e.Kind == t.Kind
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Want sets the expected variant or value description
func (b *Builder) Want(s string) *Builder {
	b.err.Want = s
	return b
}

// Got sets the actual variant or value description
func (b *Builder) Got(s string) *Builder {
	b.err.Got = s
	return b
}

// Code sets the raw native status code
func (b *Builder) Code(code int) *Builder {
	b.err.Code = code
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// InvalidHandle creates an error for a NULL native handle
func InvalidHandle(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidHandle,
		Detail: fmt.Sprintf("NULL %s handle", what),
	}
}

// Native creates an error for a failed native status code
func Native(kind Kind, code int, message string) *Error {
	return &Error{
		Phase:  PhaseNative,
		Kind:   kind,
		Code:   code,
		Detail: message,
	}
}

// TypeMismatch creates an error for an accessor invoked on the wrong variant
func TypeMismatch(phase Phase, want, got string) *Error {
	return &Error{
		Phase: phase,
		Kind:  KindTypeMismatch,
		Want:  want,
		Got:   got,
	}
}

// InvalidCoordinateCount creates an error for an operation with the wrong number of coordinates
func InvalidCoordinateCount(phase Phase, index int, op string, want, got int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidCoordinateCount,
		Want:   fmt.Sprintf("%d coordinates", want),
		Got:    fmt.Sprintf("%d", got),
		Detail: fmt.Sprintf("operation %d (%s)", index, op),
		Value:  got,
	}
}

// InvalidPathRecord creates an error for a malformed path record
func InvalidPathRecord(phase Phase, offset int, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidPathRecord,
		Detail: fmt.Sprintf("record at slot %d: %s", offset, detail),
		Value:  offset,
	}
}

// Released creates an error for use of a wrapper after its handle was released
func Released(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindReleased,
		Detail: fmt.Sprintf("%s already released", what),
	}
}

// Unsupported creates an unsupported operation error
func Unsupported(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Detail: what,
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}

// Load creates an engine loading error
func Load(detail string, cause error) *Error {
	return &Error{
		Phase:  PhaseLoad,
		Kind:   KindInvalidInput,
		Detail: detail,
		Cause:  cause,
	}
}

// MissingExportsError is returned when an engine module lacks required entry points
type MissingExportsError struct {
	Module  string
	Exports []string
}

func (e *MissingExportsError) Error() string {
	if len(e.Exports) == 0 {
		return "[load] missing_export: no exports specified"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "module %q is missing %d export(s):\n", e.Module, len(e.Exports))
	for _, name := range e.Exports {
		b.WriteString("  - ")
		b.WriteString(name)
		b.WriteByte('\n')
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// Is reports whether target matches this error type
func (e *MissingExportsError) Is(target error) bool {
	if _, ok := target.(*MissingExportsError); ok {
		return true
	}
	t, ok := target.(*Error)
	return ok && t.Kind == KindMissingExport && (t.Phase == "" || t.Phase == PhaseLoad)
}
