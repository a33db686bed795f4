package cairo

import (
	"sync/atomic"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"

	"github.com/wippyai/cairobind/dispatch"
	"github.com/wippyai/cairobind/errors"
	"github.com/wippyai/cairobind/handle"
	"github.com/wippyai/cairobind/keepalive"
	"github.com/wippyai/cairobind/native"
	"github.com/wippyai/cairobind/path"
	"github.com/wippyai/cairobind/status"
	"github.com/wippyai/cairobind/stream"
)

// Options configures a Binding.
type Options struct {
	// Logger overrides the package logger for this binding.
	Logger *zap.Logger

	// SurfaceTypes, PatternTypes and FontTypes resolve type tags during
	// rehydration. Nil uses the binding's own tables.
	SurfaceTypes dispatch.Resolver[Surface]
	PatternTypes dispatch.Resolver[Pattern]
	FontTypes    dispatch.Resolver[FontFace]

	// FilenameEncoding encodes text filenames. Nil passes the Go string
	// bytes through unchanged.
	FilenameEncoding encoding.Encoding

	// KeepAlive observes attach and release of kept values.
	KeepAlive keepalive.Observer
}

// DefaultOptions returns default binding configuration.
func DefaultOptions() Options {
	return Options{
		FilenameEncoding: unicode.UTF8,
	}
}

// Binding owns everything shared by the wrappers of one engine: the
// dispatch tables, the keep-alive set and the stream bridge.
// Thread-safe.
type Binding struct {
	lib          native.Library
	log          *zap.Logger
	surfaces     *dispatch.Table[Surface]
	patterns     *dispatch.Table[Pattern]
	faces        *dispatch.Table[FontFace]
	surfaceTypes dispatch.Resolver[Surface]
	patternTypes dispatch.Resolver[Pattern]
	fontTypes    dispatch.Resolver[FontFace]
	live         *keepalive.LiveSet
	streams      *stream.Bridge
	enc          encoding.Encoding
	closed       atomic.Bool
}

// New creates a binding over lib with the given options.
func New(lib native.Library, opts Options) *Binding {
	b := &Binding{
		lib:     lib,
		log:     opts.Logger,
		live:    keepalive.New(opts.KeepAlive),
		streams: stream.NewBridge(),
		enc:     opts.FilenameEncoding,
	}
	if b.log == nil {
		b.log = Logger()
	}

	b.surfaces = dispatch.NewTable[Surface](b.baseSurface)
	b.surfaces.Register(int32(native.SurfaceTypeImage), b.imageSurface)
	b.surfaces.Register(int32(native.SurfaceTypeRecording), b.recordingSurface)
	b.surfaces.Register(int32(native.SurfaceTypePDF), b.pdfSurface)
	b.surfaces.Register(int32(native.SurfaceTypeSVG), b.svgSurface)
	b.surfaces.Register(int32(native.SurfaceTypePS), b.psSurface)

	b.patterns = dispatch.NewTable[Pattern](b.basePattern)
	b.patterns.Register(int32(native.PatternTypeSolid), b.solidPattern)
	b.patterns.Register(int32(native.PatternTypeSurface), b.surfacePattern)
	b.patterns.Register(int32(native.PatternTypeLinear), b.linearGradient)
	b.patterns.Register(int32(native.PatternTypeRadial), b.radialGradient)

	b.faces = dispatch.NewTable[FontFace](b.baseFontFace)
	b.faces.Register(int32(native.FontTypeToy), b.toyFontFace)

	b.surfaceTypes = opts.SurfaceTypes
	if b.surfaceTypes == nil {
		b.surfaceTypes = b.surfaces
	}
	b.patternTypes = opts.PatternTypes
	if b.patternTypes == nil {
		b.patternTypes = b.patterns
	}
	b.fontTypes = opts.FontTypes
	if b.fontTypes == nil {
		b.fontTypes = b.faces
	}

	b.log.Debug("binding created", zap.String("version", lib.Version()))
	return b
}

// NewWithDefaults creates a binding with default options.
func NewWithDefaults(lib native.Library) *Binding {
	return New(lib, DefaultOptions())
}

// Library returns the engine.
func (b *Binding) Library() native.Library { return b.lib }

// Version returns the engine's version string.
func (b *Binding) Version() string { return b.lib.Version() }

// SurfaceTypes returns the binding's surface constructor table.
func (b *Binding) SurfaceTypes() *dispatch.Table[Surface] { return b.surfaces }

// PatternTypes returns the binding's pattern constructor table.
func (b *Binding) PatternTypes() *dispatch.Table[Pattern] { return b.patterns }

// FontTypes returns the binding's font face constructor table.
func (b *Binding) FontTypes() *dispatch.Table[FontFace] { return b.faces }

// LiveSet returns the values currently kept alive for native objects.
func (b *Binding) LiveSet() *keepalive.LiveSet { return b.live }

// Streams returns the binding's stream bridge.
func (b *Binding) Streams() *stream.Bridge { return b.streams }

// Close finishes surfaces still writing to host streams and closes the
// engine. Wrappers must not be used afterwards. Safe to call more than once.
func (b *Binding) Close() error {
	if !b.closed.CompareAndSwap(false, true) {
		return nil
	}

	var err error
	for _, e := range b.live.Entries() {
		a := adapterOf(e)
		if a == nil || e.Kind != native.KindSurface {
			continue
		}
		b.lib.SurfaceFinish(e.Owner)
		if ferr := status.CheckWith(b.lib.Status(native.KindSurface, e.Owner), a.Err()); ferr != nil {
			b.log.Warn("finishing stream surface failed",
				zap.Uint32("surface", uint32(e.Owner)),
				zap.Error(ferr))
			err = multierr.Append(err, ferr)
		}
	}
	err = multierr.Append(err, b.lib.Close())
	b.log.Debug("binding closed", zap.Error(err))
	return err
}

func (b *Binding) usable() error {
	if b.closed.Load() {
		return errors.Released(errors.PhaseWrap, "binding")
	}
	return nil
}

// own takes a freshly created handle under Go ownership.
func (b *Binding) own(kind native.Kind, h native.Handle) (*handle.Object, error) {
	return handle.Wrap(b.lib, kind, h, true)
}

func adapterOf(e keepalive.Entry) *stream.Adapter {
	for _, o := range e.Objects {
		if a, ok := o.(*stream.Adapter); ok {
			return a
		}
	}
	return nil
}

// streamErr returns the host error recorded by the stream adapter kept
// alive for surface h, if any.
func (b *Binding) streamErr(h native.Handle) error {
	for _, e := range b.live.Entries() {
		if e.Owner != h || e.Kind != native.KindSurface {
			continue
		}
		if a := adapterOf(e); a != nil {
			return a.Err()
		}
	}
	return nil
}

// WrapSurface wraps a surface handle as its concrete type. With
// takeOwnership false a new reference is taken.
func (b *Binding) WrapSurface(h native.Handle, takeOwnership bool) (Surface, error) {
	if err := b.usable(); err != nil {
		return nil, err
	}
	return dispatch.WrapWith(b.lib, native.KindSurface, h, takeOwnership, b.surfaceTypes, b.surfaces.Fallback())
}

// WrapPattern wraps a pattern handle as its concrete type.
func (b *Binding) WrapPattern(h native.Handle, takeOwnership bool) (Pattern, error) {
	if err := b.usable(); err != nil {
		return nil, err
	}
	return dispatch.WrapWith(b.lib, native.KindPattern, h, takeOwnership, b.patternTypes, b.patterns.Fallback())
}

// WrapFontFace wraps a font face handle as its concrete type.
func (b *Binding) WrapFontFace(h native.Handle, takeOwnership bool) (FontFace, error) {
	if err := b.usable(); err != nil {
		return nil, err
	}
	return dispatch.WrapWith(b.lib, native.KindFontFace, h, takeOwnership, b.fontTypes, b.faces.Fallback())
}

// WrapContext wraps a cairo_t handle.
func (b *Binding) WrapContext(h native.Handle, takeOwnership bool) (*Context, error) {
	if err := b.usable(); err != nil {
		return nil, err
	}
	obj, err := handle.Wrap(b.lib, native.KindContext, h, takeOwnership)
	if err != nil {
		return nil, err
	}
	return &Context{b: b, obj: obj}, nil
}

// WrapScaledFont wraps a scaled font handle.
func (b *Binding) WrapScaledFont(h native.Handle, takeOwnership bool) (*ScaledFont, error) {
	if err := b.usable(); err != nil {
		return nil, err
	}
	obj, err := handle.Wrap(b.lib, native.KindScaledFont, h, takeOwnership)
	if err != nil {
		return nil, err
	}
	return &ScaledFont{b: b, obj: obj}, nil
}

// WrapFontOptions wraps a font options handle. Font options are not
// reference counted, so a borrowed handle is copied.
func (b *Binding) WrapFontOptions(h native.Handle, takeOwnership bool) (*FontOptions, error) {
	if err := b.usable(); err != nil {
		return nil, err
	}
	if h == 0 {
		return nil, errors.InvalidHandle(errors.PhaseWrap, native.KindFontOptions.String())
	}
	if !takeOwnership {
		h = b.lib.FontOptionsCopy(h)
	}
	obj, err := b.own(native.KindFontOptions, h)
	if err != nil {
		return nil, err
	}
	return &FontOptions{b: b, obj: obj}, nil
}

// WrapPath decodes a cairo_path_t. With takeOwnership true the path is
// destroyed once read, whether or not decoding succeeded.
func (b *Binding) WrapPath(h native.Handle, takeOwnership bool) ([]path.Operation, error) {
	if err := b.usable(); err != nil {
		return nil, err
	}
	ops, err := path.Load(b.lib.Memory(), h)
	if takeOwnership && h != 0 {
		b.lib.Destroy(native.KindPath, h)
	}
	return ops, err
}
