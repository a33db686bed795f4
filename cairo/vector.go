package cairo

import (
	"io"

	"go.uber.org/zap"

	"github.com/wippyai/cairobind/handle"
	"github.com/wippyai/cairobind/native"
)

// PDFSurface writes a PDF document.
type PDFSurface struct {
	*BaseSurface
}

// SVGSurface writes an SVG document.
type SVGSurface struct {
	*BaseSurface
}

// PSSurface writes a PostScript document.
type PSSurface struct {
	*BaseSurface
}

func (b *Binding) pdfSurface(obj *handle.Object) Surface { return &PDFSurface{b.SurfaceBase(obj)} }
func (b *Binding) svgSurface(obj *handle.Object) Surface { return &SVGSurface{b.SurfaceBase(obj)} }
func (b *Binding) psSurface(obj *handle.Object) Surface  { return &PSSurface{b.SurfaceBase(obj)} }

// NewPDFSurface creates a PDF surface of width x height points writing to name.
func (b *Binding) NewPDFSurface(name FilePath, width, height float64) (*PDFSurface, error) {
	base, err := b.vectorFile(native.SurfaceTypePDF, name, width, height)
	if err != nil {
		return nil, err
	}
	return &PDFSurface{base}, nil
}

// NewPDFSurfaceForStream creates a PDF surface writing to w. The writer is
// kept alive with the surface and receives the document when it is finished.
func (b *Binding) NewPDFSurfaceForStream(w io.Writer, width, height float64) (*PDFSurface, error) {
	base, err := b.vectorStream(native.SurfaceTypePDF, w, width, height)
	if err != nil {
		return nil, err
	}
	return &PDFSurface{base}, nil
}

// NewSVGSurface creates an SVG surface writing to name.
func (b *Binding) NewSVGSurface(name FilePath, width, height float64) (*SVGSurface, error) {
	base, err := b.vectorFile(native.SurfaceTypeSVG, name, width, height)
	if err != nil {
		return nil, err
	}
	return &SVGSurface{base}, nil
}

// NewSVGSurfaceForStream creates an SVG surface writing to w.
func (b *Binding) NewSVGSurfaceForStream(w io.Writer, width, height float64) (*SVGSurface, error) {
	base, err := b.vectorStream(native.SurfaceTypeSVG, w, width, height)
	if err != nil {
		return nil, err
	}
	return &SVGSurface{base}, nil
}

// NewPSSurface creates a PostScript surface writing to name.
func (b *Binding) NewPSSurface(name FilePath, width, height float64) (*PSSurface, error) {
	base, err := b.vectorFile(native.SurfaceTypePS, name, width, height)
	if err != nil {
		return nil, err
	}
	return &PSSurface{base}, nil
}

// NewPSSurfaceForStream creates a PostScript surface writing to w.
func (b *Binding) NewPSSurfaceForStream(w io.Writer, width, height float64) (*PSSurface, error) {
	base, err := b.vectorStream(native.SurfaceTypePS, w, width, height)
	if err != nil {
		return nil, err
	}
	return &PSSurface{base}, nil
}

func (b *Binding) vectorFile(t native.SurfaceType, name FilePath, width, height float64) (*BaseSurface, error) {
	if err := b.usable(); err != nil {
		return nil, err
	}
	filename, err := b.encode(name)
	if err != nil {
		return nil, err
	}
	obj, err := b.own(native.KindSurface, b.lib.VectorSurfaceCreate(t, filename, width, height))
	if err != nil {
		return nil, err
	}
	return b.SurfaceBase(obj), nil
}

// vectorStream ties a persistent write adapter to a new surface. The
// adapter is dropped by the keep-alive entry once the surface dies, after
// the engine has written the finished document.
func (b *Binding) vectorStream(t native.SurfaceType, w io.Writer, width, height float64) (*BaseSurface, error) {
	if err := b.usable(); err != nil {
		return nil, err
	}
	a, err := b.streams.Open(w)
	if err != nil {
		return nil, err
	}
	obj, err := b.own(native.KindSurface,
		b.lib.VectorSurfaceCreateForStream(t, b.streams.WriteTrampoline, a.Closure(), width, height))
	if err != nil {
		a.Drop()
		return nil, err
	}
	s := b.SurfaceBase(obj)
	if err := s.keep(a); err != nil {
		b.log.Debug("stream surface keep-alive failed",
			zap.Stringer("type", t),
			zap.Error(err))
		s.Close()
		a.Drop()
		return nil, err
	}
	return s, nil
}
