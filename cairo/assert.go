package cairo

import (
	"github.com/wippyai/cairobind/errors"
	"github.com/wippyai/cairobind/native"
)

func surfaceMismatch(want native.SurfaceType, s Surface) error {
	got := "nil"
	if s != nil {
		got = s.Type().String()
	}
	return errors.TypeMismatch(errors.PhaseDispatch, want.String(), got)
}

func patternMismatch(want string, p Pattern) error {
	got := "nil"
	if p != nil {
		got = p.Type().String()
	}
	return errors.TypeMismatch(errors.PhaseDispatch, want, got)
}

// AsImageSurface returns s as an image surface.
func AsImageSurface(s Surface) (*ImageSurface, error) {
	if v, ok := s.(*ImageSurface); ok {
		return v, nil
	}
	return nil, surfaceMismatch(native.SurfaceTypeImage, s)
}

// AsRecordingSurface returns s as a recording surface.
func AsRecordingSurface(s Surface) (*RecordingSurface, error) {
	if v, ok := s.(*RecordingSurface); ok {
		return v, nil
	}
	return nil, surfaceMismatch(native.SurfaceTypeRecording, s)
}

// AsPDFSurface returns s as a PDF surface.
func AsPDFSurface(s Surface) (*PDFSurface, error) {
	if v, ok := s.(*PDFSurface); ok {
		return v, nil
	}
	return nil, surfaceMismatch(native.SurfaceTypePDF, s)
}

// AsSVGSurface returns s as an SVG surface.
func AsSVGSurface(s Surface) (*SVGSurface, error) {
	if v, ok := s.(*SVGSurface); ok {
		return v, nil
	}
	return nil, surfaceMismatch(native.SurfaceTypeSVG, s)
}

// AsPSSurface returns s as a PostScript surface.
func AsPSSurface(s Surface) (*PSSurface, error) {
	if v, ok := s.(*PSSurface); ok {
		return v, nil
	}
	return nil, surfaceMismatch(native.SurfaceTypePS, s)
}

// AsSolidPattern returns p as a solid pattern.
func AsSolidPattern(p Pattern) (*SolidPattern, error) {
	if v, ok := p.(*SolidPattern); ok {
		return v, nil
	}
	return nil, patternMismatch(native.PatternTypeSolid.String(), p)
}

// AsSurfacePattern returns p as a surface pattern.
func AsSurfacePattern(p Pattern) (*SurfacePattern, error) {
	if v, ok := p.(*SurfacePattern); ok {
		return v, nil
	}
	return nil, patternMismatch(native.PatternTypeSurface.String(), p)
}

// AsGradient returns the color stop interface of a linear or radial gradient.
func AsGradient(p Pattern) (*Gradient, error) {
	switch v := p.(type) {
	case *LinearGradient:
		return v.Gradient, nil
	case *RadialGradient:
		return v.Gradient, nil
	}
	return nil, patternMismatch("LINEAR or RADIAL", p)
}

// AsLinearGradient returns p as a linear gradient.
func AsLinearGradient(p Pattern) (*LinearGradient, error) {
	if v, ok := p.(*LinearGradient); ok {
		return v, nil
	}
	return nil, patternMismatch(native.PatternTypeLinear.String(), p)
}

// AsRadialGradient returns p as a radial gradient.
func AsRadialGradient(p Pattern) (*RadialGradient, error) {
	if v, ok := p.(*RadialGradient); ok {
		return v, nil
	}
	return nil, patternMismatch(native.PatternTypeRadial.String(), p)
}

// AsToyFontFace returns f as a toy font face.
func AsToyFontFace(f FontFace) (*ToyFontFace, error) {
	if v, ok := f.(*ToyFontFace); ok {
		return v, nil
	}
	got := "nil"
	if f != nil {
		got = f.Type().String()
	}
	return nil, errors.TypeMismatch(errors.PhaseDispatch, native.FontTypeToy.String(), got)
}
