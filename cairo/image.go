package cairo

import (
	"fmt"
	"io"

	"github.com/wippyai/cairobind/errors"
	"github.com/wippyai/cairobind/handle"
	"github.com/wippyai/cairobind/native"
)

// ImageSurface is an in-memory pixel surface.
type ImageSurface struct {
	*BaseSurface
}

func (b *Binding) imageSurface(obj *handle.Object) Surface {
	return &ImageSurface{b.SurfaceBase(obj)}
}

// NewImageSurface creates an image surface with engine-owned pixels.
func (b *Binding) NewImageSurface(format native.Format, width, height int) (*ImageSurface, error) {
	if err := b.usable(); err != nil {
		return nil, err
	}
	obj, err := b.own(native.KindSurface, b.lib.ImageSurfaceCreate(format, width, height))
	if err != nil {
		return nil, err
	}
	return &ImageSurface{b.SurfaceBase(obj)}, nil
}

// NewImageSurfaceForData creates an image surface drawing into data. The
// buffer is kept alive by the surface and released once the engine drops
// its last reference. A zero stride is computed from format and width.
func (b *Binding) NewImageSurfaceForData(data []byte, format native.Format, width, height, stride int) (*ImageSurface, error) {
	if err := b.usable(); err != nil {
		return nil, err
	}
	if stride == 0 {
		stride = b.lib.FormatStrideForWidth(format, width)
	}
	if need := stride * height; stride > 0 && len(data) < need {
		return nil, errors.New(errors.PhaseWrap, errors.KindInvalidInput).
			Detail("buffer of %d bytes, surface needs %d", len(data), need).
			Want(fmt.Sprint(need)).
			Got(fmt.Sprint(len(data))).
			Build()
	}

	obj, err := b.own(native.KindSurface, b.lib.ImageSurfaceCreateForData(data, format, width, height, stride))
	if err != nil {
		return nil, err
	}
	s := &ImageSurface{b.SurfaceBase(obj)}
	if err := s.keep(data); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// ImageSurfaceFromPNG loads a PNG file.
func (b *Binding) ImageSurfaceFromPNG(name FilePath) (*ImageSurface, error) {
	if err := b.usable(); err != nil {
		return nil, err
	}
	filename, err := b.encode(name)
	if err != nil {
		return nil, err
	}
	obj, err := b.own(native.KindSurface, b.lib.ImageSurfaceCreateFromPNG(filename))
	if err != nil {
		return nil, err
	}
	return &ImageSurface{b.SurfaceBase(obj)}, nil
}

// ImageSurfaceFromPNGStream loads a PNG from r. A host read failure is the
// cause of the returned error.
func (b *Binding) ImageSurfaceFromPNGStream(r io.Reader) (*ImageSurface, error) {
	if err := b.usable(); err != nil {
		return nil, err
	}
	var h native.Handle
	err := b.streams.Read(r, func(read native.ReadFunc, c native.Closure) native.Status {
		h = b.lib.ImageSurfaceCreateFromPNGStream(read, c)
		return b.lib.Status(native.KindSurface, h)
	})
	if err != nil {
		if h != 0 {
			b.lib.Destroy(native.KindSurface, h)
		}
		return nil, err
	}
	obj, err := b.own(native.KindSurface, h)
	if err != nil {
		return nil, err
	}
	return &ImageSurface{b.SurfaceBase(obj)}, nil
}

// FormatStrideForWidth returns the row stride the engine uses for format.
func (b *Binding) FormatStrideForWidth(format native.Format, width int) int {
	return b.lib.FormatStrideForWidth(format, width)
}

// Format returns the pixel format.
func (s *ImageSurface) Format() (native.Format, error) {
	return get(s.obj, func(lib native.Library, h native.Handle) native.Format {
		return lib.ImageSurfaceGetFormat(h)
	})
}

// Width returns the width in pixels.
func (s *ImageSurface) Width() (int, error) {
	return get(s.obj, func(lib native.Library, h native.Handle) int {
		return lib.ImageSurfaceGetWidth(h)
	})
}

// Height returns the height in pixels.
func (s *ImageSurface) Height() (int, error) {
	return get(s.obj, func(lib native.Library, h native.Handle) int {
		return lib.ImageSurfaceGetHeight(h)
	})
}

// Stride returns the row stride in bytes.
func (s *ImageSurface) Stride() (int, error) {
	return get(s.obj, func(lib native.Library, h native.Handle) int {
		return lib.ImageSurfaceGetStride(h)
	})
}

// Data returns the pixel buffer. Call Flush before reading and MarkDirty
// after writing.
func (s *ImageSurface) Data() ([]byte, error) {
	return get(s.obj, func(lib native.Library, h native.Handle) []byte {
		return lib.ImageSurfaceGetData(h)
	})
}

// RecordingSurface records drawing operations for replay.
type RecordingSurface struct {
	*BaseSurface
}

func (b *Binding) recordingSurface(obj *handle.Object) Surface {
	return &RecordingSurface{b.SurfaceBase(obj)}
}

// NewRecordingSurface creates a recording surface. Nil extents make it
// unbounded.
func (b *Binding) NewRecordingSurface(content native.Content, extents *native.Rectangle) (*RecordingSurface, error) {
	if err := b.usable(); err != nil {
		return nil, err
	}
	obj, err := b.own(native.KindSurface, b.lib.RecordingSurfaceCreate(content, extents))
	if err != nil {
		return nil, err
	}
	return &RecordingSurface{b.SurfaceBase(obj)}, nil
}

// InkExtents returns the bounds of everything drawn so far.
func (s *RecordingSurface) InkExtents() (native.Rectangle, error) {
	return get(s.obj, func(lib native.Library, h native.Handle) native.Rectangle {
		return lib.RecordingSurfaceInkExtents(h)
	})
}
