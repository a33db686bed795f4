package cairo

import (
	"io"

	"github.com/wippyai/cairobind/handle"
	"github.com/wippyai/cairobind/native"
	"github.com/wippyai/cairobind/status"
)

// Mime types understood by cairo backends.
const (
	MimeTypeJPEG           = "image/jpeg"
	MimeTypePNG            = "image/png"
	MimeTypeJP2            = "image/jp2"
	MimeTypeURI            = "text/x-uri"
	MimeTypeUniqueID       = "application/x-cairo.uuid"
	MimeTypeJBIG2          = "application/x-cairo.jbig2"
	MimeTypeJBIG2Global    = "application/x-cairo.jbig2-global"
	MimeTypeJBIG2GlobalID  = "application/x-cairo.jbig2-global-id"
	MimeTypeCCITTFax       = "image/g3fax"
	MimeTypeCCITTFaxParams = "application/x-cairo.ccitt.params"
	MimeTypeEPS            = "application/postscript"
	MimeTypeEPSParams      = "application/x-cairo.eps.params"
)

// pinned runs fn with the object's handle pinned.
func pinned(obj *handle.Object, fn func(lib native.Library, h native.Handle) error) error {
	h, err := obj.Pin()
	if err != nil {
		return err
	}
	defer obj.Unpin()
	return fn(obj.Library(), h)
}

// get runs an accessor and checks the object's status afterwards.
func get[T any](obj *handle.Object, fn func(lib native.Library, h native.Handle) T) (T, error) {
	var v T
	err := obj.Do(func(lib native.Library, h native.Handle) {
		v = fn(lib, h)
	})
	return v, err
}

// Surface is any cairo_surface_t wrapper. Every implementation embeds
// *BaseSurface.
type Surface interface {
	Object() *handle.Object
	Type() native.SurfaceType
	Status() error
	Close() error
	surface() *BaseSurface
}

// BaseSurface implements the operations shared by every surface type. It is
// also the wrapper for surface types the binding has no constructor for.
type BaseSurface struct {
	b   *Binding
	obj *handle.Object
}

func (b *Binding) baseSurface(obj *handle.Object) Surface {
	return b.SurfaceBase(obj)
}

// SurfaceBase builds the base wrapper for obj. Custom surface constructors
// registered in SurfaceTypes embed the result.
func (b *Binding) SurfaceBase(obj *handle.Object) *BaseSurface {
	return &BaseSurface{b: b, obj: obj}
}

func (s *BaseSurface) surface() *BaseSurface { return s }

// Object returns the underlying handle object.
func (s *BaseSurface) Object() *handle.Object { return s.obj }

// Handle returns the raw native handle.
func (s *BaseSurface) Handle() native.Handle { return s.obj.Handle() }

// Type returns the native surface type, read on every call.
func (s *BaseSurface) Type() native.SurfaceType {
	h, err := s.obj.Pin()
	if err != nil {
		return -1
	}
	defer s.obj.Unpin()
	return native.SurfaceType(s.obj.Library().Type(native.KindSurface, h))
}

// Status returns the surface's native status.
func (s *BaseSurface) Status() error { return s.obj.Status() }

// ReferenceCount returns the native reference count.
func (s *BaseSurface) ReferenceCount() uint32 { return s.obj.ReferenceCount() }

// Close drops the wrapper's reference.
func (s *BaseSurface) Close() error { return s.obj.Close() }

// Content returns the surface content.
func (s *BaseSurface) Content() (native.Content, error) {
	return get(s.obj, func(lib native.Library, h native.Handle) native.Content {
		return lib.SurfaceGetContent(h)
	})
}

// Flush completes pending drawing.
func (s *BaseSurface) Flush() error {
	return s.obj.Do(func(lib native.Library, h native.Handle) { lib.SurfaceFlush(h) })
}

// MarkDirty tells the engine the pixel data was changed from outside.
func (s *BaseSurface) MarkDirty() error {
	return s.obj.Do(func(lib native.Library, h native.Handle) { lib.SurfaceMarkDirty(h) })
}

// Finish flushes the surface and detaches it from its backing resources.
// Stream surfaces write their document here; a host write failure is the
// cause of the returned error.
func (s *BaseSurface) Finish() error {
	return pinned(s.obj, func(lib native.Library, h native.Handle) error {
		lib.SurfaceFinish(h)
		return status.CheckWith(lib.Status(native.KindSurface, h), s.b.streamErr(h))
	})
}

// ShowPage emits the current page.
func (s *BaseSurface) ShowPage() error {
	return s.obj.Do(func(lib native.Library, h native.Handle) { lib.SurfaceShowPage(h) })
}

// CopyPage emits the current page and keeps its contents for the next.
func (s *BaseSurface) CopyPage() error {
	return s.obj.Do(func(lib native.Library, h native.Handle) { lib.SurfaceCopyPage(h) })
}

// MarkDirtyRectangle tells the engine the pixels inside the given device
// rectangle were changed from outside.
func (s *BaseSurface) MarkDirtyRectangle(x, y, width, height int) error {
	return s.obj.Do(func(lib native.Library, h native.Handle) {
		lib.SurfaceMarkDirtyRectangle(h, x, y, width, height)
	})
}

// SetFallbackResolution sets the resolution, in pixels per inch, used when
// parts of a vector page have to be rasterized.
func (s *BaseSurface) SetFallbackResolution(x, y float64) error {
	return s.obj.Do(func(lib native.Library, h native.Handle) { lib.SurfaceSetFallbackResolution(h, x, y) })
}

// FallbackResolution returns the fallback resolution.
func (s *BaseSurface) FallbackResolution() (x, y float64, err error) {
	err = s.obj.Do(func(lib native.Library, h native.Handle) { x, y = lib.SurfaceGetFallbackResolution(h) })
	return x, y, err
}

// FontOptions returns a copy of the surface's default font options, owned
// by the caller.
func (s *BaseSurface) FontOptions() (*FontOptions, error) {
	o, err := s.b.NewFontOptions()
	if err != nil {
		return nil, err
	}
	err = pinned(s.obj, func(lib native.Library, h native.Handle) error {
		return pinned(o.obj, func(_ native.Library, oh native.Handle) error {
			lib.SurfaceGetFontOptions(h, oh)
			return status.Check(lib.Status(native.KindFontOptions, oh))
		})
	})
	if err != nil {
		o.Close()
		return nil, err
	}
	return o, nil
}

// SetDeviceOffset sets the offset added to device coordinates.
func (s *BaseSurface) SetDeviceOffset(x, y float64) error {
	return s.obj.Do(func(lib native.Library, h native.Handle) { lib.SurfaceSetDeviceOffset(h, x, y) })
}

// DeviceOffset returns the device offset.
func (s *BaseSurface) DeviceOffset() (x, y float64, err error) {
	err = s.obj.Do(func(lib native.Library, h native.Handle) { x, y = lib.SurfaceGetDeviceOffset(h) })
	return x, y, err
}

// SetMimeData attaches data for mimeType. The slice is kept alive until the
// engine releases it, and must not be modified afterwards. Nil data removes
// the entry.
func (s *BaseSurface) SetMimeData(mimeType string, data []byte) error {
	return pinned(s.obj, func(lib native.Library, h native.Handle) error {
		_, err := s.b.live.AttachMime(lib, h, mimeType, data)
		return err
	})
}

// MimeData returns the data attached for mimeType, or nil.
func (s *BaseSurface) MimeData(mimeType string) ([]byte, error) {
	return get(s.obj, func(lib native.Library, h native.Handle) []byte {
		return lib.SurfaceGetMimeData(h, mimeType)
	})
}

// SupportsMimeType reports whether the backend uses data for mimeType.
func (s *BaseSurface) SupportsMimeType(mimeType string) bool {
	ok, err := get(s.obj, func(lib native.Library, h native.Handle) bool {
		return lib.SurfaceSupportsMimeType(h, mimeType)
	})
	return ok && err == nil
}

// CreateSimilar creates a surface compatible with this one.
func (s *BaseSurface) CreateSimilar(content native.Content, width, height int) (Surface, error) {
	var similar Surface
	err := pinned(s.obj, func(lib native.Library, h native.Handle) error {
		var err error
		similar, err = s.b.WrapSurface(lib.SurfaceCreateSimilar(h, content, width, height), true)
		return err
	})
	return similar, err
}

// WriteToPNG writes the surface to a PNG file.
func (s *BaseSurface) WriteToPNG(name FilePath) error {
	filename, err := s.b.encode(name)
	if err != nil {
		return err
	}
	return pinned(s.obj, func(lib native.Library, h native.Handle) error {
		return status.Check(lib.SurfaceWriteToPNG(h, filename))
	})
}

// WriteToPNGStream writes the surface as PNG to w.
func (s *BaseSurface) WriteToPNGStream(w io.Writer) error {
	return pinned(s.obj, func(lib native.Library, h native.Handle) error {
		return s.b.streams.Write(w, func(write native.WriteFunc, c native.Closure) native.Status {
			return lib.SurfaceWriteToPNGStream(h, write, c)
		})
	})
}

// keep attaches values to the surface so they live as long as it does.
func (s *BaseSurface) keep(values ...any) error {
	return pinned(s.obj, func(lib native.Library, h native.Handle) error {
		_, err := s.b.live.Attach(lib, native.KindSurface, h, values...)
		return err
	})
}
