package wasmlib

import (
	"github.com/wippyai/cairobind/native"
	"github.com/wippyai/cairobind/status"
)

func (l *Library) ImageSurfaceCreate(format native.Format, width, height int) native.Handle {
	return l.handle("cairo_image_surface_create", argI(int32(format)), argN(width), argN(height))
}

// ImageSurfaceCreateForData copies data into guest memory. The copy is
// freed when the surface is destroyed.
func (l *Library) ImageSurfaceCreateForData(data []byte, format native.Format, width, height, stride int) native.Handle {
	blk, err := l.bytes(data)
	if err != nil {
		return 0
	}
	s := l.handle("cairo_image_surface_create_for_data",
		argP(blk.ptr), argI(int32(format)), argN(width), argN(height), argN(stride))
	if s == 0 || l.Status(native.KindSurface, s) != status.Success {
		l.Free(blk.ptr, blk.size, 1)
		return s
	}
	if blk.ptr == 0 {
		return s
	}

	id := l.cbs.internal(&callback{owned: []block{blk}})
	if st := l.status("cairo_surface_set_user_data", argH(s), argC(id), argC(id), l.destroy); st != status.Success {
		l.cbs.remove(id)
		l.Destroy(native.KindSurface, s)
		l.Free(blk.ptr, blk.size, 1)
		return 0
	}
	return s
}

func (l *Library) FormatStrideForWidth(format native.Format, width int) int {
	return int(l.i32("cairo_format_stride_for_width", argI(int32(format)), argN(width)))
}

// ImageSurfaceGetData returns a view of the pixel buffer in guest memory.
func (l *Library) ImageSurfaceGetData(s native.Handle) []byte {
	ptr := l.u32("cairo_image_surface_get_data", argH(s))
	if ptr == 0 {
		return nil
	}
	size := l.ImageSurfaceGetStride(s) * l.ImageSurfaceGetHeight(s)
	data, err := l.mem.Read(ptr, uint32(size))
	if err != nil {
		return nil
	}
	return data
}

func (l *Library) ImageSurfaceGetFormat(s native.Handle) native.Format {
	return native.Format(l.i32("cairo_image_surface_get_format", argH(s)))
}

func (l *Library) ImageSurfaceGetWidth(s native.Handle) int {
	return int(l.i32("cairo_image_surface_get_width", argH(s)))
}

func (l *Library) ImageSurfaceGetHeight(s native.Handle) int {
	return int(l.i32("cairo_image_surface_get_height", argH(s)))
}

func (l *Library) ImageSurfaceGetStride(s native.Handle) int {
	return int(l.i32("cairo_image_surface_get_stride", argH(s)))
}

func (l *Library) ImageSurfaceCreateFromPNG(filename []byte) native.Handle {
	name, free, err := l.cstr(filename)
	if err != nil {
		return 0
	}
	defer free()
	return l.handle("cairo_image_surface_create_from_png", argP(name))
}

// ImageSurfaceCreateFromPNGStream registers read for the duration of the call.
func (l *Library) ImageSurfaceCreateFromPNGStream(read native.ReadFunc, c native.Closure) native.Handle {
	l.cbs.add(c, &callback{read: read})
	defer l.cbs.remove(c)
	return l.handle("cairo_image_surface_create_from_png_stream", l.read, argC(c))
}

func (l *Library) SurfaceWriteToPNG(s native.Handle, filename []byte) native.Status {
	name, free, err := l.cstr(filename)
	if err != nil {
		return status.NoMemory
	}
	defer free()
	return l.status("cairo_surface_write_to_png", argH(s), argP(name))
}

// SurfaceWriteToPNGStream registers write for the duration of the call.
func (l *Library) SurfaceWriteToPNGStream(s native.Handle, write native.WriteFunc, c native.Closure) native.Status {
	l.cbs.add(c, &callback{write: write})
	defer l.cbs.remove(c)
	return l.status("cairo_surface_write_to_png_stream", argH(s), l.write, argC(c))
}

// SurfaceSetMimeData copies data into guest memory. destroy runs, and the
// copy is freed, when cairo drops the mime entry.
func (l *Library) SurfaceSetMimeData(s native.Handle, mimeType string, data []byte, destroy native.DestroyFunc, c native.Closure) native.Status {
	mime, free, err := l.cstr([]byte(mimeType))
	if err != nil {
		return status.NoMemory
	}
	defer free()

	blk, err := l.bytes(data)
	if err != nil {
		return status.NoMemory
	}
	var tramp uint64
	if destroy != nil || blk.ptr != 0 {
		cb := &callback{destroy: destroy}
		if blk.ptr != 0 {
			cb.owned = []block{blk}
		}
		l.cbs.add(c, cb)
		tramp = l.destroy
	}
	st := l.status("cairo_surface_set_mime_data",
		argH(s), argP(mime), argP(blk.ptr), argP(blk.size), tramp, argC(c))
	if st != status.Success {
		l.cbs.remove(c)
		l.Free(blk.ptr, blk.size, 1)
	}
	return st
}

// SurfaceGetMimeData returns a copy of the attached data.
func (l *Library) SurfaceGetMimeData(s native.Handle, mimeType string) []byte {
	mime, free, err := l.cstr([]byte(mimeType))
	if err != nil {
		return nil
	}
	defer free()
	out, release := l.out(8)
	defer release()
	if out == 0 {
		return nil
	}
	l.call("cairo_surface_get_mime_data", argH(s), argP(mime), argP(out), argP(out+4))
	ptr := uint32(l.mem.i32(out))
	size := uint32(l.mem.i32(out + 4))
	if ptr == 0 {
		return nil
	}
	data, err := l.mem.Read(ptr, size)
	if err != nil {
		return nil
	}
	return append([]byte(nil), data...)
}

func (l *Library) SurfaceSupportsMimeType(s native.Handle, mimeType string) bool {
	mime, free, err := l.cstr([]byte(mimeType))
	if err != nil {
		return false
	}
	defer free()
	return l.i32("cairo_surface_supports_mime_type", argH(s), argP(mime)) != 0
}

func (l *Library) SurfaceGetContent(s native.Handle) native.Content {
	return native.Content(l.i32("cairo_surface_get_content", argH(s)))
}

func (l *Library) SurfaceFlush(s native.Handle) { l.call("cairo_surface_flush", argH(s)) }

func (l *Library) SurfaceFinish(s native.Handle) { l.call("cairo_surface_finish", argH(s)) }

func (l *Library) SurfaceMarkDirty(s native.Handle) { l.call("cairo_surface_mark_dirty", argH(s)) }

func (l *Library) SurfaceShowPage(s native.Handle) { l.call("cairo_surface_show_page", argH(s)) }

func (l *Library) SurfaceCopyPage(s native.Handle) { l.call("cairo_surface_copy_page", argH(s)) }

func (l *Library) SurfaceMarkDirtyRectangle(s native.Handle, x, y, width, height int) {
	l.call("cairo_surface_mark_dirty_rectangle", argH(s), argN(x), argN(y), argN(width), argN(height))
}

func (l *Library) SurfaceSetFallbackResolution(s native.Handle, x, y float64) {
	l.call("cairo_surface_set_fallback_resolution", argH(s), argF(x), argF(y))
}

func (l *Library) SurfaceGetFallbackResolution(s native.Handle) (x, y float64) {
	out, release := l.out(16)
	defer release()
	if out == 0 {
		return 0, 0
	}
	l.call("cairo_surface_get_fallback_resolution", argH(s), argP(out), argP(out+8))
	return l.mem.f64(out), l.mem.f64(out + 8)
}

func (l *Library) SurfaceGetFontOptions(s, options native.Handle) {
	l.call("cairo_surface_get_font_options", argH(s), argH(options))
}

func (l *Library) SurfaceSetDeviceOffset(s native.Handle, x, y float64) {
	l.call("cairo_surface_set_device_offset", argH(s), argF(x), argF(y))
}

func (l *Library) SurfaceGetDeviceOffset(s native.Handle) (x, y float64) {
	out, release := l.out(16)
	defer release()
	if out == 0 {
		return 0, 0
	}
	l.call("cairo_surface_get_device_offset", argH(s), argP(out), argP(out+8))
	return l.mem.f64(out), l.mem.f64(out + 8)
}

func (l *Library) SurfaceCreateSimilar(s native.Handle, content native.Content, width, height int) native.Handle {
	return l.handle("cairo_surface_create_similar", argH(s), argI(int32(content)), argN(width), argN(height))
}

// RecordingSurfaceCreate passes extents as a cairo_rectangle_t; nil means
// unbounded.
func (l *Library) RecordingSurfaceCreate(content native.Content, extents *native.Rectangle) native.Handle {
	var rect uint32
	if extents != nil {
		var release func()
		rect, release = l.out(32)
		defer release()
		if rect == 0 {
			return 0
		}
		l.putF64(rect, extents.X, extents.Y, extents.Width, extents.Height)
	}
	return l.handle("cairo_recording_surface_create", argI(int32(content)), argP(rect))
}

func (l *Library) RecordingSurfaceInkExtents(s native.Handle) native.Rectangle {
	out, release := l.out(32)
	defer release()
	if out == 0 {
		return native.Rectangle{}
	}
	l.call("cairo_recording_surface_ink_extents", argH(s), argP(out), argP(out+8), argP(out+16), argP(out+24))
	return native.Rectangle{
		X:      l.mem.f64(out),
		Y:      l.mem.f64(out + 8),
		Width:  l.mem.f64(out + 16),
		Height: l.mem.f64(out + 24),
	}
}

func (l *Library) VectorSurfaceCreate(t native.SurfaceType, filename []byte, width, height float64) native.Handle {
	names, ok := vectorCreate[t]
	if !ok {
		return 0
	}
	name, free, err := l.cstr(filename)
	if err != nil {
		return 0
	}
	defer free()
	return l.handle(names[0], argP(name), argF(width), argF(height))
}

// VectorSurfaceCreateForStream keeps write registered until the surface
// dies. The registration is tied to the surface with user data keyed by c.
func (l *Library) VectorSurfaceCreateForStream(t native.SurfaceType, write native.WriteFunc, c native.Closure, width, height float64) native.Handle {
	names, ok := vectorCreate[t]
	if !ok {
		return 0
	}
	l.cbs.add(c, &callback{write: write})
	s := l.handle(names[1], l.write, argC(c), argF(width), argF(height))
	if s == 0 || l.Status(native.KindSurface, s) != status.Success {
		l.cbs.remove(c)
		return s
	}
	if st := l.status("cairo_surface_set_user_data", argH(s), argC(c), argC(c), l.destroy); st != status.Success {
		l.cbs.remove(c)
		l.Destroy(native.KindSurface, s)
		return 0
	}
	return s
}

// putF64 writes consecutive float64 values at ptr.
func (l *Library) putF64(ptr uint32, vs ...float64) {
	for i, v := range vs {
		_ = l.mem.mem.WriteFloat64Le(ptr+uint32(8*i), v)
	}
}
