// Package wasmlib runs a wasm32 build of cairo under wazero and exposes it
// as a native.Library.
//
// # Guest ABI
//
// The guest is a reactor module exporting its linear memory as "memory",
// the cairo entry points used by the binding, malloc and free, and three
// getters returning indirect function table indices:
//
//	bind_destroy_func  void (*)(void *closure)
//	bind_read_func     cairo_status_t (*)(void *closure, unsigned char *buf, unsigned int len)
//	bind_write_func    cairo_status_t (*)(void *closure, const unsigned char *data, unsigned int len)
//
// Each trampoline forwards to the matching import of the "cairobind" host
// module: destroy(i32), read(i32, i32, i32) -> i32, write(i32, i32, i32) -> i32.
// The closure argument is the native.Closure the binding registered, so one
// host-side map serves every callback. Key spaces handed out by the binding
// are disjoint; ids from 1<<31 up are reserved for buffers this package
// copies into guest memory.
//
// Go byte slices cannot be addressed by the guest. Pixel buffers passed to
// ImageSurfaceCreateForData and mime data are copied into guest memory and
// freed when the owning surface releases them; ImageSurfaceGetData returns a
// view of guest memory. Entry points return a NULL handle when their
// arguments cannot be marshaled into guest memory.
package wasmlib
