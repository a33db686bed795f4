// Package cairobind binds a reference-counted, handle-based 2D graphics engine
// with the cairo ABI to Go.
//
// The engine is consumed through the narrow native.Library interface. Two
// engines are provided: a pure-Go simulation used by tests and the CLI, and a
// wasm32 build of cairo executed with wazero.
//
// # Architecture Overview
//
//	cairobind/         Root package with the native Memory and Allocator interfaces
//	├── cairo/         Binding, Surface/Pattern/FontFace families, Context, fonts
//	├── handle/        Native handle ownership, status validation, exactly-once release
//	├── dispatch/      Type tag to wrapper constructor tables
//	├── keepalive/     Live-set of Go objects referenced by native objects
//	├── stream/        Read/write callback adapters over io.Reader and io.Writer
//	├── path/          cairo_path_data_t encoding and decoding
//	├── status/        cairo_status_t mapping to structured errors
//	├── errors/        Structured error types
//	└── native/        Engine interface, enums, sim and wasmlib engines
//
// # Quick Start
//
//	b := cairo.NewWithDefaults(sim.New())
//	defer b.Close()
//
//	img, err := b.NewImageSurface(native.FormatARGB32, 64, 64)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer img.Close()
//
//	cr, err := b.NewContext(img)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer cr.Close()
//
//	cr.SetSourceRGBA(1, 0, 0, 1)
//	cr.Paint()
//
//	if err := img.WriteToPNGStream(os.Stdout); err != nil {
//	    log.Fatal(err)
//	}
//
// # Handle Lifetime
//
// Each wrapper holds exactly one native reference. Wrapping a borrowed handle
// takes a new reference before the handle is used. Close releases the reference
// deterministically; a GC cleanup releases it if Close is never called. Both
// paths release exactly once.
//
// # Subtype Recovery
//
// When a handle crosses back into Go (a context's target or source, a surface
// pattern's surface), its type tag is read and looked up in the binding's
// dispatch table. Unknown tags produce the base wrapper, which supports the
// type-agnostic operations only.
package cairobind
