// Package cairo provides typed wrappers over a native.Library.
//
// A Binding owns the state shared by all wrappers of one engine. Wrappers
// come in three families with sealed interfaces:
//
//	Surface    ImageSurface, RecordingSurface, PDFSurface, SVGSurface, PSSurface
//	Pattern    SolidPattern, SurfacePattern, LinearGradient, RadialGradient
//	FontFace   ToyFontFace
//
// Constructors return the concrete type. Handles coming back from the engine,
// such as a context's target, are rehydrated through the binding's dispatch
// tables; a tag with no constructor yields the family's base wrapper, and
// the As* helpers report type_mismatch for it.
//
// Go values the engine keeps using after a call returns (pixel buffers, mime
// data, stream writers) are held in the binding's keep-alive set until the
// engine releases them.
package cairo
