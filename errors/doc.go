// Package errors provides structured error types for the cairobind library.
//
// Errors are categorized by Phase (which layer of the binding raised it) and Kind
// (error category). Errors that originate from a native status code also carry
// the raw code in Code, so callers can inspect the exact native failure.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseWrap, errors.KindTypeMismatch).
//		Want("image surface").
//		Got("surface type 255").
//		Detail("accessor requires an image surface").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.InvalidHandle(errors.PhaseWrap, "surface")
//	err := errors.InvalidCoordinateCount(errors.PhasePath, 0, "move-to", 2, 3)
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
