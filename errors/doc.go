// Package errors provides structured error types for the physics bridge.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type carries the entity kind and operation it was raised from,
// plus the offending value and cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseAccess, errors.KindOutOfBounds).
//		Entity("chain").
//		Op("vertex").
//		Value(7).
//		Detail("index %d out of bounds (length %d)", 7, 4).
//		Build()
//
// Or use convenience constructors for the bridge's failure modes:
//
//	err := errors.StaleHandle(errors.PhaseHandle, "circle", uint64(h))
//	err := errors.DoubleDispose(errors.PhaseHandle, "shape", uint64(h))
//	err := errors.Aliasing(errors.PhaseMarshal, ptr, 8)
//
// All errors implement the standard error interface and support errors.Is/As.
// A target error without a Phase matches on Kind alone:
//
//	errors.Is(err, &errors.Error{Kind: errors.KindStaleHandle})
package errors
