// Package errors provides structured error types for the script bridge.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type carries the call table operation, behaviour class and instance
// handle involved, plus an optional cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseInvoke, errors.KindUnboundOperation).
//		Op("transform.get_position").
//		Detail("call table handshake incomplete").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.UnknownClass("TestScript")
//	err := errors.InvalidHandle(errors.PhaseDispatch, h)
//
// Sentinel values compare by kind only, so callers can ask
// errors.Is(err, errors.ErrInvalidHandle) regardless of phase.
package errors
