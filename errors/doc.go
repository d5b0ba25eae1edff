// Package errors provides structured error types for the pacer shell.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error
// category). The Error type carries the operation name, a human-readable
// detail, and a cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseControl, errors.KindEngineFailure).
//		Op("start").
//		Cause(engineErr).
//		Detail("engine rejected start").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.Busy("start", "load_script")
//	err := errors.InvalidTransition("pause", "Idle")
//	err := errors.Unmapped(0x80001000)
//
// All errors implement the standard error interface and support errors.Is/As.
// Is matches on Phase and Kind, so callers can test for a category:
//
//	if errors.Is(err, &pkgerrors.Error{Phase: PhaseControl, Kind: KindBusy}) {
//	    // retry later
//	}
package errors
