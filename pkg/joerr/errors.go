// Package joerr defines the error taxonomy shared by the bridge packages.
//
// Caller-facing misuse (an unknown or duplicate identity) is returned as a
// value wrapping one of the sentinels below. Malformed inbound messages never
// reach host code; the dispatcher logs and drops them. Only ErrSurfaceFatal
// terminates the runtime.
package joerr

import (
	"errors"
	"fmt"
)

// Sentinel errors. Test with errors.Is.
var (
	// ErrUnknownIdentity is returned when a lookup or mutation targets an
	// identity that is not live in the current document.
	ErrUnknownIdentity = errors.New("joestar: unknown identity")

	// ErrDuplicateIdentity is returned when the host declares an explicit
	// identity that is already live.
	ErrDuplicateIdentity = errors.New("joestar: duplicate explicit identity")

	// ErrMalformedEvent is returned by the protocol decoder for inbound
	// messages that cannot be parsed into (identity, kind, payload).
	ErrMalformedEvent = errors.New("joestar: malformed event message")

	// ErrSurfaceFatal marks an unrecoverable rendering surface failure.
	ErrSurfaceFatal = errors.New("joestar: rendering surface failed")

	// ErrViewClosed is returned by operations on a destroyed view.
	ErrViewClosed = errors.New("joestar: view closed")

	// ErrNoRuntime is returned when a view is created outside a running runtime.
	ErrNoRuntime = errors.New("joestar: no runtime running")

	// ErrRuntimeStopped is returned when work is submitted to a runtime that
	// has already terminated.
	ErrRuntimeStopped = errors.New("joestar: runtime stopped")
)

// IdentityError wraps an identity failure with the operation and the id.
type IdentityError struct {
	Op  string // Operation that failed, e.g. "lookup", "setAttr"
	ID  string // Offending identity
	Err error  // ErrUnknownIdentity or ErrDuplicateIdentity
}

// Error returns the error message with identity context.
func (e *IdentityError) Error() string {
	return fmt.Sprintf("%s %q: %v", e.Op, e.ID, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As.
func (e *IdentityError) Unwrap() error {
	return e.Err
}

// Unknown returns an IdentityError wrapping ErrUnknownIdentity.
func Unknown(op, id string) *IdentityError {
	return &IdentityError{Op: op, ID: id, Err: ErrUnknownIdentity}
}

// Duplicate returns an IdentityError wrapping ErrDuplicateIdentity.
func Duplicate(op, id string) *IdentityError {
	return &IdentityError{Op: op, ID: id, Err: ErrDuplicateIdentity}
}

// SurfaceError wraps a failure reported by a rendering surface.
type SurfaceError struct {
	Op    string // Surface operation, e.g. "open", "load", "run"
	Fatal bool   // Whether the surface is unusable afterwards
	Err   error
}

// Error returns the error message.
func (e *SurfaceError) Error() string {
	if e.Fatal {
		return fmt.Sprintf("surface %s: fatal: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("surface %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *SurfaceError) Unwrap() error {
	return e.Err
}

// Is reports fatal surface errors as ErrSurfaceFatal.
func (e *SurfaceError) Is(target error) bool {
	return e.Fatal && target == ErrSurfaceFatal
}

// Fatal wraps err as a fatal surface error.
func Fatal(op string, err error) *SurfaceError {
	return &SurfaceError{Op: op, Fatal: true, Err: err}
}

// IsFatal reports whether err should terminate the runtime.
func IsFatal(err error) bool {
	return errors.Is(err, ErrSurfaceFatal)
}
