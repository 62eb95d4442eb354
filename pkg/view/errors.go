package view

import "errors"

var (
	// ErrNoDriver is returned by NewRuntime when no Driver is configured.
	ErrNoDriver = errors.New("view: no driver configured")

	// ErrEventQueueFull is returned by Post when MaxEventQueue posted
	// tasks are already pending.
	ErrEventQueueFull = errors.New("view: event queue full")

	// ErrKindMismatch is returned when a view-level event kind is bound
	// to an element, or an element kind to the view.
	ErrKindMismatch = errors.New("view: event kind does not apply to target")

	// ErrChildIndex is returned by Handle.Child for an index out of range.
	ErrChildIndex = errors.New("view: child index out of range")
)
