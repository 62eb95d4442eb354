package view

import (
	"strconv"

	"github.com/joestar-dev/joestar/pkg/vdom"
)

// Event is what an element callback receives.
type Event struct {
	// Target is the element the callback was bound to.
	Target *Handle

	Kind vdom.EventKind

	// Data is the event detail reported by the document: value and
	// checked for form controls, key for keyboard events, x, y and
	// button for pointer events.
	Data map[string]string
}

// Value returns the target's value for input and change events.
func (e Event) Value() string {
	return e.Data["value"]
}

// Checked reports the checked state of a checkbox target.
func (e Event) Checked() bool {
	b, _ := strconv.ParseBool(e.Data["checked"])
	return b
}

// Key returns the key for keyboard events.
func (e Event) Key() string {
	return e.Data["key"]
}

// Position returns the pointer position for mouse events.
func (e Event) Position() (x, y int) {
	return atoi(e.Data["x"]), atoi(e.Data["y"])
}
