package vdom

// EventKind is the closed set of events the bridge forwards to the host.
type EventKind uint8

const (
	EventClick EventKind = iota + 1
	EventDblClick
	EventInput
	EventChange
	EventSubmit
	EventKeyDown
	EventKeyUp
	EventFocus
	EventBlur
	EventMouseEnter
	EventMouseLeave

	// View-level events. They target the view itself, not an element.
	EventCloseRequest
	EventResize
	EventMove
)

var eventNames = [...]string{
	EventClick:        "click",
	EventDblClick:     "dblclick",
	EventInput:        "input",
	EventChange:       "change",
	EventSubmit:       "submit",
	EventKeyDown:      "keydown",
	EventKeyUp:        "keyup",
	EventFocus:        "focus",
	EventBlur:         "blur",
	EventMouseEnter:   "mouseenter",
	EventMouseLeave:   "mouseleave",
	EventCloseRequest: "close-request",
	EventResize:       "resize",
	EventMove:         "move",
}

// String returns the wire name of the event kind.
func (k EventKind) String() string {
	if k == 0 || int(k) >= len(eventNames) {
		return "unknown"
	}
	return eventNames[k]
}

// IsViewEvent reports whether the kind targets the view rather than an element.
func (k EventKind) IsViewEvent() bool {
	switch k {
	case EventCloseRequest, EventResize, EventMove:
		return true
	default:
		return false
	}
}

// ParseEventKind maps a wire name back to its EventKind.
func ParseEventKind(name string) (EventKind, bool) {
	for k := EventClick; int(k) < len(eventNames); k++ {
		if eventNames[k] == name {
			return k, true
		}
	}
	return 0, false
}

// ElementEvents returns the kinds the document glue listens for.
func ElementEvents() []EventKind {
	kinds := make([]EventKind, 0, int(EventMouseLeave))
	for k := EventClick; k <= EventMouseLeave; k++ {
		kinds = append(kinds, k)
	}
	return kinds
}
