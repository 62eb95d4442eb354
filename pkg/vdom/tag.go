package vdom

// Tag is the closed set of element kinds the bridge can render.
type Tag uint8

const (
	TagContainer Tag = iota // <div>
	TagHeading              // <h1>
	TagParagraph            // <p>
	TagButton               // <button>
	TagInput                // <input>
	TagSpan                 // <span>
)

// String returns the HTML tag name.
func (t Tag) String() string {
	switch t {
	case TagContainer:
		return "div"
	case TagHeading:
		return "h1"
	case TagParagraph:
		return "p"
	case TagButton:
		return "button"
	case TagInput:
		return "input"
	case TagSpan:
		return "span"
	default:
		return "unknown"
	}
}

// Void reports whether the tag has no closing tag and no children.
func (t Tag) Void() bool {
	return t == TagInput
}

// Valid reports whether t is one of the declared tags.
func (t Tag) Valid() bool {
	return t <= TagSpan
}
