package el

import "github.com/joestar-dev/joestar/pkg/vdom"

// Div creates an empty container.
func Div() Element {
	return vdom.New(vdom.TagContainer)
}

// Container creates a container holding the given children in order.
func Container(children ...Element) Element {
	return Div().WithChildren(children...)
}

// H1 creates a heading with text.
func H1(text string) Element {
	return vdom.New(vdom.TagHeading).WithText(text)
}

// Heading is an alias for H1.
func Heading(text string) Element {
	return H1(text)
}

// P creates a paragraph with text.
func P(text string) Element {
	return vdom.New(vdom.TagParagraph).WithText(text)
}

// Paragraph is an alias for P.
func Paragraph(text string) Element {
	return P(text)
}

// Span creates an inline text element.
func Span(text string) Element {
	return vdom.New(vdom.TagSpan).WithText(text)
}

// Button creates a button. A button is always addressable, so the caller
// must supply its identity.
func Button(id, text string) Element {
	return vdom.New(vdom.TagButton).
		WithID(id).
		WithAttr("type", "button").
		WithText(text)
}

// Input creates an input of the given type ("text", "checkbox", ...).
func Input(id, inputType string) Element {
	return vdom.New(vdom.TagInput).
		WithID(id).
		WithAttr("type", inputType)
}

// HFlex lays children out in a row.
func HFlex(children ...Element) Element {
	return Container(children...).
		WithStyle("display", "flex").
		WithStyle("flex-direction", "row")
}

// VFlex lays children out in a column.
func VFlex(children ...Element) Element {
	return Container(children...).
		WithStyle("display", "flex").
		WithStyle("flex-direction", "column")
}
