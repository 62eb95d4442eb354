package vdom

import (
	"maps"
	"slices"
)

// Element is a declared UI node before it is rendered.
//
// Element is a value type: children are held by value, so a tree built
// from Elements has exactly one parent per node and cannot contain cycles.
// The With* combinators return modified copies and never touch the receiver.
type Element struct {
	Tag      Tag
	ID       string            // Explicit identity; empty means implicit
	Text     string            // Text content, rendered before children
	Attrs    map[string]string // Attributes, rendered verbatim
	Style    map[string]string // Inline style properties
	Children []Element
}

// New creates an element with the given tag.
func New(tag Tag) Element {
	return Element{Tag: tag}
}

// WithID returns a copy with an explicit identity.
func (e Element) WithID(id string) Element {
	e = e.clone()
	e.ID = id
	return e
}

// WithText returns a copy with the given text content.
func (e Element) WithText(text string) Element {
	e = e.clone()
	e.Text = text
	return e
}

// WithAttr returns a copy with the attribute set.
func (e Element) WithAttr(key, value string) Element {
	e = e.clone()
	if e.Attrs == nil {
		e.Attrs = make(map[string]string, 1)
	}
	e.Attrs[key] = value
	return e
}

// WithStyle returns a copy with the style property set.
func (e Element) WithStyle(key, value string) Element {
	e = e.clone()
	if e.Style == nil {
		e.Style = make(map[string]string, 1)
	}
	e.Style[key] = value
	return e
}

// WithChildren returns a copy with children appended in order.
func (e Element) WithChildren(children ...Element) Element {
	e = e.clone()
	for _, c := range children {
		e.Children = append(e.Children, c.clone())
	}
	return e
}

// Count returns the number of nodes in the tree rooted at e.
func (e Element) Count() int {
	n := 1
	for _, c := range e.Children {
		n += c.Count()
	}
	return n
}

// Walk visits e and its descendants in document order.
// Returning false from fn skips the node's children.
func (e Element) Walk(fn func(Element) bool) {
	if !fn(e) {
		return
	}
	for _, c := range e.Children {
		c.Walk(fn)
	}
}

// clone copies the maps and the child slice so that the copy and the
// original never alias mutable state.
func (e Element) clone() Element {
	e.Attrs = maps.Clone(e.Attrs)
	e.Style = maps.Clone(e.Style)
	e.Children = slices.Clone(e.Children)
	return e
}
