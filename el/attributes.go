package el

import "strconv"

// Length is a CSS length used by the sizing helpers.
type Length struct {
	value float64
	unit  string
}

// Px returns a length in CSS pixels.
func Px(v float64) Length { return Length{value: v, unit: "px"} }

// Percent returns a length relative to the parent.
func Percent(v float64) Length { return Length{value: v, unit: "%"} }

// Auto returns the "auto" length.
func Auto() Length { return Length{unit: "auto"} }

// String formats the length as a CSS value.
func (l Length) String() string {
	if l.unit == "auto" || l.unit == "" {
		return "auto"
	}
	return strconv.FormatFloat(l.value, 'f', -1, 64) + l.unit
}

// Modifier transforms an element. Modifiers compose with Apply.
type Modifier func(Element) Element

// Width sets the element width.
func Width(l Length) Modifier {
	return func(e Element) Element { return e.WithStyle("width", l.String()) }
}

// Height sets the element height.
func Height(l Length) Modifier {
	return func(e Element) Element { return e.WithStyle("height", l.String()) }
}

// FlexFill makes the element take the remaining space of a flex parent.
func FlexFill() Modifier {
	return func(e Element) Element { return e.WithStyle("flex", "1 1 auto") }
}

// Style sets an arbitrary style property.
func Style(key, value string) Modifier {
	return func(e Element) Element { return e.WithStyle(key, value) }
}

// Class sets the class attribute.
func Class(name string) Modifier {
	return func(e Element) Element { return e.WithAttr("class", name) }
}

// Apply runs the modifiers over e in order.
func Apply(e Element, mods ...Modifier) Element {
	for _, m := range mods {
		e = m(e)
	}
	return e
}
