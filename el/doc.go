// Package el provides the element constructors used to declare a view.
//
// The constructors are pure: they build vdom.Element values and never touch
// a view, a registry or a surface. Typical usage:
//
//	import . "github.com/joestar-dev/joestar/el"
//
//	view.Fill(VFlex(
//	    H1("Hello World!"),
//	    P("This is a paragraph."),
//	    Button("button1", "Click me!"),
//	))
package el
