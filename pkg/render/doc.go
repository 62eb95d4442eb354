// Package render serializes element trees for a rendering surface.
//
// Render turns a vdom.Element tree into a Document: a live mirror of what
// the surface shows, keyed by identity. Every node carries its identity as
// the id attribute and its generation as data-jo-gen. Nodes with bound
// event kinds list them in data-jo-on; the glue script forwards exactly
// those events back to the host.
//
// After the first render, changes go through Mutate, which updates the
// mirror and returns the protocol.Instruction that applies the same change
// to the surface without a full re-render.
//
//	r := render.NewRenderer(ids, callbacks)
//	doc, err := r.Render(tree)
//	html := doc.Page(render.PageData{Title: "Main"})
//
//	m, err := r.Mutate(doc, "button1", render.SetStyle{Key: "color", Value: "red"})
//	surface.Apply(m.Instruction)
package render
