package view

import (
	"fmt"

	"github.com/joestar-dev/joestar/pkg/callback"
	"github.com/joestar-dev/joestar/pkg/identity"
	"github.com/joestar-dev/joestar/pkg/joerr"
	"github.com/joestar-dev/joestar/pkg/render"
	"github.com/joestar-dev/joestar/pkg/vdom"
)

// Handle refers to one element of a view's document. A handle is bound to
// the generation it was obtained for: once the element is removed or the
// document replaced, every operation fails with joerr.ErrUnknownIdentity,
// even if a new element later takes the same id.
type Handle struct {
	view *View
	id   identity.ID
	gen  uint64
}

// ID returns the element's identity.
func (h *Handle) ID() string {
	return string(h.id)
}

// Gen returns the generation the handle is bound to.
func (h *Handle) Gen() uint64 {
	return h.gen
}

// View returns the owning view.
func (h *Handle) View() *View {
	return h.view
}

// Live reports whether the element is still part of the document.
func (h *Handle) Live() bool {
	return !h.view.closed.Load() && h.view.ids.Live(h.id, h.gen)
}

// SetStyle sets one inline style property.
func (h *Handle) SetStyle(key, value string) error {
	return h.mutate("set-style", render.SetStyle{Key: key, Value: value})
}

// SetAttr sets one attribute. The bridge owns id, style and data-jo-*;
// setting them fails with render.ErrReservedAttribute.
func (h *Handle) SetAttr(key, value string) error {
	return h.mutate("set-attr", render.SetAttribute{Key: key, Value: value})
}

// SetText replaces the element's own text.
func (h *Handle) SetText(text string) error {
	return h.mutate("set-text", render.SetText{Text: text})
}

// ReplaceChildren replaces the element's children. Identities and
// callbacks of the old children are released.
func (h *Handle) ReplaceChildren(children ...vdom.Element) error {
	return h.mutate("replace-children", render.ReplaceChildren{Children: children})
}

// Remove removes the element and its subtree. The root cannot be removed.
func (h *Handle) Remove() error {
	return h.mutate("remove", render.Remove{})
}

// Children returns handles for the element's children in order.
func (h *Handle) Children() ([]*Handle, error) {
	doc, n, err := h.node("children")
	if err != nil {
		return nil, err
	}
	out := make([]*Handle, 0, len(n.Children))
	for _, id := range n.Children {
		if c, ok := h.view.handle(doc, id); ok {
			out = append(out, c)
		}
	}
	return out, nil
}

// Child returns the i-th child.
func (h *Handle) Child(i int) (*Handle, error) {
	doc, n, err := h.node("child")
	if err != nil {
		return nil, err
	}
	if i < 0 || i >= len(n.Children) {
		return nil, fmt.Errorf("%w: %d of %d", ErrChildIndex, i, len(n.Children))
	}
	c, ok := h.view.handle(doc, n.Children[i])
	if !ok {
		return nil, joerr.Unknown("child", string(n.Children[i]))
	}
	return c, nil
}

// Solve follows a path of child indices from h.
func (h *Handle) Solve(path ...int) (*Handle, error) {
	cur := h
	for _, i := range path {
		next, err := cur.Child(i)
		if err != nil {
			return nil, err
		}
		cur = next
	}
	return cur, nil
}

// Bind binds fn to events of kind on the element, replacing any earlier
// binding for that kind.
func (h *Handle) Bind(kind vdom.EventKind, fn func(Event)) error {
	if kind.IsViewEvent() || kind == 0 {
		return ErrKindMismatch
	}

	v := h.view
	v.mu.Lock()
	defer v.mu.Unlock()
	if err := h.checkLocked("bind"); err != nil {
		return err
	}

	v.callbacks.Bind(h.id, h.gen, kind, callback.Func(func(ev callback.Event) {
		fn(Event{
			Target: h,
			Kind:   ev.Kind,
			Data:   ev.Data,
		})
	}))
	return h.applyLocked("bind", render.Listen{Kind: kind})
}

// Unbind removes the binding for kind. The element stops forwarding it.
func (h *Handle) Unbind(kind vdom.EventKind) error {
	v := h.view
	v.mu.Lock()
	defer v.mu.Unlock()
	if err := h.checkLocked("unbind"); err != nil {
		return err
	}

	v.callbacks.Unbind(h.id, kind)
	return h.applyLocked("unbind", render.Unlisten{Kind: kind})
}

// OnClick binds fn to clicks.
func (h *Handle) OnClick(fn func(Event)) error { return h.Bind(vdom.EventClick, fn) }

// OnDblClick binds fn to double clicks.
func (h *Handle) OnDblClick(fn func(Event)) error { return h.Bind(vdom.EventDblClick, fn) }

// OnInput binds fn to value changes while typing.
func (h *Handle) OnInput(fn func(Event)) error { return h.Bind(vdom.EventInput, fn) }

// OnChange binds fn to committed value changes.
func (h *Handle) OnChange(fn func(Event)) error { return h.Bind(vdom.EventChange, fn) }

// OnSubmit binds fn to form submission.
func (h *Handle) OnSubmit(fn func(Event)) error { return h.Bind(vdom.EventSubmit, fn) }

// OnKeyDown binds fn to key presses.
func (h *Handle) OnKeyDown(fn func(Event)) error { return h.Bind(vdom.EventKeyDown, fn) }

// OnKeyUp binds fn to key releases.
func (h *Handle) OnKeyUp(fn func(Event)) error { return h.Bind(vdom.EventKeyUp, fn) }

// OnFocus binds fn to the element gaining focus.
func (h *Handle) OnFocus(fn func(Event)) error { return h.Bind(vdom.EventFocus, fn) }

// OnBlur binds fn to the element losing focus.
func (h *Handle) OnBlur(fn func(Event)) error { return h.Bind(vdom.EventBlur, fn) }

// OnMouseEnter binds fn to the pointer entering the element.
func (h *Handle) OnMouseEnter(fn func(Event)) error { return h.Bind(vdom.EventMouseEnter, fn) }

// OnMouseLeave binds fn to the pointer leaving the element.
func (h *Handle) OnMouseLeave(fn func(Event)) error { return h.Bind(vdom.EventMouseLeave, fn) }

func (h *Handle) mutate(op string, m render.MutationOp) error {
	v := h.view
	v.mu.Lock()
	defer v.mu.Unlock()
	if err := h.checkLocked(op); err != nil {
		return err
	}
	return h.applyLocked(op, m)
}

// applyLocked mutates the document and sends the resulting instruction.
// Callers hold view.mu.
func (h *Handle) applyLocked(op string, m render.MutationOp) error {
	v := h.view
	doc := v.doc.Load()
	res, err := v.renderer.Mutate(doc, h.id, m)
	if err != nil {
		return err
	}
	if len(res.Retired) > 0 {
		v.callbacks.Release(res.Retired...)
	}
	if !res.Changed {
		return nil
	}
	return v.send(res.Instruction)
}

// checkLocked verifies the view is open and the handle's generation is
// live. Callers hold view.mu.
func (h *Handle) checkLocked(op string) error {
	if h.view.closed.Load() {
		return joerr.ErrViewClosed
	}
	if !h.view.ids.Live(h.id, h.gen) || h.view.doc.Load() == nil {
		return joerr.Unknown(op, string(h.id))
	}
	return nil
}

func (h *Handle) node(op string) (*render.Document, render.Node, error) {
	if h.view.closed.Load() {
		return nil, render.Node{}, joerr.ErrViewClosed
	}
	doc := h.view.doc.Load()
	if doc == nil || !h.view.ids.Live(h.id, h.gen) {
		return nil, render.Node{}, joerr.Unknown(op, string(h.id))
	}
	n, ok := doc.Node(h.id)
	if !ok || n.Gen != h.gen {
		return nil, render.Node{}, joerr.Unknown(op, string(h.id))
	}
	return doc, n, nil
}
