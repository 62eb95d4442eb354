package render

import (
	"errors"
	"fmt"
	"maps"
	"strings"

	"github.com/joestar-dev/joestar/pkg/identity"
	"github.com/joestar-dev/joestar/pkg/protocol"
	"github.com/joestar-dev/joestar/pkg/vdom"
)

// Errors returned for trees the renderer refuses to serialize.
var (
	// ErrInvalidElement is returned for an element with an undeclared tag,
	// or a void element with children or text.
	ErrInvalidElement = errors.New("render: invalid element")

	// ErrReservedAttribute is returned for attributes the bridge owns:
	// id, style and anything prefixed with data-jo.
	ErrReservedAttribute = errors.New("render: reserved attribute")

	// ErrRootRemoval is returned when a mutation tries to remove the root.
	ErrRootRemoval = errors.New("render: cannot remove the root element")
)

// Bindings reports the event kinds already bound for an identity in a
// generation, so they are part of the markup from the start.
type Bindings interface {
	Kinds(id identity.ID, gen uint64) []vdom.EventKind
}

// Renderer serializes element trees and applies incremental mutations.
// It allocates identities from the view's registry; it is not safe for
// concurrent writers, the owning view serializes them.
type Renderer struct {
	ids      *identity.Registry
	bindings Bindings
}

// NewRenderer creates a renderer. bindings may be nil; a nil ids gets a
// private registry.
func NewRenderer(ids *identity.Registry, bindings Bindings) *Renderer {
	if ids == nil {
		ids = identity.NewRegistry()
	}
	return &Renderer{ids: ids, bindings: bindings}
}

// Render serializes root into a new Document, allocating an identity for
// every element. If any explicit identity is already live, nothing is
// registered and the error wraps joerr.ErrDuplicateIdentity.
func (r *Renderer) Render(root vdom.Element) (*Document, error) {
	return r.render(root, nil)
}

// Replace renders root as a full replacement of prev: every identity of prev
// is retired in the same step that registers the new tree, so the new tree
// may redeclare prev's explicit ids. It returns the new document and the
// retired identities.
func (r *Renderer) Replace(prev *Document, root vdom.Element) (*Document, []identity.ID, error) {
	var retired []identity.ID
	if prev != nil {
		retired = prev.IDs()
	}
	doc, err := r.render(root, retired)
	if err != nil {
		return nil, nil, err
	}
	return doc, retired, nil
}

func (r *Renderer) render(root vdom.Element, retiring []identity.ID) (*Document, error) {
	txn := r.ids.Begin()
	txn.Retiring(retiring...)

	doc := newDocument()
	rootID, err := r.build(txn, doc.nodes, root, "")
	if err != nil {
		return nil, err
	}
	if err := txn.Commit(); err != nil {
		return nil, err
	}
	doc.root = rootID
	r.attachBindings(doc.nodes, rootID)
	return doc, nil
}

// build allocates identities for e and its descendants and records them
// in nodes. Nothing is live until the caller commits txn.
func (r *Renderer) build(txn *identity.Txn, nodes map[identity.ID]*Node, e vdom.Element, parent identity.ID) (identity.ID, error) {
	if err := validate(e); err != nil {
		return "", err
	}
	slot, err := txn.Allocate(identity.ID(e.ID))
	if err != nil {
		return "", err
	}

	n := &Node{
		ID:     slot.ID,
		Gen:    slot.Gen,
		Tag:    e.Tag,
		Text:   e.Text,
		Attrs:  maps.Clone(e.Attrs),
		Style:  maps.Clone(e.Style),
		Parent: parent,
	}
	nodes[slot.ID] = n

	for _, c := range e.Children {
		cid, err := r.build(txn, nodes, c, slot.ID)
		if err != nil {
			return "", err
		}
		n.Children = append(n.Children, cid)
	}
	return slot.ID, nil
}

// attachBindings copies kinds already present in the callback registry into
// the listen sets of the subtree at id.
func (r *Renderer) attachBindings(nodes map[identity.ID]*Node, id identity.ID) {
	if r.bindings == nil {
		return
	}
	n := nodes[id]
	if n == nil {
		return
	}
	for _, k := range r.bindings.Kinds(id, n.Gen) {
		n.addListen(k)
	}
	for _, c := range n.Children {
		r.attachBindings(nodes, c)
	}
}

func validate(e vdom.Element) error {
	if !e.Tag.Valid() {
		return fmt.Errorf("%w: tag %d", ErrInvalidElement, e.Tag)
	}
	if e.Tag.Void() && (len(e.Children) > 0 || e.Text != "") {
		return fmt.Errorf("%w: <%s> cannot have content", ErrInvalidElement, e.Tag)
	}
	for key := range e.Attrs {
		if err := checkAttr(key); err != nil {
			return err
		}
	}
	return nil
}

func checkAttr(key string) error {
	if key == "" || key == "id" || key == "style" || strings.HasPrefix(key, "data-jo") {
		return fmt.Errorf("%w: %q", ErrReservedAttribute, key)
	}
	return nil
}

// Fill returns the instruction that loads the whole document into the surface.
func (d *Document) Fill() protocol.Instruction {
	return protocol.Instruction{Op: protocol.OpFill, HTML: d.Markup()}
}
