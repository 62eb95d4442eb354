package render

import (
	"strings"

	"github.com/joestar-dev/joestar/pkg/identity"
	"github.com/joestar-dev/joestar/pkg/joerr"
	"github.com/joestar-dev/joestar/pkg/protocol"
	"github.com/joestar-dev/joestar/pkg/vdom"
)

// MutationOp is an incremental change to one live element.
// The set of operations is closed; see the types below.
type MutationOp interface {
	mutationOp()
}

// SetAttribute sets an attribute. Setting the same value twice is a no-op.
type SetAttribute struct{ Key, Value string }

// SetStyle sets an inline style property.
type SetStyle struct{ Key, Value string }

// SetText replaces the element's own text.
type SetText struct{ Text string }

// ReplaceChildren replaces every child of the element. The old descendants
// are retired.
type ReplaceChildren struct{ Children []vdom.Element }

// Remove removes the element and retires it with its descendants.
type Remove struct{}

// Listen starts forwarding events of Kind from the element.
type Listen struct{ Kind vdom.EventKind }

// Unlisten stops forwarding events of Kind from the element.
type Unlisten struct{ Kind vdom.EventKind }

func (SetAttribute) mutationOp()    {}
func (SetStyle) mutationOp()        {}
func (SetText) mutationOp()         {}
func (ReplaceChildren) mutationOp() {}
func (Remove) mutationOp()          {}
func (Listen) mutationOp()          {}
func (Unlisten) mutationOp()        {}

// Mutation is the outcome of a successful Mutate.
type Mutation struct {
	// Instruction applies the change to the surface. It is the zero value
	// when Changed is false.
	Instruction protocol.Instruction

	// Changed is false when the op left the document as it was.
	Changed bool

	// Retired lists identities that left the document.
	Retired []identity.ID
}

// Mutate applies op to the element id of doc. It fails with an error
// wrapping joerr.ErrUnknownIdentity if id is not part of doc.
func (r *Renderer) Mutate(doc *Document, id identity.ID, op MutationOp) (Mutation, error) {
	if rc, ok := op.(ReplaceChildren); ok {
		return r.replaceChildren(doc, id, rc)
	}

	doc.mu.Lock()
	defer doc.mu.Unlock()

	n, ok := doc.nodes[id]
	if !ok {
		return Mutation{}, joerr.Unknown(opName(op), string(id))
	}

	switch op := op.(type) {
	case SetAttribute:
		if err := checkAttr(op.Key); err != nil {
			return Mutation{}, err
		}
		if cur, ok := n.Attrs[op.Key]; ok && cur == op.Value {
			return Mutation{}, nil
		}
		if n.Attrs == nil {
			n.Attrs = make(map[string]string, 1)
		}
		n.Attrs[op.Key] = op.Value
		return changed(protocol.Instruction{Op: protocol.OpSetAttr, ID: string(id), Key: op.Key, Value: op.Value}), nil

	case SetStyle:
		if cur, ok := n.Style[op.Key]; ok && cur == op.Value {
			return Mutation{}, nil
		}
		if n.Style == nil {
			n.Style = make(map[string]string, 1)
		}
		n.Style[op.Key] = op.Value
		return changed(protocol.Instruction{Op: protocol.OpSetStyle, ID: string(id), Key: op.Key, Value: op.Value}), nil

	case SetText:
		if n.Tag.Void() {
			return Mutation{}, ErrInvalidElement
		}
		if n.Text == op.Text {
			return Mutation{}, nil
		}
		n.Text = op.Text
		return changed(protocol.Instruction{Op: protocol.OpSetText, ID: string(id), Value: op.Text}), nil

	case Remove:
		if id == doc.root {
			return Mutation{}, ErrRootRemoval
		}
		retired := doc.collectLocked(id, nil)
		if p := doc.nodes[n.Parent]; p != nil {
			for i, c := range p.Children {
				if c == id {
					p.Children = append(p.Children[:i:i], p.Children[i+1:]...)
					break
				}
			}
		}
		for _, rid := range retired {
			delete(doc.nodes, rid)
		}
		r.ids.Retire(retired...)
		m := changed(protocol.Instruction{Op: protocol.OpRemove, ID: string(id)})
		m.Retired = retired
		return m, nil

	case Listen:
		if !n.addListen(op.Kind) {
			return Mutation{}, nil
		}
		return changed(protocol.Instruction{Op: protocol.OpListen, ID: string(id), Key: op.Kind.String()}), nil

	case Unlisten:
		if !n.removeListen(op.Kind) {
			return Mutation{}, nil
		}
		return changed(protocol.Instruction{Op: protocol.OpUnlisten, ID: string(id), Key: op.Kind.String()}), nil
	}
	return Mutation{}, nil
}

// replaceChildren renders the new children, then swaps them in. The old
// descendants are retired in the same registry step that registers the new
// ones, so the new children may redeclare their explicit ids.
func (r *Renderer) replaceChildren(doc *Document, id identity.ID, op ReplaceChildren) (Mutation, error) {
	doc.mu.Lock()
	defer doc.mu.Unlock()

	n, ok := doc.nodes[id]
	if !ok {
		return Mutation{}, joerr.Unknown("replaceChildren", string(id))
	}
	if n.Tag.Void() {
		return Mutation{}, ErrInvalidElement
	}

	retired := doc.descendantsLocked(id)
	txn := r.ids.Begin()
	txn.Retiring(retired...)

	fresh := make(map[identity.ID]*Node)
	children := make([]identity.ID, 0, len(op.Children))
	for _, c := range op.Children {
		cid, err := r.build(txn, fresh, c, id)
		if err != nil {
			return Mutation{}, err
		}
		children = append(children, cid)
	}
	if err := txn.Commit(); err != nil {
		return Mutation{}, err
	}

	for _, rid := range retired {
		delete(doc.nodes, rid)
	}
	for fid, fn := range fresh {
		doc.nodes[fid] = fn
	}
	n.Children = children
	for _, c := range children {
		r.attachBindings(doc.nodes, c)
	}

	var sb strings.Builder
	for _, c := range children {
		doc.writeLocked(&sb, c)
	}

	m := changed(protocol.Instruction{Op: protocol.OpReplaceChildren, ID: string(id), HTML: sb.String()})
	m.Retired = retired
	return m, nil
}

func changed(ins protocol.Instruction) Mutation {
	return Mutation{Instruction: ins, Changed: true}
}

func opName(op MutationOp) string {
	switch op.(type) {
	case SetAttribute:
		return "setAttr"
	case SetStyle:
		return "setStyle"
	case SetText:
		return "setText"
	case ReplaceChildren:
		return "replaceChildren"
	case Remove:
		return "remove"
	case Listen:
		return "listen"
	case Unlisten:
		return "unlisten"
	default:
		return "mutate"
	}
}
