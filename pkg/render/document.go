package render

import (
	"io"
	"maps"
	"slices"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/joestar-dev/joestar/pkg/identity"
	"github.com/joestar-dev/joestar/pkg/vdom"
)

// Node is one rendered element in the document mirror.
type Node struct {
	ID       identity.ID
	Gen      uint64
	Tag      vdom.Tag
	Text     string
	Attrs    map[string]string
	Style    map[string]string
	Listen   []vdom.EventKind // sorted, no duplicates
	Parent   identity.ID      // empty for the root
	Children []identity.ID
}

// Document is the live mirror of a rendered tree.
// It is safe for concurrent readers; writes go through Renderer.Mutate.
type Document struct {
	mu    sync.RWMutex
	root  identity.ID
	nodes map[identity.ID]*Node
}

func newDocument() *Document {
	return &Document{nodes: make(map[identity.ID]*Node)}
}

// Root returns the identity of the root element.
func (d *Document) Root() identity.ID {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.root
}

// Len returns the number of nodes.
func (d *Document) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.nodes)
}

// Has reports whether id is part of the document.
func (d *Document) Has(id identity.ID) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.nodes[id]
	return ok
}

// Node returns a copy of the node for id.
func (d *Document) Node(id identity.ID) (Node, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	n, ok := d.nodes[id]
	if !ok {
		return Node{}, false
	}
	return n.copy(), true
}

// IDs returns every identity in document order.
func (d *Document) IDs() []identity.ID {
	d.mu.RLock()
	defer d.mu.RUnlock()

	ids := make([]identity.ID, 0, len(d.nodes))
	if d.root != "" {
		ids = d.collectLocked(d.root, ids)
	}
	return ids
}

// Markup returns the HTML of the whole tree.
func (d *Document) Markup() string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.root == "" {
		return ""
	}
	var sb strings.Builder
	d.writeLocked(&sb, d.root)
	return sb.String()
}

// MarkupOf returns the HTML of the subtree rooted at id.
func (d *Document) MarkupOf(id identity.ID) (string, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if _, ok := d.nodes[id]; !ok {
		return "", false
	}
	var sb strings.Builder
	d.writeLocked(&sb, id)
	return sb.String(), true
}

// collectLocked appends id and its descendants in document order.
func (d *Document) collectLocked(id identity.ID, out []identity.ID) []identity.ID {
	out = append(out, id)
	if n := d.nodes[id]; n != nil {
		for _, c := range n.Children {
			out = d.collectLocked(c, out)
		}
	}
	return out
}

// descendantsLocked returns the descendants of id, excluding id.
func (d *Document) descendantsLocked(id identity.ID) []identity.ID {
	all := d.collectLocked(id, nil)
	return all[1:]
}

// writeLocked renders the subtree at id.
func (d *Document) writeLocked(w io.StringWriter, id identity.ID) {
	n := d.nodes[id]
	if n == nil {
		return
	}
	tag := n.Tag.String()

	w.WriteString("<")
	w.WriteString(tag)
	w.WriteString(` id="`)
	w.WriteString(escapeAttr(string(n.ID)))
	w.WriteString(`" data-jo-gen="`)
	w.WriteString(strconv.FormatUint(n.Gen, 10))
	w.WriteString(`"`)

	if len(n.Listen) > 0 {
		names := make([]string, len(n.Listen))
		for i, k := range n.Listen {
			names[i] = k.String()
		}
		w.WriteString(` data-jo-on="`)
		w.WriteString(strings.Join(names, " "))
		w.WriteString(`"`)
	}

	for _, key := range sortedKeys(n.Attrs) {
		w.WriteString(" ")
		w.WriteString(key)
		w.WriteString(`="`)
		w.WriteString(escapeAttr(n.Attrs[key]))
		w.WriteString(`"`)
	}

	if len(n.Style) > 0 {
		w.WriteString(` style="`)
		w.WriteString(escapeAttr(styleString(n.Style)))
		w.WriteString(`"`)
	}
	w.WriteString(">")

	if n.Tag.Void() {
		return
	}

	w.WriteString(escapeHTML(n.Text))
	for _, c := range n.Children {
		d.writeLocked(w, c)
	}
	w.WriteString("</")
	w.WriteString(tag)
	w.WriteString(">")
}

// styleString formats style properties as "k: v; k: v;" in key order.
func styleString(style map[string]string) string {
	var sb strings.Builder
	for i, key := range sortedKeys(style) {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(key)
		sb.WriteString(": ")
		sb.WriteString(style[key])
		sb.WriteByte(';')
	}
	return sb.String()
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (n *Node) copy() Node {
	c := *n
	c.Attrs = maps.Clone(n.Attrs)
	c.Style = maps.Clone(n.Style)
	c.Listen = slices.Clone(n.Listen)
	c.Children = slices.Clone(n.Children)
	return c
}

// addListen inserts kind keeping Listen sorted. It reports whether the set changed.
func (n *Node) addListen(kind vdom.EventKind) bool {
	i, found := slices.BinarySearch(n.Listen, kind)
	if found {
		return false
	}
	n.Listen = slices.Insert(n.Listen, i, kind)
	return true
}

// removeListen deletes kind from Listen. It reports whether the set changed.
func (n *Node) removeListen(kind vdom.EventKind) bool {
	i, found := slices.BinarySearch(n.Listen, kind)
	if !found {
		return false
	}
	n.Listen = slices.Delete(n.Listen, i, i+1)
	return true
}
