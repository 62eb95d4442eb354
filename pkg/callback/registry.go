// Package callback stores host callbacks keyed by element identity and
// event kind.
//
// Bindings are last-bind-wins. The registry lock is never held while a
// callback runs, so a callback may bind, unbind or look up freely.
package callback

import (
	"sort"
	"sync"

	"github.com/joestar-dev/joestar/pkg/identity"
	"github.com/joestar-dev/joestar/pkg/vdom"
)

// Event is what a callback receives.
type Event struct {
	ID   identity.ID
	Gen  uint64
	Kind vdom.EventKind
	Data map[string]string
}

// Callback is a host-supplied invocable owned by the registry once bound.
type Callback interface {
	Invoke(ev Event)
}

// Func adapts an ordinary function to Callback.
type Func func(ev Event)

// Invoke implements Callback.
func (f Func) Invoke(ev Event) { f(ev) }

type key struct {
	id   identity.ID
	kind vdom.EventKind
}

type binding struct {
	gen uint64
	cb  Callback
}

// Registry maps (identity, kind) to a callback.
type Registry struct {
	mu       sync.Mutex
	bindings map[key]binding
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{bindings: make(map[key]binding)}
}

// Bind stores cb for (id, kind), replacing any earlier binding.
// gen is the generation of id the binding is made for.
func (r *Registry) Bind(id identity.ID, gen uint64, kind vdom.EventKind, cb Callback) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bindings[key{id, kind}] = binding{gen: gen, cb: cb}
}

// Unbind removes the binding for (id, kind) and reports whether one existed.
func (r *Registry) Unbind(id identity.ID, kind vdom.EventKind) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	k := key{id, kind}
	if _, ok := r.bindings[k]; !ok {
		return false
	}
	delete(r.bindings, k)
	return true
}

// Lookup returns the callback bound to (id, kind) for generation gen.
func (r *Registry) Lookup(id identity.ID, gen uint64, kind vdom.EventKind) (Callback, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.bindings[key{id, kind}]
	if !ok || b.gen != gen {
		return nil, false
	}
	return b.cb, true
}

// Take removes and returns the binding for (id, kind), whatever its generation.
func (r *Registry) Take(id identity.ID, kind vdom.EventKind) (Callback, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	k := key{id, kind}
	b, ok := r.bindings[k]
	if !ok {
		return nil, false
	}
	delete(r.bindings, k)
	return b.cb, true
}

// Invoke runs the callback bound to the event's (id, kind) if it was bound
// for the event's generation. The lock is released before the call.
func (r *Registry) Invoke(ev Event) bool {
	cb, ok := r.Lookup(ev.ID, ev.Gen, ev.Kind)
	if !ok {
		return false
	}
	cb.Invoke(ev)
	return true
}

// Release drops every binding of the given identities.
func (r *Registry) Release(ids ...identity.ID) int {
	if len(ids) == 0 {
		return 0
	}
	set := make(map[identity.ID]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for k := range r.bindings {
		if _, ok := set[k.id]; ok {
			delete(r.bindings, k)
			n++
		}
	}
	return n
}

// Clear drops every binding.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	clear(r.bindings)
}

// Kinds returns the kinds bound for id in generation gen, sorted.
// Bindings left over from an earlier generation are not reported.
func (r *Registry) Kinds(id identity.ID, gen uint64) []vdom.EventKind {
	r.mu.Lock()
	defer r.mu.Unlock()

	var kinds []vdom.EventKind
	for k, b := range r.bindings {
		if k.id == id && b.gen == gen {
			kinds = append(kinds, k.kind)
		}
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

// Len returns the number of bindings.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.bindings)
}
