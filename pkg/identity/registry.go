// Package identity assigns and tracks element identities for one view.
//
// An identity is live from the moment the tree that declares it is
// committed until it is retired by a mutation or a full fill. Every
// allocation gets a fresh generation; inbound events carry the generation
// they were rendered with, which lets the dispatcher tell a live element
// from a stale one that happens to reuse an explicit id.
package identity

import (
	"strconv"
	"sync"

	"github.com/joestar-dev/joestar/pkg/joerr"
)

// ID is an opaque element identity, unique within one view's lifetime.
type ID string

// ImplicitPrefix prefixes generated identities.
const ImplicitPrefix = "jo-"

// Slot is a live allocation: an identity and the generation it was issued in.
type Slot struct {
	ID  ID
	Gen uint64
}

type entry struct {
	gen  uint64
	live bool
}

// Registry is the identity → liveness table.
// A single mutex guards the table and is never held across calls out of
// the package.
type Registry struct {
	mu      sync.Mutex
	entries map[ID]*entry
	nextID  uint64 // implicit id counter
	nextGen uint64 // generation counter
	live    int
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[ID]*entry)}
}

// Allocate registers a single identity. An empty explicit id synthesizes a
// fresh implicit one.
func (r *Registry) Allocate(explicit ID) (Slot, error) {
	txn := r.Begin()
	slot, err := txn.Allocate(explicit)
	if err != nil {
		return Slot{}, err
	}
	if err := txn.Commit(); err != nil {
		return Slot{}, err
	}
	return slot, nil
}

// Lookup returns the live slot for id.
func (r *Registry) Lookup(id ID) (Slot, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[id]
	if !ok || !e.live {
		return Slot{}, false
	}
	return Slot{ID: id, Gen: e.gen}, true
}

// Live reports whether id is live in generation gen.
func (r *Registry) Live(id ID, gen uint64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[id]
	return ok && e.live && e.gen == gen
}

// Retire marks identities as no longer live. Unknown ids are ignored.
func (r *Registry) Retire(ids ...ID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, id := range ids {
		if e, ok := r.entries[id]; ok && e.live {
			e.live = false
			r.live--
		}
	}
}

// RetireAll retires every live identity and returns them.
func (r *Registry) RetireAll() []ID {
	r.mu.Lock()
	defer r.mu.Unlock()

	retired := make([]ID, 0, r.live)
	for id, e := range r.entries {
		if e.live {
			e.live = false
			retired = append(retired, id)
		}
	}
	r.live = 0
	return retired
}

// Len returns the number of live identities.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.live
}

// Begin starts an allocation transaction. Nothing becomes live until Commit.
func (r *Registry) Begin() *Txn {
	return &Txn{
		reg:      r,
		pending:  make(map[ID]struct{}),
		retiring: make(map[ID]struct{}),
	}
}

// Txn allocates the identities of a whole tree atomically: a duplicate
// anywhere in the tree leaves the registry untouched.
type Txn struct {
	reg      *Registry
	slots    []Slot
	pending  map[ID]struct{}
	retiring map[ID]struct{}
	done     bool
}

// Retiring marks identities that Commit retires before activating the new
// ones. A tree that replaces them may redeclare their explicit ids.
func (t *Txn) Retiring(ids ...ID) {
	for _, id := range ids {
		t.retiring[id] = struct{}{}
	}
}

// Allocate reserves an identity within the transaction.
func (t *Txn) Allocate(explicit ID) (Slot, error) {
	r := t.reg
	r.mu.Lock()
	defer r.mu.Unlock()

	var id ID
	if explicit != "" {
		if _, dup := t.pending[explicit]; dup {
			return Slot{}, joerr.Duplicate("allocate", string(explicit))
		}
		if r.liveLocked(explicit) && !t.isRetiring(explicit) {
			return Slot{}, joerr.Duplicate("allocate", string(explicit))
		}
		id = explicit
	} else {
		id = r.implicitLocked(t.pending)
	}

	r.nextGen++
	slot := Slot{ID: id, Gen: r.nextGen}
	t.pending[id] = struct{}{}
	t.slots = append(t.slots, slot)
	return slot, nil
}

// Slots returns the slots reserved so far, in allocation order.
func (t *Txn) Slots() []Slot {
	return t.slots
}

// Commit retires the identities passed to Retiring and makes every
// reserved identity live. It fails with ErrDuplicateIdentity, changing
// nothing, if a reserved explicit id went live through another writer
// after it was reserved.
func (t *Txn) Commit() error {
	if t.done {
		return nil
	}
	r := t.reg
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, s := range t.slots {
		if r.liveLocked(s.ID) && !t.isRetiring(s.ID) {
			return joerr.Duplicate("commit", string(s.ID))
		}
	}
	for id := range t.retiring {
		if e, ok := r.entries[id]; ok && e.live {
			e.live = false
			r.live--
		}
	}
	for _, s := range t.slots {
		e, ok := r.entries[s.ID]
		if !ok {
			e = &entry{}
			r.entries[s.ID] = e
		}
		e.gen = s.Gen
		e.live = true
		r.live++
	}
	t.done = true
	return nil
}

func (t *Txn) isRetiring(id ID) bool {
	_, ok := t.retiring[id]
	return ok
}

func (r *Registry) liveLocked(id ID) bool {
	e, ok := r.entries[id]
	return ok && e.live
}

// implicitLocked returns the next never-issued implicit identity.
func (r *Registry) implicitLocked(pending map[ID]struct{}) ID {
	for {
		r.nextID++
		id := ID(ImplicitPrefix + strconv.FormatUint(r.nextID, 10))
		if _, used := r.entries[id]; used {
			continue
		}
		if _, used := pending[id]; used {
			continue
		}
		return id
	}
}
