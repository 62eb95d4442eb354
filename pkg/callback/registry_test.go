package callback

import (
	"sync"
	"testing"

	"github.com/joestar-dev/joestar/pkg/identity"
	"github.com/joestar-dev/joestar/pkg/vdom"
)

func click(id identity.ID, gen uint64) Event {
	return Event{ID: id, Gen: gen, Kind: vdom.EventClick}
}

func TestBindLastWins(t *testing.T) {
	r := NewRegistry()
	var first, second int
	r.Bind("button1", 1, vdom.EventClick, Func(func(Event) { first++ }))
	r.Bind("button1", 1, vdom.EventClick, Func(func(Event) { second++ }))

	if !r.Invoke(click("button1", 1)) {
		t.Fatal("Invoke() = false, want true")
	}
	if first != 0 || second != 1 {
		t.Errorf("first = %d, second = %d; want 0, 1", first, second)
	}
	if r.Len() != 1 {
		t.Errorf("Len() = %d, want 1", r.Len())
	}
}

func TestInvokeGeneration(t *testing.T) {
	r := NewRegistry()
	calls := 0
	r.Bind("button1", 2, vdom.EventClick, Func(func(Event) { calls++ }))

	if r.Invoke(click("button1", 1)) {
		t.Error("event for an older generation must not invoke")
	}
	if calls != 0 {
		t.Errorf("calls = %d, want 0", calls)
	}
}

func TestRelease(t *testing.T) {
	r := NewRegistry()
	r.Bind("a", 1, vdom.EventClick, Func(func(Event) {}))
	r.Bind("a", 1, vdom.EventInput, Func(func(Event) {}))
	r.Bind("b", 2, vdom.EventClick, Func(func(Event) {}))

	if n := r.Release("a"); n != 2 {
		t.Errorf("Release() = %d, want 2", n)
	}
	if _, ok := r.Lookup("a", 1, vdom.EventClick); ok {
		t.Error("a/click should be released")
	}
	if _, ok := r.Lookup("b", 2, vdom.EventClick); !ok {
		t.Error("b/click should survive")
	}
}

func TestUnbindAndTake(t *testing.T) {
	r := NewRegistry()
	r.Bind("a", 1, vdom.EventClick, Func(func(Event) {}))

	if _, ok := r.Take("a", vdom.EventClick); !ok {
		t.Fatal("Take() missed a bound callback")
	}
	if r.Unbind("a", vdom.EventClick) {
		t.Error("Unbind() after Take() should report false")
	}
}

func TestKinds(t *testing.T) {
	r := NewRegistry()
	r.Bind("a", 1, vdom.EventInput, Func(func(Event) {}))
	r.Bind("a", 1, vdom.EventClick, Func(func(Event) {}))

	kinds := r.Kinds("a", 1)
	if len(kinds) != 2 || kinds[0] != vdom.EventClick || kinds[1] != vdom.EventInput {
		t.Errorf("Kinds() = %v, want [click input]", kinds)
	}
}

func TestKindsGeneration(t *testing.T) {
	r := NewRegistry()
	r.Bind("a", 1, vdom.EventClick, Func(func(Event) {}))
	r.Bind("a", 2, vdom.EventInput, Func(func(Event) {}))

	tests := []struct {
		gen  uint64
		want []vdom.EventKind
	}{
		{1, []vdom.EventKind{vdom.EventClick}},
		{2, []vdom.EventKind{vdom.EventInput}},
		{3, nil},
	}
	for _, tt := range tests {
		got := r.Kinds("a", tt.gen)
		if len(got) != len(tt.want) {
			t.Errorf("Kinds(a, %d) = %v, want %v", tt.gen, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("Kinds(a, %d) = %v, want %v", tt.gen, got, tt.want)
			}
		}
	}
}

func TestInvokeReentrant(t *testing.T) {
	r := NewRegistry()
	rebound := false
	r.Bind("a", 1, vdom.EventClick, Func(func(ev Event) {
		// Rebinding from inside a callback must not deadlock.
		r.Bind("a", 1, vdom.EventClick, Func(func(Event) { rebound = true }))
		r.Kinds("a", 1)
	}))

	r.Invoke(Event{ID: "a", Gen: 1, Kind: vdom.EventClick})
	r.Invoke(Event{ID: "a", Gen: 1, Kind: vdom.EventClick})
	if !rebound {
		t.Error("second invoke should run the callback bound by the first")
	}
}

func TestRegistryConcurrency(t *testing.T) {
	r := NewRegistry()
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				r.Bind("a", 1, vdom.EventClick, Func(func(Event) {}))
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				r.Invoke(Event{ID: "a", Gen: 1, Kind: vdom.EventClick})
				r.Release("a")
			}
		}()
	}
	wg.Wait()
}
