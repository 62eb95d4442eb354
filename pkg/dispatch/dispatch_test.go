package dispatch

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/joestar-dev/joestar/pkg/callback"
	"github.com/joestar-dev/joestar/pkg/identity"
	"github.com/joestar-dev/joestar/pkg/metrics"
	"github.com/joestar-dev/joestar/pkg/protocol"
	"github.com/joestar-dev/joestar/pkg/vdom"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fixture struct {
	ids       *identity.Registry
	callbacks *callback.Registry
	d         *Dispatcher
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	f := &fixture{
		ids:       identity.NewRegistry(),
		callbacks: callback.NewRegistry(),
	}
	opts = append([]Option{WithLogger(quietLogger())}, opts...)
	f.d = New(f.ids, f.callbacks, opts...)
	return f
}

func encode(t *testing.T, id identity.ID, gen uint64, kind vdom.EventKind, data map[string]string) []byte {
	t.Helper()
	raw, err := protocol.EncodeEvent(&protocol.Event{ID: id, Gen: gen, Kind: kind, Data: data})
	if err != nil {
		t.Fatalf("EncodeEvent() error = %v", err)
	}
	return raw
}

func TestDispatchInvokesOnce(t *testing.T) {
	f := newFixture(t)
	slot, err := f.ids.Allocate("button1")
	if err != nil {
		t.Fatalf("Allocate() error = %v", err)
	}

	calls := 0
	var got callback.Event
	f.callbacks.Bind(slot.ID, slot.Gen, vdom.EventClick, callback.Func(func(ev callback.Event) {
		calls++
		got = ev
	}))

	raw := encode(t, "button1", slot.Gen, vdom.EventClick, map[string]string{"button": "0"})
	if out := f.d.Dispatch(raw); out != OutcomeInvoked {
		t.Fatalf("Dispatch() = %v, want invoked", out)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
	if got.ID != "button1" || got.Kind != vdom.EventClick || got.Data["button"] != "0" {
		t.Errorf("event = %+v", got)
	}
	if s := f.d.State(); s != StateIdle {
		t.Errorf("State() = %v, want idle", s)
	}
}

func TestDispatchDrops(t *testing.T) {
	f := newFixture(t)
	slot, _ := f.ids.Allocate("a")
	calls := 0
	f.callbacks.Bind(slot.ID, slot.Gen, vdom.EventClick, callback.Func(func(callback.Event) { calls++ }))

	tests := []struct {
		name string
		raw  []byte
	}{
		{"unknown id", encode(t, "ghost", slot.Gen, vdom.EventClick, nil)},
		{"stale generation", encode(t, "a", slot.Gen+100, vdom.EventClick, nil)},
		{"unbound kind", encode(t, "a", slot.Gen, vdom.EventInput, nil)},
		{"unbound view event", encode(t, protocol.ViewTarget, 0, vdom.EventResize, nil)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if out := f.d.Dispatch(tt.raw); out != OutcomeDropped {
				t.Errorf("Dispatch() = %v, want dropped", out)
			}
		})
	}
	if calls != 0 {
		t.Errorf("calls = %d, want 0", calls)
	}
}

func TestDispatchRetired(t *testing.T) {
	f := newFixture(t)
	slot, _ := f.ids.Allocate("a")
	calls := 0
	f.callbacks.Bind(slot.ID, slot.Gen, vdom.EventClick, callback.Func(func(callback.Event) { calls++ }))

	// Retiring the identity leaves the binding in place; liveness alone
	// must stop delivery.
	f.ids.Retire("a")
	if out := f.d.Dispatch(encode(t, "a", slot.Gen, vdom.EventClick, nil)); out != OutcomeDropped {
		t.Errorf("Dispatch() = %v, want dropped", out)
	}
	if calls != 0 {
		t.Errorf("calls = %d, want 0", calls)
	}
}

func TestDispatchMalformed(t *testing.T) {
	var buf bytes.Buffer
	f := newFixture(t, WithLogger(slog.New(slog.NewTextHandler(&buf, nil))))

	for _, raw := range []string{"", "{", `{"id":"a","kind":"explode"}`, `{"kind":"click"}`, `{"id":"a","kind":"click"}`} {
		if out := f.d.Dispatch([]byte(raw)); out != OutcomeMalformed {
			t.Errorf("Dispatch(%q) = %v, want malformed", raw, out)
		}
	}
	if !strings.Contains(buf.String(), "malformed event") {
		t.Errorf("log = %q, want malformed event warning", buf.String())
	}
}

func TestDispatchViewEvent(t *testing.T) {
	f := newFixture(t)
	var got callback.Event
	f.callbacks.Bind(protocol.ViewTarget, 0, vdom.EventResize, callback.Func(func(ev callback.Event) { got = ev }))

	raw := encode(t, protocol.ViewTarget, 0, vdom.EventResize, map[string]string{"width": "800", "height": "600"})
	if out := f.d.Dispatch(raw); out != OutcomeInvoked {
		t.Fatalf("Dispatch() = %v, want invoked", out)
	}
	if got.Data["width"] != "800" {
		t.Errorf("width = %q, want 800", got.Data["width"])
	}
}

func TestDispatchPanic(t *testing.T) {
	var buf bytes.Buffer
	f := newFixture(t, WithLogger(slog.New(slog.NewTextHandler(&buf, nil))))
	slot, _ := f.ids.Allocate("a")
	f.callbacks.Bind(slot.ID, slot.Gen, vdom.EventClick, callback.Func(func(callback.Event) { panic("boom") }))

	if out := f.d.Dispatch(encode(t, "a", slot.Gen, vdom.EventClick, nil)); out != OutcomePanicked {
		t.Errorf("Dispatch() = %v, want panicked", out)
	}
	if !strings.Contains(buf.String(), "callback panic") {
		t.Errorf("log = %q, want callback panic", buf.String())
	}
	if s := f.d.State(); s != StateIdle {
		t.Errorf("State() = %v, want idle", s)
	}

	// Dispatch continues after a panic.
	calls := 0
	f.callbacks.Bind(slot.ID, slot.Gen, vdom.EventClick, callback.Func(func(callback.Event) { calls++ }))
	f.d.Dispatch(encode(t, "a", slot.Gen, vdom.EventClick, nil))
	if calls != 1 {
		t.Errorf("calls after panic = %d, want 1", calls)
	}
}

func TestStateDuringInvoke(t *testing.T) {
	f := newFixture(t)
	slot, _ := f.ids.Allocate("a")
	var during State
	f.callbacks.Bind(slot.ID, slot.Gen, vdom.EventClick, callback.Func(func(callback.Event) {
		during = f.d.State()
	}))
	f.d.Dispatch(encode(t, "a", slot.Gen, vdom.EventClick, nil))
	if during != StateInvoking {
		t.Errorf("State() during callback = %v, want invoking", during)
	}
}

func TestReentrantBind(t *testing.T) {
	f := newFixture(t)
	slot, _ := f.ids.Allocate("a")
	second := 0
	f.callbacks.Bind(slot.ID, slot.Gen, vdom.EventClick, callback.Func(func(callback.Event) {
		f.callbacks.Bind(slot.ID, slot.Gen, vdom.EventClick, callback.Func(func(callback.Event) { second++ }))
	}))

	raw := encode(t, "a", slot.Gen, vdom.EventClick, nil)
	f.d.Dispatch(raw)
	f.d.Dispatch(raw)
	if second != 1 {
		t.Errorf("second callback calls = %d, want 1", second)
	}
}

func TestClose(t *testing.T) {
	f := newFixture(t)
	slot, _ := f.ids.Allocate("a")
	calls := 0
	f.callbacks.Bind(slot.ID, slot.Gen, vdom.EventClick, callback.Func(func(callback.Event) { calls++ }))

	f.d.Close()
	if !f.d.Closed() {
		t.Error("Closed() = false after Close")
	}
	if out := f.d.Dispatch(encode(t, "a", slot.Gen, vdom.EventClick, nil)); out != OutcomeDropped {
		t.Errorf("Dispatch() after Close = %v, want dropped", out)
	}
	if calls != 0 {
		t.Errorf("calls = %d, want 0", calls)
	}
}

func TestRun(t *testing.T) {
	f := newFixture(t)
	slot, _ := f.ids.Allocate("a")
	var order []string
	f.callbacks.Bind(slot.ID, slot.Gen, vdom.EventInput, callback.Func(func(ev callback.Event) {
		order = append(order, ev.Data["value"])
	}))

	in := make(chan []byte, 3)
	for _, v := range []string{"x", "xy", "xyz"} {
		in <- encode(t, "a", slot.Gen, vdom.EventInput, map[string]string{"value": v})
	}
	close(in)

	if err := f.d.Run(context.Background(), in); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if strings.Join(order, ",") != "x,xy,xyz" {
		t.Errorf("order = %v, want x,xy,xyz", order)
	}
}

func TestRunContextCancel(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- f.d.Run(ctx, make(chan []byte)) }()
	cancel()

	select {
	case err := <-done:
		if err != context.Canceled {
			t.Errorf("Run() error = %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run() did not return after cancel")
	}
}

func TestDispatchMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	f := newFixture(t, WithMetrics(metrics.New(metrics.WithRegistry(reg))))
	slot, _ := f.ids.Allocate("a")
	f.callbacks.Bind(slot.ID, slot.Gen, vdom.EventClick, callback.Func(func(callback.Event) {}))

	f.d.Dispatch(encode(t, "a", slot.Gen, vdom.EventClick, nil))
	f.d.Dispatch(encode(t, "b", 1, vdom.EventClick, nil))
	f.d.Dispatch([]byte("nope"))

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}
	outcomes := make(map[string]float64)
	for _, fam := range families {
		if fam.GetName() != "joestar_events_total" {
			continue
		}
		for _, m := range fam.GetMetric() {
			for _, l := range m.GetLabel() {
				if l.GetName() == "outcome" {
					outcomes[l.GetValue()] += m.GetCounter().GetValue()
				}
			}
		}
	}
	for _, o := range []string{"invoked", "dropped", "malformed"} {
		if outcomes[o] != 1 {
			t.Errorf("outcome %s = %v, want 1", o, outcomes[o])
		}
	}
}
