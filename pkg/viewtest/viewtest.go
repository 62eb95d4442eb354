// Package viewtest provides an in-memory view.Driver for tests.
//
// The driver pumps a task queue instead of a native loop and records what
// each surface is sent:
//
//	drv := viewtest.NewDriver()
//	rt, _ := view.NewRuntime(view.WithDriver(drv))
//	viewtest.Run(t, rt, func() {
//	    v, _ := rt.NewView(view.Spec{Title: "Main"})
//	    v.Fill(el.Button("b", "Go"))
//	    b, _ := v.Lookup("b")
//	    b.OnClick(func(view.Event) { clicked = true })
//	    drv.Last().Click(b)
//	})
//
// Run terminates the runtime once everything the entry function queued
// has been handled.
package viewtest

import (
	"sync"
	"testing"
	"time"

	"github.com/joestar-dev/joestar/pkg/identity"
	"github.com/joestar-dev/joestar/pkg/joerr"
	"github.com/joestar-dev/joestar/pkg/protocol"
	"github.com/joestar-dev/joestar/pkg/vdom"
	"github.com/joestar-dev/joestar/pkg/view"
)

// Transport is the script every fake surface reports.
const Transport = "window.__joSend = function (m) { (window.__joSent = window.__joSent || []).push(m); };"

// Driver is a view.Driver that runs loop tasks on the goroutine calling Run.
type Driver struct {
	// OpenErr, if set, is returned by Open.
	OpenErr error

	tasks    chan func()
	stop     chan struct{}
	stopOnce sync.Once

	mu       sync.Mutex
	surfaces []*Surface
}

// NewDriver creates a driver.
func NewDriver() *Driver {
	return &Driver{
		tasks: make(chan func(), 1024),
		stop:  make(chan struct{}),
	}
}

// Run implements view.Driver.
func (d *Driver) Run(ready func()) error {
	ready()
	for {
		select {
		case <-d.stop:
			return nil
		case fn := <-d.tasks:
			fn()
		}
	}
}

// Dispatch implements view.Driver.
func (d *Driver) Dispatch(fn func()) {
	select {
	case d.tasks <- fn:
	case <-d.stop:
	}
}

// Open implements view.Driver.
func (d *Driver) Open(spec view.Spec, sink view.Sink) (view.Surface, error) {
	if d.OpenErr != nil {
		return nil, d.OpenErr
	}
	s := &Surface{spec: spec, sink: sink}
	d.mu.Lock()
	d.surfaces = append(d.surfaces, s)
	d.mu.Unlock()
	return s, nil
}

// Terminate implements view.Driver.
func (d *Driver) Terminate() {
	d.stopOnce.Do(func() { close(d.stop) })
}

// Exit ends the loop the way a user closing a native window does: every
// open surface first delivers a close request, and the runtime is not
// terminated.
func (d *Driver) Exit() {
	for _, s := range d.Surfaces() {
		if !s.Closed() {
			s.ViewEvent(vdom.EventCloseRequest, nil)
		}
	}
	d.stopOnce.Do(func() { close(d.stop) })
}

// Surfaces returns every surface opened so far.
func (d *Driver) Surfaces() []*Surface {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]*Surface(nil), d.surfaces...)
}

// Last returns the most recently opened surface, or nil.
func (d *Driver) Last() *Surface {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.surfaces) == 0 {
		return nil
	}
	return d.surfaces[len(d.surfaces)-1]
}

// Surface records the pages and instructions a view sends.
type Surface struct {
	spec view.Spec
	sink view.Sink

	mu           sync.Mutex
	pages        []string
	instructions []protocol.Instruction
	closed       bool
	applyErr     error
}

// Spec returns the spec the surface was opened with.
func (s *Surface) Spec() view.Spec {
	return s.spec
}

// Transport implements view.Surface.
func (s *Surface) Transport() string {
	return Transport
}

// Load implements view.Surface.
func (s *Surface) Load(page string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return &joerr.SurfaceError{Op: "load", Err: joerr.ErrViewClosed}
	}
	s.pages = append(s.pages, page)
	return nil
}

// Apply implements view.Surface.
func (s *Surface) Apply(ins protocol.Instruction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.applyErr != nil {
		return s.applyErr
	}
	if s.closed {
		return &joerr.SurfaceError{Op: "apply", Err: joerr.ErrViewClosed}
	}
	s.instructions = append(s.instructions, ins)
	return nil
}

// Close implements view.Surface.
func (s *Surface) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// FailWith makes every later Apply return err.
func (s *Surface) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.applyErr = err
}

// Closed reports whether Close was called.
func (s *Surface) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Pages returns every page loaded so far.
func (s *Surface) Pages() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.pages...)
}

// Instructions returns every instruction applied so far.
func (s *Surface) Instructions() []protocol.Instruction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]protocol.Instruction(nil), s.instructions...)
}

// Reset forgets recorded instructions.
func (s *Surface) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.instructions = nil
}

// CurrentPage returns the view's page as a reloading surface would see it.
func (s *Surface) CurrentPage() string {
	return s.sink.Page()
}

// Send delivers a raw message as if the document had sent it.
func (s *Surface) Send(raw []byte) error {
	return s.sink.Deliver(raw)
}

// Emit delivers an event for the element id in generation gen.
func (s *Surface) Emit(id string, gen uint64, kind vdom.EventKind, data map[string]string) error {
	raw, err := protocol.EncodeEvent(&protocol.Event{
		ID:   identity.ID(id),
		Gen:  gen,
		Kind: kind,
		Data: data,
	})
	if err != nil {
		return err
	}
	return s.Send(raw)
}

// Fire delivers an event of kind for the element behind h.
func (s *Surface) Fire(h *view.Handle, kind vdom.EventKind, data map[string]string) error {
	return s.Emit(h.ID(), h.Gen(), kind, data)
}

// Click delivers a click on h.
func (s *Surface) Click(h *view.Handle) error {
	return s.Fire(h, vdom.EventClick, map[string]string{"button": "0"})
}

// Type delivers an input event carrying value.
func (s *Surface) Type(h *view.Handle, value string) error {
	return s.Fire(h, vdom.EventInput, map[string]string{"value": value})
}

// ViewEvent delivers a view-level event.
func (s *Surface) ViewEvent(kind vdom.EventKind, data map[string]string) error {
	return s.Emit(string(protocol.ViewTarget), 0, kind, data)
}

// DefaultTimeout bounds Run.
const DefaultTimeout = 5 * time.Second

// Run runs entry in rt, then terminates rt once everything queued by entry
// has been handled. It fails the test if rt does not stop within
// DefaultTimeout and returns rt.Run's error.
func Run(t testing.TB, rt *view.Runtime, entry func()) error {
	t.Helper()
	done := make(chan error, 1)
	go func() {
		done <- rt.Run(func() {
			defer func() {
				if err := rt.Post(rt.Terminate); err != nil {
					rt.Terminate()
				}
			}()
			entry()
		})
	}()
	select {
	case err := <-done:
		return err
	case <-time.After(DefaultTimeout):
		rt.Terminate()
		t.Fatalf("runtime did not stop within %v", DefaultTimeout)
		return nil
	}
}
