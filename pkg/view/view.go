package view

import (
	"errors"
	"log/slog"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/joestar-dev/joestar/pkg/callback"
	"github.com/joestar-dev/joestar/pkg/dispatch"
	"github.com/joestar-dev/joestar/pkg/identity"
	"github.com/joestar-dev/joestar/pkg/joerr"
	"github.com/joestar-dev/joestar/pkg/protocol"
	"github.com/joestar-dev/joestar/pkg/render"
	"github.com/joestar-dev/joestar/pkg/vdom"
)

// View is one rendering surface and the document it shows.
//
// View methods may be called from any goroutine; document writes and the
// instructions they produce are serialized.
type View struct {
	rt     *Runtime
	spec   Spec
	logger *slog.Logger

	ids        *identity.Registry
	callbacks  *callback.Registry
	renderer   *render.Renderer
	dispatcher *dispatch.Dispatcher

	surface   Surface
	transport string

	mu     sync.Mutex // serializes writes and their instructions
	doc    atomic.Pointer[render.Document]
	closed atomic.Bool
}

// New opens a view on the current runtime.
func New(spec Spec) (*View, error) {
	rt := Current()
	if rt == nil {
		return nil, joerr.ErrNoRuntime
	}
	return rt.NewView(spec)
}

// NewView opens a view with an empty document. The surface is created on
// the loop goroutine; NewView waits for it.
func (r *Runtime) NewView(spec Spec) (*View, error) {
	select {
	case <-r.done:
		return nil, joerr.ErrRuntimeStopped
	default:
	}

	v := &View{
		rt:        r,
		spec:      spec,
		logger:    r.logger.With("view", spec.Title),
		ids:       identity.NewRegistry(),
		callbacks: callback.NewRegistry(),
	}
	v.renderer = render.NewRenderer(v.ids, v.callbacks)
	v.dispatcher = dispatch.New(v.ids, v.callbacks,
		dispatch.WithLogger(v.logger),
		dispatch.WithMetrics(r.config.Metrics),
	)

	var (
		surface Surface
		openErr error
	)
	if err := r.onLoop(func() {
		surface, openErr = r.driver.Open(spec, sink{v})
	}); err != nil {
		return nil, err
	}
	if openErr != nil {
		return nil, openErr
	}
	v.surface = surface
	v.transport = surface.Transport()

	if err := surface.Load(v.Page()); err != nil {
		v.surfaceError(err)
		return nil, err
	}
	r.track(v)
	return v, nil
}

// Spec returns the spec the view was opened with.
func (v *View) Spec() Spec {
	return v.spec
}

// Runtime returns the owning runtime.
func (v *View) Runtime() *Runtime {
	return v.rt
}

// Fill replaces the whole document with root. On error the previous
// document stays in place.
func (v *View) Fill(root vdom.Element) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed.Load() {
		return joerr.ErrViewClosed
	}

	doc, retired, err := v.renderer.Replace(v.doc.Load(), root)
	if err != nil {
		return err
	}
	v.callbacks.Release(retired...)
	v.doc.Store(doc)
	return v.send(doc.Fill())
}

// Root returns the root element of the document, or nil before the first
// Fill.
func (v *View) Root() *Handle {
	doc := v.doc.Load()
	if doc == nil || v.closed.Load() {
		return nil
	}
	h, _ := v.handle(doc, doc.Root())
	return h
}

// Lookup returns the element with the given identity.
func (v *View) Lookup(id string) (*Handle, error) {
	if v.closed.Load() {
		return nil, joerr.ErrViewClosed
	}
	doc := v.doc.Load()
	if doc == nil {
		return nil, joerr.Unknown("lookup", id)
	}
	h, ok := v.handle(doc, identity.ID(id))
	if !ok {
		return nil, joerr.Unknown("lookup", id)
	}
	return h, nil
}

// Document returns the current markup of the document body.
func (v *View) Document() string {
	doc := v.doc.Load()
	if doc == nil {
		return ""
	}
	return doc.Markup()
}

// Page returns the current document as a complete page.
func (v *View) Page() string {
	return render.PageData{
		Title:     v.spec.Title,
		Lang:      v.rt.config.Lang,
		Transport: v.transport,
		Styles:    v.rt.config.Styles,
	}.Render(v.doc.Load())
}

// SetTitle changes the window title.
func (v *View) SetTitle(title string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed.Load() {
		return joerr.ErrViewClosed
	}
	v.spec.Title = title
	return v.send(protocol.Instruction{Op: protocol.OpSetTitle, Value: title})
}

// Eval runs script in the document. The document mirror does not see its
// effects.
func (v *View) Eval(script string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed.Load() {
		return joerr.ErrViewClosed
	}
	return v.send(protocol.Instruction{Op: protocol.OpEval, Value: script})
}

// OnCloseRequest binds fn to the user asking to close the window. The
// window stays open unless fn destroys the view.
//
// A native window closed by the user is already gone when fn runs: the
// driver loop has ended and fn is the last event handled before Run
// returns.
func (v *View) OnCloseRequest(fn func()) error {
	return v.bindView(vdom.EventCloseRequest, func(callback.Event) { fn() })
}

// OnResize binds fn to the window being resized.
func (v *View) OnResize(fn func(width, height int)) error {
	return v.bindView(vdom.EventResize, func(ev callback.Event) {
		fn(atoi(ev.Data["width"]), atoi(ev.Data["height"]))
	})
}

// OnMove binds fn to the window being moved.
func (v *View) OnMove(fn func(x, y int)) error {
	return v.bindView(vdom.EventMove, func(ev callback.Event) {
		fn(atoi(ev.Data["x"]), atoi(ev.Data["y"]))
	})
}

// Unbind removes the view-level callback for kind.
func (v *View) Unbind(kind vdom.EventKind) bool {
	return v.callbacks.Unbind(protocol.ViewTarget, kind)
}

// Destroy closes the surface and releases every identity and callback.
// Events already queued for the view are dropped.
func (v *View) Destroy() error {
	if !v.release() {
		return joerr.ErrViewClosed
	}
	var closeErr error
	if err := v.rt.onLoop(func() {
		closeErr = v.surface.Close()
	}); err != nil {
		return nil
	}
	return closeErr
}

// Closed reports whether the view was destroyed.
func (v *View) Closed() bool {
	return v.closed.Load()
}

// release marks the view closed and clears its registries. It reports
// whether this call closed the view.
func (v *View) release() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.closed.CompareAndSwap(false, true) {
		return false
	}
	v.dispatcher.Close()
	v.callbacks.Clear()
	v.ids.RetireAll()
	v.doc.Store(nil)
	v.rt.untrack(v)
	return true
}

func (v *View) bindView(kind vdom.EventKind, fn func(callback.Event)) error {
	if !kind.IsViewEvent() {
		return ErrKindMismatch
	}
	if v.closed.Load() {
		return joerr.ErrViewClosed
	}
	v.callbacks.Bind(protocol.ViewTarget, 0, kind, callback.Func(fn))
	return nil
}

// handle returns a handle for id if it is part of doc.
func (v *View) handle(doc *render.Document, id identity.ID) (*Handle, bool) {
	n, ok := doc.Node(id)
	if !ok {
		return nil, false
	}
	return &Handle{view: v, id: id, gen: n.Gen}, true
}

// send applies ins to the surface. Callers hold v.mu.
func (v *View) send(ins protocol.Instruction) error {
	if err := v.surface.Apply(ins); err != nil {
		v.surfaceError(err)
		return err
	}
	v.rt.config.Metrics.RecordInstruction(string(ins.Op))
	return nil
}

func (v *View) surfaceError(err error) {
	if joerr.IsFatal(err) {
		v.rt.fail(err)
		return
	}
	var se *joerr.SurfaceError
	if errors.As(err, &se) {
		v.logger.Warn("surface error", "op", se.Op, "error", se.Err)
		return
	}
	v.logger.Warn("surface error", "error", err)
}

// sink delivers a surface's inbound messages to the host queue.
type sink struct {
	v *View
}

func (s sink) Deliver(raw []byte) error {
	v := s.v
	if v.closed.Load() {
		return joerr.ErrViewClosed
	}
	return v.rt.enqueue(func() {
		v.dispatcher.Dispatch(raw)
	}, false)
}

func (s sink) Page() string {
	return s.v.Page()
}

func (s sink) Markup() string {
	return s.v.Document()
}

func atoi(s string) int {
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return int(n)
}
