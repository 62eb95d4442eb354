//go:build cgo

package webview

import (
	"log/slog"
	"sync"

	webview "github.com/webview/webview_go"

	"github.com/joestar-dev/joestar/pkg/joerr"
	"github.com/joestar-dev/joestar/pkg/protocol"
	"github.com/joestar-dev/joestar/pkg/vdom"
	"github.com/joestar-dev/joestar/pkg/view"
)

// Driver is a view.Driver backed by one native webview window.
type Driver struct {
	config *Config
	logger *slog.Logger

	mu         sync.Mutex
	w          webview.WebView
	current    *surface
	terminated bool
}

// New creates a webview driver. A nil config uses DefaultConfig.
func New(config *Config) *Driver {
	config = config.withDefaults()
	return &Driver{
		config: config,
		logger: config.Logger.With("driver", "webview"),
	}
}

// Run implements view.Driver. It creates the window and pumps the platform
// loop until Terminate or the user closes the window. In the latter case
// the hosted view is sent a close request before Run returns; the window
// is already gone when it is handled.
func (d *Driver) Run(ready func()) error {
	w := webview.New(d.config.Debug)
	if w == nil {
		return joerr.Fatal("run", ErrUnavailable)
	}
	defer w.Destroy()

	w.SetSize(d.config.Width, d.config.Height, webview.HintNone)
	if err := w.Bind(BindingName, d.post); err != nil {
		return joerr.Fatal("bind", err)
	}
	if err := w.Bind(ReadyBindingName, d.pageReady); err != nil {
		return joerr.Fatal("bind", err)
	}

	d.mu.Lock()
	d.w = w
	d.mu.Unlock()

	w.Dispatch(ready)
	w.Run()

	d.mu.Lock()
	closedByUser := !d.terminated
	d.terminated = true
	d.w = nil
	s := d.current
	d.mu.Unlock()

	if closedByUser && s != nil {
		d.logger.Info("window closed by user")
		raw, err := protocol.EncodeEvent(&protocol.Event{ID: protocol.ViewTarget, Kind: vdom.EventCloseRequest})
		if err == nil {
			err = s.sink.Deliver(raw)
		}
		if err != nil {
			d.logger.Warn("close request not delivered", "error", err)
		}
	}
	return nil
}

// Dispatch implements view.Driver.
func (d *Driver) Dispatch(fn func()) {
	d.mu.Lock()
	w, terminated := d.w, d.terminated
	d.mu.Unlock()
	if w == nil || terminated {
		return
	}
	w.Dispatch(fn)
}

// Terminate implements view.Driver.
func (d *Driver) Terminate() {
	d.mu.Lock()
	w := d.w
	already := d.terminated
	d.terminated = true
	d.mu.Unlock()
	if w != nil && !already {
		w.Terminate()
	}
}

// Open implements view.Driver. It must run on the loop goroutine.
func (d *Driver) Open(spec view.Spec, sink view.Sink) (view.Surface, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.w == nil {
		return nil, joerr.Fatal("open", ErrUnavailable)
	}
	if d.current != nil {
		return nil, &joerr.SurfaceError{Op: "open", Err: ErrWindowInUse}
	}

	if spec.Title != "" {
		d.w.SetTitle(spec.Title)
	}
	if spec.Width > 0 && spec.Height > 0 {
		d.w.SetSize(spec.Width, spec.Height, webview.HintNone)
	}
	s := &surface{driver: d, sink: sink}
	d.current = s
	d.logger.Info("view opened", "title", spec.Title)
	return s, nil
}

// post receives messages from the document, on the loop goroutine.
func (d *Driver) post(msg string) {
	d.mu.Lock()
	s := d.current
	d.mu.Unlock()
	if s == nil {
		return
	}
	if err := s.sink.Deliver([]byte(msg)); err != nil {
		d.logger.Warn("event not delivered", "error", err)
	}
}

// pageReady runs when the current page has loaded. Instructions held
// since the last Load are evaluated in order.
func (d *Driver) pageReady() {
	d.mu.Lock()
	s, w := d.current, d.w
	d.mu.Unlock()
	if s == nil || w == nil {
		return
	}
	for _, script := range s.gate.release() {
		w.Eval(script)
	}
}

// onLoop runs fn against the window on the loop goroutine.
func (d *Driver) onLoop(op string, fn func(w webview.WebView)) error {
	d.mu.Lock()
	w, terminated := d.w, d.terminated
	d.mu.Unlock()
	if w == nil || terminated {
		return &joerr.SurfaceError{Op: op, Err: joerr.ErrViewClosed}
	}
	w.Dispatch(func() { fn(w) })
	return nil
}

// surface is the view currently shown in the window.
type surface struct {
	driver *Driver
	sink   view.Sink
	gate   gate

	mu     sync.Mutex
	closed bool
}

func (s *surface) Transport() string {
	return transportScript
}

func (s *surface) Load(page string) error {
	if s.isClosed() {
		return &joerr.SurfaceError{Op: "load", Err: joerr.ErrViewClosed}
	}
	return s.driver.onLoop("load", func(w webview.WebView) {
		s.gate.reset()
		w.SetHtml(page)
	})
}

func (s *surface) Apply(ins protocol.Instruction) error {
	if s.isClosed() {
		return &joerr.SurfaceError{Op: "apply", Err: joerr.ErrViewClosed}
	}
	script := ins.Script()
	return s.driver.onLoop("apply", func(w webview.WebView) {
		if ins.Op == protocol.OpSetTitle {
			w.SetTitle(ins.Value)
		}
		if s.gate.admit(script) {
			w.Eval(script)
		}
	})
}

func (s *surface) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	s.driver.mu.Lock()
	if s.driver.current == s {
		s.driver.current = nil
	}
	w := s.driver.w
	s.driver.mu.Unlock()
	s.gate.reset()
	if w != nil {
		w.SetHtml("")
	}
	return nil
}

func (s *surface) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
