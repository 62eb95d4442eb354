// Package browser serves views to an ordinary web browser.
//
// Each view gets a URL under /views/{viewID}. The page carries the current
// document; instructions and events travel over a socket at
// /views/{viewID}/ws. The driver also serves Prometheus metrics at /metrics.
//
// The driver's loop is a task queue pumped by Run, so the runtime's
// loop-affinity rules hold the same way they do for native drivers.
package browser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/joestar-dev/joestar/pkg/view"
)

// Driver is a view.Driver backed by an HTTP server.
type Driver struct {
	config   *Config
	logger   *slog.Logger
	router   chi.Router
	upgrader websocket.Upgrader

	tasks    chan func()
	stop     chan struct{}
	stopOnce sync.Once

	mu       sync.Mutex
	surfaces map[string]*Surface
	order    []string
	addr     string
}

// New creates a browser driver. A nil config uses DefaultConfig.
func New(config *Config) *Driver {
	config = config.withDefaults()
	d := &Driver{
		config: config,
		logger: config.Logger.With("driver", "browser"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  config.ReadBufferSize,
			WriteBufferSize: config.WriteBufferSize,
			CheckOrigin:     config.CheckOrigin,
		},
		tasks:    make(chan func(), 64),
		stop:     make(chan struct{}),
		surfaces: make(map[string]*Surface),
	}
	d.router = d.routes()
	return d
}

func (d *Driver) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/", d.handleIndex)
	r.Route("/views/{viewID}", func(r chi.Router) {
		r.Use(middleware.NoCache)
		r.Get("/", d.handlePage)
		r.Get("/ws", d.handleSocket)
	})
	if d.config.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(d.config.Gatherer, promhttp.HandlerOpts{}))
	}
	return r
}

// Handler returns the driver's HTTP handler.
func (d *Driver) Handler() http.Handler {
	return d.router
}

// Addr returns the address the driver listens on once Run has started.
func (d *Driver) Addr() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.addr
}

// Run implements view.Driver. It listens on Config.Address, calls ready,
// and pumps loop tasks until Terminate.
func (d *Driver) Run(ready func()) error {
	ln, err := net.Listen("tcp", d.config.Address)
	if err != nil {
		return fmt.Errorf("browser: listen: %w", err)
	}
	d.mu.Lock()
	d.addr = ln.Addr().String()
	d.mu.Unlock()

	srv := &http.Server{Handler: d.router}
	errCh := make(chan error, 1)
	go func() {
		d.logger.Info("serving views", "address", "http://"+ln.Addr().String())
		errCh <- srv.Serve(ln)
	}()

	ready()

	var serveErr error
loop:
	for {
		select {
		case <-d.stop:
			break loop
		case fn := <-d.tasks:
			fn()
		case serveErr = <-errCh:
			break loop
		}
	}

	d.closeAll()
	ctx, cancel := context.WithTimeout(context.Background(), d.config.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		d.logger.Error("shutdown error", "error", err)
	}
	if serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
		return fmt.Errorf("browser: serve: %w", serveErr)
	}
	return nil
}

// Dispatch implements view.Driver.
func (d *Driver) Dispatch(fn func()) {
	select {
	case d.tasks <- fn:
	case <-d.stop:
	}
}

// Terminate implements view.Driver.
func (d *Driver) Terminate() {
	d.stopOnce.Do(func() { close(d.stop) })
}

// Open implements view.Driver.
func (d *Driver) Open(spec view.Spec, sink view.Sink) (view.Surface, error) {
	s := &Surface{
		id:      uuid.NewString(),
		spec:    spec,
		sink:    sink,
		driver:  d,
		clients: make(map[*client]struct{}),
	}
	d.mu.Lock()
	d.surfaces[s.id] = s
	d.order = append(d.order, s.id)
	addr := d.addr
	d.mu.Unlock()

	d.logger.Info("view opened", "view_id", s.id, "title", spec.Title, "url", "http://"+addr+s.Path())
	return s, nil
}

func (d *Driver) surface(id string) (*Surface, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	s, ok := d.surfaces[id]
	return s, ok
}

func (d *Driver) forget(id string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.surfaces, id)
	for i, o := range d.order {
		if o == id {
			d.order = append(d.order[:i:i], d.order[i+1:]...)
			break
		}
	}
}

func (d *Driver) closeAll() {
	d.mu.Lock()
	surfaces := make([]*Surface, 0, len(d.surfaces))
	for _, s := range d.surfaces {
		surfaces = append(surfaces, s)
	}
	d.mu.Unlock()
	for _, s := range surfaces {
		s.Close()
	}
}

// handleIndex redirects to the first open view.
func (d *Driver) handleIndex(w http.ResponseWriter, r *http.Request) {
	d.mu.Lock()
	var first string
	if len(d.order) > 0 {
		first = d.order[0]
	}
	d.mu.Unlock()

	if first == "" {
		http.Error(w, "no open views", http.StatusNotFound)
		return
	}
	http.Redirect(w, r, "/views/"+first, http.StatusFound)
}

func (d *Driver) handlePage(w http.ResponseWriter, r *http.Request) {
	s, ok := d.surface(chi.URLParam(r, "viewID"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := w.Write([]byte(s.sink.Page())); err != nil {
		d.logger.Debug("page write failed", "error", err)
	}
}

func (d *Driver) handleSocket(w http.ResponseWriter, r *http.Request) {
	s, ok := d.surface(chi.URLParam(r, "viewID"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	conn, err := d.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied.
		d.logger.Warn("socket upgrade failed", "error", err)
		return
	}
	c := newClient(s, conn)
	d.config.Metrics.Connected()
	ok, err = s.attach(c)
	if err != nil {
		d.logger.Error("initial fill failed", "view_id", s.id, "error", err)
		d.config.Metrics.Disconnected()
		c.closeWith(websocket.CloseInternalServerErr, "fill failed")
		return
	}
	if !ok {
		d.config.Metrics.Disconnected()
		c.closeWith(websocket.CloseNormalClosure, "view closed")
		return
	}
	go c.writeLoop()
	c.readLoop()
}
