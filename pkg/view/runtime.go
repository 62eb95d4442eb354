package view

import (
	"log/slog"
	"os"
	"runtime"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/joestar-dev/joestar/pkg/joerr"
)

// settleTimeout bounds how long Run waits for queued events after the
// loop ends without Terminate.
const settleTimeout = 2 * time.Second

// current is the runtime started by the most recent Run.
var current atomic.Pointer[Runtime]

// Current returns the running runtime, or nil.
func Current() *Runtime {
	return current.Load()
}

// Runtime owns the driver loop and the host goroutine.
type Runtime struct {
	config Config
	driver Driver
	logger *slog.Logger

	qmu     sync.Mutex
	pending []func()
	posted  int // pending tasks from Post
	wake    chan struct{}
	done    chan struct{}
	ended   chan struct{} // closed when the driver loop returns

	started    atomic.Bool
	hosting    atomic.Bool
	terminated atomic.Bool
	stopOnce   sync.Once
	termOnce   sync.Once

	mu    sync.Mutex
	views map[*View]struct{}
	err   error // first fatal surface error
}

// NewRuntime creates a runtime. A Driver is required.
func NewRuntime(opts ...Option) (*Runtime, error) {
	config := DefaultConfig()
	for _, opt := range opts {
		opt(&config)
	}
	if config.Driver == nil {
		return nil, ErrNoDriver
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if config.MaxEventQueue <= 0 {
		config.MaxEventQueue = DefaultConfig().MaxEventQueue
	}
	return &Runtime{
		config: config,
		driver: config.Driver,
		logger: config.Logger,
		wake:   make(chan struct{}, 1),
		done:   make(chan struct{}),
		ended:  make(chan struct{}),
		views:  make(map[*View]struct{}),
	}, nil
}

// Run pumps the driver loop on the calling goroutine, which is locked to
// its OS thread, and runs entry once on the host goroutine. It returns
// when the runtime terminates: nil after Terminate, or the fatal surface
// error that ended it.
//
// If the loop ends without Terminate, as when the user closes a native
// window, events already queued (such as the driver's close request) still
// run on the host goroutine before Run returns. Loop work fails with
// ErrRuntimeStopped at that point.
//
// A runtime runs at most once.
func (r *Runtime) Run(entry func()) error {
	if !r.started.CompareAndSwap(false, true) {
		return joerr.ErrRuntimeStopped
	}
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	current.Store(r)
	defer current.CompareAndSwap(r, nil)

	err := r.driver.Run(func() {
		r.hosting.Store(true)
		go r.host(entry)
	})
	close(r.ended)
	if r.hosting.Load() && !r.terminated.Load() {
		r.settle()
	}
	r.stop()
	r.closeViews()

	if fatal := r.fatal(); fatal != nil {
		return fatal
	}
	return err
}

// Post queues fn to run on the host goroutine after everything already
// queued. It never blocks. It fails with ErrEventQueueFull once
// MaxEventQueue posted tasks are pending.
func (r *Runtime) Post(fn func()) error {
	return r.enqueue(fn, true)
}

// Terminate stops the driver loop. Safe to call from any goroutine, any
// number of times.
func (r *Runtime) Terminate() {
	r.termOnce.Do(func() {
		r.terminated.Store(true)
		r.driver.Terminate()
	})
}

// Done is closed when the runtime has stopped.
func (r *Runtime) Done() <-chan struct{} {
	return r.done
}

// Logger returns the runtime's logger.
func (r *Runtime) Logger() *slog.Logger {
	return r.logger
}

// host runs entry, then serves the queue in FIFO order until the runtime
// stops.
func (r *Runtime) host(entry func()) {
	r.safely("entry", entry)
	for {
		select {
		case <-r.done:
			return
		case <-r.wake:
		}
		for batch := r.drain(); len(batch) > 0; batch = r.drain() {
			for _, fn := range batch {
				select {
				case <-r.done:
					return
				default:
				}
				r.safely("task", fn)
			}
		}
	}
}

// drain takes everything pending.
func (r *Runtime) drain() []func() {
	r.qmu.Lock()
	defer r.qmu.Unlock()
	batch := r.pending
	r.pending = nil
	return batch
}

func (r *Runtime) safely(what string, fn func()) {
	defer func() {
		if p := recover(); p != nil {
			r.logger.Error("host panic",
				"in", what,
				"panic", p,
				"stack", string(debug.Stack()))
		}
	}()
	fn()
}

// enqueue appends fn to the host queue. Inbound events are never
// refused; posted tasks are refused once MaxEventQueue of them wait.
func (r *Runtime) enqueue(fn func(), posted bool) error {
	select {
	case <-r.done:
		return joerr.ErrRuntimeStopped
	default:
	}
	r.qmu.Lock()
	if posted {
		if r.posted >= r.config.MaxEventQueue {
			r.qmu.Unlock()
			r.logger.Warn("host queue full, refusing task", "posted", r.posted)
			return ErrEventQueueFull
		}
		r.posted++
		task := fn
		fn = func() {
			r.qmu.Lock()
			r.posted--
			r.qmu.Unlock()
			task()
		}
	}
	r.pending = append(r.pending, fn)
	r.qmu.Unlock()
	select {
	case r.wake <- struct{}{}:
	default:
	}
	return nil
}

// onLoop runs fn on the loop goroutine and waits for it.
func (r *Runtime) onLoop(fn func()) error {
	finished := make(chan struct{})
	r.driver.Dispatch(func() {
		defer close(finished)
		fn()
	})
	select {
	case <-finished:
		return nil
	case <-r.ended:
		return joerr.ErrRuntimeStopped
	}
}

// settle waits until the host has run everything queued so far, or
// settleTimeout passes.
func (r *Runtime) settle() {
	drained := make(chan struct{})
	if err := r.enqueue(func() { close(drained) }, false); err != nil {
		return
	}
	timer := time.NewTimer(settleTimeout)
	defer timer.Stop()
	select {
	case <-drained:
	case <-timer.C:
		r.logger.Warn("host did not settle after the loop ended", "timeout", settleTimeout)
	}
}

// fail records a fatal surface error and terminates the runtime.
func (r *Runtime) fail(err error) {
	r.mu.Lock()
	if r.err == nil {
		r.err = err
	}
	r.mu.Unlock()
	r.logger.Error("surface failed", "error", err)
	r.Terminate()
}

func (r *Runtime) fatal() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

func (r *Runtime) stop() {
	r.stopOnce.Do(func() {
		close(r.done)
	})
}

func (r *Runtime) track(v *View) {
	r.mu.Lock()
	r.views[v] = struct{}{}
	r.mu.Unlock()
	r.config.Metrics.ViewOpened()
}

func (r *Runtime) untrack(v *View) {
	r.mu.Lock()
	_, ok := r.views[v]
	delete(r.views, v)
	r.mu.Unlock()
	if ok {
		r.config.Metrics.ViewClosed()
	}
}

// closeViews releases every view still open when the loop ended. The
// surfaces went away with the loop.
func (r *Runtime) closeViews() {
	r.mu.Lock()
	views := make([]*View, 0, len(r.views))
	for v := range r.views {
		views = append(views, v)
	}
	r.mu.Unlock()
	for _, v := range views {
		v.release()
	}
}

// Views returns the number of open views.
func (r *Runtime) Views() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.views)
}

// LaunchRuntime runs entry in a new runtime and exits the process when the
// runtime ends: status 0 after Terminate, 1 if a surface failed or the
// runtime could not start.
func LaunchRuntime(entry func(), opts ...Option) {
	rt, err := NewRuntime(opts...)
	if err != nil {
		slog.Error("runtime setup failed", "error", err)
		os.Exit(1)
	}
	if err := rt.Run(entry); err != nil {
		rt.logger.Error("runtime stopped", "error", err)
		os.Exit(1)
	}
	os.Exit(0)
}
