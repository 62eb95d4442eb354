package view

import "github.com/joestar-dev/joestar/pkg/protocol"

// Spec describes a view's window.
type Spec struct {
	Title  string
	Width  int
	Height int
}

// Driver is a native rendering platform.
//
// Run and Open are loop-affine: Run pumps the platform loop on the calling
// goroutine and Open is only called from functions passed to Dispatch.
// Dispatch and Terminate may be called from any goroutine.
type Driver interface {
	// Run pumps the loop until Terminate. ready is called once, on the
	// loop goroutine, when the driver can open surfaces.
	Run(ready func()) error

	// Dispatch schedules fn on the loop goroutine.
	Dispatch(fn func())

	// Open creates a surface for spec. Messages from the surface's
	// document go to sink.
	Open(spec Spec, sink Sink) (Surface, error)

	// Terminate stops the loop; Run returns.
	Terminate()
}

// Surface is one live document container.
//
// Apply may be called from any goroutine; implementations marshal the
// call onto their loop if the platform requires it. A returned error
// for which joerr.IsFatal reports true ends the runtime.
type Surface interface {
	// Transport returns an inline script that defines window.__joSend
	// for this surface.
	Transport() string

	// Load replaces the surface's page.
	Load(page string) error

	// Apply sends one instruction to the document.
	Apply(ins protocol.Instruction) error

	// Close disposes of the surface.
	Close() error
}

// Sink receives the inbound side of a surface.
type Sink interface {
	// Deliver queues a raw inbound message for dispatch on the host
	// goroutine. It never blocks.
	Deliver(raw []byte) error

	// Page returns the view's current document as a complete page, for
	// surfaces that (re)load it on demand.
	Page() string

	// Markup returns the body markup of the view's current document, for
	// surfaces that resynchronize a connected page with a fill.
	Markup() string
}
