// Package joestar is the host API of the element bridge: build an element
// tree, fill a view with it, then drive the view through handles.
//
// This is the recommended import for most programs:
//
//	import (
//	    "github.com/joestar-dev/joestar"
//	    . "github.com/joestar-dev/joestar/el"
//	)
//
//	func main() {
//	    joestar.LaunchRuntime(func() {
//	        v, err := joestar.New(joestar.Spec{Title: "Demo", Width: 800, Height: 600})
//	        if err != nil {
//	            slog.Error("open view", "error", err)
//	            joestar.Terminate()
//	            return
//	        }
//	        v.Fill(VFlex(Button("go", "Go")))
//	        b, _ := v.Lookup("go")
//	        b.OnClick(func(joestar.Event) { b.SetStyle("color", "red") })
//	        v.OnCloseRequest(func() { v.Destroy(); joestar.Terminate() })
//	    })
//	}
//
// LaunchRuntime uses the native webview driver. Pass WithDriver to use
// another surface, such as the browser driver in pkg/driver/browser.
package joestar

import (
	"github.com/joestar-dev/joestar/pkg/driver/webview"
	"github.com/joestar-dev/joestar/pkg/joerr"
	"github.com/joestar-dev/joestar/pkg/vdom"
	"github.com/joestar-dev/joestar/pkg/view"
)

// =============================================================================
// Views
// =============================================================================

// Spec describes a view's window.
type Spec = view.Spec

// View is one window and its document.
type View = view.View

// Handle addresses one live element of a view.
type Handle = view.Handle

// Event is what element callbacks receive.
type Event = view.Event

// Element is an immutable element tree node.
type Element = vdom.Element

// EventKind names a UI event.
type EventKind = vdom.EventKind

// New opens a view in the current runtime. Call it from the function passed
// to LaunchRuntime or from a callback.
func New(spec Spec) (*View, error) {
	return view.New(spec)
}

// =============================================================================
// Runtime
// =============================================================================

// Runtime owns the driver loop and the host goroutine.
type Runtime = view.Runtime

// Option configures a Runtime.
type Option = view.Option

var (
	WithDriver        = view.WithDriver
	WithLogger        = view.WithLogger
	WithMetrics       = view.WithMetrics
	WithMaxEventQueue = view.WithMaxEventQueue
	WithStyles        = view.WithStyles
)

// NewRuntime creates a runtime. Unlike LaunchRuntime it has no default
// driver.
func NewRuntime(opts ...Option) (*Runtime, error) {
	return view.NewRuntime(opts...)
}

// LaunchRuntime runs entry once on the host goroutine and pumps the native
// loop until the runtime terminates, then exits the process. The exit code
// is 0 after Terminate and 1 when the surface failed.
func LaunchRuntime(entry func(), opts ...Option) {
	opts = append([]Option{view.WithDriver(webview.New(nil))}, opts...)
	view.LaunchRuntime(entry, opts...)
}

// Terminate stops the current runtime. It is a no-op outside a runtime.
func Terminate() {
	if rt := view.Current(); rt != nil {
		rt.Terminate()
	}
}

// Post queues fn on the current runtime's host goroutine.
func Post(fn func()) error {
	rt := view.Current()
	if rt == nil {
		return joerr.ErrNoRuntime
	}
	return rt.Post(fn)
}

// =============================================================================
// Errors
// =============================================================================

var (
	ErrUnknownIdentity   = joerr.ErrUnknownIdentity
	ErrDuplicateIdentity = joerr.ErrDuplicateIdentity
	ErrMalformedEvent    = joerr.ErrMalformedEvent
	ErrSurfaceFatal      = joerr.ErrSurfaceFatal
	ErrViewClosed        = joerr.ErrViewClosed
	ErrNoRuntime         = joerr.ErrNoRuntime
	ErrRuntimeStopped    = joerr.ErrRuntimeStopped
	ErrEventQueueFull    = view.ErrEventQueueFull
)
