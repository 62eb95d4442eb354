// Package webview shows a view in a native window through the system
// webview (WebKitGTK, WebKit or WebView2). It requires cgo; without it the
// driver reports ErrUnavailable from Run.
//
// The platform gives one window per process, so the driver hosts one view
// at a time. Destroying that view frees the window for the next one.
package webview

import (
	"errors"
	"log/slog"
)

// BindingName is the native function the document calls to send a message.
const BindingName = "__joPost"

// ReadyBindingName is the native function the document calls once it has
// loaded and can take instructions.
const ReadyBindingName = "__joReady"

var (
	// ErrUnavailable is returned by Run in builds without cgo.
	ErrUnavailable = errors.New("webview: native webview requires cgo")

	// ErrWindowInUse is returned by Open while another view holds the
	// window.
	ErrWindowInUse = errors.New("webview: window already hosts a view")
)

// Config configures the webview driver.
type Config struct {
	// Debug enables the platform's developer tools.
	Debug bool

	// Width and Height size the window until a view's spec resizes it.
	// Default: 800x600
	Width  int
	Height int

	// Logger is the structured logger.
	// Default: slog.Default()
	Logger *slog.Logger
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Width:  800,
		Height: 600,
		Logger: slog.Default(),
	}
}

func (c *Config) withDefaults() *Config {
	d := DefaultConfig()
	if c == nil {
		return d
	}
	out := *c
	if out.Width <= 0 {
		out.Width = d.Width
	}
	if out.Height <= 0 {
		out.Height = d.Height
	}
	if out.Logger == nil {
		out.Logger = d.Logger
	}
	return &out
}

// transportScript forwards document messages to the native binding and
// reports when the document has loaded.
const transportScript = `window.__joSend = function (msg) { window.` + BindingName + `(msg); };
(function () {
  function ready() { window.` + ReadyBindingName + `(); }
  if (document.readyState === "loading") document.addEventListener("DOMContentLoaded", ready);
  else ready();
})();`
