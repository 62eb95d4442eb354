//go:build !cgo

package webview

import (
	"log/slog"

	"github.com/joestar-dev/joestar/pkg/joerr"
	"github.com/joestar-dev/joestar/pkg/view"
)

// Driver is a placeholder in builds without cgo: Run fails immediately.
type Driver struct {
	config *Config
	logger *slog.Logger
}

// New creates a webview driver. A nil config uses DefaultConfig.
func New(config *Config) *Driver {
	config = config.withDefaults()
	return &Driver{config: config, logger: config.Logger.With("driver", "webview")}
}

// Run implements view.Driver.
func (d *Driver) Run(func()) error {
	return joerr.Fatal("run", ErrUnavailable)
}

// Dispatch implements view.Driver.
func (d *Driver) Dispatch(func()) {}

// Terminate implements view.Driver.
func (d *Driver) Terminate() {}

// Open implements view.Driver.
func (d *Driver) Open(view.Spec, view.Sink) (view.Surface, error) {
	return nil, joerr.Fatal("open", ErrUnavailable)
}
