package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/joestar-dev/joestar/internal/config"
	"github.com/joestar-dev/joestar/internal/demo"
	"github.com/joestar-dev/joestar/internal/errors"
	"github.com/joestar-dev/joestar/pkg/driver/browser"
	"github.com/joestar-dev/joestar/pkg/driver/webview"
	"github.com/joestar-dev/joestar/pkg/metrics"
	"github.com/joestar-dev/joestar/pkg/view"
)

type runOptions struct {
	driver  string
	address string
	title   string
	width   int
	height  int
	queue   int
	debug   bool
}

func runCmd(opts *options) *cobra.Command {
	ro := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Open the demo view",
		Long: `Open the demo view in a native window, or serve it to a browser tab
with --driver browser. Closing the window ends the command.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ro.overlay(cmd, opts.cfg)
			if err := opts.cfg.Validate(); err != nil {
				return err
			}
			return run(cmd.Context(), opts.cfg)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&ro.driver, "driver", "d", "", "surface driver: webview or browser")
	flags.StringVarP(&ro.address, "address", "a", "", "listen address for the browser driver")
	flags.StringVar(&ro.title, "title", "", "window title")
	flags.IntVar(&ro.width, "width", 0, "window width")
	flags.IntVar(&ro.height, "height", 0, "window height")
	flags.IntVar(&ro.queue, "queue", 0, "pending posted task limit")
	flags.BoolVar(&ro.debug, "debug", false, "enable webview developer tools")

	return cmd
}

// overlay applies the flags the user set on top of cfg.
func (ro *runOptions) overlay(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("driver") {
		cfg.Driver = ro.driver
	}
	if flags.Changed("address") {
		cfg.Browser.Address = ro.address
	}
	if flags.Changed("title") {
		cfg.Window.Title = ro.title
	}
	if flags.Changed("width") {
		cfg.Window.Width = ro.width
	}
	if flags.Changed("height") {
		cfg.Window.Height = ro.height
	}
	if flags.Changed("queue") {
		cfg.Events.Queue = ro.queue
	}
	if flags.Changed("debug") {
		cfg.Debug = ro.debug
	}
}

func newDriver(cfg *config.Config, logger *slog.Logger, m *metrics.Metrics) (view.Driver, error) {
	switch cfg.Driver {
	case config.DriverBrowser:
		return browser.New(&browser.Config{
			Address: cfg.Browser.Address,
			Logger:  logger,
			Metrics: m,
		}), nil
	case config.DriverWebview:
		return webview.New(&webview.Config{
			Debug:  cfg.Debug,
			Width:  cfg.Window.Width,
			Height: cfg.Window.Height,
			Logger: logger,
		}), nil
	default:
		return nil, errors.New("J120").WithDetail("driver \"" + cfg.Driver + "\" is not supported")
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	if ctx == nil {
		ctx = context.Background()
	}
	logger := slog.Default()
	m := metrics.Default()

	drv, err := newDriver(cfg, logger, m)
	if err != nil {
		return err
	}
	rt, err := view.NewRuntime(
		view.WithDriver(drv),
		view.WithLogger(logger),
		view.WithMetrics(m),
		view.WithMaxEventQueue(cfg.Events.Queue),
	)
	if err != nil {
		return errors.FromError(err, "J160")
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		select {
		case <-ctx.Done():
			logger.Info("signal received, stopping")
			rt.Terminate()
		case <-rt.Done():
		}
	}()

	spec := view.Spec{
		Title:  cfg.Window.Title,
		Width:  cfg.Window.Width,
		Height: cfg.Window.Height,
	}
	err = rt.Run(func() {
		v, err := rt.NewView(spec)
		if err != nil {
			logger.Error("open view failed", "error", err)
			rt.Terminate()
			return
		}
		if err := demo.Mount(v, logger, rt.Terminate); err != nil {
			logger.Error("mount demo failed", "error", err)
			rt.Terminate()
		}
	})
	if err != nil {
		return errors.New("J160").Wrap(err)
	}
	return nil
}
