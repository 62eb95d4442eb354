package joestar_test

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/joestar-dev/joestar"
	"github.com/joestar-dev/joestar/el"
	"github.com/joestar-dev/joestar/pkg/viewtest"
)

func TestOutsideRuntime(t *testing.T) {
	if _, err := joestar.New(joestar.Spec{Title: "x"}); !errors.Is(err, joestar.ErrNoRuntime) {
		t.Errorf("New() error = %v, want ErrNoRuntime", err)
	}
	if err := joestar.Post(func() {}); !errors.Is(err, joestar.ErrNoRuntime) {
		t.Errorf("Post() error = %v, want ErrNoRuntime", err)
	}
	joestar.Terminate()
}

func TestFacade(t *testing.T) {
	drv := viewtest.NewDriver()
	rt, err := joestar.NewRuntime(
		joestar.WithDriver(drv),
		joestar.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	if err != nil {
		t.Fatal(err)
	}

	var (
		color   string
		posted  bool
		lookErr error
	)
	viewtest.Run(t, rt, func() {
		v, err := joestar.New(joestar.Spec{Title: "Facade", Width: 320, Height: 240})
		if err != nil {
			t.Errorf("New() error = %v", err)
			return
		}
		if err := v.Fill(el.VFlex(el.Button("go", "Go"))); err != nil {
			t.Errorf("Fill() error = %v", err)
			return
		}
		b, err := v.Lookup("go")
		if err != nil {
			t.Errorf("Lookup() error = %v", err)
			return
		}
		b.OnClick(func(ev joestar.Event) {
			color = "red"
			ev.Target.SetStyle("color", color)
		})
		drv.Last().Click(b)
		joestar.Post(func() { posted = true })
		_, lookErr = v.Lookup("missing")
	})

	if color != "red" {
		t.Error("click callback did not run")
	}
	if !posted {
		t.Error("posted function did not run")
	}
	if !errors.Is(lookErr, joestar.ErrUnknownIdentity) {
		t.Errorf("Lookup(missing) error = %v, want ErrUnknownIdentity", lookErr)
	}
}
