package demo

import (
	"bytes"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/joestar-dev/joestar/pkg/protocol"
	"github.com/joestar-dev/joestar/pkg/vdom"
	"github.com/joestar-dev/joestar/pkg/view"
	"github.com/joestar-dev/joestar/pkg/viewtest"
)

func TestTree(t *testing.T) {
	root := Tree()
	ids := map[string]bool{}
	root.Walk(func(e vdom.Element) bool {
		if e.ID != "" {
			ids[e.ID] = true
		}
		return true
	})
	for _, id := range []string{ButtonID, InputID, StatusID} {
		if !ids[id] {
			t.Errorf("tree has no element %q", id)
		}
	}
}

func TestMount(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))

	drv := viewtest.NewDriver()
	rt, err := view.NewRuntime(
		view.WithDriver(drv),
		view.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	if err != nil {
		t.Fatal(err)
	}

	quit := 0
	var v *view.View
	viewtest.Run(t, rt, func() {
		v, err = rt.NewView(view.Spec{Title: "Demo"})
		if err != nil {
			t.Errorf("NewView() error = %v", err)
			return
		}
		if err := Mount(v, logger, func() { quit++ }); err != nil {
			t.Errorf("Mount() error = %v", err)
			return
		}
		s := drv.Last()
		button, _ := v.Lookup(ButtonID)
		input, _ := v.Lookup(InputID)
		s.Click(button)
		s.Click(button)
		s.Type(input, "hi")
		s.ViewEvent(vdom.EventCloseRequest, nil)
	})

	out := logs.String()
	for _, want := range []string{"clicks=2", "value=hi", "close requested"} {
		if !strings.Contains(out, want) {
			t.Errorf("log missing %q:\n%s", want, out)
		}
	}
	if quit != 1 {
		t.Errorf("quit called %d times, want 1", quit)
	}
	if v == nil || !v.Closed() {
		t.Error("close request did not destroy the view")
	}

	var status bool
	for _, ins := range drv.Last().Instructions() {
		if ins.Op == protocol.OpSetText && ins.ID == StatusID && ins.Value == "clicked 2 times" {
			status = true
		}
	}
	if !status {
		t.Error("status text was not updated")
	}
}
