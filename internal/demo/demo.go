// Package demo is the sample view shown by 'joestar run' and published by
// 'joestar render'.
package demo

import (
	"log/slog"
	"strconv"

	"github.com/joestar-dev/joestar/el"
	"github.com/joestar-dev/joestar/pkg/vdom"
	"github.com/joestar-dev/joestar/pkg/view"
)

// Identities of the interactive elements.
const (
	ButtonID = "button1"
	InputID  = "input1"
	StatusID = "status"
)

// Tree returns the demo element tree.
func Tree() vdom.Element {
	return el.VFlex(
		el.HFlex(
			el.H1("Hello World!").WithStyle("background-color", "blue"),
			el.Apply(el.P("This is a paragraph."), el.FlexFill()),
		),
		el.Apply(el.Div(),
			el.Width(el.Px(100)),
			el.Height(el.Px(100)),
			el.Style("background-color", "red"),
		),
		el.HFlex(
			el.Button(ButtonID, "Click me!"),
			el.Input(InputID, "text"),
		),
		el.Span("").WithID(StatusID),
	)
}

// Mount fills v with the demo tree and wires its handlers. A close request
// destroys the view and then calls quit.
func Mount(v *view.View, logger *slog.Logger, quit func()) error {
	if err := v.Fill(Tree()); err != nil {
		return err
	}

	button, err := v.Lookup(ButtonID)
	if err != nil {
		return err
	}
	input, err := v.Lookup(InputID)
	if err != nil {
		return err
	}
	status, err := v.Lookup(StatusID)
	if err != nil {
		return err
	}

	clicks := 0
	if err := button.OnClick(func(view.Event) {
		clicks++
		logger.Info("button clicked", "clicks", clicks)
		if err := status.SetText("clicked " + strconv.Itoa(clicks) + " times"); err != nil {
			logger.Warn("status update failed", "error", err)
		}
	}); err != nil {
		return err
	}

	if err := input.OnInput(func(ev view.Event) {
		logger.Info("input changed", "value", ev.Value())
	}); err != nil {
		return err
	}

	return v.OnCloseRequest(func() {
		logger.Info("close requested")
		if err := v.Destroy(); err != nil {
			logger.Warn("destroy failed", "error", err)
		}
		quit()
	})
}
