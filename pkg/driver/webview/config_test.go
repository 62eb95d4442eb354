package webview

import (
	"strings"
	"testing"
)

func TestConfigDefaults(t *testing.T) {
	tests := []struct {
		name string
		in   *Config
		w, h int
	}{
		{"nil", nil, 800, 600},
		{"zero", &Config{}, 800, 600},
		{"custom", &Config{Width: 1024, Height: 768}, 1024, 768},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := tt.in.withDefaults()
			if c.Width != tt.w || c.Height != tt.h {
				t.Errorf("size = %dx%d, want %dx%d", c.Width, c.Height, tt.w, tt.h)
			}
			if c.Logger == nil {
				t.Error("Logger = nil")
			}
		})
	}
}

func TestTransportCallsBinding(t *testing.T) {
	if !strings.Contains(transportScript, "window.__joSend") {
		t.Error("transport does not define window.__joSend")
	}
	for _, call := range []string{"window." + BindingName + "(msg)", "window." + ReadyBindingName + "()", "DOMContentLoaded"} {
		if !strings.Contains(transportScript, call) {
			t.Errorf("transport = %q, want %s", transportScript, call)
		}
	}
}
