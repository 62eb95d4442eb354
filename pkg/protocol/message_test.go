package protocol

import (
	"errors"
	"strings"
	"testing"

	"github.com/joestar-dev/joestar/pkg/joerr"
	"github.com/joestar-dev/joestar/pkg/vdom"
)

func TestDecodeEvent(t *testing.T) {
	t.Run("click", func(t *testing.T) {
		ev, err := DecodeEvent([]byte(`{"id":"button1","gen":3,"kind":"click","data":{"x":10,"y":4.5,"shift":true}}`))
		if err != nil {
			t.Fatalf("DecodeEvent() error = %v", err)
		}
		if ev.ID != "button1" || ev.Gen != 3 || ev.Kind != vdom.EventClick {
			t.Errorf("got %+v", ev)
		}
		if ev.Data["x"] != "10" || ev.Data["y"] != "4.5" || ev.Data["shift"] != "true" {
			t.Errorf("Data = %v", ev.Data)
		}
	})

	t.Run("view event", func(t *testing.T) {
		ev, err := DecodeEvent([]byte(`{"id":"@view","kind":"resize","data":{"width":"800","height":"600"}}`))
		if err != nil {
			t.Fatalf("DecodeEvent() error = %v", err)
		}
		if ev.ID != ViewTarget || ev.Kind != vdom.EventResize {
			t.Errorf("got %+v", ev)
		}
	})

	malformedCases := []struct {
		name string
		raw  string
	}{
		{"empty", ``},
		{"not json", `click button1`},
		{"unknown kind", `{"id":"a","gen":1,"kind":"explode"}`},
		{"missing gen", `{"id":"button1","kind":"click"}`},
		{"null gen", `{"id":"button1","gen":null,"kind":"click"}`},
		{"negative gen", `{"id":"button1","gen":-1,"kind":"click"}`},
		{"missing id", `{"kind":"click"}`},
		{"view kind on element", `{"id":"a","kind":"resize"}`},
		{"element kind on view", `{"id":"@view","kind":"click"}`},
		{"wrong type", `{"id":5,"kind":"click"}`},
	}
	for _, tc := range malformedCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := DecodeEvent([]byte(tc.raw))
			if !errors.Is(err, joerr.ErrMalformedEvent) {
				t.Errorf("err = %v, want ErrMalformedEvent", err)
			}
		})
	}

	t.Run("oversized", func(t *testing.T) {
		raw := `{"id":"a","kind":"input","data":{"value":"` + strings.Repeat("x", MaxMessageSize) + `"}}`
		if _, err := DecodeEvent([]byte(raw)); !errors.Is(err, joerr.ErrMalformedEvent) {
			t.Errorf("err = %v, want ErrMalformedEvent", err)
		}
	})
}

func TestEncodeEvent(t *testing.T) {
	tests := []struct {
		name string
		ev   Event
		want string
	}{
		{"element event keeps zero gen", Event{ID: "a", Kind: vdom.EventClick}, `{"id":"a","gen":0,"kind":"click"}`},
		{"view event has no gen", Event{ID: ViewTarget, Kind: vdom.EventResize}, `{"id":"@view","kind":"resize"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := EncodeEvent(&tt.ev)
			if err != nil {
				t.Fatalf("EncodeEvent() error = %v", err)
			}
			if string(raw) != tt.want {
				t.Errorf("EncodeEvent() = %s, want %s", raw, tt.want)
			}
		})
	}

	raw, err := EncodeEvent(&Event{ID: "input1", Gen: 9, Kind: vdom.EventInput, Data: map[string]string{"value": "hi"}})
	if err != nil {
		t.Fatalf("EncodeEvent() error = %v", err)
	}
	ev, err := DecodeEvent(raw)
	if err != nil {
		t.Fatalf("DecodeEvent() error = %v", err)
	}
	if ev.ID != "input1" || ev.Gen != 9 || ev.Kind != vdom.EventInput || ev.Data["value"] != "hi" {
		t.Errorf("got %+v", ev)
	}
}
