package protocol

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/joestar-dev/joestar/pkg/identity"
	"github.com/joestar-dev/joestar/pkg/joerr"
	"github.com/joestar-dev/joestar/pkg/vdom"
)

// ViewTarget is the identity used by view-level events.
const ViewTarget identity.ID = "@view"

// Event is a decoded inbound UI event.
type Event struct {
	ID   identity.ID
	Gen  uint64
	Kind vdom.EventKind
	Data map[string]string
}

type wireEvent struct {
	ID   string         `json:"id"`
	Gen  *uint64        `json:"gen,omitempty"`
	Kind string         `json:"kind"`
	Data map[string]any `json:"data,omitempty"`
}

// DecodeEvent parses one inbound message. Every failure wraps
// joerr.ErrMalformedEvent.
func DecodeEvent(raw []byte) (*Event, error) {
	if len(raw) == 0 {
		return nil, malformed("empty message")
	}
	if len(raw) > MaxMessageSize {
		return nil, malformed("message of %d bytes exceeds limit", len(raw))
	}

	var w wireEvent
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, fmt.Errorf("%w: %v", joerr.ErrMalformedEvent, err)
	}

	kind, ok := vdom.ParseEventKind(w.Kind)
	if !ok {
		return nil, malformed("unknown event kind %q", w.Kind)
	}
	if w.ID == "" {
		return nil, malformed("missing id")
	}
	if len(w.ID) > MaxIdentityLength {
		return nil, malformed("id exceeds %d bytes", MaxIdentityLength)
	}
	if kind.IsViewEvent() != (identity.ID(w.ID) == ViewTarget) {
		return nil, malformed("event kind %s cannot target %q", kind, w.ID)
	}
	var gen uint64
	if !kind.IsViewEvent() {
		if w.Gen == nil {
			return nil, malformed("missing gen for %q", w.ID)
		}
		gen = *w.Gen
	}
	if len(w.Data) > MaxDataEntries {
		return nil, malformed("payload has %d entries", len(w.Data))
	}

	ev := &Event{
		ID:   identity.ID(w.ID),
		Gen:  gen,
		Kind: kind,
		Data: make(map[string]string, len(w.Data)),
	}
	for k, v := range w.Data {
		ev.Data[k] = dataString(v)
	}
	return ev, nil
}

// EncodeEvent produces the wire form of ev. Surfaces and tests use it to
// synthesize inbound messages.
func EncodeEvent(ev *Event) ([]byte, error) {
	w := wireEvent{
		ID:   string(ev.ID),
		Kind: ev.Kind.String(),
	}
	if !ev.Kind.IsViewEvent() {
		gen := ev.Gen
		w.Gen = &gen
	}
	if len(ev.Data) > 0 {
		w.Data = make(map[string]any, len(ev.Data))
		for k, v := range ev.Data {
			w.Data[k] = v
		}
	}
	return json.Marshal(w)
}

// dataString flattens a JSON payload value to its string form.
func dataString(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(b)
	}
}

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", joerr.ErrMalformedEvent, fmt.Sprintf(format, args...))
}
