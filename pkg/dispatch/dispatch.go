// Package dispatch routes inbound surface messages to host callbacks.
//
// A Dispatcher handles one message at a time:
//
//	Idle → Decoding → Resolving → Invoking → Idle
//
// Malformed messages are logged and dropped. Events for retired
// identities, stale generations or unbound kinds are dropped silently.
// A panicking callback is recovered and logged; dispatch continues with
// the next message.
package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/joestar-dev/joestar/pkg/callback"
	"github.com/joestar-dev/joestar/pkg/identity"
	"github.com/joestar-dev/joestar/pkg/protocol"
	"github.com/joestar-dev/joestar/pkg/vdom"
)

// State is the dispatcher's position in the per-message cycle.
type State int32

const (
	StateIdle State = iota
	StateDecoding
	StateResolving
	StateInvoking
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateDecoding:
		return "decoding"
	case StateResolving:
		return "resolving"
	case StateInvoking:
		return "invoking"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// Outcome reports what happened to one message.
type Outcome int

const (
	OutcomeInvoked Outcome = iota
	OutcomeDropped
	OutcomeMalformed
	OutcomePanicked
)

func (o Outcome) String() string {
	switch o {
	case OutcomeInvoked:
		return "invoked"
	case OutcomeDropped:
		return "dropped"
	case OutcomeMalformed:
		return "malformed"
	case OutcomePanicked:
		return "panicked"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// Liveness reports whether an identity generation is still current.
type Liveness interface {
	Live(id identity.ID, gen uint64) bool
}

// Resolver finds the callback bound for an event.
type Resolver interface {
	Lookup(id identity.ID, gen uint64, kind vdom.EventKind) (callback.Callback, bool)
}

// Dispatcher decodes inbound messages and invokes the bound callbacks.
type Dispatcher struct {
	ids       Liveness
	callbacks Resolver
	config    Config
	tracer    trace.Tracer

	state  atomic.Int32
	closed atomic.Bool
}

// New creates a dispatcher over the given registries.
func New(ids Liveness, callbacks Resolver, opts ...Option) *Dispatcher {
	config := DefaultConfig()
	for _, opt := range opts {
		opt(&config)
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	tracer := config.Tracer
	if tracer == nil {
		tracer = otel.Tracer(config.TracerName)
	}
	return &Dispatcher{
		ids:       ids,
		callbacks: callbacks,
		config:    config,
		tracer:    tracer,
	}
}

// State returns the current state.
func (d *Dispatcher) State() State {
	return State(d.state.Load())
}

// Close stops dispatch. Messages received afterwards are dropped.
func (d *Dispatcher) Close() {
	d.closed.Store(true)
}

// Closed reports whether Close has been called.
func (d *Dispatcher) Closed() bool {
	return d.closed.Load()
}

// Dispatch handles one raw message to completion.
func (d *Dispatcher) Dispatch(raw []byte) Outcome {
	return d.DispatchContext(context.Background(), raw)
}

// DispatchContext is Dispatch with a parent context for the invocation span.
func (d *Dispatcher) DispatchContext(ctx context.Context, raw []byte) Outcome {
	if d.closed.Load() {
		return OutcomeDropped
	}
	defer d.setState(StateIdle)

	d.setState(StateDecoding)
	ev, err := protocol.DecodeEvent(raw)
	if err != nil {
		d.config.Logger.Warn("malformed event", "error", err, "size", len(raw))
		d.config.Metrics.RecordEvent("unknown", OutcomeMalformed.String())
		return OutcomeMalformed
	}

	d.setState(StateResolving)
	kind := ev.Kind.String()
	if !ev.Kind.IsViewEvent() && !d.ids.Live(ev.ID, ev.Gen) {
		d.drop(ev, "stale")
		return OutcomeDropped
	}
	cb, ok := d.callbacks.Lookup(ev.ID, ev.Gen, ev.Kind)
	if !ok {
		d.drop(ev, "unbound")
		return OutcomeDropped
	}

	d.setState(StateInvoking)
	start := time.Now()
	outcome := d.invoke(ctx, cb, ev)
	d.config.Metrics.RecordDispatch(kind, time.Since(start))
	d.config.Metrics.RecordEvent(kind, outcome.String())
	return outcome
}

// Run dispatches messages from in until ctx is done or in is closed.
func (d *Dispatcher) Run(ctx context.Context, in <-chan []byte) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case raw, ok := <-in:
			if !ok {
				return nil
			}
			d.DispatchContext(ctx, raw)
		}
	}
}

func (d *Dispatcher) invoke(ctx context.Context, cb callback.Callback, ev *protocol.Event) (outcome Outcome) {
	_, span := d.tracer.Start(ctx, "joestar."+ev.Kind.String(),
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("joestar.event_kind", ev.Kind.String()),
			attribute.String("joestar.event_target", string(ev.ID)),
			attribute.Int64("joestar.generation", int64(ev.Gen)),
		),
	)
	defer span.End()

	defer func() {
		if r := recover(); r != nil {
			stack := debug.Stack()
			d.config.Logger.Error("callback panic",
				"panic", r,
				"id", ev.ID,
				"kind", ev.Kind.String(),
				"stack", string(stack))
			err := fmt.Errorf("callback panic: %v", r)
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			outcome = OutcomePanicked
		}
	}()

	cb.Invoke(callback.Event{
		ID:   ev.ID,
		Gen:  ev.Gen,
		Kind: ev.Kind,
		Data: ev.Data,
	})
	span.SetStatus(codes.Ok, "")
	return OutcomeInvoked
}

func (d *Dispatcher) drop(ev *protocol.Event, reason string) {
	d.config.Logger.Debug("event dropped",
		"id", ev.ID,
		"gen", ev.Gen,
		"kind", ev.Kind.String(),
		"reason", reason)
	d.config.Metrics.RecordEvent(ev.Kind.String(), OutcomeDropped.String())
}

func (d *Dispatcher) setState(s State) {
	d.state.Store(int32(s))
}
