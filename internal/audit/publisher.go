package audit

import (
	"context"
	"time"

	"github.com/google/uuid"

	"repute/pkg/domain"
)

// Sink receives audit events for delivery. Stores satisfy it directly; the
// Kafka producer wraps it around a topic.
type Sink interface {
	Append(ctx context.Context, event Event) error
}

// Publisher stamps and persists structured audit events. It writes through
// to the store so tests can swap sinks easily; pair it with Async for
// fire-and-forget delivery off the request path.
type Publisher struct {
	sinks []Sink
}

func NewPublisher(sinks ...Sink) *Publisher {
	return &Publisher{sinks: sinks}
}

// Emit stamps missing identity/time fields and delivers the event to every
// sink. Delivery is best-effort fan-out: the first sink error is returned
// after all sinks were attempted.
func (p *Publisher) Emit(ctx context.Context, event Event) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	var firstErr error
	for _, sink := range p.sinks {
		if err := sink.Append(ctx, event); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// List returns the stored events for one actor, reading from the first sink
// that can serve reads.
func (p *Publisher) List(ctx context.Context, actor domain.Principal) ([]Event, error) {
	for _, sink := range p.sinks {
		if store, ok := sink.(Store); ok {
			return store.ListByActor(ctx, actor)
		}
	}
	return nil, nil
}

// Async decouples emitters from sink latency: Emit enqueues and the Worker
// drains. The inbox is bounded; when it is full the event is dropped rather
// than blocking a mutation, which matches the trail's best-effort contract.
type Async struct {
	inbox chan Event
}

func NewAsync(buffer int) *Async {
	if buffer <= 0 {
		buffer = 256
	}
	return &Async{inbox: make(chan Event, buffer)}
}

func (a *Async) Emit(_ context.Context, event Event) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	select {
	case a.inbox <- event:
	default:
	}
	return nil
}

// Inbox exposes the queue for the Worker.
func (a *Async) Inbox() <-chan Event {
	return a.inbox
}
