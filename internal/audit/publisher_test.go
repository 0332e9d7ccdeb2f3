package audit

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingSink struct{}

func (failingSink) Append(context.Context, Event) error {
	return errors.New("broker unavailable")
}

func TestPublisherStampsMissingFields(t *testing.T) {
	store := NewInMemoryStore()
	p := NewPublisher(store)

	err := p.Emit(context.Background(), Event{
		Category: CategoryOperations,
		Action:   ActionUserEndorsed,
		Domain:   1,
		Actor:    "alice",
		Subject:  "bob",
		Tick:     7,
	})
	require.NoError(t, err)

	events, err := store.ListByActor(context.Background(), "alice")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.NotEqual(t, uuid.Nil, events[0].ID)
	assert.False(t, events[0].Timestamp.IsZero())
	assert.Equal(t, ActionUserEndorsed, events[0].Action)
}

func TestPublisherFansOutPastFailures(t *testing.T) {
	store := NewInMemoryStore()
	p := NewPublisher(failingSink{}, store)

	err := p.Emit(context.Background(), Event{Action: ActionDomainCreated, Actor: "admin"})
	require.Error(t, err)

	// The failing sink does not stop delivery to the store.
	events, err := store.ListByActor(context.Background(), "admin")
	require.NoError(t, err)
	assert.Len(t, events, 1)
}

func TestPublisherListReadsFirstStore(t *testing.T) {
	store := NewInMemoryStore()
	p := NewPublisher(failingSink{}, store)

	_ = p.Emit(context.Background(), Event{Action: ActionDomainCreated, Actor: "admin"})

	events, err := p.List(context.Background(), "admin")
	require.NoError(t, err)
	assert.Len(t, events, 1)
}

func TestAsyncDropsWhenFull(t *testing.T) {
	a := NewAsync(2)

	for i := 0; i < 5; i++ {
		require.NoError(t, a.Emit(context.Background(), Event{Action: ActionUserEndorsed}))
	}
	assert.Len(t, a.Inbox(), 2)
}

func TestWorkerDrainsToSinks(t *testing.T) {
	a := NewAsync(8)
	store := NewInMemoryStore()
	w := NewWorker(a.Inbox(), slog.Default(), failingSink{}, store)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	require.NoError(t, a.Emit(ctx, Event{Action: ActionUserEndorsed, Actor: "alice"}))
	require.NoError(t, a.Emit(ctx, Event{Action: ActionEndorsementRemoved, Actor: "alice"}))

	require.Eventually(t, func() bool {
		events, err := store.ListByActor(context.Background(), "alice")
		return err == nil && len(events) == 2
	}, time.Second, 10*time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}
