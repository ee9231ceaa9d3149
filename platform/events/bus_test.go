package events

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEvent struct {
	BaseEvent
	name string
}

func (e testEvent) EventName() string { return e.name }

func TestPublishSync_DispatchesToAllHandlers(t *testing.T) {
	bus := NewInMemoryBus(nil)

	var calls int32
	handler := HandlerFunc(func(context.Context, Event) error {
		atomic.AddInt32(&calls, 1)
		return nil
	})
	bus.Subscribe("lead.created", handler)
	bus.Subscribe("lead.created", handler)
	bus.Subscribe("lead.scored", handler)

	err := bus.PublishSync(context.Background(), testEvent{NewBaseEvent(), "lead.created"})
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestPublishSync_ReturnsFirstHandlerError(t *testing.T) {
	bus := NewInMemoryBus(nil)

	first := errors.New("first failure")
	bus.Subscribe("lead.created", HandlerFunc(func(context.Context, Event) error { return first }))
	bus.Subscribe("lead.created", HandlerFunc(func(context.Context, Event) error { return errors.New("second failure") }))

	err := bus.PublishSync(context.Background(), testEvent{NewBaseEvent(), "lead.created"})
	assert.ErrorIs(t, err, first)
}

func TestPublish_RunsHandlersInSubscriptionOrder(t *testing.T) {
	bus := NewInMemoryBus(nil)

	order := make(chan string, 2)
	bus.Subscribe("lead.created", HandlerFunc(func(context.Context, Event) error {
		// Slow first subscriber: the second must still wait its turn.
		time.Sleep(20 * time.Millisecond)
		order <- "scoring"
		return nil
	}))
	bus.Subscribe("lead.created", HandlerFunc(func(context.Context, Event) error {
		order <- "routing"
		return nil
	}))

	bus.Publish(context.Background(), testEvent{NewBaseEvent(), "lead.created"})

	assert.Equal(t, "scoring", <-order)
	assert.Equal(t, "routing", <-order)
}

func TestPublish_AsyncHandlersSurviveCancelledContext(t *testing.T) {
	bus := NewInMemoryBus(nil)

	done := make(chan struct{})
	bus.Subscribe("lead.created", HandlerFunc(func(ctx context.Context, _ Event) error {
		// The publisher's context may be cancelled the moment the request
		// finishes; side effects still run to completion.
		assert.NoError(t, ctx.Err())
		close(done)
		return nil
	}))

	ctx, cancel := context.WithCancel(context.Background())
	bus.Publish(ctx, testEvent{NewBaseEvent(), "lead.created"})
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("handler did not run")
	}
}

func TestPublish_RecoversHandlerPanic(t *testing.T) {
	bus := NewInMemoryBus(nil)

	ran := make(chan struct{})
	after := make(chan struct{})
	bus.Subscribe("lead.created", HandlerFunc(func(context.Context, Event) error {
		close(ran)
		panic("boom")
	}))
	bus.Subscribe("lead.created", HandlerFunc(func(context.Context, Event) error {
		close(after)
		return nil
	}))

	bus.Publish(context.Background(), testEvent{NewBaseEvent(), "lead.created"})

	select {
	case <-ran:
	case <-time.After(2 * time.Second):
		t.Fatal("handler did not run")
	}
	select {
	case <-after:
	case <-time.After(2 * time.Second):
		t.Fatal("handler after the panicking one did not run")
	}
}
