package events

import (
	"context"
	"sync"

	"admissions_crm_backend/platform/logger"
)

// Bus connects publishers of lead lifecycle events to their subscribers.
type Bus interface {
	// Publish dispatches the event without blocking the caller. Handlers run
	// one at a time in subscription order; errors are logged, not returned.
	Publish(ctx context.Context, event Event)
	// PublishSync dispatches the event inline and returns the first handler
	// error.
	PublishSync(ctx context.Context, event Event) error
	// Subscribe registers a handler for the name an event's EventName returns.
	Subscribe(eventName string, handler Handler)
}

// InMemoryBus is the in-process Bus. Async dispatch runs all of an event's
// handlers sequentially in a single goroutine, so a subscriber registered
// later observes the writes of earlier subscribers. Panics are recovered and
// logged so one handler cannot take down the process or the handlers after it.
type InMemoryBus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
	log      *logger.Logger
}

// NewInMemoryBus creates a new in-memory event bus.
func NewInMemoryBus(log *logger.Logger) *InMemoryBus {
	return &InMemoryBus{
		handlers: make(map[string][]Handler),
		log:      log,
	}
}

// Subscribe registers a handler for the given event name.
func (b *InMemoryBus) Subscribe(eventName string, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[eventName] = append(b.handlers[eventName], handler)
}

// Publish dispatches the event asynchronously. Handlers run in subscription
// order; a failing or panicking handler never stops the ones after it.
// Handler errors are logged, never propagated to the publisher.
func (b *InMemoryBus) Publish(ctx context.Context, event Event) {
	handlers := b.handlersFor(event.EventName())
	detached := context.WithoutCancel(ctx)
	go func() {
		for _, h := range handlers {
			b.dispatch(detached, event, h)
		}
	}()
}

// PublishSync dispatches the event and waits for all handlers.
// The first handler error is returned.
func (b *InMemoryBus) PublishSync(ctx context.Context, event Event) error {
	var firstErr error
	for _, handler := range b.handlersFor(event.EventName()) {
		if err := handler.Handle(ctx, event); err != nil {
			if firstErr == nil {
				firstErr = err
			}
			if b.log != nil {
				b.log.Error("event handler failed", "event", event.EventName(), "error", err)
			}
		}
	}
	return firstErr
}

func (b *InMemoryBus) dispatch(ctx context.Context, event Event, h Handler) {
	defer b.recoverPanic(event.EventName())
	if err := h.Handle(ctx, event); err != nil && b.log != nil {
		b.log.Error("event handler failed", "event", event.EventName(), "error", err)
	}
}

func (b *InMemoryBus) handlersFor(eventName string) []Handler {
	b.mu.RLock()
	defer b.mu.RUnlock()

	registered := b.handlers[eventName]
	result := make([]Handler, len(registered))
	copy(result, registered)
	return result
}

func (b *InMemoryBus) recoverPanic(eventName string) {
	if r := recover(); r != nil && b.log != nil {
		b.log.Error("event handler panicked", "event", eventName, "panic", r)
	}
}
