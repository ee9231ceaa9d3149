// Package events implements the in-process pub/sub that decouples lead
// capture from its scoring, routing, and notification side effects.
package events

import (
	"context"
	"time"
)

// Event is a fact about the lead lifecycle, published after the state change
// it describes has been persisted. Subscribers read committed data.
type Event interface {
	// EventName identifies the event type, e.g. "lead.created".
	EventName() string
	// OccurredAt is the publish timestamp.
	OccurredAt() time.Time
}

// BaseEvent carries the timestamp shared by every event. Embed it and
// implement EventName on the concrete type.
type BaseEvent struct {
	Timestamp time.Time `json:"timestamp"`
}

func (e BaseEvent) OccurredAt() time.Time { return e.Timestamp }

// NewBaseEvent stamps an event with the current time.
func NewBaseEvent() BaseEvent {
	return BaseEvent{Timestamp: time.Now()}
}

// Handler reacts to one event type.
type Handler interface {
	Handle(ctx context.Context, event Event) error
}

// HandlerFunc adapts a plain function into a Handler.
type HandlerFunc func(ctx context.Context, event Event) error

func (f HandlerFunc) Handle(ctx context.Context, event Event) error {
	return f(ctx, event)
}
