package ports

import (
	"context"

	"github.com/aretw0/arbor/pkg/domain"
)

// EventPublisher defines the interface for delivering lifecycle events.
// Publishing is fire-and-forget: events are never stored.
type EventPublisher interface {
	// Publish delivers a single event to current subscribers.
	Publish(ctx context.Context, event domain.Event) error
}

// EventStream is an EventPublisher that also supports subscriptions.
type EventStream interface {
	EventPublisher

	// Subscribe returns a channel receiving every event published after the
	// call returns. The channel is closed when ctx is canceled.
	Subscribe(ctx context.Context) (<-chan domain.Event, error)
}
