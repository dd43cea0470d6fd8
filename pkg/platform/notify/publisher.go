package notify

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Publisher is the commit-side emission point. Implementations must not be
// invoked before the registry mutation has committed.
type Publisher interface {
	Emit(ctx context.Context, event Event) error
}

// ChannelPublisher hands events to an in-process buffered channel consumed by
// a Worker. Emission blocks when the buffer is full rather than dropping, so
// at-least-once holds end to end.
type ChannelPublisher struct {
	events chan Event
}

// NewChannelPublisher creates a publisher with the given buffer size.
func NewChannelPublisher(buffer int) *ChannelPublisher {
	if buffer <= 0 {
		buffer = 256
	}
	return &ChannelPublisher{events: make(chan Event, buffer)}
}

func (p *ChannelPublisher) Emit(ctx context.Context, event Event) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case p.events <- event:
		return nil
	}
}

// Events exposes the inbox for a Worker.
func (p *ChannelPublisher) Events() <-chan Event {
	return p.events
}

// NopPublisher discards events. Used when no sink is configured.
type NopPublisher struct{}

func (NopPublisher) Emit(context.Context, Event) error { return nil }
