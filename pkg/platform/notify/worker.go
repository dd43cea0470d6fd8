package notify

import (
	"context"
	"log/slog"
	"time"
)

// Sink is the external delivery target (Kafka, test capture).
type Sink interface {
	Publish(ctx context.Context, event Event) error
}

// Worker drains a publisher's inbox and delivers each event to the sink.
// Delivery is retried until it succeeds or the context ends, so a flaky sink
// surfaces as duplicates downstream, never as loss. Consumers dedupe by
// event ID.
type Worker struct {
	sink    Sink
	inbox   <-chan Event
	logger  *slog.Logger
	backoff time.Duration
}

func NewWorker(sink Sink, inbox <-chan Event, logger *slog.Logger) *Worker {
	return &Worker{sink: sink, inbox: inbox, logger: logger, backoff: 250 * time.Millisecond}
}

func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event := <-w.inbox:
			if err := w.deliver(ctx, event); err != nil {
				return err
			}
		}
	}
}

func (w *Worker) deliver(ctx context.Context, event Event) error {
	for {
		err := w.sink.Publish(ctx, event)
		if err == nil {
			return nil
		}
		w.logger.WarnContext(ctx, "notification delivery failed, retrying",
			"event_id", event.ID,
			"event_type", string(event.Type),
			"error", err,
		)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(w.backoff):
		}
	}
}
