package audit

import (
	"context"
	"log/slog"
)

// Sink receives events for persistence or forwarding.
type Sink interface {
	Append(ctx context.Context, event Event) error
}

// Worker drains the publisher's queue into every configured sink. A failing
// sink is logged and skipped; the audit trail must not take the service down.
type Worker struct {
	inbox  <-chan Event
	sinks  []Sink
	logger *slog.Logger
}

func NewWorker(inbox <-chan Event, logger *slog.Logger, sinks ...Sink) *Worker {
	return &Worker{inbox: inbox, sinks: sinks, logger: logger}
}

func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event := <-w.inbox:
			for _, sink := range w.sinks {
				if err := sink.Append(ctx, event); err != nil {
					w.logger.ErrorContext(ctx, "audit sink append failed",
						"error", err,
						"action", event.Action,
						"subject", event.Subject,
					)
				}
			}
		}
	}
}
