package audit

import (
	"context"
	"log/slog"
	"time"

	"donorlift/pkg/requestcontext"
)

// Publisher accepts events from request handling without blocking it. Events
// are enriched from the request context and queued for the worker; when the
// queue is full the event is dropped with a warning rather than stalling the
// caller's request.
type Publisher struct {
	inbox  chan Event
	logger *slog.Logger
}

func NewPublisher(buffer int, logger *slog.Logger) *Publisher {
	return &Publisher{
		inbox:  make(chan Event, buffer),
		logger: logger,
	}
}

// Emit queues an event, stamping timestamp and request metadata from ctx.
// A nil publisher records nothing, keeping service tests free of audit setup.
func (p *Publisher) Emit(ctx context.Context, event Event) {
	if p == nil {
		return
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	if event.RequestID == "" {
		event.RequestID = requestcontext.RequestID(ctx)
	}
	if event.ClientIP == "" {
		event.ClientIP = requestcontext.ClientIP(ctx)
	}
	if event.DeviceClass == "" {
		event.DeviceClass = requestcontext.DeviceClass(ctx)
	}

	select {
	case p.inbox <- event:
	default:
		p.logger.Warn("audit inbox full, dropping event",
			"action", event.Action,
			"subject", event.Subject,
		)
	}
}

// Events exposes the queue to the worker.
func (p *Publisher) Events() <-chan Event { return p.inbox }
