package audit

import (
	"context"
	"log/slog"

	"railguard/pkg/requestcontext"
)

// StorePublisher writes events synchronously to the outbox store. The write
// shares the caller's transaction when one is carried in the context, so the
// event and the ledger change commit or roll back together.
type StorePublisher struct {
	store  Store
	logger *slog.Logger
}

func NewStorePublisher(store Store, logger *slog.Logger) *StorePublisher {
	return &StorePublisher{store: store, logger: logger}
}

// Emit persists the event. Timestamp and request ID are filled from context
// when the caller left them unset.
func (p *StorePublisher) Emit(ctx context.Context, event Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = requestcontext.Now(ctx)
	}
	if event.RequestID == "" {
		event.RequestID = requestcontext.RequestID(ctx)
	}
	if err := p.store.Append(ctx, event); err != nil {
		p.logger.ErrorContext(ctx, "audit persistence failed",
			"action", event.Action,
			"owner", event.Owner,
			"error", err,
		)
		return err
	}
	return nil
}
