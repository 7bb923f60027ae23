package repository

import (
	"context"

	"github.com/Abhishek-Anvekar/healthcare/internal/domain/entity"
)

// OutboxRepository is the dispatcher-side view of the outbox table. Rows are
// appended through AppointmentTx so they commit with the state change.
type OutboxRepository interface {
	// FindPending returns up to limit pending events, oldest first, skipping
	// events that already exhausted maxAttempts.
	FindPending(ctx context.Context, limit, maxAttempts int) ([]entity.OutboxEvent, error)
	MarkPublished(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id string, reason string, maxAttempts int) error
}
