package repository

import (
	"context"

	"github.com/Abhishek-Anvekar/healthcare/internal/domain/entity"
)

// ParkedMessageRepository stores inbound messages that failed to decode or
// validate, instead of dropping them.
type ParkedMessageRepository interface {
	Park(ctx context.Context, msg *entity.ParkedMessage) error
}
