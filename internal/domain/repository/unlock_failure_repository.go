package repository

import (
	"context"

	"github.com/Abhishek-Anvekar/healthcare/internal/domain/entity"
)

// UnlockFailureRepository persists best-effort slot unlocks that failed, so
// stuck-blocked slots can be repaired offline.
type UnlockFailureRepository interface {
	Record(ctx context.Context, failure *entity.SlotUnlockFailure) error
}
