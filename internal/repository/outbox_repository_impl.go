package repository

import (
	"context"
	"time"

	"github.com/Abhishek-Anvekar/healthcare/internal/domain/entity"
	domainRepo "github.com/Abhishek-Anvekar/healthcare/internal/domain/repository"

	"gorm.io/gorm"
)

type outboxRepository struct {
	db *gorm.DB
}

func NewOutboxRepository(db *gorm.DB) domainRepo.OutboxRepository {
	return &outboxRepository{db: db}
}

func (r *outboxRepository) FindPending(ctx context.Context, limit, maxAttempts int) ([]entity.OutboxEvent, error) {
	var events []entity.OutboxEvent
	err := r.db.WithContext(ctx).
		Where("status = ? AND attempts < ?", entity.OutboxStatusPending, maxAttempts).
		Order("created_at ASC").
		Limit(limit).
		Find(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}

func (r *outboxRepository) MarkPublished(ctx context.Context, id string) error {
	now := time.Now().UTC()
	return r.db.WithContext(ctx).Model(&entity.OutboxEvent{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":       entity.OutboxStatusPublished,
			"published_at": &now,
		}).Error
}

// MarkFailed bumps the attempt counter and flips the row to failed once the
// attempt cap is reached; until then it stays pending for the next poll.
func (r *outboxRepository) MarkFailed(ctx context.Context, id string, reason string, maxAttempts int) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ev entity.OutboxEvent
		if err := tx.Where("id = ?", id).First(&ev).Error; err != nil {
			return err
		}
		ev.Attempts++
		ev.LastError = reason
		if ev.Attempts >= maxAttempts {
			ev.Status = entity.OutboxStatusFailed
		}
		return tx.Save(&ev).Error
	})
}
