package repository

import (
	"context"

	"github.com/Abhishek-Anvekar/healthcare/internal/domain/entity"
	domainRepo "github.com/Abhishek-Anvekar/healthcare/internal/domain/repository"

	"gorm.io/gorm"
)

type unlockFailureRepository struct {
	db *gorm.DB
}

func NewUnlockFailureRepository(db *gorm.DB) domainRepo.UnlockFailureRepository {
	return &unlockFailureRepository{db: db}
}

func (r *unlockFailureRepository) Record(ctx context.Context, failure *entity.SlotUnlockFailure) error {
	return r.db.WithContext(ctx).Create(failure).Error
}
