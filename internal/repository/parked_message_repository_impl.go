package repository

import (
	"context"

	"github.com/Abhishek-Anvekar/healthcare/internal/domain/entity"
	domainRepo "github.com/Abhishek-Anvekar/healthcare/internal/domain/repository"

	"gorm.io/gorm"
)

type parkedMessageRepository struct {
	db *gorm.DB
}

func NewParkedMessageRepository(db *gorm.DB) domainRepo.ParkedMessageRepository {
	return &parkedMessageRepository{db: db}
}

func (r *parkedMessageRepository) Park(ctx context.Context, msg *entity.ParkedMessage) error {
	return r.db.WithContext(ctx).Create(msg).Error
}
