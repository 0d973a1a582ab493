package repository

import (
	"context"

	"stackit.dev/forum/internal/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ViewRepository interface {
	// AddViews adds n to the stored view count. A missing question is not an error.
	AddViews(ctx context.Context, questionID uuid.UUID, n int64) error
}

type viewRepository struct {
	db *gorm.DB
}

func NewViewRepository(db *gorm.DB) ViewRepository {
	return &viewRepository{db: db}
}

func (r *viewRepository) AddViews(ctx context.Context, questionID uuid.UUID, n int64) error {
	return r.db.WithContext(ctx).
		Model(&entity.Question{}).
		Where("id = ?", questionID).
		UpdateColumn("view_count", gorm.Expr("view_count + ?", n)).Error
}
