package repository

import (
	"context"
	"time"

	"stackit.dev/forum/internal/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UploadRepository interface {
	Create(ctx context.Context, upload *entity.Upload) error
	FindOrphans(ctx context.Context, cutoff time.Time) ([]entity.Upload, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type uploadRepository struct {
	db *gorm.DB
}

func NewUploadRepository(db *gorm.DB) UploadRepository {
	return &uploadRepository{db: db}
}

func (r *uploadRepository) Create(ctx context.Context, upload *entity.Upload) error {
	return r.db.WithContext(ctx).Create(upload).Error
}

// FindOrphans lists uploads older than cutoff whose URL is not embedded in
// any question body or answer.
func (r *uploadRepository) FindOrphans(ctx context.Context, cutoff time.Time) ([]entity.Upload, error) {
	var uploads []entity.Upload
	err := r.db.WithContext(ctx).
		Where("uploads.created_at < ?", cutoff).
		Where("NOT EXISTS (SELECT 1 FROM questions WHERE questions.body LIKE '%' || uploads.url || '%')").
		Where("NOT EXISTS (SELECT 1 FROM answers WHERE answers.content LIKE '%' || uploads.url || '%')").
		Find(&uploads).Error
	return uploads, err
}

func (r *uploadRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&entity.Upload{}).Error
}
