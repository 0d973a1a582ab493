package repository

import (
	"context"

	"stackit.dev/forum/internal/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AnswerRepository interface {
	Create(ctx context.Context, answer *entity.Answer) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Answer, error)
	FindAll(ctx context.Context, offset, limit int) ([]entity.Answer, int64, error)
	// DeleteCascade removes the answer with its votes and comments and clears
	// any accepted pointer at it, all in one transaction.
	DeleteCascade(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context) (int64, error)
}

type answerRepository struct {
	db *gorm.DB
}

func NewAnswerRepository(db *gorm.DB) AnswerRepository {
	return &answerRepository{db: db}
}

func (r *answerRepository) Create(ctx context.Context, answer *entity.Answer) error {
	return r.db.WithContext(ctx).Create(answer).Error
}

func (r *answerRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Answer, error) {
	var answer entity.Answer
	if err := r.db.WithContext(ctx).
		Preload("User").
		Where("id = ?", id).
		First(&answer).Error; err != nil {
		return nil, err
	}
	return &answer, nil
}

func (r *answerRepository) FindAll(ctx context.Context, offset, limit int) ([]entity.Answer, int64, error) {
	var (
		answers []entity.Answer
		total   int64
	)

	if err := r.db.WithContext(ctx).Model(&entity.Answer{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.db.WithContext(ctx).
		Preload("User").
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&answers).Error
	return answers, total, err
}

func (r *answerRepository) DeleteCascade(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("answer_id = ?", id).Delete(&entity.Vote{}).Error; err != nil {
			return err
		}
		if err := tx.Where("answer_id = ?", id).Delete(&entity.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&entity.Question{}).
			Where("accepted_answer_id = ?", id).
			Update("accepted_answer_id", nil).Error; err != nil {
			return err
		}

		res := tx.Where("id = ?", id).Delete(&entity.Answer{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *answerRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Answer{}).Count(&count).Error
	return count, err
}
