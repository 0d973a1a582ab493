package repository

import (
	"context"

	"stackit.dev/forum/internal/entity"
	notifRepo "stackit.dev/forum/internal/modules/notification/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	StatusAll        = "all"
	StatusUnanswered = "unanswered"
	StatusAnswered   = "answered"
	StatusAccepted   = "accepted"

	SortNewest       = "newest"
	SortOldest       = "oldest"
	SortMostAnswers  = "most_answers"
	SortLeastAnswers = "least_answers"
)

// QuestionWithCount is a question row with its owner and tags loaded.
type QuestionWithCount struct {
	entity.Question
	AnswerCount int64 `json:"answer_count"`
}

// ListParams narrows a question listing. IDs, when non-nil, restricts the
// result to those questions (search hits); an empty non-nil slice matches nothing.
type ListParams struct {
	OwnerID *uuid.UUID
	Status  string
	Search  string
	Tag     string
	IDs     []uuid.UUID
	Sort    string
	Offset  int
	Limit   int
}

type QuestionRepository interface {
	Create(ctx context.Context, question *entity.Question) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Question, error)
	// FindDetail loads the question with answers, their authors and comments.
	FindDetail(ctx context.Context, id uuid.UUID) (*entity.Question, error)
	FindAll(ctx context.Context, params ListParams) ([]QuestionWithCount, int64, error)
	SetAcceptedAnswer(ctx context.Context, id, answerID uuid.UUID) error
	CountAnswers(ctx context.Context, id uuid.UUID) (int64, error)
	DeleteCascade(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context) (int64, error)
}

type questionRepository struct {
	db *gorm.DB
}

func NewQuestionRepository(db *gorm.DB) QuestionRepository {
	return &questionRepository{db: db}
}

func (r *questionRepository) Create(ctx context.Context, question *entity.Question) error {
	return r.db.WithContext(ctx).Create(question).Error
}

func (r *questionRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Question, error) {
	var question entity.Question
	if err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Tags").
		Where("id = ?", id).
		First(&question).Error; err != nil {
		return nil, err
	}
	return &question, nil
}

func (r *questionRepository) FindDetail(ctx context.Context, id uuid.UUID) (*entity.Question, error) {
	var question entity.Question
	if err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Tags", func(db *gorm.DB) *gorm.DB {
			return db.Order("tags.name ASC")
		}).
		Preload("Answers", func(db *gorm.DB) *gorm.DB {
			return db.Order("answers.created_at DESC")
		}).
		Preload("Answers.User").
		Preload("Answers.Comments", func(db *gorm.DB) *gorm.DB {
			return db.Order("comments.created_at ASC")
		}).
		Preload("Answers.Comments.User").
		Where("id = ?", id).
		First(&question).Error; err != nil {
		return nil, err
	}
	return &question, nil
}

func (r *questionRepository) FindAll(ctx context.Context, params ListParams) ([]QuestionWithCount, int64, error) {
	if params.IDs != nil && len(params.IDs) == 0 {
		return []QuestionWithCount{}, 0, nil
	}

	query := r.db.WithContext(ctx).
		Table("questions").
		Select("questions.id, COUNT(answers.id) AS answer_count").
		Joins("LEFT JOIN answers ON answers.question_id = questions.id").
		Group("questions.id")

	if params.OwnerID != nil {
		query = query.Where("questions.user_id = ?", *params.OwnerID)
	}
	if params.IDs != nil {
		query = query.Where("questions.id IN ?", params.IDs)
	}
	if params.Search != "" {
		like := "%" + params.Search + "%"
		query = query.Where(
			`(questions.title ILIKE ? OR questions.body ILIKE ?
			OR EXISTS (SELECT 1 FROM users u WHERE u.id = questions.user_id AND u.username ILIKE ?)
			OR EXISTS (SELECT 1 FROM question_tags qt JOIN tags t ON t.id = qt.tag_id WHERE qt.question_id = questions.id AND t.name ILIKE ?))`,
			like, like, like, like,
		)
	}
	if params.Tag != "" {
		query = query.Where(
			"EXISTS (SELECT 1 FROM question_tags qt JOIN tags t ON t.id = qt.tag_id WHERE qt.question_id = questions.id AND t.name = ?)",
			params.Tag,
		)
	}

	switch params.Status {
	case StatusUnanswered:
		query = query.Having("COUNT(answers.id) = 0")
	case StatusAnswered:
		query = query.Having("COUNT(answers.id) > 0")
	case StatusAccepted:
		query = query.Where("questions.accepted_answer_id IS NOT NULL")
	}

	var total int64
	if err := r.db.WithContext(ctx).Table("(?) AS listed", query).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	switch params.Sort {
	case SortOldest:
		query = query.Order("questions.created_at ASC, questions.id ASC")
	case SortMostAnswers:
		query = query.Order("answer_count DESC").Order("questions.created_at DESC, questions.id DESC")
	case SortLeastAnswers:
		query = query.Order("answer_count ASC").Order("questions.created_at DESC, questions.id DESC")
	default:
		query = query.Order("questions.created_at DESC, questions.id DESC")
	}

	type row struct {
		ID          uuid.UUID
		AnswerCount int64
	}
	var rows []row
	if err := query.Offset(params.Offset).Limit(params.Limit).Scan(&rows).Error; err != nil {
		return nil, 0, err
	}
	if len(rows) == 0 {
		return []QuestionWithCount{}, total, nil
	}

	ids := make([]uuid.UUID, len(rows))
	for i, rw := range rows {
		ids[i] = rw.ID
	}

	var questions []entity.Question
	if err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Tags").
		Where("id IN ?", ids).
		Find(&questions).Error; err != nil {
		return nil, 0, err
	}

	// Reorder to match the listing order
	byID := make(map[uuid.UUID]entity.Question, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}

	result := make([]QuestionWithCount, 0, len(rows))
	for _, rw := range rows {
		if q, ok := byID[rw.ID]; ok {
			result = append(result, QuestionWithCount{Question: q, AnswerCount: rw.AnswerCount})
		}
	}
	return result, total, nil
}

func (r *questionRepository) SetAcceptedAnswer(ctx context.Context, id, answerID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&entity.Question{}).
		Where("id = ?", id).
		Update("accepted_answer_id", answerID).Error
}

func (r *questionRepository) CountAnswers(ctx context.Context, id uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Answer{}).Where("question_id = ?", id).Count(&count).Error
	return count, err
}

// DeleteCascade removes a question and everything hanging off it in one
// transaction. Leaf rows go first.
func (r *questionRepository) DeleteCascade(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var answerIDs []uuid.UUID
		if err := tx.Model(&entity.Answer{}).Where("question_id = ?", id).Pluck("id", &answerIDs).Error; err != nil {
			return err
		}

		if err := notifRepo.DeleteByLinkPrefix(tx, entity.QuestionLink(id)); err != nil {
			return err
		}

		if len(answerIDs) > 0 {
			if err := tx.Where("answer_id IN ?", answerIDs).Delete(&entity.Vote{}).Error; err != nil {
				return err
			}
			if err := tx.Where("answer_id IN ?", answerIDs).Delete(&entity.Comment{}).Error; err != nil {
				return err
			}
		}

		if err := tx.Model(&entity.Question{}).Where("id = ?", id).Update("accepted_answer_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Where("question_id = ?", id).Delete(&entity.Answer{}).Error; err != nil {
			return err
		}
		if err := tx.Where("question_id = ?", id).Delete(&entity.QuestionTag{}).Error; err != nil {
			return err
		}

		res := tx.Where("id = ?", id).Delete(&entity.Question{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *questionRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Question{}).Count(&count).Error
	return count, err
}
