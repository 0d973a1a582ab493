package repository

import (
	"context"

	"stackit.dev/forum/internal/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserWithCounts is a user row plus the activity totals shown to admins.
type UserWithCounts struct {
	entity.User
	QuestionCount int64 `json:"question_count"`
	AnswerCount   int64 `json:"answer_count"`
	CommentCount  int64 `json:"comment_count"`
	VoteCount     int64 `json:"vote_count"`
}

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
	FindByExternalID(ctx context.Context, externalID string) (*entity.User, error)
	FindByUsername(ctx context.Context, username string) (*entity.User, error)
	FindByUsernames(ctx context.Context, usernames []string) ([]entity.User, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	FindAllWithCounts(ctx context.Context) ([]UserWithCounts, error)
	UpdateRole(ctx context.Context, id uuid.UUID, role string) error
	Count(ctx context.Context) (int64, error)
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *entity.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	var user entity.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByExternalID(ctx context.Context, externalID string) (*entity.User, error) {
	var user entity.User
	if err := r.db.WithContext(ctx).Where("external_id = ?", externalID).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByUsername(ctx context.Context, username string) (*entity.User, error) {
	var user entity.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByUsernames(ctx context.Context, usernames []string) ([]entity.User, error) {
	var users []entity.User
	if len(usernames) == 0 {
		return users, nil
	}
	err := r.db.WithContext(ctx).Where("username IN ?", usernames).Find(&users).Error
	return users, err
}

func (r *userRepository) UsernameExists(ctx context.Context, username string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.User{}).Where("username = ?", username).Count(&count).Error
	return count > 0, err
}

func (r *userRepository) FindAllWithCounts(ctx context.Context) ([]UserWithCounts, error) {
	var rows []UserWithCounts
	err := r.db.WithContext(ctx).
		Model(&entity.User{}).
		Select(`users.*,
			(SELECT COUNT(*) FROM questions WHERE questions.user_id = users.id) AS question_count,
			(SELECT COUNT(*) FROM answers WHERE answers.user_id = users.id) AS answer_count,
			(SELECT COUNT(*) FROM comments WHERE comments.user_id = users.id) AS comment_count,
			(SELECT COUNT(*) FROM votes WHERE votes.user_id = users.id) AS vote_count`).
		Order("users.created_at DESC").
		Scan(&rows).Error
	return rows, err
}

func (r *userRepository) UpdateRole(ctx context.Context, id uuid.UUID, role string) error {
	res := r.db.WithContext(ctx).Model(&entity.User{}).Where("id = ?", id).Update("role", role)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *userRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&entity.User{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
