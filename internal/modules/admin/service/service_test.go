package service

import (
	"context"
	"testing"
	"time"

	"stackit.dev/forum/internal/entity"
	answerRepo "stackit.dev/forum/internal/modules/answer/repository"
	commentRepo "stackit.dev/forum/internal/modules/comment/repository"
	questionRepo "stackit.dev/forum/internal/modules/question/repository"
	userRepo "stackit.dev/forum/internal/modules/user/repository"
	voteRepo "stackit.dev/forum/internal/modules/vote/repository"
	"stackit.dev/forum/pkg/apperror"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type users struct {
	userRepo.UserRepository
	rows map[uuid.UUID]*entity.User
}

func (u *users) UpdateRole(ctx context.Context, id uuid.UUID, role string) error {
	row, ok := u.rows[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	row.Role = role
	return nil
}

func (u *users) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	row, ok := u.rows[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return row, nil
}

func (u *users) Count(ctx context.Context) (int64, error) { return int64(len(u.rows)), nil }

type questions struct {
	questionRepo.QuestionRepository
}

func (questions) Count(ctx context.Context) (int64, error) { return 3, nil }

type answers struct {
	answerRepo.AnswerRepository
	rows []entity.Answer
}

func (a answers) Count(ctx context.Context) (int64, error) { return int64(len(a.rows)), nil }

func (a answers) FindAll(ctx context.Context, offset, limit int) ([]entity.Answer, int64, error) {
	return a.rows, int64(len(a.rows)), nil
}

type comments struct{ commentRepo.CommentRepository }

func (comments) Count(ctx context.Context) (int64, error) { return 7, nil }

type votes struct {
	voteRepo.VoteRepository
	scores map[uuid.UUID]int64
}

func (v votes) Count(ctx context.Context) (int64, error) { return 11, nil }

func (v votes) Scores(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]int64, error) {
	return v.scores, nil
}

func TestUpdateRole(t *testing.T) {
	admin := &entity.User{ID: uuid.New(), Username: "root", Role: entity.RoleAdmin}
	alice := &entity.User{ID: uuid.New(), Username: "alice", Role: entity.RoleUser}
	repo := &users{rows: map[uuid.UUID]*entity.User{admin.ID: admin, alice.ID: alice}}
	svc := NewAdminService(repo, questions{}, answers{}, comments{}, votes{})
	ctx := context.Background()

	_, err := svc.UpdateRole(ctx, alice, alice.ID, entity.RoleAdmin)
	assert.ErrorIs(t, err, apperror.ErrForbidden)
	assert.Equal(t, entity.RoleUser, alice.Role)

	_, err = svc.UpdateRole(ctx, admin, alice.ID, "owner")
	var fieldErr *apperror.FieldError
	require.ErrorAs(t, err, &fieldErr)
	assert.Equal(t, "role", fieldErr.Field)

	_, err = svc.UpdateRole(ctx, admin, uuid.New(), entity.RoleAdmin)
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	updated, err := svc.UpdateRole(ctx, admin, alice.ID, entity.RoleAdmin)
	require.NoError(t, err)
	assert.True(t, updated.IsAdmin())
}

func TestStats(t *testing.T) {
	repo := &users{rows: map[uuid.UUID]*entity.User{uuid.New(): {}, uuid.New(): {}}}
	svc := NewAdminService(repo, questions{}, answers{rows: make([]entity.Answer, 5)}, comments{}, votes{})

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.Users)
	assert.Equal(t, int64(3), stats.Questions)
	assert.Equal(t, int64(5), stats.Answers)
	assert.Equal(t, int64(7), stats.Comments)
	assert.Equal(t, int64(11), stats.Votes)
}

func TestGetAllAnswersCarriesScores(t *testing.T) {
	id := uuid.New()
	rows := []entity.Answer{{
		ID:        id,
		Content:   "<p>Use <b>valgrind</b>.</p>",
		User:      entity.User{Username: "bob"},
		CreatedAt: time.Now(),
	}}
	svc := NewAdminService(&users{}, questions{}, answers{rows: rows}, comments{}, votes{scores: map[uuid.UUID]int64{id: -2}})

	res, err := svc.GetAllAnswers(context.Background(), 0, 0)
	require.NoError(t, err)
	require.Len(t, res.Data, 1)
	assert.Equal(t, "Use valgrind.", res.Data[0].Excerpt)
	assert.Equal(t, int64(-2), res.Data[0].Score)
	assert.Equal(t, "bob", res.Data[0].Author.Username)
	assert.Equal(t, 50, res.Meta.Limit)
}
