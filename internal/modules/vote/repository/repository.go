package repository

import (
	"context"

	"stackit.dev/forum/internal/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type VoteRepository interface {
	// Upsert writes the caller's vote, replacing any earlier value for the same answer.
	Upsert(ctx context.Context, vote *entity.Vote) error
	Delete(ctx context.Context, userID, answerID uuid.UUID) error
	Score(ctx context.Context, answerID uuid.UUID) (int64, error)
	Scores(ctx context.Context, answerIDs []uuid.UUID) (map[uuid.UUID]int64, error)
	UserVotes(ctx context.Context, userID uuid.UUID, answerIDs []uuid.UUID) (map[uuid.UUID]int, error)
	Count(ctx context.Context) (int64, error)
}

type voteRepository struct {
	db *gorm.DB
}

func NewVoteRepository(db *gorm.DB) VoteRepository {
	return &voteRepository{db: db}
}

func (r *voteRepository) Upsert(ctx context.Context, vote *entity.Vote) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "answer_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(vote).Error
}

func (r *voteRepository) Delete(ctx context.Context, userID, answerID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND answer_id = ?", userID, answerID).
		Delete(&entity.Vote{}).Error
}

func (r *voteRepository) Score(ctx context.Context, answerID uuid.UUID) (int64, error) {
	var score int64
	err := r.db.WithContext(ctx).
		Model(&entity.Vote{}).
		Select("COALESCE(SUM(value), 0)").
		Where("answer_id = ?", answerID).
		Scan(&score).Error
	return score, err
}

func (r *voteRepository) Scores(ctx context.Context, answerIDs []uuid.UUID) (map[uuid.UUID]int64, error) {
	scores := make(map[uuid.UUID]int64, len(answerIDs))
	if len(answerIDs) == 0 {
		return scores, nil
	}

	type Result struct {
		AnswerID uuid.UUID
		Score    int64
	}
	var results []Result
	err := r.db.WithContext(ctx).
		Model(&entity.Vote{}).
		Select("answer_id, SUM(value) AS score").
		Where("answer_id IN ?", answerIDs).
		Group("answer_id").
		Scan(&results).Error
	if err != nil {
		return nil, err
	}

	for _, res := range results {
		scores[res.AnswerID] = res.Score
	}
	return scores, nil
}

func (r *voteRepository) UserVotes(ctx context.Context, userID uuid.UUID, answerIDs []uuid.UUID) (map[uuid.UUID]int, error) {
	votes := make(map[uuid.UUID]int, len(answerIDs))
	if len(answerIDs) == 0 {
		return votes, nil
	}

	var rows []entity.Vote
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND answer_id IN ?", userID, answerIDs).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, v := range rows {
		votes[v.AnswerID] = v.Value
	}
	return votes, nil
}

func (r *voteRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Vote{}).Count(&count).Error
	return count, err
}
