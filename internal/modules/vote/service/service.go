package vote

import (
	"context"
	"errors"
	"fmt"

	"stackit.dev/forum/internal/entity"
	answerRepo "stackit.dev/forum/internal/modules/answer/repository"
	voteRepo "stackit.dev/forum/internal/modules/vote/repository"
	"stackit.dev/forum/pkg/apperror"
	commonDto "stackit.dev/forum/pkg/dto"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type VoteService interface {
	// Cast records value (+1, -1) for the caller, or removes the caller's vote when value is 0.
	Cast(ctx context.Context, caller *entity.User, answerID uuid.UUID, value int) (*commonDto.VoteResponse, error)
	Score(ctx context.Context, answerID uuid.UUID) (int64, error)
}

type voteService struct {
	voteRepo   voteRepo.VoteRepository
	answerRepo answerRepo.AnswerRepository
}

func NewVoteService(voteRepo voteRepo.VoteRepository, answerRepo answerRepo.AnswerRepository) VoteService {
	return &voteService{voteRepo: voteRepo, answerRepo: answerRepo}
}

func (s *voteService) Cast(ctx context.Context, caller *entity.User, answerID uuid.UUID, value int) (*commonDto.VoteResponse, error) {
	if caller == nil {
		return nil, apperror.ErrUnauthorized
	}
	if value < -1 || value > 1 {
		return nil, apperror.Field("value", "value must be one of -1 0 1")
	}

	if _, err := s.answerRepo.FindByID(ctx, answerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("answer not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}

	var err error
	if value == 0 {
		err = s.voteRepo.Delete(ctx, caller.ID, answerID)
	} else {
		err = s.voteRepo.Upsert(ctx, &entity.Vote{UserID: caller.ID, AnswerID: answerID, Value: value})
	}
	if err != nil {
		return nil, err
	}

	score, err := s.voteRepo.Score(ctx, answerID)
	if err != nil {
		return nil, err
	}

	return &commonDto.VoteResponse{AnswerID: answerID, Score: score, UserVote: value}, nil
}

func (s *voteService) Score(ctx context.Context, answerID uuid.UUID) (int64, error) {
	return s.voteRepo.Score(ctx, answerID)
}
