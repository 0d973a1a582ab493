package service

import (
	"context"

	"stackit.dev/forum/internal/modules/admin/dto"
)

// Stats returns the dashboard totals.
func (s *adminService) Stats(ctx context.Context) (*dto.StatsResponse, error) {
	var (
		stats dto.StatsResponse
		err   error
	)

	if stats.Users, err = s.userRepo.Count(ctx); err != nil {
		return nil, err
	}
	if stats.Questions, err = s.questionRepo.Count(ctx); err != nil {
		return nil, err
	}
	if stats.Answers, err = s.answerRepo.Count(ctx); err != nil {
		return nil, err
	}
	if stats.Comments, err = s.commentRepo.Count(ctx); err != nil {
		return nil, err
	}
	if stats.Votes, err = s.voteRepo.Count(ctx); err != nil {
		return nil, err
	}

	return &stats, nil
}
