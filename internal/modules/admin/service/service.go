package service

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	"stackit.dev/forum/internal/entity"
	"stackit.dev/forum/internal/modules/admin/dto"
	answerRepo "stackit.dev/forum/internal/modules/answer/repository"
	commentRepo "stackit.dev/forum/internal/modules/comment/repository"
	questionRepo "stackit.dev/forum/internal/modules/question/repository"
	userRepo "stackit.dev/forum/internal/modules/user/repository"
	voteRepo "stackit.dev/forum/internal/modules/vote/repository"
	"stackit.dev/forum/pkg/apperror"
	commonDto "stackit.dev/forum/pkg/dto"
	"stackit.dev/forum/pkg/richtext"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const excerptLen = 140

type AdminService interface {
	GetAllUsers(ctx context.Context) ([]userRepo.UserWithCounts, error)
	GetAllAnswers(ctx context.Context, page, limit int) (*dto.PaginatedAnswerResponse, error)
	GetAllComments(ctx context.Context, page, limit int) (*dto.PaginatedCommentResponse, error)
	UpdateRole(ctx context.Context, caller *entity.User, id uuid.UUID, role string) (*entity.User, error)
	Stats(ctx context.Context) (*dto.StatsResponse, error)
}

type adminService struct {
	userRepo     userRepo.UserRepository
	questionRepo questionRepo.QuestionRepository
	answerRepo   answerRepo.AnswerRepository
	commentRepo  commentRepo.CommentRepository
	voteRepo     voteRepo.VoteRepository
}

func NewAdminService(userRepo userRepo.UserRepository, questionRepo questionRepo.QuestionRepository, answerRepo answerRepo.AnswerRepository, commentRepo commentRepo.CommentRepository, voteRepo voteRepo.VoteRepository) AdminService {
	return &adminService{
		userRepo:     userRepo,
		questionRepo: questionRepo,
		answerRepo:   answerRepo,
		commentRepo:  commentRepo,
		voteRepo:     voteRepo,
	}
}

func (s *adminService) GetAllUsers(ctx context.Context) ([]userRepo.UserWithCounts, error) {
	users, err := s.userRepo.FindAllWithCounts(ctx)
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []userRepo.UserWithCounts{}
	}
	return users, nil
}

func (s *adminService) GetAllAnswers(ctx context.Context, page, limit int) (*dto.PaginatedAnswerResponse, error) {
	page, limit = commonDto.NormalizePage(page, limit, 50, 100)

	answers, total, err := s.answerRepo.FindAll(ctx, (page-1)*limit, limit)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, len(answers))
	for i, a := range answers {
		ids[i] = a.ID
	}
	scores, err := s.voteRepo.Scores(ctx, ids)
	if err != nil {
		return nil, err
	}

	data := make([]dto.AdminAnswerResponse, 0, len(answers))
	for _, a := range answers {
		data = append(data, dto.AdminAnswerResponse{
			ID:         a.ID,
			Excerpt:    excerpt(richtext.PlainText(a.Content)),
			Author:     commonDto.NewAuthorResponse(a.User),
			QuestionID: a.QuestionID,
			Score:      scores[a.ID],
			CreatedAt:  a.CreatedAt,
		})
	}

	return &dto.PaginatedAnswerResponse{
		Data: data,
		Meta: commonDto.NewPaginationMeta(page, limit, total),
	}, nil
}

func (s *adminService) GetAllComments(ctx context.Context, page, limit int) (*dto.PaginatedCommentResponse, error) {
	page, limit = commonDto.NormalizePage(page, limit, 50, 100)

	comments, total, err := s.commentRepo.FindAll(ctx, (page-1)*limit, limit)
	if err != nil {
		return nil, err
	}

	data := make([]commonDto.CommentResponse, 0, len(comments))
	for _, c := range comments {
		data = append(data, commonDto.NewCommentResponse(c))
	}

	return &dto.PaginatedCommentResponse{
		Data: data,
		Meta: commonDto.NewPaginationMeta(page, limit, total),
	}, nil
}

func (s *adminService) UpdateRole(ctx context.Context, caller *entity.User, id uuid.UUID, role string) (*entity.User, error) {
	if caller == nil {
		return nil, apperror.ErrUnauthorized
	}
	if !caller.IsAdmin() {
		return nil, fmt.Errorf("admin role required: %w", apperror.ErrForbidden)
	}
	if !entity.ValidRole(role) {
		return nil, apperror.Field("role", "role must be one of USER ADMIN")
	}

	if err := s.userRepo.UpdateRole(ctx, id, role); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}

	return s.userRepo.FindByID(ctx, id)
}

func excerpt(s string) string {
	if utf8.RuneCountInString(s) <= excerptLen {
		return s
	}
	return string([]rune(s)[:excerptLen]) + "..."
}
