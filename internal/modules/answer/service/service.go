package answer

import (
	"context"
	"errors"
	"fmt"
	"log"
	"unicode/utf8"

	"stackit.dev/forum/internal/entity"
	"stackit.dev/forum/internal/modules/answer/dto"
	answerRepo "stackit.dev/forum/internal/modules/answer/repository"
	notifService "stackit.dev/forum/internal/modules/notification/service"
	questionRepo "stackit.dev/forum/internal/modules/question/repository"
	"stackit.dev/forum/pkg/apperror"
	commonDto "stackit.dev/forum/pkg/dto"
	"stackit.dev/forum/pkg/ratelimiter"
	"stackit.dev/forum/pkg/richtext"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	minContentTextLen = 10
	maxContentLen     = 5000
)

// QuestionIndexer refreshes a question's search document after its answers change.
type QuestionIndexer interface {
	RefreshIndex(ctx context.Context, id uuid.UUID)
}

type AnswerService interface {
	Submit(ctx context.Context, caller *entity.User, questionID uuid.UUID, req dto.SubmitAnswerRequest) (*commonDto.AnswerResponse, error)
	ModerateDelete(ctx context.Context, caller *entity.User, id uuid.UUID) error
}

type answerService struct {
	answerRepo          answerRepo.AnswerRepository
	questionRepo        questionRepo.QuestionRepository
	notificationService notifService.NotificationService
	limiter             *ratelimiter.Limiter
	indexer             QuestionIndexer
}

func NewAnswerService(answerRepo answerRepo.AnswerRepository, questionRepo questionRepo.QuestionRepository, notificationService notifService.NotificationService, limiter *ratelimiter.Limiter, indexer QuestionIndexer) AnswerService {
	return &answerService{
		answerRepo:          answerRepo,
		questionRepo:        questionRepo,
		notificationService: notificationService,
		limiter:             limiter,
		indexer:             indexer,
	}
}

func (s *answerService) Submit(ctx context.Context, caller *entity.User, questionID uuid.UUID, req dto.SubmitAnswerRequest) (*commonDto.AnswerResponse, error) {
	if caller == nil {
		return nil, apperror.ErrUnauthorized
	}

	if utf8.RuneCountInString(req.Content) > maxContentLen {
		return nil, apperror.Field("content", "answer must be at most %d characters", maxContentLen)
	}
	content, err := richtext.Prepare(req.Content, req.ContentFormat)
	if err != nil {
		return nil, apperror.Field("content", "answer could not be rendered")
	}
	if richtext.PlainLen(content) < minContentTextLen {
		return nil, apperror.Field("content", "answer must contain at least %d characters of text", minContentTextLen)
	}

	question, err := s.questionRepo.FindByID(ctx, questionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("question not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}

	release, err := s.limiter.Acquire(ctx, caller.ID, ratelimiter.ScopeAnswer)
	if err != nil {
		return nil, err
	}

	answer := &entity.Answer{
		Content:    content,
		UserID:     caller.ID,
		QuestionID: question.ID,
	}
	if err := s.answerRepo.Create(ctx, answer); err != nil {
		release()
		return nil, err
	}

	if question.UserID != caller.ID && s.notificationService != nil {
		message := fmt.Sprintf("%s answered your question: %s", caller.Username, question.Title)
		if err := s.notificationService.Notify(ctx, question.UserID, caller, message, question.Link()); err != nil {
			log.Printf("notification: answer %s: %v", answer.ID, err)
		}
	}

	if s.indexer != nil {
		s.indexer.RefreshIndex(ctx, question.ID)
	}

	return &commonDto.AnswerResponse{
		ID:         answer.ID,
		Content:    answer.Content,
		Author:     commonDto.NewAuthorResponse(*caller),
		QuestionID: answer.QuestionID,
		Comments:   []commonDto.CommentResponse{},
		CreatedAt:  answer.CreatedAt,
	}, nil
}

func (s *answerService) ModerateDelete(ctx context.Context, caller *entity.User, id uuid.UUID) error {
	if caller == nil {
		return apperror.ErrUnauthorized
	}
	if !caller.IsAdmin() {
		return fmt.Errorf("admin role required: %w", apperror.ErrForbidden)
	}

	answer, err := s.answerRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("answer not found: %w", apperror.ErrNotFound)
		}
		return err
	}

	if err := s.answerRepo.DeleteCascade(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("answer not found: %w", apperror.ErrNotFound)
		}
		return err
	}

	if s.indexer != nil {
		s.indexer.RefreshIndex(ctx, answer.QuestionID)
	}
	return nil
}
