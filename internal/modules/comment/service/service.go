package comment

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"unicode/utf8"

	"stackit.dev/forum/internal/entity"
	answerRepo "stackit.dev/forum/internal/modules/answer/repository"
	"stackit.dev/forum/internal/modules/comment/dto"
	commentRepo "stackit.dev/forum/internal/modules/comment/repository"
	notifService "stackit.dev/forum/internal/modules/notification/service"
	userRepo "stackit.dev/forum/internal/modules/user/repository"
	"stackit.dev/forum/pkg/apperror"
	commonDto "stackit.dev/forum/pkg/dto"
	"stackit.dev/forum/pkg/mention"
	"stackit.dev/forum/pkg/ratelimiter"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const maxCommentLen = 500

type CommentService interface {
	Add(ctx context.Context, caller *entity.User, answerID uuid.UUID, req dto.AddCommentRequest) (*commonDto.CommentResponse, error)
	ListByAnswer(ctx context.Context, answerID uuid.UUID) ([]commonDto.CommentResponse, error)
	Delete(ctx context.Context, caller *entity.User, id uuid.UUID) error
	ModerateDelete(ctx context.Context, caller *entity.User, id uuid.UUID) error
}

type commentService struct {
	commentRepo         commentRepo.CommentRepository
	answerRepo          answerRepo.AnswerRepository
	userRepo            userRepo.UserRepository
	notificationService notifService.NotificationService
	limiter             *ratelimiter.Limiter
}

func NewCommentService(commentRepo commentRepo.CommentRepository, answerRepo answerRepo.AnswerRepository, userRepo userRepo.UserRepository, notificationService notifService.NotificationService, limiter *ratelimiter.Limiter) CommentService {
	return &commentService{
		commentRepo:         commentRepo,
		answerRepo:          answerRepo,
		userRepo:            userRepo,
		notificationService: notificationService,
		limiter:             limiter,
	}
}

func (s *commentService) Add(ctx context.Context, caller *entity.User, answerID uuid.UUID, req dto.AddCommentRequest) (*commonDto.CommentResponse, error) {
	if caller == nil {
		return nil, apperror.ErrUnauthorized
	}

	text := strings.TrimSpace(req.Content)
	if text == "" {
		return nil, apperror.Field("content", "comment cannot be empty")
	}
	// The limit applies to the submitted text, surrounding whitespace included.
	if utf8.RuneCountInString(req.Content) > maxCommentLen {
		return nil, apperror.Field("content", "comment must be at most %d characters", maxCommentLen)
	}

	answer, err := s.findAnswer(ctx, answerID)
	if err != nil {
		return nil, err
	}

	release, err := s.limiter.Acquire(ctx, caller.ID, ratelimiter.ScopeComment)
	if err != nil {
		return nil, err
	}

	comment := &entity.Comment{
		Content:  text,
		UserID:   caller.ID,
		AnswerID: answer.ID,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		release()
		return nil, err
	}
	comment.User = *caller

	s.notify(ctx, caller, answer, comment)

	res := commonDto.NewCommentResponse(*comment)
	return &res, nil
}

// notify tells the answer owner and every mentioned user. The two are
// separate events, so an owner who is also mentioned hears about both.
func (s *commentService) notify(ctx context.Context, caller *entity.User, answer *entity.Answer, comment *entity.Comment) {
	if s.notificationService == nil {
		return
	}
	link := entity.CommentLink(answer.QuestionID, comment.ID)

	if answer.UserID != caller.ID {
		message := fmt.Sprintf("%s commented on your answer", caller.Username)
		if err := s.notificationService.Notify(ctx, answer.UserID, caller, message, link); err != nil {
			log.Printf("notification: comment %s: %v", comment.ID, err)
		}
	}

	names := mention.Extract(comment.Content)
	if len(names) == 0 {
		return
	}

	users, err := s.userRepo.FindByUsernames(ctx, names)
	if err != nil {
		log.Printf("notification: resolve mentions for comment %s: %v", comment.ID, err)
		return
	}
	byName := make(map[string]entity.User, len(users))
	for _, u := range users {
		byName[u.Username] = u
	}

	message := fmt.Sprintf("%s mentioned you in a comment", caller.Username)
	for _, name := range names {
		u, ok := byName[name]
		if !ok || u.ID == caller.ID {
			continue
		}
		if err := s.notificationService.Notify(ctx, u.ID, caller, message, link); err != nil {
			log.Printf("notification: mention %s in comment %s: %v", name, comment.ID, err)
		}
	}
}

func (s *commentService) ListByAnswer(ctx context.Context, answerID uuid.UUID) ([]commonDto.CommentResponse, error) {
	if _, err := s.findAnswer(ctx, answerID); err != nil {
		return nil, err
	}

	comments, err := s.commentRepo.FindByAnswerID(ctx, answerID)
	if err != nil {
		return nil, err
	}

	res := make([]commonDto.CommentResponse, 0, len(comments))
	for _, c := range comments {
		res = append(res, commonDto.NewCommentResponse(c))
	}
	return res, nil
}

func (s *commentService) Delete(ctx context.Context, caller *entity.User, id uuid.UUID) error {
	if caller == nil {
		return apperror.ErrUnauthorized
	}

	comment, err := s.commentRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("comment not found: %w", apperror.ErrNotFound)
		}
		return err
	}
	if comment.UserID != caller.ID {
		return fmt.Errorf("only the comment owner can delete it: %w", apperror.ErrForbidden)
	}

	return s.delete(ctx, id)
}

func (s *commentService) ModerateDelete(ctx context.Context, caller *entity.User, id uuid.UUID) error {
	if caller == nil {
		return apperror.ErrUnauthorized
	}
	if !caller.IsAdmin() {
		return fmt.Errorf("admin role required: %w", apperror.ErrForbidden)
	}
	return s.delete(ctx, id)
}

func (s *commentService) delete(ctx context.Context, id uuid.UUID) error {
	if err := s.commentRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("comment not found: %w", apperror.ErrNotFound)
		}
		return err
	}
	return nil
}

func (s *commentService) findAnswer(ctx context.Context, id uuid.UUID) (*entity.Answer, error) {
	answer, err := s.answerRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("answer not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}
	return answer, nil
}
