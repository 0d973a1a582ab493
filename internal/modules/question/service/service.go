package question

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"unicode/utf8"

	"stackit.dev/forum/internal/entity"
	answerRepo "stackit.dev/forum/internal/modules/answer/repository"
	"stackit.dev/forum/internal/modules/question/dto"
	repo "stackit.dev/forum/internal/modules/question/repository"
	search "stackit.dev/forum/internal/modules/search/service"
	tag "stackit.dev/forum/internal/modules/tag/service"
	voteRepo "stackit.dev/forum/internal/modules/vote/repository"
	"stackit.dev/forum/pkg/apperror"
	commonDto "stackit.dev/forum/pkg/dto"
	"stackit.dev/forum/pkg/ratelimiter"
	"stackit.dev/forum/pkg/richtext"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	minTitleLen     = 5
	maxTitleLen     = 100
	minBodyTextLen  = 20
	maxBodyLen      = 5000
	excerptLen      = 200
	searchHitLimit  = 1000
	reindexPageSize = 500
)

type Service interface {
	Ask(ctx context.Context, caller *entity.User, req dto.AskQuestionRequest) (*entity.Question, error)
	Get(ctx context.Context, id uuid.UUID, viewer *entity.User) (*dto.QuestionDetailResponse, error)
	List(ctx context.Context, filter dto.QuestionFilter) (*dto.PaginatedQuestionResponse, error)
	Accept(ctx context.Context, caller *entity.User, questionID, answerID uuid.UUID) (*dto.AcceptAnswerResponse, error)
	Delete(ctx context.Context, caller *entity.User, id uuid.UUID) error
	ModerateDelete(ctx context.Context, caller *entity.User, id uuid.UUID) error
	// RefreshIndex re-sends one question to the search index. Failures are logged.
	RefreshIndex(ctx context.Context, id uuid.UUID)
	Reindex(ctx context.Context) (int, error)
}

type service struct {
	questionRepo repo.QuestionRepository
	answerRepo   answerRepo.AnswerRepository
	voteRepo     voteRepo.VoteRepository
	tagService   tag.TagService
	search       search.SearchService
	limiter      *ratelimiter.Limiter
}

// NewService wires the question store. search and limiter may be nil.
func NewService(questionRepo repo.QuestionRepository, answerRepo answerRepo.AnswerRepository, voteRepo voteRepo.VoteRepository, tagService tag.TagService, search search.SearchService, limiter *ratelimiter.Limiter) Service {
	return &service{
		questionRepo: questionRepo,
		answerRepo:   answerRepo,
		voteRepo:     voteRepo,
		tagService:   tagService,
		search:       search,
		limiter:      limiter,
	}
}

func (s *service) Ask(ctx context.Context, caller *entity.User, req dto.AskQuestionRequest) (*entity.Question, error) {
	if caller == nil {
		return nil, apperror.ErrUnauthorized
	}

	title := strings.TrimSpace(req.Title)
	if n := utf8.RuneCountInString(title); n < minTitleLen || n > maxTitleLen {
		return nil, apperror.Field("title", "title must be between %d and %d characters", minTitleLen, maxTitleLen)
	}
	if utf8.RuneCountInString(req.Description) > maxBodyLen {
		return nil, apperror.Field("description", "description must be at most %d characters", maxBodyLen)
	}

	body, err := richtext.Prepare(req.Description, req.ContentFormat)
	if err != nil {
		return nil, apperror.Field("description", "description could not be rendered")
	}
	if richtext.PlainLen(body) < minBodyTextLen {
		return nil, apperror.Field("description", "description must contain at least %d characters of text", minBodyTextLen)
	}

	tagNames, err := tag.NormalizeTags(req.Tags)
	if err != nil {
		return nil, err
	}

	release, err := s.limiter.Acquire(ctx, caller.ID, ratelimiter.ScopeQuestion)
	if err != nil {
		return nil, err
	}
	created := false
	defer func() {
		if !created {
			release()
		}
	}()

	tags, err := s.tagService.FindOrCreate(ctx, tagNames)
	if err != nil {
		return nil, err
	}

	question := &entity.Question{
		Title:  title,
		Body:   body,
		UserID: caller.ID,
		Tags:   tags,
	}
	if err := s.questionRepo.Create(ctx, question); err != nil {
		return nil, err
	}
	created = true
	question.User = *caller

	if s.search != nil {
		if err := s.search.IndexQuestion(search.NewQuestionDocument(question, 0)); err != nil {
			log.Printf("search: index question %s: %v", question.ID, err)
		}
	}

	return question, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID, viewer *entity.User) (*dto.QuestionDetailResponse, error) {
	question, err := s.questionRepo.FindDetail(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("question not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}

	answerIDs := make([]uuid.UUID, len(question.Answers))
	for i, a := range question.Answers {
		answerIDs[i] = a.ID
	}

	scores, err := s.voteRepo.Scores(ctx, answerIDs)
	if err != nil {
		return nil, err
	}
	userVotes := map[uuid.UUID]int{}
	if viewer != nil {
		userVotes, err = s.voteRepo.UserVotes(ctx, viewer.ID, answerIDs)
		if err != nil {
			return nil, err
		}
	}

	answers := make([]commonDto.AnswerResponse, 0, len(question.Answers))
	for _, a := range question.Answers {
		comments := make([]commonDto.CommentResponse, 0, len(a.Comments))
		for _, c := range a.Comments {
			comments = append(comments, commonDto.NewCommentResponse(c))
		}
		answers = append(answers, commonDto.AnswerResponse{
			ID:         a.ID,
			Content:    a.Content,
			Author:     commonDto.NewAuthorResponse(a.User),
			QuestionID: a.QuestionID,
			Score:      scores[a.ID],
			UserVote:   userVotes[a.ID],
			IsAccepted: question.AcceptedAnswerID != nil && *question.AcceptedAnswerID == a.ID,
			Comments:   comments,
			CreatedAt:  a.CreatedAt,
		})
	}
	SortAnswers(answers)

	return &dto.QuestionDetailResponse{
		ID:               question.ID,
		Title:            question.Title,
		Body:             question.Body,
		Author:           commonDto.NewAuthorResponse(question.User),
		Tags:             commonDto.NewTagResponses(question.Tags),
		AcceptedAnswerID: question.AcceptedAnswerID,
		IsOwner:          viewer != nil && viewer.ID == question.UserID,
		ViewCount:        question.ViewCount,
		Answers:          answers,
		CreatedAt:        question.CreatedAt,
		UpdatedAt:        question.UpdatedAt,
	}, nil
}

// SortAnswers puts the accepted answer first, then orders by score and recency.
func SortAnswers(answers []commonDto.AnswerResponse) {
	sort.SliceStable(answers, func(i, j int) bool {
		a, b := answers[i], answers[j]
		if a.IsAccepted != b.IsAccepted {
			return a.IsAccepted
		}
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		return a.CreatedAt.After(b.CreatedAt)
	})
}

func (s *service) List(ctx context.Context, filter dto.QuestionFilter) (*dto.PaginatedQuestionResponse, error) {
	page, limit := commonDto.NormalizePage(filter.Page, filter.Limit, 20, 50)

	params := repo.ListParams{
		Status: filter.Status,
		Tag:    strings.TrimSpace(filter.Tag),
		Sort:   filter.Sort,
		Offset: (page - 1) * limit,
		Limit:  limit,
	}

	if filter.OwnerID != "" {
		ownerID, err := uuid.Parse(filter.OwnerID)
		if err != nil {
			return nil, apperror.Field("owner_id", "invalid owner_id")
		}
		params.OwnerID = &ownerID
	}

	if q := strings.TrimSpace(filter.Search); q != "" {
		params.Search = q
		if s.search != nil {
			ids, err := s.search.SearchIDs(q, searchHitLimit)
			if err != nil {
				log.Printf("search: query %q failed, falling back to database: %v", q, err)
			} else {
				params.IDs = ids
				if params.IDs == nil {
					params.IDs = []uuid.UUID{}
				}
				params.Search = ""
			}
		}
	}

	rows, total, err := s.questionRepo.FindAll(ctx, params)
	if err != nil {
		return nil, err
	}

	data := make([]dto.QuestionSummaryResponse, 0, len(rows))
	for _, row := range rows {
		data = append(data, newSummary(row))
	}

	return &dto.PaginatedQuestionResponse{
		Data: data,
		Meta: commonDto.NewPaginationMeta(page, limit, total),
	}, nil
}

func newSummary(row repo.QuestionWithCount) dto.QuestionSummaryResponse {
	excerpt := richtext.PlainText(row.Body)
	if utf8.RuneCountInString(excerpt) > excerptLen {
		excerpt = string([]rune(excerpt)[:excerptLen]) + "..."
	}
	return dto.QuestionSummaryResponse{
		ID:          row.ID,
		Title:       row.Title,
		Excerpt:     excerpt,
		Author:      commonDto.NewAuthorResponse(row.User),
		Tags:        commonDto.NewTagResponses(row.Tags),
		AnswerCount: row.AnswerCount,
		ViewCount:   row.ViewCount,
		IsAccepted:  row.AcceptedAnswerID != nil,
		CreatedAt:   row.CreatedAt,
	}
}

func (s *service) Accept(ctx context.Context, caller *entity.User, questionID, answerID uuid.UUID) (*dto.AcceptAnswerResponse, error) {
	if caller == nil {
		return nil, apperror.ErrUnauthorized
	}

	question, err := s.findQuestion(ctx, questionID)
	if err != nil {
		return nil, err
	}
	if question.UserID != caller.ID {
		return nil, fmt.Errorf("only the question owner can accept an answer: %w", apperror.ErrForbidden)
	}

	answer, err := s.answerRepo.FindByID(ctx, answerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("answer not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}
	if answer.QuestionID != question.ID {
		return nil, fmt.Errorf("answer does not belong to this question: %w", apperror.ErrConflict)
	}

	result := &dto.AcceptAnswerResponse{QuestionID: question.ID, AcceptedAnswerID: answer.ID}
	if question.AcceptedAnswerID != nil && *question.AcceptedAnswerID == answer.ID {
		return result, nil
	}

	if err := s.questionRepo.SetAcceptedAnswer(ctx, question.ID, answer.ID); err != nil {
		return nil, err
	}
	s.RefreshIndex(ctx, question.ID)

	return result, nil
}

func (s *service) Delete(ctx context.Context, caller *entity.User, id uuid.UUID) error {
	if caller == nil {
		return apperror.ErrUnauthorized
	}

	question, err := s.findQuestion(ctx, id)
	if err != nil {
		return err
	}
	if question.UserID != caller.ID {
		return fmt.Errorf("only the question owner can delete it: %w", apperror.ErrForbidden)
	}

	return s.deleteCascade(ctx, id)
}

func (s *service) ModerateDelete(ctx context.Context, caller *entity.User, id uuid.UUID) error {
	if caller == nil {
		return apperror.ErrUnauthorized
	}
	if !caller.IsAdmin() {
		return fmt.Errorf("admin role required: %w", apperror.ErrForbidden)
	}
	return s.deleteCascade(ctx, id)
}

func (s *service) deleteCascade(ctx context.Context, id uuid.UUID) error {
	if err := s.questionRepo.DeleteCascade(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("question not found: %w", apperror.ErrNotFound)
		}
		return err
	}

	if s.search != nil {
		if err := s.search.DeleteQuestion(id); err != nil {
			log.Printf("search: delete question %s: %v", id, err)
		}
	}
	return nil
}

func (s *service) findQuestion(ctx context.Context, id uuid.UUID) (*entity.Question, error) {
	question, err := s.questionRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("question not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}
	return question, nil
}

func (s *service) RefreshIndex(ctx context.Context, id uuid.UUID) {
	if s.search == nil {
		return
	}

	question, err := s.questionRepo.FindByID(ctx, id)
	if err != nil {
		log.Printf("search: load question %s: %v", id, err)
		return
	}
	count, err := s.questionRepo.CountAnswers(ctx, id)
	if err != nil {
		log.Printf("search: count answers %s: %v", id, err)
		return
	}
	if err := s.search.IndexQuestion(search.NewQuestionDocument(question, int(count))); err != nil {
		log.Printf("search: index question %s: %v", id, err)
	}
}

// Reindex pushes every question to the search index and returns how many were sent.
func (s *service) Reindex(ctx context.Context) (int, error) {
	if s.search == nil {
		return 0, errors.New("search is not configured")
	}

	sent := 0
	for offset := 0; ; offset += reindexPageSize {
		rows, _, err := s.questionRepo.FindAll(ctx, repo.ListParams{
			Sort:   repo.SortOldest,
			Offset: offset,
			Limit:  reindexPageSize,
		})
		if err != nil {
			return sent, err
		}
		if len(rows) == 0 {
			return sent, nil
		}

		docs := make([]search.QuestionDocument, 0, len(rows))
		for i := range rows {
			docs = append(docs, search.NewQuestionDocument(&rows[i].Question, int(rows[i].AnswerCount)))
		}
		if err := s.search.Reindex(docs); err != nil {
			return sent, err
		}
		sent += len(docs)

		if len(rows) < reindexPageSize {
			return sent, nil
		}
	}
}
