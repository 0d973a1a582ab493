package dto

import (
	"time"

	"stackit.dev/forum/internal/entity"

	"github.com/google/uuid"
)

type AuthorResponse struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	AvatarURL *string   `json:"avatar_url"`
}

func NewAuthorResponse(u entity.User) AuthorResponse {
	return AuthorResponse{ID: u.ID, Username: u.Username, AvatarURL: u.AvatarURL}
}

type TagResponse struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

type PaginationMeta struct {
	CurrentPage int   `json:"current_page"`
	TotalPages  int   `json:"total_pages"`
	TotalItems  int64 `json:"total_items"`
	Limit       int   `json:"limit"`
}

// NewPaginationMeta fills in TotalPages from total and limit.
func NewPaginationMeta(page, limit int, total int64) PaginationMeta {
	totalPages := 0
	if limit > 0 {
		totalPages = int(total) / limit
		if int(total)%limit != 0 {
			totalPages++
		}
	}
	return PaginationMeta{
		CurrentPage: page,
		TotalPages:  totalPages,
		TotalItems:  total,
		Limit:       limit,
	}
}

// NormalizePage applies the default page size and clamps it to max.
func NormalizePage(page, limit, defaultLimit, max int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > max {
		limit = max
	}
	return page, limit
}

type CommentResponse struct {
	ID        uuid.UUID      `json:"id"`
	Content   string         `json:"content"`
	Author    AuthorResponse `json:"author"`
	AnswerID  uuid.UUID      `json:"answer_id"`
	CreatedAt time.Time      `json:"created_at"`
}

func NewCommentResponse(c entity.Comment) CommentResponse {
	return CommentResponse{
		ID:        c.ID,
		Content:   c.Content,
		Author:    NewAuthorResponse(c.User),
		AnswerID:  c.AnswerID,
		CreatedAt: c.CreatedAt,
	}
}

func NewTagResponses(tags []entity.Tag) []TagResponse {
	res := make([]TagResponse, 0, len(tags))
	for _, t := range tags {
		res = append(res, TagResponse{ID: t.ID, Name: t.Name})
	}
	return res
}

// AnswerResponse is an answer as shown under its question.
type AnswerResponse struct {
	ID         uuid.UUID         `json:"id"`
	Content    string            `json:"content"`
	Author     AuthorResponse    `json:"author"`
	QuestionID uuid.UUID         `json:"question_id"`
	Score      int64             `json:"score"`
	UserVote   int               `json:"user_vote"`
	IsAccepted bool              `json:"is_accepted"`
	Comments   []CommentResponse `json:"comments"`
	CreatedAt  time.Time         `json:"created_at"`
}

// VoteResponse is the ledger state of one answer after a vote.
type VoteResponse struct {
	AnswerID uuid.UUID `json:"answer_id"`
	Score    int64     `json:"score"`
	UserVote int       `json:"user_vote"`
}
