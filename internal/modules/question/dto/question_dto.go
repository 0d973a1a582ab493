package dto

import (
	"time"

	commonDto "stackit.dev/forum/pkg/dto"

	"github.com/google/uuid"
)

type AskQuestionRequest struct {
	Title         string   `json:"title" binding:"required,min=5,max=100"`
	Description   string   `json:"description" binding:"required"`
	Tags          []string `json:"tags" binding:"required,min=1,max=5"`
	ContentFormat string   `json:"content_format" binding:"omitempty,oneof=html markdown"`
}

type AcceptAnswerRequest struct {
	AnswerID string `json:"answer_id" binding:"required,uuid"`
}

type QuestionFilter struct {
	OwnerID string `form:"owner_id" binding:"omitempty,uuid"`
	Status  string `form:"status" binding:"omitempty,oneof=all unanswered answered accepted"`
	Search  string `form:"q"`
	Tag     string `form:"tag"`
	Sort    string `form:"sort" binding:"omitempty,oneof=newest oldest most_answers least_answers"`
	Page    int    `form:"page" binding:"omitempty,min=1"`
	Limit   int    `form:"limit" binding:"omitempty,min=1,max=50"`
}

type QuestionSummaryResponse struct {
	ID          uuid.UUID                `json:"id"`
	Title       string                   `json:"title"`
	Excerpt     string                   `json:"excerpt"`
	Author      commonDto.AuthorResponse `json:"author"`
	Tags        []commonDto.TagResponse  `json:"tags"`
	AnswerCount int64                    `json:"answer_count"`
	ViewCount   int64                    `json:"view_count"`
	IsAccepted  bool                     `json:"is_accepted"`
	CreatedAt   time.Time                `json:"created_at"`
}

type PaginatedQuestionResponse struct {
	Data []QuestionSummaryResponse `json:"data"`
	Meta commonDto.PaginationMeta  `json:"meta"`
}

type QuestionDetailResponse struct {
	ID               uuid.UUID                  `json:"id"`
	Title            string                     `json:"title"`
	Body             string                     `json:"body"`
	Author           commonDto.AuthorResponse   `json:"author"`
	Tags             []commonDto.TagResponse    `json:"tags"`
	AcceptedAnswerID *uuid.UUID                 `json:"accepted_answer_id"`
	IsOwner          bool                       `json:"is_owner"`
	ViewCount        int64                      `json:"view_count"`
	Answers          []commonDto.AnswerResponse `json:"answers"`
	CreatedAt        time.Time                  `json:"created_at"`
	UpdatedAt        time.Time                  `json:"updated_at"`
}

type AcceptAnswerResponse struct {
	QuestionID       uuid.UUID `json:"question_id"`
	AcceptedAnswerID uuid.UUID `json:"accepted_answer_id"`
}
