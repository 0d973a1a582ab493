package dto

import (
	"time"

	commonDto "stackit.dev/forum/pkg/dto"

	"github.com/google/uuid"
)

type UpdateRoleInput struct {
	Role string `json:"role" binding:"required,oneof=USER ADMIN"`
}

type ListFilter struct {
	Page  int `form:"page" binding:"omitempty,min=1"`
	Limit int `form:"limit" binding:"omitempty,min=1,max=100"`
}

type AdminAnswerResponse struct {
	ID         uuid.UUID                `json:"id"`
	Excerpt    string                   `json:"excerpt"`
	Author     commonDto.AuthorResponse `json:"author"`
	QuestionID uuid.UUID                `json:"question_id"`
	Score      int64                    `json:"score"`
	CreatedAt  time.Time                `json:"created_at"`
}

type PaginatedAnswerResponse struct {
	Data []AdminAnswerResponse    `json:"data"`
	Meta commonDto.PaginationMeta `json:"meta"`
}

type PaginatedCommentResponse struct {
	Data []commonDto.CommentResponse `json:"data"`
	Meta commonDto.PaginationMeta    `json:"meta"`
}

type StatsResponse struct {
	Users     int64 `json:"users"`
	Questions int64 `json:"questions"`
	Answers   int64 `json:"answers"`
	Comments  int64 `json:"comments"`
	Votes     int64 `json:"votes"`
}
