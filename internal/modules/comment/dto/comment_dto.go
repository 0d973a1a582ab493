package dto

type AddCommentRequest struct {
	Content string `json:"content" binding:"required"`
}
