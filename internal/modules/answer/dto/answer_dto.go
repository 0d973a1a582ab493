package dto

type SubmitAnswerRequest struct {
	Content       string `json:"content" binding:"required"`
	ContentFormat string `json:"content_format" binding:"omitempty,oneof=html markdown"`
}

type AnswerFilter struct {
	Page  int `form:"page" binding:"omitempty,min=1"`
	Limit int `form:"limit" binding:"omitempty,min=1,max=100"`
}
