package handler

import (
	"net/http"

	"stackit.dev/forum/internal/modules/answer/dto"
	answer "stackit.dev/forum/internal/modules/answer/service"
	"stackit.dev/forum/pkg/response"
	"stackit.dev/forum/pkg/validator"

	"github.com/gin-gonic/gin"
)

type AnswerHandler struct {
	service answer.AnswerService
}

func NewAnswerHandler(service answer.AnswerService) *AnswerHandler {
	return &AnswerHandler{service: service}
}

// SubmitAnswer handles POST /questions/:id/answers.
func (h *AnswerHandler) SubmitAnswer(c *gin.Context) {
	user, err := response.CurrentUser(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	questionID, ok := response.ParamUUID(c, "id")
	if !ok {
		return
	}

	var req dto.SubmitAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ResponseError(c, validator.ToFieldError(err))
		return
	}

	result, err := h.service.Submit(c.Request.Context(), user, questionID, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": result})
}
