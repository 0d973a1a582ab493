package handler

import (
	"log"
	"net/http"

	"stackit.dev/forum/internal/modules/question/dto"
	question "stackit.dev/forum/internal/modules/question/service"
	view "stackit.dev/forum/internal/modules/view/service"
	"stackit.dev/forum/pkg/response"
	"stackit.dev/forum/pkg/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type QuestionHandler struct {
	service question.Service
	views   view.ViewService
}

// NewQuestionHandler builds the handler. views may be nil, which turns off view counting.
func NewQuestionHandler(service question.Service, views view.ViewService) *QuestionHandler {
	return &QuestionHandler{service: service, views: views}
}

func (h *QuestionHandler) AskQuestion(c *gin.Context) {
	user, err := response.CurrentUser(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req dto.AskQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ResponseError(c, validator.ToFieldError(err))
		return
	}

	q, err := h.service.Ask(c.Request.Context(), user, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "question created successfully", "id": q.ID})
}

func (h *QuestionHandler) GetQuestions(c *gin.Context) {
	var filter dto.QuestionFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.ResponseError(c, validator.ToFieldError(err))
		return
	}

	result, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *QuestionHandler) GetQuestion(c *gin.Context) {
	id, ok := response.ParamUUID(c, "id")
	if !ok {
		return
	}

	viewer := response.OptionalUser(c)
	result, err := h.service.Get(c.Request.Context(), id, viewer)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	if h.views != nil {
		key := c.ClientIP()
		if viewer != nil {
			key = viewer.ID.String()
		}
		if err := h.views.RecordView(c.Request.Context(), id, key); err != nil {
			log.Printf("question: record view %s: %v", id, err)
		}
	}

	c.JSON(http.StatusOK, gin.H{"data": result})
}

func (h *QuestionHandler) AcceptAnswer(c *gin.Context) {
	user, err := response.CurrentUser(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	id, ok := response.ParamUUID(c, "id")
	if !ok {
		return
	}

	var req dto.AcceptAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ResponseError(c, validator.ToFieldError(err))
		return
	}

	result, err := h.service.Accept(c.Request.Context(), user, id, uuid.MustParse(req.AnswerID))
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": result})
}

func (h *QuestionHandler) DeleteQuestion(c *gin.Context) {
	user, err := response.CurrentUser(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	id, ok := response.ParamUUID(c, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), user, id); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "question deleted successfully"})
}
