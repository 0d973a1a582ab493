package handler

import (
	"net/http"

	"stackit.dev/forum/internal/modules/comment/dto"
	comment "stackit.dev/forum/internal/modules/comment/service"
	"stackit.dev/forum/pkg/response"
	"stackit.dev/forum/pkg/validator"

	"github.com/gin-gonic/gin"
)

type CommentHandler struct {
	service comment.CommentService
}

func NewCommentHandler(service comment.CommentService) *CommentHandler {
	return &CommentHandler{service: service}
}

// AddComment handles POST /answers/:id/comments.
func (h *CommentHandler) AddComment(c *gin.Context) {
	user, err := response.CurrentUser(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	answerID, ok := response.ParamUUID(c, "id")
	if !ok {
		return
	}

	var req dto.AddCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ResponseError(c, validator.ToFieldError(err))
		return
	}

	result, err := h.service.Add(c.Request.Context(), user, answerID, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": result})
}

func (h *CommentHandler) GetComments(c *gin.Context) {
	answerID, ok := response.ParamUUID(c, "id")
	if !ok {
		return
	}

	result, err := h.service.ListByAnswer(c.Request.Context(), answerID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": result})
}

func (h *CommentHandler) DeleteComment(c *gin.Context) {
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

	c.JSON(http.StatusOK, gin.H{"message": "comment deleted successfully"})
}
