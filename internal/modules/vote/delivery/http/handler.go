package handler

import (
	"net/http"

	"stackit.dev/forum/internal/modules/vote/dto"
	vote "stackit.dev/forum/internal/modules/vote/service"
	"stackit.dev/forum/pkg/response"
	"stackit.dev/forum/pkg/validator"

	"github.com/gin-gonic/gin"
)

type VoteHandler struct {
	service vote.VoteService
}

func NewVoteHandler(service vote.VoteService) *VoteHandler {
	return &VoteHandler{service: service}
}

// CastVote handles POST /answers/:id/votes.
func (h *VoteHandler) CastVote(c *gin.Context) {
	user, err := response.CurrentUser(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	answerID, ok := response.ParamUUID(c, "id")
	if !ok {
		return
	}

	var req dto.CastVoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ResponseError(c, validator.ToFieldError(err))
		return
	}

	result, err := h.service.Cast(c.Request.Context(), user, answerID, *req.Value)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": result})
}
