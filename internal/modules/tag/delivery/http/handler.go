package handler

import (
	"net/http"

	"stackit.dev/forum/internal/modules/tag/dto"
	tag "stackit.dev/forum/internal/modules/tag/service"
	"stackit.dev/forum/pkg/response"
	"stackit.dev/forum/pkg/validator"

	"github.com/gin-gonic/gin"
)

type TagHandler struct {
	service tag.TagService
}

func NewTagHandler(service tag.TagService) *TagHandler {
	return &TagHandler{service: service}
}

func (h *TagHandler) GetTags(c *gin.Context) {
	var filter dto.TagFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.ResponseError(c, validator.ToFieldError(err))
		return
	}

	tags, err := h.service.List(c.Request.Context(), filter.Search)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": tags})
}
