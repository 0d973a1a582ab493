package handler

import (
	"net/http"

	attachment "stackit.dev/forum/internal/modules/attachment/service"
	"stackit.dev/forum/pkg/apperror"
	"stackit.dev/forum/pkg/response"

	"github.com/gin-gonic/gin"
)

type AttachmentHandler struct {
	service attachment.AttachmentService
}

func NewAttachmentHandler(service attachment.AttachmentService) *AttachmentHandler {
	return &AttachmentHandler{service: service}
}

func (h *AttachmentHandler) Upload(c *gin.Context) {
	user, err := response.CurrentUser(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, attachment.MaxUploadSize+1<<20)
	file, err := c.FormFile("file")
	if err != nil {
		response.ResponseError(c, apperror.Field("file", "file is required"))
		return
	}

	resp, err := h.service.Upload(c.Request.Context(), user, file)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}
