package handler

import (
	"context"
	"net/http"

	"stackit.dev/forum/internal/entity"
	"stackit.dev/forum/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type moderateFunc func(ctx context.Context, caller *entity.User, id uuid.UUID) error

func (h *AdminHandler) moderate(c *gin.Context, del moderateFunc, message string) {
	caller, err := response.CurrentUser(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	id, ok := response.ParamUUID(c, "id")
	if !ok {
		return
	}

	if err := del(c.Request.Context(), caller, id); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": message})
}
