package response

import (
	"errors"
	"fmt"
	"log"
	"net/http"

	"stackit.dev/forum/internal/entity"
	"stackit.dev/forum/pkg/apperror"
	"stackit.dev/forum/pkg/ratelimiter"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ContextUserKey is where the auth middleware stores the resolved *entity.User.
const ContextUserKey = "user"

// CurrentUser returns the caller resolved by the auth middleware.
func CurrentUser(c *gin.Context) (*entity.User, error) {
	v, exists := c.Get(ContextUserKey)
	if !exists {
		return nil, apperror.ErrUnauthorized
	}
	user, ok := v.(*entity.User)
	if !ok || user == nil {
		return nil, apperror.ErrUnauthorized
	}
	return user, nil
}

// OptionalUser is CurrentUser for routes that also serve anonymous readers.
func OptionalUser(c *gin.Context) *entity.User {
	user, err := CurrentUser(c)
	if err != nil {
		return nil
	}
	return user
}

// ParamUUID parses a path parameter, answering 400 with the field name on failure.
func ParamUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		ResponseError(c, apperror.Field(name, "invalid %s", name))
		return uuid.Nil, false
	}
	return id, true
}

// ResponseError standardized error response
func ResponseError(c *gin.Context, err error) {
	var rateLimitErr *ratelimiter.RateLimitError
	if errors.As(err, &rateLimitErr) {
		c.Header("Retry-After", fmt.Sprintf("%.0f", rateLimitErr.RetryAfter.Seconds()))
	}

	code := apperror.MapErrorToStatus(err)

	// Log internal errors
	if code == http.StatusInternalServerError {
		log.Printf("[Internal Error]: %v", err)
		c.JSON(code, gin.H{"error": "internal server error"})
		return
	}

	body := gin.H{"error": err.Error()}
	var fieldErr *apperror.FieldError
	if errors.As(err, &fieldErr) {
		body["error"] = fieldErr.Message
		body["field"] = fieldErr.Field
	}
	c.JSON(code, body)
}
