package middleware

import (
	"strings"

	"stackit.dev/forum/internal/entity"
	userService "stackit.dev/forum/internal/modules/user/service"
	"stackit.dev/forum/pkg/apperror"
	"stackit.dev/forum/pkg/response"

	"github.com/gin-gonic/gin"
)

type AuthMiddleware struct {
	auth  userService.AuthService
	users userService.UserService
}

func NewAuthMiddleware(auth userService.AuthService, users userService.UserService) *AuthMiddleware {
	return &AuthMiddleware{auth: auth, users: users}
}

// RequireAuth resolves the caller from the session token and stores the
// internal user under response.ContextUserKey.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := m.resolve(c)
		if err != nil {
			response.ResponseError(c, err)
			c.Abort()
			return
		}

		c.Set(response.ContextUserKey, user)
		c.Next()
	}
}

// OptionalAuth is RequireAuth for public pages. A missing or stale token
// leaves the request anonymous.
func (m *AuthMiddleware) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if bearerToken(c) != "" {
			if user, err := m.resolve(c); err == nil {
				c.Set(response.ContextUserKey, user)
			}
		}
		c.Next()
	}
}

// RequireAdmin must run after RequireAuth.
func (m *AuthMiddleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := response.CurrentUser(c)
		if err != nil {
			response.ResponseError(c, err)
			c.Abort()
			return
		}

		if !user.IsAdmin() {
			response.ResponseError(c, apperror.ErrForbidden)
			c.Abort()
			return
		}

		c.Next()
	}
}

func (m *AuthMiddleware) resolve(c *gin.Context) (*entity.User, error) {
	tokenString := bearerToken(c)
	if tokenString == "" {
		return nil, apperror.ErrUnauthorized
	}

	claims, err := m.auth.ParseToken(tokenString)
	if err != nil {
		return nil, err
	}

	return m.users.GetOrCreate(c.Request.Context(), claims.Identity())
}

func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) == 2 && parts[0] == "Bearer" {
			return parts[1]
		}
	}

	// Fallback to query parameter "token" (useful for WebSockets)
	return c.Query("token")
}
