package handler

import (
	"net/http"
	"net/url"

	questionDto "stackit.dev/forum/internal/modules/question/dto"
	question "stackit.dev/forum/internal/modules/question/service"
	"stackit.dev/forum/internal/modules/user/dto"
	userService "stackit.dev/forum/internal/modules/user/service"
	"stackit.dev/forum/pkg/apperror"
	"stackit.dev/forum/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const stateCookie = "oauth_state"

type AuthHandler struct {
	authService userService.AuthService
	frontendURL string
	secure      bool
}

func NewAuthHandler(authService userService.AuthService, frontendURL string, secure bool) *AuthHandler {
	return &AuthHandler{authService: authService, frontendURL: frontendURL, secure: secure}
}

func (h *AuthHandler) GoogleLogin(c *gin.Context) {
	state := uuid.NewString()
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(stateCookie, state, 600, "/", "", h.secure, true)
	c.Redirect(http.StatusTemporaryRedirect, h.authService.GoogleLogin(state))
}

func (h *AuthHandler) GoogleCallback(c *gin.Context) {
	code := c.Query("code")
	if code == "" {
		response.ResponseError(c, apperror.Field("code", "code not found"))
		return
	}

	state, err := c.Cookie(stateCookie)
	if err != nil || state == "" || state != c.Query("state") {
		c.Redirect(http.StatusTemporaryRedirect, h.frontendURL+"/login?error="+url.QueryEscape("invalid login state"))
		return
	}
	c.SetCookie(stateCookie, "", -1, "/", "", h.secure, true)

	res, err := h.authService.GoogleCallback(c.Request.Context(), code)
	if err != nil {
		c.Redirect(http.StatusTemporaryRedirect, h.frontendURL+"/login?error="+url.QueryEscape(err.Error()))
		return
	}

	c.Redirect(http.StatusTemporaryRedirect, h.frontendURL+"/auth/callback?token="+url.QueryEscape(res.AccessToken))
}

func (h *AuthHandler) Me(c *gin.Context) {
	user, err := response.CurrentUser(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": dto.NewUserResponse(user)})
}

type UserHandler struct {
	users     userService.UserService
	questions question.Service
}

func NewUserHandler(users userService.UserService, questions question.Service) *UserHandler {
	return &UserHandler{users: users, questions: questions}
}

// GetUser returns a profile with the user's questions.
func (h *UserHandler) GetUser(c *gin.Context) {
	id, ok := response.ParamUUID(c, "id")
	if !ok {
		return
	}

	var filter questionDto.QuestionFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		filter = questionDto.QuestionFilter{}
	}

	user, err := h.users.GetByID(c.Request.Context(), id)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	filter.OwnerID = user.ID.String()
	questions, err := h.questions.List(c.Request.Context(), filter)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": dto.ProfileResponse{
			User:      dto.NewUserResponse(user),
			Questions: questions.Data,
			Meta:      questions.Meta,
		},
	})
}
