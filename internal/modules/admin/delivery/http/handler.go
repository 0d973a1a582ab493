package handler

import (
	"net/http"

	"stackit.dev/forum/internal/modules/admin/dto"
	adminService "stackit.dev/forum/internal/modules/admin/service"
	answer "stackit.dev/forum/internal/modules/answer/service"
	comment "stackit.dev/forum/internal/modules/comment/service"
	questionDto "stackit.dev/forum/internal/modules/question/dto"
	question "stackit.dev/forum/internal/modules/question/service"
	userDto "stackit.dev/forum/internal/modules/user/dto"
	"stackit.dev/forum/pkg/response"
	"stackit.dev/forum/pkg/validator"

	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	adminService    adminService.AdminService
	questionService question.Service
	answerService   answer.AnswerService
	commentService  comment.CommentService
}

func NewAdminHandler(adminService adminService.AdminService, questionService question.Service, answerService answer.AnswerService, commentService comment.CommentService) *AdminHandler {
	return &AdminHandler{
		adminService:    adminService,
		questionService: questionService,
		answerService:   answerService,
		commentService:  commentService,
	}
}

func (h *AdminHandler) GetAllUsers(c *gin.Context) {
	res, err := h.adminService.GetAllUsers(c.Request.Context())
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": res})
}

func (h *AdminHandler) UpdateUserRole(c *gin.Context) {
	caller, err := response.CurrentUser(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	id, ok := response.ParamUUID(c, "id")
	if !ok {
		return
	}

	var input dto.UpdateRoleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.ResponseError(c, validator.ToFieldError(err))
		return
	}

	user, err := h.adminService.UpdateRole(c.Request.Context(), caller, id, input.Role)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": userDto.NewUserResponse(user)})
}

func (h *AdminHandler) GetAllQuestions(c *gin.Context) {
	var filter questionDto.QuestionFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.ResponseError(c, validator.ToFieldError(err))
		return
	}

	res, err := h.questionService.List(c.Request.Context(), filter)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *AdminHandler) GetAllAnswers(c *gin.Context) {
	var filter dto.ListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.ResponseError(c, validator.ToFieldError(err))
		return
	}

	res, err := h.adminService.GetAllAnswers(c.Request.Context(), filter.Page, filter.Limit)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *AdminHandler) GetAllComments(c *gin.Context) {
	var filter dto.ListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.ResponseError(c, validator.ToFieldError(err))
		return
	}

	res, err := h.adminService.GetAllComments(c.Request.Context(), filter.Page, filter.Limit)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *AdminHandler) DeleteQuestion(c *gin.Context) {
	h.moderate(c, h.questionService.ModerateDelete, "question deleted successfully")
}

func (h *AdminHandler) DeleteAnswer(c *gin.Context) {
	h.moderate(c, h.answerService.ModerateDelete, "answer deleted successfully")
}

func (h *AdminHandler) DeleteComment(c *gin.Context) {
	h.moderate(c, h.commentService.ModerateDelete, "comment deleted successfully")
}

func (h *AdminHandler) GetStats(c *gin.Context) {
	stats, err := h.adminService.Stats(c.Request.Context())
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": stats})
}
