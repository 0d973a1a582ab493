package dto

import (
	"stackit.dev/forum/internal/entity"
	commonDto "stackit.dev/forum/pkg/dto"
)

type NotificationFilter struct {
	Page  int `form:"page" binding:"omitempty,min=1"`
	Limit int `form:"limit" binding:"omitempty,min=1,max=50"`
}

type PaginatedNotificationResponse struct {
	Data []entity.Notification    `json:"data"`
	Meta commonDto.PaginationMeta `json:"meta"`
}
