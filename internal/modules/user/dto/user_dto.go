package dto

import (
	"time"

	"stackit.dev/forum/internal/entity"
	questionDto "stackit.dev/forum/internal/modules/question/dto"
	commonDto "stackit.dev/forum/pkg/dto"

	"github.com/google/uuid"
)

type AuthResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	ExpiresIn   int64        `json:"expires_in"`
	User        *entity.User `json:"user"`
}

type UserResponse struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	AvatarURL *string   `json:"avatar_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func NewUserResponse(u *entity.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Role:      u.Role,
		AvatarURL: u.AvatarURL,
		CreatedAt: u.CreatedAt,
	}
}

type ProfileResponse struct {
	User      UserResponse                          `json:"user"`
	Questions []questionDto.QuestionSummaryResponse `json:"questions"`
	Meta      commonDto.PaginationMeta              `json:"meta"`
}
