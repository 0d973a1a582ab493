package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strings"

	"stackit.dev/forum/internal/entity"
	"stackit.dev/forum/internal/modules/user/repository"
	"stackit.dev/forum/pkg/apperror"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const maxUsernameLen = 40

var usernameInvalidChars = regexp.MustCompile(`[^A-Za-z0-9_]+`)

// Identity is what the external identity provider tells us about the caller.
type Identity struct {
	ExternalID string
	Username   string
	Email      string
	AvatarURL  string
}

type UserService interface {
	GetOrCreate(ctx context.Context, identity Identity) (*entity.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
	GetByUsername(ctx context.Context, username string) (*entity.User, error)
}

type userService struct {
	repo repository.UserRepository
}

func NewUserService(repo repository.UserRepository) UserService {
	return &userService{repo: repo}
}

func (s *userService) GetOrCreate(ctx context.Context, identity Identity) (*entity.User, error) {
	if identity.ExternalID == "" {
		return nil, apperror.ErrUnauthorized
	}

	user, err := s.repo.FindByExternalID(ctx, identity.ExternalID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	username, err := s.availableUsername(ctx, identity)
	if err != nil {
		return nil, err
	}

	newUser := &entity.User{
		ExternalID: identity.ExternalID,
		Username:   username,
		Email:      identity.Email,
		Role:       entity.RoleUser,
	}
	if identity.AvatarURL != "" {
		newUser.AvatarURL = &identity.AvatarURL
	}

	if err := s.repo.Create(ctx, newUser); err != nil {
		// a concurrent first request for the same identity may have won the insert
		if existing, findErr := s.repo.FindByExternalID(ctx, identity.ExternalID); findErr == nil {
			return existing, nil
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	log.Printf("user: created %s for identity %s", newUser.Username, identity.ExternalID)
	return newUser, nil
}

func (s *userService) GetByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}
	return user, nil
}

func (s *userService) GetByUsername(ctx context.Context, username string) (*entity.User, error) {
	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}
	return user, nil
}

func (s *userService) availableUsername(ctx context.Context, identity Identity) (string, error) {
	base := NormalizeUsername(identity.Username)
	if base == "" && identity.Email != "" {
		base = NormalizeUsername(strings.Split(identity.Email, "@")[0])
	}
	if base == "" {
		base = "user"
	}

	candidate := base
	for i := 0; i < 5; i++ {
		exists, err := s.repo.UsernameExists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
		candidate = base + "_" + strings.ReplaceAll(uuid.New().String(), "-", "")[:4]
	}
	return base + "_" + strings.ReplaceAll(uuid.New().String(), "-", "")[:8], nil
}

// NormalizeUsername keeps usernames inside the @mention alphabet so every user
// can be mentioned.
func NormalizeUsername(name string) string {
	name = strings.TrimSpace(name)
	name = usernameInvalidChars.ReplaceAllString(name, "_")
	name = strings.Trim(name, "_")
	if len(name) > maxUsernameLen {
		name = name[:maxUsernameLen]
	}
	return name
}
