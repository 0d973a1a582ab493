package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"stackit.dev/forum/internal/entity"
	"stackit.dev/forum/internal/modules/notification/dto"
	notifRepo "stackit.dev/forum/internal/modules/notification/repository"
	"stackit.dev/forum/pkg/apperror"
	commonDto "stackit.dev/forum/pkg/dto"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

func ChannelName(userID uuid.UUID) string {
	return fmt.Sprintf("user_notifications:%s", userID.String())
}

type NotificationService interface {
	CreateNotification(ctx context.Context, notification *entity.Notification) error
	// Notify is CreateNotification for the common recipient/actor/message/link case.
	Notify(ctx context.Context, recipientID uuid.UUID, actor *entity.User, message, link string) error
	GetNotifications(ctx context.Context, userID uuid.UUID, page, limit int) (*dto.PaginatedNotificationResponse, error)
	MarkAsRead(ctx context.Context, userID, id uuid.UUID) error
	MarkAllAsRead(ctx context.Context, userID uuid.UUID) error
	UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error)
}

type notificationService struct {
	repo        notifRepo.NotificationRepository
	redisClient *redis.Client
}

func NewNotificationService(repo notifRepo.NotificationRepository, redisClient *redis.Client) NotificationService {
	return &notificationService{
		repo:        repo,
		redisClient: redisClient,
	}
}

func (s *notificationService) CreateNotification(ctx context.Context, notification *entity.Notification) error {
	if err := s.repo.Create(ctx, notification); err != nil {
		return err
	}

	if s.redisClient != nil {
		payload, err := json.Marshal(notification)
		if err != nil {
			log.Printf("notification: marshal %s: %v", notification.ID, err)
			return nil
		}
		if err := s.redisClient.Publish(ctx, ChannelName(notification.UserID), payload).Err(); err != nil {
			log.Printf("notification: publish %s: %v", notification.ID, err)
		}
	}

	return nil
}

func (s *notificationService) Notify(ctx context.Context, recipientID uuid.UUID, actor *entity.User, message, link string) error {
	n := &entity.Notification{
		UserID:  recipientID,
		Message: message,
	}
	if link != "" {
		n.Link = &link
	}
	if actor != nil {
		n.ActorID = &actor.ID
	}
	return s.CreateNotification(ctx, n)
}

func (s *notificationService) GetNotifications(ctx context.Context, userID uuid.UUID, page, limit int) (*dto.PaginatedNotificationResponse, error) {
	page, limit = commonDto.NormalizePage(page, limit, 20, 50)

	notifications, total, err := s.repo.GetByUserID(ctx, userID, limit, (page-1)*limit)
	if err != nil {
		return nil, err
	}
	if notifications == nil {
		notifications = []entity.Notification{}
	}

	return &dto.PaginatedNotificationResponse{
		Data: notifications,
		Meta: commonDto.NewPaginationMeta(page, limit, total),
	}, nil
}

func (s *notificationService) MarkAsRead(ctx context.Context, userID, id uuid.UUID) error {
	found, err := s.repo.MarkAsRead(ctx, id, userID)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("notification not found: %w", apperror.ErrNotFound)
	}
	return nil
}

func (s *notificationService) MarkAllAsRead(ctx context.Context, userID uuid.UUID) error {
	return s.repo.MarkAllAsRead(ctx, userID)
}

func (s *notificationService) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.repo.CountUnread(ctx, userID)
}
