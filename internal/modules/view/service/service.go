package view

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"stackit.dev/forum/internal/modules/view/repository"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	pendingKey = "pending:question_views"
	viewerTTL  = time.Hour
)

func countKey(questionID uuid.UUID) string {
	return fmt.Sprintf("question:views:%s", questionID)
}

func viewerKey(questionID uuid.UUID, viewer string) string {
	return fmt.Sprintf("question:viewer:%s:%s", questionID, viewer)
}

// ViewService counts question page views in redis and flushes them to the
// database in batches. One viewer counts once per hour.
type ViewService interface {
	RecordView(ctx context.Context, questionID uuid.UUID, viewer string) error
	Sync(ctx context.Context) (int, error)
}

type viewService struct {
	redisClient *redis.Client
	repo        repository.ViewRepository
}

func NewViewService(redisClient *redis.Client, repo repository.ViewRepository) ViewService {
	return &viewService{redisClient: redisClient, repo: repo}
}

func (s *viewService) RecordView(ctx context.Context, questionID uuid.UUID, viewer string) error {
	first, err := s.redisClient.SetNX(ctx, viewerKey(questionID, viewer), 1, viewerTTL).Result()
	if err != nil {
		return fmt.Errorf("mark viewer: %w", err)
	}
	if !first {
		return nil
	}

	pipe := s.redisClient.TxPipeline()
	pipe.Incr(ctx, countKey(questionID))
	pipe.SAdd(ctx, pendingKey, questionID.String())
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("increment views: %w", err)
	}
	return nil
}

// Sync moves buffered counts into the database and returns how many
// questions were updated.
func (s *viewService) Sync(ctx context.Context) (int, error) {
	ids, err := s.redisClient.SMembers(ctx, pendingKey).Result()
	if err != nil {
		return 0, fmt.Errorf("read pending views: %w", err)
	}

	synced := 0
	for _, raw := range ids {
		// Removing first means a view recorded mid-sync re-adds the id.
		if err := s.redisClient.SRem(ctx, pendingKey, raw).Err(); err != nil {
			return synced, err
		}

		id, err := uuid.Parse(raw)
		if err != nil {
			log.Printf("view: dropping invalid question id %q", raw)
			continue
		}

		n, err := s.redisClient.Get(ctx, countKey(id)).Int64()
		if errors.Is(err, redis.Nil) || (err == nil && n <= 0) {
			continue
		}
		if err != nil {
			return synced, err
		}

		if err := s.repo.AddViews(ctx, id, n); err != nil {
			log.Printf("view: flush %s: %v", id, err)
			s.redisClient.SAdd(ctx, pendingKey, raw)
			continue
		}
		if err := s.redisClient.DecrBy(ctx, countKey(id), n).Err(); err != nil {
			log.Printf("view: reset counter %s: %v", id, err)
		}
		synced++
	}
	return synced, nil
}
