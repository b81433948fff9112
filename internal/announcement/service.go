// AngelaMos | 2026
// service.go

package announcement

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	cacheKey = "announcement:active"
	cacheTTL = 60 * time.Second
)

type Service struct {
	repo  Repository
	redis *redis.Client
}

func NewService(repo Repository, redisClient *redis.Client) *Service {
	return &Service{
		repo:  repo,
		redis: redisClient,
	}
}

// GetActive serves the banner from redis when possible. The cache is
// best-effort: any redis failure falls through to the database.
func (s *Service) GetActive(ctx context.Context) (*Envelope, error) {
	if cached, err := s.redis.Get(ctx, cacheKey).Bytes(); err == nil {
		var envelope Envelope
		if err := json.Unmarshal(cached, &envelope); err == nil {
			return &envelope, nil
		}
	}

	active, err := s.repo.GetActive(ctx)
	if err != nil {
		return nil, err
	}

	envelope := &Envelope{Announcement: toResponse(active)}

	if payload, err := json.Marshal(envelope); err == nil {
		if err := s.redis.Set(ctx, cacheKey, payload, cacheTTL).Err(); err != nil {
			slog.Warn("announcement cache write failed", "error", err)
		}
	}

	return envelope, nil
}

func (s *Service) Replace(
	ctx context.Context,
	message, createdBy string,
) (*AnnouncementResponse, error) {
	created, err := s.repo.Replace(ctx, message, createdBy)
	if err != nil {
		return nil, err
	}

	if err := s.redis.Del(ctx, cacheKey).Err(); err != nil {
		slog.Warn("announcement cache invalidation failed", "error", err)
	}

	return toResponse(created), nil
}
