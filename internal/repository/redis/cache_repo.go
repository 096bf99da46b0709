package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	apperrors "github.com/yourusername/quiz-engine/internal/pkg/errors"
)

// CacheRepo хранит JSON-снимки (статистика банков) в Redis
type CacheRepo struct {
	client redis.UniversalClient
}

func NewCacheRepo(client redis.UniversalClient) (*CacheRepo, error) {
	if client == nil {
		return nil, errors.New("cache repo: redis client is nil")
	}
	return &CacheRepo{client: client}, nil
}

// SetJSON сериализует value и пишет его с TTL. expiration <= 0 означает "без срока".
func (r *CacheRepo) SetJSON(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache encode %s: %w", key, err)
	}
	if expiration < 0 {
		expiration = 0
	}
	if err := r.client.Set(ctx, key, payload, expiration).Err(); err != nil {
		return fmt.Errorf("cache set %s: %w", key, err)
	}
	return nil
}

// GetJSON декодирует значение в dest. Промах кеша - apperrors.ErrNotFound.
func (r *CacheRepo) GetJSON(ctx context.Context, key string, dest interface{}) error {
	payload, err := r.client.Get(ctx, key).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		return apperrors.ErrNotFound
	case err != nil:
		return fmt.Errorf("cache get %s: %w", key, err)
	}
	if err := json.Unmarshal(payload, dest); err != nil {
		// битый снимок удаляем, чтобы следующий запрос пересчитал его
		_ = r.client.Del(ctx, key).Err()
		return fmt.Errorf("cache decode %s: %w", key, err)
	}
	return nil
}

func (r *CacheRepo) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("cache delete: %w", err)
	}
	return nil
}
