package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/yourusername/quiz-engine/internal/config"
)

const redisPingTimeout = 5 * time.Second

// NewUniversalRedisClient подключается к Redis (single, sentinel или cluster) и проверяет соединение.
// Клиент общий для кеша статистики и лимитера запросов.
func NewUniversalRedisClient(ctx context.Context, cfg config.RedisConfig) (redis.UniversalClient, error) {
	opts, mode, err := redisOptions(cfg)
	if err != nil {
		return nil, err
	}

	client := redis.NewUniversalClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, redisPingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping (mode %s, addrs %v): %w", mode, opts.Addrs, err)
	}
	return client, nil
}

// redisOptions переводит конфигурацию в UniversalOptions.
// Тип клиента go-redis выбирает сам: MasterName → failover, несколько адресов → cluster.
func redisOptions(cfg config.RedisConfig) (*redis.UniversalOptions, string, error) {
	addrs := cfg.Addrs
	if len(addrs) == 0 && cfg.Addr != "" {
		addrs = []string{cfg.Addr}
	}
	if len(addrs) == 0 {
		return nil, "", errors.New("redis: addrs or addr must be set")
	}

	mode := cfg.Mode
	if mode == "" {
		mode = "single"
	}

	opts := &redis.UniversalOptions{
		Addrs:           addrs,
		Password:        cfg.Password,
		DB:              cfg.DB,
		MaxRetries:      cfg.MaxRetries,
		MinRetryBackoff: time.Duration(cfg.MinRetryBackoff) * time.Millisecond,
		MaxRetryBackoff: time.Duration(cfg.MaxRetryBackoff) * time.Millisecond,
	}

	switch mode {
	case "single":
		if len(addrs) > 1 {
			return nil, "", fmt.Errorf("redis: single mode expects one address, got %d", len(addrs))
		}
	case "cluster":
	case "sentinel":
		if cfg.MasterName == "" {
			return nil, "", errors.New("redis: sentinel mode requires master_name")
		}
		opts.MasterName = cfg.MasterName
	default:
		return nil, "", fmt.Errorf("redis: unsupported mode %q", mode)
	}
	return opts, mode, nil
}
