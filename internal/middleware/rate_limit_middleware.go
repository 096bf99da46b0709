package middleware

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/yourusername/quiz-engine/pkg/logger"
)

// RateLimitConfig содержит настройки rate limiting
type RateLimitConfig struct {
	// MaxRequests - максимальное количество запросов за Window
	MaxRequests int
	// Window - временное окно для подсчета запросов
	Window time.Duration
	// KeyPrefix - префикс для ключей в Redis
	KeyPrefix string
	// LocalBurst - burst in-process лимитера, который работает пока Redis недоступен
	LocalBurst int
}

// visitor хранит локальный лимитер клиента и время последнего запроса
type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter ограничивает запросы счетчиком в Redis (фиксированное окно).
// При ошибке Redis запрос проверяется локальным token bucket, чтобы не остаться без защиты.
type RateLimiter struct {
	redisClient redis.UniversalClient
	log         *zap.Logger

	mu        sync.Mutex
	visitors  map[string]*visitor
	lastSweep time.Time
	now       func() time.Time
}

// NewRateLimiter создает новый RateLimiter
func NewRateLimiter(redisClient redis.UniversalClient) *RateLimiter {
	return &RateLimiter{
		redisClient: redisClient,
		log:         logger.Component("RateLimiter"),
		visitors:    make(map[string]*visitor),
		now:         time.Now,
	}
}

// Limit возвращает Gin middleware с заданной конфигурацией.
// Ключ формируется из IP + endpoint path
func (rl *RateLimiter) Limit(cfg RateLimitConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		clientIP := c.ClientIP()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		key := fmt.Sprintf("%s:%s:%s", cfg.KeyPrefix, clientIP, path)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		count, err := rl.redisClient.Incr(ctx, key).Result()
		if err != nil {
			rl.log.Warn("redis unavailable, using local limiter", zap.String("key", key), zap.Error(err))
			if !rl.allowLocal(key, cfg) {
				rl.reject(c, int(cfg.Window.Seconds()))
				return
			}
			c.Next()
			return
		}

		// Первый запрос в окне выставляет TTL
		if count == 1 {
			if err := rl.redisClient.Expire(ctx, key, cfg.Window).Err(); err != nil {
				rl.log.Warn("failed to set TTL", zap.String("key", key), zap.Error(err))
			}
		}

		remaining := cfg.MaxRequests - int(count)
		if remaining < 0 {
			remaining = 0
		}

		ttl, _ := rl.redisClient.TTL(ctx, key).Result()
		retryAfter := int(ttl.Seconds())
		if retryAfter < 0 {
			retryAfter = int(cfg.Window.Seconds())
		}

		c.Header("X-RateLimit-Limit", fmt.Sprintf("%d", cfg.MaxRequests))
		c.Header("X-RateLimit-Remaining", fmt.Sprintf("%d", remaining))
		c.Header("X-RateLimit-Reset", fmt.Sprintf("%d", retryAfter))

		if int(count) > cfg.MaxRequests {
			rl.log.Info("rate limit exceeded",
				zap.String("ip", clientIP), zap.String("path", path),
				zap.Int64("count", count), zap.Int("limit", cfg.MaxRequests))
			rl.reject(c, retryAfter)
			return
		}

		c.Next()
	}
}

func (rl *RateLimiter) reject(c *gin.Context, retryAfter int) {
	c.Header("Retry-After", fmt.Sprintf("%d", retryAfter))
	c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
		"error":       "Too many requests. Please try again later.",
		"error_type":  "rate_limited",
		"retry_after": retryAfter,
	})
}

// allowLocal проверяет запрос по in-process лимитеру ключа
func (rl *RateLimiter) allowLocal(key string, cfg RateLimitConfig) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	rl.sweep(now, cfg.Window)

	v, ok := rl.visitors[key]
	if !ok {
		burst := cfg.LocalBurst
		if burst <= 0 {
			burst = cfg.MaxRequests
		}
		every := rate.Every(cfg.Window / time.Duration(cfg.MaxRequests))
		v = &visitor{limiter: rate.NewLimiter(every, burst)}
		rl.visitors[key] = v
	}
	v.lastSeen = now
	return v.limiter.AllowN(now, 1)
}

// sweep раз в минуту удаляет давно неактивных клиентов. Вызывается под rl.mu.
func (rl *RateLimiter) sweep(now time.Time, window time.Duration) {
	if now.Sub(rl.lastSweep) < time.Minute {
		return
	}
	rl.lastSweep = now

	expiry := window * 3
	if expiry < time.Minute {
		expiry = time.Minute
	}
	for key, v := range rl.visitors {
		if now.Sub(v.lastSeen) > expiry {
			delete(rl.visitors, key)
		}
	}
}
