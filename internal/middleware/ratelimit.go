package middleware

import (
	"context"
	"strconv"
	"sync"
	"time"

	"placement_backend/internal/logger"
	"placement_backend/pkg/apperrors"

	"github.com/gin-gonic/gin"
)

// Limiter - счетчик запросов в фиксированном окне
type Limiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// RateLimiter - in-memory реализация для одного инстанса
type RateLimiter struct {
	mu      sync.Mutex
	buckets map[string]*rateBucket
	now     func() time.Time
}

type rateBucket struct {
	count     int
	windowEnd time.Time
}

func NewRateLimiter() *RateLimiter {
	return &RateLimiter{buckets: make(map[string]*rateBucket), now: time.Now}
}

func (r *RateLimiter) Allow(_ context.Context, key string, limit int, window time.Duration) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	bucket, ok := r.buckets[key]
	if !ok || now.After(bucket.windowEnd) {
		r.buckets[key] = &rateBucket{count: 1, windowEnd: now.Add(window)}
		r.sweep(now)
		return true, nil
	}
	if bucket.count >= limit {
		return false, nil
	}
	bucket.count++
	return true, nil
}

// sweep удаляет истекшие окна, чтобы карта не росла бесконечно
func (r *RateLimiter) sweep(now time.Time) {
	if len(r.buckets) < 1024 {
		return
	}
	for key, b := range r.buckets {
		if now.After(b.windowEnd) {
			delete(r.buckets, key)
		}
	}
}

// KeyFunc строит ключ лимита из запроса. Пустой ключ - без лимита.
type KeyFunc func(c *gin.Context) string

// ByClientIP - лимит на IP
func ByClientIP(scope string) KeyFunc {
	return func(c *gin.Context) string {
		return "rl:" + scope + ":ip:" + c.ClientIP()
	}
}

// ByAccount - лимит на аккаунт, для маршрутов после AuthMiddleware
func ByAccount(scope string) KeyFunc {
	return func(c *gin.Context) string {
		if id := GetUserID(c); id != "" {
			return "rl:" + scope + ":acc:" + id
		}
		return "rl:" + scope + ":ip:" + c.ClientIP()
	}
}

// RateLimit отвечает 429, когда лимит исчерпан. Ошибка хранилища лимитов
// запрос не блокирует.
func RateLimit(limiter Limiter, keyFn KeyFunc, limit int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil || limit <= 0 {
			c.Next()
			return
		}
		key := keyFn(c)
		if key == "" {
			c.Next()
			return
		}

		allowed, err := limiter.Allow(c.Request.Context(), key, limit, window)
		if err != nil {
			logger.CtxWithError(c.Request.Context(), "rate limiter unavailable", err, "key", key)
			c.Next()
			return
		}
		if !allowed {
			c.Header("Retry-After", strconv.Itoa(int(window.Seconds())))
			apperrors.HandleError(c, apperrors.ErrRateLimited())
			return
		}
		c.Next()
	}
}
