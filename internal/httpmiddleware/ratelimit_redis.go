package httpmiddleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// RedisRateLimiter enforces a fixed one-minute window per IP, shared across
// replicas. Counter keys expire with the window.
type RedisRateLimiter struct {
	client    *redis.Client
	perMinute int
}

// NewRedisRateLimiter creates a limiter allowing perMinute requests per IP.
func NewRedisRateLimiter(client *redis.Client, perMinute int) *RedisRateLimiter {
	if perMinute <= 0 {
		perMinute = 120
	}
	return &RedisRateLimiter{client: client, perMinute: perMinute}
}

// GinMiddleware returns gin handler enforcing per-IP limits.
// Redis errors fail open so an unavailable cache never blocks traffic.
func (l *RedisRateLimiter) GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		if ip == "" {
			ip = "unknown"
		}
		key := "ratelimit:" + ip + ":" + time.Now().UTC().Format("200601021504")
		count, err := l.client.Incr(c.Request.Context(), key).Result()
		if err == nil {
			if count == 1 {
				l.client.Expire(c.Request.Context(), key, 2*time.Minute)
			}
			if count > int64(l.perMinute) {
				c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit"})
				return
			}
		}
		c.Next()
	}
}
