package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/orris-inc/tenancy/internal/shared/logger"
	"github.com/orris-inc/tenancy/internal/shared/utils"
)

// RateLimiter is a Redis fixed-window counter per client IP, shared by all
// instances.
type RateLimiter struct {
	client *redis.Client
	limit  int
	window time.Duration
	scope  string
	logger logger.Interface
}

// NewRateLimiter allows limit requests per window. scope separates counters
// of different route groups.
func NewRateLimiter(client *redis.Client, scope string, limit int, window time.Duration, log logger.Interface) *RateLimiter {
	return &RateLimiter{
		client: client,
		limit:  limit,
		window: window,
		scope:  scope,
		logger: log,
	}
}

func (rl *RateLimiter) Limit() gin.HandlerFunc {
	return func(c *gin.Context) {
		bucket := time.Now().UnixNano() / int64(rl.window)
		key := fmt.Sprintf("tenancy:ratelimit:%s:%s:%d", rl.scope, c.ClientIP(), bucket)
		ctx := c.Request.Context()

		count, err := rl.client.Incr(ctx, key).Result()
		if err != nil {
			// Fail open; the lock and the database still guard correctness.
			rl.logger.Warnw("rate limiter unavailable", "error", err)
			c.Next()
			return
		}
		if count == 1 {
			rl.client.Expire(ctx, key, rl.window+time.Second)
		}

		if count > int64(rl.limit) {
			c.Header("Retry-After", fmt.Sprintf("%d", int(rl.window.Seconds())))
			utils.ErrorResponse(c, http.StatusTooManyRequests, "rate limit exceeded, please try again later")
			c.Abort()
			return
		}

		c.Next()
	}
}
