package config

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"bookingpro-backend/utils"
)

// RateLimiter is a fixed-window per-IP counter shared through Redis.
type RateLimiter struct {
	client *redis.Client
	limit  int
	window time.Duration
	log    *slog.Logger
}

func NewRateLimiter(client *redis.Client, limit int, window time.Duration, log *slog.Logger) *RateLimiter {
	return &RateLimiter{client: client, limit: limit, window: window, log: log}
}

// Limit lets requests through when Redis is unreachable or unset.
func (rl *RateLimiter) Limit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if rl == nil || rl.client == nil || rl.limit <= 0 {
			c.Next()
			return
		}

		bucket := time.Now().Unix() / int64(rl.window.Seconds())
		key := fmt.Sprintf("ratelimit:ip:%s:%d", c.ClientIP(), bucket)
		ctx := c.Request.Context()

		count, err := rl.client.Incr(ctx, key).Result()
		if err != nil {
			rl.log.Warn("rate limiter unavailable", "error", err)
			c.Next()
			return
		}
		if count == 1 {
			rl.client.Expire(ctx, key, rl.window+time.Second)
		}

		if count > int64(rl.limit) {
			utils.RespondWithError(c, http.StatusTooManyRequests, "Rate limit exceeded, please try again later")
			c.Abort()
			return
		}
		c.Next()
	}
}
