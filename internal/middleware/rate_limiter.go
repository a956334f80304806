package middleware

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/speedrun/backend/internal/config"
	"github.com/speedrun/backend/internal/logger"
)

// RateLimiter limits requests per client IP in a fixed window. It lets
// requests through when Redis is unavailable.
func RateLimiter(redisClient *redis.Client, cfg *config.Config, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := fmt.Sprintf("rate_limit:%s", c.ClientIP())
		count, ttl, err := hit(c.Request.Context(), redisClient, key, cfg.RateLimitDuration)
		if err != nil {
			log.Warn("Redis not available for rate limiting", "error", err)
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", fmt.Sprintf("%d", cfg.RateLimitRequests))
		if count > int64(cfg.RateLimitRequests) {
			c.Header("X-RateLimit-Remaining", "0")
			c.Header("X-RateLimit-Reset", fmt.Sprintf("%d", time.Now().Add(ttl).Unix()))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "Too many requests",
				"retry_after": ttl.Seconds(),
			})
			return
		}
		c.Header("X-RateLimit-Remaining", fmt.Sprintf("%d", int64(cfg.RateLimitRequests)-count))

		c.Next()
	}
}

// MutationRateLimit limits DELETE and PUT requests per asset id so a single
// record cannot be hammered with writes.
func MutationRateLimit(redisClient *redis.Client, cfg *config.Config, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodDelete && c.Request.Method != http.MethodPut {
			c.Next()
			return
		}
		id := c.Query("id")
		if id == "" {
			c.Next()
			return
		}

		key := fmt.Sprintf("mutation_limit:%s", id)
		count, ttl, err := hit(c.Request.Context(), redisClient, key, cfg.MutationRateLimitWindow)
		if err != nil {
			log.Warn("Redis not available for mutation rate limiting", "error", err)
			c.Next()
			return
		}
		if count > int64(cfg.MutationRateLimit) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "Too many changes to this video",
				"retry_after": ttl.Seconds(),
			})
			return
		}

		c.Next()
	}
}

// hit increments the counter at key and starts its window on first use.
func hit(ctx context.Context, rdb *redis.Client, key string, window time.Duration) (int64, time.Duration, error) {
	pipe := rdb.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.ExpireNX(ctx, key, window)
	ttl := pipe.TTL(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, 0, err
	}
	return incr.Val(), ttl.Val(), nil
}
