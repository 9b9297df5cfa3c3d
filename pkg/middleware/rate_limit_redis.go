package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/newsdesk/newsdesk-server/pkg/logger"
	"github.com/newsdesk/newsdesk-server/pkg/metrics"
	"github.com/redis/go-redis/v9"
)

// RedisRateLimitMiddleware counts requests per key in fixed windows shared by every
// server instance. A window admits rps*window+burst requests. When Redis cannot be
// reached the request is judged by an in-process limiter instead.
func RedisRateLimitMiddleware(client *redis.Client, rps float64, burst int, window time.Duration) gin.HandlerFunc {
	local := RateLimitMiddleware(rps, burst)
	if client == nil {
		return local
	}
	if window < time.Second {
		window = time.Second
	}
	secs := int64(window / time.Second)
	limit := int64(rps*float64(secs)) + int64(burst)
	retryAfter := strconv.FormatInt(secs, 10)

	return func(c *gin.Context) {
		slot := time.Now().Unix() / secs
		key := "ratelimit:" + rateLimitKey(c) + ":" + strconv.FormatInt(slot, 10)

		ctx := c.Request.Context()
		pipe := client.TxPipeline()
		incr := pipe.Incr(ctx, key)
		pipe.Expire(ctx, key, window+time.Second)
		if _, err := pipe.Exec(ctx); err != nil {
			logger.Warnf("redis rate limit unavailable for %s: %v", key, err)
			local(c)
			return
		}
		if incr.Val() > limit {
			c.Header("Retry-After", retryAfter)
			metrics.RateLimitRejected.WithLabelValues("redis").Inc()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Rate limit exceeded"})
			return
		}
		metrics.RateLimitAllowed.WithLabelValues("redis").Inc()
		c.Next()
	}
}
