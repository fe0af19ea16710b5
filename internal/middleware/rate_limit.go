package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/MassterJoe/alertMe9Ja/internal/config"
)

type rateDecision struct {
	allowed bool
	count   int
	resetIn time.Duration
}

// RateLimiter is a fixed-window counter kept in Redis. Redis failures let
// the request through.
type RateLimiter struct {
	client  *redis.Client
	log     zerolog.Logger
	prefix  string
	limit   int
	window  time.Duration
	timeout time.Duration
}

func NewRateLimiter(client *redis.Client, cfg config.RateLimitConfig, log zerolog.Logger) *RateLimiter {
	window := cfg.Window
	if window <= 0 {
		window = time.Minute
	}
	return &RateLimiter{
		client:  client,
		log:     log,
		prefix:  "alertme:ratelimit:",
		limit:   cfg.Limit,
		window:  window,
		timeout: 250 * time.Millisecond,
	}
}

func (rl *RateLimiter) allow(ctx context.Context, key string) rateDecision {
	if rl == nil || rl.client == nil || rl.limit <= 0 {
		return rateDecision{allowed: true}
	}

	ctx, cancel := context.WithTimeout(ctx, rl.timeout)
	defer cancel()

	redisKey := rl.prefix + key
	counter, err := rl.client.Incr(ctx, redisKey).Result()
	if err != nil {
		rl.log.Error().Err(err).Str("op", "incr").Msg("redis rate limiter error")
		return rateDecision{allowed: true}
	}
	if counter == 1 {
		if err := rl.client.Expire(ctx, redisKey, rl.window).Err(); err != nil {
			rl.log.Error().Err(err).Str("op", "expire").Msg("redis rate limiter error")
		}
	}
	ttl, err := rl.client.TTL(ctx, redisKey).Result()
	if err != nil || ttl <= 0 {
		ttl = rl.window
	}
	return rateDecision{
		allowed: int(counter) <= rl.limit,
		count:   int(counter),
		resetIn: ttl,
	}
}

// RateLimit throttles a route per client IP. A nil limiter disables it.
func RateLimit(rl *RateLimiter, scope string, metrics *Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		decision := rl.allow(c.Request.Context(), scope+":"+c.ClientIP())
		if decision.allowed {
			c.Next()
			return
		}

		metrics.recordRateLimitHit(scope)
		c.Header("Retry-After", strconv.Itoa(int(decision.resetIn.Round(time.Second).Seconds())))
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"status":  "error",
			"message": "Too many requests. Please try again later.",
		})
	}
}
