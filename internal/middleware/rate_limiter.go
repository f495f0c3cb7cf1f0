package middleware

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"giftlink/internal/logger"
)

// Rate limit key strategies.
const (
	StrategyIP       = "ip"
	StrategyEndpoint = "endpoint"
	StrategyUser     = "user"
)

// RateLimiterConfig configures the sliding-window limiter.
type RateLimiterConfig struct {
	MaxRequests int
	Window      time.Duration
	Strategy    string
	Prefix      string
}

// slidingWindow trims entries older than the window, then admits the request
// when fewer than limit entries remain. Members are unique so requests in
// the same millisecond are all counted.
var slidingWindow = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])
local member = ARGV[4]

redis.call('ZREMRANGEBYSCORE', key, 0, now - window)
local current = redis.call('ZCARD', key)

if current < limit then
	redis.call('ZADD', key, now, member)
	redis.call('PEXPIRE', key, window)
	return {1, limit - current - 1, now + window}
end

local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')[2]
return {0, 0, tonumber(oldest) + window}
`)

// RateLimiter is a Redis backed sliding-window limiter. When Redis is
// unreachable the request is let through.
func RateLimiter(client *redis.Client, cfg RateLimiterConfig, log *logger.Logger) fiber.Handler {
	if cfg.MaxRequests <= 0 {
		cfg.MaxRequests = 20
	}
	if cfg.Window <= 0 {
		cfg.Window = time.Minute
	}
	if cfg.Strategy == "" {
		cfg.Strategy = StrategyIP
	}
	if cfg.Prefix == "" {
		cfg.Prefix = "rate_limit"
	}
	if log == nil {
		log = logger.NewNop()
	}

	return func(c *fiber.Ctx) error {
		key := buildRateLimitKey(c, cfg.Prefix, cfg.Strategy)

		allowed, remaining, resetAt, err := checkRateLimit(c.UserContext(), client, key, cfg)
		if err != nil {
			log.WithContext(c.UserContext()).Error("rate limiter error", zap.Error(err), zap.String("key", key))
			return c.Next()
		}

		c.Set("X-RateLimit-Limit", strconv.Itoa(cfg.MaxRequests))
		c.Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Set("X-RateLimit-Reset", strconv.FormatInt(resetAt/1000, 10))

		if !allowed {
			seconds := retryAfterSeconds(resetAt, time.Now().UnixMilli())
			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(seconds))
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"message": fmt.Sprintf("too many requests, please try again in %d seconds", seconds),
				"error":   "rate limit exceeded",
			})
		}
		return c.Next()
	}
}

func buildRateLimitKey(c *fiber.Ctx, prefix, strategy string) string {
	switch strategy {
	case StrategyUser:
		if id := UserID(c); id != "" {
			return fmt.Sprintf("%s:user:%s", prefix, id)
		}
		return fmt.Sprintf("%s:ip:%s", prefix, c.IP())
	case StrategyEndpoint:
		return fmt.Sprintf("%s:endpoint:%s:%s", prefix, c.Path(), c.IP())
	default:
		return fmt.Sprintf("%s:ip:%s", prefix, c.IP())
	}
}

// retryAfterSeconds rounds the time left until resetAt up to whole seconds,
// never less than one.
func retryAfterSeconds(resetAt, now int64) int {
	left := resetAt - now
	if left <= 0 {
		return 1
	}
	return int((left + 999) / 1000)
}

// checkRateLimit returns resetAt in unix milliseconds.
func checkRateLimit(ctx context.Context, client *redis.Client, key string, cfg RateLimiterConfig) (allowed bool, remaining int, resetAt int64, err error) {
	now := time.Now().UnixMilli()
	vals, err := slidingWindow.Run(ctx, client, []string{key},
		now, cfg.Window.Milliseconds(), cfg.MaxRequests, uuid.New().String()).Int64Slice()
	if err != nil {
		return false, 0, 0, err
	}
	if len(vals) != 3 {
		return false, 0, 0, fmt.Errorf("invalid rate limit result: %v", vals)
	}
	return vals[0] == 1, int(vals[1]), vals[2], nil
}
