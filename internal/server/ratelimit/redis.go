package ratelimit

import (
	"context"
	"time"

	"github.com/jonathan/job-portal/internal/observability"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// fixedWindowScript counts a request and returns the count and the window's remaining ttl.
const fixedWindowScript = `
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return {current, redis.call("PTTL", KEYS[1])}
`

// RedisLimiter shares fixed-window counters across API instances.
// Redis failures let the request through.
type RedisLimiter struct {
	client  redis.Scripter
	config  *Config
	prefix  string
	script  *redis.Script
	timeout time.Duration
	logger  *zap.SugaredLogger
}

var _ Allower = (*RedisLimiter)(nil)

// NewRedisLimiter creates a limiter backed by client.
func NewRedisLimiter(client redis.Scripter, config *Config, logger *zap.SugaredLogger) *RedisLimiter {
	if config == nil {
		config = DefaultConfig()
	}
	return &RedisLimiter{
		client:  client,
		config:  config,
		prefix:  "ratelimit",
		script:  redis.NewScript(fixedWindowScript),
		timeout: 250 * time.Millisecond,
		logger:  observability.Component(logger, "ratelimit"),
	}
}

func (l *RedisLimiter) Allow(ctx context.Context, clientID, path, method string) (bool, Info) {
	ep, verdict, decided := l.config.resolve(clientID, path, method)
	if decided {
		return verdict, Info{Allowed: verdict}
	}

	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()
	key := l.prefix + ":" + clientID + ":" + method + ":" + path
	res, err := l.script.Run(ctx, l.client, []string{key}, ep.Window.Milliseconds(), ep.Limit).Int64Slice()
	if err != nil || len(res) != 2 {
		l.logger.Warnw("redis rate limit check failed, allowing request", observability.FieldError, err)
		return true, Info{Allowed: true}
	}

	count, ttl := int(res[0]), time.Duration(res[1])*time.Millisecond
	if ttl < 0 {
		ttl = ep.Window
	}
	info := Info{
		Allowed:   count <= ep.Limit,
		Limit:     ep.Limit,
		Remaining: max(ep.Limit-count, 0),
		ResetTime: time.Now().Add(ttl),
	}
	if !info.Allowed {
		info.RetryAfter = ttl
	}
	return info.Allowed, info
}
