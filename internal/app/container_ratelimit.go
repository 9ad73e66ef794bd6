package app

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.uber.org/dig"

	"github.com/fieldworks/service-scheduling/internal/config"
	"github.com/fieldworks/service-scheduling/internal/http/middleware/ratelimit"
	"github.com/fieldworks/service-scheduling/internal/logx"
)

// newRateLimiter picks the limiter backend for the public offer-response
// endpoint: Redis when configured so all replicas share one budget, the
// in-process token bucket otherwise.
func newRateLimiter(cfg *config.Config, clock ratelimit.Clock, rc *redis.Client) ratelimit.Limiter {
	rl := cfg.RateLimit
	if !rl.Enabled {
		return ratelimit.NopLimiter{}
	}
	if rc != nil {
		window := time.Second
		if rl.Rate > 0 {
			window = time.Duration(float64(rl.Burst) / rl.Rate * float64(time.Second))
		}
		return ratelimit.NewRedisLimiter(rc, int64(rl.Burst), window)
	}
	return ratelimit.NewTokenBucketLimiter(clock, ratelimit.Config{
		Rate:       rl.Rate,
		Burst:      rl.Burst,
		TTL:        rl.TTL,
		MaxBuckets: rl.MaxBuckets,
	})
}

func newRateLimitClock() ratelimit.Clock {
	return ratelimit.RealClock{}
}

type rateLimitIn struct {
	dig.In

	Logger  logx.Logger
	Counter prometheus.Counter `name:"rate_limit_exceeded_total"`
	Limiter ratelimit.Limiter
}

func newRateLimitMiddleware(in rateLimitIn) *ratelimit.Middleware {
	return ratelimit.New(in.Logger, in.Counter, in.Limiter)
}
