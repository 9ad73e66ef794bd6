package travel

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/fieldworks/service-scheduling/internal/domain"
	"github.com/fieldworks/service-scheduling/internal/logx"
)

type counter interface {
	Inc()
}

// RetryConfig bounds the retry loop of RetryingGateway.
type RetryConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// RetryingGateway retries transient provider failures with exponential
// backoff before giving up and letting the fallback chain take over.
type RetryingGateway struct {
	next    Estimator
	logger  logx.Logger
	retries counter
	cfg     RetryConfig
	sleep   func(time.Duration)
}

// NewRetryingGateway wraps next with a retry loop. Returns nil when next is nil.
func NewRetryingGateway(next Estimator, logger logx.Logger, retries counter, cfg RetryConfig) *RetryingGateway {
	if next == nil {
		return nil
	}
	return &RetryingGateway{next: next, logger: logger, retries: retries, cfg: cfg, sleep: time.Sleep}
}

// Estimate calls the wrapped estimator, retrying transient failures.
func (g *RetryingGateway) Estimate(ctx context.Context, from, to string) (domain.TravelEstimate, error) {
	var lastErr error
	for attempt := 1; attempt <= g.cfg.MaxAttempts; attempt++ {
		est, err := g.next.Estimate(ctx, from, to)
		if err == nil {
			return est, nil
		}
		lastErr = err

		if ctx.Err() != nil || attempt == g.cfg.MaxAttempts || !isRetryable(err) {
			break
		}

		delay := backoff(g.cfg.BaseDelay, g.cfg.MaxDelay, attempt)
		if g.retries != nil {
			g.retries.Inc()
		}
		g.logger.Warn("travel gateway retry",
			logx.String("from", from),
			logx.String("to", to),
			logx.Int("attempt", attempt),
			logx.Duration("delay", delay),
			logx.Err(err),
		)
		if !sleepWithContext(ctx, g.sleep, delay) {
			break
		}
	}
	return domain.TravelEstimate{}, lastErr
}

// isRetryable treats timeouts, transport errors and provider 5xx/429 answers
// as transient. Bad requests and auth failures are not worth retrying.
func isRetryable(err error) bool {
	var st *StatusError
	if errors.As(err, &st) {
		return st.Code >= http.StatusInternalServerError || st.Code == http.StatusTooManyRequests
	}
	// transport-level failure without an HTTP status
	return !errors.Is(err, context.Canceled) && !errors.Is(err, ErrNoAreaEstimate)
}

func backoff(base, max time.Duration, attempt int) time.Duration {
	d := base << (attempt - 1)
	if d > max {
		return max
	}
	return d
}

func sleepWithContext(ctx context.Context, sleep func(time.Duration), d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
