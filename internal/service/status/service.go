package status

import (
	"context"
	"time"

	"github.com/fieldworks/service-scheduling/internal/domain"
)

type countsRepository interface {
	Counts(ctx context.Context, now time.Time) (domain.StatusCounts, error)
}

// Service exposes the dashboard buckets. Pure function of current Job and
// JobOffer state, recomputed on every read; nothing is cached or stored.
type Service struct {
	repo             countsRepository
	operationTimeout time.Duration
	now              func() time.Time
}

// NewService creates the status aggregator.
func NewService(repo countsRepository, timeout time.Duration) *Service {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Service{
		repo:             repo,
		operationTimeout: timeout,
		now:              func() time.Time { return time.Now().UTC() },
	}
}

// Counts returns the aggregate buckets as of now.
func (s *Service) Counts(ctx context.Context) (domain.StatusCounts, error) {
	ctx, cancel := context.WithTimeout(ctx, s.operationTimeout)
	defer cancel()
	return s.repo.Counts(ctx, s.now())
}
