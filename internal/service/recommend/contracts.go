//go:generate mockgen -source=contracts.go -destination=recommend_mocks_test.go -package=recommend

package recommend

import (
	"context"
	"time"

	"github.com/fieldworks/service-scheduling/internal/domain"
)

type jobRepository interface {
	Get(ctx context.Context, id int64) (*domain.Job, error)
	LatestBlockedDate(ctx context.Context, clientID int64) (*time.Time, error)
	ScheduledCounts(ctx context.Context, from, to time.Time) (map[int64]map[time.Time]int, error)
}

type engineerRepository interface {
	ListAvailable(ctx context.Context) ([]domain.Engineer, error)
}

type travelEstimator interface {
	Estimate(ctx context.Context, from, to string) (domain.TravelEstimate, error)
}
