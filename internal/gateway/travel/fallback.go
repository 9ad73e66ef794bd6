package travel

import (
	"context"
	"time"

	"github.com/fieldworks/service-scheduling/internal/domain"
	"github.com/fieldworks/service-scheduling/internal/logx"
)

// DefaultEstimate is the worst-case placeholder used when every estimator in
// the chain fails. Callers can still rank candidates; the tier tells them how
// little the number is worth.
var DefaultEstimate = domain.TravelEstimate{
	DistanceKm: 50,
	Duration:   time.Hour,
	Tier:       domain.TravelTierDefault,
}

// FallbackGateway walks a chain of estimators in order and degrades to the
// default-tier estimate when all of them fail. Estimate never returns an
// error: scoring must proceed even with the provider down.
type FallbackGateway struct {
	chain  []Estimator
	logger logx.Logger
}

// NewFallbackGateway creates the degradation chain. Nil entries are skipped.
func NewFallbackGateway(logger logx.Logger, chain ...Estimator) *FallbackGateway {
	g := &FallbackGateway{logger: logger}
	for _, e := range chain {
		if e != nil {
			g.chain = append(g.chain, e)
		}
	}
	return g
}

// Estimate returns the first successful estimate in the chain, or the
// default-tier placeholder.
func (g *FallbackGateway) Estimate(ctx context.Context, from, to string) (domain.TravelEstimate, error) {
	for _, e := range g.chain {
		est, err := e.Estimate(ctx, from, to)
		if err == nil {
			return est, nil
		}
		g.logger.Warn("travel estimator degraded",
			logx.String("from", from),
			logx.String("to", to),
			logx.Err(err),
		)
		if ctx.Err() != nil {
			break
		}
	}
	return DefaultEstimate, nil
}
