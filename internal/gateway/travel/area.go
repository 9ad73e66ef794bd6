package travel

import (
	"context"
	"errors"
	"time"

	"github.com/fieldworks/service-scheduling/internal/domain"
)

// ErrNoAreaEstimate means the postcodes share no area prefix, so the
// coarse heuristic has nothing to say.
var ErrNoAreaEstimate = errors.New("no area-level estimate for postcode pair")

// AreaGateway produces coarse area-tier estimates from the outward codes
// alone, for when the routing provider is down or unconfigured.
type AreaGateway struct{}

// NewAreaGateway creates the outward-code heuristic estimator.
func NewAreaGateway() *AreaGateway { return &AreaGateway{} }

// Estimate compares outward codes. Identical outward codes are treated as a
// short local hop; a shared area letter prefix (the "SW" of "SW1A") as a
// cross-district trip. Anything else returns ErrNoAreaEstimate.
func (g *AreaGateway) Estimate(_ context.Context, from, to string) (domain.TravelEstimate, error) {
	fromOut := domain.OutwardCode(from)
	toOut := domain.OutwardCode(to)
	if fromOut == "" || toOut == "" {
		return domain.TravelEstimate{}, ErrNoAreaEstimate
	}

	if fromOut == toOut {
		return domain.TravelEstimate{
			DistanceKm: 5,
			Duration:   15 * time.Minute,
			Tier:       domain.TravelTierArea,
		}, nil
	}
	if areaLetters(fromOut) == areaLetters(toOut) {
		return domain.TravelEstimate{
			DistanceKm: 25,
			Duration:   45 * time.Minute,
			Tier:       domain.TravelTierArea,
		}, nil
	}
	return domain.TravelEstimate{}, ErrNoAreaEstimate
}

// areaLetters strips the trailing district digits off an outward code.
func areaLetters(outward string) string {
	for i := 0; i < len(outward); i++ {
		if outward[i] >= '0' && outward[i] <= '9' {
			return outward[:i]
		}
	}
	return outward
}
