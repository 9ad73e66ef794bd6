package travel

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fieldworks/service-scheduling/internal/domain"
	testlog "github.com/fieldworks/service-scheduling/internal/testutil"
)

func TestFallbackGateway_FirstSuccessWins(t *testing.T) {
	t.Parallel()

	rec := testlog.New()
	live := &fakeEstimator{fn: func(context.Context, string, string) (domain.TravelEstimate, error) {
		return domain.TravelEstimate{DistanceKm: 2, Tier: domain.TravelTierLive}, nil
	}}
	area := &fakeEstimator{fn: func(context.Context, string, string) (domain.TravelEstimate, error) {
		t.Fatal("area estimator must not be reached")
		return domain.TravelEstimate{}, nil
	}}

	g := NewFallbackGateway(rec.Logger(), live, area)
	est, err := g.Estimate(context.Background(), "SW1A 1AA", "SW1A 2BB")
	require.NoError(t, err)
	require.Equal(t, domain.TravelTierLive, est.Tier)
}

func TestFallbackGateway_DegradesThroughChain(t *testing.T) {
	t.Parallel()

	rec := testlog.New()
	live := &fakeEstimator{fn: func(context.Context, string, string) (domain.TravelEstimate, error) {
		return domain.TravelEstimate{}, &StatusError{Code: 503}
	}}

	g := NewFallbackGateway(rec.Logger(), live, NewAreaGateway())
	est, err := g.Estimate(context.Background(), "SW1A 1AA", "SW1A 2BB")
	require.NoError(t, err)
	require.Equal(t, domain.TravelTierArea, est.Tier)
}

func TestFallbackGateway_DefaultWhenAllFail(t *testing.T) {
	t.Parallel()

	rec := testlog.New()
	live := &fakeEstimator{fn: func(context.Context, string, string) (domain.TravelEstimate, error) {
		return domain.TravelEstimate{}, &StatusError{Code: 503}
	}}

	// N1 shares no area with SW1A, so the area heuristic also fails.
	g := NewFallbackGateway(rec.Logger(), live, NewAreaGateway())
	est, err := g.Estimate(context.Background(), "SW1A 1AA", "N1 9GU")
	require.NoError(t, err)
	require.Equal(t, DefaultEstimate, est)
}

func TestFallbackGateway_SkipsNilEntries(t *testing.T) {
	t.Parallel()

	rec := testlog.New()
	g := NewFallbackGateway(rec.Logger(), nil, NewAreaGateway())
	est, err := g.Estimate(context.Background(), "SW1A 1AA", "SW1A 2BB")
	require.NoError(t, err)
	require.Equal(t, domain.TravelTierArea, est.Tier)
}
