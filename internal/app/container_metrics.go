package app

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/dig"

	"github.com/fieldworks/service-scheduling/internal/metrics"
)

type metricsOut struct {
	dig.Out

	RateLimitExceededTotal prometheus.Counter `name:"rate_limit_exceeded_total"`
	TravelRetriesTotal     prometheus.Counter `name:"travel_retries_total"`
	OffersCreatedTotal     prometheus.Counter `name:"offers_created_total"`
	OffersExpiredTotal     prometheus.Counter `name:"offers_expired_total"`
	BookingConflictsTotal  *prometheus.CounterVec
}

// provideMetrics registers the service counters with the default registerer.
// Registration is idempotent so repeated container builds in one process
// reuse the already registered collectors.
func provideMetrics() (metricsOut, error) {
	rl, err := registerCounter(metrics.NewRateLimitExceededTotal(), "rate_limit_exceeded_total")
	if err != nil {
		return metricsOut{}, err
	}
	tr, err := registerCounter(metrics.NewTravelRetriesTotal(), "travel_gateway_retries_total")
	if err != nil {
		return metricsOut{}, err
	}
	oc, err := registerCounter(metrics.NewOffersCreatedTotal(), "job_offers_created_total")
	if err != nil {
		return metricsOut{}, err
	}
	oe, err := registerCounter(metrics.NewOffersExpiredTotal(), "job_offers_expired_total")
	if err != nil {
		return metricsOut{}, err
	}
	bc, err := registerCounterVec(metrics.NewBookingConflictsTotal(), "booking_conflicts_total")
	if err != nil {
		return metricsOut{}, err
	}

	return metricsOut{
		RateLimitExceededTotal: rl,
		TravelRetriesTotal:     tr,
		OffersCreatedTotal:     oc,
		OffersExpiredTotal:     oe,
		BookingConflictsTotal:  bc,
	}, nil
}

func registerCounter(c prometheus.Counter, name string) (prometheus.Counter, error) {
	err := prometheus.DefaultRegisterer.Register(c)
	if err == nil {
		return c, nil
	}
	var are prometheus.AlreadyRegisteredError
	if errors.As(err, &are) {
		if existing, ok := are.ExistingCollector.(prometheus.Counter); ok {
			return existing, nil
		}
	}
	return nil, fmt.Errorf("register %s: %w", name, err)
}

func registerCounterVec(c *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	err := prometheus.DefaultRegisterer.Register(c)
	if err == nil {
		return c, nil
	}
	var are prometheus.AlreadyRegisteredError
	if errors.As(err, &are) {
		if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
			return existing, nil
		}
	}
	return nil, fmt.Errorf("register %s: %w", name, err)
}
