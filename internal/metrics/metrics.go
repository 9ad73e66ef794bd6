package metrics

import "github.com/prometheus/client_golang/prometheus"

// NewRateLimitExceededTotal returns a Prometheus counter for the number of rejected HTTP requests due to rate limiting
func NewRateLimitExceededTotal() prometheus.Counter {
	return prometheus.NewCounter(prometheus.CounterOpts{
		Name: "rate_limit_exceeded_total",
		Help: "Total number of rejected HTTP requests due to rate limiting",
	})
}

// NewTravelRetriesTotal returns a Prometheus counter for the number of retry attempts against the travel provider
func NewTravelRetriesTotal() prometheus.Counter {
	return prometheus.NewCounter(prometheus.CounterOpts{
		Name: "travel_gateway_retries_total",
		Help: "Total number of retry attempts performed against the travel provider",
	})
}

// NewOffersCreatedTotal returns a Prometheus counter for created job offers
func NewOffersCreatedTotal() prometheus.Counter {
	return prometheus.NewCounter(prometheus.CounterOpts{
		Name: "job_offers_created_total",
		Help: "Total number of job offers created",
	})
}

// NewOffersExpiredTotal returns a Prometheus counter for offers expired by the sweep or lazily on read
func NewOffersExpiredTotal() prometheus.Counter {
	return prometheus.NewCounter(prometheus.CounterOpts{
		Name: "job_offers_expired_total",
		Help: "Total number of job offers transitioned to expired",
	})
}

// NewBookingConflictsTotal returns a Prometheus counter vector for rejected booking confirms, labeled by reason
func NewBookingConflictsTotal() *prometheus.CounterVec {
	return prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "booking_conflicts_total",
		Help: "Total number of booking confirms rejected, by conflict reason",
	}, []string{"reason"})
}
