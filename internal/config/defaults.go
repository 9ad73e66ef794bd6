package config

import "time"

const defaultPort = 8080

var defaultDB = DB{
	Host: "127.0.0.1",
	Port: "5432",
	User: "scheduling",
	Pass: "scheduling",
	Name: "scheduling",
}

var defaultKafka = Kafka{
	Topic:   "job-events",
	GroupID: "service-scheduling",
}

var defaultTravelProvider = TravelProvider{
	Timeout:     5 * time.Second,
	MaxAttempts: 4,
	BaseDelay:   150 * time.Millisecond,
	MaxDelay:    2 * time.Second,
}

var defaultSweep = Sweep{
	Interval: time.Minute,
}

var defaultPprof = PprofConfig{
	Addr: "127.0.0.1:6060",
}

var defaultRateLimit = RateLimit{
	Enabled:    true,
	Rate:       2,
	Burst:      10,
	TTL:        10 * time.Minute,
	MaxBuckets: 100_000,
}

var defaultPolicy = Policy{
	AdvanceNoticeHours:            48,
	DailyJobCap:                   3,
	DefaultTravelToleranceMinutes: 120,
	OfferTTL:                      48 * time.Hour,
	StrictServiceAreaMatch:        false,
	SearchHorizonDays:             28,
	TopN:                          5,
	SkipWeekends:                  true,
}

// DefaultPort returns the default port.
func DefaultPort() int {
	return defaultPort
}

// DefaultDB returns the default database settings.
func DefaultDB() DB {
	return defaultDB
}

// DefaultKafka returns the default job-intake consumer settings.
func DefaultKafka() Kafka {
	return defaultKafka
}

// DefaultTravelProvider returns the default travel provider settings.
func DefaultTravelProvider() TravelProvider {
	return defaultTravelProvider
}

// DefaultSweep returns the default sweep settings.
func DefaultSweep() Sweep {
	return defaultSweep
}

// DefaultPprof returns the default pprof server settings.
func DefaultPprof() PprofConfig {
	return defaultPprof
}

// DefaultRateLimit returns the default public endpoint limiter settings.
func DefaultRateLimit() RateLimit {
	return defaultRateLimit
}

// DefaultPolicy returns the default scheduling policy.
func DefaultPolicy() Policy {
	return defaultPolicy
}
