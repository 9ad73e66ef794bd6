package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Policy holds the scheduling knobs. It is passed explicitly into every
// resolver/scorer/validator call so behavior is deterministic per call,
// never read from ambient global state.
type Policy struct {
	// AdvanceNoticeHours is the minimum "now + N hours" floor for offers.
	AdvanceNoticeHours int `yaml:"advance_notice_hours"`
	// DailyJobCap is the maximum jobs per engineer per day, unless the
	// engineer carries a per-engineer override.
	DailyJobCap int `yaml:"daily_job_cap"`
	// DefaultTravelToleranceMinutes applies when no declared service area
	// matches and strict matching is off.
	DefaultTravelToleranceMinutes int `yaml:"default_travel_tolerance_minutes"`
	// OfferTTL bounds how long an offer stays pending.
	OfferTTL time.Duration `yaml:"offer_ttl"`
	// StrictServiceAreaMatch excludes engineers with no matching declared area.
	StrictServiceAreaMatch bool `yaml:"strict_service_area_match"`
	// SearchHorizonDays bounds the candidate-date walk.
	SearchHorizonDays int `yaml:"search_horizon_days"`
	// TopN caps the number of suggestions returned.
	TopN int `yaml:"top_n"`
	// SkipWeekends suppresses Saturday/Sunday candidates regardless of
	// per-engineer working hours.
	SkipWeekends bool `yaml:"skip_weekends"`
	// PreferredEngineers is an optional tie-break preference order.
	PreferredEngineers []int64 `yaml:"preferred_engineers"`
}

// AdvanceNotice returns the advance-notice floor as a duration.
func (p Policy) AdvanceNotice() time.Duration {
	return time.Duration(p.AdvanceNoticeHours) * time.Hour
}

// DefaultTravelTolerance returns the fallback tolerance as a duration.
func (p Policy) DefaultTravelTolerance() time.Duration {
	return time.Duration(p.DefaultTravelToleranceMinutes) * time.Minute
}

// CapFor returns the effective daily cap for an engineer-level override.
func (p Policy) CapFor(engineerCap int) int {
	if engineerCap > 0 {
		return engineerCap
	}
	return p.DailyJobCap
}

// Validate rejects nonsensical policy values.
func (p Policy) Validate() error {
	if p.AdvanceNoticeHours < 0 {
		return fmt.Errorf("advance_notice_hours must not be negative, got %d", p.AdvanceNoticeHours)
	}
	if p.DailyJobCap <= 0 {
		return fmt.Errorf("daily_job_cap must be positive, got %d", p.DailyJobCap)
	}
	if p.DefaultTravelToleranceMinutes <= 0 {
		return fmt.Errorf("default_travel_tolerance_minutes must be positive, got %d", p.DefaultTravelToleranceMinutes)
	}
	if p.OfferTTL <= 0 {
		return fmt.Errorf("offer_ttl must be positive, got %s", p.OfferTTL)
	}
	if p.SearchHorizonDays <= 0 {
		return fmt.Errorf("search_horizon_days must be positive, got %d", p.SearchHorizonDays)
	}
	if p.TopN <= 0 {
		return fmt.Errorf("top_n must be positive, got %d", p.TopN)
	}
	return nil
}

// LoadPolicy reads a Policy from a yaml file, starting from defaults so a
// partial file only overrides what it names.
func LoadPolicy(path string) (Policy, error) {
	f, err := os.Open(path)
	if err != nil {
		return Policy{}, err
	}
	defer f.Close()

	pol := DefaultPolicy()
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&pol); err != nil {
		return Policy{}, err
	}
	return pol, nil
}
