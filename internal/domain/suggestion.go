package domain

import "time"

// TravelTier tags the confidence of a travel estimate.
type TravelTier string

// List of travel estimate confidence tiers
const (
	TravelTierLive    TravelTier = "live"
	TravelTierArea    TravelTier = "area"
	TravelTierDefault TravelTier = "default"
)

// TravelEstimate is a distance and travel-time estimate between two postcodes.
type TravelEstimate struct {
	DistanceKm float64
	Duration   time.Duration
	Tier       TravelTier
}

// EngineerSuggestion is one ranked recommendation for a job.
// Never persisted; recomputed per request.
type EngineerSuggestion struct {
	EngineerID    int64
	EngineerName  string
	CandidateDate time.Time
	DistanceKm    float64
	TravelTime    time.Duration
	TravelTier    TravelTier
	Score         float64
	Reasons       []string
}
