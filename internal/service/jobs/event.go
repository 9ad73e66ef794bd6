package jobs

import (
	"time"
)

// Event is a single job lifecycle event from the upstream sales pipeline.
type Event struct {
	JobRef          string    `json:"job_ref"`
	Status          string    `json:"status"`
	Postcode        string    `json:"postcode"`
	Address         string    `json:"address"`
	DurationMinutes int       `json:"duration_minutes"`
	JobType         string    `json:"job_type"`
	ClientID        int64     `json:"client_id"`
	CreatedAt       time.Time `json:"created_at"`
}
