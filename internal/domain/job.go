package domain

import "time"

// Job represents an installation order in the scheduling pipeline.
type Job struct {
	ID         int64
	Ref        string
	Postcode   string
	Address    string
	Duration   time.Duration
	Type       JobType
	Status     JobStatus
	EngineerID *int64
	// ScheduledDate is nil until a booking is committed.
	ScheduledDate *time.Time
	// Suppressed excludes the job from the active scheduling pipeline.
	Suppressed bool
	ClientID   int64
}

// ClientBlockedDate marks a date a client is known to be unavailable.
type ClientBlockedDate struct {
	ClientID int64
	Date     time.Time
}

// PartialJobUpdate carries optional fields to update a job.
// A nil field means "do not change" that attribute.
type PartialJobUpdate struct {
	ID            int64
	Status        *JobStatus
	EngineerID    *int64
	ScheduledDate *time.Time
	Suppressed    *bool
}

// DateOnly truncates a timestamp to midnight UTC; scheduling is date-granular.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
