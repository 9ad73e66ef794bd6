package events

import (
	"time"

	"github.com/google/uuid"
)

// Kind identifies a scheduling domain event.
type Kind string

// List of domain event kinds
const (
	KindJobScheduled    Kind = "job_scheduled"
	KindOfferCreated    Kind = "offer_created"
	KindOfferAccepted   Kind = "offer_accepted"
	KindOfferRejected   Kind = "offer_rejected"
	KindOfferExpired    Kind = "offer_expired"
	KindOfferResent     Kind = "offer_resent"
	KindBookingConflict Kind = "booking_conflict"
)

// Event is an immutable record of a scheduling state change. Dashboards and
// external notifiers subscribe to these instead of polling row state.
type Event struct {
	ID         string
	Kind       Kind
	JobID      int64
	EngineerID int64
	OfferID    int64
	Date       time.Time
	OccurredAt time.Time
}

// New builds an event with a fresh id and timestamp.
func New(kind Kind, now time.Time) Event {
	return Event{
		ID:         uuid.NewString(),
		Kind:       kind,
		OccurredAt: now,
	}
}
