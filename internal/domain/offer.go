package domain

import "time"

// JobOffer is a time-boxed proposal binding one job to one engineer and date.
// Offers are never deleted; terminal rows stay as an audit trail.
type JobOffer struct {
	ID          int64
	JobID       int64
	EngineerID  int64
	OfferedDate time.Time
	// Window is an optional preferred time window, e.g. "morning".
	Window string
	Status OfferStatus
	// Token is the bearer capability for the unauthenticated client response.
	Token        string
	Channel      OfferChannel
	ExpiresAt    time.Time
	RespondedAt  *time.Time
	RejectReason string
	CreatedAt    time.Time
}

// ExpiredAt reports whether the offer's TTL has passed at the given instant.
// The boundary instant counts as expired, matching the sweep's
// `expires_at <= now` predicate, so an offer is never both sweepable and
// respondable.
func (o *JobOffer) ExpiredAt(now time.Time) bool {
	return !now.Before(o.ExpiresAt)
}

// Live reports whether the offer is pending and within its TTL.
func (o *JobOffer) Live(now time.Time) bool {
	return o.Status == OfferStatusPending && !o.ExpiredAt(now)
}

// TokenHint returns the short prefix safe to echo to staff surfaces.
// The full token is only ever exposed to the recipient channel.
func (o *JobOffer) TokenHint() string {
	if len(o.Token) <= 8 {
		return o.Token
	}
	return o.Token[:8]
}
