package domain

type (
	// JobStatus represents the scheduling status of a job.
	JobStatus string
	// JobType scopes scheduling to one kind of work.
	JobType string
	// OfferStatus represents the state of a job offer.
	OfferStatus string
	// OfferChannel is the delivery channel an offer was sent through.
	OfferChannel string
)

// List of possible job statuses
const (
	JobStatusAwaitingBooking  JobStatus = "awaiting_booking"
	JobStatusOfferOutstanding JobStatus = "offer_outstanding"
	JobStatusScheduled        JobStatus = "scheduled"
	JobStatusInProgress       JobStatus = "in_progress"
	JobStatusCompleted        JobStatus = "completed"
	JobStatusOnHold           JobStatus = "on_hold"
	JobStatusCancelled        JobStatus = "cancelled"
)

// List of possible job types
const (
	JobTypeInstallation JobType = "installation"
	JobTypeAssessment   JobType = "assessment"
	JobTypeServiceCall  JobType = "service_call"
)

// List of possible offer statuses
const (
	OfferStatusPending  OfferStatus = "pending"
	OfferStatusAccepted OfferStatus = "accepted"
	OfferStatusRejected OfferStatus = "rejected"
	OfferStatusExpired  OfferStatus = "expired"
)

// List of possible offer delivery channels
const (
	OfferChannelEmail OfferChannel = "email"
	OfferChannelSMS   OfferChannel = "sms"
	OfferChannelPhone OfferChannel = "phone"
)

var allowedJobStatuses = [...]JobStatus{
	JobStatusAwaitingBooking, JobStatusOfferOutstanding, JobStatusScheduled,
	JobStatusInProgress, JobStatusCompleted, JobStatusOnHold, JobStatusCancelled,
}

var allowedJobTypes = [...]JobType{
	JobTypeInstallation, JobTypeAssessment, JobTypeServiceCall,
}

var allowedOfferStatuses = [...]OfferStatus{
	OfferStatusPending, OfferStatusAccepted, OfferStatusRejected, OfferStatusExpired,
}

var allowedOfferChannels = [...]OfferChannel{
	OfferChannelEmail, OfferChannelSMS, OfferChannelPhone,
}

// Valid checks if the JobStatus is valid
func (s JobStatus) Valid() bool {
	for _, v := range allowedJobStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Terminal reports whether the job can no longer re-enter the scheduling pool.
func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusCancelled
}

// Valid checks if the JobType is valid
func (t JobType) Valid() bool {
	for _, v := range allowedJobTypes {
		if t == v {
			return true
		}
	}
	return false
}

// Schedulable reports whether the scheduling engine handles this job type.
// Assessments and service calls are booked through other channels; only
// installations enter the recommendation/offer/booking pipeline.
func (t JobType) Schedulable() bool {
	return t == JobTypeInstallation
}

// Valid checks if the OfferStatus is valid
func (s OfferStatus) Valid() bool {
	for _, v := range allowedOfferStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Terminal reports whether the offer status admits no further transitions.
func (s OfferStatus) Terminal() bool {
	return s == OfferStatusAccepted || s == OfferStatusRejected || s == OfferStatusExpired
}

// Valid checks if the OfferChannel is valid
func (c OfferChannel) Valid() bool {
	for _, v := range allowedOfferChannels {
		if c == v {
			return true
		}
	}
	return false
}
