package booking

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/fieldworks/service-scheduling/internal/apperr"
	"github.com/fieldworks/service-scheduling/internal/config"
	"github.com/fieldworks/service-scheduling/internal/domain"
	"github.com/fieldworks/service-scheduling/internal/events"
	"github.com/fieldworks/service-scheduling/internal/logx"
	"github.com/fieldworks/service-scheduling/internal/ports/schedtx"
	"github.com/fieldworks/service-scheduling/internal/service/availability"
)

// Source tags which path asked for the commit.
type Source string

// List of booking sources
const (
	SourceOfferAcceptance Source = "offer_acceptance"
	SourceAdminDirect     Source = "admin_direct"
)

// Validator is the single chokepoint through which every committed booking
// passes. It re-checks availability under a row lock at the instant of
// commit; recommendations and offers may be minutes-to-days stale by then.
type Validator struct {
	runner           schedtx.Runner
	policy           config.Policy
	publisher        publisher
	conflicts        *prometheus.CounterVec
	operationTimeout time.Duration
	logger           logx.Logger
	now              func() time.Time
}

// NewValidator creates the booking validator.
func NewValidator(runner schedtx.Runner, pol config.Policy, pub publisher, conflicts *prometheus.CounterVec, timeout time.Duration, logger logx.Logger) *Validator {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if pub == nil {
		pub = events.Nop()
	}
	return &Validator{
		runner:           runner,
		policy:           pol,
		publisher:        pub,
		conflicts:        conflicts,
		operationTimeout: timeout,
		logger:           logger,
		now:              func() time.Time { return time.Now().UTC() },
	}
}

// Confirm books the job onto the engineer for the date, or fails with one of
// the disjoint conflict reasons. Safe under concurrent confirms for the same
// job or the same engineer/date: the whole check-and-write runs in one
// transaction behind the job and engineer row locks.
func (v *Validator) Confirm(ctx context.Context, jobID, engineerID int64, date time.Time, source Source) error {
	if jobID <= 0 || engineerID <= 0 || date.IsZero() {
		return apperr.ErrInvalid
	}

	ctx, cancel := context.WithTimeout(ctx, v.operationTimeout)
	defer cancel()

	date = domain.DateOnly(date)
	err := v.runner.WithTx(ctx, func(tx schedtx.Repository) error {
		return v.ConfirmTx(ctx, tx, jobID, engineerID, date, source)
	})
	if err != nil {
		return err
	}

	v.logger.Info("booking confirmed",
		logx.String("event", "booking_confirmed"),
		logx.Int64("job_id", jobID),
		logx.Int64("engineer_id", engineerID),
		logx.Date("date", date),
		logx.String("source", string(source)),
	)
	ev := events.New(events.KindJobScheduled, v.now())
	ev.JobID = jobID
	ev.EngineerID = engineerID
	ev.Date = date
	v.publisher.Publish(ctx, ev)

	return nil
}

// ConfirmTx is the transaction-scoped body of Confirm, exposed so offer
// acceptance can commit the booking in the same transaction as the offer
// transition. Lock order is job row, then engineer row: concurrent confirms
// for the same job serialize on the job lock and the loser sees the
// committed scheduled status; confirms for the same engineer serialize on
// the engineer lock and the loser recounts committed capacity.
func (v *Validator) ConfirmTx(ctx context.Context, tx schedtx.Repository, jobID, engineerID int64, date time.Time, source Source) error {
	date = domain.DateOnly(date)

	if err := tx.LockJob(ctx, jobID); err != nil {
		return err
	}

	job, err := tx.GetJob(ctx, jobID)
	if err != nil {
		return err
	}
	if job == nil {
		return apperr.ErrNotFound
	}
	if !job.Type.Schedulable() {
		return apperr.ErrInvalid
	}
	if job.Status.Terminal() || job.Status == domain.JobStatusScheduled || job.Suppressed {
		return apperr.ErrConflict
	}

	if err := tx.LockEngineer(ctx, engineerID); err != nil {
		return err
	}

	eng, err := tx.GetEngineer(ctx, engineerID)
	if err != nil {
		return err
	}
	if eng == nil {
		return apperr.ErrNotFound
	}

	booked, err := tx.CountScheduledJobs(ctx, engineerID, date)
	if err != nil {
		return err
	}

	if err := availability.CheckDay(v.policy, eng, date, booked, job.Duration); err != nil {
		v.recordConflict(ctx, err, jobID, engineerID, date, source)
		return err
	}

	return tx.UpdateJobSchedule(ctx, jobID, engineerID, date)
}

func (v *Validator) recordConflict(ctx context.Context, cause error, jobID, engineerID int64, date time.Time, source Source) {
	reason := conflictReason(cause)
	if v.conflicts != nil {
		v.conflicts.WithLabelValues(reason).Inc()
	}
	v.logger.Warn("booking conflict",
		logx.String("event", "booking_conflict"),
		logx.Int64("job_id", jobID),
		logx.Int64("engineer_id", engineerID),
		logx.Date("date", date),
		logx.String("source", string(source)),
		logx.String("reason", reason),
	)
	ev := events.New(events.KindBookingConflict, v.now())
	ev.JobID = jobID
	ev.EngineerID = engineerID
	ev.Date = date
	v.publisher.Publish(ctx, ev)
}

func conflictReason(err error) string {
	switch {
	case errors.Is(err, apperr.ErrNotAvailableOnDate):
		return "not_available_on_date"
	case errors.Is(err, apperr.ErrAtCapacity):
		return "at_capacity"
	case errors.Is(err, apperr.ErrExceedsWorkingHours):
		return "exceeds_working_hours"
	default:
		return "other"
	}
}
