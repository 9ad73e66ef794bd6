package offer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fieldworks/service-scheduling/internal/apperr"
	"github.com/fieldworks/service-scheduling/internal/config"
	"github.com/fieldworks/service-scheduling/internal/domain"
	"github.com/fieldworks/service-scheduling/internal/events"
	"github.com/fieldworks/service-scheduling/internal/logx"
	"github.com/fieldworks/service-scheduling/internal/ports/schedtx"
	"github.com/fieldworks/service-scheduling/internal/service/availability"
	"github.com/fieldworks/service-scheduling/internal/service/booking"
)

// Decision is the client's answer to an offer.
type Decision string

// List of offer decisions
const (
	DecisionAccept Decision = "accept"
	DecisionReject Decision = "reject"
)

// ParseDecision validates a raw decision string.
func ParseDecision(raw string) (Decision, error) {
	switch Decision(strings.ToLower(strings.TrimSpace(raw))) {
	case DecisionAccept:
		return DecisionAccept, nil
	case DecisionReject:
		return DecisionReject, nil
	default:
		return "", fmt.Errorf("decision %q: %w", raw, apperr.ErrInvalid)
	}
}

// CreateInput carries the staff request to dispatch an offer.
type CreateInput struct {
	JobID      int64
	EngineerID int64
	Date       time.Time
	Window     string
	Channel    domain.OfferChannel
}

// Service is the offer state machine: pending to accepted, rejected or
// expired, with terminal states never transitioning further. Every multi-row
// step runs inside one transaction so supersession and responses race
// through row locks, never through stale reads.
type Service struct {
	runner           schedtx.Runner
	confirmer        Confirmer
	notifier         Notifier
	publisher        publisher
	policy           config.Policy
	created          counter
	expired          counter
	operationTimeout time.Duration
	logger           logx.Logger
	now              func() time.Time
	newToken         func() string
}

// NewService creates the offer state machine.
func NewService(runner schedtx.Runner, confirmer Confirmer, notifier Notifier, pub publisher, pol config.Policy, created, expired counter, timeout time.Duration, logger logx.Logger) *Service {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if pub == nil {
		pub = events.Nop()
	}
	return &Service{
		runner:           runner,
		confirmer:        confirmer,
		notifier:         notifier,
		publisher:        pub,
		policy:           pol,
		created:          created,
		expired:          expired,
		operationTimeout: timeout,
		logger:           logger,
		now:              func() time.Time { return time.Now().UTC() },
		newToken:         uuid.NewString,
	}
}

// Create dispatches a new offer for the job, superseding any live offer for
// the same job in the same transaction. The engineer must pass the same
// availability check a booking would, so staff never send an undeliverable
// proposal. The returned offer carries the full token; staff surfaces must
// only ever expose TokenHint.
func (s *Service) Create(ctx context.Context, in CreateInput) (*domain.JobOffer, error) {
	if in.JobID <= 0 || in.EngineerID <= 0 || in.Date.IsZero() {
		return nil, apperr.ErrInvalid
	}
	if in.Channel == "" {
		in.Channel = domain.OfferChannelEmail
	}
	if !in.Channel.Valid() {
		return nil, fmt.Errorf("channel %q: %w", in.Channel, apperr.ErrInvalid)
	}

	ctx, cancel := context.WithTimeout(ctx, s.operationTimeout)
	defer cancel()

	now := s.now()
	o := &domain.JobOffer{
		JobID:       in.JobID,
		EngineerID:  in.EngineerID,
		OfferedDate: domain.DateOnly(in.Date),
		Window:      strings.TrimSpace(in.Window),
		Status:      domain.OfferStatusPending,
		Token:       s.newToken(),
		Channel:     in.Channel,
		ExpiresAt:   now.Add(s.policy.OfferTTL),
	}

	var superseded []int64
	err := s.runner.WithTx(ctx, func(tx schedtx.Repository) error {
		// job lock first: a concurrent accept or confirm for this job holds
		// it until commit, so the state check below never sees a stale row
		if err := tx.LockJob(ctx, in.JobID); err != nil {
			return err
		}
		job, err := tx.GetJob(ctx, in.JobID)
		if err != nil {
			return err
		}
		if job == nil {
			return apperr.ErrNotFound
		}
		if !job.Type.Schedulable() {
			return fmt.Errorf("job type %q: %w", job.Type, apperr.ErrInvalid)
		}
		if job.Status.Terminal() || job.Status == domain.JobStatusScheduled || job.Suppressed {
			return apperr.ErrConflict
		}
		if err := tx.LockEngineer(ctx, in.EngineerID); err != nil {
			return err
		}
		eng, err := tx.GetEngineer(ctx, in.EngineerID)
		if err != nil {
			return err
		}
		if eng == nil {
			return apperr.ErrNotFound
		}
		booked, err := tx.CountScheduledJobs(ctx, in.EngineerID, o.OfferedDate)
		if err != nil {
			return err
		}
		if err := availability.CheckDay(s.policy, eng, o.OfferedDate, booked, job.Duration); err != nil {
			return err
		}

		superseded, err = tx.ExpirePendingOffersForJob(ctx, in.JobID)
		if err != nil {
			return err
		}
		if err := tx.InsertOffer(ctx, o); err != nil {
			return err
		}
		return tx.UpdateJobStatus(ctx, in.JobID, domain.JobStatusOfferOutstanding)
	})
	if err != nil {
		return nil, err
	}

	if s.created != nil {
		s.created.Inc()
	}
	s.logger.Info("offer created",
		logx.String("event", "offer_created"),
		logx.Int64("offer_id", o.ID),
		logx.Int64("job_id", o.JobID),
		logx.Int64("engineer_id", o.EngineerID),
		logx.Date("date", o.OfferedDate),
		logx.String("channel", string(o.Channel)),
		logx.String("token_hint", o.TokenHint()),
		logx.Int("superseded", len(superseded)),
	)
	for _, id := range superseded {
		if s.expired != nil {
			s.expired.Inc()
		}
		ev := events.New(events.KindOfferExpired, now)
		ev.JobID = o.JobID
		ev.OfferID = id
		s.publisher.Publish(ctx, ev)
	}
	ev := events.New(events.KindOfferCreated, now)
	ev.JobID = o.JobID
	ev.EngineerID = o.EngineerID
	ev.OfferID = o.ID
	ev.Date = o.OfferedDate
	s.publisher.Publish(ctx, ev)

	s.deliver(ctx, o)

	return o, nil
}

// Respond resolves an offer looked up by bearer token alone; this is the
// unauthenticated client-facing surface. An offer past its TTL is lazily
// transitioned to expired before the error is reported, and that transition
// commits even though the call fails.
func (s *Service) Respond(ctx context.Context, token string, decision Decision, reason string) (*domain.JobOffer, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, apperr.ErrInvalid
	}
	if decision != DecisionAccept && decision != DecisionReject {
		return nil, apperr.ErrInvalid
	}

	ctx, cancel := context.WithTimeout(ctx, s.operationTimeout)
	defer cancel()

	now := s.now()
	var (
		o           *domain.JobOffer
		lazyExpired bool
		conflicted  bool
	)
	err := s.runner.WithTx(ctx, func(tx schedtx.Repository) error {
		// unlocked read to learn the job, then job lock, then the locking
		// re-read: every commit path acquires the job row first, so a
		// racing Create or confirm for the same job has fully committed
		// (or not started) by the time the offer state is re-checked
		peek, err := tx.GetOfferByToken(ctx, token)
		if err != nil {
			return err
		}
		if peek == nil {
			return apperr.ErrNotFound
		}
		if err := tx.LockJob(ctx, peek.JobID); err != nil {
			return err
		}
		o, err = tx.GetOfferByTokenForUpdate(ctx, token)
		if err != nil {
			return err
		}
		if o == nil {
			return apperr.ErrNotFound
		}
		if o.Status != domain.OfferStatusPending {
			return apperr.ErrAlreadyResolved
		}
		if o.ExpiredAt(now) {
			// commit the lazy expiry, then surface ErrExpired after the tx
			lazyExpired = true
			return s.expireTx(ctx, tx, o, now)
		}

		switch decision {
		case DecisionAccept:
			err := s.confirmer.ConfirmTx(ctx, tx, o.JobID, o.EngineerID, o.OfferedDate, booking.SourceOfferAcceptance)
			switch {
			case err == nil:
				return s.transitionTx(ctx, tx, o, domain.OfferStatusAccepted, "", now)
			case errors.Is(err, apperr.ErrConflict):
				// the slot disappeared since the offer went out: the offer
				// dies, the job goes back to the pool, and the transition
				// commits while the call still fails
				conflicted = true
				if err := s.transitionTx(ctx, tx, o, domain.OfferStatusRejected, "slot no longer available", now); err != nil {
					return err
				}
				return tx.ReturnJobsToPool(ctx, []int64{o.JobID})
			default:
				return err
			}
		default:
			if err := s.transitionTx(ctx, tx, o, domain.OfferStatusRejected, strings.TrimSpace(reason), now); err != nil {
				return err
			}
			return tx.ReturnJobsToPool(ctx, []int64{o.JobID})
		}
	})
	if err != nil {
		return nil, err
	}

	switch {
	case lazyExpired:
		if s.expired != nil {
			s.expired.Inc()
		}
		s.publishTransition(ctx, events.KindOfferExpired, o, now)
		return nil, apperr.ErrExpired
	case conflicted:
		s.publishTransition(ctx, events.KindOfferRejected, o, now)
		return nil, apperr.ErrConflictOnAccept
	case decision == DecisionAccept:
		s.logger.Info("offer accepted",
			logx.String("event", "offer_accepted"),
			logx.Int64("offer_id", o.ID),
			logx.Int64("job_id", o.JobID),
			logx.Int64("engineer_id", o.EngineerID),
			logx.Date("date", o.OfferedDate),
		)
		s.publishTransition(ctx, events.KindOfferAccepted, o, now)
		s.publishTransition(ctx, events.KindJobScheduled, o, now)
	default:
		s.logger.Info("offer rejected",
			logx.String("event", "offer_rejected"),
			logx.Int64("offer_id", o.ID),
			logx.Int64("job_id", o.JobID),
			logx.String("reason", o.RejectReason),
		)
		s.publishTransition(ctx, events.KindOfferRejected, o, now)
	}

	return o, nil
}

// Resend re-dispatches the notification for a live offer. The token and
// expiry are untouched; only pending, unexpired offers whose slot still
// passes the availability check can be resent.
func (s *Service) Resend(ctx context.Context, offerID int64) (*domain.JobOffer, error) {
	if offerID <= 0 {
		return nil, apperr.ErrInvalid
	}

	ctx, cancel := context.WithTimeout(ctx, s.operationTimeout)
	defer cancel()

	now := s.now()
	var (
		o           *domain.JobOffer
		lazyExpired bool
	)
	err := s.runner.WithTx(ctx, func(tx schedtx.Repository) error {
		peek, err := tx.GetOffer(ctx, offerID)
		if err != nil {
			return err
		}
		if peek == nil {
			return apperr.ErrNotFound
		}
		if err := tx.LockJob(ctx, peek.JobID); err != nil {
			return err
		}
		o, err = tx.GetOfferForUpdate(ctx, offerID)
		if err != nil {
			return err
		}
		if o == nil {
			return apperr.ErrNotFound
		}
		if o.Status != domain.OfferStatusPending {
			return apperr.ErrAlreadyResolved
		}
		if o.ExpiredAt(now) {
			lazyExpired = true
			return s.expireTx(ctx, tx, o, now)
		}

		if err := tx.LockEngineer(ctx, o.EngineerID); err != nil {
			return err
		}
		job, err := tx.GetJob(ctx, o.JobID)
		if err != nil {
			return err
		}
		if job == nil {
			return apperr.ErrNotFound
		}
		eng, err := tx.GetEngineer(ctx, o.EngineerID)
		if err != nil {
			return err
		}
		if eng == nil {
			return apperr.ErrNotFound
		}
		booked, err := tx.CountScheduledJobs(ctx, o.EngineerID, o.OfferedDate)
		if err != nil {
			return err
		}
		return availability.CheckDay(s.policy, eng, o.OfferedDate, booked, job.Duration)
	})
	if err != nil {
		return nil, err
	}
	if lazyExpired {
		if s.expired != nil {
			s.expired.Inc()
		}
		s.publishTransition(ctx, events.KindOfferExpired, o, now)
		return nil, apperr.ErrExpired
	}

	s.logger.Info("offer resent",
		logx.String("event", "offer_resent"),
		logx.Int64("offer_id", o.ID),
		logx.Int64("job_id", o.JobID),
		logx.String("channel", string(o.Channel)),
	)
	s.publishTransition(ctx, events.KindOfferResent, o, now)
	s.deliver(ctx, o)

	return o, nil
}

// ExpireStale sweeps every pending offer past its expiry to expired and
// returns the affected jobs to the scheduling pool. Idempotent: a second
// immediate run finds nothing.
func (s *Service) ExpireStale(ctx context.Context) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.operationTimeout)
	defer cancel()

	now := s.now()
	var stale []domain.JobOffer
	err := s.runner.WithTx(ctx, func(tx schedtx.Repository) error {
		var err error
		stale, err = tx.ExpireStaleOffers(ctx, now)
		if err != nil {
			return err
		}
		if len(stale) == 0 {
			return nil
		}
		jobIDs := make([]int64, 0, len(stale))
		for _, o := range stale {
			jobIDs = append(jobIDs, o.JobID)
		}
		return tx.ReturnJobsToPool(ctx, jobIDs)
	})
	if err != nil {
		return 0, err
	}

	for i := range stale {
		if s.expired != nil {
			s.expired.Inc()
		}
		s.publishTransition(ctx, events.KindOfferExpired, &stale[i], now)
	}
	if len(stale) > 0 {
		s.logger.Info("stale offers expired",
			logx.String("event", "offers_swept"),
			logx.Int("count", len(stale)),
		)
	}
	return len(stale), nil
}

// expireTx transitions one offer to expired and returns its job to the pool.
func (s *Service) expireTx(ctx context.Context, tx schedtx.Repository, o *domain.JobOffer, now time.Time) error {
	if err := s.transitionTx(ctx, tx, o, domain.OfferStatusExpired, "", now); err != nil {
		return err
	}
	return tx.ReturnJobsToPool(ctx, []int64{o.JobID})
}

// transitionTx writes the terminal status and mirrors it onto the in-memory
// row so callers observe the post-transition state.
func (s *Service) transitionTx(ctx context.Context, tx schedtx.Repository, o *domain.JobOffer, status domain.OfferStatus, reason string, now time.Time) error {
	if err := tx.UpdateOfferStatus(ctx, o.ID, status, reason, now); err != nil {
		return err
	}
	o.Status = status
	o.RejectReason = reason
	o.RespondedAt = &now
	return nil
}

func (s *Service) publishTransition(ctx context.Context, kind events.Kind, o *domain.JobOffer, now time.Time) {
	ev := events.New(kind, now)
	ev.JobID = o.JobID
	ev.EngineerID = o.EngineerID
	ev.OfferID = o.ID
	ev.Date = o.OfferedDate
	s.publisher.Publish(ctx, ev)
}

func (s *Service) deliver(ctx context.Context, o *domain.JobOffer) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Deliver(ctx, o); err != nil {
		// the offer row is already committed; delivery can be retried via Resend
		s.logger.Warn("offer delivery failed",
			logx.Int64("offer_id", o.ID),
			logx.String("channel", string(o.Channel)),
			logx.Err(err),
		)
	}
}
