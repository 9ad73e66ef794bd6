package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/fieldworks/service-scheduling/internal/apperr"
	"github.com/fieldworks/service-scheduling/internal/domain"
	"github.com/fieldworks/service-scheduling/internal/logx"
	"github.com/fieldworks/service-scheduling/internal/ports/schedtx"
	"github.com/fieldworks/service-scheduling/internal/repository"
)

// Processor feeds the scheduling pipeline from upstream job lifecycle
// events: a signed contract creates a job awaiting booking, a cancellation
// kills any live offer, an on-hold suppresses the job.
type Processor struct {
	store   jobStore
	runner  TxRunner
	factory *actionFactory
	logger  logx.Logger
}

// NewProcessorWithDeps creates a Processor from interfaces (handy for tests).
func NewProcessorWithDeps(store jobStore, runner TxRunner, logger logx.Logger) *Processor {
	return newProcessor(store, runner, logger)
}

type runnerAdapter struct {
	r *repository.OfferRepo
}

// WithTx opens a transaction and executes fn within it.
func (a runnerAdapter) WithTx(ctx context.Context, fn func(tx schedtx.Repository) error) error {
	return a.r.WithTx(ctx, fn)
}

// NewProcessor creates a new jobs.Processor
func NewProcessor(store *repository.JobRepo, offers *repository.OfferRepo, logger logx.Logger) *Processor {
	return newProcessor(store, runnerAdapter{r: offers}, logger)
}

func newProcessor(store jobStore, runner TxRunner, logger logx.Logger) *Processor {
	p := &Processor{
		store:  store,
		runner: runner,
		logger: logger,
	}
	p.factory = newActionFactory(p.onCreated, p.onCancelled, p.onHold)
	return p
}

// Handle processes a single jobs.Event. Unknown statuses are skipped, not
// failed, so one bad producer cannot wedge the consumer group.
func (p *Processor) Handle(ctx context.Context, e Event) error {
	if _, err := uuid.Parse(e.JobRef); err != nil {
		return fmt.Errorf("job ref %q: %w", e.JobRef, apperr.ErrInvalid)
	}
	fn, ok := p.factory.get(e.Status)
	if !ok {
		return nil
	}
	return fn(ctx, e)
}

func (p *Processor) onCreated(ctx context.Context, e Event) error {
	existing, err := p.store.GetByRef(ctx, e.JobRef)
	if err != nil {
		return err
	}
	if existing != nil {
		// redelivery: the job is already in the pipeline
		return nil
	}

	jobType := domain.JobType(e.JobType)
	if !jobType.Valid() {
		return fmt.Errorf("job type %q: %w", e.JobType, apperr.ErrInvalid)
	}
	if !domain.ValidatePostcode(e.Postcode) {
		return fmt.Errorf("postcode %q: %w", e.Postcode, apperr.ErrInvalid)
	}
	duration := time.Duration(e.DurationMinutes) * time.Minute
	if duration <= 0 {
		return fmt.Errorf("duration %d: %w", e.DurationMinutes, apperr.ErrInvalid)
	}

	j := &domain.Job{
		Ref:      e.JobRef,
		Postcode: domain.NormalizePostcode(e.Postcode),
		Address:  e.Address,
		Duration: duration,
		Type:     jobType,
		Status:   domain.JobStatusAwaitingBooking,
		ClientID: e.ClientID,
	}
	id, err := p.store.Create(ctx, j)
	if err != nil {
		if repository.IsDuplicate(err) {
			return nil
		}
		return err
	}

	p.logger.Info("job entered scheduling pool",
		logx.String("event", "job_created"),
		logx.Int64("job_id", id),
		logx.String("job_ref", e.JobRef),
		logx.String("postcode", j.Postcode),
	)
	return nil
}

func (p *Processor) onCancelled(ctx context.Context, e Event) error {
	job, err := p.store.GetByRef(ctx, e.JobRef)
	if err != nil {
		return err
	}
	if job == nil || job.Status == domain.JobStatusCancelled {
		return nil
	}

	err = p.runner.WithTx(ctx, func(tx schedtx.Repository) error {
		// job lock first, same order as every other commit path
		if err := tx.LockJob(ctx, job.ID); err != nil {
			return err
		}
		if _, err := tx.ExpirePendingOffersForJob(ctx, job.ID); err != nil {
			return err
		}
		return tx.UpdateJobStatus(ctx, job.ID, domain.JobStatusCancelled)
	})
	if err != nil {
		return err
	}

	p.logger.Info("job cancelled",
		logx.String("event", "job_cancelled"),
		logx.Int64("job_id", job.ID),
		logx.String("job_ref", e.JobRef),
	)
	return nil
}

func (p *Processor) onHold(ctx context.Context, e Event) error {
	job, err := p.store.GetByRef(ctx, e.JobRef)
	if err != nil {
		return err
	}
	if job == nil || job.Status.Terminal() {
		return nil
	}

	status := domain.JobStatusOnHold
	suppressed := true
	if _, err := p.store.UpdatePartial(ctx, domain.PartialJobUpdate{
		ID:         job.ID,
		Status:     &status,
		Suppressed: &suppressed,
	}); err != nil {
		return err
	}

	p.logger.Info("job put on hold",
		logx.String("event", "job_on_hold"),
		logx.Int64("job_id", job.ID),
		logx.String("job_ref", e.JobRef),
	)
	return nil
}
