package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fieldworks/service-scheduling/internal/apperr"
	"github.com/fieldworks/service-scheduling/internal/domain"
	"github.com/fieldworks/service-scheduling/internal/ports/schedtx"
)

// OfferRepo represents job-offer repository and the transaction runner for
// every scheduling mutation.
type OfferRepo struct {
	db *pgxpool.Pool
}

// NewOfferRepo creates a new OfferRepo.
func NewOfferRepo(db *pgxpool.Pool) *OfferRepo {
	return &OfferRepo{db: db}
}

const offerColumns = `id, job_id, engineer_id, offered_date, time_window, status, token, channel, expires_at, responded_at, reject_reason, created_at`

func scanOffer(row interface{ Scan(...any) error }) (*domain.JobOffer, error) {
	var o domain.JobOffer
	err := row.Scan(&o.ID, &o.JobID, &o.EngineerID, &o.OfferedDate, &o.Window,
		&o.Status, &o.Token, &o.Channel, &o.ExpiresAt, &o.RespondedAt,
		&o.RejectReason, &o.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// Get - returns an offer by its ID.
func (r *OfferRepo) Get(ctx context.Context, id int64) (*domain.JobOffer, error) {
	o, err := scanOffer(r.db.QueryRow(ctx,
		`SELECT `+offerColumns+` FROM job_offers WHERE id = $1`, id))
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get offer %d: %w", id, err)
	}
	return o, nil
}

// NewestByJob - returns the most recently created offer for a job, if any.
func (r *OfferRepo) NewestByJob(ctx context.Context, jobID int64) (*domain.JobOffer, error) {
	o, err := scanOffer(r.db.QueryRow(ctx, `
        SELECT `+offerColumns+`
        FROM job_offers
        WHERE job_id = $1
        ORDER BY created_at DESC, id DESC
        LIMIT 1
    `, jobID))
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("newest offer for job %d: %w", jobID, err)
	}
	return o, nil
}

// WithTx opens a transaction and executes fn within it.
func (r *OfferRepo) WithTx(ctx context.Context, fn func(tx schedtx.Repository) error) (err error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			err = tx.Rollback(ctx)
			if err != nil {
				panic(err)
			}
			panic(p)
		}
	}()

	wrapped := &TxRepo{tx: tx}

	if err := fn(wrapped); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			return fmt.Errorf("rollback tx: %w (original error: %s)", rbErr, err.Error())
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}

// TxRepo represents transaction repository.
type TxRepo struct {
	tx pgx.Tx
}

// LockEngineer takes a row lock on the engineer. All concurrent confirms for
// the same engineer queue behind this lock, so the capacity recount below is
// an atomic check-and-write, never a stale two-step.
func (r *TxRepo) LockEngineer(ctx context.Context, engineerID int64) error {
	var id int64
	err := r.tx.QueryRow(ctx,
		`SELECT id FROM engineers WHERE id = $1 FOR UPDATE`, engineerID,
	).Scan(&id)
	if err != nil {
		if IsNotFound(err) {
			return apperr.ErrNotFound
		}
		return fmt.Errorf("lock engineer %d: %w", engineerID, err)
	}
	return nil
}

// GetEngineer - loads the full engineer inside the transaction.
func (r *TxRepo) GetEngineer(ctx context.Context, engineerID int64) (*domain.Engineer, error) {
	return getEngineer(ctx, r.tx, engineerID)
}

// CountScheduledJobs - counts jobs committed to the engineer on the date.
func (r *TxRepo) CountScheduledJobs(ctx context.Context, engineerID int64, date time.Time) (int, error) {
	var n int
	err := r.tx.QueryRow(ctx, `
        SELECT COUNT(*) FROM jobs
        WHERE engineer_id = $1 AND scheduled_date = $2 AND status = $3
    `, engineerID, domain.DateOnly(date), string(domain.JobStatusScheduled)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count scheduled jobs: %w", err)
	}
	return n, nil
}

// LockJob takes a row lock on the job. Commit-path transactions acquire
// this before any offer or engineer row, so supersession, acceptance and
// direct confirms for the same job serialize here and every subsequent
// read sees committed state.
func (r *TxRepo) LockJob(ctx context.Context, jobID int64) error {
	var id int64
	err := r.tx.QueryRow(ctx,
		`SELECT id FROM jobs WHERE id = $1 FOR UPDATE`, jobID,
	).Scan(&id)
	if err != nil {
		if IsNotFound(err) {
			return apperr.ErrNotFound
		}
		return fmt.Errorf("lock job %d: %w", jobID, err)
	}
	return nil
}

// GetJob - loads a job inside the transaction.
func (r *TxRepo) GetJob(ctx context.Context, jobID int64) (*domain.Job, error) {
	return getJob(ctx, r.tx, jobID)
}

// UpdateJobStatus - moves a job to the given status.
func (r *TxRepo) UpdateJobStatus(ctx context.Context, jobID int64, status domain.JobStatus) error {
	ct, err := r.tx.Exec(ctx, `
        UPDATE jobs SET status = $2, updated_at = now() WHERE id = $1
    `, jobID, string(status))
	if err != nil {
		return fmt.Errorf("update job status %d: %w", jobID, err)
	}
	if ct.RowsAffected() == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// UpdateJobSchedule commits engineer, date and scheduled status in one write.
func (r *TxRepo) UpdateJobSchedule(ctx context.Context, jobID, engineerID int64, date time.Time) error {
	ct, err := r.tx.Exec(ctx, `
        UPDATE jobs
        SET engineer_id = $2, scheduled_date = $3, status = $4, updated_at = now()
        WHERE id = $1
    `, jobID, engineerID, domain.DateOnly(date), string(domain.JobStatusScheduled))
	if err != nil {
		return fmt.Errorf("schedule job %d: %w", jobID, err)
	}
	if ct.RowsAffected() == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// GetOffer - loads an offer by id without locking it. Only safe for
// discovering which job to lock; act on the ForUpdate re-read.
func (r *TxRepo) GetOffer(ctx context.Context, offerID int64) (*domain.JobOffer, error) {
	o, err := scanOffer(r.tx.QueryRow(ctx,
		`SELECT `+offerColumns+` FROM job_offers WHERE id = $1`, offerID))
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get offer %d: %w", offerID, err)
	}
	return o, nil
}

// GetOfferByToken - loads an offer by token without locking it.
func (r *TxRepo) GetOfferByToken(ctx context.Context, token string) (*domain.JobOffer, error) {
	o, err := scanOffer(r.tx.QueryRow(ctx,
		`SELECT `+offerColumns+` FROM job_offers WHERE token = $1`, token))
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get offer by token: %w", err)
	}
	return o, nil
}

// GetOfferForUpdate - loads and row-locks an offer by id.
func (r *TxRepo) GetOfferForUpdate(ctx context.Context, offerID int64) (*domain.JobOffer, error) {
	o, err := scanOffer(r.tx.QueryRow(ctx,
		`SELECT `+offerColumns+` FROM job_offers WHERE id = $1 FOR UPDATE`, offerID))
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get offer %d for update: %w", offerID, err)
	}
	return o, nil
}

// GetOfferByTokenForUpdate - loads and row-locks an offer by its bearer token.
// The row lock makes respond and supersession serialize; the loser sees the
// terminal state, never a stale pending row.
func (r *TxRepo) GetOfferByTokenForUpdate(ctx context.Context, token string) (*domain.JobOffer, error) {
	o, err := scanOffer(r.tx.QueryRow(ctx,
		`SELECT `+offerColumns+` FROM job_offers WHERE token = $1 FOR UPDATE`, token))
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get offer by token: %w", err)
	}
	return o, nil
}

// ExpirePendingOffersForJob supersedes any live offer for the job.
func (r *TxRepo) ExpirePendingOffersForJob(ctx context.Context, jobID int64) ([]int64, error) {
	rows, err := r.tx.Query(ctx, `
        UPDATE job_offers
        SET status = $2, responded_at = now()
        WHERE job_id = $1 AND status = $3
        RETURNING id
    `, jobID, string(domain.OfferStatusExpired), string(domain.OfferStatusPending))
	if err != nil {
		return nil, fmt.Errorf("supersede offers for job %d: %w", jobID, err)
	}
	defer rows.Close()
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// InsertOffer - inserts a new pending offer.
func (r *TxRepo) InsertOffer(ctx context.Context, o *domain.JobOffer) error {
	err := r.tx.QueryRow(ctx, `
        INSERT INTO job_offers(job_id, engineer_id, offered_date, time_window, status, token, channel, expires_at)
        VALUES($1, $2, $3, $4, $5, $6, $7, $8)
        RETURNING id, created_at
    `, o.JobID, o.EngineerID, domain.DateOnly(o.OfferedDate), o.Window,
		string(o.Status), o.Token, string(o.Channel), o.ExpiresAt,
	).Scan(&o.ID, &o.CreatedAt)
	if err != nil {
		if IsDuplicate(err) {
			// partial unique index: one pending offer per job
			return apperr.ErrConflict
		}
		return fmt.Errorf("insert offer: %w", err)
	}
	return nil
}

// UpdateOfferStatus - transitions an offer to a terminal status.
func (r *TxRepo) UpdateOfferStatus(ctx context.Context, offerID int64, status domain.OfferStatus, reason string, respondedAt time.Time) error {
	ct, err := r.tx.Exec(ctx, `
        UPDATE job_offers
        SET status = $2, reject_reason = $3, responded_at = $4
        WHERE id = $1
    `, offerID, string(status), reason, respondedAt)
	if err != nil {
		return fmt.Errorf("update offer status %d: %w", offerID, err)
	}
	if ct.RowsAffected() == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// ExpireStaleOffers - transitions every pending offer past its expiry.
// The affected jobs are locked first, in id order, keeping the global
// job-before-offer lock order so the sweep cannot deadlock a concurrent
// create or respond for the same job.
func (r *TxRepo) ExpireStaleOffers(ctx context.Context, now time.Time) ([]domain.JobOffer, error) {
	lockRows, err := r.tx.Query(ctx, `
        SELECT id FROM jobs
        WHERE id IN (
            SELECT job_id FROM job_offers WHERE status = $1 AND expires_at <= $2
        )
        ORDER BY id
        FOR UPDATE
    `, string(domain.OfferStatusPending), now)
	if err != nil {
		return nil, fmt.Errorf("lock jobs with stale offers: %w", err)
	}
	for lockRows.Next() {
		var id int64
		if err := lockRows.Scan(&id); err != nil {
			lockRows.Close()
			return nil, err
		}
	}
	lockRows.Close()
	if err := lockRows.Err(); err != nil {
		return nil, fmt.Errorf("lock jobs with stale offers: %w", err)
	}

	rows, err := r.tx.Query(ctx, `
        UPDATE job_offers
        SET status = $1, responded_at = $2
        WHERE status = $3 AND expires_at <= $2
        RETURNING `+offerColumns+`
    `, string(domain.OfferStatusExpired), now, string(domain.OfferStatusPending))
	if err != nil {
		return nil, fmt.Errorf("expire stale offers: %w", err)
	}
	defer rows.Close()
	var out []domain.JobOffer
	for rows.Next() {
		o, err := scanOffer(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *o)
	}
	return out, rows.Err()
}

// ReturnJobsToPool - puts jobs back to awaiting_booking, but only those still
// marked offer_outstanding.
func (r *TxRepo) ReturnJobsToPool(ctx context.Context, jobIDs []int64) error {
	if len(jobIDs) == 0 {
		return nil
	}
	_, err := r.tx.Exec(ctx, `
        UPDATE jobs
        SET status = $2, updated_at = now()
        WHERE id = ANY($1) AND status = $3
    `, jobIDs, string(domain.JobStatusAwaitingBooking), string(domain.JobStatusOfferOutstanding))
	if err != nil {
		return fmt.Errorf("return jobs to pool: %w", err)
	}
	return nil
}

var _ schedtx.Repository = (*TxRepo)(nil)
