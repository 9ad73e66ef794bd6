package schedtx

import (
	"context"
	"time"

	"github.com/fieldworks/service-scheduling/internal/domain"
)

// Repository is the transaction-scoped view of the scheduling store. Every
// mutation that depends on a just-read value (capacity, offer state) goes
// through here so the check and the write land in one transaction.
type Repository interface {
	// LockEngineer takes a row lock on the engineer, serializing concurrent
	// confirms for the same engineer. Returns apperr.ErrNotFound when the
	// engineer does not exist.
	LockEngineer(ctx context.Context, engineerID int64) error
	GetEngineer(ctx context.Context, engineerID int64) (*domain.Engineer, error)
	CountScheduledJobs(ctx context.Context, engineerID int64, date time.Time) (int, error)

	// LockJob takes a row lock on the job. Every commit-path transaction
	// acquires this lock before any other row (job, then offers, then
	// engineer), so racing paths for the same job serialize and re-read
	// committed state instead of acting on a stale snapshot. Returns
	// apperr.ErrNotFound when the job does not exist.
	LockJob(ctx context.Context, jobID int64) error
	GetJob(ctx context.Context, jobID int64) (*domain.Job, error)
	UpdateJobStatus(ctx context.Context, jobID int64, status domain.JobStatus) error
	// UpdateJobSchedule commits engineer/date/status=scheduled in one write.
	UpdateJobSchedule(ctx context.Context, jobID, engineerID int64, date time.Time) error

	// GetOffer and GetOfferByToken are unlocked reads, used only to learn
	// which job to lock; callers must re-read with the ForUpdate variants
	// after LockJob before acting on the row.
	GetOffer(ctx context.Context, offerID int64) (*domain.JobOffer, error)
	GetOfferByToken(ctx context.Context, token string) (*domain.JobOffer, error)
	GetOfferForUpdate(ctx context.Context, offerID int64) (*domain.JobOffer, error)
	GetOfferByTokenForUpdate(ctx context.Context, token string) (*domain.JobOffer, error)
	// ExpirePendingOffersForJob supersedes any live offer for the job and
	// returns the ids it transitioned.
	ExpirePendingOffersForJob(ctx context.Context, jobID int64) ([]int64, error)
	InsertOffer(ctx context.Context, o *domain.JobOffer) error
	UpdateOfferStatus(ctx context.Context, offerID int64, status domain.OfferStatus, reason string, respondedAt time.Time) error

	// ExpireStaleOffers transitions every pending offer past its expiry and
	// returns the affected rows for event emission.
	ExpireStaleOffers(ctx context.Context, now time.Time) ([]domain.JobOffer, error)
	// ReturnJobsToPool puts jobs back to awaiting_booking, but only those
	// still marked offer_outstanding.
	ReturnJobsToPool(ctx context.Context, jobIDs []int64) error
}

// Runner is a transaction runner
type Runner interface {
	WithTx(ctx context.Context, fn func(tx Repository) error) error
}
