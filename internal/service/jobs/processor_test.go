package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/fieldworks/service-scheduling/internal/apperr"
	"github.com/fieldworks/service-scheduling/internal/domain"
	"github.com/fieldworks/service-scheduling/internal/ports/schedtx"
	testlog "github.com/fieldworks/service-scheduling/internal/testutil"
)

type stubStore struct {
	getByRefFn func(context.Context, string) (*domain.Job, error)
	createFn   func(context.Context, *domain.Job) (int64, error)
	updateFn   func(context.Context, domain.PartialJobUpdate) (bool, error)
}

func (s *stubStore) GetByRef(ctx context.Context, ref string) (*domain.Job, error) {
	if s.getByRefFn == nil {
		return nil, nil
	}
	return s.getByRefFn(ctx, ref)
}
func (s *stubStore) Create(ctx context.Context, j *domain.Job) (int64, error) {
	if s.createFn == nil {
		return 0, nil
	}
	return s.createFn(ctx, j)
}
func (s *stubStore) UpdatePartial(ctx context.Context, u domain.PartialJobUpdate) (bool, error) {
	if s.updateFn == nil {
		return false, nil
	}
	return s.updateFn(ctx, u)
}

type stubTx struct {
	schedtx.Repository

	lockJobFn         func(context.Context, int64) error
	expirePendingFn   func(context.Context, int64) ([]int64, error)
	updateJobStatusFn func(context.Context, int64, domain.JobStatus) error
}

func (s *stubTx) LockJob(ctx context.Context, jobID int64) error {
	if s.lockJobFn == nil {
		return nil
	}
	return s.lockJobFn(ctx, jobID)
}
func (s *stubTx) ExpirePendingOffersForJob(ctx context.Context, jobID int64) ([]int64, error) {
	if s.expirePendingFn == nil {
		return nil, nil
	}
	return s.expirePendingFn(ctx, jobID)
}
func (s *stubTx) UpdateJobStatus(ctx context.Context, jobID int64, status domain.JobStatus) error {
	if s.updateJobStatusFn == nil {
		return nil
	}
	return s.updateJobStatusFn(ctx, jobID, status)
}

type stubRunner struct{ tx *stubTx }

func (s stubRunner) WithTx(ctx context.Context, fn func(tx schedtx.Repository) error) error {
	return fn(s.tx)
}

type noopRunner struct{}

func (noopRunner) WithTx(context.Context, func(tx schedtx.Repository) error) error {
	panic("WithTx must not be called in this test")
}

const ref = "6f1f6e2a-7d7b-4a6f-9a75-2f50c5da8f01"

func createdEvent() Event {
	return Event{
		JobRef:          ref,
		Status:          "created",
		Postcode:        "sw1a 1aa",
		Address:         "10 Downing St",
		DurationMinutes: 120,
		JobType:         "installation",
		ClientID:        3,
		CreatedAt:       time.Now().UTC(),
	}
}

func TestHandle_CreatedInsertsJob(t *testing.T) {
	t.Parallel()

	var created *domain.Job
	store := &stubStore{
		createFn: func(_ context.Context, j *domain.Job) (int64, error) {
			created = j
			return 11, nil
		},
	}
	p := NewProcessorWithDeps(store, noopRunner{}, testlog.New().Logger())

	require.NoError(t, p.Handle(context.Background(), createdEvent()))
	require.NotNil(t, created)
	require.Equal(t, "SW1A 1AA", created.Postcode, "postcode is normalized")
	require.Equal(t, domain.JobStatusAwaitingBooking, created.Status)
	require.Equal(t, 2*time.Hour, created.Duration)
	require.Equal(t, domain.JobTypeInstallation, created.Type)
}

func TestHandle_CreatedRedeliveryIsNoop(t *testing.T) {
	t.Parallel()

	store := &stubStore{
		getByRefFn: func(context.Context, string) (*domain.Job, error) {
			return &domain.Job{ID: 11, Ref: ref}, nil
		},
		createFn: func(context.Context, *domain.Job) (int64, error) {
			t.Fatal("no second insert on redelivery")
			return 0, nil
		},
	}
	p := NewProcessorWithDeps(store, noopRunner{}, testlog.New().Logger())

	require.NoError(t, p.Handle(context.Background(), createdEvent()))
}

func TestHandle_CreatedValidation(t *testing.T) {
	t.Parallel()

	p := NewProcessorWithDeps(&stubStore{}, noopRunner{}, testlog.New().Logger())

	e := createdEvent()
	e.Postcode = "nonsense"
	require.ErrorIs(t, p.Handle(context.Background(), e), apperr.ErrInvalid)

	e = createdEvent()
	e.JobType = "gardening"
	require.ErrorIs(t, p.Handle(context.Background(), e), apperr.ErrInvalid)

	e = createdEvent()
	e.DurationMinutes = 0
	require.ErrorIs(t, p.Handle(context.Background(), e), apperr.ErrInvalid)
}

func TestHandle_BadRef(t *testing.T) {
	t.Parallel()

	p := NewProcessorWithDeps(&stubStore{}, noopRunner{}, testlog.New().Logger())

	e := createdEvent()
	e.JobRef = "not-a-uuid"
	require.ErrorIs(t, p.Handle(context.Background(), e), apperr.ErrInvalid)
}

func TestHandle_UnknownStatusSkipped(t *testing.T) {
	t.Parallel()

	store := &stubStore{
		getByRefFn: func(context.Context, string) (*domain.Job, error) {
			t.Fatal("unknown statuses never touch the store")
			return nil, nil
		},
	}
	p := NewProcessorWithDeps(store, noopRunner{}, testlog.New().Logger())

	e := createdEvent()
	e.Status = "invoiced"
	require.NoError(t, p.Handle(context.Background(), e))
}

func TestHandle_CancelledExpiresOffersAndCancels(t *testing.T) {
	t.Parallel()

	var (
		order     []string
		newStatus domain.JobStatus
	)
	store := &stubStore{
		getByRefFn: func(context.Context, string) (*domain.Job, error) {
			return &domain.Job{ID: 11, Ref: ref, Status: domain.JobStatusOfferOutstanding}, nil
		},
	}
	tx := &stubTx{
		lockJobFn: func(_ context.Context, jobID int64) error {
			require.Equal(t, int64(11), jobID)
			order = append(order, "lockJob")
			return nil
		},
		expirePendingFn: func(_ context.Context, jobID int64) ([]int64, error) {
			require.Equal(t, int64(11), jobID)
			order = append(order, "expire")
			return []int64{21}, nil
		},
		updateJobStatusFn: func(_ context.Context, jobID int64, status domain.JobStatus) error {
			require.Equal(t, int64(11), jobID)
			newStatus = status
			return nil
		},
	}
	p := NewProcessorWithDeps(store, stubRunner{tx: tx}, testlog.New().Logger())

	e := createdEvent()
	e.Status = "cancelled"
	require.NoError(t, p.Handle(context.Background(), e))
	require.Equal(t, []string{"lockJob", "expire"}, order, "job lock lands before the offer writes")
	require.Equal(t, domain.JobStatusCancelled, newStatus)
}

func TestHandle_CancelledUnknownJobIsNoop(t *testing.T) {
	t.Parallel()

	p := NewProcessorWithDeps(&stubStore{}, noopRunner{}, testlog.New().Logger())

	e := createdEvent()
	e.Status = "deleted"
	require.NoError(t, p.Handle(context.Background(), e))
}

func TestHandle_OnHoldSuppresses(t *testing.T) {
	t.Parallel()

	var got domain.PartialJobUpdate
	store := &stubStore{
		getByRefFn: func(context.Context, string) (*domain.Job, error) {
			return &domain.Job{ID: 11, Ref: ref, Status: domain.JobStatusAwaitingBooking}, nil
		},
		updateFn: func(_ context.Context, u domain.PartialJobUpdate) (bool, error) {
			got = u
			return true, nil
		},
	}
	p := NewProcessorWithDeps(store, noopRunner{}, testlog.New().Logger())

	e := createdEvent()
	e.Status = "on_hold"
	require.NoError(t, p.Handle(context.Background(), e))
	require.Equal(t, int64(11), got.ID)
	require.Equal(t, domain.JobStatusOnHold, *got.Status)
	require.True(t, *got.Suppressed)
}

func TestHandle_OnHoldTerminalJobUntouched(t *testing.T) {
	t.Parallel()

	store := &stubStore{
		getByRefFn: func(context.Context, string) (*domain.Job, error) {
			return &domain.Job{ID: 11, Ref: ref, Status: domain.JobStatusCompleted}, nil
		},
		updateFn: func(context.Context, domain.PartialJobUpdate) (bool, error) {
			t.Fatal("terminal jobs are never suppressed")
			return false, nil
		},
	}
	p := NewProcessorWithDeps(store, noopRunner{}, testlog.New().Logger())

	e := createdEvent()
	e.Status = "on_hold"
	require.NoError(t, p.Handle(context.Background(), e))
}

func TestHandle_StoreErrorPropagates(t *testing.T) {
	t.Parallel()

	dbErr := errors.New("connection refused")
	store := &stubStore{
		getByRefFn: func(context.Context, string) (*domain.Job, error) { return nil, dbErr },
	}
	p := NewProcessorWithDeps(store, noopRunner{}, testlog.New().Logger())

	require.ErrorIs(t, p.Handle(context.Background(), createdEvent()), dbErr)
}
