//go:build integration

package repository_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/fieldworks/service-scheduling/internal/apperr"
	"github.com/fieldworks/service-scheduling/internal/domain"
	"github.com/fieldworks/service-scheduling/internal/ports/schedtx"
	"github.com/fieldworks/service-scheduling/internal/repository"
)

// insertPendingOffer creates a pending offer in its own transaction and
// returns it with ID and CreatedAt populated.
func insertPendingOffer(t *testing.T, repo *repository.OfferRepo, jobID, engineerID int64, expiresAt time.Time) *domain.JobOffer {
	t.Helper()
	o := &domain.JobOffer{
		JobID:       jobID,
		EngineerID:  engineerID,
		OfferedDate: time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC),
		Status:      domain.OfferStatusPending,
		Token:       uuid.NewString(),
		Channel:     domain.OfferChannelEmail,
		ExpiresAt:   expiresAt,
	}
	err := repo.WithTx(context.Background(), func(tx schedtx.Repository) error {
		return tx.InsertOffer(context.Background(), o)
	})
	require.NoError(t, err)
	require.NotZero(t, o.ID)
	return o
}

func TestOfferRepo_InsertOffer_OnePendingPerJob(t *testing.T) {
	truncateAll(t)
	ctx := context.Background()
	repo := repository.NewOfferRepo(tcPool)

	engID := seedEngineer(t, "Pending", 2)
	jobID := seedJob(t, "off-pend", domain.JobStatusOfferOutstanding)

	insertPendingOffer(t, repo, jobID, engID, time.Now().Add(time.Hour))

	err := repo.WithTx(ctx, func(tx schedtx.Repository) error {
		return tx.InsertOffer(ctx, &domain.JobOffer{
			JobID:       jobID,
			EngineerID:  engID,
			OfferedDate: time.Date(2026, 9, 8, 0, 0, 0, 0, time.UTC),
			Status:      domain.OfferStatusPending,
			Token:       uuid.NewString(),
			Channel:     domain.OfferChannelSMS,
			ExpiresAt:   time.Now().Add(time.Hour),
		})
	})
	require.ErrorIs(t, err, apperr.ErrConflict)
}

func TestOfferRepo_ExpirePendingOffersForJob_ThenInsertSucceeds(t *testing.T) {
	truncateAll(t)
	ctx := context.Background()
	repo := repository.NewOfferRepo(tcPool)

	engID := seedEngineer(t, "Supersede", 2)
	jobID := seedJob(t, "off-super", domain.JobStatusOfferOutstanding)

	old := insertPendingOffer(t, repo, jobID, engID, time.Now().Add(time.Hour))

	var superseded []int64
	err := repo.WithTx(ctx, func(tx schedtx.Repository) error {
		var err error
		superseded, err = tx.ExpirePendingOffersForJob(ctx, jobID)
		if err != nil {
			return err
		}
		return tx.InsertOffer(ctx, &domain.JobOffer{
			JobID:       jobID,
			EngineerID:  engID,
			OfferedDate: time.Date(2026, 9, 9, 0, 0, 0, 0, time.UTC),
			Status:      domain.OfferStatusPending,
			Token:       uuid.NewString(),
			Channel:     domain.OfferChannelEmail,
			ExpiresAt:   time.Now().Add(time.Hour),
		})
	})
	require.NoError(t, err)
	require.Equal(t, []int64{old.ID}, superseded)

	got, err := repo.Get(ctx, old.ID)
	require.NoError(t, err)
	require.Equal(t, domain.OfferStatusExpired, got.Status)
	require.NotNil(t, got.RespondedAt)
}

func TestOfferRepo_GetOfferByTokenForUpdate(t *testing.T) {
	truncateAll(t)
	ctx := context.Background()
	repo := repository.NewOfferRepo(tcPool)

	engID := seedEngineer(t, "Token", 2)
	jobID := seedJob(t, "off-token", domain.JobStatusOfferOutstanding)
	o := insertPendingOffer(t, repo, jobID, engID, time.Now().Add(time.Hour))

	err := repo.WithTx(ctx, func(tx schedtx.Repository) error {
		got, err := tx.GetOfferByTokenForUpdate(ctx, o.Token)
		require.NoError(t, err)
		require.NotNil(t, got)
		require.Equal(t, o.ID, got.ID)

		missing, err := tx.GetOfferByTokenForUpdate(ctx, uuid.NewString())
		require.NoError(t, err)
		require.Nil(t, missing)
		return nil
	})
	require.NoError(t, err)
}

func TestOfferRepo_ExpireStaleOffers_ReturnJobsToPool(t *testing.T) {
	truncateAll(t)
	ctx := context.Background()
	repo := repository.NewOfferRepo(tcPool)

	engID := seedEngineer(t, "Stale", 2)
	staleJob := seedJob(t, "off-stale", domain.JobStatusOfferOutstanding)
	freshJob := seedJob(t, "off-fresh", domain.JobStatusOfferOutstanding)
	// this job moved on already; the pool return must not touch it
	movedJob := seedJob(t, "off-moved", domain.JobStatusScheduled)

	now := time.Now().UTC()
	stale := insertPendingOffer(t, repo, staleJob, engID, now.Add(-time.Minute))
	insertPendingOffer(t, repo, freshJob, engID, now.Add(time.Hour))
	insertPendingOffer(t, repo, movedJob, engID, now.Add(-time.Minute))

	var expired []domain.JobOffer
	err := repo.WithTx(ctx, func(tx schedtx.Repository) error {
		var err error
		expired, err = tx.ExpireStaleOffers(ctx, now)
		if err != nil {
			return err
		}
		jobIDs := make([]int64, 0, len(expired))
		for _, o := range expired {
			jobIDs = append(jobIDs, o.JobID)
		}
		return tx.ReturnJobsToPool(ctx, jobIDs)
	})
	require.NoError(t, err)
	require.Len(t, expired, 2)

	got, err := repo.Get(ctx, stale.ID)
	require.NoError(t, err)
	require.Equal(t, domain.OfferStatusExpired, got.Status)

	jobRepo := repository.NewJobRepo(tcPool)
	j, err := jobRepo.Get(ctx, staleJob)
	require.NoError(t, err)
	require.Equal(t, domain.JobStatusAwaitingBooking, j.Status)

	j, err = jobRepo.Get(ctx, freshJob)
	require.NoError(t, err)
	require.Equal(t, domain.JobStatusOfferOutstanding, j.Status, "live offer keeps its job out of the pool")

	j, err = jobRepo.Get(ctx, movedJob)
	require.NoError(t, err)
	require.Equal(t, domain.JobStatusScheduled, j.Status, "scheduled job stays scheduled")

	// the sweep is idempotent
	err = repo.WithTx(ctx, func(tx schedtx.Repository) error {
		again, err := tx.ExpireStaleOffers(ctx, now)
		require.Empty(t, again)
		return err
	})
	require.NoError(t, err)
}

func TestOfferRepo_NewestByJob(t *testing.T) {
	truncateAll(t)
	ctx := context.Background()
	repo := repository.NewOfferRepo(tcPool)

	engID := seedEngineer(t, "Newest", 2)
	jobID := seedJob(t, "off-newest", domain.JobStatusOfferOutstanding)

	none, err := repo.NewestByJob(ctx, jobID)
	require.NoError(t, err)
	require.Nil(t, none)

	first := insertPendingOffer(t, repo, jobID, engID, time.Now().Add(time.Hour))
	err = repo.WithTx(ctx, func(tx schedtx.Repository) error {
		_, err := tx.ExpirePendingOffersForJob(ctx, jobID)
		return err
	})
	require.NoError(t, err)
	second := insertPendingOffer(t, repo, jobID, engID, time.Now().Add(time.Hour))

	got, err := repo.NewestByJob(ctx, jobID)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, second.ID, got.ID)
	require.NotEqual(t, first.ID, got.ID)
}

// Two transactions race to book the last slot of a capacity-1 engineer. The
// engineer row lock forces them to serialize, so the second recount sees the
// first commit and exactly one booking lands.
func TestOfferRepo_WithTx_LockSerializesCapacityCheck(t *testing.T) {
	truncateAll(t)
	ctx := context.Background()
	repo := repository.NewOfferRepo(tcPool)

	engID := seedEngineer(t, "Race", 1)
	jobA := seedJob(t, "race-a", domain.JobStatusOfferOutstanding)
	jobB := seedJob(t, "race-b", domain.JobStatusOfferOutstanding)
	day := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)

	tryBook := func(jobID int64) error {
		return repo.WithTx(ctx, func(tx schedtx.Repository) error {
			if err := tx.LockEngineer(ctx, engID); err != nil {
				return err
			}
			n, err := tx.CountScheduledJobs(ctx, engID, day)
			if err != nil {
				return err
			}
			if n >= 1 {
				return apperr.ErrConflict
			}
			return tx.UpdateJobSchedule(ctx, jobID, engID, day)
		})
	}

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, jobID := range []int64{jobA, jobB} {
		wg.Add(1)
		go func(i int, jobID int64) {
			defer wg.Done()
			errs[i] = tryBook(jobID)
		}(i, jobID)
	}
	wg.Wait()

	var conflicts, successes int
	for _, err := range errs {
		switch {
		case err == nil:
			successes++
		case errors.Is(err, apperr.ErrConflict):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	require.Equal(t, 1, successes)
	require.Equal(t, 1, conflicts)

	jobRepo := repository.NewJobRepo(tcPool)
	counts, err := jobRepo.ScheduledCounts(ctx, day, day)
	require.NoError(t, err)
	require.Equal(t, 1, counts[engID][day])
}
