//go:build integration

package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/fieldworks/service-scheduling/internal/domain"
	"github.com/fieldworks/service-scheduling/internal/repository"
)

func TestEngineerRepo_CreateAndGet_Roundtrip(t *testing.T) {
	truncateAll(t)
	ctx := context.Background()
	repo := repository.NewEngineerRepo(tcPool)

	in := &domain.Engineer{
		Name:         "Dana",
		Available:    true,
		BasePostcode: "SW1A 1AA",
		DailyJobCap:  2,
		WorkingHours: []domain.WorkingHours{
			{Weekday: time.Monday, Start: domain.ClockTime(8 * 60), End: domain.ClockTime(16 * 60), Available: true},
			{Weekday: time.Tuesday, Start: domain.ClockTime(9 * 60), End: domain.ClockTime(17 * 60), Available: true},
		},
		TimeOff: []domain.TimeOffInterval{
			{
				Start: time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC),
				End:   time.Date(2026, 9, 12, 0, 0, 0, 0, time.UTC),
			},
		},
		ServiceAreas: []domain.ServiceArea{
			{AreaKey: "SW1A", MaxTravelMinutes: 30},
			{AreaKey: "SW1B", Unbounded: true},
		},
	}

	id, err := repo.Create(ctx, in)
	require.NoError(t, err)
	require.NotZero(t, id)

	got, err := repo.Get(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, got)

	require.Equal(t, "Dana", got.Name)
	require.Equal(t, 2, got.DailyJobCap)
	require.Len(t, got.WorkingHours, 2)
	require.Equal(t, time.Monday, got.WorkingHours[0].Weekday)
	require.Equal(t, 8*60, got.WorkingHours[0].Start.Minutes())
	require.Len(t, got.TimeOff, 1)
	require.Equal(t, in.TimeOff[0].Start, domain.DateOnly(got.TimeOff[0].Start))
	require.Len(t, got.ServiceAreas, 2)
	require.Equal(t, "SW1A", got.ServiceAreas[0].AreaKey)
	require.True(t, got.ServiceAreas[1].Unbounded)
}

func TestEngineerRepo_Get_MissingReturnsNil(t *testing.T) {
	truncateAll(t)
	repo := repository.NewEngineerRepo(tcPool)

	got, err := repo.Get(context.Background(), 9999)
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestEngineerRepo_ListAvailable_FiltersGlobalFlag(t *testing.T) {
	truncateAll(t)
	ctx := context.Background()
	repo := repository.NewEngineerRepo(tcPool)

	onID := seedEngineer(t, "On", 3)

	_, err := repo.Create(ctx, &domain.Engineer{
		Name:         "Off",
		Available:    false,
		BasePostcode: "N1 1AA",
		DailyJobCap:  3,
	})
	require.NoError(t, err)

	list, err := repo.ListAvailable(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, onID, list[0].ID)
	require.Len(t, list[0].WorkingHours, 5, "details are loaded for listed engineers")
}
