package availability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/fieldworks/service-scheduling/internal/apperr"
	"github.com/fieldworks/service-scheduling/internal/config"
	"github.com/fieldworks/service-scheduling/internal/domain"
)

func workingEngineer() *domain.Engineer {
	return &domain.Engineer{
		ID:        7,
		Name:      "Pat",
		Available: true,
		WorkingHours: []domain.WorkingHours{
			{Weekday: time.Monday, Start: 9 * 60, End: 17 * 60, Available: true},
			{Weekday: time.Tuesday, Start: 9 * 60, End: 17 * 60, Available: true},
			{Weekday: time.Wednesday, Start: 9 * 60, End: 13 * 60, Available: true},
			{Weekday: time.Thursday, Start: 9 * 60, End: 17 * 60, Available: false},
		},
	}
}

func day(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", s)
	require.NoError(t, err)
	return d
}

func TestDayAvailable(t *testing.T) {
	e := workingEngineer()

	monday := day(t, "2026-09-07")
	require.Equal(t, time.Monday, monday.Weekday())
	require.True(t, DayAvailable(e, monday))

	// no working-hours row at all for Friday
	require.False(t, DayAvailable(e, day(t, "2026-09-11")))

	// row exists but is flagged unavailable
	require.False(t, DayAvailable(e, day(t, "2026-09-10")))

	e.TimeOff = []domain.TimeOffInterval{{
		Start: day(t, "2026-09-07"),
		End:   day(t, "2026-09-08"),
	}}
	require.False(t, DayAvailable(e, monday), "time off covers the date")
	require.True(t, DayAvailable(e, day(t, "2026-09-14")), "next week unaffected")

	e.Available = false
	require.False(t, DayAvailable(e, day(t, "2026-09-14")))

	require.False(t, DayAvailable(nil, monday))
}

func TestDayAvailable_TimeOffBoundsInclusive(t *testing.T) {
	e := workingEngineer()
	e.TimeOff = []domain.TimeOffInterval{{
		Start: day(t, "2026-09-08"),
		End:   day(t, "2026-09-09"),
	}}

	require.False(t, DayAvailable(e, day(t, "2026-09-08")), "start day inclusive")
	require.False(t, DayAvailable(e, day(t, "2026-09-09")), "end day inclusive")
	require.True(t, DayAvailable(e, day(t, "2026-09-07")))
}

func TestRemainingCapacity(t *testing.T) {
	pol := config.DefaultPolicy()
	pol.DailyJobCap = 3

	e := workingEngineer()
	require.Equal(t, 3, RemainingCapacity(pol, e, 0))
	require.Equal(t, 1, RemainingCapacity(pol, e, 2))
	require.Equal(t, 0, RemainingCapacity(pol, e, 3))
	require.Equal(t, 0, RemainingCapacity(pol, e, 5), "never negative")

	e.DailyJobCap = 1
	require.Equal(t, 1, RemainingCapacity(pol, e, 0), "engineer override wins")
	require.Equal(t, 0, RemainingCapacity(pol, e, 1))
}

func TestFitsWorkingHours(t *testing.T) {
	e := workingEngineer()
	wednesday := day(t, "2026-09-09") // 09:00-13:00

	require.True(t, FitsWorkingHours(e, wednesday, 4*time.Hour))
	require.False(t, FitsWorkingHours(e, wednesday, 4*time.Hour+time.Minute))
	require.False(t, FitsWorkingHours(e, day(t, "2026-09-11"), time.Hour), "no row for Friday")
}

func TestCheckDay(t *testing.T) {
	pol := config.DefaultPolicy()
	pol.DailyJobCap = 2
	monday := day(t, "2026-09-07")

	tests := []struct {
		name     string
		engineer func() *domain.Engineer
		date     time.Time
		booked   int
		duration time.Duration
		want     error
	}{
		{
			name:     "ok",
			engineer: workingEngineer,
			date:     monday,
			booked:   1,
			duration: 2 * time.Hour,
			want:     nil,
		},
		{
			name: "not available on date",
			engineer: func() *domain.Engineer {
				e := workingEngineer()
				e.TimeOff = []domain.TimeOffInterval{{Start: monday, End: monday}}
				return e
			},
			date:     monday,
			booked:   0,
			duration: time.Hour,
			want:     apperr.ErrNotAvailableOnDate,
		},
		{
			name:     "at capacity",
			engineer: workingEngineer,
			date:     monday,
			booked:   2,
			duration: time.Hour,
			want:     apperr.ErrAtCapacity,
		},
		{
			name:     "exceeds working hours",
			engineer: workingEngineer,
			date:     monday,
			booked:   0,
			duration: 9 * time.Hour,
			want:     apperr.ErrExceedsWorkingHours,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckDay(pol, tt.engineer(), tt.date, tt.booked, tt.duration)
			if tt.want == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tt.want)
			require.ErrorIs(t, err, apperr.ErrConflict, "booking conflicts all match the conflict class")
		})
	}
}
