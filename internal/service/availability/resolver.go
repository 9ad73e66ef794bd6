package availability

import (
	"time"

	"github.com/fieldworks/service-scheduling/internal/apperr"
	"github.com/fieldworks/service-scheduling/internal/config"
	"github.com/fieldworks/service-scheduling/internal/domain"
)

// The resolver is a pure read over already-loaded engineer data. Callers
// load the rows (and, at commit time, recount bookings under a row lock)
// and ask the same questions here in both paths, so the recommendation
// walk and the booking chokepoint can never disagree on the rules.

// DayAvailable reports whether the engineer can work the given date at all:
// the global flag is set, a working-hours row exists for the weekday with its
// availability flag set, and no approved time off contains the date.
// A missing working-hours row means unavailable, not an error.
func DayAvailable(e *domain.Engineer, date time.Time) bool {
	if e == nil || !e.Available {
		return false
	}
	if _, ok := e.WorkingDay(date.Weekday()); !ok {
		return false
	}
	return !e.OnTimeOff(date)
}

// RemainingCapacity returns the configured daily maximum minus jobs already
// committed that day, floored at zero.
func RemainingCapacity(pol config.Policy, e *domain.Engineer, booked int) int {
	capacity := pol.DailyJobCap
	if e != nil {
		capacity = pol.CapFor(e.DailyJobCap)
	}
	if rem := capacity - booked; rem > 0 {
		return rem
	}
	return 0
}

// FitsWorkingHours reports whether a job of the given duration, starting at
// the engineer's day start, ends by the configured day end.
func FitsWorkingHours(e *domain.Engineer, date time.Time, duration time.Duration) bool {
	wh, ok := e.WorkingDay(date.Weekday())
	if !ok {
		return false
	}
	endMinutes := wh.Start.Minutes() + int(duration.Minutes())
	return endMinutes <= wh.End.Minutes()
}

// CheckDay runs the full availability check for one engineer/date and
// returns nil or exactly one of the disjoint conflict reasons.
func CheckDay(pol config.Policy, e *domain.Engineer, date time.Time, booked int, duration time.Duration) error {
	if !DayAvailable(e, date) {
		return apperr.ErrNotAvailableOnDate
	}
	if RemainingCapacity(pol, e, booked) <= 0 {
		return apperr.ErrAtCapacity
	}
	if !FitsWorkingHours(e, date, duration) {
		return apperr.ErrExceedsWorkingHours
	}
	return nil
}
