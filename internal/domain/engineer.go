package domain

import "time"

// Engineer represents a field engineer who can be booked for jobs.
type Engineer struct {
	ID           int64
	Name         string
	Available    bool
	BasePostcode string
	WorkingHours []WorkingHours
	TimeOff      []TimeOffInterval
	ServiceAreas []ServiceArea
	// DailyJobCap overrides the policy-wide daily cap when > 0.
	DailyJobCap int
}

// WorkingHours is one row of the per-weekday working hours table.
// Absence of a row for a weekday means the engineer does not work that day.
type WorkingHours struct {
	Weekday   time.Weekday
	Start     ClockTime
	End       ClockTime
	Available bool
}

// ClockTime is a time of day in minutes from midnight.
type ClockTime int

// Minutes returns the minute-of-day value.
func (c ClockTime) Minutes() int { return int(c) }

// String formats the clock time as HH:MM.
func (c ClockTime) String() string {
	return time.Date(2000, 1, 1, int(c)/60, int(c)%60, 0, 0, time.UTC).Format("15:04")
}

// TimeOffInterval is an approved time-off period, inclusive on both ends.
type TimeOffInterval struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether date falls inside the interval.
func (i TimeOffInterval) Contains(date time.Time) bool {
	d := DateOnly(date)
	return !d.Before(DateOnly(i.Start)) && !d.After(DateOnly(i.End))
}

// ServiceArea is an engineer's declared willingness to serve a postcode region.
type ServiceArea struct {
	AreaKey          string
	MaxTravelMinutes int
	// Unbounded means the engineer travels any distance within this area,
	// overriding the travel-time eligibility check.
	Unbounded bool
}

// WorkingDay returns the working-hours row for the given weekday, if any.
func (e *Engineer) WorkingDay(wd time.Weekday) (WorkingHours, bool) {
	for _, wh := range e.WorkingHours {
		if wh.Weekday == wd {
			return wh, wh.Available
		}
	}
	return WorkingHours{}, false
}

// OnTimeOff reports whether any approved time-off interval contains date.
func (e *Engineer) OnTimeOff(date time.Time) bool {
	for _, iv := range e.TimeOff {
		if iv.Contains(date) {
			return true
		}
	}
	return false
}

// AreaFor returns the declared service area matching the outward code, if any.
func (e *Engineer) AreaFor(outward string) (ServiceArea, bool) {
	for _, a := range e.ServiceAreas {
		if a.AreaKey == outward {
			return a, true
		}
	}
	return ServiceArea{}, false
}
