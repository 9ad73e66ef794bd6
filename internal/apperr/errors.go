package apperr

import "errors"

// ErrInvalid is returned when the input fails domain validation.
var ErrInvalid = errors.New("invalid input")

// ErrConflict indicates a uniqueness or state conflict (HTTP 409).
var ErrConflict = errors.New("conflict")

// ErrNotFound indicates that the requested resource does not exist.
var ErrNotFound = errors.New("not found")

// ErrAlreadyResolved is returned when responding to an offer that is
// already in a terminal state.
var ErrAlreadyResolved = errors.New("offer already resolved")

// ErrExpired is returned when responding to an offer past its TTL.
var ErrExpired = errors.New("offer expired")

// ErrConflictOnAccept is returned when the slot implied by an offer
// disappeared between creation and acceptance.
var ErrConflictOnAccept = errors.New("slot no longer available")

// Booking conflict reasons. Disjoint so callers can present an actionable
// message; all three also satisfy errors.Is(err, ErrConflict).

// ErrNotAvailableOnDate - the engineer's working hours or time off exclude the date.
var ErrNotAvailableOnDate = conflict("engineer not available on that date")

// ErrAtCapacity - the engineer already has the maximum permitted jobs that date.
var ErrAtCapacity = conflict("engineer at capacity for that date")

// ErrExceedsWorkingHours - the job duration runs past the engineer's day end.
var ErrExceedsWorkingHours = conflict("job exceeds engineer working hours")

type conflictError struct{ msg string }

func conflict(msg string) error { return &conflictError{msg: msg} }

func (e *conflictError) Error() string { return e.msg }

// Is makes every booking conflict reason match ErrConflict.
func (e *conflictError) Is(target error) bool { return target == ErrConflict }
