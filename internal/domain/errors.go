package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned by repo functions when the requested record does
// not exist in the backing store.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned when input fails business rule validation
// (blank name, unknown slot label, slot duration that does not divide a day).
// Handlers map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")

// ErrSlotTaken is returned when a reservation already exists for the
// requested slot. Handlers map this to HTTP 409 Conflict.
var ErrSlotTaken = errors.New("slot already taken")

// ErrStoreUnavailable wraps transport and connectivity failures talking to
// the backing store. Handlers map this to HTTP 503.
var ErrStoreUnavailable = errors.New("reservation store unavailable")

// ErrPartialClear is matched by *PartialClearError.
var ErrPartialClear = errors.New("partial clear failure")

// ErrForbidden is returned by the access gate when the caller lacks the role
// an endpoint requires.
var ErrForbidden = errors.New("forbidden")

// ErrNotConfigured is returned by optional features, such as report
// archiving, that have no backend configured. Handlers map this to HTTP 501.
var ErrNotConfigured = errors.New("not configured")

// PartialClearError reports a bulk clear where some reservations could not be
// removed. Removed counts the ones that were.
type PartialClearError struct {
	Removed int
	Failed  []string
}

func (e *PartialClearError) Error() string {
	return fmt.Sprintf("%s: removed %d, could not remove %d (%s)",
		ErrPartialClear, e.Removed, len(e.Failed), strings.Join(e.Failed, ", "))
}

// Is lets errors.Is(err, ErrPartialClear) match.
func (e *PartialClearError) Is(target error) bool {
	return target == ErrPartialClear
}
