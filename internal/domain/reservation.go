// Package domain contains the core data types for the slot sign-up scheduler.
// It has no dependencies on storage or transport and is imported by every
// other internal package (repo, service, handler, report).
package domain

import "time"

// Reservation binds a participant name to one slot of the day.
// At most one Reservation exists per Time label. Reservations are never
// edited; they disappear only through a bulk clear.
type Reservation struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Time      string    `json:"time"` // slot label, "HH:MM - HH:MM"
	CreatedAt time.Time `json:"created_at"`
}

// ClearResult is what a backing store reports after deleting every
// reservation. Failed holds the IDs that could not be removed and Cause the
// driver errors behind them.
type ClearResult struct {
	Removed int
	Failed  []string
	Cause   error
}
