package domain

import (
	"fmt"
	"slices"
)

const (
	// MinutesPerDay is the length of the rotation.
	MinutesPerDay = 24 * 60

	// DefaultSlotMinutes is the slot duration used by the sign-up rotation.
	DefaultSlotMinutes = 15
)

// Slot is one bookable interval of the day. It is derived, never persisted.
type Slot struct {
	Label string `json:"label"`
	Start string `json:"start"`
	End   string `json:"end"`
}

// ListSlots returns every slot of a 24-hour day for the given duration, in
// chronological order starting at 00:00. The last slot ends at 00:00 rather
// than 24:00.
//
// durationMinutes must be positive and divide 1440; anything else is a
// configuration mistake and yields ErrValidation.
func ListSlots(durationMinutes int) ([]Slot, error) {
	if err := ValidateSlotMinutes(durationMinutes); err != nil {
		return nil, err
	}

	n := MinutesPerDay / durationMinutes
	slots := make([]Slot, 0, n)
	for i := 0; i < n; i++ {
		start := i * durationMinutes
		end := (start + durationMinutes) % MinutesPerDay
		s := Slot{Start: formatClock(start), End: formatClock(end)}
		s.Label = s.Start + " - " + s.End
		slots = append(slots, s)
	}
	return slots, nil
}

// ValidateSlotMinutes reports whether d can partition a day into equal slots.
func ValidateSlotMinutes(d int) error {
	if d <= 0 || MinutesPerDay%d != 0 {
		return fmt.Errorf("%w: slot duration %d does not divide %d minutes", ErrValidation, d, MinutesPerDay)
	}
	return nil
}

// formatClock renders minutes since midnight as zero-padded "HH:MM".
func formatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// SlotCatalog is the fixed, ordered menu of bookable slots.
// Build it once at startup; it is immutable and safe for concurrent use.
type SlotCatalog struct {
	slots  []Slot
	labels map[string]struct{}
}

// NewSlotCatalog builds the catalog for durationMinutes.
func NewSlotCatalog(durationMinutes int) (*SlotCatalog, error) {
	slots, err := ListSlots(durationMinutes)
	if err != nil {
		return nil, err
	}
	labels := make(map[string]struct{}, len(slots))
	for _, s := range slots {
		labels[s.Label] = struct{}{}
	}
	return &SlotCatalog{slots: slots, labels: labels}, nil
}

// Slots returns a copy of the ordered slot list.
func (c *SlotCatalog) Slots() []Slot {
	return slices.Clone(c.slots)
}

// Contains reports whether label is exactly one of the catalog's labels.
func (c *SlotCatalog) Contains(label string) bool {
	_, ok := c.labels[label]
	return ok
}

// Len returns the number of slots in the day.
func (c *SlotCatalog) Len() int {
	return len(c.slots)
}

// SlotStatus is a catalog entry joined with the current reservations.
type SlotStatus struct {
	Slot
	Taken bool `json:"taken"`
}
