package domain

import "time"

// Settings holds the display fields printed on the report header.
type Settings struct {
	DisplayName   string `json:"display_name"`
	DisplayBranch string `json:"display_branch"`
}

// Title returns "<name> - <branch>", or just the name when no branch is set.
func (s Settings) Title() string {
	if s.DisplayBranch == "" {
		return s.DisplayName
	}
	return s.DisplayName + " - " + s.DisplayBranch
}

// Report is the printable snapshot of the current reservations.
// Rows are ordered by slot label, the same order List returns.
type Report struct {
	Settings    Settings
	GeneratedAt time.Time
	Rows        []Reservation
}
