package domain_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ICMVRD/sb1-hdboxt/internal/domain"
)

func TestListSlots_Default(t *testing.T) {
	slots, err := domain.ListSlots(domain.DefaultSlotMinutes)

	require.NoError(t, err)
	require.Len(t, slots, 96)
	assert.Equal(t, "00:00 - 00:15", slots[0].Label)
	assert.Equal(t, "23:45 - 00:00", slots[len(slots)-1].Label)
	assert.Equal(t, "08:00 - 08:15", slots[32].Label)
}

func TestListSlots_HourBoundary(t *testing.T) {
	slots, err := domain.ListSlots(15)
	require.NoError(t, err)

	want := []domain.Slot{
		{Label: "00:30 - 00:45", Start: "00:30", End: "00:45"},
		{Label: "00:45 - 01:00", Start: "00:45", End: "01:00"},
		{Label: "01:00 - 01:15", Start: "01:00", End: "01:15"},
	}
	if diff := cmp.Diff(want, slots[2:5]); diff != "" {
		t.Errorf("slots mismatch (-want +got):\n%s", diff)
	}
}

// TestListSlots_AllDivisors checks count, strict chronological order, label
// uniqueness and the midnight wraparound for every duration dividing a day.
func TestListSlots_AllDivisors(t *testing.T) {
	for d := 1; d <= domain.MinutesPerDay; d++ {
		if domain.MinutesPerDay%d != 0 {
			continue
		}
		slots, err := domain.ListSlots(d)
		require.NoError(t, err, "duration %d", d)
		require.Len(t, slots, domain.MinutesPerDay/d, "duration %d", d)

		seen := make(map[string]bool, len(slots))
		for i, s := range slots {
			assert.False(t, seen[s.Label], "duplicate label %q for duration %d", s.Label, d)
			seen[s.Label] = true
			if i > 0 {
				assert.Less(t, slots[i-1].Start, s.Start, "duration %d not chronological", d)
				assert.Equal(t, slots[i-1].End, s.Start, "duration %d has a gap", d)
			}
		}
		assert.Equal(t, "00:00", slots[0].Start)
		assert.Equal(t, "00:00", slots[len(slots)-1].End, "duration %d", d)
	}
}

func TestListSlots_Deterministic(t *testing.T) {
	a, err := domain.ListSlots(30)
	require.NoError(t, err)
	b, err := domain.ListSlots(30)
	require.NoError(t, err)

	assert.Empty(t, cmp.Diff(a, b))
}

func TestListSlots_InvalidDuration(t *testing.T) {
	for _, d := range []int{0, -15, 7, 1441} {
		_, err := domain.ListSlots(d)
		assert.ErrorIs(t, err, domain.ErrValidation, "duration %d", d)
	}
}

func TestSlotCatalog_Contains(t *testing.T) {
	c, err := domain.NewSlotCatalog(domain.DefaultSlotMinutes)
	require.NoError(t, err)

	assert.Equal(t, 96, c.Len())
	assert.True(t, c.Contains("08:00 - 08:15"))
	assert.True(t, c.Contains("23:45 - 00:00"))
	assert.False(t, c.Contains("25:00 - 25:15"))
	assert.False(t, c.Contains("08:00-08:15"))
	assert.False(t, c.Contains("08:05 - 08:20"))
	assert.False(t, c.Contains(""))
}

func TestSlotCatalog_SlotsIsCopy(t *testing.T) {
	c, err := domain.NewSlotCatalog(60)
	require.NoError(t, err)

	s := c.Slots()
	s[0].Label = "mutated"

	assert.Equal(t, "00:00 - 01:00", c.Slots()[0].Label)
}

func TestPartialClearError(t *testing.T) {
	var err error = &domain.PartialClearError{Removed: 2, Failed: []string{"a", "b"}}

	assert.ErrorIs(t, err, domain.ErrPartialClear)
	assert.False(t, errors.Is(err, domain.ErrStoreUnavailable))
	assert.True(t, strings.Contains(err.Error(), "a, b"))

	var pce *domain.PartialClearError
	require.ErrorAs(t, err, &pce)
	assert.Equal(t, 2, pce.Removed)
}

func TestSettings_Title(t *testing.T) {
	assert.Equal(t, "Central - North", domain.Settings{DisplayName: "Central", DisplayBranch: "North"}.Title())
	assert.Equal(t, "Central", domain.Settings{DisplayName: "Central"}.Title())
}
