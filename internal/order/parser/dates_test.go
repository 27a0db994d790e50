package parser

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScanDates_Formats(t *testing.T) {
	now := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		text string
		want time.Time
	}{
		{"numeric MM/DD/YYYY", "placed on 03/15/2026", time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)},
		{"numeric with dashes", "placed on 03-15-2026", time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)},
		{"two digit year below 50", "placed on 3/15/26", time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)},
		{"ISO format", "placed on 2026-03-15", time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)},
		{"month day year", "placed on March 15, 2026", time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)},
		{"month day ordinal no year", "placed on March 15th", time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)},
		{"abbreviated month", "placed on Mar 15, 2026", time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)},
		{"day month year", "placed on 15 March 2026", time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)},
		{"day ordinal month", "placed on 15th March", time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dates := scanDates(tt.text, now)
			require.Len(t, dates, 1)
			assert.Equal(t, tt.want, dates[0])
		})
	}
}

func TestScanDates_RejectsImpossibleDates(t *testing.T) {
	now := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		text string
	}{
		{"month rollover day", "dated 02/30/2026"},
		{"thirteenth month", "dated 13/13/2026"},
		{"day zero", "dated 03/00/2026"},
		{"no date at all", "no numbers that look like dates here"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Empty(t, scanDates(tt.text, now))
		})
	}
}

func TestWithinSanityWindow_Boundaries(t *testing.T) {
	now := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		t    time.Time
		want bool
	}{
		{"now", now, true},
		{"exactly two years out", now.AddDate(2, 0, 0), true},
		{"one day past two years", now.AddDate(2, 0, 1), false},
		{"exactly five years back", now.AddDate(-5, 0, 0), true},
		{"one day before five years back", now.AddDate(-5, 0, -1), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, withinSanityWindow(tt.t, now))
		})
	}
}

func TestNormalizeYear(t *testing.T) {
	now := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, 2026, normalizeYear(0, now))
	assert.Equal(t, 2026, normalizeYear(26, now))
	assert.Equal(t, 2049, normalizeYear(49, now))
	assert.Equal(t, 1999, normalizeYear(99, now))
	assert.Equal(t, 1998, normalizeYear(98, now))
	assert.Equal(t, 2026, normalizeYear(2026, now))
}

func TestEarliestDate_PicksEarliest(t *testing.T) {
	now := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	text := "shipped 02/20/2026, ordered 01/02/2026, arriving 03/01/2026"

	assert.Equal(t, time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC), earliestDate(text, now))
}

func TestEarliestDate_ZeroWhenNothingParses(t *testing.T) {
	now := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	assert.True(t, earliestDate("nothing here", now).IsZero())
}

func TestExpectedDeliveryDate_WindowIsBounded(t *testing.T) {
	now := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)

	// The date sits far beyond the 60-char window after the anchor, so it must
	// not be picked up.
	text := "expected sometime, though honestly we cannot promise anything at all about timing or handling......... 03/15/2026"
	assert.Nil(t, expectedDeliveryDate(text, now))
}
