package parser

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Date-shaped substrings are scanned in four textual formats. Each pattern
// yields candidate component strings that still go through normalization and
// the sanity window before being trusted.
var (
	numericDateRe = regexp.MustCompile(`\b(\d{1,2})[/-](\d{1,2})[/-](\d{2,4})\b`)
	isoDateRe     = regexp.MustCompile(`\b(\d{4})-(\d{2})-(\d{2})\b`)
	monthDayRe    = regexp.MustCompile(`\b(january|february|march|april|may|june|july|august|september|october|november|december|jan|feb|mar|apr|jun|jul|aug|sep|sept|oct|nov|dec)\.?\s+(\d{1,2})(?:st|nd|rd|th)?(?:,?\s+(\d{4}))?\b`)
	dayMonthRe    = regexp.MustCompile(`\b(\d{1,2})(?:st|nd|rd|th)?\s+(january|february|march|april|may|june|july|august|september|october|november|december|jan|feb|mar|apr|jun|jul|aug|sep|sept|oct|nov|dec)\.?(?:,?\s+(\d{4}))?\b`)
)

var monthsByName = map[string]time.Month{
	"january": time.January, "jan": time.January,
	"february": time.February, "feb": time.February,
	"march": time.March, "mar": time.March,
	"april": time.April, "apr": time.April,
	"may":  time.May,
	"june": time.June, "jun": time.June,
	"july": time.July, "jul": time.July,
	"august": time.August, "aug": time.August,
	"september": time.September, "sep": time.September, "sept": time.September,
	"october": time.October, "oct": time.October,
	"november": time.November, "nov": time.November,
	"december": time.December, "dec": time.December,
}

// normalizeYear maps 2-digit years below 50 to the 2000s and the rest to the
// 1900s. A zero year means the text carried no year at all and is assigned
// the current one.
func normalizeYear(year int, now time.Time) int {
	switch {
	case year == 0:
		return now.Year()
	case year < 50:
		return 2000 + year
	case year < 100:
		return 1900 + year
	default:
		return year
	}
}

// withinSanityWindow accepts dates in [now-5y, now+2y]. The upper bound is
// inclusive: a date exactly two years out is still plausible, one day beyond
// is not.
func withinSanityWindow(t, now time.Time) bool {
	return !t.Before(now.AddDate(-5, 0, 0)) && !t.After(now.AddDate(2, 0, 0))
}

func makeDate(year int, month time.Month, day int, now time.Time) (time.Time, bool) {
	year = normalizeYear(year, now)
	if month < time.January || month > time.December || day < 1 || day > 31 {
		return time.Time{}, false
	}
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	// time.Date silently rolls over invalid days (Feb 30 -> Mar 2)
	if t.Day() != day || t.Month() != month {
		return time.Time{}, false
	}
	if !withinSanityWindow(t, now) {
		return time.Time{}, false
	}
	return t, true
}

// scanDates returns every sanity-window-valid date found in text, in order of
// appearance.
func scanDates(text string, now time.Time) []time.Time {
	lower := strings.ToLower(text)
	var dates []time.Time

	for _, m := range numericDateRe.FindAllStringSubmatch(lower, -1) {
		month, _ := strconv.Atoi(m[1])
		day, _ := strconv.Atoi(m[2])
		year, _ := strconv.Atoi(m[3])
		if t, ok := makeDate(year, time.Month(month), day, now); ok {
			dates = append(dates, t)
		}
	}

	for _, m := range isoDateRe.FindAllStringSubmatch(lower, -1) {
		year, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		day, _ := strconv.Atoi(m[3])
		if t, ok := makeDate(year, time.Month(month), day, now); ok {
			dates = append(dates, t)
		}
	}

	for _, m := range monthDayRe.FindAllStringSubmatch(lower, -1) {
		month := monthsByName[m[1]]
		day, _ := strconv.Atoi(m[2])
		year := 0
		if m[3] != "" {
			year, _ = strconv.Atoi(m[3])
		}
		if t, ok := makeDate(year, month, day, now); ok {
			dates = append(dates, t)
		}
	}

	for _, m := range dayMonthRe.FindAllStringSubmatch(lower, -1) {
		day, _ := strconv.Atoi(m[1])
		month := monthsByName[m[2]]
		year := 0
		if m[3] != "" {
			year, _ = strconv.Atoi(m[3])
		}
		if t, ok := makeDate(year, month, day, now); ok {
			dates = append(dates, t)
		}
	}

	return dates
}

// earliestDate returns the earliest valid date in text, or zero when none
// parses.
func earliestDate(text string, now time.Time) time.Time {
	dates := scanDates(text, now)
	if len(dates) == 0 {
		return time.Time{}
	}
	earliest := dates[0]
	for _, d := range dates[1:] {
		if d.Before(earliest) {
			earliest = d
		}
	}
	return earliest
}

// Expected-delivery dates are only trusted when anchored near delivery
// phrasing; an unanchored future date is too ambiguous.
var deliveryAnchorRe = regexp.MustCompile(`(expected|estimated|delivery|arrives?|arriving|due|by)\b`)

// expectedDeliveryDate scans the text near delivery anchors for a strictly
// future date. Returns nil when no anchored future date is found.
func expectedDeliveryDate(text string, now time.Time) *time.Time {
	lower := strings.ToLower(text)
	for _, loc := range deliveryAnchorRe.FindAllStringIndex(lower, -1) {
		end := loc[1] + 60
		if end > len(lower) {
			end = len(lower)
		}
		window := lower[loc[0]:end]
		for _, d := range scanDates(window, now) {
			if d.After(now) {
				d := d
				return &d
			}
		}
	}
	return nil
}
