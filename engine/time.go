package engine

import "time"

// =============================================================================
// CALENDAR HELPERS
// =============================================================================
// All calendar arithmetic is done in UTC. Periods are inclusive and end at
// the last representable millisecond of a day, matching how the rest of
// the system renders and filters date ranges.

const endOfDayNanos = int64(999 * time.Millisecond)

// Midnight truncates an instant to 00:00:00.000 UTC of its calendar day.
func Midnight(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// EndOfDay returns 23:59:59.999 UTC of the instant's calendar day.
func EndOfDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 23, 59, 59, int(endOfDayNanos), time.UTC)
}

// WholeDaysBetween returns the number of whole days from one midnight to
// another. Negative when to precedes from. Exact in UTC: no DST.
func WholeDaysBetween(from, to time.Time) int {
	return int(Midnight(to).Sub(Midnight(from)).Hours() / 24)
}

// floorDiv is integer division rounding toward negative infinity, so a
// reference before an anchor lands in a negative cycle index rather than
// being clamped to zero.
func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

// daysInMonth returns the length of the given calendar month.
func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// clampedDate builds a midnight UTC date, clamping the day to the month's
// last day when the month is too short (day 31 in a 30-day month).
func clampedDate(year int, month time.Month, day int) time.Time {
	if max := daysInMonth(year, month); day > max {
		day = max
	}
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// monthAfter steps a year/month pair forward one month.
func monthAfter(year int, month time.Month) (int, time.Month) {
	if month == time.December {
		return year + 1, time.January
	}
	return year, month + 1
}

// monthBefore steps a year/month pair back one month.
func monthBefore(year int, month time.Month) (int, time.Month) {
	if month == time.January {
		return year - 1, time.December
	}
	return year, month - 1
}

// startOfMonth returns the first midnight of the instant's month.
func startOfMonth(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// endOfMonth returns 23:59:59.999 on the last day of the instant's month.
func endOfMonth(t time.Time) time.Time {
	u := t.UTC()
	return EndOfDay(time.Date(u.Year(), u.Month(), daysInMonth(u.Year(), u.Month()), 0, 0, 0, 0, time.UTC))
}

// shortDate renders an instant the way report labels show it: "Jan 2".
func shortDate(t time.Time) string {
	return t.UTC().Format("Jan 2")
}

// shortDateWithYear renders "Jan 2, 2025" for the closing end of a label.
func shortDateWithYear(t time.Time) string {
	return t.UTC().Format("Jan 2, 2006")
}
