/*
period.go - Pay-cycle period resolution

PURPOSE:
  Computes a client's current recurring billing window from its configured
  cycle kind (weekly, biweekly, monthly) and anchor date, and derives the
  pay-cycle metrics built on top of those windows.

KEY INSIGHT:
  The current window is pure arithmetic on (interval, anchor, reference).
  Weekly and biweekly cycles are fixed-length day grids laid out from the
  anchor; a reference before the anchor yields a negative cycle index and
  a window before the anchor. That is exact arithmetic, not an error.

MONTHLY ROLLOVER POLICY:
  The anchor's day-of-month is the recurring cutover day. When that day
  does not exist in a target month (day 31 in a 30-day month), the cutover
  clamps to the month's last day. The next cutover is derived from the
  anchor day again, not the clamped day, so a 31-anchor recovers the 31st
  in longer months. Consecutive windows tile the calendar with no gaps.

SEE ALSO:
  - earnings.go: Interval-level aggregation the cycle metrics reuse
  - report.go: Dashboard composition of these values
*/
package engine

import (
	"time"

	"github.com/shopspring/decimal"
)

// NoPayCyclesLabel is the period label used when no client has a
// configured pay cycle.
const NoPayCyclesLabel = "No pay cycles configured"

// ResolvePayCyclePeriod returns the billing window containing reference
// for the given cycle kind and anchor date. Both bounds are inclusive;
// End is the last millisecond of its day.
func ResolvePayCyclePeriod(interval PayCycleInterval, anchor, reference time.Time) PayCyclePeriod {
	if interval == CycleMonthly {
		return monthlyPeriod(anchor, reference)
	}
	return dayGridPeriod(interval.Days(), anchor, reference)
}

// dayGridPeriod lays fixed-length cycles out from the anchor midnight and
// picks the one containing the reference. The cycle index is floor
// division, so references before the anchor resolve to earlier cycles.
func dayGridPeriod(lengthDays int, anchor, reference time.Time) PayCyclePeriod {
	anchorMidnight := Midnight(anchor)
	elapsed := WholeDaysBetween(anchorMidnight, reference)
	cycle := floorDiv(elapsed, lengthDays)

	start := anchorMidnight.AddDate(0, 0, cycle*lengthDays)
	end := EndOfDay(start.AddDate(0, 0, lengthDays-1))
	return PayCyclePeriod{Start: start, End: end}
}

// monthlyPeriod finds the cutover on or before the reference and runs the
// window to the day before the next cutover.
func monthlyPeriod(anchor, reference time.Time) PayCyclePeriod {
	anchorDay := anchor.UTC().Day()
	refMidnight := Midnight(reference)

	year, month := refMidnight.Year(), refMidnight.Month()
	start := clampedDate(year, month, anchorDay)
	if refMidnight.Before(start) {
		year, month = monthBefore(year, month)
		start = clampedDate(year, month, anchorDay)
	}

	nextYear, nextMonth := monthAfter(year, month)
	nextCutover := clampedDate(nextYear, nextMonth, anchorDay)
	end := EndOfDay(nextCutover.AddDate(0, 0, -1))
	return PayCyclePeriod{Start: start, End: end}
}

// ResolveDefaultReportingRange returns the union of every configured
// client's current pay cycle: earliest start to latest end. When no
// client has a pay cycle configured it falls back to the current
// calendar month.
func ResolveDefaultReportingRange(clients []Client, reference time.Time) (time.Time, time.Time) {
	var start, end time.Time
	for _, c := range clients {
		if !c.HasPayCycle() {
			continue
		}
		p := ResolvePayCyclePeriod(c.PayCycleInterval, *c.PayCycleStartDate, reference)
		if start.IsZero() || p.Start.Before(start) {
			start = p.Start
		}
		if end.IsZero() || p.End.After(end) {
			end = p.End
		}
	}
	if start.IsZero() {
		return startOfMonth(reference), endOfMonth(reference)
	}
	return start, end
}

// CalculatePayCycleEarnings sums hours x rate over each configured
// client's completed intervals inside its own current cycle. Clients
// without a configured cycle contribute nothing and do not widen the
// label range.
func CalculatePayCycleEarnings(intervals []TimeInterval, clients []Client, reference time.Time) PayCycleEarnings {
	total := decimal.Zero
	var labelStart, labelEnd time.Time
	configured := false

	for _, c := range clients {
		if !c.HasPayCycle() {
			continue
		}
		configured = true

		p := ResolvePayCyclePeriod(c.PayCycleInterval, *c.PayCycleStartDate, reference)
		if labelStart.IsZero() || p.Start.Before(labelStart) {
			labelStart = p.Start
		}
		if labelEnd.IsZero() || p.End.After(labelEnd) {
			labelEnd = p.End
		}

		var minutes int64
		for _, ti := range intervals {
			if !ti.Completed() || ti.ClientID != c.ID {
				continue
			}
			if p.Contains(ti.StartTime) {
				minutes += ti.Minutes()
			}
		}
		total = total.Add(HoursFromMinutes(minutes).Mul(c.HourlyRate))
	}

	if !configured {
		return PayCycleEarnings{TotalEarnings: decimal.Zero, PeriodLabel: NoPayCyclesLabel}
	}
	return PayCycleEarnings{
		TotalEarnings: total,
		PeriodLabel:   shortDate(labelStart) + " - " + shortDateWithYear(labelEnd),
	}
}
