/*
shift.go - Shift grouping and break inference

PURPOSE:
  Partitions completed time intervals into rolling 24-hour "shift"
  buckets and computes per-shift worked hours, inferred break hours, and
  per-client breakdowns.

WHAT IS A SHIFT:
  A shift runs from 06:00:00.000 UTC to the next day's 06:00. Work
  started before 06:00 belongs to the previous calendar day's shift, so
  a session that runs past midnight stays one shift. The shift key is
  the canonical 06:00 instant of the owning day.

BREAK INFERENCE:
  breakHours = span(observedStart..observedEnd) - hours worked. The span
  can undershoot the worked total when intervals overlap or duplicate;
  the difference is clamped at zero rather than surfaced.
*/
package engine

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// shiftBoundaryHour is the UTC hour at which one business day rolls into
// the next.
const shiftBoundaryHour = 6

// ShiftKeyOf returns the canonical shift-day instant (06:00 UTC of the
// owning day) for the given instant. Instants strictly before 06:00 key
// to the previous day.
func ShiftKeyOf(t time.Time) time.Time {
	u := t.UTC()
	day := Midnight(u)
	if u.Hour() < shiftBoundaryHour {
		day = day.AddDate(0, 0, -1)
	}
	return day.Add(shiftBoundaryHour * time.Hour)
}

// GroupIntervalsByShift partitions completed intervals into shifts and
// summarizes each one. Open intervals are discarded up front. The result
// is sorted ascending by shift key; a shift with no intervals does not
// appear.
func GroupIntervalsByShift(intervals []TimeInterval, clients []Client) []ShiftSummary {
	clientsByID := make(map[string]Client, len(clients))
	for _, c := range clients {
		clientsByID[c.ID] = c
	}

	buckets := make(map[time.Time][]TimeInterval)
	var keys []time.Time
	for _, ti := range intervals {
		if !ti.Completed() {
			continue
		}
		k := ShiftKeyOf(ti.StartTime)
		if _, seen := buckets[k]; !seen {
			keys = append(keys, k)
		}
		buckets[k] = append(buckets[k], ti)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Before(keys[j]) })

	summaries := make([]ShiftSummary, 0, len(keys))
	for _, k := range keys {
		summaries = append(summaries, summarizeShift(k, buckets[k], clientsByID))
	}
	return summaries
}

func summarizeShift(key time.Time, intervals []TimeInterval, clientsByID map[string]Client) ShiftSummary {
	observedStart := intervals[0].StartTime
	observedEnd := *intervals[0].EndTime
	for _, ti := range intervals[1:] {
		if ti.StartTime.Before(observedStart) {
			observedStart = ti.StartTime
		}
		if ti.EndTime.After(observedEnd) {
			observedEnd = *ti.EndTime
		}
	}

	// Per-client partition, preserving first-seen order for stable ties.
	minutesByClient := make(map[string]int64)
	intervalsByClient := make(map[string][]TimeInterval)
	var order []string
	for _, ti := range intervals {
		if _, seen := minutesByClient[ti.ClientID]; !seen {
			order = append(order, ti.ClientID)
		}
		minutesByClient[ti.ClientID] += ti.Minutes()
		intervalsByClient[ti.ClientID] = append(intervalsByClient[ti.ClientID], ti)
	}

	var totalMinutes int64
	breakdown := make([]ClientShiftHours, 0, len(order))
	for _, id := range order {
		totalMinutes += minutesByClient[id]
		breakdown = append(breakdown, ClientShiftHours{
			Client:    clientsByID[id],
			Hours:     HoursFromMinutes(minutesByClient[id]),
			Intervals: intervalsByClient[id],
		})
	}
	sort.SliceStable(breakdown, func(i, j int) bool {
		return breakdown[i].Hours.GreaterThan(breakdown[j].Hours)
	})

	totalHours := HoursFromMinutes(totalMinutes)
	spanHours := decimal.NewFromFloat(observedEnd.Sub(observedStart).Hours())
	breakHours := spanHours.Sub(totalHours)
	if breakHours.IsNegative() {
		breakHours = decimal.Zero
	}

	return ShiftSummary{
		ShiftKey:      key,
		ObservedStart: observedStart,
		ObservedEnd:   observedEnd,
		TotalHours:    totalHours,
		BreakHours:    breakHours,
		Breakdown:     breakdown,
	}
}

// FilterShiftsByRange keeps shifts whose key day falls inside the
// inclusive [start, end] day window. A shift is included or excluded as
// one unit; individual interval times near the window edge do not split
// it.
func FilterShiftsByRange(shifts []ShiftSummary, start, end time.Time) []ShiftSummary {
	lo, hi := Midnight(start), EndOfDay(end)
	out := make([]ShiftSummary, 0, len(shifts))
	for _, s := range shifts {
		day := Midnight(s.ShiftKey)
		if !day.Before(lo) && !day.After(hi) {
			out = append(out, s)
		}
	}
	return out
}
