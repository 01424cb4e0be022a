/*
earnings.go - Hours and earnings aggregation

PURPOSE:
  Scalar and per-client reductions over completed intervals: total hours,
  hours for one client, earnings against hourly rates, and ranked client
  summaries. Intervals referencing an unknown client contribute zero,
  silently; a dangling reference is a data condition, not an error.
*/
package engine

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// HoursForClient sums completed minutes for one client, as decimal hours.
func HoursForClient(intervals []TimeInterval, clientID string) decimal.Decimal {
	var minutes int64
	for _, ti := range intervals {
		if ti.Completed() && ti.ClientID == clientID {
			minutes += ti.Minutes()
		}
	}
	return HoursFromMinutes(minutes)
}

// TotalHours sums completed minutes across all intervals, as decimal hours.
func TotalHours(intervals []TimeInterval) decimal.Decimal {
	var minutes int64
	for _, ti := range intervals {
		if ti.Completed() {
			minutes += ti.Minutes()
		}
	}
	return HoursFromMinutes(minutes)
}

// TotalEarnings sums duration x rate over completed intervals. Unknown
// client references contribute nothing.
func TotalEarnings(intervals []TimeInterval, clients []Client) decimal.Decimal {
	rates := make(map[string]decimal.Decimal, len(clients))
	for _, c := range clients {
		rates[c.ID] = c.HourlyRate
	}

	total := decimal.Zero
	for _, ti := range intervals {
		if !ti.Completed() {
			continue
		}
		rate, ok := rates[ti.ClientID]
		if !ok {
			continue
		}
		total = total.Add(HoursFromMinutes(ti.Minutes()).Mul(rate))
	}
	return total
}

// ClientSummaries aggregates completed minutes, hours, and earnings per
// client. Clients with no completed minutes are excluded; the result is
// sorted by earnings descending (stable, so equal earners keep the input
// client order).
func ClientSummaries(clients []Client, intervals []TimeInterval) []ClientSummary {
	summaries := make([]ClientSummary, 0, len(clients))
	for _, c := range clients {
		var minutes int64
		for _, ti := range intervals {
			if ti.Completed() && ti.ClientID == c.ID {
				minutes += ti.Minutes()
			}
		}
		if minutes == 0 {
			continue
		}
		hours := HoursFromMinutes(minutes)
		summaries = append(summaries, ClientSummary{
			Client:       c,
			TotalMinutes: minutes,
			TotalHours:   hours,
			Earnings:     hours.Mul(c.HourlyRate),
		})
	}
	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].Earnings.GreaterThan(summaries[j].Earnings)
	})
	return summaries
}

// CurrentShiftHours sums completed hours for intervals whose start falls
// in the shift window containing now. The boundary rule is ShiftKeyOf,
// shared with GroupIntervalsByShift, so the headline number always
// matches the grouped report.
func CurrentShiftHours(intervals []TimeInterval, now time.Time) decimal.Decimal {
	key := ShiftKeyOf(now)
	var minutes int64
	for _, ti := range intervals {
		if ti.Completed() && ShiftKeyOf(ti.StartTime).Equal(key) {
			minutes += ti.Minutes()
		}
	}
	return HoursFromMinutes(minutes)
}

// FilterIntervalsThisMonth keeps completed intervals starting on or after
// the first midnight of now's month.
func FilterIntervalsThisMonth(intervals []TimeInterval, now time.Time) []TimeInterval {
	firstOfMonth := startOfMonth(now)
	out := make([]TimeInterval, 0, len(intervals))
	for _, ti := range intervals {
		if ti.Completed() && !ti.StartTime.Before(firstOfMonth) {
			out = append(out, ti)
		}
	}
	return out
}
