/*
report.go - Report composition

PURPOSE:
  Thin facade combining the period resolver, shift aggregator, and
  earnings calculator into the shapes the presentation layer renders:
  the dashboard stat cards, the hours-by-shift report, and the
  earnings-by-client report. No new arithmetic lives here.
*/
package engine

import (
	"time"

	"github.com/shopspring/decimal"
)

// DashboardStats backs the dashboard stat cards.
type DashboardStats struct {
	CurrentShiftHours decimal.Decimal
	PayCycleEarnings  decimal.Decimal
	PayCycleLabel     string
	ThisMonthHours    decimal.Decimal
	ThisMonthEarnings decimal.Decimal
	ActiveClients     int
	CompletedEntries  int
}

// Dashboard computes the headline numbers for one snapshot at now.
func Dashboard(intervals []TimeInterval, clients []Client, now time.Time) DashboardStats {
	completed := 0
	for _, ti := range intervals {
		if ti.Completed() {
			completed++
		}
	}

	thisMonth := FilterIntervalsThisMonth(intervals, now)
	cycle := CalculatePayCycleEarnings(intervals, clients, now)

	return DashboardStats{
		CurrentShiftHours: CurrentShiftHours(intervals, now),
		PayCycleEarnings:  cycle.TotalEarnings,
		PayCycleLabel:     cycle.PeriodLabel,
		ThisMonthHours:    TotalHours(thisMonth),
		ThisMonthEarnings: TotalEarnings(thisMonth, clients),
		ActiveClients:     len(clients),
		CompletedEntries:  completed,
	}
}

// ShiftReport is the hours-by-shift table plus its totals row.
type ShiftReport struct {
	Shifts          []ShiftSummary
	TotalHours      decimal.Decimal
	TotalBreakHours decimal.Decimal
	PeriodStart     time.Time
	PeriodEnd       time.Time
	PeriodLabel     string
}

// BuildShiftReport groups intervals into shifts and restricts them to
// [start, end]. Zero start/end fall back to the default reporting range
// (the union of configured pay cycles, else the current month) resolved
// at now.
func BuildShiftReport(intervals []TimeInterval, clients []Client, start, end, now time.Time) ShiftReport {
	if start.IsZero() || end.IsZero() {
		start, end = ResolveDefaultReportingRange(clients, now)
	}

	shifts := FilterShiftsByRange(GroupIntervalsByShift(intervals, clients), start, end)

	totalHours := decimal.Zero
	totalBreaks := decimal.Zero
	for _, s := range shifts {
		totalHours = totalHours.Add(s.TotalHours)
		totalBreaks = totalBreaks.Add(s.BreakHours)
	}

	return ShiftReport{
		Shifts:          shifts,
		TotalHours:      totalHours,
		TotalBreakHours: totalBreaks,
		PeriodStart:     start,
		PeriodEnd:       end,
		PeriodLabel:     shortDate(start) + " - " + shortDateWithYear(end),
	}
}

// EarningsReport ranks clients by earnings with each one's share of the
// total.
type EarningsReport struct {
	Summaries     []ClientSummary
	Shares        []decimal.Decimal // same order as Summaries, 0..1
	TotalEarnings decimal.Decimal
}

// BuildEarningsReport composes client summaries with their share of
// total earnings. Shares are zero when the total is zero.
func BuildEarningsReport(intervals []TimeInterval, clients []Client) EarningsReport {
	summaries := ClientSummaries(clients, intervals)

	total := decimal.Zero
	for _, s := range summaries {
		total = total.Add(s.Earnings)
	}

	shares := make([]decimal.Decimal, len(summaries))
	for i, s := range summaries {
		if total.IsPositive() {
			shares[i] = s.Earnings.Div(total)
		} else {
			shares[i] = decimal.Zero
		}
	}

	return EarningsReport{Summaries: summaries, Shares: shares, TotalEarnings: total}
}
