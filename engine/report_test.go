package engine_test

import (
	"testing"
	"time"

	"github.com/tally/timecard-engine/engine"
)

// =============================================================================
// DASHBOARD
// =============================================================================

func TestDashboard_ComposesHeadlineNumbers(t *testing.T) {
	// GIVEN: A weekly $50/h client, 2h today (current shift, current
	//        cycle, current month) and 3h last month
	now := instant(2024, time.March, 12, 14, 0)
	clients := []engine.Client{
		payCycleClient("c1", "Acme", "50", engine.CycleWeekly, date(2024, time.January, 1)),
	}
	intervals := []engine.TimeInterval{
		completedInterval("i1", "c1", instant(2024, time.March, 12, 9, 0), 120),
		completedInterval("i2", "c1", instant(2024, time.February, 5, 9, 0), 180),
		openInterval("i3", "c1", instant(2024, time.March, 12, 13, 0)),
	}

	stats := engine.Dashboard(intervals, clients, now)

	decimalEqual(t, "2", stats.CurrentShiftHours, "current shift hours")
	decimalEqual(t, "100", stats.PayCycleEarnings, "pay cycle earnings")
	if stats.PayCycleLabel != "Mar 11 - Mar 17, 2024" {
		t.Errorf("unexpected pay cycle label %q", stats.PayCycleLabel)
	}
	decimalEqual(t, "2", stats.ThisMonthHours, "this month hours")
	decimalEqual(t, "100", stats.ThisMonthEarnings, "this month earnings")
	if stats.ActiveClients != 1 {
		t.Errorf("expected 1 active client, got %d", stats.ActiveClients)
	}
	if stats.CompletedEntries != 2 {
		t.Errorf("expected 2 completed entries, got %d", stats.CompletedEntries)
	}
}

// =============================================================================
// SHIFT REPORT
// =============================================================================

func TestBuildShiftReport_ExplicitRange(t *testing.T) {
	clients := []engine.Client{plainClient("c1", "Acme", "50")}
	intervals := []engine.TimeInterval{
		completedInterval("i1", "c1", instant(2024, time.March, 10, 8, 0), 240),
		completedInterval("i2", "c1", instant(2024, time.March, 10, 13, 0), 240),
		completedInterval("i3", "c1", instant(2024, time.March, 20, 9, 0), 60),
	}

	report := engine.BuildShiftReport(intervals, clients,
		date(2024, time.March, 9), date(2024, time.March, 11), instant(2024, time.March, 25, 12, 0))

	if len(report.Shifts) != 1 {
		t.Fatalf("expected 1 shift in range, got %d", len(report.Shifts))
	}
	decimalEqual(t, "8", report.TotalHours, "total hours")
	decimalEqual(t, "1", report.TotalBreakHours, "total break hours")
	if report.PeriodLabel != "Mar 9 - Mar 11, 2024" {
		t.Errorf("unexpected period label %q", report.PeriodLabel)
	}
}

func TestBuildShiftReport_DefaultsToPayCycleRange(t *testing.T) {
	// GIVEN: No explicit range and one weekly client
	// THEN: The report covers the client's current cycle.
	now := date(2024, time.January, 10)
	clients := []engine.Client{
		payCycleClient("c1", "Acme", "50", engine.CycleWeekly, date(2024, time.January, 1)),
	}
	intervals := []engine.TimeInterval{
		completedInterval("i1", "c1", instant(2024, time.January, 9, 9, 0), 60),
		completedInterval("i2", "c1", instant(2024, time.January, 2, 9, 0), 60), // previous cycle
	}

	report := engine.BuildShiftReport(intervals, clients, time.Time{}, time.Time{}, now)

	if !report.PeriodStart.Equal(date(2024, time.January, 8)) {
		t.Errorf("expected period start 2024-01-08, got %v", report.PeriodStart)
	}
	if len(report.Shifts) != 1 {
		t.Fatalf("expected 1 shift inside the cycle, got %d", len(report.Shifts))
	}
	decimalEqual(t, "1", report.TotalHours, "total hours")
}

func TestBuildShiftReport_DefaultsToCalendarMonthWithoutCycles(t *testing.T) {
	now := instant(2024, time.February, 15, 10, 0)
	clients := []engine.Client{plainClient("c1", "Acme", "50")}

	report := engine.BuildShiftReport(nil, clients, time.Time{}, time.Time{}, now)

	if !report.PeriodStart.Equal(date(2024, time.February, 1)) {
		t.Errorf("expected month start, got %v", report.PeriodStart)
	}
	if len(report.Shifts) != 0 {
		t.Errorf("expected no shifts, got %d", len(report.Shifts))
	}
	decimalEqual(t, "0", report.TotalHours, "total hours of empty report")
}

// =============================================================================
// EARNINGS REPORT
// =============================================================================

func TestBuildEarningsReport_SharesSumToOne(t *testing.T) {
	clients := []engine.Client{
		plainClient("c1", "Acme", "100"),
		plainClient("c2", "Globex", "100"),
	}
	intervals := []engine.TimeInterval{
		completedInterval("i1", "c1", instant(2024, time.March, 10, 9, 0), 180),
		completedInterval("i2", "c2", instant(2024, time.March, 10, 13, 0), 60),
	}

	report := engine.BuildEarningsReport(intervals, clients)

	decimalEqual(t, "400", report.TotalEarnings, "total earnings")
	if len(report.Shares) != 2 {
		t.Fatalf("expected 2 shares, got %d", len(report.Shares))
	}
	decimalEqual(t, "0.75", report.Shares[0], "leading share")
	decimalEqual(t, "0.25", report.Shares[1], "trailing share")
}

func TestBuildEarningsReport_EmptyInput(t *testing.T) {
	report := engine.BuildEarningsReport(nil, nil)

	if len(report.Summaries) != 0 {
		t.Errorf("expected no summaries, got %d", len(report.Summaries))
	}
	decimalEqual(t, "0", report.TotalEarnings, "total earnings")
}
