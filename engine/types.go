/*
Package engine provides the time-accounting core of the timecard system.

PURPOSE:
  This package turns raw time-interval records into billing periods,
  shift-level work/break summaries, and earnings totals. It is pure
  computation: callers hand it immutable snapshots of time entries and
  clients, it hands back derived values. Persistence, HTTP, timers, and
  currency conversion all live outside.

KEY CONCEPTS IN THIS FILE (types.go):
  - TimeInterval: A logged span of work (open until it has an end time)
  - Client: Who the work was for, with an hourly rate and optional pay cycle
  - PayCyclePeriod: A client's current recurring billing window
  - ShiftSummary: One rolling business day (06:00 to 06:00) of work
  - ClientSummary: Per-client minutes, hours, and earnings

DESIGN PRINCIPLES:
  1. Purity: Every function is total and side-effect-free. Degenerate
     input (unknown client, empty slice, zero duration) degrades to a
     zero contribution, never an error.
  2. Precision: decimal.Decimal for hours and money, so repeated
     aggregation does not drift.
  3. Explicit time: "now" is always a parameter, never read from the
     wall clock, so callers and tests can pin it.

SEE ALSO:
  - period.go: Pay-cycle period resolution
  - shift.go: Shift grouping and break inference
  - earnings.go: Hours and earnings aggregation
  - report.go: Dashboard/report composition
*/
package engine

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// PAY CYCLE INTERVAL
// =============================================================================

// PayCycleInterval is how often a client's billing window recurs.
type PayCycleInterval string

const (
	CycleWeekly   PayCycleInterval = "weekly"
	CycleBiweekly PayCycleInterval = "biweekly"
	CycleMonthly  PayCycleInterval = "monthly"
)

// Valid reports whether the interval is one of the known cycle kinds.
func (i PayCycleInterval) Valid() bool {
	switch i {
	case CycleWeekly, CycleBiweekly, CycleMonthly:
		return true
	}
	return false
}

// Days returns the fixed cycle length in days for day-based intervals.
// Monthly cycles have no fixed length and return 0.
func (i PayCycleInterval) Days() int {
	switch i {
	case CycleWeekly:
		return 7
	case CycleBiweekly:
		return 14
	}
	return 0
}

// =============================================================================
// EXTERNALLY OWNED RECORDS - read-only snapshots from the store
// =============================================================================

// TimeInterval is a single logged span of work. It is owned by the store;
// the engine only ever reads committed snapshots.
//
// Invariant: DurationMinutes is non-nil iff EndTime is non-nil. An interval
// with no end is "open" (a running timer) and is excluded from every
// aggregation in this package.
type TimeInterval struct {
	ID              string
	ClientID        string
	Description     string
	StartTime       time.Time // UTC
	EndTime         *time.Time
	DurationMinutes *int64
}

// Completed reports whether the interval has been closed out.
func (ti TimeInterval) Completed() bool {
	return ti.EndTime != nil && ti.DurationMinutes != nil
}

// Minutes returns the recorded duration, or 0 for an open interval.
func (ti TimeInterval) Minutes() int64 {
	if ti.DurationMinutes == nil {
		return 0
	}
	return *ti.DurationMinutes
}

// Client is a billing counterparty. A client participates in pay-cycle
// aggregation only when both PayCycleInterval and PayCycleStartDate are
// set; otherwise it is simply invisible to that metric.
type Client struct {
	ID                string
	Name              string
	Email             string
	HourlyRate        decimal.Decimal
	PayCycleInterval  PayCycleInterval // empty when unconfigured
	PayCycleStartDate *time.Time       // anchor date, midnight UTC
}

// HasPayCycle reports whether the client is configured for pay-cycle
// aggregation.
func (c Client) HasPayCycle() bool {
	return c.PayCycleInterval.Valid() && c.PayCycleStartDate != nil
}

// =============================================================================
// DERIVED VALUES - recomputed per query, never persisted
// =============================================================================

// PayCyclePeriod is one client's current billing window, inclusive on
// both ends. End carries the 23:59:59.999 end-of-day instant.
type PayCyclePeriod struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls within the period [Start, End].
func (p PayCyclePeriod) Contains(t time.Time) bool {
	return !t.Before(p.Start) && !t.After(p.End)
}

// ClientShiftHours is one client's share of a shift.
type ClientShiftHours struct {
	Client    Client
	Hours     decimal.Decimal
	Intervals []TimeInterval
}

// ShiftSummary is one rolling 24-hour business day of work. ShiftKey is
// the canonical 06:00 instant of the owning day; Breakdown is sorted by
// hours descending.
type ShiftSummary struct {
	ShiftKey      time.Time
	ObservedStart time.Time
	ObservedEnd   time.Time
	TotalHours    decimal.Decimal
	BreakHours    decimal.Decimal
	Breakdown     []ClientShiftHours
}

// ClientSummary is a client's aggregate over some set of intervals.
type ClientSummary struct {
	Client       Client
	TotalMinutes int64
	TotalHours   decimal.Decimal
	Earnings     decimal.Decimal
}

// PayCycleEarnings is the combined current-cycle earnings across every
// configured client, with a display label for the covered range.
type PayCycleEarnings struct {
	TotalEarnings decimal.Decimal
	PeriodLabel   string
}

// =============================================================================
// SHARED DECIMAL HELPERS
// =============================================================================

var sixty = decimal.NewFromInt(60)

// HoursFromMinutes converts whole minutes to decimal hours.
func HoursFromMinutes(minutes int64) decimal.Decimal {
	return decimal.NewFromInt(minutes).Div(sixty)
}
