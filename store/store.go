/*
Package store defines persistence for clients and time entries.

PURPOSE:
  The engine is pure and stateless; this package owns the record
  lifecycle around it. Implementations:
  - store/memory: in-memory maps (tests, dev)
  - store/sqlite: SQLite with cascade deletes (production)

SEMANTICS:
  - Client deletion cascades to the client's time entries.
  - StartTimer inserts an open entry (no end, no duration); StopTimer
    closes it with the elapsed whole minutes. The "one running timer"
    rule is a UI convention, not enforced here: ActiveEntry simply
    returns the most recently started open entry.
  - All reads return snapshots safe to hand to the engine.
*/
package store

import (
	"context"
	"errors"
	"time"

	"github.com/tally/timecard-engine/engine"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrClientNotFound is returned when a client id matches no record.
	ErrClientNotFound = errors.New("client not found")

	// ErrEntryNotFound is returned when a time entry id matches no record.
	ErrEntryNotFound = errors.New("time entry not found")

	// ErrEntryAlreadyStopped is returned when stopping an entry that
	// already has an end time.
	ErrEntryAlreadyStopped = errors.New("time entry already stopped")
)

// IsNotFound reports whether the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrClientNotFound) || errors.Is(err, ErrEntryNotFound)
}

// =============================================================================
// STORE INTERFACE
// =============================================================================

// Store persists clients and time entries. Zero-value IDs on create are
// assigned by the implementation.
type Store interface {
	// Clients, ordered by name.
	ListClients(ctx context.Context) ([]engine.Client, error)
	GetClient(ctx context.Context, id string) (engine.Client, error)
	CreateClient(ctx context.Context, c engine.Client) (engine.Client, error)
	UpdateClient(ctx context.Context, c engine.Client) (engine.Client, error)
	// DeleteClient removes the client and cascades to its time entries.
	DeleteClient(ctx context.Context, id string) error

	// Time entries, ordered by start time descending.
	ListEntries(ctx context.Context) ([]engine.TimeInterval, error)
	GetEntry(ctx context.Context, id string) (engine.TimeInterval, error)
	CreateEntry(ctx context.Context, ti engine.TimeInterval) (engine.TimeInterval, error)
	UpdateEntry(ctx context.Context, ti engine.TimeInterval) (engine.TimeInterval, error)
	DeleteEntry(ctx context.Context, id string) error

	// ActiveEntry returns the most recently started open entry, or nil
	// when no timer is running.
	ActiveEntry(ctx context.Context) (*engine.TimeInterval, error)

	// StartTimer opens a new entry for the client at now.
	StartTimer(ctx context.Context, clientID, description string, now time.Time) (engine.TimeInterval, error)

	// StopTimer closes an open entry at now, recording the elapsed whole
	// minutes (rounded to the nearest minute). An optional description
	// replaces the one recorded at start when non-empty.
	StopTimer(ctx context.Context, id string, description string, now time.Time) (engine.TimeInterval, error)
}

// DurationMinutes is the duration recorded when a timer stops: whole
// minutes between start and stop, rounded to nearest, never negative.
func DurationMinutes(start, stop time.Time) int64 {
	if stop.Before(start) {
		return 0
	}
	return int64(stop.Sub(start).Round(time.Minute) / time.Minute)
}
