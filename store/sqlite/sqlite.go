/*
Package sqlite provides the SQLite-backed Store.

PURPOSE:
  Production persistence for clients and time entries. The same schema
  and queries port to PostgreSQL with only dialect changes.

KEY TABLES:
  clients:       billing counterparties with optional pay-cycle config
  time_entries:  logged work spans; client_id cascades on client delete

WAL MODE:
  Opened with WAL and foreign_keys=on. The cascade from clients to
  time_entries relies on the foreign_keys pragma, so it is part of the
  DSN, not left to callers.

TIME AND MONEY ENCODING:
  Instants are stored as RFC3339Nano UTC text. Hourly rates are stored
  as decimal strings, never floats, so round-tripping cannot drift.

USAGE:
  st, err := sqlite.New("./data/timecard.db")  // or ":memory:"
  if err != nil { ... }
  defer st.Close()

SEE ALSO:
  - store/store.go: Interface and sentinel errors
  - store/memory: In-memory implementation for tests
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/tally/timecard-engine/engine"
	"github.com/tally/timecard-engine/store"
)

// Store implements store.Store on SQLite.
type Store struct {
	db *sql.DB
}

var _ store.Store = (*Store)(nil)

// New opens (or creates) the database at dbPath and migrates the schema.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS clients (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT,
		hourly_rate TEXT NOT NULL,
		pay_cycle_interval TEXT,
		pay_cycle_start_date TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS time_entries (
		id TEXT PRIMARY KEY,
		client_id TEXT NOT NULL REFERENCES clients(id) ON DELETE CASCADE,
		description TEXT,
		start_time TEXT NOT NULL,
		end_time TEXT,
		duration_minutes INTEGER,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_time_entries_client
		ON time_entries(client_id);
	CREATE INDEX IF NOT EXISTS idx_time_entries_start
		ON time_entries(start_time);
	-- Hot path for the running-timer lookup.
	CREATE INDEX IF NOT EXISTS idx_time_entries_open
		ON time_entries(start_time) WHERE end_time IS NULL;
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// ENCODING HELPERS
// =============================================================================

func encodeTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func decodeTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return encodeTime(*t)
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// =============================================================================
// CLIENTS
// =============================================================================

const clientColumns = "id, name, email, hourly_rate, pay_cycle_interval, pay_cycle_start_date"

func scanClient(row interface{ Scan(...any) error }) (engine.Client, error) {
	var (
		c          engine.Client
		email      sql.NullString
		rateStr    string
		cycle      sql.NullString
		anchorText sql.NullString
	)
	if err := row.Scan(&c.ID, &c.Name, &email, &rateStr, &cycle, &anchorText); err != nil {
		return engine.Client{}, err
	}

	rate, err := decimal.NewFromString(rateStr)
	if err != nil {
		return engine.Client{}, fmt.Errorf("corrupt hourly_rate for client %s: %w", c.ID, err)
	}
	c.HourlyRate = rate
	c.Email = email.String
	c.PayCycleInterval = engine.PayCycleInterval(cycle.String)
	if anchorText.Valid {
		anchor, err := decodeTime(anchorText.String)
		if err != nil {
			return engine.Client{}, fmt.Errorf("corrupt pay_cycle_start_date for client %s: %w", c.ID, err)
		}
		c.PayCycleStartDate = &anchor
	}
	return c, nil
}

func (s *Store) ListClients(ctx context.Context) ([]engine.Client, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+clientColumns+" FROM clients ORDER BY name, id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []engine.Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) GetClient(ctx context.Context, id string) (engine.Client, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+clientColumns+" FROM clients WHERE id = ?", id)
	c, err := scanClient(row)
	if errors.Is(err, sql.ErrNoRows) {
		return engine.Client{}, store.ErrClientNotFound
	}
	return c, err
}

func (s *Store) CreateClient(ctx context.Context, c engine.Client) (engine.Client, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	now := encodeTime(time.Now())

	var anchor any
	if c.PayCycleStartDate != nil {
		anchor = encodeTime(*c.PayCycleStartDate)
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO clients (id, name, email, hourly_rate, pay_cycle_interval, pay_cycle_start_date, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Name, nullableString(c.Email), c.HourlyRate.String(),
		nullableString(string(c.PayCycleInterval)), anchor, now, now)
	if err != nil {
		return engine.Client{}, err
	}
	return c, nil
}

func (s *Store) UpdateClient(ctx context.Context, c engine.Client) (engine.Client, error) {
	var anchor any
	if c.PayCycleStartDate != nil {
		anchor = encodeTime(*c.PayCycleStartDate)
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE clients
		SET name = ?, email = ?, hourly_rate = ?, pay_cycle_interval = ?, pay_cycle_start_date = ?, updated_at = ?
		WHERE id = ?`,
		c.Name, nullableString(c.Email), c.HourlyRate.String(),
		nullableString(string(c.PayCycleInterval)), anchor, encodeTime(time.Now()), c.ID)
	if err != nil {
		return engine.Client{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return engine.Client{}, store.ErrClientNotFound
	}
	return c, nil
}

func (s *Store) DeleteClient(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM clients WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.ErrClientNotFound
	}
	return nil
}

// =============================================================================
// TIME ENTRIES
// =============================================================================

const entryColumns = "id, client_id, description, start_time, end_time, duration_minutes"

func scanEntry(row interface{ Scan(...any) error }) (engine.TimeInterval, error) {
	var (
		ti        engine.TimeInterval
		desc      sql.NullString
		startText string
		endText   sql.NullString
		minutes   sql.NullInt64
	)
	if err := row.Scan(&ti.ID, &ti.ClientID, &desc, &startText, &endText, &minutes); err != nil {
		return engine.TimeInterval{}, err
	}

	start, err := decodeTime(startText)
	if err != nil {
		return engine.TimeInterval{}, fmt.Errorf("corrupt start_time for entry %s: %w", ti.ID, err)
	}
	ti.StartTime = start
	ti.Description = desc.String
	if endText.Valid {
		end, err := decodeTime(endText.String)
		if err != nil {
			return engine.TimeInterval{}, fmt.Errorf("corrupt end_time for entry %s: %w", ti.ID, err)
		}
		ti.EndTime = &end
	}
	if minutes.Valid {
		m := minutes.Int64
		ti.DurationMinutes = &m
	}
	return ti, nil
}

func (s *Store) ListEntries(ctx context.Context) ([]engine.TimeInterval, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+entryColumns+" FROM time_entries ORDER BY start_time DESC, id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []engine.TimeInterval
	for rows.Next() {
		ti, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, ti)
	}
	return out, rows.Err()
}

func (s *Store) GetEntry(ctx context.Context, id string) (engine.TimeInterval, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+entryColumns+" FROM time_entries WHERE id = ?", id)
	ti, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return engine.TimeInterval{}, store.ErrEntryNotFound
	}
	return ti, err
}

func (s *Store) clientExists(ctx context.Context, id string) error {
	var one int
	err := s.db.QueryRowContext(ctx, "SELECT 1 FROM clients WHERE id = ?", id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrClientNotFound
	}
	return err
}

func (s *Store) CreateEntry(ctx context.Context, ti engine.TimeInterval) (engine.TimeInterval, error) {
	if err := s.clientExists(ctx, ti.ClientID); err != nil {
		return engine.TimeInterval{}, err
	}
	if ti.ID == "" {
		ti.ID = uuid.NewString()
	}
	now := encodeTime(time.Now())

	var minutes any
	if ti.DurationMinutes != nil {
		minutes = *ti.DurationMinutes
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO time_entries (id, client_id, description, start_time, end_time, duration_minutes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		ti.ID, ti.ClientID, nullableString(ti.Description), encodeTime(ti.StartTime),
		nullableTime(ti.EndTime), minutes, now, now)
	if err != nil {
		return engine.TimeInterval{}, err
	}
	return ti, nil
}

func (s *Store) UpdateEntry(ctx context.Context, ti engine.TimeInterval) (engine.TimeInterval, error) {
	if err := s.clientExists(ctx, ti.ClientID); err != nil {
		return engine.TimeInterval{}, err
	}

	var minutes any
	if ti.DurationMinutes != nil {
		minutes = *ti.DurationMinutes
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE time_entries
		SET client_id = ?, description = ?, start_time = ?, end_time = ?, duration_minutes = ?, updated_at = ?
		WHERE id = ?`,
		ti.ClientID, nullableString(ti.Description), encodeTime(ti.StartTime),
		nullableTime(ti.EndTime), minutes, encodeTime(time.Now()), ti.ID)
	if err != nil {
		return engine.TimeInterval{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return engine.TimeInterval{}, store.ErrEntryNotFound
	}
	return ti, nil
}

func (s *Store) DeleteEntry(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM time_entries WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.ErrEntryNotFound
	}
	return nil
}

func (s *Store) ActiveEntry(ctx context.Context) (*engine.TimeInterval, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+entryColumns+" FROM time_entries WHERE end_time IS NULL ORDER BY start_time DESC LIMIT 1")
	ti, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &ti, nil
}

// =============================================================================
// TIMER
// =============================================================================

func (s *Store) StartTimer(ctx context.Context, clientID, description string, now time.Time) (engine.TimeInterval, error) {
	return s.CreateEntry(ctx, engine.TimeInterval{
		ClientID:    clientID,
		Description: description,
		StartTime:   now.UTC(),
	})
}

func (s *Store) StopTimer(ctx context.Context, id string, description string, now time.Time) (engine.TimeInterval, error) {
	ti, err := s.GetEntry(ctx, id)
	if err != nil {
		return engine.TimeInterval{}, err
	}
	if ti.EndTime != nil {
		return engine.TimeInterval{}, store.ErrEntryAlreadyStopped
	}

	end := now.UTC()
	minutes := store.DurationMinutes(ti.StartTime, end)
	ti.EndTime = &end
	ti.DurationMinutes = &minutes
	if description != "" {
		ti.Description = description
	}
	return s.UpdateEntry(ctx, ti)
}
