// Package memory provides an in-memory Store for tests and development.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tally/timecard-engine/engine"
	"github.com/tally/timecard-engine/store"
)

// Store keeps clients and time entries in maps guarded by an RWMutex.
// Reads return copies, so callers can hand results to the engine without
// racing writers.
type Store struct {
	mu      sync.RWMutex
	clients map[string]engine.Client
	entries map[string]engine.TimeInterval
}

var _ store.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		clients: make(map[string]engine.Client),
		entries: make(map[string]engine.TimeInterval),
	}
}

// =============================================================================
// CLIENTS
// =============================================================================

func (s *Store) ListClients(_ context.Context) ([]engine.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]engine.Client, 0, len(s.clients))
	for _, c := range s.clients {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Store) GetClient(_ context.Context, id string) (engine.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.clients[id]
	if !ok {
		return engine.Client{}, store.ErrClientNotFound
	}
	return c, nil
}

func (s *Store) CreateClient(_ context.Context, c engine.Client) (engine.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	s.clients[c.ID] = c
	return c, nil
}

func (s *Store) UpdateClient(_ context.Context, c engine.Client) (engine.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.clients[c.ID]; !ok {
		return engine.Client{}, store.ErrClientNotFound
	}
	s.clients[c.ID] = c
	return c, nil
}

func (s *Store) DeleteClient(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.clients[id]; !ok {
		return store.ErrClientNotFound
	}
	delete(s.clients, id)
	// Cascade, matching the SQLite foreign key behavior.
	for eid, e := range s.entries {
		if e.ClientID == id {
			delete(s.entries, eid)
		}
	}
	return nil
}

// =============================================================================
// TIME ENTRIES
// =============================================================================

func (s *Store) ListEntries(_ context.Context) ([]engine.TimeInterval, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sortedEntriesLocked(), nil
}

func (s *Store) sortedEntriesLocked() []engine.TimeInterval {
	out := make([]engine.TimeInterval, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartTime.Equal(out[j].StartTime) {
			return out[i].StartTime.After(out[j].StartTime)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (s *Store) GetEntry(_ context.Context, id string) (engine.TimeInterval, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[id]
	if !ok {
		return engine.TimeInterval{}, store.ErrEntryNotFound
	}
	return e, nil
}

func (s *Store) CreateEntry(_ context.Context, ti engine.TimeInterval) (engine.TimeInterval, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.clients[ti.ClientID]; !ok {
		return engine.TimeInterval{}, store.ErrClientNotFound
	}
	if ti.ID == "" {
		ti.ID = uuid.NewString()
	}
	s.entries[ti.ID] = ti
	return ti, nil
}

func (s *Store) UpdateEntry(_ context.Context, ti engine.TimeInterval) (engine.TimeInterval, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[ti.ID]; !ok {
		return engine.TimeInterval{}, store.ErrEntryNotFound
	}
	if _, ok := s.clients[ti.ClientID]; !ok {
		return engine.TimeInterval{}, store.ErrClientNotFound
	}
	s.entries[ti.ID] = ti
	return ti, nil
}

func (s *Store) DeleteEntry(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[id]; !ok {
		return store.ErrEntryNotFound
	}
	delete(s.entries, id)
	return nil
}

func (s *Store) ActiveEntry(_ context.Context) (*engine.TimeInterval, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var active *engine.TimeInterval
	for _, e := range s.entries {
		if e.EndTime != nil {
			continue
		}
		e := e
		if active == nil || e.StartTime.After(active.StartTime) {
			active = &e
		}
	}
	return active, nil
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

func (s *Store) StopTimer(_ context.Context, id string, description string, now time.Time) (engine.TimeInterval, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id]
	if !ok {
		return engine.TimeInterval{}, store.ErrEntryNotFound
	}
	if e.EndTime != nil {
		return engine.TimeInterval{}, store.ErrEntryAlreadyStopped
	}

	end := now.UTC()
	minutes := store.DurationMinutes(e.StartTime, end)
	e.EndTime = &end
	e.DurationMinutes = &minutes
	if description != "" {
		e.Description = description
	}
	s.entries[id] = e
	return e, nil
}
