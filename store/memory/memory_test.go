package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tally/timecard-engine/engine"
	"github.com/tally/timecard-engine/store"
	"github.com/tally/timecard-engine/store/memory"
)

func newClient(t *testing.T, st *memory.Store, name string) engine.Client {
	c, err := st.CreateClient(context.Background(), engine.Client{
		Name:       name,
		HourlyRate: decimal.NewFromInt(50),
	})
	require.NoError(t, err)
	return c
}

func TestMemoryClientCRUD(t *testing.T) {
	st := memory.New()
	ctx := context.Background()

	c := newClient(t, st, "Acme")
	assert.NotEmpty(t, c.ID)

	got, err := st.GetClient(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Acme", got.Name)

	_, err = st.GetClient(ctx, "missing")
	assert.ErrorIs(t, err, store.ErrClientNotFound)
}

func TestMemoryListClientsSortedByName(t *testing.T) {
	st := memory.New()

	newClient(t, st, "Zenith")
	newClient(t, st, "Acme")

	clients, err := st.ListClients(context.Background())
	require.NoError(t, err)
	require.Len(t, clients, 2)
	assert.Equal(t, "Acme", clients[0].Name)
}

func TestMemoryDeleteClientCascades(t *testing.T) {
	st := memory.New()
	ctx := context.Background()

	acme := newClient(t, st, "Acme")
	globex := newClient(t, st, "Globex")

	start := time.Date(2024, time.March, 10, 9, 0, 0, 0, time.UTC)
	_, err := st.CreateEntry(ctx, engine.TimeInterval{ClientID: acme.ID, StartTime: start})
	require.NoError(t, err)
	kept, err := st.CreateEntry(ctx, engine.TimeInterval{ClientID: globex.ID, StartTime: start})
	require.NoError(t, err)

	require.NoError(t, st.DeleteClient(ctx, acme.ID))

	entries, err := st.ListEntries(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, kept.ID, entries[0].ID)
}

func TestMemoryTimerLifecycle(t *testing.T) {
	st := memory.New()
	ctx := context.Background()
	c := newClient(t, st, "Acme")

	startAt := time.Date(2024, time.March, 10, 9, 0, 0, 0, time.UTC)
	running, err := st.StartTimer(ctx, c.ID, "focus block", startAt)
	require.NoError(t, err)

	active, err := st.ActiveEntry(ctx)
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, running.ID, active.ID)

	stopped, err := st.StopTimer(ctx, running.ID, "focus block, extended", startAt.Add(2*time.Hour))
	require.NoError(t, err)
	require.NotNil(t, stopped.DurationMinutes)
	assert.Equal(t, int64(120), *stopped.DurationMinutes)
	assert.Equal(t, "focus block, extended", stopped.Description)

	_, err = st.StopTimer(ctx, running.ID, "", startAt.Add(3*time.Hour))
	assert.ErrorIs(t, err, store.ErrEntryAlreadyStopped)
}
