package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tally/timecard-engine/engine"
	"github.com/tally/timecard-engine/store"
	"github.com/tally/timecard-engine/store/sqlite"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestStore(t *testing.T) *sqlite.Store {
	st, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func mustRate(t *testing.T, s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

func createClient(t *testing.T, st *sqlite.Store, name, hourlyRate string) engine.Client {
	c, err := st.CreateClient(context.Background(), engine.Client{
		Name:       name,
		HourlyRate: mustRate(t, hourlyRate),
	})
	require.NoError(t, err)
	require.NotEmpty(t, c.ID)
	return c
}

// =============================================================================
// CLIENT CRUD
// =============================================================================

func TestClientRoundTrip(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	anchor := time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC)
	created, err := st.CreateClient(ctx, engine.Client{
		Name:              "Acme",
		Email:             "billing@acme.test",
		HourlyRate:        mustRate(t, "72.50"),
		PayCycleInterval:  engine.CycleMonthly,
		PayCycleStartDate: &anchor,
	})
	require.NoError(t, err)

	got, err := st.GetClient(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Acme", got.Name)
	assert.Equal(t, "billing@acme.test", got.Email)
	assert.True(t, got.HourlyRate.Equal(mustRate(t, "72.50")), "rate must round-trip exactly")
	assert.Equal(t, engine.CycleMonthly, got.PayCycleInterval)
	require.NotNil(t, got.PayCycleStartDate)
	assert.True(t, got.PayCycleStartDate.Equal(anchor))
	assert.True(t, got.HasPayCycle())
}

func TestClientWithoutPayCycleRoundTrip(t *testing.T) {
	st := newTestStore(t)

	c := createClient(t, st, "Globex", "40")
	got, err := st.GetClient(context.Background(), c.ID)
	require.NoError(t, err)

	assert.Empty(t, string(got.PayCycleInterval))
	assert.Nil(t, got.PayCycleStartDate)
	assert.False(t, got.HasPayCycle())
}

func TestListClientsOrderedByName(t *testing.T) {
	st := newTestStore(t)

	createClient(t, st, "Zenith", "50")
	createClient(t, st, "Acme", "50")
	createClient(t, st, "Globex", "50")

	clients, err := st.ListClients(context.Background())
	require.NoError(t, err)
	require.Len(t, clients, 3)
	assert.Equal(t, "Acme", clients[0].Name)
	assert.Equal(t, "Globex", clients[1].Name)
	assert.Equal(t, "Zenith", clients[2].Name)
}

func TestUpdateClient(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	c := createClient(t, st, "Acme", "50")
	c.Name = "Acme Corp"
	c.HourlyRate = mustRate(t, "65")

	_, err := st.UpdateClient(ctx, c)
	require.NoError(t, err)

	got, err := st.GetClient(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Acme Corp", got.Name)
	assert.True(t, got.HourlyRate.Equal(mustRate(t, "65")))
}

func TestClientNotFoundErrors(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	_, err := st.GetClient(ctx, "missing")
	assert.ErrorIs(t, err, store.ErrClientNotFound)

	_, err = st.UpdateClient(ctx, engine.Client{ID: "missing", HourlyRate: decimal.Zero})
	assert.ErrorIs(t, err, store.ErrClientNotFound)

	err = st.DeleteClient(ctx, "missing")
	assert.ErrorIs(t, err, store.ErrClientNotFound)
	assert.True(t, store.IsNotFound(err))
}

// =============================================================================
// TIME ENTRY CRUD AND CASCADE
// =============================================================================

func TestEntryRoundTrip(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	c := createClient(t, st, "Acme", "50")

	start := time.Date(2024, time.March, 10, 9, 0, 0, 0, time.UTC)
	end := start.Add(90 * time.Minute)
	minutes := int64(90)

	created, err := st.CreateEntry(ctx, engine.TimeInterval{
		ClientID:        c.ID,
		Description:     "code review",
		StartTime:       start,
		EndTime:         &end,
		DurationMinutes: &minutes,
	})
	require.NoError(t, err)

	got, err := st.GetEntry(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, c.ID, got.ClientID)
	assert.Equal(t, "code review", got.Description)
	assert.True(t, got.StartTime.Equal(start))
	require.NotNil(t, got.EndTime)
	assert.True(t, got.EndTime.Equal(end))
	require.NotNil(t, got.DurationMinutes)
	assert.Equal(t, int64(90), *got.DurationMinutes)
	assert.True(t, got.Completed())
}

func TestCreateEntryUnknownClient(t *testing.T) {
	st := newTestStore(t)

	_, err := st.CreateEntry(context.Background(), engine.TimeInterval{
		ClientID:  "ghost",
		StartTime: time.Now().UTC(),
	})
	assert.ErrorIs(t, err, store.ErrClientNotFound)
}

func TestListEntriesNewestFirst(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	c := createClient(t, st, "Acme", "50")

	base := time.Date(2024, time.March, 10, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		_, err := st.CreateEntry(ctx, engine.TimeInterval{
			ClientID:  c.ID,
			StartTime: base.Add(time.Duration(i) * time.Hour),
		})
		require.NoError(t, err)
	}

	entries, err := st.ListEntries(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.True(t, entries[0].StartTime.After(entries[1].StartTime))
	assert.True(t, entries[1].StartTime.After(entries[2].StartTime))
}

func TestDeleteClientCascadesToEntries(t *testing.T) {
	// GIVEN: Two clients with entries
	// WHEN: Deleting one client
	// THEN: Only that client's entries disappear.
	st := newTestStore(t)
	ctx := context.Background()

	acme := createClient(t, st, "Acme", "50")
	globex := createClient(t, st, "Globex", "60")

	start := time.Date(2024, time.March, 10, 9, 0, 0, 0, time.UTC)
	_, err := st.CreateEntry(ctx, engine.TimeInterval{ClientID: acme.ID, StartTime: start})
	require.NoError(t, err)
	kept, err := st.CreateEntry(ctx, engine.TimeInterval{ClientID: globex.ID, StartTime: start.Add(time.Hour)})
	require.NoError(t, err)

	require.NoError(t, st.DeleteClient(ctx, acme.ID))

	entries, err := st.ListEntries(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, kept.ID, entries[0].ID)
}

// =============================================================================
// TIMER
// =============================================================================

func TestTimerStartStop(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	c := createClient(t, st, "Acme", "50")

	startAt := time.Date(2024, time.March, 10, 9, 0, 0, 0, time.UTC)
	running, err := st.StartTimer(ctx, c.ID, "standup", startAt)
	require.NoError(t, err)
	assert.Nil(t, running.EndTime)
	assert.Nil(t, running.DurationMinutes)

	active, err := st.ActiveEntry(ctx)
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, running.ID, active.ID)

	stopped, err := st.StopTimer(ctx, running.ID, "", startAt.Add(47*time.Minute))
	require.NoError(t, err)
	require.NotNil(t, stopped.DurationMinutes)
	assert.Equal(t, int64(47), *stopped.DurationMinutes)
	assert.Equal(t, "standup", stopped.Description, "description from start survives an empty stop")

	active, err = st.ActiveEntry(ctx)
	require.NoError(t, err)
	assert.Nil(t, active, "no running timer after stop")
}

func TestStopTimerTwice(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	c := createClient(t, st, "Acme", "50")

	startAt := time.Date(2024, time.March, 10, 9, 0, 0, 0, time.UTC)
	running, err := st.StartTimer(ctx, c.ID, "", startAt)
	require.NoError(t, err)

	_, err = st.StopTimer(ctx, running.ID, "", startAt.Add(time.Hour))
	require.NoError(t, err)

	_, err = st.StopTimer(ctx, running.ID, "", startAt.Add(2*time.Hour))
	assert.ErrorIs(t, err, store.ErrEntryAlreadyStopped)
}

func TestActiveEntryPicksMostRecent(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	c := createClient(t, st, "Acme", "50")

	base := time.Date(2024, time.March, 10, 9, 0, 0, 0, time.UTC)
	_, err := st.StartTimer(ctx, c.ID, "older", base)
	require.NoError(t, err)
	newer, err := st.StartTimer(ctx, c.ID, "newer", base.Add(time.Hour))
	require.NoError(t, err)

	active, err := st.ActiveEntry(ctx)
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, newer.ID, active.ID)
}

func TestDurationMinutesRounding(t *testing.T) {
	start := time.Date(2024, time.March, 10, 9, 0, 0, 0, time.UTC)

	assert.Equal(t, int64(30), store.DurationMinutes(start, start.Add(30*time.Minute+20*time.Second)))
	assert.Equal(t, int64(31), store.DurationMinutes(start, start.Add(30*time.Minute+40*time.Second)))
	assert.Equal(t, int64(0), store.DurationMinutes(start, start.Add(-time.Minute)), "clock skew must not go negative")
}
