package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	store, err := Open(context.Background(), DriverSQLite, filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestRecordAndRecent(t *testing.T) {
	ctx := context.Background()
	store := openTemp(t)

	lines := []Entry{
		{Source: "var a = 1;", Outcome: OutcomeOK},
		{Source: "print a +;", Outcome: OutcomeSyntaxError},
		{Source: `-"x";`, Outcome: OutcomeRuntimeError},
	}
	for _, e := range lines {
		require.NoError(t, store.Record(ctx, e))
	}

	entries, err := store.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "print a +;", entries[0].Source)
	assert.Equal(t, OutcomeSyntaxError, entries[0].Outcome)
	assert.Equal(t, `-"x";`, entries[1].Source)
	assert.Equal(t, OutcomeRuntimeError, entries[1].Outcome)
	assert.Less(t, entries[0].ID, entries[1].ID)

	all, err := store.Recent(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestRecordKeepsTimestamp(t *testing.T) {
	ctx := context.Background()
	store := openTemp(t)

	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, store.Record(ctx, Entry{EnteredAt: at, Source: "print 1;", Outcome: OutcomeOK}))

	entries, err := store.Recent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, at.Equal(entries[0].EnteredAt))
}

func TestRecentEmpty(t *testing.T) {
	store := openTemp(t)

	entries, err := store.Recent(context.Background(), 5)
	require.NoError(t, err)
	assert.Empty(t, entries)

	entries, err = store.Recent(context.Background(), 0)
	require.NoError(t, err)
	assert.Nil(t, entries)
}

func TestReopenKeepsEntries(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "history.db")

	store, err := Open(ctx, DriverSQLite, path)
	require.NoError(t, err)
	require.NoError(t, store.Record(ctx, Entry{Source: "print 1;", Outcome: OutcomeOK}))
	require.NoError(t, store.Close())

	store, err = Open(ctx, DriverSQLite, path)
	require.NoError(t, err)
	defer store.Close()

	entries, err := store.Recent(ctx, 5)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "print 1;", entries[0].Source)
}

func TestUnsupportedDriver(t *testing.T) {
	_, err := Open(context.Background(), "oracle", "x")
	assert.ErrorContains(t, err, "unsupported history driver")
}
