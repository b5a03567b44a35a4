package testutil

import (
	"testing"

	"github.com/mcastorina/repost/internal/state"
	"github.com/stretchr/testify/require"
)

// NewTestStore opens a migrated in-memory store that is closed with the test.
func NewTestStore(t testing.TB) *state.SQLiteStore {
	t.Helper()
	store := state.NewSQLiteStore(NewTestLogger(t))
	require.NoError(t, store.Open(":memory:"))
	t.Cleanup(func() { _ = store.Close() })
	require.NoError(t, store.Migrate())
	return store
}
