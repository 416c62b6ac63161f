package boltstore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ledger.db")
	store, err := Open(Options{Path: path})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store, path
}

func TestLedgerStore_RecordViolation(t *testing.T) {
	ctx := context.Background()
	store, _ := openTestStore(t)
	l := store.LedgerStore(3)

	for i := 1; i <= 3; i++ {
		count, banned, err := l.RecordViolation(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, i, count)
		assert.False(t, banned)
	}

	count, banned, err := l.RecordViolation(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 4, count)
	assert.True(t, banned)

	isBanned, err := l.IsBanned(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, isBanned)
}

func TestLedgerStore_RecordClean_NoCountChange(t *testing.T) {
	ctx := context.Background()
	store, _ := openTestStore(t)
	l := store.LedgerStore(3)

	count, banned, err := l.RecordClean(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 0, count)
	assert.False(t, banned)

	count, err = l.ViolationCount(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	// A clean review after a violation reports the existing count.
	_, _, err = l.RecordViolation(ctx, "u1")
	require.NoError(t, err)
	count, banned, err = l.RecordClean(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.False(t, banned)
}

func TestLedgerStore_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "ledger.db")

	store, err := Open(Options{Path: path})
	require.NoError(t, err)
	l := store.LedgerStore(3)
	for i := 0; i < 4; i++ {
		_, _, err := l.RecordViolation(ctx, "u1")
		require.NoError(t, err)
	}
	require.NoError(t, store.Close())

	// Reopen and verify the ban state survived.
	store, err = Open(Options{Path: path})
	require.NoError(t, err)
	defer store.Close()
	l = store.LedgerStore(3)

	count, err := l.ViolationCount(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 4, count)

	banned, err := l.IsBanned(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, banned)

	users, err := l.BannedUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"u1"}, users)
}

func TestLedgerStore_BannedUsers_Sorted(t *testing.T) {
	ctx := context.Background()
	store, _ := openTestStore(t)
	l := store.LedgerStore(1)

	for _, user := range []string{"zed", "amy"} {
		for i := 0; i < 2; i++ {
			_, _, err := l.RecordViolation(ctx, user)
			require.NoError(t, err)
		}
	}

	users, err := l.BannedUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"amy", "zed"}, users)
}
