package core

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0xRadioAc7iv/go-kvs/internal"
)

func openSyncedStore(t *testing.T) *Store {
	t.Helper()

	s, err := Open(t.TempDir(), WithSyncWrites(true), WithLogger(internal.NewLogger("error", io.Discard)))
	require.NoError(t, err)
	t.Cleanup(func() {
		s.Close()
	})

	return s
}

func TestSetCountsDeadEntryWhenSyncFails(t *testing.T) {
	s := openSyncedStore(t)
	require.NoError(t, s.Set("a", "1"))

	// the record still lands in the write buffer, only the sync fails
	require.NoError(t, s.log.Close())

	assert.Error(t, s.Set("a", "2"))
	assert.Equal(t, 1, s.deadKeys)
	assert.Equal(t, 1, s.keyDir.Len())
}

func TestRemoveCountsDeadEntriesWhenSyncFails(t *testing.T) {
	s := openSyncedStore(t)
	require.NoError(t, s.Set("a", "1"))
	require.NoError(t, s.log.Close())

	assert.Error(t, s.Remove("a"))
	assert.Equal(t, 2, s.deadKeys)
	assert.Equal(t, 0, s.keyDir.Len())
}
