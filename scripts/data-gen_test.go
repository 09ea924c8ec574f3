package main

import (
	"io"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0xRadioAc7iv/go-kvs/core"
	"github.com/0xRadioAc7iv/go-kvs/internal"
)

func TestChurnCompactsAndPreservesState(t *testing.T) {
	dir := t.TempDir()
	logger := internal.NewLogger("error", io.Discard)

	store, err := core.Open(dir, core.WithLogger(logger))
	require.NoError(t, err)

	require.NoError(t, churn(store, rand.New(rand.NewSource(42)), 200))

	before := map[string]string{}
	for _, k := range store.Keys() {
		v, found, err := store.Get(k)
		require.NoError(t, err)
		require.True(t, found)
		before[k] = v
	}
	assert.NotZero(t, store.Stats().Compactions)
	require.NoError(t, store.Close())

	store, err = core.Open(dir, core.WithLogger(logger))
	require.NoError(t, err)
	defer store.Close()

	assert.Equal(t, len(before), store.Len())
	for k, want := range before {
		got, found, err := store.Get(k)
		require.NoError(t, err)
		assert.True(t, found, k)
		assert.Equal(t, want, got, k)
	}
}
