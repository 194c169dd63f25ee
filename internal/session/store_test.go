package session

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session")

	store, err := NewStore(path)
	require.NoError(t, err)

	_, ok := store.Token()
	assert.False(t, ok)

	require.NoError(t, store.Set("tok-abc"))
	token, ok := store.Token()
	assert.True(t, ok)
	assert.Equal(t, "tok-abc", token)

	// A fresh store over the same file sees the persisted token.
	reopened, err := NewStore(path)
	require.NoError(t, err)
	token, ok = reopened.Token()
	assert.True(t, ok)
	assert.Equal(t, "tok-abc", token)
}

func TestStoreClear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session")

	store, err := NewStore(path)
	require.NoError(t, err)
	require.NoError(t, store.Set("tok-abc"))

	require.NoError(t, store.Clear())
	_, ok := store.Token()
	assert.False(t, ok)

	// Clearing twice is fine.
	require.NoError(t, store.Clear())

	reopened, err := NewStore(path)
	require.NoError(t, err)
	_, ok = reopened.Token()
	assert.False(t, ok)
}
