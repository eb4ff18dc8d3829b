package kv

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStores(t *testing.T) {
	sqlite, err := NewSQLiteStore(filepath.Join(t.TempDir(), "store.db"))
	require.NoError(t, err)
	t.Cleanup(func() { sqlite.Close() })

	stores := map[string]Store{
		"memory": NewMemoryStore(),
		"sqlite": sqlite,
	}

	for name, store := range stores {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			_, err := store.Get(ctx, "missing")
			assert.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, store.Set(ctx, "k", `{"a":1}`))
			v, err := store.Get(ctx, "k")
			require.NoError(t, err)
			assert.Equal(t, `{"a":1}`, v)

			require.NoError(t, store.Set(ctx, "k", `{"a":2}`))
			v, err = store.Get(ctx, "k")
			require.NoError(t, err)
			assert.Equal(t, `{"a":2}`, v)

			require.NoError(t, store.Delete(ctx, "k"))
			_, err = store.Get(ctx, "k")
			assert.ErrorIs(t, err, ErrNotFound)

			// Deleting an absent key is fine.
			require.NoError(t, store.Delete(ctx, "k"))
		})
	}
}

func TestSQLiteStore_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.db")
	ctx := context.Background()

	s, err := NewSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, "cart", `[]`))
	require.NoError(t, s.Close())

	s, err = NewSQLiteStore(path)
	require.NoError(t, err)
	defer s.Close()

	v, err := s.Get(ctx, "cart")
	require.NoError(t, err)
	assert.Equal(t, `[]`, v)
}

func TestNewSQLiteStore_RequiresPath(t *testing.T) {
	_, err := NewSQLiteStore("")
	if err == nil {
		t.Fatalf("expected error for empty path")
	}
	if errors.Is(err, ErrNotFound) {
		t.Fatalf("unexpected sentinel: %v", err)
	}
}
