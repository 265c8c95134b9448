package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/hupe1980/pantrymesh/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	_ Store = (*InMemoryStore)(nil)
	_ Store = (*SQLiteStore)(nil)
)

func newSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "nested", "pantry.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func names(facts []core.Fact) []string { return core.FactNames(facts) }

func TestStores(t *testing.T) {
	backends := map[string]func(t *testing.T) Store{
		"memory": func(*testing.T) Store { return NewInMemoryStore() },
		"sqlite": func(t *testing.T) Store { return newSQLite(t) },
	}

	for name, open := range backends {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := open(t)

			facts, err := s.AvailableFacts(ctx)
			require.NoError(t, err)
			assert.Empty(t, facts)

			rice, err := s.Put(ctx, "  Rice ")
			require.NoError(t, err)
			assert.Equal(t, "Rice", rice.Name)
			_, err = s.Put(ctx, "egg")
			require.NoError(t, err)

			again, err := s.Put(ctx, "RICE")
			require.NoError(t, err)
			assert.Equal(t, rice.ID, again.ID, "names are unique case-insensitively")

			facts, err = s.AvailableFacts(ctx)
			require.NoError(t, err)
			assert.Equal(t, []string{"egg", "Rice"}, names(facts))

			require.NoError(t, s.SetAvailable(ctx, rice.ID, false))
			facts, _ = s.AvailableFacts(ctx)
			assert.Equal(t, []string{"egg"}, names(facts))

			_, err = s.Put(ctx, "rice")
			require.NoError(t, err)
			facts, _ = s.AvailableFacts(ctx)
			assert.Equal(t, []string{"egg", "Rice"}, names(facts))

			require.NoError(t, s.Delete(ctx, rice.ID))
			assert.ErrorIs(t, s.Delete(ctx, rice.ID), ErrNotFound)
			assert.ErrorIs(t, s.SetAvailable(ctx, "missing", true), ErrNotFound)

			_, err = s.Put(ctx, "   ")
			assert.ErrorIs(t, err, ErrEmptyName)
		})
	}
}

func TestSQLiteStore_Persists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pantry.db")
	s, err := NewSQLiteStore(path)
	require.NoError(t, err)
	_, err = s.Put(context.Background(), "flour")
	require.NoError(t, err)
	require.NoError(t, s.Close())

	reopened, err := NewSQLiteStore(path)
	require.NoError(t, err)
	defer reopened.Close()
	facts, err := reopened.AvailableFacts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"flour"}, names(facts))
}

func TestInMemoryStore_Preload(t *testing.T) {
	s := NewInMemoryStore("tomato", "basil", "Tomato")
	facts, err := s.AvailableFacts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"basil", "tomato"}, names(facts))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = s.AvailableFacts(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestOpen(t *testing.T) {
	s, err := Open("memory", "", nil)
	require.NoError(t, err)
	assert.IsType(t, &InMemoryStore{}, s)

	s, err = Open("sqlite", filepath.Join(t.TempDir(), "f.db"), nil)
	require.NoError(t, err)
	require.NoError(t, s.(*SQLiteStore).Close())

	_, err = Open("sqlite", "", nil)
	assert.Error(t, err)
	_, err = Open("postgres", "x", nil)
	assert.Error(t, err)
}
