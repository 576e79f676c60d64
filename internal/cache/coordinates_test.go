package cache_test

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"testing"

	"github.com/UnknownOlympus/courier/internal/cache"
	"github.com/UnknownOlympus/courier/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryStore mimics the INSERT ... ON CONFLICT DO NOTHING semantics of the SQL store.
type memoryStore struct {
	mu      sync.Mutex
	rows    map[string]models.Coordinates
	reads   int
	inserts int
	readErr error
	putErr  error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{rows: make(map[string]models.Coordinates)}
}

func (m *memoryStore) GetCoordinates(_ context.Context, addresses []string) (map[string]models.Coordinates, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reads++
	if m.readErr != nil {
		return nil, m.readErr
	}

	out := make(map[string]models.Coordinates)
	for _, a := range addresses {
		if c, ok := m.rows[a]; ok {
			out[a] = c
		}
	}

	return out, nil
}

func (m *memoryStore) InsertCoordinates(
	_ context.Context,
	address string,
	coords models.Coordinates,
) (models.Coordinates, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inserts++
	if m.putErr != nil {
		return models.Coordinates{}, m.putErr
	}
	if existing, ok := m.rows[address]; ok {
		return existing, nil
	}
	m.rows[address] = coords

	return coords, nil
}

func TestCoordinateCache_Put(t *testing.T) {
	ctx := t.Context()

	t.Run("first write wins", func(t *testing.T) {
		store := newMemoryStore()
		cc := cache.NewCoordinateCache(store, slog.Default())

		first, err := cc.Put(ctx, "X", models.Coordinates{Longitude: 1, Latitude: 1})
		require.NoError(t, err)
		second, err := cc.Put(ctx, "X", models.Coordinates{Longitude: 2, Latitude: 2})
		require.NoError(t, err)

		assert.Equal(t, models.Coordinates{Longitude: 1, Latitude: 1}, first)
		assert.Equal(t, models.Coordinates{Longitude: 1, Latitude: 1}, second)
		assert.Equal(t, map[string]models.Coordinates{"X": {Longitude: 1, Latitude: 1}}, cc.GetMany(ctx, []string{"X"}))
		assert.Equal(t, 1, store.inserts)
	})

	t.Run("entry written by another process wins", func(t *testing.T) {
		store := newMemoryStore()
		store.rows["X"] = models.Coordinates{Longitude: 5, Latitude: 5}
		cc := cache.NewCoordinateCache(store, slog.Default())

		stored, err := cc.Put(ctx, "X", models.Coordinates{Longitude: 2, Latitude: 2})

		require.NoError(t, err)
		assert.Equal(t, models.Coordinates{Longitude: 5, Latitude: 5}, stored)
	})

	t.Run("store failure is reported and not remembered", func(t *testing.T) {
		store := newMemoryStore()
		store.putErr = assert.AnError
		cc := cache.NewCoordinateCache(store, slog.Default())

		coords, err := cc.Put(ctx, "X", models.Coordinates{Longitude: 3, Latitude: 3})

		require.ErrorIs(t, err, assert.AnError)
		assert.Equal(t, models.Coordinates{Longitude: 3, Latitude: 3}, coords)

		store.putErr = nil
		assert.Empty(t, cc.GetMany(ctx, []string{"X"}))
	})

	t.Run("concurrent writers agree on one value", func(t *testing.T) {
		store := newMemoryStore()
		cc := cache.NewCoordinateCache(store, slog.Default())

		const writers = 16
		results := make([]models.Coordinates, writers)
		var wg sync.WaitGroup
		for i := range writers {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				results[i], _ = cc.Put(ctx, "X", models.Coordinates{Longitude: float64(i), Latitude: 0})
			}(i)
		}
		wg.Wait()

		for _, r := range results {
			assert.Equal(t, results[0], r)
		}
		assert.Equal(t, 1, store.inserts)
	})
}

func TestCoordinateCache_WriteLocks(t *testing.T) {
	ctx := t.Context()
	store := newMemoryStore()
	cc := cache.NewCoordinateCache(store, slog.Default())

	locks := make(map[*sync.Mutex]struct{})
	for i := range 10000 {
		address := fmt.Sprintf("Moscow, Lenina %d", i)
		_, err := cc.Put(ctx, address, models.Coordinates{Longitude: 1, Latitude: 1})
		require.NoError(t, err)
		locks[cc.LockFor(address)] = struct{}{}
	}

	assert.LessOrEqual(t, len(locks), cache.LockStripes)
	assert.Same(t, cc.LockFor("Moscow, Lenina 1"), cc.LockFor("Moscow, Lenina 1"))
	assert.Equal(t, 10000, store.inserts)
}

func TestCoordinateCache_GetMany(t *testing.T) {
	ctx := t.Context()

	t.Run("returns hits only", func(t *testing.T) {
		store := newMemoryStore()
		store.rows["A"] = models.Coordinates{Longitude: 1, Latitude: 2}
		cc := cache.NewCoordinateCache(store, slog.Default())

		hits := cc.GetMany(ctx, []string{"A", "B"})

		assert.Equal(t, map[string]models.Coordinates{"A": {Longitude: 1, Latitude: 2}}, hits)
	})

	t.Run("known entries skip the store", func(t *testing.T) {
		store := newMemoryStore()
		store.rows["A"] = models.Coordinates{Longitude: 1, Latitude: 2}
		cc := cache.NewCoordinateCache(store, slog.Default())

		cc.GetMany(ctx, []string{"A"})
		hits := cc.GetMany(ctx, []string{"A"})

		assert.Len(t, hits, 1)
		assert.Equal(t, 1, store.reads)
	})

	t.Run("store failure degrades to misses", func(t *testing.T) {
		store := newMemoryStore()
		store.readErr = assert.AnError
		cc := cache.NewCoordinateCache(store, slog.Default())

		hits := cc.GetMany(ctx, []string{"A", "B"})

		require.NotNil(t, hits)
		assert.Empty(t, hits)
	})
}
