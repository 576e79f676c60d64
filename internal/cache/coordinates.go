// Package cache keeps resolved address coordinates. Entries are append-only:
// once an address is stored its coordinates are never replaced.
package cache

import (
	"context"
	"log/slog"
	"sync"

	"github.com/UnknownOlympus/courier/internal/models"
	"github.com/cespare/xxhash/v2"
)

// lockStripes is the number of write locks shared by all addresses.
const lockStripes = 64

// Store is the persistent backend of the cache.
type Store interface {
	GetCoordinates(ctx context.Context, addresses []string) (map[string]models.Coordinates, error)
	// InsertCoordinates must keep an existing entry and return the value actually stored.
	InsertCoordinates(ctx context.Context, address string, coords models.Coordinates) (models.Coordinates, error)
}

// CoordinateCache fronts a Store with an in-process copy of every entry seen so far.
// Writes are serialized per address stripe, so concurrent Put calls for one
// address agree on a single first value.
type CoordinateCache struct {
	store Store
	log   *slog.Logger

	mu      sync.RWMutex
	known   map[string]models.Coordinates
	stripes [lockStripes]sync.Mutex
}

// NewCoordinateCache creates a cache backed by store.
func NewCoordinateCache(store Store, log *slog.Logger) *CoordinateCache {
	return &CoordinateCache{
		store: store,
		log:   log,
		known: make(map[string]models.Coordinates),
	}
}

// GetMany returns the coordinates of the addresses that have an entry. Misses are omitted.
// A store failure is logged and treated as a miss for every address not already known.
func (c *CoordinateCache) GetMany(ctx context.Context, addresses []string) map[string]models.Coordinates {
	hits := make(map[string]models.Coordinates, len(addresses))
	missing := make([]string, 0, len(addresses))

	c.mu.RLock()
	for _, address := range addresses {
		if coords, ok := c.known[address]; ok {
			hits[address] = coords
			continue
		}
		missing = append(missing, address)
	}
	c.mu.RUnlock()

	if len(missing) == 0 {
		return hits
	}

	stored, err := c.store.GetCoordinates(ctx, missing)
	if err != nil {
		c.log.ErrorContext(ctx, "Failed to read coordinates from store", "addresses", len(missing), "error", err)
		return hits
	}

	c.mu.Lock()
	for address, coords := range stored {
		c.known[address] = coords
		hits[address] = coords
	}
	c.mu.Unlock()

	return hits
}

// Put records the coordinates of an address unless it already has an entry,
// and returns the entry's value. If the store write fails the given coordinates
// are returned together with the error and nothing is remembered.
func (c *CoordinateCache) Put(ctx context.Context, address string, coords models.Coordinates) (models.Coordinates, error) {
	lock := c.lockFor(address)
	lock.Lock()
	defer lock.Unlock()

	c.mu.RLock()
	existing, ok := c.known[address]
	c.mu.RUnlock()
	if ok {
		return existing, nil
	}

	stored, err := c.store.InsertCoordinates(ctx, address, coords)
	if err != nil {
		return coords, err
	}

	c.mu.Lock()
	c.known[address] = stored
	c.mu.Unlock()

	return stored, nil
}

func (c *CoordinateCache) lockFor(address string) *sync.Mutex {
	return &c.stripes[xxhash.Sum64String(address)%lockStripes]
}
