package cache

import "sync"

const LockStripes = lockStripes

func (c *CoordinateCache) LockFor(address string) *sync.Mutex {
	return c.lockFor(address)
}
