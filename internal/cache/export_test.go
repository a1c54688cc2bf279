package cache

import "time"

// SetClock replaces the memory cache's time source.
func (c *MemoryCache) SetClock(now func() time.Time) {
	c.now = now
}
