package judge

import "sync"

// cache is a read-mostly map shared by concurrent hands.
type cache[K comparable, V any] struct {
	data  map[K]V
	mutex sync.RWMutex
	limit int
}

func newCache[K comparable, V any](limit int) *cache[K, V] {
	return &cache[K, V]{data: make(map[K]V), limit: limit}
}

func (c *cache[K, V]) Get(key K) (V, bool) {
	c.mutex.RLock()
	v, ok := c.data[key]
	c.mutex.RUnlock()
	return v, ok
}

// Set stores val, dropping everything once the limit is hit.
func (c *cache[K, V]) Set(key K, val V) {
	c.mutex.Lock()
	if c.limit > 0 && len(c.data) >= c.limit {
		c.data = make(map[K]V)
	}
	c.data[key] = val
	c.mutex.Unlock()
}

func (c *cache[K, V]) Count() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return len(c.data)
}
