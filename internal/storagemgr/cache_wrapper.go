package storagemgr

import (
	lru "github.com/hashicorp/golang-lru"
)

// CacheWrapper is a read-through LRU in front of a Storage backend.
type CacheWrapper struct {
	backend Storage
	cache   *lru.Cache

	metrics *CacheMetrics
}

type CacheMetrics struct {
	CacheHitCounter  int
	CacheMissCounter int
}

func NewCacheWrapper(backend Storage, entriesLimit int) (*CacheWrapper, error) {
	if entriesLimit <= 0 {
		entriesLimit = 1024
	}
	cache, err := lru.New(entriesLimit)
	if err != nil {
		return nil, err
	}
	return &CacheWrapper{
		backend: backend,
		cache:   cache,
		metrics: &CacheMetrics{},
	}, nil
}

func (c *CacheWrapper) Get(key []byte) ([]byte, error) {
	if v, ok := c.cache.Get(string(key)); ok {
		c.metrics.CacheHitCounter++
		if v == nil {
			return nil, nil
		}
		return v.([]byte), nil
	}
	c.metrics.CacheMissCounter++
	v, err := c.backend.Get(key)
	if err != nil {
		return nil, err
	}
	c.cache.Add(string(key), v)
	return v, nil
}

func (c *CacheWrapper) Put(key, value []byte) error {
	c.cache.Add(string(key), value)
	return c.backend.Put(key, value)
}

// Set updates only the cache layer, used when a batch commit already wrote
// the backend.
func (c *CacheWrapper) Set(key, value []byte) {
	c.cache.Add(string(key), value)
}

func (c *CacheWrapper) Del(key []byte) {
	c.cache.Remove(string(key))
}

func (c *CacheWrapper) ResetCounterMetrics() {
	c.metrics.CacheHitCounter = 0
	c.metrics.CacheMissCounter = 0
}

func (c *CacheWrapper) ExportMetrics() *CacheMetrics {
	return c.metrics
}
