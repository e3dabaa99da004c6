package batch

import (
	"encoding/json"

	"github.com/cespare/xxhash/v2"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/raterudder/retrofit/pkg/types"
)

// Key is the structural hash of a scenario.
func Key(s types.Scenario) (uint64, error) {
	raw, err := json.Marshal(s)
	if err != nil {
		return 0, err
	}
	return xxhash.Sum64(raw), nil
}

// Cache is a fixed-size LRU of evaluation results keyed by scenario hash.
// Results are copied in and out so callers never share slices with an
// entry. A Cache with size 0 stores nothing.
type Cache struct {
	lru *lru.Cache[uint64, types.Result]
}

// NewCache returns a cache holding at most size results.
func NewCache(size int) *Cache {
	if size <= 0 {
		return &Cache{}
	}
	l, err := lru.New[uint64, types.Result](size)
	if err != nil {
		// only returned for a non-positive size
		panic(err)
	}
	return &Cache{lru: l}
}

// Get returns a copy of the cached result for key.
func (c *Cache) Get(key uint64) (types.Result, bool) {
	if c.lru == nil {
		return types.Result{}, false
	}
	r, ok := c.lru.Get(key)
	if !ok {
		return types.Result{}, false
	}
	return r.Clone(), true
}

// Add stores a copy of r under key, evicting the least recently used entry
// when full.
func (c *Cache) Add(key uint64, r types.Result) {
	if c.lru == nil {
		return
	}
	c.lru.Add(key, r.Clone())
}

// Len is the number of cached results.
func (c *Cache) Len() int {
	if c.lru == nil {
		return 0
	}
	return c.lru.Len()
}
