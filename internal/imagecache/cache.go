// Package imagecache is the bounded in-memory store of decoded images.
package imagecache

import (
	"errors"
	"image"
	"sync"

	"github.com/hashicorp/golang-lru/v2/simplelru"
)

const (
	DefaultCountLimit           = 100
	DefaultTotalCostLimit int64 = 100 * 1024 * 1024
)

var ErrInvalidLimits = errors.New("imagecache: limits must be positive")

type entry struct {
	img  image.Image
	cost int64
}

// Stats is a point-in-time view of cache activity.
type Stats struct {
	Entries        int   `json:"entries"`
	TotalCost      int64 `json:"total_cost"`
	CountLimit     int   `json:"count_limit"`
	TotalCostLimit int64 `json:"total_cost_limit"`
	Hits           int64 `json:"hits"`
	Misses         int64 `json:"misses"`
	Evictions      int64 `json:"evictions"`
}

// Cache maps a media URL to its decoded image, bounded by entry count and
// total byte cost. Eviction is least recently used first; entries never read
// after insertion go in insertion order.
//
// Images handed out by Get stay valid after eviction; the cache only drops its
// own reference.
type Cache struct {
	mu        sync.Mutex
	lru       *simplelru.LRU[string, entry]
	countMax  int
	costMax   int64
	totalCost int64

	hits, misses, evictions int64
}

func New(countLimit int, totalCostLimit int64) (*Cache, error) {
	if countLimit <= 0 || totalCostLimit <= 0 {
		return nil, ErrInvalidLimits
	}
	c := &Cache{countMax: countLimit, costMax: totalCostLimit}
	lru, err := simplelru.NewLRU[string, entry](countLimit, c.onRemove)
	if err != nil {
		return nil, err
	}
	c.lru = lru
	return c, nil
}

// NewDefault returns a cache with the 100 entry / 100 MiB limits.
func NewDefault() *Cache {
	c, _ := New(DefaultCountLimit, DefaultTotalCostLimit)
	return c
}

// onRemove runs under c.mu for every removal path of the LRU.
func (c *Cache) onRemove(_ string, e entry) {
	c.totalCost -= e.cost
}

// Get returns the image for url and marks it most recently used.
func (c *Cache) Get(url string) (image.Image, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.lru.Get(url)
	if !ok {
		c.misses++
		return nil, false
	}
	c.hits++
	return e.img, true
}

// Peek returns the image for url without touching recency or the hit and
// miss counters.
func (c *Cache) Peek(url string) (image.Image, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.lru.Peek(url)
	if !ok {
		return nil, false
	}
	return e.img, true
}

// Contains reports presence without touching recency.
func (c *Cache) Contains(url string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Contains(url)
}

// Put inserts or replaces url. Least recently used entries are evicted until
// both limits hold with the new entry in place. An entry that alone exceeds
// the cost limit is not stored, any existing entry for url is kept, and Put
// reports false.
func (c *Cache) Put(url string, img image.Image, cost int64) bool {
	if cost < 0 {
		cost = 0
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if cost > c.costMax {
		return false
	}
	c.lru.Remove(url)

	for c.lru.Len() > 0 && (c.lru.Len()+1 > c.countMax || c.totalCost+cost > c.costMax) {
		c.lru.RemoveOldest()
		c.evictions++
	}

	c.lru.Add(url, entry{img: img, cost: cost})
	c.totalCost += cost
	return true
}

func (c *Cache) Remove(url string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Remove(url)
}

// Clear drops every entry. The owning feed calls it when it is discarded.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Purge()
	c.totalCost = 0
}

func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

func (c *Cache) TotalCost() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.totalCost
}

// Keys lists urls from least to most recently used.
func (c *Cache) Keys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Keys()
}

func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{
		Entries:        c.lru.Len(),
		TotalCost:      c.totalCost,
		CountLimit:     c.countMax,
		TotalCostLimit: c.costMax,
		Hits:           c.hits,
		Misses:         c.misses,
		Evictions:      c.evictions,
	}
}
