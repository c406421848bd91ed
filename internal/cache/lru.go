package cache

import (
	"container/list"
	"sync"
	"sync/atomic"

	"github.com/hupe1980/pagecache/backend"
)

// DefaultCapacity is the number of geometry answers kept when none is configured.
const DefaultCapacity = 1024

// GeometryCache memoizes a document's PageSize answers in LRU order.
type GeometryCache struct {
	mu        sync.Mutex
	capacity  int
	items     map[GeometryKey]*list.Element
	evictList *list.List
	doc       backend.Document

	hits   atomic.Int64
	misses atomic.Int64
}

type entry struct {
	key   GeometryKey
	value Size
}

// NewGeometryCache creates a memo in front of doc holding up to capacity answers.
// A capacity <= 0 uses DefaultCapacity.
func NewGeometryCache(doc backend.Document, capacity int) *GeometryCache {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &GeometryCache{
		capacity:  capacity,
		items:     make(map[GeometryKey]*list.Element),
		evictList: list.New(),
		doc:       doc,
	}
}

// PageSize returns the page size in pixels, asking the document on a miss.
func (c *GeometryCache) PageSize(page int, scale float64, rotation backend.Rotation) Size {
	key := KeyFor(page, scale, rotation)

	c.mu.Lock()
	defer c.mu.Unlock()

	if ent, ok := c.items[key]; ok {
		c.hits.Add(1)
		c.evictList.MoveToFront(ent)
		return ent.Value.(*entry).value
	}
	c.misses.Add(1)

	w, h := c.doc.PageSize(page, scale, rotation)
	size := Size{Width: w, Height: h}

	element := c.evictList.PushFront(&entry{key: key, value: size})
	c.items[key] = element
	c.evict()
	return size
}

// Invalidate removes entries matching the predicate.
func (c *GeometryCache) Invalidate(predicate func(key GeometryKey) bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var toRemove []*list.Element
	for key, element := range c.items {
		if predicate(key) {
			toRemove = append(toRemove, element)
		}
	}

	for _, e := range toRemove {
		c.removeElement(e)
	}
}

// Purge removes every entry.
func (c *GeometryCache) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[GeometryKey]*list.Element)
	c.evictList.Init()
}

// Len returns the number of memoized answers.
func (c *GeometryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.evictList.Len()
}

// Stats returns cache statistics.
func (c *GeometryCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

func (c *GeometryCache) evict() {
	for c.evictList.Len() > c.capacity {
		element := c.evictList.Back()
		if element == nil {
			return
		}
		c.removeElement(element)
	}
}

func (c *GeometryCache) removeElement(e *list.Element) {
	c.evictList.Remove(e)
	delete(c.items, e.Value.(*entry).key)
}
