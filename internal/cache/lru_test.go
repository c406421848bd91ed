package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hupe1980/pagecache/backend"
	"github.com/hupe1980/pagecache/backend/memdoc"
)

func TestGeometryCache_HitMiss(t *testing.T) {
	doc := memdoc.New(memdoc.Page{Width: 100, Height: 50})
	c := NewGeometryCache(doc, 0)

	s := c.PageSize(0, 2, backend.Rotate0)
	assert.Equal(t, Size{Width: 200, Height: 100}, s)
	assert.Equal(t, int64(200*100*backend.BytesPerPixel), s.Bytes())

	// Same query, and an equivalent rotation, are hits.
	c.PageSize(0, 2, backend.Rotate0)
	c.PageSize(0, 2, 360)

	s = c.PageSize(0, 2, backend.Rotate90)
	assert.Equal(t, Size{Width: 100, Height: 200}, s)

	hits, misses := c.Stats()
	assert.Equal(t, int64(2), hits)
	assert.Equal(t, int64(2), misses)
	assert.Equal(t, 2, c.Len())
}

func TestGeometryCache_Evicts(t *testing.T) {
	doc := memdoc.Uniform(10, 10, 10)
	c := NewGeometryCache(doc, 3)

	for page := range 5 {
		c.PageSize(page, 1, backend.Rotate0)
	}
	assert.Equal(t, 3, c.Len())

	// Page 0 was evicted, page 4 is resident.
	c.PageSize(4, 1, backend.Rotate0)
	c.PageSize(0, 1, backend.Rotate0)
	hits, misses := c.Stats()
	assert.Equal(t, int64(1), hits)
	assert.Equal(t, int64(6), misses)
}

func TestGeometryCache_Invalidate(t *testing.T) {
	doc := memdoc.Uniform(3, 10, 10)
	c := NewGeometryCache(doc, 0)

	for page := range 3 {
		c.PageSize(page, 1, backend.Rotate0)
		c.PageSize(page, 2, backend.Rotate0)
	}
	assert.Equal(t, 6, c.Len())

	c.Invalidate(func(k GeometryKey) bool { return k.Page == 1 })
	assert.Equal(t, 4, c.Len())

	c.Purge()
	assert.Equal(t, 0, c.Len())
}
