package pagecache

import (
	"image"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/pagecache/backend"
	"github.com/hupe1980/pagecache/render"
)

// selectionKey is a selection rectangle together with its snapping style.
type selectionKey struct {
	Rect  backend.Rect
	Style backend.SelectionStyle
}

type selectionState struct {
	target      selectionKey
	targetSet   bool
	rendered    selectionKey
	renderedSet bool
	bitmap      *image.RGBA
	rotation    backend.Rotation
	region      backend.Region
}

// entry is the cache state of one page. It is only touched by the control goroutine.
type entry struct {
	page     int
	priority render.Priority

	job         *render.Job
	jobStyleGen uint64

	bitmap         *image.RGBA
	bitmapRotation backend.Rotation
	region         backend.Region
	ready          bool

	sel selectionState
}

// store maps page indices to entries. The roaring bitmap mirrors the key set
// and provides ordered iteration and range eviction.
type store struct {
	entries map[uint32]*entry
	pages   *roaring.Bitmap
}

func newStore() *store {
	return &store{
		entries: make(map[uint32]*entry),
		pages:   roaring.New(),
	}
}

func (s *store) len() int { return len(s.entries) }

func (s *store) get(page int) *entry {
	if page < 0 {
		return nil
	}
	return s.entries[uint32(page)]
}

// getOrCreate returns the entry for page, creating an empty one at prio.
func (s *store) getOrCreate(page int, prio render.Priority) (*entry, bool) {
	if e, ok := s.entries[uint32(page)]; ok {
		return e, false
	}
	e := &entry{page: page, priority: prio}
	s.entries[uint32(page)] = e
	s.pages.Add(uint32(page))
	return e, true
}

func (s *store) remove(page int) {
	delete(s.entries, uint32(page))
	s.pages.Remove(uint32(page))
}

// each visits entries in ascending page order.
func (s *store) each(fn func(e *entry)) {
	it := s.pages.Iterator()
	for it.HasNext() {
		fn(s.entries[it.Next()])
	}
}

// outside returns the pages held outside [lo, hi], ascending.
func (s *store) outside(lo, hi int) []int {
	keep := roaring.New()
	keep.AddRange(uint64(lo), uint64(hi)+1)
	drop := roaring.AndNot(s.pages, keep)

	pages := make([]int, 0, drop.GetCardinality())
	it := drop.Iterator()
	for it.HasNext() {
		pages = append(pages, int(it.Next()))
	}
	return pages
}

func (s *store) reset() {
	s.entries = make(map[uint32]*entry)
	s.pages.Clear()
}
