package pagecache

import (
	"math"

	"github.com/hupe1980/pagecache/backend"
	"github.com/hupe1980/pagecache/render"
)

// SetVisibleRange moves the cache window to the pages [start, end] shown at
// the given rotation and scale.
//
// Pages around the range are preloaded as far as the byte budget allows, at
// most MaxPreload pages per side. Entries outside the retained range are
// evicted and their jobs cancelled. Pages without a bitmap of the right size
// get a render job, urgent inside [start, end] and low priority in the margins.
//
// Calling it again with the same arguments does nothing.
func (c *Cache) SetVisibleRange(start, end int, rotation backend.Rotation, scale float64) error {
	if c.closed {
		return ErrClosed
	}
	n := c.doc.PageCount()
	if start < 0 || end < start || end >= n {
		return &RangeError{Start: start, End: end, PageCount: n}
	}
	if !(scale > 0) || math.IsInf(scale, 1) {
		return &ScaleError{Scale: scale}
	}
	rotation = rotation.Normalize()

	preload := c.preloadSize(start, end, rotation, scale)

	if start == c.start && end == c.end && preload == c.preload &&
		rotation == c.rotation && scale == c.scale {
		return nil
	}

	lo := max(0, start-preload)
	hi := min(n-1, end+preload)

	evicted := 0
	for _, page := range c.store.outside(lo, hi) {
		c.dispose(c.store.get(page))
		c.store.remove(page)
		evicted++
	}

	c.start, c.end, c.preload = start, end, preload
	c.rotation, c.scale = rotation, scale

	c.store.each(func(e *entry) {
		prio := c.priorityFor(e.page)
		if prio == e.priority {
			return
		}
		e.priority = prio
		if e.job != nil {
			c.sched.UpdatePriority(e.job, prio)
		}
	})

	created := 0
	for page := lo; page <= hi; page++ {
		if _, ok := c.store.getOrCreate(page, c.priorityFor(page)); ok {
			created++
		}
	}

	c.store.each(func(e *entry) {
		if e.job != nil && !c.jobMatches(e.job) {
			c.cancelJob(e)
		}
	})

	c.store.each(func(e *entry) {
		if e.job != nil {
			return
		}
		if c.bitmapCurrent(e) {
			// A cancelled job may have left the entry unready.
			e.ready = true
			return
		}
		if e.priority == render.PriorityLow {
			c.setBitmap(e, nil)
			c.dropSelectionBitmap(e)
		}
		c.addJob(e, nil, e.priority, c.rotation, c.scale)
	})

	c.logger.LogRange(start, end, preload, evicted, created)
	c.metrics.RecordWindow(preload, evicted, created)
	return nil
}

// preloadSize returns how many pages to keep on each side of [start, end].
//
// Starting from the cost of the visible pages, each step adds the next page
// after the range and the next one before it, when they exist. A step is
// taken only if the total still fits the budget.
func (c *Cache) preloadSize(start, end int, rotation backend.Rotation, scale float64) int {
	n := c.doc.PageCount()

	var total int64
	for page := start; page <= end; page++ {
		total += c.pageCost(page, rotation, scale)
	}
	if total >= c.maxSize {
		return 0
	}

	preload := 0
	for preload < c.maxPreload {
		after := end + preload + 1
		before := start - preload - 1
		if after >= n && before < 0 {
			break
		}

		next := total
		if after < n {
			next += c.pageCost(after, rotation, scale)
		}
		if before >= 0 {
			next += c.pageCost(before, rotation, scale)
		}
		if next > c.maxSize {
			break
		}
		total = next
		preload++
	}
	return preload
}

func (c *Cache) pageCost(page int, rotation backend.Rotation, scale float64) int64 {
	return c.geometry.PageSize(page, scale, rotation).Bytes()
}

// jobMatches reports whether job still produces a bitmap of the current size and rotation.
func (c *Cache) jobMatches(job *render.Job) bool {
	req := job.Request()
	if req.Rotation != c.rotation {
		return false
	}
	size := c.geometry.PageSize(req.Page, c.scale, c.rotation)
	return size.Width == req.Width && size.Height == req.Height
}

// bitmapCurrent reports whether the entry's bitmap fits the current scale and rotation.
func (c *Cache) bitmapCurrent(e *entry) bool {
	if e.bitmap == nil || e.bitmapRotation != c.rotation {
		return false
	}
	size := c.geometry.PageSize(e.page, c.scale, c.rotation)
	return backend.SurfaceMatches(e.bitmap, size.Width, size.Height)
}
