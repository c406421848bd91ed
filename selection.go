package pagecache

import (
	"image"
	"time"

	"github.com/hupe1980/pagecache/backend"
)

// Selection is the text selection on one page.
type Selection struct {
	Page  int
	Rect  backend.Rect
	Style backend.SelectionStyle

	// CoveredRegion is the device-space area the rendered selection covers.
	// It is only filled in by SelectionList.
	CoveredRegion backend.Region
}

// SetSelectionList sets the selection wanted for every cached page. list must
// be ordered by page; pages without an item lose their selection.
//
// It does nothing if the document has no text selection support or before
// the first SetVisibleRange.
func (c *Cache) SetSelectionList(list []Selection) error {
	for i := 1; i < len(list); i++ {
		if list[i].Page < list[i-1].Page {
			return ErrUnsortedSelections
		}
	}
	if c.selection == nil || c.start < 0 {
		return nil
	}

	i := 0
	c.store.each(func(e *entry) {
		for i < len(list) && list[i].Page < e.page {
			i++
		}
		if i < len(list) && list[i].Page == e.page {
			e.sel.target = selectionKey{Rect: list[i].Rect, Style: list[i].Style}
			e.sel.targetSet = true
			return
		}
		c.dropSelectionBitmap(e)
		e.sel.targetSet = false
	})
	return nil
}

// SelectionList returns the selections rendered so far, in page order.
func (c *Cache) SelectionList() []Selection {
	if c.selection == nil || c.start < 0 {
		return nil
	}

	var list []Selection
	c.store.each(func(e *entry) {
		if !e.sel.renderedSet {
			return
		}
		list = append(list, Selection{
			Page:          e.page,
			Rect:          e.sel.rendered.Rect,
			Style:         e.sel.rendered.Style,
			CoveredRegion: e.sel.region.Clone(),
		})
	})
	return list
}

// GetSelectionSurface returns the selection overlay of page at scale and the
// region it covers. A missing or outdated overlay is rendered synchronously.
//
// While a render job that includes the selection is in flight, the overlay
// rendered before is returned as a preview. An overlay is never returned for
// a rectangle other than the page's current selection.
func (c *Cache) GetSelectionSurface(page int, scale float64) (*image.RGBA, backend.Region) {
	if c.selection == nil {
		return nil, nil
	}
	e := c.store.get(page)
	if e == nil || !e.sel.targetSet {
		return nil, nil
	}

	if e.sel.bitmap != nil && e.sel.rotation != c.rotation {
		c.dropSelectionBitmap(e)
	}

	if job := e.job; job != nil && job.IncludesSelection() {
		if e.sel.renderedSet && e.sel.rendered == e.sel.target {
			return e.sel.bitmap, e.sel.region
		}
		spec := job.Request().Selection
		if !e.sel.renderedSet && spec.Rect == e.sel.target.Rect && spec.Style == e.sel.target.Style {
			// The job brings the overlay along.
			return nil, nil
		}
	}

	if e.sel.bitmap != nil {
		size := c.geometry.PageSize(page, scale, c.rotation)
		if !backend.SurfaceMatches(e.sel.bitmap, size.Width, size.Height) {
			c.dropSelectionBitmap(e)
		}
	}

	if !e.sel.renderedSet || e.sel.rendered != e.sel.target {
		if !c.renderSelection(e, scale) {
			return nil, nil
		}
	}
	return e.sel.bitmap, e.sel.region
}

// renderSelection renders the target selection of e on the calling goroutine.
func (c *Cache) renderSelection(e *entry, scale float64) bool {
	var prev *backend.Rect
	if e.sel.renderedSet {
		r := e.sel.rendered.Rect
		prev = &r
	}

	target := e.sel.target
	start := time.Now()
	img, region, err := c.selection.RenderSelection(backend.SelectionRequest{
		Page:     e.page,
		Rotation: c.rotation,
		Scale:    scale,
		Rect:     target.Rect,
		Prev:     prev,
		Style:    target.Style,
		Colors:   c.style.SelectionColors(),
	})
	c.metrics.RecordSelectionRender(time.Since(start), err)
	c.logger.LogSelectionRender(e.page, err)
	if err != nil {
		c.dropSelectionBitmap(e)
		return false
	}

	if region == nil {
		region = c.selection.SelectionRegion(e.page, scale, c.rotation, target.Rect, target.Style)
	}

	c.setSelectionBitmap(e, img)
	e.sel.rotation = c.rotation
	e.sel.region = region
	e.sel.rendered = target
	e.sel.renderedSet = true
	return true
}
