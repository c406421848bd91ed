package pagecache

import (
	"image"
	"sync"

	"github.com/hupe1980/pagecache/backend"
	"github.com/hupe1980/pagecache/internal/cache"
	"github.com/hupe1980/pagecache/render"
)

// completion is posted by a worker when a job finished rendering.
type completion struct {
	page       int
	generation uint64
}

// mailbox carries completions from worker goroutines to the control goroutine.
type mailbox struct {
	mu     sync.Mutex
	queue  []completion
	signal chan struct{}
}

func (m *mailbox) post(msg completion) {
	m.mu.Lock()
	m.queue = append(m.queue, msg)
	m.mu.Unlock()

	select {
	case m.signal <- struct{}{}:
	default:
	}
}

func (m *mailbox) take() []completion {
	m.mu.Lock()
	defer m.mu.Unlock()
	msgs := m.queue
	m.queue = nil
	return msgs
}

func (m *mailbox) reset() {
	m.take()
}

// Completions returns a channel that receives a value whenever finished
// render jobs are waiting to be installed with ProcessCompletions.
// Several completions may share one signal.
func (c *Cache) Completions() <-chan struct{} {
	return c.mailbox.signal
}

// ProcessCompletions installs the results of finished render jobs and returns
// how many were installed. Completions of jobs that were superseded, cancelled
// or evicted in the meantime are ignored.
func (c *Cache) ProcessCompletions() int {
	installed := 0
	for _, msg := range c.mailbox.take() {
		if c.closed {
			continue
		}
		e := c.store.get(msg.page)
		if e == nil || e.job == nil || e.job.Generation() != msg.generation {
			c.logger.LogStaleCompletion(msg.page, msg.generation)
			continue
		}
		if c.completeJob(e) {
			installed++
		}
	}
	return installed
}

// onJobDone runs on a worker goroutine.
func (c *Cache) onJobDone(job *render.Job) {
	c.mailbox.post(completion{page: job.Page(), generation: job.Generation()})
}

// completeJob moves a completed job's result into e and notifies the viewer.
// It reports whether a bitmap was installed.
func (c *Cache) completeJob(e *entry) bool {
	job := e.job
	e.job = nil

	res, err := job.TakeResult()
	c.metrics.RecordRender(job.Duration(), err)
	c.logger.LogRender(e.page, job.Generation(), err)
	if err != nil {
		// Retried by the next window change or reload, never in place.
		return false
	}

	if c.inverted {
		backend.InvertSurface(res.Surface)
	}
	c.setBitmap(e, res.Surface)
	e.bitmapRotation = job.Request().Rotation

	// Overlays rendered with outdated colors, or for a selection that was
	// cleared meanwhile, are dropped.
	if spec := job.Request().Selection; spec != nil && res.Selection != nil &&
		e.sel.targetSet && e.jobStyleGen == c.styleGen {
		c.setSelectionBitmap(e, res.Selection)
		e.sel.rotation = job.Request().Rotation
		e.sel.region = res.SelectionRegion
		e.sel.rendered = selectionKey{Rect: spec.Rect, Style: spec.Style}
		e.sel.renderedSet = true
	}

	e.ready = true

	if c.onPageUpdated != nil {
		c.onPageUpdated(e.page, e.region.Clone())
	}
	return true
}

// addJob supersedes any job of e with a new one rendering at rotation and scale.
// prio only applies to the new job; e keeps the priority of its window position.
func (c *Cache) addJob(e *entry, region backend.Region, prio render.Priority, rotation backend.Rotation, scale float64) {
	if e.job != nil {
		c.cancelJob(e)
	}

	size := c.geometry.PageSize(e.page, scale, rotation)
	req := render.Request{
		Page:     e.page,
		Rotation: rotation,
		Scale:    scale,
		Width:    size.Width,
		Height:   size.Height,
	}
	if e.sel.targetSet && c.selection != nil {
		req.Selection = &render.SelectionSpec{
			Rect:   e.sel.target.Rect,
			Style:  e.sel.target.Style,
			Colors: c.style.SelectionColors(),
		}
	}

	c.generation++
	e.region = region.Clone()
	e.ready = false
	e.jobStyleGen = c.styleGen
	e.job = render.NewJob(c.doc, req, c.generation, c.onJobDone)

	c.sched.Push(e.job, prio)
}

// cancelJob detaches and cancels the entry's job.
func (c *Cache) cancelJob(e *entry) {
	job := e.job
	e.job = nil
	job.Detach()
	c.sched.Cancel(job)
}

// GetSurface returns the bitmap of page if it matches the current scale and
// rotation, or nil. A job that finished but whose completion was not processed
// yet is installed first.
//
// The bitmap is owned by the cache and valid until the next call that changes
// the page's entry.
func (c *Cache) GetSurface(page int) *image.RGBA {
	e := c.store.get(page)
	if e == nil {
		c.metrics.RecordLookup(false)
		return nil
	}

	if e.job != nil && e.job.State() == render.StateCompleted {
		c.completeJob(e)
	}

	if !c.bitmapCurrent(e) {
		c.metrics.RecordLookup(false)
		return nil
	}
	c.metrics.RecordLookup(true)
	return e.bitmap
}

// PreviewSurface returns whatever bitmap page holds, even one rendered at an
// older scale, so the viewer can stretch it as a placeholder.
func (c *Cache) PreviewSurface(page int) *image.RGBA {
	e := c.store.get(page)
	if e == nil {
		return nil
	}
	if e.job != nil && e.job.State() == render.StateCompleted {
		c.completeJob(e)
	}
	return e.bitmap
}

// IsReady reports whether page holds the result of its latest render job.
func (c *Cache) IsReady(page int) bool {
	e := c.store.get(page)
	return e != nil && e.ready
}

// ReloadPage re-renders a page that is in the cache with an urgent job, for
// example after its annotations changed. region is the changed area, nil for
// the whole page; it is passed back with the page-updated notification.
// Pages outside the retained range are ignored.
//
// Only the job is urgent. A page in the preload margin stays low priority for
// later window changes.
func (c *Cache) ReloadPage(page int, region backend.Region, rotation backend.Rotation, scale float64) error {
	if c.closed {
		return ErrClosed
	}
	if err := c.checkPage(page); err != nil {
		return err
	}
	if !(scale > 0) {
		return &ScaleError{Scale: scale}
	}

	e := c.store.get(page)
	if e == nil {
		return nil
	}

	c.geometry.Invalidate(func(k cache.GeometryKey) bool { return k.Page == page })
	c.addJob(e, region, render.PriorityUrgent, rotation.Normalize(), scale)
	return nil
}
