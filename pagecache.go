package pagecache

import (
	"fmt"
	"image"

	"github.com/hupe1980/pagecache/backend"
	"github.com/hupe1980/pagecache/internal/cache"
	"github.com/hupe1980/pagecache/internal/resource"
	"github.com/hupe1980/pagecache/render"
	"github.com/hupe1980/pagecache/scheduler"
)

// Cache keeps rendered page bitmaps for the pages around a document viewer's
// visible range.
//
// A Cache has a single owner: every method must be called from the same
// control goroutine. Render jobs run on the scheduler and report back through
// Completions; the owner calls ProcessCompletions to install their results.
type Cache struct {
	doc       backend.Document
	selection backend.Selection // nil if the document has no text selection

	sched      Scheduler
	ownedSched *scheduler.Scheduler

	geometry *cache.GeometryCache
	mem      *resource.Controller

	style         StyleProvider
	onPageUpdated PageUpdatedFunc
	metrics       MetricsCollector
	logger        *Logger

	maxSize    int64
	maxPreload int

	store    *store
	start    int
	end      int
	preload  int
	rotation backend.Rotation
	scale    float64

	inverted   bool
	generation uint64
	styleGen   uint64
	closed     bool

	mailbox mailbox
}

// Stats is a snapshot of the cache state.
type Stats struct {
	Entries        int
	ReadyPages     int
	PendingJobs    int
	Selections     int
	ResidentBytes  int64
	PeakBytes      int64
	MaxSize        int64
	Preload        int
	GeometryHits   int64
	GeometryMisses int64
}

// New creates a cache for doc.
//
// Unless WithScheduler is given, the cache starts its own scheduler, which
// Close shuts down.
func New(doc backend.Document, optFns ...Option) (*Cache, error) {
	if doc == nil {
		return nil, ErrNilDocument
	}

	o := applyOptions(optFns)

	c := &Cache{
		doc:           doc,
		sched:         o.scheduler,
		geometry:      cache.NewGeometryCache(doc, o.geometryCapacity),
		mem:           resource.NewController(resource.Config{}),
		style:         o.style,
		onPageUpdated: o.onPageUpdated,
		metrics:       o.metricsCollector,
		logger:        o.logger,
		maxSize:       o.maxSize,
		maxPreload:    o.maxPreload,
		store:         newStore(),
		start:         -1,
		end:           -1,
	}
	c.mailbox.signal = make(chan struct{}, 1)

	if sel, ok := doc.(backend.Selection); ok {
		c.selection = sel
	}

	if c.sched == nil {
		c.ownedSched = scheduler.New(scheduler.WithLogger(o.logger.Logger))
		c.sched = c.ownedSched
	}

	return c, nil
}

// Document returns the document the cache renders.
func (c *Cache) Document() backend.Document { return c.doc }

// VisibleRange returns the last range passed to SetVisibleRange and the
// preload size computed for it. ok is false before the first call and after Clear.
func (c *Cache) VisibleRange() (start, end, preload int, ok bool) {
	if c.start < 0 {
		return 0, 0, 0, false
	}
	return c.start, c.end, c.preload, true
}

// Clear cancels every job and drops every entry. The next SetVisibleRange
// rebuilds the window from scratch.
func (c *Cache) Clear() {
	n := c.store.len()
	c.store.each(c.dispose)
	c.store.reset()
	c.geometry.Purge()

	c.start, c.end, c.preload = -1, -1, 0
	c.logger.LogClear(n)
}

// SetMaxSize changes the byte budget. Shrinking the budget clears the cache.
func (c *Cache) SetMaxSize(bytes int64) error {
	if bytes < 0 {
		return fmt.Errorf("%w: negative max size %d", ErrInvalidArgument, bytes)
	}
	if bytes == c.maxSize {
		return nil
	}
	if bytes < c.maxSize {
		c.Clear()
	}
	c.maxSize = bytes
	return nil
}

// MaxSize returns the byte budget.
func (c *Cache) MaxSize() int64 { return c.maxSize }

// SetInvertedColors toggles color inversion of page bitmaps. Held bitmaps are
// inverted in place; nothing is re-rendered.
func (c *Cache) SetInvertedColors(inverted bool) {
	if c.inverted == inverted {
		return
	}
	c.inverted = inverted

	c.store.each(func(e *entry) {
		backend.InvertSurface(e.bitmap)
	})
}

// InvertedColors reports whether page bitmaps are inverted.
func (c *Cache) InvertedColors() bool { return c.inverted }

// StyleChanged drops selection bitmaps because their colors may be outdated.
// Page bitmaps are kept.
func (c *Cache) StyleChanged() {
	c.styleGen++
	c.store.each(c.dropSelectionBitmap)
}

// Stats returns a snapshot of the cache state.
func (c *Cache) Stats() Stats {
	hits, misses := c.geometry.Stats()
	st := Stats{
		Entries:        c.store.len(),
		ResidentBytes:  c.mem.Resident(),
		PeakBytes:      c.mem.Peak(),
		MaxSize:        c.maxSize,
		Preload:        c.preload,
		GeometryHits:   hits,
		GeometryMisses: misses,
	}
	c.store.each(func(e *entry) {
		if e.ready {
			st.ReadyPages++
		}
		if e.job != nil {
			st.PendingJobs++
		}
		if e.sel.renderedSet {
			st.Selections++
		}
	})
	return st
}

// Close clears the cache and stops the scheduler it owns.
func (c *Cache) Close() error {
	if c.closed {
		return ErrClosed
	}
	c.Clear()
	c.closed = true
	c.mailbox.reset()

	if c.ownedSched != nil {
		return c.ownedSched.Close()
	}
	return nil
}

// dispose cancels the entry's job and releases its bitmaps.
func (c *Cache) dispose(e *entry) {
	if e.job != nil {
		c.cancelJob(e)
	}
	c.setBitmap(e, nil)
	e.region = nil
	e.ready = false
	c.dropSelectionBitmap(e)
	e.sel.targetSet = false
}

func (c *Cache) setBitmap(e *entry, img *image.RGBA) {
	c.mem.Replace(backend.SurfaceBytes(e.bitmap), backend.SurfaceBytes(img))
	e.bitmap = img
}

func (c *Cache) setSelectionBitmap(e *entry, img *image.RGBA) {
	c.mem.Replace(backend.SurfaceBytes(e.sel.bitmap), backend.SurfaceBytes(img))
	e.sel.bitmap = img
}

// dropSelectionBitmap forgets what was rendered for the selection but keeps the target.
func (c *Cache) dropSelectionBitmap(e *entry) {
	c.setSelectionBitmap(e, nil)
	e.sel.region = nil
	e.sel.renderedSet = false
}

func (c *Cache) priorityFor(page int) render.Priority {
	if page >= c.start && page <= c.end {
		return render.PriorityUrgent
	}
	return render.PriorityLow
}

func (c *Cache) checkPage(page int) error {
	if n := c.doc.PageCount(); page < 0 || page >= n {
		return &PageError{Page: page, PageCount: n}
	}
	return nil
}

var _ Scheduler = (*scheduler.Scheduler)(nil)
