// Package pagecache keeps rendered page bitmaps for a scrolling document viewer.
//
// The cache decides which pages stay resident, which are rendered in the
// background and which are evicted. The window around the visible pages is
// sized from a byte budget, not a page count, so it shrinks at high zoom and
// grows at low zoom.
//
// # Quick Start
//
//	doc := memdoc.Uniform(100, 612, 792)
//	c, _ := pagecache.New(doc,
//	    pagecache.WithMaxSize(64<<20),
//	    pagecache.WithPageUpdated(func(page int, region backend.Region) {
//	        // repaint page
//	    }),
//	)
//	defer c.Close()
//
//	_ = c.SetVisibleRange(10, 12, backend.Rotate0, 1.5)
//
//	for range c.Completions() {
//	    c.ProcessCompletions()
//	}
//
// # Threading Model
//
// A Cache has one owner goroutine, usually the viewer's event loop. Render
// jobs run on a Scheduler; when one finishes it only posts a message. The
// owner receives a signal on Completions and calls ProcessCompletions to move
// the finished bitmaps into the cache. Messages from superseded jobs are
// ignored by generation.
//
// GetSurface installs a finished job inline if its message has not been
// processed yet, so a completed page is never reported as missing.
//
// # Preload Window
//
// SetVisibleRange computes the preload size by growing the window one page on
// each side at a time while the summed bitmap cost fits the budget, up to
// WithMaxPreload pages per side. Visible pages render urgently, preloaded
// pages at low priority.
//
// # Selection
//
// For documents implementing backend.Selection, each page carries a selection
// overlay tied to a target rectangle. GetSelectionSurface re-renders the overlay
// synchronously whenever the target changed, so it never shows a stale rectangle.
//
// # Observability
//
//	metrics := &pagecache.BasicMetricsCollector{}
//	c, _ := pagecache.New(doc,
//	    pagecache.WithMetricsCollector(metrics),
//	    pagecache.WithLogger(pagecache.NewJSONLogger(slog.LevelDebug)),
//	)
package pagecache
