// Package render implements the render job: a cancellable unit of work that
// rasterizes one page (and optionally its selection overlay) through a
// backend.Document.
//
// # Lifecycle
//
//	Queued ──Run──▶ Running ──▶ Completed
//	   │               │
//	   └────Cancel─────┴──────▶ Cancelled (terminal)
//
// Jobs never touch the page cache. Completion is reported through a callback
// that runs on the worker goroutine; the cache turns it into a message handled
// on its control goroutine and identifies stale messages by Generation.
package render
