package pagecache

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
//
// All methods are called on the cache's control goroutine.
type MetricsCollector interface {
	// RecordRender is called when a render job result is delivered.
	// duration is the time the job spent rendering, err is nil if successful.
	RecordRender(duration time.Duration, err error)

	// RecordSelectionRender is called after each synchronous selection render.
	RecordSelectionRender(duration time.Duration, err error)

	// RecordWindow is called after the retained window changed.
	// preload is the new preload size, evicted and created count entries.
	RecordWindow(preload, evicted, created int)

	// RecordLookup is called by GetSurface. hit is true if a bitmap was returned.
	RecordLookup(hit bool)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordRender(time.Duration, error)          {}
func (NoopMetricsCollector) RecordSelectionRender(time.Duration, error) {}
func (NoopMetricsCollector) RecordWindow(int, int, int)                 {}
func (NoopMetricsCollector) RecordLookup(bool)                          {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	RenderCount         atomic.Int64
	RenderErrors        atomic.Int64
	RenderTotalNanos    atomic.Int64
	SelectionCount      atomic.Int64
	SelectionErrors     atomic.Int64
	SelectionTotalNanos atomic.Int64
	WindowChanges       atomic.Int64
	Evictions           atomic.Int64
	Creations           atomic.Int64
	LastPreload         atomic.Int64
	LookupHits          atomic.Int64
	LookupMisses        atomic.Int64
}

// RecordRender implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRender(duration time.Duration, err error) {
	b.RenderCount.Add(1)
	b.RenderTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.RenderErrors.Add(1)
	}
}

// RecordSelectionRender implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSelectionRender(duration time.Duration, err error) {
	b.SelectionCount.Add(1)
	b.SelectionTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.SelectionErrors.Add(1)
	}
}

// RecordWindow implements MetricsCollector.
func (b *BasicMetricsCollector) RecordWindow(preload, evicted, created int) {
	b.WindowChanges.Add(1)
	b.Evictions.Add(int64(evicted))
	b.Creations.Add(int64(created))
	b.LastPreload.Store(int64(preload))
}

// RecordLookup implements MetricsCollector.
func (b *BasicMetricsCollector) RecordLookup(hit bool) {
	if hit {
		b.LookupHits.Add(1)
	} else {
		b.LookupMisses.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		RenderCount:       b.RenderCount.Load(),
		RenderErrors:      b.RenderErrors.Load(),
		RenderAvgNanos:    avg(b.RenderTotalNanos.Load(), b.RenderCount.Load()),
		SelectionCount:    b.SelectionCount.Load(),
		SelectionErrors:   b.SelectionErrors.Load(),
		SelectionAvgNanos: avg(b.SelectionTotalNanos.Load(), b.SelectionCount.Load()),
		WindowChanges:     b.WindowChanges.Load(),
		Evictions:         b.Evictions.Load(),
		Creations:         b.Creations.Load(),
		LastPreload:       b.LastPreload.Load(),
		LookupHits:        b.LookupHits.Load(),
		LookupMisses:      b.LookupMisses.Load(),
	}
}

func avg(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	RenderCount       int64
	RenderErrors      int64
	RenderAvgNanos    int64
	SelectionCount    int64
	SelectionErrors   int64
	SelectionAvgNanos int64
	WindowChanges     int64
	Evictions         int64
	Creations         int64
	LastPreload       int64
	LookupHits        int64
	LookupMisses      int64
}
