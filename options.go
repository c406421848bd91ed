package pagecache

import (
	"image/color"
	"log/slog"

	"github.com/hupe1980/pagecache/backend"
	"github.com/hupe1980/pagecache/render"
)

const (
	// DefaultMaxSize is the default byte budget for cached page surfaces (50 MiB).
	DefaultMaxSize int64 = 50 << 20

	// DefaultMaxPreload caps how many pages are preloaded on each side of the
	// visible range, bounding the worst-case number of queued jobs.
	DefaultMaxPreload = 3
)

// Scheduler runs render jobs in the background.
//
// Implementations must never call back into the cache; completion is reported
// through the job's own callback.
type Scheduler interface {
	Push(job *render.Job, priority render.Priority)
	UpdatePriority(job *render.Job, priority render.Priority)
	Cancel(job *render.Job)
}

// StyleProvider resolves selection highlight colors from the viewer's current
// visual style. It is consulted on the control goroutine.
type StyleProvider interface {
	SelectionColors() backend.SelectionColors
}

// StyleFunc adapts a function to StyleProvider.
type StyleFunc func() backend.SelectionColors

// SelectionColors implements StyleProvider.
func (f StyleFunc) SelectionColors() backend.SelectionColors { return f() }

// DefaultStyle is used when no StyleProvider is configured.
var DefaultStyle StyleProvider = StyleFunc(func() backend.SelectionColors {
	return backend.SelectionColors{
		Text: color.RGBA{R: 255, G: 255, B: 255, A: 255},
		Base: color.RGBA{R: 53, G: 132, B: 228, A: 255},
	}
})

// PageUpdatedFunc is notified on the control goroutine when a page bitmap was
// installed. region is the area to repaint; nil means the whole page.
type PageUpdatedFunc func(page int, region backend.Region)

type options struct {
	maxSize          int64
	maxPreload       int
	scheduler        Scheduler
	style            StyleProvider
	onPageUpdated    PageUpdatedFunc
	metricsCollector MetricsCollector
	logger           *Logger
	geometryCapacity int
}

// Option configures the page cache.
type Option func(*options)

// WithMaxSize sets the byte budget used to size the preload window.
// Values <= 0 keep DefaultMaxSize.
func WithMaxSize(bytes int64) Option {
	return func(o *options) {
		if bytes > 0 {
			o.maxSize = bytes
		}
	}
}

// WithMaxPreload caps the number of preloaded pages per side.
// 0 disables preloading; negative values keep DefaultMaxPreload.
func WithMaxPreload(pages int) Option {
	return func(o *options) {
		if pages >= 0 {
			o.maxPreload = pages
		}
	}
}

// WithScheduler runs render jobs on s instead of a cache-owned scheduler.
// The caller keeps ownership of s; Close does not close it.
func WithScheduler(s Scheduler) Option {
	return func(o *options) {
		o.scheduler = s
	}
}

// WithStyle sets the provider of selection highlight colors.
func WithStyle(p StyleProvider) Option {
	return func(o *options) {
		if p != nil {
			o.style = p
		}
	}
}

// WithPageUpdated registers the page-updated notification.
func WithPageUpdated(fn PageUpdatedFunc) Option {
	return func(o *options) {
		o.onPageUpdated = fn
	}
}

// WithMetricsCollector configures a metrics collector for monitoring operations.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &pagecache.BasicMetricsCollector{}
//	c, _ := pagecache.New(doc, pagecache.WithMetricsCollector(metrics))
//	// ... use c ...
//	stats := metrics.GetStats()
//	fmt.Printf("Renders: %d, Avg latency: %dns\n", stats.RenderCount, stats.RenderAvgNanos)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := pagecache.NewJSONLogger(slog.LevelDebug)
//	c, _ := pagecache.New(doc, pagecache.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithGeometryCacheSize sets how many page geometry answers are memoized.
func WithGeometryCacheSize(entries int) Option {
	return func(o *options) {
		o.geometryCapacity = entries
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		maxSize:          DefaultMaxSize,
		maxPreload:       DefaultMaxPreload,
		style:            DefaultStyle,
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}
