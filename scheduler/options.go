package scheduler

import (
	"log/slog"
	"runtime"
)

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithWorkers sets how many jobs may render concurrently.
// Values <= 0 keep the default (GOMAXPROCS, at most 4).
func WithWorkers(n int) Option {
	return func(s *Scheduler) {
		if n > 0 {
			s.workers = n
		}
	}
}

// WithLowPriorityThrottle limits low-priority (preload) renders to the given
// number of surface bytes per second. Urgent jobs are never throttled.
// 0 disables throttling.
func WithLowPriorityThrottle(bytesPerSec int64) Option {
	return func(s *Scheduler) {
		s.lowThrottle = bytesPerSec
	}
}

// WithLogger sets the logger used for job diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(s *Scheduler) {
		if l != nil {
			s.logger = l
		}
	}
}

func defaultWorkers() int {
	return min(runtime.GOMAXPROCS(0), 4)
}
