// Package scheduler provides the default job scheduler for the page cache.
//
// Jobs wait in a priority queue (urgent before low, FIFO within a priority).
// A dispatcher goroutine hands the best job to a worker whenever a render slot
// is free, so re-prioritizing a queued job changes when it runs:
//
//	s := scheduler.New(scheduler.WithWorkers(2))
//	defer s.Close()
//
//	s.Push(job, render.PriorityLow)
//	s.UpdatePriority(job, render.PriorityUrgent)
//	s.Cancel(job)
//
// Low-priority jobs can be throttled by surface bytes per second so that
// preloading never competes with the pages the user is looking at.
package scheduler
