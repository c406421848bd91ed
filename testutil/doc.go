// Package testutil provides testing utilities for pagecache.
//
// This package is intended for use in tests and benchmarks only.
//
// # Manual Scheduling
//
// ManualScheduler satisfies the cache's scheduler interface but never runs
// anything by itself, so tests control exactly when each render completes:
//
//	sched := testutil.NewManualScheduler()
//	c, _ := pagecache.New(doc, pagecache.WithScheduler(sched))
//	_ = c.SetVisibleRange(0, 1, backend.Rotate0, 1)
//	sched.RunAll(ctx)      // render everything queued
//	c.ProcessCompletions() // deliver results on the control goroutine
//
// # Random Ranges
//
//	rng := testutil.NewRNG(seed)
//	start, end := rng.Range(pageCount, 4)
package testutil
