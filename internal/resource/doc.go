// Package resource implements the Controller that accounts for surface
// memory and gates render work.
//
//	┌───────────────────────────────────────────────────────────┐
//	│                       Controller                          │
//	├──────────────────┬──────────────────┬─────────────────────┤
//	│  Surface bytes   │  Render slots    │  Throttle           │
//	│  (atomic)        │  (semaphore)     │  (token bucket)     │
//	├──────────────────┼──────────────────┼─────────────────────┤
//	│  Charge, Refund  │  AcquireSlot     │  Throttle           │
//	│  Replace         │  ReleaseSlot     │                     │
//	│  Resident, Peak  │                  │                     │
//	└──────────────────┴──────────────────┴─────────────────────┘
//
// Surface accounting never rejects a charge. The page cache budget only
// shapes the preload window, so the counters exist for reporting.
// The scheduler owns the render slots and the throttle.
//
// All methods are no-ops on a nil Controller.
package resource
