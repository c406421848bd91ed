package resource

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// Config configures a Controller.
type Config struct {
	// RenderSlots is the number of renders allowed to run at once.
	// Values below 1 mean 1.
	RenderSlots int64

	// ThrottleBytesPerSec caps the surface bytes per second produced by
	// throttled renders. 0 disables the throttle.
	ThrottleBytesPerSec int64
}

// Controller tracks resident surface bytes and hands out render slots.
type Controller struct {
	resident atomic.Int64
	peak     atomic.Int64

	slots    *semaphore.Weighted
	throttle *rate.Limiter
}

// NewController creates a Controller.
func NewController(cfg Config) *Controller {
	c := &Controller{
		slots: semaphore.NewWeighted(max(cfg.RenderSlots, 1)),
	}
	if cfg.ThrottleBytesPerSec > 0 {
		c.throttle = rate.NewLimiter(rate.Limit(cfg.ThrottleBytesPerSec), int(cfg.ThrottleBytesPerSec))
	}
	return c
}

// Charge records bytes of newly held surfaces.
func (c *Controller) Charge(bytes int64) {
	if c == nil || bytes <= 0 {
		return
	}
	c.notePeak(c.resident.Add(bytes))
}

// Refund records bytes of dropped surfaces.
func (c *Controller) Refund(bytes int64) {
	if c == nil || bytes <= 0 {
		return
	}
	c.resident.Add(-bytes)
}

// Replace records that a surface of from bytes was swapped for one of to bytes.
func (c *Controller) Replace(from, to int64) {
	c.Refund(from)
	c.Charge(to)
}

// Resident returns the bytes currently held.
func (c *Controller) Resident() int64 {
	if c == nil {
		return 0
	}
	return c.resident.Load()
}

// Peak returns the highest Resident value observed.
func (c *Controller) Peak() int64 {
	if c == nil {
		return 0
	}
	return c.peak.Load()
}

func (c *Controller) notePeak(resident int64) {
	for {
		peak := c.peak.Load()
		if resident <= peak || c.peak.CompareAndSwap(peak, resident) {
			return
		}
	}
}

// AcquireSlot blocks until a render slot is free or ctx is done.
func (c *Controller) AcquireSlot(ctx context.Context) error {
	if c == nil {
		return nil
	}
	return c.slots.Acquire(ctx, 1)
}

// ReleaseSlot returns a slot taken by AcquireSlot.
func (c *Controller) ReleaseSlot() {
	if c == nil {
		return
	}
	c.slots.Release(1)
}

// Throttle waits until the throttle admits a render of the given surface
// bytes. Renders larger than one second of budget are clamped to the burst
// so they still pass.
func (c *Controller) Throttle(ctx context.Context, bytes int64) error {
	if c == nil || c.throttle == nil || bytes <= 0 {
		return nil
	}
	n := int(min(bytes, int64(c.throttle.Burst())))
	return c.throttle.WaitN(ctx, n)
}
