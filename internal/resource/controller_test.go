package resource

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestController_SurfaceAccounting(t *testing.T) {
	c := NewController(Config{})

	c.Charge(1000)
	c.Charge(500)
	assert.Equal(t, int64(1500), c.Resident())

	c.Replace(1000, 200)
	assert.Equal(t, int64(700), c.Resident())
	assert.Equal(t, int64(1500), c.Peak())

	// Non-positive amounts are ignored.
	c.Charge(-1)
	c.Refund(0)
	c.Replace(0, 0)
	assert.Equal(t, int64(700), c.Resident())

	c.Refund(700)
	assert.Zero(t, c.Resident())
	assert.Equal(t, int64(1500), c.Peak())
}

func TestController_RenderSlots(t *testing.T) {
	c := NewController(Config{RenderSlots: 2})

	require.NoError(t, c.AcquireSlot(t.Context()))
	require.NoError(t, c.AcquireSlot(t.Context()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.Error(t, c.AcquireSlot(ctx))

	c.ReleaseSlot()
	require.NoError(t, c.AcquireSlot(t.Context()))
}

func TestController_DefaultsToOneSlot(t *testing.T) {
	c := NewController(Config{RenderSlots: -3})
	require.NoError(t, c.AcquireSlot(t.Context()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.Error(t, c.AcquireSlot(ctx))
}

func TestController_Throttle(t *testing.T) {
	c := NewController(Config{ThrottleBytesPerSec: 1000})

	// Renders above the burst are clamped instead of failing.
	require.NoError(t, c.Throttle(t.Context(), 5000))

	// The bucket is empty now, so a cancelled wait fails.
	canceled, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, c.Throttle(canceled, 1000))

	unlimited := NewController(Config{})
	require.NoError(t, unlimited.Throttle(canceled, 1<<30))
}

func TestController_NilSafe(t *testing.T) {
	var c *Controller

	c.Charge(100)
	c.Refund(100)
	c.Replace(1, 2)
	assert.Zero(t, c.Resident())
	assert.Zero(t, c.Peak())

	assert.NoError(t, c.AcquireSlot(context.Background()))
	c.ReleaseSlot()
	assert.NoError(t, c.Throttle(context.Background(), 100))
}
