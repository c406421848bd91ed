package render

import (
	"context"
	"image"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/pagecache/backend"
	"github.com/hupe1980/pagecache/backend/memdoc"
)

func newRequest(page int) Request {
	return Request{Page: page, Scale: 1, Width: 10, Height: 20}
}

func TestJob_RunCompletes(t *testing.T) {
	doc := memdoc.Uniform(2, 10, 20)

	var calls atomic.Int32
	j := NewJob(doc, newRequest(1), 7, func(done *Job) {
		calls.Add(1)
		assert.Equal(t, StateCompleted, done.State())
	})
	assert.Equal(t, StateQueued, j.State())
	assert.Equal(t, uint64(7), j.Generation())
	assert.Equal(t, 1, j.Page())
	assert.Equal(t, int64(10*20*backend.BytesPerPixel), j.Cost())

	_, err := j.Result()
	assert.ErrorIs(t, err, ErrNotFinished)

	j.Run(context.Background())

	assert.Equal(t, int32(1), calls.Load())
	res, err := j.Result()
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 10, 20), res.Surface.Bounds())
	assert.Nil(t, res.Selection)

	// Run is a no-op once finished.
	j.Run(context.Background())
	assert.Equal(t, int32(1), calls.Load())
}

func TestJob_TakeResultMovesOwnership(t *testing.T) {
	doc := memdoc.Uniform(1, 10, 20)
	j := NewJob(doc, newRequest(0), 1, nil)
	j.Run(context.Background())

	res, err := j.TakeResult()
	require.NoError(t, err)
	require.NotNil(t, res.Surface)

	again, err := j.Result()
	require.NoError(t, err)
	assert.Nil(t, again.Surface)
}

func TestJob_RenderFailure(t *testing.T) {
	doc := memdoc.Uniform(1, 10, 20)
	doc.SetFailing(0, true)

	var calls atomic.Int32
	j := NewJob(doc, newRequest(0), 1, func(*Job) { calls.Add(1) })
	j.Run(context.Background())

	assert.Equal(t, StateCompleted, j.State())
	assert.Equal(t, int32(1), calls.Load())
	_, err := j.Result()
	assert.ErrorIs(t, err, memdoc.ErrRenderFailed)
}

func TestJob_CancelBeforeRun(t *testing.T) {
	doc := memdoc.Uniform(1, 10, 20)

	var calls atomic.Int32
	j := NewJob(doc, newRequest(0), 1, func(*Job) { calls.Add(1) })
	j.Cancel()
	j.Run(context.Background())

	assert.Equal(t, StateCancelled, j.State())
	assert.Zero(t, calls.Load())
	assert.Zero(t, doc.RenderCount())
	_, err := j.Result()
	assert.ErrorIs(t, err, ErrCancelled)

	j.Cancel() // idempotent
	assert.Equal(t, StateCancelled, j.State())
}

func TestJob_CancelWhileRunning(t *testing.T) {
	doc := memdoc.Uniform(1, 10, 20)
	doc.Block()
	defer doc.Unblock()

	var calls atomic.Int32
	j := NewJob(doc, newRequest(0), 1, func(*Job) { calls.Add(1) })

	done := make(chan struct{})
	go func() {
		defer close(done)
		j.Run(context.Background())
	}()

	require.Eventually(t, func() bool { return j.State() == StateRunning }, time.Second, time.Millisecond)
	j.Cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("cancelled job did not stop")
	}
	assert.Equal(t, StateCancelled, j.State())
	assert.Zero(t, calls.Load())
}

func TestJob_CancelAfterCompletionDropsResult(t *testing.T) {
	doc := memdoc.Uniform(1, 10, 20)
	j := NewJob(doc, newRequest(0), 1, nil)
	j.Run(context.Background())
	require.Equal(t, StateCompleted, j.State())

	j.Cancel()
	_, err := j.Result()
	assert.ErrorIs(t, err, ErrCancelled)
}

func TestJob_DetachSuppressesCallback(t *testing.T) {
	doc := memdoc.Uniform(1, 10, 20)

	var calls atomic.Int32
	j := NewJob(doc, newRequest(0), 1, func(*Job) { calls.Add(1) })
	j.Detach()
	j.Run(context.Background())

	assert.Equal(t, StateCompleted, j.State())
	assert.Zero(t, calls.Load())
}

func TestJob_WithSelection(t *testing.T) {
	doc := memdoc.Uniform(1, 100, 100)
	req := Request{
		Page:   0,
		Scale:  1,
		Width:  100,
		Height: 100,
		Selection: &SelectionSpec{
			Rect:  backend.Rect{X1: 10, Y1: 10, X2: 50, Y2: 20},
			Style: backend.SelectionGlyph,
		},
	}
	j := NewJob(doc, req, 1, nil)
	assert.True(t, j.IncludesSelection())

	j.Run(context.Background())
	res, err := j.Result()
	require.NoError(t, err)
	require.NotNil(t, res.Selection)
	assert.Equal(t, image.Rect(10, 10, 50, 20), res.SelectionRegion.Bounds())
	assert.Positive(t, j.Duration())
}

func TestPriorityAndStateStrings(t *testing.T) {
	assert.Equal(t, "urgent", PriorityUrgent.String())
	assert.Equal(t, "low", PriorityLow.String())
	assert.Equal(t, "cancelled", StateCancelled.String())
}
