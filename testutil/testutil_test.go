package testutil

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/pagecache/backend/memdoc"
	"github.com/hupe1980/pagecache/render"
)

func TestRNG_Range(t *testing.T) {
	rng := NewRNG(4711)
	assert.Equal(t, int64(4711), rng.Seed())

	for range 100 {
		start, end := rng.Range(10, 4)
		assert.GreaterOrEqual(t, start, 0)
		assert.GreaterOrEqual(t, end, start)
		assert.Less(t, end, 10)
		assert.LessOrEqual(t, end-start, 3)
	}
}

func TestManualScheduler(t *testing.T) {
	doc := memdoc.Uniform(3, 4, 4)
	m := NewManualScheduler()
	ctx := context.Background()

	var ran []int
	mk := func(page int) *render.Job {
		return render.NewJob(doc, render.Request{Page: page, Scale: 1, Width: 4, Height: 4}, 1, func(j *render.Job) {
			ran = append(ran, j.Page())
		})
	}

	j0, j1, j2 := mk(0), mk(1), mk(2)
	m.Push(j0, render.PriorityLow)
	m.Push(j1, render.PriorityLow)
	m.Push(j2, render.PriorityUrgent)
	m.UpdatePriority(j1, render.PriorityUrgent)

	_, prio, ok := m.Queued(1)
	require.True(t, ok)
	assert.Equal(t, render.PriorityUrgent, prio)

	m.Cancel(j0)
	assert.Equal(t, render.StateCancelled, j0.State())
	assert.Equal(t, []*render.Job{j0}, m.Cancelled())

	assert.True(t, m.RunPage(ctx, 2))
	assert.False(t, m.RunPage(ctx, 2))
	assert.Equal(t, 1, m.RunAll(ctx))
	assert.Equal(t, []int{2, 1}, ran)

	assert.Equal(t, 3, m.Pushes())
	assert.Equal(t, 1, m.Updates())
	assert.Equal(t, 1, m.Cancels())
	assert.Zero(t, m.Len())
}
