package scheduler

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/pagecache/backend/memdoc"
	"github.com/hupe1980/pagecache/render"
)

type recorder struct {
	mu    sync.Mutex
	pages []int
	done  chan struct{}
	want  int
}

func newRecorder(want int) *recorder {
	return &recorder{done: make(chan struct{}), want: want}
}

func (r *recorder) onDone(j *render.Job) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pages = append(r.pages, j.Page())
	if len(r.pages) == r.want {
		close(r.done)
	}
}

func (r *recorder) wait(t *testing.T) []int {
	t.Helper()
	select {
	case <-r.done:
	case <-time.After(5 * time.Second):
		t.Fatal("jobs did not complete")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int(nil), r.pages...)
}

func newJob(doc *memdoc.Document, page int, rec *recorder) *render.Job {
	return render.NewJob(doc, render.Request{Page: page, Scale: 1, Width: 8, Height: 8}, uint64(page), rec.onDone)
}

func waitRunning(t *testing.T, job *render.Job) {
	t.Helper()
	require.Eventually(t, func() bool { return job.State() == render.StateRunning }, time.Second, time.Millisecond)
}

func TestScheduler_RunsJobs(t *testing.T) {
	doc := memdoc.Uniform(4, 8, 8)
	s := New(WithWorkers(2))
	defer s.Close()

	rec := newRecorder(4)
	for page := range 4 {
		s.Push(newJob(doc, page, rec), render.PriorityLow)
	}

	assert.ElementsMatch(t, []int{0, 1, 2, 3}, rec.wait(t))
	assert.Equal(t, int64(4), doc.RenderCount())
}

func TestScheduler_UrgentFirst(t *testing.T) {
	doc := memdoc.Uniform(5, 8, 8)
	doc.Block()

	s := New(WithWorkers(1))
	defer s.Close()

	rec := newRecorder(5)

	// The first job occupies the only slot while the rest queue up.
	first := newJob(doc, 0, rec)
	s.Push(first, render.PriorityLow)
	waitRunning(t, first)

	low := newJob(doc, 1, rec)
	s.Push(low, render.PriorityLow)
	s.Push(newJob(doc, 2, rec), render.PriorityLow)
	s.Push(newJob(doc, 3, rec), render.PriorityUrgent)
	s.Push(newJob(doc, 4, rec), render.PriorityLow)
	s.UpdatePriority(low, render.PriorityUrgent)
	assert.Equal(t, 4, s.Len())

	doc.Unblock()
	assert.Equal(t, []int{0, 1, 3, 2, 4}, rec.wait(t))
}

func TestScheduler_Cancel(t *testing.T) {
	doc := memdoc.Uniform(3, 8, 8)
	doc.Block()

	s := New(WithWorkers(1))
	defer s.Close()

	rec := newRecorder(2)
	first := newJob(doc, 0, rec)
	s.Push(first, render.PriorityUrgent)
	waitRunning(t, first)

	cancelled := newJob(doc, 1, rec)
	s.Push(cancelled, render.PriorityUrgent)
	s.Push(newJob(doc, 2, rec), render.PriorityUrgent)
	s.Cancel(cancelled)

	assert.Equal(t, render.StateCancelled, cancelled.State())
	assert.Equal(t, 1, s.Len())

	doc.Unblock()
	assert.Equal(t, []int{0, 2}, rec.wait(t))
}

func TestScheduler_CloseCancelsPending(t *testing.T) {
	doc := memdoc.Uniform(2, 8, 8)
	doc.Block()
	defer doc.Unblock()

	s := New(WithWorkers(1))

	rec := newRecorder(1)
	running := newJob(doc, 0, rec)
	queued := newJob(doc, 1, rec)
	s.Push(running, render.PriorityUrgent)
	waitRunning(t, running)
	s.Push(queued, render.PriorityUrgent)

	require.NoError(t, s.Close())
	assert.ErrorIs(t, s.Close(), ErrClosed)

	assert.Equal(t, render.StateCancelled, queued.State())
	// The running job saw its context cancelled and completed with an error.
	_, err := running.Result()
	assert.Error(t, err)

	// Pushing after close is ignored.
	s.Push(newJob(doc, 0, rec), render.PriorityUrgent)
	assert.Zero(t, s.Len())
}

func TestScheduler_LowPriorityThrottle(t *testing.T) {
	doc := memdoc.Uniform(2, 8, 8)
	s := New(WithWorkers(1), WithLowPriorityThrottle(1<<20))
	defer s.Close()

	rec := newRecorder(2)
	s.Push(newJob(doc, 0, rec), render.PriorityLow)
	s.Push(newJob(doc, 1, rec), render.PriorityUrgent)

	assert.ElementsMatch(t, []int{0, 1}, rec.wait(t))
}
