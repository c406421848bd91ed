package testutil

import (
	"context"
	"math/rand"
	"sync"

	"github.com/hupe1980/pagecache/internal/queue"
	"github.com/hupe1980/pagecache/render"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Float64 returns, as a float64, a pseudo-random number in [0.0,1.0).
func (r *RNG) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float64()
}

// Range returns a random inclusive range [start, end] inside [0, n) that
// spans at most maxLen pages.
func (r *RNG) Range(n, maxLen int) (start, end int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	start = r.rand.Intn(n)
	end = start + r.rand.Intn(maxLen)
	if end >= n {
		end = n - 1
	}
	return start, end
}

// ManualScheduler queues jobs without running them. Tests decide when each
// job runs, which makes completion ordering deterministic.
//
// It is safe for concurrent use, but jobs run on the calling goroutine.
type ManualScheduler struct {
	mu       sync.Mutex
	queue    *queue.JobQueue
	priority map[*render.Job]render.Priority

	pushes    int
	updates   int
	cancels   int
	cancelled []*render.Job
}

// NewManualScheduler creates an empty manual scheduler.
func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{
		queue:    queue.New(16),
		priority: make(map[*render.Job]render.Priority),
	}
}

// Push records job at the given priority.
func (m *ManualScheduler) Push(job *render.Job, priority render.Priority) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pushes++
	m.queue.Push(job, priority)
	m.priority[job] = priority
}

// UpdatePriority re-prioritizes a queued job.
func (m *ManualScheduler) UpdatePriority(job *render.Job, priority render.Priority) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updates++
	if m.queue.Update(job, priority) {
		m.priority[job] = priority
	}
}

// Cancel cancels job and forgets it.
func (m *ManualScheduler) Cancel(job *render.Job) {
	job.Cancel()

	m.mu.Lock()
	defer m.mu.Unlock()
	m.cancels++
	m.cancelled = append(m.cancelled, job)
	m.queue.Remove(job)
	delete(m.priority, job)
}

// Len returns the number of queued jobs.
func (m *ManualScheduler) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.queue.Len()
}

// Pushes returns how many jobs were pushed so far.
func (m *ManualScheduler) Pushes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pushes
}

// Updates returns how many priority updates were requested.
func (m *ManualScheduler) Updates() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.updates
}

// Cancels returns how many cancellations were requested.
func (m *ManualScheduler) Cancels() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cancels
}

// Cancelled returns the jobs cancelled so far, in order.
func (m *ManualScheduler) Cancelled() []*render.Job {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*render.Job(nil), m.cancelled...)
}

// Queued returns the queued job for page, if any.
func (m *ManualScheduler) Queued(page int) (*render.Job, render.Priority, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for job, prio := range m.priority {
		if job.Page() == page {
			return job, prio, true
		}
	}
	return nil, 0, false
}

// RunNext runs the most urgent queued job. It reports false if none was queued.
func (m *ManualScheduler) RunNext(ctx context.Context) bool {
	m.mu.Lock()
	job, _, ok := m.queue.Pop()
	if ok {
		delete(m.priority, job)
	}
	m.mu.Unlock()

	if !ok {
		return false
	}
	job.Run(ctx)
	return true
}

// RunPage runs the queued job for page. It reports false if none was queued.
func (m *ManualScheduler) RunPage(ctx context.Context, page int) bool {
	job, _, ok := m.Queued(page)
	if !ok {
		return false
	}

	m.mu.Lock()
	m.queue.Remove(job)
	delete(m.priority, job)
	m.mu.Unlock()

	job.Run(ctx)
	return true
}

// RunAll runs queued jobs until none are left and returns how many ran.
func (m *ManualScheduler) RunAll(ctx context.Context) int {
	n := 0
	for m.RunNext(ctx) {
		n++
	}
	return n
}
