package queue

import "github.com/hupe1980/pagecache/render"

// item is a queued job with its scheduling key.
type item struct {
	job      *render.Job
	priority render.Priority
	seq      uint64 // insertion order, breaks ties FIFO
	index    int    // position in the heap
}

// JobQueue is a binary heap of render jobs ordered by priority, then by
// insertion order. Jobs can be re-prioritized or removed in O(log n).
//
// JobQueue is not safe for concurrent use.
type JobQueue struct {
	items []*item
	byJob map[*render.Job]*item
	seq   uint64
}

// New creates an empty queue with room for capacity jobs.
func New(capacity int) *JobQueue {
	return &JobQueue{
		items: make([]*item, 0, capacity),
		byJob: make(map[*render.Job]*item, capacity),
	}
}

// Len returns the number of queued jobs.
func (q *JobQueue) Len() int { return len(q.items) }

// Push queues job. Pushing a queued job updates its priority instead.
func (q *JobQueue) Push(job *render.Job, priority render.Priority) {
	if it, ok := q.byJob[job]; ok {
		q.update(it, priority)
		return
	}
	q.seq++
	it := &item{job: job, priority: priority, seq: q.seq, index: len(q.items)}
	q.items = append(q.items, it)
	q.byJob[job] = it
	q.siftUp(it.index)
}

// Pop removes and returns the job that should run next.
func (q *JobQueue) Pop() (*render.Job, render.Priority, bool) {
	if len(q.items) == 0 {
		return nil, 0, false
	}
	it := q.items[0]
	q.removeAt(0)
	return it.job, it.priority, true
}

// Peek returns the job that would be popped next without removing it.
func (q *JobQueue) Peek() (*render.Job, render.Priority, bool) {
	if len(q.items) == 0 {
		return nil, 0, false
	}
	it := q.items[0]
	return it.job, it.priority, true
}

// Update changes the priority of a queued job. It reports false if the job
// is not queued.
func (q *JobQueue) Update(job *render.Job, priority render.Priority) bool {
	it, ok := q.byJob[job]
	if !ok {
		return false
	}
	q.update(it, priority)
	return true
}

// Remove drops job from the queue. It reports false if the job is not queued.
func (q *JobQueue) Remove(job *render.Job) bool {
	it, ok := q.byJob[job]
	if !ok {
		return false
	}
	q.removeAt(it.index)
	return true
}

// Drain removes and returns every queued job in pop order.
func (q *JobQueue) Drain() []*render.Job {
	out := make([]*render.Job, 0, len(q.items))
	for {
		job, _, ok := q.Pop()
		if !ok {
			return out
		}
		out = append(out, job)
	}
}

func (q *JobQueue) update(it *item, priority render.Priority) {
	if it.priority == priority {
		return
	}
	it.priority = priority
	q.fix(it.index)
}

func (q *JobQueue) removeAt(i int) {
	n := len(q.items) - 1
	it := q.items[i]
	if i != n {
		q.swap(i, n)
	}
	q.items[n] = nil
	q.items = q.items[:n]
	delete(q.byJob, it.job)
	if i != n {
		q.fix(i)
	}
}

func (q *JobQueue) less(i, j int) bool {
	a, b := q.items[i], q.items[j]
	if a.priority != b.priority {
		return a.priority < b.priority
	}
	return a.seq < b.seq
}

func (q *JobQueue) swap(i, j int) {
	q.items[i], q.items[j] = q.items[j], q.items[i]
	q.items[i].index = i
	q.items[j].index = j
}

func (q *JobQueue) fix(i int) {
	if !q.siftDown(i) {
		q.siftUp(i)
	}
}

func (q *JobQueue) siftUp(i int) {
	for i > 0 {
		p := (i - 1) / 2
		if !q.less(i, p) {
			return
		}
		q.swap(i, p)
		i = p
	}
}

// siftDown reports whether the element moved.
func (q *JobQueue) siftDown(i0 int) bool {
	i := i0
	n := len(q.items)
	for {
		l := 2*i + 1
		if l >= n {
			break
		}
		best := l
		if r := l + 1; r < n && q.less(r, l) {
			best = r
		}
		if !q.less(best, i) {
			break
		}
		q.swap(i, best)
		i = best
	}
	return i > i0
}
