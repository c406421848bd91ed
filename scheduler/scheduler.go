package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/pagecache/internal/queue"
	"github.com/hupe1980/pagecache/internal/resource"
	"github.com/hupe1980/pagecache/render"
)

// ErrClosed is returned by Close when the scheduler was already closed.
var ErrClosed = errors.New("scheduler closed")

// Scheduler runs render jobs on background goroutines, most urgent first.
//
// A single dispatcher waits for a free render slot, then pops the best queued
// job and runs it. Priority changes take effect for every job that has not
// been dispatched yet. All methods are safe for concurrent use.
type Scheduler struct {
	rc     *resource.Controller
	logger *slog.Logger

	workers     int
	lowThrottle int64

	mu    sync.Mutex
	queue *queue.JobQueue
	wake  chan struct{}

	closed atomic.Bool

	ctx    context.Context
	cancel context.CancelFunc
	g      errgroup.Group
}

// New creates a scheduler and starts its dispatcher.
func New(optFns ...Option) *Scheduler {
	s := &Scheduler{
		workers: defaultWorkers(),
		queue:   queue.New(64),
		wake:    make(chan struct{}, 1),
		logger:  slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.Level(1000)})),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(s)
		}
	}

	s.rc = resource.NewController(resource.Config{
		RenderSlots:         int64(s.workers),
		ThrottleBytesPerSec: s.lowThrottle,
	})

	s.ctx, s.cancel = context.WithCancel(context.Background())
	s.g.Go(s.dispatch)

	return s
}

// Push queues job at the given priority.
func (s *Scheduler) Push(job *render.Job, priority render.Priority) {
	if job == nil || s.closed.Load() {
		return
	}
	s.mu.Lock()
	s.queue.Push(job, priority)
	s.mu.Unlock()
	s.signal()
}

// UpdatePriority changes the priority of a job that has not started yet.
// Jobs already running are unaffected.
func (s *Scheduler) UpdatePriority(job *render.Job, priority render.Priority) {
	if job == nil {
		return
	}
	s.mu.Lock()
	s.queue.Update(job, priority)
	s.mu.Unlock()
}

// Cancel cancels job and drops it from the queue if it has not started yet.
func (s *Scheduler) Cancel(job *render.Job) {
	if job == nil {
		return
	}
	job.Cancel()
	s.mu.Lock()
	s.queue.Remove(job)
	s.mu.Unlock()
}

// Len returns the number of jobs waiting to be dispatched.
func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queue.Len()
}

// Close cancels every queued and running job and waits for workers to exit.
func (s *Scheduler) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return ErrClosed
	}

	s.mu.Lock()
	pending := s.queue.Drain()
	s.mu.Unlock()
	for _, job := range pending {
		job.Cancel()
	}

	s.cancel()
	err := s.g.Wait()
	if errors.Is(err, context.Canceled) {
		err = nil
	}
	return err
}

func (s *Scheduler) signal() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *Scheduler) dispatch() error {
	for {
		if err := s.rc.AcquireSlot(s.ctx); err != nil {
			return nil
		}

		job, priority, ok := s.next()
		if !ok {
			s.rc.ReleaseSlot()
			return nil
		}

		s.g.Go(func() error {
			defer s.rc.ReleaseSlot()
			s.run(job, priority)
			return nil
		})
	}
}

// next blocks until a job is queued or the scheduler is closed.
func (s *Scheduler) next() (*render.Job, render.Priority, bool) {
	for {
		s.mu.Lock()
		job, priority, ok := s.queue.Pop()
		s.mu.Unlock()
		if ok {
			if job.State() != render.StateQueued {
				continue
			}
			return job, priority, true
		}

		select {
		case <-s.wake:
		case <-s.ctx.Done():
			return nil, 0, false
		}
	}
}

func (s *Scheduler) run(job *render.Job, priority render.Priority) {
	if priority != render.PriorityUrgent {
		if err := s.rc.Throttle(s.ctx, job.Cost()); err != nil {
			job.Cancel()
			return
		}
	}

	job.Run(s.ctx)

	if _, err := job.Result(); err != nil && !errors.Is(err, render.ErrCancelled) {
		s.logger.Debug("render job failed",
			"page", job.Page(),
			"generation", job.Generation(),
			"error", err,
		)
	}
}
