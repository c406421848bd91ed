package render

import (
	"context"
	"errors"
	"image"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hupe1980/pagecache/backend"
)

// ErrCancelled is reported by Result for jobs that were cancelled.
var ErrCancelled = errors.New("render job cancelled")

// ErrNotFinished is reported by Result for jobs that have not completed yet.
var ErrNotFinished = errors.New("render job not finished")

// Priority orders jobs in the scheduler. Lower values run first.
type Priority uint8

const (
	// PriorityUrgent is used for pages inside the visible range.
	PriorityUrgent Priority = iota
	// PriorityLow is used for pages in the preload margin.
	PriorityLow
)

func (p Priority) String() string {
	switch p {
	case PriorityUrgent:
		return "urgent"
	case PriorityLow:
		return "low"
	default:
		return "unknown"
	}
}

// State is the lifecycle state of a job.
type State int32

const (
	StateQueued State = iota
	StateRunning
	StateCompleted
	StateCancelled
)

func (s State) String() string {
	switch s {
	case StateQueued:
		return "queued"
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	case StateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// SelectionSpec is the selection overlay a job renders along with its page,
// captured when the job is created.
type SelectionSpec struct {
	Rect   backend.Rect
	Style  backend.SelectionStyle
	Colors backend.SelectionColors
}

// Request describes what a job renders.
type Request struct {
	Page     int
	Rotation backend.Rotation
	Scale    float64
	Width    int
	Height   int

	// Selection is nil unless a selection overlay is owed for the page.
	Selection *SelectionSpec
}

// Result is what a completed job produced. Ownership moves to whoever takes it.
type Result struct {
	Surface         *image.RGBA
	Selection       *image.RGBA
	SelectionRegion backend.Region
}

// CompletionFunc is called on the worker goroutine once a job completes
// (successfully or not). It must not block.
type CompletionFunc func(*Job)

// Job is a cancellable request to rasterize one page.
//
// Cancel is terminal and may be called from any goroutine in any state.
// A job cancelled after it produced a result drops that result. A completion
// racing with Detach or Cancel may still invoke the callback, so receivers
// must check the job's generation.
type Job struct {
	doc        backend.Document
	req        Request
	generation uint64

	state    atomic.Int32
	onDone   atomic.Pointer[CompletionFunc]
	duration atomic.Int64

	mu     sync.Mutex
	cancel context.CancelFunc
	result Result
	err    error
}

// NewJob creates a queued job. generation distinguishes successive jobs for the
// same page; onDone may be nil.
func NewJob(doc backend.Document, req Request, generation uint64, onDone CompletionFunc) *Job {
	j := &Job{
		doc:        doc,
		req:        req,
		generation: generation,
	}
	if onDone != nil {
		j.onDone.Store(&onDone)
	}
	return j
}

// Request returns the job's request.
func (j *Job) Request() Request { return j.req }

// Page returns the page index the job renders.
func (j *Job) Page() int { return j.req.Page }

// Generation returns the job's generation.
func (j *Job) Generation() uint64 { return j.generation }

// State returns the current state.
func (j *Job) State() State { return State(j.state.Load()) }

// IncludesSelection reports whether the job renders a selection overlay too.
func (j *Job) IncludesSelection() bool { return j.req.Selection != nil }

// Cost returns the byte size of the page surface this job produces.
func (j *Job) Cost() int64 {
	return int64(j.req.Width) * int64(j.req.Height) * backend.BytesPerPixel
}

// Duration returns how long Run spent rendering, zero before it finished.
func (j *Job) Duration() time.Duration { return time.Duration(j.duration.Load()) }

// Run executes the job. It is a no-op unless the job is still queued.
func (j *Job) Run(ctx context.Context) {
	if !j.state.CompareAndSwap(int32(StateQueued), int32(StateRunning)) {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	j.mu.Lock()
	j.cancel = cancel
	j.mu.Unlock()

	// Cancel may have slipped in between the state change and storing cancel.
	if j.State() == StateCancelled {
		return
	}

	start := time.Now()
	res, err := j.render(ctx)
	j.duration.Store(int64(time.Since(start)))

	j.mu.Lock()
	j.result = res
	j.err = err
	j.cancel = nil
	j.mu.Unlock()

	if !j.state.CompareAndSwap(int32(StateRunning), int32(StateCompleted)) {
		// Cancelled while rendering; the result is discarded.
		j.mu.Lock()
		j.result = Result{}
		j.mu.Unlock()
		return
	}

	if fn := j.onDone.Load(); fn != nil {
		(*fn)(j)
	}
}

func (j *Job) render(ctx context.Context) (Result, error) {
	surface, err := j.doc.Render(ctx, backend.RenderRequest{
		Page:     j.req.Page,
		Rotation: j.req.Rotation,
		Scale:    j.req.Scale,
		Width:    j.req.Width,
		Height:   j.req.Height,
	})
	if err != nil {
		return Result{}, err
	}
	if surface == nil {
		return Result{}, errors.New("render returned no surface")
	}

	res := Result{Surface: surface}

	spec := j.req.Selection
	sel, ok := j.doc.(backend.Selection)
	if spec == nil || !ok {
		return res, nil
	}

	img, region, err := sel.RenderSelection(backend.SelectionRequest{
		Page:     j.req.Page,
		Rotation: j.req.Rotation,
		Scale:    j.req.Scale,
		Rect:     spec.Rect,
		Style:    spec.Style,
		Colors:   spec.Colors,
	})
	if err != nil {
		// The page itself is fine; the overlay is regenerated on demand.
		return res, nil
	}
	res.Selection = img
	res.SelectionRegion = region
	return res, nil
}

// Detach unregisters the completion callback.
func (j *Job) Detach() {
	j.onDone.Store(nil)
}

// Cancel detaches the completion callback and moves the job to StateCancelled.
// A running render is asked to stop through its context.
func (j *Job) Cancel() {
	j.Detach()

	for {
		s := j.state.Load()
		if State(s) == StateCancelled {
			return
		}
		if j.state.CompareAndSwap(s, int32(StateCancelled)) {
			break
		}
	}

	j.mu.Lock()
	cancel := j.cancel
	j.result = Result{}
	j.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

// Result returns what the job produced. The error is ErrNotFinished before
// completion, ErrCancelled after cancellation, or the backend's render error.
func (j *Job) Result() (Result, error) {
	switch j.State() {
	case StateCancelled:
		return Result{}, ErrCancelled
	case StateCompleted:
	default:
		return Result{}, ErrNotFinished
	}

	j.mu.Lock()
	defer j.mu.Unlock()
	return j.result, j.err
}

// TakeResult returns the result like Result and drops the job's reference to
// the surfaces, moving ownership to the caller.
func (j *Job) TakeResult() (Result, error) {
	res, err := j.Result()
	if err == nil {
		j.mu.Lock()
		j.result = Result{}
		j.mu.Unlock()
	}
	return res, err
}
