package framecall

import (
	"sync"
	"sync/atomic"

	"github.com/joeycumines/logiface"
)

// DefaultMaxCallsPerFrame is the default per-frame callback acceptance
// budget: the backpressure valve protecting the render goroutine from
// callback storms. Tunable via WithMaxCallsPerFrame.
const DefaultMaxCallsPerFrame = 50

// Job is one deferred unit of work executed on the render goroutine.
// Ownership transfers to the executing goroutine on pop; a job runs exactly
// once.
type Job func()

// Registry is the process's callback/task execution core. It holds two
// independent queues - host-side tasks and interpreter callback invocations -
// plus the frame-indexed callback table and the per-frame call budget.
//
// Exactly one drain point (the render goroutine calling RunPendingWork) must
// be reachable from every submission point; the registry is passed explicitly
// to submitters rather than living in a process-wide singleton.
type Registry struct {
	// Prevent copying
	_ [0]func()

	tasks *Queue[Job]
	calls *Queue[Job]

	// Serializes submission against Stop: submitters hold the read side across
	// the running check and the push, Stop flips the flag under the write
	// side, so no job can slip into a queue after Stop's drain.
	stateMu sync.RWMutex

	running   atomic.Bool
	callCount atomic.Int32
	frame     atomic.Uint64
	maxCalls  int32

	// Frame-indexed one-shot callbacks: map for the live entries, min-heap of
	// frame keys for ordered firing.
	frameMu        sync.Mutex
	frameCallbacks map[uint64]*CallbackRef
	frameHeap      frameHeap
	highestFrame   uint64

	// Recorded callback jobs for synchronous bulk dispatch.
	jobsMu sync.Mutex
	jobs   []CallbackJob

	invokeFn InvokeFunc
	lock     InterpreterLock
	logger   *logiface.Logger[logiface.Event]
	metrics  *Metrics

	// Named callback slots mirroring the host toolkit's fixed hooks. Mutate
	// them the way the interpreter objects themselves are mutated: under the
	// interpreter lock.
	ViewportResize CallbackSlot
	Exit           CallbackSlot
	DragEnter      CallbackSlot
	DragLeave      CallbackSlot
	DragOver       CallbackSlot
	Drop           CallbackSlot
}

// New creates a registry. The zero option set yields a registry suitable for
// host-side task scheduling only; wire an interpreter embedding with
// WithInvoker and WithInterpreterLock.
func New(opts ...Option) (*Registry, error) {
	cfg, err := resolveOptions(opts)
	if err != nil {
		return nil, err
	}

	r := &Registry{
		tasks:          NewQueue[Job](),
		calls:          NewQueue[Job](),
		maxCalls:       cfg.maxCalls,
		frameCallbacks: make(map[uint64]*CallbackRef),
		invokeFn:       cfg.invoke,
		lock:           cfg.lock,
		logger:         cfg.logger,

		ViewportResize: CallbackSlot{Name: "set_viewport_resize_callback"},
		Exit:           CallbackSlot{Name: "set_exit_callback"},
		DragEnter:      CallbackSlot{Name: "set_drag_enter_callback"},
		DragLeave:      CallbackSlot{Name: "set_drag_leave_callback"},
		DragOver:       CallbackSlot{Name: "set_drag_over_callback"},
		Drop:           CallbackSlot{Name: "set_drop_callback"},
	}
	if r.lock == nil {
		r.lock = noopLock{}
	}
	if cfg.metricsEnabled {
		r.metrics = &Metrics{}
	}
	return r, nil
}

// Start marks the render loop as live. From here on, submissions are queued
// for the per-frame drain instead of executing inline.
func (r *Registry) Start() error {
	if !r.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	r.logger.Info().Log("framecall: registry started")
	return nil
}

// Stop marks the render loop as stopped and drains both queues inline on the
// calling goroutine, so every accepted job still runs exactly once. Waiters
// blocked in WaitAndPop are released.
func (r *Registry) Stop() error {
	// Once the write lock is acquired, no submitter still holds the read side:
	// anything that observed running==true has already pushed, and anything
	// later observes false and runs inline. One drain pass per queue suffices.
	r.stateMu.Lock()
	if !r.running.CompareAndSwap(true, false) {
		r.stateMu.Unlock()
		return ErrNotRunning
	}
	r.stateMu.Unlock()

	for {
		job, ok := r.tasks.TryPop()
		if !ok {
			break
		}
		r.safeExecute(job)
	}
	for {
		job, ok := r.calls.TryPop()
		if !ok {
			break
		}
		r.safeExecute(job)
	}

	r.tasks.Close()
	r.calls.Close()
	r.logger.Info().Uint64("frame", r.frame.Load()).Log("framecall: registry stopped")
	return nil
}

// Running reports whether the render loop is live.
func (r *Registry) Running() bool {
	return r.running.Load()
}

// Frame returns the current frame counter: the number of completed
// RunPendingWork drains.
func (r *Registry) Frame() uint64 {
	return r.frame.Load()
}

// MaxCallsPerFrame returns the configured callback budget ceiling.
func (r *Registry) MaxCallsPerFrame() int {
	return int(r.maxCalls)
}

// SubmitTask schedules fn on the render goroutine and returns a future for
// its result. Tasks are host-side work: always accepted, never throttled by
// the callback budget. Before Start, fn runs inline on the calling goroutine
// and the returned future is already resolved, so setup code observes
// immediate effects.
func SubmitTask[T any](r *Registry, fn func() T) *Future[T] {
	f := newFuture[T]()
	job := func() { f.resolve(fn()) }

	if m := r.metrics; m != nil {
		m.TasksSubmitted.Add(1)
	}

	r.stateMu.RLock()
	if !r.running.Load() {
		r.stateMu.RUnlock()
		job()
		if m := r.metrics; m != nil {
			m.TasksRun.Add(1)
		}
		return f
	}
	r.tasks.Push(job)
	r.stateMu.RUnlock()
	return f
}

// SubmitCallback schedules fn on the render goroutine, subject to the
// per-frame call budget. It returns nil when the budget is exhausted: the
// submission is dropped without error, by design - an intentional
// backpressure valve, invisible to the end user. Before Start, accepted
// submissions run inline like tasks.
func SubmitCallback[T any](r *Registry, fn func() T) *Future[T] {
	// Add-then-check keeps acceptance exact under concurrent producers; the
	// counter is reset wholesale at the next drain.
	if n := r.callCount.Add(1); n > r.maxCalls {
		if m := r.metrics; m != nil {
			m.CallsDropped.Add(1)
		}
		r.logger.Debug().
			Int("budget", int(r.maxCalls)).
			Uint64("frame", r.frame.Load()).
			Log("framecall: callback dropped, per-frame budget exhausted")
		return nil
	}

	f := newFuture[T]()
	job := func() { f.resolve(fn()) }

	if m := r.metrics; m != nil {
		m.CallsAccepted.Add(1)
	}

	r.stateMu.RLock()
	if !r.running.Load() {
		r.stateMu.RUnlock()
		job()
		if m := r.metrics; m != nil {
			m.CallsRun.Add(1)
		}
		return f
	}
	r.calls.Push(job)
	r.stateMu.RUnlock()
	return f
}

// RegisterFrameCallback registers a one-shot callback fired when the frame
// counter reaches frame. Registering the same frame again replaces the
// previous entry (its references are released; only the latest fires). The
// registry borrows its own references on both handles.
func (r *Registry) RegisterFrameCallback(frame uint64, callback, userData Handle) {
	ref := NewCallbackRef(callback, userData, true)

	r.frameMu.Lock()
	if old, ok := r.frameCallbacks[frame]; ok {
		old.Release()
	} else {
		r.frameHeap.push(frame)
	}
	r.frameCallbacks[frame] = ref
	if frame > r.highestFrame {
		r.highestFrame = frame
	}
	r.frameMu.Unlock()
}

// HighestFrame returns the largest frame number with a registered callback,
// past or pending. Zero when none was ever registered.
func (r *Registry) HighestFrame() uint64 {
	r.frameMu.Lock()
	defer r.frameMu.Unlock()
	return r.highestFrame
}

// RecordJob appends a callback job record for later bulk dispatch via
// DispatchJobs. The record owns AppData's reference.
func (r *Registry) RecordJob(job CallbackJob) {
	r.jobsMu.Lock()
	r.jobs = append(r.jobs, job)
	r.jobsMu.Unlock()
}

// DispatchJobs synchronously replays every recorded job, in record order, on
// the calling goroutine. Each invocation holds the interpreter lock for its
// own duration; each record's AppData reference is released after its call.
func (r *Registry) DispatchJobs() {
	r.jobsMu.Lock()
	jobs := r.jobs
	r.jobs = nil
	r.jobsMu.Unlock()

	for i := range jobs {
		job := jobs[i]
		r.safeExecute(func() {
			defer decRef(job.AppData)
			r.invoke(job.Callback, job.Sender, job.AppData, job.UserData)
		})
	}
}

// Metrics returns a snapshot of the runtime counters. Zero when metrics were
// not enabled.
func (r *Registry) Metrics() MetricsSnapshot {
	if r.metrics == nil {
		return MetricsSnapshot{}
	}
	return r.metrics.Snapshot()
}

// invoke runs the callback-run primitive under the interpreter lock, for
// exactly one invocation. No-op without an invoker or callback, which is the
// "no callback registered" case, not an error.
func (r *Registry) invoke(cb Handle, sender Sender, appData, userData Handle) {
	if r.invokeFn == nil || cb == nil {
		return
	}
	r.lock.Lock()
	defer r.lock.Unlock()
	r.invokeFn(cb, sender, appData, userData)
}

// safeExecute runs job with panic recovery; a panicking callback must not
// take down the render goroutine.
func (r *Registry) safeExecute(job Job) {
	if job == nil {
		return
	}
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Err().
				Any("panic", rec).
				Uint64("frame", r.frame.Load()).
				Log("framecall: job panicked")
		}
	}()
	job()
}
