package framecall

import "container/heap"

// RunPendingWork executes one frame's worth of deferred work. It is called
// exactly once per frame by the render loop, on the render goroutine, and
// never blocks: every pop is non-blocking and each interpreter lock
// acquisition is bounded by one callback's runtime.
//
// Phases, in order:
//  1. drain the task queue fully (host-side work, never throttled),
//  2. reset the call budget, then drain the call queue fully (accounting for
//     the accepted jobs already happened at submission time),
//  3. fire every frame-indexed callback whose frame number has arrived.
func (r *Registry) RunPendingWork() {
	frame := r.frame.Add(1)
	if m := r.metrics; m != nil {
		m.FramesDrained.Add(1)
	}

	r.RunTasks()

	r.callCount.Store(0)
	r.runCalls()

	r.runFrameCallbacks(frame)
}

// RunTasks drains the task queue fully, executing every pending task job on
// the calling goroutine. Also usable standalone, e.g. to flush host-side
// work during teardown.
func (r *Registry) RunTasks() {
	for !r.tasks.Empty() {
		job, ok := r.tasks.TryPop()
		if !ok {
			break
		}
		r.safeExecute(job)
		if m := r.metrics; m != nil {
			m.TasksRun.Add(1)
		}
	}
}

// runCalls drains the call queue fully. Each job wraps its own interpreter
// lock acquisition, so the lock is released between consecutive callbacks.
func (r *Registry) runCalls() {
	for !r.calls.Empty() {
		job, ok := r.calls.TryPop()
		if !ok {
			break
		}
		r.safeExecute(job)
		if m := r.metrics; m != nil {
			m.CallsRun.Add(1)
		}
	}
}

// runFrameCallbacks fires every registered entry with key <= frame, lowest
// first, and removes it. Entries fire at most once and never early; an entry
// registered for a frame already passed fires on the next drain.
//
// The due entries are snapshotted before any callback runs: an entry
// registered during a callback's own invocation, even for the current or a
// past frame, waits for the next drain. Without the snapshot a callback
// re-registering its own frame key would keep the drain spinning forever.
func (r *Registry) runFrameCallbacks(frame uint64) {
	type dueEntry struct {
		ref *CallbackRef
		key uint64
	}

	r.frameMu.Lock()
	var due []dueEntry
	for len(r.frameHeap) > 0 && r.frameHeap[0] <= frame {
		key := heap.Pop(&r.frameHeap).(uint64)
		due = append(due, dueEntry{ref: r.frameCallbacks[key], key: key})
		delete(r.frameCallbacks, key)
	}
	r.frameMu.Unlock()

	for _, e := range due {
		r.safeExecute(func() {
			defer e.ref.Release()
			// Sender is the frame number the callback was registered for.
			e.ref.RunBlocking(r, Sender{ID: e.key}, nil)
		})
		if m := r.metrics; m != nil {
			m.FrameCallbacksFired.Add(1)
		}

		r.logger.Debug().
			Uint64("frame", frame).
			Uint64("registered", e.key).
			Log("framecall: frame callback fired")
	}
}

// frameHeap is a min-heap of registered frame numbers, ordered so the drain
// pops due entries lowest-first. One entry per live frameCallbacks key.
type frameHeap []uint64

func (h frameHeap) Len() int           { return len(h) }
func (h frameHeap) Less(i, j int) bool { return h[i] < h[j] }
func (h frameHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *frameHeap) Push(x any) {
	*h = append(*h, x.(uint64))
}

func (h *frameHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// push is the typed convenience over heap.Push. Caller holds frameMu.
func (h *frameHeap) push(frame uint64) {
	heap.Push(h, frame)
}
