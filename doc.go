// Package framecall provides frame-synchronized callback and task dispatch
// for a scripted immediate-mode GUI.
//
// # Architecture
//
// A render loop draws frames on a single goroutine. A scripting interpreter
// runs user code that registers callbacks and submits deferred work from any
// goroutine. The [Registry] bridges the two: producers enqueue jobs via
// [SubmitTask] and [SubmitCallback], and the render goroutine drains them
// once per frame via [Registry.RunPendingWork].
//
// Two queues are kept. The task queue carries host-side work and is always
// drained fully. The call queue carries interpreter callback invocations and
// is subject to a per-frame acceptance budget (default 50, see
// [WithMaxCallsPerFrame]): submissions past the budget are dropped, not
// queued, which keeps a callback storm from starving the render goroutine.
//
// # Callback lifetime
//
// Interpreter-owned objects cross the producer/consumer boundary as [Handle]
// values with explicit reference counts. [CallbackRef] implements the
// ownership protocol: a callback scheduled for later execution takes its own
// references, so it stays valid even if every other owner - including the
// widget that registered it - is released before the job runs.
//
// # Thread safety
//
//   - [SubmitTask], [SubmitCallback], and [Registry.RegisterFrameCallback]
//     are safe to call from any goroutine.
//   - [Registry.RunPendingWork] must be called by exactly one goroutine (the
//     render goroutine), once per frame. It never blocks.
//   - Each interpreter-visible invocation runs while holding the configured
//     [InterpreterLock], released as soon as that single call returns.
//
// # Usage
//
//	reg, err := framecall.New(
//	    framecall.WithInvoker(rt.Invoke),
//	    framecall.WithInterpreterLock(rt),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	reg.Start()
//
//	for !window.ShouldClose() {
//	    drawWidgets()
//	    reg.RunPendingWork()
//	    window.SwapBuffers()
//	}
//
//	reg.Stop()
package framecall
