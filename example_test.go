package framecall_test

import (
	"fmt"

	"github.com/midgui/framecall"
)

// Example demonstrates the render-loop lifecycle: inline setup work before
// Start, deferred work drained once per frame while running, and a final
// drain on Stop.
func Example() {
	reg, err := framecall.New()
	if err != nil {
		panic(err)
	}

	// Before Start, submissions run inline on the calling goroutine.
	setup := framecall.SubmitTask(reg, func() string { return "configured" })
	v, _ := setup.TryResult()
	fmt.Println(v)

	if err := reg.Start(); err != nil {
		panic(err)
	}

	// While running, submissions queue until the next frame's drain.
	result := framecall.SubmitTask(reg, func() int { return 6 * 7 })
	fmt.Println("queued:", result.Resolved())

	reg.RunPendingWork() // one frame of the render loop

	n, _ := result.TryResult()
	fmt.Println("drained:", n)
	fmt.Println("frame:", reg.Frame())

	if err := reg.Stop(); err != nil {
		panic(err)
	}

	// Output:
	// configured
	// queued: false
	// drained: 42
	// frame: 1
}

// ExampleRegistry_RegisterFrameCallback demonstrates one-shot callbacks keyed
// to a future frame number.
func ExampleRegistry_RegisterFrameCallback() {
	var fired uint64
	reg, err := framecall.New(
		framecall.WithInvoker(func(cb framecall.Handle, sender framecall.Sender, appData, userData framecall.Handle) {
			fired = sender.ID
		}),
	)
	if err != nil {
		panic(err)
	}
	if err := reg.Start(); err != nil {
		panic(err)
	}

	reg.RegisterFrameCallback(2, noopHandle{}, nil)

	reg.RunPendingWork() // frame 1: too early
	fmt.Println("after frame 1:", fired)
	reg.RunPendingWork() // frame 2: fires
	fmt.Println("after frame 2:", fired)

	// Output:
	// after frame 1: 0
	// after frame 2: 2
}

type noopHandle struct{}

func (noopHandle) IncRef() {}
func (noopHandle) DecRef() {}
