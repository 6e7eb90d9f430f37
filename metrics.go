package framecall

import "sync/atomic"

// Metrics tracks runtime counters for a registry. All counters are atomic
// and safe to read from any goroutine; enable collection with WithMetrics.
//
// CallsDropped counts budget rejections. Drops stay silent at the submission
// site (no error, no user-visible fault); the counter exists so hosts can
// observe sustained callback storms.
type Metrics struct {
	TasksSubmitted      atomic.Uint64
	TasksRun            atomic.Uint64
	CallsAccepted       atomic.Uint64
	CallsDropped        atomic.Uint64
	CallsRun            atomic.Uint64
	FramesDrained       atomic.Uint64
	FrameCallbacksFired atomic.Uint64
}

// MetricsSnapshot is a point-in-time copy of the counters, safe to retain.
type MetricsSnapshot struct {
	TasksSubmitted      uint64
	TasksRun            uint64
	CallsAccepted       uint64
	CallsDropped        uint64
	CallsRun            uint64
	FramesDrained       uint64
	FrameCallbacksFired uint64
}

// Snapshot copies the current counter values.
func (m *Metrics) Snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		TasksSubmitted:      m.TasksSubmitted.Load(),
		TasksRun:            m.TasksRun.Load(),
		CallsAccepted:       m.CallsAccepted.Load(),
		CallsDropped:        m.CallsDropped.Load(),
		CallsRun:            m.CallsRun.Load(),
		FramesDrained:       m.FramesDrained.Load(),
		FrameCallbacksFired: m.FrameCallbacksFired.Load(),
	}
}
