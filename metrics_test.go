package framecall

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMetrics_Disabled(t *testing.T) {
	r := mustRegistry(t)
	mustStart(t, r)

	SubmitTask(r, func() struct{} { return struct{}{} })
	r.RunPendingWork()

	assert.Zero(t, r.Metrics(), "metrics should stay zero when not enabled")
}

func TestMetrics_InlineBeforeStartCounted(t *testing.T) {
	r := mustRegistry(t, WithMetrics(true))

	SubmitTask(r, func() struct{} { return struct{}{} })
	SubmitCallback(r, func() struct{} { return struct{}{} })

	snap := r.Metrics()
	assert.Equal(t, uint64(1), snap.TasksSubmitted, "inline task should count as submitted")
	assert.Equal(t, uint64(1), snap.TasksRun, "inline task should count as run")
	assert.Equal(t, uint64(1), snap.CallsAccepted, "inline callback should count as accepted")
	assert.Equal(t, uint64(1), snap.CallsRun, "inline callback should count as run")
}

func TestMetrics_CountsSubmissionsAndDrops(t *testing.T) {
	r := mustRegistry(t, WithMetrics(true), WithMaxCallsPerFrame(2))
	mustStart(t, r)

	SubmitTask(r, func() struct{} { return struct{}{} })
	for i := 0; i < 5; i++ {
		SubmitCallback(r, func() struct{} { return struct{}{} })
	}
	r.RegisterFrameCallback(1, &fakeHandle{}, nil)

	r.RunPendingWork()

	snap := r.Metrics()
	assert.Equal(t, uint64(1), snap.TasksSubmitted)
	assert.Equal(t, uint64(1), snap.TasksRun)
	assert.Equal(t, uint64(2), snap.CallsAccepted)
	assert.Equal(t, uint64(3), snap.CallsDropped)
	assert.Equal(t, uint64(2), snap.CallsRun)
	assert.Equal(t, uint64(1), snap.FramesDrained)
	assert.Equal(t, uint64(1), snap.FrameCallbacksFired)
}
