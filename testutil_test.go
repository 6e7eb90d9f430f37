package framecall

import (
	"sync"
	"sync/atomic"
	"testing"
)

// fakeHandle counts references for ownership-protocol verification.
type fakeHandle struct {
	refs atomic.Int64
}

func (h *fakeHandle) IncRef() { h.refs.Add(1) }
func (h *fakeHandle) DecRef() { h.refs.Add(-1) }

func (h *fakeHandle) count() int64 { return h.refs.Load() }

// recordedInvoke is one captured callback-run primitive call.
type recordedInvoke struct {
	cb       Handle
	appData  Handle
	userData Handle
	sender   Sender
}

// fakeInvoker records invocations in order.
type fakeInvoker struct {
	mu    sync.Mutex
	calls []recordedInvoke
}

func (f *fakeInvoker) invoke(cb Handle, sender Sender, appData, userData Handle) {
	f.mu.Lock()
	f.calls = append(f.calls, recordedInvoke{cb: cb, appData: appData, userData: userData, sender: sender})
	f.mu.Unlock()
}

func (f *fakeInvoker) invocations() []recordedInvoke {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]recordedInvoke, len(f.calls))
	copy(out, f.calls)
	return out
}

// mustRegistry creates a registry or fails the test.
func mustRegistry(t *testing.T, opts ...Option) *Registry {
	t.Helper()
	r, err := New(opts...)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return r
}

// mustStart starts the registry or fails the test.
func mustStart(t *testing.T, r *Registry) {
	t.Helper()
	if err := r.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
}
