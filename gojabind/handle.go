package gojabind

import (
	"sync"

	"github.com/dop251/goja"
)

// FuncHandle pins a script callable while deferred jobs hold references to
// it. Goja has no reference counting of its own - Go's garbage collector
// keeps values alive - so the count tracks the ownership protocol and drops
// the pinned callable once the last reference is released, letting the
// script object be collected.
//
// Counts may be mutated from any goroutine; the framecall core releases job
// references on the render goroutine while the script side releases its own.
type FuncHandle struct {
	mu   sync.Mutex
	fn   goja.Callable
	refs int
}

// NewFuncHandle wraps fn with an initial reference owned by the caller.
func NewFuncHandle(fn goja.Callable) *FuncHandle {
	return &FuncHandle{fn: fn, refs: 1}
}

// IncRef implements framecall.Handle.
func (h *FuncHandle) IncRef() {
	h.mu.Lock()
	h.refs++
	h.mu.Unlock()
}

// DecRef implements framecall.Handle. The pinned callable is dropped when
// the count reaches zero.
func (h *FuncHandle) DecRef() {
	h.mu.Lock()
	h.refs--
	if h.refs <= 0 {
		h.fn = nil
	}
	h.mu.Unlock()
}

// RefCount returns the current reference count.
func (h *FuncHandle) RefCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.refs
}

// callable returns the pinned callable, or nil after release.
func (h *FuncHandle) callable() goja.Callable {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.fn
}

// release drops the constructor's reference. Nil-safe, for optional
// arguments.
func (h *FuncHandle) release() {
	if h != nil {
		h.DecRef()
	}
}

// ValueHandle pins an arbitrary script value (user data, app data) the same
// way FuncHandle pins a callable.
type ValueHandle struct {
	mu   sync.Mutex
	val  goja.Value
	refs int
}

// NewValueHandle wraps v with an initial reference owned by the caller.
func NewValueHandle(v goja.Value) *ValueHandle {
	return &ValueHandle{val: v, refs: 1}
}

// IncRef implements framecall.Handle.
func (h *ValueHandle) IncRef() {
	h.mu.Lock()
	h.refs++
	h.mu.Unlock()
}

// DecRef implements framecall.Handle.
func (h *ValueHandle) DecRef() {
	h.mu.Lock()
	h.refs--
	if h.refs <= 0 {
		h.val = nil
	}
	h.mu.Unlock()
}

// RefCount returns the current reference count.
func (h *ValueHandle) RefCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.refs
}

// value returns the pinned value, or nil after release.
func (h *ValueHandle) value() goja.Value {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.val
}

func (h *ValueHandle) release() {
	if h != nil {
		h.DecRef()
	}
}
