package framecall

// CallbackRef owns the (callback, user data) reference pair for one
// registered callback across the handoff from the submitting goroutine to
// the render goroutine.
//
// Construction either borrows (the caller keeps its references and the
// holder takes its own, incremented pair) or takes (the caller's existing
// references transfer to the holder with no increment).
//
// A CallbackRef is not safe for unsynchronized concurrent mutation; callers
// share one the same way the interpreter objects themselves are shared,
// under the interpreter lock.
type CallbackRef struct {
	callback Handle
	userData Handle
}

// NewCallbackRef wraps the pair. borrow=true adds the holder's own
// references; borrow=false transfers the caller's.
func NewCallbackRef(callback, userData Handle, borrow bool) *CallbackRef {
	if borrow {
		incRef(callback)
		incRef(userData)
	}
	return &CallbackRef{callback: callback, userData: userData}
}

// Empty reports whether no callback is registered.
func (c *CallbackRef) Empty() bool {
	return c == nil || c.callback == nil
}

// Set replaces the held pair, releasing the previous references. Passing a
// nil callback clears the registration.
func (c *CallbackRef) Set(callback, userData Handle, borrow bool) {
	if borrow {
		incRef(callback)
		incRef(userData)
	}
	oldCB, oldUD := c.callback, c.userData
	c.callback, c.userData = callback, userData
	decRef(oldCB)
	decRef(oldUD)
}

// Run schedules the callback for execution on the render goroutine, subject
// to r's per-frame call budget. No-op if no callback is registered.
//
// The scheduled job takes a second, independent reference on the callback
// and user data: the deferred invocation must stay valid even if this holder
// (and every other owner) is released before the job runs. When
// decrementAppData is true the job owns appData's reference and releases it
// after the call; when false the job takes and releases its own, leaving the
// caller's intact. If the budget drops the submission, the job's references
// are released immediately so nothing leaks.
func (c *CallbackRef) Run(r *Registry, sender Sender, appData Handle, decrementAppData bool) {
	if c.Empty() {
		return
	}

	callback, userData := c.callback, c.userData
	incRef(callback)
	incRef(userData)
	if !decrementAppData {
		incRef(appData)
	}

	fut := SubmitCallback(r, func() struct{} {
		defer decRef(callback)
		defer decRef(userData)
		defer decRef(appData)
		r.invoke(callback, sender, appData, userData)
		return struct{}{}
	})
	if fut == nil {
		// Dropped by the budget: the job was abandoned, release its references.
		decRef(callback)
		decRef(userData)
		decRef(appData)
	}
}

// RunBlocking invokes the callback synchronously on the calling goroutine,
// without touching reference counts; the caller remains responsible for
// keeping the pair alive across the call.
func (c *CallbackRef) RunBlocking(r *Registry, sender Sender, appData Handle) {
	if c.Empty() {
		return
	}
	r.invoke(c.callback, sender, appData, c.userData)
}

// Release drops the holder's own references. Idempotent.
func (c *CallbackRef) Release() {
	if c == nil {
		return
	}
	cb, ud := c.callback, c.userData
	c.callback, c.userData = nil, nil
	decRef(cb)
	decRef(ud)
}

// CallbackSlot is a named callback binding exposed to the scripting host,
// e.g. the viewport resize or exit hook. Name is the script-visible setter
// function name.
type CallbackSlot struct {
	Name string
	ref  CallbackRef
}

// Set replaces the slot's callback, releasing the previous pair.
func (s *CallbackSlot) Set(callback, userData Handle, borrow bool) {
	s.ref.Set(callback, userData, borrow)
}

// Empty reports whether the slot has no callback registered.
func (s *CallbackSlot) Empty() bool {
	return s.ref.Empty()
}

// Run schedules the slot's callback via the registry's call queue.
func (s *CallbackSlot) Run(r *Registry, sender Sender, appData Handle, decrementAppData bool) {
	s.ref.Run(r, sender, appData, decrementAppData)
}

// RunBlocking invokes the slot's callback synchronously.
func (s *CallbackSlot) RunBlocking(r *Registry, sender Sender, appData Handle) {
	s.ref.RunBlocking(r, sender, appData)
}

// CallbackJob is a recorded callback invocation for synchronous bulk
// dispatch outside the queues, e.g. replaying jobs captured during a frame.
// The record owns AppData's reference (released after dispatch); Callback and
// UserData are borrowed from a live owner for the record's lifetime.
type CallbackJob struct {
	Sender   Sender
	Callback Handle
	AppData  Handle
	UserData Handle
}
