package framecall

// Handle is an interpreter-owned, reference-counted object crossing the
// producer/consumer boundary: a script callable, user data, or app data.
// The interpreter embedding implements the acquire/release hooks; the core
// only forwards handles and never inspects their contents.
//
// A nil Handle is legal everywhere and means "absent"; the package-level
// helpers treat it as a no-op, so callers never need nil checks around
// reference traffic.
type Handle interface {
	IncRef()
	DecRef()
}

func incRef(h Handle) {
	if h != nil {
		h.IncRef()
	}
}

func decRef(h Handle) {
	if h != nil {
		h.DecRef()
	}
}

// Sender identifies the widget or subsystem on whose behalf a callback is
// invoked. ID is the numeric widget identifier; Alias, when non-empty, is the
// string alias the script registered and takes precedence when marshalling
// the sender argument.
type Sender struct {
	Alias string
	ID    uint64
}

// InvokeFunc is the callback-run primitive supplied by the interpreter
// embedding. It is called on the render goroutine with the interpreter lock
// held, with the conventional (sender, app_data, user_data) argument order.
type InvokeFunc func(cb Handle, sender Sender, appData, userData Handle)

// InterpreterLock is the global mutual exclusion primitive required while
// running any code that touches interpreter-owned state. *sync.Mutex
// satisfies it. The registry holds it for the duration of one callback
// invocation at a time, so other interpreter-side work is never starved
// longer than a single callback's runtime.
type InterpreterLock interface {
	Lock()
	Unlock()
}

// noopLock stands in when no interpreter embedding is configured, e.g. for
// registries used purely for host-side task scheduling.
type noopLock struct{}

func (noopLock) Lock()   {}
func (noopLock) Unlock() {}
