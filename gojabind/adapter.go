// Package gojabind binds a framecall registry to the Goja JavaScript
// runtime, realizing the interpreter-embedding side of the callback core:
// the interpreter lock, the reference-counted handles, the callback-run
// primitive, and the script-visible registration surface.
//
// # Thread safety
//
// A Goja runtime is not safe for concurrent use. [Runtime] wraps one with a
// mutex that doubles as the registry's interpreter lock: every
// interpreter-visible invocation - a deferred callback run by the frame
// drain, or script execution driven by the host - must hold it. The host
// runs scripts via [Runtime.RunString] (or takes the lock itself around
// direct runtime access); deferred callbacks take it automatically through
// the registry.
//
// # Binding
//
//	vm := goja.New()
//	rt := gojabind.New(vm)
//	reg, err := framecall.New(
//	    framecall.WithInvoker(rt.Invoke),
//	    framecall.WithInterpreterLock(rt),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := rt.Bind(reg); err != nil {
//	    log.Fatal(err)
//	}
//
// After Bind, scripts can call set_frame_callback(frame, callback, userData),
// the fixed slot setters (set_exit_callback, set_viewport_resize_callback,
// set_drag_enter_callback, set_drag_leave_callback, set_drag_over_callback,
// set_drop_callback), and get_frame_count(). Callbacks receive the
// conventional (sender, app_data, user_data) arguments.
package gojabind

import (
	"sync"

	"github.com/dop251/goja"
	"github.com/joeycumines/logiface"

	"github.com/midgui/framecall"
)

// Runtime wraps a Goja runtime as the scripting host for a framecall
// registry.
type Runtime struct {
	mu     sync.Mutex
	vm     *goja.Runtime
	logger *logiface.Logger[logiface.Event]
}

// Option configures a Runtime.
type Option func(*Runtime)

// WithLogger attaches a structured logger; script exceptions thrown by
// callbacks are logged at error level. A nil logger disables logging.
func WithLogger(logger *logiface.Logger[logiface.Event]) Option {
	return func(r *Runtime) { r.logger = logger }
}

// New wraps vm. The runtime must not be used concurrently outside the
// returned wrapper's lock.
func New(vm *goja.Runtime, opts ...Option) *Runtime {
	r := &Runtime{vm: vm}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Lock acquires the interpreter lock. Implements framecall.InterpreterLock.
func (r *Runtime) Lock() { r.mu.Lock() }

// Unlock releases the interpreter lock.
func (r *Runtime) Unlock() { r.mu.Unlock() }

// RunString executes src under the interpreter lock.
func (r *Runtime) RunString(src string) (goja.Value, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.vm.RunString(src)
}

// Invoke is the callback-run primitive: it calls the script callback as
// callback(sender, app_data, user_data). It matches framecall.InvokeFunc and
// is called by the registry on the render goroutine with the interpreter
// lock already held.
//
// A throwing callback must not take down the frame drain, matching the
// toolkit's fire-and-forget callback semantics: the exception is logged at
// error level (see [WithLogger]) and otherwise discarded.
func (r *Runtime) Invoke(cb framecall.Handle, sender framecall.Sender, appData, userData framecall.Handle) {
	fh, ok := cb.(*FuncHandle)
	if !ok {
		return
	}
	fn := fh.callable()
	if fn == nil {
		return
	}

	var senderVal goja.Value
	if sender.Alias != "" {
		senderVal = r.vm.ToValue(sender.Alias)
	} else {
		senderVal = r.vm.ToValue(sender.ID)
	}

	if _, err := fn(goja.Undefined(), senderVal, r.handleValue(appData), r.handleValue(userData)); err != nil {
		r.logger.Err().
			Err(err).
			Str("sender", sender.Alias).
			Uint64("sender_id", sender.ID).
			Log("gojabind: callback threw")
	}
}

// handleValue unwraps a handle into the script value it pins; absent or
// released handles marshal as undefined.
func (r *Runtime) handleValue(h framecall.Handle) goja.Value {
	switch v := h.(type) {
	case nil:
		return goja.Undefined()
	case *ValueHandle:
		if val := v.value(); val != nil {
			return val
		}
	}
	return goja.Undefined()
}

// Bind installs the registry's scripting surface into the runtime's global
// scope. Call it before executing scripts that register callbacks; the
// binding functions themselves run on script execution, under the
// interpreter lock held by the host.
func (r *Runtime) Bind(reg *framecall.Registry) error {
	vm := r.vm

	if err := vm.Set("set_frame_callback", func(call goja.FunctionCall) goja.Value {
		frame := uint64(call.Argument(0).ToInteger())
		cb := r.funcHandleArg(call.Argument(1), "set_frame_callback")
		ud := r.valueHandleArg(call.Argument(2))

		// The registry borrows its own references; drop the transient ones
		// taken at construction.
		reg.RegisterFrameCallback(frame, asHandle(cb), asHandle(ud))
		cb.release()
		ud.release()
		return goja.Undefined()
	}); err != nil {
		return err
	}

	slots := []*framecall.CallbackSlot{
		&reg.ViewportResize,
		&reg.Exit,
		&reg.DragEnter,
		&reg.DragLeave,
		&reg.DragOver,
		&reg.Drop,
	}
	for _, slot := range slots {
		s := slot
		if err := vm.Set(s.Name, func(call goja.FunctionCall) goja.Value {
			cb := r.funcHandleArg(call.Argument(0), s.Name)
			ud := r.valueHandleArg(call.Argument(1))

			s.Set(asHandle(cb), asHandle(ud), true)
			cb.release()
			ud.release()
			return goja.Undefined()
		}); err != nil {
			return err
		}
	}

	return vm.Set("get_frame_count", func(call goja.FunctionCall) goja.Value {
		return vm.ToValue(reg.Frame())
	})
}

// funcHandleArg converts a script argument into a callable handle.
// null/undefined clear the registration (nil handle); anything else must be
// a function.
func (r *Runtime) funcHandleArg(v goja.Value, name string) *FuncHandle {
	if v == nil || goja.IsNull(v) || goja.IsUndefined(v) {
		return nil
	}
	fn, ok := goja.AssertFunction(v)
	if !ok {
		panic(r.vm.NewTypeError("%s requires a function callback", name))
	}
	return NewFuncHandle(fn)
}

// valueHandleArg wraps an optional user-data argument; null/undefined mean
// absent.
func (r *Runtime) valueHandleArg(v goja.Value) *ValueHandle {
	if v == nil || goja.IsNull(v) || goja.IsUndefined(v) {
		return nil
	}
	return NewValueHandle(v)
}

// asHandle converts a typed nil into a nil interface, so the core's
// nil-handle semantics apply.
func asHandle[H interface {
	framecall.Handle
	comparable
}](h H) framecall.Handle {
	var zero H
	if h == zero {
		return nil
	}
	return h
}
