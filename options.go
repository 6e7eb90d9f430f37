package framecall

import (
	"fmt"

	"github.com/joeycumines/logiface"
)

// registryOptions holds configuration resolved during New.
type registryOptions struct {
	logger         *logiface.Logger[logiface.Event]
	invoke         InvokeFunc
	lock           InterpreterLock
	maxCalls       int32
	metricsEnabled bool
}

// Option configures a Registry instance.
type Option interface {
	apply(*registryOptions) error
}

// optionImpl implements Option.
type optionImpl struct {
	applyFunc func(*registryOptions) error
}

func (o *optionImpl) apply(opts *registryOptions) error {
	return o.applyFunc(opts)
}

// WithMaxCallsPerFrame sets the per-frame callback acceptance budget.
// Submissions past the budget are silently dropped until the next frame's
// drain resets the counter. The default is DefaultMaxCallsPerFrame.
func WithMaxCallsPerFrame(n int) Option {
	return &optionImpl{func(opts *registryOptions) error {
		if n <= 0 {
			return fmt.Errorf("framecall: max calls per frame must be positive, got %d", n)
		}
		opts.maxCalls = int32(n)
		return nil
	}}
}

// WithInvoker sets the callback-run primitive supplied by the interpreter
// embedding. Without one, interpreter callback invocations are no-ops (tasks
// still run), which suits registries used purely for host-side scheduling.
func WithInvoker(fn InvokeFunc) Option {
	return &optionImpl{func(opts *registryOptions) error {
		opts.invoke = fn
		return nil
	}}
}

// WithInterpreterLock sets the lock held around each interpreter-visible
// callback invocation. Defaults to a no-op lock.
func WithInterpreterLock(lock InterpreterLock) Option {
	return &optionImpl{func(opts *registryOptions) error {
		opts.lock = lock
		return nil
	}}
}

// WithLogger attaches a structured logger. A nil logger disables logging.
func WithLogger(logger *logiface.Logger[logiface.Event]) Option {
	return &optionImpl{func(opts *registryOptions) error {
		opts.logger = logger
		return nil
	}}
}

// WithMetrics enables runtime counters, accessible via Registry.Metrics.
// Disabled by default; the counters are cheap atomics but the hot submission
// path stays branch-free without them.
func WithMetrics(enabled bool) Option {
	return &optionImpl{func(opts *registryOptions) error {
		opts.metricsEnabled = enabled
		return nil
	}}
}

// resolveOptions applies Option instances over the defaults.
func resolveOptions(opts []Option) (*registryOptions, error) {
	cfg := &registryOptions{
		maxCalls: DefaultMaxCallsPerFrame,
	}
	for _, opt := range opts {
		if opt == nil {
			continue // Skip nil options gracefully
		}
		if err := opt.apply(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}
