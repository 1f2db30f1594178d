package alarm

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// FireFunc is invoked on its own goroutine when a registration fires. The
// context is the registry's base context and is cancelled when the registry
// closes.
type FireFunc[T any] func(ctx context.Context, payload T)

// Registry is an in-process one-shot alarm backend built on time.AfterFunc.
// It is safe for concurrent use.
type Registry[T any] struct {
	mu     sync.Mutex
	timers map[int64]*armedTimer
	gen    uint64
	closed bool

	fire   FireFunc[T]
	exact  bool
	now    func() time.Time
	logger *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
}

// armedTimer tags a pending timer with the generation that armed it, so a
// callback racing a replace-register can be told apart from the live
// registration and dropped.
type armedTimer struct {
	timer *time.Timer
	gen   uint64
}

// Option configures a Registry.
type Option func(*registryOptions)

type registryOptions struct {
	exact  bool
	now    func() time.Time
	logger *slog.Logger
}

// WithExactDisabled models a runtime that denies exact wake alarms:
// RegisterExact returns ErrExactUnavailable and callers must fall back to
// the coarser tiers.
func WithExactDisabled() Option {
	return func(o *registryOptions) { o.exact = false }
}

// WithClock sets the time source, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(o *registryOptions) {
		if now != nil {
			o.now = now
		}
	}
}

// WithLogger sets the logger for the Registry.
func WithLogger(logger *slog.Logger) Option {
	return func(o *registryOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// NewRegistry creates an alarm registry that delivers fired payloads to
// fire.
func NewRegistry[T any](fire FireFunc[T], opts ...Option) (*Registry[T], error) {
	if fire == nil {
		return nil, ErrFireFuncNil
	}

	options := &registryOptions{
		exact:  true,
		now:    time.Now,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(options)
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Registry[T]{
		timers: make(map[int64]*armedTimer),
		fire:   fire,
		exact:  options.exact,
		now:    options.now,
		logger: options.logger,
		ctx:    ctx,
		cancel: cancel,
	}, nil
}

// CanScheduleExact reports whether exact registrations are permitted.
func (r *Registry[T]) CanScheduleExact() bool {
	return r.exact
}

// RegisterExact schedules a one-shot that fires at precisely fireAt,
// replacing any prior registration under the same identity.
func (r *Registry[T]) RegisterExact(identity int64, fireAt time.Time, payload T) error {
	if !r.exact {
		return ErrExactUnavailable
	}
	return r.register(identity, fireAt, payload)
}

// RegisterInexact schedules a one-shot with minute granularity: the fire
// instant is coarsened to the next minute boundary.
func (r *Registry[T]) RegisterInexact(identity int64, fireAt time.Time, payload T) error {
	return r.register(identity, coarsen(fireAt, time.Minute), payload)
}

// RegisterDeferrable schedules a one-shot with the loosest guarantees: the
// fire instant is coarsened to the next five-minute boundary.
func (r *Registry[T]) RegisterDeferrable(identity int64, fireAt time.Time, payload T) error {
	return r.register(identity, coarsen(fireAt, 5*time.Minute), payload)
}

// Cancel removes the registration under identity. Cancelling an unknown
// identity is a no-op.
func (r *Registry[T]) Cancel(identity int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if armed, ok := r.timers[identity]; ok {
		armed.timer.Stop()
		delete(r.timers, identity)
	}
	return nil
}

// Len reports the number of pending registrations.
func (r *Registry[T]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.timers)
}

// Close stops every pending timer. In-flight fire callbacks observe a
// cancelled context.
func (r *Registry[T]) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil
	}
	r.closed = true
	r.cancel()
	for identity, armed := range r.timers {
		armed.timer.Stop()
		delete(r.timers, identity)
	}
	return nil
}

func (r *Registry[T]) register(identity int64, fireAt time.Time, payload T) error {
	delay := fireAt.Sub(r.now())
	if delay <= 0 {
		return ErrPastFireTime
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrRegistryClosed
	}

	// Same identity overwrites: stop the old timer before arming the new
	// one. Stop may miss a callback that already started; the generation
	// check in fired drops that stale delivery.
	if prev, ok := r.timers[identity]; ok {
		prev.timer.Stop()
	}

	r.gen++
	gen := r.gen
	r.timers[identity] = &armedTimer{
		gen: gen,
		timer: time.AfterFunc(delay, func() {
			r.fired(identity, gen, payload)
		}),
	}
	return nil
}

func (r *Registry[T]) fired(identity int64, gen uint64, payload T) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	armed, ok := r.timers[identity]
	if !ok || armed.gen != gen {
		// The registration was replaced or cancelled while this callback
		// was in flight.
		r.mu.Unlock()
		return
	}
	delete(r.timers, identity)
	r.mu.Unlock()

	r.logger.Debug("alarm fired", slog.Int64("identity", identity))
	r.fire(r.ctx, payload)
}

// coarsen rounds t up to the next multiple of step. Already-aligned instants
// are kept as is.
func coarsen(t time.Time, step time.Duration) time.Time {
	rounded := t.Truncate(step)
	if rounded.Before(t) {
		rounded = rounded.Add(step)
	}
	return rounded
}
