package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
)

// DefaultTimeout bounds a single store call when no timeout is configured.
const DefaultTimeout = 5 * time.Second

// BreakerSettings tunes the per-store circuit breaker.
type BreakerSettings struct {
	MaxRequests  uint32        // requests allowed through while half-open
	Interval     time.Duration // closed-state window after which counts reset
	Timeout      time.Duration // open-state duration before probing again
	MinRequests  uint32        // requests needed in a window before tripping
	FailureRatio float64       // unavailable/requests ratio that trips the breaker
}

// DefaultBreakerSettings returns the settings used when none are configured.
func DefaultBreakerSettings() BreakerSettings {
	return BreakerSettings{
		MaxRequests:  3,
		Interval:     time.Minute,
		Timeout:      30 * time.Second,
		MinRequests:  10,
		FailureRatio: 0.6,
	}
}

// Guard bounds calls to one store with a timeout and a circuit breaker.
// A nil *Guard runs calls directly.
type Guard struct {
	store   string
	timeout time.Duration
	cb      *gobreaker.CircuitBreaker[any]

	onResult func(store, op string, elapsed time.Duration, err error)
}

// GuardOption customizes a Guard.
type GuardOption func(*guardOptions)

type guardOptions struct {
	onResult      func(store, op string, elapsed time.Duration, err error)
	onStateChange func(store string, to gobreaker.State)
}

// WithResultHook is called after every guarded call with its duration and error.
func WithResultHook(fn func(store, op string, elapsed time.Duration, err error)) GuardOption {
	return func(o *guardOptions) { o.onResult = fn }
}

// WithStateHook is called whenever the breaker changes state.
func WithStateHook(fn func(store string, to gobreaker.State)) GuardOption {
	return func(o *guardOptions) { o.onStateChange = fn }
}

// NewGuard creates a guard for the named store.
func NewGuard(store string, timeout time.Duration, s BreakerSettings, opts ...GuardOption) *Guard {
	var o guardOptions
	for _, opt := range opts {
		opt(&o)
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	cb := gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        store,
		MaxRequests: s.MaxRequests,
		Interval:    s.Interval,
		Timeout:     s.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < s.MinRequests {
				return false
			}
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			return ratio >= s.FailureRatio
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("circuit breaker state change", "store", name, "from", from.String(), "to", to.String())
			if o.onStateChange != nil {
				o.onStateChange(name, to)
			}
		},
		// Query errors say nothing about store health.
		IsSuccessful: func(err error) bool {
			return err == nil || !IsUnavailable(err)
		},
	})

	return &Guard{
		store:    store,
		timeout:  timeout,
		cb:       cb,
		onResult: o.onResult,
	}
}

// Store returns the name of the guarded store.
func (g *Guard) Store() string {
	if g == nil {
		return ""
	}
	return g.store
}

// Run executes fn under g. fn should return errors already classified by the
// store package; anything unclassified is reported as ErrQueryFailed, and an
// expired deadline is always reported as ErrStorageUnavailable.
func Run[T any](ctx context.Context, g *Guard, op string, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	if g == nil {
		return fn(ctx)
	}

	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	result, err := g.cb.Execute(func() (any, error) {
		v, err := fn(ctx)
		if err != nil {
			return nil, g.normalize(op, err)
		}
		return v, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			err = Unavailable(g.store, op, err)
		}
		g.observe(op, start, err)
		return zero, err
	}
	g.observe(op, start, nil)

	v, ok := result.(T)
	if !ok {
		return zero, QueryFailed(g.store, op, fmt.Errorf("unexpected result type %T", result))
	}
	return v, nil
}

func (g *Guard) normalize(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) && !IsUnavailable(err) {
		return Unavailable(g.store, op, err)
	}
	if !IsClassified(err) {
		return QueryFailed(g.store, op, err)
	}
	return err
}

func (g *Guard) observe(op string, start time.Time, err error) {
	if g.onResult != nil {
		g.onResult(g.store, op, time.Since(start), err)
	}
}
