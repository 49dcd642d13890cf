package ina260

import (
	"context"
	"time"
)

// guard is a mutual-exclusion lock whose acquisition can be bounded by a
// timeout or abandoned through a context. With no timeout and a context that
// is never done it behaves like a plain blocking mutex.
type guard struct {
	sem     chan struct{}
	timeout time.Duration
}

func newGuard(timeout time.Duration) guard {
	return guard{sem: make(chan struct{}, 1), timeout: timeout}
}

func (g guard) acquire(ctx context.Context) error {
	// Fast path, also the only path for the unbounded default.
	if g.timeout <= 0 && ctx.Done() == nil {
		g.sem <- struct{}{}
		return nil
	}
	select {
	case g.sem <- struct{}{}:
		return nil
	default:
	}

	var expired <-chan time.Time
	if g.timeout > 0 {
		t := time.NewTimer(g.timeout)
		defer t.Stop()
		expired = t.C
	}
	select {
	case g.sem <- struct{}{}:
		return nil
	case <-expired:
		return ErrAcquireTimeout
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (g guard) release() { <-g.sem }
