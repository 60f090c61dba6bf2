package enrich

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/semaphore"
)

// gate bounds concurrent adapter calls and applies a per-call timeout. Every
// failure it returns is an *AdapterError.
type gate struct {
	sem      *semaphore.Weighted
	observer Observer
}

func newGate(limit int, observer Observer) *gate {
	return &gate{sem: semaphore.NewWeighted(int64(limit)), observer: observer}
}

func (g *gate) call(ctx context.Context, adapter string, timeout time.Duration, fn func(ctx context.Context) (empty bool, err error)) (err error) {
	start := time.Now()
	outcome := OutcomeOK
	defer func() {
		g.observer.ObserveAdapterCall(adapter, outcome, time.Since(start))
	}()

	if err := g.sem.Acquire(ctx, 1); err != nil {
		outcome = classify(err)
		return &AdapterError{Adapter: adapter, Err: fmt.Errorf("wait for slot: %w", err)}
	}
	defer g.sem.Release(1)

	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	defer func() {
		if rec := recover(); rec != nil {
			outcome = OutcomeError
			err = &AdapterError{Adapter: adapter, Err: fmt.Errorf("panic: %v", rec)}
		}
	}()

	empty, callErr := fn(callCtx)
	if callErr == nil && callCtx.Err() != nil {
		callErr = callCtx.Err()
	}
	if callErr != nil {
		outcome = classify(callErr)
		return &AdapterError{Adapter: adapter, Err: callErr}
	}
	if empty {
		outcome = OutcomeEmpty
	}
	return nil
}

func classify(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return OutcomeTimeout
	}
	return OutcomeError
}
