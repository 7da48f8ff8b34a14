package cache

import (
	"context"
	"sync"
)

// inFlightCall tracks a single fetch that concurrent callers may wait on.
type inFlightCall[T any] struct {
	done   chan struct{}
	result T
	err    error
}

// coalescer deduplicates concurrent fetches for the same key: the first
// caller executes fn, later callers for the same key wait for and share
// its result. Keys are independent; completed calls are forgotten so a
// failed fetch can be retried.
type coalescer[T any] struct {
	mu       sync.Mutex
	inFlight map[string]*inFlightCall[T]
}

func newCoalescer[T any]() *coalescer[T] {
	return &coalescer[T]{inFlight: make(map[string]*inFlightCall[T])}
}

// Do executes fn for key unless a call for key is already in flight, in
// which case it waits for that call's result. Waiting respects ctx; the
// in-flight call itself is not cancelled when a waiter gives up.
func (c *coalescer[T]) Do(ctx context.Context, key string, fn func() (T, error)) (T, error) {
	c.mu.Lock()
	if existing, ok := c.inFlight[key]; ok {
		c.mu.Unlock()
		select {
		case <-existing.done:
			return existing.result, existing.err
		case <-ctx.Done():
			var zero T
			return zero, ctx.Err()
		}
	}

	call := &inFlightCall[T]{done: make(chan struct{})}
	c.inFlight[key] = call
	c.mu.Unlock()

	call.result, call.err = fn()

	c.mu.Lock()
	delete(c.inFlight, key)
	c.mu.Unlock()
	close(call.done)

	return call.result, call.err
}
