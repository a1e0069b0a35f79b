package client

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/adamwoolhether/apiclient/endpoint"
	"github.com/adamwoolhether/apiclient/inflight"
)

// Future represents an in-flight or completed call started with [Go].
// It resolves exactly once.
type Future[R any] struct {
	fp     endpoint.Fingerprint
	done   chan struct{}
	value  R
	err    error
	cancel context.CancelFunc
}

// Go starts ep on its own goroutine and returns a Future for its result.
//
// The fingerprint is acquired before Go returns: an identical call made
// while this one is in flight resolves immediately with
// [ErrDuplicateRequest] and never reaches the transport. The fingerprint
// is released when the call completes, fails or is cancelled, before the
// Future resolves.
func Go[R any](ctx context.Context, c *Client, ep endpoint.Endpoint[R]) *Future[R] {
	fp := ep.Fingerprint()
	method := ep.Method().String()
	callID := uuid.NewString()

	lease, ok := inflight.Acquire(c.registry, fp)
	if !ok {
		c.logger.Warning("duplicate request suppressed",
			"call_id", callID,
			"method", method,
			"path", ep.Path(),
			"fingerprint", fp.String(),
		)
		c.metrics.Duplicate(method)

		return resolved[R](fp, ErrDuplicateRequest)
	}
	c.metrics.Started()

	ctx, cancel := context.WithCancel(ctx)
	f := &Future[R]{
		fp:     fp,
		done:   make(chan struct{}),
		cancel: cancel,
	}

	go func() {
		start := time.Now()

		var out outcome[R]
		defer func() {
			lease.Release()
			cancel()
			c.metrics.Finished(method, out.kind.String(), time.Since(start))

			f.value, f.err = out.value, out.err
			close(f.done)
		}()

		out = execute[R](ctx, c, ep.Descriptor, callID)
	}()

	return f
}

// Do executes ep and blocks until it completes.
func Do[R any](ctx context.Context, c *Client, ep endpoint.Endpoint[R]) (R, error) {
	return Go(ctx, c, ep).Wait()
}

// Callback executes ep and passes the result to fn on another goroutine.
// fn is called exactly once, including for duplicates. Calling the
// returned CancelFunc aborts the call; fn then receives the cancellation
// as a [*TransportError].
func Callback[R any](ctx context.Context, c *Client, ep endpoint.Endpoint[R], fn func(R, error)) context.CancelFunc {
	f := Go(ctx, c, ep)

	go func() {
		fn(f.Wait())
	}()

	return f.Cancel
}

// resolved returns a Future that has already failed with err.
func resolved[R any](fp endpoint.Fingerprint, err error) *Future[R] {
	done := make(chan struct{})
	close(done)

	return &Future[R]{
		fp:     fp,
		done:   done,
		err:    err,
		cancel: func() {},
	}
}

// Fingerprint returns the identity the call was registered under.
func (f *Future[R]) Fingerprint() endpoint.Fingerprint { return f.fp }

// Done returns a channel that is closed when the call completes.
func (f *Future[R]) Done() <-chan struct{} { return f.done }

// Wait blocks until the call completes and returns its result.
func (f *Future[R]) Wait() (R, error) {
	<-f.done
	return f.value, f.err
}

// Await is Wait bounded by ctx. If ctx ends first it returns ctx.Err()
// and the call keeps running; use Cancel to stop it.
func (f *Future[R]) Await(ctx context.Context) (R, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		var zero R
		return zero, ctx.Err()
	}
}

// Cancel cancels the call's context. It is safe to call at any time,
// including after completion.
func (f *Future[R]) Cancel() {
	f.cancel()
}
