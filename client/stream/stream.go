// Package stream adapts client calls to reactive-style consumers.
//
// [Single] is cold: nothing is sent until Subscribe, and every Subscribe
// runs the call again. [Publish] is hot: the fingerprint is acquired when
// it is called and the result arrives as exactly one [Event] on a channel.
//
// Both are thin wrappers over [client.Go] and report the same errors.
package stream

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/adamwoolhether/apiclient/client"
	"github.com/adamwoolhether/apiclient/endpoint"
)

// Single is a deferred call of one endpoint.
type Single[R any] struct {
	c  *client.Client
	ep endpoint.Endpoint[R]
}

// NewSingle returns a Single that calls ep on c each time it is subscribed.
func NewSingle[R any](c *client.Client, ep endpoint.Endpoint[R]) *Single[R] {
	return &Single[R]{c: c, ep: ep}
}

// Subscribe starts the call. Exactly one of onSuccess or onFailure is
// invoked on another goroutine, unless the subscription is disposed first.
// Either handler may be nil.
func (s *Single[R]) Subscribe(ctx context.Context, onSuccess func(R), onFailure func(error)) *Subscription {
	f := client.Go(ctx, s.c, s.ep)

	sub := &Subscription{
		cancel: f.Cancel,
		done:   make(chan struct{}),
	}

	go func() {
		defer close(sub.done)

		v, err := f.Wait()
		if sub.disposed.Load() {
			return
		}

		switch {
		case err != nil && onFailure != nil:
			onFailure(err)
		case err == nil && onSuccess != nil:
			onSuccess(v)
		}
	}()

	return sub
}

// Subscription is the handle returned by [Single.Subscribe].
type Subscription struct {
	once     sync.Once
	disposed atomic.Bool
	cancel   context.CancelFunc
	done     chan struct{}
}

// Dispose cancels the call if it is still running and suppresses its
// handlers. The fingerprint is still released. Dispose is idempotent.
func (s *Subscription) Dispose() {
	s.once.Do(func() {
		s.disposed.Store(true)
		s.cancel()
	})
}

// Done returns a channel closed once the call has finished and any
// handler has returned.
func (s *Subscription) Done() <-chan struct{} { return s.done }

// Event is the single terminal signal delivered by [Publish].
type Event[R any] struct {
	Value R
	Err   error
}

// Publish starts ep immediately and returns a channel that receives one
// Event and is then closed. Cancelling ctx aborts the call. The channel is
// buffered, so an abandoned receiver does not leak the goroutine.
func Publish[R any](ctx context.Context, c *client.Client, ep endpoint.Endpoint[R]) <-chan Event[R] {
	f := client.Go(ctx, c, ep)

	ch := make(chan Event[R], 1)
	go func() {
		defer close(ch)

		v, err := f.Wait()
		ch <- Event[R]{Value: v, Err: err}
	}()

	return ch
}
