package stream_test

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/adamwoolhether/apiclient/client"
	"github.com/adamwoolhether/apiclient/client/stream"
	"github.com/adamwoolhether/apiclient/endpoint"
	"github.com/adamwoolhether/apiclient/inflight"
)

type user struct {
	ID string `json:"id"`
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

// newClient returns a client whose transport answers with body after
// release is closed, counting calls.
func newClient(t *testing.T, reg inflight.Registry, calls *atomic.Int32, release <-chan struct{}, body string) *client.Client {
	t.Helper()

	rt := roundTripFunc(func(r *http.Request) (*http.Response, error) {
		calls.Add(1)

		select {
		case <-release:
		case <-r.Context().Done():
			return nil, r.Context().Err()
		}

		return &http.Response{
			StatusCode: http.StatusOK,
			Header:     http.Header{},
			Body:       http.NoBody,
			Request:    r,
		}, nil
	})
	if body != "" {
		inner := rt
		rt = func(r *http.Request) (*http.Response, error) {
			resp, err := inner(r)
			if resp != nil {
				resp.Body = readCloser{strings.NewReader(body)}
			}
			return resp, err
		}
	}

	c, err := client.Build("http://api.example.com", client.WithRegistry(reg), client.WithTransport(rt))
	if err != nil {
		t.Fatalf("building client: %v", err)
	}

	return c
}

type readCloser struct{ *strings.Reader }

func (readCloser) Close() error { return nil }

func mustEndpoint(t *testing.T, path string) endpoint.Endpoint[user] {
	t.Helper()

	ep, err := endpoint.New[user](endpoint.MethodGet, path)
	if err != nil {
		t.Fatalf("building endpoint: %v", err)
	}

	return ep
}

func closed() chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}

func TestSingle_Cold(t *testing.T) {
	var calls atomic.Int32
	c := newClient(t, inflight.New(), &calls, closed(), `{"id":"7"}`)

	single := stream.NewSingle(c, mustEndpoint(t, "/users/7"))

	time.Sleep(10 * time.Millisecond)
	if calls.Load() != 0 {
		t.Fatalf("exp no call before Subscribe; got %d", calls.Load())
	}

	for i := range 2 {
		got := make(chan user, 1)
		sub := single.Subscribe(t.Context(), func(u user) { got <- u }, func(err error) {
			t.Errorf("unexpected failure: %v", err)
		})
		<-sub.Done()

		select {
		case u := <-got:
			if u.ID != "7" {
				t.Errorf("exp id %q; got %q", "7", u.ID)
			}
		default:
			t.Fatalf("subscription %d: exp onSuccess before Done", i)
		}
	}

	if calls.Load() != 2 {
		t.Errorf("exp each Subscribe to call; got %d calls", calls.Load())
	}
}

func TestSingle_Failure(t *testing.T) {
	var calls atomic.Int32
	c := newClient(t, inflight.New(), &calls, closed(), "")

	errs := make(chan error, 1)
	sub := stream.NewSingle(c, mustEndpoint(t, "/users/7")).Subscribe(t.Context(), func(user) {
		t.Error("unexpected success")
	}, func(err error) { errs <- err })
	<-sub.Done()

	select {
	case err := <-errs:
		if !errors.Is(err, client.ErrEmptyResponse) {
			t.Errorf("exp ErrEmptyResponse; got %v", err)
		}
	default:
		t.Fatal("exp onFailure before Done")
	}
}

func TestSingle_Dispose(t *testing.T) {
	var calls atomic.Int32
	reg := inflight.New()
	release := make(chan struct{})
	defer close(release)

	c := newClient(t, reg, &calls, release, `{"id":"1"}`)
	ep := mustEndpoint(t, "/users/1")

	var invoked atomic.Bool
	sub := stream.NewSingle(c, ep).Subscribe(t.Context(),
		func(user) { invoked.Store(true) },
		func(error) { invoked.Store(true) },
	)

	deadline := time.After(time.Second)
	for calls.Load() == 0 {
		select {
		case <-deadline:
			t.Fatal("call never reached the transport")
		case <-time.After(time.Millisecond):
		}
	}

	sub.Dispose()
	sub.Dispose()

	select {
	case <-sub.Done():
	case <-time.After(time.Second):
		t.Fatal("disposed subscription never finished")
	}

	if invoked.Load() {
		t.Error("exp no handler after Dispose")
	}
	if reg.Contains(ep.Fingerprint()) {
		t.Error("exp fingerprint released after Dispose")
	}
}

func TestPublish(t *testing.T) {
	var calls atomic.Int32
	c := newClient(t, inflight.New(), &calls, closed(), `{"id":"3"}`)

	events := stream.Publish(t.Context(), c, mustEndpoint(t, "/users/3"))

	ev, ok := <-events
	if !ok {
		t.Fatal("exp one event")
	}
	if ev.Err != nil {
		t.Fatalf("unexpected error: %v", ev.Err)
	}
	if ev.Value.ID != "3" {
		t.Errorf("exp id %q; got %q", "3", ev.Value.ID)
	}

	if _, ok := <-events; ok {
		t.Error("exp channel closed after one event")
	}
}

func TestPublish_EagerDuplicate(t *testing.T) {
	var calls atomic.Int32
	release := make(chan struct{})
	c := newClient(t, inflight.New(), &calls, release, `{"id":"1"}`)
	ep := mustEndpoint(t, "/users/1")

	first := stream.Publish(t.Context(), c, ep)
	second := stream.Publish(t.Context(), c, ep)

	select {
	case ev := <-second:
		if !errors.Is(ev.Err, client.ErrDuplicateRequest) {
			t.Errorf("exp ErrDuplicateRequest; got %v", ev.Err)
		}
	case <-time.After(time.Second):
		t.Fatal("duplicate never delivered")
	}

	close(release)

	if ev := <-first; ev.Err != nil {
		t.Errorf("first publisher failed: %v", ev.Err)
	}
}

func TestPublish_Cancel(t *testing.T) {
	var calls atomic.Int32
	reg := inflight.New()
	release := make(chan struct{})
	defer close(release)

	c := newClient(t, reg, &calls, release, `{"id":"1"}`)

	ctx, cancel := context.WithCancel(t.Context())
	events := stream.Publish(ctx, c, mustEndpoint(t, "/users/1"))
	cancel()

	select {
	case ev := <-events:
		if !errors.Is(ev.Err, context.Canceled) {
			t.Errorf("exp context.Canceled; got %v", ev.Err)
		}
	case <-time.After(time.Second):
		t.Fatal("cancelled publisher never delivered")
	}

	if reg.Len() != 0 {
		t.Errorf("exp empty registry; got %d", reg.Len())
	}
}
