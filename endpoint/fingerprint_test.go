package endpoint_test

import (
	"testing"

	"github.com/adamwoolhether/apiclient/endpoint"
)

func mustDescriptor(t *testing.T, method endpoint.Method, path string, opts ...endpoint.Option) endpoint.Descriptor {
	t.Helper()

	d, err := endpoint.NewDescriptor(method, path, opts...)
	if err != nil {
		t.Fatalf("building descriptor: %v", err)
	}

	return d
}

func TestIdentify_IgnoresValuesAndBody(t *testing.T) {
	testCases := []struct {
		name string
		a    []endpoint.Option
		b    []endpoint.Option
	}{
		{
			name: "query values differ",
			a:    []endpoint.Option{endpoint.WithQuery("id", "1")},
			b:    []endpoint.Option{endpoint.WithQuery("id", "2")},
		},
		{
			name: "header values differ",
			a:    []endpoint.Option{endpoint.WithHeader("X-Trace", "a")},
			b:    []endpoint.Option{endpoint.WithHeader("X-Trace", "b")},
		},
		{
			name: "body differs",
			a:    []endpoint.Option{endpoint.WithRawBody([]byte(`{"a":1}`))},
			b:    []endpoint.Option{endpoint.WithRawBody([]byte(`{"a":2}`))},
		},
		{
			name: "key order differs",
			a: []endpoint.Option{
				endpoint.WithHeader("A", "1"), endpoint.WithHeader("B", "2"),
				endpoint.WithQuery("x", "1"), endpoint.WithQuery("y", "2"),
			},
			b: []endpoint.Option{
				endpoint.WithHeader("B", "2"), endpoint.WithHeader("A", "1"),
				endpoint.WithQuery("y", "2"), endpoint.WithQuery("x", "1"),
			},
		},
		{
			name: "repeated keys collapse",
			a:    []endpoint.Option{endpoint.WithQuery("tag", "a"), endpoint.WithQuery("tag", "b")},
			b:    []endpoint.Option{endpoint.WithQuery("tag", "c")},
		},
		{
			name: "header key case",
			a:    []endpoint.Option{endpoint.WithHeader("x-api-version", "1")},
			b:    []endpoint.Option{endpoint.WithHeader("X-Api-Version", "2")},
		},
		{
			name: "auth requirement",
			a:    []endpoint.Option{endpoint.WithAuth(endpoint.AuthNone)},
			b:    []endpoint.Option{endpoint.WithAuth(endpoint.AuthHeader)},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			a := mustDescriptor(t, endpoint.MethodGet, "/items", tc.a...)
			b := mustDescriptor(t, endpoint.MethodGet, "/items", tc.b...)

			if endpoint.Identify(a) != endpoint.Identify(b) {
				t.Errorf("exp equal fingerprints; got %s and %s", a.Fingerprint(), b.Fingerprint())
			}
		})
	}
}

func TestIdentify_DistinguishesShape(t *testing.T) {
	base := mustDescriptor(t, endpoint.MethodGet, "/items",
		endpoint.WithHeader("Accept", "application/json"),
		endpoint.WithQuery("id", "1"),
	)

	testCases := []struct {
		name   string
		method endpoint.Method
		path   string
		opts   []endpoint.Option
	}{
		{
			name:   "path",
			method: endpoint.MethodGet,
			path:   "/items/1",
			opts:   []endpoint.Option{endpoint.WithHeader("Accept", "application/json"), endpoint.WithQuery("id", "1")},
		},
		{
			name:   "method",
			method: endpoint.MethodPost,
			path:   "/items",
			opts:   []endpoint.Option{endpoint.WithHeader("Accept", "application/json"), endpoint.WithQuery("id", "1")},
		},
		{
			name:   "custom method",
			method: endpoint.Custom("PROPFIND"),
			path:   "/items",
			opts:   []endpoint.Option{endpoint.WithHeader("Accept", "application/json"), endpoint.WithQuery("id", "1")},
		},
		{
			name:   "extra header key",
			method: endpoint.MethodGet,
			path:   "/items",
			opts: []endpoint.Option{
				endpoint.WithHeader("Accept", "application/json"),
				endpoint.WithHeader("X-Extra", "1"),
				endpoint.WithQuery("id", "1"),
			},
		},
		{
			name:   "different header key",
			method: endpoint.MethodGet,
			path:   "/items",
			opts:   []endpoint.Option{endpoint.WithHeader("Accept-Language", "application/json"), endpoint.WithQuery("id", "1")},
		},
		{
			name:   "extra query key",
			method: endpoint.MethodGet,
			path:   "/items",
			opts: []endpoint.Option{
				endpoint.WithHeader("Accept", "application/json"),
				endpoint.WithQuery("id", "1"),
				endpoint.WithQuery("page", "2"),
			},
		},
		{
			name:   "different query key",
			method: endpoint.MethodGet,
			path:   "/items",
			opts:   []endpoint.Option{endpoint.WithHeader("Accept", "application/json"), endpoint.WithQuery("ID", "1")},
		},
		{
			name:   "header key moved to query",
			method: endpoint.MethodGet,
			path:   "/items",
			opts:   []endpoint.Option{endpoint.WithQuery("Accept", "application/json"), endpoint.WithQuery("id", "1")},
		},
		{
			name:   "no keys",
			method: endpoint.MethodGet,
			path:   "/items",
		},
	}

	seen := map[endpoint.Fingerprint]string{base.Fingerprint(): "base"}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			d := mustDescriptor(t, tc.method, tc.path, tc.opts...)

			fp := d.Fingerprint()
			if prev, ok := seen[fp]; ok {
				t.Errorf("fingerprint %s collides with %q", fp, prev)
			}
			seen[fp] = tc.name
		})
	}
}

func TestIdentify_FieldBoundaries(t *testing.T) {
	a := mustDescriptor(t, endpoint.MethodGet, "/ab", endpoint.WithQuery("c", ""))
	b := mustDescriptor(t, endpoint.MethodGet, "/a", endpoint.WithQuery("bc", ""))

	if a.Fingerprint() == b.Fingerprint() {
		t.Errorf("exp distinct fingerprints across field boundaries; got %s", a.Fingerprint())
	}
}

func TestIdentify_Deterministic(t *testing.T) {
	d := mustDescriptor(t, endpoint.MethodPut, "/users/1",
		endpoint.WithHeader("If-Match", "etag"),
		endpoint.WithQuery("notify", "true"),
	)

	first := endpoint.Identify(d)
	for range 100 {
		if got := endpoint.Identify(d); got != first {
			t.Fatalf("exp stable fingerprint %s; got %s", first, got)
		}
	}

	if len(first.String()) != 16 {
		t.Errorf("exp 16 hex chars; got %q", first.String())
	}
}
