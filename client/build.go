package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"maps"
	"net/http"
	"net/url"
	"slices"
	"strings"

	"github.com/adamwoolhether/apiclient/endpoint"
)

const redacted = "REDACTED"

// NewRequest builds the transport request for d without sending it.
// Failures are returned as a [*BuildError].
//
// The URL is the base URL joined with the descriptor path. Its query holds
// the base URL's parameters, then the descriptor's in order, then the
// credential when it is sent as a query parameter. Headers are applied in
// descriptor order, later keys overwriting earlier ones, and a header
// credential is applied last so it always wins.
func (c *Client) NewRequest(ctx context.Context, d endpoint.Descriptor) (*http.Request, error) {
	return c.build(ctx, d)
}

func (c *Client) build(ctx context.Context, d endpoint.Descriptor, logArgs ...any) (*http.Request, error) {
	auth, err := c.injection(d.Auth())
	if err != nil {
		return nil, &BuildError{Err: err}
	}

	u := c.baseURL.JoinPath(d.Path())

	params := baseParams(c.baseURL)
	params = append(params, d.Query()...)
	if auth.location == LocationQuery && auth.key != "" {
		isAuthKey := func(p endpoint.Param) bool { return p.Key == auth.key }
		params = append(slices.DeleteFunc(params, isAuthKey), endpoint.Param{Key: auth.key, Value: auth.value})
	}
	u.RawQuery = encodeQuery(params)

	var body io.Reader
	if d.HasBody() {
		b, err := d.Body(c.encoder)
		if err != nil {
			return nil, &BuildError{Err: fmt.Errorf("encoding body: %w", err)}
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, d.Method().String(), u.String(), body)
	if err != nil {
		return nil, &BuildError{Err: fmt.Errorf("instantiating request: %w", err)}
	}

	if d.HasBody() {
		req.Header.Set("Content-Type", c.contentType)
	}
	for _, h := range d.Headers() {
		req.Header.Set(h.Key, h.Value)
	}
	if auth.location == LocationHeader && auth.key != "" {
		req.Header.Set(auth.key, auth.value)
	}

	logURL := c.redact(req.URL)
	c.logger.Debug("http request built", append(logArgs,
		"method", req.Method,
		"url", logURL.String(),
		"header_keys", headerKeys(req.Header),
		"query", logURL.RawQuery,
	)...)

	return req, nil
}

// injection is the credential placement resolved for one request.
// A zero key means nothing is injected.
type injection struct {
	location Location
	key      string
	value    string
}

func (c *Client) injection(req endpoint.AuthRequirement) (injection, error) {
	var loc Location

	switch req {
	case endpoint.AuthNone:
		return injection{}, nil

	case endpoint.AuthInherit:
		if c.cred == nil {
			return injection{}, nil
		}
		loc = c.cred.Location()

	case endpoint.AuthQuery, endpoint.AuthHeader:
		if c.cred == nil {
			return injection{}, fmt.Errorf("endpoint requires %s auth: %w", req, ErrMissingCredential)
		}
		loc = LocationQuery
		if req == endpoint.AuthHeader {
			loc = LocationHeader
		}

	default:
		return injection{}, fmt.Errorf("unknown auth requirement %d", req)
	}

	return injection{
		location: loc,
		key:      c.cred.Key(),
		value:    c.cred.Value(),
	}, nil
}

// redact returns a copy of u safe for logging, with the credential's
// query value and any userinfo password masked.
func (c *Client) redact(u *url.URL) *url.URL {
	cpy := *u
	if cpy.User != nil {
		if _, ok := cpy.User.Password(); ok {
			cpy.User = url.UserPassword(cpy.User.Username(), redacted)
		}
	}
	if c.cred == nil {
		return &cpy
	}

	q := cpy.Query()
	if q.Has(c.cred.Key()) {
		q.Set(c.cred.Key(), redacted)
		cpy.RawQuery = q.Encode()
	}

	return &cpy
}

// baseParams flattens the base URL's query, sorted by key.
func baseParams(u *url.URL) []endpoint.Param {
	values := u.Query()

	var params []endpoint.Param
	for _, k := range slices.Sorted(maps.Keys(values)) {
		for _, v := range values[k] {
			params = append(params, endpoint.Param{Key: k, Value: v})
		}
	}

	return params
}

// encodeQuery is url.Values.Encode without the key sort,
// keeping parameters in the order given.
func encodeQuery(params []endpoint.Param) string {
	var sb strings.Builder
	for i, p := range params {
		if i > 0 {
			sb.WriteByte('&')
		}
		sb.WriteString(url.QueryEscape(p.Key))
		sb.WriteByte('=')
		sb.WriteString(url.QueryEscape(p.Value))
	}

	return sb.String()
}

func headerKeys(h http.Header) []string {
	return slices.Sorted(maps.Keys(h))
}
