package endpoint

import (
	"errors"
	"fmt"
	"slices"

	"github.com/google/go-querystring/query"
	"golang.org/x/net/http/httpguts"

	"github.com/adamwoolhether/apiclient/codec"
)

// Option is a functional option for [New] and [NewDescriptor].
type Option func(*Descriptor) error

// WithHeader appends a header. When the same key appears more than once
// the last value wins at build time.
func WithHeader(key, value string) Option {
	return func(d *Descriptor) error {
		if err := validHeader(key, value); err != nil {
			return err
		}
		d.headers = append(d.headers, Param{Key: key, Value: value})
		return nil
	}
}

// WithHeaders appends headers in the given order.
func WithHeaders(headers ...Param) Option {
	return func(d *Descriptor) error {
		for _, h := range headers {
			if err := validHeader(h.Key, h.Value); err != nil {
				return err
			}
		}
		d.headers = append(d.headers, headers...)
		return nil
	}
}

// WithQuery appends a query parameter. Repeated keys are all sent.
func WithQuery(key, value string) Option {
	return func(d *Descriptor) error {
		if key == "" {
			return fmt.Errorf("query %w", ErrEmptyKey)
		}
		d.query = append(d.query, Param{Key: key, Value: value})
		return nil
	}
}

// WithQueryParams appends query parameters in the given order.
func WithQueryParams(params ...Param) Option {
	return func(d *Descriptor) error {
		for _, p := range params {
			if p.Key == "" {
				return fmt.Errorf("query %w", ErrEmptyKey)
			}
		}
		d.query = append(d.query, params...)
		return nil
	}
}

// WithQueryStruct flattens v, a struct with `url:"name"` tags, into query
// parameters sorted by name. See [query.Values] for the supported tags.
func WithQueryStruct(v any) Option {
	return func(d *Descriptor) error {
		vals, err := query.Values(v)
		if err != nil {
			return fmt.Errorf("query struct: %w", err)
		}

		keys := make([]string, 0, len(vals))
		for k := range vals {
			keys = append(keys, k)
		}
		slices.Sort(keys)

		for _, k := range keys {
			for _, val := range vals[k] {
				d.query = append(d.query, Param{Key: k, Value: val})
			}
		}
		return nil
	}
}

// WithBody encodes v with the client's encoder when the request is built.
func WithBody(v any) Option {
	return func(d *Descriptor) error {
		if v == nil {
			return errors.New("body must not be nil")
		}
		d.body = func(enc codec.Encoder) ([]byte, error) {
			return enc.Encode(v)
		}
		return nil
	}
}

// WithRawBody sends b as-is.
func WithRawBody(b []byte) Option {
	return func(d *Descriptor) error {
		raw := slices.Clone(b)
		d.body = func(codec.Encoder) ([]byte, error) {
			return slices.Clone(raw), nil
		}
		return nil
	}
}

// WithBodyFunc sets a custom body producer.
func WithBodyFunc(fn BodyFunc) Option {
	return func(d *Descriptor) error {
		if fn == nil {
			return errors.New("body func must not be nil")
		}
		d.body = fn
		return nil
	}
}

// WithAuth sets the credential requirement. The default is [AuthInherit].
func WithAuth(req AuthRequirement) Option {
	return func(d *Descriptor) error {
		if req < AuthInherit || req > AuthHeader {
			return fmt.Errorf("unknown auth requirement %d", int(req))
		}
		d.auth = req
		return nil
	}
}

func validHeader(key, value string) error {
	if key == "" {
		return fmt.Errorf("header %w", ErrEmptyKey)
	}
	if !httpguts.ValidHeaderFieldName(key) {
		return fmt.Errorf("%w name %q", ErrInvalidHeader, key)
	}
	if !httpguts.ValidHeaderFieldValue(value) {
		return fmt.Errorf("%w value for %q", ErrInvalidHeader, key)
	}
	return nil
}
