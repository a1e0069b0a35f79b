// Package endpoint describes REST calls as typed, immutable values.
//
// An [Endpoint] pairs a [Descriptor] (path, method, auth requirement,
// headers, query and body) with the Go type its response decodes into:
//
//	getUser, err := endpoint.New[User](endpoint.MethodGet, "/users/1",
//		endpoint.WithHeader("Accept", "application/json"),
//		endpoint.WithQuery("expand", "teams"),
//	)
//
// Descriptors are read-only once built. Every accessor returns a copy.
package endpoint

import (
	"errors"
	"fmt"
	"net/http"
	"slices"

	"golang.org/x/net/http/httpguts"

	"github.com/adamwoolhether/apiclient/codec"
)

var (
	ErrInvalidMethod = errors.New("invalid method")
	ErrInvalidHeader = errors.New("invalid header")
	ErrEmptyKey      = errors.New("key must not be empty")
)

// Method is the HTTP verb of a request.
type Method string

const (
	MethodGet     Method = http.MethodGet
	MethodHead    Method = http.MethodHead
	MethodPost    Method = http.MethodPost
	MethodPut     Method = http.MethodPut
	MethodPatch   Method = http.MethodPatch
	MethodDelete  Method = http.MethodDelete
	MethodConnect Method = http.MethodConnect
	MethodOptions Method = http.MethodOptions
	MethodTrace   Method = http.MethodTrace
)

// Custom returns a non-standard method such as PROPFIND.
// The name is sent verbatim and must be a valid HTTP token.
func Custom(name string) Method {
	return Method(name)
}

func (m Method) String() string { return string(m) }

func (m Method) valid() bool {
	return m != "" && httpguts.ValidHeaderFieldName(string(m))
}

// AuthRequirement states whether and where the client credential is
// attached to a request.
type AuthRequirement int

const (
	// AuthInherit attaches the client credential, if any, at the
	// location the credential was configured with.
	AuthInherit AuthRequirement = iota
	// AuthNone never attaches the client credential.
	AuthNone
	// AuthQuery requires the credential and sends it as a query parameter.
	AuthQuery
	// AuthHeader requires the credential and sends it as a header.
	AuthHeader
)

func (a AuthRequirement) String() string {
	switch a {
	case AuthInherit:
		return "inherit"
	case AuthNone:
		return "none"
	case AuthQuery:
		return "query"
	case AuthHeader:
		return "header"
	default:
		return fmt.Sprintf("AuthRequirement(%d)", int(a))
	}
}

// Param is a single ordered key/value pair used for headers and query parameters.
type Param struct {
	Key   string
	Value string
}

// BodyFunc produces the request body. It receives the client's encoder
// so values can be serialized the same way responses are decoded.
type BodyFunc func(enc codec.Encoder) ([]byte, error)

// Descriptor is the shape of one logical request.
type Descriptor struct {
	path    string
	method  Method
	auth    AuthRequirement
	headers []Param
	query   []Param
	body    BodyFunc
}

// Endpoint is a Descriptor whose response decodes into R.
type Endpoint[R any] struct {
	Descriptor
}

// New builds an Endpoint for the given method and path relative to the
// client's base URL.
func New[R any](method Method, path string, optFns ...Option) (Endpoint[R], error) {
	d, err := NewDescriptor(method, path, optFns...)
	if err != nil {
		return Endpoint[R]{}, err
	}

	return Endpoint[R]{Descriptor: d}, nil
}

// NewDescriptor builds an untyped Descriptor.
func NewDescriptor(method Method, path string, optFns ...Option) (Descriptor, error) {
	if !method.valid() {
		return Descriptor{}, fmt.Errorf("%w: %q", ErrInvalidMethod, method)
	}

	d := Descriptor{
		path:   path,
		method: method,
	}

	for _, opt := range optFns {
		if err := opt(&d); err != nil {
			return Descriptor{}, fmt.Errorf("applying endpoint option: %w", err)
		}
	}

	return d, nil
}

// Path returns the path appended to the base URL.
func (d Descriptor) Path() string { return d.path }

// Method returns the HTTP method.
func (d Descriptor) Method() Method { return d.method }

// Auth returns the credential requirement.
func (d Descriptor) Auth() AuthRequirement { return d.auth }

// Headers returns the headers in declaration order.
func (d Descriptor) Headers() []Param { return slices.Clone(d.headers) }

// Query returns the query parameters in declaration order.
func (d Descriptor) Query() []Param { return slices.Clone(d.query) }

// HasBody reports whether the descriptor carries a body producer.
func (d Descriptor) HasBody() bool { return d.body != nil }

// Body runs the body producer with enc. A descriptor without a body
// returns nil bytes and a nil error.
func (d Descriptor) Body(enc codec.Encoder) ([]byte, error) {
	if d.body == nil {
		return nil, nil
	}

	return d.body(enc)
}
