package client

import (
	"errors"
	"fmt"
	"net/http"
)

// maxErrBodySize caps the response body copied into an
// UnexpectedStatusError. The full body stays readable on Response.
const maxErrBodySize = 4 << 10 // 4KB

var (
	// ErrDuplicateRequest is returned when a call with the same fingerprint
	// is already in flight on the client. Retry after it completes.
	ErrDuplicateRequest = errors.New("duplicate request")
	// ErrBuild is the sentinel wrapped by [BuildError].
	ErrBuild = errors.New("building request")
	// ErrMissingCredential is wrapped in a [BuildError] when an endpoint
	// requires authentication and the client has no credential.
	ErrMissingCredential = errors.New("missing credential")
	// ErrTransport is the sentinel wrapped by [TransportError].
	ErrTransport = errors.New("transport error")
	// ErrDecoding is the sentinel wrapped by [DecodingError].
	ErrDecoding = errors.New("decoding response")
	// ErrEmptyResponse is the sentinel wrapped by [EmptyResponseError].
	ErrEmptyResponse = errors.New("successful empty response")
	// ErrUnexpectedStatusCode is the sentinel wrapped by [UnexpectedStatusError].
	ErrUnexpectedStatusCode = errors.New("unexpected status code")
	// ErrAuthFailure is joined with [ErrUnexpectedStatusCode] when the server
	// responds with 401 Unauthorized or 403 Forbidden.
	ErrAuthFailure = errors.New("auth failure")
	// ErrUnknownResponse is returned when the transport produced neither a
	// body, a status code nor an error.
	ErrUnknownResponse = errors.New("unknown response shape")
)

// BuildError is returned when the request could not be assembled, before
// any network I/O.
type BuildError struct {
	Err error
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("%v: %v", ErrBuild, e.Err)
}

func (e *BuildError) Unwrap() []error {
	return []error{ErrBuild, e.Err}
}

// TransportError wraps a failure of the underlying HTTP transport such as
// DNS, TLS, timeouts, cancellation or a connection reset.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%v: %v", ErrTransport, e.Err)
}

func (e *TransportError) Unwrap() []error {
	return []error{ErrTransport, e.Err}
}

// DecodingError is returned when a response body did not decode into the
// endpoint's response type.
type DecodingError struct {
	StatusCode int
	Body       []byte
	Response   *http.Response
	Err        error
}

func (e *DecodingError) Error() string {
	return fmt.Sprintf("%v (status %d): %v", ErrDecoding, e.StatusCode, e.Err)
}

func (e *DecodingError) Unwrap() []error {
	return []error{ErrDecoding, e.Err}
}

// EmptyResponseError is returned for a 2xx response without a body, since
// the endpoint's response type demands content.
type EmptyResponseError struct {
	StatusCode int
	Response   *http.Response
}

func (e *EmptyResponseError) Error() string {
	return fmt.Sprintf("%v: %d", ErrEmptyResponse, e.StatusCode)
}

func (e *EmptyResponseError) Unwrap() error {
	return ErrEmptyResponse
}

// UnexpectedStatusError is returned for a response whose status code is
// outside [200, 300).
type UnexpectedStatusError struct {
	StatusCode int
	Body       string
	Response   *http.Response
	Err        error
}

func (e *UnexpectedStatusError) Error() string {
	return fmt.Sprintf("%v: %d, body: %s", e.Err, e.StatusCode, e.Body)
}

func (e *UnexpectedStatusError) Unwrap() error {
	return e.Err
}

func newUnexpectedStatusError(resp *http.Response, body []byte) *UnexpectedStatusError {
	err := ErrUnexpectedStatusCode
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		err = fmt.Errorf("%w: %w", ErrAuthFailure, ErrUnexpectedStatusCode)
	}

	if len(body) > maxErrBodySize {
		body = body[:maxErrBodySize]
	}

	return &UnexpectedStatusError{
		StatusCode: resp.StatusCode,
		Body:       string(body),
		Response:   resp,
		Err:        err,
	}
}
