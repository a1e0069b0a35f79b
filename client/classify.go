package client

import (
	"fmt"
	"net/http"
	"unicode/utf8"

	"github.com/tidwall/gjson"
)

// outcomeKind tags the terminal result of one call.
type outcomeKind int

const (
	outcomeDecoded outcomeKind = iota
	outcomeDecodeFailure
	outcomeEmptySuccess
	outcomeHTTPFailure
	outcomeTransportError
	outcomeUnknown
	outcomeBuildError
)

// String is the label used in metrics.
func (k outcomeKind) String() string {
	switch k {
	case outcomeDecoded:
		return "decoded"
	case outcomeDecodeFailure:
		return "decode_failure"
	case outcomeEmptySuccess:
		return "empty_success"
	case outcomeHTTPFailure:
		return "http_failure"
	case outcomeTransportError:
		return "transport_error"
	case outcomeBuildError:
		return "build_error"
	default:
		return "unknown_response"
	}
}

type outcome[R any] struct {
	kind  outcomeKind
	value R
	err   error
}

// classify maps a transport outcome onto a typed result. A non-empty
// body is decoded whatever the status, unless the client is strict.
// resp may be nil when the transport failed.
func classify[R any](c *Client, resp *http.Response, body []byte, transportErr error, logArgs []any) outcome[R] {
	var status int
	if resp != nil {
		status = resp.StatusCode
	}

	switch {
	case len(body) > 0 && c.strict && status != 0 && !successful(status):
		return outcome[R]{kind: outcomeHTTPFailure, err: c.httpFailure(resp, body, logArgs)}

	case len(body) > 0:
		var v R
		if err := c.decoder.Decode(body, &v); err != nil {
			c.logger.Error("failed decoding", append(logArgs,
				"status", status,
				"type", fmt.Sprintf("%T", v),
				"detail", diagnostic(body),
				"error", err,
			)...)
			if utf8.Valid(body) {
				c.logger.Debug("stringified response", append(logArgs, "body", string(body))...)
			}

			return outcome[R]{
				kind: outcomeDecodeFailure,
				err: &DecodingError{
					StatusCode: status,
					Body:       body,
					Response:   resp,
					Err:        err,
				},
			}
		}

		return outcome[R]{kind: outcomeDecoded, value: v}

	case successful(status):
		return outcome[R]{
			kind: outcomeEmptySuccess,
			err:  &EmptyResponseError{StatusCode: status, Response: resp},
		}

	case status != 0:
		return outcome[R]{kind: outcomeHTTPFailure, err: c.httpFailure(resp, body, logArgs)}

	case transportErr != nil:
		c.logger.Warning("transport error", append(logArgs, "error", transportErr)...)

		return outcome[R]{
			kind: outcomeTransportError,
			err:  &TransportError{Err: transportErr},
		}

	default:
		c.logger.Error("unknown response shape", append(logArgs, "error", ErrUnknownResponse)...)

		return outcome[R]{kind: outcomeUnknown, err: ErrUnknownResponse}
	}
}

func (c *Client) httpFailure(resp *http.Response, body []byte, logArgs []any) error {
	c.logger.Warning("unexpected status", append(logArgs,
		"status", resp.StatusCode,
		"detail", diagnostic(body),
	)...)

	return newUnexpectedStatusError(resp, body)
}

func successful(status int) bool {
	return status >= http.StatusOK && status < http.StatusMultipleChoices
}

// diagnosticPaths are the fields APIs commonly put an error description in.
var diagnosticPaths = []string{"error.message", "error", "message", "detail"}

// diagnostic pulls a human readable error description out of a JSON
// body for logging. It returns "" when there is none.
func diagnostic(body []byte) string {
	if !gjson.ValidBytes(body) {
		return ""
	}

	for _, path := range diagnosticPaths {
		if r := gjson.GetBytes(body, path); r.Type == gjson.String {
			return r.Str
		}
	}

	return ""
}
