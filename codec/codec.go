// Package codec defines the serialization boundary used by the client to
// encode request bodies and decode response bodies.
//
// The default [JSON] codec is backed by [github.com/json-iterator/go] in its
// standard-library compatible mode, so `json` struct tags behave exactly as
// they do with [encoding/json].
package codec

import (
	"errors"
	"fmt"

	jsoniter "github.com/json-iterator/go"
)

// ErrNilValue is returned when a nil destination is handed to a Decoder.
var ErrNilValue = errors.New("decode destination must not be nil")

// Encoder turns a value into request body bytes.
type Encoder interface {
	Encode(v any) ([]byte, error)
}

// Decoder fills v, which must be a pointer, from response body bytes.
type Decoder interface {
	Decode(data []byte, v any) error
}

// Codec is an Encoder and Decoder pair that also reports the
// media type of the bytes it produces.
type Codec interface {
	Encoder
	Decoder
	ContentType() string
}

// JSONOption configures the JSON codec.
type JSONOption func(*jsonOpts)

type jsonOpts struct {
	useNumber             bool
	disallowUnknownFields bool
}

// WithUseNumber decodes numbers into interface values as
// json.Number instead of float64, preserving precision.
func WithUseNumber() JSONOption {
	return func(opts *jsonOpts) {
		opts.useNumber = true
	}
}

// WithDisallowUnknownFields rejects objects containing keys
// that do not map to a destination field.
func WithDisallowUnknownFields() JSONOption {
	return func(opts *jsonOpts) {
		opts.disallowUnknownFields = true
	}
}

type jsonCodec struct {
	api jsoniter.API
}

// JSON returns a Codec for application/json bodies.
func JSON(optFns ...JSONOption) Codec {
	var opts jsonOpts
	for _, opt := range optFns {
		opt(&opts)
	}

	cfg := jsoniter.Config{
		EscapeHTML:             true,
		SortMapKeys:            true,
		ValidateJsonRawMessage: true,
		UseNumber:              opts.useNumber,
		DisallowUnknownFields:  opts.disallowUnknownFields,
	}

	return jsonCodec{api: cfg.Froze()}
}

func (c jsonCodec) Encode(v any) ([]byte, error) {
	b, err := c.api.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("json encode: %w", err)
	}

	return b, nil
}

func (c jsonCodec) Decode(data []byte, v any) error {
	if v == nil {
		return ErrNilValue
	}

	if err := c.api.Unmarshal(data, v); err != nil {
		return fmt.Errorf("json decode: %w", err)
	}

	return nil
}

func (jsonCodec) ContentType() string { return "application/json" }
