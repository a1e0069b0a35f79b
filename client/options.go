package client

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/adamwoolhether/apiclient/client/throttle"
	"github.com/adamwoolhether/apiclient/codec"
	"github.com/adamwoolhether/apiclient/inflight"
	"github.com/adamwoolhether/apiclient/logging"
	"github.com/adamwoolhether/apiclient/metrics"
)

// Option is a functional option for configuring a [Client] via [Build].
type Option func(*options) error
type options struct {
	client            *http.Client
	rt                http.RoundTripper
	timeout           *time.Duration
	userAgent         string
	throttle          *throttle.Config
	noFollowRedirects bool
	logger            logging.Logger
	codec             codec.Codec
	encoder           codec.Encoder
	contentType       string
	decoder           codec.Decoder
	cred              *Credential
	registry          inflight.Registry
	tracer            trace.Tracer
	metrics           *metrics.Recorder
	strict            bool
}

// WithClient uses a copy of hc as the underlying [http.Client].
// Its Transport, if set, becomes the base transport.
func WithClient(hc *http.Client) Option {
	return func(c *options) error {
		if hc == nil {
			return errors.New("client must not be nil")
		}
		c.client = hc
		return nil
	}
}

// WithTransport sets a custom [http.RoundTripper] as the base transport.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *options) error {
		if rt == nil {
			return errors.New("transport must not be nil")
		}
		c.rt = rt
		return nil
	}
}

// WithTimeout sets the overall request timeout on the underlying [http.Client].
func WithTimeout(d time.Duration) Option {
	return func(c *options) error {
		if d < 0 {
			return errors.New("timeout must not be negative")
		}
		c.timeout = &d
		return nil
	}
}

// WithUserAgent adds a persistent User-Agent header to all outgoing requests.
func WithUserAgent(header string) Option {
	return func(c *options) error {
		c.userAgent = header
		return nil
	}
}

// WithThrottle enables token-bucket rate limiting with the given requests per second and burst capacity.
// Each destination host gets its own bucket.
func WithThrottle(rps, burst int) Option {
	return func(c *options) error {
		if rps <= 0 || burst <= 0 {
			return fmt.Errorf("rps[%d] and burst[%d] %w", rps, burst, throttle.ErrMustNotBeZero)
		}
		c.throttle = &throttle.Config{RPS: rps, Burst: burst}
		return nil
	}
}

// WithNoFollowRedirects prevents the [Client] from following HTTP redirects.
func WithNoFollowRedirects() Option {
	return func(c *options) error {
		c.noFollowRedirects = true
		return nil
	}
}

// WithLogger injects a [logging.Logger] into the [Client].
// Without it the client logs nothing.
func WithLogger(logger logging.Logger) Option {
	return func(c *options) error {
		if logger == nil {
			return errors.New("logger must not be nil")
		}
		c.logger = logger
		return nil
	}
}

// WithCodec replaces the default JSON codec for both request
// and response bodies.
func WithCodec(cdc codec.Codec) Option {
	return func(c *options) error {
		if cdc == nil {
			return errors.New("codec must not be nil")
		}
		c.codec = cdc
		return nil
	}
}

// WithEncoder sets the request body encoder and the Content-Type
// sent with encoded bodies. It takes precedence over [WithCodec].
func WithEncoder(enc codec.Encoder, contentType string) Option {
	return func(c *options) error {
		if enc == nil {
			return errors.New("encoder must not be nil")
		}
		if contentType == "" {
			return errors.New("content type must not be empty")
		}
		c.encoder = enc
		c.contentType = contentType
		return nil
	}
}

// WithDecoder sets the response body decoder. It takes precedence over [WithCodec].
func WithDecoder(dec codec.Decoder) Option {
	return func(c *options) error {
		if dec == nil {
			return errors.New("decoder must not be nil")
		}
		c.decoder = dec
		return nil
	}
}

// WithAuthentication sets the client's credential. Endpoints inject it
// according to their [endpoint.AuthRequirement].
func WithAuthentication(cred *Credential) Option {
	return func(c *options) error {
		if cred == nil {
			return errors.New("credential must not be nil")
		}
		c.cred = cred
		return nil
	}
}

// WithRegistry replaces the client's private in-flight registry.
// Clients sharing a registry suppress each other's duplicates.
func WithRegistry(reg inflight.Registry) Option {
	return func(c *options) error {
		if reg == nil {
			return errors.New("registry must not be nil")
		}
		c.registry = reg
		return nil
	}
}

// WithTracer starts a client span for each call. Trace context is
// propagated with the global [otel.GetTextMapPropagator].
func WithTracer(tracer trace.Tracer) Option {
	return func(c *options) error {
		c.tracer = tracer
		return nil
	}
}

// WithMetrics records call outcomes on r.
func WithMetrics(r *metrics.Recorder) Option {
	return func(c *options) error {
		c.metrics = r
		return nil
	}
}

// WithStrictStatus treats every response outside [200, 300) as an
// [UnexpectedStatusError], even when it carries a body. By default a
// body is always decoded regardless of status.
func WithStrictStatus() Option {
	return func(c *options) error {
		c.strict = true
		return nil
	}
}
