package client

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/adamwoolhether/apiclient/client/throttle"
	"github.com/adamwoolhether/apiclient/codec"
	"github.com/adamwoolhether/apiclient/inflight"
	"github.com/adamwoolhether/apiclient/logging"
	"github.com/adamwoolhether/apiclient/metrics"
)

// ErrInvalidBaseURL is returned by Build when the base URL is not absolute.
var ErrInvalidBaseURL = errors.New("base url must be absolute")

// Client executes endpoints against a single API surface.
// It holds the configuration and the in-flight registry shared by
// every call made through it, and is safe for concurrent use.
type Client struct {
	hc          *http.Client
	baseURL     *url.URL
	encoder     codec.Encoder
	decoder     codec.Decoder
	contentType string
	cred        *Credential
	registry    inflight.Registry
	logger      logging.Logger
	tracer      trace.Tracer
	metrics     *metrics.Recorder
	strict      bool
}

// Build returns a Client rooted at baseURL. Endpoint paths are joined
// onto it and its query parameters are sent with every request.
func Build(baseURL string, optFns ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidBaseURL, baseURL)
	}

	var opts options
	for _, opt := range optFns {
		if err := opt(&opts); err != nil {
			return nil, fmt.Errorf("applying client option: %w", err)
		}
	}

	jsonCodec := codec.JSON()

	client := &Client{
		hc:          &http.Client{},
		baseURL:     u,
		encoder:     jsonCodec,
		decoder:     jsonCodec,
		contentType: jsonCodec.ContentType(),
		cred:        opts.cred,
		registry:    opts.registry,
		logger:      opts.logger,
		tracer:      opts.tracer,
		metrics:     opts.metrics,
		strict:      opts.strict,
	}

	if opts.codec != nil {
		client.encoder = opts.codec
		client.decoder = opts.codec
		client.contentType = opts.codec.ContentType()
	}
	if opts.encoder != nil {
		client.encoder = opts.encoder
		client.contentType = opts.contentType
	}
	if opts.decoder != nil {
		client.decoder = opts.decoder
	}
	if client.registry == nil {
		client.registry = inflight.New()
	}
	if client.logger == nil {
		client.logger = logging.Nop()
	}
	if client.tracer == nil {
		client.tracer = noop.NewTracerProvider().Tracer("no-op tracer")
	}

	if opts.client != nil {
		cpy := *opts.client
		client.hc = &cpy
	}

	if opts.timeout != nil {
		client.hc.Timeout = *opts.timeout
	}

	if opts.noFollowRedirects {
		client.hc.CheckRedirect = func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		}
	}

	var transport http.RoundTripper
	switch {
	case opts.rt != nil:
		transport = opts.rt
	case opts.client != nil && opts.client.Transport != nil:
		transport = opts.client.Transport
	default:
		transport = http.DefaultTransport
	}
	if opts.userAgent != "" {
		transport = userAgent{value: opts.userAgent, base: transport}
	}
	if opts.throttle != nil {
		rt, err := throttle.NewRoundTripper(*opts.throttle, client.logger, transport)
		if err != nil {
			return nil, fmt.Errorf("configuring throttle: %w", err)
		}
		transport = rt
	}
	client.hc.Transport = transport

	return client, nil
}

// BaseURL returns a copy of the URL endpoint paths are resolved against.
func (c *Client) BaseURL() *url.URL {
	u := *c.baseURL
	return &u
}

// Credential returns the client's credential, or nil if none was configured.
// Updating it affects every request built afterwards.
func (c *Client) Credential() *Credential {
	return c.cred
}

// userAgent is an http.RoundTripper, enabling the persistent User-Agent header.
type userAgent struct {
	value string
	base  http.RoundTripper
}

func (ua userAgent) RoundTrip(r *http.Request) (*http.Response, error) {
	cpy := r.Clone(r.Context())
	cpy.Header.Set("User-Agent", ua.value)
	return ua.base.RoundTrip(cpy)
}
