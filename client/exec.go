package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/adamwoolhether/apiclient/endpoint"
)

// execute runs one acquired call: build, send, classify.
func execute[R any](ctx context.Context, c *Client, d endpoint.Descriptor, callID string) outcome[R] {
	ctx, span := c.tracer.Start(ctx, "apiclient.call",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", d.Method().String()),
			attribute.String("url.path", d.Path()),
			attribute.String("apiclient.fingerprint", d.Fingerprint().String()),
		),
	)
	defer span.End()

	logArgs := []any{"call_id", callID}

	req, err := c.build(ctx, d, logArgs...)
	if err != nil {
		c.logger.Error("failed building request", append(logArgs, "error", err)...)
		span.RecordError(err)
		span.SetStatus(codes.Error, outcomeBuildError.String())

		return outcome[R]{kind: outcomeBuildError, err: err}
	}

	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	start := time.Now()
	resp, body, err := c.send(req)
	if resp != nil {
		c.logger.Debug("http response received", append(logArgs,
			"status", resp.StatusCode,
			"url", c.redact(req.URL).String(),
			"header_keys", headerKeys(resp.Header),
			"duration", time.Since(start).String(),
		)...)
		span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))
	}

	out := classify[R](c, resp, body, err, logArgs)
	if out.err != nil {
		span.RecordError(out.err)
		span.SetStatus(codes.Error, out.kind.String())
	}

	return out
}

// send performs req and reads the whole body. On success resp.Body is
// replaced with a reader over the returned bytes so callers holding the
// response can still read it.
func (c *Client) send(req *http.Request) (*http.Response, []byte, error) {
	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("exec http do: %w", err)
	}

	rc := resp.Body
	defer func() {
		if err := rc.Close(); err != nil {
			c.logger.Error("failed to close response body", "error", err)
		}
	}()

	body, err := io.ReadAll(rc)
	if err != nil {
		return nil, nil, fmt.Errorf("reading response body: %w", err)
	}
	resp.Body = io.NopCloser(bytes.NewReader(body))

	return resp, body, nil
}
