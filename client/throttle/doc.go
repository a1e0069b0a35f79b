// Package throttle provides an [http.RoundTripper] that rate-limits
// outbound HTTP requests using a token-bucket algorithm from
// [golang.org/x/time/rate].
//
// # Usage
//
// Wrap an existing transport with [NewRoundTripper]:
//
//	rt, err := throttle.NewRoundTripper(
//		throttle.Config{RPS: 10, Burst: 5},
//		logging.Slog(slog.Default()),
//		http.DefaultTransport,
//	)
//	httpClient := &http.Client{Transport: rt}
//
// Each destination host draws from its own bucket. When a host's rate
// limit is exceeded, outbound requests block until a token becomes
// available or the request context is cancelled.
package throttle
