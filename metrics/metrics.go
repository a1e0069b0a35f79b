// Package metrics exposes Prometheus instrumentation for the request pipeline.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder counts calls by outcome, tracks the in-flight gauge and
// observes call duration. A nil *Recorder is valid and records nothing.
type Recorder struct {
	requests   *prometheus.CounterVec
	duplicates *prometheus.CounterVec
	inFlight   prometheus.Gauge
	duration   *prometheus.HistogramVec
}

// New registers the collectors on reg. A nil reg uses
// [prometheus.DefaultRegisterer]. Registering twice on the same
// registerer panics, as with any promauto collector.
func New(reg prometheus.Registerer) *Recorder {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	return &Recorder{
		requests: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "apiclient_requests_total",
				Help: "Total number of completed calls by terminal outcome",
			},
			[]string{"method", "outcome"},
		),
		duplicates: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "apiclient_duplicates_total",
				Help: "Total number of calls rejected because an identical call was in flight",
			},
			[]string{"method"},
		),
		inFlight: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Name: "apiclient_requests_in_flight",
				Help: "Number of calls currently holding an in-flight fingerprint",
			},
		),
		duration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "apiclient_request_duration_seconds",
				Help:    "Duration of calls from acquisition to release",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "outcome"},
		),
	}
}

// Started marks a call as in flight.
func (r *Recorder) Started() {
	if r == nil {
		return
	}
	r.inFlight.Inc()
}

// Finished records a terminal outcome and leaves the in-flight gauge.
func (r *Recorder) Finished(method, outcome string, d time.Duration) {
	if r == nil {
		return
	}
	r.inFlight.Dec()
	r.requests.WithLabelValues(method, outcome).Inc()
	r.duration.WithLabelValues(method, outcome).Observe(d.Seconds())
}

// Duplicate counts a suppressed call.
func (r *Recorder) Duplicate(method string) {
	if r == nil {
		return
	}
	r.duplicates.WithLabelValues(method).Inc()
}
