package metrics_test

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/adamwoolhether/apiclient/metrics"
)

func TestRecorder(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := metrics.New(reg)

	r.Started()
	r.Started()
	r.Finished("GET", "decoded", 10*time.Millisecond)
	r.Duplicate("GET")
	r.Duplicate("GET")

	count, err := testutil.GatherAndCount(reg, "apiclient_requests_total")
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if count != 1 {
		t.Errorf("exp 1 requests_total series; got %d", count)
	}

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}

	values := map[string]float64{}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			switch {
			case m.GetCounter() != nil:
				values[mf.GetName()] += m.GetCounter().GetValue()
			case m.GetGauge() != nil:
				values[mf.GetName()] = m.GetGauge().GetValue()
			case m.GetHistogram() != nil:
				values[mf.GetName()] = float64(m.GetHistogram().GetSampleCount())
			}
		}
	}

	testCases := map[string]float64{
		"apiclient_requests_total":           1,
		"apiclient_duplicates_total":         2,
		"apiclient_requests_in_flight":       1,
		"apiclient_request_duration_seconds": 1,
	}
	for name, exp := range testCases {
		if got := values[name]; got != exp {
			t.Errorf("%s: exp %v; got %v", name, exp, got)
		}
	}
}

func TestRecorder_Nil(t *testing.T) {
	var r *metrics.Recorder

	r.Started()
	r.Finished("GET", "decoded", time.Second)
	r.Duplicate("GET")
}
