package prommetrics

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goliatone/go-payzcore/core"
	"github.com/prometheus/client_golang/prometheus"
)

func scrape(t *testing.T, recorder *Recorder) string {
	t.Helper()
	server := httptest.NewServer(recorder.Handler())
	defer server.Close()
	resp, err := http.Get(server.URL)
	if err != nil {
		t.Fatalf("scrape metrics: %v", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read metrics: %v", err)
	}
	return string(body)
}

func TestMetricName(t *testing.T) {
	cases := map[string]string{
		"payzcore.transport.request.total": "payzcore_transport_request_total",
		" job.retry ":                      "job_retry",
		"9lives-count":                     "_9lives_count",
		"":                                 "",
	}
	for input, expected := range cases {
		if got := MetricName(input); got != expected {
			t.Fatalf("MetricName(%q) = %q, expected %q", input, got, expected)
		}
	}
}

func TestRecorderExportsCountersAndHistograms(t *testing.T) {
	recorder := NewRecorder()
	ctx := context.Background()

	tags := map[string]string{"operation": "request", "status": "success", "method": "GET", "ignored": "x"}
	recorder.IncCounter(ctx, "payzcore.transport.request.total", 1, tags)
	recorder.IncCounter(ctx, "payzcore.transport.request.total", 2, tags)
	recorder.ObserveHistogram(ctx, "payzcore.transport.request.duration_ms", 42, tags)

	out := scrape(t, recorder)
	if !strings.Contains(out, `payzcore_transport_request_total{error_kind="",event="",job_id="",method="GET",operation="request",status="success",status_code=""} 3`) {
		t.Fatalf("expected counter sample, got:\n%s", out)
	}
	if !strings.Contains(out, "payzcore_transport_request_duration_ms_count") {
		t.Fatalf("expected histogram samples, got:\n%s", out)
	}
	if strings.Contains(out, "ignored") {
		t.Fatalf("expected unknown tags to be dropped")
	}
}

func TestRecorderAsObserverSink(t *testing.T) {
	recorder := NewRecorder(WithLabels("operation", "status"))
	observer := core.Observer{Metrics: recorder, Prefix: "payzcore.webhooks"}

	observer.ObserveOperation(context.Background(), time.Now(), "process", errors.New("boom"), nil)

	out := scrape(t, recorder)
	if !strings.Contains(out, `payzcore_webhooks_process_total{operation="process",status="failure"} 1`) {
		t.Fatalf("expected observer counter, got:\n%s", out)
	}
}

func TestRecorderReportsRegistrationConflicts(t *testing.T) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(prometheus.NewCounter(prometheus.CounterOpts{Name: "taken_total", Help: "taken"}))

	var reported []string
	recorder := NewRecorder(WithRegistry(registry), WithErrorHandler(func(name string, _ error) {
		reported = append(reported, name)
	}))
	recorder.IncCounter(context.Background(), "taken.total", 1, nil)
	recorder.IncCounter(context.Background(), " ", 1, nil)

	if len(reported) != 2 || reported[0] != "taken.total" {
		t.Fatalf("expected conflict and empty name to be reported, got %#v", reported)
	}
}
