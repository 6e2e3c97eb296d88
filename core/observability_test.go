package core

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestObserver_RecordsSuccess(t *testing.T) {
	metrics := &captureMetricsRecorder{}
	logger := newCaptureLogger()
	observer := Observer{Logger: logger, Metrics: metrics, Prefix: "payzcore.transport"}

	observer.ObserveOperation(context.Background(), time.Now(), "request", nil, map[string]any{
		"method":      "GET",
		"status_code": 200,
		"path":        "/v1/payments",
	})

	if len(metrics.counters) != 1 {
		t.Fatalf("expected one counter, got %d", len(metrics.counters))
	}
	counter := metrics.counters[0]
	if counter.name != "payzcore.transport.request.total" {
		t.Fatalf("unexpected counter name %q", counter.name)
	}
	if counter.tags["status"] != "success" || counter.tags["method"] != "GET" || counter.tags["status_code"] != "200" {
		t.Fatalf("unexpected counter tags %#v", counter.tags)
	}
	if _, ok := counter.tags["path"]; ok {
		t.Fatalf("expected path to stay out of metric tags")
	}
	if len(metrics.histograms) != 1 || metrics.histograms[0].name != "payzcore.transport.request.duration_ms" {
		t.Fatalf("expected duration histogram, got %#v", metrics.histograms)
	}

	records := logger.snapshot()
	if len(records) != 1 || records[0].level != "debug" {
		t.Fatalf("expected one debug log, got %#v", records)
	}
	if records[0].fields["path"] != "/v1/payments" {
		t.Fatalf("expected path in log fields, got %#v", records[0].fields)
	}
}

func TestObserver_RecordsFailure(t *testing.T) {
	metrics := &captureMetricsRecorder{}
	logger := newCaptureLogger()
	observer := Observer{Logger: logger, Metrics: metrics}

	observer.ObserveOperation(context.Background(), time.Now(), "Webhook Process", errors.New("bad signature"), nil)

	if metrics.counters[0].name != "webhook_process.total" {
		t.Fatalf("expected normalized operation name, got %q", metrics.counters[0].name)
	}
	if metrics.counters[0].tags["status"] != "failure" {
		t.Fatalf("expected failure status tag")
	}
	records := logger.snapshot()
	if len(records) != 1 || records[0].level != "error" {
		t.Fatalf("expected one error log, got %#v", records)
	}
	if records[0].fields["error"] != "bad signature" {
		t.Fatalf("expected error field, got %#v", records[0].fields)
	}
}

func TestObserver_ZeroValueIsSafe(t *testing.T) {
	Observer{}.ObserveOperation(context.Background(), time.Now(), "request", nil, nil)
	Observer{}.Log(context.Background(), "warn", "ignored", nil)
}
