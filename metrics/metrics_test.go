// SPDX-License-Identifier: MIT

package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
)

func TestRecordLogEvent(t *testing.T) {
	LogEvents.Reset()

	RecordLogEvent("info")
	RecordLogEvent("info")
	RecordLogEvent("error")

	if got := testutil.ToFloat64(LogEvents.WithLabelValues("info")); got != 2 {
		t.Errorf("expected 2 info events, got %f", got)
	}
	if got := testutil.ToFloat64(LogEvents.WithLabelValues("error")); got != 1 {
		t.Errorf("expected 1 error event, got %f", got)
	}
}

func TestRecordSuppressed(t *testing.T) {
	LogSuppressed.Reset()

	RecordSuppressed("once")
	RecordSuppressed("sampled")
	RecordSuppressed("sampled")

	if got := testutil.ToFloat64(LogSuppressed.WithLabelValues("sampled")); got != 2 {
		t.Errorf("expected 2 sampled suppressions, got %f", got)
	}
}

func TestRecordFilterReload(t *testing.T) {
	FilterReloads.Reset()

	RecordFilterReload("applied")
	RecordFilterReload("rejected")

	if got := testutil.ToFloat64(FilterReloads.WithLabelValues("applied")); got != 1 {
		t.Errorf("expected 1 applied reload, got %f", got)
	}
	if got := testutil.ToFloat64(FilterReloads.WithLabelValues("rejected")); got != 1 {
		t.Errorf("expected 1 rejected reload, got %f", got)
	}
}

func TestRecordPanic(t *testing.T) {
	PanicsRecovered.Reset()

	RecordPanic("asset-loader")
	RecordPanic("asset-loader")

	if got := testutil.ToFloat64(PanicsRecovered.WithLabelValues("asset-loader")); got != 2 {
		t.Errorf("expected 2 panics, got %f", got)
	}
}

func TestRecordSpanExport(t *testing.T) {
	SpanExports.Reset()
	SpansExported.Reset()

	RecordSpanExport("chrome", 5, nil)
	RecordSpanExport("chrome", 3, nil)
	RecordSpanExport("chrome", 0, errors.New("boom"))

	if got := testutil.ToFloat64(SpanExports.WithLabelValues("chrome", "ok")); got != 2 {
		t.Errorf("expected 2 ok batches, got %f", got)
	}
	if got := testutil.ToFloat64(SpanExports.WithLabelValues("chrome", "error")); got != 1 {
		t.Errorf("expected 1 error batch, got %f", got)
	}
	if got := testutil.ToFloat64(SpansExported.WithLabelValues("chrome")); got != 8 {
		t.Errorf("expected 8 spans exported, got %f", got)
	}
}

// TestCollectorsAreRegistered gathers the default registry and checks the
// collector families carry the diaglog namespace and expected labels.
func TestCollectorsAreRegistered(t *testing.T) {
	LogEvents.Reset()
	RecordLogEvent("warn")

	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}

	var found *dto.MetricFamily
	for _, mf := range families {
		if mf.GetName() == "diaglog_log_events_total" {
			found = mf
			break
		}
	}
	if found == nil {
		t.Fatal("diaglog_log_events_total not registered")
	}
	if found.GetType() != dto.MetricType_COUNTER {
		t.Errorf("expected counter, got %v", found.GetType())
	}

	var sawWarn bool
	for _, m := range found.GetMetric() {
		for _, lp := range m.GetLabel() {
			if lp.GetName() == "level" && lp.GetValue() == "warn" {
				sawWarn = true
			}
		}
	}
	if !sawWarn {
		t.Error("expected a level=warn series")
	}
}
