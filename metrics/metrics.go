// SPDX-License-Identifier: MIT

// Package metrics exposes Prometheus collectors for the diaglog runtime.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// LogEvents counts emitted log events by level.
	LogEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "diaglog",
			Subsystem: "log",
			Name:      "events_total",
			Help:      "Total log events emitted, by level",
		},
		[]string{"level"},
	)

	// LogSuppressed counts events dropped by once/sampled helpers.
	LogSuppressed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "diaglog",
			Subsystem: "log",
			Name:      "suppressed_total",
			Help:      "Log events suppressed by once or sampled logging",
		},
		[]string{"kind"}, // "once" | "sampled"
	)

	// FilterReloads counts directive-filter swaps by outcome.
	FilterReloads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "diaglog",
			Subsystem: "filter",
			Name:      "reloads_total",
			Help:      "Directive filter reload attempts by outcome",
		},
		[]string{"outcome"}, // "applied" | "rejected"
	)

	// PanicsRecovered counts panics captured by the panic hook.
	PanicsRecovered = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "diaglog",
			Name:      "panics_recovered_total",
			Help:      "Panics captured by the recover hook, by component",
		},
		[]string{"component"},
	)

	// SpanExports counts span export batches by exporter and outcome.
	SpanExports = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "diaglog",
			Subsystem: "trace",
			Name:      "span_export_batches_total",
			Help:      "Span export batches by exporter and outcome",
		},
		[]string{"exporter", "outcome"}, // outcome: "ok" | "error"
	)

	// SpansExported counts individual spans handed to an exporter.
	SpansExported = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "diaglog",
			Subsystem: "trace",
			Name:      "spans_exported_total",
			Help:      "Spans handed to an exporter",
		},
		[]string{"exporter"},
	)
)

// RecordLogEvent records one emitted log event at the given level.
func RecordLogEvent(level string) {
	LogEvents.WithLabelValues(level).Inc()
}

// RecordSuppressed records a suppressed once/sampled event.
func RecordSuppressed(kind string) {
	LogSuppressed.WithLabelValues(kind).Inc()
}

// RecordFilterReload records a filter reload attempt.
func RecordFilterReload(outcome string) {
	FilterReloads.WithLabelValues(outcome).Inc()
}

// RecordPanic records a recovered panic for a component.
func RecordPanic(component string) {
	PanicsRecovered.WithLabelValues(component).Inc()
}

// RecordSpanExport records an export batch of n spans for an exporter.
func RecordSpanExport(exporter string, n int, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	SpanExports.WithLabelValues(exporter, outcome).Inc()
	if n > 0 {
		SpansExported.WithLabelValues(exporter).Add(float64(n))
	}
}
