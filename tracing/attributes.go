// SPDX-License-Identifier: MIT

package tracing

import (
	"go.opentelemetry.io/otel/attribute"
)

// Common attribute keys for consistent tracing across host systems.
const (
	// Frame loop attributes
	FrameNumberKey     = "frame.number"
	FrameDurationKey   = "frame.duration_ms"
	FrameBudgetOverKey = "frame.over_budget"

	// System attributes
	SystemNameKey  = "system.name"
	SystemStageKey = "system.stage"

	// Asset attributes
	AssetPathKey  = "asset.path"
	AssetKindKey  = "asset.kind"
	AssetBytesKey = "asset.bytes"

	// Error attributes
	ErrorKey     = "error"
	ErrorTypeKey = "error.type"
)

// FrameAttributes creates frame-loop span attributes.
func FrameAttributes(number uint64, durationMS float64, overBudget bool) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Int64(FrameNumberKey, int64(number)),
		attribute.Float64(FrameDurationKey, durationMS),
		attribute.Bool(FrameBudgetOverKey, overBudget),
	}
}

// SystemAttributes creates system-execution span attributes.
func SystemAttributes(name, stage string) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, 2)
	if name != "" {
		attrs = append(attrs, attribute.String(SystemNameKey, name))
	}
	if stage != "" {
		attrs = append(attrs, attribute.String(SystemStageKey, stage))
	}
	return attrs
}

// AssetAttributes creates asset-loading span attributes.
func AssetAttributes(path, kind string, bytes int64) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(AssetPathKey, path),
		attribute.String(AssetKindKey, kind),
		attribute.Int64(AssetBytesKey, bytes),
	}
}

// ErrorAttributes creates error span attributes.
func ErrorAttributes(_ error, errorType string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Bool(ErrorKey, true),
		attribute.String(ErrorTypeKey, errorType),
	}
}
