// SPDX-License-Identifier: MIT

package zlog

// Canonical field name constants for structured logging.
const (
	// Identity fields
	FieldRunID     = "run_id"
	FieldRequestID = "request_id"
	FieldSystem    = "system"
	FieldFrame     = "frame"

	// Process / pipeline fields
	FieldEvent     = "event"
	FieldComponent = "component"
	FieldBackend   = "backend"
	FieldFeatures  = "features"
	FieldExporter  = "exporter"

	// Filter fields
	FieldFilter    = "filter"
	FieldOldFilter = "old_filter"
	FieldNewFilter = "new_filter"

	// Path fields
	FieldPath         = "path"
	FieldManifestPath = "manifest_path"

	// Panic fields
	FieldPanicValue = "panic_value"
	FieldStack      = "stack"
)
