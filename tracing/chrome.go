// SPDX-License-Identifier: MIT

package tracing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/renameio/v2"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// ChromeExporter collects finished spans and writes them as a Chrome
// trace-event JSON file on shutdown. The file loads in chrome://tracing and
// Perfetto. Spans become complete ("X") events with microsecond timestamps;
// each instrumentation scope is rendered as its own named thread row.
type ChromeExporter struct {
	mu       sync.Mutex
	path     string
	pid      int
	events   []chromeEvent
	tids     map[string]int
	shutdown bool
}

type chromeEvent struct {
	Name  string            `json:"name"`
	Phase string            `json:"ph"`
	Ts    float64           `json:"ts"`
	Dur   float64           `json:"dur,omitempty"`
	Pid   int               `json:"pid"`
	Tid   int               `json:"tid"`
	Args  map[string]string `json:"args,omitempty"`
}

type chromeTrace struct {
	TraceEvents     []chromeEvent `json:"traceEvents"`
	DisplayTimeUnit string        `json:"displayTimeUnit"`
}

// ErrExporterShutdown is returned for exports after Shutdown.
var ErrExporterShutdown = errors.New("chrome exporter is shut down")

// NewChromeExporter creates an exporter writing to path. The parent
// directory must exist and be writable; this is checked up front so a bad
// path fails at boot rather than at shutdown.
func NewChromeExporter(path string) (*ChromeExporter, error) {
	if path == "" {
		return nil, errors.New("chrome exporter: output path is required")
	}
	dir := filepath.Dir(path)
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("chrome exporter: output directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("chrome exporter: %s is not a directory", dir)
	}
	return &ChromeExporter{
		path: path,
		pid:  os.Getpid(),
		tids: make(map[string]int),
	}, nil
}

// ExportSpans buffers the finished spans as trace events.
func (e *ChromeExporter) ExportSpans(_ context.Context, spans []sdktrace.ReadOnlySpan) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.shutdown {
		return ErrExporterShutdown
	}
	for _, span := range spans {
		start := span.StartTime()
		end := span.EndTime()
		dur := end.Sub(start)
		if dur < 0 {
			dur = 0
		}

		var args map[string]string
		if attrs := span.Attributes(); len(attrs) > 0 {
			args = make(map[string]string, len(attrs))
			for _, kv := range attrs {
				args[string(kv.Key)] = kv.Value.Emit()
			}
		}

		e.events = append(e.events, chromeEvent{
			Name:  span.Name(),
			Phase: "X",
			Ts:    float64(start.UnixNano()) / 1e3,
			Dur:   float64(dur.Nanoseconds()) / 1e3,
			Pid:   e.pid,
			Tid:   e.tid(span.InstrumentationScope().Name),
			Args:  args,
		})
	}
	return nil
}

// Shutdown writes the buffered trace file atomically. Further exports fail.
func (e *ChromeExporter) Shutdown(_ context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.shutdown {
		return nil
	}
	e.shutdown = true

	events := make([]chromeEvent, 0, len(e.events)+len(e.tids))
	for scope, tid := range e.tids {
		name := scope
		if name == "" {
			name = "default"
		}
		events = append(events, chromeEvent{
			Name:  "thread_name",
			Phase: "M",
			Pid:   e.pid,
			Tid:   tid,
			Args:  map[string]string{"name": name},
		})
	}
	events = append(events, e.events...)

	data, err := json.Marshal(chromeTrace{
		TraceEvents:     events,
		DisplayTimeUnit: "ms",
	})
	if err != nil {
		return fmt.Errorf("chrome exporter: marshal trace: %w", err)
	}
	if err := renameio.WriteFile(e.path, data, 0o644); err != nil {
		return fmt.Errorf("chrome exporter: write %s: %w", e.path, err)
	}
	return nil
}

// Path returns the output file path.
func (e *ChromeExporter) Path() string {
	return e.path
}

func (e *ChromeExporter) tid(scope string) int {
	if tid, ok := e.tids[scope]; ok {
		return tid
	}
	tid := len(e.tids) + 1
	e.tids[scope] = tid
	return tid
}
