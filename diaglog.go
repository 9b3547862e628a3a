// SPDX-License-Identifier: MIT

// Package diaglog boots a host application's observability stack from a
// declarative backend manifest: structured logging, span export, memory
// sampling and panic capture, composed per enabled feature flags and the
// build target's platform-conditional backend sets.
package diaglog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/corefold/diaglog/manifest"
	"github.com/corefold/diaglog/metrics"
	"github.com/corefold/diaglog/tracing"
	"github.com/corefold/diaglog/zlog"
)

// Backend names the runtime knows how to activate. A manifest may declare
// others; unknown planned backends are logged and skipped.
const (
	BackendConsole       = "console"
	BackendConsolePretty = "console-pretty"
	BackendLogfile       = "logfile"
	BackendOTLP          = "otlp"
	BackendChrome        = "chrome"
	BackendMemstats      = "memstats"
	BackendRecover       = "recover"
)

// Options configures Boot.
type Options struct {
	// ManifestPath locates the backend manifest. Ignored when Manifest is
	// set directly.
	ManifestPath string
	Manifest     *manifest.Manifest

	// Features lists the enabled feature flags.
	Features []string

	// Service and Version are attached to every log entry and the trace
	// resource.
	Service string
	Version string

	// Environment is the deployment environment reported in traces.
	Environment string

	// Filter is the initial directive filter, e.g. "info,renderer=error".
	Filter string

	// FilterFile, when set, is watched for directive changes at runtime.
	FilterFile string

	// Output overrides the planned log writers. Intended for tests.
	Output io.Writer

	// OTLPEndpoint overrides the otlp backend's collector endpoint.
	OTLPEndpoint string

	// ChromePath overrides the chrome backend's output file.
	ChromePath string

	// SamplingRate is the trace sampling rate (0.0 to 1.0). Zero means
	// sample everything; use a negative value to sample nothing.
	SamplingRate float64
}

// Runtime is the booted observability stack. Shut it down before the host
// exits so buffered spans and the chrome trace file are flushed.
type Runtime struct {
	RunID string
	Plan  manifest.Plan

	logger       zerolog.Logger
	provider     *tracing.Provider
	sampler      *metrics.MemSampler
	watcher      *FilterWatcher
	logfile      *os.File
	abortOnPanic bool
}

// Boot loads and validates the manifest, resolves the backend plan for the
// current build target, and activates every planned backend.
func Boot(ctx context.Context, opts Options) (*Runtime, error) {
	zlog.Configure(zlog.Config{})

	m := opts.Manifest
	if m == nil {
		if opts.ManifestPath == "" {
			return nil, errors.New("diaglog: manifest or manifest path is required")
		}
		var err error
		m, err = manifest.Load(opts.ManifestPath)
		if err != nil {
			return nil, err
		}
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}

	plan, err := m.Resolve(opts.Features, runtime.GOOS, runtime.GOARCH)
	if err != nil {
		return nil, err
	}

	rt := &Runtime{
		RunID: uuid.NewString(),
		Plan:  plan,
	}

	writer, err := rt.buildWriter(plan, opts)
	if err != nil {
		return nil, err
	}

	service := opts.Service
	if service == "" {
		service = m.Name
	}
	version := opts.Version
	if version == "" {
		version = m.Version
	}
	zlog.Reconfigure(zlog.Config{
		Filter:  opts.Filter,
		Output:  writer,
		Service: service,
		Version: version,
	})
	rt.logger = zlog.WithComponent("diaglog")

	rt.logger.Info().
		Str(zlog.FieldEvent, "boot.plan_resolved").
		Str(zlog.FieldRunID, rt.RunID).
		Str("target", runtime.GOOS+"/"+runtime.GOARCH).
		Strs(zlog.FieldFeatures, opts.Features).
		Strs("backends", plan.Names()).
		Msg("backend plan resolved")

	if err := rt.startTracing(ctx, plan, opts, service, version); err != nil {
		rt.closeQuietly()
		return nil, err
	}
	rt.startSampler(ctx, plan)
	rt.applyHooks(plan)

	if opts.FilterFile != "" {
		w, err := WatchFilterFile(opts.FilterFile)
		if err != nil {
			_ = rt.Shutdown(ctx)
			return nil, err
		}
		rt.watcher = w
	}

	rt.logger.Info().
		Str(zlog.FieldEvent, "boot.ready").
		Str(zlog.FieldFilter, zlog.CurrentFilter().String()).
		Msg("observability stack ready")

	return rt, nil
}

// Shutdown tears the stack down in reverse boot order and aggregates errors.
func (r *Runtime) Shutdown(ctx context.Context) error {
	var errs []error

	if r.watcher != nil {
		if err := r.watcher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("filter watcher: %w", err))
		}
		r.watcher = nil
	}
	if r.sampler != nil {
		r.sampler.Stop()
		r.sampler = nil
	}
	if r.provider != nil {
		if err := r.provider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracer provider: %w", err))
		}
		r.provider = nil
	}
	if len(errs) == 0 {
		// Logged before the logfile closes so the event reaches it.
		r.logger.Info().
			Str(zlog.FieldEvent, "shutdown.complete").
			Str(zlog.FieldRunID, r.RunID).
			Msg("observability stack stopped")
	}

	if r.logfile != nil {
		if err := r.logfile.Close(); err != nil {
			errs = append(errs, fmt.Errorf("logfile: %w", err))
		}
		r.logfile = nil
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// Watcher returns the filter-file watcher, or nil when none is running.
func (r *Runtime) Watcher() *FilterWatcher {
	return r.watcher
}

func (r *Runtime) buildWriter(plan manifest.Plan, opts Options) (io.Writer, error) {
	if opts.Output != nil {
		return opts.Output, nil
	}

	var writers []io.Writer
	for _, b := range plan.OfKind(manifest.KindWriter) {
		switch b.Name {
		case BackendConsole:
			writers = append(writers, os.Stdout)
		case BackendConsolePretty:
			writers = append(writers, zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly})
		case BackendLogfile:
			path := b.Backend.Settings["path"]
			if path == "" {
				return nil, fmt.Errorf("diaglog: backend %q: settings.path is required", b.Name)
			}
			f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
			if err != nil {
				return nil, fmt.Errorf("diaglog: backend %q: %w", b.Name, err)
			}
			r.logfile = f
			writers = append(writers, f)
		default:
			// Validated but not understood by this runtime build.
			logger := zlog.WithComponent("diaglog")
			logger.Warn().
				Str(zlog.FieldEvent, "boot.backend_skipped").
				Str(zlog.FieldBackend, b.Name).
				Msg("unknown writer backend")
		}
	}

	switch len(writers) {
	case 0:
		return os.Stdout, nil
	case 1:
		return writers[0], nil
	default:
		return zerolog.MultiLevelWriter(writers...), nil
	}
}

func (r *Runtime) startTracing(ctx context.Context, plan manifest.Plan, opts Options, service, version string) error {
	exporters := plan.OfKind(manifest.KindExporter)
	if len(exporters) == 0 {
		provider, err := tracing.NewProvider(ctx, tracing.Config{Enabled: false})
		if err != nil {
			return err
		}
		r.provider = provider
		return nil
	}

	// One batcher per provider; with several planned exporters the first
	// wins and the rest are reported.
	chosen := exporters[0]
	for _, extra := range exporters[1:] {
		r.logger.Warn().
			Str(zlog.FieldEvent, "boot.exporter_skipped").
			Str(zlog.FieldExporter, extra.Name).
			Msg("multiple span exporters planned; keeping the first")
	}

	cfg := tracing.Config{
		Enabled:        true,
		ServiceName:    service,
		ServiceVersion: version,
		Environment:    opts.Environment,
		SamplingRate:   opts.SamplingRate,
	}
	if cfg.SamplingRate == 0 {
		cfg.SamplingRate = 1.0
	} else if cfg.SamplingRate < 0 {
		cfg.SamplingRate = 0
	}

	switch chosen.Name {
	case BackendOTLP:
		cfg.ExporterType = chosen.Backend.Settings["protocol"]
		if cfg.ExporterType == "" {
			cfg.ExporterType = tracing.ExporterGRPC
		}
		cfg.Endpoint = opts.OTLPEndpoint
		if cfg.Endpoint == "" {
			cfg.Endpoint = chosen.Backend.Settings["endpoint"]
		}
		if cfg.Endpoint == "" {
			cfg.Endpoint = "localhost:4317"
		}
	case BackendChrome:
		cfg.ExporterType = tracing.ExporterChrome
		cfg.ChromePath = opts.ChromePath
		if cfg.ChromePath == "" {
			cfg.ChromePath = chosen.Backend.Settings["path"]
		}
		if cfg.ChromePath == "" {
			cfg.ChromePath = "trace.json"
		}
	default:
		return fmt.Errorf("diaglog: unknown exporter backend %q", chosen.Name)
	}

	provider, err := tracing.NewProvider(ctx, cfg)
	if err != nil {
		return err
	}
	r.provider = provider

	r.logger.Info().
		Str(zlog.FieldEvent, "boot.tracing_started").
		Str(zlog.FieldExporter, chosen.Name).
		Msg("span export active")
	return nil
}

func (r *Runtime) startSampler(ctx context.Context, plan manifest.Plan) {
	b, ok := plan.FirstOfKind(manifest.KindSampler)
	if !ok {
		return
	}
	interval := 5 * time.Second
	if raw := b.Backend.Settings["interval"]; raw != "" {
		if d, err := time.ParseDuration(raw); err == nil && d > 0 {
			interval = d
		} else {
			r.logger.Warn().
				Str(zlog.FieldEvent, "boot.bad_interval").
				Str(zlog.FieldBackend, b.Name).
				Str("interval", raw).
				Msg("unparseable sampler interval, using default")
		}
	}
	r.sampler = metrics.NewMemSampler(interval)
	r.sampler.Start(ctx)

	r.logger.Info().
		Str(zlog.FieldEvent, "boot.memsampler_started").
		Dur("interval", interval).
		Msg("memory sampler active")
}

func (r *Runtime) applyHooks(plan manifest.Plan) {
	for _, b := range plan.OfKind(manifest.KindHook) {
		if b.Name != BackendRecover {
			continue
		}
		if abort, err := strconv.ParseBool(b.Backend.Settings["abort"]); err == nil {
			r.abortOnPanic = abort
		}
	}
}

func (r *Runtime) closeQuietly() {
	if r.logfile != nil {
		_ = r.logfile.Close()
		r.logfile = nil
	}
}
