// SPDX-License-Identifier: MIT

package zlog

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/corefold/diaglog/metrics"
)

// Config captures options for configuring the global logger.
type Config struct {
	Level   string    // optional log level ("debug", "info", etc.)
	Output  io.Writer // optional writer (defaults to os.Stdout)
	Service string    // optional service name attached to every log entry
	Version string    // optional version attached to every log entry
	Filter  string    // optional directive filter; overrides Level when set
}

var (
	mu         sync.Mutex
	configured bool
	base       zerolog.Logger
)

// countingHook mirrors every emitted event into the level counters.
type countingHook struct{}

func (countingHook) Run(_ *zerolog.Event, level zerolog.Level, _ string) {
	if level == zerolog.NoLevel {
		return
	}
	metrics.RecordLogEvent(level.String())
}

// Configure initialises the global logger exactly once. Later calls are
// no-ops; use Reconfigure to replace an already configured logger.
func Configure(cfg Config) {
	mu.Lock()
	defer mu.Unlock()
	if configured {
		return
	}
	apply(cfg)
	configured = true
}

// Reconfigure replaces the global logger unconditionally. The host calls it
// after its manifest and environment are loaded.
func Reconfigure(cfg Config) {
	mu.Lock()
	defer mu.Unlock()
	apply(cfg)
	configured = true
}

func apply(cfg Config) {
	filter := cfg.Filter
	if filter == "" {
		filter = os.Getenv("DIAGLOG_FILTER")
	}

	var filterErr error
	applied := false
	if filter != "" {
		f, err := ParseFilter(filter)
		if err != nil {
			filterErr = err
		} else {
			setFilter(f)
			applied = true
		}
	}
	if !applied {
		// No filter, or an unparseable one: fall back to the plain level.
		level := zerolog.InfoLevel
		if cfg.Level != "" {
			if parsed, err := zerolog.ParseLevel(cfg.Level); err == nil {
				level = parsed
			}
		} else if env := os.Getenv("DIAGLOG_LEVEL"); env != "" {
			if parsed, err := zerolog.ParseLevel(env); err == nil {
				level = parsed
			}
		}
		setFilter(&Filter{def: level})
	}
	zerolog.TimeFieldFormat = time.RFC3339

	writer := cfg.Output
	if writer == nil {
		writer = os.Stdout
	}

	service := cfg.Service
	if service == "" {
		service = os.Getenv("DIAGLOG_SERVICE")
		if service == "" {
			service = "diaglog"
		}
	}

	ctx := zerolog.New(writer).Hook(countingHook{}).With().
		Timestamp().
		Str("service", service)
	if cfg.Version != "" {
		ctx = ctx.Str("version", cfg.Version)
	}
	base = ctx.Logger()

	if filterErr != nil {
		base.Warn().
			Err(filterErr).
			Str(FieldFilter, filter).
			Str(FieldEvent, "filter.config_rejected").
			Msg("invalid directive filter, using level fallback")
	}
}

func logger() zerolog.Logger {
	Configure(Config{})
	mu.Lock()
	defer mu.Unlock()
	return base
}

// Base returns the configured base logger instance, leveled at the filter's
// default level.
func Base() zerolog.Logger {
	return logger().Level(CurrentFilter().Default())
}

// WithComponent returns a child logger annotated with the given component
// name and leveled per the current directive filter.
func WithComponent(component string) zerolog.Logger {
	return logger().Level(CurrentFilter().LevelFor(component)).With().
		Str(FieldComponent, component).
		Logger()
}

// Derive attaches arbitrary fields to a child logger using the provided
// builder function.
func Derive(build func(*zerolog.Context)) zerolog.Logger {
	ctx := Base().With()
	if build != nil {
		build(&ctx)
	}
	return ctx.Logger()
}
