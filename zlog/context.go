// SPDX-License-Identifier: MIT

// Package zlog provides structured logging for diaglog hosts: a zerolog
// global logger, a per-component directive filter, context plumbing, and
// once/sampled emission helpers.
package zlog

import (
	"context"

	"github.com/rs/zerolog"
)

type ctxKey string

const (
	runIDKey  ctxKey = "run_id"
	systemKey ctxKey = "system"
	frameKey  ctxKey = "frame"
)

// ContextWithRunID stores the host run ID in the context.
func ContextWithRunID(ctx context.Context, id string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, runIDKey, id)
}

// ContextWithSystem stores the executing system's name in the context.
func ContextWithSystem(ctx context.Context, name string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, systemKey, name)
}

// ContextWithFrame stores the current frame number in the context.
func ContextWithFrame(ctx context.Context, frame uint64) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, frameKey, frame)
}

// RunIDFromContext extracts the run ID from context if present.
func RunIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(runIDKey).(string); ok {
		return v
	}
	return ""
}

// SystemFromContext extracts the system name from context if present.
func SystemFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(systemKey).(string); ok {
		return v
	}
	return ""
}

// FrameFromContext extracts the frame number from context. The second return
// reports whether a frame was set.
func FrameFromContext(ctx context.Context) (uint64, bool) {
	if ctx == nil {
		return 0, false
	}
	v, ok := ctx.Value(frameKey).(uint64)
	return v, ok
}

// WithContext enriches the supplied logger with correlation fields from
// context.
func WithContext(ctx context.Context, logger zerolog.Logger) zerolog.Logger {
	if ctx == nil {
		return logger
	}
	builder := logger.With()
	added := false
	if id := RunIDFromContext(ctx); id != "" {
		builder = builder.Str(FieldRunID, id)
		added = true
	}
	if sys := SystemFromContext(ctx); sys != "" {
		builder = builder.Str(FieldSystem, sys)
		added = true
	}
	if frame, ok := FrameFromContext(ctx); ok {
		builder = builder.Uint64(FieldFrame, frame)
		added = true
	}
	if !added {
		return logger
	}
	return builder.Logger()
}

// WithComponentFromContext returns a component logger enriched with
// correlation fields from ctx.
func WithComponentFromContext(ctx context.Context, component string) zerolog.Logger {
	return WithContext(ctx, WithComponent(component))
}

// FromContext returns a logger from the context, or the base logger if none
// is attached.
func FromContext(ctx context.Context) *zerolog.Logger {
	if ctx == nil {
		l := Base()
		return &l
	}
	l := zerolog.Ctx(ctx)
	if l.GetLevel() == zerolog.Disabled {
		b := Base()
		return &b
	}
	return l
}
