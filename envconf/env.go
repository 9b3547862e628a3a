// SPDX-License-Identifier: MIT

// Package envconf reads typed configuration values from the environment,
// logging the source of every value for observability.
package envconf

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/corefold/diaglog/zlog"
)

// String reads a string from an environment variable or returns the default.
func String(key, defaultValue string) string {
	return stringWithLogger(zlog.WithComponent("envconf"), key, defaultValue)
}

func stringWithLogger(logger zerolog.Logger, key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		lowerKey := strings.ToLower(key)
		switch {
		case strings.Contains(lowerKey, "token") || strings.Contains(lowerKey, "password") || strings.Contains(lowerKey, "secret"):
			logger.Debug().
				Str("key", key).
				Str("source", "environment").
				Bool("sensitive", true).
				Msg("using environment variable")
		case value == "":
			logger.Debug().
				Str("key", key).
				Str("default", defaultValue).
				Str("source", "default").
				Msg("using default value (environment variable is empty)")
			return defaultValue
		default:
			logger.Debug().
				Str("key", key).
				Str("value", value).
				Str("source", "environment").
				Msg("using environment variable")
		}
		return value
	}
	logger.Debug().
		Str("key", key).
		Str("default", defaultValue).
		Str("source", "default").
		Msg("using default value")
	return defaultValue
}

// Bool reads a boolean from an environment variable or returns the default.
// Invalid values fall back to the default.
func Bool(key string, defaultValue bool) bool {
	logger := zlog.WithComponent("envconf")
	if v, ok := os.LookupEnv(key); ok && v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			logger.Warn().
				Str("key", key).
				Str("value", v).
				Bool("default", defaultValue).
				Msg("invalid boolean, using default")
			return defaultValue
		}
		return parsed
	}
	return defaultValue
}

// Int reads an integer from an environment variable or returns the default.
// Invalid values fall back to the default.
func Int(key string, defaultValue int) int {
	logger := zlog.WithComponent("envconf")
	if v, ok := os.LookupEnv(key); ok && v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			logger.Warn().
				Str("key", key).
				Str("value", v).
				Int("default", defaultValue).
				Msg("invalid integer, using default")
			return defaultValue
		}
		return parsed
	}
	return defaultValue
}

// Duration reads a duration from an environment variable or returns the
// default. Invalid values fall back to the default.
func Duration(key string, defaultValue time.Duration) time.Duration {
	logger := zlog.WithComponent("envconf")
	if v, ok := os.LookupEnv(key); ok && v != "" {
		parsed, err := time.ParseDuration(v)
		if err != nil {
			logger.Warn().
				Str("key", key).
				Str("value", v).
				Dur("default", defaultValue).
				Msg("invalid duration, using default")
			return defaultValue
		}
		return parsed
	}
	return defaultValue
}

// Float reads a float from an environment variable or returns the default.
// Invalid values fall back to the default.
func Float(key string, defaultValue float64) float64 {
	logger := zlog.WithComponent("envconf")
	if v, ok := os.LookupEnv(key); ok && v != "" {
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil {
			logger.Warn().
				Str("key", key).
				Str("value", v).
				Float64("default", defaultValue).
				Msg("invalid float, using default")
			return defaultValue
		}
		return parsed
	}
	return defaultValue
}

// Strings reads a comma-separated list from an environment variable or
// returns the default. Empty items are dropped.
func Strings(key string, defaultValue []string) []string {
	v, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(v) == "" {
		return defaultValue
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
