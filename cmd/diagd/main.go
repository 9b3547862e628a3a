// SPDX-License-Identifier: MIT

// diagd is a reference host for the diaglog runtime: it boots the
// observability stack from a backend manifest, serves the diagnostics HTTP
// surface, and keeps the directive filter hot-reloadable until terminated.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/corefold/diaglog"
	"github.com/corefold/diaglog/diagserver"
	"github.com/corefold/diaglog/envconf"
	"github.com/corefold/diaglog/zlog"
)

var (
	version   = "v0.3.1"
	commit    = "none"
	buildDate = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "print version and exit")
	manifestPath := flag.String("manifest", "", "path to backend manifest (YAML)")
	flag.Parse()

	if *showVersion {
		fmt.Printf("%s (commit: %s, built: %s)\n", version, commit, buildDate)
		os.Exit(0)
	}

	// Safe defaults until the manifest is loaded; Boot reconfigures.
	zlog.Configure(zlog.Config{
		Level:   "info",
		Service: "diagd",
		Version: version,
	})
	logger := zlog.WithComponent("diagd")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	path := *manifestPath
	if path == "" {
		path = envconf.String("DIAGD_MANIFEST", "diaglog.yaml")
	}

	opts := diaglog.Options{
		ManifestPath: path,
		Features:     envconf.Strings("DIAGD_FEATURES", nil),
		Service:      envconf.String("DIAGD_SERVICE", "diagd"),
		Version:      version,
		Environment:  envconf.String("DIAGD_ENV", "development"),
		Filter:       envconf.String("DIAGD_FILTER", ""),
		FilterFile:   envconf.String("DIAGD_FILTER_FILE", ""),
		OTLPEndpoint: envconf.String("DIAGD_OTLP_ENDPOINT", ""),
		ChromePath:   envconf.String("DIAGD_CHROME_PATH", ""),
		SamplingRate: envconf.Float("DIAGD_SAMPLING_RATE", 1.0),
	}

	rt, err := diaglog.Boot(ctx, opts)
	if err != nil {
		logger.Fatal().
			Err(err).
			Str(zlog.FieldEvent, "boot.failed").
			Str(zlog.FieldManifestPath, path).
			Msg("failed to boot observability stack")
	}

	srv := diagserver.New(diagserver.Config{
		Addr:              envconf.String("DIAGD_ADDR", ":9100"),
		RequestsPerMinute: envconf.Int("DIAGD_RATE_LIMIT", 240),
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Run(gctx)
	})

	if err := g.Wait(); err != nil {
		logger.Error().
			Err(err).
			Str(zlog.FieldEvent, "server.failed").
			Msg("diagnostics server exited with error")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := rt.Shutdown(shutdownCtx); err != nil {
		logger.Error().
			Err(err).
			Str(zlog.FieldEvent, "shutdown.failed").
			Msg("observability stack shutdown reported errors")
		os.Exit(1)
	}
}
