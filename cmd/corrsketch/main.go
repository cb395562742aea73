// Command corrsketch runs correlation sketching experiments on synthetic
// sparse vectors and checkpoints the estimates to a blob store.
//
// Usage:
//
//	corrsketch -log-name results.ckpt -sketch-methods cs+ps+kmv [flags]
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hupe1980/corrsketch"
	"github.com/hupe1980/corrsketch/blobstore"
	"github.com/hupe1980/corrsketch/experiment"
	"github.com/hupe1980/corrsketch/observability"
	"github.com/hupe1980/corrsketch/results"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	os.Exit(run(ctx, os.Args[1:], os.Stderr))
}

// run executes the command and returns the exit code: 0 on success, 2 for
// configuration errors and 1 for runtime failures.
func run(ctx context.Context, args []string, stderr io.Writer) int {
	cfg, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintln(stderr, "corrsketch:", err)
		return 2
	}

	logger := newLogger(cfg, stderr)
	if err := execute(ctx, cfg, logger); err != nil {
		logger.ErrorContext(ctx, "run failed", "error", err)
		return 1
	}
	return 0
}

func newLogger(cfg *cliConfig, w io.Writer) *corrsketch.Logger {
	opts := &slog.HandlerOptions{Level: cfg.logLevel}
	if cfg.logFormat == "json" {
		return corrsketch.NewLogger(slog.NewJSONHandler(w, opts))
	}
	return corrsketch.NewLogger(slog.NewTextHandler(w, opts))
}

func execute(ctx context.Context, cfg *cliConfig, logger *corrsketch.Logger) error {
	var metrics corrsketch.MetricsCollector = corrsketch.NoopMetricsCollector{}
	if cfg.metricsAddr != "" {
		reg := prometheus.NewRegistry()
		pc, err := observability.NewPrometheusCollector(reg)
		if err != nil {
			return err
		}
		metrics = pc
		srv := serveMetrics(cfg.metricsAddr, reg, logger)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	store, err := openStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}

	opts := []experiment.Option{
		experiment.WithLogger(logger),
		experiment.WithMetricsCollector(metrics),
	}
	if cfg.compare != "" {
		prior, err := results.NewCheckpointer(store, cfg.compare).Load(ctx)
		switch {
		case err == nil:
			logger.InfoContext(ctx, "reusing estimates", "blob", cfg.compare, "estimates", prior.Len())
			opts = append(opts, experiment.WithPrior(prior))
		case errors.Is(err, blobstore.ErrNotFound):
			logger.WarnContext(ctx, "comparison checkpoint not found", "blob", cfg.compare)
		default:
			return fmt.Errorf("load %s: %w", cfg.compare, err)
		}
	}

	cp := results.NewCheckpointer(store, cfg.experiment.BlobName,
		results.WithCodec(cfg.codec),
		results.WithCompression(cfg.compression),
	)
	runner, err := experiment.NewRunner(cfg.experiment, cp, opts...)
	if err != nil {
		return err
	}

	logger.InfoContext(ctx, "starting run",
		"blob", cp.Name(),
		"store", cfg.store,
		"iterations", cfg.experiment.Iterations,
		"storage_sizes", cfg.experiment.StorageSizes(),
		"mode", cfg.experiment.Mode.String(),
	)
	res, err := runner.Run(ctx)
	if err != nil {
		return err
	}
	logger.InfoContext(ctx, "run completed", "cells", len(res), "estimates", res.Len())
	return nil
}

func serveMetrics(addr string, reg *prometheus.Registry, logger *corrsketch.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		logger.Info("metrics available", "addr", addr, "path", "/metrics")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server error", "error", err)
		}
	}()
	return srv
}
