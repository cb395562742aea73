package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/hupe1980/corrsketch/codec"
	"github.com/hupe1980/corrsketch/experiment"
	"github.com/hupe1980/corrsketch/internal/compress"
	"github.com/hupe1980/corrsketch/sketch"
)

// cliConfig is everything the command line selects.
type cliConfig struct {
	experiment experiment.Config

	compare     string
	store       string
	dir         string
	mirrorDir   string
	bucket      string
	prefix      string
	endpoint    string
	region      string
	accessKey   string
	secretKey   string
	insecure    bool
	codec       codec.Codec
	compression compress.Type
	metricsAddr string
	logFormat   string
	logLevel    slog.Level
}

func parseFlags(args []string, output io.Writer) (*cliConfig, error) {
	def := experiment.DefaultConfig()
	fs := flag.NewFlagSet("corrsketch", flag.ContinueOnError)
	fs.SetOutput(output)

	var (
		cfg          cliConfig
		mode         string
		families     string
		familyTrials string
		codecName    string
		compression  string
		logLevel     string
	)
	e := &cfg.experiment
	*e = def

	fs.Float64Var(&e.Overlap, "overlap", def.Overlap, "overlap ratio of the two vectors")
	fs.Float64Var(&e.Outlier, "outlier", def.Outlier, "outlier fraction of the shared entries")
	fs.IntVar(&e.OutlierMax, "outlier-max", def.OutlierMax, "outlier max value")
	fs.IntVar(&e.T, "t", def.T, "number of count-sketch rows")
	fs.Float64Var(&e.Corr, "corr", def.Corr, "target correlation of the shared values")
	fs.IntVar(&e.StartSize, "start-size", def.StartSize, "first storage size")
	fs.IntVar(&e.EndSize, "end-size", def.EndSize, "last storage size (inclusive)")
	fs.IntVar(&e.IntervalSize, "interval-size", def.IntervalSize, "storage size step")
	fs.StringVar(&mode, "mode", def.Mode.String(), "storage split: ip or corr")
	fs.IntVar(&e.Iterations, "iteration", def.Iterations, "number of trials")
	fs.IntVar(&e.Length, "length", def.Length, "vector length")
	fs.IntVar(&e.NonZero, "nonzero", 0, "nonzero entries per vector (0 = length/10)")
	fs.StringVar(&e.BlobName, "log-name", "", "checkpoint blob name (required)")
	fs.StringVar(&families, "sketch-methods", "", "families joined by '+', e.g. cs+ps+kmv (required)")
	fs.StringVar(&familyTrials, "family-trials", "", "per-family trial limits, e.g. kmv=100,ps=100")
	fs.StringVar(&cfg.compare, "compare", "", "checkpoint blob whose estimates are reused")

	fs.StringVar(&cfg.store, "store", "local", "blob store: local, memory, s3 or minio")
	fs.StringVar(&cfg.dir, "dir", ".", "root directory of the local store")
	fs.StringVar(&cfg.mirrorDir, "mirror-dir", "", "also write checkpoints below this directory")
	fs.StringVar(&cfg.bucket, "bucket", "", "bucket of the s3 or minio store")
	fs.StringVar(&cfg.prefix, "prefix", "", "key prefix of the s3 or minio store")
	fs.StringVar(&cfg.endpoint, "endpoint", "", "endpoint of the s3 or minio store")
	fs.StringVar(&cfg.region, "region", "", "region of the s3 store")
	fs.StringVar(&cfg.accessKey, "access-key", "", "minio access key")
	fs.StringVar(&cfg.secretKey, "secret-key", "", "minio secret key")
	fs.BoolVar(&cfg.insecure, "insecure", false, "connect to minio without TLS")

	fs.StringVar(&codecName, "codec", codec.Default.Name(), "checkpoint codec: "+strings.Join(codec.Names(), ", "))
	fs.StringVar(&compression, "compression", "none", "checkpoint compression: none, lz4 or zstd")
	fs.StringVar(&cfg.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")
	fs.StringVar(&cfg.logFormat, "log-format", "text", "log format: text or json")
	fs.StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn or error")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	var err error
	if e.Mode, err = sketch.ParseMode(mode); err != nil {
		return nil, fmt.Errorf("%w: %w", experiment.ErrInvalidConfig, err)
	}
	if e.Families, err = sketch.ParseFamilies(families, "+"); err != nil {
		return nil, fmt.Errorf("%w: %w", experiment.ErrInvalidConfig, err)
	}
	if e.FamilyTrials, err = experiment.ParseFamilyTrials(familyTrials); err != nil {
		return nil, err
	}
	if cfg.codec, err = codec.Lookup(codecName); err != nil {
		return nil, fmt.Errorf("%w: %w", experiment.ErrInvalidConfig, err)
	}
	if cfg.compression, err = compress.Parse(compression); err != nil {
		return nil, fmt.Errorf("%w: %w", experiment.ErrInvalidConfig, err)
	}
	if err := cfg.logLevel.UnmarshalText([]byte(logLevel)); err != nil {
		return nil, fmt.Errorf("%w: log level %q", experiment.ErrInvalidConfig, logLevel)
	}
	switch cfg.logFormat {
	case "text", "json":
	default:
		return nil, fmt.Errorf("%w: log format %q", experiment.ErrInvalidConfig, cfg.logFormat)
	}
	switch cfg.store {
	case "local", "memory":
	case "s3", "minio":
		if cfg.bucket == "" {
			return nil, fmt.Errorf("%w: -bucket is required for the %s store", experiment.ErrInvalidConfig, cfg.store)
		}
	default:
		return nil, fmt.Errorf("%w: unknown store %q", experiment.ErrInvalidConfig, cfg.store)
	}
	if cfg.store == "minio" && cfg.endpoint == "" {
		return nil, errors.Join(experiment.ErrInvalidConfig, errors.New("-endpoint is required for the minio store"))
	}

	if err := e.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
