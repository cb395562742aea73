package main

import (
	"context"
	"fmt"

	"github.com/hupe1980/corrsketch/blobstore"
	"github.com/hupe1980/corrsketch/blobstore/minio"
	"github.com/hupe1980/corrsketch/blobstore/s3"
)

// openStore returns the checkpoint store selected by cfg, mirrored to a local
// directory when -mirror-dir is set.
func openStore(ctx context.Context, cfg *cliConfig) (blobstore.Store, error) {
	primary, err := openPrimary(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if cfg.mirrorDir == "" {
		return primary, nil
	}
	return blobstore.NewTee(primary, blobstore.NewLocalStore(cfg.mirrorDir)), nil
}

func openPrimary(ctx context.Context, cfg *cliConfig) (blobstore.Store, error) {
	switch cfg.store {
	case "memory":
		return blobstore.NewMemoryStore(), nil
	case "local":
		return blobstore.NewLocalStore(cfg.dir), nil
	case "s3":
		var opts []s3.Option
		if cfg.prefix != "" {
			opts = append(opts, s3.WithPrefix(cfg.prefix))
		}
		if cfg.region != "" {
			opts = append(opts, s3.WithRegion(cfg.region))
		}
		if cfg.endpoint != "" {
			opts = append(opts, s3.WithEndpoint(cfg.endpoint))
		}
		return s3.New(ctx, cfg.bucket, opts...)
	case "minio":
		client, err := minio.Dial(cfg.endpoint, cfg.accessKey, cfg.secretKey, !cfg.insecure)
		if err != nil {
			return nil, err
		}
		store := minio.NewStore(client, cfg.bucket, cfg.prefix)
		if err := store.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown store %q", cfg.store)
	}
}
