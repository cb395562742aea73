package blobstore

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"
)

// Tee mirrors writes to several stores. Reads are served by the primary.
type Tee struct {
	primary Store
	mirrors []Store
}

// NewTee returns a store that reads from primary and writes to primary and
// every mirror.
func NewTee(primary Store, mirrors ...Store) *Tee {
	return &Tee{primary: primary, mirrors: mirrors}
}

// Open opens the blob from the primary store.
func (t *Tee) Open(ctx context.Context, name string) (Blob, error) {
	return t.primary.Open(ctx, name)
}

// Put writes to all stores concurrently and fails if any write fails.
func (t *Tee) Put(ctx context.Context, name string, data []byte) error {
	return t.each(ctx, func(ctx context.Context, s Store) error {
		return s.Put(ctx, name, data)
	})
}

// Delete removes the blob from all stores.
func (t *Tee) Delete(ctx context.Context, name string) error {
	return t.each(ctx, func(ctx context.Context, s Store) error {
		return s.Delete(ctx, name)
	})
}

// List lists the primary store.
func (t *Tee) List(ctx context.Context, prefix string) ([]string, error) {
	return t.primary.List(ctx, prefix)
}

func (t *Tee) each(ctx context.Context, fn func(context.Context, Store) error) error {
	g, ctx := errgroup.WithContext(ctx)
	errs := make([]error, 1+len(t.mirrors))
	for i, s := range append([]Store{t.primary}, t.mirrors...) {
		g.Go(func() error {
			errs[i] = fn(ctx, s)
			return errs[i]
		})
	}
	_ = g.Wait()
	return errors.Join(errs...)
}
