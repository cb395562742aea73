// Package blobstore provides the storage abstraction checkpoints are written to.
//
// Implementations must be safe for concurrent use.
//
// # Built-in Implementations
//
//   - LocalStore: local filesystem, atomic writes, mmap reads
//   - MemoryStore: in-process map, for tests and dry runs
//   - Tee: mirrors writes to several stores
//   - s3.Store: Amazon S3
//   - minio.Store: MinIO and other S3-compatible services
//
// # Custom Implementations
//
//	type Store interface {
//	    Open(ctx, name) (Blob, error)
//	    Put(ctx, name, data) error   // full overwrite
//	    Delete(ctx, name) error
//	    List(ctx, prefix) ([]string, error)
//	}
package blobstore
