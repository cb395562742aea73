// Package s3 stores checkpoints in Amazon S3.
//
// # Usage
//
//	store, err := s3.New(ctx, "my-bucket",
//	    s3.WithPrefix("experiments/"),
//	    s3.WithRegion("us-east-1"),
//	)
//
// Small blobs are written with a single PutObject carrying a CRC32C checksum;
// blobs at or above the part size go through a multipart upload.
package s3
