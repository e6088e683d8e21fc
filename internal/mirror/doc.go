// Package mirror copies every item named by a remote manifest into a bucket.
//
// Items are loaded progressively with itemload and each batch's healthy
// records are written to the bucket as soon as the batch is flushed. Once
// every chunk has been processed, a manifest listing the stored files is
// written next to them.
//
// # Usage
//
//	res, err := mirror.Mirror(ctx, manifestURL, bucket, mirror.Options{
//	    Concurrency: 6,
//	    BatchSize:   20,
//	})
//
// To store under a key prefix, open the bucket with the driver's prefix
// parameter (for example "s3://parts?prefix=mirror/").
//
// # Failures
//
// Items that fail to load are skipped and reported in Result.Failed. Save
// failures are reported the same way; after MaxConsecutiveFailures save
// failures in a row the load is stopped and a *CircuitBreakerError is
// returned.
package mirror
