// Package store keeps item records in object storage.
//
// It is storage-agnostic via gocloud.dev/blob: a local products folder
// (file:///path/to/products), S3 (s3://bucket?region=...), GCS (gs://bucket)
// or an in-memory bucket (mem://) for tests.
//
// # Writing
//
// [Save] writes one JSON object under a sanitised file name. [AddToManifest]
// appends the file to a manifest document if it is not already listed.
//
// # Reading
//
// [Source] adapts a bucket to itemload.Getter, so a manifest and its items
// can be loaded straight from storage with the same progressive loader used
// for HTTP.
//
// # Checking
//
// [Check] verifies that every file named by a manifest exists and is
// non-empty, without downloading the data.
package store
