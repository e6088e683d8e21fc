// Package itemload loads item records named by a manifest, progressively
// and with bounded concurrency.
//
// A manifest is a JSON document naming a base URL and an ordered list of
// item files:
//
//	{"baseUrl": "https://example.com/products/", "files": ["a.json", "b.json"]}
//
// [LoadProgressive] partitions the file list into consecutive chunks of
// [WithBatchSize] files. For each chunk it starts up to [WithConcurrency]
// workers that claim files from a shared cursor, waits for all of them, and
// hands the chunk's records to the caller's [BatchFunc] before the next chunk
// starts. A consumer can therefore render records as they arrive instead of
// waiting for the whole set.
//
// # Failure tiers
//
//   - The manifest failing to load is fatal and reported as [*ManifestLoadError].
//   - A single file failing to fetch or parse yields an [ItemRecord] whose Data
//     is an [ErrorSentinel], e.g. {"_error": "HTTP 404"}. Siblings are unaffected.
//   - A [BatchFunc] returning an error or panicking is logged and ignored.
//
// # Usage
//
//	m, err := itemload.LoadURL(ctx, "https://example.com/manifest.json",
//	    func(b itemload.Batch) error {
//	        for _, rec := range b {
//	            if rec.Failed() {
//	                fmt.Println(rec.File, "failed:", rec.Err())
//	            }
//	        }
//	        return nil
//	    },
//	    itemload.WithConcurrency(6),
//	    itemload.WithBatchSize(20),
//	)
//
// Every request is made through a [Getter], which must bypass caches. The
// default is the internal HTTP client; internal/store provides a blob-backed
// Getter.
package itemload
