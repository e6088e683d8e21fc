// Package progress provides progress reporting for item loads.
//
// A [Reporter] counts items and chunks as the loader reports them and
// periodically writes a status line, including completion percentage,
// failures and throughput.
//
// # Usage
//
//	reporter := progress.NewReporter(progress.Options{
//	    TotalItems:  len(manifest.Files),
//	    TotalChunks: chunks,
//	    Output:      os.Stderr,
//	})
//
//	reporter.Start()
//	defer reporter.Stop()
//
//	itemload.LoadProgressive(ctx, manifest, onBatch, itemload.WithProgress(reporter))
//
// # Output Format
//
//	[blogparts] Loading: https://example.github.io/parts/manifest.json
//	[blogparts] Items: 45 | Chunks: 3 x 20 | Concurrency: 6
//	[blogparts] Progress: 44.4% | 20 / 45 items | 1 failed | 38.12 KB | 12.3 items/s
//	[blogparts] Chunks: 1 flushed | 1 loading | 1 pending
package progress
