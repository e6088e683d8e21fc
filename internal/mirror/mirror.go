package mirror

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"gocloud.dev/blob"

	"github.com/tonpukusan/blog-parts-json-manager/internal/item"
	"github.com/tonpukusan/blog-parts-json-manager/internal/store"
	"github.com/tonpukusan/blog-parts-json-manager/pkg/itemload"
)

// DefaultManifestKey is the key the mirrored manifest is written to.
const DefaultManifestKey = "manifest.json"

// Options configures a mirror run.
type Options struct {
	// Concurrency is the number of simultaneous item fetches.
	Concurrency int

	// BatchSize is the number of items saved per batch.
	BatchSize int

	// Getter fetches the manifest and items. Default: HTTP client.
	Getter itemload.Getter

	// Logger receives per-item failures. Default: slog.Default().
	Logger *slog.Logger

	// Progress is an optional load observer.
	Progress itemload.Progress

	// ManifestKey is where the mirrored manifest is written.
	// Default: DefaultManifestKey
	ManifestKey string

	// BaseURL is written into the mirrored manifest.
	BaseURL string

	// Normalize cleans up each record's shop links with item.NormalizeDocument
	// before saving. Other keys are stored unchanged.
	Normalize bool

	// MaxConsecutiveFailures is the number of consecutive save failures
	// before the circuit breaker trips and stops the run (default: 10).
	MaxConsecutiveFailures int
}

// FailedItem records an item that was not stored.
type FailedItem struct {
	File   string
	Reason string
}

// Result summarises a mirror run.
type Result struct {
	// Manifest is the manifest written to the bucket. It lists stored files
	// in source manifest order.
	Manifest *itemload.Manifest
	Saved    int
	Failed   []FailedItem
}

// CircuitBreakerError is returned when too many consecutive saves fail.
//
// Use errors.As to extract this error and inspect Failed for details.
type CircuitBreakerError struct {
	ConsecutiveFailures int
	Failed              []FailedItem
}

func (e *CircuitBreakerError) Error() string {
	return fmt.Sprintf("circuit breaker tripped: %d consecutive save failures", e.ConsecutiveFailures)
}

// Mirror loads the manifest at manifestURL and stores every item it names
// in bucket.
func Mirror(ctx context.Context, manifestURL string, bucket *blob.Bucket, opts Options) (*Result, error) {
	if opts.ManifestKey == "" {
		opts.ManifestKey = DefaultManifestKey
	}
	if opts.MaxConsecutiveFailures <= 0 {
		opts.MaxConsecutiveFailures = 10
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	loadOpts := []itemload.Option{
		itemload.WithConcurrency(opts.Concurrency),
		itemload.WithBatchSize(opts.BatchSize),
		itemload.WithLogger(opts.Logger),
		itemload.WithProgress(opts.Progress),
	}
	if opts.Concurrency <= 0 {
		loadOpts[0] = itemload.WithConcurrency(itemload.DefaultConcurrency)
	}
	if opts.BatchSize <= 0 {
		loadOpts[1] = itemload.WithBatchSize(itemload.DefaultBatchSize)
	}
	if opts.Getter != nil {
		loadOpts = append(loadOpts, itemload.WithGetter(opts.Getter))
	}

	// Circuit breaker state. onBatch runs on the loader's goroutine only.
	var (
		consecutiveFailures int
		tripped             bool
	)

	cbCtx, cbCancel := context.WithCancel(ctx)
	defer cbCancel()

	res := &Result{}
	saved := make(map[string]string)

	onBatch := func(batch itemload.Batch) error {
		for _, rec := range batch {
			if reason := rec.Err(); reason != "" {
				opts.Logger.Warn("item not mirrored", "file", rec.File, "error", reason)
				res.Failed = append(res.Failed, FailedItem{File: rec.File, Reason: reason})
				continue
			}

			data := []byte(rec.Data)
			if opts.Normalize {
				normalized, err := item.NormalizeDocument(data)
				if err != nil {
					opts.Logger.Warn("item not mirrored", "file", rec.File, "error", err)
					res.Failed = append(res.Failed, FailedItem{File: rec.File, Reason: err.Error()})
					continue
				}
				data = normalized
			}

			name, err := store.Save(cbCtx, bucket, rec.File, json.RawMessage(data))
			if err != nil {
				consecutiveFailures++
				res.Failed = append(res.Failed, FailedItem{File: rec.File, Reason: err.Error()})
				if consecutiveFailures >= opts.MaxConsecutiveFailures {
					tripped = true
					cbCancel()
					return fmt.Errorf("mirror stopped after %d consecutive save failures", consecutiveFailures)
				}
				continue
			}

			consecutiveFailures = 0
			saved[rec.File] = name
			res.Saved++
		}
		return nil
	}

	m, err := itemload.LoadURL(cbCtx, manifestURL, onBatch, loadOpts...)

	if tripped {
		return res, &CircuitBreakerError{
			ConsecutiveFailures: consecutiveFailures,
			Failed:              res.Failed,
		}
	}

	if err != nil {
		return res, err
	}

	out := &itemload.Manifest{BaseURL: opts.BaseURL, Files: make([]string, 0, len(saved))}
	for _, file := range m.Files {
		if name, ok := saved[file]; ok {
			out.Files = append(out.Files, name)
		}
	}
	if err := store.WriteManifest(ctx, bucket, opts.ManifestKey, out); err != nil {
		return res, err
	}
	res.Manifest = out

	return res, nil
}
