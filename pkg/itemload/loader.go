package itemload

import (
	"context"
	"errors"
	"runtime"
	"sort"
	"sync"
	"sync/atomic"
)

var errNilBatchFunc = errors.New("itemload: nil batch callback")

// LoadURL loads the manifest at manifestURL and then runs LoadProgressive
// over it. A manifest failure is returned as *ManifestLoadError before any
// batch is emitted.
func LoadURL(ctx context.Context, manifestURL string, onBatch BatchFunc, options ...Option) (*Manifest, error) {
	opts := newOptions(options)

	m, err := LoadManifest(ctx, opts.Getter, manifestURL)
	if err != nil {
		return nil, err
	}
	return m, load(ctx, m, onBatch, opts)
}

// LoadProgressive fetches every file named by m, at most Concurrency at a
// time, and hands the records to onBatch one chunk of BatchSize files at a
// time, in manifest order.
//
// Chunk i is fully fetched and flushed before the first fetch of chunk i+1
// is issued. Within a chunk, records are in completion order unless
// WithOrdered is set. A failed fetch yields an ErrorSentinel record; an
// error or panic from onBatch is logged and the load continues.
//
// LoadProgressive returns nil once every chunk has been flushed. If ctx is
// cancelled, workers stop claiming files, the records already completed in
// the current chunk are flushed and ctx.Err() is returned.
func LoadProgressive(ctx context.Context, m *Manifest, onBatch BatchFunc, options ...Option) error {
	return load(ctx, m, onBatch, newOptions(options))
}

func load(ctx context.Context, m *Manifest, onBatch BatchFunc, opts Options) error {
	if onBatch == nil {
		return errNilBatchFunc
	}

	l := &loader{
		opts:    opts,
		fetcher: NewFetcher(opts.Getter),
		baseURL: m.BaseURL,
	}

	files := m.Files
	for index, start := 0, 0; start < len(files); index, start = index+1, start+opts.BatchSize {
		if err := ctx.Err(); err != nil {
			return err
		}

		chunk := files[start:min(start+opts.BatchSize, len(files))]
		opts.Progress.ChunkStarted(index, len(chunk))
		opts.Logger.Debug("chunk started", "chunk", index, "files", len(chunk))

		batch := l.runChunk(ctx, chunk)
		if len(batch) > 0 {
			l.flush(index, batch, onBatch)
		}
		opts.Progress.ChunkFlushed(index, len(batch))

		if len(batch) < len(chunk) {
			return ctx.Err()
		}

		// Goroutine workers never hold the caller's thread, so this yield
		// only gives other goroutines a scheduling point between chunks.
		runtime.Gosched()
	}
	return nil
}

type loader struct {
	opts    Options
	fetcher *Fetcher
	baseURL string
}

type indexedRecord struct {
	index  int
	record ItemRecord
}

// runChunk fetches chunk with a pool of workers sharing one cursor and
// returns once every worker has exited.
func (l *loader) runChunk(ctx context.Context, chunk []string) Batch {
	var (
		cursor  atomic.Int64
		mu      sync.Mutex
		results = make([]indexedRecord, 0, len(chunk))
		wg      sync.WaitGroup
	)

	// Cancellation stops new claims; claimed fetches run to completion.
	fetchCtx := context.WithoutCancel(ctx)

	workers := min(l.opts.Concurrency, len(chunk))
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for ctx.Err() == nil {
				i := int(cursor.Add(1) - 1)
				if i >= len(chunk) {
					return
				}

				l.opts.Progress.ItemStarted()
				rec, size := l.fetcher.fetch(fetchCtx, l.baseURL, chunk[i])
				if rec.Failed() {
					l.opts.Progress.ItemFailed()
				} else {
					l.opts.Progress.ItemCompleted(size)
				}

				mu.Lock()
				results = append(results, indexedRecord{index: i, record: rec})
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if l.opts.Ordered {
		sort.Slice(results, func(a, b int) bool {
			return results[a].index < results[b].index
		})
	}

	batch := make(Batch, len(results))
	for i, r := range results {
		batch[i] = r.record
	}
	return batch
}

// flush hands batch to onBatch, converting a returned error or a panic into
// a logged diagnostic.
func (l *loader) flush(index int, batch Batch, onBatch BatchFunc) {
	defer func() {
		if r := recover(); r != nil {
			l.opts.Logger.Error("batch callback panicked", "chunk", index, "records", len(batch), "panic", r)
		}
	}()

	if err := onBatch(batch); err != nil {
		l.opts.Logger.Error("batch callback failed", "chunk", index, "records", len(batch), "error", err)
	}
}

// LoadAll fetches every file sequentially in manifest order and returns all
// records at once. It stops early, returning the records fetched so far,
// if ctx is cancelled.
func LoadAll(ctx context.Context, m *Manifest, options ...Option) ([]ItemRecord, error) {
	opts := newOptions(options)
	fetcher := NewFetcher(opts.Getter)

	records := make([]ItemRecord, 0, len(m.Files))
	for _, file := range m.Files {
		if err := ctx.Err(); err != nil {
			return records, err
		}
		records = append(records, fetcher.FetchOne(ctx, m.BaseURL, file))
	}
	return records, nil
}
