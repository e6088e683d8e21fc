package itemload

import (
	"log/slog"

	bphttp "github.com/tonpukusan/blog-parts-json-manager/internal/http"
)

const (
	// DefaultConcurrency is the number of simultaneous fetches per chunk.
	DefaultConcurrency = 6
	// DefaultBatchSize is the number of records flushed per batch.
	DefaultBatchSize = 20
)

// Progress observes a load. All methods may be called from worker
// goroutines and must be safe for concurrent use.
type Progress interface {
	ChunkStarted(index, size int)
	ItemStarted()
	ItemCompleted(size int64)
	ItemFailed()
	ChunkFlushed(index, size int)
}

// Options configures a load.
type Options struct {
	Concurrency int          // simultaneous in-flight fetches, at least 1
	BatchSize   int          // records per batch, at least 1
	Ordered     bool         // sort each batch back into manifest order
	Getter      Getter       // fetch primitive for the manifest and items
	Logger      *slog.Logger // receives batch callback failures
	Progress    Progress     // optional observer
}

// Option is a functional option for configuring a load.
type Option func(*Options)

// WithConcurrency bounds the number of simultaneous fetches.
// Values below 1 are treated as 1.
func WithConcurrency(n int) Option {
	return func(o *Options) {
		o.Concurrency = n
	}
}

// WithBatchSize sets how many records accumulate before being flushed.
// Values below 1 are treated as 1.
func WithBatchSize(n int) Option {
	return func(o *Options) {
		o.BatchSize = n
	}
}

// WithOrdered re-orders each batch by manifest position before it is
// flushed. Without it, records appear in fetch completion order.
func WithOrdered(ordered bool) Option {
	return func(o *Options) {
		o.Ordered = ordered
	}
}

// WithGetter sets the fetch primitive. The default is an HTTP client with
// internal/http default options.
func WithGetter(g Getter) Option {
	return func(o *Options) {
		o.Getter = g
	}
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *Options) {
		o.Logger = l
	}
}

// WithProgress registers an observer.
func WithProgress(p Progress) Option {
	return func(o *Options) {
		o.Progress = p
	}
}

func newOptions(options []Option) Options {
	opts := Options{
		Concurrency: DefaultConcurrency,
		BatchSize:   DefaultBatchSize,
	}
	for _, opt := range options {
		opt(&opts)
	}

	opts.Concurrency = max(1, opts.Concurrency)
	opts.BatchSize = max(1, opts.BatchSize)
	if opts.Getter == nil {
		opts.Getter = bphttp.NewClient(bphttp.DefaultOptions())
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Progress == nil {
		opts.Progress = nopProgress{}
	}
	return opts
}

type nopProgress struct{}

func (nopProgress) ChunkStarted(int, int) {}
func (nopProgress) ItemStarted()          {}
func (nopProgress) ItemCompleted(int64)   {}
func (nopProgress) ItemFailed()           {}
func (nopProgress) ChunkFlushed(int, int) {}
