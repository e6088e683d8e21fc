package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/gcsblob"
	_ "gocloud.dev/blob/memblob"
	_ "gocloud.dev/blob/s3blob"

	"github.com/tonpukusan/blog-parts-json-manager/internal/config"
	bphttp "github.com/tonpukusan/blog-parts-json-manager/internal/http"
	"github.com/tonpukusan/blog-parts-json-manager/internal/progress"
	"github.com/tonpukusan/blog-parts-json-manager/internal/store"
	"github.com/tonpukusan/blog-parts-json-manager/pkg/itemload"
)

// loadFlags are the flags shared by every command that loads a manifest.
type loadFlags struct {
	configPath  string
	manifest    string
	fromBucket  string
	concurrency int
	batchSize   int
	ordered     bool
	progress    bool
	logLevel    string
	logFormat   string
}

func registerLoadFlags(fs *flag.FlagSet) *loadFlags {
	f := &loadFlags{}
	fs.StringVar(&f.configPath, "config", "", "Path to YAML config file")
	fs.StringVar(&f.manifest, "manifest", "", "Manifest URL, or object key with -from-bucket")
	fs.StringVar(&f.fromBucket, "from-bucket", "", "Read the manifest and items from this bucket URL instead of HTTP")
	fs.IntVar(&f.concurrency, "concurrency", 0, "Number of simultaneous fetches (default 6)")
	fs.IntVar(&f.batchSize, "batch-size", 0, "Number of items per batch (default 20)")
	fs.BoolVar(&f.ordered, "ordered", false, "Keep each batch in manifest order")
	fs.BoolVar(&f.progress, "progress", false, "Show load progress on stderr")
	fs.StringVar(&f.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	fs.StringVar(&f.logFormat, "log-format", "", "Log format: text or json")
	return f
}

// config resolves defaults, the config file, the environment and flags,
// in that order, and installs the configured logger.
func (f *loadFlags) config() (config.Config, error) {
	cfg := config.Default()
	if f.configPath != "" {
		fileCfg, err := config.LoadFromFile(f.configPath)
		if err != nil {
			return cfg, err
		}
		cfg = fileCfg
	}
	if err := cfg.LoadFromEnv(); err != nil {
		return cfg, err
	}

	cfg = cfg.Merge(config.Config{
		ManifestURL: f.manifest,
		Concurrency: f.concurrency,
		BatchSize:   f.batchSize,
		Ordered:     f.ordered,
		LogLevel:    f.logLevel,
		LogFormat:   f.logFormat,
	})
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}

	logger, err := cfg.NewLogger(os.Stderr)
	if err != nil {
		return cfg, err
	}
	slog.SetDefault(logger)

	return cfg, nil
}

// getter returns the fetch primitive selected by the flags. The returned
// close function releases the bucket, if any.
func (f *loadFlags) getter(ctx context.Context, cfg config.Config) (itemload.Getter, func(), error) {
	if f.fromBucket == "" {
		client := bphttp.NewClient(httpOptions(cfg))
		return client, client.CloseIdleConnections, nil
	}

	bucket, err := store.Open(ctx, f.fromBucket)
	if err != nil {
		return nil, nil, err
	}
	return store.NewSource(bucket), func() { bucket.Close() }, nil
}

// httpOptions maps the configuration onto the HTTP client.
func httpOptions(cfg config.Config) bphttp.Options {
	opts := bphttp.DefaultOptions()
	opts.Timeout = cfg.Timeout
	opts.RetryAttempts = cfg.Retry.Attempts
	opts.RetryBackoff = cfg.Retry.Backoff
	opts.RetryMaxBackoff = cfg.Retry.MaxBackoff
	opts.MaxBodySize = cfg.MaxItemSize
	return opts
}

// loadOptions maps the configuration onto the loader.
func loadOptions(cfg config.Config, getter itemload.Getter) []itemload.Option {
	return []itemload.Option{
		itemload.WithConcurrency(cfg.Concurrency),
		itemload.WithBatchSize(cfg.BatchSize),
		itemload.WithOrdered(cfg.Ordered),
		itemload.WithGetter(getter),
		itemload.WithLogger(slog.Default()),
	}
}

// startProgress starts a reporter for m when enabled. The returned stop
// function is always safe to call.
func startProgress(enabled bool, cfg config.Config, m *itemload.Manifest) (itemload.Option, func()) {
	if !enabled {
		return itemload.WithProgress(nil), func() {}
	}
	reporter := progress.NewReporter(progress.Options{
		TotalItems:  len(m.Files),
		TotalChunks: (len(m.Files) + cfg.BatchSize - 1) / cfg.BatchSize,
		BatchSize:   cfg.BatchSize,
		Concurrency: cfg.Concurrency,
		Output:      os.Stderr,
		SourceURL:   cfg.ManifestURL,
	})
	reporter.Start()
	return itemload.WithProgress(reporter), reporter.Stop
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			fmt.Fprintln(os.Stderr, "\n[blogparts] Received interrupt, shutting down...")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()

	return ctx, cancel
}

// manifestExitCode maps a load error onto an exit code.
func manifestExitCode(err error) int {
	var mErr *itemload.ManifestLoadError
	if errors.As(err, &mErr) {
		return ExitManifestNotFound
	}
	return ExitGeneralError
}

// requireManifest reports a missing manifest URL.
func requireManifest(fs *flag.FlagSet, cfg config.Config) bool {
	if strings.TrimSpace(cfg.ManifestURL) == "" {
		fmt.Fprintln(os.Stderr, "Error: -manifest is required (or set manifest_url / BLOGPARTS_MANIFEST_URL)")
		fs.Usage()
		return false
	}
	return true
}
