package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/tonpukusan/blog-parts-json-manager/internal/mirror"
	"github.com/tonpukusan/blog-parts-json-manager/internal/store"
)

// runMirror copies every item named by a manifest into a bucket.
func runMirror(args []string) int {
	fs := flag.NewFlagSet("mirror", flag.ContinueOnError)

	lf := registerLoadFlags(fs)
	to := fs.String("to", "", "Destination bucket URL (default: output from config)")
	baseURL := fs.String("base-url", "", "Base URL written into the mirrored manifest")
	manifestKey := fs.String("manifest-key", mirror.DefaultManifestKey, "Key of the mirrored manifest")
	normalize := fs.Bool("normalize", false, "Normalise shop links before storing")
	maxFailures := fs.Int("max-failures", 10, "Stop after this many consecutive save failures")

	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, `Usage: blogparts mirror [options]

Load every item named by the manifest and store it in a bucket, then write
a manifest listing the stored files.

Options:`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return ExitInvalidArgs
	}

	cfg, err := lf.config()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitInvalidArgs
	}
	if !requireManifest(fs, cfg) {
		return ExitInvalidArgs
	}
	if *to == "" {
		*to = cfg.Output
	}
	if *to == "" {
		fmt.Fprintln(os.Stderr, "Error: -to is required (or set output / BLOGPARTS_OUTPUT)")
		return ExitInvalidArgs
	}

	ctx, cancel := signalContext()
	defer cancel()

	getter, closeGetter, err := lf.getter(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitStorageError
	}
	defer closeGetter()

	bkt, err := store.Open(ctx, *to)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitStorageError
	}
	defer bkt.Close()

	fmt.Fprintf(os.Stderr, "[blogparts] Mirroring %s to %s\n", cfg.ManifestURL, *to)

	res, err := mirror.Mirror(ctx, cfg.ManifestURL, bkt, mirror.Options{
		Concurrency:            cfg.Concurrency,
		BatchSize:              cfg.BatchSize,
		Getter:                 getter,
		ManifestKey:            *manifestKey,
		BaseURL:                *baseURL,
		Normalize:              *normalize,
		MaxConsecutiveFailures: *maxFailures,
	})

	if res != nil {
		fmt.Fprintf(os.Stderr, "[blogparts] Saved %d items, %d failed\n", res.Saved, len(res.Failed))
		for _, f := range res.Failed {
			fmt.Fprintf(os.Stderr, "[blogparts]   %s: %s\n", f.File, f.Reason)
		}
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		var cbErr *mirror.CircuitBreakerError
		if errors.As(err, &cbErr) {
			return ExitStorageError
		}
		return manifestExitCode(err)
	}

	fmt.Fprintf(os.Stderr, "[blogparts] Wrote %s\n", *manifestKey)
	return ExitSuccess
}
