package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/tonpukusan/blog-parts-json-manager/internal/item"
	"github.com/tonpukusan/blog-parts-json-manager/internal/store"
	"github.com/tonpukusan/blog-parts-json-manager/pkg/itemload"
)

// runCheck loads every item and reports fetch and validation failures.
// With -bucket it also checks that every manifest file exists in storage.
func runCheck(args []string) int {
	return check(args, os.Stdout)
}

func check(args []string, out io.Writer) int {
	fs := flag.NewFlagSet("check", flag.ContinueOnError)

	lf := registerLoadFlags(fs)
	bucketURL := fs.String("bucket", "", "Also verify that every file exists in this bucket")
	prefix := fs.String("prefix", "", "Key prefix of the files in -bucket")

	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, `Usage: blogparts check [options]

Load every item named by the manifest and report items that failed to load
or that are missing required fields.

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

	ctx, cancel := signalContext()
	defer cancel()

	getter, closeGetter, err := lf.getter(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitStorageError
	}
	defer closeGetter()

	m, err := itemload.LoadManifest(ctx, getter, cfg.ManifestURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return manifestExitCode(err)
	}

	withProgress, stopProgress := startProgress(lf.progress, cfg, m)

	var problems []string
	err = itemload.LoadProgressive(ctx, m, func(batch itemload.Batch) error {
		for _, rec := range batch {
			it, err := item.Decode(rec)
			if err != nil {
				problems = append(problems, err.Error())
				continue
			}
			for _, msg := range it.Validate() {
				problems = append(problems, fmt.Sprintf("item %s: %s", rec.File, msg))
			}
		}
		return nil
	}, append(loadOptions(cfg, getter), withProgress)...)
	stopProgress()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return manifestExitCode(err)
	}

	if *bucketURL != "" {
		bkt, err := store.Open(ctx, *bucketURL)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return ExitStorageError
		}
		defer bkt.Close()

		result, err := store.Check(ctx, bkt, *prefix, m)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return ExitStorageError
		}
		problems = append(problems, result.Errors...)
	}

	fmt.Fprintf(out, "Manifest: %s\n", cfg.ManifestURL)
	fmt.Fprintf(out, "Items: %d\n", len(m.Files))

	if len(problems) == 0 {
		fmt.Fprintln(out, "Status: VALID")
		return ExitSuccess
	}

	fmt.Fprintln(out, "Status: INVALID")
	fmt.Fprintf(out, "Problems: %d\n", len(problems))
	fmt.Fprintln(out, "  "+strings.Join(problems, "\n  "))
	return ExitValidationFailed
}
