package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/tonpukusan/blog-parts-json-manager/internal/item"
	"github.com/tonpukusan/blog-parts-json-manager/pkg/itemload"
)

// runList prints every record as soon as its batch is flushed.
func runList(args []string) int {
	return list(args, os.Stdout)
}

func list(args []string, out io.Writer) int {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)

	lf := registerLoadFlags(fs)
	query := fs.String("q", "", "Only show items whose title, file, description or links contain this text")
	brand := fs.String("brand", "", "Only show items of this brand (first word of the title)")
	asJSON := fs.Bool("json", false, "Print one JSON record per line")

	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, `Usage: blogparts list [options]

Load every item named by the manifest and print each batch as it arrives.
Failed items are printed with their error.

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

	filter := item.Filter{Query: *query, Brand: *brand}
	enc := json.NewEncoder(out)
	shown, failed := 0, 0

	err = itemload.LoadProgressive(ctx, m, func(batch itemload.Batch) error {
		for _, rec := range filter.Apply(batch) {
			shown++
			if rec.Failed() {
				failed++
			}
			if *asJSON {
				if err := enc.Encode(rec); err != nil {
					return err
				}
				continue
			}
			printRecord(out, rec)
		}
		return nil
	}, append(loadOptions(cfg, getter), withProgress)...)
	stopProgress()

	fmt.Fprintf(os.Stderr, "[blogparts] %d of %d items shown, %d failed\n", shown, len(m.Files), failed)

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return manifestExitCode(err)
	}
	return ExitSuccess
}

func printRecord(out io.Writer, rec itemload.ItemRecord) {
	if reason := rec.Err(); reason != "" {
		fmt.Fprintf(out, "%s\tERROR: %s\n", rec.File, reason)
		return
	}
	it, err := item.Decode(rec)
	if err != nil {
		fmt.Fprintf(out, "%s\tERROR: %v\n", rec.File, err)
		return
	}
	fmt.Fprintf(out, "%s\t%s\t%s\n", rec.File, it.Title, it.AURL)
}
