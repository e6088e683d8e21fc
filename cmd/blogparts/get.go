package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/tonpukusan/blog-parts-json-manager/internal/item"
	"github.com/tonpukusan/blog-parts-json-manager/pkg/itemload"
)

// runGet prints one record of the manifest as an editable item document.
func runGet(args []string) int {
	return get(args, os.Stdout)
}

func get(args []string, out io.Writer) int {
	fs := flag.NewFlagSet("get", flag.ContinueOnError)

	lf := registerLoadFlags(fs)
	normalize := fs.Bool("normalize", false, "Clean up the shop links before printing")

	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, `Usage: blogparts get [options] <file>

Fetch one file named by the manifest and print its item document, ready to
edit and pass to 'blogparts save'.

Options:`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return ExitInvalidArgs
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: exactly one file name is required")
		fs.Usage()
		return ExitInvalidArgs
	}
	file := fs.Arg(0)

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
	if !slices.Contains(m.Files, file) {
		fmt.Fprintf(os.Stderr, "Error: %s is not listed in %s\n", file, cfg.ManifestURL)
		return ExitGeneralError
	}

	rec := itemload.NewFetcher(getter).FetchOne(ctx, m.BaseURL, file)
	if reason := rec.Err(); reason != "" {
		fmt.Fprintf(os.Stderr, "Error: %s: %s\n", file, reason)
		return ExitGeneralError
	}

	doc := []byte(rec.Data)
	if *normalize {
		if doc, err = item.NormalizeDocument(doc); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s: %v\n", file, err)
			return ExitGeneralError
		}
	}

	var buf bytes.Buffer
	if err := json.Indent(&buf, doc, "", "  "); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitGeneralError
	}
	buf.WriteByte('\n')
	if _, err := buf.WriteTo(out); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitGeneralError
	}
	return ExitSuccess
}
