package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/tonpukusan/blog-parts-json-manager/internal/item"
	"github.com/tonpukusan/blog-parts-json-manager/internal/store"
	"github.com/tonpukusan/blog-parts-json-manager/pkg/itemload"
)

// runSave validates a local item document, normalises its links and
// stores it in a bucket. Keys the tooling does not know are kept.
func runSave(args []string) int {
	fs := flag.NewFlagSet("save", flag.ContinueOnError)

	lf := &loadFlags{}
	fs.StringVar(&lf.configPath, "config", "", "Path to YAML config file")
	bucketURL := fs.String("bucket", "", "Destination bucket URL (default: output from config)")
	name := fs.String("name", "", "Object name (default: the input file name)")
	manifestKey := fs.String("add-to-manifest", "", "Append the saved file to the manifest at this key")
	noNormalize := fs.Bool("no-normalize", false, "Store links exactly as given")
	force := fs.Bool("force", false, "Store the item even if it fails validation")

	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, `Usage: blogparts save [options] <file.json | ->

Validate an item document, normalise its shop links and store it as
pretty-printed JSON. Use - to read the document from stdin.

Options:`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return ExitInvalidArgs
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: exactly one input file is required")
		fs.Usage()
		return ExitInvalidArgs
	}

	cfg, err := lf.config()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitInvalidArgs
	}
	if *bucketURL == "" {
		*bucketURL = cfg.Output
	}
	if *bucketURL == "" {
		fmt.Fprintln(os.Stderr, "Error: -bucket is required (or set output / BLOGPARTS_OUTPUT)")
		return ExitInvalidArgs
	}

	input := fs.Arg(0)
	data, err := readInput(input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitGeneralError
	}

	it, err := item.Decode(itemload.ItemRecord{File: input, Data: data})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitValidationFailed
	}

	if problems := it.Validate(); len(problems) > 0 {
		for _, p := range problems {
			fmt.Fprintf(os.Stderr, "[blogparts] %s\n", p)
		}
		if !*force {
			return ExitValidationFailed
		}
	}

	doc := json.RawMessage(data)
	if !*noNormalize {
		if doc, err = item.NormalizeDocument(data); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return ExitValidationFailed
		}
	}

	if *name == "" && input != "-" {
		*name = filepath.Base(input)
	}

	ctx, cancel := signalContext()
	defer cancel()

	bkt, err := store.Open(ctx, *bucketURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitStorageError
	}
	defer bkt.Close()

	saved, err := store.Save(ctx, bkt, *name, doc)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitStorageError
	}
	fmt.Fprintf(os.Stderr, "[blogparts] Saved %s\n", saved)

	if *manifestKey != "" {
		added, err := store.AddToManifest(ctx, bkt, *manifestKey, saved)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return ExitStorageError
		}
		if added {
			fmt.Fprintf(os.Stderr, "[blogparts] Added %s to %s\n", saved, *manifestKey)
		}
	}

	return ExitSuccess
}

func readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}
