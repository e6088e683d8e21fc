package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/tonpukusan/blog-parts-json-manager/internal/item"
	"github.com/tonpukusan/blog-parts-json-manager/internal/tui"
	"github.com/tonpukusan/blog-parts-json-manager/pkg/itemload"
)

// runBrowse opens the interactive browser and streams items into it.
func runBrowse(args []string) int {
	fs := flag.NewFlagSet("browse", flag.ContinueOnError)

	lf := registerLoadFlags(fs)
	embed := fs.String("embed-template", "", "Go template for the copied embed tag (fields: .BaseURL .File .URL)")

	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, `Usage: blogparts browse [options]

Browse items while they load. Keys: / filter, b brand, c copy embed tag,
a copy Amazon link, q quit.

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
	if *embed != "" {
		cfg.EmbedTemplate = *embed
	}
	tmpl, err := item.ParseEmbedTemplate(cfg.EmbedTemplate)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
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

	model := tui.New(m.BaseURL, len(m.Files), tmpl)
	opts := loadOptions(cfg, getter)

	err = tui.Run(ctx, model, func(ctx context.Context, onBatch itemload.BatchFunc) error {
		return itemload.LoadProgressive(ctx, m, onBatch, opts...)
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitGeneralError
	}
	return ExitSuccess
}
