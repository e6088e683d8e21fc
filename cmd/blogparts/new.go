package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/tonpukusan/blog-parts-json-manager/internal/item"
)

// runNew prints a template for a new item.
func runNew(args []string) int {
	return newItem(args, os.Stdout)
}

func newItem(args []string, out io.Writer) int {
	fs := flag.NewFlagSet("new", flag.ContinueOnError)
	title := fs.String("title", "", "Title to fill in")

	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, `Usage: blogparts new [options]

Print an item document with default values, ready to edit and save.

Options:`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return ExitInvalidArgs
	}

	it := item.Template()
	it.Title = *title

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(it); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitGeneralError
	}
	return ExitSuccess
}
