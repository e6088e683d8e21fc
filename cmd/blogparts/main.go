package main

import (
	"fmt"
	"os"
)

// Exit codes
const (
	ExitSuccess          = 0
	ExitGeneralError     = 1
	ExitInvalidArgs      = 2
	ExitManifestNotFound = 3
	ExitStorageError     = 5
	ExitValidationFailed = 7
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 {
		printUsage()
		return ExitInvalidArgs
	}

	command := args[0]
	cmdArgs := args[1:]

	switch command {
	case "list":
		return runList(cmdArgs)
	case "browse":
		return runBrowse(cmdArgs)
	case "get":
		return runGet(cmdArgs)
	case "check":
		return runCheck(cmdArgs)
	case "save":
		return runSave(cmdArgs)
	case "new":
		return runNew(cmdArgs)
	case "mirror":
		return runMirror(cmdArgs)
	case "help", "-h", "--help":
		printUsage()
		return ExitSuccess
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		return ExitInvalidArgs
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `Usage: blogparts <command> [options]

Commands:
  list    Load every item named by a manifest and print it as it arrives
  browse  Browse items interactively while they load
  get     Print one item document from the manifest for editing
  check   Load every item and report fetch and validation failures
  save    Validate, normalise and store a local item document
  new     Print a template for a new item
  mirror  Copy every item named by a manifest into a bucket

Run 'blogparts <command> -h' for command-specific help.`)
}
