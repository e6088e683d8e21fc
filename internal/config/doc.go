// Package config defines configuration structures for the blogparts CLI.
//
// Configuration can be provided via:
//   - Command-line flags
//   - Environment variables (BLOGPARTS_ prefix)
//   - YAML configuration file
//
// Later sources override earlier ones: defaults, then the YAML file, then the
// environment, then flags (via [Config.Merge]).
//
// # Example
//
//	manifest_url: https://example.github.io/parts/manifest.json
//	output: file:///home/me/site/products
//	concurrency: 6
//	batch_size: 20
//	max_item_size: 1MB
//	timeout: 30s
//	retry:
//	  attempts: 2
//	  backoff: 250ms
//	  max_backoff: 5s
//	log_level: info
//	log_format: text
package config
