package store

import (
	"context"
	"fmt"

	"gocloud.dev/blob"

	"github.com/tonpukusan/blog-parts-json-manager/pkg/itemload"
)

// CheckResult contains the results of checking a manifest against storage.
type CheckResult struct {
	Valid     bool     // true if every file exists and is non-empty
	FileCount int      // number of files in the manifest
	Missing   int      // number of files that don't exist
	Empty     int      // number of zero-length files
	Errors    []string // detailed error messages
}

// Check verifies that every file named by m exists under prefix in bucket
// and is non-empty. It reads object attributes only.
//
// Missing or empty files are reported in the result with Valid=false; an
// error is returned only when storage cannot be queried or ctx is done.
func Check(ctx context.Context, bucket *blob.Bucket, prefix string, m *itemload.Manifest) (*CheckResult, error) {
	result := &CheckResult{
		Valid:     true,
		FileCount: len(m.Files),
		Errors:    make([]string, 0),
	}

	for _, file := range m.Files {
		path := prefix + file

		attrs, err := bucket.Attributes(ctx, path)
		if err != nil {
			if isNotExist(err) {
				result.Valid = false
				result.Missing++
				result.Errors = append(result.Errors, fmt.Sprintf("%s missing", path))
				continue
			}
			return nil, fmt.Errorf("store: check %s: %w", path, err)
		}

		if attrs.Size == 0 {
			result.Valid = false
			result.Empty++
			result.Errors = append(result.Errors, fmt.Sprintf("%s is empty", path))
		}
	}

	return result, nil
}
