package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"gocloud.dev/blob"
	"gocloud.dev/gcerrors"
)

// ErrNotFound is returned by Source when an object does not exist.
var ErrNotFound = errors.New("store: object not found")

// DefaultFilename is used when Save is given an empty name.
const DefaultFilename = "new_item.json"

// Open opens the bucket at url. Callers must blank-import the drivers they
// need (gocloud.dev/blob/fileblob, s3blob, gcsblob, memblob).
func Open(ctx context.Context, url string) (*blob.Bucket, error) {
	bucket, err := blob.OpenBucket(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("store: open bucket: %w", err)
	}
	return bucket, nil
}

// SanitizeFilename trims name, defaults it to DefaultFilename, forces the
// .json extension and replaces characters that are unsafe in file names.
func SanitizeFilename(name string) string {
	n := strings.TrimSpace(name)
	if n == "" {
		n = DefaultFilename
	}
	if !strings.HasSuffix(n, ".json") {
		n += ".json"
	}
	return strings.Map(func(r rune) rune {
		switch r {
		case '\\', '/', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		return r
	}, n)
}

// Save writes v as indented JSON with a trailing newline under the
// sanitised filename and returns the name used. A json.RawMessage is
// re-indented as is.
func Save(ctx context.Context, bucket *blob.Bucket, filename string, v any) (string, error) {
	name := SanitizeFilename(filename)

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return "", fmt.Errorf("store: marshal %s: %w", name, err)
	}
	data := buf.Bytes()

	opts := &blob.WriterOptions{ContentType: "application/json; charset=utf-8"}
	if err := bucket.WriteAll(ctx, name, data, opts); err != nil {
		return "", fmt.Errorf("store: write %s: %w", name, err)
	}
	return name, nil
}

// Source reads objects from a bucket. Its Get method satisfies
// itemload.Getter; the URL passed in is the object key.
type Source struct {
	bucket *blob.Bucket
}

// NewSource returns a Source reading from bucket.
func NewSource(bucket *blob.Bucket) *Source {
	return &Source{bucket: bucket}
}

// Get opens the object at key.
func (s *Source) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	r, err := s.bucket.NewReader(ctx, key, nil)
	if err != nil {
		if isNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		return nil, fmt.Errorf("store: read %s: %w", key, err)
	}
	return r, nil
}

// isNotExist returns true if the error indicates the object doesn't exist.
func isNotExist(err error) bool {
	return gcerrors.Code(err) == gcerrors.NotFound
}
