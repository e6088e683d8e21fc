package store

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"

	"gocloud.dev/blob"

	"github.com/tonpukusan/blog-parts-json-manager/pkg/itemload"
)

// ReadManifest reads the manifest stored at key.
func ReadManifest(ctx context.Context, bucket *blob.Bucket, key string) (*itemload.Manifest, error) {
	data, err := bucket.ReadAll(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("store: read manifest: %w", err)
	}
	m, err := itemload.ParseManifest(data)
	if err != nil {
		return nil, fmt.Errorf("store: parse manifest: %w", err)
	}
	return m, nil
}

// WriteManifest stores m at key as indented JSON.
func WriteManifest(ctx context.Context, bucket *blob.Bucket, key string, m *itemload.Manifest) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("store: marshal manifest: %w", err)
	}
	data = append(data, '\n')

	opts := &blob.WriterOptions{ContentType: "application/json; charset=utf-8"}
	if err := bucket.WriteAll(ctx, key, data, opts); err != nil {
		return fmt.Errorf("store: write manifest: %w", err)
	}
	return nil
}

// AddToManifest appends file to the manifest at key unless it is already
// listed. A missing manifest is created with an empty base URL. It reports
// whether the manifest changed.
func AddToManifest(ctx context.Context, bucket *blob.Bucket, key, file string) (bool, error) {
	m, err := ReadManifest(ctx, bucket, key)
	if err != nil {
		if !isNotExist(err) {
			return false, err
		}
		m = &itemload.Manifest{Files: []string{}}
	}

	if slices.Contains(m.Files, file) {
		return false, nil
	}
	m.Files = append(m.Files, file)

	if err := WriteManifest(ctx, bucket, key, m); err != nil {
		return false, err
	}
	return true, nil
}
