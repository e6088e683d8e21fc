package itemload

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	bphttp "github.com/tonpukusan/blog-parts-json-manager/internal/http"
)

// ManifestLoadError is returned when the manifest cannot be fetched or does
// not have the expected shape. It is fatal to the whole load.
type ManifestLoadError struct {
	URL    string
	Status int   // HTTP status, 0 when the failure was not an HTTP response
	Err    error // underlying cause
}

func (e *ManifestLoadError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("manifest load failed: HTTP %d", e.Status)
	}
	return fmt.Sprintf("manifest load failed: %v", e.Err)
}

func (e *ManifestLoadError) Unwrap() error {
	return e.Err
}

var errManifestShape = errors.New(`manifest must be a JSON object {"baseUrl": string, "files": [string]}`)

// LoadManifest fetches and parses the manifest at url with a single
// uncached request.
func LoadManifest(ctx context.Context, getter Getter, url string) (*Manifest, error) {
	body, err := getter.Get(ctx, url)
	if err != nil {
		loadErr := &ManifestLoadError{URL: url, Err: err}
		var se *bphttp.StatusError
		if errors.As(err, &se) {
			loadErr.Status = se.Code
		}
		return nil, loadErr
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, &ManifestLoadError{URL: url, Err: fmt.Errorf("read manifest: %w", err)}
	}

	m, err := ParseManifest(data)
	if err != nil {
		return nil, &ManifestLoadError{URL: url, Err: err}
	}
	return m, nil
}

// ParseManifest decodes a manifest document. A missing "files" key yields an
// empty file list.
func ParseManifest(data []byte) (*Manifest, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, errManifestShape
	}

	var m Manifest
	if err := json.Unmarshal(trimmed, &m); err != nil {
		return nil, fmt.Errorf("%w: %v", errManifestShape, err)
	}
	if m.Files == nil {
		m.Files = []string{}
	}
	return &m, nil
}
