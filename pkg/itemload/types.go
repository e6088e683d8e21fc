package itemload

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
)

// Manifest names the base URL and the ordered set of item files to load.
// The order of Files defines chunk partitioning.
type Manifest struct {
	BaseURL string   `json:"baseUrl"`
	Files   []string `json:"files"`
}

// URL returns the location of file relative to the manifest base URL.
func (m *Manifest) URL(file string) string {
	return m.BaseURL + file
}

// ItemRecord is the outcome of fetching one file: either the parsed item
// or an ErrorSentinel.
type ItemRecord struct {
	File string          `json:"file"`
	URL  string          `json:"url"`
	Data json.RawMessage `json:"data"`
}

// Err returns the reason carried by an ErrorSentinel, or "" when the record
// holds item data.
func (r ItemRecord) Err() string {
	trimmed := bytes.TrimSpace(r.Data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return ""
	}
	var s struct {
		Error *string `json:"_error"`
	}
	if err := json.Unmarshal(trimmed, &s); err != nil || s.Error == nil {
		return ""
	}
	return *s.Error
}

// Failed reports whether the record stands in for a failed fetch or parse.
func (r ItemRecord) Failed() bool {
	return r.Err() != ""
}

// ErrorSentinel is the JSON value stored in ItemRecord.Data when a file
// could not be fetched or parsed. It is data, never returned as an error.
type ErrorSentinel struct {
	Error string `json:"_error"`
}

// sentinel encodes an ErrorSentinel carrying reason.
func sentinel(reason string) json.RawMessage {
	data, err := json.Marshal(ErrorSentinel{Error: reason})
	if err != nil {
		// Marshaling a struct with a single string field cannot fail.
		panic(err)
	}
	return data
}

// Batch is an ordered group of records delivered together to a BatchFunc.
type Batch []ItemRecord

// BatchFunc receives each completed chunk. Errors and panics raised by it
// are logged and do not stop the load.
type BatchFunc func(Batch) error

// Getter is the fetch primitive. Implementations must bypass any cached
// response so every load sees fresh content.
type Getter interface {
	Get(ctx context.Context, url string) (io.ReadCloser, error)
}

// GetterFunc adapts a function to the Getter interface.
type GetterFunc func(ctx context.Context, url string) (io.ReadCloser, error)

// Get calls f(ctx, url).
func (f GetterFunc) Get(ctx context.Context, url string) (io.ReadCloser, error) {
	return f(ctx, url)
}
