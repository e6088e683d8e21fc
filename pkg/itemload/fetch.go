package itemload

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	bphttp "github.com/tonpukusan/blog-parts-json-manager/internal/http"
)

// Fetcher turns one file into an ItemRecord. It never fails: every error is
// captured in the record as an ErrorSentinel.
type Fetcher struct {
	getter Getter
}

// NewFetcher returns a Fetcher reading through getter.
func NewFetcher(getter Getter) *Fetcher {
	return &Fetcher{getter: getter}
}

// FetchOne fetches baseURL+file and parses it as JSON.
func (f *Fetcher) FetchOne(ctx context.Context, baseURL, file string) ItemRecord {
	rec, _ := f.fetch(ctx, baseURL, file)
	return rec
}

// fetch is FetchOne that also reports the number of body bytes read.
func (f *Fetcher) fetch(ctx context.Context, baseURL, file string) (rec ItemRecord, size int64) {
	url := baseURL + file
	rec = ItemRecord{File: file, URL: url}

	defer func() {
		if r := recover(); r != nil {
			rec.Data = sentinel(fmt.Sprintf("panic: %v", r))
		}
	}()

	body, err := f.getter.Get(ctx, url)
	if err != nil {
		rec.Data = sentinel(failureReason(err))
		return rec, 0
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	size = int64(len(data))
	if err != nil {
		rec.Data = sentinel(failureReason(err))
		return rec, size
	}

	var raw json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		rec.Data = sentinel(err.Error())
		return rec, size
	}
	rec.Data = raw
	return rec, size
}

// failureReason renders err for an ErrorSentinel. HTTP status failures are
// reported as "HTTP <code>".
func failureReason(err error) string {
	var se *bphttp.StatusError
	if errors.As(err, &se) {
		return se.Error()
	}
	return err.Error()
}
