package mirror

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"testing"

	"gocloud.dev/blob"
	_ "gocloud.dev/blob/memblob"

	bphttp "github.com/tonpukusan/blog-parts-json-manager/internal/http"
	"github.com/tonpukusan/blog-parts-json-manager/internal/store"
	"github.com/tonpukusan/blog-parts-json-manager/pkg/itemload"
)

const manifestURL = "https://parts.example.com/manifest.json"

// source serves a manifest of n items; the files listed in missing are 404.
func source(n int, missing ...string) itemload.Getter {
	bodies := make(map[string]string)
	files := make([]string, n)
	for i := range files {
		files[i] = fmt.Sprintf("item-%02d.json", i)
		bodies["https://parts.example.com/items/"+files[i]] = fmt.Sprintf(`{"title":"Brand item %d","imgUrl":"i.png","aUrl":"https://www.amazon.co.jp/x/dp/b000000%03d?tag=1"}`, i, i)
	}
	for _, f := range missing {
		delete(bodies, "https://parts.example.com/items/"+f)
	}
	bodies[manifestURL] = fmt.Sprintf(`{"baseUrl":"https://parts.example.com/items/","files":["%s"]}`, strings.Join(files, `","`))

	return itemload.GetterFunc(func(ctx context.Context, url string) (io.ReadCloser, error) {
		body, ok := bodies[url]
		if !ok {
			return nil, &bphttp.StatusError{Code: http.StatusNotFound}
		}
		return io.NopCloser(strings.NewReader(body)), nil
	})
}

func openBucket(t *testing.T) *blob.Bucket {
	t.Helper()
	bucket, err := blob.OpenBucket(context.Background(), "mem://")
	if err != nil {
		t.Fatalf("open bucket: %v", err)
	}
	t.Cleanup(func() { bucket.Close() })
	return bucket
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestMirrorBasic(t *testing.T) {
	ctx := context.Background()
	bucket := openBucket(t)

	res, err := Mirror(ctx, manifestURL, bucket, Options{
		Concurrency: 3,
		BatchSize:   4,
		Getter:      source(10),
		Logger:      quietLogger(),
		BaseURL:     "https://mirror.example.com/",
	})
	if err != nil {
		t.Fatalf("Mirror: %v", err)
	}

	if res.Saved != 10 {
		t.Errorf("expected 10 saved, got %d", res.Saved)
	}
	if len(res.Failed) != 0 {
		t.Errorf("expected no failures, got %v", res.Failed)
	}

	m, err := store.ReadManifest(ctx, bucket, DefaultManifestKey)
	if err != nil {
		t.Fatalf("ReadManifest: %v", err)
	}
	if m.BaseURL != "https://mirror.example.com/" {
		t.Errorf("unexpected base url %q", m.BaseURL)
	}
	if len(m.Files) != 10 {
		t.Fatalf("expected 10 files in manifest, got %d", len(m.Files))
	}
	for i, f := range m.Files {
		if want := fmt.Sprintf("item-%02d.json", i); f != want {
			t.Errorf("manifest file %d = %q, want %q", i, f, want)
		}
	}

	data, err := bucket.ReadAll(ctx, "item-03.json")
	if err != nil {
		t.Fatalf("read item: %v", err)
	}
	if !strings.Contains(string(data), `"title": "Brand item 3"`) {
		t.Errorf("unexpected stored item: %s", data)
	}
}

func TestMirrorSkipsFailedItems(t *testing.T) {
	ctx := context.Background()
	bucket := openBucket(t)

	res, err := Mirror(ctx, manifestURL, bucket, Options{
		Getter:      source(5, "item-01.json", "item-04.json"),
		Logger:      quietLogger(),
		ManifestKey: "parts.json",
	})
	if err != nil {
		t.Fatalf("Mirror: %v", err)
	}

	if res.Saved != 3 {
		t.Errorf("expected 3 saved, got %d", res.Saved)
	}
	if len(res.Failed) != 2 {
		t.Fatalf("expected 2 failures, got %v", res.Failed)
	}
	for _, f := range res.Failed {
		if f.Reason != "HTTP 404" {
			t.Errorf("expected HTTP 404 reason for %s, got %q", f.File, f.Reason)
		}
	}

	want := []string{"item-00.json", "item-02.json", "item-03.json"}
	if strings.Join(res.Manifest.Files, ",") != strings.Join(want, ",") {
		t.Errorf("manifest files = %v, want %v", res.Manifest.Files, want)
	}

	if exists, _ := bucket.Exists(ctx, "parts.json"); !exists {
		t.Error("expected manifest at custom key")
	}
	if exists, _ := bucket.Exists(ctx, "item-01.json"); exists {
		t.Error("failed item should not be stored")
	}
}

func TestMirrorNormalize(t *testing.T) {
	ctx := context.Background()
	bucket := openBucket(t)

	_, err := Mirror(ctx, manifestURL, bucket, Options{
		Getter:    source(1),
		Logger:    quietLogger(),
		Normalize: true,
	})
	if err != nil {
		t.Fatalf("Mirror: %v", err)
	}

	data, err := bucket.ReadAll(ctx, "item-00.json")
	if err != nil {
		t.Fatalf("read item: %v", err)
	}
	if !strings.Contains(string(data), `"aUrl": "https://www.amazon.co.jp/dp/B000000000/"`) {
		t.Errorf("expected normalized aUrl, got %s", data)
	}
}

func TestMirrorManifestFailure(t *testing.T) {
	bucket := openBucket(t)

	_, err := Mirror(context.Background(), "https://parts.example.com/missing.json", bucket, Options{
		Getter: source(3),
		Logger: quietLogger(),
	})

	var mErr *itemload.ManifestLoadError
	if !errors.As(err, &mErr) {
		t.Fatalf("expected ManifestLoadError, got %v", err)
	}
	if mErr.Status != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", mErr.Status)
	}
}

func TestMirrorCircuitBreaker(t *testing.T) {
	bucket, err := blob.OpenBucket(context.Background(), "mem://")
	if err != nil {
		t.Fatalf("open bucket: %v", err)
	}
	// Writes to a closed bucket always fail.
	bucket.Close()

	res, err := Mirror(context.Background(), manifestURL, bucket, Options{
		BatchSize:              2,
		Getter:                 source(10),
		Logger:                 quietLogger(),
		MaxConsecutiveFailures: 3,
	})

	var cbErr *CircuitBreakerError
	if !errors.As(err, &cbErr) {
		t.Fatalf("expected CircuitBreakerError, got %v", err)
	}
	if cbErr.ConsecutiveFailures != 3 {
		t.Errorf("expected 3 consecutive failures, got %d", cbErr.ConsecutiveFailures)
	}
	if len(cbErr.Failed) != 3 {
		t.Errorf("expected 3 failed items, got %d", len(cbErr.Failed))
	}
	if res.Saved != 0 {
		t.Errorf("expected nothing saved, got %d", res.Saved)
	}
}

func TestMirrorNormalizeKeepsDocument(t *testing.T) {
	ctx := context.Background()
	bucket := openBucket(t)

	bodies := map[string]string{
		manifestURL:                              `{"baseUrl":"https://parts.example.com/items/","files":["a.json","b.json","c.json"]}`,
		"https://parts.example.com/items/a.json": `{"title":"X a","imgUrl":"i.png","aUrl":"https://www.amazon.co.jp/dp/B000000001/?tag=t","note":"keep me","imgWidth":0}`,
		"https://parts.example.com/items/b.json": `{"title":"X b","imgUrl":"i.png","aUrl":"https://a.example/b","imgWidth":"200"}`,
		"https://parts.example.com/items/c.json": `["not","an","object"]`,
	}
	getter := itemload.GetterFunc(func(ctx context.Context, url string) (io.ReadCloser, error) {
		body, ok := bodies[url]
		if !ok {
			return nil, &bphttp.StatusError{Code: http.StatusNotFound}
		}
		return io.NopCloser(strings.NewReader(body)), nil
	})

	res, err := Mirror(ctx, manifestURL, bucket, Options{
		Getter:                 getter,
		Logger:                 quietLogger(),
		Normalize:              true,
		MaxConsecutiveFailures: 1,
	})
	if err != nil {
		t.Fatalf("Mirror: %v", err)
	}
	if res.Saved != 2 {
		t.Errorf("expected 2 saved, got %d (failed: %v)", res.Saved, res.Failed)
	}
	if len(res.Failed) != 1 || res.Failed[0].File != "c.json" {
		t.Errorf("expected only c.json to fail, got %v", res.Failed)
	}
	if got := strings.Join(res.Manifest.Files, ","); got != "a.json,b.json" {
		t.Errorf("manifest files = %s", got)
	}

	readDoc := func(key string) map[string]any {
		t.Helper()
		data, err := bucket.ReadAll(ctx, key)
		if err != nil {
			t.Fatalf("read %s: %v", key, err)
		}
		var doc map[string]any
		if err := json.Unmarshal(data, &doc); err != nil {
			t.Fatalf("decode %s: %v", key, err)
		}
		return doc
	}

	a := readDoc("a.json")
	if a["note"] != "keep me" || a["imgWidth"] != float64(0) {
		t.Errorf("a.json lost fields: %v", a)
	}
	if a["aUrl"] != "https://www.amazon.co.jp/dp/B000000001/" {
		t.Errorf("a.json aUrl not normalized: %v", a["aUrl"])
	}
	for _, absent := range []string{"yUrl", "rUrl", "desc"} {
		if _, ok := a[absent]; ok {
			t.Errorf("a.json gained key %q", absent)
		}
	}

	if b := readDoc("b.json"); b["imgWidth"] != "200" {
		t.Errorf("b.json imgWidth changed type: %#v", b["imgWidth"])
	}
}
