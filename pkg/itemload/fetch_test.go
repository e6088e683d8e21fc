package itemload

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
)

func TestFetchOne(t *testing.T) {
	tests := []struct {
		name    string
		getter  Getter
		wantErr string
	}{
		{
			name: "valid json",
			getter: GetterFunc(func(ctx context.Context, url string) (io.ReadCloser, error) {
				return io.NopCloser(strings.NewReader(`{"title":"x"}`)), nil
			}),
		},
		{
			name: "invalid json",
			getter: GetterFunc(func(ctx context.Context, url string) (io.ReadCloser, error) {
				return io.NopCloser(strings.NewReader(`{"title":`)), nil
			}),
			wantErr: "unexpected end of JSON input",
		},
		{
			name: "transport error",
			getter: GetterFunc(func(ctx context.Context, url string) (io.ReadCloser, error) {
				return nil, errors.New("dial tcp: connection refused")
			}),
			wantErr: "dial tcp: connection refused",
		},
		{
			name: "getter panics",
			getter: GetterFunc(func(ctx context.Context, url string) (io.ReadCloser, error) {
				panic("boom")
			}),
			wantErr: "panic: boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := NewFetcher(tt.getter).FetchOne(context.Background(), "https://example.com/p/", "a.json")

			if rec.File != "a.json" {
				t.Errorf("expected file a.json, got %s", rec.File)
			}
			if rec.URL != "https://example.com/p/a.json" {
				t.Errorf("unexpected URL %s", rec.URL)
			}
			if rec.Err() != tt.wantErr {
				t.Errorf("Err() = %q, want %q", rec.Err(), tt.wantErr)
			}
		})
	}
}

func TestItemRecordErr(t *testing.T) {
	tests := []struct {
		data string
		want string
	}{
		{`{"_error":"HTTP 500"}`, "HTTP 500"},
		{`{"title":"ok"}`, ""},
		{`[1,2,3]`, ""},
		{`"text"`, ""},
		{``, ""},
		{`{"_error":5}`, ""},
	}

	for _, tt := range tests {
		rec := ItemRecord{Data: []byte(tt.data)}
		if got := rec.Err(); got != tt.want {
			t.Errorf("Err(%s) = %q, want %q", tt.data, got, tt.want)
		}
	}
}

func TestParseManifest(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantFiles int
		wantErr   bool
	}{
		{"full", `{"baseUrl":"https://x/","files":["a.json","b.json"]}`, 2, false},
		{"missing files", `{"baseUrl":"https://x/"}`, 0, false},
		{"array", `["a.json"]`, 0, true},
		{"null", `null`, 0, true},
		{"files not strings", `{"baseUrl":"https://x/","files":[1,2]}`, 0, true},
		{"garbage", `<html>`, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := ParseManifest([]byte(tt.input))
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseManifest() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if m.Files == nil {
				t.Error("expected non-nil file list")
			}
			if len(m.Files) != tt.wantFiles {
				t.Errorf("expected %d files, got %d", tt.wantFiles, len(m.Files))
			}
		})
	}
}
