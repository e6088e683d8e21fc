package http

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func fastOptions() Options {
	opts := DefaultOptions()
	opts.RetryBackoff = 10 * time.Millisecond
	opts.RetryMaxBackoff = 50 * time.Millisecond
	return opts
}

func TestGet(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("expected GET, got %s", r.Method)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"title":"hello"}`))
	}))
	defer server.Close()

	client := NewClient(DefaultOptions())
	body, err := client.Get(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if string(data) != `{"title":"hello"}` {
		t.Errorf("unexpected body %q", data)
	}
}

func TestGetSendsNoCacheHeaders(t *testing.T) {
	var cacheControl, pragma string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cacheControl = r.Header.Get("Cache-Control")
		pragma = r.Header.Get("Pragma")
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := NewClient(DefaultOptions())
	body, err := client.Get(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	body.Close()

	if !strings.Contains(cacheControl, "no-cache") {
		t.Errorf("expected Cache-Control no-cache, got %q", cacheControl)
	}
	if pragma != "no-cache" {
		t.Errorf("expected Pragma no-cache, got %q", pragma)
	}
}

func TestGetNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClient(DefaultOptions())
	_, err := client.Get(context.Background(), server.URL)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	var se *StatusError
	if !errors.As(err, &se) || se.Code != http.StatusNotFound {
		t.Fatalf("expected *StatusError with 404, got %v", err)
	}
	if se.Error() != "HTTP 404" {
		t.Errorf("expected %q, got %q", "HTTP 404", se.Error())
	}
}

func TestRetryOnServerError(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	client := NewClient(fastOptions())
	body, err := client.Get(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	body.Close()

	if attempts.Load() != 3 {
		t.Errorf("expected 3 attempts, got %d", attempts.Load())
	}
}

func TestRetryExhausted(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	opts := fastOptions()
	opts.RetryAttempts = 1
	client := NewClient(opts)
	_, err := client.Get(context.Background(), server.URL)

	var se *StatusError
	if !errors.As(err, &se) || se.Code != http.StatusBadGateway {
		t.Fatalf("expected *StatusError with 502, got %v", err)
	}
	if !errors.Is(err, ErrServerError) {
		t.Errorf("expected ErrServerError, got %v", err)
	}
	if attempts.Load() != 2 {
		t.Errorf("expected 2 attempts, got %d", attempts.Load())
	}
}

func TestMaxBodySize(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(strings.Repeat("x", 100)))
	}))
	defer server.Close()

	tests := []struct {
		name    string
		max     int64
		wantErr bool
	}{
		{"under limit", 200, false},
		{"exact limit", 100, false},
		{"over limit", 50, true},
		{"disabled", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultOptions()
			opts.MaxBodySize = tt.max
			client := NewClient(opts)

			body, err := client.Get(context.Background(), server.URL)
			if err != nil {
				t.Fatalf("Get: %v", err)
			}
			defer body.Close()

			_, err = io.ReadAll(body)
			if tt.wantErr && !errors.Is(err, ErrBodyTooLarge) {
				t.Errorf("expected ErrBodyTooLarge, got %v", err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(time.Second)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	client := NewClient(DefaultOptions())
	_, err := client.Get(ctx, server.URL)
	if err == nil {
		t.Error("expected error due to context cancellation")
	}
}
