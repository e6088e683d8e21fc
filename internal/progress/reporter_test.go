package progress

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		input    int64
		expected string
	}{
		{0, "0 B"},
		{100, "100 B"},
		{1024, "1.00 KB"},
		{1536, "1.50 KB"},
		{1024 * 1024, "1.00 MB"},
		{256 * 1024 * 1024, "256.00 MB"},
		{1024 * 1024 * 1024, "1.00 GB"},
		{1024 * 1024 * 1024 * 1024, "1.00 TB"},
	}

	for _, tt := range tests {
		result := FormatBytes(tt.input)
		if result != tt.expected {
			t.Errorf("FormatBytes(%d) = %q, want %q", tt.input, result, tt.expected)
		}
	}
}

func TestParseBytes(t *testing.T) {
	tests := []struct {
		input    string
		expected int64
	}{
		{"100", 100},
		{"100B", 100},
		{"1KB", 1024},
		{"1KiB", 1024},
		{"1.5KB", 1536},
		{"1MB", 1024 * 1024},
		{"256MiB", 256 * 1024 * 1024},
		{"1 GB", 1024 * 1024 * 1024},
		{" 1TB ", 1024 * 1024 * 1024 * 1024},
	}

	for _, tt := range tests {
		result, err := ParseBytes(tt.input)
		if err != nil {
			t.Errorf("ParseBytes(%q): %v", tt.input, err)
			continue
		}
		if result != tt.expected {
			t.Errorf("ParseBytes(%q) = %d, want %d", tt.input, result, tt.expected)
		}
	}
}

func TestParseBytesInvalid(t *testing.T) {
	for _, input := range []string{"invalid", "", "12XB", "-1MB"} {
		if _, err := ParseBytes(input); err == nil {
			t.Errorf("ParseBytes(%q): expected error", input)
		}
	}
}

func TestReporterTracking(t *testing.T) {
	reporter := NewReporter(Options{TotalItems: 3, TotalChunks: 2})

	reporter.ChunkStarted(0, 2)
	reporter.ItemStarted()
	reporter.ItemStarted()
	if got := reporter.Snapshot().InFlight; got != 2 {
		t.Errorf("expected 2 in flight, got %d", got)
	}

	reporter.ItemCompleted(256)
	reporter.ItemFailed()
	reporter.ChunkFlushed(0, 2)

	s := reporter.Snapshot()
	if s.InFlight != 0 {
		t.Errorf("expected 0 in flight, got %d", s.InFlight)
	}
	if s.Items != 2 || s.Failed != 1 {
		t.Errorf("expected 2 items with 1 failed, got %d/%d", s.Items, s.Failed)
	}
	if s.Bytes != 256 {
		t.Errorf("expected 256 bytes, got %d", s.Bytes)
	}
	if s.FlushedChunks != 1 || s.LoadingChunks != 0 {
		t.Errorf("unexpected chunk counters %+v", s)
	}
}

func TestReporterConcurrentUpdates(t *testing.T) {
	reporter := NewReporter(Options{TotalItems: 100})

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			reporter.ItemStarted()
			reporter.ItemCompleted(10)
		}()
	}
	wg.Wait()

	if s := reporter.Snapshot(); s.Items != 100 || s.Bytes != 1000 || s.InFlight != 0 {
		t.Errorf("unexpected snapshot %+v", s)
	}
}

func TestReporterStartStop(t *testing.T) {
	var buf bytes.Buffer
	reporter := NewReporter(Options{
		TotalItems:     2,
		TotalChunks:    1,
		BatchSize:      20,
		Concurrency:    6,
		Output:         &buf,
		UpdateInterval: 10 * time.Millisecond,
		SourceURL:      "https://example.com/manifest.json",
	})

	reporter.Start()

	reporter.ChunkStarted(0, 2)
	reporter.ItemStarted()
	reporter.ItemCompleted(512)
	reporter.ItemStarted()
	reporter.ItemFailed()
	reporter.ChunkFlushed(0, 2)

	reporter.Stop()
	reporter.Stop()

	out := buf.String()
	for _, want := range []string{
		"[blogparts] Loading: https://example.com/manifest.json",
		"Items: 2 | Chunks: 1 x 20 | Concurrency: 6",
		"Loaded: 2 / 2 items | 1 failed | 512 B",
		"Chunks: 1 flushed",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestReporterStopWithoutStart(t *testing.T) {
	reporter := NewReporter(Options{})
	reporter.Stop()
}
