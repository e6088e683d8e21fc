package progress

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// Options configures the progress reporter.
type Options struct {
	// TotalItems is the number of files named by the manifest.
	TotalItems int

	// TotalChunks is the number of chunks the load is split into.
	TotalChunks int

	// BatchSize is the number of items per chunk (for display).
	BatchSize int

	// Concurrency is the number of simultaneous fetches (for display).
	Concurrency int

	// Output is where to write progress output.
	// Default: os.Stderr
	Output io.Writer

	// UpdateInterval is how often to update the progress display.
	// Default: 500ms
	UpdateInterval time.Duration

	// SourceURL is the manifest being loaded (for display).
	SourceURL string
}

// Reporter outputs human-readable progress information. It implements
// itemload.Progress.
type Reporter struct {
	opts Options

	mu             sync.Mutex
	completedBytes atomic.Int64
	completedItems atomic.Int32
	failedItems    atomic.Int32
	inFlight       atomic.Int32
	flushedChunks  atomic.Int32
	loadingChunks  atomic.Int32
	startTime      time.Time
	lastUpdate     time.Time
	lastItems      int32
	stopCh         chan struct{}
	doneCh         chan struct{}
	started        bool
	stopped        bool
}

// NewReporter creates a new progress reporter.
func NewReporter(opts Options) *Reporter {
	if opts.Output == nil {
		opts.Output = os.Stderr
	}
	if opts.UpdateInterval == 0 {
		opts.UpdateInterval = 500 * time.Millisecond
	}

	return &Reporter{
		opts:   opts,
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
}

// Start begins outputting progress information.
func (r *Reporter) Start() {
	r.mu.Lock()
	r.started = true
	r.startTime = time.Now()
	r.lastUpdate = r.startTime
	r.mu.Unlock()

	fmt.Fprintf(r.opts.Output, "[blogparts] Loading: %s\n", r.opts.SourceURL)
	fmt.Fprintf(r.opts.Output, "[blogparts] Items: %d | Chunks: %d x %d | Concurrency: %d\n",
		r.opts.TotalItems,
		r.opts.TotalChunks,
		r.opts.BatchSize,
		r.opts.Concurrency,
	)

	go r.updateLoop()
}

// Stop stops the progress reporter and waits for the final status line.
func (r *Reporter) Stop() {
	r.mu.Lock()
	if r.stopped || !r.started {
		r.stopped = true
		r.mu.Unlock()
		return
	}
	r.stopped = true
	r.mu.Unlock()

	close(r.stopCh)
	<-r.doneCh
}

// ChunkStarted marks a chunk as loading.
func (r *Reporter) ChunkStarted(index, size int) {
	r.loadingChunks.Add(1)
}

// ChunkFlushed marks a chunk as handed to the batch callback.
func (r *Reporter) ChunkFlushed(index, size int) {
	r.loadingChunks.Add(-1)
	r.flushedChunks.Add(1)
}

// ItemStarted marks an item fetch as in flight.
func (r *Reporter) ItemStarted() {
	r.inFlight.Add(1)
}

// ItemCompleted marks an item as fetched and parsed.
func (r *Reporter) ItemCompleted(size int64) {
	r.completedBytes.Add(size)
	r.completedItems.Add(1)
	r.inFlight.Add(-1)
}

// ItemFailed marks an item as failed. Failed items still count as done.
func (r *Reporter) ItemFailed() {
	r.failedItems.Add(1)
	r.completedItems.Add(1)
	r.inFlight.Add(-1)
}

// Snapshot is a point-in-time view of the counters.
type Snapshot struct {
	Items         int
	Failed        int
	InFlight      int
	Bytes         int64
	FlushedChunks int
	LoadingChunks int
}

// Snapshot returns the current counters.
func (r *Reporter) Snapshot() Snapshot {
	return Snapshot{
		Items:         int(r.completedItems.Load()),
		Failed:        int(r.failedItems.Load()),
		InFlight:      int(r.inFlight.Load()),
		Bytes:         r.completedBytes.Load(),
		FlushedChunks: int(r.flushedChunks.Load()),
		LoadingChunks: int(r.loadingChunks.Load()),
	}
}

// updateLoop periodically updates the progress display.
func (r *Reporter) updateLoop() {
	defer close(r.doneCh)

	ticker := time.NewTicker(r.opts.UpdateInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.stopCh:
			r.printFinalStatus()
			return
		case <-ticker.C:
			r.printProgress()
		}
	}
}

func (r *Reporter) printProgress() {
	now := time.Now()
	s := r.Snapshot()

	elapsed := now.Sub(r.lastUpdate).Seconds()
	if elapsed < 0.1 {
		elapsed = 0.1
	}
	rate := float64(int32(s.Items)-r.lastItems) / elapsed

	r.lastUpdate = now
	r.lastItems = int32(s.Items)

	var percent float64
	if r.opts.TotalItems > 0 {
		percent = float64(s.Items) / float64(r.opts.TotalItems) * 100
	}

	pending := r.opts.TotalChunks - s.FlushedChunks - s.LoadingChunks
	if pending < 0 {
		pending = 0
	}

	fmt.Fprintf(r.opts.Output, "\r[blogparts] Progress: %.1f%% | %d / %d items | %d failed | %s | %.1f items/s    ",
		percent,
		s.Items,
		r.opts.TotalItems,
		s.Failed,
		formatBytes(s.Bytes),
		rate,
	)
	fmt.Fprintf(r.opts.Output, "\n[blogparts] Chunks: %d flushed | %d loading | %d pending    \033[A",
		s.FlushedChunks,
		s.LoadingChunks,
		pending,
	)
}

func (r *Reporter) printFinalStatus() {
	s := r.Snapshot()
	duration := time.Since(r.startTime)

	fmt.Fprintf(r.opts.Output, "\r[blogparts] Loaded: %d / %d items | %d failed | %s    \n",
		s.Items,
		r.opts.TotalItems,
		s.Failed,
		formatBytes(s.Bytes),
	)
	fmt.Fprintf(r.opts.Output, "[blogparts] Chunks: %d flushed | Total time: %s\n",
		s.FlushedChunks,
		formatDuration(duration),
	)
}

// formatBytes formats bytes as a human-readable string.
func formatBytes(b int64) string {
	const (
		KB = 1024
		MB = KB * 1024
		GB = MB * 1024
		TB = GB * 1024
	)

	switch {
	case b >= TB:
		return fmt.Sprintf("%.2f TB", float64(b)/float64(TB))
	case b >= GB:
		return fmt.Sprintf("%.2f GB", float64(b)/float64(GB))
	case b >= MB:
		return fmt.Sprintf("%.2f MB", float64(b)/float64(MB))
	case b >= KB:
		return fmt.Sprintf("%.2f KB", float64(b)/float64(KB))
	default:
		return fmt.Sprintf("%d B", b)
	}
}

// formatDuration formats a duration as a human-readable string.
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	if d < time.Hour {
		m := int(d.Minutes())
		s := int(d.Seconds()) % 60
		return fmt.Sprintf("%dm %ds", m, s)
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%dh %dm %ds", h, m, s)
}

// FormatBytes is exported for use by other packages.
func FormatBytes(b int64) string {
	return formatBytes(b)
}

// ParseBytes parses a human-readable byte string (e.g., "1MB" or "512KiB").
// All units are binary.
func ParseBytes(s string) (int64, error) {
	var multiplier int64 = 1
	s = strings.TrimSpace(s)
	s = strings.Replace(s, "iB", "B", 1)

	switch {
	case strings.HasSuffix(s, "TB"):
		multiplier = 1024 * 1024 * 1024 * 1024
		s = s[:len(s)-2]
	case strings.HasSuffix(s, "GB"):
		multiplier = 1024 * 1024 * 1024
		s = s[:len(s)-2]
	case strings.HasSuffix(s, "MB"):
		multiplier = 1024 * 1024
		s = s[:len(s)-2]
	case strings.HasSuffix(s, "KB"):
		multiplier = 1024
		s = s[:len(s)-2]
	case strings.HasSuffix(s, "B"):
		s = s[:len(s)-1]
	}

	var value float64
	var rest string
	n, _ := fmt.Sscanf(strings.TrimSpace(s), "%f%s", &value, &rest)
	if n != 1 || value < 0 {
		return 0, fmt.Errorf("invalid byte string: %s", s)
	}

	return int64(value * float64(multiplier)), nil
}
