package common

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

// Metrics tracks the progress of a batch metadata scan.
type Metrics struct {
	mu         sync.Mutex
	start      time.Time
	end        time.Time
	files      int64
	totalFiles int64
	bytes      int64
	recognized int64
	skipped    int64
	warnings   int64
}

func NewMetrics() *Metrics {
	return &Metrics{}
}

func (m *Metrics) Start() {
	m.mu.Lock()
	if m.start.IsZero() {
		m.start = time.Now()
		m.end = time.Time{}
	}
	m.mu.Unlock()
}

func (m *Metrics) Stop() {
	m.mu.Lock()
	if !m.start.IsZero() && m.end.IsZero() {
		m.end = time.Now()
	}
	m.mu.Unlock()
}

func (m *Metrics) SetTotalFiles(n int64) {
	if n < 0 {
		n = 0
	}
	m.mu.Lock()
	m.totalFiles = n
	m.mu.Unlock()
}

// AddFile records one completed extraction.
func (m *Metrics) AddFile(size int64, warnings int, recognized bool) {
	m.mu.Lock()
	m.files++
	if size > 0 {
		m.bytes += size
	}
	m.warnings += int64(warnings)
	if recognized {
		m.recognized++
	} else {
		m.skipped++
	}
	m.mu.Unlock()
}

func (m *Metrics) Snapshot() MetricsSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return MetricsSnapshot{
		Duration:   m.elapsedLocked(),
		Files:      m.files,
		TotalFiles: m.totalFiles,
		Bytes:      m.bytes,
		Recognized: m.recognized,
		Skipped:    m.skipped,
		Warnings:   m.warnings,
	}
}

func (m *Metrics) elapsedLocked() time.Duration {
	if m.start.IsZero() {
		return 0
	}
	if !m.end.IsZero() {
		return m.end.Sub(m.start)
	}
	return time.Since(m.start)
}

type MetricsSnapshot struct {
	Duration   time.Duration
	Files      int64
	TotalFiles int64
	Bytes      int64
	Recognized int64
	Skipped    int64
	Warnings   int64
}

func (s MetricsSnapshot) Completion() float64 {
	if s.TotalFiles <= 0 {
		return 0
	}
	ratio := float64(s.Files) / float64(s.TotalFiles)
	if ratio < 0 {
		return 0
	}
	if ratio > 1 {
		return 1
	}
	return ratio
}

func FormatBytes(b int64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div := float64(unit)
	exp := 0
	for n := float64(b) / div; n >= unit && exp < 6; n /= unit {
		div *= unit
		exp++
	}
	prefixes := []string{"KiB", "MiB", "GiB", "TiB", "PiB", "EiB"}
	return fmt.Sprintf("%.2f %s", float64(b)/div, prefixes[exp])
}

func formatProgressLine(s MetricsSnapshot) string {
	if s.TotalFiles > 0 {
		pct := s.Completion() * 100
		return fmt.Sprintf("Progress: %6.2f%% (%d / %d files, %s, %d warnings)",
			pct, s.Files, s.TotalFiles, FormatBytes(s.Bytes), s.Warnings)
	}
	return fmt.Sprintf("Processed: %d files (%s, %d warnings)", s.Files, FormatBytes(s.Bytes), s.Warnings)
}

// StartProgressPrinter periodically rewrites a progress line on w until
// the returned stop function is called.
func StartProgressPrinter(w io.Writer, m *Metrics, interval time.Duration) func() {
	if m == nil || w == nil {
		return func() {}
	}
	if interval <= 0 {
		interval = time.Second
	}
	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		lastLen := 0
		for {
			select {
			case <-ticker.C:
				line := formatProgressLine(m.Snapshot())
				pad := lastLen - len(line)
				if pad > 0 {
					line += strings.Repeat(" ", pad)
				}
				fmt.Fprintf(w, "\r%s", line)
				lastLen = len(line)
			case <-done:
				if lastLen > 0 {
					fmt.Fprintf(w, "\r%s\r\n", strings.Repeat(" ", lastLen))
				}
				return
			}
		}
	}()
	return func() {
		close(done)
		wg.Wait()
	}
}
