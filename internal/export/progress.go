package export

import (
	"fmt"
	"sync"
	"time"
)

// Progress tracks a batch of snapshot exports. Safe for concurrent use.
type Progress struct {
	mu       sync.Mutex
	total    int
	done     int
	elements int64
	bytes    int64
	start    time.Time
}

// NewProgress starts tracking a batch of total snapshots
func NewProgress(total int, now time.Time) *Progress {
	return &Progress{total: total, start: now}
}

// Report is a point-in-time view of a batch
type Report struct {
	Done       int
	Total      int
	Percentage float64
	Elapsed    time.Duration
	ETA        time.Duration
	Throughput float64 // elements per second
	Bytes      int64
}

// Done records one finished export and returns the updated report.
func (p *Progress) Done(stats Stats, size int64, now time.Time) Report {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.done++
	p.elements += int64(stats.Nodes + stats.Ways + stats.Relations)
	p.bytes += size
	return p.report(now)
}

func (p *Progress) report(now time.Time) Report {
	elapsed := now.Sub(p.start)
	r := Report{
		Done:    p.done,
		Total:   p.total,
		Elapsed: elapsed.Round(time.Second),
		Bytes:   p.bytes,
	}
	if p.total > 0 {
		r.Percentage = float64(p.done) / float64(p.total) * 100
	}
	if p.done > 0 && p.done < p.total {
		per := elapsed / time.Duration(p.done)
		r.ETA = (per * time.Duration(p.total-p.done)).Round(time.Second)
	}
	if elapsed.Seconds() > 0 {
		r.Throughput = float64(p.elements) / elapsed.Seconds()
	}
	return r
}

// FormatETA formats the ETA duration in a human-readable format
func FormatETA(d time.Duration) string {
	if d <= 0 {
		return "calculating..."
	}

	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%dh %dm %ds", h, m, s)
	}
	if m > 0 {
		return fmt.Sprintf("%dm %ds", m, s)
	}
	return fmt.Sprintf("%ds", s)
}

// FormatThroughput formats elements per second
func FormatThroughput(perSec float64) string {
	if perSec >= 1_000_000 {
		return fmt.Sprintf("%.1fM/s", perSec/1_000_000)
	}
	if perSec >= 1_000 {
		return fmt.Sprintf("%.1fK/s", perSec/1_000)
	}
	return fmt.Sprintf("%.0f/s", perSec)
}

func FormatBytes(bytes int64) string {
	const (
		KB = 1024
		MB = KB * 1024
		GB = MB * 1024
	)

	switch {
	case bytes >= GB:
		return fmt.Sprintf("%.1f GB", float64(bytes)/GB)
	case bytes >= MB:
		return fmt.Sprintf("%.1f MB", float64(bytes)/MB)
	case bytes >= KB:
		return fmt.Sprintf("%.1f KB", float64(bytes)/KB)
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}
