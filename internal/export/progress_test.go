package export

import (
	"testing"
	"time"
)

func TestProgress(t *testing.T) {
	start := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	p := NewProgress(4, start)

	r := p.Done(Stats{Nodes: 600, Ways: 300, Relations: 100}, 2048, start.Add(10*time.Second))
	if r.Done != 1 || r.Total != 4 {
		t.Errorf("Done/Total = %d/%d, want 1/4", r.Done, r.Total)
	}
	if r.Percentage != 25 {
		t.Errorf("Percentage = %v, want 25", r.Percentage)
	}
	if r.ETA != 30*time.Second {
		t.Errorf("ETA = %v, want 30s", r.ETA)
	}
	if r.Throughput != 100 {
		t.Errorf("Throughput = %v, want 100", r.Throughput)
	}

	for i := 0; i < 3; i++ {
		r = p.Done(Stats{}, 1024, start.Add(20*time.Second))
	}
	if r.ETA != 0 || r.Percentage != 100 || r.Bytes != 5*1024 {
		t.Errorf("final report = %+v, want ETA 0, 100%%, 5120 bytes", r)
	}
}

func TestFormatETA(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "calculating..."},
		{42 * time.Second, "42s"},
		{3*time.Minute + 5*time.Second, "3m 5s"},
		{2*time.Hour + time.Minute, "2h 1m 0s"},
	}
	for _, tt := range tests {
		if got := FormatETA(tt.d); got != tt.want {
			t.Errorf("FormatETA(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestFormatThroughputAndBytes(t *testing.T) {
	if got := FormatThroughput(2_500_000); got != "2.5M/s" {
		t.Errorf("FormatThroughput = %q, want 2.5M/s", got)
	}
	if got := FormatThroughput(1500); got != "1.5K/s" {
		t.Errorf("FormatThroughput = %q, want 1.5K/s", got)
	}
	if got := FormatBytes(3 * 1024 * 1024); got != "3.0 MB" {
		t.Errorf("FormatBytes = %q, want 3.0 MB", got)
	}
	if got := FormatBytes(12); got != "12 B" {
		t.Errorf("FormatBytes = %q, want 12 B", got)
	}
}
