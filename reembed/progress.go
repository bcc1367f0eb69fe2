package reembed

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// ProgressTracker prints a single updating progress line.
type ProgressTracker struct {
	writer         io.Writer
	total          int
	scanned        int
	failed         int
	reportInterval int
	lastReported   int
	startTime      time.Time
	started        bool
	mu             sync.Mutex
}

// NewProgressTracker creates a tracker for total records that reports every
// reportInterval scanned records.
func NewProgressTracker(writer io.Writer, total, reportInterval int) *ProgressTracker {
	if reportInterval < 1 {
		reportInterval = 1
	}
	return &ProgressTracker{
		writer:         writer,
		total:          total,
		reportInterval: reportInterval,
	}
}

// Start resets the counters and the clock.
func (p *ProgressTracker) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.startTime = time.Now()
	p.started = true
	p.scanned = 0
	p.failed = 0
	p.lastReported = 0
}

// Update records the running totals. Scanned is capped at the total.
func (p *ProgressTracker) Update(scanned, failed int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started {
		return
	}

	p.scanned = min(scanned, p.total)
	p.failed = failed

	if p.scanned-p.lastReported >= p.reportInterval {
		p.report()
		p.lastReported = p.scanned
	}
}

// Finish prints the final line with the scanned count set to the total.
func (p *ProgressTracker) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started {
		return
	}

	p.scanned = p.total
	p.report()
	fmt.Fprintln(p.writer)
}

// Elapsed returns the time since Start.
func (p *ProgressTracker) Elapsed() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started {
		return 0
	}
	return time.Since(p.startTime)
}

// report must be called with the lock held.
func (p *ProgressTracker) report() {
	elapsed := time.Since(p.startTime)
	rate := float64(p.scanned) / elapsed.Seconds()

	percentage := 0.0
	if p.total > 0 {
		percentage = float64(p.scanned) / float64(p.total) * 100.0
	}

	fmt.Fprintf(p.writer, "\rProgress: %d/%d recipes (%.1f%%), %d failed - %.1f recipes/s",
		p.scanned, p.total, percentage, p.failed, rate)
}
