package backfill

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// Tracker reports batch progress to a writer, typically os.Stderr for
// CLI runs. Reports are rate-limited to every reportEvery records so a
// large batch does not flood the terminal.
type Tracker struct {
	writer       io.Writer
	total        int
	current      int
	reportEvery  int
	lastReported int
	startTime    time.Time
	started      bool
	mu           sync.Mutex
}

// NewTracker creates a progress tracker for total records, reporting
// every reportEvery records.
func NewTracker(writer io.Writer, total, reportEvery int) *Tracker {
	if reportEvery < 1 {
		reportEvery = 1
	}
	return &Tracker{
		writer:      writer,
		total:       total,
		reportEvery: reportEvery,
	}
}

// Start begins timing. Updates before Start are ignored.
func (t *Tracker) Start() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.startTime = time.Now()
	t.started = true
	t.current = 0
	t.lastReported = 0
}

// Update sets the current progress, reporting if a report interval was
// crossed since the last report.
func (t *Tracker) Update(current int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.started {
		return
	}

	if current > t.total {
		current = t.total
	}
	t.current = current

	if t.current-t.lastReported >= t.reportEvery {
		t.report()
		t.lastReported = t.current
	}
}

// Finish pins progress to the total and prints the final line.
func (t *Tracker) Finish() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.started {
		return
	}

	t.current = t.total
	t.report()
	fmt.Fprintln(t.writer)
}

// Elapsed returns the time since Start.
func (t *Tracker) Elapsed() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.started {
		return 0
	}
	return time.Since(t.startTime)
}

// report prints the current progress. Caller holds the lock.
func (t *Tracker) report() {
	elapsed := time.Since(t.startTime)
	rate := float64(t.current) / elapsed.Seconds()

	percentage := 0.0
	if t.total > 0 {
		percentage = float64(t.current) / float64(t.total) * 100.0
	}

	fmt.Fprintf(t.writer, "\r%d/%d records (%.1f%%) - %.1f records/s",
		t.current, t.total, percentage, rate)
}
