package pipeline

import (
	"sync"
	"time"
)

// latencyWindow is the number of recent per-review latencies kept for the
// moving average behind progress estimates.
const latencyWindow = 50

// Tracker records per-review attempts and outcomes, and derives progress
// estimates from a moving average of recent per-review latency. Safe for
// concurrent use by workers.
type Tracker struct {
	mu        sync.Mutex
	attempts  map[string]int
	completed int
	failed    int
	latencies []time.Duration
	next      int
	filled    bool
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{
		attempts:  make(map[string]int),
		latencies: make([]time.Duration, latencyWindow),
	}
}

// RecordAttempt notes one processing attempt for the review and returns
// the attempt number, starting at 1.
func (t *Tracker) RecordAttempt(reviewID string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.attempts[reviewID]++
	return t.attempts[reviewID]
}

// Attempts returns how many attempts the review has consumed.
func (t *Tracker) Attempts(reviewID string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.attempts[reviewID]
}

// RecordSuccess notes a completed review and its end-to-end latency.
func (t *Tracker) RecordSuccess(reviewID string, latency time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.completed++
	t.observe(latency)
}

// RecordFailure notes a permanently failed review and its latency.
func (t *Tracker) RecordFailure(reviewID string, latency time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.failed++
	t.observe(latency)
}

// observe pushes a latency sample into the ring buffer.
// Caller must hold the lock.
func (t *Tracker) observe(latency time.Duration) {
	t.latencies[t.next] = latency
	t.next++
	if t.next == latencyWindow {
		t.next = 0
		t.filled = true
	}
}

// Progress is a point-in-time snapshot of run progress.
type Progress struct {
	Completed  int
	Failed     int
	AvgLatency time.Duration

	// Remaining estimates the time left to drain `remaining` reviews with
	// `workers` parallel units. Zero when no estimate is possible.
	Remaining time.Duration
}

// Progress computes a snapshot. remaining is the number of reviews not yet
// in a terminal state; workers is the concurrency used to drain them.
func (t *Tracker) Progress(remaining, workers int) Progress {
	t.mu.Lock()
	defer t.mu.Unlock()

	p := Progress{Completed: t.completed, Failed: t.failed}

	n := t.next
	if t.filled {
		n = latencyWindow
	}
	if n == 0 {
		return p
	}

	var sum time.Duration
	for i := 0; i < n; i++ {
		sum += t.latencies[i]
	}
	p.AvgLatency = sum / time.Duration(n)

	if remaining > 0 && workers > 0 {
		p.Remaining = p.AvgLatency * time.Duration(remaining) / time.Duration(workers)
	}
	return p
}
