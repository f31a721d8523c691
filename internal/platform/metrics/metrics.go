package metrics

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

type Collector struct {
	totalRequests   uint64
	errorRequests   uint64
	rateLimited     uint64
	totalDurationMs uint64

	mu          sync.Mutex
	transitions map[string]uint64
}

func New() *Collector {
	return &Collector{transitions: map[string]uint64{}}
}

func (c *Collector) Record(status int, duration time.Duration) {
	if c == nil {
		return
	}
	atomic.AddUint64(&c.totalRequests, 1)
	if status >= 500 {
		atomic.AddUint64(&c.errorRequests, 1)
	}
	if status == 429 {
		atomic.AddUint64(&c.rateLimited, 1)
	}
	atomic.AddUint64(&c.totalDurationMs, uint64(duration.Milliseconds()))
}

// RecordTransition counts one attendance action outcome, e.g. ("break_start", "ok")
// or ("clock_out", "must_end_break_first").
func (c *Collector) RecordTransition(action, outcome string) {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.transitions[action+":"+outcome]++
	c.mu.Unlock()
}

func (c *Collector) Snapshot() map[string]any {
	total := atomic.LoadUint64(&c.totalRequests)
	errs := atomic.LoadUint64(&c.errorRequests)
	limited := atomic.LoadUint64(&c.rateLimited)
	totalMs := atomic.LoadUint64(&c.totalDurationMs)
	avg := float64(0)
	if total > 0 {
		avg = float64(totalMs) / float64(total)
	}

	c.mu.Lock()
	keys := make([]string, 0, len(c.transitions))
	for key := range c.transitions {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	transitions := make(map[string]uint64, len(keys))
	for _, key := range keys {
		transitions[key] = c.transitions[key]
	}
	c.mu.Unlock()

	return map[string]any{
		"requestsTotal":         total,
		"errorsTotal":           errs,
		"rateLimitedTotal":      limited,
		"avgDurationMs":         avg,
		"totalDurationMs":       totalMs,
		"attendanceTransitions": transitions,
	}
}
