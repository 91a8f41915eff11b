package domain

import (
	"sync/atomic"
	"time"
)

// RunStats counts events for the lifetime of one process
type RunStats struct {
	startedAt time.Time
	observed  atomic.Int64
	matched   atomic.Int64
}

// Snapshot is a point-in-time copy of RunStats
type Snapshot struct {
	StartedAt time.Time     `json:"started_at"`
	Uptime    time.Duration `json:"uptime_ns"`
	Observed  int64         `json:"messages_observed"`
	Matched   int64         `json:"matches_found"`
}

// NewRunStats creates counters starting at startedAt
func NewRunStats(startedAt time.Time) *RunStats {
	return &RunStats{startedAt: startedAt}
}

// Observe counts one received event and returns the new total
func (s *RunStats) Observe() int64 {
	return s.observed.Add(1)
}

// Match counts one matched event and returns the new total
func (s *RunStats) Match() int64 {
	return s.matched.Add(1)
}

// Snapshot reads the counters as of now
func (s *RunStats) Snapshot(now time.Time) Snapshot {
	return Snapshot{
		StartedAt: s.startedAt,
		Uptime:    now.Sub(s.startedAt),
		Observed:  s.observed.Load(),
		Matched:   s.matched.Load(),
	}
}
