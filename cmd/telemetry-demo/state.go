package main

import (
	"sync/atomic"
	"time"
)

// State owns the counters shared by the telemetry loop, the metrics
// collector and the stream handlers. Counters only ever grow.
type State struct {
	startedAt      time.Time
	haiPrints      atomic.Uint64
	apiErrors      atomic.Uint64
	logWriteErrors atomic.Uint64
}

// Snapshot is a point-in-time copy of State.
type Snapshot struct {
	HaiPrints      uint64    `json:"hai_prints_total"`
	APIErrors      uint64    `json:"api_errors_total"`
	LogWriteErrors uint64    `json:"log_write_errors_total"`
	StartedAt      time.Time `json:"started_at"`
}

// NewState returns zeroed counters stamped with the current time.
func NewState() *State {
	return &State{startedAt: time.Now()}
}

func (s *State) AddHai(n uint64) {
	s.haiPrints.Add(n)
}

func (s *State) IncAPIErrors() {
	s.apiErrors.Add(1)
}

func (s *State) IncLogWriteErrors() {
	s.logWriteErrors.Add(1)
}

func (s *State) Snapshot() Snapshot {
	return Snapshot{
		HaiPrints:      s.haiPrints.Load(),
		APIErrors:      s.apiErrors.Load(),
		LogWriteErrors: s.logWriteErrors.Load(),
		StartedAt:      s.startedAt,
	}
}

// Uptime is the time since the state was created.
func (s *State) Uptime() time.Duration {
	return time.Since(s.startedAt)
}
