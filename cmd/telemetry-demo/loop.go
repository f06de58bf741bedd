package main

import (
	"context"
	"math/rand"
	"time"

	"github.com/rs/zerolog"
)

// timestampLayout is the local ISO-8601 form written into loop messages.
const timestampLayout = "2006-01-02T15:04:05.000000"

// RandSource is the subset of *rand.Rand the loop draws from.
type RandSource interface {
	Float64() float64
	Intn(n int) int
}

// LoopConfig wires a Loop. A zero Interval, Step or APIs falls back to 20s,
// 20 and API_A..API_C. ErrorRate is taken as given.
type LoopConfig struct {
	State     *State
	Logger    zerolog.Logger
	Rand      RandSource
	Clock     func() time.Time
	Interval  time.Duration
	Step      uint64
	ErrorRate float64
	APIs      []string
}

// Iteration describes what a single loop step did.
type Iteration struct {
	Timestamp string
	Errored   bool
	API       string
}

// Loop periodically logs a greeting, bumps the hai counter and occasionally
// fabricates an API error. It is the only writer of the loop counters and
// must be driven from one goroutine.
type Loop struct {
	state     *State
	logger    zerolog.Logger
	rng       RandSource
	now       func() time.Time
	interval  time.Duration
	step      uint64
	errorRate float64
	apis      []string
}

// NewLoop creates a Loop.
func NewLoop(cfg LoopConfig) *Loop {
	l := &Loop{
		state:     cfg.State,
		logger:    cfg.Logger,
		rng:       cfg.Rand,
		now:       cfg.Clock,
		interval:  cfg.Interval,
		step:      cfg.Step,
		errorRate: cfg.ErrorRate,
		apis:      cfg.APIs,
	}
	if l.rng == nil {
		l.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if l.now == nil {
		l.now = time.Now
	}
	if l.interval <= 0 {
		l.interval = 20 * time.Second
	}
	if l.step == 0 {
		l.step = 20
	}
	if len(l.apis) == 0 {
		l.apis = []string{"API_A", "API_B", "API_C"}
	}
	return l
}

// Step runs one iteration.
func (l *Loop) Step() Iteration {
	it := Iteration{Timestamp: l.now().Format(timestampLayout)}

	l.logger.Info().Msg("Hai " + it.Timestamp)
	l.state.AddHai(l.step)

	if l.rng.Float64() < l.errorRate {
		it.Errored = true
		it.API = l.apis[l.rng.Intn(len(l.apis))]
		l.logger.Error().Msg("Error in " + it.API + " at " + it.Timestamp)
		l.state.IncAPIErrors()
	}
	return it
}

// Run steps immediately and then once per interval until ctx is cancelled.
func (l *Loop) Run(ctx context.Context) error {
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		l.Step()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
