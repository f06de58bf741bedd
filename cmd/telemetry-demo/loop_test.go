package main

import (
	"bytes"
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoopStepAddsStepPerIteration(t *testing.T) {
	state := NewState()
	loop := newTestLoop(state, rand.New(rand.NewSource(7)))

	const n = 250
	for i := 0; i < n; i++ {
		loop.Step()
	}
	assert.Equal(t, uint64(20*n), state.Snapshot().HaiPrints)
}

func TestLoopForcedBranches(t *testing.T) {
	t.Run("never error", func(t *testing.T) {
		state := NewState()
		loop := newTestLoop(state, neverError)
		for i := 0; i < 10; i++ {
			it := loop.Step()
			assert.False(t, it.Errored)
			assert.Empty(t, it.API)
		}
		snap := state.Snapshot()
		assert.Equal(t, uint64(200), snap.HaiPrints)
		assert.Zero(t, snap.APIErrors)
	})

	t.Run("always error", func(t *testing.T) {
		state := NewState()
		loop := newTestLoop(state, fixedRand{f: 0.29, n: 2})
		for i := 0; i < 10; i++ {
			it := loop.Step()
			assert.True(t, it.Errored)
			assert.Equal(t, "API_C", it.API)
		}
		assert.Equal(t, uint64(10), state.Snapshot().APIErrors)
	})

	t.Run("boundary draw is not an error", func(t *testing.T) {
		state := NewState()
		loop := newTestLoop(state, fixedRand{f: 0.3})
		assert.False(t, loop.Step().Errored)
		assert.Zero(t, state.Snapshot().APIErrors)
	})
}

func TestLoopErrorRateIsBinomial(t *testing.T) {
	state := NewState()
	loop := newTestLoop(state, rand.New(rand.NewSource(42)))

	const n = 10000
	seen := map[string]int{}
	for i := 0; i < n; i++ {
		if it := loop.Step(); it.Errored {
			seen[it.API]++
		}
	}

	// mean 3000, sd ~46
	errs := state.Snapshot().APIErrors
	assert.InDelta(t, 3000, float64(errs), 200)
	assert.Len(t, seen, 3)
	for api, c := range seen {
		assert.InDelta(t, float64(errs)/3, float64(c), 250, "api %s", api)
	}
}

func TestLoopCountersNeverDecrease(t *testing.T) {
	state := NewState()
	loop := newTestLoop(state, rand.New(rand.NewSource(3)))

	prev := state.Snapshot()
	for i := 0; i < 100; i++ {
		loop.Step()
		cur := state.Snapshot()
		require.GreaterOrEqual(t, cur.HaiPrints, prev.HaiPrints)
		require.GreaterOrEqual(t, cur.APIErrors, prev.APIErrors)
		prev = cur
	}
}

func TestLoopLogLines(t *testing.T) {
	var buf bytes.Buffer
	state := NewState()
	at := time.Date(2024, 1, 2, 3, 4, 5, 123456000, time.Local)
	loop := NewLoop(LoopConfig{
		State:     state,
		Logger:    newLogger(testConfig(), &buf),
		Rand:      fixedRand{f: 0.1, n: 1},
		Clock:     func() time.Time { return at },
		ErrorRate: 0.3,
	})

	it := loop.Step()

	assert.Equal(t, "2024-01-02T03:04:05.123456", it.Timestamp)
	out := buf.String()
	assert.Contains(t, out, "INF Hai 2024-01-02T03:04:05.123456")
	assert.Contains(t, out, "ERR Error in API_B at 2024-01-02T03:04:05.123456")
}

func TestNewLoopDefaults(t *testing.T) {
	loop := NewLoop(LoopConfig{State: NewState()})
	assert.Equal(t, 20*time.Second, loop.interval)
	assert.Equal(t, uint64(20), loop.step)
	assert.Equal(t, []string{"API_A", "API_B", "API_C"}, loop.apis)
	assert.NotNil(t, loop.rng)
	assert.NotNil(t, loop.now)
}

func TestLoopRunStepsAndStopsOnCancel(t *testing.T) {
	state := NewState()
	loop := NewLoop(LoopConfig{
		State:    state,
		Logger:   zerolog.Nop(),
		Rand:     neverError,
		Interval: 10 * time.Millisecond,
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- loop.Run(ctx) }()

	require.Eventually(t, func() bool {
		return state.Snapshot().HaiPrints >= 60
	}, 2*time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("loop did not stop after cancel")
	}
	assert.Zero(t, state.Snapshot().HaiPrints%20)
}

func TestLoopRunFirstIterationIsImmediate(t *testing.T) {
	state := NewState()
	loop := NewLoop(LoopConfig{State: state, Logger: zerolog.Nop(), Rand: neverError, Interval: time.Hour})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go loop.Run(ctx)

	require.Eventually(t, func() bool {
		return state.Snapshot().HaiPrints == 20
	}, time.Second, 5*time.Millisecond)
}

func TestLoopRunCancelledBeforeStart(t *testing.T) {
	state := NewState()
	loop := NewLoop(LoopConfig{State: state, Logger: zerolog.Nop()})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, loop.Run(ctx), context.Canceled)
	assert.Zero(t, state.Snapshot().HaiPrints)
}
