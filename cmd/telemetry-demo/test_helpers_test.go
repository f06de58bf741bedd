package main

import (
	"net/http/httptest"
	"time"

	"github.com/rs/zerolog"
)

// flusherResponseWriter supports http.Flusher for SSE tests using httptest
type flusherResponseWriter struct {
	*httptest.ResponseRecorder
}

func (frw *flusherResponseWriter) Flush() {
	// No-op for testing; httptest doesn't write to a real connection
}

// fixedRand always returns the same draws, forcing one loop branch.
type fixedRand struct {
	f float64
	n int
}

func (r fixedRand) Float64() float64 { return r.f }
func (r fixedRand) Intn(int) int     { return r.n }

var (
	alwaysError = fixedRand{f: 0, n: 0}
	neverError  = fixedRand{f: 0.99, n: 0}
)

func testConfig() Config {
	return Config{
		Port:          "0",
		MetricsPort:   "0",
		EnableCORS:    true,
		LogRequests:   true,
		LogFile:       "-",
		LogFormat:     "text",
		LogLevel:      "info",
		LoopInterval:  20 * time.Second,
		HaiStep:       20,
		ErrorRate:     0.3,
		SimulatedAPIs: []string{"API_A", "API_B", "API_C"},
		SSEInterval:   50 * time.Millisecond,
		Hostname:      "test-host",
	}
}

// setupTest builds a server over fresh state with a silent logger.
func setupTest(mutators ...func(*Config)) (*server, *State) {
	cfg := testConfig()
	for _, m := range mutators {
		m(&cfg)
	}
	state := NewState()
	return newServer(cfg, state, zerolog.Nop()), state
}

func newTestLoop(state *State, rng RandSource) *Loop {
	return NewLoop(LoopConfig{
		State:     state,
		Logger:    zerolog.Nop(),
		Rand:      rng,
		Step:      20,
		ErrorRate: 0.3,
	})
}
