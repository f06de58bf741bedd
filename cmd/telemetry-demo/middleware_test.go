package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestRequestIDMiddleware(t *testing.T) {
	s, _ := setupTest()
	router := s.setupRoutes()

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest("GET", "/", nil))
	rid := rr.Header().Get("X-Request-ID")
	_, err := uuid.Parse(rid)
	assert.NoError(t, err, "generated request id %q", rid)

	// If provided, should echo back
	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	assert.Equal(t, "abc-123", rr.Header().Get("X-Request-ID"))
}

func TestCORSMiddleware(t *testing.T) {
	s, _ := setupTest()
	rr := httptest.NewRecorder()
	s.setupRoutes().ServeHTTP(rr, httptest.NewRequest("OPTIONS", "/", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, rr.Body.String())

	s, _ = setupTest(func(c *Config) { c.EnableCORS = false })
	rr = httptest.NewRecorder()
	s.setupRoutes().ServeHTTP(rr, httptest.NewRequest("GET", "/", nil))
	assert.Empty(t, rr.Header().Get("Access-Control-Allow-Origin"))
}

func TestRateLimitMiddlewareOnlyThrottlesStreams(t *testing.T) {
	s, _ := setupTest(func(c *Config) {
		c.RateLimitRPS = 1
		c.RateLimitBurst = 1
	})
	router := s.setupRoutes()

	// Not a websocket handshake, so the first request fails the upgrade.
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest("GET", "/ws", nil))
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest("GET", "/ws", nil))
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.Equal(t, "60", rr.Header().Get("Retry-After"))

	for i := 0; i < 3; i++ {
		rr = httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest("GET", "/", nil))
		assert.Equal(t, http.StatusOK, rr.Code)
	}
}

func TestLoggingMiddleware(t *testing.T) {
	var buf bytes.Buffer
	cfg := testConfig()
	cfg.LogFormat = "json"
	s := newServer(cfg, NewState(), newLogger(cfg, &buf))

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("X-Request-ID", "log-1")
	s.setupRoutes().ServeHTTP(httptest.NewRecorder(), req)

	out := buf.String()
	assert.Contains(t, out, `"method":"GET"`)
	assert.Contains(t, out, `"path":"/"`)
	assert.Contains(t, out, `"status":200`)
	assert.Contains(t, out, `"request_id":"log-1"`)
}

func TestLoggingMiddlewareDisabled(t *testing.T) {
	var buf bytes.Buffer
	cfg := testConfig()
	cfg.LogRequests = false
	s := newServer(cfg, NewState(), newLogger(cfg, &buf))

	s.setupRoutes().ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/", nil))
	assert.Empty(t, buf.String())
}
