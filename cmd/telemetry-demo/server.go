package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
	"golang.org/x/time/rate"
)

// server carries everything the application listener's handlers need.
type server struct {
	cfg         Config
	state       *State
	logger      zerolog.Logger
	rateLimiter *rate.Limiter
	upgrader    websocket.Upgrader
}

func newServer(cfg Config, state *State, logger zerolog.Logger) *server {
	s := &server{
		cfg:    cfg,
		state:  state,
		logger: logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
	if cfg.RateLimitRPS > 0 && cfg.RateLimitBurst > 0 {
		s.rateLimiter = rate.NewLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst)
	}
	return s
}

// httpServer wraps the router with h2c so HTTP/2 works over cleartext.
// Request contexts derive from base, which lets shutdown end open streams.
func (s *server) httpServer(base context.Context) *http.Server {
	return &http.Server{
		Handler:           h2c.NewHandler(s.setupRoutes(), &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		IdleTimeout:       120 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return base },
	}
}

// serveApp serves the application listener, over TLS when enabled.
func (s *server) serveApp(srv *http.Server, ln net.Listener) error {
	var err error
	if s.cfg.EnableTLS {
		s.logger.Info().Str("addr", ln.Addr().String()).Str("cert", s.cfg.CertFile).Msg("Starting HTTPS server")
		err = srv.ServeTLS(ln, s.cfg.CertFile, s.cfg.KeyFile)
	} else {
		s.logger.Info().Str("addr", ln.Addr().String()).Msg("Starting HTTP server (with H2C support)")
		err = srv.Serve(ln)
	}
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("application server: %w", err)
	}
	return nil
}

// listen binds addr up front so a busy port fails startup instead of a
// background goroutine.
func listen(addr string) (net.Listener, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", addr, err)
	}
	return ln, nil
}
