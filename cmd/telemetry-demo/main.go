package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
)

const version = "1.0.0"

const shutdownTimeout = 5 * time.Second

func main() {
	stderr := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, NoColor: true, TimeFormat: logTimeFormat}).
		With().Timestamp().Logger()

	cfg, err := loadConfig()
	if err != nil {
		stderr.Fatal().Err(err).Msg("invalid configuration")
	}

	state := NewState()

	out, closeLog, err := openLogOutput(cfg.LogFile)
	if err != nil {
		stderr.Warn().Err(err).Msg("falling back to stdout for logs")
		out, closeLog = os.Stdout, func() error { return nil }
	}
	defer closeLog()

	logger := newLogger(cfg, logSink{out: out, state: state})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err = run(ctx, cfg, state, logger)
	stop()
	if err != nil {
		reportFailure(err, logger, stderr)
		os.Exit(1)
	}
	logger.Info().Msg("telemetry demo server stopped")
}

// reportFailure writes err to the service log and to stderr, so a startup
// failure is visible even when the service log is a file.
func reportFailure(err error, logger, stderr zerolog.Logger) {
	logger.Error().Err(err).Msg("telemetry demo server failed")
	stderr.Error().Err(err).Msg("telemetry demo server failed")
}

// run binds both listeners, serves them, drives the telemetry loop and
// shuts everything down when ctx ends or a server fails. Listener errors
// are returned before anything starts.
func run(ctx context.Context, cfg Config, state *State, logger zerolog.Logger) error {
	if cfg.EnableTLS {
		if err := ensureCertificate(cfg, logger); err != nil {
			return err
		}
	}

	appLn, err := listen(":" + cfg.Port)
	if err != nil {
		return err
	}
	metricsLn, err := listen(":" + cfg.MetricsPort)
	if err != nil {
		appLn.Close()
		return err
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	metricsSrv := newMetricsServer(newMetricsRegistry(state))
	app := newServer(cfg, state, logger)
	appSrv := app.httpServer(runCtx)

	errCh := make(chan error, 2)
	go func() {
		logger.Info().Str("addr", metricsLn.Addr().String()).Msg("Prometheus metrics server started")
		if err := metricsSrv.Serve(metricsLn); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("metrics server: %w", err)
			return
		}
		errCh <- nil
	}()
	go func() {
		errCh <- app.serveApp(appSrv, appLn)
	}()

	loop := NewLoop(LoopConfig{
		State:     state,
		Logger:    logger,
		Interval:  cfg.LoopInterval,
		Step:      cfg.HaiStep,
		ErrorRate: cfg.ErrorRate,
		APIs:      cfg.SimulatedAPIs,
	})
	loopDone := make(chan struct{})
	go func() {
		defer close(loopDone)
		loop.Run(runCtx)
	}()

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info().Msg("shutdown signal received")
	case runErr = <-errCh:
		if runErr == nil {
			runErr = errors.New("server stopped unexpectedly")
		}
	}

	cancel()
	<-loopDone

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()
	if err := appSrv.Shutdown(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("application server shutdown")
	}
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("metrics server shutdown")
	}
	return runErr
}
