package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// logTimeFormat mirrors the asctime layout of the original log file.
const logTimeFormat = "2006-01-02 15:04:05"

// logSink forwards writes to the log output and counts failures instead of
// returning them, so a full disk never stops the loop.
type logSink struct {
	out   io.Writer
	state *State
}

func (s logSink) Write(p []byte) (int, error) {
	if _, err := s.out.Write(p); err != nil {
		s.state.IncLogWriteErrors()
	}
	return len(p), nil
}

// openLogOutput opens the append-only log file. An empty path or "-" selects stdout.
func openLogOutput(path string) (io.Writer, func() error, error) {
	if path == "" || path == "-" {
		return os.Stdout, func() error { return nil }, nil
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file %s: %w", path, err)
	}
	return f, f.Close, nil
}

// newLogger builds the service logger. The text format renders
// "<time> <LEVEL> <message>" lines; json emits one zerolog object per line.
func newLogger(cfg Config, w io.Writer) zerolog.Logger {
	out := w
	if strings.ToLower(cfg.LogFormat) != "json" {
		out = zerolog.ConsoleWriter{
			Out:        w,
			NoColor:    true,
			TimeFormat: logTimeFormat,
		}
	}

	level, err := zerolog.ParseLevel(strings.ToLower(cfg.LogLevel))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	return zerolog.New(out).With().Timestamp().Logger().Level(level)
}
