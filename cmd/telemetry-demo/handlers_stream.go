package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

// streamFrame is one counter update pushed to SSE and WebSocket clients.
type streamFrame struct {
	Sequence  int       `json:"sequence"`
	Timestamp time.Time `json:"timestamp"`
	Uptime    string    `json:"uptime"`
	Counters  Snapshot  `json:"counters"`
}

func (s *server) nextFrame(seq int) streamFrame {
	return streamFrame{
		Sequence:  seq,
		Timestamp: time.Now(),
		Uptime:    s.state.Uptime().String(),
		Counters:  s.state.Snapshot(),
	}
}

// Server-Sent Events handler
func (s *server) sseHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	flusher, ok := w.(http.Flusher)
	if !ok {
		s.logger.Error().Str("remote", r.RemoteAddr).Msg("Streaming not supported")
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	s.logger.Debug().Str("remote", r.RemoteAddr).Msg("SSE connection established")

	ticker := time.NewTicker(s.cfg.SSEInterval)
	keepAlive := time.NewTicker(1 * time.Second)
	defer ticker.Stop()
	defer keepAlive.Stop()

	seq := 0
	for {
		select {
		case <-r.Context().Done():
			s.logger.Debug().Str("remote", r.RemoteAddr).Err(r.Context().Err()).Msg("SSE connection closed")
			return
		case <-ticker.C:
			seq++
			data, err := json.Marshal(s.nextFrame(seq))
			if err != nil {
				s.logger.Error().Err(err).Str("remote", r.RemoteAddr).Msg("SSE JSON marshal error")
				return
			}
			if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
				s.logger.Warn().Err(err).Str("remote", r.RemoteAddr).Msg("SSE write error")
				return
			}
			flusher.Flush()
		case <-keepAlive.C:
			if _, err := fmt.Fprintf(w, ": keep-alive\n\n"); err != nil {
				s.logger.Warn().Err(err).Str("remote", r.RemoteAddr).Msg("SSE keep-alive write error")
				return
			}
			flusher.Flush()
		}
	}
}

// WebSocket handler
func (s *server) websocketHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn().Err(err).Str("remote", r.RemoteAddr).Msg("WebSocket upgrade error")
		return
	}
	defer conn.Close()
	s.logger.Debug().Str("remote", r.RemoteAddr).Msg("WebSocket connected")

	// Drain client frames so close and ping control messages are processed.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(s.cfg.SSEInterval)
	defer ticker.Stop()

	seq := 0
	for {
		select {
		case <-r.Context().Done():
			conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
				time.Now().Add(time.Second))
			return
		case <-closed:
			s.logger.Debug().Str("remote", r.RemoteAddr).Msg("WebSocket closed by client")
			return
		case <-ticker.C:
			seq++
			conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
			if err := conn.WriteJSON(s.nextFrame(seq)); err != nil {
				s.logger.Warn().Err(err).Str("remote", r.RemoteAddr).Msg("WebSocket write error")
				return
			}
		}
	}
}
