package main

import (
	"encoding/json"
	"net/http"
	"runtime"
)

// healthBody is the exact liveness payload.
const healthBody = `{"status":"ok"}`

// Health check handler
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(healthBody))
}

// Server info handler
func (s *server) infoHandler(w http.ResponseWriter, r *http.Request) {
	snap := s.state.Snapshot()
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"request_id": r.Header.Get("X-Request-ID"),
		"server": map[string]interface{}{
			"hostname":   s.cfg.Hostname,
			"version":    version,
			"go_version": runtime.Version(),
			"platform":   runtime.GOOS + "/" + runtime.GOARCH,
			"start_time": snap.StartedAt,
			"uptime":     s.state.Uptime().String(),
		},
		"loop": map[string]interface{}{
			"interval":   s.cfg.LoopInterval.String(),
			"hai_step":   s.cfg.HaiStep,
			"error_rate": s.cfg.ErrorRate,
			"apis":       s.cfg.SimulatedAPIs,
		},
		"counters": snap,
	})
}
