package main

import (
	"github.com/gorilla/mux"
)

// setupRoutes configures all HTTP routes and middleware for the application listener.
func (s *server) setupRoutes() *mux.Router {
	router := mux.NewRouter()

	// Apply middleware
	router.Use(s.loggingMiddleware)
	router.Use(s.corsMiddleware)
	router.Use(requestIDMiddleware)
	if s.rateLimiter != nil {
		router.Use(s.rateLimitMiddleware)
	}

	// Liveness
	router.HandleFunc("/", healthHandler).Methods("GET", "HEAD", "OPTIONS")

	// Server info
	router.HandleFunc("/info", s.infoHandler).Methods("GET")

	// Counter streams
	router.HandleFunc("/events", s.sseHandler).Methods("GET")
	router.HandleFunc("/ws", s.websocketHandler).Methods("GET")

	return router
}
