package main

import (
	"net/http"
)

// rateLimitMiddleware throttles new stream subscriptions. The liveness route
// is never limited.
func (s *server) rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/events" && r.URL.Path != "/ws" {
			next.ServeHTTP(w, r)
			return
		}
		if !s.rateLimiter.Allow() {
			// Set headers before writing status/body
			w.Header().Set("Retry-After", "60")
			http.Error(w, "Rate limit exceeded", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}
