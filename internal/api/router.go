package api

import (
	"encoding/json"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/mux"
	"golang.org/x/time/rate"

	"github.com/rideinsights/backend/internal/api/handlers"
	"github.com/rideinsights/backend/pkg/config"
	"github.com/rideinsights/backend/pkg/logger"
)

// NewRouter creates and configures the HTTP router
func NewRouter(cfg *config.Config, queryHandler *handlers.QueryHandler, datasetHandler *handlers.DatasetHandler, log *logger.Logger) http.Handler {
	r := mux.NewRouter()

	// Health check
	r.HandleFunc("/health", healthCheckHandler).Methods("GET")

	// API
	api := r.PathPrefix("/api").Subrouter()

	// Query catalog endpoints
	api.HandleFunc("/queries", queryHandler.List).Methods("GET")
	api.HandleFunc("/queries/{name}", queryHandler.Run).Methods("GET")

	// Derived chart series
	api.HandleFunc("/charts/daily", queryHandler.DailyRides).Methods("GET")
	api.HandleFunc("/charts/status", queryHandler.StatusBreakdown).Methods("GET")

	// Dataset endpoints
	api.HandleFunc("/dataset/summary", datasetHandler.Summary).Methods("GET")
	api.HandleFunc("/dataset/refresh", datasetHandler.Refresh).Methods("POST")

	// Exported dashboard images, when the folder exists
	if cfg.Data.ImagesDir != "" {
		if info, err := os.Stat(cfg.Data.ImagesDir); err == nil && info.IsDir() {
			r.PathPrefix("/images/").Handler(
				http.StripPrefix("/images/", http.FileServer(http.Dir(cfg.Data.ImagesDir))))
		}
	}

	// Apply middleware
	r.Use(loggingMiddleware(log))
	r.Use(recoveryMiddleware(log))
	r.Use(rateLimitMiddleware(cfg))

	return r
}

// healthCheckHandler returns server health status
func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  "ok",
		"service": "rideinsights-api",
	})
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			next.ServeHTTP(w, r)

			log.WithFields(map[string]interface{}{
				"method":   r.Method,
				"path":     r.URL.Path,
				"duration": time.Since(start),
			}).Debug("HTTP request")
		})
	}
}

// recoveryMiddleware recovers from panics
func recoveryMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					log.WithFields(map[string]interface{}{
						"error": err,
						"path":  r.URL.Path,
					}).Error("Panic recovered")

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					json.NewEncoder(w).Encode(map[string]string{
						"error": "Internal server error",
					})
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// rateLimitMiddleware caps the request rate for the whole server. One
// shared limiter is enough for a single-user tool.
func rateLimitMiddleware(cfg *config.Config) mux.MiddlewareFunc {
	limiter := rate.NewLimiter(rate.Limit(cfg.API.RateLimitPerSec), cfg.API.RateLimitBurst)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				json.NewEncoder(w).Encode(map[string]string{
					"error": "Too many requests",
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
