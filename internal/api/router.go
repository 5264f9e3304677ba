package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/skiffworks/skiff/internal/api/handlers"
	apiMiddleware "github.com/skiffworks/skiff/internal/api/middleware"
	"github.com/skiffworks/skiff/internal/auth"
	"github.com/skiffworks/skiff/internal/logger"
	"github.com/skiffworks/skiff/internal/session"
	"github.com/skiffworks/skiff/internal/state"
	"github.com/skiffworks/skiff/pkg/metrics"
)

// NewRouter creates and configures the chi router with all middleware and routes.
//
// The router is configured with:
//   - Request ID middleware for request tracking
//   - Real IP extraction for proper client identification
//   - Custom request logging using the internal logger
//   - Panic recovery to prevent server crashes
//   - Permissive CORS so browser-based clients can reach the API
//
// Routes:
//   - GET /ws - WebSocket session endpoint
//   - GET /health - Daemon health summary
//   - GET /metrics - Prometheus metrics (404 unless metrics are enabled)
//   - POST /api/login - User authentication
//   - POST /api/refresh - Token refresh
//   - GET /api/sessions - Connected session listing (authenticated)
//   - POST /api/offload - Offload task dispatch (authenticated)
//
// Everything except /ws runs under a request timeout. WebSocket sessions are
// long-lived, so /ws mounts outside the timeout group; cutting them off at
// the timeout would tear down every connected client.
func NewRouter(tokens *auth.Service, verifier auth.CredentialVerifier, st *state.ServerState, sessions *session.Handler) http.Handler {
	r := chi.NewRouter()

	// Middleware stack - order matters
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/ws", serveWS(sessions))

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(30 * time.Second))

		healthHandler := handlers.NewHealthHandler(st)
		r.Get("/health", healthHandler.Health)

		// Root redirect to health for convenience
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, "/health", http.StatusTemporaryRedirect)
		})

		r.Handle("/metrics", metrics.Handler())

		authHandler := handlers.NewAuthHandler(tokens, verifier)

		r.Route("/api", func(r chi.Router) {
			// Public endpoints
			r.Post("/login", authHandler.Login)
			r.Post("/refresh", authHandler.Refresh)

			// Authenticated endpoints
			r.Group(func(r chi.Router) {
				r.Use(apiMiddleware.JWTAuth(tokens))

				sessionsHandler := handlers.NewSessionsHandler(st)
				r.Get("/sessions", sessionsHandler.List)

				offloadHandler := handlers.NewOffloadHandler(st)
				r.Post("/offload", offloadHandler.Submit)
			})
		})
	})

	return r
}

// isQuietPath returns true for endpoints polled by probes and scrapers, whose
// request logs are demoted to DEBUG.
func isQuietPath(path string) bool {
	return path == "/health" || path == "/metrics"
}

// requestLogger is a custom middleware that logs requests using the internal logger.
//
// It logs:
//   - Request start (DEBUG level): method, path, remote addr
//   - Request completion (INFO level): method, path, status, duration
//   - Health and metrics requests are logged at DEBUG level to reduce noise
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := middleware.GetReqID(r.Context())

		logger.Debug("API request started",
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
		)

		// Wrap response writer to capture status code
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		duration := time.Since(start)

		logArgs := []any{
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", duration.String(),
		}

		if isQuietPath(r.URL.Path) {
			logger.Debug("API request completed", logArgs...)
		} else {
			logger.Info("API request completed", logArgs...)
		}
	})
}
