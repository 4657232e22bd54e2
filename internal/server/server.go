// internal/server/server.go

package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"isstrack/internal/config"
	"isstrack/internal/domain/fact"
	"isstrack/internal/domain/tracking"
	"isstrack/internal/observability"
	"isstrack/internal/server/handlers"
)

// Dependencies groups the services exposed over HTTP
type Dependencies struct {
	Tracker     tracking.Reader
	Facts       fact.Provider
	Chatter     handlers.Chatter
	Metrics     *observability.Collector
	NATS        *nats.Conn
	EventsTopic string
	Logger      *zap.Logger
}

// Server represents the HTTP server
type Server struct {
	server *http.Server
	router *chi.Mux
}

// NewServer creates a new HTTP server
func NewServer(cfg config.ServerConfig, deps Dependencies) *Server {
	router := NewRouter(cfg, deps)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return &Server{
		server: httpServer,
		router: router,
	}
}

// NewRouter builds the route tree
func NewRouter(cfg config.ServerConfig, deps Dependencies) *chi.Mux {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	router := chi.NewRouter()

	// Middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(requestLogger(logger))
	router.Use(middleware.Recoverer)

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CorsOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	trackerHandler := handlers.NewTrackerHandler(deps.Tracker, deps.Facts)
	chatHandler := handlers.NewChatHandler(deps.Chatter, deps.Tracker, deps.Metrics, logger)
	wsHandler := handlers.NewWebSocketHandler(deps.NATS, deps.EventsTopic, deps.Tracker, deps.Facts, logger)

	router.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(60 * time.Second))

		r.Route("/api", func(r chi.Router) {
			// Health check
			r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte("OK"))
			})

			r.Route("/v1", func(r chi.Router) {
				r.Route("/iss", func(r chi.Router) {
					r.Get("/position", trackerHandler.GetPosition)
					r.Get("/trail", trackerHandler.GetTrail)
					r.Get("/fact", trackerHandler.GetFact)
					r.Post("/fact/revealed", trackerHandler.MarkRevealed)
					r.Get("/state", trackerHandler.GetState)
				})

				r.Post("/chat", chatHandler.PostMessage)
			})
		})

		r.Method(http.MethodGet, "/metrics", deps.Metrics.Handler())
	})

	// WebSocket endpoint for live position and fact events
	router.Method(http.MethodGet, "/ws/iss", wsHandler)

	return router
}

// requestLogger logs each request through zap
func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			defer func() {
				logger.Debug("HTTP request",
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Int("status", ww.Status()),
					zap.Int("bytes", ww.BytesWritten()),
					zap.Duration("duration", time.Since(start)),
					zap.String("request_id", middleware.GetReqID(r.Context())),
				)
			}()

			next.ServeHTTP(ww, r)
		})
	}
}

// Handler returns the root HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe starts the HTTP server
func (s *Server) ListenAndServe() error {
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
