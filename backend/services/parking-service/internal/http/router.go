package httpserver

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// Routes groups handlers.
type Routes struct {
	FreeSpaces     http.HandlerFunc
	EnterParking   http.HandlerFunc
	ExitParking    http.HandlerFunc
	CheckCost      http.HandlerFunc
	ActiveSessions http.HandlerFunc
	SessionEvents  http.HandlerFunc
	Occupancy      http.HandlerFunc
	Metrics        http.Handler
	Health         http.HandlerFunc
}

// NewRouter registers endpoints.
func NewRouter(routes Routes, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(logger))
	r.Use(middleware.Recoverer)

	if routes.FreeSpaces != nil {
		r.Get("/freeSpaces", routes.FreeSpaces)
	}
	if routes.EnterParking != nil {
		r.Post("/enterParking", routes.EnterParking)
	}
	if routes.ExitParking != nil {
		r.Post("/exitParking", routes.ExitParking)
	}
	if routes.CheckCost != nil {
		r.Get("/checkCost", routes.CheckCost)
	}
	if routes.ActiveSessions != nil {
		r.Get("/sessions/active", routes.ActiveSessions)
	}
	if routes.SessionEvents != nil {
		r.Get("/sessions/{sessionId}/events", routes.SessionEvents)
	}
	if routes.Occupancy != nil {
		r.Get("/ws/occupancy", routes.Occupancy)
	}
	if routes.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", routes.Metrics)
	}
	if routes.Health != nil {
		r.Get("/health", routes.Health)
	}
	return r
}

func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	logger = logger.With(zap.String("component", "http"))
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Info("request",
				zap.String("request_id", middleware.GetReqID(r.Context())),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
			)
		})
	}
}
