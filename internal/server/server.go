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

	"crowdbalance/internal/config"
	"crowdbalance/internal/domain/crowd"
	"crowdbalance/internal/domain/report"
	"crowdbalance/internal/server/handlers"
)

// Server represents the HTTP server
type Server struct {
	server *http.Server
	router *chi.Mux
}

// NewServer creates a new HTTP server
func NewServer(
	cfg config.ServerConfig,
	natsConn *nats.Conn,
	tracker crowd.Tracker,
	sweeper handlers.SweepRunner,
	reportService report.Service,
) *Server {
	router := chi.NewRouter()

	// Middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))

	// CORS configuration
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CorsOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Create handler dependencies
	locationHandler := handlers.NewLocationHandler(tracker)
	reportHandler := handlers.NewReportHandler(reportService)
	sweepHandler := handlers.NewSweepHandler(sweeper)

	// Routes
	router.Route("/api", func(r chi.Router) {
		// Health check
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("OK"))
		})

		// API version
		r.Route("/v1", func(r chi.Router) {
			// Locations API
			r.Route("/locations", func(r chi.Router) {
				r.Get("/", locationHandler.ListLocations)
				r.Post("/", locationHandler.CreateLocation)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", locationHandler.GetLocation)
					r.Put("/", locationHandler.UpdateLocation)
					r.Delete("/", locationHandler.DeleteLocation)
					r.Patch("/crowd", locationHandler.RecordCrowdLevel)
					r.Get("/scores", locationHandler.GetScores)
					r.Get("/activities", locationHandler.GetActivities)
					r.Get("/organizers", locationHandler.GetOrganizers)
					r.Put("/organizers", locationHandler.AssignOrganizers)
				})
			})

			// Missing reports API
			r.Route("/reports", func(r chi.Router) {
				r.Get("/", reportHandler.ListReports)
				r.Post("/", reportHandler.CreateReport)
				r.Get("/{id}", reportHandler.GetReport)
				r.Patch("/{id}", reportHandler.UpdateReportStatus)
			})

			// Admin API
			r.Route("/admin", func(r chi.Router) {
				r.Post("/sweep", sweepHandler.SweepNow)
			})
		})
	})

	// WebSocket endpoint for live score updates
	router.Get("/ws/locations/{id}", handlers.LocationWebSocketHandler(natsConn, tracker))

	// Create HTTP server
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

// ListenAndServe starts the HTTP server
func (s *Server) ListenAndServe() error {
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
