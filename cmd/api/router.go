package main

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yarinh5/cyber-threat-intel-dashboard/internal/adapter/controller/http/handlers"
	"github.com/yarinh5/cyber-threat-intel-dashboard/internal/adapter/controller/http/middleware"
	"github.com/yarinh5/cyber-threat-intel-dashboard/internal/config"
	"github.com/yarinh5/cyber-threat-intel-dashboard/internal/usecase/threats"
)

func newRouter(cfg *config.Config, logger *slog.Logger, threatsService *threats.Service) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recoverer(logger))
	r.Use(middleware.SecurityHeaders)

	// The dashboard frontend may be served from any origin
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"*"},
		MaxAge:         300,
	}))

	if cfg.App.RateLimit > 0 {
		r.Use(httprate.LimitByIP(cfg.App.RateLimit, time.Minute))
	}

	threatsHandler := handlers.NewThreatsHandler(threatsService)

	// promhttp negotiates its own compression
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(chimw.Compress(5))

		r.Get("/health", handlers.HealthCheck(cfg, threatsService))
		r.Post("/api/check", threatsHandler.Check)

		r.Route("/api/v1/threats", func(r chi.Router) {
			r.Get("/check/{indicator}", threatsHandler.CheckIndicator)
			r.Post("/batch", threatsHandler.BatchCheck)
			r.Get("/providers", threatsHandler.GetProviders)
		})
	})

	return r
}
