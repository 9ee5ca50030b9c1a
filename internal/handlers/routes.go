package handlers

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sol1corejz/scoring-api/internal/logger"
	"github.com/sol1corejz/scoring-api/internal/metrics"
	"github.com/sol1corejz/scoring-api/internal/middlewares"
)

// Routes собирает маршруты API. Если trustedSubnet задана, /metrics
// доступен только из неё.
func (a *API) Routes(trustedSubnet string) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.StripSlashes)
	r.Use(RecoverMiddleware)

	r.NotFound(logger.RequestLogger(HandleNotFound))
	r.MethodNotAllowed(logger.RequestLogger(HandleMethodNotAllowed))

	r.Post("/method", logger.RequestLogger(
		middlewares.RequestIDMiddleware(middlewares.GzipMiddleware(a.HandleMethod)),
	))
	r.Get("/ping", logger.RequestLogger(middlewares.RequestIDMiddleware(a.HandlePing)))

	metricsHandler := metrics.Handler().ServeHTTP
	if trustedSubnet != "" {
		metricsHandler = middlewares.TrustedSubnetMiddleware(trustedSubnet, metricsHandler)
	}
	r.Get("/metrics", metricsHandler)

	return r
}
