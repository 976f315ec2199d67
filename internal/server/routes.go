package server

import (
	"log/slog"
	"net/http"

	"starsystem-server/internal/auth"
	"starsystem-server/internal/metrics"
	"starsystem-server/internal/middleware"
	serverHandlers "starsystem-server/internal/server/handlers"
	"starsystem-server/internal/system"
	systemHandlers "starsystem-server/internal/system/handlers"
)

type Routes struct {
	systemService *system.Service
	tokens        *auth.TokenIssuer
	metrics       *metrics.Collector
}

func NewRoutes(systemService *system.Service, tokens *auth.TokenIssuer, collector *metrics.Collector) *Routes {
	return &Routes{
		systemService: systemService,
		tokens:        tokens,
		metrics:       collector,
	}
}

func (r *Routes) Setup() *http.ServeMux {
	logger := slog.With("component", "routes", "operation", "setup")
	logger.Debug("Setting up application routes")

	mux := http.NewServeMux()

	healthHandler := serverHandlers.NewHealthHandler(r.systemService)
	systemHandler := systemHandlers.NewSystemHandler(r.systemService, r.tokens)

	owner := func(h http.HandlerFunc) http.Handler {
		return middleware.RequireOwner(r.tokens, h)
	}

	// Public endpoints
	mux.Handle("GET /api/server/health", healthHandler)
	mux.Handle("GET /metrics", r.metrics.Handler())
	mux.HandleFunc("POST /api/systems", systemHandler.CreateSystem)
	mux.HandleFunc("GET /api/systems/{id}", systemHandler.GetSystem)
	mux.HandleFunc("GET /api/systems/{id}/bodies/{query}", systemHandler.DescribeBody)
	mux.HandleFunc("GET /api/systems/{id}/route", systemHandler.Route)
	mux.HandleFunc("GET /api/systems/{id}/collisions", systemHandler.Collisions)
	mux.HandleFunc("GET /api/systems/{id}/center-of-mass", systemHandler.CenterOfMass)

	// Owner endpoints (bearer token issued at creation)
	mux.Handle("DELETE /api/systems/{id}", owner(systemHandler.DeleteSystem))
	mux.Handle("PUT /api/systems/{id}/positioning", owner(systemHandler.SetPositioning))
	mux.Handle("POST /api/systems/{id}/planets", owner(systemHandler.AddPlanet))
	mux.Handle("DELETE /api/systems/{id}/planets/{query}", owner(systemHandler.RemovePlanet))
	mux.Handle("POST /api/systems/{id}/planets/{query}/satellites", owner(systemHandler.AddSatellite))
	mux.Handle("DELETE /api/systems/{id}/satellites/{query}", owner(systemHandler.RemoveSatellite))

	logger.Info("Routes configured successfully",
		"public_endpoints", []string{"/api/server/health", "/metrics", "/api/systems", "/api/systems/{id}", "/api/systems/{id}/bodies/{query}", "/api/systems/{id}/route", "/api/systems/{id}/collisions", "/api/systems/{id}/center-of-mass"},
		"owner_endpoints", []string{"/api/systems/{id}", "/api/systems/{id}/positioning", "/api/systems/{id}/planets", "/api/systems/{id}/planets/{query}", "/api/systems/{id}/planets/{query}/satellites", "/api/systems/{id}/satellites/{query}"},
	)

	return mux
}

// Handler wraps the routes with the server's middleware chain, outermost
// first: CORS, rate limiting, metrics.
func Handler(mux http.Handler, cors *middleware.CORSMiddleware, limiter *middleware.RateLimiter, collector *metrics.Collector) http.Handler {
	return cors.Middleware(limiter.Middleware(collector.Middleware(mux)))
}
