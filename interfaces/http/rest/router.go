package rest

import (
	"net/http"
	"strings"

	"memorylane-backend/application/commands/bus"
	querybus "memorylane-backend/application/queries/bus"
	"memorylane-backend/interfaces/http/rest/handlers"
	"memorylane-backend/interfaces/http/rest/middleware"
	"memorylane-backend/interfaces/http/rest/v1"
	pkgerrors "memorylane-backend/pkg/errors"
	"memorylane-backend/pkg/observability"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// Router creates and configures the HTTP router
type Router struct {
	commandBus *bus.CommandBus
	queryBus   *querybus.QueryBus
	metrics    *observability.Metrics
	logger     *zap.Logger
}

// NewRouter creates a new router instance
func NewRouter(
	commandBus *bus.CommandBus,
	queryBus *querybus.QueryBus,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *Router {
	return &Router{
		commandBus: commandBus,
		queryBus:   queryBus,
		metrics:    metrics,
		logger:     logger,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	// Global middleware
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.Logger(rt.logger))
	if rt.metrics != nil {
		router.Use(middleware.Metrics(rt.metrics))
	}
	router.Use(versionMiddleware)

	// CORS configuration
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000", "https://*.memorylane.app"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check
	router.Get("/health", rt.healthCheck)
	router.Get("/ready", rt.readinessCheck)

	// Prometheus scrape endpoint
	if rt.metrics != nil {
		router.Method(http.MethodGet, "/metrics", rt.metrics.Handler())
	}

	errorHandler := pkgerrors.NewErrorHandler(rt.logger, false)
	memoryHandler := handlers.NewMemoryHandler(rt.commandBus, rt.queryBus, errorHandler, rt.logger)
	locationHandler := handlers.NewLocationHandler(rt.queryBus, errorHandler, rt.logger)
	reputationHandler := handlers.NewReputationHandler(rt.queryBus, errorHandler, rt.logger)

	// API v1 routes (legacy), served directly for clients that cannot follow
	// redirects; the handlers are shared, only the mounting differs
	router.Mount("/api/v1", v1.NewRouter(memoryHandler, locationHandler, reputationHandler))

	// API v2 routes (current)
	router.Route("/api/v2", func(r chi.Router) {
		r.Use(middleware.Authenticate())

		// Memory endpoints
		r.Route("/memories", func(r chi.Router) {
			r.Post("/", memoryHandler.CreateMemory)
			r.Get("/", memoryHandler.ListMemories)
			r.Get("/{memoryID}", memoryHandler.GetMemory)
			r.Post("/{memoryID}/likes", memoryHandler.LikeMemory)
		})

		// Location and exploration endpoints
		r.Route("/locations", func(r chi.Router) {
			r.Get("/explore", locationHandler.Explore)
			r.Get("/stats", locationHandler.GetLocationStats)
		})
		r.Get("/landmarks/count", locationHandler.GetLandmarkCount)

		// Reputation endpoints
		r.Get("/reputation/{identity}", reputationHandler.GetReputation)
		r.Get("/identities/{identity}/memory-count", reputationHandler.GetMemoryCount)
	})

	return router
}

// healthCheck handles health check requests
func (rt *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy"}`))
}

// readinessCheck handles readiness check requests
func (rt *Router) readinessCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ready"}`))
}

// versionMiddleware adds API version headers to all responses
func versionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		version := "v2"
		if strings.Contains(r.URL.Path, "/api/v1") {
			version = "v1"
		}

		w.Header().Set("X-API-Version", version)
		w.Header().Set("X-API-Latest", "v2")
		w.Header().Set("X-API-Deprecated", "false")

		if version == "v1" {
			w.Header().Set("X-API-Deprecated", "true")
		}

		next.ServeHTTP(w, r)
	})
}
