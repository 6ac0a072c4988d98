package v1

import (
	"net/http"

	"memorylane-backend/interfaces/http/rest/handlers"
	"memorylane-backend/interfaces/http/rest/middleware"

	"github.com/gorilla/mux"
)

// NewRouter creates the v1 API router. It is kept for clients that cannot
// follow the permanent redirect the main router serves; the handlers are the
// same, only the mounting differs.
func NewRouter(
	memoryHandler *handlers.MemoryHandler,
	locationHandler *handlers.LocationHandler,
	reputationHandler *handlers.ReputationHandler,
) *mux.Router {
	router := mux.NewRouter()

	// Health stays reachable without a token, matching the main router
	open := router.PathPrefix("/api/v1").Subrouter()
	open.Use(versionHeaders)
	open.HandleFunc("/health", healthCheck).Methods("GET")

	v1 := router.PathPrefix("/api/v1").Subrouter()
	v1.Use(versionHeaders)
	v1.Use(mux.MiddlewareFunc(middleware.Authenticate()))

	// Memory endpoints
	v1.HandleFunc("/memories", memoryHandler.CreateMemory).Methods("POST")
	v1.HandleFunc("/memories", memoryHandler.ListMemories).Methods("GET")
	v1.HandleFunc("/memories/{memoryID}", memoryHandler.GetMemory).Methods("GET")
	v1.HandleFunc("/memories/{memoryID}/likes", memoryHandler.LikeMemory).Methods("POST")

	// Location endpoints
	v1.HandleFunc("/locations/explore", locationHandler.Explore).Methods("GET")
	v1.HandleFunc("/locations/stats", locationHandler.GetLocationStats).Methods("GET")
	v1.HandleFunc("/landmarks/count", locationHandler.GetLandmarkCount).Methods("GET")

	// Reputation endpoints
	v1.HandleFunc("/reputation/{identity}", reputationHandler.GetReputation).Methods("GET")
	v1.HandleFunc("/identities/{identity}/memory-count", reputationHandler.GetMemoryCount).Methods("GET")

	return router
}

// versionHeaders adds API version headers to responses
func versionHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-API-Version", "v1")
		w.Header().Set("X-API-Deprecated", "true")
		next.ServeHTTP(w, r)
	})
}

// healthCheck provides a health check endpoint
func healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy","version":"v1"}`))
}
