package routes

import (
	"net/http"

	"github.com/ingres-rag/groundwater-backend/internal/api/handlers"
	"github.com/ingres-rag/groundwater-backend/internal/api/middleware"
	"github.com/ingres-rag/groundwater-backend/internal/infrastructure/observability"
)

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	queryHandler    *handlers.QueryHandler
	searchHandler   *handlers.SearchHandler
	feedbackHandler *handlers.FeedbackHandler
	adminHandler    *handlers.AdminHandler
	healthHandler   *handlers.HealthHandler

	metrics *observability.Metrics
}

// NewRouter creates a new router
func NewRouter(
	queryHandler *handlers.QueryHandler,
	searchHandler *handlers.SearchHandler,
	feedbackHandler *handlers.FeedbackHandler,
	adminHandler *handlers.AdminHandler,
	healthHandler *handlers.HealthHandler,
	metrics *observability.Metrics,
) *Router {
	return &Router{
		mux:             http.NewServeMux(),
		queryHandler:    queryHandler,
		searchHandler:   searchHandler,
		feedbackHandler: feedbackHandler,
		adminHandler:    adminHandler,
		healthHandler:   healthHandler,
		metrics:         metrics,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	r.mux.HandleFunc("GET /health", r.healthHandler.GetHealth)

	// Query pipeline endpoint
	r.mux.HandleFunc("POST /api/query", r.queryHandler.HandleQuery)

	// Direct retriever endpoints
	r.mux.HandleFunc("GET /api/search/structured", r.searchHandler.SearchStructured)
	r.mux.HandleFunc("GET /api/search/unstructured", r.searchHandler.SearchUnstructured)

	// Feedback endpoint
	r.mux.HandleFunc("POST /api/feedback", r.feedbackHandler.SubmitFeedback)

	// Operational endpoints
	r.mux.HandleFunc("GET /api/stats", r.adminHandler.GetStats)
	r.mux.HandleFunc("POST /api/admin/reprocess", r.adminHandler.TriggerReprocess)

	// Apply middleware in reverse order (last middleware wraps first)
	var handler http.Handler = r.mux
	handler = middleware.LoggingMiddleware(handler)
	handler = middleware.ObservabilityMiddleware(r.metrics)(handler)
	handler = middleware.CORSMiddleware(handler)

	return handler
}
