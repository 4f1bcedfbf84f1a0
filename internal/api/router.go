package api

import (
	"github.com/go-chi/chi/v5"
)

// NewRouter creates a chi router with all API routes mounted behind the
// auth middleware. events, if non-nil, is served at GET /events.
func NewRouter(svc Service, authEnabled bool, token string, events Events) chi.Router {
	h := NewHandler(svc, events)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	r.Get("/clusters", h.ListClusters)
	r.Get("/clusters/{name}", h.GetCluster)
	r.Post("/analyze", h.Analyze)
	r.Get("/search", h.Search)

	if events != nil {
		r.Get("/events", events.ServeHTTP)
	}

	return r
}
