package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/abdulrhmanalqassas/guidekit/internal/guideservice"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *guideservice.Service, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Guides CRUD.
	r.Get("/guides", h.ListGuides)
	r.Post("/guides", h.CreateGuide)
	r.Get("/guides/*", h.GetGuide)
	r.Put("/guides/*", h.UpdateGuide)
	r.Delete("/guides/*", h.DeleteGuide)

	// Validation.
	r.Get("/validate", h.Validate)
	r.Get("/report", h.Report)

	// Rendering.
	r.Get("/render", h.Render)

	// Search.
	r.Get("/search", h.Search)

	// Cross-reference graph.
	r.Get("/graph", h.Graph)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
