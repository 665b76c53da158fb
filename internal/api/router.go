package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/postview/internal/blog"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
// Session routes are mounted only when the service has a session manager.
func NewRouter(svc *blog.Service, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Posts.
	r.Get("/posts", h.ListPosts)
	r.Get("/posts/{slug}", h.GetPost)
	r.Get("/search", h.Search)

	// Feed ingest entry point.
	r.Post("/feed", h.IngestFeed)
	r.Get("/status", h.Status)

	// Reader sessions.
	if svc.Sessions() != nil {
		r.Post("/sessions", h.CreateSession)
		r.Get("/sessions/{id}", h.GetSession)
		r.Delete("/sessions/{id}", h.DeleteSession)
		r.Post("/sessions/{id}/{action}", h.SessionAction)
	}

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
