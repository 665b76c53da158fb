package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/postview/internal/blog"
	"github.com/starford/postview/internal/feed"
	"github.com/starford/postview/internal/render"
	"github.com/starford/postview/internal/session"
	"github.com/starford/postview/internal/urlenc"
)

// Site holds page-level settings for the server-rendered viewer.
type Site struct {
	Title    string
	Labels   render.Labels
	Callback string // JSONP callback used by /feed.js when none is given
	FeedURL  string // script URL embedded in pages; empty for none
}

// WebHandler serves the viewer pages and the JSONP feed script.
type WebHandler struct {
	svc      *blog.Service
	site     Site
	renderer *session.Manager
}

// NewWebHandler creates a WebHandler.
func NewWebHandler(svc *blog.Service, site Site) *WebHandler {
	if site.Callback == "" {
		site.Callback = "renderFeed"
	}
	return &WebHandler{
		svc:      svc,
		site:     site,
		renderer: session.NewManager(session.WithLabels(site.Labels)),
	}
}

// NewWebRouter mounts GET /, GET /post/{slug} and GET /feed.js.
func NewWebRouter(svc *blog.Service, site Site) chi.Router {
	h := NewWebHandler(svc, site)
	r := chi.NewRouter()
	r.Get("/", h.Index)
	r.Get("/post/{slug}", h.Permalink)
	r.Get("/feed.js", h.FeedScript)
	return r
}

// Index renders the card listing with the reader closed.
func (h *WebHandler) Index(w http.ResponseWriter, r *http.Request) {
	h.renderAt(w, r.URL.RequestURI(), http.StatusOK)
}

// Permalink renders the page with the reader open on slug. Unknown slugs
// return 404 with the listing.
func (h *WebHandler) Permalink(w http.ResponseWriter, r *http.Request) {
	slug, err := slugParam(r)
	if err != nil {
		h.renderAt(w, "/", http.StatusBadRequest)
		return
	}
	if !h.known(slug) {
		h.renderAt(w, "/", http.StatusNotFound)
		return
	}
	h.renderAt(w, "/"+urlenc.PostFragment(slug), http.StatusOK)
}

// FeedScript serves the current payload as JSONP.
func (h *WebHandler) FeedScript(w http.ResponseWriter, r *http.Request) {
	cb := r.URL.Query().Get("callback")
	if cb == "" {
		cb = h.site.Callback
	}
	body, err := feed.EncodeJSONP(cb, h.svc.Latest())
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid callback"))
		return
	}
	w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	_, _ = w.Write(body)
}

func (h *WebHandler) known(slug string) bool {
	for _, p := range h.svc.Latest().Posts {
		if p.HasSlug() && p.Slug == slug {
			return true
		}
	}
	return false
}

func (h *WebHandler) renderAt(w http.ResponseWriter, rawURL string, status int) {
	v, err := h.renderer.Render(rawURL, h.svc.Latest())
	if err != nil {
		slog.Error("render page failed", slog.String("error", err.Error()))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	out, err := render.RenderPage(session.Document(v, h.site.Title, h.site.FeedURL))
	if err != nil {
		slog.Error("render page failed", slog.String("error", err.Error()))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(out)
}
