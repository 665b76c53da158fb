package api

import (
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/starford/postview/internal/blog"
	"github.com/starford/postview/internal/feed"
	"github.com/starford/postview/internal/index"
)

const maxFeedBody = 10 << 20

// slugParam returns the decoded {slug} path parameter. chi matches on
// RawPath when it is set, leaving escapes like %2F in the value.
func slugParam(r *http.Request) (string, error) {
	slug := chi.URLParam(r, "slug")
	if r.URL.RawPath == "" {
		return slug, nil
	}
	return url.PathUnescape(slug)
}

// Handler holds API route handlers.
type Handler struct {
	svc *blog.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *blog.Service) *Handler {
	return &Handler{svc: svc}
}

// ListPosts handles GET /api/posts.
//
//	@Summary		List indexed posts in feed order
//	@Tags			posts
//	@Produce		json
//	@Param			limit	query		int		false	"Page size"
//	@Param			offset	query		int		false	"Page offset"
//	@Success		200		{object}	PostListResponse
//	@Security		BearerAuth
//	@Router			/posts [get]
func (h *Handler) ListPosts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))

	rows, total, err := h.svc.ListPosts(r.Context(), limit, offset)
	if err != nil {
		writeError(w, "list posts", err)
		return
	}
	writeJSON(w, http.StatusOK, PostListResponse{Posts: rows, Total: total})
}

// GetPost handles GET /api/posts/{slug}.
//
//	@Summary		Get a single post by slug
//	@Tags			posts
//	@Produce		json
//	@Param			slug	path		string	true	"Post slug"
//	@Success		200		{object}	PostDetail
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/posts/{slug} [get]
func (h *Handler) GetPost(w http.ResponseWriter, r *http.Request) {
	slug, err := slugParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid slug"))
		return
	}
	if slug == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("slug is required"))
		return
	}
	p, err := h.svc.GetPost(r.Context(), slug)
	if err != nil {
		writeError(w, "get post", err)
		return
	}
	writeJSON(w, http.StatusOK, newPostDetail(p))
}

// Search handles GET /api/search.
//
//	@Summary		Full-text search across posts
//	@Tags			search
//	@Produce		json
//	@Param			q		query		string	true	"Search query"
//	@Param			limit	query		int		false	"Max results"
//	@Success		200		{object}	SearchResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	results, err := h.svc.Search(r.Context(), q, limit)
	if err != nil {
		slog.Error("search failed", slog.String("query", q), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	if results == nil {
		results = []index.SearchResult{}
	}
	writeJSON(w, http.StatusOK, SearchResponse{Results: results})
}

// IngestFeed handles POST /api/feed.
//
//	@Summary		Replace the feed with a JSON, JSONP or RSS payload
//	@Tags			feed
//	@Accept			json
//	@Produce		json
//	@Param			format	query		string	false	"Payload format"	Enums(auto, json, jsonp, rss)
//	@Success		200		{object}	blog.IngestResult
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/feed [post]
func (h *Handler) IngestFeed(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFeedBody)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("failed to read body"))
		return
	}
	format := r.URL.Query().Get("format")
	if format == "" {
		format = formatFromContentType(r.Header.Get("Content-Type"))
	}

	res, err := h.svc.IngestRaw(r.Context(), blog.SourceAPI, body, format)
	if err != nil {
		writeError(w, "ingest feed", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Status handles GET /api/status.
//
//	@Summary		Current feed status
//	@Tags			feed
//	@Produce		json
//	@Success		200	{object}	blog.Status
//	@Security		BearerAuth
//	@Router			/status [get]
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	st, err := h.svc.Status(r.Context())
	if err != nil {
		writeError(w, "status", err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func formatFromContentType(ct string) string {
	mt, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return feed.FormatAuto
	}
	switch {
	case mt == "application/json":
		return feed.FormatJSON
	case mt == "application/javascript", mt == "text/javascript":
		return feed.FormatJSONP
	case strings.HasSuffix(mt, "xml"):
		return feed.FormatRSS
	default:
		return feed.FormatAuto
	}
}
