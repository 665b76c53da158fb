package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/postview/internal/session"
)

const maxActionBody = 64 << 10

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if r.ContentLength == 0 {
		return true
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxActionBody)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return false
	}
	return true
}

// CreateSession handles POST /api/sessions.
//
//	@Summary		Start a reader session at a URL
//	@Tags			sessions
//	@Accept			json
//	@Produce		json
//	@Param			body	body		CreateSessionRequest	false	"Initial URL"
//	@Success		201		{object}	session.View
//	@Failure		429		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/sessions [post]
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req CreateSessionRequest
	if !decodeBody(w, r, &req) {
		return
	}
	v, err := h.sessions().Create(req.URL, h.svc.Latest)
	if err != nil {
		writeError(w, "create session", err)
		return
	}
	writeJSON(w, http.StatusCreated, v)
}

// GetSession handles GET /api/sessions/{id}.
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	v, err := h.sessions().Get(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, "get session", err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// DeleteSession handles DELETE /api/sessions/{id}.
func (h *Handler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions().Delete(chi.URLParam(r, "id")); err != nil {
		writeError(w, "delete session", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SessionAction handles POST /api/sessions/{id}/{action}.
//
//	@Summary		Apply a viewer action to a session
//	@Tags			sessions
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string	true	"Session ID"
//	@Param			action	path		string	true	"Action"	Enums(open, activate, navigate, close, back, forward, nav)
//	@Success		200		{object}	session.View
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/sessions/{id}/{action} [post]
func (h *Handler) SessionAction(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	m := h.sessions()

	var (
		v   session.View
		err error
	)
	switch chi.URLParam(r, "action") {
	case "open":
		var req OpenRequest
		if !decodeBody(w, r, &req) {
			return
		}
		if req.Slug == "" {
			writeJSON(w, http.StatusBadRequest, errorBody("slug is required"))
			return
		}
		v, err = m.Open(id, req.Slug)
	case "activate":
		var req ActivateRequest
		if !decodeBody(w, r, &req) {
			return
		}
		v, err = m.Activate(id, req.Index)
	case "navigate":
		var req NavigateRequest
		if !decodeBody(w, r, &req) {
			return
		}
		v, err = m.Navigate(id, req.Fragment)
	case "close":
		v, err = m.Close(id)
	case "back":
		v, err = m.Back(id)
	case "forward":
		v, err = m.Forward(id)
	case "nav":
		v, err = m.ToggleNav(id)
	default:
		writeJSON(w, http.StatusNotFound, errorBody("unknown action"))
		return
	}
	if err != nil {
		writeError(w, "session action", err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (h *Handler) sessions() *session.Manager {
	return h.svc.Sessions()
}
