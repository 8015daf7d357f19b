package watch

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/example/streamflix/internal/auth"
	"github.com/example/streamflix/internal/catalog"
	"github.com/example/streamflix/internal/httputil"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Router assumes RequireAuth and RequireProfile already ran upstream.
func (h *Handler) Router() chi.Router {
	r := chi.NewRouter()
	r.Post("/{contentID}/progress", h.progress)
	r.Get("/continue", h.continueWatching)
	r.Get("/history", h.history)
	r.Get("/stats", h.stats)
	r.Delete("/{contentID}", h.delete)
	return r
}

func identity(r *http.Request) (accountID, profileID uuid.UUID, ok bool) {
	acct := auth.AccountFromContext(r.Context())
	profile, hasProfile := auth.ProfileFromContext(r.Context())
	if acct == nil || !hasProfile {
		return uuid.Nil, uuid.Nil, false
	}
	return acct.AccountID, profile, true
}

func (h *Handler) progress(w http.ResponseWriter, r *http.Request) {
	accountID, profileID, ok := identity(r)
	if !ok {
		httputil.WriteError(w, http.StatusUnauthorized, httputil.CodeUnauthenticated, "profile context required")
		return
	}
	contentID, err := uuid.Parse(chi.URLParam(r, "contentID"))
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, httputil.CodeInvalid, "invalid content id")
		return
	}

	var report ProgressReport
	if err := httputil.ReadJSON(r, &report); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, httputil.CodeInvalid, "invalid request body")
		return
	}

	rec, err := h.svc.RecordProgress(r.Context(), accountID, profileID, contentID, report)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidProgress):
			httputil.WriteError(w, http.StatusBadRequest, httputil.CodeInvalid, err.Error())
		case errors.Is(err, catalog.ErrNotFound):
			httputil.WriteError(w, http.StatusNotFound, httputil.CodeNotFound, "content not found")
		default:
			httputil.WriteError(w, http.StatusInternalServerError, httputil.CodeInternal, "failed to record progress")
		}
		return
	}
	httputil.WriteJSON(w, http.StatusOK, rec)
}

func (h *Handler) continueWatching(w http.ResponseWriter, r *http.Request) {
	accountID, profileID, ok := identity(r)
	if !ok {
		httputil.WriteError(w, http.StatusUnauthorized, httputil.CodeUnauthenticated, "profile context required")
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	entries, err := h.svc.ContinueWatching(r.Context(), accountID, profileID, limit)
	if err != nil {
		httputil.WriteError(w, http.StatusInternalServerError, httputil.CodeInternal, "failed to load continue watching")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, entries)
}

func (h *Handler) history(w http.ResponseWriter, r *http.Request) {
	accountID, profileID, ok := identity(r)
	if !ok {
		httputil.WriteError(w, http.StatusUnauthorized, httputil.CodeUnauthenticated, "profile context required")
		return
	}
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))

	pageData, err := h.svc.History(r.Context(), accountID, profileID, page, limit)
	if err != nil {
		httputil.WriteError(w, http.StatusInternalServerError, httputil.CodeInternal, "failed to load history")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, pageData)
}

func (h *Handler) stats(w http.ResponseWriter, r *http.Request) {
	accountID, profileID, ok := identity(r)
	if !ok {
		httputil.WriteError(w, http.StatusUnauthorized, httputil.CodeUnauthenticated, "profile context required")
		return
	}
	windowDays, _ := strconv.Atoi(r.URL.Query().Get("days"))

	stats, err := h.svc.Stats(r.Context(), accountID, profileID, windowDays)
	if err != nil {
		httputil.WriteError(w, http.StatusInternalServerError, httputil.CodeInternal, "failed to load stats")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, stats)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	accountID, profileID, ok := identity(r)
	if !ok {
		httputil.WriteError(w, http.StatusUnauthorized, httputil.CodeUnauthenticated, "profile context required")
		return
	}
	contentID, err := uuid.Parse(chi.URLParam(r, "contentID"))
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, httputil.CodeInvalid, "invalid content id")
		return
	}
	if err := h.svc.Delete(r.Context(), accountID, profileID, contentID); err != nil {
		httputil.WriteError(w, http.StatusInternalServerError, httputil.CodeInternal, "failed to delete record")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}
