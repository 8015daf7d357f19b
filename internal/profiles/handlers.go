package profiles

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/example/streamflix/internal/authctx"
	"github.com/example/streamflix/internal/httputil"
)

// profileMiddleware is the slice of auth.Middleware this handler needs;
// declared locally so profiles does not import auth (auth's handler
// already imports profiles).
type profileMiddleware interface {
	RequireProfile(next http.Handler) http.Handler
}

type Handler struct {
	repo *Repository
	mw   profileMiddleware
}

func NewHandler(repo *Repository, mw profileMiddleware) *Handler {
	return &Handler{repo: repo, mw: mw}
}

func (h *Handler) Router() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Put("/{id}", h.update)
	r.Delete("/{id}", h.delete)

	// Liked-content routes act on the active profile from X-Profile-ID.
	r.Group(func(r chi.Router) {
		r.Use(h.mw.RequireProfile)
		r.Get("/liked", h.liked)
		r.Post("/liked/{contentID}", h.toggleLike)
	})
	return r
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	acct := authctx.AccountFromContext(r.Context())
	if acct == nil {
		httputil.WriteError(w, http.StatusUnauthorized, httputil.CodeUnauthenticated, "not authenticated")
		return
	}
	out, err := h.repo.ListByAccount(r.Context(), acct.AccountID)
	if err != nil {
		httputil.WriteError(w, http.StatusInternalServerError, httputil.CodeInternal, "failed to list profiles")
		return
	}
	if out == nil {
		out = []Profile{}
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	acct := authctx.AccountFromContext(r.Context())
	if acct == nil {
		httputil.WriteError(w, http.StatusUnauthorized, httputil.CodeUnauthenticated, "not authenticated")
		return
	}

	var req struct {
		Name              string `json:"name"`
		AvatarURL         string `json:"avatar_url"`
		IsKids            bool   `json:"is_kids"`
		PreferredLanguage string `json:"preferred_language"`
	}
	if err := httputil.ReadJSON(r, &req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, httputil.CodeInvalid, "invalid request body")
		return
	}
	if req.Name == "" {
		httputil.WriteError(w, http.StatusBadRequest, httputil.CodeInvalid, "profile name is required")
		return
	}

	p := &Profile{
		AccountID:         acct.AccountID,
		Name:              req.Name,
		AvatarURL:         req.AvatarURL,
		IsKids:            req.IsKids,
		PreferredLanguage: req.PreferredLanguage,
	}
	if err := h.repo.Create(r.Context(), p); err != nil {
		if errors.Is(err, ErrProfileLimit) {
			httputil.WriteError(w, http.StatusConflict, httputil.CodeConflict, err.Error())
			return
		}
		httputil.WriteError(w, http.StatusInternalServerError, httputil.CodeInternal, "failed to create profile")
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, p)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	acct := authctx.AccountFromContext(r.Context())
	if acct == nil {
		httputil.WriteError(w, http.StatusUnauthorized, httputil.CodeUnauthenticated, "not authenticated")
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, httputil.CodeInvalid, "invalid profile id")
		return
	}

	p, err := h.repo.GetByID(r.Context(), id)
	if err != nil || p.AccountID != acct.AccountID {
		httputil.WriteError(w, http.StatusNotFound, httputil.CodeNotFound, "profile not found")
		return
	}

	var req struct {
		Name              *string `json:"name"`
		AvatarURL         *string `json:"avatar_url"`
		IsKids            *bool   `json:"is_kids"`
		PreferredLanguage *string `json:"preferred_language"`
	}
	if err := httputil.ReadJSON(r, &req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, httputil.CodeInvalid, "invalid request body")
		return
	}
	if req.Name != nil && *req.Name != "" {
		p.Name = *req.Name
	}
	if req.AvatarURL != nil {
		p.AvatarURL = *req.AvatarURL
	}
	if req.IsKids != nil {
		p.IsKids = *req.IsKids
	}
	if req.PreferredLanguage != nil {
		p.PreferredLanguage = *req.PreferredLanguage
	}

	if err := h.repo.Update(r.Context(), p); err != nil {
		httputil.WriteError(w, http.StatusInternalServerError, httputil.CodeInternal, "failed to update profile")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, p)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	acct := authctx.AccountFromContext(r.Context())
	if acct == nil {
		httputil.WriteError(w, http.StatusUnauthorized, httputil.CodeUnauthenticated, "not authenticated")
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, httputil.CodeInvalid, "invalid profile id")
		return
	}
	if err := h.repo.Delete(r.Context(), id, acct.AccountID); err != nil {
		if errors.Is(err, ErrNotFound) {
			httputil.WriteError(w, http.StatusNotFound, httputil.CodeNotFound, "profile not found")
			return
		}
		httputil.WriteError(w, http.StatusInternalServerError, httputil.CodeInternal, "failed to delete profile")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

func (h *Handler) liked(w http.ResponseWriter, r *http.Request) {
	profileID, ok := authctx.ProfileFromContext(r.Context())
	if !ok {
		httputil.WriteError(w, http.StatusUnauthorized, httputil.CodeUnauthenticated, "active profile required")
		return
	}
	liked, err := h.repo.GetLiked(r.Context(), profileID)
	if err != nil {
		httputil.WriteError(w, http.StatusInternalServerError, httputil.CodeInternal, "failed to load liked content")
		return
	}
	if liked == nil {
		liked = []uuid.UUID{}
	}
	httputil.WriteJSON(w, http.StatusOK, liked)
}

func (h *Handler) toggleLike(w http.ResponseWriter, r *http.Request) {
	profileID, ok := authctx.ProfileFromContext(r.Context())
	if !ok {
		httputil.WriteError(w, http.StatusUnauthorized, httputil.CodeUnauthenticated, "active profile required")
		return
	}
	contentID, err := uuid.Parse(chi.URLParam(r, "contentID"))
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, httputil.CodeInvalid, "invalid content id")
		return
	}
	liked, err := h.repo.ToggleLike(r.Context(), profileID, contentID)
	if err != nil {
		httputil.WriteError(w, http.StatusInternalServerError, httputil.CodeInternal, "failed to toggle like")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]bool{"liked": liked})
}
