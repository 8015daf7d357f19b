package catalog

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/example/streamflix/internal/auth"
	"github.com/example/streamflix/internal/httputil"
)

// Jobs is the slice of the job queue the catalog needs: rating enrichment
// on ingest and cascade purge on removal.
type Jobs interface {
	EnqueueRatingFetch(contentID uuid.UUID) error
	EnqueuePurge(contentID uuid.UUID) error
}

// Notifier pushes admin-facing catalog events. May be nil.
type Notifier interface {
	Broadcast(event string, data interface{})
}

type Handler struct {
	repo     *Repository
	jobs     Jobs
	notifier Notifier
	mw       *auth.Middleware
}

func NewHandler(repo *Repository, jobs Jobs, notifier Notifier, mw *auth.Middleware) *Handler {
	return &Handler{repo: repo, jobs: jobs, notifier: notifier, mw: mw}
}

func (h *Handler) notify(event string, id uuid.UUID) {
	if h.notifier != nil {
		h.notifier.Broadcast(event, map[string]interface{}{"content_id": id.String()})
	}
}

func (h *Handler) Router() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.list)
	r.Get("/{id}", h.getByID)

	r.Group(func(r chi.Router) {
		r.Use(h.mw.RequireAdmin)
		r.Post("/", h.create)
		r.Put("/{id}", h.update)
		r.Delete("/{id}", h.delete)
	})
	return r
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))

	items, err := h.repo.List(r.Context(), ListParams{
		Type:   ContentType(q.Get("type")),
		Genre:  q.Get("genre"),
		Search: q.Get("search"),
		Page:   page,
		Limit:  limit,
	})
	if err != nil {
		httputil.WriteError(w, http.StatusInternalServerError, httputil.CodeInternal, "failed to list content")
		return
	}
	if items == nil {
		items = []*Item{}
	}
	httputil.WriteJSON(w, http.StatusOK, items)
}

func (h *Handler) getByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, httputil.CodeInvalid, "invalid content id")
		return
	}
	item, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httputil.WriteError(w, http.StatusNotFound, httputil.CodeNotFound, "content not found")
			return
		}
		httputil.WriteError(w, http.StatusInternalServerError, httputil.CodeInternal, "failed to load content")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, item)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var item Item
	if err := httputil.ReadJSON(r, &item); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, httputil.CodeInvalid, "invalid request body")
		return
	}
	if item.Title == "" || !item.Type.Valid() {
		httputil.WriteError(w, http.StatusBadRequest, httputil.CodeInvalid, "title and type (movie|series) are required")
		return
	}
	if item.Type == TypeMovie && (item.Duration == nil || item.VideoURL == nil) {
		httputil.WriteError(w, http.StatusBadRequest, httputil.CodeInvalid, "movies require duration and video_url")
		return
	}
	if item.Type == TypeSeries && len(item.Episodes) == 0 {
		httputil.WriteError(w, http.StatusBadRequest, httputil.CodeInvalid, "series require at least one episode")
		return
	}
	if item.AgeRating == "" {
		item.AgeRating = "PG-13"
	}
	if item.Language == "" {
		item.Language = "en"
	}
	item.IsActive = true
	if acct := auth.AccountFromContext(r.Context()); acct != nil {
		item.AddedBy = &acct.AccountID
	}

	if err := h.repo.Create(r.Context(), &item); err != nil {
		httputil.WriteError(w, http.StatusInternalServerError, httputil.CodeInternal, "failed to create content")
		return
	}

	// Rating enrichment runs off the request path; a full queue only
	// costs the rating, not the ingest.
	if item.RatingIMDB == nil {
		_ = h.jobs.EnqueueRatingFetch(item.ID)
	}
	h.notify("content:added", item.ID)
	httputil.WriteJSON(w, http.StatusCreated, &item)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, httputil.CodeInvalid, "invalid content id")
		return
	}
	item, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, http.StatusNotFound, httputil.CodeNotFound, "content not found")
		return
	}

	// Content type is immutable after creation; decode over the loaded
	// item and restore the original type.
	originalType := item.Type
	if err := httputil.ReadJSON(r, item); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, httputil.CodeInvalid, "invalid request body")
		return
	}
	item.ID = id
	item.Type = originalType

	if err := h.repo.Update(r.Context(), item); err != nil {
		httputil.WriteError(w, http.StatusInternalServerError, httputil.CodeInternal, "failed to update content")
		return
	}
	if item.RatingIMDB == nil {
		_ = h.jobs.EnqueueRatingFetch(item.ID)
	}
	httputil.WriteJSON(w, http.StatusOK, item)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, httputil.CodeInvalid, "invalid content id")
		return
	}
	if err := h.repo.Delete(r.Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			httputil.WriteError(w, http.StatusNotFound, httputil.CodeNotFound, "content not found")
			return
		}
		httputil.WriteError(w, http.StatusInternalServerError, httputil.CodeInternal, "failed to delete content")
		return
	}

	// Watch records and liked references for this content are purged in
	// the background.
	_ = h.jobs.EnqueuePurge(id)
	h.notify("content:removed", id)

	httputil.WriteJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}
