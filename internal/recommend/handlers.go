package recommend

import (
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/example/streamflix/internal/auth"
	"github.com/example/streamflix/internal/cache"
	"github.com/example/streamflix/internal/catalog"
	"github.com/example/streamflix/internal/httputil"
)

type Handler struct {
	engine *Engine
	cache  *cache.Cache
	ttl    time.Duration
}

// NewHandler wires the engine with an optional result cache. A nil
// cache disables caching entirely; every request recomputes.
func NewHandler(engine *Engine, c *cache.Cache, ttl time.Duration) *Handler {
	return &Handler{engine: engine, cache: c, ttl: ttl}
}

// Router assumes RequireAuth and RequireProfile already ran upstream.
func (h *Handler) Router() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.list)
	return r
}

func cacheKey(accountID, profileID uuid.UUID, limit int) string {
	return fmt.Sprintf("rec:%s:%s:%d", accountID, profileID, limit)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	acct := auth.AccountFromContext(r.Context())
	profileID, hasProfile := auth.ProfileFromContext(r.Context())
	if acct == nil || !hasProfile {
		httputil.WriteError(w, http.StatusUnauthorized, httputil.CodeUnauthenticated, "profile context required")
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	key := cacheKey(acct.AccountID, profileID, limit)
	if h.cache != nil {
		var cached []*catalog.Item
		hit, err := h.cache.Get(r.Context(), key, &cached)
		if err != nil {
			// Redis being down degrades to recompute, not an outage.
			log.Printf("recommend: cache get: %v", err)
		} else if hit {
			httputil.WriteJSON(w, http.StatusOK, cached)
			return
		}
	}

	items, err := h.engine.ForProfile(r.Context(), acct.AccountID, profileID, limit)
	if err != nil {
		httputil.WriteError(w, http.StatusInternalServerError, httputil.CodeInternal, "failed to build recommendations")
		return
	}

	if h.cache != nil {
		if err := h.cache.Set(r.Context(), key, items, h.ttl); err != nil {
			log.Printf("recommend: cache set: %v", err)
		}
	}
	httputil.WriteJSON(w, http.StatusOK, items)
}
