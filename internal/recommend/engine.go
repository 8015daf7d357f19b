// Package recommend derives per-profile suggestions from viewing
// history. The signal is deliberately simple: the genres a profile has
// recently watched, weighted by frequency, matched against the best
// unseen items in those genres.
package recommend

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/example/streamflix/internal/catalog"
	"github.com/example/streamflix/internal/watch"
)

const (
	// affinityWindow bounds how much history feeds the genre signal, so
	// taste shifts show up instead of being averaged away.
	affinityWindow = 50

	topGenres    = 3
	defaultLimit = 20
	maxLimit     = 40
)

// History supplies the recent-records window.
type History interface {
	Recent(ctx context.Context, accountID, profileID uuid.UUID, limit int) ([]*watch.WatchRecord, error)
}

// Likes supplies the profile's liked set for exclusion.
type Likes interface {
	GetLiked(ctx context.Context, profileID uuid.UUID) ([]uuid.UUID, error)
}

// Catalog resolves genres for watched items and selects candidates.
type Catalog interface {
	GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*catalog.Item, error)
	Recommendable(ctx context.Context, p catalog.RecommendParams) ([]*catalog.Item, error)
}

type Engine struct {
	history History
	likes   Likes
	catalog Catalog
}

func NewEngine(history History, likes Likes, cat Catalog) *Engine {
	return &Engine{history: history, likes: likes, catalog: cat}
}

// ForProfile returns up to limit suggestions for the profile. Items the
// profile has watched or liked are excluded. A profile with no viewing
// history gets an empty slice, never an error: the caller decides what
// to show cold-start users.
func (e *Engine) ForProfile(ctx context.Context, accountID, profileID uuid.UUID, limit int) ([]*catalog.Item, error) {
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	recent, err := e.history.Recent(ctx, accountID, profileID, affinityWindow)
	if err != nil {
		return nil, err
	}
	liked, err := e.likes.GetLiked(ctx, profileID)
	if err != nil {
		return nil, err
	}

	watchedIDs := make([]uuid.UUID, 0, len(recent))
	for _, rec := range recent {
		watchedIDs = append(watchedIDs, rec.ContentID)
	}
	items, err := e.catalog.GetByIDs(ctx, watchedIDs)
	if err != nil {
		return nil, err
	}

	genres := topAffinityGenres(recent, items)
	if len(genres) == 0 {
		return []*catalog.Item{}, nil
	}

	exclude := make([]uuid.UUID, 0, len(watchedIDs)+len(liked))
	exclude = append(exclude, watchedIDs...)
	exclude = append(exclude, liked...)

	out, err := e.catalog.Recommendable(ctx, catalog.RecommendParams{
		Genres:  genres,
		Exclude: exclude,
		Limit:   limit,
	})
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []*catalog.Item{}
	}
	return out, nil
}

// topAffinityGenres counts genre occurrences across the watched items
// and keeps the most frequent few. Ties break by encounter order, so
// the genre seen in the most recent viewing wins.
func topAffinityGenres(recent []*watch.WatchRecord, items map[uuid.UUID]*catalog.Item) []string {
	counts := make(map[string]int)
	firstSeen := make(map[string]int)
	order := 0

	for _, rec := range recent {
		item, ok := items[rec.ContentID]
		if !ok {
			continue
		}
		for _, genre := range item.Genres {
			if _, seen := counts[genre]; !seen {
				firstSeen[genre] = order
				order++
			}
			counts[genre]++
		}
	}

	ranked := make([]string, 0, len(counts))
	for genre := range counts {
		ranked = append(ranked, genre)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if counts[ranked[i]] != counts[ranked[j]] {
			return counts[ranked[i]] > counts[ranked[j]]
		}
		return firstSeen[ranked[i]] < firstSeen[ranked[j]]
	})

	if len(ranked) > topGenres {
		ranked = ranked[:topGenres]
	}
	return ranked
}
