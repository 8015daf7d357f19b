package watch

import (
	"context"
	"errors"
	"log"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/example/streamflix/internal/catalog"
)

// completionThreshold is the watched ratio at which playback counts as
// finished. Credits and recaps mean players rarely reach 1.0.
const completionThreshold = 0.9

const (
	defaultContinueLimit = 10
	maxContinueLimit     = 50
	defaultHistoryLimit  = 20
	defaultStatsWindow   = 30
	defaultDevice        = "desktop"
)

var ErrInvalidProgress = errors.New("current_time must be non-negative")

// Catalog is the slice of the content repository the watch service
// needs: lookups for validation and joins, and the popularity counter.
type Catalog interface {
	GetByID(ctx context.Context, id uuid.UUID) (*catalog.Item, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*catalog.Item, error)
	IncrementViewCount(ctx context.Context, id uuid.UUID) error
}

type Service struct {
	store   Store
	catalog Catalog
	now     func() time.Time
}

func NewService(store Store, cat Catalog) *Service {
	return &Service{store: store, catalog: cat, now: time.Now}
}

// completionDecision resolves the completed flag for one progress
// report. An explicit flag from the client always wins, in either
// direction. The derived ratio only ever promotes false to true:
// rewatching the opening minutes of a finished movie must not strip
// its completed state.
type completionDecision struct {
	explicit *bool
	ratio    float64
}

func (d completionDecision) resolve(prev bool) bool {
	if d.explicit != nil {
		return *d.explicit
	}
	if prev {
		return true
	}
	return d.ratio >= completionThreshold
}

// RecordProgress applies one player tick to the (account, profile,
// content) record, creating it on first contact. Concurrent reports for
// the same key are last-write-wins; the view counter is bumped exactly
// once per false-to-true completion transition as seen by this writer.
func (s *Service) RecordProgress(ctx context.Context, accountID, profileID, contentID uuid.UUID, report ProgressReport) (*WatchRecord, error) {
	if report.CurrentTime < 0 {
		return nil, ErrInvalidProgress
	}
	item, err := s.catalog.GetByID(ctx, contentID)
	if err != nil {
		return nil, err
	}

	key := Key{AccountID: accountID, ProfileID: profileID, ContentID: contentID}
	rec, err := s.store.Find(ctx, key)
	switch {
	case errors.Is(err, ErrNoRecord):
		rec = &WatchRecord{
			AccountID:   accountID,
			ProfileID:   profileID,
			ContentID:   contentID,
			ContentType: item.Type,
			Device:      defaultDevice,
		}
		// The catalog's nominal duration seeds the denominator only at
		// creation; afterwards the player's reported total is
		// authoritative.
		if report.TotalDuration == nil || *report.TotalDuration <= 0 {
			rec.TotalDuration = item.NominalDuration()
		}
	case err != nil:
		return nil, err
	}

	wasCompleted := rec.Completed

	rec.WatchCount++
	rec.LastWatchedAt = s.now().UTC()
	rec.WatchedDuration = report.CurrentTime
	if report.TotalDuration != nil && *report.TotalDuration > 0 {
		rec.TotalDuration = *report.TotalDuration
	}
	if rec.ContentType == catalog.TypeSeries && report.Episode != nil {
		rec.Episode = report.Episode
		rec.EpisodeProgress = report.CurrentTime
	}
	if report.Device != "" {
		rec.Device = report.Device
	}

	// An unknown denominator yields ratio 0: never completed by ratio.
	var ratio float64
	if rec.TotalDuration > 0 {
		ratio = report.CurrentTime / rec.TotalDuration
	}
	rec.Completed = completionDecision{explicit: report.Completed, ratio: ratio}.resolve(wasCompleted)

	if err := s.store.Save(ctx, rec); err != nil {
		return nil, err
	}

	if !wasCompleted && rec.Completed {
		// Popularity is advisory; a failed bump must not lose the
		// progress write.
		if err := s.catalog.IncrementViewCount(ctx, contentID); err != nil {
			log.Printf("watch: increment view count for %s: %v", contentID, err)
		}
	}
	return rec, nil
}

// ContinueWatching builds the resume shelf: the latest record per
// content item, joined with live catalog metadata. Items that have been
// deactivated or removed from the catalog drop off the shelf without
// touching the underlying records. Completed items stay on the shelf so
// a finished series still surfaces for rewatch.
func (s *Service) ContinueWatching(ctx context.Context, accountID, profileID uuid.UUID, limit int) ([]ContinueEntry, error) {
	if limit <= 0 {
		limit = defaultContinueLimit
	}
	if limit > maxContinueLimit {
		limit = maxContinueLimit
	}

	recs, err := s.store.ListByProfile(ctx, accountID, profileID)
	if err != nil {
		return nil, err
	}
	recs = dedupLatest(recs)

	ids := make([]uuid.UUID, 0, len(recs))
	for _, rec := range recs {
		ids = append(ids, rec.ContentID)
	}
	items, err := s.catalog.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	entries := make([]ContinueEntry, 0, limit)
	for _, rec := range recs {
		item, ok := items[rec.ContentID]
		if !ok || !item.IsActive {
			continue
		}
		entries = append(entries, ContinueEntry{
			ContentID:     rec.ContentID,
			Title:         item.Title,
			Type:          item.Type,
			ThumbnailURL:  item.PosterThumbnail(),
			ReleaseYear:   item.ReleaseYear,
			Rating:        item.RatingIMDB,
			Position:      rec.WatchedDuration,
			TotalDuration: rec.TotalDuration,
			Episode:       rec.Episode,
			Completed:     rec.Completed,
			LastWatchedAt: rec.LastWatchedAt,
		})
		if len(entries) == limit {
			break
		}
	}
	return entries, nil
}

// dedupLatest keeps one record per content id: the newest by
// LastWatchedAt, with the record id as a stable tiebreaker. The store's
// unique key already guarantees one record per content for a single
// profile, so this is a no-op there, but the resolver also serves
// aggregates that may span wider record sets.
func dedupLatest(recs []*WatchRecord) []*WatchRecord {
	latest := make(map[uuid.UUID]*WatchRecord, len(recs))
	for _, rec := range recs {
		cur, ok := latest[rec.ContentID]
		if !ok {
			latest[rec.ContentID] = rec
			continue
		}
		if rec.LastWatchedAt.After(cur.LastWatchedAt) ||
			(rec.LastWatchedAt.Equal(cur.LastWatchedAt) && rec.ID.String() > cur.ID.String()) {
			latest[rec.ContentID] = rec
		}
	}

	out := make([]*WatchRecord, 0, len(latest))
	for _, rec := range latest {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].LastWatchedAt.Equal(out[j].LastWatchedAt) {
			return out[i].LastWatchedAt.After(out[j].LastWatchedAt)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out
}

// History returns the profile's watch history newest first, joined with
// active-only catalog metadata. Records whose content has been removed
// or unpublished are skipped; pagination applies after the join so
// pages never show gaps.
func (s *Service) History(ctx context.Context, accountID, profileID uuid.UUID, page, limit int) (*HistoryPage, error) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = defaultHistoryLimit
	}

	recs, err := s.store.ListByProfile(ctx, accountID, profileID)
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, 0, len(recs))
	for _, rec := range recs {
		ids = append(ids, rec.ContentID)
	}
	items, err := s.catalog.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	all := make([]HistoryEntry, 0, len(recs))
	for _, rec := range recs {
		item, ok := items[rec.ContentID]
		if !ok || !item.IsActive {
			continue
		}
		all = append(all, HistoryEntry{Record: rec, Content: item})
	}

	total := len(all)
	pages := (total + limit - 1) / limit
	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}

	return &HistoryPage{
		Entries: all[start:end],
		Page:    page,
		Limit:   limit,
		Total:   total,
		Pages:   pages,
	}, nil
}

// Stats aggregates the profile's viewing activity. Daily buckets cover
// the trailing window and use each item's first genre; the by-genre
// breakdown unwinds every genre of active items; the summary spans all
// records regardless of catalog state.
func (s *Service) Stats(ctx context.Context, accountID, profileID uuid.UUID, windowDays int) (*Stats, error) {
	if windowDays <= 0 {
		windowDays = defaultStatsWindow
	}

	recs, err := s.store.ListByProfile(ctx, accountID, profileID)
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, 0, len(recs))
	for _, rec := range recs {
		ids = append(ids, rec.ContentID)
	}
	items, err := s.catalog.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	cutoff := s.now().UTC().AddDate(0, 0, -windowDays)

	type dailyKey struct {
		date  string
		genre string
	}
	daily := make(map[dailyKey]*DailyStat)
	byGenre := make(map[string]*GenreStat)
	stats := &Stats{Daily: []DailyStat{}, ByGenre: []GenreStat{}}

	for _, rec := range recs {
		stats.Summary.TotalWatched++
		stats.Summary.TotalDuration += rec.WatchedDuration
		if rec.Completed {
			stats.Summary.TotalCompleted++
		}

		item := items[rec.ContentID]

		if !rec.LastWatchedAt.Before(cutoff) {
			genre := "unknown"
			if item != nil && len(item.Genres) > 0 {
				genre = item.Genres[0]
			}
			key := dailyKey{date: rec.LastWatchedAt.Format("2006-01-02"), genre: genre}
			d, ok := daily[key]
			if !ok {
				d = &DailyStat{Date: key.date, Genre: key.genre}
				daily[key] = d
			}
			d.Count++
			d.TotalDuration += rec.WatchedDuration
		}

		if item != nil && item.IsActive {
			for _, genre := range item.Genres {
				g, ok := byGenre[genre]
				if !ok {
					g = &GenreStat{Genre: genre}
					byGenre[genre] = g
				}
				g.Count++
				g.TotalDuration += rec.WatchedDuration
			}
		}
	}

	for _, d := range daily {
		stats.Daily = append(stats.Daily, *d)
	}
	sort.Slice(stats.Daily, func(i, j int) bool {
		if stats.Daily[i].Date != stats.Daily[j].Date {
			return stats.Daily[i].Date < stats.Daily[j].Date
		}
		return stats.Daily[i].Genre < stats.Daily[j].Genre
	})

	for _, g := range byGenre {
		stats.ByGenre = append(stats.ByGenre, *g)
	}
	sort.Slice(stats.ByGenre, func(i, j int) bool {
		if stats.ByGenre[i].Count != stats.ByGenre[j].Count {
			return stats.ByGenre[i].Count > stats.ByGenre[j].Count
		}
		return stats.ByGenre[i].Genre < stats.ByGenre[j].Genre
	})

	return stats, nil
}

// Delete removes the profile's record for a content item. Deleting a
// record that does not exist succeeds; the end state is the same.
func (s *Service) Delete(ctx context.Context, accountID, profileID, contentID uuid.UUID) error {
	return s.store.Delete(ctx, Key{AccountID: accountID, ProfileID: profileID, ContentID: contentID})
}

// PurgeContent removes every record referencing a content item. Runs
// from the background purge job after a catalog delete.
func (s *Service) PurgeContent(ctx context.Context, contentID uuid.UUID) (int64, error) {
	return s.store.DeleteByContent(ctx, contentID)
}

// Recent exposes the newest records for the recommendation engine's
// affinity window.
func (s *Service) Recent(ctx context.Context, accountID, profileID uuid.UUID, limit int) ([]*WatchRecord, error) {
	return s.store.ListRecent(ctx, accountID, profileID, limit)
}
