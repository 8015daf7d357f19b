package watch

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/example/streamflix/internal/catalog"
)

type fakeCatalog struct {
	items map[uuid.UUID]*catalog.Item
	views map[uuid.UUID]int
	fail  bool
}

func newFakeCatalog(items ...*catalog.Item) *fakeCatalog {
	fc := &fakeCatalog{
		items: make(map[uuid.UUID]*catalog.Item),
		views: make(map[uuid.UUID]int),
	}
	for _, i := range items {
		fc.items[i.ID] = i
	}
	return fc
}

func (f *fakeCatalog) GetByID(ctx context.Context, id uuid.UUID) (*catalog.Item, error) {
	item, ok := f.items[id]
	if !ok {
		return nil, catalog.ErrNotFound
	}
	return item, nil
}

func (f *fakeCatalog) GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*catalog.Item, error) {
	out := make(map[uuid.UUID]*catalog.Item)
	for _, id := range ids {
		if item, ok := f.items[id]; ok {
			out[id] = item
		}
	}
	return out, nil
}

func (f *fakeCatalog) IncrementViewCount(ctx context.Context, id uuid.UUID) error {
	if f.fail {
		return errors.New("unavailable")
	}
	f.views[id]++
	return nil
}

func floatPtr(v float64) *float64 { return &v }
func boolPtr(v bool) *bool        { return &v }

func movieItem(title string, duration float64, genres ...string) *catalog.Item {
	return &catalog.Item{
		ID:           uuid.New(),
		Title:        title,
		Type:         catalog.TypeMovie,
		Genres:       genres,
		Duration:     &duration,
		ThumbnailURL: "/thumbs/" + title + ".jpg",
		IsActive:     true,
	}
}

func newTestService(fc *fakeCatalog, at time.Time) *Service {
	svc := NewService(NewMemoryStore(), fc)
	svc.now = func() time.Time { return at }
	return svc
}

func TestRecordProgressCreatesRecord(t *testing.T) {
	ctx := context.Background()
	item := movieItem("inception", 7200, "sci-fi")
	fc := newFakeCatalog(item)
	svc := newTestService(fc, time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC))

	accountID, profileID := uuid.New(), uuid.New()
	rec, err := svc.RecordProgress(ctx, accountID, profileID, item.ID, ProgressReport{
		CurrentTime:   1800,
		TotalDuration: floatPtr(7200),
	})
	if err != nil {
		t.Fatalf("RecordProgress: %v", err)
	}
	if rec.Completed {
		t.Fatalf("25%% watched should not be completed")
	}
	if rec.WatchCount != 1 {
		t.Fatalf("watch count = %d, want 1 report received", rec.WatchCount)
	}
	if rec.WatchedDuration != 1800 {
		t.Fatalf("position = %v, want 1800", rec.WatchedDuration)
	}
	if rec.Device != "desktop" {
		t.Fatalf("device = %q, want default desktop", rec.Device)
	}
	if rec.ContentType != catalog.TypeMovie {
		t.Fatalf("content type = %q, want movie", rec.ContentType)
	}
}

func TestRecordProgressCompletionThreshold(t *testing.T) {
	ctx := context.Background()
	item := movieItem("heat", 1000, "crime")
	fc := newFakeCatalog(item)
	svc := newTestService(fc, time.Now())

	accountID, profileID := uuid.New(), uuid.New()

	rec, err := svc.RecordProgress(ctx, accountID, profileID, item.ID, ProgressReport{
		CurrentTime:   899,
		TotalDuration: floatPtr(1000),
	})
	if err != nil {
		t.Fatalf("RecordProgress: %v", err)
	}
	if rec.Completed {
		t.Fatalf("89.9%% should be below the completion threshold")
	}

	rec, err = svc.RecordProgress(ctx, accountID, profileID, item.ID, ProgressReport{
		CurrentTime:   900,
		TotalDuration: floatPtr(1000),
	})
	if err != nil {
		t.Fatalf("RecordProgress: %v", err)
	}
	if !rec.Completed {
		t.Fatalf("90%% should reach the completion threshold")
	}
	if rec.WatchCount != 2 {
		t.Fatalf("watch count = %d, want one per report", rec.WatchCount)
	}
	if fc.views[item.ID] != 1 {
		t.Fatalf("view count = %d, want 1", fc.views[item.ID])
	}
}

func TestRecordProgressViewCountOncePerTransition(t *testing.T) {
	ctx := context.Background()
	item := movieItem("alien", 1000, "horror")
	fc := newFakeCatalog(item)
	svc := newTestService(fc, time.Now())

	accountID, profileID := uuid.New(), uuid.New()
	for i := 0; i < 3; i++ {
		if _, err := svc.RecordProgress(ctx, accountID, profileID, item.ID, ProgressReport{
			CurrentTime:   950,
			TotalDuration: floatPtr(1000),
		}); err != nil {
			t.Fatalf("RecordProgress: %v", err)
		}
	}
	if fc.views[item.ID] != 1 {
		t.Fatalf("view count = %d, want 1 for repeated completed reports", fc.views[item.ID])
	}
}

func TestRecordProgressDerivedNeverDemotes(t *testing.T) {
	ctx := context.Background()
	item := movieItem("memento", 1000, "thriller")
	fc := newFakeCatalog(item)
	svc := newTestService(fc, time.Now())

	accountID, profileID := uuid.New(), uuid.New()
	if _, err := svc.RecordProgress(ctx, accountID, profileID, item.ID, ProgressReport{
		CurrentTime:   990,
		TotalDuration: floatPtr(1000),
	}); err != nil {
		t.Fatalf("RecordProgress: %v", err)
	}

	// Scrubbing back to the start must not strip the completed state.
	rec, err := svc.RecordProgress(ctx, accountID, profileID, item.ID, ProgressReport{
		CurrentTime:   30,
		TotalDuration: floatPtr(1000),
	})
	if err != nil {
		t.Fatalf("RecordProgress: %v", err)
	}
	if !rec.Completed {
		t.Fatalf("rewatching the opening must not clear completed")
	}
	if rec.WatchedDuration != 30 {
		t.Fatalf("position = %v, want 30", rec.WatchedDuration)
	}
}

func TestRecordProgressExplicitOverride(t *testing.T) {
	ctx := context.Background()
	item := movieItem("dune", 1000, "sci-fi")
	fc := newFakeCatalog(item)
	svc := newTestService(fc, time.Now())

	accountID, profileID := uuid.New(), uuid.New()

	// Mark as watched at 1% in.
	rec, err := svc.RecordProgress(ctx, accountID, profileID, item.ID, ProgressReport{
		CurrentTime:   10,
		TotalDuration: floatPtr(1000),
		Completed:     boolPtr(true),
	})
	if err != nil {
		t.Fatalf("RecordProgress: %v", err)
	}
	if !rec.Completed {
		t.Fatalf("explicit completed=true must win over a low ratio")
	}
	if fc.views[item.ID] != 1 {
		t.Fatalf("view count = %d, want 1 after the explicit completion", fc.views[item.ID])
	}

	// Explicit un-mark wins even at a high ratio.
	rec, err = svc.RecordProgress(ctx, accountID, profileID, item.ID, ProgressReport{
		CurrentTime:   950,
		TotalDuration: floatPtr(1000),
		Completed:     boolPtr(false),
	})
	if err != nil {
		t.Fatalf("RecordProgress: %v", err)
	}
	if rec.Completed {
		t.Fatalf("explicit completed=false must win over a high ratio")
	}

	// The next derived completion counts again.
	rec, err = svc.RecordProgress(ctx, accountID, profileID, item.ID, ProgressReport{
		CurrentTime:   960,
		TotalDuration: floatPtr(1000),
	})
	if err != nil {
		t.Fatalf("RecordProgress: %v", err)
	}
	if !rec.Completed {
		t.Fatalf("derived completion must apply after an explicit un-mark")
	}
	if fc.views[item.ID] != 2 {
		t.Fatalf("view count = %d, want one per false-to-true transition", fc.views[item.ID])
	}
}

func TestRecordProgressTotalFallsBackToCatalog(t *testing.T) {
	ctx := context.Background()
	item := movieItem("arrival", 2000, "sci-fi")
	fc := newFakeCatalog(item)
	svc := newTestService(fc, time.Now())

	accountID, profileID := uuid.New(), uuid.New()
	rec, err := svc.RecordProgress(ctx, accountID, profileID, item.ID, ProgressReport{
		CurrentTime: 500,
	})
	if err != nil {
		t.Fatalf("RecordProgress: %v", err)
	}
	if rec.TotalDuration != 2000 {
		t.Fatalf("total = %v, want catalog duration 2000", rec.TotalDuration)
	}
	if rec.Completed {
		t.Fatalf("25%% of the nominal duration must not be completed")
	}

	// The seeded denominator makes later ratio-based completion work
	// even when the player never reports a total.
	rec, err = svc.RecordProgress(ctx, accountID, profileID, item.ID, ProgressReport{
		CurrentTime: 1900,
	})
	if err != nil {
		t.Fatalf("RecordProgress: %v", err)
	}
	if !rec.Completed {
		t.Fatalf("95%% of the seeded total must complete")
	}
}

func TestRecordProgressUnknownTotalNeverCompletes(t *testing.T) {
	ctx := context.Background()
	item := &catalog.Item{
		ID:       uuid.New(),
		Title:    "no-duration",
		Type:     catalog.TypeMovie,
		Genres:   []string{"drama"},
		IsActive: true,
	}
	fc := newFakeCatalog(item)
	svc := newTestService(fc, time.Now())

	rec, err := svc.RecordProgress(ctx, uuid.New(), uuid.New(), item.ID, ProgressReport{
		CurrentTime: 5000,
	})
	if err != nil {
		t.Fatalf("RecordProgress: %v", err)
	}
	if rec.Completed {
		t.Fatalf("unknown duration must never complete by ratio")
	}
	if rec.TotalDuration != 0 {
		t.Fatalf("total = %v, want 0 when nothing is known", rec.TotalDuration)
	}
}

func TestRecordProgressSeriesEpisodePointer(t *testing.T) {
	ctx := context.Background()
	series := &catalog.Item{
		ID:       uuid.New(),
		Title:    "show",
		Type:     catalog.TypeSeries,
		Genres:   []string{"drama"},
		IsActive: true,
		Episodes: []catalog.Episode{
			{SeasonNumber: 1, EpisodeNumber: 1, Title: "pilot", Duration: 1500},
		},
	}
	fc := newFakeCatalog(series)
	svc := newTestService(fc, time.Now())
	accountID, profileID := uuid.New(), uuid.New()

	rec, err := svc.RecordProgress(ctx, accountID, profileID, series.ID, ProgressReport{
		CurrentTime: 600,
		Episode:     &EpisodeRef{SeasonNumber: 2, EpisodeNumber: 3},
	})
	if err != nil {
		t.Fatalf("RecordProgress: %v", err)
	}
	if rec.Episode == nil || rec.Episode.SeasonNumber != 2 || rec.Episode.EpisodeNumber != 3 {
		t.Fatalf("episode pointer = %+v, want s2e3", rec.Episode)
	}
	if rec.EpisodeProgress != 600 {
		t.Fatalf("episode progress = %v, want seconds into the episode", rec.EpisodeProgress)
	}

	// A report without episode data updates position only; the pointer
	// must not move.
	rec, err = svc.RecordProgress(ctx, accountID, profileID, series.ID, ProgressReport{
		CurrentTime: 700,
	})
	if err != nil {
		t.Fatalf("RecordProgress: %v", err)
	}
	if rec.Episode == nil || rec.Episode.SeasonNumber != 2 || rec.Episode.EpisodeNumber != 3 {
		t.Fatalf("episode pointer must survive a report without episode data, got %+v", rec.Episode)
	}
	if rec.WatchedDuration != 700 {
		t.Fatalf("position = %v, want 700", rec.WatchedDuration)
	}
}

func TestRecordProgressValidation(t *testing.T) {
	ctx := context.Background()
	item := movieItem("up", 1000, "animation")
	fc := newFakeCatalog(item)
	svc := newTestService(fc, time.Now())

	if _, err := svc.RecordProgress(ctx, uuid.New(), uuid.New(), item.ID, ProgressReport{
		CurrentTime: -1,
	}); !errors.Is(err, ErrInvalidProgress) {
		t.Fatalf("negative current_time: got %v, want ErrInvalidProgress", err)
	}

	if _, err := svc.RecordProgress(ctx, uuid.New(), uuid.New(), uuid.New(), ProgressReport{
		CurrentTime: 10,
	}); !errors.Is(err, catalog.ErrNotFound) {
		t.Fatalf("unknown content: got %v, want catalog.ErrNotFound", err)
	}
}

func TestRecordProgressViewCountFailureIsNonFatal(t *testing.T) {
	ctx := context.Background()
	item := movieItem("jaws", 1000, "thriller")
	fc := newFakeCatalog(item)
	fc.fail = true
	svc := newTestService(fc, time.Now())

	rec, err := svc.RecordProgress(ctx, uuid.New(), uuid.New(), item.ID, ProgressReport{
		CurrentTime:   950,
		TotalDuration: floatPtr(1000),
	})
	if err != nil {
		t.Fatalf("progress write must survive a failed view count bump: %v", err)
	}
	if !rec.Completed || rec.WatchCount != 1 {
		t.Fatalf("completed=%v count=%d, want completed with count 1", rec.Completed, rec.WatchCount)
	}
}

func TestContinueWatchingOrderAndFilter(t *testing.T) {
	ctx := context.Background()
	active := movieItem("active", 1000, "drama")
	inactive := movieItem("inactive", 1000, "drama")
	inactive.IsActive = false
	removed := movieItem("removed", 1000, "drama")
	fc := newFakeCatalog(active, inactive, removed)

	svc := newTestService(fc, time.Now())
	accountID, profileID := uuid.New(), uuid.New()
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	for i, item := range []*catalog.Item{active, inactive, removed} {
		svc.now = func(at time.Time) func() time.Time {
			return func() time.Time { return at }
		}(base.Add(time.Duration(i) * time.Hour))
		if _, err := svc.RecordProgress(ctx, accountID, profileID, item.ID, ProgressReport{
			CurrentTime:   100,
			TotalDuration: floatPtr(1000),
		}); err != nil {
			t.Fatalf("RecordProgress(%s): %v", item.Title, err)
		}
	}
	delete(fc.items, removed.ID)

	entries, err := svc.ContinueWatching(ctx, accountID, profileID, 0)
	if err != nil {
		t.Fatalf("ContinueWatching: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("entries = %d, want 1 (inactive and removed filtered)", len(entries))
	}
	if entries[0].ContentID != active.ID {
		t.Fatalf("entry = %s, want the active item", entries[0].Title)
	}
	if entries[0].Position != 100 || entries[0].TotalDuration != 1000 {
		t.Fatalf("position %v/%v, want 100/1000", entries[0].Position, entries[0].TotalDuration)
	}
}

func TestContinueWatchingKeepsCompleted(t *testing.T) {
	ctx := context.Background()
	item := movieItem("finished", 1000, "drama")
	fc := newFakeCatalog(item)
	svc := newTestService(fc, time.Now())

	accountID, profileID := uuid.New(), uuid.New()
	if _, err := svc.RecordProgress(ctx, accountID, profileID, item.ID, ProgressReport{
		CurrentTime:   1000,
		TotalDuration: floatPtr(1000),
	}); err != nil {
		t.Fatalf("RecordProgress: %v", err)
	}

	entries, err := svc.ContinueWatching(ctx, accountID, profileID, 0)
	if err != nil {
		t.Fatalf("ContinueWatching: %v", err)
	}
	if len(entries) != 1 || !entries[0].Completed {
		t.Fatalf("completed items must stay on the shelf")
	}
}

func TestContinueWatchingThumbnailFallback(t *testing.T) {
	ctx := context.Background()
	series := &catalog.Item{
		ID:       uuid.New(),
		Title:    "old-show",
		Type:     catalog.TypeSeries,
		Genres:   []string{"comedy"},
		IsActive: true,
		Episodes: []catalog.Episode{
			{SeasonNumber: 1, EpisodeNumber: 1, Title: "pilot", Duration: 1500, ThumbnailURL: "/thumbs/pilot.jpg"},
		},
	}
	fc := newFakeCatalog(series)
	svc := newTestService(fc, time.Now())

	accountID, profileID := uuid.New(), uuid.New()
	if _, err := svc.RecordProgress(ctx, accountID, profileID, series.ID, ProgressReport{
		CurrentTime: 300,
		Episode:     &EpisodeRef{SeasonNumber: 1, EpisodeNumber: 1},
	}); err != nil {
		t.Fatalf("RecordProgress: %v", err)
	}

	entries, err := svc.ContinueWatching(ctx, accountID, profileID, 0)
	if err != nil {
		t.Fatalf("ContinueWatching: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(entries))
	}
	if entries[0].ThumbnailURL != "/thumbs/pilot.jpg" {
		t.Fatalf("thumbnail = %q, want first episode fallback", entries[0].ThumbnailURL)
	}
	if entries[0].Episode == nil || entries[0].Episode.EpisodeNumber != 1 {
		t.Fatalf("episode pointer missing from shelf entry")
	}
}

func TestDedupLatest(t *testing.T) {
	contentID := uuid.New()
	older := &WatchRecord{ID: uuid.New(), ContentID: contentID,
		LastWatchedAt: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)}
	newer := &WatchRecord{ID: uuid.New(), ContentID: contentID,
		LastWatchedAt: time.Date(2026, 8, 2, 0, 0, 0, 0, time.UTC)}
	other := &WatchRecord{ID: uuid.New(), ContentID: uuid.New(),
		LastWatchedAt: time.Date(2026, 8, 3, 0, 0, 0, 0, time.UTC)}

	out := dedupLatest([]*WatchRecord{older, newer, other})
	if len(out) != 2 {
		t.Fatalf("deduped = %d, want 2", len(out))
	}
	if out[0].ID != other.ID {
		t.Fatalf("order: newest record must come first")
	}
	if out[1].ID != newer.ID {
		t.Fatalf("dedup must keep the latest record per content")
	}
}

func TestHistoryPagination(t *testing.T) {
	ctx := context.Background()
	fc := newFakeCatalog()
	svc := newTestService(fc, time.Now())
	accountID, profileID := uuid.New(), uuid.New()
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		item := movieItem("m", 1000, "drama")
		fc.items[item.ID] = item
		svc.now = func(at time.Time) func() time.Time {
			return func() time.Time { return at }
		}(base.Add(time.Duration(i) * time.Hour))
		if _, err := svc.RecordProgress(ctx, accountID, profileID, item.ID, ProgressReport{
			CurrentTime: 100,
		}); err != nil {
			t.Fatalf("RecordProgress: %v", err)
		}
	}

	page, err := svc.History(ctx, accountID, profileID, 2, 2)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if page.Total != 5 || page.Pages != 3 {
		t.Fatalf("total=%d pages=%d, want 5 and 3", page.Total, page.Pages)
	}
	if len(page.Entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(page.Entries))
	}
	if page.Entries[0].Content == nil {
		t.Fatalf("history entries must carry catalog metadata")
	}
	// Newest first: page 2 of limit 2 holds the 3rd and 4th newest.
	if !page.Entries[0].Record.LastWatchedAt.After(page.Entries[1].Record.LastWatchedAt) {
		t.Fatalf("history must be ordered newest first")
	}
}

func TestHistorySkipsRemovedAndInactiveContent(t *testing.T) {
	ctx := context.Background()
	kept := movieItem("kept", 1000, "drama")
	gone := movieItem("gone", 1000, "drama")
	retired := movieItem("retired", 1000, "drama")
	fc := newFakeCatalog(kept, gone, retired)
	svc := newTestService(fc, time.Now())

	accountID, profileID := uuid.New(), uuid.New()
	for _, item := range []*catalog.Item{kept, gone, retired} {
		if _, err := svc.RecordProgress(ctx, accountID, profileID, item.ID, ProgressReport{
			CurrentTime: 100,
		}); err != nil {
			t.Fatalf("RecordProgress: %v", err)
		}
	}
	delete(fc.items, gone.ID)
	retired.IsActive = false

	page, err := svc.History(ctx, accountID, profileID, 1, 10)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if page.Total != 1 || page.Entries[0].Content.ID != kept.ID {
		t.Fatalf("removed and inactive content must drop out of history")
	}
}

func TestStats(t *testing.T) {
	ctx := context.Background()
	drama := movieItem("drama-movie", 1000, "drama", "romance")
	comedy := movieItem("comedy-movie", 1000, "comedy")
	retired := movieItem("retired-movie", 1000, "comedy")
	retired.IsActive = false
	fc := newFakeCatalog(drama, comedy, retired)

	now := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
	svc := newTestService(fc, now)
	accountID, profileID := uuid.New(), uuid.New()

	report := func(item *catalog.Item, at time.Time, cur float64) {
		t.Helper()
		svc.now = func() time.Time { return at }
		if _, err := svc.RecordProgress(ctx, accountID, profileID, item.ID, ProgressReport{
			CurrentTime:   cur,
			TotalDuration: floatPtr(1000),
		}); err != nil {
			t.Fatalf("RecordProgress(%s): %v", item.Title, err)
		}
	}

	report(drama, now.Add(-24*time.Hour), 950)
	report(comedy, now.Add(-48*time.Hour), 100)
	// Outside the 30-day window; still counts in the summary.
	report(retired, now.Add(-40*24*time.Hour), 200)

	svc.now = func() time.Time { return now }
	stats, err := svc.Stats(ctx, accountID, profileID, 30)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}

	if stats.Summary.TotalWatched != 3 || stats.Summary.TotalCompleted != 1 {
		t.Fatalf("summary watched=%d completed=%d, want 3 and 1",
			stats.Summary.TotalWatched, stats.Summary.TotalCompleted)
	}
	if stats.Summary.TotalDuration != 1250 {
		t.Fatalf("summary duration = %v, want 1250", stats.Summary.TotalDuration)
	}

	if len(stats.Daily) != 2 {
		t.Fatalf("daily buckets = %d, want 2 inside the window", len(stats.Daily))
	}
	if stats.Daily[0].Date >= stats.Daily[1].Date {
		t.Fatalf("daily buckets must be sorted ascending by date")
	}

	// Retired content is excluded from the genre breakdown; drama unwinds
	// into both of its genres.
	genres := make(map[string]int)
	for _, g := range stats.ByGenre {
		genres[g.Genre] = g.Count
	}
	if genres["drama"] != 1 || genres["romance"] != 1 || genres["comedy"] != 1 {
		t.Fatalf("genre breakdown = %v, want drama/romance/comedy once each", genres)
	}
}

func TestDeleteIdempotent(t *testing.T) {
	ctx := context.Background()
	item := movieItem("gone", 1000, "drama")
	fc := newFakeCatalog(item)
	svc := newTestService(fc, time.Now())

	accountID, profileID := uuid.New(), uuid.New()
	if _, err := svc.RecordProgress(ctx, accountID, profileID, item.ID, ProgressReport{
		CurrentTime: 100,
	}); err != nil {
		t.Fatalf("RecordProgress: %v", err)
	}

	if err := svc.Delete(ctx, accountID, profileID, item.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := svc.Delete(ctx, accountID, profileID, item.ID); err != nil {
		t.Fatalf("second Delete must succeed: %v", err)
	}

	entries, err := svc.ContinueWatching(ctx, accountID, profileID, 0)
	if err != nil {
		t.Fatalf("ContinueWatching: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("deleted record must leave the shelf")
	}
}

func TestPurgeContent(t *testing.T) {
	ctx := context.Background()
	item := movieItem("purged", 1000, "drama")
	fc := newFakeCatalog(item)
	svc := newTestService(fc, time.Now())

	for i := 0; i < 3; i++ {
		if _, err := svc.RecordProgress(ctx, uuid.New(), uuid.New(), item.ID, ProgressReport{
			CurrentTime: 100,
		}); err != nil {
			t.Fatalf("RecordProgress: %v", err)
		}
	}

	n, err := svc.PurgeContent(ctx, item.ID)
	if err != nil {
		t.Fatalf("PurgeContent: %v", err)
	}
	if n != 3 {
		t.Fatalf("purged = %d, want 3", n)
	}
}
