package watch

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is a map-backed Store used in tests and single-node demo
// runs. It mirrors the Postgres upsert semantics including the unique
// key and newest-first listing order.
type MemoryStore struct {
	mu   sync.RWMutex
	recs map[Key]*WatchRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{recs: make(map[Key]*WatchRecord)}
}

func cloneRecord(rec *WatchRecord) *WatchRecord {
	cp := *rec
	if rec.Episode != nil {
		ref := *rec.Episode
		if rec.Episode.EpisodeID != nil {
			id := *rec.Episode.EpisodeID
			ref.EpisodeID = &id
		}
		cp.Episode = &ref
	}
	return &cp
}

func (s *MemoryStore) Find(ctx context.Context, key Key) (*WatchRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.recs[key]
	if !ok {
		return nil, ErrNoRecord
	}
	return cloneRecord(rec), nil
}

func (s *MemoryStore) Save(ctx context.Context, rec *WatchRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := Key{AccountID: rec.AccountID, ProfileID: rec.ProfileID, ContentID: rec.ContentID}
	now := time.Now().UTC()
	if prev, ok := s.recs[key]; ok {
		rec.ID = prev.ID
		rec.CreatedAt = prev.CreatedAt
	} else {
		rec.ID = uuid.New()
		rec.CreatedAt = now
	}
	rec.UpdatedAt = now
	s.recs[key] = cloneRecord(rec)
	return nil
}

func (s *MemoryStore) ListByProfile(ctx context.Context, accountID, profileID uuid.UUID) ([]*WatchRecord, error) {
	return s.list(accountID, profileID, 0), nil
}

func (s *MemoryStore) ListRecent(ctx context.Context, accountID, profileID uuid.UUID, limit int) ([]*WatchRecord, error) {
	return s.list(accountID, profileID, limit), nil
}

func (s *MemoryStore) list(accountID, profileID uuid.UUID, limit int) []*WatchRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*WatchRecord
	for _, rec := range s.recs {
		if rec.AccountID == accountID && rec.ProfileID == profileID {
			out = append(out, cloneRecord(rec))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].LastWatchedAt.Equal(out[j].LastWatchedAt) {
			return out[i].LastWatchedAt.After(out[j].LastWatchedAt)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func (s *MemoryStore) Delete(ctx context.Context, key Key) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.recs, key)
	return nil
}

func (s *MemoryStore) DeleteByContent(ctx context.Context, contentID uuid.UUID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for key, rec := range s.recs {
		if rec.ContentID == contentID {
			delete(s.recs, key)
			n++
		}
	}
	return n, nil
}
