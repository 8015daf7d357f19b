package watch

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var ErrNoRecord = errors.New("watch record not found")

// Store persists watch records. Save is last-write-wins on the unique
// (account, profile, content) triple; there is deliberately no
// compare-and-swap (see the service docs). The interface is the seam
// where a stricter deployment can plug in an optimistic-concurrency
// implementation.
type Store interface {
	// Find returns the record for the key, or ErrNoRecord.
	Find(ctx context.Context, key Key) (*WatchRecord, error)

	// Save inserts or overwrites the record for its key.
	Save(ctx context.Context, rec *WatchRecord) error

	// ListByProfile returns every record for the (account, profile)
	// pair, newest first.
	ListByProfile(ctx context.Context, accountID, profileID uuid.UUID) ([]*WatchRecord, error)

	// ListRecent returns up to limit records, newest first.
	ListRecent(ctx context.Context, accountID, profileID uuid.UUID, limit int) ([]*WatchRecord, error)

	// Delete removes the record for the key. Deleting an absent record
	// is not an error.
	Delete(ctx context.Context, key Key) error

	// DeleteByContent purges every record for a content id, across all
	// accounts and profiles. Returns the number removed.
	DeleteByContent(ctx context.Context, contentID uuid.UUID) (int64, error)
}
