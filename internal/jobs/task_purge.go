package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/example/streamflix/internal/profiles"
	"github.com/example/streamflix/internal/watch"
)

// PurgeHandler removes every dangling reference to a deleted catalog
// item: watch records across all accounts and liked-list entries on
// every profile. Runs off the delete request path so a large fanout
// never blocks the admin.
type PurgeHandler struct {
	watchSvc    *watch.Service
	profileRepo *profiles.Repository
	notifier    EventNotifier
}

func NewPurgeHandler(watchSvc *watch.Service, profileRepo *profiles.Repository, notifier EventNotifier) *PurgeHandler {
	return &PurgeHandler{watchSvc: watchSvc, profileRepo: profileRepo, notifier: notifier}
}

func (h *PurgeHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var p PurgePayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	contentID, err := uuid.Parse(p.ContentID)
	if err != nil {
		return fmt.Errorf("content id: %w", err)
	}

	removed, err := h.watchSvc.PurgeContent(ctx, contentID)
	if err != nil {
		return fmt.Errorf("purge watch records: %w", err)
	}
	if err := h.profileRepo.RemoveLikedEverywhere(ctx, contentID); err != nil {
		return fmt.Errorf("purge liked references: %w", err)
	}
	log.Printf("Purge: content %s, %d watch records removed", contentID, removed)

	if h.notifier != nil {
		h.notifier.Broadcast("content:purged", map[string]interface{}{
			"content_id":      contentID.String(),
			"records_removed": removed,
		})
	}
	return nil
}
