package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/example/streamflix/internal/catalog"
	"github.com/example/streamflix/internal/metadata"
)

type RatingHandler struct {
	catalogRepo *catalog.Repository
	omdb        *metadata.OMDbClient
	notifier    EventNotifier
}

func NewRatingHandler(catalogRepo *catalog.Repository, omdb *metadata.OMDbClient, notifier EventNotifier) *RatingHandler {
	return &RatingHandler{catalogRepo: catalogRepo, omdb: omdb, notifier: notifier}
}

func (h *RatingHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var p RatingPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	contentID, err := uuid.Parse(p.ContentID)
	if err != nil {
		return fmt.Errorf("content id: %w", err)
	}

	item, err := h.catalogRepo.GetByID(ctx, contentID)
	if err != nil {
		// Deleted between enqueue and run; nothing to enrich.
		log.Printf("Rating: content %s gone, skipping", contentID)
		return nil
	}
	if item.RatingIMDB != nil {
		return nil
	}
	if h.omdb == nil {
		log.Printf("Rating: OMDb disabled, skipping %s", item.Title)
		return nil
	}

	ratings, err := h.omdb.FetchByTitle(ctx, item.Title, item.ReleaseYear)
	if err != nil {
		// Retryable: OMDb rate limits aggressively on free keys.
		return fmt.Errorf("omdb fetch %q: %w", item.Title, err)
	}
	if ratings.IMDBRating == nil && ratings.RTScore == nil {
		log.Printf("Rating: no scores found for %q", item.Title)
		return nil
	}

	if err := h.catalogRepo.SetRating(ctx, contentID, ratings.IMDBRating, ratings.RTScore, ratings.IMDBID); err != nil {
		return fmt.Errorf("set rating: %w", err)
	}
	log.Printf("Rating: enriched %q", item.Title)

	if h.notifier != nil {
		h.notifier.Broadcast("content:rated", map[string]interface{}{
			"content_id": contentID.String(),
		})
	}
	return nil
}
