package jobs

import (
	"github.com/example/streamflix/internal/catalog"
	"github.com/example/streamflix/internal/metadata"
	"github.com/example/streamflix/internal/profiles"
	"github.com/example/streamflix/internal/watch"
)

type RatingPayload struct {
	ContentID string `json:"content_id"`
}

type PurgePayload struct {
	ContentID string `json:"content_id"`
}

type EventNotifier interface {
	Broadcast(event string, data interface{})
}

func RegisterHandlers(q *Queue, catalogRepo *catalog.Repository, watchSvc *watch.Service,
	profileRepo *profiles.Repository, omdb *metadata.OMDbClient, notifier EventNotifier) {

	q.RegisterHandler(TaskRatingFetch, NewRatingHandler(catalogRepo, omdb, notifier))
	q.RegisterHandler(TaskContentPurge, NewPurgeHandler(watchSvc, profileRepo, notifier))
}
