// Package scheduler runs recurring maintenance: the nightly rating
// sweep that re-queues OMDb lookups for items still missing scores.
package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/example/streamflix/internal/catalog"
	"github.com/example/streamflix/internal/jobs"
)

const sweepBatchSize = 100

type Scheduler struct {
	cron        *cron.Cron
	queue       *jobs.Queue
	catalogRepo *catalog.Repository
}

func New(queue *jobs.Queue, catalogRepo *catalog.Repository) *Scheduler {
	return &Scheduler{
		cron:        cron.New(),
		queue:       queue,
		catalogRepo: catalogRepo,
	}
}

// Start registers the jobs and launches the cron loop. The sweep runs
// at 03:00 server time, when OMDb free-tier quota has reset.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc("0 3 * * *", s.ratingSweep); err != nil {
		return err
	}
	s.cron.Start()
	log.Println("Scheduler started")
	return nil
}

func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	select {
	case <-ctx.Done():
	case <-time.After(5 * time.Second):
		log.Println("Scheduler: stop timed out waiting for running jobs")
	}
}

func (s *Scheduler) ratingSweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	ids, err := s.catalogRepo.ListMissingRating(ctx, sweepBatchSize)
	if err != nil {
		log.Printf("Scheduler: rating sweep query: %v", err)
		return
	}
	if len(ids) == 0 {
		return
	}

	queued := 0
	for _, id := range ids {
		if err := s.queue.EnqueueRatingFetch(id); err != nil {
			log.Printf("Scheduler: enqueue rating fetch %s: %v", id, err)
			continue
		}
		queued++
	}
	log.Printf("Scheduler: rating sweep queued %d of %d items", queued, len(ids))
}
