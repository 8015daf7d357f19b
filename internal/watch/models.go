package watch

import (
	"time"

	"github.com/google/uuid"

	"github.com/example/streamflix/internal/catalog"
)

// EpisodeRef identifies which episode a series record's position refers
// to. Series records track only the current episode pointer, not
// per-episode history.
type EpisodeRef struct {
	SeasonNumber  int        `json:"season_number"`
	EpisodeNumber int        `json:"episode_number"`
	EpisodeID     *uuid.UUID `json:"episode_id,omitempty"`
}

// WatchRecord is the durable viewing state for one
// (account, profile, content) triple. Created on the first progress
// report, mutated in place by every later one, deleted only by explicit
// user action or catalog purge.
type WatchRecord struct {
	ID        uuid.UUID `json:"id"`
	AccountID uuid.UUID `json:"account_id"`
	ProfileID uuid.UUID `json:"profile_id"`
	ContentID uuid.UUID `json:"content_id"`

	// ContentType is fixed from the catalog item at creation and never
	// changes, even if the catalog item is later edited.
	ContentType catalog.ContentType `json:"content_type"`

	WatchedDuration float64     `json:"watched_duration"`
	TotalDuration   float64     `json:"total_duration"`
	Episode         *EpisodeRef `json:"current_episode,omitempty"`
	EpisodeProgress float64     `json:"episode_progress"`
	Completed       bool        `json:"completed"`
	LastWatchedAt   time.Time   `json:"last_watched_at"`
	Device          string      `json:"device"`
	WatchCount      int         `json:"watch_count"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Key addresses a single watch record.
type Key struct {
	AccountID uuid.UUID
	ProfileID uuid.UUID
	ContentID uuid.UUID
}

// ProgressReport is one player tick. TotalDuration and Completed are
// optional: a player may not know the length yet, and only explicit
// "mark as watched" actions set Completed.
type ProgressReport struct {
	CurrentTime   float64     `json:"current_time"`
	TotalDuration *float64    `json:"total_duration,omitempty"`
	Episode       *EpisodeRef `json:"episode_data,omitempty"`
	Completed     *bool       `json:"completed,omitempty"`
	Device        string      `json:"device,omitempty"`
}

// ContinueEntry is one shelf position: the latest record for a content
// item joined with live catalog metadata.
type ContinueEntry struct {
	ContentID     uuid.UUID           `json:"content_id"`
	Title         string              `json:"title"`
	Type          catalog.ContentType `json:"type"`
	ThumbnailURL  string              `json:"thumbnail_url"`
	ReleaseYear   *int                `json:"release_year,omitempty"`
	Rating        *float64            `json:"rating,omitempty"`
	Position      float64             `json:"position"`
	TotalDuration float64             `json:"total_duration"`
	Episode       *EpisodeRef         `json:"current_episode,omitempty"`
	Completed     bool                `json:"completed"`
	LastWatchedAt time.Time           `json:"last_watched_at"`
}

// HistoryEntry is a watch record joined with catalog metadata for the
// history listing.
type HistoryEntry struct {
	Record  *WatchRecord  `json:"record"`
	Content *catalog.Item `json:"content"`
}

type HistoryPage struct {
	Entries []HistoryEntry `json:"entries"`
	Page    int            `json:"page"`
	Limit   int            `json:"limit"`
	Total   int            `json:"total"`
	Pages   int            `json:"pages"`
}

type DailyStat struct {
	Date          string  `json:"date"`
	Genre         string  `json:"genre"`
	Count         int     `json:"count"`
	TotalDuration float64 `json:"total_duration"`
}

type GenreStat struct {
	Genre         string  `json:"genre"`
	Count         int     `json:"count"`
	TotalDuration float64 `json:"total_duration"`
}

type StatsSummary struct {
	TotalWatched   int     `json:"total_watched"`
	TotalCompleted int     `json:"total_completed"`
	TotalDuration  float64 `json:"total_duration"`
}

type Stats struct {
	Daily   []DailyStat  `json:"daily"`
	ByGenre []GenreStat  `json:"by_genre"`
	Summary StatsSummary `json:"summary"`
}
