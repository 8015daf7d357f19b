package catalog

import (
	"time"

	"github.com/google/uuid"
)

type ContentType string

const (
	TypeMovie  ContentType = "movie"
	TypeSeries ContentType = "series"
)

func (t ContentType) Valid() bool {
	return t == TypeMovie || t == TypeSeries
}

// Episode is an embedded series episode. Stored as JSONB on the content
// row; episodes have no table of their own.
type Episode struct {
	ID            *uuid.UUID `json:"id,omitempty"`
	SeasonNumber  int        `json:"season_number"`
	EpisodeNumber int        `json:"episode_number"`
	Title         string     `json:"title"`
	Description   string     `json:"description,omitempty"`
	Duration      float64    `json:"duration"`
	VideoURL      string     `json:"video_url"`
	ThumbnailURL  string     `json:"thumbnail_url,omitempty"`
	ReleaseDate   *time.Time `json:"release_date,omitempty"`
}

type Item struct {
	ID           uuid.UUID   `json:"id"`
	Title        string      `json:"title"`
	Description  string      `json:"description"`
	Type         ContentType `json:"type"`
	Genres       []string    `json:"genres"`
	ReleaseYear  *int        `json:"release_year,omitempty"`
	Director     *string     `json:"director,omitempty"`
	CastMembers  []string    `json:"cast_members"`
	RatingIMDB   *float64    `json:"rating_imdb,omitempty"`
	RatingRT     *int        `json:"rating_rt,omitempty"`
	IMDBID       *string     `json:"imdb_id,omitempty"`
	Duration     *float64    `json:"duration,omitempty"`
	VideoURL     *string     `json:"video_url,omitempty"`
	Episodes     []Episode   `json:"episodes,omitempty"`
	TotalSeasons *int        `json:"total_seasons,omitempty"`
	ThumbnailURL string      `json:"thumbnail_url"`
	BannerURL    *string     `json:"banner_url,omitempty"`
	TrailerURL   *string     `json:"trailer_url,omitempty"`
	AgeRating    string      `json:"age_rating"`
	Language     string      `json:"language"`
	Subtitles    []string    `json:"subtitles"`
	ViewCount    int64       `json:"view_count"`
	IsActive     bool        `json:"is_active"`
	AddedBy      *uuid.UUID  `json:"added_by,omitempty"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// NominalDuration is the catalog's best guess at a playback length in
// seconds: the movie runtime, or the first episode's runtime for series.
func (i *Item) NominalDuration() float64 {
	if i.Duration != nil {
		return *i.Duration
	}
	if len(i.Episodes) > 0 {
		return i.Episodes[0].Duration
	}
	return 0
}

// PosterThumbnail prefers the item-level thumbnail and falls back to the
// first episode's art. Older series entries may only carry episode art.
func (i *Item) PosterThumbnail() string {
	if i.ThumbnailURL != "" {
		return i.ThumbnailURL
	}
	if len(i.Episodes) > 0 {
		return i.Episodes[0].ThumbnailURL
	}
	return ""
}

// ListParams filters the public browse listing.
type ListParams struct {
	Type   ContentType
	Genre  string
	Search string
	Page   int
	Limit  int
}

// RecommendParams selects candidate items for the recommendation engine:
// active items outside the exclusion set matching at least one genre,
// ranked by rating then popularity.
type RecommendParams struct {
	Genres  []string
	Exclude []uuid.UUID
	Limit   int
}
