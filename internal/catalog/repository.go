package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

var ErrNotFound = errors.New("content not found")

const itemColumns = `id, title, description, content_type, genres, release_year, director,
	cast_members, rating_imdb, rating_rt, imdb_id, duration, video_url, episodes,
	total_seasons, thumbnail_url, banner_url, trailer_url, age_rating, language,
	subtitles, view_count, is_active, added_by, created_at, updated_at`

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func scanItem(row interface{ Scan(...interface{}) error }) (*Item, error) {
	i := &Item{}
	var episodes []byte
	err := row.Scan(&i.ID, &i.Title, &i.Description, &i.Type, pq.Array(&i.Genres),
		&i.ReleaseYear, &i.Director, pq.Array(&i.CastMembers), &i.RatingIMDB, &i.RatingRT,
		&i.IMDBID, &i.Duration, &i.VideoURL, &episodes, &i.TotalSeasons, &i.ThumbnailURL,
		&i.BannerURL, &i.TrailerURL, &i.AgeRating, &i.Language, pq.Array(&i.Subtitles),
		&i.ViewCount, &i.IsActive, &i.AddedBy, &i.CreatedAt, &i.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if len(episodes) > 0 {
		if err := json.Unmarshal(episodes, &i.Episodes); err != nil {
			return nil, fmt.Errorf("decode episodes: %w", err)
		}
	}
	return i, nil
}

func (r *Repository) Create(ctx context.Context, i *Item) error {
	episodes, err := marshalEpisodes(i.Episodes)
	if err != nil {
		return err
	}
	return r.db.QueryRowContext(ctx, `
		INSERT INTO content (title, description, content_type, genres, release_year, director,
		    cast_members, rating_imdb, rating_rt, imdb_id, duration, video_url, episodes,
		    total_seasons, thumbnail_url, banner_url, trailer_url, age_rating, language,
		    subtitles, is_active, added_by)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22)
		RETURNING id, view_count, created_at, updated_at`,
		i.Title, i.Description, i.Type, pq.Array(i.Genres), i.ReleaseYear, i.Director,
		pq.Array(i.CastMembers), i.RatingIMDB, i.RatingRT, i.IMDBID, i.Duration, i.VideoURL,
		episodes, i.TotalSeasons, i.ThumbnailURL, i.BannerURL, i.TrailerURL, i.AgeRating,
		i.Language, pq.Array(i.Subtitles), i.IsActive, i.AddedBy,
	).Scan(&i.ID, &i.ViewCount, &i.CreatedAt, &i.UpdatedAt)
}

func (r *Repository) Update(ctx context.Context, i *Item) error {
	episodes, err := marshalEpisodes(i.Episodes)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE content SET title=$2, description=$3, genres=$4, release_year=$5, director=$6,
		    cast_members=$7, rating_imdb=$8, rating_rt=$9, imdb_id=$10, duration=$11,
		    video_url=$12, episodes=$13, total_seasons=$14, thumbnail_url=$15, banner_url=$16,
		    trailer_url=$17, age_rating=$18, language=$19, subtitles=$20, is_active=$21,
		    updated_at=NOW()
		WHERE id=$1`,
		i.ID, i.Title, i.Description, pq.Array(i.Genres), i.ReleaseYear, i.Director,
		pq.Array(i.CastMembers), i.RatingIMDB, i.RatingRT, i.IMDBID, i.Duration, i.VideoURL,
		episodes, i.TotalSeasons, i.ThumbnailURL, i.BannerURL, i.TrailerURL, i.AgeRating,
		i.Language, pq.Array(i.Subtitles), i.IsActive)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM content WHERE id=$1", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Item, error) {
	i, err := scanItem(r.db.QueryRowContext(ctx,
		"SELECT "+itemColumns+" FROM content WHERE id=$1", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return i, err
}

// GetByIDs returns the items that exist, keyed by id. Missing ids are
// simply absent from the map.
func (r *Repository) GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*Item, error) {
	out := make(map[uuid.UUID]*Item, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+itemColumns+" FROM content WHERE id = ANY($1)", pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		i, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		out[i.ID] = i
	}
	return out, rows.Err()
}

func (r *Repository) List(ctx context.Context, p ListParams) ([]*Item, error) {
	if p.Limit <= 0 {
		p.Limit = 24
	}
	if p.Page < 1 {
		p.Page = 1
	}

	q := "SELECT " + itemColumns + " FROM content WHERE is_active = true"
	args := []interface{}{}
	if p.Type.Valid() {
		args = append(args, p.Type)
		q += fmt.Sprintf(" AND content_type = $%d", len(args))
	}
	if p.Genre != "" {
		args = append(args, p.Genre)
		q += fmt.Sprintf(" AND $%d = ANY(genres)", len(args))
	}
	if p.Search != "" {
		args = append(args, "%"+p.Search+"%")
		q += fmt.Sprintf(" AND (title ILIKE $%d OR description ILIKE $%d)", len(args), len(args))
	}
	args = append(args, p.Limit, (p.Page-1)*p.Limit)
	q += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Item
	for rows.Next() {
		i, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, i)
	}
	return out, rows.Err()
}

// Recommendable returns active items outside the exclusion set that match
// at least one of the given genres, best-rated and most-viewed first.
func (r *Repository) Recommendable(ctx context.Context, p RecommendParams) ([]*Item, error) {
	if p.Limit <= 0 {
		p.Limit = 20
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+itemColumns+` FROM content
		WHERE is_active = true
		  AND NOT (id = ANY($1))
		  AND genres && $2
		ORDER BY rating_imdb DESC NULLS LAST, view_count DESC
		LIMIT $3`,
		pq.Array(p.Exclude), pq.Array(p.Genres), p.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Item
	for rows.Next() {
		i, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, i)
	}
	return out, rows.Err()
}

// IncrementViewCount bumps the popularity counter. Called by progress
// ingest exactly once per completion transition.
func (r *Repository) IncrementViewCount(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE content SET view_count = view_count + 1, updated_at = NOW() WHERE id=$1", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListMissingRating feeds the nightly OMDb sweep.
func (r *Repository) ListMissingRating(ctx context.Context, limit int) ([]uuid.UUID, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id FROM content
		WHERE rating_imdb IS NULL AND is_active = true
		ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// SetRating records an enrichment result.
func (r *Repository) SetRating(ctx context.Context, id uuid.UUID, imdb *float64, rt *int, imdbID *string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE content SET
		    rating_imdb = COALESCE($2, rating_imdb),
		    rating_rt = COALESCE($3, rating_rt),
		    imdb_id = COALESCE($4, imdb_id),
		    updated_at = NOW()
		WHERE id=$1`, id, imdb, rt, imdbID)
	return err
}

func marshalEpisodes(eps []Episode) (interface{}, error) {
	if eps == nil {
		return nil, nil
	}
	b, err := json.Marshal(eps)
	if err != nil {
		return nil, fmt.Errorf("encode episodes: %w", err)
	}
	return b, nil
}
