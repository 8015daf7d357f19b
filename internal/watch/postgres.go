package watch

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

const recordColumns = `id, account_id, profile_id, content_id, content_type,
	watched_duration, total_duration, season_number, episode_number, episode_id,
	episode_progress, completed, last_watched_at, device, watch_count, created_at, updated_at`

// PostgresStore is the production Store. The unique index on
// (account_id, profile_id, content_id) makes Save an idempotent upsert.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func scanRecord(row interface{ Scan(...interface{}) error }) (*WatchRecord, error) {
	rec := &WatchRecord{}
	var (
		season, episode sql.NullInt64
		episodeID       *uuid.UUID
	)
	err := row.Scan(&rec.ID, &rec.AccountID, &rec.ProfileID, &rec.ContentID, &rec.ContentType,
		&rec.WatchedDuration, &rec.TotalDuration, &season, &episode, &episodeID,
		&rec.EpisodeProgress, &rec.Completed, &rec.LastWatchedAt, &rec.Device,
		&rec.WatchCount, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if season.Valid || episode.Valid || episodeID != nil {
		rec.Episode = &EpisodeRef{
			SeasonNumber:  int(season.Int64),
			EpisodeNumber: int(episode.Int64),
			EpisodeID:     episodeID,
		}
	}
	return rec, nil
}

func (s *PostgresStore) Find(ctx context.Context, key Key) (*WatchRecord, error) {
	rec, err := scanRecord(s.db.QueryRowContext(ctx, `
		SELECT `+recordColumns+` FROM watch_records
		WHERE account_id=$1 AND profile_id=$2 AND content_id=$3`,
		key.AccountID, key.ProfileID, key.ContentID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoRecord
	}
	return rec, err
}

func (s *PostgresStore) Save(ctx context.Context, rec *WatchRecord) error {
	var season, episode interface{}
	var episodeID *uuid.UUID
	if rec.Episode != nil {
		season = rec.Episode.SeasonNumber
		episode = rec.Episode.EpisodeNumber
		episodeID = rec.Episode.EpisodeID
	}
	return s.db.QueryRowContext(ctx, `
		INSERT INTO watch_records (account_id, profile_id, content_id, content_type,
		    watched_duration, total_duration, season_number, episode_number, episode_id,
		    episode_progress, completed, last_watched_at, device, watch_count)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
		ON CONFLICT (account_id, profile_id, content_id) DO UPDATE SET
		    watched_duration = EXCLUDED.watched_duration,
		    total_duration   = EXCLUDED.total_duration,
		    season_number    = EXCLUDED.season_number,
		    episode_number   = EXCLUDED.episode_number,
		    episode_id       = EXCLUDED.episode_id,
		    episode_progress = EXCLUDED.episode_progress,
		    completed        = EXCLUDED.completed,
		    last_watched_at  = EXCLUDED.last_watched_at,
		    device           = EXCLUDED.device,
		    watch_count      = EXCLUDED.watch_count,
		    updated_at       = NOW()
		RETURNING id, created_at, updated_at`,
		rec.AccountID, rec.ProfileID, rec.ContentID, rec.ContentType,
		rec.WatchedDuration, rec.TotalDuration, season, episode, episodeID,
		rec.EpisodeProgress, rec.Completed, rec.LastWatchedAt, rec.Device, rec.WatchCount,
	).Scan(&rec.ID, &rec.CreatedAt, &rec.UpdatedAt)
}

func (s *PostgresStore) ListByProfile(ctx context.Context, accountID, profileID uuid.UUID) ([]*WatchRecord, error) {
	return s.list(ctx, accountID, profileID, 0)
}

func (s *PostgresStore) ListRecent(ctx context.Context, accountID, profileID uuid.UUID, limit int) ([]*WatchRecord, error) {
	return s.list(ctx, accountID, profileID, limit)
}

func (s *PostgresStore) list(ctx context.Context, accountID, profileID uuid.UUID, limit int) ([]*WatchRecord, error) {
	q := `SELECT ` + recordColumns + ` FROM watch_records
		WHERE account_id=$1 AND profile_id=$2
		ORDER BY last_watched_at DESC`
	args := []interface{}{accountID, profileID}
	if limit > 0 {
		args = append(args, limit)
		q += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*WatchRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *PostgresStore) Delete(ctx context.Context, key Key) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM watch_records
		WHERE account_id=$1 AND profile_id=$2 AND content_id=$3`,
		key.AccountID, key.ProfileID, key.ContentID)
	return err
}

func (s *PostgresStore) DeleteByContent(ctx context.Context, contentID uuid.UUID) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM watch_records WHERE content_id=$1", contentID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
