package profiles

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

var (
	ErrNotFound     = errors.New("profile not found")
	ErrProfileLimit = fmt.Errorf("cannot have more than %d profiles", MaxPerAccount)
)

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a profile after checking the per-account cap. The check is
// application-level: two racing creates can momentarily exceed the cap,
// which is acceptable for a profile picker.
func (r *Repository) Create(ctx context.Context, p *Profile) error {
	var count int
	if err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM profiles WHERE account_id=$1", p.AccountID).Scan(&count); err != nil {
		return fmt.Errorf("count profiles: %w", err)
	}
	if count >= MaxPerAccount {
		return ErrProfileLimit
	}

	if p.AvatarURL == "" {
		p.AvatarURL = "/images/default-avatar.png"
	}
	if p.PreferredLanguage == "" {
		p.PreferredLanguage = "en"
	}
	return r.db.QueryRowContext(ctx, `
		INSERT INTO profiles (account_id, name, avatar_url, is_kids, preferred_language)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, liked_content, created_at, updated_at`,
		p.AccountID, p.Name, p.AvatarURL, p.IsKids, p.PreferredLanguage,
	).Scan(&p.ID, pq.Array(&p.LikedContent), &p.CreatedAt, &p.UpdatedAt)
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Profile, error) {
	p := &Profile{}
	err := r.db.QueryRowContext(ctx, `
		SELECT id, account_id, name, avatar_url, is_kids, preferred_language, liked_content, created_at, updated_at
		FROM profiles WHERE id=$1`, id,
	).Scan(&p.ID, &p.AccountID, &p.Name, &p.AvatarURL, &p.IsKids, &p.PreferredLanguage,
		pq.Array(&p.LikedContent), &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *Repository) ListByAccount(ctx context.Context, accountID uuid.UUID) ([]Profile, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, account_id, name, avatar_url, is_kids, preferred_language, liked_content, created_at, updated_at
		FROM profiles WHERE account_id=$1 ORDER BY created_at`, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Profile
	for rows.Next() {
		var p Profile
		if err := rows.Scan(&p.ID, &p.AccountID, &p.Name, &p.AvatarURL, &p.IsKids,
			&p.PreferredLanguage, pq.Array(&p.LikedContent), &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *Repository) Update(ctx context.Context, p *Profile) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE profiles SET name=$2, avatar_url=$3, is_kids=$4, preferred_language=$5, updated_at=NOW()
		WHERE id=$1`,
		p.ID, p.Name, p.AvatarURL, p.IsKids, p.PreferredLanguage)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) Delete(ctx context.Context, id, accountID uuid.UUID) error {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM profiles WHERE id=$1 AND account_id=$2", id, accountID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// BelongsTo reports whether the profile exists under the given account.
// Satisfies auth.ProfileChecker.
func (r *Repository) BelongsTo(ctx context.Context, profileID, accountID uuid.UUID) (bool, error) {
	var ok bool
	err := r.db.QueryRowContext(ctx,
		"SELECT EXISTS (SELECT 1 FROM profiles WHERE id=$1 AND account_id=$2)",
		profileID, accountID).Scan(&ok)
	return ok, err
}

// GetLiked returns the profile's liked-content id set.
func (r *Repository) GetLiked(ctx context.Context, profileID uuid.UUID) ([]uuid.UUID, error) {
	var liked []uuid.UUID
	err := r.db.QueryRowContext(ctx,
		"SELECT liked_content FROM profiles WHERE id=$1", profileID).Scan(pq.Array(&liked))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return liked, nil
}

// ToggleLike adds or removes a content id from the liked set and reports
// whether the item is liked after the call.
func (r *Repository) ToggleLike(ctx context.Context, profileID, contentID uuid.UUID) (bool, error) {
	var liked bool
	err := r.db.QueryRowContext(ctx, `
		UPDATE profiles SET
		    liked_content = CASE
		        WHEN $2 = ANY(liked_content) THEN array_remove(liked_content, $2)
		        ELSE array_append(liked_content, $2)
		    END,
		    updated_at = NOW()
		WHERE id=$1
		RETURNING $2 = ANY(liked_content)`,
		profileID, contentID).Scan(&liked)
	if errors.Is(err, sql.ErrNoRows) {
		return false, ErrNotFound
	}
	return liked, err
}

// RemoveLikedEverywhere pulls a content id from every profile's liked set.
// Used by the purge job when content is removed from the catalog.
func (r *Repository) RemoveLikedEverywhere(ctx context.Context, contentID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE profiles SET liked_content = array_remove(liked_content, $1), updated_at = NOW()
		WHERE $1 = ANY(liked_content)`, contentID)
	return err
}
