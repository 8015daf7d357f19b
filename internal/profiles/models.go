package profiles

import (
	"time"

	"github.com/google/uuid"
)

// MaxPerAccount caps the number of viewing profiles an account may hold.
// Enforced at creation time, not by the schema.
const MaxPerAccount = 5

type Profile struct {
	ID                uuid.UUID   `json:"id"`
	AccountID         uuid.UUID   `json:"account_id"`
	Name              string      `json:"name"`
	AvatarURL         string      `json:"avatar_url"`
	IsKids            bool        `json:"is_kids"`
	PreferredLanguage string      `json:"preferred_language"`
	LikedContent      []uuid.UUID `json:"liked_content"`
	CreatedAt         time.Time   `json:"created_at"`
	UpdatedAt         time.Time   `json:"updated_at"`
}
