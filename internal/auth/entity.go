// AngelaMos | 2026
// entity.go

package auth

import (
	"time"
)

// RefreshToken is one stored session credential. Tokens in the same
// family form a rotation chain; ReplacedByID links each used token to
// its successor so reuse can be traced.
type RefreshToken struct {
	ID        string    `db:"id"`
	UserID    string    `db:"user_id"`
	TokenHash string    `db:"token_hash"`
	FamilyID  string    `db:"family_id"`
	ExpiresAt time.Time `db:"expires_at"`
	CreatedAt time.Time `db:"created_at"`

	// Rotation bookkeeping.
	IsUsed       bool       `db:"is_used"`
	UsedAt       *time.Time `db:"used_at"`
	RevokedAt    *time.Time `db:"revoked_at"`
	ReplacedByID *string    `db:"replaced_by_id"`

	// Client metadata surfaced on the sessions listing.
	UserAgent string `db:"user_agent"`
	IPAddress string `db:"ip_address"`
}

func (t *RefreshToken) IsExpired() bool {
	return time.Now().After(t.ExpiresAt)
}

func (t *RefreshToken) IsRevoked() bool {
	return t.RevokedAt != nil
}
