package model

import "time"

// RefreshToken stores only the SHA-256 hash of the opaque secret; the raw
// value is returned to the client once at issue time and never persisted.
type RefreshToken struct {
	ID                string     `db:"id" json:"id"`
	UserID            string     `db:"user_id" json:"userId"`
	TokenHash         string     `db:"token_hash" json:"-"`
	DeviceID          *string    `db:"device_id" json:"deviceId,omitempty"`
	UserAgent         *string    `db:"user_agent" json:"userAgent,omitempty"`
	IPAddress         *string    `db:"ip_address" json:"ipAddress,omitempty"`
	CreatedAt         time.Time  `db:"created_at" json:"createdAt"`
	ExpiresAt         time.Time  `db:"expires_at" json:"expiresAt"`
	RevokedAt         *time.Time `db:"revoked_at" json:"revokedAt,omitempty"`
	ReplacedByTokenID *string    `db:"replaced_by_token_id" json:"replacedByTokenId,omitempty"`
}

// Active reports whether the token is neither revoked nor expired at now.
func (t *RefreshToken) Active(now time.Time) bool {
	return t.RevokedAt == nil && t.ExpiresAt.After(now)
}

type CreateRefreshTokenParams struct {
	UserID    string
	TokenHash string
	DeviceID  *string
	UserAgent *string
	IPAddress *string
	ExpiresAt time.Time
}
