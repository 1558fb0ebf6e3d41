package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/heka-app/heka-server-go/internal/database"
	"github.com/heka-app/heka-server-go/internal/model"
)

type RefreshTokenRepository interface {
	FindByTokenHash(ctx context.Context, tokenHash string) (*model.RefreshToken, error)
	Create(ctx context.Context, params model.CreateRefreshTokenParams) (*model.RefreshToken, error)
	RevokeAllForUser(ctx context.Context, userID string) (int64, error)
	MarkRevoked(ctx context.Context, id string) error
	MarkReplaced(ctx context.Context, id string, replacedByID string) (int64, error)
	DeleteStale(ctx context.Context, olderThan time.Time) (int64, error)
	WithTx(tx *sqlx.Tx) RefreshTokenRepository
}

type refreshTokenRepo struct {
	db database.DBTX
}

func NewRefreshTokenRepository(db *sqlx.DB) RefreshTokenRepository {
	return &refreshTokenRepo{db: db}
}

func (r *refreshTokenRepo) WithTx(tx *sqlx.Tx) RefreshTokenRepository {
	return &refreshTokenRepo{db: tx}
}

func (r *refreshTokenRepo) FindByTokenHash(ctx context.Context, tokenHash string) (*model.RefreshToken, error) {
	var token model.RefreshToken
	err := r.db.GetContext(ctx, &token, `
		SELECT * FROM refresh_tokens WHERE token_hash = $1
	`, tokenHash)
	return HandleNotFound(&token, err)
}

func (r *refreshTokenRepo) Create(ctx context.Context, params model.CreateRefreshTokenParams) (*model.RefreshToken, error) {
	var token model.RefreshToken
	err := r.db.GetContext(ctx, &token, `
		INSERT INTO refresh_tokens (user_id, token_hash, device_id, user_agent, ip_address, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING *
	`, params.UserID, params.TokenHash, params.DeviceID, params.UserAgent, params.IPAddress, params.ExpiresAt)
	if err != nil {
		return nil, err
	}
	return &token, nil
}

// RevokeAllForUser revokes every active token for the user. Single active
// session policy: a new login invalidates all earlier logins.
func (r *refreshTokenRepo) RevokeAllForUser(ctx context.Context, userID string) (int64, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE refresh_tokens SET
			revoked_at = $2,
			replaced_by_token_id = NULL
		WHERE user_id = $1 AND revoked_at IS NULL
	`, userID, time.Now())
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// MarkRevoked is conditional on revoked_at being unset, so repeated lazy
// revocation of an expired token is idempotent.
func (r *refreshTokenRepo) MarkRevoked(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE refresh_tokens SET revoked_at = $2
		WHERE id = $1 AND revoked_at IS NULL
	`, id, time.Now())
	return err
}

// MarkReplaced revokes the token and records its successor, producing the
// tamper-evident rotation chain used for reuse-detection audits. Returns the
// number of rows updated: zero means another rotation revoked the token first,
// and the caller must not commit its successor.
func (r *refreshTokenRepo) MarkReplaced(ctx context.Context, id string, replacedByID string) (int64, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE refresh_tokens SET
			revoked_at = $3,
			replaced_by_token_id = $2
		WHERE id = $1 AND revoked_at IS NULL
	`, id, replacedByID, time.Now())
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (r *refreshTokenRepo) DeleteStale(ctx context.Context, olderThan time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `
		DELETE FROM refresh_tokens
		WHERE (revoked_at IS NOT NULL AND revoked_at < $1)
		OR expires_at < $1
	`, olderThan)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
