package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"github.com/heka-app/heka-server-go/internal/database"
	apperrors "github.com/heka-app/heka-server-go/internal/errors"
	"github.com/heka-app/heka-server-go/internal/model"
	"github.com/heka-app/heka-server-go/internal/repository"
)

// TxRunner runs a function inside a database transaction; *database.DB
// satisfies it.
type TxRunner interface {
	WithTx(ctx context.Context, fn database.TxFunc) error
}

// TokenMetadata is the optional client context recorded with each token.
type TokenMetadata struct {
	DeviceID  *string
	UserAgent *string
	IPAddress *string
}

// Authority owns the refresh-token lifecycle: single active token per user,
// hash-only storage, rotation with a tamper-evident replacement chain.
type Authority struct {
	db     TxRunner
	tokens repository.RefreshTokenRepository
	ttl    time.Duration
}

func NewAuthority(db TxRunner, tokens repository.RefreshTokenRepository, ttl time.Duration) *Authority {
	return &Authority{db: db, tokens: tokens, ttl: ttl}
}

// Issue creates a fresh refresh token for the user and returns the raw secret
// once. All previously active tokens for the user are revoked in the same
// transaction, so a crash can never leave two active tokens.
func (a *Authority) Issue(ctx context.Context, userID string, meta TokenMetadata) (string, error) {
	rawToken, err := GenerateToken()
	if err != nil {
		return "", fmt.Errorf("generate refresh token: %w", err)
	}

	err = a.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		repo := a.tokens.WithTx(tx)

		revoked, err := repo.RevokeAllForUser(ctx, userID)
		if err != nil {
			return fmt.Errorf("revoke active tokens: %w", err)
		}
		if revoked > 0 {
			log.Info().Str("user_id", userID).Int64("count", revoked).Msg("revoked prior refresh tokens on new login")
		}

		_, err = repo.Create(ctx, model.CreateRefreshTokenParams{
			UserID:    userID,
			TokenHash: HashToken(rawToken),
			DeviceID:  meta.DeviceID,
			UserAgent: meta.UserAgent,
			IPAddress: meta.IPAddress,
			ExpiresAt: time.Now().Add(a.ttl),
		})
		if err != nil {
			return fmt.Errorf("create refresh token: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	return rawToken, nil
}

// Rotate verifies a presented raw secret and exchanges it for a successor.
// Each failure path is a distinct typed reason; none are retried. The insert
// of the successor and the revocation of the presented token commit together.
func (a *Authority) Rotate(ctx context.Context, rawToken string, meta TokenMetadata) (string, string, error) {
	token, err := a.tokens.FindByTokenHash(ctx, HashToken(rawToken))
	if err != nil {
		return "", "", apperrors.Database(err)
	}
	if token == nil {
		// Covers unknown and already-rotated-away secrets alike: rotation
		// stores a new hash, so the old one simply no longer matches.
		return "", "", apperrors.New(apperrors.ErrCodeRefreshTokenInvalid, "Refresh token not found")
	}

	if token.RevokedAt != nil {
		return "", "", apperrors.New(apperrors.ErrCodeRefreshTokenRevoked, "Refresh token revoked")
	}

	if !token.ExpiresAt.After(time.Now()) {
		if err := a.tokens.MarkRevoked(ctx, token.ID); err != nil {
			log.Error().Err(err).Str("token_id", token.ID).Msg("failed to lazily revoke expired refresh token")
		}
		return "", "", apperrors.New(apperrors.ErrCodeRefreshTokenExpired, "Refresh token expired")
	}

	// Device check only applies when both sides carry an identifier; an
	// absent identifier on either side is non-verifiable and passes.
	if token.DeviceID != nil && *token.DeviceID != "" &&
		meta.DeviceID != nil && *meta.DeviceID != "" &&
		*token.DeviceID != *meta.DeviceID {
		return "", "", apperrors.New(apperrors.ErrCodeDeviceMismatch, "Refresh token device mismatch")
	}

	newRawToken, err := GenerateToken()
	if err != nil {
		return "", "", fmt.Errorf("generate refresh token: %w", err)
	}

	err = a.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		repo := a.tokens.WithTx(tx)

		successor, err := repo.Create(ctx, model.CreateRefreshTokenParams{
			UserID:    token.UserID,
			TokenHash: HashToken(newRawToken),
			DeviceID:  coalesce(meta.DeviceID, token.DeviceID),
			UserAgent: coalesce(meta.UserAgent, token.UserAgent),
			IPAddress: coalesce(meta.IPAddress, token.IPAddress),
			ExpiresAt: time.Now().Add(a.ttl),
		})
		if err != nil {
			return fmt.Errorf("create successor token: %w", err)
		}

		replaced, err := repo.MarkReplaced(ctx, token.ID, successor.ID)
		if err != nil {
			return fmt.Errorf("mark token replaced: %w", err)
		}
		if replaced == 0 {
			// A concurrent rotation revoked the presented token between the
			// lookup and this transaction. Rolling back discards the successor;
			// exactly one rotation of a given secret can win.
			return apperrors.New(apperrors.ErrCodeRefreshTokenRevoked, "Refresh token revoked")
		}
		return nil
	})
	if err != nil {
		return "", "", err
	}

	return token.UserID, newRawToken, nil
}

// RevokeAll revokes every active token for the user (logout everywhere).
func (a *Authority) RevokeAll(ctx context.Context, userID string) error {
	_, err := a.tokens.RevokeAllForUser(ctx, userID)
	return err
}

func coalesce(preferred, fallback *string) *string {
	if preferred != nil && *preferred != "" {
		return preferred
	}
	return fallback
}
