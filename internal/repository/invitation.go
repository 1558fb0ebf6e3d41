package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/heka-app/heka-server-go/internal/database"
	"github.com/heka-app/heka-server-go/internal/model"
)

type InvitationRepository interface {
	FindActiveByCode(ctx context.Context, code string) (*model.Invitation, error)
	Create(ctx context.Context, params model.CreateInvitationParams) (*model.Invitation, error)
	MarkUsed(ctx context.Context, id string) error
	DeleteExpired(ctx context.Context) (int64, error)
	WithTx(tx *sqlx.Tx) InvitationRepository
}

type invitationRepo struct {
	db database.DBTX
}

func NewInvitationRepository(db *sqlx.DB) InvitationRepository {
	return &invitationRepo{db: db}
}

func (r *invitationRepo) WithTx(tx *sqlx.Tx) InvitationRepository {
	return &invitationRepo{db: tx}
}

func (r *invitationRepo) FindActiveByCode(ctx context.Context, code string) (*model.Invitation, error) {
	var invitation model.Invitation
	err := r.db.GetContext(ctx, &invitation, `
		SELECT * FROM invitations
		WHERE code = $1
		AND used_at IS NULL
		AND expires_at > NOW()
	`, code)
	return HandleNotFound(&invitation, err)
}

func (r *invitationRepo) Create(ctx context.Context, params model.CreateInvitationParams) (*model.Invitation, error) {
	var invitation model.Invitation
	err := r.db.GetContext(ctx, &invitation, `
		INSERT INTO invitations (couple_id, code, created_by, expires_at)
		VALUES ($1, $2, $3, $4)
		RETURNING *
	`, params.CoupleID, params.Code, params.CreatedBy, params.ExpiresAt)
	if err != nil {
		return nil, err
	}
	return &invitation, nil
}

func (r *invitationRepo) MarkUsed(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE invitations SET used_at = $2 WHERE id = $1 AND used_at IS NULL
	`, id, time.Now())
	return err
}

func (r *invitationRepo) DeleteExpired(ctx context.Context) (int64, error) {
	result, err := r.db.ExecContext(ctx, `
		DELETE FROM invitations
		WHERE expires_at < NOW() OR used_at IS NOT NULL
	`)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
