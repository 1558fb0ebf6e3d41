package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/heka-app/heka-server-go/internal/database"
	"github.com/heka-app/heka-server-go/internal/model"
)

type CoupleRepository interface {
	FindByID(ctx context.Context, id string) (*model.Couple, error)
	FindActiveByUserID(ctx context.Context, userID string) (*model.Couple, error)
	Create(ctx context.Context, user1ID string) (*model.Couple, error)
	Complete(ctx context.Context, id string, user2ID string) error
	WithTx(tx *sqlx.Tx) CoupleRepository
}

type coupleRepo struct {
	db database.DBTX
}

func NewCoupleRepository(db *sqlx.DB) CoupleRepository {
	return &coupleRepo{db: db}
}

func (r *coupleRepo) WithTx(tx *sqlx.Tx) CoupleRepository {
	return &coupleRepo{db: tx}
}

func (r *coupleRepo) FindByID(ctx context.Context, id string) (*model.Couple, error) {
	var couple model.Couple
	err := r.db.GetContext(ctx, &couple, `
		SELECT * FROM couples WHERE id = $1
	`, id)
	return HandleNotFound(&couple, err)
}

func (r *coupleRepo) FindActiveByUserID(ctx context.Context, userID string) (*model.Couple, error) {
	var couple model.Couple
	err := r.db.GetContext(ctx, &couple, `
		SELECT * FROM couples
		WHERE (user1_id = $1 OR user2_id = $1)
		AND status IN ('pending', 'active')
	`, userID)
	return HandleNotFound(&couple, err)
}

func (r *coupleRepo) Create(ctx context.Context, user1ID string) (*model.Couple, error) {
	var couple model.Couple
	err := r.db.GetContext(ctx, &couple, `
		INSERT INTO couples (user1_id, status)
		VALUES ($1, 'pending')
		RETURNING *
	`, user1ID)
	if err != nil {
		return nil, err
	}
	return &couple, nil
}

func (r *coupleRepo) Complete(ctx context.Context, id string, user2ID string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE couples SET
			user2_id = $2,
			status = 'active',
			updated_at = $3
		WHERE id = $1 AND status = 'pending'
	`, id, user2ID, time.Now())
	return err
}
