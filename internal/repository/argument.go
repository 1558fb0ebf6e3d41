package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/heka-app/heka-server-go/internal/database"
	"github.com/heka-app/heka-server-go/internal/model"
)

type ArgumentRepository interface {
	FindByID(ctx context.Context, id string) (*model.Argument, error)
	ListByCoupleID(ctx context.Context, coupleID string) ([]model.Argument, error)
	Create(ctx context.Context, params model.CreateArgumentParams) (*model.Argument, error)
	UpdateStatus(ctx context.Context, id string, status model.ArgumentStatus) error
	WithTx(tx *sqlx.Tx) ArgumentRepository
}

type argumentRepo struct {
	db database.DBTX
}

func NewArgumentRepository(db *sqlx.DB) ArgumentRepository {
	return &argumentRepo{db: db}
}

func (r *argumentRepo) WithTx(tx *sqlx.Tx) ArgumentRepository {
	return &argumentRepo{db: tx}
}

func (r *argumentRepo) FindByID(ctx context.Context, id string) (*model.Argument, error) {
	var argument model.Argument
	err := r.db.GetContext(ctx, &argument, `
		SELECT * FROM arguments WHERE id = $1
	`, id)
	return HandleNotFound(&argument, err)
}

func (r *argumentRepo) ListByCoupleID(ctx context.Context, coupleID string) ([]model.Argument, error) {
	arguments := []model.Argument{}
	err := r.db.SelectContext(ctx, &arguments, `
		SELECT * FROM arguments
		WHERE couple_id = $1
		ORDER BY created_at DESC
	`, coupleID)
	if err != nil {
		return nil, err
	}
	return arguments, nil
}

func (r *argumentRepo) Create(ctx context.Context, params model.CreateArgumentParams) (*model.Argument, error) {
	var argument model.Argument
	err := r.db.GetContext(ctx, &argument, `
		INSERT INTO arguments (couple_id, title, category, priority, status)
		VALUES ($1, $2, $3, $4, 'draft')
		RETURNING *
	`, params.CoupleID, params.Title, params.Category, params.Priority)
	if err != nil {
		return nil, err
	}
	return &argument, nil
}

func (r *argumentRepo) UpdateStatus(ctx context.Context, id string, status model.ArgumentStatus) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE arguments SET status = $2, updated_at = $3 WHERE id = $1
	`, id, status, time.Now())
	return err
}
