package repository

import (
	"context"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/heka-app/heka-server-go/internal/database"
	"github.com/heka-app/heka-server-go/internal/model"
)

// ErrDuplicatePerspective is returned when a user has already submitted a
// perspective for the argument; backed by the unique index on
// (argument_id, user_id).
var ErrDuplicatePerspective = errors.New("perspective already submitted for this argument")

type PerspectiveRepository interface {
	ListByArgumentID(ctx context.Context, argumentID string) ([]model.Perspective, error)
	CountByArgumentID(ctx context.Context, argumentID string) (int, error)
	Create(ctx context.Context, params model.CreatePerspectiveParams) (*model.Perspective, error)
	WithTx(tx *sqlx.Tx) PerspectiveRepository
}

type perspectiveRepo struct {
	db database.DBTX
}

func NewPerspectiveRepository(db *sqlx.DB) PerspectiveRepository {
	return &perspectiveRepo{db: db}
}

func (r *perspectiveRepo) WithTx(tx *sqlx.Tx) PerspectiveRepository {
	return &perspectiveRepo{db: tx}
}

func (r *perspectiveRepo) ListByArgumentID(ctx context.Context, argumentID string) ([]model.Perspective, error) {
	perspectives := []model.Perspective{}
	err := r.db.SelectContext(ctx, &perspectives, `
		SELECT * FROM perspectives
		WHERE argument_id = $1
		ORDER BY created_at ASC
	`, argumentID)
	if err != nil {
		return nil, err
	}
	return perspectives, nil
}

func (r *perspectiveRepo) CountByArgumentID(ctx context.Context, argumentID string) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `
		SELECT COUNT(*) FROM perspectives WHERE argument_id = $1
	`, argumentID)
	return count, err
}

func (r *perspectiveRepo) Create(ctx context.Context, params model.CreatePerspectiveParams) (*model.Perspective, error) {
	var perspective model.Perspective
	err := r.db.GetContext(ctx, &perspective, `
		INSERT INTO perspectives (argument_id, user_id, content)
		VALUES ($1, $2, $3)
		RETURNING *
	`, params.ArgumentID, params.UserID, params.Content)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return nil, ErrDuplicatePerspective
		}
		return nil, err
	}
	return &perspective, nil
}
