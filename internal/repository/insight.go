package repository

import (
	"context"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/heka-app/heka-server-go/internal/database"
	"github.com/heka-app/heka-server-go/internal/model"
)

// ErrDuplicateInsight is returned when an insight already exists for the
// argument. The unique index on argument_id is the backstop for concurrent
// analyze requests that both pass the pre-check; exactly one insert wins.
var ErrDuplicateInsight = errors.New("insight already exists for this argument")

type InsightRepository interface {
	FindByArgumentID(ctx context.Context, argumentID string) (*model.AIInsight, error)
	Create(ctx context.Context, params model.CreateInsightParams) (*model.AIInsight, error)
	WithTx(tx *sqlx.Tx) InsightRepository
}

type insightRepo struct {
	db database.DBTX
}

func NewInsightRepository(db *sqlx.DB) InsightRepository {
	return &insightRepo{db: db}
}

func (r *insightRepo) WithTx(tx *sqlx.Tx) InsightRepository {
	return &insightRepo{db: tx}
}

func (r *insightRepo) FindByArgumentID(ctx context.Context, argumentID string) (*model.AIInsight, error) {
	var insight model.AIInsight
	err := r.db.GetContext(ctx, &insight, `
		SELECT * FROM ai_insights WHERE argument_id = $1
	`, argumentID)
	return HandleNotFound(&insight, err)
}

// Create inserts the one insight row for an argument. There is no update
// path: insights are immutable once written.
func (r *insightRepo) Create(ctx context.Context, params model.CreateInsightParams) (*model.AIInsight, error) {
	var insight model.AIInsight
	err := r.db.GetContext(ctx, &insight, `
		INSERT INTO ai_insights (
			argument_id, summary, common_ground, disagreements, root_causes,
			suggestions, communication_tips, full_response, model_used,
			cost, input_tokens, output_tokens
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING *
	`,
		params.ArgumentID, params.Summary, params.CommonGround, params.Disagreements,
		params.RootCauses, params.Suggestions, params.CommunicationTips,
		[]byte(params.FullResponse), params.ModelUsed,
		params.Cost, params.InputTokens, params.OutputTokens,
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return nil, ErrDuplicateInsight
		}
		return nil, err
	}
	return &insight, nil
}
