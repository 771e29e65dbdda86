package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/pulsecoach/adjustment-engine/internal/core/domain"
)

type PostgresDecisionRepository struct {
	db *sqlx.DB
}

func NewPostgresDecisionRepository(db *sqlx.DB) *PostgresDecisionRepository {
	return &PostgresDecisionRepository{db: db}
}

func (r *PostgresDecisionRepository) Create(ctx context.Context, decision *domain.AdjustmentDecision) error {
	if decision.ID == "" {
		decision.ID = uuid.NewString()
	}

	query := `
		INSERT INTO adjustment_decisions (
			id, program_id, check_in_id, week,
			kcal_delta, volume_delta_pct, deload, habit_deltas,
			rationale_code, rationale_params, rationale_text,
			snapshot, created_at
		) VALUES (
			:id, :program_id, :check_in_id, :week,
			:kcal_delta, :volume_delta_pct, :deload, :habit_deltas,
			:rationale_code, :rationale_params, :rationale_text,
			:snapshot, :created_at
		)`

	_, err := r.db.NamedExecContext(ctx, query, decision)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Code == "23503" {
				return errors.New("referenced program or check-in does not exist")
			}
		}
		return err
	}
	return nil
}

func (r *PostgresDecisionRepository) GetByID(ctx context.Context, id string) (*domain.AdjustmentDecision, error) {
	var decision domain.AdjustmentDecision
	query := `SELECT * FROM adjustment_decisions WHERE id = $1`

	err := r.db.GetContext(ctx, &decision, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrDecisionNotFound
		}
		return nil, err
	}
	return &decision, nil
}

func (r *PostgresDecisionRepository) ListByProgramID(ctx context.Context, programID string, limit int) ([]*domain.AdjustmentDecision, error) {
	decisions := []*domain.AdjustmentDecision{}

	query := `
		SELECT * FROM adjustment_decisions
		WHERE program_id = $1
		ORDER BY week DESC
		LIMIT $2`

	err := r.db.SelectContext(ctx, &decisions, query, programID, limit)
	if err != nil {
		return nil, err
	}
	return decisions, nil
}

func (r *PostgresDecisionRepository) Latest(ctx context.Context, programID string) (*domain.AdjustmentDecision, error) {
	var decision domain.AdjustmentDecision
	query := `
		SELECT * FROM adjustment_decisions
		WHERE program_id = $1
		ORDER BY week DESC
		LIMIT 1`

	err := r.db.GetContext(ctx, &decision, query, programID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrDecisionNotFound
		}
		return nil, err
	}
	return &decision, nil
}
