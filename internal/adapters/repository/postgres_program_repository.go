package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/pulsecoach/adjustment-engine/internal/core/domain"

	_ "github.com/jackc/pgx/v5/stdlib"
)

type PostgresProgramRepository struct {
	db *sqlx.DB
}

func NewPostgresProgramRepository(db *sqlx.DB) *PostgresProgramRepository {
	return &PostgresProgramRepository{db: db}
}

type scannable interface {
	Scan(dest ...interface{}) error
}

func (r *PostgresProgramRepository) scanRow(row scannable) (*domain.Program, error) {
	var p domain.Program

	err := row.Scan(
		&p.ID, &p.UserID, &p.Title, &p.Status,
		&p.Goal, &p.Macros,
		&p.BaselineKcalTarget, &p.CurrentKcalTarget, &p.StepTarget,
		&p.WeeksOnTrack, &p.PlateauWeeks, &p.LastReviewedWeek, &p.LastReviewedAt,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &p, nil
}

const programColumns = `
    id, user_id, title, status,
    goal, macros,
    baseline_kcal_target, current_kcal_target, step_target,
    weeks_on_track, plateau_weeks, last_reviewed_week, last_reviewed_at,
    created_at, updated_at`

func (r *PostgresProgramRepository) Create(ctx context.Context, p *domain.Program) error {
	query := `
        INSERT INTO programs (
            id, user_id, title, status,
            goal, macros,
            baseline_kcal_target, current_kcal_target, step_target,
            weeks_on_track, plateau_weeks, last_reviewed_week, last_reviewed_at,
            created_at, updated_at
        ) VALUES (
            $1, $2, $3, $4,
            $5, $6,
            $7, $8, $9,
            $10, $11, $12, $13,
            $14, $15
        )`

	_, err := r.db.ExecContext(ctx, query,
		p.ID, p.UserID, p.Title, p.Status,
		p.Goal, p.Macros,
		p.BaselineKcalTarget, p.CurrentKcalTarget, p.StepTarget,
		p.WeeksOnTrack, p.PlateauWeeks, p.LastReviewedWeek, p.LastReviewedAt,
		p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert program: %w", err)
	}

	return nil
}

func (r *PostgresProgramRepository) GetByID(ctx context.Context, id string) (*domain.Program, error) {
	query := `SELECT` + programColumns + ` FROM programs WHERE id = $1`

	row := r.db.QueryRowContext(ctx, query, id)

	p, err := r.scanRow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrProgramNotFound
		}
		return nil, fmt.Errorf("database scan error: %w", err)
	}

	return p, nil
}

func (r *PostgresProgramRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.Program, error) {
	query := `SELECT` + programColumns + ` FROM programs WHERE user_id = $1 ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("query error: %w", err)
	}
	defer rows.Close()

	var programs []*domain.Program

	for rows.Next() {
		p, err := r.scanRow(rows)
		if err != nil {
			return nil, fmt.Errorf("row scan error: %w", err)
		}
		programs = append(programs, p)
	}

	return programs, nil
}

func (r *PostgresProgramRepository) Update(ctx context.Context, p *domain.Program) error {
	query := `
        UPDATE programs SET
            title=$1, status=$2, goal=$3, macros=$4,
            current_kcal_target=$5, step_target=$6,
            weeks_on_track=$7, plateau_weeks=$8,
            last_reviewed_week=$9, last_reviewed_at=$10,
            updated_at=NOW()
        WHERE id=$11
        RETURNING updated_at`

	row := r.db.QueryRowContext(ctx, query,
		p.Title, p.Status, p.Goal, p.Macros,
		p.CurrentKcalTarget, p.StepTarget,
		p.WeeksOnTrack, p.PlateauWeeks,
		p.LastReviewedWeek, p.LastReviewedAt,
		p.ID,
	)

	if err := row.Scan(&p.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrProgramNotFound
		}
		return fmt.Errorf("update query failed: %w", err)
	}

	return nil
}

func (r *PostgresProgramRepository) UpdateReviewStats(ctx context.Context, programID string, stats domain.ReviewStats) error {
	query := `
        UPDATE programs SET
            weeks_on_track=$1, plateau_weeks=$2,
            last_reviewed_week=$3, last_reviewed_at=$4,
            updated_at=NOW()
        WHERE id=$5`

	result, err := r.db.ExecContext(ctx, query,
		stats.WeeksOnTrack, stats.PlateauWeeks,
		stats.LastReviewedWeek, stats.LastReviewedAt,
		programID,
	)
	if err != nil {
		return fmt.Errorf("update review stats query failed: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("could not read affected rows: %w", err)
	}
	if rows == 0 {
		return domain.ErrProgramNotFound
	}

	return nil
}

func (r *PostgresProgramRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM programs WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete query failed: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrProgramNotFound
	}

	return nil
}
