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

type PostgresCheckInRepository struct {
	db *sqlx.DB
}

func NewPostgresCheckInRepository(db *sqlx.DB) *PostgresCheckInRepository {
	return &PostgresCheckInRepository{db: db}
}

func (r *PostgresCheckInRepository) Create(ctx context.Context, checkIn *domain.CheckIn) error {
	if checkIn.ID == "" {
		checkIn.ID = uuid.NewString()
	}

	query := `
		INSERT INTO check_ins (
			id, program_id, user_id, week,
			weight_kg, body_fat_pct, sleep_quality, stress_level, energy_level, notes,
			created_at
		) VALUES (
			:id, :program_id, :user_id, :week,
			:weight_kg, :body_fat_pct, :sleep_quality, :stress_level, :energy_level, :notes,
			:created_at
		)`

	_, err := r.db.NamedExecContext(ctx, query, checkIn)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Code == "23503" {
				return errors.New("referenced program or user does not exist")
			}
			if pqErr.Code == "23505" {
				return domain.ErrCheckInWeekExists
			}
		}
		return err
	}
	return nil
}

func (r *PostgresCheckInRepository) GetByID(ctx context.Context, id string) (*domain.CheckIn, error) {
	var checkIn domain.CheckIn
	query := `SELECT * FROM check_ins WHERE id = $1`

	err := r.db.GetContext(ctx, &checkIn, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrCheckInNotFound
		}
		return nil, err
	}
	return &checkIn, nil
}

func (r *PostgresCheckInRepository) ListByProgramID(ctx context.Context, programID string, fromWeek, toWeek int) ([]*domain.CheckIn, error) {
	checkIns := []*domain.CheckIn{}

	query := `
		SELECT * FROM check_ins
		WHERE program_id = $1
		  AND week >= $2
		  AND week <= $3
		ORDER BY week DESC`

	err := r.db.SelectContext(ctx, &checkIns, query, programID, fromWeek, toWeek)
	if err != nil {
		return nil, err
	}
	return checkIns, nil
}

func (r *PostgresCheckInRepository) Latest(ctx context.Context, programID string) (*domain.CheckIn, error) {
	var checkIn domain.CheckIn
	query := `
		SELECT * FROM check_ins
		WHERE program_id = $1
		ORDER BY week DESC
		LIMIT 1`

	err := r.db.GetContext(ctx, &checkIn, query, programID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrCheckInNotFound
		}
		return nil, err
	}
	return &checkIn, nil
}
