package repository

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pulsecoach/adjustment-engine/internal/core/domain"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func testDSN() string {
	dbUser := os.Getenv("DB_USER")
	if dbUser == "" {
		dbUser = "pulsecoach_user"
	}
	dbPass := os.Getenv("DB_PASSWORD")
	if dbPass == "" {
		dbPass = "secret"
	}
	dbHost := os.Getenv("DB_HOST")
	if dbHost == "" {
		dbHost = "localhost"
	}
	dbPort := os.Getenv("DB_PORT")
	if dbPort == "" {
		dbPort = "5432"
	}
	dbName := os.Getenv("DB_NAME")
	if dbName == "" {
		dbName = "pulsecoach_db"
	}

	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		dbUser, dbPass, dbHost, dbPort, dbName)
}

func setupTestDB(t *testing.T) *sqlx.DB {
	db, err := sqlx.Connect("pgx", testDSN())
	if err != nil {
		t.Skipf("Skipping integration tests: database connection failed: %v", err)
	}
	return db
}

func cleanup(t *testing.T, db *sqlx.DB) {
	_, err := db.Exec("TRUNCATE TABLE adjustment_decisions, check_ins, programs, users CASCADE")
	require.NoError(t, err, "Failed to clean up database")
}

func createUserFixture(t *testing.T, db *sqlx.DB, id string) {
	_, err := db.Exec(`INSERT INTO users (id, email, name, password_hash, created_at, updated_at)
        VALUES ($1, $2, 'Test User', 'hash', NOW(), NOW())`,
		id, fmt.Sprintf("%s@pulsecoach.app", id))
	require.NoError(t, err, "Failed to create user fixture")
}

func programFixture(t *testing.T, userID string) *domain.Program {
	goal := domain.Goal{
		Type:                domain.GoalWeightLoss,
		TargetRateKgPerWeek: -0.5,
	}
	macros := domain.MacroTargets{ProteinG: 160, CarbsG: 180, FatG: 60}

	p, err := domain.NewProgram(userID, "Summer Cut", goal, 2200, 8000, macros)
	require.NoError(t, err)
	return p
}

func TestPostgresProgramRepository_Integration(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	cleanup(t, db)
	defer cleanup(t, db)

	repo := NewPostgresProgramRepository(db)
	ctx := context.Background()

	userID := uuid.NewString()
	createUserFixture(t, db, userID)

	program := programFixture(t, userID)

	t.Run("Create and GetByID", func(t *testing.T) {
		err := repo.Create(ctx, program)
		require.NoError(t, err)

		fetched, err := repo.GetByID(ctx, program.ID)
		require.NoError(t, err)

		assert.Equal(t, program.Title, fetched.Title)
		assert.Equal(t, domain.GoalWeightLoss, fetched.Goal.Type)
		assert.InDelta(t, -0.5, fetched.Goal.TargetRateKgPerWeek, 0.0001)
		assert.Equal(t, 2200, fetched.BaselineKcalTarget)
		assert.Equal(t, 2200, fetched.CurrentKcalTarget)
		assert.Equal(t, 8000, fetched.StepTarget)
		assert.InDelta(t, 160, fetched.Macros.ProteinG, 0.01)
	})

	t.Run("Update persists kcal and review state", func(t *testing.T) {
		program.ApplyKcalDelta(-200)
		program.WeeksOnTrack = 3
		program.LastReviewedWeek = 5
		now := time.Now().UTC()
		program.LastReviewedAt = &now

		err := repo.Update(ctx, program)
		require.NoError(t, err)

		fetched, err := repo.GetByID(ctx, program.ID)
		require.NoError(t, err)
		assert.Equal(t, 2000, fetched.CurrentKcalTarget)
		assert.Equal(t, 3, fetched.WeeksOnTrack)
		assert.Equal(t, 5, fetched.LastReviewedWeek)
		require.NotNil(t, fetched.LastReviewedAt)
	})

	t.Run("ListByUserID returns newest first", func(t *testing.T) {
		second := programFixture(t, userID)
		second.Title = "Maintenance Block"
		second.CreatedAt = second.CreatedAt.Add(time.Second)

		require.NoError(t, repo.Create(ctx, second))

		programs, err := repo.ListByUserID(ctx, userID)
		require.NoError(t, err)
		require.Len(t, programs, 2)
		assert.Equal(t, "Maintenance Block", programs[0].Title)
	})

	t.Run("GetByID unknown id", func(t *testing.T) {
		_, err := repo.GetByID(ctx, uuid.NewString())
		assert.ErrorIs(t, err, domain.ErrProgramNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, program.ID))

		_, err := repo.GetByID(ctx, program.ID)
		assert.ErrorIs(t, err, domain.ErrProgramNotFound)

		err = repo.Delete(ctx, program.ID)
		assert.ErrorIs(t, err, domain.ErrProgramNotFound)
	})
}
