package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pulsecoach/adjustment-engine/internal/core/domain"
	"github.com/pulsecoach/adjustment-engine/internal/core/services"
)

func TestDecisionService(t *testing.T) {
	ctx := context.Background()

	programs := newFakeProgramRepo()
	decisions := newFakeDecisionRepo()
	svc := services.NewDecisionService(decisions, programs)

	program, err := domain.NewProgram("user-1", "Cut",
		domain.Goal{Type: domain.GoalWeightLoss, TargetRateKgPerWeek: -0.3},
		2000, 8000, domain.MacroTargets{})
	require.NoError(t, err)
	require.NoError(t, programs.Create(ctx, program))

	for week := 1; week <= 3; week++ {
		require.NoError(t, decisions.Create(ctx, &domain.AdjustmentDecision{
			ProgramID:     program.ID,
			Week:          week,
			RationaleCode: domain.RationaleOnTrack,
		}))
	}

	t.Run("ListByProgramID returns newest first with limit", func(t *testing.T) {
		list, err := svc.ListByProgramID(ctx, program.ID, "user-1", 2)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, 3, list[0].Week)
		assert.Equal(t, 2, list[1].Week)
	})

	t.Run("Latest returns the newest decision", func(t *testing.T) {
		latest, err := svc.Latest(ctx, program.ID, "user-1")
		require.NoError(t, err)
		assert.Equal(t, 3, latest.Week)
	})

	t.Run("Rejects foreign user", func(t *testing.T) {
		_, err := svc.ListByProgramID(ctx, program.ID, "intruder", 0)
		assert.ErrorIs(t, err, domain.ErrUnauthorized)

		_, err = svc.Latest(ctx, program.ID, "intruder")
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	})

	t.Run("Unknown program", func(t *testing.T) {
		_, err := svc.Latest(ctx, "missing", "user-1")
		assert.ErrorIs(t, err, domain.ErrProgramNotFound)
	})
}
