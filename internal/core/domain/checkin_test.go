package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pulsecoach/adjustment-engine/internal/core/domain"
)

func TestNewCheckIn(t *testing.T) {
	t.Run("Success: clamps out-of-band scores", func(t *testing.T) {
		ci, err := domain.NewCheckIn("p1", "u1", 3, 81.5, 15, 0, 7)
		require.NoError(t, err)

		assert.Equal(t, 10, ci.SleepQuality)
		assert.Equal(t, 1, ci.StressLevel)
		assert.Equal(t, 7, ci.EnergyLevel)
		assert.Equal(t, 3, ci.Week)
	})

	t.Run("Fail: missing program id", func(t *testing.T) {
		_, err := domain.NewCheckIn("  ", "u1", 1, 81.5, 7, 4, 6)
		assert.ErrorIs(t, err, domain.ErrCheckInMissingProgram)
	})

	t.Run("Fail: non-positive week", func(t *testing.T) {
		_, err := domain.NewCheckIn("p1", "u1", 0, 81.5, 7, 4, 6)
		assert.ErrorIs(t, err, domain.ErrCheckInInvalidWeek)
	})

	t.Run("Fail: non-positive weight", func(t *testing.T) {
		_, err := domain.NewCheckIn("p1", "u1", 1, 0, 7, 4, 6)
		assert.ErrorIs(t, err, domain.ErrCheckInInvalidWeight)
	})
}

func TestClampHelpers(t *testing.T) {
	assert.Equal(t, 1, domain.ClampScore(-3))
	assert.Equal(t, 10, domain.ClampScore(42))
	assert.Equal(t, 6, domain.ClampScore(6))

	assert.Equal(t, 0.0, domain.ClampRatio(-0.1))
	assert.Equal(t, 1.0, domain.ClampRatio(1.7))
	assert.Equal(t, 0.83, domain.ClampRatio(0.83))
}
