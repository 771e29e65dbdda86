package workers

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pulsecoach/adjustment-engine/internal/core/domain"
)

func TestReviewStreaks(t *testing.T) {
	dec := func(week int, code string) *domain.AdjustmentDecision {
		return &domain.AdjustmentDecision{Week: week, RationaleCode: code}
	}

	tests := []struct {
		name        string
		decisions   []*domain.AdjustmentDecision
		wantOnTrack int
		wantPlateau int
	}{
		{
			name:        "Empty history",
			decisions:   nil,
			wantOnTrack: 0,
			wantPlateau: 0,
		},
		{
			name: "All on track",
			decisions: []*domain.AdjustmentDecision{
				dec(3, domain.RationaleOnTrack),
				dec(2, domain.RationaleOnTrack),
				dec(1, domain.RationaleOnTrack),
			},
			wantOnTrack: 3,
			wantPlateau: 0,
		},
		{
			name: "Plateau streak after good start",
			decisions: []*domain.AdjustmentDecision{
				dec(4, domain.RationaleCalorieReduction),
				dec(3, domain.RationaleStepIncrease),
				dec(2, domain.RationaleOnTrack),
				dec(1, domain.RationaleOnTrack),
			},
			wantOnTrack: 0,
			wantPlateau: 2,
		},
		{
			name: "Deload breaks both streaks",
			decisions: []*domain.AdjustmentDecision{
				dec(3, domain.RationaleDeload),
				dec(2, domain.RationaleOnTrack),
				dec(1, domain.RationaleCalorieReduction),
			},
			wantOnTrack: 0,
			wantPlateau: 0,
		},
		{
			name: "On-track streak resumes after intervention",
			decisions: []*domain.AdjustmentDecision{
				dec(4, domain.RationaleOnTrack),
				dec(3, domain.RationaleCalorieReduction),
				dec(2, domain.RationaleOnTrack),
			},
			wantOnTrack: 1,
			wantPlateau: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			onTrack, plateau := reviewStreaks(tt.decisions)
			assert.Equal(t, tt.wantOnTrack, onTrack, "OnTrack mismatch")
			assert.Equal(t, tt.wantPlateau, plateau, "Plateau mismatch")
		})
	}
}

type stubProgramRepo struct {
	program  *domain.Program
	afterGet func()
}

func (s *stubProgramRepo) GetByID(ctx context.Context, id string) (*domain.Program, error) {
	clone := *s.program
	if s.afterGet != nil {
		s.afterGet()
	}
	return &clone, nil
}

func (s *stubProgramRepo) UpdateReviewStats(ctx context.Context, programID string, stats domain.ReviewStats) error {
	s.program.WeeksOnTrack = stats.WeeksOnTrack
	s.program.PlateauWeeks = stats.PlateauWeeks
	s.program.LastReviewedWeek = stats.LastReviewedWeek
	reviewedAt := stats.LastReviewedAt
	s.program.LastReviewedAt = &reviewedAt
	return nil
}

type stubDecisionRepo struct {
	decisions []*domain.AdjustmentDecision
}

func (s *stubDecisionRepo) ListByProgramID(ctx context.Context, programID string, limit int) ([]*domain.AdjustmentDecision, error) {
	return s.decisions, nil
}

func TestProcessJob_LeavesTargetsAlone(t *testing.T) {
	program := &domain.Program{
		ID:                 "program-1",
		Title:              "Cut",
		BaselineKcalTarget: 2200,
		CurrentKcalTarget:  2200,
	}

	programs := &stubProgramRepo{program: program}
	// A calorie cut lands on the request path while the worker holds a
	// stale copy of the program.
	programs.afterGet = func() {
		program.CurrentKcalTarget = 2000
	}

	now := time.Now().UTC()
	decisions := &stubDecisionRepo{decisions: []*domain.AdjustmentDecision{
		{Week: 3, RationaleCode: domain.RationaleCalorieReduction, CreatedAt: now},
		{Week: 2, RationaleCode: domain.RationaleOnTrack, CreatedAt: now},
	}}

	w := NewReviewWorker(programs, decisions)
	w.processJob(context.Background(), ReviewJob{ProgramID: "program-1"})

	assert.Equal(t, 2000, program.CurrentKcalTarget, "bookkeeping write must not revert the target")
	assert.Equal(t, 1, program.PlateauWeeks)
	assert.Equal(t, 0, program.WeeksOnTrack)
	assert.Equal(t, 3, program.LastReviewedWeek)
	require.NotNil(t, program.LastReviewedAt)
	assert.Equal(t, now, *program.LastReviewedAt)
}
