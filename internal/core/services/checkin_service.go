package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/pulsecoach/adjustment-engine/internal/core/domain"
	"github.com/pulsecoach/adjustment-engine/internal/core/engine"
	"github.com/pulsecoach/adjustment-engine/internal/core/workers"
)

// CheckInService owns the weekly review flow: it persists the submitted
// check-in, assembles the engine input from stored history, runs the
// evaluation and stores the resulting decision. The engine itself never
// touches a repository.
type CheckInService struct {
	checkInRepo  domain.CheckInRepository
	decisionRepo domain.DecisionRepository
	programRepo  domain.ProgramRepository
	eng          *engine.Engine
	worker       *workers.ReviewWorker
}

func NewCheckInService(
	checkInRepo domain.CheckInRepository,
	decisionRepo domain.DecisionRepository,
	programRepo domain.ProgramRepository,
	eng *engine.Engine,
	worker *workers.ReviewWorker,
) *CheckInService {
	return &CheckInService{
		checkInRepo:  checkInRepo,
		decisionRepo: decisionRepo,
		programRepo:  programRepo,
		eng:          eng,
		worker:       worker,
	}
}

type SubmitCheckInInput struct {
	ProgramID string
	UserID    string
	Week      int

	WeightKg   float64
	BodyFatPct *float64
	Sleep      int
	Stress     int
	Energy     int
	Notes      string

	// Pre-aggregated ancillary data from the logging and device-sync
	// subsystems.
	DailyWeightsKg     []float64
	WorkoutAdherence   float64
	NutritionAdherence float64
	DailySteps         []int
	SessionRPEs        []float64
	VolumeIndex        float64
}

// Submit records the check-in and runs the weekly review synchronously,
// returning both the check-in and the decision it produced. Reviews for the
// same program are expected to arrive one at a time (one check-in per week);
// cross-program submissions are independent.
func (s *CheckInService) Submit(ctx context.Context, input SubmitCheckInInput) (*domain.CheckIn, *domain.AdjustmentDecision, error) {
	program, err := s.programRepo.GetByID(ctx, input.ProgramID)
	if err != nil {
		return nil, nil, err
	}
	if program.UserID != input.UserID {
		return nil, nil, domain.ErrUnauthorized
	}
	if program.Status != domain.ProgramStatusActive {
		return nil, nil, domain.ErrProgramCompleted
	}

	var previous *domain.CheckIn
	latest, err := s.checkInRepo.Latest(ctx, input.ProgramID)
	switch {
	case err == nil:
		if input.Week <= latest.Week {
			return nil, nil, domain.ErrCheckInWeekExists
		}
		previous = latest
	case errors.Is(err, domain.ErrCheckInNotFound):
		// First check-in of the program.
	default:
		return nil, nil, err
	}

	checkIn, err := domain.NewCheckIn(input.ProgramID, input.UserID, input.Week, input.WeightKg, input.Sleep, input.Stress, input.Energy)
	if err != nil {
		return nil, nil, err
	}
	checkIn.BodyFatPct = input.BodyFatPct
	checkIn.Notes = input.Notes

	if err := checkIn.Validate(); err != nil {
		return nil, nil, err
	}

	if err := s.checkInRepo.Create(ctx, checkIn); err != nil {
		return nil, nil, err
	}

	snapshot := engine.BuildSnapshot(domain.AggregateInput{
		Current:            checkIn,
		PreviousCheckIn:    previous,
		DailyWeightsKg:     input.DailyWeightsKg,
		WorkoutAdherence:   input.WorkoutAdherence,
		NutritionAdherence: input.NutritionAdherence,
		DailySteps:         input.DailySteps,
		SessionRPEs:        input.SessionRPEs,
		VolumeIndex:        input.VolumeIndex,
	}, log.Printf)

	history, err := s.recentSnapshots(ctx, input.ProgramID)
	if err != nil {
		return nil, nil, err
	}

	decision, err := s.eng.Evaluate(ctx, engine.Input{
		ProgramID:    program.ID,
		CheckInID:    checkIn.ID,
		Week:         checkIn.Week,
		Goal:         program.Goal,
		BaselineKcal: program.BaselineKcalTarget,
		CurrentKcal:  program.CurrentKcalTarget,
		StepTarget:   program.StepTarget,
		Snapshot:     snapshot,
		History:      history,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("check-in service: evaluation failed: %w", err)
	}

	if err := s.decisionRepo.Create(ctx, decision); err != nil {
		return nil, nil, err
	}

	s.applyDecision(ctx, program, decision)

	s.worker.Enqueue(program.ID)

	return checkIn, decision, nil
}

// applyDecision moves the program targets according to the stored decision.
// Failures here are logged, not returned: the decision is already the system
// of record, and target application can be retried by a later review.
func (s *CheckInService) applyDecision(ctx context.Context, program *domain.Program, decision *domain.AdjustmentDecision) {
	changed := false

	if decision.KcalDelta != 0 {
		if err := program.ApplyKcalDelta(decision.KcalDelta); err != nil {
			log.Printf("check-in service: could not apply kcal delta %d to program %s: %v", decision.KcalDelta, program.ID, err)
		} else {
			changed = true
		}
	}

	if delta, ok := decision.HabitDeltas[engine.HabitDailySteps]; ok && delta != 0 {
		if err := program.AdjustStepTarget(delta); err != nil {
			log.Printf("check-in service: could not apply step delta %d to program %s: %v", delta, program.ID, err)
		} else {
			changed = true
		}
	}

	if !changed {
		return
	}

	if err := s.programRepo.Update(ctx, program); err != nil {
		log.Printf("check-in service: failed to persist program targets for %s: %v", program.ID, err)
	}
}

// recentSnapshots loads the snapshots embedded on the last two decisions,
// most recent first. Fewer than two is normal for young programs.
func (s *CheckInService) recentSnapshots(ctx context.Context, programID string) ([]domain.MetricsSnapshot, error) {
	decisions, err := s.decisionRepo.ListByProgramID(ctx, programID, 2)
	if err != nil {
		return nil, err
	}

	snapshots := make([]domain.MetricsSnapshot, 0, len(decisions))
	for _, d := range decisions {
		snapshots = append(snapshots, d.Snapshot.MetricsSnapshot)
	}
	return snapshots, nil
}

func (s *CheckInService) GetByID(ctx context.Context, id, userID string) (*domain.CheckIn, error) {
	checkIn, err := s.checkInRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if checkIn.UserID != userID {
		return nil, domain.ErrUnauthorized
	}
	return checkIn, nil
}

func (s *CheckInService) ListByProgramID(ctx context.Context, programID, userID string, fromWeek, toWeek int) ([]*domain.CheckIn, error) {
	program, err := s.programRepo.GetByID(ctx, programID)
	if err != nil {
		return nil, err
	}
	if program.UserID != userID {
		return nil, domain.ErrUnauthorized
	}

	return s.checkInRepo.ListByProgramID(ctx, programID, fromWeek, toWeek)
}
