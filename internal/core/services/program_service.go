package services

import (
	"context"
	"fmt"

	"github.com/pulsecoach/adjustment-engine/internal/core/domain"
	"github.com/pulsecoach/adjustment-engine/internal/core/engine"
)

type ProgramService struct {
	repo domain.ProgramRepository
}

func NewProgramService(repo domain.ProgramRepository) *ProgramService {
	return &ProgramService{repo: repo}
}

type CreateProgramInput struct {
	UserID string
	Title  string
	Goal   domain.Goal

	// Health profile for the kcal baseline derivation. Ignored when
	// KcalTarget is set explicitly.
	Age           int
	WeightKg      float64
	HeightCm      float64
	Sex           string
	ActivityLevel string

	// KcalTarget overrides the derived baseline when positive.
	KcalTarget int
	StepTarget int
}

func (s *ProgramService) Create(ctx context.Context, input CreateProgramInput) (*domain.Program, error) {
	if err := input.Goal.Validate(); err != nil {
		return nil, err
	}

	profile := engine.Profile{
		Age:           input.Age,
		WeightKg:      input.WeightKg,
		HeightCm:      input.HeightCm,
		Sex:           input.Sex,
		ActivityLevel: input.ActivityLevel,
		GoalType:      input.Goal.Type,
	}

	kcal := input.KcalTarget
	if kcal <= 0 {
		res, err := engine.CalculateTDEE(profile)
		if err != nil {
			return nil, fmt.Errorf("program service: cannot derive kcal baseline: %w", err)
		}
		kcal = res.TargetKcal
	}

	macros := engine.PlanMacros(profile, kcal)

	program, err := domain.NewProgram(input.UserID, input.Title, input.Goal, kcal, input.StepTarget, macros)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, program); err != nil {
		return nil, fmt.Errorf("program service: failed to create program: %w", err)
	}

	return program, nil
}

func (s *ProgramService) GetByID(ctx context.Context, id, userID string) (*domain.Program, error) {
	program, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if program.UserID != userID {
		return nil, domain.ErrUnauthorized
	}
	return program, nil
}

func (s *ProgramService) ListByUserID(ctx context.Context, userID string) ([]*domain.Program, error) {
	return s.repo.ListByUserID(ctx, userID)
}

func (s *ProgramService) Complete(ctx context.Context, id, userID string) (*domain.Program, error) {
	program, err := s.GetByID(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	program.Complete()

	if err := s.repo.Update(ctx, program); err != nil {
		return nil, fmt.Errorf("program service: failed to complete program: %w", err)
	}
	return program, nil
}

func (s *ProgramService) Delete(ctx context.Context, id, userID string) error {
	program, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if program.UserID != userID {
		return domain.ErrUnauthorized
	}
	return s.repo.Delete(ctx, id)
}
