package services

import (
	"context"

	"github.com/pulsecoach/adjustment-engine/internal/core/domain"
)

type DecisionService struct {
	decisionRepo domain.DecisionRepository
	programRepo  domain.ProgramRepository
}

func NewDecisionService(decisionRepo domain.DecisionRepository, programRepo domain.ProgramRepository) *DecisionService {
	return &DecisionService{
		decisionRepo: decisionRepo,
		programRepo:  programRepo,
	}
}

func (s *DecisionService) ListByProgramID(ctx context.Context, programID, userID string, limit int) ([]*domain.AdjustmentDecision, error) {
	if err := s.authorize(ctx, programID, userID); err != nil {
		return nil, err
	}
	return s.decisionRepo.ListByProgramID(ctx, programID, limit)
}

func (s *DecisionService) Latest(ctx context.Context, programID, userID string) (*domain.AdjustmentDecision, error) {
	if err := s.authorize(ctx, programID, userID); err != nil {
		return nil, err
	}
	return s.decisionRepo.Latest(ctx, programID)
}

func (s *DecisionService) authorize(ctx context.Context, programID, userID string) error {
	program, err := s.programRepo.GetByID(ctx, programID)
	if err != nil {
		return err
	}
	if program.UserID != userID {
		return domain.ErrUnauthorized
	}
	return nil
}
