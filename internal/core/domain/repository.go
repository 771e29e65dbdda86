package domain

import (
	"context"
	"errors"
)

var (
	ErrUnauthorized     = errors.New("unauthorized access")
	ErrProgramNotFound  = errors.New("program not found")
	ErrCheckInNotFound  = errors.New("check-in not found")
	ErrDecisionNotFound = errors.New("decision not found")
)

type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
}

type ProgramRepository interface {
	// Create persists a new program definition.
	Create(ctx context.Context, program *Program) error

	// GetByID retrieves a program by its unique identifier.
	GetByID(ctx context.Context, id string) (*Program, error)

	// ListByUserID retrieves all programs owned by a user.
	ListByUserID(ctx context.Context, userID string) ([]*Program, error)

	// Update modifies the state of an existing program, including kcal and
	// step targets and the review bookkeeping fields.
	Update(ctx context.Context, program *Program) error

	// UpdateReviewStats persists only the review bookkeeping columns, so a
	// background write cannot clobber a target change made on the request
	// path.
	UpdateReviewStats(ctx context.Context, programID string, stats ReviewStats) error

	// Delete permanently removes a program.
	Delete(ctx context.Context, id string) error
}

type CheckInRepository interface {
	// Create persists a new check-in. Check-ins are immutable so there is
	// no Update. Implementations must reject a duplicate (program, week)
	// pair with ErrCheckInWeekExists.
	Create(ctx context.Context, checkIn *CheckIn) error

	// GetByID retrieves a single check-in.
	GetByID(ctx context.Context, id string) (*CheckIn, error)

	// ListByProgramID retrieves check-ins for a program ordered by week
	// ascending, optionally bounded to [fromWeek, toWeek] when toWeek > 0.
	ListByProgramID(ctx context.Context, programID string, fromWeek, toWeek int) ([]*CheckIn, error)

	// Latest returns the most recent check-in for a program, or
	// ErrCheckInNotFound when none exist.
	Latest(ctx context.Context, programID string) (*CheckIn, error)
}

type DecisionRepository interface {
	// Create persists a new adjustment decision. Decisions are append-only.
	Create(ctx context.Context, decision *AdjustmentDecision) error

	// GetByID retrieves a single decision.
	GetByID(ctx context.Context, id string) (*AdjustmentDecision, error)

	// ListByProgramID retrieves decisions for a program ordered by week
	// descending, at most limit rows when limit > 0.
	ListByProgramID(ctx context.Context, programID string, limit int) ([]*AdjustmentDecision, error)

	// Latest returns the most recent decision for a program, or
	// ErrDecisionNotFound when none exist.
	Latest(ctx context.Context, programID string) (*AdjustmentDecision, error)
}
