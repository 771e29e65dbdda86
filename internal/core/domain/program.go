package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrProgramTitleEmpty    = errors.New("program title cannot be empty")
	ErrProgramTitleTooLong  = errors.New("program title is too long (max 100 chars)")
	ErrProgramInvalidUserID = errors.New("invalid user id")
	ErrInvalidGoalType      = errors.New("invalid goal type (must be weight_loss, muscle_gain, or maintenance)")
	ErrInvalidTargetRate    = errors.New("target rate must be negative for weight loss and positive for muscle gain")
	ErrInvalidKcalTarget    = errors.New("kcal target must be positive")
	ErrInvalidStepTarget    = errors.New("step target cannot be negative")
	ErrProgramCompleted     = errors.New("cannot update a completed program")
)

const (
	GoalWeightLoss  = "weight_loss"
	GoalMuscleGain  = "muscle_gain"
	GoalMaintenance = "maintenance"

	ProgramStatusActive    = "active"
	ProgramStatusCompleted = "completed"

	DefaultStepTarget = 8000

	MaxProgramTitleLen = 100
)

// Goal is the tagged goal configuration for a program. Fields other than
// Type are meaningful only for the goal type they belong to: weight-loss
// programs carry a negative TargetRateKgPerWeek, muscle-gain programs a
// positive one, maintenance programs neither.
type Goal struct {
	Type                string     `json:"type"`
	TargetRateKgPerWeek float64    `json:"target_rate_kg_per_week,omitempty"`
	TargetDate          *time.Time `json:"target_date,omitempty"`
}

func (g Goal) Validate() error {
	switch g.Type {
	case GoalWeightLoss:
		if g.TargetRateKgPerWeek >= 0 {
			return ErrInvalidTargetRate
		}
	case GoalMuscleGain:
		if g.TargetRateKgPerWeek <= 0 {
			return ErrInvalidTargetRate
		}
	case GoalMaintenance:
	default:
		return ErrInvalidGoalType
	}
	return nil
}

// MacroTargets is the daily macro breakdown attached to a program at
// creation time. Weekly reviews adjust CurrentKcalTarget on the program,
// not the macro split.
type MacroTargets struct {
	ProteinG int `json:"protein_g"`
	CarbsG   int `json:"carbs_g"`
	FatG     int `json:"fat_g"`
}

type Program struct {
	ID     string `json:"id" db:"id"`
	UserID string `json:"user_id" db:"user_id"`
	Title  string `json:"title" db:"title"`
	Status string `json:"status" db:"status"`

	Goal   Goal         `json:"goal" db:"goal"`
	Macros MacroTargets `json:"macros" db:"macros"`

	// BaselineKcalTarget anchors the safety band; CurrentKcalTarget moves
	// with each accepted calorie adjustment.
	BaselineKcalTarget int `json:"baseline_kcal_target" db:"baseline_kcal_target"`
	CurrentKcalTarget  int `json:"current_kcal_target" db:"current_kcal_target"`
	StepTarget         int `json:"step_target" db:"step_target"`

	// Review bookkeeping, maintained by the review worker after every
	// decision. Not part of any rule input.
	WeeksOnTrack      int        `json:"weeks_on_track" db:"weeks_on_track"`
	PlateauWeeks      int        `json:"plateau_weeks" db:"plateau_weeks"`
	LastReviewedWeek  int        `json:"last_reviewed_week" db:"last_reviewed_week"`
	LastReviewedAt    *time.Time `json:"last_reviewed_at,omitempty" db:"last_reviewed_at"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// ReviewStats carries the review bookkeeping fields the worker writes back
// after each decision.
type ReviewStats struct {
	WeeksOnTrack     int
	PlateauWeeks     int
	LastReviewedWeek int
	LastReviewedAt   time.Time
}

func NewProgram(userID, title string, goal Goal, baselineKcal, stepTarget int, macros MacroTargets) (*Program, error) {
	if userID == "" {
		return nil, ErrProgramInvalidUserID
	}

	trimmedTitle := strings.TrimSpace(title)
	if trimmedTitle == "" {
		return nil, ErrProgramTitleEmpty
	}
	if len(trimmedTitle) > MaxProgramTitleLen {
		return nil, ErrProgramTitleTooLong
	}

	if err := goal.Validate(); err != nil {
		return nil, err
	}

	if baselineKcal <= 0 {
		return nil, ErrInvalidKcalTarget
	}
	if stepTarget < 0 {
		return nil, ErrInvalidStepTarget
	}
	if stepTarget == 0 {
		stepTarget = DefaultStepTarget
	}

	now := time.Now().UTC()

	return &Program{
		ID:                 uuid.New().String(),
		UserID:             userID,
		Title:              trimmedTitle,
		Status:             ProgramStatusActive,
		Goal:               goal,
		Macros:             macros,
		BaselineKcalTarget: baselineKcal,
		CurrentKcalTarget:  baselineKcal,
		StepTarget:         stepTarget,
		CreatedAt:          now,
		UpdatedAt:          now,
	}, nil
}

// ApplyKcalDelta moves the current target by delta kcal. The delta is
// expected to be pre-clamped by the rules engine; this only guards the
// absolute floor.
func (p *Program) ApplyKcalDelta(delta int) error {
	if p.Status == ProgramStatusCompleted {
		return ErrProgramCompleted
	}

	next := p.CurrentKcalTarget + delta
	if next <= 0 {
		return ErrInvalidKcalTarget
	}

	p.CurrentKcalTarget = next
	p.UpdatedAt = time.Now().UTC()
	return nil
}

func (p *Program) AdjustStepTarget(delta int) error {
	if p.Status == ProgramStatusCompleted {
		return ErrProgramCompleted
	}
	if p.StepTarget+delta < 0 {
		return ErrInvalidStepTarget
	}

	p.StepTarget += delta
	p.UpdatedAt = time.Now().UTC()
	return nil
}

func (p *Program) Complete() {
	if p.Status == ProgramStatusCompleted {
		return
	}
	p.Status = ProgramStatusCompleted
	p.UpdatedAt = time.Now().UTC()
}
