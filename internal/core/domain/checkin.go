package domain

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrCheckInMissingProgram = errors.New("check-in program id is required")
	ErrCheckInInvalidWeek    = errors.New("check-in week must be a positive integer")
	ErrCheckInInvalidWeight  = errors.New("check-in weight must be positive")
	ErrCheckInWeekExists     = errors.New("a check-in for this week already exists")
)

const (
	MinScore = 1
	MaxScore = 10

	MaxCheckInNotesLen = 1000
)

// CheckIn is one user-submitted weekly snapshot. Immutable once created;
// there is no Update method on purpose.
type CheckIn struct {
	ID        string `json:"id" db:"id"`
	ProgramID string `json:"program_id" db:"program_id"`
	UserID    string `json:"user_id" db:"user_id"`
	Week      int    `json:"week" db:"week"`

	WeightKg     float64  `json:"weight_kg" db:"weight_kg"`
	BodyFatPct   *float64 `json:"body_fat_pct,omitempty" db:"body_fat_pct"`
	SleepQuality int      `json:"sleep_quality" db:"sleep_quality"`
	StressLevel  int      `json:"stress_level" db:"stress_level"`
	EnergyLevel  int      `json:"energy_level" db:"energy_level"`
	Notes        string   `json:"notes,omitempty" db:"notes"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// ClampScore forces a 1-10 subjective score into range. Out-of-band values
// come from upstream bugs and are clamped rather than rejected.
func ClampScore(v int) int {
	if v < MinScore {
		return MinScore
	}
	if v > MaxScore {
		return MaxScore
	}
	return v
}

// ClampRatio forces an adherence ratio into [0,1].
func ClampRatio(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func NewCheckIn(programID, userID string, week int, weightKg float64, sleep, stress, energy int) (*CheckIn, error) {
	if strings.TrimSpace(programID) == "" {
		return nil, ErrCheckInMissingProgram
	}
	if week <= 0 {
		return nil, ErrCheckInInvalidWeek
	}
	if weightKg <= 0 {
		return nil, ErrCheckInInvalidWeight
	}

	return &CheckIn{
		ProgramID:    programID,
		UserID:       userID,
		Week:         week,
		WeightKg:     weightKg,
		SleepQuality: ClampScore(sleep),
		StressLevel:  ClampScore(stress),
		EnergyLevel:  ClampScore(energy),
		CreatedAt:    time.Now().UTC(),
	}, nil
}

func (c *CheckIn) Validate() error {
	if strings.TrimSpace(c.ProgramID) == "" {
		return ErrCheckInMissingProgram
	}
	if c.Week <= 0 {
		return ErrCheckInInvalidWeek
	}
	if c.WeightKg <= 0 {
		return ErrCheckInInvalidWeight
	}
	if len(c.Notes) > MaxCheckInNotesLen {
		return errors.New("check-in notes too long")
	}
	return nil
}
