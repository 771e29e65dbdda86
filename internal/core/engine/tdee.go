package engine

import (
	"errors"
	"math"

	"github.com/pulsecoach/adjustment-engine/internal/core/domain"
)

var (
	ErrIncompleteProfile = errors.New("profile is missing age, weight, height or sex")
	ErrInvalidSex        = errors.New("sex must be male or female")
)

const (
	ActivitySedentary  = "sedentary"
	ActivityLight      = "light"
	ActivityModerate   = "moderate"
	ActivityActive     = "active"
	ActivityVeryActive = "very_active"

	minKcalFemale = 1200
	minKcalMale   = 1500
)

var activityMultipliers = map[string]float64{
	ActivitySedentary:  1.2,
	ActivityLight:      1.375,
	ActivityModerate:   1.55,
	ActivityActive:     1.725,
	ActivityVeryActive: 1.9,
}

var goalKcalAdjustments = map[string]int{
	domain.GoalWeightLoss:  -500,
	domain.GoalMuscleGain:  300,
	domain.GoalMaintenance: 0,
}

// Profile is the health profile a kcal baseline is derived from.
type Profile struct {
	Age           int
	WeightKg      float64
	HeightCm      float64
	Sex           string
	ActivityLevel string
	GoalType      string
}

// TDEEResult breaks the baseline derivation down for auditability.
type TDEEResult struct {
	BMR                int     `json:"bmr"`
	TDEE               int     `json:"tdee"`
	ActivityMultiplier float64 `json:"activity_multiplier"`
	GoalAdjustment     int     `json:"goal_adjustment"`
	TargetKcal         int     `json:"target_kcal"`
}

// CalculateTDEE derives the daily kcal target with the Mifflin-St Jeor
// equation, an activity multiplier and a per-goal adjustment, floored at the
// minimum safe intake.
func CalculateTDEE(p Profile) (TDEEResult, error) {
	if p.Age <= 0 || p.WeightKg <= 0 || p.HeightCm <= 0 || p.Sex == "" {
		return TDEEResult{}, ErrIncompleteProfile
	}

	var bmr float64
	switch p.Sex {
	case "male":
		bmr = 10*p.WeightKg + 6.25*p.HeightCm - 5*float64(p.Age) + 5
	case "female":
		bmr = 10*p.WeightKg + 6.25*p.HeightCm - 5*float64(p.Age) - 161
	default:
		return TDEEResult{}, ErrInvalidSex
	}

	multiplier, ok := activityMultipliers[p.ActivityLevel]
	if !ok {
		multiplier = activityMultipliers[ActivityModerate]
	}

	tdee := int(math.Round(bmr * multiplier))
	adjustment := goalKcalAdjustments[p.GoalType]
	target := tdee + adjustment

	minKcal := minKcalMale
	if p.Sex == "female" {
		minKcal = minKcalFemale
	}
	if target < minKcal {
		target = minKcal
	}

	return TDEEResult{
		BMR:                int(math.Round(bmr)),
		TDEE:               tdee,
		ActivityMultiplier: multiplier,
		GoalAdjustment:     adjustment,
		TargetKcal:         target,
	}, nil
}

// PlanMacros splits a kcal target into daily macro grams. Protein comes off
// bodyweight (higher when cutting), fat takes 30% of calories, carbs take
// the remainder.
func PlanMacros(p Profile, targetKcal int) domain.MacroTargets {
	proteinPerKg := 1.8
	switch p.GoalType {
	case domain.GoalWeightLoss:
		proteinPerKg = 2.2
	case domain.GoalMuscleGain:
		proteinPerKg = 2.0
	}

	proteinG := int(math.Round(p.WeightKg * proteinPerKg))
	fatG := int(math.Round(0.30 * float64(targetKcal) / 9))

	remainder := targetKcal - proteinG*4 - fatG*9
	carbsG := 0
	if remainder > 0 {
		carbsG = int(math.Round(float64(remainder) / 4))
	}

	return domain.MacroTargets{
		ProteinG: proteinG,
		CarbsG:   carbsG,
		FatG:     fatG,
	}
}
