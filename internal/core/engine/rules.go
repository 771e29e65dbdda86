package engine

import (
	"math"

	"github.com/pulsecoach/adjustment-engine/internal/core/domain"
)

// Tuning constants for the weekly review rules. Percentages are applied to
// the program's current kcal target unless noted otherwise.
const (
	// DeloadFatigueThreshold and DeloadSleepThreshold trigger an immediate
	// recovery week.
	DeloadFatigueThreshold = 8
	DeloadSleepThreshold   = 4

	// DeloadVolumeCutPct is the midpoint of the -30..-40% design range.
	DeloadVolumeCutPct = -35.0

	// PlateauProgressRatio: actual weekly loss below this fraction of the
	// target rate counts as a plateau week.
	PlateauProgressRatio = 0.70

	// MinAdherence gates any intervention: below it the data, not the
	// plan, is the problem.
	MinAdherence = 0.80

	// StepNudge is the midpoint of the 1000-2000/day design range.
	StepNudge = 1500

	// CalorieCutPct is the midpoint of the -7..-12% design range.
	CalorieCutPct = 0.095

	// KcalSafetyBandPct bounds any single kcal target against the program
	// baseline, in either direction.
	KcalSafetyBandPct = 0.15
)

// Habit identifiers used in decision habit deltas.
const (
	HabitDailySteps   = "daily_steps"
	HabitMealLogging  = "meal_logging"
	HabitSleepHygiene = "sleep_hygiene"
)

type outcome struct {
	kcalDelta      int
	volumeDeltaPct float64
	deload         bool
	habitDeltas    domain.HabitDeltas
	code           string
	params         domain.RationaleParams
}

// evaluation bundles everything one rule pass can see: the fresh snapshot,
// up to two prior snapshots (most recent first) and the program's targets.
type evaluation struct {
	goal         domain.Goal
	baselineKcal int
	currentKcal  int
	stepTarget   int
	snapshot     domain.MetricsSnapshot
	history      []domain.MetricsSnapshot
}

// rule is one priority slot: a name plus a pure predicate-and-action pair.
// Primary rules run in declaration order with first-match-wins; nudge rules
// all run and only contribute habit deltas.
type rule struct {
	name string
	eval func(ev *evaluation) (*outcome, bool)
}

// primaryRules is the ordered priority list from highest to lowest. The
// deload rule deliberately precedes everything else: recovery safety
// dominates both the step nudge and the calorie cut when conditions
// overlap.
var primaryRules = []rule{
	{name: "deload", eval: evalDeload},
	{name: "step_increase", eval: evalStepIncrease},
	{name: "calorie_reduction", eval: evalCalorieReduction},
}

var nudgeRules = []rule{
	{name: "meal_logging_nudge", eval: evalMealLoggingNudge},
	{name: "sleep_hygiene_nudge", eval: evalSleepHygieneNudge},
}

func evalDeload(ev *evaluation) (*outcome, bool) {
	s := ev.snapshot

	triggered := s.Fatigue >= DeloadFatigueThreshold || s.Sleep <= DeloadSleepThreshold
	if !triggered {
		triggered = rpeTrendRising(ev) && volumeRising(ev)
	}
	if !triggered {
		return nil, false
	}

	return &outcome{
		kcalDelta:      0,
		volumeDeltaPct: DeloadVolumeCutPct,
		deload:         true,
		code:           domain.RationaleDeload,
		params: domain.RationaleParams{
			"fatigue": s.Fatigue,
			"sleep":   s.Sleep,
		},
	}, true
}

func evalStepIncrease(ev *evaluation) (*outcome, bool) {
	if !weightLossPlateau(ev) {
		return nil, false
	}

	s := ev.snapshot
	if s.AvgDailySteps == nil || *s.AvgDailySteps >= float64(ev.stepTarget) {
		return nil, false
	}

	return &outcome{
		habitDeltas: domain.HabitDeltas{HabitDailySteps: StepNudge},
		code:        domain.RationaleStepIncrease,
		params: domain.RationaleParams{
			"weeks_plateaued": 2,
			"adherence":       minAdherence(s),
			"avg_daily_steps": math.Round(*s.AvgDailySteps),
			"step_target":     ev.stepTarget,
		},
	}, true
}

func evalCalorieReduction(ev *evaluation) (*outcome, bool) {
	if !weightLossPlateau(ev) {
		return nil, false
	}

	s := ev.snapshot
	if s.AvgDailySteps != nil && *s.AvgDailySteps < float64(ev.stepTarget) {
		// Steps are adjusted before calories; the step rule owns this case.
		return nil, false
	}

	delta := -int(math.Round(CalorieCutPct * float64(ev.currentKcal)))

	return &outcome{
		kcalDelta: delta,
		code:      domain.RationaleCalorieReduction,
		params: domain.RationaleParams{
			"weeks_plateaued": 2,
			"adherence":       minAdherence(s),
			"kcal_delta":      delta,
		},
	}, true
}

func evalMealLoggingNudge(ev *evaluation) (*outcome, bool) {
	if ev.snapshot.NutritionAdherence >= 0.5 {
		return nil, false
	}
	return &outcome{habitDeltas: domain.HabitDeltas{HabitMealLogging: 1}}, true
}

func evalSleepHygieneNudge(ev *evaluation) (*outcome, bool) {
	if ev.snapshot.Sleep > 5 {
		return nil, false
	}
	return &outcome{habitDeltas: domain.HabitDeltas{HabitSleepHygiene: 1}}, true
}

// weightLossPlateau holds when an active weight-loss goal has progressed at
// under 70% of its target rate for the current and the previous snapshot,
// with adherence high enough to trust the data. Low-confidence snapshots
// never count as plateau weeks.
func weightLossPlateau(ev *evaluation) bool {
	if ev.goal.Type != domain.GoalWeightLoss || ev.goal.TargetRateKgPerWeek >= 0 {
		return false
	}

	s := ev.snapshot
	if s.WorkoutAdherence < MinAdherence || s.NutritionAdherence < MinAdherence {
		return false
	}

	if len(ev.history) < 1 {
		return false
	}

	return belowTargetRate(s, ev.goal.TargetRateKgPerWeek) &&
		belowTargetRate(ev.history[0], ev.goal.TargetRateKgPerWeek)
}

func belowTargetRate(s domain.MetricsSnapshot, targetRate float64) bool {
	if s.LowConfidence {
		return false
	}
	// Both values are negative for weight loss, so the ratio is positive
	// when moving in the right direction.
	progress := s.WeightDeltaKg / targetRate
	return progress < PlateauProgressRatio
}

func rpeTrendRising(ev *evaluation) bool {
	if len(ev.history) < 2 {
		return false
	}
	cur, prev, prev2 := ev.snapshot.AvgRPE, ev.history[0].AvgRPE, ev.history[1].AvgRPE
	if cur == nil || prev == nil || prev2 == nil {
		return false
	}
	return *cur > *prev && *prev > *prev2
}

func volumeRising(ev *evaluation) bool {
	if len(ev.history) < 2 {
		return false
	}
	return ev.snapshot.VolumeIndex > ev.history[0].VolumeIndex &&
		ev.history[0].VolumeIndex > ev.history[1].VolumeIndex
}

func minAdherence(s domain.MetricsSnapshot) float64 {
	if s.WorkoutAdherence < s.NutritionAdherence {
		return s.WorkoutAdherence
	}
	return s.NutritionAdherence
}

// roundToHalf rounds a percentage to the nearest 0.5.
func roundToHalf(v float64) float64 {
	return math.Round(v*2) / 2
}
