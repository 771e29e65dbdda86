package engine

import (
	"math"

	"github.com/pulsecoach/adjustment-engine/internal/core/domain"
)

// LogFunc is the caller-supplied diagnostics hook. The engine owns no I/O;
// anything worth reporting (out-of-band values, clamping) goes through here.
type LogFunc func(format string, args ...any)

func discardLog(string, ...any) {}

// BuildSnapshot aggregates one review week of raw data into a
// MetricsSnapshot. It never fails: missing or malformed history degrades to
// safe defaults with LowConfidence set, because a blocked weekly review is
// worse than a cautious one.
func BuildSnapshot(in domain.AggregateInput, logf LogFunc) domain.MetricsSnapshot {
	if logf == nil {
		logf = discardLog
	}

	if in.Current == nil {
		return domain.MetricsSnapshot{LowConfidence: true}
	}

	snap := domain.MetricsSnapshot{
		Week:        in.Current.Week,
		Sleep:       domain.ClampScore(in.Current.SleepQuality),
		Fatigue:     fatigueScore(in.Current.StressLevel, in.Current.EnergyLevel),
		VolumeIndex: math.Max(0, in.VolumeIndex),
	}

	snap.WeightDeltaKg, snap.LowConfidence = weightDelta(in)

	snap.WorkoutAdherence = clampRatioLogged(in.WorkoutAdherence, "workout_adherence", logf)
	snap.NutritionAdherence = clampRatioLogged(in.NutritionAdherence, "nutrition_adherence", logf)

	if len(in.DailySteps) > 0 {
		avg := meanSteps(in.DailySteps)
		snap.AvgDailySteps = &avg
	}

	if len(in.SessionRPEs) > 0 {
		avg := mean(in.SessionRPEs)
		snap.AvgRPE = &avg
	}

	return snap
}

// weightDelta prefers two full weeks of daily observations. With fewer than
// 14 it falls back to the last two check-in weights, and with a single
// check-in it reports 0; both fallbacks flag reduced confidence.
func weightDelta(in domain.AggregateInput) (float64, bool) {
	if len(in.DailyWeightsKg) >= 14 {
		recent := in.DailyWeightsKg[len(in.DailyWeightsKg)-7:]
		preceding := in.DailyWeightsKg[len(in.DailyWeightsKg)-14 : len(in.DailyWeightsKg)-7]
		return mean(recent) - mean(preceding), false
	}

	if in.PreviousCheckIn != nil && in.PreviousCheckIn.WeightKg > 0 && in.Current.WeightKg > 0 {
		return in.Current.WeightKg - in.PreviousCheckIn.WeightKg, true
	}

	return 0, true
}

func fatigueScore(stress, energy int) int {
	stress = domain.ClampScore(stress)
	energy = domain.ClampScore(energy)
	raw := int(math.Round(float64(stress+(10-energy)) / 2))
	return domain.ClampScore(raw)
}

func clampRatioLogged(v float64, name string, logf LogFunc) float64 {
	clamped := domain.ClampRatio(v)
	if clamped != v {
		logf("aggregator: %s out of range (%.3f), clamped to %.3f", name, v, clamped)
	}
	return clamped
}

func mean(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

func meanSteps(vals []int) float64 {
	if len(vals) > 7 {
		vals = vals[len(vals)-7:]
	}
	sum := 0
	for _, v := range vals {
		sum += v
	}
	return float64(sum) / float64(len(vals))
}
