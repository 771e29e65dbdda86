package domain

// MetricsSnapshot is the aggregated view of one review week. It is computed
// on demand from check-in, log and device history, and embedded on the
// decision it produced so that the short history window rules need can be
// reloaded without re-aggregating old raw data.
type MetricsSnapshot struct {
	Week int `json:"week"`

	// WeightDeltaKg is the 7-day rolling average weight change, kg/week,
	// negative when losing.
	WeightDeltaKg float64 `json:"weight_delta_kg"`

	WorkoutAdherence   float64 `json:"workout_adherence"`
	NutritionAdherence float64 `json:"nutrition_adherence"`

	Fatigue int `json:"fatigue"`
	Sleep   int `json:"sleep"`

	// AvgDailySteps is nil when no device data was available for the
	// window; rules depending on it are skipped rather than treated as
	// false.
	AvgDailySteps *float64 `json:"avg_daily_steps,omitempty"`

	// AvgRPE and VolumeIndex feed the deload trend check. AvgRPE is nil
	// when the week had no logged session RPE.
	AvgRPE      *float64 `json:"avg_rpe,omitempty"`
	VolumeIndex float64  `json:"volume_index"`

	// LowConfidence is set when the weight delta was derived from fewer
	// than 14 daily observations.
	LowConfidence bool `json:"low_confidence"`
}

// AggregateInput is the raw material the aggregator consumes. Everything is
// passed in by the caller; the aggregator never reaches into storage.
type AggregateInput struct {
	Current *CheckIn
	// PreviousCheckIn backs the reduced-confidence weight fallback when
	// daily observations are sparse.
	PreviousCheckIn *CheckIn

	// DailyWeightsKg are device or manual daily weigh-ins for the trailing
	// 14 days, oldest first. May be shorter or empty.
	DailyWeightsKg []float64

	// Adherence ratios are pre-aggregated by the logging subsystem. The
	// aggregator only clamps them.
	WorkoutAdherence   float64
	NutritionAdherence float64

	// DailySteps are device step counts for the trailing 7 days. Empty
	// means no device data.
	DailySteps []int

	// SessionRPEs are this week's logged session RPE values, if any.
	SessionRPEs []float64

	// VolumeIndex is the week's total working-set count as reported by the
	// workout log subsystem.
	VolumeIndex float64
}
