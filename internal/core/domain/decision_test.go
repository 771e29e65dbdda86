package domain

import (
	"encoding/json"
	"testing"
)

func TestAdjustmentDecisionValidate(t *testing.T) {
	t.Parallel()

	valid := func() *AdjustmentDecision {
		return &AdjustmentDecision{
			ProgramID:     "p1",
			Week:          3,
			KcalDelta:     -190,
			RationaleCode: RationaleCalorieReduction,
		}
	}

	t.Run("Should accept a well-formed decision", func(t *testing.T) {
		t.Parallel()
		if err := valid().Validate(); err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
	})

	t.Run("Should reject missing program id", func(t *testing.T) {
		t.Parallel()
		d := valid()
		d.ProgramID = ""
		if err := d.Validate(); err != ErrDecisionMissingProgram {
			t.Fatalf("Expected ErrDecisionMissingProgram, got %v", err)
		}
	})

	t.Run("Should reject non-positive week", func(t *testing.T) {
		t.Parallel()
		d := valid()
		d.Week = 0
		if err := d.Validate(); err != ErrDecisionInvalidWeek {
			t.Fatalf("Expected ErrDecisionInvalidWeek, got %v", err)
		}
	})

	t.Run("Should reject a deload carrying a kcal delta", func(t *testing.T) {
		t.Parallel()
		d := valid()
		d.Deload = true
		if err := d.Validate(); err == nil {
			t.Fatal("Expected error for deload with nonzero kcal delta")
		}
	})
}

func TestJSONColumnRoundTrips(t *testing.T) {
	t.Parallel()

	t.Run("HabitDeltas", func(t *testing.T) {
		t.Parallel()
		in := HabitDeltas{"daily_steps": 1500, "meal_logging": 1}

		raw, err := in.Value()
		if err != nil {
			t.Fatalf("Value failed: %v", err)
		}

		var out HabitDeltas
		if err := out.Scan(raw); err != nil {
			t.Fatalf("Scan failed: %v", err)
		}
		if out["daily_steps"] != 1500 || out["meal_logging"] != 1 {
			t.Fatalf("Round trip mismatch: %v", out)
		}
	})

	t.Run("SnapshotColumn from string source", func(t *testing.T) {
		t.Parallel()
		steps := 8200.0
		in := SnapshotColumn{MetricsSnapshot{Week: 3, WeightDeltaKg: -0.2, AvgDailySteps: &steps}}

		raw, err := json.Marshal(in.MetricsSnapshot)
		if err != nil {
			t.Fatalf("Marshal failed: %v", err)
		}

		var out SnapshotColumn
		if err := out.Scan(string(raw)); err != nil {
			t.Fatalf("Scan failed: %v", err)
		}
		if out.Week != 3 || out.AvgDailySteps == nil || *out.AvgDailySteps != 8200.0 {
			t.Fatalf("Round trip mismatch: %+v", out.MetricsSnapshot)
		}
	})

	t.Run("Goal", func(t *testing.T) {
		t.Parallel()
		in := Goal{Type: GoalWeightLoss, TargetRateKgPerWeek: -0.3}

		raw, err := in.Value()
		if err != nil {
			t.Fatalf("Value failed: %v", err)
		}

		var out Goal
		if err := out.Scan(raw); err != nil {
			t.Fatalf("Scan failed: %v", err)
		}
		if out.Type != GoalWeightLoss || out.TargetRateKgPerWeek != -0.3 {
			t.Fatalf("Round trip mismatch: %+v", out)
		}
	})
}
