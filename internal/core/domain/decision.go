package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

var (
	ErrDecisionMissingProgram = errors.New("decision program id is required")
	ErrDecisionInvalidWeek    = errors.New("decision week must be a positive integer")
)

// Rationale codes identify which rule produced a decision. The surrounding
// system keys user-facing explanation copy off these.
const (
	RationaleDeload              = "deload"
	RationaleStepIncrease        = "step_increase"
	RationaleCalorieReduction    = "calorie_reduction"
	RationaleOnTrack             = "on_track"
	RationaleInsufficientProfile = "insufficient_profile_data"
)

// HabitDeltas maps a habit identifier to a signed adjustment, e.g.
// {"daily_steps": 1500}.
type HabitDeltas map[string]int

func (d HabitDeltas) Value() (driver.Value, error) {
	if d == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(d)
}

func (d *HabitDeltas) Scan(src any) error {
	return scanJSON(src, d)
}

// RationaleParams is the parameter bag handed to the rationale renderer
// alongside the code.
type RationaleParams map[string]any

func (p RationaleParams) Value() (driver.Value, error) {
	if p == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(p)
}

func (p *RationaleParams) Scan(src any) error {
	return scanJSON(src, p)
}

// SnapshotColumn wraps MetricsSnapshot for jsonb storage on the decision row.
type SnapshotColumn struct {
	MetricsSnapshot
}

func (s SnapshotColumn) Value() (driver.Value, error) {
	return json.Marshal(s.MetricsSnapshot)
}

func (s *SnapshotColumn) Scan(src any) error {
	return scanJSON(src, &s.MetricsSnapshot)
}

func (g Goal) Value() (driver.Value, error) {
	return json.Marshal(g)
}

func (g *Goal) Scan(src any) error {
	return scanJSON(src, g)
}

func (m MacroTargets) Value() (driver.Value, error) {
	return json.Marshal(m)
}

func (m *MacroTargets) Scan(src any) error {
	return scanJSON(src, m)
}

func scanJSON(src, dst any) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, dst)
	case string:
		return json.Unmarshal([]byte(v), dst)
	case nil:
		return nil
	default:
		return fmt.Errorf("cannot scan %T into %T", src, dst)
	}
}

// AdjustmentDecision is the system of record for what a weekly review
// changed and why. Rows are append-only: a correction is a new decision, so
// the audit history is never rewritten.
type AdjustmentDecision struct {
	ID        string `json:"id" db:"id"`
	ProgramID string `json:"program_id" db:"program_id"`
	CheckInID string `json:"check_in_id" db:"check_in_id"`
	Week      int    `json:"week" db:"week"`

	KcalDelta      int         `json:"kcal_delta" db:"kcal_delta"`
	VolumeDeltaPct float64     `json:"volume_delta_pct" db:"volume_delta_pct"`
	Deload         bool        `json:"deload" db:"deload"`
	HabitDeltas    HabitDeltas `json:"habit_deltas" db:"habit_deltas"`

	RationaleCode   string          `json:"rationale_code" db:"rationale_code"`
	RationaleParams RationaleParams `json:"rationale_params" db:"rationale_params"`
	RationaleText   string          `json:"rationale_text" db:"rationale_text"`

	Snapshot SnapshotColumn `json:"snapshot" db:"snapshot"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

func (d *AdjustmentDecision) Validate() error {
	if d.ProgramID == "" {
		return ErrDecisionMissingProgram
	}
	if d.Week <= 0 {
		return ErrDecisionInvalidWeek
	}
	if d.Deload && d.KcalDelta != 0 {
		return errors.New("deload decisions cannot carry a kcal delta")
	}
	return nil
}
