package engine

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/pulsecoach/adjustment-engine/internal/core/domain"
)

var (
	// ErrInvalidInput is the one hard failure class: the caller invoked an
	// evaluation without the identifiers every decision must carry.
	ErrInvalidInput = errors.New("invalid evaluation input")
)

// Input is everything one weekly evaluation needs. The engine is a pure
// function over it: no repository, no clock state, no shared mutable state
// between evaluations, so evaluations for different programs may run in
// parallel without coordination.
type Input struct {
	ProgramID string
	CheckInID string
	Week      int

	Goal         domain.Goal
	BaselineKcal int
	CurrentKcal  int
	StepTarget   int

	Snapshot domain.MetricsSnapshot

	// History holds up to the two most recent prior snapshots, most recent
	// first. Fewer is fine for young programs; rules requiring trend data
	// simply do not fire.
	History []domain.MetricsSnapshot
}

// Engine applies the ordered weekly-review rules to a metrics snapshot and
// produces exactly one AdjustmentDecision per call.
type Engine struct {
	renderer Renderer
	fallback TemplateRenderer
	logf     LogFunc
}

// New builds an engine. Both arguments may be nil: a nil renderer means
// template-only rationale text, a nil log hook discards diagnostics.
func New(renderer Renderer, logf LogFunc) *Engine {
	if logf == nil {
		logf = discardLog
	}
	return &Engine{
		renderer: renderer,
		logf:     logf,
	}
}

// Evaluate runs the rule list against the snapshot and short history window.
// The first matching primary rule decides the main action; independent nudge
// rules may additionally contribute habit deltas. The resulting decision is
// not persisted here; storage belongs to the caller.
//
// For a given input every field of the decision is deterministic except
// CreatedAt, which is stamped with the evaluation time.
func (e *Engine) Evaluate(ctx context.Context, in Input) (*domain.AdjustmentDecision, error) {
	if in.ProgramID == "" {
		return nil, fmt.Errorf("%w: missing program id", ErrInvalidInput)
	}
	if in.Week <= 0 {
		return nil, fmt.Errorf("%w: week must be positive", ErrInvalidInput)
	}

	ev := &evaluation{
		goal:         in.Goal,
		baselineKcal: in.BaselineKcal,
		currentKcal:  in.CurrentKcal,
		stepTarget:   in.StepTarget,
		snapshot:     in.Snapshot,
		history:      in.History,
	}
	if ev.stepTarget <= 0 {
		ev.stepTarget = domain.DefaultStepTarget
	}

	out := e.runRules(ev)

	decision := &domain.AdjustmentDecision{
		ProgramID:       in.ProgramID,
		CheckInID:       in.CheckInID,
		Week:            in.Week,
		KcalDelta:       e.clampKcalDelta(out.kcalDelta, in.BaselineKcal),
		VolumeDeltaPct:  roundToHalf(out.volumeDeltaPct),
		Deload:          out.deload,
		HabitDeltas:     out.habitDeltas,
		RationaleCode:   out.code,
		RationaleParams: out.params,
		Snapshot:        domain.SnapshotColumn{MetricsSnapshot: in.Snapshot},
		CreatedAt:       time.Now().UTC(),
	}

	decision.RationaleText = e.render(ctx, decision.RationaleCode, decision.RationaleParams)

	return decision, nil
}

func (e *Engine) runRules(ev *evaluation) outcome {
	var out outcome
	matched := false

	for _, r := range primaryRules {
		if res, ok := r.eval(ev); ok {
			out = *res
			matched = true
			break
		}
	}

	if !matched {
		out = outcome{params: domain.RationaleParams{}}
		switch ev.goal.Type {
		case domain.GoalWeightLoss, domain.GoalMuscleGain, domain.GoalMaintenance:
			out.code = domain.RationaleOnTrack
		default:
			out.code = domain.RationaleInsufficientProfile
		}
	}

	if out.habitDeltas == nil {
		out.habitDeltas = domain.HabitDeltas{}
	}
	if out.params == nil {
		out.params = domain.RationaleParams{}
	}

	for _, r := range nudgeRules {
		res, ok := r.eval(ev)
		if !ok {
			continue
		}
		for habit, delta := range res.habitDeltas {
			if _, taken := out.habitDeltas[habit]; !taken {
				out.habitDeltas[habit] = delta
			}
		}
	}

	return out
}

// clampKcalDelta enforces the product safety band: no single adjustment may
// push the target past ±15% of the program baseline. Exceeding deltas are
// clamped, never rejected.
func (e *Engine) clampKcalDelta(delta, baselineKcal int) int {
	if baselineKcal <= 0 || delta == 0 {
		return delta
	}

	band := int(math.Round(KcalSafetyBandPct * float64(baselineKcal)))
	if delta > band {
		e.logf("engine: kcal delta %d exceeds safety band, clamped to %d", delta, band)
		return band
	}
	if delta < -band {
		e.logf("engine: kcal delta %d exceeds safety band, clamped to %d", delta, -band)
		return -band
	}
	return delta
}

func (e *Engine) render(ctx context.Context, code string, params domain.RationaleParams) string {
	if e.renderer != nil {
		text, err := e.renderer.Render(ctx, code, params)
		if err == nil && text != "" {
			return text
		}
		if err != nil {
			e.logf("engine: rationale renderer failed for %q, using template fallback: %v", code, err)
		}
	}

	text, err := e.fallback.Render(ctx, code, params)
	if err != nil {
		return code
	}
	return text
}
