package engine

import (
	"context"
	"fmt"

	"github.com/pulsecoach/adjustment-engine/internal/core/domain"
)

// Renderer turns a rationale code and its parameter bag into user-facing
// explanation text. The production implementation is an external
// text-generation service; the engine must produce valid decisions even when
// it is unavailable, so every failure path ends at TemplateRenderer.
type Renderer interface {
	Render(ctx context.Context, code string, params domain.RationaleParams) (string, error)
}

// TemplateRenderer is the deterministic fallback: one canned sentence per
// rationale code, with the relevant parameters substituted explicitly so the
// output never depends on map iteration order.
type TemplateRenderer struct{}

func (TemplateRenderer) Render(_ context.Context, code string, params domain.RationaleParams) (string, error) {
	switch code {
	case domain.RationaleDeload:
		return fmt.Sprintf(
			"Recovery markers are down (fatigue %v/10, sleep %v/10), so this week is a deload: training volume drops while calories stay unchanged.",
			params["fatigue"], params["sleep"],
		), nil

	case domain.RationaleStepIncrease:
		return fmt.Sprintf(
			"Weight change has trailed the target for %v weeks despite solid adherence. Daily activity is below target (%v vs %v steps), so the step goal goes up before any calorie change.",
			params["weeks_plateaued"], params["avg_daily_steps"], params["step_target"],
		), nil

	case domain.RationaleCalorieReduction:
		return fmt.Sprintf(
			"Weight change has trailed the target for %v weeks with adherence at %v, so the daily calorie target drops by %v kcal.",
			params["weeks_plateaued"], params["adherence"], params["kcal_delta"],
		), nil

	case domain.RationaleOnTrack:
		return "Progress is on track. No changes this week.", nil

	case domain.RationaleInsufficientProfile:
		return "The program goal is missing or unrecognized, so no adjustment was made this week. Complete the goal profile to enable weekly tuning.", nil

	default:
		return "", fmt.Errorf("no template for rationale code %q", code)
	}
}
