// README: Depth safety engine; pure grounding-risk arithmetic over an immutable config.
package depth

import (
	"errors"
	"fmt"

	"pelorus/internal/types"
)

var (
	ErrInvalidDepth = errors.New("charted depth cannot be negative")
	ErrInvalidDraft = errors.New("vessel draft must be positive")
)

// Engine computes grounding risk. It carries no state beyond its config and
// is safe to share.
type Engine struct {
	cfg Config
}

// NewEngine returns an Engine using the given config. Zero-value percent and
// absolute clearance are taken literally; use DefaultConfig for the standard
// rules.
func NewEngine(cfg Config) *Engine {
	return &Engine{cfg: cfg}
}

// Calculate runs a single depth safety check. chartedDepth and tidalHeight
// are in feet relative to the chart datum; tidalHeight may be negative.
// Returns ErrInvalidDepth / ErrInvalidDraft on malformed numeric input;
// these indicate a caller bug and are never silently corrected.
func (e *Engine) Calculate(location types.Waypoint, chartedDepthFt, vesselDraftFt, tidalHeightFt float64) (Calculation, error) {
	if chartedDepthFt < 0 {
		return Calculation{}, ErrInvalidDepth
	}
	if vesselDraftFt <= 0 {
		return Calculation{}, ErrInvalidDraft
	}

	actual := chartedDepthFt + tidalHeightFt + e.cfg.ChartDatumAdjustmentFt
	minClearance := e.minimumClearance(vesselDraftFt)
	clearance := actual - vesselDraftFt

	calc := Calculation{
		Location:           location,
		ChartedDepthFt:     chartedDepthFt,
		TidalAdjustmentFt:  tidalHeightFt,
		ActualDepthFt:      actual,
		VesselDraftFt:      vesselDraftFt,
		MinimumClearanceFt: minClearance,
		ClearanceFt:        clearance,
		IsGroundingRisk:    clearance < minClearance,
	}
	calc.Severity, calc.Recommendation = e.grade(calc)
	return calc, nil
}

// grade maps a clearance onto the severity ladder. Tiers are evaluated in
// order; the first match wins.
func (e *Engine) grade(c Calculation) (Severity, string) {
	switch {
	case c.ClearanceFt < 0:
		return SeverityCritical, fmt.Sprintf(
			"DO NOT PROCEED: vessel will ground. Depth %.1f ft is less than draft %.1f ft.",
			c.ActualDepthFt, c.VesselDraftFt)
	case c.ClearanceFt < 1.0:
		return SeverityCritical, fmt.Sprintf(
			"EXTREME DANGER: only %.1f ft under keel. Do not transit without verified depths.",
			c.ClearanceFt)
	case c.ClearanceFt < c.MinimumClearanceFt:
		return SeverityHigh, fmt.Sprintf(
			"Grounding risk: %.1f ft clearance is below the %.1f ft minimum. Wait for a higher tide or reroute.",
			c.ClearanceFt, c.MinimumClearanceFt)
	case c.ClearanceFt < c.MinimumClearanceFt*1.5:
		return SeverityModerate, fmt.Sprintf(
			"Marginal clearance of %.1f ft (minimum %.1f ft). Proceed at reduced speed and monitor the sounder.",
			c.ClearanceFt, c.MinimumClearanceFt)
	default:
		return SeveritySafe, fmt.Sprintf(
			"Adequate clearance of %.1f ft at this waypoint.", c.ClearanceFt)
	}
}

// MinimumSafeDepth returns the shallowest charted depth that keeps the
// required clearance for the given draft: draft + max(draft*pct, absolute).
func (e *Engine) MinimumSafeDepth(vesselDraftFt float64) float64 {
	return vesselDraftFt + e.minimumClearance(vesselDraftFt)
}

// AdjustForCrewExperience widens (or, for professionals, slightly narrows)
// a clearance requirement by a fixed per-level multiplier. Unknown levels
// keep the base clearance.
func (e *Engine) AdjustForCrewExperience(baseClearanceFt float64, level CrewExperience) float64 {
	switch level {
	case CrewNovice:
		return baseClearanceFt * 1.5
	case CrewIntermediate:
		return baseClearanceFt * 1.2
	case CrewAdvanced:
		return baseClearanceFt * 1.0
	case CrewProfessional:
		return baseClearanceFt * 0.9
	default:
		return baseClearanceFt
	}
}

// SafeAtLowWater reports whether the depth at the lowest expected tide still
// meets the minimum safe depth for the draft.
func (e *Engine) SafeAtLowWater(chartedDepthFt, vesselDraftFt, lowestTideFt float64) bool {
	return chartedDepthFt+lowestTideFt >= e.MinimumSafeDepth(vesselDraftFt)
}

func (e *Engine) minimumClearance(vesselDraftFt float64) float64 {
	pct := vesselDraftFt * e.cfg.ClearancePercent / 100.0
	if pct > e.cfg.AbsoluteClearanceFt {
		return pct
	}
	return e.cfg.AbsoluteClearanceFt
}
