// README: Depth safety value types and engine configuration.
package depth

import "pelorus/internal/types"

// Severity grades a clearance verdict.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityModerate Severity = "moderate"
	SeveritySafe     Severity = "safe"
)

// CrewExperience scales the required safety margin.
type CrewExperience string

const (
	CrewNovice       CrewExperience = "novice"
	CrewIntermediate CrewExperience = "intermediate"
	CrewAdvanced     CrewExperience = "advanced"
	CrewProfessional CrewExperience = "professional"
)

// Config parameterizes the clearance rules. All depths are in feet.
type Config struct {
	// ClearancePercent is the required clearance as a percentage of draft.
	ClearancePercent float64
	// AbsoluteClearanceFt is the floor on required clearance regardless of draft.
	AbsoluteClearanceFt float64
	// ChartDatumAdjustmentFt corrects for a chart datum other than MLW.
	ChartDatumAdjustmentFt float64
}

// DefaultConfig returns the standard clearance rules: 20% of draft with a
// 2 ft floor, no datum correction.
func DefaultConfig() Config {
	return Config{
		ClearancePercent:       20,
		AbsoluteClearanceFt:    2.0,
		ChartDatumAdjustmentFt: 0,
	}
}

// Calculation is the derived result of a single depth safety check. It has
// no identity and is never persisted.
type Calculation struct {
	Location           types.Waypoint
	ChartedDepthFt     float64
	TidalAdjustmentFt  float64
	ActualDepthFt      float64
	VesselDraftFt      float64
	MinimumClearanceFt float64
	ClearanceFt        float64
	IsGroundingRisk    bool
	Severity           Severity
	Recommendation     string
}
