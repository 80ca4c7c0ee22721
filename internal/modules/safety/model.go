// README: Route safety request/assessment shapes produced by the orchestrator.
package safety

import (
	"pelorus/internal/modules/area"
	"pelorus/internal/modules/depth"
	"pelorus/internal/modules/weather"
	"pelorus/internal/types"
)

// RouteRequest is a route safety check. ChartedDepthsFt, when supplied,
// aligns index-for-index with Waypoints; the depth check is skipped for the
// route otherwise. Observations feed the weather analysis, supplied by the
// caller's forecast source.
type RouteRequest struct {
	RequestID            string
	UserID               string
	Waypoints            []types.Waypoint
	ChartedDepthsFt      []float64
	TidalHeightFt        float64
	VesselDraftFt        float64
	CrewExperience       depth.CrewExperience
	Observations         []weather.Observation
	PlannedDurationHours int
}

// Hazard is a single identified danger along the route.
type Hazard struct {
	Type        string
	Severity    string
	Location    *types.Waypoint
	Description string
}

// Warning is a user-facing caution the override authority can later be
// asked to suppress.
type Warning struct {
	ID       types.ID
	Type     string
	Severity string
	Message  string
}

// Verdict is the overall route judgment.
type Verdict string

const (
	VerdictSafe    Verdict = "safe"
	VerdictCaution Verdict = "caution"
	VerdictUnsafe  Verdict = "unsafe"
)

// RouteAssessment is the aggregated result of a route safety check.
type RouteAssessment struct {
	RequestID     string
	SafetyScore   int
	Verdict       Verdict
	Hazards       []Hazard
	Warnings      []Warning
	AreaConflicts []area.RestrictedArea
	DepthResults  []depth.Calculation
	Pattern       *weather.SevereWeatherPattern
	Delay         *weather.DelayRecommendation
}
