// README: Route and depth check handlers.
package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"pelorus/internal/metocean"
	"pelorus/internal/modules/depth"
	"pelorus/internal/modules/safety"
	"pelorus/internal/modules/weather"
	"pelorus/internal/types"
)

type SafetyHandler struct {
	safety   *safety.Service
	depth    *depth.Engine
	metocean *metocean.Client
	station  string
}

// NewSafetyHandler wires the route analysis surface. metoceanClient may be
// nil; then observations must arrive inline with the request.
func NewSafetyHandler(svc *safety.Service, engine *depth.Engine, metoceanClient *metocean.Client, station string) *SafetyHandler {
	return &SafetyHandler{safety: svc, depth: engine, metocean: metoceanClient, station: station}
}

type waypointDTO struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type observationDTO struct {
	Time         time.Time `json:"time"`
	Lat          float64   `json:"lat"`
	Lon          float64   `json:"lon"`
	WindSpeedKt  float64   `json:"wind_speed_kt"`
	WaveHeightFt float64   `json:"wave_height_ft"`
	PressureMb   *float64  `json:"pressure_mb"`
	VisibilityNm float64   `json:"visibility_nm"`
}

type routeCheckReq struct {
	RequestID            string           `json:"request_id"`
	UserID               string           `json:"user_id"`
	Waypoints            []waypointDTO    `json:"waypoints"`
	ChartedDepthsFt      []float64        `json:"charted_depths_ft"`
	TidalHeightFt        float64          `json:"tidal_height_ft"`
	VesselDraftFt        float64          `json:"vessel_draft_ft"`
	CrewExperience       string           `json:"crew_experience"`
	Observations         []observationDTO `json:"observations"`
	Station              string           `json:"station"`
	PlannedDurationHours int              `json:"planned_duration_hours"`
}

// RouteCheck handles POST /api/safety/route-check.
func (h *SafetyHandler) RouteCheck(c *gin.Context) {
	var req routeCheckReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	if len(req.Waypoints) == 0 {
		writeError(c, http.StatusBadRequest, "missing waypoints")
		return
	}

	obs := toObservations(req.Observations)
	if len(obs) == 0 {
		fetched, ok := h.fetchObservations(c, req.Station)
		if !ok {
			return
		}
		obs = fetched
	}

	assessment, err := h.safety.AnalyzeRoute(c.Request.Context(), safety.RouteRequest{
		RequestID:            strings.TrimSpace(req.RequestID),
		UserID:               strings.TrimSpace(req.UserID),
		Waypoints:            toWaypoints(req.Waypoints),
		ChartedDepthsFt:      req.ChartedDepthsFt,
		TidalHeightFt:        req.TidalHeightFt,
		VesselDraftFt:        req.VesselDraftFt,
		CrewExperience:       depth.CrewExperience(req.CrewExperience),
		Observations:         obs,
		PlannedDurationHours: req.PlannedDurationHours,
	})
	if err != nil {
		writeSafetyError(c, err)
		return
	}

	writeJSON(c, http.StatusOK, assessmentDTO(assessment))
}

type depthCheckReq struct {
	Lat            float64 `json:"lat"`
	Lon            float64 `json:"lon"`
	ChartedDepthFt float64 `json:"charted_depth_ft"`
	VesselDraftFt  float64 `json:"vessel_draft_ft"`
	TidalHeightFt  float64 `json:"tidal_height_ft"`
	CrewExperience string  `json:"crew_experience"`
}

// DepthCheck handles POST /api/safety/depth-check.
func (h *SafetyHandler) DepthCheck(c *gin.Context) {
	var req depthCheckReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}

	calc, err := h.depth.Calculate(
		types.Waypoint{Lat: req.Lat, Lon: req.Lon},
		req.ChartedDepthFt, req.VesselDraftFt, req.TidalHeightFt)
	if err != nil {
		writeSafetyError(c, err)
		return
	}

	required := h.depth.AdjustForCrewExperience(calc.MinimumClearanceFt, depth.CrewExperience(req.CrewExperience))
	writeJSON(c, http.StatusOK, gin.H{
		"actual_depth_ft":       calc.ActualDepthFt,
		"clearance_ft":          calc.ClearanceFt,
		"minimum_clearance_ft":  calc.MinimumClearanceFt,
		"required_clearance_ft": required,
		"minimum_safe_depth_ft": h.depth.MinimumSafeDepth(req.VesselDraftFt),
		"is_grounding_risk":     calc.IsGroundingRisk || calc.ClearanceFt < required,
		"severity":              calc.Severity,
		"recommendation":        calc.Recommendation,
	})
}

// fetchObservations pulls the last six hours of station reports when the
// caller did not supply any. Reports an HTTP error itself on failure.
func (h *SafetyHandler) fetchObservations(c *gin.Context, station string) ([]weather.Observation, bool) {
	if station == "" {
		station = h.station
	}
	if h.metocean == nil || station == "" {
		return nil, true
	}
	obs, err := h.metocean.StationObservations(c.Request.Context(), station, time.Now().Add(-6*time.Hour))
	if err != nil {
		writeError(c, http.StatusBadGateway, "observation fetch failed")
		return nil, false
	}
	return obs, true
}

func toWaypoints(in []waypointDTO) []types.Waypoint {
	out := make([]types.Waypoint, len(in))
	for i, w := range in {
		out[i] = types.Waypoint{Lat: w.Lat, Lon: w.Lon}
	}
	return out
}

func toObservations(in []observationDTO) []weather.Observation {
	out := make([]weather.Observation, len(in))
	for i, o := range in {
		out[i] = weather.Observation{
			Time:         o.Time,
			Location:     types.Waypoint{Lat: o.Lat, Lon: o.Lon},
			WindSpeedKt:  o.WindSpeedKt,
			WaveHeightFt: o.WaveHeightFt,
			PressureMb:   o.PressureMb,
			VisibilityNm: o.VisibilityNm,
		}
	}
	return out
}

func assessmentDTO(a safety.RouteAssessment) gin.H {
	hazards := make([]gin.H, 0, len(a.Hazards))
	for _, h := range a.Hazards {
		entry := gin.H{"type": h.Type, "severity": h.Severity, "description": h.Description}
		if h.Location != nil {
			entry["location"] = gin.H{"lat": h.Location.Lat, "lon": h.Location.Lon}
		}
		hazards = append(hazards, entry)
	}

	warnings := make([]gin.H, 0, len(a.Warnings))
	for _, w := range a.Warnings {
		warnings = append(warnings, gin.H{
			"id": w.ID, "type": w.Type, "severity": w.Severity, "message": w.Message,
		})
	}

	conflicts := make([]gin.H, 0, len(a.AreaConflicts))
	for _, ra := range a.AreaConflicts {
		conflicts = append(conflicts, gin.H{
			"id": ra.ID, "name": ra.Name, "type": ra.Type,
			"authority": ra.Authority, "restrictions": ra.Restrictions, "penalty": ra.Penalty,
		})
	}

	out := gin.H{
		"request_id":     a.RequestID,
		"safety_score":   a.SafetyScore,
		"verdict":        a.Verdict,
		"hazards":        hazards,
		"warnings":       warnings,
		"area_conflicts": conflicts,
	}
	if a.Pattern != nil {
		out["pattern"] = gin.H{
			"type":      a.Pattern.Type,
			"intensity": a.Pattern.Intensity,
			"action":    a.Pattern.PredictedImpact.RecommendedAction,
			"timing":    a.Pattern.PredictedImpact.Timing,
		}
	}
	if a.Delay != nil {
		out["delay"] = gin.H{
			"should_delay":          a.Delay.ShouldDelay,
			"delay_hours":           a.Delay.DelayHours,
			"alternative_departure": a.Delay.AlternativeDeparture,
			"reason":                a.Delay.Reason,
		}
	}
	return out
}
