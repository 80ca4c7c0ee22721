// README: Route safety orchestrator; aggregates area, depth, and weather verdicts.
package safety

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"pelorus/internal/modules/area"
	"pelorus/internal/modules/audit"
	"pelorus/internal/modules/depth"
	"pelorus/internal/modules/weather"
	"pelorus/internal/types"
)

var ErrBadRequest = errors.New("bad route safety request")

// Score penalties per hazard severity. The score starts at 100 and is
// clamped at 0.
const (
	penaltyCritical = 40
	penaltyHigh     = 25
	penaltyModerate = 10
)

// Service runs the route safety analysis. Every hazard, warning, and
// decision it produces is recorded in the audit log before the verdict is
// returned.
type Service struct {
	areas    *area.Registry
	depth    *depth.Engine
	detector *weather.Detector
	audit    *audit.Log
	log      *slog.Logger
}

// NewService wires the orchestrator. All dependencies are required except
// log.
func NewService(areas *area.Registry, depthEngine *depth.Engine, detector *weather.Detector, auditLog *audit.Log, log *slog.Logger) *Service {
	return &Service{
		areas:    areas,
		depth:    depthEngine,
		detector: detector,
		audit:    auditLog,
		log:      log,
	}
}

// AnalyzeRoute performs the full safety check. Degenerate geometry inside
// the registry degrades to "no conflict"; malformed numeric parameters are
// caller bugs and return ErrBadRequest.
func (s *Service) AnalyzeRoute(ctx context.Context, req RouteRequest) (RouteAssessment, error) {
	if err := validateRequest(req); err != nil {
		return RouteAssessment{}, err
	}
	if req.RequestID == "" {
		req.RequestID = string(newID())
	}

	assessment := RouteAssessment{RequestID: req.RequestID}

	s.checkAreas(ctx, req, &assessment)
	if err := s.checkDepths(req, &assessment); err != nil {
		return RouteAssessment{}, err
	}
	s.checkWeather(req, &assessment)

	assessment.SafetyScore = score(assessment.Hazards)
	assessment.Verdict = verdict(assessment.SafetyScore)

	s.audit.RouteAnalyzed(req.RequestID, req.UserID, len(req.Waypoints), len(assessment.Hazards), assessment.SafetyScore)
	if s.log != nil {
		s.log.Info("route analyzed",
			"request_id", req.RequestID, "waypoints", len(req.Waypoints),
			"hazards", len(assessment.Hazards), "score", assessment.SafetyScore,
			"verdict", assessment.Verdict)
	}
	return assessment, nil
}

func validateRequest(req RouteRequest) error {
	if len(req.Waypoints) == 0 {
		return fmt.Errorf("%w: route needs at least one waypoint", ErrBadRequest)
	}
	for i, wp := range req.Waypoints {
		if wp.Lat < -90 || wp.Lat > 90 || wp.Lon < -180 || wp.Lon > 180 {
			return fmt.Errorf("%w: waypoint %d out of range (%f, %f)", ErrBadRequest, i, wp.Lat, wp.Lon)
		}
	}
	if len(req.ChartedDepthsFt) > 0 && len(req.ChartedDepthsFt) != len(req.Waypoints) {
		return fmt.Errorf("%w: %d charted depths for %d waypoints", ErrBadRequest, len(req.ChartedDepthsFt), len(req.Waypoints))
	}
	return nil
}

// areaSeverity maps area categories onto hazard severities.
func areaSeverity(t area.Type) string {
	switch t {
	case area.TypeMilitary:
		return "high"
	case area.TypeMarineSanctuary, area.TypeShippingLane:
		return "moderate"
	default:
		return "moderate"
	}
}

func (s *Service) checkAreas(ctx context.Context, req RouteRequest, out *RouteAssessment) {
	conflicts := s.areas.CheckRoute(ctx, req.Waypoints)

	ids := make([]string, 0, len(conflicts))
	for id := range conflicts {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		a := conflicts[id]
		out.AreaConflicts = append(out.AreaConflicts, a)

		severity := areaSeverity(a.Type)
		desc := fmt.Sprintf("route crosses %s (%s), authority: %s", a.Name, a.Type, a.Authority)
		out.Hazards = append(out.Hazards, Hazard{
			Type: "restricted_area", Severity: severity, Description: desc,
		})
		s.audit.HazardDetected(req.RequestID, "restricted_area", severity, req.Waypoints[0], desc)

		w := Warning{
			ID: newID(), Type: "restricted_area", Severity: severity,
			Message: fmt.Sprintf("%s: %s", a.Name, firstRestriction(a)),
		}
		out.Warnings = append(out.Warnings, w)
		s.audit.WarningGenerated(req.RequestID, string(w.ID), w.Type, w.Severity, w.Message)
	}
}

func firstRestriction(a area.RestrictedArea) string {
	if len(a.Restrictions) > 0 {
		return a.Restrictions[0]
	}
	return a.Description
}

func (s *Service) checkDepths(req RouteRequest, out *RouteAssessment) error {
	if req.VesselDraftFt <= 0 || len(req.ChartedDepthsFt) == 0 {
		if req.VesselDraftFt > 0 {
			// Draft given but no soundings: note the data gap.
			s.audit.DataSourceUsed(req.RequestID, "charted_depths", false)
		}
		return nil
	}

	for i, charted := range req.ChartedDepthsFt {
		calc, err := s.depth.Calculate(req.Waypoints[i], charted, req.VesselDraftFt, req.TidalHeightFt)
		if err != nil {
			return fmt.Errorf("%w: waypoint %d: %v", ErrBadRequest, i, err)
		}

		// Crew experience widens the required margin; a clearance that
		// meets the base minimum may still be flagged for a green crew.
		adjusted := s.depth.AdjustForCrewExperience(calc.MinimumClearanceFt, req.CrewExperience)
		groundingRisk := calc.IsGroundingRisk || calc.ClearanceFt < adjusted

		out.DepthResults = append(out.DepthResults, calc)
		if !groundingRisk {
			continue
		}

		severity := string(calc.Severity)
		if calc.Severity == depth.SeveritySafe || calc.Severity == depth.SeverityModerate {
			severity = string(depth.SeverityHigh)
		}
		out.Hazards = append(out.Hazards, Hazard{
			Type: "shallow_water", Severity: severity,
			Location: &req.Waypoints[i], Description: calc.Recommendation,
		})
		s.audit.HazardDetected(req.RequestID, "shallow_water", severity, req.Waypoints[i], calc.Recommendation)

		w := Warning{ID: newID(), Type: "shallow_water", Severity: severity, Message: calc.Recommendation}
		out.Warnings = append(out.Warnings, w)
		s.audit.WarningGenerated(req.RequestID, string(w.ID), w.Type, w.Severity, w.Message)
	}
	return nil
}

func (s *Service) checkWeather(req RouteRequest, out *RouteAssessment) {
	if len(req.Observations) == 0 {
		return
	}
	s.audit.DataSourceUsed(req.RequestID, "weather_observations", true)

	out.Pattern = s.detector.AnalyzePattern(req.Observations)
	if out.Pattern != nil {
		severity := "high"
		if out.Pattern.PredictedImpact.RecommendedAction == weather.ActionShelterImmediately {
			severity = "critical"
		}
		desc := fmt.Sprintf("%s: %s", out.Pattern.Type, out.Pattern.Intensity)
		out.Hazards = append(out.Hazards, Hazard{Type: "severe_weather", Severity: severity, Description: desc})
		s.audit.HazardDetected(req.RequestID, "severe_weather", severity, req.Waypoints[0], desc)

		w := Warning{ID: newID(), Type: "severe_weather", Severity: severity, Message: desc}
		out.Warnings = append(out.Warnings, w)
		s.audit.WarningGenerated(req.RequestID, string(w.ID), w.Type, w.Severity, w.Message)
	}

	delay := s.detector.RecommendDelay(req.Observations, req.PlannedDurationHours)
	out.Delay = &delay
	if delay.ShouldDelay {
		priority := "routine"
		if out.Pattern != nil && out.Pattern.PredictedImpact.RecommendedAction == weather.ActionShelterImmediately {
			priority = "critical"
		}
		s.audit.RecommendationMade(req.RequestID, delay.Reason, priority)
	}
}

func score(hazards []Hazard) int {
	s := 100
	for _, h := range hazards {
		switch h.Severity {
		case "critical":
			s -= penaltyCritical
		case "high":
			s -= penaltyHigh
		default:
			s -= penaltyModerate
		}
	}
	if s < 0 {
		s = 0
	}
	return s
}

func verdict(score int) Verdict {
	switch {
	case score >= 80:
		return VerdictSafe
	case score >= 50:
		return VerdictCaution
	default:
		return VerdictUnsafe
	}
}

func newID() types.ID {
	var b [16]byte
	_, _ = rand.Read(b[:])
	return types.ID(hex.EncodeToString(b[:]))
}
