// README: Passage briefing handler (Gemini-backed prose summary).
package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"pelorus/internal/ai"
	"pelorus/internal/modules/depth"
	"pelorus/internal/modules/safety"
)

type BriefingHandler struct {
	safety   *safety.Service
	provider ai.BriefingProvider
}

// NewBriefingHandler wires the briefing surface. provider may be nil when
// no API key is configured; the route then answers 503.
func NewBriefingHandler(svc *safety.Service, provider ai.BriefingProvider) *BriefingHandler {
	return &BriefingHandler{safety: svc, provider: provider}
}

// Briefing handles POST /api/safety/briefing. Runs the same analysis as
// route-check, then renders the result as a prose briefing.
func (h *BriefingHandler) Briefing(c *gin.Context) {
	if h.provider == nil {
		writeError(c, http.StatusServiceUnavailable, "briefing provider not configured")
		return
	}

	var req routeCheckReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}

	assessment, err := h.safety.AnalyzeRoute(c.Request.Context(), safety.RouteRequest{
		RequestID:            req.RequestID,
		UserID:               req.UserID,
		Waypoints:            toWaypoints(req.Waypoints),
		ChartedDepthsFt:      req.ChartedDepthsFt,
		TidalHeightFt:        req.TidalHeightFt,
		VesselDraftFt:        req.VesselDraftFt,
		CrewExperience:       depth.CrewExperience(req.CrewExperience),
		Observations:         toObservations(req.Observations),
		PlannedDurationHours: req.PlannedDurationHours,
	})
	if err != nil {
		writeSafetyError(c, err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	text, err := h.provider.GenerateBriefing(ctx, briefingInput(assessment))
	if err != nil {
		writeError(c, http.StatusBadGateway, "briefing generation failed")
		return
	}

	writeJSON(c, http.StatusOK, gin.H{
		"request_id": assessment.RequestID,
		"verdict":    assessment.Verdict,
		"briefing":   text,
	})
}

func briefingInput(a safety.RouteAssessment) ai.BriefingInput {
	in := ai.BriefingInput{
		Verdict:     string(a.Verdict),
		SafetyScore: a.SafetyScore,
	}
	for _, h := range a.Hazards {
		in.Hazards = append(in.Hazards, fmt.Sprintf("%s (%s): %s", h.Type, h.Severity, h.Description))
	}
	for _, ra := range a.AreaConflicts {
		in.AreaConflicts = append(in.AreaConflicts, fmt.Sprintf("%s, authority %s", ra.Name, ra.Authority))
	}
	if a.Pattern != nil {
		in.WeatherNote = fmt.Sprintf("%s, %s", a.Pattern.Type, a.Pattern.Intensity)
	}
	if a.Delay != nil && a.Delay.ShouldDelay {
		in.DelayAdvice = a.Delay.Reason
	}
	return in
}
