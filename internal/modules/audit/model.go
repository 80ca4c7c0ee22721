// README: Audit entry types and result derivation rules.
package audit

import (
	"time"

	"pelorus/internal/types"
)

// Action names the kind of safety decision being recorded.
type Action string

const (
	ActionRouteAnalyzed      Action = "route_analyzed"
	ActionWarningGenerated   Action = "warning_generated"
	ActionOverrideApplied    Action = "override_applied"
	ActionHazardDetected     Action = "hazard_detected"
	ActionRecommendationMade Action = "recommendation_made"
	ActionDataSourceUsed     Action = "data_source_used"
)

// Result grades the outcome recorded by an entry.
type Result string

const (
	ResultSuccess  Result = "success"
	ResultWarning  Result = "warning"
	ResultCritical Result = "critical"
)

// Entry is a single append-only audit record. Details carries the
// action-specific payload.
type Entry struct {
	ID        types.ID       `json:"id"`
	Timestamp time.Time      `json:"timestamp"`
	UserID    string         `json:"user_id,omitempty"`
	RequestID string         `json:"request_id"`
	Action    Action         `json:"action"`
	Details   map[string]any `json:"details"`
	Result    Result         `json:"result"`
}
