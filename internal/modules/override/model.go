// README: Safety override types and the non-overridable/witness rule sets.
package override

import (
	"time"

	"pelorus/internal/types"
)

// Request is a user's ask to suppress a previously issued warning.
type Request struct {
	RequestID     string
	UserID        string
	WarningID     string
	WarningType   string
	Justification string
	WitnessedBy   string
	// ExpirationHours limits how long the override holds; 0 means no expiry.
	ExpirationHours int
}

// SafetyOverride is an applied override. Immutable once created except for
// revocation; expiry is checked at query time rather than actively swept.
type SafetyOverride struct {
	ID            types.ID
	UserID        string
	Timestamp     time.Time
	WarningID     string
	WarningType   string
	Justification string
	Acknowledged  bool
	WitnessedBy   string
	ExpiresAt     *time.Time
}

// ValidationResult is the structured outcome of Validate. RequiresWitness
// is informational even when validation succeeds.
type ValidationResult struct {
	CanOverride     bool
	Reason          string
	RequiresWitness bool
}

// Statistics summarizes the recorded overrides.
type Statistics struct {
	Total   int
	Active  int
	Expired int
	ByType  map[string]int
}

// nonOverridable warning types represent immediate danger and can never be
// overridden, regardless of the caller's role.
var nonOverridable = map[string]bool{
	"grounding_imminent":     true,
	"collision_course":       true,
	"vessel_limits_exceeded": true,
}

// witnessRequired warning types are critical enough that a second crew
// member must witness the override.
var witnessRequired = map[string]bool{
	"severe_weather":  true,
	"shallow_water":   true,
	"restricted_area": true,
}

const minJustificationLen = 10
