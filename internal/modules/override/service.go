// README: Override authority; validates, records, and expires warning overrides.
package override

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"pelorus/internal/types"
)

var (
	ErrRejected = errors.New("override rejected")
	ErrNotFound = errors.New("override not found")
)

// Auditor receives the override audit event. Every applied override must
// reach the audit trail.
type Auditor interface {
	OverrideApplied(requestID, userID, overrideID, warningID, warningType, justification string)
}

// Authority owns the override collection exclusively. Keys are generated
// override ids; queries go by warning id.
type Authority struct {
	mu        sync.Mutex
	overrides map[types.ID]SafetyOverride

	audit Auditor
	log   *slog.Logger
}

// NewAuthority returns an Authority. audit and log may be nil, though a nil
// auditor should only appear in tests.
func NewAuthority(audit Auditor, log *slog.Logger) *Authority {
	return &Authority{
		overrides: make(map[types.ID]SafetyOverride),
		audit:     audit,
		log:       log,
	}
}

// Validate applies the override business rules without recording anything.
func (a *Authority) Validate(req Request) ValidationResult {
	if nonOverridable[req.WarningType] {
		return ValidationResult{
			Reason: fmt.Sprintf("warning type %q represents immediate danger and can never be overridden", req.WarningType),
		}
	}
	if len(strings.TrimSpace(req.Justification)) < minJustificationLen {
		return ValidationResult{
			Reason:          fmt.Sprintf("justification must be at least %d characters", minJustificationLen),
			RequiresWitness: witnessRequired[req.WarningType],
		}
	}
	if witnessRequired[req.WarningType] && req.WitnessedBy == "" {
		return ValidationResult{
			Reason:          fmt.Sprintf("warning type %q requires a witness", req.WarningType),
			RequiresWitness: true,
		}
	}
	return ValidationResult{
		CanOverride:     true,
		RequiresWitness: witnessRequired[req.WarningType],
	}
}

// Apply validates the request again (defense in depth against callers that
// skipped Validate), records the override, and pushes the audit event.
func (a *Authority) Apply(req Request) (SafetyOverride, error) {
	result := a.Validate(req)
	if !result.CanOverride {
		return SafetyOverride{}, fmt.Errorf("%w: %s", ErrRejected, result.Reason)
	}

	ov := SafetyOverride{
		ID:            newID(),
		UserID:        req.UserID,
		Timestamp:     time.Now().UTC(),
		WarningID:     req.WarningID,
		WarningType:   req.WarningType,
		Justification: strings.TrimSpace(req.Justification),
		Acknowledged:  true,
		WitnessedBy:   req.WitnessedBy,
	}
	if req.ExpirationHours > 0 {
		exp := ov.Timestamp.Add(time.Duration(req.ExpirationHours) * time.Hour)
		ov.ExpiresAt = &exp
	}

	a.mu.Lock()
	a.overrides[ov.ID] = ov
	a.mu.Unlock()

	if a.log != nil {
		a.log.Warn("safety warning overridden",
			"override_id", ov.ID, "user_id", ov.UserID,
			"warning_id", ov.WarningID, "warning_type", ov.WarningType,
			"witnessed_by", ov.WitnessedBy, "expires_at", ov.ExpiresAt)
	}
	if a.audit != nil {
		a.audit.OverrideApplied(req.RequestID, ov.UserID, string(ov.ID), ov.WarningID, ov.WarningType, ov.Justification)
	}
	return ov, nil
}

// IsWarningOverridden reports whether any acknowledged, unexpired override
// exists for the warning. Historical overrides for the same warning do not
// shadow each other: a single live one is enough.
func (a *Authority) IsWarningOverridden(warningID string) bool {
	now := time.Now()
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, ov := range a.overrides {
		if ov.WarningID != warningID || !ov.Acknowledged {
			continue
		}
		if ov.ExpiresAt == nil || ov.ExpiresAt.After(now) {
			return true
		}
	}
	return false
}

// Revoke removes an override by its id and reports whether it existed.
func (a *Authority) Revoke(id types.ID, reason string) bool {
	a.mu.Lock()
	ov, ok := a.overrides[id]
	if ok {
		delete(a.overrides, id)
	}
	a.mu.Unlock()

	if ok && a.log != nil {
		a.log.Warn("safety override revoked",
			"override_id", id, "warning_id", ov.WarningID, "reason", reason)
	}
	return ok
}

// ByUser returns the user's overrides, oldest first.
func (a *Authority) ByUser(userID string) []SafetyOverride {
	a.mu.Lock()
	defer a.mu.Unlock()
	var out []SafetyOverride
	for _, ov := range a.overrides {
		if ov.UserID == userID {
			out = append(out, ov)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out
}

// Stats counts overrides by type and by expiry state.
func (a *Authority) Stats() Statistics {
	now := time.Now()
	stats := Statistics{ByType: make(map[string]int)}

	a.mu.Lock()
	defer a.mu.Unlock()
	for _, ov := range a.overrides {
		stats.Total++
		stats.ByType[ov.WarningType]++
		if ov.ExpiresAt != nil && !ov.ExpiresAt.After(now) {
			stats.Expired++
		} else {
			stats.Active++
		}
	}
	return stats
}

// CleanupExpired drops overrides whose expiry has passed and returns how
// many were removed. Expiry is otherwise purely query-time.
func (a *Authority) CleanupExpired() int {
	now := time.Now()
	a.mu.Lock()
	defer a.mu.Unlock()

	removed := 0
	for id, ov := range a.overrides {
		if ov.ExpiresAt != nil && !ov.ExpiresAt.After(now) {
			delete(a.overrides, id)
			removed++
		}
	}
	return removed
}

func newID() types.ID {
	var b [16]byte
	_, _ = rand.Read(b[:])
	return types.ID(hex.EncodeToString(b[:]))
}
