// README: Safety override handlers (validate, apply, revoke, stats).
package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"pelorus/internal/modules/override"
	"pelorus/internal/types"
)

type OverrideHandler struct {
	overrides *override.Authority
}

func NewOverrideHandler(authority *override.Authority) *OverrideHandler {
	return &OverrideHandler{overrides: authority}
}

type overrideReq struct {
	RequestID       string `json:"request_id"`
	UserID          string `json:"user_id"`
	WarningID       string `json:"warning_id"`
	WarningType     string `json:"warning_type"`
	Justification   string `json:"justification"`
	WitnessedBy     string `json:"witnessed_by"`
	ExpirationHours int    `json:"expiration_hours"`
}

func (r overrideReq) toRequest() override.Request {
	return override.Request{
		RequestID:       strings.TrimSpace(r.RequestID),
		UserID:          strings.TrimSpace(r.UserID),
		WarningID:       strings.TrimSpace(r.WarningID),
		WarningType:     strings.TrimSpace(r.WarningType),
		Justification:   r.Justification,
		WitnessedBy:     strings.TrimSpace(r.WitnessedBy),
		ExpirationHours: r.ExpirationHours,
	}
}

// Validate handles POST /api/overrides/validate. Dry run; nothing is
// recorded.
func (h *OverrideHandler) Validate(c *gin.Context) {
	var req overrideReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}

	result := h.overrides.Validate(req.toRequest())
	writeJSON(c, http.StatusOK, gin.H{
		"can_override":     result.CanOverride,
		"reason":           result.Reason,
		"requires_witness": result.RequiresWitness,
	})
}

// Apply handles POST /api/overrides.
func (h *OverrideHandler) Apply(c *gin.Context) {
	var req overrideReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	if req.UserID == "" || req.WarningID == "" {
		writeError(c, http.StatusBadRequest, "missing user_id or warning_id")
		return
	}

	ov, err := h.overrides.Apply(req.toRequest())
	if err != nil {
		if errors.Is(err, override.ErrRejected) {
			writeError(c, http.StatusConflict, err.Error())
			return
		}
		writeError(c, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(c, http.StatusCreated, overrideDTO(ov))
}

type revokeReq struct {
	Reason string `json:"reason"`
}

// Revoke handles POST /api/overrides/:id/revoke.
func (h *OverrideHandler) Revoke(c *gin.Context) {
	id := c.Param("id")
	if !isValidID(id) {
		writeError(c, http.StatusBadRequest, "invalid override id")
		return
	}

	var req revokeReq
	_ = c.ShouldBindJSON(&req)

	if !h.overrides.Revoke(types.ID(id), strings.TrimSpace(req.Reason)) {
		writeError(c, http.StatusNotFound, "override not found")
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"revoked": true})
}

// ByUser handles GET /api/overrides/user/:id.
func (h *OverrideHandler) ByUser(c *gin.Context) {
	items := h.overrides.ByUser(c.Param("id"))
	out := make([]gin.H, 0, len(items))
	for _, ov := range items {
		out = append(out, overrideDTO(ov))
	}
	writeJSON(c, http.StatusOK, gin.H{"overrides": out})
}

// Stats handles GET /api/overrides/stats.
func (h *OverrideHandler) Stats(c *gin.Context) {
	s := h.overrides.Stats()
	writeJSON(c, http.StatusOK, gin.H{
		"total":   s.Total,
		"active":  s.Active,
		"expired": s.Expired,
		"by_type": s.ByType,
	})
}

func overrideDTO(ov override.SafetyOverride) gin.H {
	out := gin.H{
		"id":            ov.ID,
		"user_id":       ov.UserID,
		"timestamp":     ov.Timestamp,
		"warning_id":    ov.WarningID,
		"warning_type":  ov.WarningType,
		"justification": ov.Justification,
		"acknowledged":  ov.Acknowledged,
	}
	if ov.WitnessedBy != "" {
		out["witnessed_by"] = ov.WitnessedBy
	}
	if ov.ExpiresAt != nil {
		out["expires_at"] = ov.ExpiresAt
	}
	return out
}
