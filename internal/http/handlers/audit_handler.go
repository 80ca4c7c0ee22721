// README: Audit log query handlers.
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"pelorus/internal/modules/audit"
)

type AuditHandler struct {
	audit *audit.Log
}

func NewAuditHandler(log *audit.Log) *AuditHandler {
	return &AuditHandler{audit: log}
}

// Recent handles GET /api/audit/recent?n=.
func (h *AuditHandler) Recent(c *gin.Context) {
	n := 0
	if v := c.Query("n"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 0 {
			writeError(c, http.StatusBadRequest, "invalid n")
			return
		}
		n = parsed
	}
	writeJSON(c, http.StatusOK, gin.H{"entries": h.audit.Recent(n)})
}

// ByRequest handles GET /api/audit/request/:id.
func (h *AuditHandler) ByRequest(c *gin.Context) {
	writeJSON(c, http.StatusOK, gin.H{"entries": h.audit.ByRequestID(c.Param("id"))})
}

// Critical handles GET /api/audit/critical?n=.
func (h *AuditHandler) Critical(c *gin.Context) {
	n := 0
	if v := c.Query("n"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 0 {
			writeError(c, http.StatusBadRequest, "invalid n")
			return
		}
		n = parsed
	}
	writeJSON(c, http.StatusOK, gin.H{"entries": h.audit.Critical(n)})
}

// Export handles GET /api/audit/export. The full in-memory window, oldest
// first.
func (h *AuditHandler) Export(c *gin.Context) {
	entries := h.audit.Export()
	writeJSON(c, http.StatusOK, gin.H{"count": len(entries), "entries": entries})
}
