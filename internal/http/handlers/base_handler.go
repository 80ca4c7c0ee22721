// README: Base handler utilities (JSON helpers, error mapping).
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"pelorus/internal/modules/depth"
	"pelorus/internal/modules/override"
	"pelorus/internal/modules/safety"
)

type errorResponse struct {
	Error string `json:"error"`
}

// isValidID ensures IDs are hex and 32 chars (matches current ID generator).
func isValidID(v string) bool {
	if len(v) > 32 {
		return false
	}
	for _, c := range v {
		if (c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') {
			continue
		}
		return false
	}
	return true
}

func writeJSON(c *gin.Context, status int, v any) {
	c.JSON(status, v)
}

func writeError(c *gin.Context, status int, msg string) {
	writeJSON(c, status, errorResponse{Error: msg})
}

func writeSafetyError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, safety.ErrBadRequest),
		errors.Is(err, depth.ErrInvalidDepth),
		errors.Is(err, depth.ErrInvalidDraft):
		writeError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, override.ErrNotFound):
		writeError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, override.ErrRejected):
		writeError(c, http.StatusConflict, err.Error())
	default:
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}
