// README: Restricted area catalog handlers.
package handlers

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"pelorus/internal/modules/area"
	"pelorus/internal/types"
)

// AreaStore is the durable side of the catalog. Nil when running without
// Postgres; mutations then apply to the in-memory registry only.
type AreaStore interface {
	UpsertArea(ctx context.Context, a area.RestrictedArea) error
	DeleteArea(ctx context.Context, id string) (bool, error)
}

type AreaHandler struct {
	areas *area.Registry
	store AreaStore
}

func NewAreaHandler(registry *area.Registry, store AreaStore) *AreaHandler {
	return &AreaHandler{areas: registry, store: store}
}

// List handles GET /api/areas. An optional ?type= filters by category.
func (h *AreaHandler) List(c *gin.Context) {
	h.areas.EnsureFresh(c.Request.Context())

	var items []area.RestrictedArea
	if t := c.Query("type"); t != "" {
		items = h.areas.AreasByType(area.Type(t))
	} else {
		items = h.areas.ActiveAreas()
	}

	out := make([]gin.H, 0, len(items))
	for _, a := range items {
		out = append(out, areaDTO(a))
	}
	writeJSON(c, http.StatusOK, gin.H{"areas": out})
}

type positionCheckReq struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// CheckPosition handles POST /api/areas/check.
func (h *AreaHandler) CheckPosition(c *gin.Context) {
	var req positionCheckReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Lat < -90 || req.Lat > 90 || req.Lon < -180 || req.Lon > 180 {
		writeError(c, http.StatusBadRequest, "position out of range")
		return
	}

	hits := h.areas.CheckWaypoint(c.Request.Context(), types.Waypoint{Lat: req.Lat, Lon: req.Lon})
	out := make([]gin.H, 0, len(hits))
	for _, a := range hits {
		out = append(out, areaDTO(a))
	}
	writeJSON(c, http.StatusOK, gin.H{"inside": len(out) > 0, "areas": out})
}

// Distance handles GET /api/areas/:id/distance?lat=&lon=.
func (h *AreaHandler) Distance(c *gin.Context) {
	lat, errLat := strconv.ParseFloat(c.Query("lat"), 64)
	lon, errLon := strconv.ParseFloat(c.Query("lon"), 64)
	if errLat != nil || errLon != nil {
		writeError(c, http.StatusBadRequest, "lat and lon query parameters required")
		return
	}

	id := c.Param("id")
	var target *area.RestrictedArea
	for _, a := range h.areas.ActiveAreas() {
		if a.ID == id {
			hit := a
			target = &hit
			break
		}
	}
	if target == nil {
		writeError(c, http.StatusNotFound, "area not found")
		return
	}

	d := h.areas.DistanceToArea(types.Waypoint{Lat: lat, Lon: lon}, *target)
	if math.IsInf(d, 1) {
		writeError(c, http.StatusUnprocessableEntity, "area has no geometry")
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"area_id": id, "distance_nm": d, "inside": d == 0})
}

type upsertAreaReq struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	Type         string        `json:"type"`
	North        *float64      `json:"north"`
	South        *float64      `json:"south"`
	East         *float64      `json:"east"`
	West         *float64      `json:"west"`
	Polygon      []waypointDTO `json:"polygon"`
	Description  string        `json:"description"`
	Restrictions []string      `json:"restrictions"`
	Active       *bool         `json:"active"`
	Authority    string        `json:"authority"`
	Penalty      string        `json:"penalty"`
}

// Upsert handles PUT /api/areas.
func (h *AreaHandler) Upsert(c *gin.Context) {
	var req upsertAreaReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	req.ID = strings.TrimSpace(req.ID)
	if req.ID == "" || strings.TrimSpace(req.Name) == "" {
		writeError(c, http.StatusBadRequest, "missing id or name")
		return
	}

	a := area.RestrictedArea{
		ID:           req.ID,
		Name:         req.Name,
		Type:         area.Type(req.Type),
		Polygon:      toWaypoints(req.Polygon),
		Description:  req.Description,
		Restrictions: req.Restrictions,
		Active:       true,
		Schedule:     area.Schedule{Start: time.Now().UTC()},
		Authority:    req.Authority,
		Penalty:      req.Penalty,
	}
	if req.Active != nil {
		a.Active = *req.Active
	}
	if req.North != nil && req.South != nil && req.East != nil && req.West != nil {
		a.Bounds = &types.GeographicBounds{
			North: *req.North, South: *req.South, East: *req.East, West: *req.West,
		}
	}
	if a.Bounds == nil && len(a.Polygon) < 3 {
		writeError(c, http.StatusBadRequest, "area needs bounds or a polygon of 3+ vertices")
		return
	}

	if h.store != nil {
		if err := h.store.UpsertArea(c.Request.Context(), a); err != nil {
			writeError(c, http.StatusInternalServerError, "internal error")
			return
		}
	}
	h.areas.Add(a)
	writeJSON(c, http.StatusOK, gin.H{"area_id": a.ID})
}

// Delete handles DELETE /api/areas/:id.
func (h *AreaHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if h.store != nil {
		if _, err := h.store.DeleteArea(c.Request.Context(), id); err != nil {
			writeError(c, http.StatusInternalServerError, "internal error")
			return
		}
	}
	if !h.areas.Remove(id) {
		writeError(c, http.StatusNotFound, "area not found")
		return
	}
	c.Status(http.StatusNoContent)
}

func areaDTO(a area.RestrictedArea) gin.H {
	out := gin.H{
		"id":           a.ID,
		"name":         a.Name,
		"type":         a.Type,
		"description":  a.Description,
		"restrictions": a.Restrictions,
		"active":       a.Active,
		"authority":    a.Authority,
	}
	if a.Penalty != "" {
		out["penalty"] = a.Penalty
	}
	if a.Bounds != nil {
		out["bounds"] = gin.H{
			"north": a.Bounds.North, "south": a.Bounds.South,
			"east": a.Bounds.East, "west": a.Bounds.West,
		}
	}
	if len(a.Polygon) > 0 {
		poly := make([]gin.H, 0, len(a.Polygon))
		for _, p := range a.Polygon {
			poly = append(poly, gin.H{"lat": p.Lat, "lon": p.Lon})
		}
		out["polygon"] = poly
	}
	return out
}
