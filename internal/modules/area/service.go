// README: Restricted area registry; conflict queries, CRUD, and lazy store refresh.
package area

import (
	"context"
	"log/slog"
	"math"
	"sort"
	"sync"
	"time"

	"pelorus/internal/geo"
	"pelorus/internal/types"
)

// Provider fetches the active area catalog from a backing store. A nil
// Provider disables refresh entirely; the registry then serves the seed
// catalog plus runtime mutations.
type Provider interface {
	QueryActiveAreas(ctx context.Context) ([]RestrictedArea, error)
}

// Config tunes registry behavior.
type Config struct {
	// RefreshInterval is the minimum time between backing-store refreshes.
	RefreshInterval time.Duration
	// SegmentSamples is the number of interpolation intervals per route leg
	// in CheckRoute. 20 intervals (21 points per leg) is the calibrated
	// precision/performance trade-off.
	SegmentSamples int
}

// DefaultConfig returns the standard refresh and sampling settings.
func DefaultConfig() Config {
	return Config{
		RefreshInterval: 5 * time.Minute,
		SegmentSamples:  20,
	}
}

// Registry holds the in-memory area catalog keyed by id. The mutex makes
// the registry safe under concurrent HTTP handlers; the catalog itself is
// only ever replaced or mutated under it, and all returned slices are
// copies.
type Registry struct {
	mu          sync.Mutex
	areas       map[string]RestrictedArea
	lastRefresh time.Time

	provider Provider
	cfg      Config
	log      *slog.Logger
}

// NewRegistry seeds the catalog from DefaultAreas. provider may be nil.
func NewRegistry(provider Provider, cfg Config, log *slog.Logger) *Registry {
	if cfg.SegmentSamples < 1 {
		cfg.SegmentSamples = DefaultConfig().SegmentSamples
	}
	if cfg.RefreshInterval <= 0 {
		cfg.RefreshInterval = DefaultConfig().RefreshInterval
	}
	r := &Registry{
		areas:    make(map[string]RestrictedArea),
		provider: provider,
		cfg:      cfg,
		log:      log,
	}
	for _, a := range DefaultAreas() {
		r.areas[a.ID] = a
	}
	return r
}

// matches reports whether the area's geometry contains p. Bounds win when
// present; otherwise a polygon with at least 3 vertices is tested; an area
// with neither geometry never matches.
func matches(a RestrictedArea, p types.Waypoint) bool {
	if !a.Active {
		return false
	}
	if a.Bounds != nil {
		return geo.PointInBounds(p, *a.Bounds)
	}
	return geo.PointInPolygon(p, a.Polygon)
}

// CheckWaypoint returns every active area containing the point, sorted by id.
func (r *Registry) CheckWaypoint(ctx context.Context, p types.Waypoint) []RestrictedArea {
	r.EnsureFresh(ctx)

	r.mu.Lock()
	defer r.mu.Unlock()

	var hits []RestrictedArea
	for _, a := range r.areas {
		if matches(a, p) {
			hits = append(hits, a)
		}
	}
	sortByID(hits)
	return hits
}

// CheckRoute returns every active area touched by the route, keyed by area
// id. Beyond the explicit waypoints, each leg is interpolated into
// SegmentSamples intervals and each sample point is checked, so a route that
// merely passes through an area without a waypoint inside it is still
// caught.
func (r *Registry) CheckRoute(ctx context.Context, waypoints []types.Waypoint) map[string]RestrictedArea {
	r.EnsureFresh(ctx)

	r.mu.Lock()
	defer r.mu.Unlock()

	conflicts := make(map[string]RestrictedArea)
	check := func(p types.Waypoint) {
		for _, a := range r.areas {
			if _, seen := conflicts[a.ID]; seen {
				continue
			}
			if matches(a, p) {
				conflicts[a.ID] = a
			}
		}
	}

	for _, wp := range waypoints {
		check(wp)
	}
	for i := 1; i < len(waypoints); i++ {
		for _, p := range geo.SampleSegment(waypoints[i-1], waypoints[i], r.cfg.SegmentSamples) {
			check(p)
		}
	}
	return conflicts
}

// Add upserts an area by id: replace when the id exists, insert otherwise.
// Last write wins; there is no versioning.
func (r *Registry) Add(a RestrictedArea) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.areas[a.ID] = a
}

// Remove deletes an area by id and reports whether anything was removed.
func (r *Registry) Remove(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.areas[id]; !ok {
		return false
	}
	delete(r.areas, id)
	return true
}

// ActiveAreas returns a sorted snapshot of the active areas.
func (r *Registry) ActiveAreas() []RestrictedArea {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []RestrictedArea
	for _, a := range r.areas {
		if a.Active {
			out = append(out, a)
		}
	}
	sortByID(out)
	return out
}

// AreasByType returns a sorted snapshot of areas of the given type,
// including inactive ones.
func (r *Registry) AreasByType(t Type) []RestrictedArea {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []RestrictedArea
	for _, a := range r.areas {
		if a.Type == t {
			out = append(out, a)
		}
	}
	sortByID(out)
	return out
}

// DistanceToArea returns the distance in nautical miles from p to the
// nearest edge of the area, or 0 when p is inside it. Bounds distances use
// the flat-earth degree conversions (lat 60 nm/deg, lon scaled by cos lat);
// polygon distances take the minimum over edge segments. An area with no
// geometry is infinitely far away.
func (r *Registry) DistanceToArea(p types.Waypoint, a RestrictedArea) float64 {
	if a.Bounds != nil {
		b := *a.Bounds
		if geo.PointInBounds(p, b) {
			return 0
		}
		latDist := math.Min(math.Abs(p.Lat-b.North), math.Abs(p.Lat-b.South)) * 60.0
		lonDist := math.Min(math.Abs(p.Lon-b.East), math.Abs(p.Lon-b.West)) * 60.0 * math.Cos(p.Lat*math.Pi/180.0)
		return math.Min(latDist, lonDist)
	}
	if len(a.Polygon) >= 3 {
		if geo.PointInPolygon(p, a.Polygon) {
			return 0
		}
		min := math.Inf(1)
		for i := range a.Polygon {
			j := (i + 1) % len(a.Polygon)
			if d := geo.DistanceToSegmentNm(p, a.Polygon[i], a.Polygon[j]); d < min {
				min = d
			}
		}
		return min
	}
	return math.Inf(1)
}

// Refresh fetches the active catalog from the backing store and rebuilds the
// in-memory map as defaults overlaid by store rows: a store row replaces the
// default with the same id, and defaults absent from the store are kept as
// fallback. The previous state is kept untouched on fetch failure.
func (r *Registry) Refresh(ctx context.Context) error {
	if r.provider == nil {
		return nil
	}
	rows, err := r.provider.QueryActiveAreas(ctx)
	if err != nil {
		return err
	}

	merged := make(map[string]RestrictedArea)
	for _, a := range DefaultAreas() {
		merged[a.ID] = a
	}
	for _, a := range rows {
		if a.ID == "" {
			continue
		}
		merged[a.ID] = a
	}

	r.mu.Lock()
	r.areas = merged
	r.lastRefresh = time.Now()
	r.mu.Unlock()

	if r.log != nil {
		r.log.Info("restricted area catalog refreshed",
			"store_rows", len(rows), "total_areas", len(merged))
	}
	return nil
}

// EnsureFresh triggers a Refresh only when the refresh interval has elapsed.
// This is a lazy pull on the query path, not a background timer. Refresh
// failures are logged and swallowed; the caller always proceeds against the
// last-known-good catalog.
func (r *Registry) EnsureFresh(ctx context.Context) {
	if r.provider == nil {
		return
	}
	r.mu.Lock()
	stale := time.Since(r.lastRefresh) > r.cfg.RefreshInterval
	r.mu.Unlock()
	if !stale {
		return
	}
	if err := r.Refresh(ctx); err != nil && r.log != nil {
		r.log.Error("restricted area refresh failed, keeping previous catalog", "error", err)
	}
}

func sortByID(areas []RestrictedArea) {
	sort.Slice(areas, func(i, j int) bool { return areas[i].ID < areas[j].ID })
}
