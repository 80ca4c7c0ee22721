// README: Registry tests (seed catalog, route sampling, refresh merge).
package area

import (
	"context"
	"errors"
	"testing"
	"time"

	"pelorus/internal/types"
)

type fakeProvider struct {
	areas []RestrictedArea
	err   error
	calls int
}

func (f *fakeProvider) QueryActiveAreas(ctx context.Context) ([]RestrictedArea, error) {
	f.calls++
	return f.areas, f.err
}

func newTestRegistry(p Provider) *Registry {
	return NewRegistry(p, DefaultConfig(), nil)
}

func TestDefaultSeedCategories(t *testing.T) {
	r := newTestRegistry(nil)

	for _, typ := range []Type{TypeMilitary, TypeMarineSanctuary, TypeShippingLane} {
		areas := r.AreasByType(typ)
		if len(areas) == 0 {
			t.Fatalf("seed catalog is missing a %s area", typ)
		}
		a := areas[0]
		if len(a.Restrictions) == 0 {
			t.Errorf("%s seed area %q has no restrictions", typ, a.ID)
		}
		if a.Authority == "" {
			t.Errorf("%s seed area %q has no authority", typ, a.ID)
		}
		if (typ == TypeMilitary || typ == TypeMarineSanctuary) && a.Penalty == "" {
			t.Errorf("%s seed area %q has no penalty", typ, a.ID)
		}
	}
}

func TestCheckWaypoint(t *testing.T) {
	r := newTestRegistry(nil)
	ctx := context.Background()

	// Middle of Stellwagen Bank.
	hits := r.CheckWaypoint(ctx, types.Waypoint{Lat: 42.4, Lon: -70.3})
	if len(hits) != 1 || hits[0].ID != "sanctuary-stellwagen-bank" {
		t.Fatalf("expected only the sanctuary, got %+v", hits)
	}

	// Open ocean far from anything.
	if hits := r.CheckWaypoint(ctx, types.Waypoint{Lat: 38.0, Lon: -65.0}); len(hits) != 0 {
		t.Fatalf("expected no conflicts offshore, got %+v", hits)
	}
}

// A route whose endpoints both lie outside the sanctuary but whose leg
// passes straight through it must still surface the conflict via segment
// sampling.
func TestCheckRoute_SegmentPassThrough(t *testing.T) {
	r := newTestRegistry(nil)
	route := []types.Waypoint{
		{Lat: 41.5, Lon: -70.3},
		{Lat: 43.0, Lon: -70.3},
	}

	// Sanity: neither endpoint is a direct hit.
	for _, wp := range route {
		for _, a := range r.CheckWaypoint(context.Background(), wp) {
			if a.ID == "sanctuary-stellwagen-bank" {
				t.Fatal("test endpoints must lie outside the sanctuary")
			}
		}
	}

	conflicts := r.CheckRoute(context.Background(), route)
	if _, ok := conflicts["sanctuary-stellwagen-bank"]; !ok {
		t.Fatalf("segment sampling failed to catch the sanctuary crossing, got %v", conflicts)
	}
}

func TestAddRemoveUpsert(t *testing.T) {
	r := newTestRegistry(nil)

	custom := RestrictedArea{
		ID: "test-zone", Name: "Test Zone", Type: TypeOther, Active: true,
		Bounds: &types.GeographicBounds{North: 10.1, South: 10.0, East: 10.1, West: 10.0},
	}
	r.Add(custom)

	hits := r.CheckWaypoint(context.Background(), types.Waypoint{Lat: 10.05, Lon: 10.05})
	if len(hits) != 1 || hits[0].Name != "Test Zone" {
		t.Fatalf("added area not matched: %+v", hits)
	}

	// Upsert by id replaces.
	custom.Name = "Renamed Zone"
	r.Add(custom)
	hits = r.CheckWaypoint(context.Background(), types.Waypoint{Lat: 10.05, Lon: 10.05})
	if len(hits) != 1 || hits[0].Name != "Renamed Zone" {
		t.Fatalf("upsert did not replace: %+v", hits)
	}

	if !r.Remove("test-zone") {
		t.Error("Remove should report true for an existing id")
	}
	if r.Remove("test-zone") {
		t.Error("Remove should report false for a missing id")
	}
}

func TestInactiveAreasNeverMatch(t *testing.T) {
	r := newTestRegistry(nil)
	r.Add(RestrictedArea{
		ID: "dormant", Type: TypeOther, Active: false,
		Bounds: &types.GeographicBounds{North: 1, South: -1, East: 1, West: -1},
	})
	if hits := r.CheckWaypoint(context.Background(), types.Waypoint{}); len(hits) != 0 {
		t.Fatalf("inactive area matched: %+v", hits)
	}
}

func TestAreaWithoutGeometryNeverMatches(t *testing.T) {
	r := newTestRegistry(nil)
	r.Add(RestrictedArea{ID: "ghost", Type: TypeOther, Active: true})
	for _, p := range []types.Waypoint{{}, {Lat: 42, Lon: -70}} {
		for _, a := range r.CheckWaypoint(context.Background(), p) {
			if a.ID == "ghost" {
				t.Fatal("area with neither bounds nor polygon must never match")
			}
		}
	}
}

func TestDistanceToArea(t *testing.T) {
	r := newTestRegistry(nil)
	sanctuary := r.AreasByType(TypeMarineSanctuary)[0]

	// Inside: zero.
	if d := r.DistanceToArea(types.Waypoint{Lat: 42.4, Lon: -70.3}, sanctuary); d != 0 {
		t.Errorf("distance from inside = %f, want 0", d)
	}

	// Half a degree south of the southern edge. The flat min-over-axes
	// approximation takes the smaller longitudinal edge distance here
	// (0.28 deg * 60 * cos(41.58) ~ 12.6 nm), not the 30 nm of latitude.
	d := r.DistanceToArea(types.Waypoint{Lat: 41.58, Lon: -70.3}, sanctuary)
	if d < 10 || d > 15 {
		t.Errorf("distance south of bounds = %f, want ~12.6", d)
	}

	// Polygon area: a point just east of the TSS eastern edge (~2.7 nm).
	tss := r.AreasByType(TypeShippingLane)[0]
	d = r.DistanceToArea(types.Waypoint{Lat: 42.28, Lon: -70.40}, tss)
	if d < 1 || d > 5 {
		t.Errorf("distance to TSS polygon = %f, want ~2.7", d)
	}

	// No geometry: unreachable.
	if d := r.DistanceToArea(types.Waypoint{}, RestrictedArea{ID: "ghost"}); !isInf(d) {
		t.Errorf("distance to geometry-less area = %f, want +Inf", d)
	}
}

func isInf(f float64) bool { return f > 1e308 }

func TestRefreshMergePrecedence(t *testing.T) {
	storeSanctuary := RestrictedArea{
		ID: "sanctuary-stellwagen-bank", Name: "Stellwagen (store revision)",
		Type: TypeMarineSanctuary, Active: true,
		Bounds: &types.GeographicBounds{North: 42.80, South: 42.00, East: -70.00, West: -70.70},
	}
	storeNew := RestrictedArea{
		ID: "speed-cape-cod-canal", Name: "Cape Cod Canal Speed Zone",
		Type: TypeSpeedRestricted, Active: true,
		Bounds: &types.GeographicBounds{North: 41.79, South: 41.73, East: -70.48, West: -70.62},
	}
	p := &fakeProvider{areas: []RestrictedArea{storeSanctuary, storeNew}}
	r := newTestRegistry(p)

	if err := r.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	// Store row overrides the default with the same id.
	got := r.AreasByType(TypeMarineSanctuary)
	if len(got) != 1 || got[0].Name != "Stellwagen (store revision)" {
		t.Fatalf("store row should override default by id: %+v", got)
	}
	// Store-only row is added.
	if got := r.AreasByType(TypeSpeedRestricted); len(got) != 1 {
		t.Fatalf("store-only area missing: %+v", got)
	}
	// Defaults absent from the store are kept as fallback.
	if got := r.AreasByType(TypeMilitary); len(got) != 1 {
		t.Fatalf("default military area should survive refresh: %+v", got)
	}
}

func TestRefreshFailureKeepsState(t *testing.T) {
	p := &fakeProvider{err: errors.New("store down")}
	r := newTestRegistry(p)

	before := len(r.ActiveAreas())
	r.EnsureFresh(context.Background())
	after := len(r.ActiveAreas())

	if before != after || after == 0 {
		t.Fatalf("catalog changed across failed refresh: before=%d after=%d", before, after)
	}
}

func TestEnsureFreshRespectsInterval(t *testing.T) {
	p := &fakeProvider{}
	cfg := DefaultConfig()
	cfg.RefreshInterval = time.Hour
	r := NewRegistry(p, cfg, nil)

	r.EnsureFresh(context.Background())
	r.EnsureFresh(context.Background())
	if p.calls != 1 {
		t.Fatalf("expected a single refresh inside the interval, got %d", p.calls)
	}
}
