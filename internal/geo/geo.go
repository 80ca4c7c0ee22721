// README: Pure geospatial math shared by the safety modules.
package geo

import (
	"math"

	"pelorus/internal/types"
)

// earthRadiusNm is the mean Earth radius in nautical miles.
const earthRadiusNm = 3440.1

// PointInBounds reports whether p lies inside b. All four edges are
// inclusive: a point exactly on a boundary counts as inside, which is the
// conservative reading for restricted-area checks.
func PointInBounds(p types.Waypoint, b types.GeographicBounds) bool {
	return p.Lat >= b.South && p.Lat <= b.North &&
		p.Lon >= b.West && p.Lon <= b.East
}

// PointInPolygon runs the standard ray-casting test over the polygon edges.
// A polygon with fewer than 3 vertices never matches. Boundary points get
// whatever ray casting naturally yields; unlike PointInBounds there is no
// inclusivity guarantee on edges.
func PointInPolygon(p types.Waypoint, polygon []types.Waypoint) bool {
	if len(polygon) < 3 {
		return false
	}
	inside := false
	for i, j := 0, len(polygon)-1; i < len(polygon); j, i = i, i+1 {
		xi, yi := polygon[i].Lon, polygon[i].Lat
		xj, yj := polygon[j].Lon, polygon[j].Lat
		if (yi > p.Lat) != (yj > p.Lat) &&
			p.Lon < (xj-xi)*(p.Lat-yi)/(yj-yi)+xi {
			inside = !inside
		}
	}
	return inside
}

// HaversineNm returns the great-circle distance between two points in
// nautical miles.
func HaversineNm(a, b types.Waypoint) float64 {
	dLat := toRadians(b.Lat - a.Lat)
	dLon := toRadians(b.Lon - a.Lon)

	rLat1 := toRadians(a.Lat)
	rLat2 := toRadians(b.Lat)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rLat1)*math.Cos(rLat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusNm * c
}

// DistanceToSegmentNm returns the distance in nautical miles from p to the
// segment [segStart, segEnd]. The nearest point on the segment is found by
// projecting in raw lat/lon space (degrees treated as planar coordinates,
// clamped to the segment), then the final distance is haversine from that
// point to p. The projection is not geodesically correct; downstream
// expectations are calibrated against this mixed approach, so keep it.
func DistanceToSegmentNm(p, segStart, segEnd types.Waypoint) float64 {
	dx := segEnd.Lon - segStart.Lon
	dy := segEnd.Lat - segStart.Lat

	if dx == 0 && dy == 0 {
		return HaversineNm(p, segStart)
	}

	t := ((p.Lon-segStart.Lon)*dx + (p.Lat-segStart.Lat)*dy) / (dx*dx + dy*dy)
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}

	nearest := types.Waypoint{
		Lat: segStart.Lat + t*dy,
		Lon: segStart.Lon + t*dx,
	}
	return HaversineNm(p, nearest)
}

// Bearing returns the initial great-circle bearing from a to b in degrees,
// normalized to [0,360).
func Bearing(a, b types.Waypoint) float64 {
	rLat1 := toRadians(a.Lat)
	rLat2 := toRadians(b.Lat)
	dLon := toRadians(b.Lon - a.Lon)

	y := math.Sin(dLon) * math.Cos(rLat2)
	x := math.Cos(rLat1)*math.Sin(rLat2) - math.Sin(rLat1)*math.Cos(rLat2)*math.Cos(dLon)

	deg := math.Atan2(y, x) * 180.0 / math.Pi
	return math.Mod(deg+360.0, 360.0)
}

// BoundsOverlap reports whether two rectangles share any area.
func BoundsOverlap(a, b types.GeographicBounds) bool {
	return !(a.East < b.West || a.West > b.East ||
		a.North < b.South || a.South > b.North)
}

// SampleSegment linearly interpolates intervals+1 equally spaced points
// between a and b, including both endpoints. Interpolation is in raw lat/lon
// space, matching the planar approximation used elsewhere in this package.
func SampleSegment(a, b types.Waypoint, intervals int) []types.Waypoint {
	if intervals < 1 {
		return []types.Waypoint{a, b}
	}
	points := make([]types.Waypoint, 0, intervals+1)
	for i := 0; i <= intervals; i++ {
		f := float64(i) / float64(intervals)
		points = append(points, types.Waypoint{
			Lat: a.Lat + (b.Lat-a.Lat)*f,
			Lon: a.Lon + (b.Lon-a.Lon)*f,
		})
	}
	return points
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180.0
}
