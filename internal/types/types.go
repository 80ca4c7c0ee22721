// README: Common value objects shared across the safety modules.
package types

// ID is an opaque entity identifier (hex string from the generator).
type ID string

// Waypoint is a single geographic position in decimal degrees.
// Valid values are lat in [-90,90] and lon in [-180,180]; range checks
// happen at the HTTP edge, the core assumes callers respect them.
type Waypoint struct {
	Lat float64
	Lon float64
}

// GeographicBounds is a lat/lon-aligned rectangle. North >= South is the
// expected orientation but is not enforced; queries over degenerate bounds
// degrade to "no match" rather than erroring.
type GeographicBounds struct {
	North float64
	South float64
	East  float64
	West  float64
}
