// README: Restricted area aggregate, categories, and the default seed set.
package area

import (
	"time"

	"pelorus/internal/types"
)

// Type categorizes a restricted area.
type Type string

const (
	TypeMilitary        Type = "military"
	TypeMarineSanctuary Type = "marine_sanctuary"
	TypeShippingLane    Type = "shipping_lane"
	TypeSpeedRestricted Type = "speed_restricted"
	TypeOther           Type = "other"
)

// Schedule describes when an area's restrictions apply. A nil End means
// open-ended.
type Schedule struct {
	Start     time.Time
	End       *time.Time
	Recurring bool
}

// RestrictedArea is a geofenced zone a route must not cross, or must cross
// under restrictions. Exactly one of Bounds/Polygon is normally populated;
// an area with neither can never match a position and degrades to "no
// conflict" rather than erroring.
type RestrictedArea struct {
	ID           string
	Name         string
	Type         Type
	Bounds       *types.GeographicBounds
	Polygon      []types.Waypoint
	Description  string
	Restrictions []string
	Active       bool
	Schedule     Schedule
	Authority    string
	Penalty      string
}

// DefaultAreas is the hardcoded seed catalog used before (and as fallback
// under) any backing-store refresh. The military zone, sanctuary, and TSS
// shipping lane here are relied on by callers as a minimum viable chart
// overlay.
func DefaultAreas() []RestrictedArea {
	return []RestrictedArea{
		{
			ID:   "mil-narragansett-oparea",
			Name: "Narragansett Bay Naval Operating Area",
			Type: TypeMilitary,
			Bounds: &types.GeographicBounds{
				North: 41.55, South: 41.30, East: -71.15, West: -71.45,
			},
			Description: "Active naval exercise area with live-fire periods and submarine transit lanes.",
			Restrictions: []string{
				"No entry during announced exercise windows",
				"Monitor VHF channel 16 for range control broadcasts",
				"Maintain 500 yd clearance from naval vessels",
			},
			Active:    true,
			Schedule:  Schedule{Start: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), Recurring: true},
			Authority: "US Navy / USCG Sector Southeastern New England",
			Penalty:   "Federal criminal penalties up to $250,000 and vessel seizure",
		},
		{
			ID:   "sanctuary-stellwagen-bank",
			Name: "Stellwagen Bank National Marine Sanctuary",
			Type: TypeMarineSanctuary,
			Bounds: &types.GeographicBounds{
				North: 42.75, South: 42.08, East: -70.02, West: -70.60,
			},
			Description: "Protected feeding ground for humpback and North Atlantic right whales.",
			Restrictions: []string{
				"Speed limit 10 kt during right whale season",
				"No discharge of any kind",
				"Report whale strikes to NOAA immediately",
			},
			Active:    true,
			Schedule:  Schedule{Start: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), Recurring: true},
			Authority: "NOAA Office of National Marine Sanctuaries",
			Penalty:   "Civil penalties up to $100,000 per violation per day",
		},
		{
			ID:   "tss-boston-approach",
			Name: "Boston Harbor Traffic Separation Scheme",
			Type: TypeShippingLane,
			Polygon: []types.Waypoint{
				{Lat: 42.37, Lon: -70.78},
				{Lat: 42.37, Lon: -70.46},
				{Lat: 42.19, Lon: -70.46},
				{Lat: 42.19, Lon: -70.78},
			},
			Description: "IMO-adopted TSS for commercial traffic approaching Boston Harbor.",
			Restrictions: []string{
				"Cross lanes at right angles only",
				"Vessels under 20 m shall not impede through traffic",
				"Monitor VHF channel 14 (Boston VTS)",
			},
			Active:    true,
			Schedule:  Schedule{Start: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), Recurring: true},
			Authority: "USCG Vessel Traffic Service Boston",
		},
	}
}
