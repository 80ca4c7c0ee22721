// README: Marine weather observations, severe pattern types, and thresholds.
package weather

import (
	"time"

	"pelorus/internal/types"
)

// Observation is a single marine weather reading. PressureMb is nil when
// the station did not report pressure; pressure-drop detection skips such
// points. One observation per hour is the assumed cadence.
type Observation struct {
	Time         time.Time
	Location     types.Waypoint
	WindSpeedKt  float64
	WaveHeightFt float64
	PressureMb   *float64
	VisibilityNm float64
}

// PatternType identifies a severe weather pattern category.
type PatternType string

const (
	PatternTropicalCyclone   PatternType = "tropical_cyclone"
	PatternGaleSeries        PatternType = "gale_series"
	PatternRapidPressureDrop PatternType = "rapid_pressure_drop"
	PatternColdFront         PatternType = "cold_front"
	PatternStormSystem       PatternType = "storm_system"
)

// Action is the recommended response to a detected pattern.
type Action string

const (
	ActionShelterImmediately Action = "shelter_immediately"
	ActionDelayDeparture     Action = "delay_departure"
	ActionMonitorClosely     Action = "monitor_closely"
)

// Impact summarizes the expected effect of a pattern on a passage.
type Impact struct {
	Timing            string
	WindSpeedKt       float64
	WaveHeightFt      float64
	RecommendedAction Action
}

// SevereWeatherPattern is the single pattern reported for an analysis call.
type SevereWeatherPattern struct {
	Type                 PatternType
	Intensity            string
	AffectedArea         types.GeographicBounds
	MovementSpeedKt      float64
	MovementDirectionDeg float64
	PredictedImpact      Impact
	ForecastTrack        []types.Waypoint
}

// Window reports whether a departure window of the requested duration
// exists in the observation series.
type Window struct {
	Exists bool
	// Start is the time of the first observation in the qualifying run.
	Start *time.Time
	// Confidence is "high" when a full run was found, "partial" when some
	// qualifying points existed but no run was long enough, "none" otherwise.
	Confidence string
}

// DelayRecommendation is the output of RecommendDelay.
type DelayRecommendation struct {
	ShouldDelay          bool
	DelayHours           int
	AlternativeDeparture *time.Time
	Reason               string
}

// Thresholds hold the wind/wave/pressure trigger levels. All wind speeds
// are knots, wave heights feet, visibility nautical miles.
type Thresholds struct {
	GaleWindKt         float64
	StormWindKt        float64
	HurricaneWindKt    float64
	SmallCraftWindKt   float64
	SmallCraftWaveFt   float64
	DangerousWaveFt    float64
	LowVisibilityNm    float64
	RapidPressureDrop  float64 // mb per 3 hours
}

// DefaultThresholds returns the standard marine warning levels.
func DefaultThresholds() Thresholds {
	return Thresholds{
		GaleWindKt:        34,
		StormWindKt:       48,
		HurricaneWindKt:   64,
		SmallCraftWindKt:  20,
		SmallCraftWaveFt:  6,
		DangerousWaveFt:   12,
		LowVisibilityNm:   1,
		RapidPressureDrop: 6,
	}
}
