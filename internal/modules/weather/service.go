// README: Severe weather pattern detection, weather windows, and delay advice.
package weather

import (
	"fmt"
	"log/slog"
	"math"
	"time"

	"pelorus/internal/geo"
	"pelorus/internal/types"
)

// Detector classifies observation series into severe weather patterns. It is
// stateless beyond its thresholds.
type Detector struct {
	th  Thresholds
	log *slog.Logger
}

// NewDetector returns a Detector with the given thresholds; log may be nil.
func NewDetector(th Thresholds, log *slog.Logger) *Detector {
	return &Detector{th: th, log: log}
}

// AnalyzePattern evaluates the detectors in fixed priority order (tropical
// cyclone first, then gale series, rapid pressure drop, cold front) and
// returns the first match, or nil when nothing severe is found. At most one pattern is
// ever reported per call.
func (d *Detector) AnalyzePattern(series []Observation) *SevereWeatherPattern {
	if len(series) == 0 {
		return nil
	}
	detectors := []func([]Observation) *SevereWeatherPattern{
		d.detectTropicalCyclone,
		d.detectGaleSeries,
		d.detectPressureDrop,
		d.detectColdFront,
	}
	for _, detect := range detectors {
		if p := detect(series); p != nil {
			if d.log != nil {
				d.log.Warn("severe weather pattern detected",
					"pattern", p.Type, "intensity", p.Intensity,
					"action", p.PredictedImpact.RecommendedAction)
			}
			return p
		}
	}
	return nil
}

// detectTropicalCyclone triggers on any observation at or above hurricane
// force. Track, affected area, and movement are derived from the qualifying
// points only.
func (d *Detector) detectTropicalCyclone(series []Observation) *SevereWeatherPattern {
	qualifying := filter(series, func(o Observation) bool {
		return o.WindSpeedKt >= d.th.HurricaneWindKt
	})
	if len(qualifying) == 0 {
		return nil
	}

	maxWind, maxWave := extremes(qualifying)
	track := make([]types.Waypoint, len(qualifying))
	for i, o := range qualifying {
		track[i] = o.Location
	}

	return &SevereWeatherPattern{
		Type:                 PatternTropicalCyclone,
		Intensity:            classifyCycloneIntensity(maxWind),
		AffectedArea:         boundingBox(qualifying),
		MovementSpeedKt:      meanTrackSpeed(qualifying),
		MovementDirectionDeg: trackDirection(qualifying),
		PredictedImpact: Impact{
			Timing:            impactTiming(qualifying[0].Time),
			WindSpeedKt:       maxWind,
			WaveHeightFt:      maxWave,
			RecommendedAction: ActionShelterImmediately,
		},
		ForecastTrack: track,
	}
}

// classifyCycloneIntensity maps a peak wind onto Saffir-Simpson-style bands.
func classifyCycloneIntensity(windKt float64) string {
	switch {
	case windKt >= 137:
		return "Category 5 Hurricane"
	case windKt >= 113:
		return "Category 4 Hurricane"
	case windKt >= 96:
		return "Category 3 Hurricane"
	case windKt >= 83:
		return "Category 2 Hurricane"
	case windKt >= 64:
		return "Category 1 Hurricane"
	case windKt >= 39:
		return "Tropical Storm"
	case windKt >= 34:
		return "Tropical Depression"
	default:
		return "Developing System"
	}
}

// detectGaleSeries triggers when at least 3 observations anywhere in the
// input reach gale force; they need not be consecutive.
func (d *Detector) detectGaleSeries(series []Observation) *SevereWeatherPattern {
	qualifying := filter(series, func(o Observation) bool {
		return o.WindSpeedKt >= d.th.GaleWindKt
	})
	if len(qualifying) < 3 {
		return nil
	}

	maxWind, maxWave := extremes(qualifying)
	action := ActionDelayDeparture
	if len(qualifying) > 6 {
		action = ActionShelterImmediately
	}

	return &SevereWeatherPattern{
		Type:                 PatternGaleSeries,
		Intensity:            fmt.Sprintf("Gale force winds to %.0f kt across %d readings", maxWind, len(qualifying)),
		AffectedArea:         boundingBox(qualifying),
		MovementSpeedKt:      meanTrackSpeed(qualifying),
		MovementDirectionDeg: trackDirection(qualifying),
		PredictedImpact: Impact{
			Timing:            impactTiming(qualifying[0].Time),
			WindSpeedKt:       maxWind,
			WaveHeightFt:      maxWave,
			RecommendedAction: action,
		},
	}
}

// detectPressureDrop scans adjacent pressure-bearing readings 2 to 4 hours
// apart and triggers when the extrapolated 3-hour-equivalent fall reaches
// the threshold.
func (d *Detector) detectPressureDrop(series []Observation) *SevereWeatherPattern {
	var prev *Observation
	for i := range series {
		cur := &series[i]
		if cur.PressureMb == nil {
			continue
		}
		if prev == nil {
			prev = cur
			continue
		}

		hours := cur.Time.Sub(prev.Time).Hours()
		if hours >= 2 && hours <= 4 {
			drop := *prev.PressureMb - *cur.PressureMb
			equivalent := (drop / hours) * 3
			if drop > 0 && equivalent >= d.th.RapidPressureDrop {
				pair := []Observation{*prev, *cur}
				return &SevereWeatherPattern{
					Type:                 PatternRapidPressureDrop,
					Intensity:            fmt.Sprintf("%.1f mb/3hr pressure fall", equivalent),
					AffectedArea:         boundingBox(pair),
					MovementSpeedKt:      meanTrackSpeed(pair),
					MovementDirectionDeg: trackDirection(pair),
					PredictedImpact: Impact{
						Timing:            impactTiming(cur.Time),
						WindSpeedKt:       math.Max(prev.WindSpeedKt, cur.WindSpeedKt),
						WaveHeightFt:      math.Max(prev.WaveHeightFt, cur.WaveHeightFt),
						RecommendedAction: ActionDelayDeparture,
					},
				}
			}
		}
		prev = cur
	}
	return nil
}

// detectColdFront triggers on more than 2 observations above the
// small-craft wind threshold. Front movement is reported as the
// climatological west-to-east 270 degrees.
func (d *Detector) detectColdFront(series []Observation) *SevereWeatherPattern {
	qualifying := filter(series, func(o Observation) bool {
		return o.WindSpeedKt > d.th.SmallCraftWindKt
	})
	if len(qualifying) <= 2 {
		return nil
	}

	maxWind, maxWave := extremes(qualifying)
	return &SevereWeatherPattern{
		Type:                 PatternColdFront,
		Intensity:            fmt.Sprintf("Frontal winds to %.0f kt", maxWind),
		AffectedArea:         boundingBox(qualifying),
		MovementSpeedKt:      meanTrackSpeed(qualifying),
		MovementDirectionDeg: 270,
		PredictedImpact: Impact{
			Timing:            impactTiming(qualifying[0].Time),
			WindSpeedKt:       maxWind,
			WaveHeightFt:      maxWave,
			RecommendedAction: ActionMonitorClosely,
		},
	}
}

// CheckWindow scans for a consecutive run of observations with wind at or
// below maxWindKt and waves at or below maxWaveFt. Each observation counts
// as one hour of window, so a run of durationHours points satisfies the
// request; a single disqualifying point breaks the run. Downstream
// expectations assume this point-count-as-duration behavior.
func (d *Detector) CheckWindow(series []Observation, durationHours int, maxWindKt, maxWaveFt float64) Window {
	if len(series) == 0 || durationHours <= 0 {
		return Window{Confidence: "none"}
	}

	run := 0
	best := 0
	for i, o := range series {
		if o.WindSpeedKt <= maxWindKt && o.WaveHeightFt <= maxWaveFt {
			run++
			if run > best {
				best = run
			}
			if run >= durationHours {
				start := series[i-run+1].Time
				return Window{Exists: true, Start: &start, Confidence: "high"}
			}
		} else {
			run = 0
		}
	}

	if best > 0 {
		return Window{Confidence: "partial"}
	}
	return Window{Confidence: "none"}
}

// Per-pattern departure delays in hours.
var patternDelays = map[PatternType]int{
	PatternTropicalCyclone:   72,
	PatternGaleSeries:        48,
	PatternRapidPressureDrop: 24,
	PatternColdFront:         12,
	PatternStormSystem:       36,
}

const defaultDelayHours = 24

// RecommendDelay advises whether departure should be postponed. A detected
// severe pattern forces a fixed per-type delay; otherwise a missing weather
// window for the planned duration yields a flat 24-hour re-check.
func (d *Detector) RecommendDelay(series []Observation, plannedDurationHours int) DelayRecommendation {
	if p := d.AnalyzePattern(series); p != nil {
		delay, ok := patternDelays[p.Type]
		if !ok {
			delay = defaultDelayHours
		}
		alt := time.Now().Add(time.Duration(delay) * time.Hour)
		return DelayRecommendation{
			ShouldDelay:          true,
			DelayHours:           delay,
			AlternativeDeparture: &alt,
			Reason:               fmt.Sprintf("%s detected (%s)", p.Type, p.Intensity),
		}
	}

	window := d.CheckWindow(series, plannedDurationHours, 25, 6)
	if !window.Exists {
		alt := time.Now().Add(defaultDelayHours * time.Hour)
		return DelayRecommendation{
			ShouldDelay:          true,
			DelayHours:           defaultDelayHours,
			AlternativeDeparture: &alt,
			Reason:               "no weather window of the planned duration; check conditions again in 24 hours",
		}
	}
	return DelayRecommendation{Reason: "conditions permit departure"}
}

func filter(series []Observation, keep func(Observation) bool) []Observation {
	var out []Observation
	for _, o := range series {
		if keep(o) {
			out = append(out, o)
		}
	}
	return out
}

func extremes(series []Observation) (maxWind, maxWave float64) {
	for _, o := range series {
		maxWind = math.Max(maxWind, o.WindSpeedKt)
		maxWave = math.Max(maxWave, o.WaveHeightFt)
	}
	return maxWind, maxWave
}

func boundingBox(series []Observation) types.GeographicBounds {
	b := types.GeographicBounds{
		North: series[0].Location.Lat, South: series[0].Location.Lat,
		East: series[0].Location.Lon, West: series[0].Location.Lon,
	}
	for _, o := range series[1:] {
		b.North = math.Max(b.North, o.Location.Lat)
		b.South = math.Min(b.South, o.Location.Lat)
		b.East = math.Max(b.East, o.Location.Lon)
		b.West = math.Min(b.West, o.Location.Lon)
	}
	return b
}

// meanTrackSpeed is the mean great-circle distance between consecutive
// qualifying points, read as knots under the one-observation-per-hour
// cadence assumption.
func meanTrackSpeed(series []Observation) float64 {
	if len(series) < 2 {
		return 0
	}
	total := 0.0
	for i := 1; i < len(series); i++ {
		total += geo.HaversineNm(series[i-1].Location, series[i].Location)
	}
	return total / float64(len(series)-1)
}

// trackDirection is the bearing from the first qualifying point to the last.
func trackDirection(series []Observation) float64 {
	if len(series) < 2 {
		return 0
	}
	return geo.Bearing(series[0].Location, series[len(series)-1].Location)
}

func impactTiming(t time.Time) string {
	if t.IsZero() {
		return "timing unknown"
	}
	return "conditions from " + t.UTC().Format(time.RFC3339)
}
