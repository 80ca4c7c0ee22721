// README: Pattern detector tests (priority order, windows, delay advice).
package weather

import (
	"testing"
	"time"

	"pelorus/internal/types"
)

var t0 = time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC)

func obsAt(hour int, windKt, waveFt float64) Observation {
	return Observation{
		Time:         t0.Add(time.Duration(hour) * time.Hour),
		Location:     types.Waypoint{Lat: 38.0 + 0.5*float64(hour), Lon: -65.0},
		WindSpeedKt:  windKt,
		WaveHeightFt: waveFt,
	}
}

func withPressure(o Observation, mb float64) Observation {
	o.PressureMb = &mb
	return o
}

func newTestDetector() *Detector {
	return NewDetector(DefaultThresholds(), nil)
}

func TestAnalyzePattern_EmptyInput(t *testing.T) {
	if got := newTestDetector().AnalyzePattern(nil); got != nil {
		t.Fatalf("empty series should yield no pattern, got %+v", got)
	}
}

// A series that qualifies for both cyclone and gale must report the cyclone:
// detector priority is fixed.
func TestAnalyzePattern_CyclonePriorityOverGale(t *testing.T) {
	series := []Observation{
		obsAt(0, 70, 18), obsAt(1, 72, 20), obsAt(2, 75, 22), obsAt(3, 71, 19),
	}
	p := newTestDetector().AnalyzePattern(series)
	if p == nil || p.Type != PatternTropicalCyclone {
		t.Fatalf("want tropical_cyclone, got %+v", p)
	}
	if p.PredictedImpact.RecommendedAction != ActionShelterImmediately {
		t.Errorf("cyclone action = %s, want shelter_immediately", p.PredictedImpact.RecommendedAction)
	}
	if p.Intensity != "Category 1 Hurricane" {
		t.Errorf("intensity = %q, want Category 1 Hurricane", p.Intensity)
	}
	if len(p.ForecastTrack) != 4 {
		t.Errorf("forecast track has %d points, want 4", len(p.ForecastTrack))
	}
	if p.MovementSpeedKt <= 0 {
		t.Errorf("movement speed = %f, want positive for a moving system", p.MovementSpeedKt)
	}
	// Track runs due north.
	if p.MovementDirectionDeg > 1 && p.MovementDirectionDeg < 359 {
		t.Errorf("movement direction = %f, want ~0 (north)", p.MovementDirectionDeg)
	}
}

func TestClassifyCycloneIntensity(t *testing.T) {
	tests := []struct {
		windKt float64
		want   string
	}{
		{140, "Category 5 Hurricane"},
		{120, "Category 4 Hurricane"},
		{100, "Category 3 Hurricane"},
		{85, "Category 2 Hurricane"},
		{64, "Category 1 Hurricane"},
		{45, "Tropical Storm"},
		{35, "Tropical Depression"},
		{20, "Developing System"},
	}
	for _, tt := range tests {
		if got := classifyCycloneIntensity(tt.windKt); got != tt.want {
			t.Errorf("classifyCycloneIntensity(%f) = %q, want %q", tt.windKt, got, tt.want)
		}
	}
}

func TestAnalyzePattern_GaleSeries(t *testing.T) {
	// Three gale-force readings scattered through calmer ones: they need
	// not be consecutive.
	series := []Observation{
		obsAt(0, 36, 8), obsAt(1, 15, 3), obsAt(2, 40, 10),
		obsAt(3, 12, 2), obsAt(4, 35, 9),
	}
	p := newTestDetector().AnalyzePattern(series)
	if p == nil || p.Type != PatternGaleSeries {
		t.Fatalf("want gale_series, got %+v", p)
	}
	if p.PredictedImpact.RecommendedAction != ActionDelayDeparture {
		t.Errorf("action for 3 gale readings = %s, want delay_departure", p.PredictedImpact.RecommendedAction)
	}

	// Only two gale readings: no pattern.
	if p := newTestDetector().AnalyzePattern(series[:3]); p != nil && p.Type == PatternGaleSeries {
		t.Errorf("two gale readings should not trigger a gale series")
	}
}

func TestAnalyzePattern_ExtendedGaleShelters(t *testing.T) {
	var series []Observation
	for h := 0; h < 8; h++ {
		series = append(series, obsAt(h, 38, 11))
	}
	p := newTestDetector().AnalyzePattern(series)
	if p == nil || p.Type != PatternGaleSeries {
		t.Fatalf("want gale_series, got %+v", p)
	}
	if p.PredictedImpact.RecommendedAction != ActionShelterImmediately {
		t.Errorf("more than 6 gale readings should shelter, got %s", p.PredictedImpact.RecommendedAction)
	}
}

func TestAnalyzePattern_RapidPressureDrop(t *testing.T) {
	// 7 mb over 3 hours extrapolates to 7 mb/3hr, above the 6 mb threshold.
	series := []Observation{
		withPressure(obsAt(0, 15, 4), 1012),
		withPressure(obsAt(3, 18, 5), 1005),
	}
	p := newTestDetector().AnalyzePattern(series)
	if p == nil || p.Type != PatternRapidPressureDrop {
		t.Fatalf("want rapid_pressure_drop, got %+v", p)
	}
	if p.PredictedImpact.RecommendedAction != ActionDelayDeparture {
		t.Errorf("action = %s, want delay_departure", p.PredictedImpact.RecommendedAction)
	}
}

func TestAnalyzePattern_PressureDropWindowBounds(t *testing.T) {
	d := newTestDetector()

	// Readings 5 hours apart fall outside the [2,4] hour scan window even
	// though the fall is steep.
	tooFar := []Observation{
		withPressure(obsAt(0, 15, 4), 1015),
		withPressure(obsAt(5, 15, 4), 1000),
	}
	if p := d.AnalyzePattern(tooFar); p != nil {
		t.Errorf("5-hour gap should not trigger, got %+v", p)
	}

	// A 1-hour gap is also outside the window.
	tooClose := []Observation{
		withPressure(obsAt(0, 15, 4), 1015),
		withPressure(obsAt(1, 15, 4), 1008),
	}
	if p := d.AnalyzePattern(tooClose); p != nil {
		t.Errorf("1-hour gap should not trigger, got %+v", p)
	}

	// A slow fall within the window stays quiet: 3 mb over 3 hours.
	gentle := []Observation{
		withPressure(obsAt(0, 15, 4), 1012),
		withPressure(obsAt(3, 15, 4), 1009),
	}
	if p := d.AnalyzePattern(gentle); p != nil {
		t.Errorf("gentle fall should not trigger, got %+v", p)
	}
}

func TestAnalyzePattern_ColdFront(t *testing.T) {
	series := []Observation{
		obsAt(0, 22, 4), obsAt(1, 25, 5), obsAt(2, 28, 5), obsAt(3, 18, 3),
	}
	p := newTestDetector().AnalyzePattern(series)
	if p == nil || p.Type != PatternColdFront {
		t.Fatalf("want cold_front, got %+v", p)
	}
	if p.MovementDirectionDeg != 270 {
		t.Errorf("cold front direction = %f, want fixed 270", p.MovementDirectionDeg)
	}
	if p.PredictedImpact.RecommendedAction != ActionMonitorClosely {
		t.Errorf("action = %s, want monitor_closely", p.PredictedImpact.RecommendedAction)
	}

	// Exactly 2 points above small craft wind: not enough.
	if p := newTestDetector().AnalyzePattern(series[:2]); p != nil {
		t.Errorf("two windy readings should not make a front, got %+v", p)
	}
}

func TestCheckWindow(t *testing.T) {
	d := newTestDetector()

	// Spec case: 3 points, middle one over the wind limit, 6 hours
	// requested. No run reaches 6 so the window does not exist.
	series := []Observation{
		obsAt(0, 10, 2), obsAt(1, 30, 4), obsAt(2, 12, 3),
	}
	w := d.CheckWindow(series, 6, 25, 6)
	if w.Exists {
		t.Fatal("no run of 6 qualifying points exists")
	}
	if w.Confidence != "partial" {
		t.Errorf("confidence = %q, want partial (some qualifying points)", w.Confidence)
	}

	// A clean run of 6 points satisfies a 6-hour request, point-count
	// semantics regardless of actual timestamps.
	var calm []Observation
	for h := 0; h < 6; h++ {
		calm = append(calm, obsAt(h, 12, 3))
	}
	w = d.CheckWindow(calm, 6, 25, 6)
	if !w.Exists || w.Confidence != "high" {
		t.Fatalf("window = %+v, want exists with high confidence", w)
	}
	if w.Start == nil || !w.Start.Equal(t0) {
		t.Errorf("window start = %v, want series start", w.Start)
	}

	// All points disqualified.
	rough := []Observation{obsAt(0, 40, 14), obsAt(1, 42, 15)}
	if w := d.CheckWindow(rough, 2, 25, 6); w.Exists || w.Confidence != "none" {
		t.Errorf("window = %+v, want none", w)
	}

	// Empty input.
	if w := d.CheckWindow(nil, 4, 25, 6); w.Exists || w.Confidence != "none" {
		t.Errorf("window = %+v, want none for empty input", w)
	}
}

func TestCheckWindow_RunBreaksAndRecovers(t *testing.T) {
	// Qualifying run restarts after a break; the second run reaches 3.
	series := []Observation{
		obsAt(0, 10, 2), obsAt(1, 10, 2),
		obsAt(2, 35, 9), // break
		obsAt(3, 12, 3), obsAt(4, 11, 2), obsAt(5, 10, 2),
	}
	w := newTestDetector().CheckWindow(series, 3, 25, 6)
	if !w.Exists {
		t.Fatal("second run of 3 should satisfy the request")
	}
	if w.Start == nil || !w.Start.Equal(t0.Add(3*time.Hour)) {
		t.Errorf("window start = %v, want hour 3", w.Start)
	}
}

func TestRecommendDelay(t *testing.T) {
	d := newTestDetector()

	tests := []struct {
		name      string
		series    []Observation
		wantDelay int
	}{
		{
			name:      "cyclone delays 72h",
			series:    []Observation{obsAt(0, 70, 20), obsAt(1, 72, 21), obsAt(2, 70, 20)},
			wantDelay: 72,
		},
		{
			name:      "gale series delays 48h",
			series:    []Observation{obsAt(0, 36, 8), obsAt(1, 38, 9), obsAt(2, 40, 10)},
			wantDelay: 48,
		},
		{
			name: "pressure drop delays 24h",
			series: []Observation{
				withPressure(obsAt(0, 14, 4), 1012),
				withPressure(obsAt(3, 15, 4), 1004),
			},
			wantDelay: 24,
		},
		{
			name:      "cold front delays 12h",
			series:    []Observation{obsAt(0, 22, 4), obsAt(1, 24, 5), obsAt(2, 26, 5)},
			wantDelay: 12,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := d.RecommendDelay(tt.series, 4)
			if !rec.ShouldDelay {
				t.Fatal("severe pattern must force a delay")
			}
			if rec.DelayHours != tt.wantDelay {
				t.Errorf("delay = %d, want %d", rec.DelayHours, tt.wantDelay)
			}
			if rec.AlternativeDeparture == nil {
				t.Error("alternative departure must be set when delaying")
			}
		})
	}
}

func TestRecommendDelay_NoWindow(t *testing.T) {
	// Benign winds but waves over the window limit: no pattern, no window.
	series := []Observation{obsAt(0, 15, 8), obsAt(1, 16, 9), obsAt(2, 15, 8)}
	rec := newTestDetector().RecommendDelay(series, 3)
	if !rec.ShouldDelay || rec.DelayHours != 24 {
		t.Fatalf("want flat 24h re-check, got %+v", rec)
	}
}

func TestRecommendDelay_Clear(t *testing.T) {
	var calm []Observation
	for h := 0; h < 8; h++ {
		calm = append(calm, obsAt(h, 10, 2))
	}
	rec := newTestDetector().RecommendDelay(calm, 6)
	if rec.ShouldDelay {
		t.Fatalf("calm series should not delay, got %+v", rec)
	}
}
