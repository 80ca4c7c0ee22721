// README: Depth engine tests (severity ladder, validation, crew margins).
package depth

import (
	"errors"
	"math"
	"testing"

	"pelorus/internal/types"
)

var here = types.Waypoint{Lat: 42.35, Lon: -70.9}

func TestCalculate_SeverityLadder(t *testing.T) {
	e := NewEngine(DefaultConfig())

	tests := []struct {
		name          string
		charted       float64
		draft         float64
		tide          float64
		wantClearance float64
		wantMinimum   float64
		wantRisk      bool
		wantSeverity  Severity
	}{
		{
			// 20% of 6.5 is 1.3, below the 2.0 floor, so minimum is 2.0.
			name:    "high risk on a falling tide",
			charted: 8, draft: 6.5, tide: -0.5,
			wantClearance: 1.0, wantMinimum: 2.0,
			wantRisk: true, wantSeverity: SeverityHigh,
		},
		{
			name:    "zero clearance is critical",
			charted: 6, draft: 6, tide: 0,
			wantClearance: 0.0, wantMinimum: 2.0,
			wantRisk: true, wantSeverity: SeverityCritical,
		},
		{
			name:    "negative clearance grounds",
			charted: 5, draft: 6, tide: 0,
			wantClearance: -1.0, wantMinimum: 2.0,
			wantRisk: true, wantSeverity: SeverityCritical,
		},
		{
			name:    "moderate below 1.5x minimum",
			charted: 8.5, draft: 6, tide: 0,
			wantClearance: 2.5, wantMinimum: 2.0,
			wantRisk: false, wantSeverity: SeverityModerate,
		},
		{
			name:    "safe with ample water",
			charted: 30, draft: 6, tide: 1,
			wantClearance: 25.0, wantMinimum: 2.0,
			wantRisk: false, wantSeverity: SeveritySafe,
		},
		{
			// Deep-draft vessel: 20% of 20 is 4.0, above the floor.
			name:    "percentage clearance governs deep draft",
			charted: 23, draft: 20, tide: 0,
			wantClearance: 3.0, wantMinimum: 4.0,
			wantRisk: true, wantSeverity: SeverityHigh,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.Calculate(here, tt.charted, tt.draft, tt.tide)
			if err != nil {
				t.Fatalf("Calculate: %v", err)
			}
			if math.Abs(got.ClearanceFt-tt.wantClearance) > 1e-9 {
				t.Errorf("clearance = %f, want %f", got.ClearanceFt, tt.wantClearance)
			}
			if math.Abs(got.MinimumClearanceFt-tt.wantMinimum) > 1e-9 {
				t.Errorf("minimum clearance = %f, want %f", got.MinimumClearanceFt, tt.wantMinimum)
			}
			if got.IsGroundingRisk != tt.wantRisk {
				t.Errorf("grounding risk = %v, want %v", got.IsGroundingRisk, tt.wantRisk)
			}
			if got.Severity != tt.wantSeverity {
				t.Errorf("severity = %s, want %s", got.Severity, tt.wantSeverity)
			}
			if got.Recommendation == "" {
				t.Error("recommendation must never be empty")
			}
			// Spec invariant: clearance is exactly actual minus draft.
			if got.ClearanceFt != got.ActualDepthFt-got.VesselDraftFt {
				t.Error("clearance must equal actualDepth - vesselDraft exactly")
			}
		})
	}
}

func TestCalculate_InvalidInput(t *testing.T) {
	e := NewEngine(DefaultConfig())

	if _, err := e.Calculate(here, -1, 6, 0); !errors.Is(err, ErrInvalidDepth) {
		t.Errorf("negative depth: got %v, want ErrInvalidDepth", err)
	}
	if _, err := e.Calculate(here, 10, 0, 0); !errors.Is(err, ErrInvalidDraft) {
		t.Errorf("zero draft: got %v, want ErrInvalidDraft", err)
	}
	if _, err := e.Calculate(here, 10, -2, 0); !errors.Is(err, ErrInvalidDraft) {
		t.Errorf("negative draft: got %v, want ErrInvalidDraft", err)
	}
}

func TestMinimumSafeDepth(t *testing.T) {
	e := NewEngine(DefaultConfig())
	for _, draft := range []float64{0.5, 2, 6.5, 10, 20, 45} {
		want := draft + math.Max(draft*0.2, 2.0)
		if got := e.MinimumSafeDepth(draft); math.Abs(got-want) > 1e-9 {
			t.Errorf("MinimumSafeDepth(%f) = %f, want %f", draft, got, want)
		}
	}
}

func TestAdjustForCrewExperience(t *testing.T) {
	e := NewEngine(DefaultConfig())
	tests := []struct {
		level CrewExperience
		want  float64
	}{
		{CrewNovice, 3.0},
		{CrewIntermediate, 2.4},
		{CrewAdvanced, 2.0},
		{CrewProfessional, 1.8},
		{CrewExperience("unknown"), 2.0},
	}
	for _, tt := range tests {
		if got := e.AdjustForCrewExperience(2.0, tt.level); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("AdjustForCrewExperience(2.0, %s) = %f, want %f", tt.level, got, tt.want)
		}
	}
}

func TestSafeAtLowWater(t *testing.T) {
	e := NewEngine(DefaultConfig())

	// Minimum safe depth for a 6 ft draft is 8 ft.
	if !e.SafeAtLowWater(9, 6, -1) {
		t.Error("9 ft charted with -1 ft tide should just meet the 8 ft minimum")
	}
	if e.SafeAtLowWater(9, 6, -1.5) {
		t.Error("7.5 ft at low water is below the 8 ft minimum")
	}
}

func TestChartDatumAdjustment(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ChartDatumAdjustmentFt = 0.5
	e := NewEngine(cfg)

	got, err := e.Calculate(here, 10, 6, 0)
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	if math.Abs(got.ActualDepthFt-10.5) > 1e-9 {
		t.Errorf("actual depth = %f, want 10.5 with datum adjustment", got.ActualDepthFt)
	}
}
