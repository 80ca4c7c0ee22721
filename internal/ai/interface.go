package ai

import (
	"context"
)

// BriefingProvider turns a finished route assessment into a plain-language
// passage briefing a watch officer can read aloud.
type BriefingProvider interface {
	GenerateBriefing(ctx context.Context, input BriefingInput) (string, error)
}

// BriefingInput is the assessment summary handed to the model. Fields are
// pre-digested strings so the prompt stays stable as internal types evolve.
type BriefingInput struct {
	Verdict       string
	SafetyScore   int
	Hazards       []string
	AreaConflicts []string
	DelayAdvice   string
	WeatherNote   string
}
