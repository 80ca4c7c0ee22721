// README: Small CLI that renders a sample passage briefing via Gemini.
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"pelorus/internal/ai"
)

func main() {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		log.Fatal("GEMINI_API_KEY environment variable not set")
	}

	ctx := context.Background()
	provider, err := ai.NewGeminiProvider(ctx, apiKey)
	if err != nil {
		log.Fatalf("Failed to initialize briefing provider: %v", err)
	}
	defer provider.Close()

	input := ai.BriefingInput{
		Verdict:     "caution",
		SafetyScore: 65,
		Hazards: []string{
			"shallow_water (high): 1.0 ft clearance at low water off the harbor bar",
			"restricted_area (moderate): route crosses Stellwagen Bank sanctuary",
		},
		AreaConflicts: []string{"Stellwagen Bank National Marine Sanctuary, authority NOAA"},
		WeatherNote:   "gale_series, sustained 38 kt",
		DelayAdvice:   "delay departure 24 hours until the gale series passes",
	}

	briefing, err := provider.GenerateBriefing(ctx, input)
	if err != nil {
		log.Fatalf("Briefing generation failed: %v", err)
	}
	fmt.Println(briefing)
}
