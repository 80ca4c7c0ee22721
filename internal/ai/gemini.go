package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiProvider implements BriefingProvider using Google's Gemini models.
type GeminiProvider struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

// NewGeminiProvider initializes a new Gemini client.
// apiKey should be provided from environment variables.
func NewGeminiProvider(ctx context.Context, apiKey string) (*GeminiProvider, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	// Use Gemini 2.0 Flash for low latency and cost efficiency.
	model := client.GenerativeModel("gemini-2.0-flash")

	// Briefings are prose, not structured data. Keep the temperature low so
	// hazard wording stays close to the assessment.
	model.SetTemperature(0.2)

	return &GeminiProvider{
		client: client,
		model:  model,
	}, nil
}

// Close cleans up the Gemini client resources.
func (p *GeminiProvider) Close() {
	p.client.Close()
}

// GenerateBriefing renders the assessment summary as a short spoken-word
// passage briefing.
func (p *GeminiProvider) GenerateBriefing(ctx context.Context, input BriefingInput) (string, error) {
	resp, err := p.model.GenerateContent(ctx, genai.Text(buildBriefingPrompt(input)))
	if err != nil {
		return "", fmt.Errorf("gemini generation error: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("no response candidates from Gemini")
	}

	var out strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			out.WriteString(string(txt))
		}
	}
	return strings.TrimSpace(out.String()), nil
}

func buildBriefingPrompt(in BriefingInput) string {
	var b strings.Builder
	b.WriteString(`Role: You are a marine weather router writing a pre-departure safety briefing for a vessel's watch officer.

Write 3-5 short sentences of plain nautical English. State the overall verdict first, then the hazards in order of severity, then any delay or routing advice. No markdown, no headings, no bullet lists. Do not invent hazards that are not listed below.

Assessment:
`)
	fmt.Fprintf(&b, "- Verdict: %s (safety score %d/100)\n", in.Verdict, in.SafetyScore)
	if len(in.Hazards) == 0 {
		b.WriteString("- Hazards: none identified\n")
	}
	for _, h := range in.Hazards {
		fmt.Fprintf(&b, "- Hazard: %s\n", h)
	}
	for _, a := range in.AreaConflicts {
		fmt.Fprintf(&b, "- Restricted area on track: %s\n", a)
	}
	if in.WeatherNote != "" {
		fmt.Fprintf(&b, "- Weather: %s\n", in.WeatherNote)
	}
	if in.DelayAdvice != "" {
		fmt.Fprintf(&b, "- Departure advice: %s\n", in.DelayAdvice)
	}
	return b.String()
}
