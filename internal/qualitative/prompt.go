// internal/qualitative/prompt.go
package qualitative

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"nil-matching/internal/models"
)

// DefaultConfidence is used when a provider omits the confidence field.
const DefaultConfidence = 0.5

const systemPrompt = "You are an NIL partnership analyst. You assess how well a college athlete " +
	"fits a brand and answer with a single JSON object and nothing else."

// BuildPrompt renders the analysis request for one pairing.
func BuildPrompt(subject models.SubjectView, brand models.BrandView, result models.MatchResult) string {
	var b strings.Builder

	b.WriteString("Analyze the compatibility between this athlete and brand for a potential NIL partnership.\n\n")

	b.WriteString("## ATHLETE PROFILE\n")
	fmt.Fprintf(&b, "- Name: %s\n", orUnknown(subject.DisplayName))
	fmt.Fprintf(&b, "- Sport: %s\n", orUnknown(string(subject.Sport)))
	fmt.Fprintf(&b, "- School: %s\n", orUnknown(subject.School))
	if subject.Conference != "" {
		fmt.Fprintf(&b, "- Conference: %s\n", subject.Conference)
	}
	fmt.Fprintf(&b, "- Followers: %d\n", subject.TotalFollowers)
	fmt.Fprintf(&b, "- Engagement Rate: %.1f%%\n", subject.AvgEngagementRate)
	if len(subject.ContentTypes) > 0 {
		fmt.Fprintf(&b, "- Content Types: %s\n", joinStrings(subject.ContentTypes))
	}

	b.WriteString("\n## BRAND PROFILE\n")
	fmt.Fprintf(&b, "- Company: %s\n", orUnknown(brand.CompanyName))
	fmt.Fprintf(&b, "- Industry: %s\n", orUnknown(brand.Industry))
	fmt.Fprintf(&b, "- Category: %s\n", orUnknown(string(brand.Category)))
	values := "Not specified"
	if len(brand.Values) > 0 {
		values = strings.Join(brand.Values, ", ")
	}
	fmt.Fprintf(&b, "- Values: %s\n", values)
	if len(brand.PersonalityTraits) > 0 {
		fmt.Fprintf(&b, "- Personality: %s\n", strings.Join(brand.PersonalityTraits, ", "))
	}

	b.WriteString("\n## RULE-BASED ASSESSMENT\n")
	fmt.Fprintf(&b, "- Score: %.1f/100 (%s)\n", result.TotalScore, result.Tier)
	for _, r := range result.MatchReasons {
		fmt.Fprintf(&b, "- + %s\n", r.Text)
	}
	for _, r := range result.Concerns {
		fmt.Fprintf(&b, "- - %s\n", r.Text)
	}

	b.WriteString(`
## ANALYSIS REQUIRED
1. Compatibility Score (0-100): How well does this athlete fit this brand?
2. Key Alignment Points: What makes this a good match?
3. Potential Concerns: What might be problematic?
4. Risk Factors: Any brand safety concerns?
5. Summary: 1-2 sentence summary of the match
6. Recommendation: Should the brand pursue this partnership?
7. Confidence (0-1): How sure are you given the data above?

Respond in JSON format:
{
  "compatibility_score": <number>,
  "confidence": <number>,
  "alignment_points": [<strings>],
  "concerns": [<strings>],
  "risk_factors": [<strings>],
  "summary": "<string>",
  "recommendation": "<string>"
}
`)
	return b.String()
}

type rawAnalysis struct {
	CompatibilityScore *float64 `json:"compatibility_score"`
	Confidence         *float64 `json:"confidence"`
	AlignmentPoints    []string `json:"alignment_points"`
	Concerns           []string `json:"concerns"`
	RiskFactors        []string `json:"risk_factors"`
	Summary            string   `json:"summary"`
	Recommendation     string   `json:"recommendation"`
}

var errNoScore = errors.New("response has no compatibility_score")

// ParseAnalysis decodes a provider reply. Markdown fences and prose around
// the JSON object are tolerated; scores are clamped into range.
func ParseAnalysis(text string) (*models.LLMAnalysis, error) {
	body := extractJSON(text)
	if body == "" {
		return nil, fmt.Errorf("no JSON object in response")
	}

	var raw rawAnalysis
	if err := json.Unmarshal([]byte(body), &raw); err != nil {
		return nil, fmt.Errorf("decode analysis: %w", err)
	}
	if raw.CompatibilityScore == nil {
		return nil, errNoScore
	}

	confidence := DefaultConfidence
	if raw.Confidence != nil {
		confidence = *raw.Confidence
	}

	return &models.LLMAnalysis{
		CompatibilityScore: clampRange(*raw.CompatibilityScore, 0, 100),
		Confidence:         clampRange(confidence, 0, 1),
		AlignmentPoints:    nonEmpty(raw.AlignmentPoints),
		Concerns:           nonEmpty(raw.Concerns),
		RiskFactors:        nonEmpty(raw.RiskFactors),
		Summary:            strings.TrimSpace(raw.Summary),
		Recommendation:     strings.TrimSpace(raw.Recommendation),
	}, nil
}

func extractJSON(text string) string {
	cleaned := stripCodeFences(strings.TrimSpace(text))
	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start < 0 || end < start {
		return ""
	}
	return cleaned[start : end+1]
}

// stripCodeFences removes a leading ```json (or bare ```) fence and its
// closing fence.
func stripCodeFences(text string) string {
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}

func nonEmpty(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func clampRange(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func orUnknown(s string) string {
	if strings.TrimSpace(s) == "" {
		return "Unknown"
	}
	return s
}

func joinStrings[T ~string](items []T) string {
	parts := make([]string, len(items))
	for i, it := range items {
		parts[i] = string(it)
	}
	return strings.Join(parts, ", ")
}
