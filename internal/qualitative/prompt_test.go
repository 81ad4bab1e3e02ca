package qualitative

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nil-matching/internal/matching"
	"nil-matching/internal/models"
)

func testSubject() models.SubjectView {
	return models.SubjectView{
		ID:                "athlete-1",
		DisplayName:       "Jordan Miles",
		Sport:             models.SportFootball,
		School:            "State University",
		TotalFollowers:    120000,
		AvgEngagementRate: 4.2,
	}
}

func testBrand() models.BrandView {
	return models.BrandView{
		ID:          "brand-1",
		CompanyName: "Stride Athletics",
		Category:    models.CategoryAthleticApparel,
		Values:      []string{"grit", "community"},
	}
}

func ruleResult() models.MatchResult {
	return matching.NewScorer(matching.DefaultTables()).Score(testSubject(), testBrand(), "")
}

const analysisJSON = `{
  "compatibility_score": 80.5,
  "confidence": 0.8,
  "alignment_points": ["Strong football following", "Authentic training content"],
  "concerns": ["Limited regional reach"],
  "risk_factors": [],
  "summary": "Solid fit for performance apparel.",
  "recommendation": "Pursue with a pilot campaign."
}`

// ==========================
// BuildPrompt
// ==========================

func TestBuildPrompt(t *testing.T) {
	prompt := BuildPrompt(testSubject(), testBrand(), ruleResult())

	assert.Contains(t, prompt, "- Name: Jordan Miles")
	assert.Contains(t, prompt, "- Sport: FOOTBALL")
	assert.Contains(t, prompt, "- Followers: 120000")
	assert.Contains(t, prompt, "- Engagement Rate: 4.2%")
	assert.Contains(t, prompt, "- Company: Stride Athletics")
	assert.Contains(t, prompt, "- Industry: Unknown")
	assert.Contains(t, prompt, "- Values: grit, community")
	assert.Contains(t, prompt, "- Score: 71.0/100 (STRONG)")
	assert.Contains(t, prompt, `"compatibility_score": <number>`)
}

// ==========================
// ParseAnalysis
// ==========================

func TestParseAnalysis(t *testing.T) {
	tests := []struct {
		name           string
		input          string
		expectError    bool
		validateOutput func(t *testing.T, a *models.LLMAnalysis)
	}{
		{
			name:  "plain json",
			input: analysisJSON,
			validateOutput: func(t *testing.T, a *models.LLMAnalysis) {
				assert.Equal(t, 80.5, a.CompatibilityScore)
				assert.Equal(t, 0.8, a.Confidence)
				assert.Len(t, a.AlignmentPoints, 2)
				assert.Equal(t, []string{"Limited regional reach"}, a.Concerns)
				assert.Empty(t, a.RiskFactors)
				assert.Equal(t, "Solid fit for performance apparel.", a.Summary)
			},
		},
		{
			name:  "fenced json",
			input: "```json\n" + analysisJSON + "\n```",
			validateOutput: func(t *testing.T, a *models.LLMAnalysis) {
				assert.Equal(t, 80.5, a.CompatibilityScore)
			},
		},
		{
			name:  "prose around object",
			input: "Here is my analysis:\n" + analysisJSON + "\nLet me know.",
			validateOutput: func(t *testing.T, a *models.LLMAnalysis) {
				assert.Equal(t, "Pursue with a pilot campaign.", a.Recommendation)
			},
		},
		{
			name:  "missing confidence defaults",
			input: `{"compatibility_score": 60, "alignment_points": ["", "  ok  "]}`,
			validateOutput: func(t *testing.T, a *models.LLMAnalysis) {
				assert.Equal(t, DefaultConfidence, a.Confidence)
				assert.Equal(t, []string{"ok"}, a.AlignmentPoints)
				assert.NotNil(t, a.Concerns)
			},
		},
		{
			name:  "out of range values clamped",
			input: `{"compatibility_score": 140, "confidence": 2}`,
			validateOutput: func(t *testing.T, a *models.LLMAnalysis) {
				assert.Equal(t, 100.0, a.CompatibilityScore)
				assert.Equal(t, 1.0, a.Confidence)
			},
		},
		{
			name:        "missing score",
			input:       `{"confidence": 0.4}`,
			expectError: true,
		},
		{
			name:        "no object",
			input:       "I cannot help with that.",
			expectError: true,
		},
		{
			name:        "broken json",
			input:       `{"compatibility_score": }`,
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := ParseAnalysis(tt.input)
			if tt.expectError {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.validateOutput(t, a)
		})
	}
}
