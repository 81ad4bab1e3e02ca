// internal/matching/blend_test.go
package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nil-matching/internal/models"
)

func testAnalysis() models.LLMAnalysis {
	return models.LLMAnalysis{
		CompatibilityScore: 80.5,
		Confidence:         0.8,
		AlignmentPoints:    []string{"Authentic training content", "Strong regional following", "Third point"},
		Concerns:           []string{"Limited brand history", "Competing sponsor", "Third concern"},
		Summary:            "Solid fit for a performance apparel push.",
		Recommendation:     "Pursue",
	}
}

func TestBlend_ScenarioResult(t *testing.T) {
	s := newTestScorer()
	rule := s.Score(footballSubject(), apparelBrand(), "")

	hybrid := s.Blend(rule, testAnalysis(), DefaultBlendWeight)

	// 68.5*0.7 + 80.5*0.3
	assert.InDelta(t, 72.1, hybrid.TotalScore, 1e-9)
	assert.Equal(t, models.TierStrong, hybrid.Tier)
	assert.Equal(t, models.MethodHybrid, hybrid.ScoringMethod)
	require.NotNil(t, hybrid.Breakdown.LLMScore)
	assert.Equal(t, 80.5, *hybrid.Breakdown.LLMScore)
	require.NotNil(t, hybrid.Breakdown.LLMConfidence)
	assert.Equal(t, 0.8, *hybrid.Breakdown.LLMConfidence)
	assert.Equal(t, "Solid fit for a performance apparel push.", hybrid.LLMSummary)
	assert.Equal(t, "Pursue", hybrid.LLMRecommendation)

	// Five rule reasons already fill the cap.
	assert.Equal(t, rule.MatchReasons, hybrid.MatchReasons)

	require.Len(t, hybrid.Concerns, 3)
	assert.Equal(t, rule.Concerns[0], hybrid.Concerns[0])
	assert.Equal(t, "Limited brand history", hybrid.Concerns[1].Text)
	assert.Equal(t, models.CategoryLLMAnalysis, hybrid.Concerns[1].Category)
	assert.Equal(t, models.ImpactNegative, hybrid.Concerns[1].Impact)
	assert.Equal(t, "Competing sponsor", hybrid.Concerns[2].Text)

	// rule breakdown is untouched
	assert.Nil(t, rule.Breakdown.LLMScore)
	assert.Equal(t, 68.5, rule.TotalScore)
}

func TestBlend(t *testing.T) {
	base := models.MatchResult{
		SubjectID:     "s",
		BrandID:       "b",
		TotalScore:    50,
		Tier:          models.TierModerate,
		ScoringMethod: models.MethodRuleBased,
		MatchReasons:  []models.Reason{{Category: models.CategoryContentFit, Text: "fit", Impact: models.ImpactPositive}},
		Concerns:      []models.Reason{},
	}

	tests := []struct {
		name           string
		result         func() models.MatchResult
		analysis       func() models.LLMAnalysis
		weight         float64
		validateOutput func(t *testing.T, out models.MatchResult)
	}{
		{
			name:     "points merged up to two",
			result:   func() models.MatchResult { return base },
			analysis: testAnalysis,
			weight:   0.5,
			validateOutput: func(t *testing.T, out models.MatchResult) {
				assert.InDelta(t, 65.3, out.TotalScore, 1e-9)
				assert.Equal(t, models.TierGood, out.Tier)
				assert.Equal(t, []string{"fit", "Authentic training content", "Strong regional following"},
					reasonTexts(out.MatchReasons))
				assert.Equal(t, models.ImpactPositive, out.MatchReasons[1].Impact)
				assert.Equal(t, []string{"Limited brand history", "Competing sponsor"}, reasonTexts(out.Concerns))
			},
		},
		{
			name:   "zero weight keeps the rule score",
			result: func() models.MatchResult { return base },
			analysis: func() models.LLMAnalysis {
				a := testAnalysis()
				a.CompatibilityScore = 100
				return a
			},
			weight: 0,
			validateOutput: func(t *testing.T, out models.MatchResult) {
				assert.Equal(t, 50.0, out.TotalScore)
				assert.Equal(t, models.MethodHybrid, out.ScoringMethod)
			},
		},
		{
			name:   "invalid weight falls back to default",
			result: func() models.MatchResult { return base },
			analysis: func() models.LLMAnalysis {
				a := testAnalysis()
				a.CompatibilityScore = 100
				return a
			},
			weight: 1.7,
			validateOutput: func(t *testing.T, out models.MatchResult) {
				assert.InDelta(t, 65.0, out.TotalScore, 1e-9)
			},
		},
		{
			name:   "external score is clamped",
			result: func() models.MatchResult { return base },
			analysis: func() models.LLMAnalysis {
				a := testAnalysis()
				a.CompatibilityScore = 180
				a.Confidence = 3
				return a
			},
			weight: 1,
			validateOutput: func(t *testing.T, out models.MatchResult) {
				assert.Equal(t, 100.0, out.TotalScore)
				assert.Equal(t, models.TierElite, out.Tier)
				assert.Equal(t, 1.0, *out.Breakdown.LLMConfidence)
			},
		},
		{
			name: "excluded result passes through",
			result: func() models.MatchResult {
				r := base
				r.IsExcluded = true
				r.TotalScore = 0
				r.Tier = models.TierWeak
				return r
			},
			analysis: testAnalysis,
			weight:   0.3,
			validateOutput: func(t *testing.T, out models.MatchResult) {
				assert.Equal(t, 0.0, out.TotalScore)
				assert.Equal(t, models.MethodRuleBased, out.ScoringMethod)
				assert.Nil(t, out.Breakdown.LLMScore)
			},
		},
	}

	s := newTestScorer()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.validateOutput(t, s.Blend(tt.result(), tt.analysis(), tt.weight))
		})
	}
}
