// internal/matching/blend.go
package matching

import "nil-matching/internal/models"

// DefaultBlendWeight is the share of the hybrid score taken from the
// qualitative assessment.
const DefaultBlendWeight = 0.3

const (
	maxExternalPoints   = 2
	maxExternalConcerns = 2
)

// Blend merges a qualitative assessment into a rule-based result, deriving the
// new tier from the scorer's tables.
func (s *Scorer) Blend(result models.MatchResult, analysis models.LLMAnalysis, weight float64) models.MatchResult {
	return BlendWithTables(s.tables, result, analysis, weight)
}

// BlendWithTables computes rule*(1-w) + external*w and re-derives the tier.
// Excluded results are returned unchanged. A weight outside [0,1] falls back to
// DefaultBlendWeight.
func BlendWithTables(t *Tables, result models.MatchResult, analysis models.LLMAnalysis, weight float64) models.MatchResult {
	if result.IsExcluded {
		return result
	}
	if weight < 0 || weight > 1 {
		weight = DefaultBlendWeight
	}

	external := clamp(analysis.CompatibilityScore, 0, 100)
	confidence := clamp(analysis.Confidence, 0, 1)

	out := result
	out.TotalScore = round1(clamp(result.TotalScore*(1-weight)+external*weight, 0, 100))
	out.Tier = t.Tier(out.TotalScore)
	out.ScoringMethod = models.MethodHybrid
	out.Breakdown.LLMScore = &external
	out.Breakdown.LLMConfidence = &confidence
	out.LLMSummary = analysis.Summary
	out.LLMRecommendation = analysis.Recommendation

	reasons := append([]models.Reason(nil), result.MatchReasons...)
	for i, p := range analysis.AlignmentPoints {
		if i == maxExternalPoints {
			break
		}
		reasons = append(reasons, models.Reason{
			Category: models.CategoryLLMAnalysis,
			Text:     p,
			Impact:   models.ImpactPositive,
		})
	}
	concerns := append([]models.Reason(nil), result.Concerns...)
	for i, c := range analysis.Concerns {
		if i == maxExternalConcerns {
			break
		}
		concerns = append(concerns, models.Reason{
			Category: models.CategoryLLMAnalysis,
			Text:     c,
			Impact:   models.ImpactNegative,
		})
	}
	out.MatchReasons = truncateReasons(nonNil(reasons), maxMatchReasons)
	out.Concerns = truncateReasons(nonNil(concerns), maxConcerns)
	return out
}

func nonNil(rs []models.Reason) []models.Reason {
	if rs == nil {
		return []models.Reason{}
	}
	return rs
}
