// internal/models/match.go
package models

import "time"

// Tier is the discrete quality bucket derived from a total score.
type Tier string

const (
	TierElite    Tier = "ELITE"
	TierStrong   Tier = "STRONG"
	TierGood     Tier = "GOOD"
	TierModerate Tier = "MODERATE"
	TierWeak     Tier = "WEAK"
)

// AllTiers lists tiers from best to worst.
var AllTiers = []Tier{TierElite, TierStrong, TierGood, TierModerate, TierWeak}

// Rank orders tiers so that a better tier has a larger rank. Unknown tiers rank 0.
func (t Tier) Rank() int {
	switch t {
	case TierElite:
		return 5
	case TierStrong:
		return 4
	case TierGood:
		return 3
	case TierModerate:
		return 2
	case TierWeak:
		return 1
	}
	return 0
}

// IsStrongMatch reports ELITE or STRONG.
func (t Tier) IsStrongMatch() bool {
	return t == TierElite || t == TierStrong
}

type ScoringMethod string

const (
	MethodRuleBased   ScoringMethod = "rule_based"
	MethodLLMEnhanced ScoringMethod = "llm_enhanced"
	MethodHybrid      ScoringMethod = "hybrid"
)

type Impact string

const (
	ImpactPositive Impact = "positive"
	ImpactNegative Impact = "negative"
	ImpactNeutral  Impact = "neutral"
)

// Reason categories.
const (
	CategoryAudienceFit       = "audience_fit"
	CategoryContentFit        = "content_fit"
	CategoryEngagementQuality = "engagement_quality"
	CategoryValuesAlignment   = "values_alignment"
	CategoryLLMAnalysis       = "llm_analysis"
)

// Reason is one explanatory atom attached to a match.
type Reason struct {
	Category     string   `json:"category"`
	Text         string   `json:"reason"`
	Impact       Impact   `json:"impact"`
	Contribution *float64 `json:"scoreContribution,omitempty"`
}

type Breakdown struct {
	AudienceFit       float64  `json:"audienceFit"`
	ContentFit        float64  `json:"contentFit"`
	EngagementQuality float64  `json:"engagementQuality"`
	ValuesAlignment   float64  `json:"valuesAlignment"`
	LLMScore          *float64 `json:"llmScore,omitempty"`
	LLMConfidence     *float64 `json:"llmConfidence,omitempty"`
}

// RuleBasedTotal sums the four weighted sub-scores.
func (b Breakdown) RuleBasedTotal() float64 {
	return b.AudienceFit + b.ContentFit + b.EngagementQuality + b.ValuesAlignment
}

type MatchResult struct {
	SubjectID  string `json:"athleteId"`
	BrandID    string `json:"brandId"`
	CampaignID string `json:"campaignId,omitempty"`

	SubjectName           string  `json:"athleteName,omitempty"`
	SubjectSport          Sport   `json:"athleteSport,omitempty"`
	SubjectSchool         string  `json:"athleteSchool,omitempty"`
	SubjectFollowers      int     `json:"athleteFollowers"`
	SubjectEngagementRate float64 `json:"athleteEngagementRate"`

	TotalScore    float64       `json:"totalScore"`
	Tier          Tier          `json:"tier"`
	Breakdown     Breakdown     `json:"breakdown"`
	ScoringMethod ScoringMethod `json:"scoringMethod"`

	MatchReasons []Reason `json:"matchReasons"`
	Concerns     []Reason `json:"concerns"`

	IsExcluded      bool   `json:"isExcluded"`
	ExclusionReason string `json:"exclusionReason,omitempty"`

	LLMSummary        string `json:"llmSummary,omitempty"`
	LLMRecommendation string `json:"llmRecommendation,omitempty"`

	CalculatedAt time.Time `json:"calculatedAt"`
}

// LLMAnalysis is an external qualitative assessment of one pairing.
type LLMAnalysis struct {
	CompatibilityScore float64  `json:"compatibility_score"`
	Confidence         float64  `json:"confidence"`
	AlignmentPoints    []string `json:"alignment_points"`
	Concerns           []string `json:"concerns"`
	RiskFactors        []string `json:"risk_factors"`
	Summary            string   `json:"summary"`
	Recommendation     string   `json:"recommendation"`
	Provider           string   `json:"provider"`
	Model              string   `json:"model"`
	TokensUsed         int      `json:"tokens_used"`
	LatencyMs          int64    `json:"latency_ms"`
}
