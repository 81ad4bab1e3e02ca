// internal/workers/matching/score-match/models.go
package scorematch

import "nil-matching/internal/models"

// Input names the pair by id, inline view, or both. Inline views win.
type Input struct {
	AthleteID  string              `json:"athleteId"`
	BrandID    string              `json:"brandId"`
	CampaignID string              `json:"campaignId"`
	Athlete    *models.SubjectView `json:"athlete"`
	Brand      *models.BrandView   `json:"brand"`
	UseLLM     bool                `json:"useLlm"`
}

type Output struct {
	Match            models.MatchResult `json:"match"`
	IsStrongMatch    bool               `json:"isStrongMatch"`
	QualitativeError string             `json:"qualitativeError,omitempty"`
}
