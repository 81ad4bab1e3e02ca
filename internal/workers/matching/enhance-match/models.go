// internal/workers/matching/enhance-match/models.go
package enhancematch

import "nil-matching/internal/models"

type Input struct {
	Athlete models.SubjectView `json:"athlete"`
	Brand   models.BrandView   `json:"brand"`
	Match   models.MatchResult `json:"match"`
}

type Output struct {
	Match            models.MatchResult `json:"match"`
	Enhanced         bool               `json:"enhanced"`
	QualitativeError string             `json:"qualitativeError,omitempty"`
}
