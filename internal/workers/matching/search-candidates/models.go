// internal/workers/matching/search-candidates/models.go
package searchcandidates

import "nil-matching/internal/models"

type Input struct {
	Filters    models.MatchFilters `json:"filters"`
	ExcludeIDs []string            `json:"excludeIds"`
	From       int                 `json:"from"`
	Limit      int                 `json:"limit"`
}

type Output struct {
	Candidates   []models.SubjectView `json:"candidates"`
	CandidateIDs []string             `json:"candidateIds"`
	TotalHits    int64                `json:"totalHits"`
	Took         int                  `json:"took"`
}
