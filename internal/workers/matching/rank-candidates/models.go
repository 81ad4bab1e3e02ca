// internal/workers/matching/rank-candidates/models.go
package rankcandidates

import "nil-matching/internal/models"

// Candidate origins reported in the output.
const (
	CandidatesInline = "inline"
	CandidatesSearch = "search"
	CandidatesSource = "source"
)

// Input is a bulk match request, optionally carrying the brand view and the
// candidate set inline.
type Input struct {
	models.BulkMatchRequest
	Brand      *models.BrandView    `json:"brand"`
	Candidates []models.SubjectView `json:"candidates"`
}

type Output struct {
	models.BulkMatchResponse
	CandidateSource string `json:"candidateSource"`
}
