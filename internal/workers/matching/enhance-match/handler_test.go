package enhancematch

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "nil-matching/internal/common/errors"
	"nil-matching/internal/common/logger"
	"nil-matching/internal/matching"
	"nil-matching/internal/models"
	"nil-matching/internal/qualitative"
)

type stubAssessor struct {
	analysis *models.LLMAnalysis
	err      error
	calls    int
}

func (s *stubAssessor) Assess(context.Context, models.SubjectView, models.BrandView, models.MatchResult) (*models.LLMAnalysis, error) {
	s.calls++
	return s.analysis, s.err
}

func scenario(scorer *matching.Scorer) *Input {
	athlete := models.SubjectView{
		ID:                "athlete-1",
		DisplayName:       "Jordan Miles",
		Sport:             models.SportFootball,
		TotalFollowers:    120000,
		AvgEngagementRate: 4.2,
	}
	brand := models.BrandView{ID: "brand-1", CompanyName: "Stride Athletics", Category: models.CategoryAthleticApparel}
	return &Input{Athlete: athlete, Brand: brand, Match: scorer.Score(athlete, brand, "")}
}

// ==========================
// Execute
// ==========================

func TestHandler_Execute(t *testing.T) {
	tests := []struct {
		name           string
		assessor       *stubAssessor
		failOnError    bool
		mutate         func(in *Input)
		wantCode       apperrors.ErrorCode
		validateOutput func(t *testing.T, out *Output, a *stubAssessor)
	}{
		{
			name:     "blends assessment",
			assessor: &stubAssessor{analysis: &models.LLMAnalysis{CompatibilityScore: 80.5, Confidence: 0.8, Recommendation: "Pursue"}},
			validateOutput: func(t *testing.T, out *Output, _ *stubAssessor) {
				assert.True(t, out.Enhanced)
				assert.InDelta(t, 72.1, out.Match.TotalScore, 1e-9)
				assert.Equal(t, models.TierStrong, out.Match.Tier)
				assert.Equal(t, "Pursue", out.Match.LLMRecommendation)
			},
		},
		{
			name:     "failure degrades to rule score",
			assessor: &stubAssessor{err: errors.New("upstream overloaded")},
			validateOutput: func(t *testing.T, out *Output, _ *stubAssessor) {
				assert.False(t, out.Enhanced)
				assert.Equal(t, 68.5, out.Match.TotalScore)
				assert.Equal(t, "upstream overloaded", out.QualitativeError)
			},
		},
		{
			name:        "failure becomes job error",
			assessor:    &stubAssessor{err: errors.New("upstream overloaded")},
			failOnError: true,
			wantCode:    apperrors.ErrCodeQualitativeFailed,
		},
		{
			name:        "timeout becomes retryable job error",
			assessor:    &stubAssessor{err: context.DeadlineExceeded},
			failOnError: true,
			wantCode:    apperrors.ErrCodeQualitativeTimeout,
		},
		{
			name:        "no enhancer",
			failOnError: true,
			wantCode:    apperrors.ErrCodeQualitativeUnavailable,
		},
		{
			name:     "already hybrid is passed through",
			assessor: &stubAssessor{},
			mutate: func(in *Input) {
				in.Match.ScoringMethod = models.MethodHybrid
			},
			validateOutput: func(t *testing.T, out *Output, a *stubAssessor) {
				assert.False(t, out.Enhanced)
				assert.Zero(t, a.calls)
			},
		},
		{
			name:     "mismatched pair",
			assessor: &stubAssessor{},
			mutate: func(in *Input) {
				in.Brand.ID = "brand-2"
			},
			wantCode: apperrors.ErrCodeValidationFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scorer := matching.NewScorer(matching.DefaultTables())
			log := logger.NewTestLogger(t)

			var enhancer *qualitative.Enhancer
			if tt.assessor != nil {
				enhancer = qualitative.NewEnhancer(tt.assessor, scorer, matching.DefaultBlendWeight, log)
			}
			h := NewHandler(&Config{Timeout: 5 * time.Second, FailOnError: tt.failOnError}, enhancer, log)

			input := scenario(scorer)
			if tt.mutate != nil {
				tt.mutate(input)
			}

			out, err := h.Execute(context.Background(), input)
			if tt.wantCode != "" {
				require.Error(t, err)
				assert.Equal(t, tt.wantCode, apperrors.CodeOf(err))
				return
			}
			require.NoError(t, err)
			tt.validateOutput(t, out, tt.assessor)
		})
	}
}
