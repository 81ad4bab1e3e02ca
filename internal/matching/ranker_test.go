// internal/matching/ranker_test.go
package matching

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nil-matching/internal/models"
)

func candidate(id string, followers int, rate float64) models.SubjectView {
	return models.SubjectView{
		ID:                id,
		DisplayName:       "Athlete " + id,
		Sport:             models.SportFootball,
		School:            "School " + id,
		TotalFollowers:    followers,
		AvgEngagementRate: rate,
	}
}

// Against apparelBrand every football candidate earns 52.5 outside the
// engagement component.
func testCandidates() []models.SubjectView {
	return []models.SubjectView{
		candidate("a", 120_000, 4.2),   // 68.5 GOOD
		candidate("b", 1_200_000, 8.5), // 72.5 STRONG
		candidate("c", 3_000, 0.5),     // 54.5 MODERATE
		candidate("d", 30_000, 3.1),    // 63.5 GOOD
	}
}

func matchIDs(ms []models.MatchResult) []string {
	out := make([]string, 0, len(ms))
	for _, m := range ms {
		out = append(out, m.SubjectID)
	}
	return out
}

func TestRank(t *testing.T) {
	tests := []struct {
		name           string
		candidates     func() []models.SubjectView
		opts           models.RankOptions
		validateOutput func(t *testing.T, result models.RankResult)
	}{
		{
			name:       "default sort is score descending",
			candidates: testCandidates,
			validateOutput: func(t *testing.T, result models.RankResult) {
				assert.Equal(t, []string{"b", "a", "d", "c"}, matchIDs(result.Matches))
				assert.Equal(t, 4, result.TotalCandidates)
				assert.InDelta(t, (72.5+68.5+63.5+54.5)/4, result.AvgScore, 1e-9)
			},
		},
		{
			name:       "limit truncates before summary",
			candidates: testCandidates,
			opts:       models.RankOptions{Limit: 2},
			validateOutput: func(t *testing.T, result models.RankResult) {
				assert.Equal(t, []string{"b", "a"}, matchIDs(result.Matches))
				assert.InDelta(t, 70.5, result.AvgScore, 1e-9)
				assert.Equal(t, map[models.Tier]int{
					models.TierElite:    0,
					models.TierStrong:   1,
					models.TierGood:     1,
					models.TierModerate: 0,
					models.TierWeak:     0,
				}, result.TierDistribution)
			},
		},
		{
			name:       "min score is inclusive",
			candidates: testCandidates,
			opts:       models.RankOptions{MinScore: 63.5},
			validateOutput: func(t *testing.T, result models.RankResult) {
				assert.Equal(t, []string{"b", "a", "d"}, matchIDs(result.Matches))
			},
		},
		{
			name:       "followers ascending",
			candidates: testCandidates,
			opts:       models.RankOptions{SortBy: models.SortByFollowers, SortOrder: models.SortAsc},
			validateOutput: func(t *testing.T, result models.RankResult) {
				assert.Equal(t, []string{"c", "d", "a", "b"}, matchIDs(result.Matches))
			},
		},
		{
			name:       "engagement descending",
			candidates: testCandidates,
			opts:       models.RankOptions{SortBy: models.SortByEngagement},
			validateOutput: func(t *testing.T, result models.RankResult) {
				assert.Equal(t, []string{"b", "a", "d", "c"}, matchIDs(result.Matches))
			},
		},
		{
			name: "excluded routed only when requested",
			candidates: func() []models.SubjectView {
				cs := testCandidates()
				cs[1].ExcludedBrands = []string{"stride athletics"}
				return cs
			},
			opts: models.RankOptions{IncludeExcluded: true},
			validateOutput: func(t *testing.T, result models.RankResult) {
				assert.Equal(t, []string{"a", "d", "c"}, matchIDs(result.Matches))
				require.Len(t, result.Excluded, 1)
				assert.Equal(t, "b", result.Excluded[0].SubjectID)
				assert.Equal(t, 4, result.TotalCandidates)
			},
		},
		{
			name: "excluded dropped by default",
			candidates: func() []models.SubjectView {
				cs := testCandidates()
				cs[1].ExcludedBrands = []string{"Stride Athletics"}
				return cs
			},
			validateOutput: func(t *testing.T, result models.RankResult) {
				assert.Equal(t, []string{"a", "d", "c"}, matchIDs(result.Matches))
				assert.NotNil(t, result.Excluded)
				assert.Empty(t, result.Excluded)
			},
		},
		{
			name: "sport and conference pre-filters",
			candidates: func() []models.SubjectView {
				cs := testCandidates()
				cs[0].Conference = models.ConferenceSEC
				cs[2].Conference = models.ConferenceSEC
				cs[3].Sport = models.SportBasketball
				cs[3].Conference = models.ConferenceSEC
				return cs
			},
			opts: models.RankOptions{Filters: models.MatchFilters{
				Sports:      []models.Sport{models.SportFootball},
				Conferences: []models.Conference{models.ConferenceSEC},
			}},
			validateOutput: func(t *testing.T, result models.RankResult) {
				assert.Equal(t, []string{"a", "c"}, matchIDs(result.Matches))
				assert.Equal(t, 4, result.TotalCandidates)
			},
		},
		{
			name:       "max followers pre-filter",
			candidates: testCandidates,
			opts:       models.RankOptions{Filters: models.MatchFilters{MaxFollowers: 120_000}},
			validateOutput: func(t *testing.T, result models.RankResult) {
				assert.Equal(t, []string{"a", "d", "c"}, matchIDs(result.Matches))
			},
		},
		{
			name:       "min followers override floors reach without dropping",
			candidates: testCandidates,
			opts:       models.RankOptions{Filters: models.MatchFilters{MinFollowers: 100_000}},
			validateOutput: func(t *testing.T, result models.RankResult) {
				assert.Equal(t, []string{"b", "a", "d", "c"}, matchIDs(result.Matches))
				// d loses its 6 reach points, c its 2
				assert.Equal(t, 57.5, result.Matches[2].TotalScore)
				assert.Equal(t, 52.5, result.Matches[3].TotalScore)
			},
		},
		{
			name: "campaign exclusions and verification",
			candidates: func() []models.SubjectView {
				cs := testCandidates()
				for i := range cs {
					cs[i].HasVerifiedAccount = true
				}
				cs[2].HasVerifiedAccount = false
				return cs
			},
			opts: models.RankOptions{
				ExcludedSubjects: []string{"b"},
				ExcludedSchools:  []string{"school D"},
				RequireVerified:  true,
			},
			validateOutput: func(t *testing.T, result models.RankResult) {
				assert.Equal(t, []string{"a"}, matchIDs(result.Matches))
			},
		},
		{
			name:       "empty candidate list",
			candidates: func() []models.SubjectView { return nil },
			validateOutput: func(t *testing.T, result models.RankResult) {
				assert.Empty(t, result.Matches)
				assert.Equal(t, 0.0, result.AvgScore)
				assert.Len(t, result.TierDistribution, 5)
			},
		},
	}

	r := NewRanker(newTestScorer(), 2)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.validateOutput(t, r.Rank(apparelBrand(), tt.candidates(), tt.opts))
		})
	}
}

func TestRank_StableForEqualKeys(t *testing.T) {
	var cs []models.SubjectView
	for _, id := range []string{"p", "q", "r", "s", "t", "u", "v", "w"} {
		cs = append(cs, candidate(id, 50_000, 3.0))
	}
	r := NewRanker(newTestScorer(), 4)

	first := r.Rank(apparelBrand(), cs, models.RankOptions{})
	second := r.Rank(apparelBrand(), cs, models.RankOptions{})

	assert.Equal(t, []string{"p", "q", "r", "s", "t", "u", "v", "w"}, matchIDs(first.Matches))
	assert.Equal(t, first, second)
}

func TestRank_DoesNotMutateBrand(t *testing.T) {
	brand := apparelBrand()
	brand.PreferredSports = []models.Sport{models.SportFootball}
	r := NewRanker(newTestScorer(), 1)

	r.Rank(brand, testCandidates(), models.RankOptions{Filters: models.MatchFilters{
		MinFollowers: 10_000,
		Sports:       []models.Sport{models.SportBasketball},
		ContentTypes: []models.ContentType{models.ContentReels},
	}})

	assert.Equal(t, 0, brand.MinFollowers)
	assert.Equal(t, []models.Sport{models.SportFootball}, brand.PreferredSports)
	assert.Nil(t, brand.RequiredContentTypes)
}

func TestRank_AppliesHooksBeforeFiltering(t *testing.T) {
	r := NewRanker(newTestScorer(), 3)
	boost := func(_ models.BrandView, subject models.SubjectView, result models.MatchResult) models.MatchResult {
		if subject.ID == "c" {
			result.TotalScore = 99
		}
		return result
	}

	result := r.Rank(apparelBrand(), testCandidates(), models.RankOptions{MinScore: 70}, boost)

	assert.Equal(t, []string{"c", "b"}, matchIDs(result.Matches))
}

func TestRank_HooksSeeOverriddenBrand(t *testing.T) {
	r := NewRanker(newTestScorer(), 3)
	var mu sync.Mutex
	var seen []int
	record := func(brand models.BrandView, _ models.SubjectView, result models.MatchResult) models.MatchResult {
		mu.Lock()
		seen = append(seen, brand.MinFollowers)
		mu.Unlock()
		return result
	}

	caller := apparelBrand()
	r.Rank(caller, testCandidates(), models.RankOptions{Filters: models.MatchFilters{
		MinFollowers: 200_000,
	}}, record)

	require.NotEmpty(t, seen)
	for _, v := range seen {
		assert.Equal(t, 200_000, v)
	}
	assert.Equal(t, apparelBrand().MinFollowers, caller.MinFollowers)
}

func TestRecommendBrands(t *testing.T) {
	r := NewRanker(newTestScorer(), 0)
	subject := footballSubject()
	subject.ExcludedBrands = []string{"Cellar"}

	brands := []models.BrandView{
		{ID: "gaming", CompanyName: "Pixel", Category: models.CategoryGaming},
		{ID: "apparel", CompanyName: "Stride", Category: models.CategoryAthleticApparel},
		{ID: "alcohol", CompanyName: "Cellar", Category: models.CategoryAlcohol},
	}

	recs := r.RecommendBrands(subject, brands, 5)

	require.Len(t, recs, 2)
	assert.Equal(t, "apparel", recs[0].BrandID)
	assert.Equal(t, 68.5, recs[0].FitScore)
	assert.Equal(t, models.TierGood, recs[0].Tier)
	assert.Equal(t, "gaming", recs[1].BrandID)
	assert.NotEmpty(t, recs[0].MatchReasons)

	assert.Len(t, r.RecommendBrands(subject, brands, 1), 1)
}
