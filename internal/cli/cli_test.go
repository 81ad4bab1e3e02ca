package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nil-matching/internal/models"
	"nil-matching/pkg/registry"
)

func writeFixture(t *testing.T, name string, v interface{}) string {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	err := cmd.Execute()
	return out.String(), err
}

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

func brandFixture(t *testing.T) string {
	return writeFixture(t, "brand.json", models.BrandView{
		ID: "brand-1", CompanyName: "Stride Athletics", Category: models.CategoryAthleticApparel,
	})
}

func candidatesFixture(t *testing.T) string {
	return writeFixture(t, "candidates.json", []models.SubjectView{
		candidate("a", 120_000, 4.2),
		candidate("b", 1_200_000, 8.5),
		candidate("c", 3_000, 0.5),
		candidate("d", 30_000, 3.1),
	})
}

// ==========================
// score
// ==========================

func TestScoreCommand(t *testing.T) {
	athlete := writeFixture(t, "athlete.json", candidate("athlete-1", 120_000, 4.2))
	brand := brandFixture(t)

	t.Run("json", func(t *testing.T) {
		out, err := run(t, "score", "--athlete", athlete, "--brand", brand, "--campaign-id", "campaign-9", "-o", "json")
		require.NoError(t, err)

		var result models.MatchResult
		require.NoError(t, json.Unmarshal([]byte(out), &result))
		assert.Equal(t, 68.5, result.TotalScore)
		assert.Equal(t, models.TierGood, result.Tier)
		assert.Equal(t, "campaign-9", result.CampaignID)
	})

	t.Run("table", func(t *testing.T) {
		out, err := run(t, "score", "--athlete", athlete, "--brand", brand)
		require.NoError(t, err)
		assert.Contains(t, out, "68.5")
		assert.Contains(t, out, "GOOD")
	})

	t.Run("missing brand id", func(t *testing.T) {
		noID := writeFixture(t, "brand.json", models.BrandView{CompanyName: "Nameless"})
		_, err := run(t, "score", "--athlete", athlete, "--brand", noID)
		assert.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := run(t, "score", "--athlete", filepath.Join(t.TempDir(), "nope.json"), "--brand", brand)
		assert.ErrorContains(t, err, "nope.json")
	})

	t.Run("unknown output format", func(t *testing.T) {
		_, err := run(t, "score", "--athlete", athlete, "--brand", brand, "-o", "yaml")
		assert.ErrorContains(t, err, "unknown output format")
	})
}

// ==========================
// rank
// ==========================

func TestRankCommand(t *testing.T) {
	brand := brandFixture(t)
	candidates := candidatesFixture(t)

	tests := []struct {
		name           string
		args           []string
		wantErr        bool
		validateOutput func(t *testing.T, result models.RankResult)
	}{
		{
			name: "default order",
			validateOutput: func(t *testing.T, result models.RankResult) {
				assert.Equal(t, []string{"b", "a", "d", "c"}, ids(result.Matches))
				assert.Equal(t, 4, result.TotalCandidates)
			},
		},
		{
			name: "followers ascending with limit",
			args: []string{"--sort-by", "followers", "--sort-order", "asc", "--limit", "2"},
			validateOutput: func(t *testing.T, result models.RankResult) {
				assert.Equal(t, []string{"c", "d"}, ids(result.Matches))
			},
		},
		{
			name: "min score",
			args: []string{"--min-score", "68.5"},
			validateOutput: func(t *testing.T, result models.RankResult) {
				assert.Equal(t, []string{"b", "a"}, ids(result.Matches))
			},
		},
		{
			name:    "invalid sort key",
			args:    []string{"--sort-by", "name"},
			wantErr: true,
		},
		{
			name:    "limit above cap",
			args:    []string{"--limit", "101"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"rank", "--brand", brand, "--candidates", candidates, "-o", "json"}, tt.args...)
			out, err := run(t, args...)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)

			var result models.RankResult
			require.NoError(t, json.Unmarshal([]byte(out), &result))
			tt.validateOutput(t, result)
		})
	}
}

func TestRankCommand_Filters(t *testing.T) {
	filters := writeFixture(t, "filters.json", models.MatchFilters{MaxFollowers: 200_000})

	out, err := run(t, "rank", "--brand", brandFixture(t), "--candidates", candidatesFixture(t), "--filters", filters, "-o", "json")
	require.NoError(t, err)

	var result models.RankResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, []string{"a", "d", "c"}, ids(result.Matches))
}

func TestRankCommand_Table(t *testing.T) {
	out, err := run(t, "rank", "--brand", brandFixture(t), "--candidates", candidatesFixture(t))
	require.NoError(t, err)
	assert.Contains(t, out, "4 of 4 candidates matched")
}

func ids(ms []models.MatchResult) []string {
	out := make([]string, 0, len(ms))
	for _, m := range ms {
		out = append(out, m.SubjectID)
	}
	return out
}

// ==========================
// recommend
// ==========================

func TestRecommendCommand(t *testing.T) {
	athlete := candidate("a", 120_000, 4.2)
	athlete.ExcludedBrands = []string{"rival co"}
	athletePath := writeFixture(t, "athlete.json", athlete)
	brands := writeFixture(t, "brands.json", []models.BrandView{
		{ID: "brand-3", CompanyName: "First Bank", Category: models.CategoryBanking},
		{ID: "brand-2", CompanyName: "Rival Co", Category: models.CategoryAthleticApparel},
		{ID: "brand-1", CompanyName: "Stride Athletics", Category: models.CategoryAthleticApparel},
	})

	out, err := run(t, "recommend", "--athlete", athletePath, "--brands", brands, "-o", "json")
	require.NoError(t, err)

	var recs []models.BrandRecommendation
	require.NoError(t, json.Unmarshal([]byte(out), &recs))
	require.Len(t, recs, 2)
	assert.Equal(t, "brand-1", recs[0].BrandID)
	assert.Equal(t, 68.5, recs[0].FitScore)
	assert.Equal(t, "brand-3", recs[1].BrandID)
	assert.Less(t, recs[1].FitScore, recs[0].FitScore)

	out, err = run(t, "recommend", "--athlete", athletePath, "--brands", brands, "--limit", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Stride")
	assert.NotContains(t, out, "Bank")

	_, err = run(t, "recommend", "--athlete", athletePath, "--brands", brands, "--limit", "0")
	assert.ErrorContains(t, err, "limit")
}

// ==========================
// tables
// ==========================

func TestTablesCommand(t *testing.T) {
	out, err := run(t, "tables")
	require.NoError(t, err)
	assert.Contains(t, out, "audience_fit")
	assert.Contains(t, out, "reach_tiers")

	bad := filepath.Join(t.TempDir(), "tables.toml")
	require.NoError(t, os.WriteFile(bad, []byte("[weights]\naudience_fit = 10.0\n"), 0o644))
	_, err = run(t, "tables", "--tables", bad)
	assert.Error(t, err)
}

// ==========================
// registry
// ==========================

func TestRegistryCommand(t *testing.T) {
	t.Run("list", func(t *testing.T) {
		out, err := run(t, "registry", "list", "-o", "json")
		require.NoError(t, err)

		var reg registry.ActivityRegistry
		require.NoError(t, json.Unmarshal([]byte(out), &reg))
		assert.Contains(t, reg.TaskTypes(), "rank-candidates")
	})

	t.Run("validate embedded", func(t *testing.T) {
		out, err := run(t, "registry", "validate")
		require.NoError(t, err)
		assert.Contains(t, out, "Registry validation passed")
	})

	t.Run("update writes the file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "registry.json")
		require.NoError(t, registry.Save(registry.MustDefault(), path))

		_, err := run(t, "registry", "update", "--path", path, "rank-candidates", "timeout", "90s")
		require.NoError(t, err)

		reg, err := registry.LoadRegistry(path)
		require.NoError(t, err)
		a, ok := reg.Find("rank-candidates")
		require.True(t, ok)
		assert.Equal(t, "90s", a.Timeout)
	})

	t.Run("update needs a path", func(t *testing.T) {
		_, err := run(t, "registry", "update", "rank-candidates", "timeout", "90s")
		assert.ErrorContains(t, err, "--path")
	})
}

// ==========================
// index batching
// ==========================

type stubIndexer struct {
	batches []int
	failOn  int
}

func (s *stubIndexer) IndexSubjects(_ context.Context, views []models.SubjectView) (int, error) {
	s.batches = append(s.batches, len(views))
	if s.failOn > 0 && len(s.batches) == s.failOn {
		return 0, errors.New("bulk rejected")
	}
	return len(views), nil
}

func TestIndexInBatches(t *testing.T) {
	views := make([]models.SubjectView, 5)

	idx := &stubIndexer{}
	var progress bytes.Buffer
	n, err := indexInBatches(context.Background(), idx, views, 2, &progress)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, []int{2, 2, 1}, idx.batches)
	assert.Contains(t, progress.String(), "batch 5-5: 1 accepted")

	failing := &stubIndexer{failOn: 2}
	n, err = indexInBatches(context.Background(), failing, views, 2, &progress)
	assert.Error(t, err)
	assert.Equal(t, 2, n)
	assert.Len(t, failing.batches, 2)

	n, err = indexInBatches(context.Background(), &stubIndexer{}, nil, 0, &progress)
	require.NoError(t, err)
	assert.Zero(t, n)
}
