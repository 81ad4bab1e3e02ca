// internal/matching/ranker.go
package matching

import (
	"runtime"
	"sort"
	"strings"
	"sync"

	"nil-matching/internal/models"
)

// ResultHook post-processes a non-excluded result before it is filtered and
// sorted. The qualitative stage plugs in here.
type ResultHook func(brand models.BrandView, subject models.SubjectView, result models.MatchResult) models.MatchResult

// Ranker scores a candidate set against one brand and orders the survivors.
type Ranker struct {
	scorer      *Scorer
	concurrency int
}

func NewRanker(scorer *Scorer, concurrency int) *Ranker {
	if concurrency <= 0 {
		concurrency = runtime.GOMAXPROCS(0)
	}
	return &Ranker{scorer: scorer, concurrency: concurrency}
}

func (r *Ranker) Scorer() *Scorer { return r.scorer }

// Rank applies request overrides to a copy of brand, drops candidates failing a
// pre-filter, scores the rest, then filters, sorts, and truncates. The caller's
// brand is never modified.
func (r *Ranker) Rank(brand models.BrandView, candidates []models.SubjectView, opts models.RankOptions, hooks ...ResultHook) models.RankResult {
	opts = opts.Normalize()
	working := applyOverrides(brand, opts.Filters)

	survivors := make([]models.SubjectView, 0, len(candidates))
	for _, c := range candidates {
		if passesPreFilters(c, opts) {
			survivors = append(survivors, c)
		}
	}

	scored := r.scoreAll(working, survivors, opts.CampaignID, hooks)

	result := models.RankResult{
		Matches:         []models.MatchResult{},
		Excluded:        []models.MatchResult{},
		TotalCandidates: len(candidates),
	}
	for _, res := range scored {
		if res.IsExcluded {
			if opts.IncludeExcluded {
				result.Excluded = append(result.Excluded, res)
			}
			continue
		}
		if res.TotalScore >= opts.MinScore {
			result.Matches = append(result.Matches, res)
		}
	}

	sortMatches(result.Matches, opts.SortBy, opts.SortOrder)
	if len(result.Matches) > opts.Limit {
		result.Matches = result.Matches[:opts.Limit]
	}

	result.AvgScore, result.TierDistribution = summarize(result.Matches)
	return result
}

// scoreAll fans out across a bounded pool. Output order matches input order.
func (r *Ranker) scoreAll(brand models.BrandView, subjects []models.SubjectView, campaignID string, hooks []ResultHook) []models.MatchResult {
	out := make([]models.MatchResult, len(subjects))
	sem := make(chan struct{}, r.concurrency)
	var wg sync.WaitGroup

	for i := range subjects {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()

			res := r.scorer.Score(subjects[i], brand, campaignID)
			if !res.IsExcluded {
				for _, hook := range hooks {
					res = hook(brand, subjects[i], res)
				}
			}
			out[i] = res
		}(i)
	}
	wg.Wait()
	return out
}

// RecommendBrands scores one subject against many brands and returns the best
// non-excluded fits.
func (r *Ranker) RecommendBrands(subject models.SubjectView, brands []models.BrandView, limit int) []models.BrandRecommendation {
	if limit <= 0 {
		limit = models.DefaultRankLimit
	}
	type scoredBrand struct {
		brand  models.BrandView
		result models.MatchResult
	}
	var scored []scoredBrand
	for _, b := range brands {
		res := r.scorer.Score(subject, b, "")
		if res.IsExcluded {
			continue
		}
		scored = append(scored, scoredBrand{brand: b, result: res})
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].result.TotalScore > scored[j].result.TotalScore
	})
	if len(scored) > limit {
		scored = scored[:limit]
	}

	recs := make([]models.BrandRecommendation, 0, len(scored))
	for _, s := range scored {
		reasons := make([]string, 0, len(s.result.MatchReasons))
		for _, mr := range s.result.MatchReasons {
			reasons = append(reasons, mr.Text)
		}
		recs = append(recs, models.BrandRecommendation{
			BrandID:      s.brand.ID,
			BrandName:    s.brand.CompanyName,
			Category:     s.brand.Category,
			FitScore:     s.result.TotalScore,
			Tier:         s.result.Tier,
			MatchReasons: reasons,
		})
	}
	return recs
}

func applyOverrides(brand models.BrandView, f models.MatchFilters) models.BrandView {
	working := brand.Clone()
	if f.MinFollowers > 0 {
		working.MinFollowers = f.MinFollowers
	}
	if f.MinEngagementRate > 0 {
		working.MinEngagementRate = f.MinEngagementRate
	}
	if len(f.Sports) > 0 {
		working.PreferredSports = append([]models.Sport(nil), f.Sports...)
	}
	if len(f.Conferences) > 0 {
		working.PreferredConferences = append([]models.Conference(nil), f.Conferences...)
	}
	if len(f.ContentTypes) > 0 {
		working.RequiredContentTypes = append([]models.ContentType(nil), f.ContentTypes...)
	}
	return working
}

func passesPreFilters(s models.SubjectView, opts models.RankOptions) bool {
	f := opts.Filters
	if len(f.Sports) > 0 && !containsSport(f.Sports, s.Sport) {
		return false
	}
	if len(f.Conferences) > 0 && !containsConference(f.Conferences, s.Conference) {
		return false
	}
	if f.MaxFollowers > 0 && s.TotalFollowers > f.MaxFollowers {
		return false
	}
	for _, id := range opts.ExcludedSubjects {
		if id == s.ID {
			return false
		}
	}
	for _, school := range opts.ExcludedSchools {
		if s.School != "" && strings.EqualFold(school, s.School) {
			return false
		}
	}
	if opts.RequireVerified && !s.HasVerifiedAccount {
		return false
	}
	return true
}

// sortMatches is stable so equal keys keep input order.
func sortMatches(ms []models.MatchResult, key models.SortKey, order models.SortOrder) {
	keyOf := func(m models.MatchResult) float64 {
		switch key {
		case models.SortByFollowers:
			return float64(m.SubjectFollowers)
		case models.SortByEngagement:
			return m.SubjectEngagementRate
		default:
			return m.TotalScore
		}
	}
	sort.SliceStable(ms, func(i, j int) bool {
		if order == models.SortAsc {
			return keyOf(ms[i]) < keyOf(ms[j])
		}
		return keyOf(ms[i]) > keyOf(ms[j])
	})
}

func summarize(ms []models.MatchResult) (float64, map[models.Tier]int) {
	dist := make(map[models.Tier]int, len(models.AllTiers))
	for _, t := range models.AllTiers {
		dist[t] = 0
	}
	if len(ms) == 0 {
		return 0, dist
	}
	var sum float64
	for _, m := range ms {
		sum += m.TotalScore
		dist[m.Tier]++
	}
	return sum / float64(len(ms)), dist
}
