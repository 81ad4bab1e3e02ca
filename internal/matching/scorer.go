// internal/matching/scorer.go
package matching

import (
	"errors"
	"math"
	"strings"
	"time"

	"nil-matching/internal/models"
)

var (
	ErrMissingSubjectID = errors.New("subject id is required")
	ErrMissingBrandID   = errors.New("brand id is required")
)

const (
	maxMatchReasons = 5
	maxConcerns     = 3
)

// Scorer computes rule-based compatibility for one subject/brand pair.
// It holds no per-call state and is safe for concurrent use.
type Scorer struct {
	tables *Tables
	now    func() time.Time
}

type ScorerOption func(*Scorer)

// WithClock overrides the clock used for CalculatedAt.
func WithClock(now func() time.Time) ScorerOption {
	return func(s *Scorer) { s.now = now }
}

func NewScorer(tables *Tables, opts ...ScorerOption) *Scorer {
	if tables == nil {
		tables = DefaultTables()
	}
	s := &Scorer{tables: tables, now: func() time.Time { return time.Now().UTC() }}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Scorer) Tables() *Tables { return s.tables }

// Validate checks the identifiers Score relies on. Callers run it at the input
// boundary; Score itself does not.
func (s *Scorer) Validate(subject models.SubjectView, brand models.BrandView) error {
	if strings.TrimSpace(subject.ID) == "" {
		return ErrMissingSubjectID
	}
	if strings.TrimSpace(brand.ID) == "" {
		return ErrMissingBrandID
	}
	return nil
}

// Score runs the exclusion check and the four weighted components.
func (s *Scorer) Score(subject models.SubjectView, brand models.BrandView, campaignID string) models.MatchResult {
	result := models.MatchResult{
		SubjectID:             subject.ID,
		BrandID:               brand.ID,
		CampaignID:            campaignID,
		SubjectName:           subject.DisplayName,
		SubjectSport:          subject.Sport,
		SubjectSchool:         subject.School,
		SubjectFollowers:      subject.TotalFollowers,
		SubjectEngagementRate: subject.AvgEngagementRate,
		ScoringMethod:         models.MethodRuleBased,
		MatchReasons:          []models.Reason{},
		Concerns:              []models.Reason{},
		CalculatedAt:          s.now(),
	}

	if reason, excluded := exclusion(subject, brand); excluded {
		result.TotalScore = 0
		result.Tier = models.TierWeak
		result.IsExcluded = true
		result.ExclusionReason = reason
		return result
	}

	audience, audienceReasons := s.audienceFit(subject, brand)
	content, contentReasons := s.contentFit(subject, brand)
	engagement, engagementReasons := s.engagementQuality(subject, brand)
	values, valuesReasons := s.valuesAlignment(subject, brand)

	for _, group := range [][]models.Reason{audienceReasons, contentReasons, engagementReasons, valuesReasons} {
		for _, r := range group {
			if r.Impact == models.ImpactPositive {
				result.MatchReasons = append(result.MatchReasons, r)
			} else {
				result.Concerns = append(result.Concerns, r)
			}
		}
	}
	result.MatchReasons = truncateReasons(result.MatchReasons, maxMatchReasons)
	result.Concerns = truncateReasons(result.Concerns, maxConcerns)

	total := clamp(audience+content+engagement+values, 0, 100)
	result.TotalScore = round1(total)
	result.Tier = s.tables.Tier(result.TotalScore)
	result.Breakdown = models.Breakdown{
		AudienceFit:       round1(audience),
		ContentFit:        round1(content),
		EngagementQuality: round1(engagement),
		ValuesAlignment:   round1(values),
	}
	return result
}

// exclusion checks hard rules in order; the first hit wins.
func exclusion(subject models.SubjectView, brand models.BrandView) (string, bool) {
	if brand.CompanyName != "" {
		name := strings.ToLower(brand.CompanyName)
		for _, excluded := range subject.ExcludedBrands {
			if strings.ToLower(excluded) == name {
				return "Athlete has excluded brand: " + brand.CompanyName, true
			}
		}
	}
	if brand.Category != "" && containsCategory(subject.RestrictedCats, brand.Category) {
		return "School restricts " + string(brand.Category) + " partnerships", true
	}
	return "", false
}

// ==========================
// Helpers
// ==========================

func newReason(category, text string, impact models.Impact, contribution float64) models.Reason {
	c := contribution
	return models.Reason{Category: category, Text: text, Impact: impact, Contribution: &c}
}

func truncateReasons(rs []models.Reason, n int) []models.Reason {
	if len(rs) > n {
		return rs[:n]
	}
	return rs
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// containsCategory never matches CategoryOther: unrecognized labels all decode
// to it, so two OTHERs are not known to be the same category.
func containsCategory(list []models.BrandCategory, c models.BrandCategory) bool {
	if c == models.CategoryOther {
		return false
	}
	for _, v := range list {
		if v == c {
			return true
		}
	}
	return false
}

func containsSport(list []models.Sport, s models.Sport) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func containsConference(list []models.Conference, c models.Conference) bool {
	for _, v := range list {
		if v == c {
			return true
		}
	}
	return false
}
