// internal/models/request.go
package models

import (
	"fmt"
	"strings"
	"time"
)

type SortKey string

const (
	SortByScore      SortKey = "score"
	SortByFollowers  SortKey = "followers"
	SortByEngagement SortKey = "engagement"
)

type SortOrder string

const (
	SortDesc SortOrder = "desc"
	SortAsc  SortOrder = "asc"
)

const (
	DefaultRankLimit = 20
	MaxRankLimit     = 100
)

// MatchFilters narrows a candidate set before and during ranking.
type MatchFilters struct {
	Sports            []Sport       `json:"sports,omitempty"`
	Conferences       []Conference  `json:"conferences,omitempty"`
	MinFollowers      int           `json:"minFollowers,omitempty"`
	MaxFollowers      int           `json:"maxFollowers,omitempty"`
	MinEngagementRate float64       `json:"minEngagementRate,omitempty"`
	ContentTypes      []ContentType `json:"contentTypes,omitempty"`
}

// IsEmpty reports whether no filter is set.
func (f MatchFilters) IsEmpty() bool {
	return len(f.Sports) == 0 && len(f.Conferences) == 0 && f.MinFollowers == 0 &&
		f.MaxFollowers == 0 && f.MinEngagementRate == 0 && len(f.ContentTypes) == 0
}

// Applied returns the set filters keyed by name, for echoing back to callers.
func (f MatchFilters) Applied() map[string]interface{} {
	out := map[string]interface{}{}
	if len(f.Sports) > 0 {
		out["sports"] = f.Sports
	}
	if len(f.Conferences) > 0 {
		out["conferences"] = f.Conferences
	}
	if f.MinFollowers > 0 {
		out["minFollowers"] = f.MinFollowers
	}
	if f.MaxFollowers > 0 {
		out["maxFollowers"] = f.MaxFollowers
	}
	if f.MinEngagementRate > 0 {
		out["minEngagementRate"] = f.MinEngagementRate
	}
	if len(f.ContentTypes) > 0 {
		out["contentTypes"] = f.ContentTypes
	}
	return out
}

// RankOptions controls one ranking pass.
type RankOptions struct {
	CampaignID      string       `json:"campaignId,omitempty"`
	Filters         MatchFilters `json:"filters"`
	Limit           int          `json:"limit"`
	MinScore        float64      `json:"minScore"`
	SortBy          SortKey      `json:"sortBy"`
	SortOrder       SortOrder    `json:"sortOrder"`
	IncludeExcluded bool         `json:"includeExcluded"`

	ExcludedSubjects []string `json:"excludedAthletes,omitempty"`
	ExcludedSchools  []string `json:"excludedSchools,omitempty"`
	RequireVerified  bool     `json:"requireVerifiedAccounts,omitempty"`
}

// Normalize fills defaults and clamps the limit.
func (o RankOptions) Normalize() RankOptions {
	if o.Limit <= 0 {
		o.Limit = DefaultRankLimit
	}
	if o.Limit > MaxRankLimit {
		o.Limit = MaxRankLimit
	}
	if o.SortBy == "" {
		o.SortBy = SortByScore
	}
	if o.SortOrder == "" {
		o.SortOrder = SortDesc
	}
	return o
}

// Validate rejects values outside their documented ranges.
func (o RankOptions) Validate() error {
	switch o.SortBy {
	case "", SortByScore, SortByFollowers, SortByEngagement:
	default:
		return fmt.Errorf("sortBy must be one of score, followers, engagement: got %q", o.SortBy)
	}
	switch o.SortOrder {
	case "", SortAsc, SortDesc:
	default:
		return fmt.Errorf("sortOrder must be asc or desc: got %q", o.SortOrder)
	}
	if o.Limit < 0 || o.Limit > MaxRankLimit {
		return fmt.Errorf("limit must be between 1 and %d: got %d", MaxRankLimit, o.Limit)
	}
	if o.MinScore < 0 || o.MinScore > 100 {
		return fmt.Errorf("minScore must be between 0 and 100: got %v", o.MinScore)
	}
	return nil
}

// WithCampaign folds a campaign's exclusions and follower ceiling into the options.
func (o RankOptions) WithCampaign(c *CampaignBrief) RankOptions {
	if c == nil {
		return o
	}
	o.CampaignID = c.ID
	o.ExcludedSubjects = append(append([]string(nil), o.ExcludedSubjects...), c.ExcludedAthletes...)
	o.ExcludedSchools = append(append([]string(nil), o.ExcludedSchools...), c.ExcludedSchools...)
	o.RequireVerified = o.RequireVerified || c.RequireVerifiedAccounts
	if o.Filters.MaxFollowers == 0 && c.MaxFollowers > 0 {
		o.Filters.MaxFollowers = c.MaxFollowers
	}
	if c.PrioritizeEngagementOverReach && o.SortBy == "" {
		o.SortBy = SortByEngagement
	}
	return o
}

// RankResult is the output of one ranking pass.
type RankResult struct {
	Matches          []MatchResult `json:"matches"`
	Excluded         []MatchResult `json:"excluded"`
	TotalCandidates  int           `json:"totalCandidates"`
	AvgScore         float64       `json:"avgScore"`
	TierDistribution map[Tier]int  `json:"scoreDistribution"`
}

// BulkMatchRequest asks for the best subjects for a brand or campaign.
type BulkMatchRequest struct {
	BrandID         string        `json:"brandId"`
	CampaignID      string        `json:"campaignId,omitempty"`
	Filters         MatchFilters  `json:"filters"`
	UseLLM          bool          `json:"useLlm"`
	ScoringMethod   ScoringMethod `json:"scoringMethod,omitempty"`
	Limit           int           `json:"limit,omitempty"`
	MinScore        float64       `json:"minScore,omitempty"`
	IncludeExcluded bool          `json:"includeExcluded"`
	SortBy          SortKey       `json:"sortBy,omitempty"`
	SortOrder       SortOrder     `json:"sortOrder,omitempty"`
}

// Options converts the request into ranker options.
func (r BulkMatchRequest) Options() RankOptions {
	return RankOptions{
		CampaignID:      r.CampaignID,
		Filters:         r.Filters,
		Limit:           r.Limit,
		MinScore:        r.MinScore,
		SortBy:          SortKey(strings.ToLower(string(r.SortBy))),
		SortOrder:       SortOrder(strings.ToLower(string(r.SortOrder))),
		IncludeExcluded: r.IncludeExcluded,
	}
}

type BulkMatchResponse struct {
	CalculationID     string                 `json:"calculationId"`
	BrandID           string                 `json:"brandId"`
	CampaignID        string                 `json:"campaignId,omitempty"`
	TotalCandidates   int                    `json:"totalCandidates"`
	TotalMatches      int                    `json:"totalMatches"`
	Matches           []MatchResult          `json:"matches"`
	Excluded          []MatchResult          `json:"excluded"`
	AvgScore          float64                `json:"avgScore"`
	ScoreDistribution map[Tier]int           `json:"scoreDistribution"`
	FiltersApplied    map[string]interface{} `json:"filtersApplied"`
	ScoringMethod     ScoringMethod          `json:"scoringMethod"`
	GeneratedAt       time.Time              `json:"generatedAt"`
	CalculationTimeMs int64                  `json:"calculationTimeMs"`
}

// BrandRecommendation is one brand suggested for a subject.
type BrandRecommendation struct {
	BrandID      string        `json:"brandId"`
	BrandName    string        `json:"brandName"`
	Category     BrandCategory `json:"category,omitempty"`
	FitScore     float64       `json:"fitScore"`
	Tier         Tier          `json:"tier"`
	MatchReasons []string      `json:"matchReasons"`
}
