// internal/models/brand.go
package models

// BrandTarget describes the audience a brand wants to reach.
type BrandTarget struct {
	AgeRanges          []string           `json:"ageRanges,omitempty"`
	MinAge             int                `json:"minAge,omitempty"`
	MaxAge             int                `json:"maxAge,omitempty"`
	GenderPreference   string             `json:"genderPreference,omitempty"`
	GenderDistribution map[string]float64 `json:"genderDistribution,omitempty"`
	TargetRegions      []string           `json:"targetRegions,omitempty"`
	TargetStates       []string           `json:"targetStates,omitempty"`
	TargetCountries    []string           `json:"targetCountries,omitempty"`
	IsNational         bool               `json:"isNational"`
	IsLocal            bool               `json:"isLocal"`
	Interests          []string           `json:"interests,omitempty"`
}

// NewBrandTarget returns a target with the default country list.
func NewBrandTarget() *BrandTarget {
	return &BrandTarget{TargetCountries: []string{"US"}}
}

type BrandProfile struct {
	ID                   string        `json:"id"`
	CompanyName          string        `json:"companyName"`
	Website              string        `json:"website,omitempty"`
	Industry             string        `json:"industry,omitempty"`
	Category             BrandCategory `json:"category,omitempty"`
	Description          string        `json:"description,omitempty"`
	Values               []string      `json:"values,omitempty"`
	PersonalityTraits    []string      `json:"personalityTraits,omitempty"`
	BudgetMin            float64       `json:"budgetMin,omitempty"`
	BudgetMax            float64       `json:"budgetMax,omitempty"`
	TargetAudience       *BrandTarget  `json:"targetAudience,omitempty"`
	PreferredSports      []Sport       `json:"preferredSports,omitempty"`
	PreferredConferences []Conference  `json:"preferredConferences,omitempty"`
	MinFollowers         int           `json:"minFollowers,omitempty"`
	MinEngagementRate    float64       `json:"minEngagementRate,omitempty"`
	RequiredContentTypes []ContentType `json:"requiredContentTypes,omitempty"`
	ExcludedSports       []Sport       `json:"excludedSports,omitempty"`
	CompetitorBrands     []string      `json:"competitorBrands,omitempty"`
	IsActive             bool          `json:"isActive"`
}

// CampaignBrief is a brand's request scoped to one initiative. Present fields
// override the parent brand's for this campaign only.
type CampaignBrief struct {
	ID                            string        `json:"id"`
	BrandID                       string        `json:"brandId"`
	Brand                         *BrandProfile `json:"brand,omitempty"`
	Name                          string        `json:"campaignName"`
	TotalBudget                   float64       `json:"totalBudget,omitempty"`
	BudgetPerAthlete              float64       `json:"budgetPerAthlete,omitempty"`
	MaxAthletes                   int           `json:"maxAthletes,omitempty"`
	TargetAudience                *BrandTarget  `json:"targetAudience,omitempty"`
	RequiredSports                []Sport       `json:"requiredSports,omitempty"`
	RequiredConferences           []Conference  `json:"requiredConferences,omitempty"`
	MinFollowers                  int           `json:"minFollowers,omitempty"`
	MaxFollowers                  int           `json:"maxFollowers,omitempty"`
	MinEngagementRate             float64       `json:"minEngagementRate,omitempty"`
	RequiredContentTypes          []ContentType `json:"requiredContentTypes,omitempty"`
	Deliverables                  []string      `json:"deliverables,omitempty"`
	ExcludedAthletes              []string      `json:"excludedAthletes,omitempty"`
	ExcludedSchools               []string      `json:"excludedSchools,omitempty"`
	PrioritizeEngagementOverReach bool          `json:"prioritizeEngagementOverReach"`
	RequireVerifiedAccounts       bool          `json:"requireVerifiedAccounts"`
}

const (
	DefaultMaxAthletes = 10
	MaxAthletesCap     = 100
)

// AthleteCap returns MaxAthletes bounded to [1, 100], defaulting to 10.
func (c *CampaignBrief) AthleteCap() int {
	switch {
	case c.MaxAthletes <= 0:
		return DefaultMaxAthletes
	case c.MaxAthletes > MaxAthletesCap:
		return MaxAthletesCap
	default:
		return c.MaxAthletes
	}
}

// BrandView is the flattened, matching-ready projection of a brand or campaign.
type BrandView struct {
	ID                   string        `json:"brandId"`
	CompanyName          string        `json:"companyName"`
	Category             BrandCategory `json:"category,omitempty"`
	Industry             string        `json:"industry,omitempty"`
	TargetAudience       *BrandTarget  `json:"targetAudience,omitempty"`
	PreferredSports      []Sport       `json:"preferredSports,omitempty"`
	PreferredConferences []Conference  `json:"preferredConferences,omitempty"`
	MinFollowers         int           `json:"minFollowers,omitempty"`
	MinEngagementRate    float64       `json:"minEngagementRate,omitempty"`
	RequiredContentTypes []ContentType `json:"requiredContentTypes,omitempty"`
	Values               []string      `json:"values,omitempty"`
	PersonalityTraits    []string      `json:"personalityTraits,omitempty"`
	CompetitorBrands     []string      `json:"competitorBrands,omitempty"`
}

func BrandFromProfile(p *BrandProfile) BrandView {
	return BrandView{
		ID:                   p.ID,
		CompanyName:          p.CompanyName,
		Category:             p.Category,
		Industry:             p.Industry,
		TargetAudience:       p.TargetAudience,
		PreferredSports:      p.PreferredSports,
		PreferredConferences: p.PreferredConferences,
		MinFollowers:         p.MinFollowers,
		MinEngagementRate:    p.MinEngagementRate,
		RequiredContentTypes: p.RequiredContentTypes,
		Values:               p.Values,
		PersonalityTraits:    p.PersonalityTraits,
		CompetitorBrands:     p.CompetitorBrands,
	}
}

// BrandFromCampaign projects a campaign over its parent brand. Overrides are
// shallow: a present campaign field replaces the brand's, an absent one keeps it.
// Without a parent brand the company name falls back to "Unknown".
func BrandFromCampaign(c *CampaignBrief) BrandView {
	var view BrandView
	if c.Brand != nil {
		view = BrandFromProfile(c.Brand)
	} else {
		view.CompanyName = "Unknown"
	}
	view.ID = c.BrandID

	if c.TargetAudience != nil {
		view.TargetAudience = c.TargetAudience
	}
	if len(c.RequiredSports) > 0 {
		view.PreferredSports = c.RequiredSports
	}
	if len(c.RequiredConferences) > 0 {
		view.PreferredConferences = c.RequiredConferences
	}
	if c.MinFollowers > 0 {
		view.MinFollowers = c.MinFollowers
	}
	if c.MinEngagementRate > 0 {
		view.MinEngagementRate = c.MinEngagementRate
	}
	if len(c.RequiredContentTypes) > 0 {
		view.RequiredContentTypes = c.RequiredContentTypes
	}
	return view
}

// Clone returns a copy whose slices can be replaced without touching the original.
func (b BrandView) Clone() BrandView {
	out := b
	out.PreferredSports = append([]Sport(nil), b.PreferredSports...)
	out.PreferredConferences = append([]Conference(nil), b.PreferredConferences...)
	out.RequiredContentTypes = append([]ContentType(nil), b.RequiredContentTypes...)
	out.Values = append([]string(nil), b.Values...)
	out.PersonalityTraits = append([]string(nil), b.PersonalityTraits...)
	out.CompetitorBrands = append([]string(nil), b.CompetitorBrands...)
	if b.TargetAudience != nil {
		t := *b.TargetAudience
		out.TargetAudience = &t
	}
	return out
}
