// internal/models/subject.go
package models

import "time"

// SocialSnapshot is a point-in-time metrics capture with audience demographics.
type SocialSnapshot struct {
	SnapshotID         string             `json:"snapshotId,omitempty"`
	CapturedAt         *time.Time         `json:"snapshotTimestamp,omitempty"`
	Followers          int                `json:"followers"`
	EngagementRate     float64            `json:"engagementRate"`
	AgeDistribution    map[string]float64 `json:"audienceAgeDistribution,omitempty"`
	GenderDistribution map[string]float64 `json:"audienceGenderDistribution,omitempty"`
	TopLocations       []AudienceLocation `json:"audienceTopLocations,omitempty"`
	PostingFrequency   float64            `json:"postingFrequency,omitempty"`
}

type AudienceLocation struct {
	Name       string  `json:"name"`
	Percentage float64 `json:"percentage,omitempty"`
}

type SocialAccount struct {
	AccountID      string          `json:"accountId,omitempty"`
	Platform       SocialPlatform  `json:"platform"`
	Handle         string          `json:"handle"`
	ProfileURL     string          `json:"profileUrl,omitempty"`
	Verified       bool            `json:"isVerified"`
	Connected      bool            `json:"isConnected"`
	Followers      int             `json:"followers"`
	EngagementRate float64         `json:"engagementRate"`
	LatestSnapshot *SocialSnapshot `json:"latestSnapshot,omitempty"`
}

type Preferences struct {
	LikedCategories            []BrandCategory `json:"likedCategories,omitempty"`
	DislikedCategories         []BrandCategory `json:"dislikedCategories,omitempty"`
	PreferredBrands            []string        `json:"preferredBrands,omitempty"`
	ExcludedBrands             []string        `json:"excludedBrands,omitempty"`
	ContentTypes               []ContentType   `json:"contentTypes,omitempty"`
	ContentThemes              []string        `json:"contentThemes,omitempty"`
	PersonalityTags            []string        `json:"personalityTags,omitempty"`
	AvailableRegions           []string        `json:"availableRegions,omitempty"`
	SchoolRestrictedCategories []BrandCategory `json:"schoolRestrictedCategories,omitempty"`
}

// AthleteProfile is the full subject record as held by the system of record.
type AthleteProfile struct {
	ID               string          `json:"id"`
	DisplayName      string          `json:"displayName"`
	Sport            Sport           `json:"sport"`
	Position         string          `json:"position,omitempty"`
	School           string          `json:"school,omitempty"`
	Conference       Conference      `json:"conference,omitempty"`
	HomeState        string          `json:"homeState,omitempty"`
	IsVerified       bool            `json:"isVerified"`
	IsAcceptingDeals bool            `json:"isAcceptingDeals"`
	Preferences      *Preferences    `json:"preferences,omitempty"`
	SocialAccounts   []SocialAccount `json:"socialAccounts,omitempty"`
}

// TotalFollowers sums followers across every linked account.
func (p *AthleteProfile) TotalFollowers() int {
	total := 0
	for _, acc := range p.SocialAccounts {
		total += acc.Followers
	}
	return total
}

// AverageEngagementRate averages accounts reporting a positive rate; 0 when none do.
func (p *AthleteProfile) AverageEngagementRate() float64 {
	var sum float64
	n := 0
	for _, acc := range p.SocialAccounts {
		if acc.EngagementRate > 0 {
			sum += acc.EngagementRate
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// PrimaryAccount returns the account with the most followers, first one wins ties.
func (p *AthleteProfile) PrimaryAccount() *SocialAccount {
	if len(p.SocialAccounts) == 0 {
		return nil
	}
	best := 0
	for i, acc := range p.SocialAccounts {
		if acc.Followers > p.SocialAccounts[best].Followers {
			best = i
		}
	}
	return &p.SocialAccounts[best]
}

// SubjectView is the flattened, matching-ready projection of an AthleteProfile.
type SubjectView struct {
	ID                 string             `json:"athleteId"`
	DisplayName        string             `json:"displayName"`
	Sport              Sport              `json:"sport"`
	School             string             `json:"school,omitempty"`
	Conference         Conference         `json:"conference,omitempty"`
	TotalFollowers     int                `json:"totalFollowers"`
	AvgEngagementRate  float64            `json:"avgEngagementRate"`
	PrimaryPlatform    SocialPlatform     `json:"primaryPlatform,omitempty"`
	HasVerifiedAccount bool               `json:"hasVerifiedAccount,omitempty"`
	LikedCategories    []BrandCategory    `json:"likedCategories,omitempty"`
	DislikedCategories []BrandCategory    `json:"dislikedCategories,omitempty"`
	ExcludedBrands     []string           `json:"excludedBrands,omitempty"`
	ContentTypes       []ContentType      `json:"contentTypes,omitempty"`
	RestrictedCats     []BrandCategory    `json:"schoolRestrictedCategories,omitempty"`
	AgeDistribution    map[string]float64 `json:"audienceAgeDistribution,omitempty"`
	GenderDistribution map[string]float64 `json:"audienceGenderDistribution,omitempty"`
	TopLocations       []string           `json:"audienceTopLocations,omitempty"`
}

// SubjectFromProfile flattens a full profile. Demographics come from the primary
// account's latest snapshot.
func SubjectFromProfile(p *AthleteProfile) SubjectView {
	view := SubjectView{
		ID:                p.ID,
		DisplayName:       p.DisplayName,
		Sport:             p.Sport,
		School:            p.School,
		Conference:        p.Conference,
		TotalFollowers:    p.TotalFollowers(),
		AvgEngagementRate: p.AverageEngagementRate(),
	}
	if view.Sport == "" {
		view.Sport = SportOther
	}

	for _, acc := range p.SocialAccounts {
		if acc.Verified {
			view.HasVerifiedAccount = true
			break
		}
	}

	if prefs := p.Preferences; prefs != nil {
		view.LikedCategories = prefs.LikedCategories
		view.DislikedCategories = prefs.DislikedCategories
		view.ExcludedBrands = prefs.ExcludedBrands
		view.ContentTypes = prefs.ContentTypes
		view.RestrictedCats = prefs.SchoolRestrictedCategories
	}

	if primary := p.PrimaryAccount(); primary != nil {
		view.PrimaryPlatform = primary.Platform
		if snap := primary.LatestSnapshot; snap != nil {
			view.AgeDistribution = snap.AgeDistribution
			view.GenderDistribution = snap.GenderDistribution
			for _, loc := range snap.TopLocations {
				view.TopLocations = append(view.TopLocations, loc.Name)
			}
		}
	}

	return view
}
