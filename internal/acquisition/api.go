// internal/acquisition/api.go
package acquisition

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	apperrors "nil-matching/internal/common/errors"
	commonhttp "nil-matching/internal/common/http"
	"nil-matching/internal/models"
)

// APISource reads profiles from the NIL backend REST API.
type APISource struct {
	client  *commonhttp.Client
	baseURL string
	headers map[string]string
}

// NewAPISource targets baseURL (scheme and host, optionally a path prefix).
// A non-empty token is sent as a bearer credential.
func NewAPISource(baseURL string, client *commonhttp.Client, token string) *APISource {
	headers := map[string]string{}
	if token != "" {
		headers["Authorization"] = "Bearer " + token
	}
	return &APISource{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		headers: headers,
	}
}

func (s *APISource) GetSubject(ctx context.Context, id string) (*models.AthleteProfile, error) {
	var raw apiAthlete
	if err := s.get(ctx, KindAthlete, id, "/api/v1/athletes/"+url.PathEscape(id), &raw); err != nil {
		return nil, err
	}
	profile := raw.toProfile()
	return &profile, nil
}

// GetBrand reads the brand intake record, the backend's current brand shape.
func (s *APISource) GetBrand(ctx context.Context, id string) (*models.BrandProfile, error) {
	var raw apiBrandIntake
	if err := s.get(ctx, KindBrand, id, "/api/v1/intake/brand/"+url.PathEscape(id), &raw); err != nil {
		return nil, err
	}
	brand := raw.toProfile()
	return &brand, nil
}

func (s *APISource) GetCampaign(ctx context.Context, id string) (*models.CampaignBrief, error) {
	var campaign models.CampaignBrief
	if err := s.get(ctx, KindCampaign, id, "/api/v1/campaigns/"+url.PathEscape(id), &campaign); err != nil {
		return nil, err
	}
	if campaign.ID == "" {
		campaign.ID = id
	}
	return &campaign, nil
}

// ListSubjects accepts a plain JSON array or a page object with "content".
func (s *APISource) ListSubjects(ctx context.Context, q SubjectQuery) ([]models.AthleteProfile, error) {
	params := url.Values{}
	limit := q.Limit
	if limit <= 0 {
		limit = DefaultPageSize
	}
	params.Set("limit", strconv.Itoa(limit))
	params.Set("offset", strconv.Itoa(q.Offset))
	params.Set("isAcceptingDeals", strconv.FormatBool(q.AcceptingDeals))
	if q.Sport != "" {
		params.Set("sport", string(q.Sport))
	}
	if q.Conference != "" {
		params.Set("conference", string(q.Conference))
	}
	if q.School != "" {
		params.Set("school", q.School)
	}
	if q.MinFollowers > 0 {
		params.Set("minFollowers", strconv.Itoa(q.MinFollowers))
	}
	if q.MinEngagement > 0 {
		params.Set("minEngagement", strconv.FormatFloat(q.MinEngagement, 'f', -1, 64))
	}

	var body json.RawMessage
	if err := s.client.GetJSON(ctx, s.baseURL+"/api/v1/athletes?"+params.Encode(), s.headers, &body); err != nil {
		return nil, fetchError(KindAthlete, err)
	}

	raws, err := decodeAthleteList(body)
	if err != nil {
		return nil, apperrors.NewProfileDecodeFailedError(KindAthlete, err)
	}

	profiles := make([]models.AthleteProfile, 0, len(raws))
	for _, raw := range raws {
		profiles = append(profiles, raw.toProfile())
	}
	return profiles, nil
}

func (s *APISource) get(ctx context.Context, kind, id, path string, out interface{}) error {
	err := s.client.GetJSON(ctx, s.baseURL+path, s.headers, out)
	switch {
	case err == nil:
		return nil
	case commonhttp.IsStatus(err, http.StatusNotFound):
		return notFound(kind, id)
	default:
		return fetchError(kind, err)
	}
}

func fetchError(kind string, err error) error {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
		return apperrors.NewProfileDecodeFailedError(kind, err)
	}
	return apperrors.NewProfileFetchFailedError(kind, err)
}

func decodeAthleteList(body json.RawMessage) ([]apiAthlete, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}
	if trimmed[0] == '[' {
		var list []apiAthlete
		err := json.Unmarshal(trimmed, &list)
		return list, err
	}

	var page struct {
		Content []apiAthlete `json:"content"`
	}
	if err := json.Unmarshal(trimmed, &page); err != nil {
		return nil, err
	}
	return page.Content, nil
}

// ==========================
// Wire shapes
// ==========================

type apiPreferences struct {
	LikedCategories            []string `json:"likedCategories"`
	DislikedCategories         []string `json:"dislikedCategories"`
	PreferredBrands            []string `json:"preferredBrands"`
	ExcludedBrands             []string `json:"excludedBrands"`
	ContentTypes               []string `json:"contentTypes"`
	ContentThemes              []string `json:"contentThemes"`
	PersonalityTags            []string `json:"personalityTags"`
	AvailableRegions           []string `json:"availableRegions"`
	SchoolRestrictedCategories []string `json:"schoolRestrictedCategories"`
}

type apiSnapshot struct {
	ID                 string             `json:"id"`
	Followers          int                `json:"followers"`
	EngagementRate     float64            `json:"engagementRate"`
	AgeDistribution    map[string]float64 `json:"audienceAgeDistribution"`
	GenderDistribution map[string]float64 `json:"audienceGenderDistribution"`
	TopLocations       []string           `json:"audienceTopLocations"`
	PostingFrequency   float64            `json:"postingFrequency"`
}

type apiSocialAccount struct {
	ID             string                `json:"id"`
	Platform       models.SocialPlatform `json:"platform"`
	Handle         string                `json:"handle"`
	ProfileURL     string                `json:"profileUrl"`
	IsVerified     bool                  `json:"isVerified"`
	IsConnected    bool                  `json:"isConnected"`
	Followers      int                   `json:"followers"`
	EngagementRate float64               `json:"engagementRate"`
	LatestSnapshot *apiSnapshot          `json:"latestSnapshot"`
}

type apiAthlete struct {
	ID               string             `json:"id"`
	DisplayName      string             `json:"displayName"`
	Sport            models.Sport       `json:"sport"`
	Position         string             `json:"position"`
	School           string             `json:"school"`
	Conference       models.Conference  `json:"conference"`
	HomeState        string             `json:"homeState"`
	IsVerified       bool               `json:"isVerified"`
	IsAcceptingDeals *bool              `json:"isAcceptingDeals"`
	Preferences      *apiPreferences    `json:"preferences"`
	SocialAccounts   []apiSocialAccount `json:"socialAccounts"`
}

func (a apiAthlete) toProfile() models.AthleteProfile {
	p := models.AthleteProfile{
		ID:               a.ID,
		DisplayName:      a.DisplayName,
		Sport:            a.Sport,
		Position:         a.Position,
		School:           a.School,
		Conference:       a.Conference,
		HomeState:        a.HomeState,
		IsVerified:       a.IsVerified,
		IsAcceptingDeals: a.IsAcceptingDeals == nil || *a.IsAcceptingDeals,
	}
	if p.DisplayName == "" {
		p.DisplayName = "Unknown"
	}
	if p.Sport == "" {
		p.Sport = models.SportOther
	}

	if prefs := a.Preferences; prefs != nil {
		p.Preferences = &models.Preferences{
			LikedCategories:            knownCategories(prefs.LikedCategories),
			DislikedCategories:         knownCategories(prefs.DislikedCategories),
			PreferredBrands:            prefs.PreferredBrands,
			ExcludedBrands:             prefs.ExcludedBrands,
			ContentTypes:               knownContentTypes(prefs.ContentTypes),
			ContentThemes:              prefs.ContentThemes,
			PersonalityTags:            prefs.PersonalityTags,
			AvailableRegions:           prefs.AvailableRegions,
			SchoolRestrictedCategories: knownCategories(prefs.SchoolRestrictedCategories),
		}
	}

	for _, acc := range a.SocialAccounts {
		account := models.SocialAccount{
			AccountID:      acc.ID,
			Platform:       acc.Platform,
			Handle:         acc.Handle,
			ProfileURL:     acc.ProfileURL,
			Verified:       acc.IsVerified,
			Connected:      acc.IsConnected,
			Followers:      acc.Followers,
			EngagementRate: acc.EngagementRate,
		}
		if account.Platform == "" {
			account.Platform = models.PlatformOther
		}
		if snap := acc.LatestSnapshot; snap != nil {
			s := &models.SocialSnapshot{
				SnapshotID:         snap.ID,
				Followers:          snap.Followers,
				EngagementRate:     snap.EngagementRate,
				AgeDistribution:    snap.AgeDistribution,
				GenderDistribution: snap.GenderDistribution,
				PostingFrequency:   snap.PostingFrequency,
			}
			for _, loc := range snap.TopLocations {
				s.TopLocations = append(s.TopLocations, models.AudienceLocation{Name: loc})
			}
			account.LatestSnapshot = s
		}
		p.SocialAccounts = append(p.SocialAccounts, account)
	}
	return p
}

// apiBrandIntake is the backend's brand intake request.
type apiBrandIntake struct {
	ID             string `json:"id"`
	Company        string `json:"company"`
	Website        string `json:"website"`
	Industry       string `json:"industry"`
	Description    string `json:"description"`
	TargetAudience string `json:"targetAudience"`
	Status         string `json:"status"`
}

func (b apiBrandIntake) toProfile() models.BrandProfile {
	p := models.BrandProfile{
		ID:          b.ID,
		CompanyName: b.Company,
		Website:     b.Website,
		Industry:    b.Industry,
		Description: b.Description,
		IsActive:    b.Status == "APPROVED",
	}
	if p.CompanyName == "" {
		p.CompanyName = "Unknown"
	}
	if cat, ok := models.LookupCategory(b.Industry); ok {
		p.Category = cat
	}
	// Free-text audiences are not parsed yet; any stated audience is read as national.
	if strings.TrimSpace(b.TargetAudience) != "" {
		target := models.NewBrandTarget()
		target.IsNational = true
		p.TargetAudience = target
	}
	return p
}

func knownCategories(raw []string) []models.BrandCategory {
	var out []models.BrandCategory
	for _, r := range raw {
		if c, ok := models.LookupCategory(r); ok {
			out = append(out, c)
		}
	}
	return out
}

func knownContentTypes(raw []string) []models.ContentType {
	var out []models.ContentType
	for _, r := range raw {
		if c, ok := models.LookupContentType(r); ok {
			out = append(out, c)
		}
	}
	return out
}

var _ Source = (*APISource)(nil)

// String identifies the source in logs.
func (s *APISource) String() string { return fmt.Sprintf("api(%s)", s.baseURL) }
