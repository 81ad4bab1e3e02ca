// internal/acquisition/resolve.go
package acquisition

import (
	"context"

	"nil-matching/internal/models"
)

// ResolveSubject loads and projects one athlete.
func ResolveSubject(ctx context.Context, src Source, id string) (models.SubjectView, error) {
	profile, err := src.GetSubject(ctx, id)
	if err != nil {
		return models.SubjectView{}, err
	}
	return models.SubjectFromProfile(profile), nil
}

// ResolveBrand returns the matching view for a campaign when campaignID is
// set, otherwise for the brand. The campaign is returned so callers can
// apply its exclusions.
func ResolveBrand(ctx context.Context, src Source, brandID, campaignID string) (models.BrandView, *models.CampaignBrief, error) {
	if campaignID != "" {
		campaign, err := src.GetCampaign(ctx, campaignID)
		if err != nil {
			return models.BrandView{}, nil, err
		}
		view := models.BrandFromCampaign(campaign)
		if view.ID == "" {
			view.ID = brandID
		}
		return view, campaign, nil
	}

	brand, err := src.GetBrand(ctx, brandID)
	if err != nil {
		return models.BrandView{}, nil, err
	}
	return models.BrandFromProfile(brand), nil, nil
}
