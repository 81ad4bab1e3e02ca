// internal/matching/content.go
package matching

import (
	"fmt"

	"nil-matching/internal/models"
)

const (
	affinityMaxPoints   = 15.0
	capabilityMaxPoints = 10.0
	preferencePoints    = 5.0
)

// contentFit is the only component that can dip below zero before clamping.
func (s *Scorer) contentFit(subject models.SubjectView, brand models.BrandView) (float64, []models.Reason) {
	var reasons []models.Reason
	score := 0.0

	aff, r := s.categoryAffinity(subject.Sport, brand.Category)
	score += aff
	reasons = appendReason(reasons, r)

	capability, r := contentCapability(subject.ContentTypes, brand.RequiredContentTypes)
	score += capability
	reasons = appendReason(reasons, r)

	pref, r := categoryPreference(subject.LikedCategories, subject.DislikedCategories, brand.Category)
	score += pref
	reasons = appendReason(reasons, r)

	return clamp(score, 0, s.tables.weights.ContentFit), reasons
}

func (s *Scorer) categoryAffinity(sport models.Sport, cat models.BrandCategory) (float64, *models.Reason) {
	if cat == "" {
		return affinityMaxPoints * 0.5, nil
	}
	affinity := s.tables.Affinity(sport, cat)
	score := affinityMaxPoints * affinity

	var impact models.Impact
	var text string
	switch {
	case affinity >= 0.8:
		impact = models.ImpactPositive
		text = fmt.Sprintf("%s athletes are a natural fit for %s", sport, cat)
	case affinity >= 0.5:
		impact = models.ImpactNeutral
		text = fmt.Sprintf("%s has moderate alignment with %s", sport, cat)
	default:
		impact = models.ImpactNegative
		text = fmt.Sprintf("%s may not be the best fit for %s", sport, cat)
	}
	r := newReason(models.CategoryContentFit, text, impact, score)
	return score, &r
}

// contentCapability measures coverage against the brand's requirement set.
func contentCapability(have, required []models.ContentType) (float64, *models.Reason) {
	if len(required) == 0 {
		r := newReason(models.CategoryContentFit, "Brand has no specific content type requirements",
			models.ImpactPositive, capabilityMaxPoints)
		return capabilityMaxPoints, &r
	}
	if len(have) == 0 {
		score := capabilityMaxPoints * 0.5
		r := newReason(models.CategoryContentFit, "Athlete content capabilities unknown",
			models.ImpactNeutral, score)
		return score, &r
	}

	haveSet := make(map[models.ContentType]struct{}, len(have))
	for _, c := range have {
		haveSet[c] = struct{}{}
	}
	requiredSet := make(map[models.ContentType]struct{}, len(required))
	for _, c := range required {
		requiredSet[c] = struct{}{}
	}
	overlap := 0
	for c := range requiredSet {
		if _, ok := haveSet[c]; ok {
			overlap++
		}
	}
	coverage := float64(overlap) / float64(len(requiredSet))
	score := capabilityMaxPoints * coverage

	var impact models.Impact
	var text string
	switch {
	case coverage >= 0.8:
		impact = models.ImpactPositive
		text = fmt.Sprintf("Athlete can create %d/%d required content types", overlap, len(requiredSet))
	case coverage >= 0.5:
		impact = models.ImpactNeutral
		text = fmt.Sprintf("Athlete covers %d%% of required content types", int(coverage*100))
	default:
		impact = models.ImpactNegative
		text = fmt.Sprintf("Limited overlap with required content types (%d/%d)", overlap, len(requiredSet))
	}
	r := newReason(models.CategoryContentFit, text, impact, score)
	return score, &r
}

// categoryPreference checks liked before disliked.
func categoryPreference(liked, disliked []models.BrandCategory, cat models.BrandCategory) (float64, *models.Reason) {
	if cat == "" {
		return 0, nil
	}
	if containsCategory(liked, cat) {
		r := newReason(models.CategoryContentFit,
			fmt.Sprintf("Athlete has expressed interest in %s brands", cat),
			models.ImpactPositive, preferencePoints)
		return preferencePoints, &r
	}
	if containsCategory(disliked, cat) {
		r := newReason(models.CategoryContentFit,
			fmt.Sprintf("Athlete has indicated disinterest in %s", cat),
			models.ImpactNegative, -preferencePoints)
		return -preferencePoints, &r
	}
	return 0, nil
}
