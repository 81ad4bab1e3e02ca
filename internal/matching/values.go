// internal/matching/values.go
package matching

import (
	"fmt"

	"nil-matching/internal/models"
)

const (
	compatibilityBasePoints  = 10.0
	dislikedPenalty          = 5.0
	sportNotPreferredPenalty = 3.0
	valuesMaxPoints          = 5.0
	valuesOverlapEstimate    = 0.5
	powerConferenceBonus     = 2.0
)

func (s *Scorer) valuesAlignment(subject models.SubjectView, brand models.BrandView) (float64, []models.Reason) {
	score, reasons := compatibilityBase(subject, brand)

	if v, r := valuesMatch(brand.Values, brand.PersonalityTraits); r != nil {
		score += v
		reasons = append(reasons, *r)
	}

	// The bonus is only bounded by the final component clamp.
	if subject.Conference != "" && s.tables.IsPowerConference(subject.Conference) {
		score += powerConferenceBonus
		reasons = append(reasons, newReason(models.CategoryValuesAlignment,
			fmt.Sprintf("Power conference athlete (%s)", subject.Conference),
			models.ImpactPositive, powerConferenceBonus))
	}

	return clamp(score, 0, s.tables.weights.ValuesAlignment), reasons
}

// compatibilityBase starts at full points and subtracts soft-conflict penalties.
// Both penalties can apply; the result floors at zero.
func compatibilityBase(subject models.SubjectView, brand models.BrandView) (float64, []models.Reason) {
	var reasons []models.Reason
	score := compatibilityBasePoints

	if brand.Category != "" && containsCategory(subject.DislikedCategories, brand.Category) {
		score -= dislikedPenalty
		reasons = append(reasons, newReason(models.CategoryValuesAlignment,
			fmt.Sprintf("Athlete has expressed disinterest in %s", brand.Category),
			models.ImpactNegative, -dislikedPenalty))
	}

	if len(brand.PreferredSports) > 0 && !containsSport(brand.PreferredSports, subject.Sport) {
		score -= sportNotPreferredPenalty
		reasons = append(reasons, newReason(models.CategoryValuesAlignment,
			fmt.Sprintf("Athlete's sport (%s) not in brand's preferred sports", subject.Sport),
			models.ImpactNegative, -sportNotPreferredPenalty))
	}

	if score == compatibilityBasePoints {
		reasons = append(reasons, newReason(models.CategoryValuesAlignment,
			"No compatibility concerns identified", models.ImpactPositive, compatibilityBasePoints))
	}

	if score < 0 {
		score = 0
	}
	return score, reasons
}

// valuesMatch awards fixed partial credit whenever the brand declares values or
// personality tags. Real textual comparison is not implemented.
func valuesMatch(values, traits []string) (float64, *models.Reason) {
	if len(values) == 0 && len(traits) == 0 {
		return 0, nil
	}
	score := valuesMaxPoints * valuesOverlapEstimate
	r := newReason(models.CategoryValuesAlignment, "Values alignment assessment pending additional data",
		models.ImpactNeutral, score)
	return score, &r
}
