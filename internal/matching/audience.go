// internal/matching/audience.go
package matching

import (
	"fmt"

	"nil-matching/internal/models"
)

const (
	ageMaxPoints    = 15.0
	genderMaxPoints = 10.0
	geoMaxPoints    = 10.0

	// Fixed heuristic values until real demographic overlap is computed.
	ageOverlapEstimate      = 0.6
	genderAlignmentEstimate = 0.7
	geoOverlapEstimate      = 0.6
)

func (s *Scorer) audienceFit(subject models.SubjectView, brand models.BrandView) (float64, []models.Reason) {
	max := s.tables.weights.AudienceFit
	target := brand.TargetAudience
	if target == nil {
		return max * 0.5, []models.Reason{{
			Category: models.CategoryAudienceFit,
			Text:     "Brand has no specific audience targeting defined",
			Impact:   models.ImpactNeutral,
		}}
	}

	var reasons []models.Reason
	score := 0.0

	age, r := ageAlignment(subject.AgeDistribution, target.AgeRanges)
	score += age
	reasons = appendReason(reasons, r)

	gender, r := genderAlignment(subject.GenderDistribution)
	score += gender
	reasons = appendReason(reasons, r)

	geo, r := geoAlignment(subject.TopLocations, target.TargetRegions, target.IsNational)
	score += geo
	reasons = appendReason(reasons, r)

	return clamp(score, 0, max), reasons
}

func ageAlignment(ages map[string]float64, targetRanges []string) (float64, *models.Reason) {
	if len(ages) == 0 || len(targetRanges) == 0 {
		return ageMaxPoints * 0.5, nil
	}
	score := ageMaxPoints * ageOverlapEstimate
	r := newReason(models.CategoryAudienceFit,
		fmt.Sprintf("Age demographics have %d%% overlap with target", int(ageOverlapEstimate*100)),
		impactAbove(ageOverlapEstimate, 0.5), score)
	return score, &r
}

func genderAlignment(genders map[string]float64) (float64, *models.Reason) {
	if len(genders) == 0 {
		return genderMaxPoints * 0.5, nil
	}
	score := genderMaxPoints * genderAlignmentEstimate
	r := newReason(models.CategoryAudienceFit, "Gender demographics align with brand target",
		impactAbove(genderAlignmentEstimate, 0.5), score)
	return score, &r
}

// geoAlignment never penalizes a national brand.
func geoAlignment(locations, regions []string, national bool) (float64, *models.Reason) {
	if national {
		r := newReason(models.CategoryAudienceFit,
			"National brand - geographic location not a limiting factor",
			models.ImpactPositive, geoMaxPoints)
		return geoMaxPoints, &r
	}
	if len(locations) == 0 || len(regions) == 0 {
		return geoMaxPoints * 0.5, nil
	}
	score := geoMaxPoints * geoOverlapEstimate
	r := newReason(models.CategoryAudienceFit,
		fmt.Sprintf("Geographic reach overlaps %d%% with target regions", int(geoOverlapEstimate*100)),
		impactAbove(geoOverlapEstimate, 0.5), score)
	return score, &r
}

func impactAbove(v, threshold float64) models.Impact {
	if v > threshold {
		return models.ImpactPositive
	}
	return models.ImpactNegative
}

func appendReason(rs []models.Reason, r *models.Reason) []models.Reason {
	if r == nil {
		return rs
	}
	return append(rs, *r)
}
