// internal/matching/engagement.go
package matching

import (
	"fmt"
	"strconv"
	"strings"

	"nil-matching/internal/models"
)

func (s *Scorer) engagementQuality(subject models.SubjectView, brand models.BrandView) (float64, []models.Reason) {
	var reasons []models.Reason
	score := 0.0

	reach, r := s.reachScore(subject.TotalFollowers, brand.MinFollowers)
	score += reach
	reasons = appendReason(reasons, r)

	rate, r := s.engagementRateScore(subject.AvgEngagementRate, brand.MinEngagementRate)
	score += rate
	reasons = appendReason(reasons, r)

	return clamp(score, 0, s.tables.weights.EngagementQuality), reasons
}

// reachScore floors to zero below the brand minimum; that is not an exclusion.
func (s *Scorer) reachScore(followers, minFollowers int) (float64, *models.Reason) {
	if minFollowers > 0 && followers < minFollowers {
		r := newReason(models.CategoryEngagementQuality,
			fmt.Sprintf("Follower count (%s) below minimum required (%s)",
				formatThousands(followers), formatThousands(minFollowers)),
			models.ImpactNegative, 0)
		return 0, &r
	}
	tier, ok := s.tables.ReachTier(followers)
	if !ok {
		return 0, nil
	}
	impact := models.ImpactNeutral
	if tier.Points >= 8 {
		impact = models.ImpactPositive
	}
	r := newReason(models.CategoryEngagementQuality,
		fmt.Sprintf("%s tier influence with %s total followers", tier.Label, formatThousands(followers)),
		impact, tier.Points)
	return tier.Points, &r
}

func (s *Scorer) engagementRateScore(rate, minRate float64) (float64, *models.Reason) {
	if minRate > 0 && rate < minRate {
		r := newReason(models.CategoryEngagementQuality,
			fmt.Sprintf("Engagement rate (%.1f%%) below minimum (%.1f%%)", rate, minRate),
			models.ImpactNegative, 0)
		return 0, &r
	}
	tier, ok := s.tables.EngagementTier(rate)
	if !ok {
		return 0, nil
	}

	var impact models.Impact
	var text string
	switch {
	case tier.Points >= 6:
		impact = models.ImpactPositive
		text = fmt.Sprintf("%s engagement rate (%.1f%%)", titleLabel(tier.Label), rate)
	case tier.Points >= 4:
		impact = models.ImpactNeutral
		text = fmt.Sprintf("Average engagement rate (%.1f%%)", rate)
	default:
		impact = models.ImpactNegative
		text = fmt.Sprintf("Below average engagement rate (%.1f%%)", rate)
	}
	r := newReason(models.CategoryEngagementQuality, text, impact, tier.Points)
	return tier.Points, &r
}

// formatThousands renders 1234567 as "1,234,567".
func formatThousands(n int) string {
	neg := n < 0
	if neg {
		n = -n
	}
	digits := strconv.Itoa(n)
	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	lead := len(digits) % 3
	if lead == 0 {
		lead = 3
	}
	b.WriteString(digits[:lead])
	for i := lead; i < len(digits); i += 3 {
		b.WriteByte(',')
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

// titleLabel turns "VERY_GOOD" into "Very Good".
func titleLabel(label string) string {
	words := strings.Fields(strings.ReplaceAll(label, "_", " "))
	for i, w := range words {
		lower := strings.ToLower(w)
		words[i] = strings.ToUpper(lower[:1]) + lower[1:]
	}
	return strings.Join(words, " ")
}
