// internal/matching/defaults.go
package matching

import (
	"sort"

	m "nil-matching/internal/models"
)

// DefaultSpec returns the hand-authored tables the service ships with.
func DefaultSpec() TableSpec {
	return TableSpec{
		Weights: Weights{
			AudienceFit:       35,
			ContentFit:        30,
			EngagementQuality: 20,
			ValuesAlignment:   15,
		},
		DefaultAffinity: 0.4,
		Affinity: map[m.Sport]map[m.BrandCategory]float64{
			m.SportFootball: {
				m.CategoryAthleticApparel: 1.0,
				m.CategorySportsNutrition: 0.95,
				m.CategoryEnergyDrinks:    0.9,
				m.CategoryFootwear:        0.9,
				m.CategorySportsEquipment: 0.85,
				m.CategoryFastFood:        0.75,
				m.CategoryGaming:          0.7,
				m.CategoryCars:            0.65,
				m.CategoryBanking:         0.5,
				m.CategoryElectronics:     0.6,
			},
			m.SportBasketball: {
				m.CategoryFootwear:        1.0,
				m.CategoryAthleticApparel: 0.95,
				m.CategoryStreetwear:      0.9,
				m.CategorySportsNutrition: 0.85,
				m.CategoryEnergyDrinks:    0.85,
				m.CategoryGaming:          0.8,
				m.CategoryElectronics:     0.7,
				m.CategoryMusic:           0.7,
			},
			m.SportSoccer: {
				m.CategoryAthleticApparel: 1.0,
				m.CategoryFootwear:        0.95,
				m.CategorySportsNutrition: 0.85,
				m.CategoryEnergyDrinks:    0.8,
				m.CategorySportsEquipment: 0.8,
			},
			m.SportBaseball: {
				m.CategoryAthleticApparel: 0.9,
				m.CategorySportsEquipment: 0.95,
				m.CategorySportsNutrition: 0.8,
				m.CategoryFastFood:        0.7,
				m.CategoryCars:            0.6,
			},
			m.SportVolleyball: {
				m.CategoryAthleticApparel:  0.95,
				m.CategorySportsNutrition:  0.8,
				m.CategoryFootwear:         0.85,
				m.CategorySkincare:         0.7,
				m.CategoryFitnessEquipment: 0.75,
			},
			m.SportSwimming: {
				m.CategoryAthleticApparel:  0.9,
				m.CategorySportsNutrition:  0.85,
				m.CategorySkincare:         0.8,
				m.CategoryWearables:        0.75,
				m.CategoryWellnessServices: 0.7,
			},
			m.SportTrackAndField: {
				m.CategoryAthleticApparel: 0.95,
				m.CategoryFootwear:        1.0,
				m.CategorySportsNutrition: 0.9,
				m.CategoryWearables:       0.85,
				m.CategoryEnergyDrinks:    0.8,
			},
			m.SportGymnastics: {
				m.CategoryAthleticApparel:  0.95,
				m.CategoryFitnessEquipment: 0.85,
				m.CategorySkincare:         0.8,
				m.CategoryWellnessServices: 0.75,
				m.CategoryHealthyFood:      0.8,
			},
			m.SportGolf: {
				m.CategoryAthleticApparel: 0.9,
				m.CategoryLuxuryFashion:   0.8,
				m.CategoryCars:            0.85,
				m.CategoryBanking:         0.75,
				m.CategoryInvesting:       0.7,
				m.CategorySportsEquipment: 0.95,
			},
			m.SportTennis: {
				m.CategoryAthleticApparel: 0.95,
				m.CategoryLuxuryFashion:   0.75,
				m.CategoryFootwear:        0.9,
				m.CategorySportsEquipment: 0.9,
				m.CategoryWearables:       0.8,
			},
			m.SportCheerleading: {
				m.CategoryAthleticApparel: 0.9,
				m.CategorySkincare:        0.85,
				m.CategoryHaircare:        0.85,
				m.CategoryCasualFashion:   0.8,
				m.CategoryHealthyFood:     0.7,
			},
			m.SportEsports: {
				m.CategoryGaming:            1.0,
				m.CategoryElectronics:       0.95,
				m.CategoryEnergyDrinks:      0.9,
				m.CategoryStreamingServices: 0.85,
				m.CategorySoftwareApps:      0.8,
				m.CategoryFastFood:          0.7,
			},
		},
		ReachTiers: []ReachTier{
			{Threshold: 1_000_000, Points: 12, Label: "MEGA"},
			{Threshold: 500_000, Points: 11, Label: "MACRO_PLUS"},
			{Threshold: 100_000, Points: 10, Label: "MACRO"},
			{Threshold: 50_000, Points: 8, Label: "MID"},
			{Threshold: 25_000, Points: 6, Label: "MICRO_PLUS"},
			{Threshold: 10_000, Points: 5, Label: "MICRO"},
			{Threshold: 5_000, Points: 3, Label: "NANO"},
			{Threshold: 1_000, Points: 2, Label: "STARTER"},
			{Threshold: 0, Points: 1, Label: "EMERGING"},
		},
		EngagementTiers: []EngagementTier{
			{Threshold: 8.0, Points: 8, Label: "EXCEPTIONAL"},
			{Threshold: 6.0, Points: 7, Label: "EXCELLENT"},
			{Threshold: 4.0, Points: 6, Label: "VERY_GOOD"},
			{Threshold: 3.0, Points: 5, Label: "GOOD"},
			{Threshold: 2.0, Points: 4, Label: "AVERAGE"},
			{Threshold: 1.0, Points: 2, Label: "BELOW_AVERAGE"},
			{Threshold: 0.0, Points: 0, Label: "LOW"},
		},
		QualityTiers: []QualityTier{
			{Min: 85, Tier: m.TierElite},
			{Min: 70, Tier: m.TierStrong},
			{Min: 55, Tier: m.TierGood},
			{Min: 40, Tier: m.TierModerate},
			{Min: 0, Tier: m.TierWeak},
		},
		PowerConferences: []m.Conference{
			m.ConferenceSEC, m.ConferenceBigTen, m.ConferenceBig12, m.ConferenceACC, m.ConferencePac12,
		},
		MidMajorConferences: []m.Conference{
			m.ConferenceAAC, m.ConferenceMountainWest, m.ConferenceSunBelt,
		},
	}
}

func sortConferences(cs []m.Conference) {
	sort.Slice(cs, func(i, j int) bool { return cs[i] < cs[j] })
}
