// internal/matching/tables.go
package matching

import (
	"fmt"
	"math"

	"nil-matching/internal/models"
)

// Weights are the maximum points of each component. They must sum to 100.
type Weights struct {
	AudienceFit       float64 `toml:"audience_fit"`
	ContentFit        float64 `toml:"content_fit"`
	EngagementQuality float64 `toml:"engagement_quality"`
	ValuesAlignment   float64 `toml:"values_alignment"`
}

func (w Weights) Sum() float64 {
	return w.AudienceFit + w.ContentFit + w.EngagementQuality + w.ValuesAlignment
}

type ReachTier struct {
	Threshold int     `toml:"threshold"`
	Points    float64 `toml:"points"`
	Label     string  `toml:"label"`
}

type EngagementTier struct {
	Threshold float64 `toml:"threshold"`
	Points    float64 `toml:"points"`
	Label     string  `toml:"label"`
}

type QualityTier struct {
	Min  float64     `toml:"min"`
	Tier models.Tier `toml:"tier"`
}

const (
	maxReachPoints      = 12.0
	maxEngagementPoints = 8.0
)

// Tables holds every static lookup the scorer reads. A Tables value is never
// mutated after construction, so one instance can be shared by any number of
// goroutines.
type Tables struct {
	weights          Weights
	affinity         map[models.Sport]map[models.BrandCategory]float64
	defaultAffinity  float64
	reachTiers       []ReachTier
	engagementTiers  []EngagementTier
	qualityTiers     []QualityTier
	powerConferences map[models.Conference]struct{}
	midMajors        map[models.Conference]struct{}
}

// TableSpec is the raw, unvalidated form of Tables.
type TableSpec struct {
	Weights             Weights                                           `toml:"weights"`
	Affinity            map[models.Sport]map[models.BrandCategory]float64 `toml:"affinity"`
	DefaultAffinity     float64                                           `toml:"default_affinity"`
	ReachTiers          []ReachTier                                       `toml:"reach_tiers"`
	EngagementTiers     []EngagementTier                                  `toml:"engagement_tiers"`
	QualityTiers        []QualityTier                                     `toml:"quality_tiers"`
	PowerConferences    []models.Conference                               `toml:"power_conferences"`
	MidMajorConferences []models.Conference                               `toml:"mid_major_conferences"`
}

// NewTables validates a spec and freezes it into Tables.
func NewTables(spec TableSpec) (*Tables, error) {
	if sum := spec.Weights.Sum(); math.Abs(sum-100) > 1e-9 {
		return nil, fmt.Errorf("component weights must sum to 100, got %v", sum)
	}
	if spec.DefaultAffinity < 0 || spec.DefaultAffinity > 1 {
		return nil, fmt.Errorf("default affinity %v outside [0,1]", spec.DefaultAffinity)
	}
	if err := validateReachTiers(spec.ReachTiers); err != nil {
		return nil, err
	}
	if err := validateEngagementTiers(spec.EngagementTiers); err != nil {
		return nil, err
	}
	if err := validateQualityTiers(spec.QualityTiers); err != nil {
		return nil, err
	}

	affinity := make(map[models.Sport]map[models.BrandCategory]float64, len(spec.Affinity))
	for sport, row := range spec.Affinity {
		copied := make(map[models.BrandCategory]float64, len(row))
		for cat, v := range row {
			if v < 0 || v > 1 {
				return nil, fmt.Errorf("affinity %s/%s = %v outside [0,1]", sport, cat, v)
			}
			copied[cat] = v
		}
		affinity[sport] = copied
	}

	return &Tables{
		weights:          spec.Weights,
		affinity:         affinity,
		defaultAffinity:  spec.DefaultAffinity,
		reachTiers:       append([]ReachTier(nil), spec.ReachTiers...),
		engagementTiers:  append([]EngagementTier(nil), spec.EngagementTiers...),
		qualityTiers:     append([]QualityTier(nil), spec.QualityTiers...),
		powerConferences: conferenceSet(spec.PowerConferences),
		midMajors:        conferenceSet(spec.MidMajorConferences),
	}, nil
}

// MustTables is NewTables that panics on an invalid spec.
func MustTables(spec TableSpec) *Tables {
	t, err := NewTables(spec)
	if err != nil {
		panic("matching: " + err.Error())
	}
	return t
}

// DefaultTables builds the tables shipped with the service.
func DefaultTables() *Tables {
	return MustTables(DefaultSpec())
}

func validateReachTiers(tiers []ReachTier) error {
	if len(tiers) == 0 {
		return fmt.Errorf("reach tiers are empty")
	}
	for i, t := range tiers {
		if t.Points < 0 || t.Points > maxReachPoints {
			return fmt.Errorf("reach tier %s points %v outside [0,%v]", t.Label, t.Points, maxReachPoints)
		}
		if i > 0 && t.Threshold >= tiers[i-1].Threshold {
			return fmt.Errorf("reach tiers must be ordered highest threshold first")
		}
	}
	if tiers[len(tiers)-1].Threshold != 0 {
		return fmt.Errorf("lowest reach tier must start at 0")
	}
	return nil
}

func validateEngagementTiers(tiers []EngagementTier) error {
	if len(tiers) == 0 {
		return fmt.Errorf("engagement tiers are empty")
	}
	for i, t := range tiers {
		if t.Points < 0 || t.Points > maxEngagementPoints {
			return fmt.Errorf("engagement tier %s points %v outside [0,%v]", t.Label, t.Points, maxEngagementPoints)
		}
		if i > 0 && t.Threshold >= tiers[i-1].Threshold {
			return fmt.Errorf("engagement tiers must be ordered highest threshold first")
		}
	}
	if tiers[len(tiers)-1].Threshold != 0 {
		return fmt.Errorf("lowest engagement tier must start at 0")
	}
	return nil
}

func validateQualityTiers(tiers []QualityTier) error {
	if len(tiers) == 0 {
		return fmt.Errorf("quality tiers are empty")
	}
	for i, t := range tiers {
		if t.Tier.Rank() == 0 {
			return fmt.Errorf("unknown quality tier %q", t.Tier)
		}
		if i > 0 && (t.Min >= tiers[i-1].Min || t.Tier.Rank() >= tiers[i-1].Tier.Rank()) {
			return fmt.Errorf("quality tiers must be ordered best first with descending bounds")
		}
	}
	if tiers[len(tiers)-1].Min != 0 {
		return fmt.Errorf("lowest quality tier must start at 0")
	}
	return nil
}

func conferenceSet(cs []models.Conference) map[models.Conference]struct{} {
	out := make(map[models.Conference]struct{}, len(cs))
	for _, c := range cs {
		out[c] = struct{}{}
	}
	return out
}

// ==========================
// Lookups
// ==========================

func (t *Tables) Weights() Weights { return t.weights }

// Affinity returns the sport/category affinity, or the default on any miss.
func (t *Tables) Affinity(sport models.Sport, cat models.BrandCategory) float64 {
	if row, ok := t.affinity[sport]; ok {
		if v, ok := row[cat]; ok {
			return v
		}
	}
	return t.defaultAffinity
}

// ReachTier returns the first tier whose threshold the follower count meets.
func (t *Tables) ReachTier(followers int) (ReachTier, bool) {
	for _, tier := range t.reachTiers {
		if followers >= tier.Threshold {
			return tier, true
		}
	}
	return ReachTier{}, false
}

func (t *Tables) EngagementTier(rate float64) (EngagementTier, bool) {
	for _, tier := range t.engagementTiers {
		if rate >= tier.Threshold {
			return tier, true
		}
	}
	return EngagementTier{}, false
}

// Tier maps a total score onto its quality tier. Lower bounds are inclusive.
func (t *Tables) Tier(score float64) models.Tier {
	for _, q := range t.qualityTiers {
		if score >= q.Min {
			return q.Tier
		}
	}
	return t.qualityTiers[len(t.qualityTiers)-1].Tier
}

func (t *Tables) IsPowerConference(c models.Conference) bool {
	_, ok := t.powerConferences[c]
	return ok
}

func (t *Tables) IsMidMajorConference(c models.Conference) bool {
	_, ok := t.midMajors[c]
	return ok
}

// Spec returns a copy of the raw spec these tables were built from.
func (t *Tables) Spec() TableSpec {
	spec := TableSpec{
		Weights:         t.weights,
		Affinity:        make(map[models.Sport]map[models.BrandCategory]float64, len(t.affinity)),
		DefaultAffinity: t.defaultAffinity,
		ReachTiers:      append([]ReachTier(nil), t.reachTiers...),
		EngagementTiers: append([]EngagementTier(nil), t.engagementTiers...),
		QualityTiers:    append([]QualityTier(nil), t.qualityTiers...),
	}
	for sport, row := range t.affinity {
		copied := make(map[models.BrandCategory]float64, len(row))
		for cat, v := range row {
			copied[cat] = v
		}
		spec.Affinity[sport] = copied
	}
	for c := range t.powerConferences {
		spec.PowerConferences = append(spec.PowerConferences, c)
	}
	for c := range t.midMajors {
		spec.MidMajorConferences = append(spec.MidMajorConferences, c)
	}
	sortConferences(spec.PowerConferences)
	sortConferences(spec.MidMajorConferences)
	return spec
}
