// internal/matching/tables_file.go
package matching

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"nil-matching/internal/models"
)

// tablesFile is the on-disk override shape. Every field is optional; present
// fields replace the corresponding default.
type tablesFile struct {
	Weights         *Weights                      `toml:"weights"`
	DefaultAffinity *float64                      `toml:"default_affinity"`
	Affinity        map[string]map[string]float64 `toml:"affinity"`
	ReachTiers      []ReachTier                   `toml:"reach_tiers"`
	EngagementTiers []EngagementTier              `toml:"engagement_tiers"`
	QualityTiers    []struct {
		Min  float64 `toml:"min"`
		Tier string  `toml:"tier"`
	} `toml:"quality_tiers"`
	PowerConferences    []string `toml:"power_conferences"`
	MidMajorConferences []string `toml:"mid_major_conferences"`
}

// LoadTablesFile overlays a TOML file onto the default tables and validates
// the result. An empty path returns the defaults.
func LoadTablesFile(path string) (*Tables, error) {
	if path == "" {
		return DefaultTables(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read tables file: %w", err)
	}
	return ParseTables(data)
}

// ParseTables overlays raw TOML onto the default tables.
func ParseTables(data []byte) (*Tables, error) {
	var file tablesFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decode tables file: %w", err)
	}

	spec := DefaultSpec()
	if file.Weights != nil {
		spec.Weights = *file.Weights
	}
	if file.DefaultAffinity != nil {
		spec.DefaultAffinity = *file.DefaultAffinity
	}
	for rawSport, row := range file.Affinity {
		sport, ok := models.LookupSport(rawSport)
		if !ok {
			return nil, fmt.Errorf("affinity: unknown sport %q", rawSport)
		}
		if spec.Affinity[sport] == nil {
			spec.Affinity[sport] = map[models.BrandCategory]float64{}
		}
		for rawCat, v := range row {
			cat, ok := models.LookupCategory(rawCat)
			if !ok {
				return nil, fmt.Errorf("affinity: unknown category %q", rawCat)
			}
			spec.Affinity[sport][cat] = v
		}
	}
	if len(file.ReachTiers) > 0 {
		spec.ReachTiers = file.ReachTiers
	}
	if len(file.EngagementTiers) > 0 {
		spec.EngagementTiers = file.EngagementTiers
	}
	if len(file.QualityTiers) > 0 {
		spec.QualityTiers = spec.QualityTiers[:0:0]
		for _, q := range file.QualityTiers {
			spec.QualityTiers = append(spec.QualityTiers, QualityTier{Min: q.Min, Tier: models.Tier(q.Tier)})
		}
	}
	if len(file.PowerConferences) > 0 {
		confs, err := parseConferences(file.PowerConferences)
		if err != nil {
			return nil, err
		}
		spec.PowerConferences = confs
	}
	if len(file.MidMajorConferences) > 0 {
		confs, err := parseConferences(file.MidMajorConferences)
		if err != nil {
			return nil, err
		}
		spec.MidMajorConferences = confs
	}

	return NewTables(spec)
}

// MarshalTables renders tables in the override file format.
func MarshalTables(t *Tables) ([]byte, error) {
	spec := t.Spec()
	w := spec.Weights
	da := spec.DefaultAffinity
	file := tablesFile{
		Weights:         &w,
		DefaultAffinity: &da,
		Affinity:        map[string]map[string]float64{},
		ReachTiers:      spec.ReachTiers,
		EngagementTiers: spec.EngagementTiers,
	}
	for sport, row := range spec.Affinity {
		out := map[string]float64{}
		for cat, v := range row {
			out[string(cat)] = v
		}
		file.Affinity[string(sport)] = out
	}
	for _, q := range spec.QualityTiers {
		file.QualityTiers = append(file.QualityTiers, struct {
			Min  float64 `toml:"min"`
			Tier string  `toml:"tier"`
		}{Min: q.Min, Tier: string(q.Tier)})
	}
	for _, c := range spec.PowerConferences {
		file.PowerConferences = append(file.PowerConferences, string(c))
	}
	for _, c := range spec.MidMajorConferences {
		file.MidMajorConferences = append(file.MidMajorConferences, string(c))
	}
	return toml.Marshal(file)
}

func parseConferences(raw []string) ([]models.Conference, error) {
	out := make([]models.Conference, 0, len(raw))
	for _, r := range raw {
		c, ok := models.LookupConference(r)
		if !ok {
			return nil, fmt.Errorf("unknown conference %q", r)
		}
		out = append(out, c)
	}
	return out, nil
}
