// internal/workers/matching/parse-match-filters/models.go
package parsematchfilters

import "nil-matching/internal/models"

type Input struct {
	RawFilters map[string]interface{} `json:"rawFilters"`
}

type Output struct {
	Filters        models.MatchFilters    `json:"filters"`
	FiltersApplied map[string]interface{} `json:"filtersApplied"`
	Warnings       []string               `json:"warnings"`
}
