// internal/workers/matching/rank-candidates/config.go
package rankcandidates

import "time"

type Config struct {
	Timeout time.Duration
	// MaxCandidates caps how many subjects are pulled from search or the
	// profile source for one ranking.
	MaxCandidates int
	PageSize      int
}

func LoadConfig() *Config {
	return &Config{
		Timeout:       60 * time.Second,
		MaxCandidates: 500,
		PageSize:      50,
	}
}
