// internal/workers/matching/enhance-match/config.go
package enhancematch

import "time"

type Config struct {
	Timeout time.Duration
	// FailOnError turns assessment failures into job errors instead of
	// completing with the rule-based result.
	FailOnError bool
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 45 * time.Second,
	}
}
