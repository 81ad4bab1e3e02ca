// internal/workers/matching/search-candidates/config.go
package searchcandidates

import "time"

type Config struct {
	Timeout      time.Duration
	DefaultLimit int
}

func LoadConfig() *Config {
	return &Config{
		Timeout:      10 * time.Second,
		DefaultLimit: 100,
	}
}
