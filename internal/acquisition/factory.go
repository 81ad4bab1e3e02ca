// internal/acquisition/factory.go
package acquisition

import (
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"nil-matching/internal/common/config"
	"nil-matching/internal/common/database"
	commonhttp "nil-matching/internal/common/http"
	"nil-matching/internal/common/logger"
)

// NewSource builds the source named by cfg.Source and fronts it with the
// redis cache when rdb is set and cfg.CacheTTL is positive.
func NewSource(cfg config.AcquisitionConfig, pg *database.PostgresClient, rdb redis.Cmdable, log logger.Logger, stats CacheStats) (Source, error) {
	var source Source
	switch cfg.Source {
	case config.SourcePostgres:
		if pg == nil {
			return nil, errors.New("acquisition.source is postgres but database.postgres is not configured")
		}
		source = NewPostgresSource(pg)
	case config.SourceAPI, "":
		if cfg.BaseURL == "" {
			return nil, errors.New("acquisition.base_url is required for the api source")
		}
		client := commonhttp.NewClient(
			config.GetDuration(cfg.Timeout),
			commonhttp.WithRetries(cfg.MaxRetries),
		)
		source = NewAPISource(cfg.BaseURL, client, cfg.APIToken)
	default:
		return nil, errors.New("unknown acquisition source " + cfg.Source)
	}

	if rdb != nil && cfg.CacheTTL > 0 {
		ttl := time.Duration(cfg.CacheTTL) * time.Second
		source = NewCachedSource(source, rdb, ttl, log, stats)
	}
	return source, nil
}
