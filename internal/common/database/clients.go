// internal/common/database/clients.go
package database

import (
	"context"
	"errors"
	"fmt"

	"nil-matching/internal/common/config"
)

// Clients holds the stores that are configured. Unconfigured ones stay nil.
type Clients struct {
	Postgres      *PostgresClient
	Redis         *RedisClient
	Elasticsearch *ElasticsearchClient
}

// Connect opens every configured store and pings it.
func Connect(ctx context.Context, cfg config.DatabaseConfig) (*Clients, error) {
	c := &Clients{}

	if cfg.Postgres.Enabled() {
		pg, err := NewPostgres(cfg.Postgres)
		if err != nil {
			return nil, err
		}
		c.Postgres = pg
	}
	if cfg.Redis.Enabled() {
		c.Redis = NewRedis(cfg.Redis)
	}
	if cfg.Elasticsearch.Enabled() {
		es, err := NewElasticsearch(cfg.Elasticsearch)
		if err != nil {
			_ = c.Close()
			return nil, err
		}
		c.Elasticsearch = es
	}

	for name, err := range c.Health(ctx) {
		if err != nil {
			_ = c.Close()
			return nil, fmt.Errorf("%s unavailable: %w", name, err)
		}
	}
	return c, nil
}

// Health pings each configured store.
func (c *Clients) Health(ctx context.Context) map[string]error {
	out := map[string]error{}
	if c.Postgres != nil {
		out["postgres"] = c.Postgres.Ping(ctx)
	}
	if c.Redis != nil {
		out["redis"] = c.Redis.Ping(ctx)
	}
	if c.Elasticsearch != nil {
		out["elasticsearch"] = c.Elasticsearch.Ping(ctx)
	}
	return out
}

func (c *Clients) Close() error {
	var errs []error
	if c.Postgres != nil {
		errs = append(errs, c.Postgres.Close())
	}
	if c.Redis != nil {
		errs = append(errs, c.Redis.Close())
	}
	return errors.Join(errs...)
}
