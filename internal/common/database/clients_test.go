package database

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nil-matching/internal/common/config"
)

func TestConnect_NothingConfigured(t *testing.T) {
	c, err := Connect(context.Background(), config.DatabaseConfig{})
	require.NoError(t, err)

	assert.Nil(t, c.Postgres)
	assert.Nil(t, c.Redis)
	assert.Nil(t, c.Elasticsearch)
	assert.Empty(t, c.Health(context.Background()))
	assert.NoError(t, c.Close())
}

func TestConnect_Redis(t *testing.T) {
	mr := miniredis.RunT(t)

	c, err := Connect(context.Background(), config.DatabaseConfig{
		Redis: config.RedisConfig{Address: mr.Addr()},
	})
	require.NoError(t, err)
	defer c.Close()

	require.NotNil(t, c.Redis)
	assert.NoError(t, c.Health(context.Background())["redis"])
}

func TestConnect_RedisDown(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := Connect(context.Background(), config.DatabaseConfig{
		Redis: config.RedisConfig{Address: addr},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis unavailable")
}

func TestPostgresClient_Ping(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)

	mock.ExpectPing()
	mock.ExpectClose()

	pg := NewPostgresFromDB(db)
	assert.NoError(t, pg.Ping(context.Background()))
	assert.NoError(t, pg.Close())
	assert.NoError(t, mock.ExpectationsWereMet())
}
