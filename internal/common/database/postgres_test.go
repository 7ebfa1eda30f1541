package database

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"defect-reporter/internal/common/config"
)

func TestConfigurePool(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	ConfigurePool(db, config.PostgresConfig{MaxConnections: 7, MaxIdle: 2, ConnMaxLifetime: 60000})
	assert.Equal(t, 7, db.Stats().MaxOpenConnections)
}

func TestPostgresClient_Ping(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectPing()
	c := &PostgresClient{DB: db}
	require.NoError(t, c.Ping(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNewPostgres_DSN(t *testing.T) {
	cfg := config.PostgresConfig{
		Host: "db", Port: 5432, User: "mapper", Password: "secret", Database: "defects",
		SSLMode: "disable", ApplicationName: "defect-mapper", ConnectTimeout: 5, MaxConnections: 3,
	}
	assert.Equal(t,
		"host=db port=5432 user=mapper password=secret dbname=defects sslmode=disable application_name=defect-mapper connect_timeout=5",
		cfg.GetDSN())

	c, err := NewPostgres(cfg)
	require.NoError(t, err)
	defer c.Close()
	assert.Equal(t, 3, c.DB.Stats().MaxOpenConnections)
}
