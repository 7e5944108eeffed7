package db

import (
	"testing"

	"github.com/billforge/billforge/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() config.Config {
	return config.Config{
		DBHost:     "db.internal",
		DBPort:     "5432",
		DBName:     "billforge",
		DBUser:     "app",
		DBPassword: "secret",
		DBSSLMode:  "disable",
	}
}

func TestPostgresDSN(t *testing.T) {
	dsn := postgresDSN(testConfig())
	assert.Equal(t, "host=db.internal user=app password=secret dbname=billforge port=5432 sslmode=disable TimeZone=UTC", dsn)
}

func TestMysqlDSN(t *testing.T) {
	cfg := testConfig()
	cfg.DBPort = "3306"
	dsn := mysqlDSN(cfg)
	assert.Equal(t, "app:secret@tcp(db.internal:3306)/billforge?charset=utf8mb4&parseTime=True&loc=UTC", dsn)
}

func TestSqlitePathDefaultsWhenUnnamed(t *testing.T) {
	assert.Equal(t, "billforge.db", sqlitePath(config.Config{}))
	assert.Equal(t, "invoices.db", sqlitePath(config.Config{DBName: "invoices"}))
}

func TestDialectRejectsUnknownType(t *testing.T) {
	cfg := testConfig()
	cfg.DBType = "oracle"

	_, err := Dialect(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "oracle")
}
