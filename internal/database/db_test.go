package database

import (
	"fmt"
	"testing"

	"github.com/Jaime0506/app-maestro-detail/internal/config"
	"github.com/Jaime0506/app-maestro-detail/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gormlogger "gorm.io/gorm/logger"
)

func TestConnectAndAutoMigrate_SQLite(t *testing.T) {
	cfg := config.DBConfig{
		Driver:   config.DriverSQLite,
		DSN:      fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()),
		LogLevel: "silent",
	}

	db, err := Connect(cfg)
	require.NoError(t, err)
	require.NoError(t, Migrate(db, cfg))

	for _, table := range []string{"clientes", "productos", "facturas", "movimientos"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}
	assert.True(t, db.Migrator().HasColumn(&model.Product{}, "version"))
	assert.True(t, db.Migrator().HasIndex(&model.Invoice{}, "idx_facturas_idempotency_key"))
}

func TestConnect_UnsupportedDriver(t *testing.T) {
	_, err := Connect(config.DBConfig{Driver: "mongo"})
	assert.Error(t, err)
}

func TestMigrationURL(t *testing.T) {
	assert.Equal(t, "pgx5://u:p@h:5432/db?sslmode=disable", migrationURL("postgres://u:p@h:5432/db?sslmode=disable"))
	assert.Equal(t, "pgx5://u@h/db", migrationURL("postgresql://u@h/db"))
}

func TestLogLevel(t *testing.T) {
	assert.Equal(t, gormlogger.Silent, logLevel("silent"))
	assert.Equal(t, gormlogger.Warn, logLevel(""))
}

func TestEmbeddedMigrations(t *testing.T) {
	entries, err := migrationFS.ReadDir("migrations")
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}
