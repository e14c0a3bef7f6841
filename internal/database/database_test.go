package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_URLs(t *testing.T) {
	pg := &Config{Driver: DriverPostgres, Host: "db", Port: "5432", User: "book", Password: "p@ss", DBName: "ledger", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=book password=p@ss dbname=ledger sslmode=disable", pg.DSN())
	assert.Equal(t, "postgres://book:p%40ss@db:5432/ledger?sslmode=disable", pg.MigrationURL())

	lite := &Config{Driver: DriverSQLite, SQLitePath: "/data/ledger.db"}
	assert.Equal(t, "/data/ledger.db?_foreign_keys=on", lite.DSN())
	assert.Equal(t, "sqlite3:///data/ledger.db", lite.MigrationURL())
}

func TestNewConfig_RejectsUnknownDriver(t *testing.T) {
	t.Setenv("DB_DRIVER", "mysql")
	_, err := NewConfig()
	assert.Error(t, err)
}

func TestMigrations_SQLite(t *testing.T) {
	cfg := &Config{Driver: DriverSQLite, SQLitePath: filepath.Join(t.TempDir(), "ledger.db")}

	mig, err := NewMigrate(cfg, "file://../../migrations")
	require.NoError(t, err)
	require.NoError(t, mig.Up())
	version, dirty, err := mig.Version()
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)
	assert.False(t, dirty)
	closeMigrate(mig)

	m, err := NewManager(cfg)
	require.NoError(t, err)
	defer m.Close()

	for _, table := range []string{"users", "groups", "group_users", "sources", "source_users", "expenses", "expense_division_items", "recurring_expenses", "audit_logs"} {
		assert.True(t, m.DB().Migrator().HasTable(table), table)
	}

	mig, err = NewMigrate(cfg, "file://../../migrations")
	require.NoError(t, err)
	require.NoError(t, mig.Down())
	closeMigrate(mig)
	assert.False(t, m.DB().Migrator().HasTable("expenses"))
}
