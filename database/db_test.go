package database

import (
	"bytes"
	"path/filepath"
	"testing"

	"sakudo-app/sakudo/config"
	"sakudo-app/sakudo/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func sqliteConfig(t *testing.T) config.Config {
	cfg := config.Defaults()
	cfg.AppEnv = "test"
	cfg.DBPath = filepath.Join(t.TempDir(), "saku.db")
	return cfg
}

func TestSetupCreatesTables(t *testing.T) {
	db, err := Setup(sqliteConfig(t))
	require.NoError(t, err)
	defer db.Close()

	assert.True(t, db.DB.Migrator().HasTable(&models.User{}))
	assert.True(t, db.DB.Migrator().HasTable(&models.Task{}))
	assert.True(t, db.DB.Migrator().HasColumn(&models.Task{}, "due_date"))
	assert.NoError(t, db.Ping())
}

func TestSetupEnforcesForeignKeys(t *testing.T) {
	db, err := Setup(sqliteConfig(t))
	require.NoError(t, err)
	defer db.Close()

	err = db.DB.Create(&models.Task{UserID: 42, Text: "orphan"}).Error
	assert.Error(t, err)

	var count int64
	require.NoError(t, db.DB.Model(&models.Task{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestSetupIsRepeatable(t *testing.T) {
	cfg := sqliteConfig(t)

	first, err := Setup(cfg)
	require.NoError(t, err)
	require.NoError(t, first.DB.Create(&models.User{Username: "alice", PasswordHash: "h"}).Error)
	first.Close()

	second, err := Setup(cfg)
	require.NoError(t, err)
	defer second.Close()

	var count int64
	require.NoError(t, second.DB.Model(&models.User{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestDialectorUnknownDriver(t *testing.T) {
	cfg := config.Defaults()
	cfg.DBDriver = "oracle"

	_, err := Dialector(cfg)
	assert.Error(t, err)

	_, err = Setup(cfg)
	assert.Error(t, err)
}

func TestDialectorNames(t *testing.T) {
	for _, driver := range []string{DriverSQLite, DriverPostgres, DriverMySQL} {
		cfg := config.Defaults()
		cfg.DBDriver = driver
		d, err := Dialector(cfg)
		require.NoError(t, err)
		assert.Equal(t, driver, d.Name())
	}
}

func TestDialectorDefaultPorts(t *testing.T) {
	cfg := config.Defaults()
	cfg.DBDriver = DriverPostgres
	d, err := Dialector(cfg)
	require.NoError(t, err)
	assert.Contains(t, d.(*postgres.Dialector).DSN, "port=5432 ")

	cfg.DBDriver = DriverMySQL
	d, err = Dialector(cfg)
	require.NoError(t, err)
	assert.Contains(t, d.(*mysql.Dialector).DSN, ":3306)")

	cfg.DBPort = "6543"
	d, err = Dialector(cfg)
	require.NoError(t, err)
	assert.Contains(t, d.(*mysql.Dialector).DSN, ":6543)")

	cfg.DBDriver = DriverPostgres
	d, err = Dialector(cfg)
	require.NoError(t, err)
	assert.Contains(t, d.(*postgres.Dialector).DSN, "port=6543 ")
}

func TestStatementLogOmitsBoundValues(t *testing.T) {
	cfg := sqliteConfig(t)
	cfg.AppEnv = "development"

	var out bytes.Buffer
	db, err := setup(cfg, &out)
	require.NoError(t, err)
	defer db.Close()

	hash := "$2a$04$abcdefghijklmnopqrstuuJ0x1Yb9n5dQ2r3s4t5u6v7w8x9y0z1a"
	require.NoError(t, db.DB.Create(&models.User{Username: "alice", PasswordHash: hash}).Error)
	assert.Error(t, db.DB.Create(&models.User{Username: "alice", PasswordHash: hash}).Error)

	logged := out.String()
	assert.Contains(t, logged, "INSERT INTO")
	assert.NotContains(t, logged, "$2a$")
	assert.NotContains(t, logged, "alice")
}

func TestSQLiteDSN(t *testing.T) {
	assert.Equal(t, "saku.db?_foreign_keys=on", SQLiteDSN("saku.db"))
	assert.Equal(t, "file::memory:?cache=shared&_foreign_keys=on", SQLiteDSN("file::memory:?cache=shared"))
}

func TestClose(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	assert.NoError(t, err)
	database := &Database{DB: db}

	assert.NotPanics(t, func() {
		database.Close()
	})
	assert.NotPanics(t, func() {
		(&Database{}).Close()
	})
}
