package testutils

import (
	"path/filepath"
	"testing"

	"sakudo-app/sakudo/config"
	"sakudo-app/sakudo/database"
)

// SetupSQLiteDB opens a fresh file-backed SQLite database under t.TempDir
// with the tables created. It is closed when the test ends.
func SetupSQLiteDB(t testing.TB) *database.Database {
	t.Helper()

	cfg := config.Defaults()
	cfg.AppEnv = "test"
	cfg.DBDriver = database.DriverSQLite
	cfg.DBPath = filepath.Join(t.TempDir(), "saku_test.db")

	db, err := database.Setup(cfg)
	if err != nil {
		t.Fatalf("failed to set up sqlite database: %v", err)
	}
	t.Cleanup(db.Close)
	return db
}
