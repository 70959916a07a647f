package database

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"sakudo-app/sakudo/config"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
)

type Database struct {
	DB *gorm.DB
}

// Dialector picks the gorm dialector for cfg.DBDriver.
func Dialector(cfg config.Config) (gorm.Dialector, error) {
	switch strings.ToLower(cfg.DBDriver) {
	case DriverSQLite, "":
		return sqlite.Open(SQLiteDSN(cfg.DBPath)), nil
	case DriverPostgres:
		dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
			cfg.DBHost,
			portOrDefault(cfg.DBPort, "5432"),
			cfg.DBUser,
			cfg.DBPassword,
			cfg.DBName,
		)
		return postgres.Open(dsn), nil
	case DriverMySQL:
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC&clientFoundRows=true",
			cfg.DBUser,
			cfg.DBPassword,
			cfg.DBHost,
			portOrDefault(cfg.DBPort, "3306"),
			cfg.DBName,
		)
		return mysql.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.DBDriver)
	}
}

func portOrDefault(port, fallback string) string {
	if port == "" {
		return fallback
	}
	return port
}

// SQLiteDSN turns a file path into a DSN with foreign key enforcement on.
// SQLite leaves it off per connection unless asked.
func SQLiteDSN(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_foreign_keys=on"
}

// gormConfig logs statements to out with placeholders only: bound values
// include password hashes.
func gormConfig(cfg config.Config, out io.Writer) *gorm.Config {
	level := logger.Warn
	if cfg.AppEnv == "development" {
		level = logger.Info
	}

	return &gorm.Config{
		Logger: logger.New(log.New(out, "\r\n", log.LstdFlags), logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true,
			ParameterizedQueries:      true,
		}),
		TranslateError:         true,
		AllowGlobalUpdate:      false,
		SkipDefaultTransaction: true,
	}
}

func Setup(cfg config.Config) (*Database, error) {
	return setup(cfg, os.Stdout)
}

func setup(cfg config.Config, logOutput io.Writer) (*Database, error) {
	dialector, err := Dialector(cfg)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, gormConfig(cfg, logOutput))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxIdleConns(cfg.DBMaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.DBMaxOpenConns)

	log.Printf("Connected to %s database", cfg.DBDriver)

	if err := RunMigrations(db); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return &Database{DB: db}, nil
}

// Ping reports whether the engine is reachable.
func (d *Database) Ping() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

func (d *Database) Close() {
	if d.DB == nil {
		log.Println("Database connection is nil, nothing to close.")
		return
	}
	sqlDB, err := d.DB.DB()
	if err != nil {
		log.Printf("Failed to get database connection: %v", err)
		return
	}
	if err := sqlDB.Close(); err != nil {
		log.Printf("Failed to close database connection: %v", err)
	}
}
