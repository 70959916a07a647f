package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type Config struct {
	AppEnv             string `yaml:"app_env"`
	AppPort            string `yaml:"app_port"`
	AllowedOrigins     string `yaml:"allowed_origins"`
	DBDriver           string `yaml:"db_driver"`
	DBPath             string `yaml:"db_path"`
	DBHost             string `yaml:"db_host"`
	DBPort             string `yaml:"db_port"`
	DBUser             string `yaml:"db_user"`
	DBPassword         string `yaml:"db_password"`
	DBName             string `yaml:"db_name"`
	DBMaxIdleConns     int    `yaml:"db_max_idle_conns"`
	DBMaxOpenConns     int    `yaml:"db_max_open_conns"`
	BcryptCost         int    `yaml:"bcrypt_cost"`
	JWTSecret          string `yaml:"jwt_secret"`
	JWTExpirationHours int    `yaml:"jwt_expiration_hours"`
	NatsURL            string `yaml:"nats_url"`
}

// Defaults returns the configuration used when neither a config file nor the
// environment sets a value.
func Defaults() Config {
	return Config{
		AppEnv:             "development",
		AppPort:            "8080",
		AllowedOrigins:     "*",
		DBDriver:           "sqlite",
		DBPath:             "saku.db",
		DBHost:             "localhost",
		DBPort:             "",
		DBUser:             "root",
		DBPassword:         "",
		DBName:             "saku",
		DBMaxIdleConns:     2,
		DBMaxOpenConns:     10,
		BcryptCost:         10,
		JWTSecret:          "change-this-secret-before-deploying",
		JWTExpirationHours: 24,
		NatsURL:            "",
	}
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	log.Printf("%s not set, defaulting to %s", key, redact(key, defaultValue))
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
		log.Printf("Invalid integer value for %s, defaulting to %d", key, defaultValue)
	}
	return defaultValue
}

func redact(key, value string) string {
	switch key {
	case "DB_PASSWORD", "JWT_SECRET":
		if value == "" {
			return `""`
		}
		return "****"
	}
	return value
}

// LoadFile reads a YAML config file on top of base. Keys missing from the
// file keep the value from base.
func LoadFile(path string, base Config) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return base, fmt.Errorf("error reading config file: %w", err)
	}

	cfg := base
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return base, fmt.Errorf("error parsing config: %w", err)
	}
	return cfg, nil
}

// Load builds the process configuration. Values come from, in increasing
// precedence: built-in defaults, the YAML file named by SAKUDO_CONFIG, and
// environment variables.
func Load() Config {
	log.Println("Loading configuration...")

	base := Defaults()
	if path, ok := os.LookupEnv("SAKUDO_CONFIG"); ok && path != "" {
		fileCfg, err := LoadFile(path, base)
		if err != nil {
			log.Printf("Ignoring config file %s: %v", path, err)
		} else {
			base = fileCfg
		}
	}

	return Config{
		AppEnv:             getEnv("APP_ENV", base.AppEnv),
		AppPort:            getEnv("APP_PORT", base.AppPort),
		AllowedOrigins:     getEnv("ALLOWED_ORIGINS", base.AllowedOrigins),
		DBDriver:           getEnv("DB_DRIVER", base.DBDriver),
		DBPath:             getEnv("DB_PATH", base.DBPath),
		DBHost:             getEnv("DB_HOST", base.DBHost),
		DBPort:             getEnv("DB_PORT", base.DBPort),
		DBUser:             getEnv("DB_USER", base.DBUser),
		DBPassword:         getEnv("DB_PASSWORD", base.DBPassword),
		DBName:             getEnv("DB_NAME", base.DBName),
		DBMaxIdleConns:     getEnvAsInt("DB_MAX_IDLE_CONNS", base.DBMaxIdleConns),
		DBMaxOpenConns:     getEnvAsInt("DB_MAX_OPEN_CONNS", base.DBMaxOpenConns),
		BcryptCost:         getEnvAsInt("BCRYPT_COST", base.BcryptCost),
		JWTSecret:          getEnv("JWT_SECRET", base.JWTSecret),
		JWTExpirationHours: getEnvAsInt("JWT_EXPIRATION_HOURS", base.JWTExpirationHours),
		NatsURL:            getEnv("NATS_URL", base.NatsURL),
	}
}
