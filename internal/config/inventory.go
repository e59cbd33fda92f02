package config

import (
	"errors"
	"fmt"
	"time"

	"supermarket-inventory/internal/database"
)

const (
	defaultHTTPAddr        = ":8080"
	defaultMigrationsPath  = "migrations"
	defaultExportDir       = "datos"
	defaultSQLiteURL       = "sqlite3://supermercado.db"
	defaultShutdownTimeout = 10 * time.Second

	defaultPasswordIterations = 600000
	minSessionSecretLength    = 32

	defaultDBMaxOpenConns    = 25
	defaultDBMaxIdleConns    = 5
	defaultDBConnMaxLifetime = 5 * time.Minute
	defaultDBPingTimeout     = 5 * time.Second
	defaultReadHeaderTimeout = 5 * time.Second
)

// Database is the part of the configuration every binary touching the
// catalog tables needs.
type Database struct {
	Driver         database.Driver
	URL            string
	MigrationsPath string
	Pool           database.Pool
}

type Inventory struct {
	Database
	HTTPAddr           string
	ExportDir          string
	AuthEnabled        bool
	SessionSecret      string
	SessionSecure      bool
	PasswordIterations int
	RabbitMQURL        string
	ShutdownTimeout    time.Duration
	ReadHeaderTimeout  time.Duration
}

func LoadDatabase() (Database, error) {
	driver, err := database.ParseDriver(getEnv("DB_DRIVER", string(database.SQLite)))
	if err != nil {
		return Database{}, fmt.Errorf("DB_DRIVER: %w", err)
	}

	cfg := Database{
		Driver:         driver,
		URL:            getEnv("DATABASE_URL", ""),
		MigrationsPath: getEnv("MIGRATIONS_PATH", defaultMigrationsPath),
		Pool: database.Pool{
			MaxOpenConns:    defaultDBMaxOpenConns,
			MaxIdleConns:    defaultDBMaxIdleConns,
			ConnMaxLifetime: defaultDBConnMaxLifetime,
			PingTimeout:     defaultDBPingTimeout,
		},
	}

	if cfg.URL == "" {
		if driver != database.SQLite {
			return Database{}, errors.New("DATABASE_URL is required")
		}
		cfg.URL = defaultSQLiteURL
	}
	if _, err := driver.DSN(cfg.URL); err != nil {
		return Database{}, fmt.Errorf("DATABASE_URL: %w", err)
	}

	return cfg, nil
}

func LoadInventory() (Inventory, error) {
	db, err := LoadDatabase()
	if err != nil {
		return Inventory{}, err
	}

	cfg := Inventory{
		Database:          db,
		HTTPAddr:          getEnv("HTTP_ADDR", defaultHTTPAddr),
		ExportDir:         getEnv("EXPORT_DIR", defaultExportDir),
		SessionSecret:     getEnv("SESSION_SECRET", ""),
		RabbitMQURL:       getEnv("RABBITMQ_URL", ""),
		ShutdownTimeout:   defaultShutdownTimeout,
		ReadHeaderTimeout: defaultReadHeaderTimeout,
	}

	if cfg.AuthEnabled, err = getEnvBool("AUTH_ENABLED", true); err != nil {
		return Inventory{}, err
	}
	if cfg.SessionSecure, err = getEnvBool("SESSION_SECURE", false); err != nil {
		return Inventory{}, err
	}
	if cfg.PasswordIterations, err = LoadPasswordIterations(); err != nil {
		return Inventory{}, err
	}

	if cfg.AuthEnabled {
		if cfg.SessionSecret == "" {
			return Inventory{}, errors.New("SESSION_SECRET is required when AUTH_ENABLED is true")
		}
		if len(cfg.SessionSecret) < minSessionSecretLength {
			return Inventory{}, fmt.Errorf("SESSION_SECRET must be at least %d bytes", minSessionSecretLength)
		}
	}

	return cfg, nil
}

func LoadPasswordIterations() (int, error) {
	n, err := getEnvInt("PASSWORD_ITERATIONS", defaultPasswordIterations)
	if err != nil {
		return 0, err
	}
	if n < 1 {
		return 0, errors.New("PASSWORD_ITERATIONS must be positive")
	}
	return n, nil
}

// ExportDir is read on its own by tools that only regenerate the files.
func ExportDir() string {
	return getEnv("EXPORT_DIR", defaultExportDir)
}
