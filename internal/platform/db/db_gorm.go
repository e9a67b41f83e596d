// Package db はGORMによるデータベース接続を提供します。
package db

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const (
	// DefaultSQLitePath はDATABASE_URL未設定時に使うSQLiteファイルです。
	DefaultSQLitePath = "portfolio.db"

	// retryInterval は接続リトライの間隔です。
	retryInterval = 3 * time.Second

	// pgUniqueViolation はPostgreSQLの一意制約違反コードです。
	pgUniqueViolation = "23505"
)

// Driver identifies the SQL backend.
type Driver string

const (
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
)

// Config holds database connection settings.
type Config struct {
	Driver  Driver
	DSN     string
	Migrate bool
}

// LoadConfigFromEnv reads DATABASE_URL and RUN_MIGRATIONS.
// SQLite databases are migrated unless RUN_MIGRATIONS is explicitly "false".
func LoadConfigFromEnv() Config {
	cfg := ParseURL(os.Getenv("DATABASE_URL"))
	switch os.Getenv("RUN_MIGRATIONS") {
	case "true":
		cfg.Migrate = true
	case "false":
		cfg.Migrate = false
	default:
		cfg.Migrate = cfg.Driver == DriverSQLite
	}
	return cfg
}

// ParseURL maps a connection string to a driver and DSN.
//
//	postgres://…, postgresql://…  → PostgreSQL, passed through
//	sqlite:///abs/path, sqlite://rel → SQLite file
//	anything else                  → SQLite file path
func ParseURL(url string) Config {
	switch {
	case url == "":
		return Config{Driver: DriverSQLite, DSN: DefaultSQLitePath}
	case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"):
		return Config{Driver: DriverPostgres, DSN: url}
	case strings.HasPrefix(url, "sqlite:///"):
		return Config{Driver: DriverSQLite, DSN: "/" + strings.TrimPrefix(url, "sqlite:///")}
	case strings.HasPrefix(url, "sqlite://"):
		return Config{Driver: DriverSQLite, DSN: strings.TrimPrefix(url, "sqlite://")}
	default:
		return Config{Driver: DriverSQLite, DSN: url}
	}
}

// Dialector returns the GORM dialector for cfg.
func Dialector(cfg Config) (gorm.Dialector, error) {
	switch cfg.Driver {
	case DriverPostgres:
		return postgres.Open(cfg.DSN), nil
	case DriverSQLite:
		return sqlite.Open(cfg.DSN), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// GormConfig returns the GORM settings shared by the server and tests.
// TranslateError makes both drivers report unique violations as gorm.ErrDuplicatedKey.
func GormConfig() *gorm.Config {
	return &gorm.Config{TranslateError: true}
}

// Opener opens a GORM connection for a DSN. It is swapped out in tests.
type Opener func(dsn string) (*gorm.DB, error)

// ConnectWithRetry calls open until it succeeds or timeout elapses.
func ConnectWithRetry(dsn string, timeout time.Duration, open Opener) (*gorm.DB, error) {
	deadline := time.Now().Add(timeout)
	for {
		db, err := open(dsn)
		if err == nil {
			return db, nil
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("db connect failed after %v: %w", timeout, err)
		}
		slog.Warn("db connect failed, retrying", "error", err)
		time.Sleep(retryInterval)
	}
}

// OpenDB connects to the configured database, retrying for up to 60 seconds.
func OpenDB(cfg Config) (*gorm.DB, error) {
	open := func(dsn string) (*gorm.DB, error) {
		d, err := Dialector(Config{Driver: cfg.Driver, DSN: dsn})
		if err != nil {
			return nil, err
		}
		return gorm.Open(d, GormConfig())
	}
	db, err := ConnectWithRetry(cfg.DSN, 60*time.Second, open)
	if err != nil {
		return nil, err
	}
	if cfg.Driver == DriverSQLite {
		// SQLiteは書き込みを直列化する
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.SetMaxOpenConns(1)
		}
	}
	slog.Info("database connected", "driver", cfg.Driver)
	return db, nil
}

// IsUniqueViolation reports whether err is a unique-constraint violation.
func IsUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
