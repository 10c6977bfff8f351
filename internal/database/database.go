// Package database opens the GORM connection for the planner: Postgres
// when reachable, with a file-backed SQLite fallback so a standalone
// install needs no external services.
package database

import (
	"fmt"

	"github.com/MrMark1127/arma-tactical/internal/model"
	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Manager holds the live connection and how it was obtained.
type Manager struct {
	DB              *gorm.DB
	ShouldSaveLocal bool // true when running on the SQLite fallback
	Logger          zerolog.Logger
}

// NewManager creates an unconnected manager.
func NewManager(log zerolog.Logger) *Manager {
	return &Manager{Logger: log}
}

// Connect opens Postgres from the db.* config keys, falling back to
// SQLite when the server is unreachable.
func (m *Manager) Connect() error {
	db, err := openPostgres()
	if err == nil {
		if sqlDB, dbErr := db.DB(); dbErr == nil && sqlDB.Ping() == nil {
			sqlDB.SetMaxOpenConns(10)
			m.DB = db
			m.Logger.Info().Str("host", viper.GetString("db.host")).Msg("Connected to Postgres")
			return nil
		}
	}

	m.Logger.Warn().Err(err).Msg("Postgres unreachable, using SQLite")
	m.ShouldSaveLocal = true

	path := viper.GetString("db.sqlitePath")
	db, err = openSqlite(path)
	if err != nil {
		return fmt.Errorf("failed to open SQLite at %s: %w", path, err)
	}
	m.DB = db
	m.Logger.Info().Str("path", path).Msg("Using SQLite")
	return nil
}

// Migrate creates or updates the schema for all model tables.
func (m *Manager) Migrate() error {
	if m.DB == nil {
		return fmt.Errorf("not connected")
	}
	if err := m.DB.AutoMigrate(model.DatabaseModels...); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	m.Logger.Info().Msg("Schema migrated")
	return nil
}

func openPostgres() (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		viper.GetString("db.host"),
		viper.GetString("db.port"),
		viper.GetString("db.username"),
		viper.GetString("db.password"),
		viper.GetString("db.database"),
	)
	return gorm.Open(postgres.New(postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true,
	}), gormConfig())
}

func openSqlite(path string) (*gorm.DB, error) {
	if path == "" {
		path = "file::memory:?cache=shared"
	}
	db, err := gorm.Open(sqlite.Open(path), gormConfig())
	if err != nil {
		return nil, err
	}
	// Keep the single-writer happy under concurrent request handlers.
	// foreign_keys is off by default in SQLite and must be on for the
	// ON DELETE CASCADE constraints to fire.
	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL;",
		"PRAGMA synchronous = NORMAL;",
		"PRAGMA busy_timeout = 5000;",
		"PRAGMA foreign_keys = ON;",
	} {
		if err := db.Exec(pragma).Error; err != nil {
			return nil, fmt.Errorf("error setting PRAGMA: %w", err)
		}
	}
	return db, nil
}

func gormConfig() *gorm.Config {
	return &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	}
}
