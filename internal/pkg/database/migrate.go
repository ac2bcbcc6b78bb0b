package database

import (
	"embed"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Migrate brings the schema up to date. Running it against an up-to-date
// database is a no-op, so every command may call it before touching photos.
func Migrate(db *sqlx.DB) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("migration: open source: %w", err)
	}

	driver, err := postgres.WithInstance(db.DB, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("migration: open driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "postgres", driver)
	if err != nil {
		return fmt.Errorf("migration: init: %w", err)
	}
	m.Log = &migrateLogger{logger: log.Logger}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("migration: read version: %w", err)
	}
	if dirty {
		return fmt.Errorf("migration: database is dirty at version %d, fix it manually", version)
	}

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			log.Debug().Uint("version", version).Msg("Schema already up to date")
			return nil
		}
		return fmt.Errorf("migration: up: %w", err)
	}

	newVersion, _, _ := m.Version()
	log.Info().Uint("from", version).Uint("to", newVersion).Msg("Schema migrated")
	return nil
}

// migrateLogger adapts migrate.Logger to zerolog
type migrateLogger struct {
	logger zerolog.Logger
}

func (l *migrateLogger) Printf(format string, v ...interface{}) {
	l.logger.Debug().Msg(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (l *migrateLogger) Verbose() bool {
	return l.logger.GetLevel() <= zerolog.DebugLevel
}
