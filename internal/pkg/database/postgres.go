package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"
)

// NewPostgres opens the metadata store. The CLI opens one handle per
// invocation and closes it before exit, so the pool stays small.
func NewPostgres(ctx context.Context, databaseURL string) (*sqlx.DB, error) {
	db, err := sqlx.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	log.Debug().Msg("Connected to PostgreSQL")
	return db, nil
}

// ClosePostgres closes the database connection
func ClosePostgres(db *sqlx.DB) {
	if db == nil {
		return
	}
	if err := db.Close(); err != nil {
		log.Error().Err(err).Msg("Error closing PostgreSQL connection")
		return
	}
	log.Debug().Msg("PostgreSQL connection closed")
}
