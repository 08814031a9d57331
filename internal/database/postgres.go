package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

// ConnectPostgres opens a PostgreSQL pool, pings it and creates the tables.
// The caller owns the returned pool and must Close it.
func ConnectPostgres(ctx context.Context, postgresURI string, log *zap.Logger) (*sql.DB, error) {
	db, err := sql.Open("postgres", postgresURI)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	// Set connection pool settings
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	log.Info("connecting to PostgreSQL", zap.String("uri", MaskURI(postgresURI)))
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	if err := InitPostgresTables(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	log.Info("connected to PostgreSQL")
	return db, nil
}

// InitPostgresTables creates the feedbacks table if it does not exist.
func InitPostgresTables(ctx context.Context, db *sql.DB) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS feedbacks (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			category VARCHAR(64) NOT NULL CHECK (category <> ''),
			rating INTEGER NOT NULL,
			feedback TEXT NOT NULL CHECK (feedback <> ''),
			improvement TEXT,
			email VARCHAR(255) NOT NULL CHECK (email <> ''),
			CONSTRAINT feedbacks_rating_check CHECK (rating BETWEEN 1 AND 5)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_feedbacks_created_at ON feedbacks(created_at)`,
	}

	for _, query := range queries {
		if _, err := db.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("init postgres tables: %w", err)
		}
	}
	return nil
}
