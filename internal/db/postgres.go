package db

import (
	"context"
	"fmt"
	"time"

	"fieldsurvey/pkg/types"

	"github.com/jackc/pgx/v5/pgxpool"
)

const schemaName = "fieldsurvey"

// schemaStatements are idempotent and run in order.
var schemaStatements = []string{
	`CREATE SCHEMA IF NOT EXISTS fieldsurvey`,
	`CREATE TABLE IF NOT EXISTS fieldsurvey.accounts (
		id           TEXT PRIMARY KEY,
		zone         TEXT NOT NULL DEFAULT '',
		circle       TEXT NOT NULL DEFAULT '',
		division     TEXT NOT NULL DEFAULT '',
		sub_division TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS fieldsurvey.survey_submissions (
		id                  TEXT PRIMARY KEY,
		account_id          TEXT NOT NULL,
		remark              TEXT NOT NULL,
		zone                TEXT NOT NULL,
		circle              TEXT NOT NULL,
		division            TEXT NOT NULL,
		sub_division        TEXT NOT NULL,
		mobile              TEXT NOT NULL,
		required_remark     TEXT NOT NULL DEFAULT '',
		meter_serial        TEXT NOT NULL DEFAULT '',
		reading             TEXT NOT NULL DEFAULT '',
		demand              TEXT NOT NULL DEFAULT '',
		meter_image_link    TEXT NOT NULL DEFAULT '',
		premises_image_link TEXT NOT NULL DEFAULT '',
		document_link       TEXT NOT NULL DEFAULT '',
		submitted_at        TEXT NOT NULL,
		created_at          TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS survey_submissions_account_id_idx ON fieldsurvey.survey_submissions (account_id)`,
}

func Connect(ctx context.Context, config *types.Config) (*pgxpool.Pool, error) {

	poolConfig, err := pgxpool.ParseConfig(config.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	if _, ok := poolConfig.ConnConfig.RuntimeParams["search_path"]; !ok {
		poolConfig.ConnConfig.RuntimeParams["search_path"] = schemaName
	}

	poolConfig.MaxConnIdleTime = 15 * time.Minute
	poolConfig.MaxConnLifetime = 45 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}

// EnsureSchema creates the accounts and submissions tables when missing.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range schemaStatements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}
