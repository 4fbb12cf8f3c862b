package store

import (
	"context"
	"fmt"
)

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS subs (
		user_id    BIGINT PRIMARY KEY,
		alerts_on  BOOLEAN NOT NULL DEFAULT TRUE,
		thresh_usd NUMERIC NOT NULL DEFAULT 5000,
		topic      TEXT NOT NULL DEFAULT 'all',
		tz         TEXT NOT NULL DEFAULT 'UTC'
	)`,
	`CREATE TABLE IF NOT EXISTS prints (
		id           UUID PRIMARY KEY,
		ticker       TEXT NOT NULL,
		side         TEXT NOT NULL,
		price        NUMERIC NOT NULL,
		count        BIGINT NOT NULL,
		notional_usd NUMERIC NOT NULL,
		ts_ms        BIGINT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_prints_ticker ON prints (ticker)`,
	`CREATE INDEX IF NOT EXISTS idx_prints_ts ON prints (ts_ms)`,
	`CREATE INDEX IF NOT EXISTS idx_prints_notional ON prints (notional_usd DESC)`,
	`CREATE TABLE IF NOT EXISTS market_cache (
		ticker     TEXT PRIMARY KEY,
		title      TEXT NOT NULL,
		tags       TEXT NOT NULL DEFAULT '',
		fetched_at BIGINT NOT NULL
	)`,
}

// Migrate creates the schema. Idempotent.
func (s *Store) Migrate(ctx context.Context) error {
	for _, stmt := range migrations {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	s.logger.Info("schema migrated", "statements", len(migrations))
	return nil
}
