package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/valshi/whaletracker/internal/model"
)

// GetMetadata returns the durable metadata row for a ticker.
func (s *Store) GetMetadata(ctx context.Context, ticker string) (model.MarketMetadata, bool, error) {
	var meta model.MarketMetadata
	var tags string

	err := s.pool.QueryRow(ctx, `
		SELECT ticker, title, tags, fetched_at
		FROM market_cache
		WHERE ticker = $1
	`, ticker).Scan(&meta.Ticker, &meta.Title, &tags, &meta.FetchedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.MarketMetadata{}, false, nil
	}
	if err != nil {
		return model.MarketMetadata{}, false, fmt.Errorf("query metadata: %w", err)
	}

	meta.Tags = splitTags(tags)
	return meta, true, nil
}

// PutMetadata upserts the durable metadata row.
func (s *Store) PutMetadata(ctx context.Context, meta model.MarketMetadata) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO market_cache (ticker, title, tags, fetched_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (ticker) DO UPDATE
		SET title = EXCLUDED.title, tags = EXCLUDED.tags, fetched_at = EXCLUDED.fetched_at
	`, meta.Ticker, meta.Title, joinTags(meta.Tags), meta.FetchedAt)
	if err != nil {
		return fmt.Errorf("upsert metadata: %w", err)
	}
	return nil
}

// Tags are stored comma-joined. Kalshi tags never contain commas.
func joinTags(tags []string) string {
	return strings.Join(tags, ",")
}

func splitTags(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}
