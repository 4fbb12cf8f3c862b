package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/valshi/whaletracker/internal/model"
)

// Append persists one whale print.
func (s *Store) Append(ctx context.Context, rec model.TradeRecord) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO prints (id, ticker, side, price, count, notional_usd, ts_ms)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO NOTHING
	`, rec.ID, rec.Ticker, rec.Side, rec.Price.String(), rec.Count, rec.Notional.String(), rec.TSMillis)
	if err != nil {
		return fmt.Errorf("insert print: %w", err)
	}
	return nil
}

// Recent returns the most recently recorded prints, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]model.TradeRecord, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, ticker, side, price, count, notional_usd, ts_ms
		FROM prints
		ORDER BY ts_ms DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent prints: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// Top returns the largest prints since the given time, biggest first.
func (s *Store) Top(ctx context.Context, since time.Time, limit int) ([]model.TradeRecord, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, ticker, side, price, count, notional_usd, ts_ms
		FROM prints
		WHERE ts_ms >= $1
		ORDER BY notional_usd DESC
		LIMIT $2
	`, since.UnixMilli(), limit)
	if err != nil {
		return nil, fmt.Errorf("query top prints: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// scanRecords reads print rows. NUMERIC columns come back as strings to keep
// exact decimal values.
func scanRecords(rows pgx.Rows) ([]model.TradeRecord, error) {
	var records []model.TradeRecord
	for rows.Next() {
		var rec model.TradeRecord
		var price, notional string

		if err := rows.Scan(&rec.ID, &rec.Ticker, &rec.Side, &price, &rec.Count, &notional, &rec.TSMillis); err != nil {
			return nil, fmt.Errorf("scan print: %w", err)
		}

		var err error
		if rec.Price, err = decimal.NewFromString(price); err != nil {
			return nil, fmt.Errorf("parse price %q: %w", price, err)
		}
		if rec.Notional, err = decimal.NewFromString(notional); err != nil {
			return nil, fmt.Errorf("parse notional %q: %w", notional, err)
		}

		records = append(records, rec)
	}
	return records, rows.Err()
}
