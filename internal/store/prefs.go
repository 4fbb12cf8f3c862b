package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/valshi/whaletracker/internal/config"
	"github.com/valshi/whaletracker/internal/model"
)

// DefaultPreference is what a subscriber gets before storing anything.
func DefaultPreference(subscriberID int64) model.Preference {
	return model.Preference{
		SubscriberID: subscriberID,
		AlertsOn:     true,
		Threshold:    decimal.NewFromInt(config.DefaultThreshold),
		Topic:        "all",
		Timezone:     "UTC",
	}
}

// ListEnabled returns every subscriber with alerts switched on.
func (s *Store) ListEnabled(ctx context.Context) ([]model.Preference, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT user_id, alerts_on, thresh_usd, topic, tz
		FROM subs
		WHERE alerts_on
	`)
	if err != nil {
		return nil, fmt.Errorf("query enabled subs: %w", err)
	}
	defer rows.Close()

	var prefs []model.Preference
	for rows.Next() {
		pref, err := scanPreference(rows)
		if err != nil {
			return nil, err
		}
		prefs = append(prefs, pref)
	}
	return prefs, rows.Err()
}

// Get returns one subscriber's preference, falling back to the default row
// when the subscriber has never stored anything.
func (s *Store) Get(ctx context.Context, subscriberID int64) (model.Preference, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT user_id, alerts_on, thresh_usd, topic, tz
		FROM subs
		WHERE user_id = $1
	`, subscriberID)

	pref, err := scanPreference(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return DefaultPreference(subscriberID), nil
	}
	if err != nil {
		return model.Preference{}, err
	}
	return pref, nil
}

func scanPreference(row pgx.Row) (model.Preference, error) {
	var pref model.Preference
	var thresh string

	if err := row.Scan(&pref.SubscriberID, &pref.AlertsOn, &thresh, &pref.Topic, &pref.Timezone); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Preference{}, err
		}
		return model.Preference{}, fmt.Errorf("scan preference: %w", err)
	}

	var err error
	if pref.Threshold, err = decimal.NewFromString(thresh); err != nil {
		return model.Preference{}, fmt.Errorf("parse threshold %q: %w", thresh, err)
	}
	return pref, nil
}
