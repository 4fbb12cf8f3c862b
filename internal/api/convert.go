package api

import (
	"time"

	"github.com/valshi/whaletracker/internal/model"
	"github.com/valshi/whaletracker/internal/stream"
)

// ParseTimestamp parses an ISO 8601 timestamp to milliseconds since epoch.
// Returns 0 for empty or invalid input.
func ParseTimestamp(iso string) int64 {
	if iso == "" {
		return 0
	}

	t, err := time.Parse(time.RFC3339, iso)
	if err != nil {
		// Try without timezone
		t, err = time.Parse("2006-01-02T15:04:05", iso)
		if err != nil {
			return 0
		}
	}

	return t.UnixMilli()
}

// ToTradeMsg converts a REST trade to the wire representation the classifier
// consumes, so polled and streamed trades share one path.
func (t *APITrade) ToTradeMsg() stream.TradeMsg {
	return stream.TradeMsg{
		TradeID:      t.TradeID,
		MarketTicker: t.Ticker,
		YesPrice:     t.YesPrice,
		NoPrice:      t.NoPrice,
		Count:        t.Count,
		TakerSide:    t.TakerSide,
		Ts:           ParseTimestamp(t.CreatedTime),
	}
}

// Metadata builds market metadata from a market and its series tags.
func (m *APIMarket) Metadata(tags []string, fetchedAt int64) model.MarketMetadata {
	title := m.Title
	if title == "" {
		title = m.Ticker
	}
	return model.MarketMetadata{
		Ticker:    m.Ticker,
		Title:     title,
		Tags:      tags,
		FetchedAt: fetchedAt,
	}
}
