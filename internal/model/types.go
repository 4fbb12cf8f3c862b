package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Trade sides as reported by Kalshi.
const (
	SideYes = "yes"
	SideNo  = "no"
)

// TradeRecord is a classified whale print. Records are append-only: once
// written they are never updated or deleted.
type TradeRecord struct {
	ID       uuid.UUID       // Primary key, assigned at classification
	Ticker   string          // Market ticker (e.g., "PRES-2024-DEM")
	Side     string          // Taker side: "yes" or "no"
	Price    decimal.Decimal // Yes price in dollars, [0, 1]
	Count    int64           // Number of contracts
	Notional decimal.Decimal // Dollar value: count*price (yes) or count*(1-price) (no)
	TSMillis int64           // Event timestamp (ms since epoch)
}

// Preference is a subscriber's alert configuration. The chat front end owns
// and mutates preferences; the tracker only reads snapshots.
type Preference struct {
	SubscriberID int64           // Chat platform user ID
	AlertsOn     bool            // Whether the subscriber receives alerts
	Threshold    decimal.Decimal // Minimum notional (dollars) for an alert
	Topic        string          // Topic filter key ("all", "macro", "crypto", "sports")
	Timezone     string          // IANA timezone for rendered timestamps
}

// MarketMetadata is display metadata for a market, resolved best-effort.
type MarketMetadata struct {
	Ticker    string   // Market ticker
	Title     string   // Display title (falls back to the ticker)
	Tags      []string // Venue tags (e.g., "Politics", "Crypto")
	FetchedAt int64    // When this metadata was fetched (ms since epoch)
}

// Placeholder returns true if the metadata carries no real title, i.e. the
// title is just the bare ticker. Placeholders are not worth caching.
func (m MarketMetadata) Placeholder() bool {
	return m.Title == "" || m.Title == m.Ticker
}
