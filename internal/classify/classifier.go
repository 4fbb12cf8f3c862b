// Package classify turns raw trade messages into whale trade records.
package classify

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/valshi/whaletracker/internal/model"
	"github.com/valshi/whaletracker/internal/stream"
)

// Timestamps below this are in seconds; at or above, already milliseconds.
// The boundary (1e12 ms ≈ 2001-09-09) is far outside any plausible
// seconds-encoded trade time.
const msBoundary = int64(1e12)

var oneDollar = decimal.NewFromInt(1)

// Classifier filters trades by notional value.
type Classifier struct {
	floor decimal.Decimal
	now   func() time.Time
}

// New creates a classifier that drops trades below floor dollars.
func New(floor decimal.Decimal) *Classifier {
	return &Classifier{floor: floor, now: time.Now}
}

// Classify computes the notional for a trade and returns the record with
// ok=true when it clears the floor. The notional is taker-side exposure:
// count x price for yes takers, count x (1 - price) for no takers, with
// price the yes price in dollars.
func (c *Classifier) Classify(msg stream.TradeMsg) (model.TradeRecord, bool) {
	price := decimal.New(msg.YesPrice, -2) // cents → dollars
	count := decimal.NewFromInt(msg.Count)

	var notional decimal.Decimal
	switch msg.TakerSide {
	case model.SideNo:
		notional = count.Mul(oneDollar.Sub(price))
	default:
		// "yes" and anything unrecognized price at the yes side.
		notional = count.Mul(price)
	}

	if notional.LessThan(c.floor) {
		return model.TradeRecord{}, false
	}

	return model.TradeRecord{
		ID:       uuid.New(),
		Ticker:   msg.MarketTicker,
		Side:     msg.TakerSide,
		Price:    price,
		Count:    msg.Count,
		Notional: notional,
		TSMillis: c.normalizeTS(msg.Ts),
	}, true
}

// normalizeTS pins the venue's inconsistent timestamp encoding to epoch
// milliseconds. Zero means the venue sent nothing usable.
func (c *Classifier) normalizeTS(ts int64) int64 {
	switch {
	case ts == 0:
		return c.now().UnixMilli()
	case ts < msBoundary:
		return ts * 1000
	default:
		return ts
	}
}
