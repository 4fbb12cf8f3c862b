package alert

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/valshi/whaletracker/internal/model"
)

const timeLayout = "Jan 02 15:04"

// Render builds the alert text for one trade. realtime distinguishes the
// stream path from the REST fallback in the footer.
func Render(rec model.TradeRecord, title, timezone string, realtime bool) string {
	flag := "🟢"
	if rec.Side == model.SideNo {
		flag = "🔴"
	}
	if title == "" {
		title = rec.Ticker
	}

	source := "⚡ Real-time via WebSocket"
	if !realtime {
		source = "🛰 Delayed via REST poll"
	}

	return fmt.Sprintf("%s %s\n💰 $%s • %d @ $%s • %s\n%s",
		flag,
		title,
		groupThousands(rec.Notional),
		rec.Count,
		rec.Price.StringFixed(2),
		formatTS(rec.TSMillis, timezone),
		source,
	)
}

// formatTS renders a millisecond timestamp in the subscriber's timezone,
// falling back to UTC for unknown zone names.
func formatTS(tsMillis int64, timezone string) string {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		loc = time.UTC
	}
	return time.UnixMilli(tsMillis).In(loc).Format(timeLayout)
}

// groupThousands renders a decimal rounded to whole dollars with comma
// grouping ("1234567.80" → "1,234,568").
func groupThousands(d decimal.Decimal) string {
	s := d.Round(0).String()

	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}

	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}

	if neg {
		return "-" + b.String()
	}
	return b.String()
}
