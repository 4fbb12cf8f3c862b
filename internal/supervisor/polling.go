package supervisor

import (
	"context"
	"time"

	"github.com/valshi/whaletracker/internal/api"
	"github.com/valshi/whaletracker/internal/metrics"
)

// TradePager fetches recent trades over REST.
type TradePager interface {
	GetTrades(ctx context.Context, opts api.GetTradesOptions) (*api.TradesResponse, error)
}

// runPolling is the degraded ingest path: poll the public trades endpoint
// and deduplicate against a monotonic timestamp watermark. The feed is not
// strictly ordered, so the watermark only advances after a whole batch is
// processed; entries at or below it are duplicates from the previous cycle.
func (s *Supervisor) runPolling(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.PollInterval)
	defer ticker.Stop()

	// Alert on activity after startup only; replaying history would flood
	// subscribers.
	watermark := time.Now().UnixMilli()

	s.poll(ctx, &watermark)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.poll(ctx, &watermark)
		}
	}
}

// poll runs one cycle: fetch a page, process unseen trades, advance the
// watermark.
func (s *Supervisor) poll(ctx context.Context, watermark *int64) {
	metrics.FallbackPolls.Inc()

	resp, err := s.trades.GetTrades(ctx, api.GetTradesOptions{
		Limit: s.cfg.PollPageSize,
		MinTS: *watermark / 1000,
	})
	if err != nil {
		s.logger.Warn("fallback poll failed", "error", err)
		return
	}

	maxSeen := *watermark
	fresh := 0

	for _, trade := range resp.Trades {
		msg := trade.ToTradeMsg()
		if msg.Ts <= *watermark {
			continue
		}
		if msg.Ts > maxSeen {
			maxSeen = msg.Ts
		}
		fresh++
		s.processTrade(ctx, msg, false)
	}

	*watermark = maxSeen

	if fresh > 0 {
		s.logger.Debug("fallback poll cycle",
			"fetched", len(resp.Trades),
			"fresh", fresh,
			"watermark", *watermark,
		)
	}
}
