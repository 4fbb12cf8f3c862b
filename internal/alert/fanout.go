package alert

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/valshi/whaletracker/internal/model"
)

// PrefSource lists subscribers with alerts enabled.
type PrefSource interface {
	ListEnabled(ctx context.Context) ([]model.Preference, error)
}

// MetadataResolver resolves market metadata for rendering and topic filters.
type MetadataResolver interface {
	Resolve(ctx context.Context, ticker string) model.MarketMetadata
}

// Fanout evaluates per-subscriber predicates and delivers alerts. Deliveries
// for one trade run concurrently under a semaphore bound; Dispatch does not
// return until all of them settle, so each subscriber sees trades in the
// order they were classified.
type Fanout struct {
	prefs    PrefSource
	resolver MetadataResolver
	notifier Notifier
	topics   map[string][]string
	sem      *semaphore.Weighted
	logger   *slog.Logger

	// Delivered is invoked after each settle, for metrics. May be nil.
	Delivered func(err error)

	// Grace bounds how long deliveries may keep running once the pipeline
	// context is cancelled. Zero means deliveries die with the pipeline.
	Grace time.Duration
}

// NewFanout creates a fan-out stage. topics maps topic keys to acceptable
// market tags; a nil tag list means unfiltered. maxConcurrent bounds
// parallel Notify calls.
func NewFanout(prefs PrefSource, resolver MetadataResolver, notifier Notifier, topics map[string][]string, maxConcurrent int64, logger *slog.Logger) *Fanout {
	if logger == nil {
		logger = slog.Default()
	}
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}

	return &Fanout{
		prefs:    prefs,
		resolver: resolver,
		notifier: notifier,
		topics:   topics,
		sem:      semaphore.NewWeighted(maxConcurrent),
		logger:   logger,
	}
}

// Dispatch delivers one trade to every matching subscriber. Per-subscriber
// failures are logged and never block the other subscribers.
func (f *Fanout) Dispatch(ctx context.Context, rec model.TradeRecord, realtime bool) {
	meta := f.resolver.Resolve(ctx, rec.Ticker)

	prefs, err := f.prefs.ListEnabled(ctx)
	if err != nil {
		f.logger.Error("failed to list subscribers, dropping dispatch",
			"ticker", rec.Ticker,
			"error", err,
		)
		return
	}

	// Deliveries ride a context detached from the pipeline cancel so a
	// shutdown does not abandon alerts already matched; Grace bounds them.
	dctx := ctx
	if f.Grace > 0 {
		var cancel context.CancelFunc
		dctx, cancel = context.WithTimeout(context.WithoutCancel(ctx), f.Grace)
		defer cancel()
	}

	var wg sync.WaitGroup
	for _, pref := range prefs {
		if !f.matches(rec, meta, pref) {
			continue
		}

		text := Render(rec, meta.Title, pref.Timezone, realtime)

		if err := f.sem.Acquire(dctx, 1); err != nil {
			f.logger.Warn("dispatch cancelled", "ticker", rec.Ticker, "error", err)
			break
		}

		wg.Add(1)
		go func(pref model.Preference) {
			defer wg.Done()
			defer f.sem.Release(1)

			err := f.notifier.Notify(dctx, pref.SubscriberID, text)
			if err != nil {
				f.logger.Warn("alert delivery failed",
					"subscriber", pref.SubscriberID,
					"ticker", rec.Ticker,
					"error", err,
				)
			}
			if f.Delivered != nil {
				f.Delivered(err)
			}
		}(pref)
	}
	wg.Wait()
}

// matches evaluates the threshold and topic predicates for one subscriber.
func (f *Fanout) matches(rec model.TradeRecord, meta model.MarketMetadata, pref model.Preference) bool {
	// The store only lists enabled subscribers, but a disabled row from any
	// other PrefSource must still never be delivered to.
	if !pref.AlertsOn {
		return false
	}

	if rec.Notional.LessThan(pref.Threshold) {
		return false
	}

	wanted, known := f.topics[pref.Topic]
	if !known {
		// Unknown topic keys pass everything rather than silencing the
		// subscriber; the misconfiguration is surfaced in the log.
		f.logger.Warn("unknown topic filter, treating as unfiltered",
			"subscriber", pref.SubscriberID,
			"topic", pref.Topic,
		)
		return true
	}
	if wanted == nil {
		return true
	}

	for _, tag := range meta.Tags {
		if slices.Contains(wanted, tag) {
			return true
		}
	}
	return false
}
