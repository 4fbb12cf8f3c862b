// Package supervisor owns the connection lifecycle: it drives the stream,
// reconnects with backoff, and degrades to REST polling when streaming is
// not available.
package supervisor

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/valshi/whaletracker/internal/classify"
	"github.com/valshi/whaletracker/internal/metrics"
	"github.com/valshi/whaletracker/internal/model"
	"github.com/valshi/whaletracker/internal/stream"
)

// Appender persists classified whale prints.
type Appender interface {
	Append(ctx context.Context, rec model.TradeRecord) error
}

// Dispatcher fans a record out to subscribers.
type Dispatcher interface {
	Dispatch(ctx context.Context, rec model.TradeRecord, realtime bool)
}

// MetaObserver receives metadata seen in stream traffic.
type MetaObserver interface {
	Observe(meta model.MarketMetadata)
}

// TransportFactory builds a fresh transport per connection attempt. Auth
// signatures embed timestamps, so transports are single-use.
type TransportFactory func() stream.Transport

// Config holds supervisor settings.
type Config struct {
	Channels           []string
	SubscribeTimeout   time.Duration
	ReconnectBaseDelay time.Duration
	ReconnectMaxDelay  time.Duration
	PollInterval       time.Duration
	PollPageSize       int

	// Streaming is false when no credentials are configured; the supervisor
	// then polls REST permanently.
	Streaming bool
}

// Supervisor runs the ingest pipeline in streaming or polling mode.
type Supervisor struct {
	cfg          Config
	newTransport TransportFactory
	trades       TradePager
	classifier   *classify.Classifier
	appender     Appender
	dispatcher   Dispatcher
	observer     MetaObserver
	logger       *slog.Logger

	connected atomic.Bool
}

// New creates a supervisor. observer may be nil.
func New(cfg Config, factory TransportFactory, trades TradePager, classifier *classify.Classifier, appender Appender, dispatcher Dispatcher, observer MetaObserver, logger *slog.Logger) *Supervisor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Supervisor{
		cfg:          cfg,
		newTransport: factory,
		trades:       trades,
		classifier:   classifier,
		appender:     appender,
		dispatcher:   dispatcher,
		observer:     observer,
		logger:       logger,
	}
}

// IsConnected reports stream liveness. Wired into the metadata cache as its
// memory-tier probe.
func (s *Supervisor) IsConnected() bool {
	return s.connected.Load()
}

// Run blocks until ctx is cancelled.
func (s *Supervisor) Run(ctx context.Context) error {
	if !s.cfg.Streaming {
		s.logger.Warn("no stream credentials configured, running in REST polling mode")
		s.runPolling(ctx)
		return ctx.Err()
	}

	bo := newBackoff(s.cfg.ReconnectBaseDelay, s.cfg.ReconnectMaxDelay)
	first := true

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		err := s.runConnection(ctx, bo)
		if ctx.Err() != nil {
			return ctx.Err()
		}

		// A rejected handshake on the very first attempt means the
		// credentials are bad; retrying the stream cannot fix that.
		if first && errors.Is(err, websocket.ErrBadHandshake) {
			s.logger.Error("stream handshake rejected, falling back to REST polling", "error", err)
			s.runPolling(ctx)
			return ctx.Err()
		}
		first = false

		delay := bo.next()
		s.logger.Warn("stream disconnected, reconnecting",
			"error", err,
			"delay", delay,
		)
		metrics.Reconnects.Inc()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
}

// runConnection dials, subscribes, and pumps messages until the connection
// fails or ctx is cancelled. Returns the terminating error.
func (s *Supervisor) runConnection(ctx context.Context, bo *backoff) error {
	transport := s.newTransport()
	defer transport.Close()

	if err := transport.Connect(ctx); err != nil {
		return err
	}

	// Correlator and subscription state are connection-scoped.
	corr := stream.NewCorrelator()
	subs := stream.NewSubscriptions(corr, s.cfg.SubscribeTimeout)

	defer func() {
		s.connected.Store(false)
		metrics.StreamConnected.Set(0)
		corr.FailAll()
	}()

	// The pump must run before subscribing: subscribe responses arrive on
	// the same message channel they are correlated against.
	connCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		for {
			select {
			case <-connCtx.Done():
				done <- connCtx.Err()
				return
			case err := <-transport.Errors():
				done <- err
				return
			case msg, ok := <-transport.Messages():
				if !ok {
					done <- stream.ErrConnectionLost
					return
				}
				s.handleMessage(connCtx, corr, msg.Data)
			}
		}
	}()

	for _, channel := range s.cfg.Channels {
		if _, err := subs.Subscribe(connCtx, transport, channel); err != nil {
			return err
		}
		s.logger.Info("subscribed", "channel", channel)
	}

	s.connected.Store(true)
	metrics.StreamConnected.Set(1)
	bo.reset()
	s.logger.Info("streaming")

	return <-done
}

// handleMessage routes one inbound frame. Malformed frames are logged and
// dropped; they must never take the connection down.
func (s *Supervisor) handleMessage(ctx context.Context, corr *stream.Correlator, data []byte) {
	if resp, ok := stream.TryParseResponse(data); ok {
		if !corr.Resolve(resp) {
			s.logger.Debug("discarding late command response", "id", resp.ID)
		}
		return
	}

	var msg stream.DataMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		metrics.TradesProcessed.WithLabelValues("malformed").Inc()
		s.logger.Warn("malformed stream message", "error", err)
		return
	}

	switch msg.Type {
	case "trade":
		var trade stream.TradeMsg
		if err := json.Unmarshal(msg.Msg, &trade); err != nil {
			metrics.TradesProcessed.WithLabelValues("malformed").Inc()
			s.logger.Warn("malformed trade message", "error", err)
			return
		}
		s.processTrade(ctx, trade, true)

	case "market_lifecycle", "ticker":
		s.observeMetadata(msg.Msg)

	default:
		s.logger.Debug("ignoring stream message", "type", msg.Type)
	}
}

// processTrade classifies, persists, and fans out one trade. A persistence
// failure is logged but does not suppress the alert: subscribers care more
// about timely delivery than about the history tables.
func (s *Supervisor) processTrade(ctx context.Context, trade stream.TradeMsg, realtime bool) {
	rec, ok := s.classifier.Classify(trade)
	if !ok {
		metrics.TradesProcessed.WithLabelValues("dropped").Inc()
		return
	}
	metrics.TradesProcessed.WithLabelValues("kept").Inc()

	s.logger.Info("whale print",
		"ticker", rec.Ticker,
		"side", rec.Side,
		"notional", rec.Notional,
		"count", rec.Count,
	)

	if err := s.appender.Append(ctx, rec); err != nil {
		s.logger.Error("failed to persist print", "ticker", rec.Ticker, "error", err)
	}

	s.dispatcher.Dispatch(ctx, rec, realtime)
}

// observeMetadata seeds the metadata cache from stream traffic that happens
// to carry titles.
func (s *Supervisor) observeMetadata(raw json.RawMessage) {
	if s.observer == nil {
		return
	}

	var meta struct {
		MarketTicker string `json:"market_ticker"`
		Title        string `json:"title"`
	}
	if err := json.Unmarshal(raw, &meta); err != nil || meta.MarketTicker == "" {
		return
	}

	s.observer.Observe(model.MarketMetadata{
		Ticker:    meta.MarketTicker,
		Title:     meta.Title,
		FetchedAt: time.Now().UnixMilli(),
	})
}
