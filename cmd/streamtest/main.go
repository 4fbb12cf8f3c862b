// streamtest connects to the Kalshi WebSocket and streams classified trades
// to the console. Useful for checking credentials and eyeballing live whale
// activity without a database.
//
// Usage: go run ./cmd/streamtest --config configs/tracker.local.yaml
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"

	"github.com/valshi/whaletracker/internal/api"
	"github.com/valshi/whaletracker/internal/auth"
	"github.com/valshi/whaletracker/internal/classify"
	"github.com/valshi/whaletracker/internal/config"
	"github.com/valshi/whaletracker/internal/stream"
)

func main() {
	configPath := flag.String("config", "configs/tracker.local.yaml", "path to config file")
	verbose := flag.Bool("verbose", false, "print full message JSON")
	leaderboard := flag.Bool("leaderboard", false, "print the social leaderboard and exit")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal")
		cancel()
	}()

	var signer *auth.Signer
	if cfg.API.KeyID != "" && cfg.API.PrivateKeyPath != "" {
		signer, err = auth.NewSigner(cfg.API.KeyID, cfg.API.PrivateKeyPath)
		if err != nil {
			logger.Error("failed to load API credentials", "error", err)
			os.Exit(1)
		}
	}

	if *leaderboard {
		printLeaderboard(ctx, cfg, signer, logger)
		return
	}

	if signer == nil {
		logger.Error("API credentials required for WebSocket",
			"key_id_set", cfg.API.KeyID != "",
			"private_key_path_set", cfg.API.PrivateKeyPath != "",
		)
		os.Exit(1)
	}
	logger.Info("using API credentials", "key_id", cfg.API.KeyID)

	headers := func() (http.Header, error) {
		raw, err := signer.WebSocketHeaders()
		if err != nil {
			return nil, err
		}
		h := make(http.Header, len(raw))
		for k, v := range raw {
			h.Set(k, v)
		}
		return h, nil
	}

	transport := stream.NewTransport(stream.ClientConfig{
		URL:          cfg.API.WSURL,
		PingInterval: cfg.Stream.PingInterval,
		PingTimeout:  cfg.Stream.PingTimeout,
		WriteTimeout: cfg.Stream.WriteTimeout,
		BufferSize:   cfg.Stream.BufferSize,
	}, headers, logger)
	defer transport.Close()

	if err := transport.Connect(ctx); err != nil {
		logger.Error("failed to connect", "error", err)
		os.Exit(1)
	}

	corr := stream.NewCorrelator()
	subs := stream.NewSubscriptions(corr, cfg.Stream.SubscribeTimeout)
	classifier := classify.New(decimal.NewFromFloat(cfg.Alerts.MinNotional))

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case err := <-transport.Errors():
				logger.Error("connection lost", "error", err)
				cancel()
				return
			case msg, ok := <-transport.Messages():
				if !ok {
					cancel()
					return
				}
				printMessage(corr, classifier, msg.Data, *verbose)
			}
		}
	}()

	for _, channel := range cfg.Stream.Channels {
		if _, err := subs.Subscribe(ctx, transport, channel); err != nil {
			logger.Error("subscribe failed", "channel", channel, "error", err)
			os.Exit(1)
		}
		logger.Info("subscribed", "channel", channel)
	}

	logger.Info("streaming started - press Ctrl+C to stop")
	<-ctx.Done()
	logger.Info("shutdown complete")
}

func printMessage(corr *stream.Correlator, classifier *classify.Classifier, data []byte, verbose bool) {
	if resp, ok := stream.TryParseResponse(data); ok {
		corr.Resolve(resp)
		return
	}

	var msg stream.DataMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		fmt.Printf("[UNPARSED] %s\n", data)
		return
	}

	if verbose {
		pretty, _ := json.MarshalIndent(msg, "", "  ")
		fmt.Printf("[%s] %s\n", msg.Type, pretty)
		return
	}

	if msg.Type != "trade" {
		fmt.Printf("[%s] sid=%d\n", msg.Type, msg.SID)
		return
	}

	var trade stream.TradeMsg
	if err := json.Unmarshal(msg.Msg, &trade); err != nil {
		fmt.Printf("[UNPARSED TRADE] %s\n", msg.Msg)
		return
	}

	if rec, ok := classifier.Classify(trade); ok {
		fmt.Printf("[WHALE] ticker=%s side=%s notional=$%s count=%d price=%s\n",
			rec.Ticker, rec.Side, rec.Notional, rec.Count, rec.Price)
	} else {
		fmt.Printf("[trade] ticker=%s side=%s count=%d yes_price=%d\n",
			trade.MarketTicker, trade.TakerSide, trade.Count, trade.YesPrice)
	}
}

func printLeaderboard(ctx context.Context, cfg *config.TrackerConfig, signer *auth.Signer, logger *slog.Logger) {
	client := api.NewClient(cfg.API.RestURL, signer,
		api.WithLogger(logger),
		api.WithTimeout(cfg.API.Timeout),
		api.WithRetries(cfg.API.MaxRetries, time.Second),
	)

	resp, err := client.GetLeaderboard(ctx, "volume", 10, 7)
	if err != nil {
		logger.Error("failed to fetch leaderboard", "error", err)
		os.Exit(1)
	}

	for _, entry := range resp.Entries {
		fmt.Printf("%3d. %-24s $%s\n", entry.Rank, entry.Username, entry.Value)
	}
}
